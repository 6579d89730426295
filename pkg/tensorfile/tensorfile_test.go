package tensorfile

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLayout(t *testing.T) {
	rec, err := NewInt32Record("x", []int{1, 2}, []int32{1, 2})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []Record{rec}))

	want := "1\nx 3 2 1 2 \x01\x00\x00\x00\x02\x00\x00\x00\n"
	assert.Equal(t, []byte(want), buf.Bytes())
}

func TestWriteRead(t *testing.T) {
	ids, err := NewInt32Record("input_ids", []int{2, 3}, []int32{101, -7, 0, 30521, 5, 102})
	require.NoError(t, err)
	scalar, err := NewInt32Record("scalar", nil, []int32{42})
	require.NoError(t, err)
	// A payload containing the separator bytes must not confuse the reader.
	tricky, err := NewInt32Record("tricky", []int{2}, []int32{0x0a200a20, 0x20202020})
	require.NoError(t, err)
	half := Record{Name: "half", DType: Float16, Shape: []int{3}, Data: []byte{1, 2, 3, 4, 5, 6}}

	in := []Record{ids, scalar, tricky, half}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in))

	out, err := Read(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("records differ (-want +got):\n%s", diff)
	}

	values, err := out[0].Int32s()
	require.NoError(t, err)
	assert.Equal(t, []int32{101, -7, 0, 30521, 5, 102}, values)
}

func TestWriteRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want error
	}{
		{"short data", Record{Name: "a", DType: Int32, Shape: []int{2}, Data: make([]byte, 4)}, ErrSizeMismatch},
		{"unknown dtype", Record{Name: "a", DType: 9, Shape: []int{1}, Data: make([]byte, 4)}, ErrUnknownDType},
		{"space in name", Record{Name: "a b", DType: Int8, Shape: []int{1}, Data: make([]byte, 1)}, ErrBadName},
		{"empty name", Record{DType: Int8, Shape: []int{1}, Data: make([]byte, 1)}, ErrBadName},
		{"shape wraps to zero bytes", Record{Name: "a", DType: Int32, Shape: []int{1 << 62}}, ErrTooLarge},
		{"negative dimension", Record{Name: "a", DType: Int8, Shape: []int{-1}}, ErrSizeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Write(&buf, []Record{tt.rec})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Zero(t, buf.Len(), "nothing should be written")
		})
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"bad count", "three\n", ErrBadHeader},
		{"truncated data", "1\nx 3 1 2 \x01\x00\x00\x00", ErrShortData},
		{"missing terminator", "1\nx 3 1 1 \x01\x00\x00\x00X", ErrBadHeader},
		{"unknown dtype", "1\nx 7 1 1 \x01\n", ErrUnknownDType},
		{"fewer records than count", "2\nx 3 1 1 \x01\x00\x00\x00\n", ErrBadHeader},
		{"bad dimension", "1\nx 3 1 two ", ErrBadHeader},
		{"dimension overflows allocation", "1\nx 3 1 2305843009213693952 \n", ErrTooLarge},
		{"dimension wraps to zero bytes", "1\nx 3 1 4611686018427387904 \n\n", ErrTooLarge},
		{"product of dimensions overflows", "1\nx 3 2 4294967296 4294967296 \n", ErrTooLarge},
		{"huge record count", "999999999999999999\n", ErrBadHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader([]byte(tt.input)))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestStripPortSuffix(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"input_ids:0", "input_ids"},
		{"segment_ids:12", "segment_ids"},
		{"input_mask", "input_mask"},
		{"scope:name", "scope:name"},
		{"trailing:", "trailing:"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripPortSuffix(tt.in), tt.in)
	}
}

func TestNumElements(t *testing.T) {
	assert.Equal(t, 1, NumElements(nil))
	assert.Equal(t, 0, NumElements([]int{0, 1 << 62}))
	assert.Equal(t, 24, NumElements([]int{2, 3, 4}))
	assert.Equal(t, -1, NumElements([]int{1 << 31, 1 << 31}))
	assert.Equal(t, -1, NumElements([]int{2, -3}))
}

func TestInt32sRejectsOtherTypes(t *testing.T) {
	_, err := Record{Name: "f", DType: Float32, Shape: []int{1}, Data: make([]byte, 4)}.Int32s()
	assert.Error(t, err)
}
