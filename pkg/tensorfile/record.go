package tensorfile

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode"
)

// Record is one named tensor: its type tag, shape and raw little-endian,
// row-major element bytes.
type Record struct {
	Name  string
	DType DType
	Shape []int
	Data  []byte
}

// NewInt32Record packs values into an Int32 record of the given shape.
func NewInt32Record(name string, shape []int, values []int32) (Record, error) {
	if n := NumElements(shape); n != len(values) {
		return Record{}, fmt.Errorf("tensor %q: shape %v holds %d elements, got %d values", name, shape, n, len(values))
	}
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], uint32(v))
	}
	return Record{
		Name:  name,
		DType: Int32,
		Shape: append([]int(nil), shape...),
		Data:  data,
	}, nil
}

// maxRecordBytes bounds the payload of a single record.
const maxRecordBytes = 1 << 32

// NumElements is the product of the dimensions. A rank-0 shape holds one
// element. It returns -1 for a negative dimension or a product above
// maxRecordBytes.
func NumElements(shape []int) int {
	n := int64(1)
	for _, d := range shape {
		if d < 0 {
			return -1
		}
		if d > 0 && n > maxRecordBytes/int64(d) {
			return -1
		}
		n *= int64(d)
	}
	return int(n)
}

func (r Record) Rank() int {
	return len(r.Shape)
}

// ByteSize is the payload length implied by the type tag and shape, or -1
// when it exceeds maxRecordBytes.
func (r Record) ByteSize() int {
	n := NumElements(r.Shape)
	if n < 0 || int64(n)*int64(r.DType.Size()) > maxRecordBytes {
		return -1
	}
	return n * r.DType.Size()
}

// Validate checks that the record can be written and read back unchanged.
func (r Record) Validate() error {
	if r.Name == "" || strings.IndexFunc(r.Name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q", ErrBadName, r.Name)
	}
	if !r.DType.Valid() {
		return fmt.Errorf("tensor %q: %w %d", r.Name, ErrUnknownDType, int(r.DType))
	}
	for _, d := range r.Shape {
		if d < 0 {
			return fmt.Errorf("tensor %q: %w: negative dimension in shape %v", r.Name, ErrSizeMismatch, r.Shape)
		}
	}
	want := r.ByteSize()
	if want < 0 {
		return fmt.Errorf("tensor %q: %w: shape %v", r.Name, ErrTooLarge, r.Shape)
	}
	if len(r.Data) != want {
		return fmt.Errorf("tensor %q: %w: shape %v needs %d bytes, have %d", r.Name, ErrSizeMismatch, r.Shape, want, len(r.Data))
	}
	return nil
}

// Int32s decodes the payload of an Int32 record.
func (r Record) Int32s() ([]int32, error) {
	if r.DType != Int32 {
		return nil, fmt.Errorf("tensor %q has dtype %s, not int32", r.Name, r.DType)
	}
	if len(r.Data)%4 != 0 {
		return nil, fmt.Errorf("tensor %q: %w: %d bytes", r.Name, ErrSizeMismatch, len(r.Data))
	}
	out := make([]int32, len(r.Data)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(r.Data[i*4:]))
	}
	return out, nil
}

// StripPortSuffix drops a trailing ":<digits>" output index, as in "input_ids:0".
func StripPortSuffix(name string) string {
	i := strings.LastIndexByte(name, ':')
	if i < 0 || i == len(name)-1 {
		return name
	}
	for _, c := range name[i+1:] {
		if c < '0' || c > '9' {
			return name
		}
	}
	return name[:i]
}

var (
	ErrBadName      = &FormatError{Message: "invalid tensor name"}
	ErrUnknownDType = &FormatError{Message: "unknown dtype"}
	ErrSizeMismatch = &FormatError{Message: "data size does not match shape"}
	ErrShortData    = &FormatError{Message: "unexpected end of tensor data"}
	ErrTooLarge     = &FormatError{Message: "tensor payload too large"}
	ErrBadHeader    = &FormatError{Message: "malformed record header"}
)

type FormatError struct {
	Message string
}

func (e *FormatError) Error() string {
	return e.Message
}
