package tensorfile

import "fmt"

// DType is the numeric type tag written after a record name.
type DType int

const (
	Float32 DType = iota
	Float16
	Int8
	Int32
)

var dTypeToSize = [...]int{
	Float32: 4,
	Float16: 2,
	Int8:    1,
	Int32:   4,
}

var dTypeToString = [...]string{
	Float32: "float32",
	Float16: "float16",
	Int8:    "int8",
	Int32:   "int32",
}

func (dt DType) Valid() bool {
	return dt >= Float32 && dt <= Int32
}

// Size returns the element size in bytes, or 0 for an unknown tag.
func (dt DType) Size() int {
	if !dt.Valid() {
		return 0
	}
	return dTypeToSize[dt]
}

func (dt DType) String() string {
	if !dt.Valid() {
		return fmt.Sprintf("DType(%d)", int(dt))
	}
	return dTypeToString[dt]
}
