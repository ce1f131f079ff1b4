package gc

import (
	"math"
	"unsafe"
)

// Tag identifies what a Value currently holds.
type Tag uint8

const (
	TagUndefined Tag = iota
	TagNull
	TagBool
	TagInt
	TagFloat
	TagPointer
)

// Value is a tagged, three-word slot: either an immediate scalar or a
// pointer to a heap object body. It is the unit of storage for stack-root
// cells and for the example object model's fields (example/script). Go
// does not let a program alias an interface{} word with an unsafe.Pointer
// the way a NaN-boxed tagged union can in a lower-level language, so the
// tag is carried alongside instead of packed into the bits.
type Value struct {
	Tag Tag
	num uint64
	Ptr unsafe.Pointer
}

func Undefined() Value { return Value{Tag: TagUndefined} }
func Null() Value      { return Value{Tag: TagNull} }

func Bool(b bool) Value {
	var n uint64
	if b {
		n = 1
	}
	return Value{Tag: TagBool, num: n}
}

func Int(i int64) Value { return Value{Tag: TagInt, num: uint64(i)} }

func Float(f float64) Value { return Value{Tag: TagFloat, num: math.Float64bits(f)} }

// Pointer wraps a heap object body pointer as a strong reference.
func Pointer(p unsafe.Pointer) Value { return Value{Tag: TagPointer, Ptr: p} }

func (v Value) IsPointer() bool { return v.Tag == TagPointer && v.Ptr != nil }

func (v Value) Bool() bool    { return v.num != 0 }
func (v Value) Int() int64    { return int64(v.num) }
func (v Value) Float() float64 { return math.Float64frombits(v.num) }
