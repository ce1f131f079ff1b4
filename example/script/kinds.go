// Package script is a minimal object-language embedder used to exercise and
// test the gc package. It is not part of the core: a real embedder (parser,
// bytecode VM, property maps, prototypes, built-ins — none of which are
// this package's concern) would define its own Kind enumeration and
// descriptor table the same way this one does.
//
// Five shapes: a plain object, an immutable string, a fixed-length array of
// values, a WeakRef, and a WeakMap. Every variable-length payload is laid
// out inline in the sysalloc-backed body, immediately after a small fixed
// header recording its length — never as a separate make()'d Go slice. A
// slice header stored inside the body would point at a backing array that
// lives on Go's own heap with no Go-visible reference to it once the
// constructor returns: the object body itself is raw bytes the host
// allocator handed out (mmap pages, or a noscan span on the pure-Go path),
// which Go's collector does not scan, so it would never find that slice
// header to keep the array it names alive.
package script

import (
	"unsafe"

	"github.com/scriptrt/heapgc/gc"
)

const (
	KindPlainObject gc.Kind = iota
	KindString
	KindArray
	KindWeakRef
	KindWeakMap
)

var valueSize = unsafe.Sizeof(gc.Value{})

// plainObject is a fixed-size record of tagged value slots, stored inline
// in the body immediately after numSlots.
type plainObject struct {
	numSlots uintptr
}

func plainObjectBodySize(numSlots int) uintptr {
	return unsafe.Sizeof(plainObject{}) + uintptr(numSlots)*valueSize
}

func plainObjectSlots(obj unsafe.Pointer) []gc.Value {
	n := (*plainObject)(obj).numSlots
	base := unsafe.Add(obj, unsafe.Sizeof(plainObject{}))
	return unsafe.Slice((*gc.Value)(base), int(n))
}

// str is an immutable, pointer-free byte payload, stored inline after length.
type str struct {
	length uintptr
}

func strBodySize(n int) uintptr {
	return unsafe.Sizeof(str{}) + uintptr(n)
}

func strData(obj unsafe.Pointer) []byte {
	n := (*str)(obj).length
	base := unsafe.Add(obj, unsafe.Sizeof(str{}))
	return unsafe.Slice((*byte)(base), int(n))
}

// array is a fixed-length vector of strong tagged-value slots, stored
// inline after numItems. Its own item count never changes
// after construction; SetArrayItem only replaces slots already allocated.
type array struct {
	numItems uintptr
}

func arrayBodySize(numItems int) uintptr {
	return unsafe.Sizeof(array{}) + uintptr(numItems)*valueSize
}

func arrayItems(obj unsafe.Pointer) []gc.Value {
	n := (*array)(obj).numItems
	base := unsafe.Add(obj, unsafe.Sizeof(array{}))
	return unsafe.Slice((*gc.Value)(base), int(n))
}

// weakRef holds a single weak slot, cleared by ProcessWeakRefs when its
// target does not survive a cycle. A lone unsafe.Pointer field needs no
// inline-payload treatment: it addresses another sysalloc object directly,
// kept alive (or not) by the collector's own tracing, not by Go's.
type weakRef struct {
	target unsafe.Pointer
}

// weakMapEntry pairs a weakly-held key with a weakly-held value. Real
// WeakMap semantics only make the *key* weak; this toy model holds both
// weakly instead, since it has no need for the key to remain usable as an
// identity independent of the map.
type weakMapEntry struct {
	key   unsafe.Pointer
	value unsafe.Pointer
}

// weakMap's entries grow without bound across repeated WeakMapSet calls,
// so unlike plainObject/str/array it cannot simply be sized once at
// construction. entries instead points at its own raw buffer obtained
// directly from the same sysalloc.Allocator the heap uses, grown by
// reallocation exactly the way a C-style dynamic array would be; cap/len
// describe that buffer, not the fixed weakMap header itself.
type weakMap struct {
	entries unsafe.Pointer
	len     uintptr
	cap     uintptr
}

func weakMapEntries(obj unsafe.Pointer) []weakMapEntry {
	m := (*weakMap)(obj)
	if m.entries == nil {
		return nil
	}
	return unsafe.Slice((*weakMapEntry)(m.entries), int(m.len))
}

// Descriptors builds the descriptor table for this toy Kind enumeration.
func Descriptors() gc.DescriptorTable {
	table := make(gc.DescriptorTable, KindWeakMap+1)

	table[KindPlainObject] = gc.Descriptor{
		IsObject: true,
		Size: func(obj unsafe.Pointer) uintptr {
			return plainObjectBodySize(int((*plainObject)(obj).numSlots))
		},
		Visit: func(obj unsafe.Pointer, v *gc.Visitor) {
			for _, s := range plainObjectSlots(obj) {
				v.VisitValueSlot(s)
			}
		},
	}

	table[KindString] = gc.Descriptor{
		Size: func(obj unsafe.Pointer) uintptr {
			return strBodySize(int((*str)(obj).length))
		},
		// Strings are pointer-free: no Visit function needed.
	}

	table[KindArray] = gc.Descriptor{
		Size: func(obj unsafe.Pointer) uintptr {
			return arrayBodySize(int((*array)(obj).numItems))
		},
		Visit: func(obj unsafe.Pointer, v *gc.Visitor) {
			for _, item := range arrayItems(obj) {
				v.VisitValueSlot(item)
			}
		},
	}

	table[KindWeakRef] = gc.Descriptor{
		Size: func(unsafe.Pointer) uintptr { return unsafe.Sizeof(weakRef{}) },
		Visit: func(obj unsafe.Pointer, v *gc.Visitor) {
			w := (*weakRef)(obj)
			v.VisitWeak(w.target)
		},
	}

	table[KindWeakMap] = gc.Descriptor{
		Size: func(unsafe.Pointer) uintptr { return unsafe.Sizeof(weakMap{}) },
		Visit: func(obj unsafe.Pointer, v *gc.Visitor) {
			for _, e := range weakMapEntries(obj) {
				v.VisitWeak(e.key)
				v.VisitWeak(e.value)
			}
		},
	}

	return table
}
