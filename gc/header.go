package gc

import "unsafe"

// Color is the three-state marking status of a heap object.
type Color uint8

const (
	White Color = iota // unmarked: collected unless found reachable this cycle
	Gray               // pending: reached, outgoing pointers not yet scanned
	Black              // scanned: reached, outgoing pointers enumerated
)

// Kind is an embedder-defined enumeration tag distinguishing every distinct
// heap-object shape. The core never interprets a Kind value itself; it only
// uses it to index the embedder's DescriptorTable.
type Kind uint16

// Header is the fixed-size record prepended to every heap allocation. It is
// never exposed outside the package: embedders only ever see body pointers
// (unsafe.Pointer) and reach the header through headerFor.
//
// Color and the owning heap's back-pointer could in principle be packed
// into one word using pointer low-bits (8-byte alignment guarantees 3 free
// bits), but they are kept as separate fields here instead: Go's own
// collector does not allow a live pointer value to carry altered low bits
// without defeating the garbage collector that owns the backing storage
// for every Header. Color lookup and update both stay O(1) either way.
type Header struct {
	next     *Header // intrusive link in the heap's all-objects list
	grayNext *Header // intrusive link in the gray queue; nil outside it
	heap     *Heap   // owning context, fixed at allocation time
	kind     Kind
	color    Color
	size     uint32 // body size in bytes, 8-byte aligned
}

const headerSize = unsafe.Sizeof(Header{})

// allocAlign is the allocation alignment guaranteed to every body pointer.
const allocAlign = 8

func alignUp(n uintptr) uintptr {
	return (n + allocAlign - 1) &^ (allocAlign - 1)
}

// headerFor returns the header immediately preceding a body pointer. Body
// pointers are the only pointer type this package exposes to embedders; the
// header is always reached by this fixed-offset back-step.
func headerFor(body unsafe.Pointer) *Header {
	return (*Header)(unsafe.Add(body, -int(headerSize)))
}

func bodyOf(h *Header) unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(h), headerSize)
}

// KindOf returns the object's kind tag.
func KindOf(obj unsafe.Pointer) Kind { return headerFor(obj).kind }

// ColorOf returns the object's current mark color.
func ColorOf(obj unsafe.Pointer) Color { return headerFor(obj).color }

// Context returns the heap that owns this object.
func Context(obj unsafe.Pointer) *Heap { return headerFor(obj).heap }

// AllocSize returns the body's byte size as recorded in its header (not the
// descriptor's computed size_of, which may differ for variable-shape kinds
// that store their own length separately).
func AllocSize(obj unsafe.Pointer) uintptr { return uintptr(headerFor(obj).size) }
