package gc

import "unsafe"

// SizeFunc computes the byte size of an object's body given a pointer to it.
type SizeFunc func(obj unsafe.Pointer) uintptr

// VisitFunc reports every outgoing pointer in an object's body exactly once,
// distinguishing strong pointers (Visitor.VisitStrong) from weak ones
// (Visitor.VisitWeak). Tagged immediate values are never reported.
type VisitFunc func(obj unsafe.Pointer, v *Visitor)

// Descriptor is one entry of a Kind's shape description. IsObject marks
// whether this Kind is an object-language object (as opposed to an internal
// shape like a hash-table bucket array). Vtable is an opaque capability
// bundle (get-own-property, call, ...) that the heap stores but never
// invokes itself — dynamic dispatch into an object body is entirely the
// embedder's business.
type Descriptor struct {
	Size     SizeFunc
	Visit    VisitFunc
	IsObject bool
	Vtable   any
}

// DescriptorTable maps Kind to Descriptor. One entry may be the
// descriptor-descriptor: a self-pointer fixpoint resolved by allocating the
// descriptor object with a placeholder self-pointer, linking it into the
// table, then back-patching the self-field to its own address. The table
// itself is agnostic to which entry, if any, plays that role.
type DescriptorTable []Descriptor

func (t DescriptorTable) get(k Kind) *Descriptor {
	if int(k) >= len(t) {
		panic("gc: kind out of range of descriptor table")
	}
	return &t[k]
}
