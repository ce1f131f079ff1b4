package gc

import "unsafe"

// Visitor is the interface presented to descriptor Visit functions and to
// the embedder's root enumerator. It has exactly two primitives, strong
// and weak; everything else is layered on top of them.
type Visitor struct {
	heap *Heap
}

// VisitStrong reports a strong outgoing pointer. If ptr is non-nil and its
// header is white, the target is flipped gray and pushed onto the gray
// queue.
func (v *Visitor) VisitStrong(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	h := headerFor(ptr)
	if h.color == White {
		h.color = Gray
		v.heap.gray.push(h)
	}
}

// VisitWeak reports a weak outgoing pointer. It is a no-op during marking —
// the slot is not traced, so it can never keep its target alive — and is
// only meaningful to the optional weak-reference processor, which consults
// the embedder's own weak-holder registry rather than anything recorded
// here.
func (v *Visitor) VisitWeak(ptr unsafe.Pointer) {}

// VisitOptional is VisitStrong for a pointer slot that may legitimately be
// nil (an Option<HeapPtr<T>> in the original, a nilable field here).
func (v *Visitor) VisitOptional(ptr unsafe.Pointer) {
	if ptr != nil {
		v.VisitStrong(ptr)
	}
}

// VisitValueSlot decodes a tagged Value and invokes VisitStrong only when
// the slot currently holds a pointer payload.
func (v *Visitor) VisitValueSlot(val Value) {
	if val.IsPointer() {
		v.VisitStrong(val.Ptr)
	}
}

// VisitValueSlotWeak is VisitValueSlot's weak counterpart, used by
// weak-keyed/weak-valued containers.
func (v *Visitor) VisitValueSlotWeak(val Value) {
	if val.IsPointer() {
		v.VisitWeak(val.Ptr)
	}
}
