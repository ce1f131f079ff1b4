package gc

import "unsafe"

// RootProvider enumerates every live pointer held outside the heap: globals,
// interpreter registers, active stack-root scopes, pending closure binders,
// in-flight module graphs. Called once per cycle, during RootScanning.
type RootProvider interface {
	EnumerateRoots(v *Visitor)
}

// Tracer reports one object's outgoing pointers, given its kind tag and
// body pointer. Implemented as a table switch on Kind in a real embedder.
// Called once per gray-queue pop.
type Tracer interface {
	Trace(kind Kind, obj unsafe.Pointer, v *Visitor)
}

// WeakRefProcessor iterates the embedder's weak-reference roots (WeakRef
// objects, weak map/set entries, finalization registries) after marking
// completes and clears entries whose targets did not survive. It is
// optional: a Collaborator that does not implement it gets a no-op weak
// phase.
type WeakRefProcessor interface {
	ProcessWeakRefs(h *Heap)
}

// Collaborator is the mandatory half of the embedder contract: every
// embedder must be able to enumerate its roots and trace any object it
// hands the heap a Kind for.
type Collaborator interface {
	RootProvider
	Tracer
}
