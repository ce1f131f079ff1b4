package sysalloc

import "unsafe"

// Go is the portable fallback Allocator, backing each allocation with a
// make([]byte, n) span.
//
// That span is allocated noscan, since a byte slice carries no outgoing
// pointers of its own — which also means Go's collector will never trace
// through a pointer *stored inside* one of these spans, such as the
// heap's intrusive Header.next chain. A span is reachable to the
// collector only via an external, typed reference to it; the slice
// header returned from make() is that reference; once nothing keeps the
// slice header itself alive, the span can be reclaimed regardless of
// what raw pointers still point into it from elsewhere. retained is that
// external reference, keyed by the address handed back from Alloc, held
// for exactly as long as the caller has not called Free.
var Go Allocator = &goAllocator{retained: make(map[unsafe.Pointer][]byte)}

type goAllocator struct {
	retained map[unsafe.Pointer][]byte
}

func (a *goAllocator) Alloc(size uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		size = 1
	}
	buf := make([]byte, size)
	ptr := unsafe.Pointer(&buf[0])
	a.retained[ptr] = buf
	return ptr, nil
}

func (a *goAllocator) Free(ptr unsafe.Pointer, size uintptr) {
	// Poison freed memory so a lingering raw pointer into it reads garbage
	// instead of silently-still-valid data. The backing array itself is
	// reclaimed by Go's collector once retained no longer holds it.
	b := unsafe.Slice((*byte)(ptr), size)
	for i := range b {
		b[i] = 0xdd
	}
	delete(a.retained, ptr)
}
