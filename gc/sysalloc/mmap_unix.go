//go:build unix

package sysalloc

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Mmap backs allocations with anonymous, page-aligned memory obtained
// directly from the kernel via golang.org/x/sys/unix, rather than through
// Go's own allocator. Free releases memory with exactly the length that was
// passed to Mmap, an exact round-trip to the system allocator.
var Mmap Allocator = mmapAllocator{}

type mmapAllocator struct{}

func (mmapAllocator) Alloc(size uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		size = 1
	}
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	return unsafe.Pointer(&b[0]), nil
}

func (mmapAllocator) Free(ptr unsafe.Pointer, size uintptr) {
	b := unsafe.Slice((*byte)(ptr), int(size))
	// Best-effort: an munmap failure here means the address/length pair no
	// longer matches what was mapped, which would itself indicate heap
	// corruption. There is nothing sensible to do with the error but it is
	// deliberately not swallowed into a panic on the hot sweep path.
	_ = unix.Munmap(b)
}

// Default returns the most faithful Allocator available on this platform.
func Default() Allocator { return Mmap }
