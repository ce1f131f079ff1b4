// Package gc implements the managed heap: an incremental, tri-color
// mark-sweep garbage collector coupled to a handle-based stack rooting
// system and a typed-object-header discipline. It is a library, not a
// program — see the embedder contract in contract.go.
package gc

import (
	"strconv"
	"unsafe"

	"github.com/scriptrt/heapgc/gc/sysalloc"
)

// Phase is the collector's current position in its cycle state machine.
type Phase uint8

const (
	Idle Phase = iota
	RootScanning
	Marking
	WeakRefs
	Sweeping
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case RootScanning:
		return "root-scanning"
	case Marking:
		return "marking"
	case WeakRefs:
		return "weak-refs"
	case Sweeping:
		return "sweeping"
	default:
		return "unknown"
	}
}

// Heap is the allocator and collection engine. One Heap serves exactly one
// execution context; it is not safe for concurrent use by multiple
// goroutines — the heap is not designed for concurrent alloc/GC.
type Heap struct {
	descriptors DescriptorTable
	config      Config
	sysalloc    sysalloc.Allocator

	head           *Header
	bytesAllocated uintptr
	numObjects     int
	threshold      uintptr

	phase        Phase
	gray         grayQueue
	collaborator Collaborator

	sweepPrev *Header
	sweepCur  *Header
	sweeping  bool // reentrancy guard: sweepStep must never be called from within itself

	bytesFreedThisCycle   uintptr
	objectsFreedThisCycle int
}

// NewHeap creates a heap for the given descriptor table, configuration and
// backing allocator. Passing a zero Config substitutes DefaultConfig.
func NewHeap(descriptors DescriptorTable, cfg Config, alloc sysalloc.Allocator) *Heap {
	if cfg.MarkStepLimit == 0 && cfg.SweepStepLimit == 0 && cfg.InitialThreshold == 0 && cfg.StackBlockCapacity == 0 {
		cfg = DefaultConfig()
	}
	if alloc == nil {
		alloc = sysalloc.Default()
	}
	return &Heap{
		descriptors: descriptors,
		config:      cfg,
		sysalloc:    alloc,
		threshold:   cfg.InitialThreshold,
	}
}

// Stats is a point-in-time snapshot of heap counters.
type Stats struct {
	BytesAllocated uintptr
	NumObjects     int
	Threshold      uintptr
	Phase          Phase
}

func (h *Heap) Stats() Stats {
	return Stats{
		BytesAllocated: h.bytesAllocated,
		NumObjects:     h.numObjects,
		Threshold:      h.threshold,
		Phase:          h.phase,
	}
}

func (h *Heap) Phase() Phase { return h.phase }

// DebugString renders a one-line summary of the heap's counters, for use
// behind a debug build tag rather than a logging call.
func (h *Heap) DebugString() string {
	s := h.Stats()
	return "gc.Heap{phase=" + s.Phase.String() +
		", objects=" + strconv.Itoa(s.NumObjects) +
		", bytesAllocated=" + strconv.FormatUint(uint64(s.BytesAllocated), 10) +
		", threshold=" + strconv.FormatUint(uint64(s.Threshold), 10) + "}"
}

// descriptorOf looks up the descriptor for obj's kind.
func (h *Heap) descriptorOf(obj unsafe.Pointer) *Descriptor {
	return h.descriptors.get(headerFor(obj).kind)
}

// SizeOf returns descriptor_of(obj).size_fn(obj), falling back to the
// header's recorded allocation size for kinds with no Size function.
func (h *Heap) SizeOf(obj unsafe.Pointer) uintptr {
	d := h.descriptorOf(obj)
	if d.Size != nil {
		return d.Size(obj)
	}
	return AllocSize(obj)
}

// VisitPointers calls descriptor_of(obj).visit_fn(obj, visitor).
func (h *Heap) VisitPointers(obj unsafe.Pointer, v *Visitor) {
	d := h.descriptorOf(obj)
	if d.Visit != nil {
		d.Visit(obj, v)
	}
}

// Alloc rounds body_size up to 8-byte alignment, requests header+body from
// the system allocator, and links the new object into the all-objects list.
// If a collection is already in progress it first advances one bounded work
// quantum.
func (h *Heap) Alloc(kind Kind, bodySize uintptr) (unsafe.Pointer, error) {
	if h.config.Stress && h.phase == Idle && h.collaborator != nil {
		// Collect as aggressively as possible, before creating the new
		// object rather than after: doing it after would give the fresh
		// (unrooted) object no chance to be reached by the caller before
		// sweep claims it.
		h.Start(h.collaborator)
		h.Finish()
	}
	if h.phase != Idle {
		h.Step()
	}

	size := alignUp(bodySize)
	total := headerSize + size

	raw, err := h.sysalloc.Alloc(total)
	if err != nil {
		return nil, ErrOutOfMemory
	}

	header := (*Header)(raw)
	header.kind = kind
	header.size = uint32(size)
	header.heap = h
	header.grayNext = nil
	if h.phase != Idle {
		// Objects born during an active cycle are black: never freed this
		// cycle, correctly scanned (because already black means "done") or
		// re-marked next cycle.
		header.color = Black
	} else {
		header.color = White
	}
	header.next = h.head
	h.head = header
	if h.phase == Sweeping && h.sweepPrev == nil {
		// Every object swept so far was freed, so the new header now sits
		// directly before the sweep cursor and is the one to unlink from.
		h.sweepPrev = header
	}

	h.bytesAllocated += total
	h.numObjects++

	body := bodyOf(header)
	return body, nil
}

// SetCollaborator registers the embedder a stress-mode heap should drive
// Start/Finish cycles against on every allocation. Embedders that call
// Start explicitly before every cycle (the common case) never need this.
func (h *Heap) SetCollaborator(ctx Collaborator) { h.collaborator = ctx }

// AllocRetrying wraps Alloc with the "finish any in-flight cycle and retry
// exactly once" policy that callers are expected to implement on an
// out-of-memory error; it changes nothing about that policy, it just saves
// embedders from writing the loop by hand.
func (h *Heap) AllocRetrying(kind Kind, bodySize uintptr) (unsafe.Pointer, error) {
	obj, err := h.Alloc(kind, bodySize)
	if err == nil {
		return obj, nil
	}
	if h.phase != Idle {
		h.Finish()
	}
	return h.Alloc(kind, bodySize)
}

// ShouldGC reports whether the heap is idle and over threshold.
func (h *Heap) ShouldGC() bool {
	return h.phase == Idle && h.bytesAllocated > h.threshold
}

// Start begins a new cycle. A no-op if a cycle is already in progress (an
// assertion failure in gcdebug builds).
func (h *Heap) Start(ctx Collaborator) {
	if h.phase != Idle {
		debugAssert(false, "start called while a cycle is already in progress")
		return
	}
	debugAssert(ctx != nil, "start called with a nil collaborator")
	h.collaborator = ctx
	h.phase = RootScanning
	h.bytesFreedThisCycle = 0
	h.objectsFreedThisCycle = 0

	v := &Visitor{heap: h}
	ctx.EnumerateRoots(v)

	h.phase = Marking
}

// Step advances the cycle by one bounded quantum. It returns true if the
// cycle is still running afterward, false if it just completed (or was
// already Idle).
func (h *Heap) Step() bool {
	switch h.phase {
	case Idle:
		debugAssert(false, "step called without start")
		return false

	case RootScanning:
		// Start() performs root scanning synchronously, so Step should never
		// observe this phase in practice; handle it gracefully rather than
		// assert, since a future embedder split across goroutines is exactly
		// the kind of change that would start to exercise this path.
		h.phase = Marking
		return true

	case Marking:
		h.markStep(h.config.MarkStepLimit)
		return h.phase != Idle

	case WeakRefs:
		if wp, ok := h.collaborator.(WeakRefProcessor); ok {
			wp.ProcessWeakRefs(h)
		}
		h.phase = Sweeping
		h.sweepPrev = nil
		h.sweepCur = h.head
		return true

	case Sweeping:
		h.sweepStep(h.config.SweepStepLimit)
		return h.phase != Idle
	}
	return false
}

// Finish loops Step until Idle and returns the number of steps executed.
func (h *Heap) Finish() int {
	steps := 0
	for {
		running := h.Step()
		steps++
		if !running {
			break
		}
	}
	return steps
}

func (h *Heap) markStep(limit int) {
	v := &Visitor{heap: h}
	for work := 0; work < limit; work++ {
		header := h.gray.pop()
		if header == nil {
			h.phase = WeakRefs
			return
		}
		header.color = Black
		h.collaborator.Trace(header.kind, bodyOf(header), v)
	}
}

func (h *Heap) sweepStep(limit int) {
	debugAssert(!h.sweeping, "sweep re-entered while already sweeping")
	h.sweeping = true
	defer func() { h.sweeping = false }()

	for work := 0; work < limit; work++ {
		cur := h.sweepCur
		if cur == nil {
			h.finishSweep()
			return
		}
		next := cur.next

		if cur.color == White {
			if h.sweepPrev != nil {
				h.sweepPrev.next = next
			} else {
				h.head = next
			}
			size := headerSize + uintptr(cur.size)
			h.bytesFreedThisCycle += size
			h.objectsFreedThisCycle++
			h.sysalloc.Free(unsafe.Pointer(cur), size)
		} else {
			cur.color = White
			h.sweepPrev = cur
		}

		h.sweepCur = next
	}
}

func (h *Heap) finishSweep() {
	// Objects born black during Sweeping were prepended ahead of the cursor
	// and never swept; they form the Black run at the list's head.
	for cur := h.head; cur != nil && cur.color == Black; cur = cur.next {
		cur.color = White
	}

	h.bytesAllocated -= h.bytesFreedThisCycle
	h.numObjects -= h.objectsFreedThisCycle

	threshold := 2 * h.bytesAllocated
	if h.config.InitialThreshold > threshold {
		threshold = h.config.InitialThreshold
	}
	h.threshold = threshold

	h.phase = Idle
	h.sweepPrev = nil
	h.sweepCur = nil
	h.bytesFreedThisCycle = 0
	h.objectsFreedThisCycle = 0
}

// WriteBarrier implements the Dijkstra-style insertion barrier: during
// RootScanning or Marking, any pointer stored into a live object whose
// target is white must mark the target gray before (or after, atomically
// with the field store) the write completes. It is a no-op outside those
// phases; weak-pointer stores never need it.
func (h *Heap) WriteBarrier(target unsafe.Pointer) {
	if target == nil {
		debugAssert(false, "write barrier invoked with a nil target")
		return
	}
	if h.phase == RootScanning || h.phase == Marking {
		v := &Visitor{heap: h}
		v.VisitStrong(target)
	}
}

// IsAlive reports whether obj survived marking. Queryable only during the
// WeakRefs phase.
func (h *Heap) IsAlive(obj unsafe.Pointer) bool {
	debugAssert(h.phase == WeakRefs, "is_alive queried outside the WeakRefs phase")
	if obj == nil {
		return false
	}
	return headerFor(obj).color != White
}
