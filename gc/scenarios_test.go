package gc_test

import (
	"testing"
	"unsafe"

	"github.com/scriptrt/heapgc/example/script"
	"github.com/scriptrt/heapgc/gc"
)

// Scenario 1: allocate 10 plain objects, root none, collect. Everything is
// garbage; a full cycle from Start through Finish costs exactly 3 Step()
// calls at the default limits: one drains an already-empty gray queue and
// moves to WeakRefs, one moves WeakRefs into Sweeping, one sweeps all 10
// objects in a single bounded pass (10 is well under the default sweep
// step limit of 100) and finishes.
func TestScenarioAllGarbageNoRoots(t *testing.T) {
	ctx := script.NewContext(gc.DefaultConfig())
	for i := 0; i < 10; i++ {
		if _, err := ctx.NewPlainObject(0); err != nil {
			t.Fatalf("alloc: %v", err)
		}
	}

	ctx.Heap.Start(ctx)
	steps := ctx.Heap.Finish()

	stats := ctx.Heap.Stats()
	if stats.NumObjects != 0 {
		t.Fatalf("NumObjects = %d, want 0", stats.NumObjects)
	}
	if stats.BytesAllocated != 0 {
		t.Fatalf("BytesAllocated = %d, want 0", stats.BytesAllocated)
	}
	if steps != 3 {
		t.Fatalf("Finish() took %d steps, want 3", steps)
	}
}

// Scenario 2: allocate 11 plain objects, root exactly one (holding 42).
// After collection only the rooted object survives, at its original address
// and with its value intact.
func TestScenarioOneRootSurvives(t *testing.T) {
	ctx := script.NewContext(gc.DefaultConfig())

	rootedObj, err := ctx.NewPlainObject(1)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	ctx.SetPlainObjectSlot(rootedObj, 0, gc.Int(42))
	root := ctx.Roots.New(gc.Pointer(rootedObj))

	for i := 0; i < 10; i++ {
		if _, err := ctx.NewPlainObject(0); err != nil {
			t.Fatalf("alloc garbage: %v", err)
		}
	}

	ctx.Heap.Start(ctx)
	ctx.Heap.Finish()

	if got := ctx.Heap.Stats().NumObjects; got != 1 {
		t.Fatalf("NumObjects = %d, want 1", got)
	}
	survivor := (*root).Ptr
	if survivor != rootedObj {
		t.Fatalf("surviving object address changed: got %p, want %p", survivor, rootedObj)
	}
	if got := script.PlainObjectSlot(survivor, 0).Int(); got != 42 {
		t.Fatalf("survivor slot 0 = %d, want 42", got)
	}
}

// Scenario 3: a 100-object ring (array i holds array i+1, wrapping around),
// reachable from no root. The internal cycle does not save it from
// collection, and sweeping a 100-object list at the default sweep step
// limit of 100 takes exactly two sweep steps: one to walk all 100 and hit
// the limit, one more to notice the list is now exhausted and finish.
func TestScenarioUnreachableCycleIsCollected(t *testing.T) {
	ctx := script.NewContext(gc.DefaultConfig())

	const n = 100
	nodes := make([]unsafe.Pointer, n)
	for i := range nodes {
		obj, err := ctx.NewArray([]gc.Value{gc.Undefined()})
		if err != nil {
			t.Fatalf("alloc: %v", err)
		}
		nodes[i] = obj
	}
	for i := range nodes {
		ctx.SetArrayItem(nodes[i], 0, gc.Pointer(nodes[(i+1)%n]))
	}

	ctx.Heap.Start(ctx)
	for ctx.Heap.Phase() != gc.Sweeping {
		ctx.Heap.Step()
	}
	sweepSteps := 0
	for ctx.Heap.Phase() != gc.Idle {
		ctx.Heap.Step()
		sweepSteps++
	}

	if sweepSteps != 2 {
		t.Fatalf("sweep phase took %d steps, want 2", sweepSteps)
	}
	if got := ctx.Heap.Stats().NumObjects; got != 0 {
		t.Fatalf("NumObjects = %d, want 0 (the ring has no roots)", got)
	}
}

// Scenario 4: a target T holding 42 (a one-slot plain object, since
// strings carry no value slots) referenced only
// by a WeakRef W, with only W rooted. T is collected, W survives, and W's
// target is cleared rather than left dangling.
func TestScenarioWeakRefTargetCleared(t *testing.T) {
	ctx := script.NewContext(gc.DefaultConfig())

	target, err := ctx.NewPlainObject(1)
	if err != nil {
		t.Fatalf("alloc target: %v", err)
	}
	ctx.SetPlainObjectSlot(target, 0, gc.Int(42))

	weakRef, err := ctx.NewWeakRef(target)
	if err != nil {
		t.Fatalf("alloc weak ref: %v", err)
	}
	ctx.Roots.New(gc.Pointer(weakRef))

	ctx.Heap.Start(ctx)
	ctx.Heap.Finish()

	if got := ctx.Heap.Stats().NumObjects; got != 1 {
		t.Fatalf("NumObjects = %d, want 1 (only the WeakRef survives)", got)
	}
	if script.WeakRefTarget(weakRef) != nil {
		t.Fatalf("WeakRef target was not cleared after its referent was collected")
	}
}

// Scenario 5: 50 objects, root the first 10, start a cycle, then allocate a
// new object mid-cycle (before Finish). Per the born-black rule, the new
// object survives even though nothing roots it, while the 40 unrooted
// pre-existing objects do not.
func TestScenarioMidCycleAllocationSurvives(t *testing.T) {
	ctx := script.NewContext(gc.DefaultConfig())

	const total = 50
	const rooted = 10
	objs := make([]unsafe.Pointer, total)
	for i := range objs {
		obj, err := ctx.NewPlainObject(0)
		if err != nil {
			t.Fatalf("alloc: %v", err)
		}
		objs[i] = obj
		if i < rooted {
			ctx.Roots.New(gc.Pointer(obj))
		}
	}

	ctx.Heap.Start(ctx)

	midCycle, err := ctx.NewPlainObject(1)
	if err != nil {
		t.Fatalf("mid-cycle alloc: %v", err)
	}
	ctx.SetPlainObjectSlot(midCycle, 0, gc.Int(999))

	ctx.Heap.Finish()

	if got := ctx.Heap.Stats().NumObjects; got != rooted+1 {
		t.Fatalf("NumObjects = %d, want %d", got, rooted+1)
	}
	if got := script.PlainObjectSlot(midCycle, 0).Int(); got != 999 {
		t.Fatalf("mid-cycle object's slot = %d, want 999", got)
	}
}

// Scenario 6: a stack-root scope that allocates past a block boundary, is
// visited mid-scope by a collection, and exits cleanly. Covered in depth
// as a whitebox test in gc/stackroot_test.go; this is the blackbox version
// using the public Context/RootStack API only.
func TestScenarioStackScopeSurvivesCollectionAndExits(t *testing.T) {
	ctx := script.NewContext(gc.DefaultConfig())

	obj, err := ctx.NewPlainObject(1)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	ctx.SetPlainObjectSlot(obj, 0, gc.Int(7))

	scope := ctx.Roots.Enter()
	for i := 0; i < 600; i++ {
		ctx.Roots.New(gc.Int(int64(i)))
	}
	root := ctx.Roots.New(gc.Pointer(obj))

	ctx.Heap.Start(ctx)
	ctx.Heap.Finish()

	if script.PlainObjectSlot((*root).Ptr, 0).Int() != 7 {
		t.Fatalf("object rooted across a block boundary did not survive correctly")
	}

	scope.Exit() // must not panic, and frees every cell allocated in the scope
}
