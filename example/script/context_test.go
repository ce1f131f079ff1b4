package script

import (
	"testing"

	"github.com/scriptrt/heapgc/gc"
)

func TestPlainObjectSlotsTraced(t *testing.T) {
	ctx := NewContext(gc.DefaultConfig())

	child, err := ctx.NewPlainObject(0)
	if err != nil {
		t.Fatalf("alloc child: %v", err)
	}
	parent, err := ctx.NewPlainObject(1)
	if err != nil {
		t.Fatalf("alloc parent: %v", err)
	}
	ctx.SetPlainObjectSlot(parent, 0, gc.Pointer(child))
	ctx.Roots.New(gc.Pointer(parent))

	ctx.Heap.Start(ctx)
	ctx.Heap.Finish()

	if got := ctx.Heap.Stats().NumObjects; got != 2 {
		t.Fatalf("NumObjects = %d, want 2 (parent keeps child alive)", got)
	}
}

func TestArrayItemsTraced(t *testing.T) {
	ctx := NewContext(gc.DefaultConfig())

	item, err := ctx.NewPlainObject(0)
	if err != nil {
		t.Fatalf("alloc item: %v", err)
	}
	arr, err := ctx.NewArray([]gc.Value{gc.Pointer(item)})
	if err != nil {
		t.Fatalf("alloc array: %v", err)
	}
	ctx.Roots.New(gc.Pointer(arr))

	ctx.Heap.Start(ctx)
	ctx.Heap.Finish()

	if got := ctx.Heap.Stats().NumObjects; got != 2 {
		t.Fatalf("NumObjects = %d, want 2 (array keeps its item alive)", got)
	}
}

func TestStringIsPointerFreeAndSurvivesOnlyWhenRooted(t *testing.T) {
	ctx := NewContext(gc.DefaultConfig())

	s, err := ctx.NewString([]byte("hello"))
	if err != nil {
		t.Fatalf("alloc string: %v", err)
	}
	root := ctx.Roots.New(gc.Pointer(s))

	ctx.Heap.Start(ctx)
	ctx.Heap.Finish()

	if got := ctx.Heap.Stats().NumObjects; got != 1 {
		t.Fatalf("NumObjects = %d, want 1", got)
	}
	if string(StringBytes((*root).Ptr)) != "hello" {
		t.Fatalf("string payload corrupted across collection")
	}
}

func TestWeakMapCompactsDeadEntries(t *testing.T) {
	ctx := NewContext(gc.DefaultConfig())

	liveKey, err := ctx.NewPlainObject(0)
	if err != nil {
		t.Fatalf("alloc liveKey: %v", err)
	}
	liveValue, err := ctx.NewPlainObject(0)
	if err != nil {
		t.Fatalf("alloc liveValue: %v", err)
	}
	deadKey, err := ctx.NewPlainObject(0)
	if err != nil {
		t.Fatalf("alloc deadKey: %v", err)
	}
	deadValue, err := ctx.NewPlainObject(0)
	if err != nil {
		t.Fatalf("alloc deadValue: %v", err)
	}

	wm, err := ctx.NewWeakMap()
	if err != nil {
		t.Fatalf("alloc weak map: %v", err)
	}
	if err := ctx.WeakMapSet(wm, liveKey, liveValue); err != nil {
		t.Fatalf("WeakMapSet liveKey: %v", err)
	}
	if err := ctx.WeakMapSet(wm, deadKey, deadValue); err != nil {
		t.Fatalf("WeakMapSet deadKey: %v", err)
	}

	// Root the map itself and one of the two entries' key/value pair, but
	// not deadKey/deadValue: WeakMap entries never keep their key or value
	// alive on their own.
	ctx.Roots.New(gc.Pointer(wm))
	ctx.Roots.New(gc.Pointer(liveKey))
	ctx.Roots.New(gc.Pointer(liveValue))

	ctx.Heap.Start(ctx)
	ctx.Heap.Finish()

	if got := WeakMapLen(wm); got != 1 {
		t.Fatalf("WeakMapLen = %d, want 1 (the dead entry must be compacted away)", got)
	}
	// 3 survivors: wm, liveKey, liveValue. deadKey/deadValue are gone.
	if got := ctx.Heap.Stats().NumObjects; got != 3 {
		t.Fatalf("NumObjects = %d, want 3", got)
	}
}

func TestWeakRefHolderItselfCanDieWithoutDanglingRegistry(t *testing.T) {
	ctx := NewContext(gc.DefaultConfig())

	target, err := ctx.NewPlainObject(0)
	if err != nil {
		t.Fatalf("alloc target: %v", err)
	}
	weakRef, err := ctx.NewWeakRef(target)
	if err != nil {
		t.Fatalf("alloc weak ref: %v", err)
	}
	// Root neither the WeakRef nor its target: both must die, and the
	// WeakRef holder must be pruned from ctx.weakRefs (not merely have its
	// target cleared), or the registry would carry a dangling pointer into
	// memory Sweeping already reclaimed.
	_ = weakRef

	ctx.Heap.Start(ctx)
	ctx.Heap.Finish()

	if got := ctx.Heap.Stats().NumObjects; got != 0 {
		t.Fatalf("NumObjects = %d, want 0", got)
	}
	if len(ctx.weakRefs) != 0 {
		t.Fatalf("weakRefs registry still holds %d entries after their holder died", len(ctx.weakRefs))
	}

	// A second cycle must not panic by touching the pruned registry.
	ctx.Heap.Start(ctx)
	ctx.Heap.Finish()
}
