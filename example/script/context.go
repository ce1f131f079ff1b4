package script

import (
	"unsafe"

	"github.com/scriptrt/heapgc/gc"
	"github.com/scriptrt/heapgc/gc/sysalloc"
)

// Context is a complete (if toy) embedder: a heap, a stack-root allocator,
// and a set of global roots, wired together the way a collaborator is
// expected to be. It implements gc.Collaborator and, because it tracks
// WeakRef/WeakMap objects, gc.WeakRefProcessor.
type Context struct {
	Heap    *gc.Heap
	Roots   *gc.RootStack
	Globals []gc.Value

	alloc sysalloc.Allocator // same allocator the heap was built with

	weakRefs []unsafe.Pointer // live KindWeakRef objects, for ProcessWeakRefs
	weakMaps []unsafe.Pointer // live KindWeakMap objects, for ProcessWeakRefs
}

// NewContext builds a Context with the given configuration and the most
// faithful available allocator.
func NewContext(cfg gc.Config) *Context {
	alloc := sysalloc.Default()
	ctx := &Context{alloc: alloc}
	ctx.Heap = gc.NewHeap(Descriptors(), cfg, alloc)
	capacity := cfg.StackBlockCapacity
	ctx.Roots = gc.NewRootStack(capacity)
	return ctx
}

// EnumerateRoots implements gc.RootProvider.
func (c *Context) EnumerateRoots(v *gc.Visitor) {
	for _, g := range c.Globals {
		v.VisitValueSlot(g)
	}
	c.Roots.VisitRoots(v)
}

// Trace implements gc.Tracer by delegating to the heap's own descriptor
// dispatch; a real embedder with multiple contexts per Kind space could
// instead switch on kind directly here.
func (c *Context) Trace(kind gc.Kind, obj unsafe.Pointer, v *gc.Visitor) {
	c.Heap.VisitPointers(obj, v)
}

// ProcessWeakRefs implements gc.WeakRefProcessor: clear WeakRef targets and
// compact WeakMap entries whose key or value did not survive marking.
//
// The registry itself (c.weakRefs, c.weakMaps) must also be pruned of
// holder objects that did not survive: this runs before Sweeping actually
// frees memory, so IsAlive is still a safe query, but any holder pointer
// retained past this point would dangle the moment sweep reclaims it.
// The embedder owns this registry and is responsible for keeping it in
// sync with object lifetime; the core never reaches into it on its own.
// A dead WeakMap's entries buffer is not part of its gc.Header-tracked
// body (see weakMap in kinds.go), so it is not freed by Sweeping either;
// this pass is also where that buffer gets released.
func (c *Context) ProcessWeakRefs(h *gc.Heap) {
	liveRefs := c.weakRefs[:0]
	for _, obj := range c.weakRefs {
		if !h.IsAlive(obj) {
			continue
		}
		w := (*weakRef)(obj)
		if w.target != nil && !h.IsAlive(w.target) {
			w.target = nil
		}
		liveRefs = append(liveRefs, obj)
	}
	c.weakRefs = liveRefs

	liveMaps := c.weakMaps[:0]
	for _, obj := range c.weakMaps {
		m := (*weakMap)(obj)
		if !h.IsAlive(obj) {
			c.freeWeakMapEntries(m)
			continue
		}
		entries := weakMapEntries(obj)
		write := 0
		for _, e := range entries {
			if h.IsAlive(e.key) && h.IsAlive(e.value) {
				entries[write] = e
				write++
			}
		}
		m.len = uintptr(write)
		liveMaps = append(liveMaps, obj)
	}
	c.weakMaps = liveMaps
}

func (c *Context) freeWeakMapEntries(m *weakMap) {
	if m.entries == nil {
		return
	}
	c.alloc.Free(m.entries, m.cap*unsafe.Sizeof(weakMapEntry{}))
	m.entries, m.len, m.cap = nil, 0, 0
}

// --- allocation helpers ---

func (c *Context) NewPlainObject(numSlots int) (unsafe.Pointer, error) {
	obj, err := c.Heap.Alloc(KindPlainObject, plainObjectBodySize(numSlots))
	if err != nil {
		return nil, err
	}
	(*plainObject)(obj).numSlots = uintptr(numSlots)
	return obj, nil
}

func PlainObjectSlot(obj unsafe.Pointer, i int) gc.Value {
	return plainObjectSlots(obj)[i]
}

// SetPlainObjectSlot stores a value into a plain object's slot, applying
// the write barrier because the object may already be black.
func (c *Context) SetPlainObjectSlot(obj unsafe.Pointer, i int, val gc.Value) {
	plainObjectSlots(obj)[i] = val
	if val.IsPointer() {
		c.Heap.WriteBarrier(val.Ptr)
	}
}

func (c *Context) NewString(data []byte) (unsafe.Pointer, error) {
	obj, err := c.Heap.Alloc(KindString, strBodySize(len(data)))
	if err != nil {
		return nil, err
	}
	(*str)(obj).length = uintptr(len(data))
	copy(strData(obj), data)
	return obj, nil
}

func StringBytes(obj unsafe.Pointer) []byte {
	return strData(obj)
}

func (c *Context) NewArray(items []gc.Value) (unsafe.Pointer, error) {
	obj, err := c.Heap.Alloc(KindArray, arrayBodySize(len(items)))
	if err != nil {
		return nil, err
	}
	(*array)(obj).numItems = uintptr(len(items))
	copy(arrayItems(obj), items)
	return obj, nil
}

func ArrayItems(obj unsafe.Pointer) []gc.Value {
	return arrayItems(obj)
}

// SetArrayItem stores a value into an existing array slot, applying the
// write barrier the same way SetPlainObjectSlot does. It exists because
// array construction sometimes needs to close a cycle (item i+1 does not
// exist yet when array i is built).
func (c *Context) SetArrayItem(obj unsafe.Pointer, i int, val gc.Value) {
	arrayItems(obj)[i] = val
	if val.IsPointer() {
		c.Heap.WriteBarrier(val.Ptr)
	}
}

func (c *Context) NewWeakRef(target unsafe.Pointer) (unsafe.Pointer, error) {
	obj, err := c.Heap.Alloc(KindWeakRef, unsafe.Sizeof(weakRef{}))
	if err != nil {
		return nil, err
	}
	(*weakRef)(obj).target = target
	c.weakRefs = append(c.weakRefs, obj)
	return obj, nil
}

func WeakRefTarget(obj unsafe.Pointer) unsafe.Pointer {
	return (*weakRef)(obj).target
}

func (c *Context) NewWeakMap() (unsafe.Pointer, error) {
	obj, err := c.Heap.Alloc(KindWeakMap, unsafe.Sizeof(weakMap{}))
	if err != nil {
		return nil, err
	}
	c.weakMaps = append(c.weakMaps, obj)
	return obj, nil
}

// WeakMapSet appends a key/value pair, growing the map's own entries
// buffer (via the same allocator the heap uses, not a Go slice) when its
// capacity is exceeded.
func (c *Context) WeakMapSet(obj unsafe.Pointer, key, value unsafe.Pointer) error {
	m := (*weakMap)(obj)
	if m.len == m.cap {
		newCap := m.cap * 2
		if newCap == 0 {
			newCap = 4
		}
		entrySize := unsafe.Sizeof(weakMapEntry{})
		newBuf, err := c.alloc.Alloc(newCap * entrySize)
		if err != nil {
			return err
		}
		if m.entries != nil {
			copy(unsafe.Slice((*weakMapEntry)(newBuf), int(m.len)), weakMapEntries(obj))
			c.alloc.Free(m.entries, m.cap*entrySize)
		}
		m.entries = newBuf
		m.cap = newCap
	}
	unsafe.Slice((*weakMapEntry)(m.entries), int(m.cap))[m.len] = weakMapEntry{key: key, value: value}
	m.len++
	return nil
}

func WeakMapLen(obj unsafe.Pointer) int {
	return len(weakMapEntries(obj))
}
