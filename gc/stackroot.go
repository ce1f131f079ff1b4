package gc

// StackRoot is a pointer to a cell inside a RootStack's current block chain.
// The cell's address is stable for the scope's lifetime; the collector only
// reads the cell when visiting roots and never rewrites it. No pinning trick
// is required to keep that promise: Go's collector is non-moving, so a raw
// *Value into a block's backing array is already stable.
type StackRoot = *Value

// stackRootBlock is a fixed-capacity array of cells, chained via prev into
// earlier blocks.
type stackRootBlock struct {
	cells []Value
	prev  *stackRootBlock
}

func newStackRootBlock(capacity int, prev *stackRootBlock) *stackRootBlock {
	return &stackRootBlock{cells: make([]Value, capacity), prev: prev}
}

// RootStack is the stack-root scope allocator: a bumped, block-chained
// stack of Value cells holding temporary references. One RootStack
// belongs to one execution context.
type RootStack struct {
	capacity int
	current  *stackRootBlock
	idx      int // next free index within current.cells
	free     *stackRootBlock
}

// NewRootStack allocates the first block and returns a ready-to-use
// RootStack. capacity should normally come from Config.StackBlockCapacity.
func NewRootStack(capacity int) *RootStack {
	if capacity <= 0 {
		capacity = DefaultConfig().StackBlockCapacity
	}
	return &RootStack{
		capacity: capacity,
		current:  newStackRootBlock(capacity, nil),
	}
}

func (rs *RootStack) pushBlock() {
	if rs.free != nil {
		blk := rs.free
		rs.free = blk.prev
		blk.prev = rs.current
		rs.current = blk
	} else {
		rs.current = newStackRootBlock(rs.capacity, rs.current)
	}
	rs.idx = 0
}

// New allocates one cell in the innermost scope, writes value into it, and
// returns the cell's address.
func (rs *RootStack) New(value Value) StackRoot {
	if rs.idx == rs.capacity {
		rs.pushBlock()
	}
	cell := &rs.current.cells[rs.idx]
	*cell = value
	rs.idx++
	return cell
}

// Scope is a snapshot of (block, index) taken by Enter. Exiting restores
// next/end to this snapshot, returning any intermediate blocks to the free
// list for LIFO reuse on re-entry.
type Scope struct {
	rs    *RootStack
	block *stackRootBlock
	idx   int
}

// Enter snapshots the current bump position, opening a new nested scope.
func (rs *RootStack) Enter() Scope {
	return Scope{rs: rs, block: rs.current, idx: rs.idx}
}

// Exit restores the bump position to what it was at Enter, returning any
// blocks pushed since then to the free list. Cells in those blocks, and
// cells between the restored index and the old bump position in the
// surviving block, are dead after this call and must not be dereferenced.
func (s Scope) Exit() {
	rs := s.rs
	debugAssert(rs != nil, "exiting a zero-value Scope")
	for rs.current != s.block {
		popped := rs.current
		rs.current = popped.prev
		popped.prev = rs.free
		rs.free = popped
	}
	rs.idx = s.idx
}

// Escape re-roots value into the parent scope after exiting this one: (a)
// the caller must have already copied value out of any cell that is about
// to become invalid (a Go function argument evaluates before the call, so
// `scope.Escape(*someHandle)` does this automatically), (b) Exit runs,
// (c) a fresh cell is allocated in what is now the current (parent) scope.
// Tuples/optionals/results escape element-wise by calling Escape once per
// component.
func (s Scope) Escape(value Value) StackRoot {
	s.Exit()
	return s.rs.New(value)
}

// VisitRoots visits every live cell: [0, idx) of the current block, and all
// of every earlier block (earlier blocks are always fully populated, since
// a new block is only pushed once its predecessor is exactly full).
func (rs *RootStack) VisitRoots(v *Visitor) {
	for i := 0; i < rs.idx; i++ {
		v.VisitValueSlot(rs.current.cells[i])
	}
	for b := rs.current.prev; b != nil; b = b.prev {
		for i := range b.cells {
			v.VisitValueSlot(b.cells[i])
		}
	}
}
