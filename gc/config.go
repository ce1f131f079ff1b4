package gc

// Config holds the collector's compile/init-time tuning parameters.
type Config struct {
	// MarkStepLimit bounds how many gray objects a single Marking Step call
	// pops and scans.
	MarkStepLimit int

	// SweepStepLimit bounds how many objects a single Sweeping Step call
	// advances the cursor over.
	SweepStepLimit int

	// InitialThreshold is the bytes_allocated level above which ShouldGC
	// reports true while Idle. Recomputed after every cycle as
	// max(InitialThreshold, 2*live_bytes).
	InitialThreshold uintptr

	// StackBlockCapacity is the number of cells in each stack-root block.
	StackBlockCapacity int

	// Stress forces Start+Finish before every allocation when set, for
	// shaking out rooting bugs. It takes effect only once the heap has a
	// collaborator (from SetCollaborator or an earlier Start); until then
	// allocations do not collect.
	Stress bool
}

// DefaultConfig returns reasonable defaults for embedding in a process with
// no special memory constraints.
func DefaultConfig() Config {
	return Config{
		MarkStepLimit:      100,
		SweepStepLimit:     100,
		InitialThreshold:   1 << 20, // 1 MiB
		StackBlockCapacity: 512,
		Stress:             false,
	}
}
