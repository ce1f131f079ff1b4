package gc

import "errors"

// ErrOutOfMemory is returned by Alloc when the system allocator refuses a
// request. The core never retries internally: the immediate caller decides
// whether to Finish an in-flight cycle and retry once before surfacing the
// failure further.
var ErrOutOfMemory = errors.New("gc: out of memory")
