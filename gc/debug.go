//go:build gcdebug

package gc

// debugAssert panics on programmer misuse (a write-barrier on a nil target,
// stepping without start, double-start). These are assertion-class
// failures: caught here in debug builds, silently tolerated in release
// builds, but never corrupting heap state either way. Dangling stack roots
// are not among them: RootStack has no notion of an active scope, so a
// cell created outside any Enter is not reported.
func debugAssert(cond bool, msg string) {
	if !cond {
		panic("gc: assertion failed: " + msg)
	}
}
