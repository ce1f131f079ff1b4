//go:build !gcdebug

package gc

func debugAssert(cond bool, msg string) {}
