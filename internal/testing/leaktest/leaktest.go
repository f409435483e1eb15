// Package leaktest provides goroutine leak detection for tests of the
// long-running components: the worker pool, the scheduler, and the
// reconciler loop.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

// Checker records the goroutine count at construction and compares it after
// the code under test has shut down.
type Checker struct {
	before int
	t      testing.TB
}

// NewChecker snapshots the current goroutine count.
func NewChecker(t testing.TB) *Checker {
	t.Helper()

	// Let background goroutines from earlier tests settle first
	runtime.Gosched()
	time.Sleep(10 * time.Millisecond)

	return &Checker{
		before: runtime.NumGoroutine(),
		t:      t,
	}
}

// Check fails the test when more than tolerance goroutines outlived the code
// under test.
func (c *Checker) Check(tolerance int) {
	c.t.Helper()

	runtime.Gosched()
	time.Sleep(50 * time.Millisecond)
	runtime.GC()
	time.Sleep(50 * time.Millisecond)

	after := runtime.NumGoroutine()
	leaked := after - c.before

	if leaked > tolerance {
		c.t.Errorf("goroutine leak: before=%d, after=%d, leaked=%d (tolerance=%d)",
			c.before, after, leaked, tolerance)
	}
}

// CheckNone runs fn and fails the test if fn leaves any goroutine behind.
func CheckNone(t *testing.T, fn func()) {
	t.Helper()

	checker := NewChecker(t)
	fn()
	checker.Check(0)
}
