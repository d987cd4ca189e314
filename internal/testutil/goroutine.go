package testutil

import (
	"runtime"
	"testing"
	"time"
)

const settleTimeout = 10 * time.Second

// AssertNoGoroutineLeaks checks that the goroutine count returns to baseline+margin
// before the settle timeout.
func AssertNoGoroutineLeaks(t *testing.T, baseline int, margin int) {
	t.Helper()
	deadline := time.Now().Add(settleTimeout)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= baseline+margin {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Errorf("goroutine leak: baseline=%d, current=%d, margin=%d", baseline, runtime.NumGoroutine(), margin)
}

// CheckGoroutines snapshots the goroutine count and registers a cleanup that
// asserts it settles back.
func CheckGoroutines(t *testing.T, margin int) {
	t.Helper()
	baseline := runtime.NumGoroutine()
	t.Cleanup(func() { AssertNoGoroutineLeaks(t, baseline, margin) })
}
