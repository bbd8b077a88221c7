// Package testutil provides test helpers for go-highrise: a mock Highrise
// server and polling utilities.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// WaitFor polls cond until it returns true or timeout elapses, failing
// the test on timeout.
func WaitFor(t *testing.T, timeout time.Duration, cond func() bool, msgAndArgs ...any) {
	t.Helper()
	require.Eventually(t, cond, timeout, 10*time.Millisecond, msgAndArgs...)
}

// Receive returns the next value from ch, failing the test on timeout.
func Receive[T any](t *testing.T, ch <-chan T, timeout time.Duration) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(timeout):
		var zero T
		t.Fatalf("Receive: nothing within %v", timeout)
		return zero
	}
}
