package mcp

import "sync/atomic"

// SearchLock provides non-blocking lock semantics using atomic operations.
// A search holds it for its whole run so that concurrent tool calls fail fast
// instead of competing for the same workers.
type SearchLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *SearchLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *SearchLock) Release() {
	l.state.Store(0)
}

// Held reports whether a search is running
func (l *SearchLock) Held() bool {
	return l.state.Load() == 1
}
