package ffi

import (
	"log/slog"
	"sync"
)

// Ledger tracks the addresses of strings handed to the C caller so each one
// is released exactly once. It is safe for concurrent use.
type Ledger struct {
	mu          sync.Mutex
	outstanding map[uintptr]struct{}
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{outstanding: make(map[uintptr]struct{})}
}

// Issue records ptr as owned by the caller.
func (l *Ledger) Issue(ptr uintptr) {
	if ptr == 0 {
		return
	}
	l.mu.Lock()
	l.outstanding[ptr] = struct{}{}
	l.mu.Unlock()
}

// Release reports whether ptr was outstanding and forgets it. The caller
// frees the memory only when Release returns true.
func (l *Ledger) Release(ptr uintptr) bool {
	if ptr == 0 {
		return false
	}
	l.mu.Lock()
	_, ok := l.outstanding[ptr]
	delete(l.outstanding, ptr)
	l.mu.Unlock()

	if !ok {
		slog.Warn("Ignoring release of unknown or already released string", "ptr", ptr)
	}
	return ok
}

// Outstanding returns the number of strings not yet released.
func (l *Ledger) Outstanding() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.outstanding)
}
