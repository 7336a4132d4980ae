package transport

import (
	"context"
	"sync"
)

// InFlightRegistry tracks running analyses by request ID so that a server
// shutdown can cancel them, which in turn kills their interpreter
// processes. Clients may reuse a request ID, so several entries can share
// one.
//
// All methods are safe for concurrent access.
type InFlightRegistry struct {
	mu      sync.Mutex
	next    uint64
	entries map[uint64]inFlight
}

type inFlight struct {
	id     string
	cancel context.CancelFunc
}

// NewInFlightRegistry creates a new empty registry.
func NewInFlightRegistry() *InFlightRegistry {
	return &InFlightRegistry{
		entries: make(map[uint64]inFlight),
	}
}

// Track derives a cancellable context for the request id and registers
// it. The returned done function must be called when the request ends.
func (r *InFlightRegistry) Track(ctx context.Context, id string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	key := r.next
	r.next++
	r.entries[key] = inFlight{id: id, cancel: cancel}
	r.mu.Unlock()

	return ctx, func() {
		r.mu.Lock()
		delete(r.entries, key)
		r.mu.Unlock()
		cancel()
	}
}

// Cancel cancels the in-flight requests carrying id. Returns false if
// none is registered.
func (r *InFlightRegistry) Cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	for key, e := range r.entries {
		if e.id == id {
			e.cancel()
			delete(r.entries, key)
			found = true
		}
	}
	return found
}

// CancelAll cancels every in-flight request and returns how many there
// were.
func (r *InFlightRegistry) CancelAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.entries)
	for key, e := range r.entries {
		e.cancel()
		delete(r.entries, key)
	}
	return n
}

// Len returns the number of in-flight requests.
func (r *InFlightRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
