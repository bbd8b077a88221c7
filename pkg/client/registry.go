package client

import (
	"context"
	"strconv"
	"sync"

	"github.com/lightforgemedia/go-highrise/pkg/model"
)

type outcome struct {
	msg model.Incoming
	err error
}

// Future is the one-shot delivery point of a pending request. It is
// completed at most once, by Registry.Deliver or Registry.Fail.
type Future struct {
	ch chan outcome
}

// Wait blocks until the future is completed or ctx ends. When ctx ends the
// error is its cause, so a deadline set with context.WithTimeoutCause
// surfaces as that cause.
func (f *Future) Wait(ctx context.Context) (model.Incoming, error) {
	select {
	case o := <-f.ch:
		return o.msg, o.err
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
}

// Registry tracks pending correlated requests by id. Ids are the decimal
// form of a counter starting at zero, so they are unique for the life of
// the registry.
type Registry struct {
	mu      sync.Mutex
	next    uint64
	waiters map[string]*Future
	closed  error
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{waiters: make(map[string]*Future)}
}

// Register allocates the next id and its future. If the registry has been
// failed the future is already completed with that error.
func (r *Registry) Register() (string, *Future) {
	f := &Future{ch: make(chan outcome, 1)}

	r.mu.Lock()
	defer r.mu.Unlock()
	id := strconv.FormatUint(r.next, 10)
	r.next++
	if r.closed != nil {
		f.ch <- outcome{err: r.closed}
		return id, f
	}
	r.waiters[id] = f
	return id, f
}

// Deliver completes the future registered under id and forgets it.
// It reports false when no such request is pending.
func (r *Registry) Deliver(id string, msg model.Incoming) bool {
	r.mu.Lock()
	f, ok := r.waiters[id]
	if ok {
		delete(r.waiters, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	f.ch <- outcome{msg: msg}
	return true
}

// Cancel forgets id without completing its future.
func (r *Registry) Cancel(id string) {
	r.mu.Lock()
	delete(r.waiters, id)
	r.mu.Unlock()
}

// Fail completes every pending future with err and makes later
// registrations fail the same way.
func (r *Registry) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed != nil {
		return
	}
	r.closed = err
	for id, f := range r.waiters {
		f.ch <- outcome{err: err}
		delete(r.waiters, id)
	}
}

// Len returns the number of pending requests.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.waiters)
}

// Pending reports whether id is still awaiting a response.
func (r *Registry) Pending(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.waiters[id]
	return ok
}
