package client

import (
	"context"
	"sync"

	"github.com/cskr/pubsub"
	"github.com/lightforgemedia/go-highrise/pkg/model"
)

const defaultTapCapacity = 32

// Tap fans routed incoming messages out to observers by kind. Publishing
// never blocks: an observer whose buffer is full misses the message.
type Tap struct {
	mu       sync.RWMutex
	ps       *pubsub.PubSub
	capacity int
	closed   bool
}

// NewTap returns a tap whose observers buffer capacity messages each.
func NewTap(capacity int) *Tap {
	if capacity <= 0 {
		capacity = defaultTapCapacity
	}
	return &Tap{ps: pubsub.New(capacity), capacity: capacity}
}

// Publish offers msg to every observer of its kind.
func (t *Tap) Publish(msg model.Incoming) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}
	t.ps.TryPub(msg, string(msg.Kind()))
}

// Events streams messages of the given kinds, or of every incoming kind
// when none are given, until ctx ends or the tap is closed.
func (t *Tap) Events(ctx context.Context, kinds ...model.Kind) <-chan model.Incoming {
	if len(kinds) == 0 {
		kinds = model.IncomingKinds()
	}
	topics := make([]string, len(kinds))
	for i, k := range kinds {
		topics[i] = string(k)
	}

	out := make(chan model.Incoming, t.capacity)

	t.mu.RLock()
	if t.closed {
		t.mu.RUnlock()
		close(out)
		return out
	}
	raw := t.ps.Sub(topics...)
	t.mu.RUnlock()

	go func() {
		defer close(out)
		done := ctx.Done()
		for {
			select {
			case <-done:
				// raw must be drained until pubsub closes it.
				done = nil
				go t.unsub(raw)
			case v, ok := <-raw:
				if !ok {
					return
				}
				if done == nil {
					continue
				}
				msg, ok := v.(model.Incoming)
				if !ok {
					continue
				}
				select {
				case out <- msg:
				case <-done:
				}
			}
		}
	}()
	return out
}

func (t *Tap) unsub(ch chan interface{}) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.closed {
		t.ps.Unsub(ch)
	}
}

// Close ends every Events stream. Publishing after Close is a no-op.
func (t *Tap) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	t.ps.Shutdown()
}
