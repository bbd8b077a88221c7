package client

import (
	"context"
	"sync"

	"github.com/lightforgemedia/go-highrise/pkg/model"
)

// Bot is the set of callbacks a session invokes. Each call runs in its own
// goroutine, so implementations must be safe for concurrent use.
// Embed BaseBot to pick up no-op defaults and override what you need.
type Bot interface {
	// OnStart runs after every successful connection, so it may run more
	// than once per process.
	OnStart(ctx context.Context, meta *model.SessionMetadata) error
	OnChat(ctx context.Context, user model.User, message string) error
	OnWhisper(ctx context.Context, user model.User, message string) error
	OnEmote(ctx context.Context, user model.User, emoteID string, receiver *model.User) error
	OnUserJoin(ctx context.Context, user model.User) error
	OnUserLeft(ctx context.Context, user model.User) error
	OnTip(ctx context.Context, sender, receiver model.User, item model.Item) error
	OnChannel(ctx context.Context, senderID, message string, tags []string) error

	// SetHighrise hands the bot the client of the current connection.
	SetHighrise(h *Client)
}

// BaseBot implements Bot with handlers that do nothing.
type BaseBot struct {
	mu sync.RWMutex
	h  *Client
}

var _ Bot = (*BaseBot)(nil)

func (b *BaseBot) SetHighrise(h *Client) {
	b.mu.Lock()
	b.h = h
	b.mu.Unlock()
}

// Highrise returns the client of the current connection, or nil before
// the first connection.
func (b *BaseBot) Highrise() *Client {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.h
}

func (*BaseBot) OnStart(context.Context, *model.SessionMetadata) error { return nil }
func (*BaseBot) OnChat(context.Context, model.User, string) error      { return nil }
func (*BaseBot) OnWhisper(context.Context, model.User, string) error   { return nil }
func (*BaseBot) OnEmote(context.Context, model.User, string, *model.User) error {
	return nil
}
func (*BaseBot) OnUserJoin(context.Context, model.User) error { return nil }
func (*BaseBot) OnUserLeft(context.Context, model.User) error { return nil }
func (*BaseBot) OnTip(context.Context, model.User, model.User, model.Item) error {
	return nil
}
func (*BaseBot) OnChannel(context.Context, string, string, []string) error { return nil }
