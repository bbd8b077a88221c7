// pkg/client/client.go
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/lightforgemedia/go-highrise/pkg/codec"
	"github.com/lightforgemedia/go-highrise/pkg/model"
)

// FrameWriter sends one encoded frame to the server. Implementations must
// be safe for concurrent use.
type FrameWriter interface {
	WriteFrame(ctx context.Context, frame []byte) error
}

// Client is the facade a bot uses to act in the room. One Client serves
// one connection: it encodes outgoing messages, correlates responses and
// dispatches events to the bot.
type Client struct {
	config   clientConfig
	writer   FrameWriter
	bot      Bot
	registry *Registry
	tasks    *supervisor
	logger   *slog.Logger

	selfMu sync.RWMutex
	selfID string

	closed atomic.Bool
}

// New returns a client writing to w and dispatching events to bot. The
// lifetime of handler goroutines and delayed callbacks is bound to ctx.
// bot may be nil, in which case events are dropped.
func New(ctx context.Context, w FrameWriter, bot Bot, opts ...Option) *Client {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = NewRegistry()
	}
	if bot == nil {
		bot = &BaseBot{}
	}

	logger := cfg.logger.With("component", "highrise")
	c := &Client{
		config:   cfg,
		writer:   w,
		bot:      bot,
		registry: cfg.registry,
		logger:   logger,
		tasks:    newSupervisor(ctx, cfg.failurePolicy, logger),
	}
	bot.SetHighrise(c)
	return c
}

// Registry returns the registry correlating this client's requests.
func (c *Client) Registry() *Registry { return c.registry }

// SelfID returns the bot's own user id, known once SessionMetadata has
// been routed.
func (c *Client) SelfID() string {
	c.selfMu.RLock()
	defer c.selfMu.RUnlock()
	return c.selfID
}

func (c *Client) setSelfID(id string) {
	c.selfMu.Lock()
	c.selfID = id
	c.selfMu.Unlock()
}

// Done is closed when the client is closed or a fatal failure stopped it.
func (c *Client) Done() <-chan struct{} { return c.tasks.Done() }

// Close fails every pending request with ErrClosed and cancels running
// handlers and callbacks. It does not close the underlying transport.
func (c *Client) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.registry.Fail(ErrClosed)
	c.tasks.Stop()
}

// Wait blocks until every handler and callback has returned. It must be
// preceded by Close or by cancellation of the client's context. Under
// FailureFatal it returns the first failure.
func (c *Client) Wait() error {
	err := c.tasks.Wait()
	if err != nil && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Chat sends a message to the whole room.
func (c *Client) Chat(ctx context.Context, message string) error {
	return c.Send(ctx, &model.ChatRequest{Message: message})
}

// SendWhisper sends a message only userID can see.
func (c *Client) SendWhisper(ctx context.Context, userID, message string) error {
	return c.Send(ctx, &model.ChatRequest{Message: message, WhisperTargetID: userID})
}

// SendEmote performs an emote. targetUserID may be empty.
func (c *Client) SendEmote(ctx context.Context, emoteID, targetUserID string) error {
	return c.Send(ctx, &model.EmoteRequest{EmoteID: emoteID, TargetUserID: targetUserID})
}

// WalkTo walks the bot to dest.
func (c *Client) WalkTo(ctx context.Context, dest model.Destination, facing model.Facing) error {
	if facing == "" {
		facing = model.FacingFrontRight
	}
	if !facing.Valid() {
		return fmt.Errorf("highrise: invalid facing %q", facing)
	}
	return c.Send(ctx, &model.FloorHitRequest{Destination: dest, Facing: facing})
}

// Keepalive pings the server so an idle connection is not dropped.
func (c *Client) Keepalive(ctx context.Context) error {
	return c.Send(ctx, &model.KeepaliveRequest{})
}

// SetIndicator sets the icon above the bot, or clears it when icon is nil.
func (c *Client) SetIndicator(ctx context.Context, icon *string) (*model.IndicatorResponse, error) {
	return RequestAs[*model.IndicatorResponse](ctx, c, &model.IndicatorRequest{Icon: icon})
}

// SendChannel sends a hidden message to the other bots in the room.
func (c *Client) SendChannel(ctx context.Context, message string, tags ...string) (*model.ChannelResponse, error) {
	if tags == nil {
		tags = []string{}
	}
	return RequestAs[*model.ChannelResponse](ctx, c, &model.ChannelRequest{Message: message, Tags: tags})
}

// Teleport moves userID to dest.
func (c *Client) Teleport(ctx context.Context, userID string, dest model.Position) (*model.TeleportResponse, error) {
	return RequestAs[*model.TeleportResponse](ctx, c, &model.TeleportRequest{UserID: userID, Destination: dest})
}

// GetRoomUsers lists everyone in the room with their position.
func (c *Client) GetRoomUsers(ctx context.Context) ([]model.RoomUser, error) {
	resp, err := RequestAs[*model.GetRoomUsersResponse](ctx, c, &model.GetRoomUsersRequest{})
	if err != nil {
		return nil, err
	}
	return resp.Content, nil
}

// Send encodes msg and writes it without waiting for any response.
func (c *Client) Send(ctx context.Context, msg model.Outgoing) error {
	if c.closed.Load() {
		return ErrClosed
	}
	frame, err := codec.EncodeOutgoing(msg)
	if err != nil {
		return err
	}
	if err := c.writer.WriteFrame(ctx, frame); err != nil {
		return fmt.Errorf("highrise: send %s: %w", msg.Kind(), err)
	}
	return nil
}
