// Package session keeps a bot connected to a Highrise room. A Runner dials
// the web API, performs the handshake, keeps the connection alive and feeds
// every frame to a fresh client.Client, reconnecting at a bounded rate
// when the connection drops.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/lightforgemedia/go-highrise/pkg/client"
	"github.com/lightforgemedia/go-highrise/pkg/codec"
	"github.com/lightforgemedia/go-highrise/pkg/model"
	"github.com/lightforgemedia/go-highrise/pkg/transport"
)

const (
	defaultKeepaliveInterval = 15 * time.Second
	defaultHandshakeTimeout  = 30 * time.Second
	defaultReconnectBurst    = 5
	defaultReconnectRecharge = 5 * time.Second
	framePreviewLimit        = 256
)

// ErrSessionRejected is returned by Run when the server answers the
// handshake with an error. The *model.Error is wrapped alongside it.
var ErrSessionRejected = errors.New("session: rejected by server")

// Dialer opens a transport to url.
type Dialer func(ctx context.Context, url string, opts transport.DialOptions) (transport.Transport, error)

// Options configures a Runner. Zero values select the defaults.
type Options struct {
	URL      string
	RoomID   string
	APIToken string

	Logger *slog.Logger

	// RequestTimeout of zero keeps the client default; negative disables it.
	RequestTimeout    time.Duration
	KeepaliveInterval time.Duration
	HandshakeTimeout  time.Duration
	ReconnectBurst    int
	ReconnectRecharge time.Duration
	FailurePolicy     client.FailurePolicy
	Tap               *client.Tap
	Dial              Dialer
}

// Runner drives one bot through successive connections.
type Runner struct {
	opts    Options
	bot     client.Bot
	logger  *slog.Logger
	limiter *rate.Limiter
}

// NewRunner returns a runner for bot.
func NewRunner(bot client.Bot, opts Options) *Runner {
	if opts.URL == "" {
		opts.URL = transport.DefaultURL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.KeepaliveInterval <= 0 {
		opts.KeepaliveInterval = defaultKeepaliveInterval
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = defaultHandshakeTimeout
	}
	if opts.ReconnectBurst <= 0 {
		opts.ReconnectBurst = defaultReconnectBurst
	}
	if opts.ReconnectRecharge <= 0 {
		opts.ReconnectRecharge = defaultReconnectRecharge
	}
	if opts.Dial == nil {
		opts.Dial = func(ctx context.Context, url string, o transport.DialOptions) (transport.Transport, error) {
			return transport.Dial(ctx, url, o)
		}
	}
	return &Runner{
		opts:    opts,
		bot:     bot,
		logger:  opts.Logger.With("component", "session", "room", opts.RoomID),
		limiter: rate.NewLimiter(rate.Every(opts.ReconnectRecharge), opts.ReconnectBurst),
	}
}

// Run connects and reconnects until ctx ends, the server rejects the
// session, or a handler fails under client.FailureFatal. It returns nil
// when ctx ends.
func (r *Runner) Run(ctx context.Context) error {
	for {
		if err := r.limiter.Wait(ctx); err != nil {
			// The next attempt would fall after ctx's deadline.
			<-ctx.Done()
			return nil
		}
		retry, err := r.connect(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if !retry {
			return err
		}
		r.logger.Warn("Connection lost, reconnecting", "error", err)
	}
}

// connect runs one connection to completion. retry reports whether the
// failure is worth another attempt.
func (r *Runner) connect(ctx context.Context) (retry bool, err error) {
	logger := r.logger.With("connection", uuid.NewString())

	tr, err := r.opts.Dial(ctx, r.opts.URL, transport.DialOptions{RoomID: r.opts.RoomID, APIToken: r.opts.APIToken})
	if err != nil {
		return true, err
	}
	defer tr.Close()

	meta, err := r.handshake(ctx, tr)
	if err != nil {
		var perr *model.Error
		if errors.As(err, &perr) {
			logger.Error("Session rejected", "message", perr.Message)
			return false, err
		}
		return true, err
	}
	logger.Info("Connected", "user_id", meta.UserID, "room_name", meta.RoomInfo.RoomName)

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := []client.Option{
		client.WithLogger(logger),
		client.WithFailurePolicy(r.opts.FailurePolicy),
	}
	if r.opts.RequestTimeout != 0 {
		opts = append(opts, client.WithRequestTimeout(r.opts.RequestTimeout))
	}
	if r.opts.Tap != nil {
		opts = append(opts, client.WithEventTap(r.opts.Tap))
	}
	c := client.New(connCtx, tr, r.bot, opts...)

	go func() {
		<-c.Done()
		cancel()
	}()
	go r.keepalive(connCtx, c, logger)

	c.Route(meta)
	readErr := r.readLoop(connCtx, tr, c, logger)

	c.Close()
	if err := c.Wait(); err != nil {
		return false, err
	}
	return true, readErr
}

func (r *Runner) handshake(ctx context.Context, tr transport.Transport) (*model.SessionMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.HandshakeTimeout)
	defer cancel()

	frame, err := tr.ReadFrame(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: handshake: %w", err)
	}
	msg, err := codec.DecodeIncoming(frame)
	if err != nil {
		return nil, fmt.Errorf("session: handshake: %w", err)
	}
	switch m := msg.(type) {
	case *model.SessionMetadata:
		return m, nil
	case *model.Error:
		return nil, fmt.Errorf("%w: %w", ErrSessionRejected, m)
	default:
		return nil, fmt.Errorf("session: handshake: expected SessionMetadata, got %s", msg.Kind())
	}
}

func (r *Runner) readLoop(ctx context.Context, tr transport.Transport, c *client.Client, logger *slog.Logger) error {
	for {
		frame, err := tr.ReadFrame(ctx)
		if err != nil {
			if errors.Is(err, transport.ErrBinaryFrame) {
				logger.Warn("Ignoring binary frame")
				continue
			}
			return err
		}

		msg, err := codec.DecodeIncoming(frame)
		if err != nil {
			var decErr *codec.DecodeError
			if errors.As(err, &decErr) {
				logger.Warn("Dropping undecodable frame", "kind", decErr.Kind, "error", decErr.Err, "frame", preview(frame))
			} else {
				logger.Warn("Dropping undecodable frame", "error", err)
			}
			continue
		}
		c.Route(msg)
	}
}

func (r *Runner) keepalive(ctx context.Context, c *client.Client, logger *slog.Logger) {
	ticker := time.NewTicker(r.opts.KeepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Keepalive(ctx); err != nil {
				if ctx.Err() == nil {
					logger.Warn("Keepalive failed", "error", err)
				}
				return
			}
		}
	}
}

func preview(frame []byte) string {
	if len(frame) <= framePreviewLimit {
		return string(frame)
	}
	return string(frame[:framePreviewLimit]) + "..."
}
