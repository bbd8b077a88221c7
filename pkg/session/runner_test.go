package session_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lightforgemedia/go-highrise/pkg/client"
	"github.com/lightforgemedia/go-highrise/pkg/model"
	"github.com/lightforgemedia/go-highrise/pkg/session"
	"github.com/lightforgemedia/go-highrise/pkg/testutil"
	"github.com/lightforgemedia/go-highrise/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

var botMeta = &model.SessionMetadata{
	UserID:   "bot-1",
	RoomInfo: model.RoomInfo{OwnerID: "owner", RoomName: "Lobby"},
}

type teleportBot struct {
	client.BaseBot
	starts    chan *model.SessionMetadata
	chats     chan string
	teleports chan error
}

func newTeleportBot() *teleportBot {
	return &teleportBot{
		starts:    make(chan *model.SessionMetadata, 8),
		chats:     make(chan string, 8),
		teleports: make(chan error, 8),
	}
}

func (b *teleportBot) OnStart(_ context.Context, meta *model.SessionMetadata) error {
	b.starts <- meta
	return nil
}

func (b *teleportBot) OnChat(ctx context.Context, user model.User, message string) error {
	b.chats <- message
	if message == "beam me" {
		_, err := b.Highrise().Teleport(ctx, user.ID, model.Position{X: 1, Y: 0, Z: 1, Facing: model.FacingFrontLeft})
		b.teleports <- err
	}
	return nil
}

func startRunner(t *testing.T, bot client.Bot, opts session.Options) (context.CancelFunc, <-chan error) {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = testLogger
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		done <- session.NewRunner(bot, opts).Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			t.Error("Runner did not stop")
		}
	})
	return cancel, done
}

func TestRunnerEndToEnd(t *testing.T) {
	ms := testutil.NewMockServer(t, botMeta)
	bot := newTeleportBot()
	startRunner(t, bot, session.Options{URL: ms.WsURL, RoomID: "room-1", APIToken: "token"})

	meta := testutil.Receive(t, bot.starts, 2*time.Second)
	assert.Equal(t, botMeta, meta)
	testutil.WaitFor(t, time.Second, func() bool { return ms.Connections() == 1 })
	assert.Equal(t, "room-1", ms.Headers(0).Get("room-id"))
	assert.Equal(t, "token", ms.Headers(0).Get("api-token"))

	t.Run("Own chat is ignored", func(t *testing.T) {
		require.NoError(t, ms.Send(&model.ChatEvent{User: model.User{ID: "bot-1"}, Message: "echo"}))
		require.NoError(t, ms.Send(&model.ChatEvent{User: model.User{ID: "u1"}, Message: "hello"}))
		assert.Equal(t, "hello", testutil.Receive(t, bot.chats, 2*time.Second))
	})

	t.Run("Undecodable frames are skipped", func(t *testing.T) {
		require.NoError(t, ms.SendRaw([]byte(`{"_type":"DanceBattleEvent"}`)))
		require.NoError(t, ms.SendRaw([]byte(`not json`)))
		require.NoError(t, ms.Send(&model.ChatEvent{User: model.User{ID: "u1"}, Message: "still here"}))
		assert.Equal(t, "still here", testutil.Receive(t, bot.chats, 2*time.Second))
	})

	t.Run("Handlers can make correlated requests", func(t *testing.T) {
		require.NoError(t, ms.Send(&model.ChatEvent{User: model.User{ID: "u1"}, Message: "beam me"}))
		testutil.Receive(t, bot.chats, 2*time.Second)

		req := ms.Expect(model.KindTeleportRequest, 2*time.Second).(*model.TeleportRequest)
		assert.Equal(t, "u1", req.UserID)
		assert.NoError(t, testutil.Receive(t, bot.teleports, 2*time.Second))
	})
}

func TestRunnerReconnects(t *testing.T) {
	ms := testutil.NewMockServer(t, botMeta)
	bot := newTeleportBot()
	startRunner(t, bot, session.Options{URL: ms.WsURL, ReconnectRecharge: 10 * time.Millisecond})

	first := testutil.Receive(t, bot.starts, 2*time.Second)
	firstClient := bot.Highrise()
	ms.CloseCurrentConnection()

	second := testutil.Receive(t, bot.starts, 2*time.Second)
	assert.Equal(t, first, second)
	testutil.WaitFor(t, time.Second, func() bool { return ms.Connections() == 2 })
	assert.NotSame(t, firstClient, bot.Highrise())
}

func TestRunnerSendsKeepalives(t *testing.T) {
	ms := testutil.NewMockServer(t, botMeta)
	startRunner(t, newTeleportBot(), session.Options{URL: ms.WsURL, KeepaliveInterval: 20 * time.Millisecond})

	ms.Expect(model.KindKeepaliveRequest, 2*time.Second)
	ms.Expect(model.KindKeepaliveRequest, 2*time.Second)
}

func TestRunnerStopsWhenRejected(t *testing.T) {
	ms := testutil.NewMockServer(t, nil)
	ms.SetHello(&model.Error{Message: "invalid api token"})

	bot := newTeleportBot()
	_, done := startRunner(t, bot, session.Options{URL: ms.WsURL})

	var err error
	select {
	case err = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Runner kept going after rejection")
	}
	assert.ErrorIs(t, err, session.ErrSessionRejected)

	var perr *model.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "invalid api token", perr.Message)
	testutil.WaitFor(t, time.Second, func() bool { return ms.Connections() == 1 })
	assert.Empty(t, bot.starts)
}

type failingBot struct {
	client.BaseBot
}

func (*failingBot) OnUserJoin(context.Context, model.User) error {
	return errors.New("cannot greet")
}

func TestRunnerStopsOnFatalHandlerFailure(t *testing.T) {
	ms := testutil.NewMockServer(t, botMeta)
	_, done := startRunner(t, &failingBot{}, session.Options{URL: ms.WsURL, FailurePolicy: client.FailureFatal})

	testutil.WaitFor(t, 2*time.Second, func() bool { return ms.Connections() == 1 })
	require.NoError(t, ms.Send(&model.UserJoinedEvent{User: model.User{ID: "u1"}}))

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot greet")
	case <-time.After(2 * time.Second):
		t.Fatal("Runner did not stop on fatal failure")
	}
}

type flakyTransport struct{}

func (flakyTransport) WriteFrame(context.Context, []byte) error { return nil }
func (flakyTransport) ReadFrame(context.Context) ([]byte, error) {
	return nil, errors.New("connection reset")
}
func (flakyTransport) Close() error { return nil }

func TestRunnerThrottlesReconnects(t *testing.T) {
	var attempts atomic.Int32
	dial := func(context.Context, string, transport.DialOptions) (transport.Transport, error) {
		attempts.Add(1)
		return flakyTransport{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	runner := session.NewRunner(nil, session.Options{
		Logger:            testLogger,
		Dial:              dial,
		ReconnectBurst:    5,
		ReconnectRecharge: time.Hour,
	})
	require.NoError(t, runner.Run(ctx))
	assert.Equal(t, int32(5), attempts.Load())
}

func TestRunnerEventTap(t *testing.T) {
	ms := testutil.NewMockServer(t, botMeta)
	tap := client.NewTap(8)
	t.Cleanup(tap.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := tap.Events(ctx, model.KindSessionMetadata, model.KindUserJoinedEvent)

	startRunner(t, newTeleportBot(), session.Options{URL: ms.WsURL, Tap: tap})

	first := testutil.Receive(t, events, 2*time.Second)
	assert.Equal(t, model.KindSessionMetadata, first.Kind())
	testutil.WaitFor(t, time.Second, func() bool { return ms.Connections() == 1 })

	require.NoError(t, ms.Send(&model.UserJoinedEvent{User: model.User{ID: "u3"}}))
	joined := testutil.Receive(t, events, 2*time.Second)
	assert.Equal(t, &model.UserJoinedEvent{User: model.User{ID: "u3"}}, joined)
}
