// Package transport carries encoded frames between the client and the
// Highrise web API.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

const (
	// DefaultURL is the Highrise bot web API endpoint.
	DefaultURL = "wss://highrise.game/web/webapi"

	defaultReadLimit    = 1 << 20
	defaultWriteTimeout = 5 * time.Second
)

// Transport moves whole frames. WriteFrame may be called concurrently;
// ReadFrame must be called from a single goroutine.
type Transport interface {
	WriteFrame(ctx context.Context, frame []byte) error
	ReadFrame(ctx context.Context) ([]byte, error)
	Close() error
}

// ErrBinaryFrame is returned when the server sends a binary message.
var ErrBinaryFrame = errors.New("transport: unexpected binary frame")

// DialOptions configures Dial.
type DialOptions struct {
	RoomID       string
	APIToken     string
	HTTPClient   *http.Client
	ReadLimit    int64
	WriteTimeout time.Duration
}

// WebSocket is a Transport over a coder/websocket connection.
type WebSocket struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

var _ Transport = (*WebSocket)(nil)

// Dial opens a websocket to url, authenticating with the room-id and
// api-token headers.
func Dial(ctx context.Context, url string, opts DialOptions) (*WebSocket, error) {
	header := http.Header{}
	header.Set("room-id", opts.RoomID)
	header.Set("api-token", opts.APIToken)

	conn, resp, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPClient: opts.HTTPClient,
		HTTPHeader: header,
	})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("transport: dial %s: %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("transport: dial %s: %w", url, err)
	}

	readLimit := opts.ReadLimit
	if readLimit <= 0 {
		readLimit = defaultReadLimit
	}
	conn.SetReadLimit(readLimit)

	return NewWebSocket(conn, opts.WriteTimeout), nil
}

// NewWebSocket wraps an established connection.
func NewWebSocket(conn *websocket.Conn, writeTimeout time.Duration) *WebSocket {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &WebSocket{conn: conn, writeTimeout: writeTimeout}
}

func (w *WebSocket) WriteFrame(ctx context.Context, frame []byte) error {
	ctx, cancel := context.WithTimeout(ctx, w.writeTimeout)
	defer cancel()
	return w.conn.Write(ctx, websocket.MessageText, frame)
}

func (w *WebSocket) ReadFrame(ctx context.Context) ([]byte, error) {
	typ, data, err := w.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	if typ != websocket.MessageText {
		return nil, ErrBinaryFrame
	}
	return data, nil
}

func (w *WebSocket) Close() error {
	return w.conn.Close(websocket.StatusNormalClosure, "")
}

// IsNormalClose reports whether err is the peer closing the connection
// normally.
func IsNormalClose(err error) bool {
	return websocket.CloseStatus(err) == websocket.StatusNormalClosure
}
