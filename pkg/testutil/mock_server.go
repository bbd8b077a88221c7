package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/lightforgemedia/go-highrise/pkg/codec"
	"github.com/lightforgemedia/go-highrise/pkg/model"
)

// Responder answers one decoded client message. A nil return sends nothing.
type Responder func(msg model.Outgoing) model.Incoming

// MockServer is a fake Highrise web API for testing clients. Every accepted
// connection is greeted with Hello, then each client frame is decoded,
// recorded on Received and passed to the responder.
type MockServer struct {
	T      *testing.T
	Server *httptest.Server
	WsURL  string

	// Received carries every decoded client message in arrival order.
	Received chan model.Outgoing

	mu          sync.Mutex
	conn        *websocket.Conn
	activeConn  context.CancelFunc
	hello       model.Incoming
	respond     Responder
	headers     []http.Header
	connections int
}

// NewMockServer starts a server that greets connections with meta and
// answers requests with DefaultResponder. A nil meta sends no greeting.
func NewMockServer(t *testing.T, meta *model.SessionMetadata) *MockServer {
	t.Helper()
	ms := &MockServer{
		T:        t,
		Received: make(chan model.Outgoing, 64),
		respond:  DefaultResponder,
	}
	if meta != nil {
		ms.hello = meta
	}

	ms.Server = httptest.NewServer(http.HandlerFunc(ms.serve))
	ms.WsURL = "ws" + ms.Server.URL[len("http"):]

	t.Cleanup(ms.Close)
	return ms
}

func (ms *MockServer) serve(w http.ResponseWriter, r *http.Request) {
	wsconn, err := websocket.Accept(w, r, nil)
	if err != nil {
		ms.T.Logf("MockServer: Accept error: %v", err)
		return
	}
	connCtx, connCancel := context.WithCancel(context.Background())
	defer connCancel()
	defer wsconn.CloseNow()

	ms.mu.Lock()
	hello := ms.hello
	ms.mu.Unlock()

	// The greeting goes out before the connection is published so Send
	// can never overtake it.
	if hello != nil {
		if err := ms.write(connCtx, wsconn, hello); err != nil {
			return
		}
	}

	ms.mu.Lock()
	ms.conn = wsconn
	ms.activeConn = connCancel
	ms.headers = append(ms.headers, r.Header.Clone())
	ms.connections++
	ms.mu.Unlock()

	defer func() {
		ms.mu.Lock()
		if ms.conn == wsconn {
			ms.conn = nil
			ms.activeConn = nil
		}
		ms.mu.Unlock()
	}()

	for {
		typ, frame, err := wsconn.Read(connCtx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		msg, err := codec.DecodeOutgoing(frame)
		if err != nil {
			ms.T.Logf("MockServer: undecodable client frame %s: %v", frame, err)
			continue
		}

		select {
		case ms.Received <- msg:
		default:
			ms.T.Logf("MockServer: Received buffer full, dropping %s", msg.Kind())
		}

		ms.mu.Lock()
		respond := ms.respond
		ms.mu.Unlock()
		if respond == nil {
			continue
		}
		if reply := respond(msg); reply != nil {
			if err := ms.write(connCtx, wsconn, reply); err != nil {
				return
			}
		}
	}
}

func (ms *MockServer) write(ctx context.Context, conn *websocket.Conn, msg model.Incoming) error {
	frame, err := codec.EncodeIncoming(msg)
	if err != nil {
		ms.T.Errorf("MockServer: encode %s: %v", msg.Kind(), err)
		return err
	}
	return conn.Write(ctx, websocket.MessageText, frame)
}

// SetHello replaces the first message sent on new connections, typically a
// *model.SessionMetadata or a *model.Error rejecting the session.
func (ms *MockServer) SetHello(msg model.Incoming) {
	if model.IsNil(msg) {
		msg = nil
	}
	ms.mu.Lock()
	ms.hello = msg
	ms.mu.Unlock()
}

// SetResponder replaces how client messages are answered.
func (ms *MockServer) SetResponder(r Responder) {
	ms.mu.Lock()
	ms.respond = r
	ms.mu.Unlock()
}

// Send pushes msg to the current connection. It is a no-op without one.
func (ms *MockServer) Send(msg model.Incoming) error {
	frame, err := codec.EncodeIncoming(msg)
	if err != nil {
		return err
	}
	return ms.SendRaw(frame)
}

// SendRaw pushes an arbitrary text frame to the current connection.
func (ms *MockServer) SendRaw(frame []byte) error {
	ms.mu.Lock()
	conn := ms.conn
	ms.mu.Unlock()
	if conn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, frame)
}

// Connections returns how many connections have been accepted.
func (ms *MockServer) Connections() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.connections
}

// Headers returns the handshake headers of the n-th accepted connection.
func (ms *MockServer) Headers(n int) http.Header {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if n < 0 || n >= len(ms.headers) {
		return nil
	}
	return ms.headers[n]
}

// Expect waits for the next client message of the given kind, skipping
// keepalives and anything else in between.
func (ms *MockServer) Expect(kind model.Kind, timeout time.Duration) model.Outgoing {
	ms.T.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case msg := <-ms.Received:
			if msg.Kind() == kind {
				return msg
			}
		case <-deadline:
			ms.T.Fatalf("MockServer: no %s within %v", kind, timeout)
			return nil
		}
	}
}

// CloseCurrentConnection drops the current connection.
func (ms *MockServer) CloseCurrentConnection() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.conn != nil {
		ms.conn.Close(websocket.StatusGoingAway, "mock server dropping connection")
		ms.conn = nil
	}
	if ms.activeConn != nil {
		ms.activeConn()
		ms.activeConn = nil
	}
}

// Close closes the mock server.
func (ms *MockServer) Close() {
	ms.CloseCurrentConnection()
	if ms.Server != nil {
		ms.Server.Close()
	}
}

// DefaultResponder acknowledges every correlated request with the matching
// response and answers keepalives.
func DefaultResponder(msg model.Outgoing) model.Incoming {
	switch m := msg.(type) {
	case *model.KeepaliveRequest:
		return &model.KeepaliveResponse{}
	case *model.IndicatorRequest:
		return &model.IndicatorResponse{RID: m.RID}
	case *model.ChannelRequest:
		return &model.ChannelResponse{RID: m.RID}
	case *model.TeleportRequest:
		return &model.TeleportResponse{RID: m.RID}
	case *model.GetRoomUsersRequest:
		return &model.GetRoomUsersResponse{RID: m.RID, Content: []model.RoomUser{}}
	default:
		return nil
	}
}
