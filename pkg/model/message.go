// pkg/model/message.go
package model

import "reflect"

// Kind is the wire discriminant of a message. It is serialized in the
// "_type" field of every frame.
type Kind string

// Outgoing kinds.
const (
	KindChatRequest         Kind = "ChatRequest"
	KindEmoteRequest        Kind = "EmoteRequest"
	KindFloorHitRequest     Kind = "FloorHitRequest"
	KindKeepaliveRequest    Kind = "KeepaliveRequest"
	KindIndicatorRequest    Kind = "IndicatorRequest"
	KindChannelRequest      Kind = "ChannelRequest"
	KindTeleportRequest     Kind = "TeleportRequest"
	KindGetRoomUsersRequest Kind = "GetRoomUsersRequest"
)

// Incoming kinds.
const (
	KindError                Kind = "Error"
	KindIndicatorResponse    Kind = "IndicatorResponse"
	KindChannelResponse      Kind = "ChannelResponse"
	KindTeleportResponse     Kind = "TeleportResponse"
	KindGetRoomUsersResponse Kind = "GetRoomUsersResponse"
	KindKeepaliveResponse    Kind = "KeepaliveResponse"
	KindChatEvent            Kind = "ChatEvent"
	KindEmoteEvent           Kind = "EmoteEvent"
	KindUserJoinedEvent      Kind = "UserJoinedEvent"
	KindUserLeftEvent        Kind = "UserLeftEvent"
	KindTipReactionEvent     Kind = "TipReactionEvent"
	KindChannelEvent         Kind = "ChannelEvent"
	KindSessionMetadata      Kind = "SessionMetadata"
)

// OutgoingKinds lists every variant the client may send.
func OutgoingKinds() []Kind {
	return []Kind{
		KindChatRequest,
		KindEmoteRequest,
		KindFloorHitRequest,
		KindKeepaliveRequest,
		KindIndicatorRequest,
		KindChannelRequest,
		KindTeleportRequest,
		KindGetRoomUsersRequest,
	}
}

// IncomingKinds lists every variant the client may receive.
func IncomingKinds() []Kind {
	return []Kind{
		KindError,
		KindIndicatorResponse,
		KindChannelResponse,
		KindTeleportResponse,
		KindGetRoomUsersResponse,
		KindKeepaliveResponse,
		KindChatEvent,
		KindEmoteEvent,
		KindUserJoinedEvent,
		KindUserLeftEvent,
		KindTipReactionEvent,
		KindChannelEvent,
		KindSessionMetadata,
	}
}

// Message is any frame payload with a discriminant.
type Message interface {
	Kind() Kind
}

// Outgoing is the closed set of messages the client sends. The unexported
// marker keeps the set closed to this package.
type Outgoing interface {
	Message
	outgoing()
}

// Incoming is the closed set of messages the client receives.
type Incoming interface {
	Message
	incoming()
}

// Correlated is implemented by every variant that carries a correlation id
// ("rid"). An empty id means the message is not correlated.
type Correlated interface {
	RequestID() string
}

// CorrelatedOutgoing is a request that expects exactly one response.
type CorrelatedOutgoing interface {
	Outgoing
	Correlated
	SetRequestID(id string)
}

// RequestIDOf returns the correlation id of m, or "" if m carries none.
func RequestIDOf(m Message) string {
	if c, ok := m.(Correlated); ok {
		return c.RequestID()
	}
	return ""
}

// IsNil reports whether m is nil or a nil pointer held in the interface.
func IsNil(m Message) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
