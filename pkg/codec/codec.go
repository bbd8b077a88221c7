// Package codec maps Highrise messages to and from JSON frames.
//
// Every frame is a JSON object whose "_type" field names the variant. The
// decoders peek at that field first and then unmarshal the whole object into
// the matching variant; the encoders marshal the variant and stamp the field.
// The variant sets are closed: a frame naming a kind this package does not
// know fails with a *DecodeError rather than being dropped.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lightforgemedia/go-highrise/pkg/model"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// TagField is the name of the discriminant field in every frame.
const TagField = "_type"

var (
	// ErrMalformedFrame means the frame is not a JSON object.
	ErrMalformedFrame = errors.New("codec: frame is not a JSON object")
	// ErrMissingKind means the frame has no string "_type" field.
	ErrMissingKind = errors.New("codec: frame has no " + TagField + " field")
	// ErrUnknownKind means "_type" names no variant of the expected universe.
	ErrUnknownKind = errors.New("codec: unknown message kind")
)

// DecodeError reports a frame that could not be turned into a message.
type DecodeError struct {
	Kind  model.Kind // empty when the tag itself could not be read
	Frame []byte
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("codec: decode frame: %v", e.Err)
	}
	return fmt.Sprintf("codec: decode %s: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var outgoingTable = map[model.Kind]func() model.Outgoing{
	model.KindChatRequest:         func() model.Outgoing { return &model.ChatRequest{} },
	model.KindEmoteRequest:        func() model.Outgoing { return &model.EmoteRequest{} },
	model.KindFloorHitRequest:     func() model.Outgoing { return &model.FloorHitRequest{} },
	model.KindKeepaliveRequest:    func() model.Outgoing { return &model.KeepaliveRequest{} },
	model.KindIndicatorRequest:    func() model.Outgoing { return &model.IndicatorRequest{} },
	model.KindChannelRequest:      func() model.Outgoing { return &model.ChannelRequest{} },
	model.KindTeleportRequest:     func() model.Outgoing { return &model.TeleportRequest{} },
	model.KindGetRoomUsersRequest: func() model.Outgoing { return &model.GetRoomUsersRequest{} },
}

var incomingTable = map[model.Kind]func() model.Incoming{
	model.KindError:                func() model.Incoming { return &model.Error{} },
	model.KindIndicatorResponse:    func() model.Incoming { return &model.IndicatorResponse{} },
	model.KindChannelResponse:      func() model.Incoming { return &model.ChannelResponse{} },
	model.KindTeleportResponse:     func() model.Incoming { return &model.TeleportResponse{} },
	model.KindGetRoomUsersResponse: func() model.Incoming { return &model.GetRoomUsersResponse{} },
	model.KindKeepaliveResponse:    func() model.Incoming { return &model.KeepaliveResponse{} },
	model.KindChatEvent:            func() model.Incoming { return &model.ChatEvent{} },
	model.KindEmoteEvent:           func() model.Incoming { return &model.EmoteEvent{} },
	model.KindUserJoinedEvent:      func() model.Incoming { return &model.UserJoinedEvent{} },
	model.KindUserLeftEvent:        func() model.Incoming { return &model.UserLeftEvent{} },
	model.KindTipReactionEvent:     func() model.Incoming { return &model.TipReactionEvent{} },
	model.KindChannelEvent:         func() model.Incoming { return &model.ChannelEvent{} },
	model.KindSessionMetadata:      func() model.Incoming { return &model.SessionMetadata{} },
}

// EncodeOutgoing serializes a message the client sends.
func EncodeOutgoing(m model.Outgoing) ([]byte, error) {
	if model.IsNil(m) {
		return nil, errors.New("codec: cannot encode nil message")
	}
	if _, ok := outgoingTable[m.Kind()]; !ok {
		return nil, fmt.Errorf("codec: encode %s: %w", m.Kind(), ErrUnknownKind)
	}
	return encode(m)
}

// EncodeIncoming serializes a message the client receives. Servers and
// tests use it; the client itself only decodes this universe.
func EncodeIncoming(m model.Incoming) ([]byte, error) {
	if model.IsNil(m) {
		return nil, errors.New("codec: cannot encode nil message")
	}
	if _, ok := incomingTable[m.Kind()]; !ok {
		return nil, fmt.Errorf("codec: encode %s: %w", m.Kind(), ErrUnknownKind)
	}
	return encode(m)
}

// DecodeIncoming parses a frame received from the server.
func DecodeIncoming(frame []byte) (model.Incoming, error) {
	return decode(frame, incomingTable)
}

// DecodeOutgoing parses a frame sent by a client.
func DecodeOutgoing(frame []byte) (model.Outgoing, error) {
	return decode(frame, outgoingTable)
}

// PeekKind returns the discriminant of a frame without decoding the body.
func PeekKind(frame []byte) (model.Kind, error) {
	if !gjson.ValidBytes(frame) || !gjson.ParseBytes(frame).IsObject() {
		return "", ErrMalformedFrame
	}
	tag := gjson.GetBytes(frame, TagField)
	if !tag.Exists() || tag.Type != gjson.String || tag.Str == "" {
		return "", ErrMissingKind
	}
	return model.Kind(tag.Str), nil
}

// HasDecoder reports whether kind belongs to the incoming universe.
func HasDecoder(kind model.Kind) bool {
	_, ok := incomingTable[kind]
	return ok
}

// HasEncoder reports whether kind belongs to the outgoing universe.
func HasEncoder(kind model.Kind) bool {
	_, ok := outgoingTable[kind]
	return ok
}

func encode(m model.Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("codec: encode %s: %w", m.Kind(), err)
	}
	frame, err := sjson.SetBytes(body, TagField, string(m.Kind()))
	if err != nil {
		return nil, fmt.Errorf("codec: tag %s: %w", m.Kind(), err)
	}
	return frame, nil
}

func decode[M model.Message](frame []byte, table map[model.Kind]func() M) (M, error) {
	var zero M
	kind, err := PeekKind(frame)
	if err != nil {
		return zero, &DecodeError{Frame: frame, Err: err}
	}
	newMessage, ok := table[kind]
	if !ok {
		return zero, &DecodeError{Kind: kind, Frame: frame, Err: ErrUnknownKind}
	}
	msg := newMessage()
	if err := json.Unmarshal(frame, msg); err != nil {
		return zero, &DecodeError{Kind: kind, Frame: frame, Err: err}
	}
	return msg, nil
}
