// pkg/model/incoming.go
package model

import "fmt"

// Error is the server rejecting a request. When RID is set it answers the
// request with that id. Error implements the error interface so correlated
// calls can return it directly.
type Error struct {
	Message string `json:"message"`
	RID     string `json:"rid,omitempty"`
}

func (e *Error) Error() string {
	if e.RID == "" {
		return fmt.Sprintf("highrise: server error: %s", e.Message)
	}
	return fmt.Sprintf("highrise: server error for request %s: %s", e.RID, e.Message)
}

// IndicatorResponse acknowledges an IndicatorRequest.
type IndicatorResponse struct {
	RID string `json:"rid,omitempty"`
}

// ChannelResponse acknowledges a ChannelRequest.
type ChannelResponse struct {
	RID string `json:"rid,omitempty"`
}

// TeleportResponse acknowledges a TeleportRequest.
type TeleportResponse struct {
	RID string `json:"rid,omitempty"`
}

// GetRoomUsersResponse answers a GetRoomUsersRequest.
type GetRoomUsersResponse struct {
	Content []RoomUser `json:"content"`
	RID     string     `json:"rid,omitempty"`
}

// KeepaliveResponse answers a KeepaliveRequest. The server may echo a rid,
// but the response is never matched to a pending request.
type KeepaliveResponse struct {
	RID string `json:"rid,omitempty"`
}

// ChatEvent is a chat line, room-wide or whispered to the bot.
type ChatEvent struct {
	User    User   `json:"user"`
	Message string `json:"message"`
	Whisper bool   `json:"whisper"`
}

// EmoteEvent is a user performing an emote, possibly aimed at someone.
type EmoteEvent struct {
	User     User   `json:"user"`
	EmoteID  string `json:"emote_id"`
	Receiver *User  `json:"receiver,omitempty"`
}

// UserJoinedEvent is a user entering the room.
type UserJoinedEvent struct {
	User User `json:"user"`
}

// UserLeftEvent is a user leaving the room.
type UserLeftEvent struct {
	User User `json:"user"`
}

// TipReactionEvent is a tip from one user to another.
type TipReactionEvent struct {
	Sender   User `json:"sender"`
	Receiver User `json:"receiver"`
	Item     Item `json:"item"`
}

// ChannelEvent is a hidden message sent by a bot over the room channel.
type ChannelEvent struct {
	SenderID string   `json:"sender_id"`
	Message  string   `json:"message"`
	Tags     []string `json:"tags"`
}

// SessionMetadata is sent once per established connection.
type SessionMetadata struct {
	UserID       string               `json:"user_id"`
	RoomInfo     RoomInfo             `json:"room_info"`
	RateLimits   map[string]RateLimit `json:"rate_limits"`
	ConnectionID string               `json:"connection_id,omitempty"`
}

func (*Error) Kind() Kind                { return KindError }
func (*IndicatorResponse) Kind() Kind    { return KindIndicatorResponse }
func (*ChannelResponse) Kind() Kind      { return KindChannelResponse }
func (*TeleportResponse) Kind() Kind     { return KindTeleportResponse }
func (*GetRoomUsersResponse) Kind() Kind { return KindGetRoomUsersResponse }
func (*KeepaliveResponse) Kind() Kind    { return KindKeepaliveResponse }
func (*ChatEvent) Kind() Kind            { return KindChatEvent }
func (*EmoteEvent) Kind() Kind           { return KindEmoteEvent }
func (*UserJoinedEvent) Kind() Kind      { return KindUserJoinedEvent }
func (*UserLeftEvent) Kind() Kind        { return KindUserLeftEvent }
func (*TipReactionEvent) Kind() Kind     { return KindTipReactionEvent }
func (*ChannelEvent) Kind() Kind         { return KindChannelEvent }
func (*SessionMetadata) Kind() Kind      { return KindSessionMetadata }

func (*Error) incoming()                {}
func (*IndicatorResponse) incoming()    {}
func (*ChannelResponse) incoming()      {}
func (*TeleportResponse) incoming()     {}
func (*GetRoomUsersResponse) incoming() {}
func (*KeepaliveResponse) incoming()    {}
func (*ChatEvent) incoming()            {}
func (*EmoteEvent) incoming()           {}
func (*UserJoinedEvent) incoming()      {}
func (*UserLeftEvent) incoming()        {}
func (*TipReactionEvent) incoming()     {}
func (*ChannelEvent) incoming()         {}
func (*SessionMetadata) incoming()      {}

func (e *Error) RequestID() string                { return e.RID }
func (r *IndicatorResponse) RequestID() string    { return r.RID }
func (r *ChannelResponse) RequestID() string      { return r.RID }
func (r *TeleportResponse) RequestID() string     { return r.RID }
func (r *GetRoomUsersResponse) RequestID() string { return r.RID }
