// pkg/model/outgoing.go
package model

// ChatRequest broadcasts a room-wide chat, or whispers to one user when
// WhisperTargetID is set.
type ChatRequest struct {
	Message         string `json:"message"`
	WhisperTargetID string `json:"whisper_target_id,omitempty"`
}

// EmoteRequest performs an emote, optionally aimed at another user.
type EmoteRequest struct {
	EmoteID      string `json:"emote_id"`
	TargetUserID string `json:"target_user_id,omitempty"`
}

// FloorHitRequest walks the bot to a floor coordinate.
type FloorHitRequest struct {
	Destination Destination `json:"destination"`
	Facing      Facing      `json:"facing"`
}

// KeepaliveRequest keeps an idle connection open.
type KeepaliveRequest struct{}

// IndicatorRequest sets the icon shown above the bot. A nil Icon clears it.
type IndicatorRequest struct {
	Icon *string `json:"icon"`
	RID  string  `json:"rid,omitempty"`
}

// ChannelRequest sends a hidden message to other bots in the room.
type ChannelRequest struct {
	Message string   `json:"message"`
	Tags    []string `json:"tags"`
	// OnlyTo restricts delivery to these user ids. Nil broadcasts to every
	// bot; a pointer to an empty list reaches nobody.
	OnlyTo *[]string `json:"only_to,omitempty"`
	RID    string    `json:"rid,omitempty"`
}

// TeleportRequest moves a user to a position.
type TeleportRequest struct {
	UserID      string   `json:"user_id"`
	Destination Position `json:"destination"`
	RID         string   `json:"rid,omitempty"`
}

// GetRoomUsersRequest asks for every user in the room and their position.
type GetRoomUsersRequest struct {
	RID string `json:"rid,omitempty"`
}

func (*ChatRequest) Kind() Kind         { return KindChatRequest }
func (*EmoteRequest) Kind() Kind        { return KindEmoteRequest }
func (*FloorHitRequest) Kind() Kind     { return KindFloorHitRequest }
func (*KeepaliveRequest) Kind() Kind    { return KindKeepaliveRequest }
func (*IndicatorRequest) Kind() Kind    { return KindIndicatorRequest }
func (*ChannelRequest) Kind() Kind      { return KindChannelRequest }
func (*TeleportRequest) Kind() Kind     { return KindTeleportRequest }
func (*GetRoomUsersRequest) Kind() Kind { return KindGetRoomUsersRequest }

func (*ChatRequest) outgoing()         {}
func (*EmoteRequest) outgoing()        {}
func (*FloorHitRequest) outgoing()     {}
func (*KeepaliveRequest) outgoing()    {}
func (*IndicatorRequest) outgoing()    {}
func (*ChannelRequest) outgoing()      {}
func (*TeleportRequest) outgoing()     {}
func (*GetRoomUsersRequest) outgoing() {}

func (r *IndicatorRequest) RequestID() string    { return r.RID }
func (r *ChannelRequest) RequestID() string      { return r.RID }
func (r *TeleportRequest) RequestID() string     { return r.RID }
func (r *GetRoomUsersRequest) RequestID() string { return r.RID }

func (r *IndicatorRequest) SetRequestID(id string)    { r.RID = id }
func (r *ChannelRequest) SetRequestID(id string)      { r.RID = id }
func (r *TeleportRequest) SetRequestID(id string)     { r.RID = id }
func (r *GetRoomUsersRequest) SetRequestID(id string) { r.RID = id }
