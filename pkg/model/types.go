// pkg/model/types.go
package model

import (
	"encoding/json"
	"fmt"
)

// Facing is the direction an avatar looks at after moving.
type Facing string

const (
	FacingFrontRight Facing = "FrontRight"
	FacingFrontLeft  Facing = "FrontLeft"
	FacingBackRight  Facing = "BackRight"
	FacingBackLeft   Facing = "BackLeft"
)

// Valid reports whether f is one of the four known facings.
func (f Facing) Valid() bool {
	switch f {
	case FacingFrontRight, FacingFrontLeft, FacingBackRight, FacingBackLeft:
		return true
	}
	return false
}

// User identifies a person (or bot) in the room.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Position is a point in the room plus the direction the avatar faces.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Facing Facing  `json:"facing"`
}

// Destination is a bare floor coordinate. It travels as a 3-element array.
type Destination [3]float64

// Item is something that can be tipped, e.g. gold bars.
type Item struct {
	Type   string `json:"type"`
	Amount int    `json:"amount"`
	ID     string `json:"id"`
}

// RoomUser pairs a user with their current position. On the wire it is a
// 2-element array: [User, Position].
type RoomUser struct {
	User     User
	Position Position
}

// MarshalJSON encodes the pair as [user, position].
func (r RoomUser) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{r.User, r.Position})
}

// UnmarshalJSON decodes a [user, position] array.
func (r *RoomUser) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("room user: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("room user: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &r.User); err != nil {
		return fmt.Errorf("room user: user: %w", err)
	}
	if err := json.Unmarshal(pair[1], &r.Position); err != nil {
		return fmt.Errorf("room user: position: %w", err)
	}
	return nil
}

// RoomInfo describes the room the bot is connected to.
type RoomInfo struct {
	OwnerID  string `json:"owner_id"`
	RoomName string `json:"room_name"`
}

// RateLimit is a server-advertised token bucket: [max_drops, recharge_seconds].
type RateLimit [2]float64
