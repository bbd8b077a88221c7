// highrise.go

// Package highrise is a runtime for Highrise room bots. It re-exports the
// types most bots need so a bot can be written against this package alone.
package highrise

import (
	"context"

	"github.com/lightforgemedia/go-highrise/pkg/client"
	"github.com/lightforgemedia/go-highrise/pkg/model"
	"github.com/lightforgemedia/go-highrise/pkg/session"
)

// Re-export core types
type (
	Client          = client.Client
	Bot             = client.Bot
	BaseBot         = client.BaseBot
	Option          = client.Option
	FailurePolicy   = client.FailurePolicy
	Tap             = client.Tap
	RunnerOptions   = session.Options
	User            = model.User
	Position        = model.Position
	Destination     = model.Destination
	Facing          = model.Facing
	Item            = model.Item
	RoomUser        = model.RoomUser
	SessionMetadata = model.SessionMetadata
	ServerError     = model.Error
)

// Re-export error values
var (
	ErrRequestTimeout     = client.ErrRequestTimeout
	ErrUnexpectedResponse = client.ErrUnexpectedResponse
	ErrClosed             = client.ErrClosed
	ErrSessionRejected    = session.ErrSessionRejected
)

const (
	FacingFrontRight = model.FacingFrontRight
	FacingFrontLeft  = model.FacingFrontLeft
	FacingBackRight  = model.FacingBackRight
	FacingBackLeft   = model.FacingBackLeft

	FailureLog   = client.FailureLog
	FailureFatal = client.FailureFatal
)

// Re-export client options
var (
	WithLogger         = client.WithLogger
	WithRequestTimeout = client.WithRequestTimeout
	WithFailurePolicy  = client.WithFailurePolicy
	WithEventTap       = client.WithEventTap
)

// Run connects bot to the room described by opts and keeps it connected
// until ctx ends, the server rejects the session, or a handler fails under
// FailureFatal.
func Run(ctx context.Context, bot Bot, opts RunnerOptions) error {
	return session.NewRunner(bot, opts).Run(ctx)
}
