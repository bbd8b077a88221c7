package client

import (
	"context"

	"github.com/lightforgemedia/go-highrise/pkg/model"
)

// Route hands one decoded message to the client. Messages carrying a
// correlation id complete the matching pending request and are never
// dispatched; responses nobody waits for are dropped. Everything else is
// dispatched to the bot. Route does not wait for handlers, so a read loop
// can call it for each frame in wire order.
func (c *Client) Route(msg model.Incoming) {
	if msg == nil {
		return
	}
	if c.config.tap != nil {
		c.config.tap.Publish(msg)
	}

	if id := model.RequestIDOf(msg); id != "" {
		if !c.registry.Deliver(id, msg) {
			c.logger.Debug("Dropping response for unknown request", "rid", id, "kind", msg.Kind())
		}
		return
	}
	c.dispatch(msg)
}

func (c *Client) dispatch(msg model.Incoming) {
	bot := c.bot
	switch m := msg.(type) {
	case *model.SessionMetadata:
		c.setSelfID(m.UserID)
		c.tasks.Go("on_start", func(ctx context.Context) error {
			return bot.OnStart(ctx, m)
		})

	case *model.ChatEvent:
		if self := c.SelfID(); self != "" && m.User.ID == self {
			return
		}
		if m.Whisper {
			c.tasks.Go("on_whisper", func(ctx context.Context) error {
				return bot.OnWhisper(ctx, m.User, m.Message)
			})
			return
		}
		c.tasks.Go("on_chat", func(ctx context.Context) error {
			return bot.OnChat(ctx, m.User, m.Message)
		})

	case *model.EmoteEvent:
		c.tasks.Go("on_emote", func(ctx context.Context) error {
			return bot.OnEmote(ctx, m.User, m.EmoteID, m.Receiver)
		})

	case *model.UserJoinedEvent:
		c.tasks.Go("on_user_join", func(ctx context.Context) error {
			return bot.OnUserJoin(ctx, m.User)
		})

	case *model.UserLeftEvent:
		c.tasks.Go("on_user_left", func(ctx context.Context) error {
			return bot.OnUserLeft(ctx, m.User)
		})

	case *model.TipReactionEvent:
		c.tasks.Go("on_tip", func(ctx context.Context) error {
			return bot.OnTip(ctx, m.Sender, m.Receiver, m.Item)
		})

	case *model.ChannelEvent:
		c.tasks.Go("on_channel", func(ctx context.Context) error {
			return bot.OnChannel(ctx, m.SenderID, m.Message, m.Tags)
		})

	case *model.KeepaliveResponse:
		c.logger.Debug("Keepalive acknowledged", "rid", m.RID)

	case *model.Error:
		c.logger.Warn("Server error not tied to a request", "message", m.Message)

	default:
		c.logger.Warn("Dropping response without request id", "kind", msg.Kind())
	}
}
