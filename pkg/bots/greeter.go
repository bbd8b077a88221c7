package bots

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lightforgemedia/go-highrise/pkg/client"
	"github.com/lightforgemedia/go-highrise/pkg/model"
)

// Greeter welcomes people, thanks tippers and answers a few commands:
//
//	!users        how many people are in the room
//	!summon       teleport the caller next to the bot
//	!wave         wave at the caller
type Greeter struct {
	client.BaseBot

	// AnnounceDelay is how long after connecting the bot introduces itself.
	AnnounceDelay time.Duration
	WaveEmote     string
}

// NewGreeter returns a greeter with its default settings.
func NewGreeter() *Greeter {
	return &Greeter{AnnounceDelay: 2 * time.Second, WaveEmote: "emote-wave"}
}

func (g *Greeter) OnStart(ctx context.Context, meta *model.SessionMetadata) error {
	h := g.Highrise()
	room := meta.RoomInfo.RoomName
	h.CallIn(func(ctx context.Context) error {
		return h.Chat(ctx, fmt.Sprintf("Hello %s! Say !users, !summon or !wave.", room))
	}, g.AnnounceDelay)
	return nil
}

func (g *Greeter) OnUserJoin(ctx context.Context, user model.User) error {
	return g.Highrise().Chat(ctx, fmt.Sprintf("Welcome, @%s!", user.Username))
}

func (g *Greeter) OnTip(ctx context.Context, sender, receiver model.User, item model.Item) error {
	if receiver.ID != g.Highrise().SelfID() {
		return nil
	}
	return g.Highrise().Chat(ctx, fmt.Sprintf("Thanks for the %d %s, @%s!", item.Amount, item.Type, sender.Username))
}

func (g *Greeter) OnChat(ctx context.Context, user model.User, message string) error {
	h := g.Highrise()
	switch strings.TrimSpace(message) {
	case "!users":
		users, err := h.GetRoomUsers(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		return h.Chat(ctx, fmt.Sprintf("There are %d people here.", len(users)))

	case "!summon":
		users, err := h.GetRoomUsers(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		for _, ru := range users {
			if ru.User.ID == h.SelfID() {
				_, err := h.Teleport(ctx, user.ID, ru.Position)
				return err
			}
		}
		return h.SendWhisper(ctx, user.ID, "I can't find myself in this room.")

	case "!wave":
		return h.SendEmote(ctx, g.WaveEmote, user.ID)
	}
	return nil
}
