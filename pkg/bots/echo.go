package bots

import (
	"context"
	"strings"

	"github.com/lightforgemedia/go-highrise/pkg/client"
	"github.com/lightforgemedia/go-highrise/pkg/model"
)

const echoPrefix = "!echo "

// Echo repeats "!echo ..." chat lines to the room and whispers every
// whisper back to its sender.
type Echo struct {
	client.BaseBot
}

func (b *Echo) OnChat(ctx context.Context, user model.User, message string) error {
	text, ok := strings.CutPrefix(message, echoPrefix)
	if !ok || strings.TrimSpace(text) == "" {
		return nil
	}
	return b.Highrise().Chat(ctx, text)
}

func (b *Echo) OnWhisper(ctx context.Context, user model.User, message string) error {
	return b.Highrise().SendWhisper(ctx, user.ID, message)
}
