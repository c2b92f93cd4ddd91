package bot

import (
	"context"
	"fmt"
	"strconv"

	telebot "gopkg.in/telebot.v3"
)

// Notifier delivers direct messages to users by ledger ID. It satisfies
// reward.Notifier.
type Notifier struct {
	bot *telebot.Bot
}

func NewNotifier(b *telebot.Bot) *Notifier {
	return &Notifier{bot: b}
}

func (n *Notifier) Notify(_ context.Context, userID, message string) error {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("parse user id %q: %w", userID, err)
	}

	if _, err := n.bot.Send(&telebot.User{ID: id}, message); err != nil {
		return fmt.Errorf("send notification to %s: %w", userID, err)
	}

	return nil
}
