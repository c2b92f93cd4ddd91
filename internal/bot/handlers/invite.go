package handlers

import (
	"context"
	"fmt"

	telebot "gopkg.in/telebot.v3"

	"github.com/weks-labs/rewards-bot/internal/bot/keyboard"
	"github.com/weks-labs/rewards-bot/internal/reward"
)

// NewInviteHandler returns the /invite command handler. botUsername resolves
// lazily since the bot identity is only known after connecting.
func NewInviteHandler(processor *reward.Processor, kb *keyboard.Builder, botUsername func() string) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		ctx := context.Background()
		identity := identityFromSender(sender)

		if _, err := processor.EnsureUser(ctx, identity); err != nil {
			return err
		}

		link := fmt.Sprintf("https://t.me/%s?start=ref_%s", botUsername(), identity.ID)
		message := fmt.Sprintf(
			"👯 Invite friends and earn +%d each!\nYour link:\n%s",
			processor.ReferralBonus(), link,
		)

		return c.Send(message, kb.InviteButton(link))
	}
}
