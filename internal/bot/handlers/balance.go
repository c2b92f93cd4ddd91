package handlers

import (
	"context"
	"fmt"

	telebot "gopkg.in/telebot.v3"

	"github.com/weks-labs/rewards-bot/internal/reward"
)

// NewBalanceHandler returns the /balance command handler.
func NewBalanceHandler(processor *reward.Processor) Handler {
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

		balance, err := processor.Balance(ctx, identity.ID)
		if err != nil {
			return err
		}

		return c.Send(fmt.Sprintf("💰 Balance: %d coins", balance))
	}
}
