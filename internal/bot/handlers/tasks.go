package handlers

import (
	"context"
	"fmt"

	telebot "gopkg.in/telebot.v3"

	"github.com/weks-labs/rewards-bot/internal/reward"
)

// NewTasksHandler returns the /tasks command handler showing today's quota usage.
func NewTasksHandler(processor *reward.Processor) Handler {
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

		done, err := processor.TodayCount(ctx, identity.ID)
		if err != nil {
			return err
		}

		return c.Send(fmt.Sprintf("🗓️ Today credited: %d/%d questions", done, processor.DailyCap()))
	}
}
