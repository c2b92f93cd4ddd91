package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/weks-labs/rewards-bot/internal/bot/keyboard"
	"github.com/weks-labs/rewards-bot/internal/domain"
	"github.com/weks-labs/rewards-bot/internal/reward"
)

// NewStartHandler returns the /start handler. It creates the user on first
// contact, runs the referral arrival flow with the deep-link payload, and
// replies with the welcome message and the mini-app button.
func NewStartHandler(processor *reward.Processor, kb *keyboard.Builder, webAppURL string, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			if log != nil {
				log.Warn("start handler invoked without sender")
			}
			return nil
		}

		ctx := context.Background()
		identity := identityFromSender(sender)

		if _, err := processor.EnsureUser(ctx, identity); err != nil {
			return err
		}

		// Deep-link payload, e.g. "ref_42" from an invite link.
		if msg := c.Message(); msg != nil && msg.Payload != "" {
			if _, err := processor.OnArrival(ctx, identity.ID, msg.Payload); err != nil {
				// The arrival outcome does not change the welcome reply;
				// log and continue.
				if log != nil {
					log.Error("referral arrival failed",
						slog.String("invitee_id", identity.ID), slog.Any("error", err))
				}
			}
		}

		balance, err := processor.Balance(ctx, identity.ID)
		if err != nil {
			return err
		}

		done, err := processor.TodayCount(ctx, identity.ID)
		if err != nil {
			return err
		}

		message := fmt.Sprintf(
			"👋 Hi %s!\n\n"+
				"Welcome to *WEKS Tap-To-Math*.\n\n"+
				"• Earn %d coins per correct answer\n"+
				"• Daily cap: %d questions\n"+
				"• Invite friends: +%d coins each\n\n"+
				"Today: *%d/%d* — Balance: *%d*\n\nTap to play:",
			identity.Name,
			processor.CoinsPerUnit(),
			processor.DailyCap(),
			processor.ReferralBonus(),
			done, processor.DailyCap(), balance,
		)

		return c.Send(message, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}, kb.PlayButton(webAppURL))
	}
}

func identityFromSender(sender *telebot.User) *domain.Identity {
	name := sender.FirstName
	if name == "" {
		name = "Player"
	}

	return &domain.Identity{
		ID:   strconv.FormatInt(sender.ID, 10),
		Name: name,
	}
}
