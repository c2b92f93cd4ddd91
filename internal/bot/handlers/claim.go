package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/weks-labs/rewards-bot/internal/reward"
)

// webAppPayload is the message the mini app posts through
// Telegram.WebApp.sendData. Unknown kinds are ignored.
type webAppPayload struct {
	Kind    string `json:"t"`
	Correct int64  `json:"correct"`
}

const payloadKindClaim = "claim"

// NewClaimHandler returns the handler for web_app_data messages carrying
// round results from the mini app.
func NewClaimHandler(processor *reward.Processor, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		msg := c.Message()
		if msg == nil || msg.WebAppData == nil {
			return nil
		}

		sender := c.Sender()
		if sender == nil {
			return nil
		}

		var payload webAppPayload
		dec := json.NewDecoder(strings.NewReader(msg.WebAppData.Data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&payload); err != nil {
			if log != nil {
				log.Warn("undecodable web app payload", slog.Any("error", err))
			}
			return nil
		}
		if payload.Kind != payloadKindClaim {
			return nil
		}

		ctx := context.Background()
		identity := identityFromSender(sender)

		result, err := processor.ProcessClaim(ctx, identity, payload.Correct)
		if err != nil {
			return err
		}

		if result.Message == reward.MessageDailyCapReached {
			return c.Send(fmt.Sprintf(
				"✔️ Daily cap reached (%d/day). Come back tomorrow!", result.DailyCap))
		}

		return c.Send(fmt.Sprintf(
			"✅ Claimed %d correct answers (+%d coins).\nToday: %d/%d\n💰 Balance: %d",
			result.CreditedUnits, result.Coins, result.Today, result.DailyCap, result.Balance))
	}
}
