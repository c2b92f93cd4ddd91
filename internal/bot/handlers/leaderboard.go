package handlers

import (
	"context"
	"fmt"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/weks-labs/rewards-bot/internal/reward"
)

const leaderboardSize = 10

// NewLeaderboardHandler returns the /leaderboard command handler.
func NewLeaderboardHandler(processor *reward.Processor) Handler {
	return func(c telebot.Context) error {
		entries, err := processor.Leaderboard(context.Background(), leaderboardSize)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			return c.Send("No players yet.")
		}

		var out strings.Builder
		out.WriteString("🏆 Top Players\n")
		for i, entry := range entries {
			name := entry.Name
			if name == "" {
				name = entry.UserID
			}
			fmt.Fprintf(&out, "%d. %s — %d coins\n", i+1, name, entry.Balance)
		}

		return c.Send(out.String())
	}
}
