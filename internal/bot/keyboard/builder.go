// Package keyboard builds inline reply markup for bot responses.
package keyboard

import (
	telebot "gopkg.in/telebot.v3"
)

// Builder creates the inline keyboards used by the rewards bot.
type Builder struct{}

// NewBuilder returns a new Builder instance.
func NewBuilder() *Builder {
	return &Builder{}
}

// PlayButton builds the single-button keyboard that opens the mini app.
func (b *Builder) PlayButton(webAppURL string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{
			{
				Text:   "▶️ Play WEKS",
				WebApp: &telebot.WebApp{URL: webAppURL},
			},
		},
	}
	return markup
}

// InviteButton builds a keyboard with a share link for the invite flow.
func (b *Builder) InviteButton(inviteLink string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{
			{
				Text: "👯 Share invite link",
				URL:  inviteLink,
			},
		},
	}
	return markup
}
