package handlers

import (
	telebot "gopkg.in/telebot.v3"
)

// Handler processes bot updates.
type Handler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler
