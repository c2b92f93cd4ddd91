// Package bot wires the Telegram transport: command routing, middleware,
// and update delivery for the rewards service.
package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/weks-labs/rewards-bot/internal/bot/handlers"
	"github.com/weks-labs/rewards-bot/internal/bot/keyboard"
	"github.com/weks-labs/rewards-bot/internal/dedup"
	errors "github.com/weks-labs/rewards-bot/internal/errors"
	"github.com/weks-labs/rewards-bot/internal/reward"
	"github.com/weks-labs/rewards-bot/pkg/config"
)

// Bot runs the Telegram surface of the rewards service.
type Bot struct {
	telebot *telebot.Bot
	router  *Router
	log     *slog.Logger
}

// Dependencies carries everything handlers and middleware need.
type Dependencies struct {
	Processor  *reward.Processor
	Deduper    *dedup.Deduper
	ErrHandler *errors.Handler
	Log        *slog.Logger
}

// NewTelebot connects to Telegram with the configured transport. It is split
// from New so callers can build a Notifier from the connection before the
// reward processor, which the handlers in turn depend on, exists.
func NewTelebot(cfg config.BotConfig) (*telebot.Bot, error) {
	poller, err := pollerFor(cfg)
	if err != nil {
		return nil, err
	}

	tb, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.Token,
		Poller: poller,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}

	return tb, nil
}

// New assembles the router, middleware chain, and handlers on top of an
// established Telegram connection.
func New(tb *telebot.Bot, cfg config.BotConfig, deps Dependencies) *Bot {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}

	b := &Bot{
		telebot: tb,
		router:  NewRouter(log),
		log:     log,
	}

	b.router.Use(RecoveryMiddleware(log, deps.ErrHandler))
	b.router.Use(DedupMiddleware(deps.Deduper, log))
	b.router.Use(ErrorHandlingMiddleware(deps.ErrHandler))
	b.router.Use(LoggingMiddleware(log))
	b.router.Use(MetricsMiddleware)

	kb := keyboard.NewBuilder()
	username := func() string {
		if tb.Me != nil {
			return tb.Me.Username
		}
		return ""
	}

	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(deps.Processor, kb, cfg.WebAppURL, log))
	b.router.RegisterCommand(CommandBalance, handlers.NewBalanceHandler(deps.Processor))
	b.router.RegisterCommand(CommandInvite, handlers.NewInviteHandler(deps.Processor, kb, username))
	b.router.RegisterCommand(CommandLeaderboard, handlers.NewLeaderboardHandler(deps.Processor))
	b.router.RegisterCommand(CommandTasks, handlers.NewTasksHandler(deps.Processor))
	b.router.RegisterWebApp(handlers.NewClaimHandler(deps.Processor, log))

	tb.Handle(telebot.OnText, b.router.Route)
	tb.Handle(telebot.OnWebApp, b.router.Route)

	return b
}

// Start begins consuming updates. It blocks until Stop is called.
func (b *Bot) Start() {
	b.log.Info("bot started", slog.String("username", b.username()))
	b.telebot.Start()
}

// Stop halts the update loop.
func (b *Bot) Stop() {
	b.telebot.Stop()
	b.log.Info("bot stopped")
}

// Telebot exposes the underlying connection for health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) username() string {
	if b.telebot.Me != nil {
		return b.telebot.Me.Username
	}
	return ""
}

func pollerFor(cfg config.BotConfig) (telebot.Poller, error) {
	switch cfg.Mode {
	case "webhook":
		if cfg.WebhookURL == "" {
			return nil, fmt.Errorf("webhook mode requires a public webhook url")
		}
		return &telebot.Webhook{
			Listen: cfg.WebhookListen,
			Endpoint: &telebot.WebhookEndpoint{
				PublicURL: cfg.WebhookURL,
			},
		}, nil
	case "longpoll", "":
		return &telebot.LongPoller{Timeout: cfg.PollTimeout}, nil
	default:
		return nil, fmt.Errorf("unknown bot mode %q", cfg.Mode)
	}
}
