package bot

import (
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/weks-labs/rewards-bot/internal/bot/handlers"
	"github.com/weks-labs/rewards-bot/internal/dedup"
	appredis "github.com/weks-labs/rewards-bot/pkg/redis"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeContext stubs the subset of telebot.Context the router and middleware
// touch. The embedded interface panics on anything else, which is the point.
type fakeContext struct {
	telebot.Context
	message *telebot.Message
	update  telebot.Update
	sent    []string
}

func (c *fakeContext) Message() *telebot.Message { return c.message }

func (c *fakeContext) Text() string {
	if c.message == nil {
		return ""
	}
	return c.message.Text
}

func (c *fakeContext) Sender() *telebot.User {
	if c.message == nil {
		return nil
	}
	return c.message.Sender
}

func (c *fakeContext) Update() telebot.Update { return c.update }

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		c.sent = append(c.sent, s)
	}
	return nil
}

func textContext(text string) *fakeContext {
	return &fakeContext{
		message: &telebot.Message{
			Text:   text,
			Sender: &telebot.User{ID: 7, FirstName: "Alice"},
		},
	}
}

func TestRouter_DispatchesCommand(t *testing.T) {
	router := NewRouter(testLogger())

	called := false
	router.RegisterCommand(CommandBalance, func(telebot.Context) error {
		called = true
		return nil
	})

	require.NoError(t, router.Route(textContext("/balance")))
	assert.True(t, called)
}

func TestRouter_StripsArgsAndBotName(t *testing.T) {
	router := NewRouter(testLogger())

	calls := 0
	router.RegisterCommand(CommandStart, func(telebot.Context) error {
		calls++
		return nil
	})

	require.NoError(t, router.Route(textContext("/start ref_42")))
	require.NoError(t, router.Route(textContext("/start@weks_bot ref_42")))
	assert.Equal(t, 2, calls)
}

func TestRouter_IgnoresPlainText(t *testing.T) {
	router := NewRouter(testLogger())

	router.RegisterCommand(CommandStart, func(telebot.Context) error {
		t.Fatal("command handler must not run for plain text")
		return nil
	})

	assert.NoError(t, router.Route(textContext("hello there")))
}

func TestRouter_WebAppDataWinsOverText(t *testing.T) {
	router := NewRouter(testLogger())

	var got string
	router.RegisterCommand(CommandStart, func(telebot.Context) error {
		got = "command"
		return nil
	})
	router.RegisterWebApp(func(telebot.Context) error {
		got = "webapp"
		return nil
	})

	c := textContext("/start")
	c.message.WebAppData = &telebot.WebAppData{Data: `{"t":"claim","correct":1}`}

	require.NoError(t, router.Route(c))
	assert.Equal(t, "webapp", got)
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	router := NewRouter(testLogger())

	var order []string
	mw := func(name string) handlers.Middleware {
		return func(next handlers.Handler) handlers.Handler {
			return func(c telebot.Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}

	router.Use(mw("outer"))
	router.Use(mw("inner"))
	router.RegisterCommand(CommandStart, func(telebot.Context) error {
		order = append(order, "handler")
		return nil
	})

	require.NoError(t, router.Route(textContext("/start")))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestDedupMiddleware_DropsRepeatedUpdate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := appredis.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	deduper := dedup.New(client, testLogger())

	calls := 0
	handler := DedupMiddleware(deduper, testLogger())(func(telebot.Context) error {
		calls++
		return nil
	})

	c := textContext("/balance")
	c.update = telebot.Update{ID: 1001}

	require.NoError(t, handler(c))
	require.NoError(t, handler(c))
	assert.Equal(t, 1, calls)
}

func TestCommandName(t *testing.T) {
	assert.Equal(t, "/start", commandName("/start"))
	assert.Equal(t, "/start", commandName("/start ref_42"))
	assert.Equal(t, "/start", commandName("/start@weks_bot ref_42"))
	assert.Equal(t, "/leaderboard", commandName("/leaderboard"))
}
