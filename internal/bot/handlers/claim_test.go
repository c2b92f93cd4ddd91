package handlers

import (
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/weks-labs/rewards-bot/internal/ledger"
	"github.com/weks-labs/rewards-bot/internal/reward"
	appredis "github.com/weks-labs/rewards-bot/pkg/redis"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupProcessor(t *testing.T) *reward.Processor {
	t.Helper()

	mr := miniredis.RunT(t)
	client := appredis.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	log := testLogger()
	store := ledger.NewRedisStore(client, log)

	return reward.NewProcessor(store, reward.Config{
		DailyCap:      100,
		CoinsPerUnit:  10,
		ReferralBonus: 2000,
	}, nil, log)
}

type fakeContext struct {
	telebot.Context
	message *telebot.Message
	sent    []string
}

func (c *fakeContext) Message() *telebot.Message { return c.message }

func (c *fakeContext) Sender() *telebot.User {
	if c.message == nil {
		return nil
	}
	return c.message.Sender
}

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		c.sent = append(c.sent, s)
	}
	return nil
}

func webAppContext(data string) *fakeContext {
	return &fakeContext{
		message: &telebot.Message{
			Sender:     &telebot.User{ID: 7, FirstName: "Alice"},
			WebAppData: &telebot.WebAppData{Data: data},
		},
	}
}

func TestClaimHandler_CreditsAndReplies(t *testing.T) {
	handler := NewClaimHandler(setupProcessor(t), testLogger())

	c := webAppContext(`{"t":"claim","correct":5}`)
	require.NoError(t, handler(c))

	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "Claimed 5 correct answers (+50 coins)")
	assert.Contains(t, c.sent[0], "Today: 5/100")
	assert.Contains(t, c.sent[0], "Balance: 50")
}

func TestClaimHandler_CapReachedReply(t *testing.T) {
	processor := setupProcessor(t)
	handler := NewClaimHandler(processor, testLogger())

	require.NoError(t, handler(webAppContext(`{"t":"claim","correct":150}`)))

	c := webAppContext(`{"t":"claim","correct":5}`)
	require.NoError(t, handler(c))

	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "Daily cap reached (100/day)")
}

func TestClaimHandler_IgnoresForeignPayloads(t *testing.T) {
	handler := NewClaimHandler(setupProcessor(t), testLogger())

	for _, data := range []string{
		`{"t":"settings","theme":"dark"}`,
		`{"t":"claim","correct":1,"extra":true}`,
		`not json`,
	} {
		c := webAppContext(data)
		require.NoError(t, handler(c))
		assert.Empty(t, c.sent, "payload %q must not produce a reply", data)
	}
}

func TestClaimHandler_NothingToClaimBubblesUp(t *testing.T) {
	handler := NewClaimHandler(setupProcessor(t), testLogger())

	err := handler(webAppContext(`{"t":"claim","correct":0}`))
	assert.Error(t, err)
}
