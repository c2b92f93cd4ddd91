// Package dedup suppresses duplicate Telegram update deliveries. Webhook
// retries can replay the same update; a short-lived SETNX marker lets the
// first delivery through and drops the rest. This is transport-level
// hygiene only; the ledger's referral marker and daily quota remain the
// durable idempotency guards.
package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	appredis "github.com/weks-labs/rewards-bot/pkg/redis"
)

const defaultTTL = 24 * time.Hour

// Deduper records seen update identifiers in Redis.
type Deduper struct {
	client *appredis.Client
	log    *slog.Logger
	ttl    time.Duration
}

// New creates a Deduper with the default marker TTL.
func New(client *appredis.Client, log *slog.Logger) *Deduper {
	if log == nil {
		log = slog.Default()
	}

	return &Deduper{
		client: client,
		log:    log,
		ttl:    defaultTTL,
	}
}

// Seen marks updateID as processed and reports whether it was already seen.
// On store failure the update is treated as fresh: processing twice is
// preferable to dropping it, since the ledger operations are idempotent.
func (d *Deduper) Seen(ctx context.Context, updateID int) bool {
	if d == nil || d.client == nil {
		return false
	}

	fresh, err := d.client.SetNX(ctx, markerKey(updateID), 1, d.ttl)
	if err != nil {
		d.log.Warn("dedup marker write failed, processing update anyway",
			slog.Int("update_id", updateID), slog.Any("error", err))
		return false
	}

	return !fresh
}

func markerKey(updateID int) string {
	return fmt.Sprintf("seen_update:%d", updateID)
}
