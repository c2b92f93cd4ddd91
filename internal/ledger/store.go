// Package ledger implements the atomic primitives over persisted reward
// state: balances, daily counters, referral markers, and the rank index.
package ledger

import (
	"context"

	"github.com/weks-labs/rewards-bot/internal/domain"
)

// Store exposes the single-key atomic operations the reward processors rely
// on. Each operation is individually atomic at the storage layer; there is no
// cross-key atomicity, and callers must not assume any.
type Store interface {
	// GetOrCreateUser returns the user record, creating it with a zero
	// balance and leaderboard entry when absent. Safe under concurrent
	// first contact for the same id: creation writes are idempotent.
	GetOrCreateUser(ctx context.Context, id, name string) (*domain.User, error)

	// GetUser returns the stored user record, or nil when unknown.
	GetUser(ctx context.Context, id string) (*domain.User, error)

	// AddBalance atomically increments the balance and returns the new
	// value. The leaderboard entry is updated afterwards as a best-effort
	// secondary write.
	AddBalance(ctx context.Context, id string, delta int64) (int64, error)

	// GetBalance returns the balance, 0 when absent.
	GetBalance(ctx context.Context, id string) (int64, error)

	// GetDailyCount returns the units already credited for (id, day).
	GetDailyCount(ctx context.Context, id, day string) (int64, error)

	// AddDailyCount atomically increments the daily counter.
	AddDailyCount(ctx context.Context, id, day string, delta int64) (int64, error)

	// TryClaimReferral writes the referral marker for invitee only when
	// absent. Returns true iff this call performed the write; the marker is
	// never overwritten or deleted afterwards.
	TryClaimReferral(ctx context.Context, inviteeID, inviterID string) (bool, error)

	// TopN returns up to n entries ordered by balance descending. The view
	// is eventually consistent with the balance counters.
	TopN(ctx context.Context, n int64) ([]domain.LeaderboardEntry, error)
}
