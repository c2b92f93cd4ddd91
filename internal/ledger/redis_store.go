package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/weks-labs/rewards-bot/internal/domain"
	appredis "github.com/weks-labs/rewards-bot/pkg/redis"
)

// RedisStore is the Redis-backed implementation of Store.
type RedisStore struct {
	client *appredis.Client
	log    *slog.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed ledger store.
func NewRedisStore(client *appredis.Client, log *slog.Logger) *RedisStore {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStore{client: client, log: log}
}

// GetOrCreateUser reads the user record and initializes it when missing. The
// read and the creation writes are not atomic with each other; concurrent
// first contact may issue the initialization twice. The user record write is
// last-write-wins over identical values, and the balance and leaderboard
// initializers use set-if-absent so they can never clobber a credit that
// landed in between.
func (s *RedisStore) GetOrCreateUser(ctx context.Context, id, name string) (*domain.User, error) {
	raw, err := s.client.Get(ctx, userKey(id))
	if err == nil {
		var user domain.User
		if uerr := json.Unmarshal([]byte(raw), &user); uerr != nil {
			return nil, fmt.Errorf("decode user %s: %w", id, uerr)
		}
		return &user, nil
	}
	if !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}

	user := &domain.User{
		ID:       id,
		Name:     name,
		JoinedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user %s: %w", id, err)
	}

	if err := s.client.Set(ctx, userKey(id), payload, 0); err != nil {
		return nil, fmt.Errorf("create user %s: %w", id, err)
	}

	if _, err := s.client.SetNX(ctx, balanceKey(id), 0, 0); err != nil {
		return nil, fmt.Errorf("init balance %s: %w", id, err)
	}

	if err := s.client.ZAddNX(ctx, keyLeaderboard, goredis.Z{Score: 0, Member: id}).Err(); err != nil {
		s.log.Warn("failed to seed leaderboard entry",
			slog.String("user_id", id), slog.Any("error", err))
	}

	return user, nil
}

// GetUser returns the stored user record, or nil when unknown.
func (s *RedisStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	raw, err := s.client.Get(ctx, userKey(id))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}

	return &user, nil
}

// AddBalance increments the balance counter, then mirrors the new value into
// the leaderboard index. The two writes are not atomic: a failure between
// them leaves the index stale until the next credit or reconcile pass. The
// incremented balance is returned regardless, since it is the durable truth.
func (s *RedisStore) AddBalance(ctx context.Context, id string, delta int64) (int64, error) {
	newBalance, err := s.client.IncrBy(ctx, balanceKey(id), delta)
	if err != nil {
		return 0, fmt.Errorf("incr balance %s: %w", id, err)
	}

	if err := s.client.ZAdd(ctx, keyLeaderboard, goredis.Z{
		Score:  float64(newBalance),
		Member: id,
	}).Err(); err != nil {
		s.log.Warn("failed to update leaderboard entry",
			slog.String("user_id", id),
			slog.Int64("balance", newBalance),
			slog.Any("error", err))
	}

	return newBalance, nil
}

// GetBalance returns the balance, 0 when the key is absent.
func (s *RedisStore) GetBalance(ctx context.Context, id string) (int64, error) {
	value, err := s.client.Client.Get(ctx, balanceKey(id)).Int64()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance %s: %w", id, err)
	}

	return value, nil
}

// GetDailyCount returns the units credited for (id, day), 0 when absent.
func (s *RedisStore) GetDailyCount(ctx context.Context, id, day string) (int64, error) {
	value, err := s.client.Client.Get(ctx, dailyKey(id, day)).Int64()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get daily count %s: %w", id, err)
	}

	return value, nil
}

// AddDailyCount atomically increments the daily counter for (id, day).
func (s *RedisStore) AddDailyCount(ctx context.Context, id, day string, delta int64) (int64, error) {
	newCount, err := s.client.IncrBy(ctx, dailyKey(id, day), delta)
	if err != nil {
		return 0, fmt.Errorf("incr daily count %s: %w", id, err)
	}

	return newCount, nil
}

// TryClaimReferral writes the referral marker with SETNX semantics. The first
// writer wins; every later call observes the marker and returns false.
func (s *RedisStore) TryClaimReferral(ctx context.Context, inviteeID, inviterID string) (bool, error) {
	claimed, err := s.client.SetNX(ctx, refClaimedKey(inviteeID), inviterID, 0)
	if err != nil {
		return false, fmt.Errorf("claim referral for %s: %w", inviteeID, err)
	}

	return claimed, nil
}

// TopN returns up to n leaderboard entries, highest balance first.
func (s *RedisStore) TopN(ctx context.Context, n int64) ([]domain.LeaderboardEntry, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.client.ZRevRangeWithScores(ctx, keyLeaderboard, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard top %d: %w", n, err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		id, ok := row.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			UserID:  id,
			Balance: int64(row.Score),
		})
	}

	return entries, nil
}

// ReconcileLeaderboard rewrites the index score for every stored balance,
// repairing entries left stale by a crash between a balance increment and its
// leaderboard mirror write. Returns the number of entries touched.
func (s *RedisStore) ReconcileLeaderboard(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		touched int
	)

	for {
		keys, next, err := s.client.Scan(ctx, cursor, "bal:*", 100).Result()
		if err != nil {
			return touched, fmt.Errorf("scan balances: %w", err)
		}

		for _, key := range keys {
			id := key[len("bal:"):]

			balance, err := s.client.Client.Get(ctx, key).Int64()
			if err != nil {
				if errors.Is(err, goredis.Nil) {
					continue
				}
				return touched, fmt.Errorf("read balance %s: %w", key, err)
			}

			if err := s.client.ZAdd(ctx, keyLeaderboard, goredis.Z{
				Score:  float64(balance),
				Member: id,
			}).Err(); err != nil {
				return touched, fmt.Errorf("reindex %s: %w", id, err)
			}
			touched++
		}

		cursor = next
		if cursor == 0 {
			return touched, nil
		}
	}
}
