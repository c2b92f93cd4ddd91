package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	appredis "github.com/weks-labs/rewards-bot/pkg/redis"
)

func setupRedisLimiter(t *testing.T) Limiter {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLimiter(appredis.Wrap(client), testLogger())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRedisLimiter_AllowsWithinLimit(t *testing.T) {
	limiter := setupRedisLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := limiter.Check(ctx, "claim:7", 5, time.Minute)
		assert.NoError(t, err)
		assert.True(t, result.Allowed)
	}
}

func TestRedisLimiter_BlocksWhenExceeded(t *testing.T) {
	limiter := setupRedisLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := limiter.Check(ctx, "claim:7", 2, time.Minute)
		assert.NoError(t, err)
		if i < 2 {
			assert.True(t, result.Allowed)
		} else {
			assert.False(t, result.Allowed)
		}
	}
}

func TestRedisLimiter_KeysAreIndependent(t *testing.T) {
	limiter := setupRedisLimiter(t)
	ctx := context.Background()

	result, err := limiter.Check(ctx, "claim:7", 1, time.Minute)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = limiter.Check(ctx, "claim:8", 1, time.Minute)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestMemoryLimiter_SlidingWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, "claim:7", 2, 200*time.Millisecond)
		assert.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	result, err := limiter.Check(ctx, "claim:7", 2, 200*time.Millisecond)
	assert.NoError(t, err)
	assert.False(t, result.Allowed)

	time.Sleep(250 * time.Millisecond)

	result, err = limiter.Check(ctx, "claim:7", 2, 200*time.Millisecond)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestMemoryLimiter_ZeroLimitBlocks(t *testing.T) {
	limiter := NewMemoryLimiter()

	result, err := limiter.Check(context.Background(), "claim:7", 0, time.Minute)
	assert.NoError(t, err)
	assert.False(t, result.Allowed)
}
