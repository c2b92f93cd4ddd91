package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weks-labs/rewards-bot/internal/jobs"
	"github.com/weks-labs/rewards-bot/internal/ledger"
	appredis "github.com/weks-labs/rewards-bot/pkg/redis"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReconcileHandler_RepairsIndex(t *testing.T) {
	mr := miniredis.RunT(t)
	client := appredis.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	store := ledger.NewRedisStore(client, testLogger())

	// A balance with no ranking entry, as left behind by a failed index write.
	require.NoError(t, mr.Set("bal:8", "300"))

	handler := NewReconcileHandler(store, testLogger())
	err := handler.ProcessTask(context.Background(), jobs.NewLeaderboardReconcileTask())
	require.NoError(t, err)

	entries, err := store.TopN(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "8", entries[0].UserID)
	assert.EqualValues(t, 300, entries[0].Balance)
}

type failingReconciler struct{}

func (failingReconciler) ReconcileLeaderboard(context.Context) (int, error) {
	return 0, errors.New("scan aborted")
}

func TestReconcileHandler_PropagatesFailure(t *testing.T) {
	handler := NewReconcileHandler(failingReconciler{}, testLogger())

	err := handler.ProcessTask(context.Background(), jobs.NewLeaderboardReconcileTask())
	assert.Error(t, err)
}
