// Package handlers implements the background task handlers.
package handlers

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/weks-labs/rewards-bot/pkg/metrics"
)

// Reconciler repairs the ranking index against authoritative balances.
type Reconciler interface {
	ReconcileLeaderboard(ctx context.Context) (int, error)
}

// ReconcileHandler runs the periodic leaderboard repair. Balance writes only
// update the index best-effort, so the index can lag behind the balances it
// ranks; this task closes that gap.
type ReconcileHandler struct {
	reconciler Reconciler
	log        *slog.Logger
}

func NewReconcileHandler(reconciler Reconciler, log *slog.Logger) *ReconcileHandler {
	if log == nil {
		log = slog.Default()
	}

	return &ReconcileHandler{reconciler: reconciler, log: log}
}

func (h *ReconcileHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	touched, err := h.reconciler.ReconcileLeaderboard(ctx)
	if err != nil {
		h.log.ErrorContext(ctx, "leaderboard reconcile failed",
			slog.String("task_type", t.Type()), slog.Any("error", err))
		metrics.RecordReconcileRun("error", touched)
		return err
	}

	h.log.InfoContext(ctx, "leaderboard reconcile completed",
		slog.String("task_type", t.Type()), slog.Int("entries", touched))
	metrics.RecordReconcileRun("ok", touched)

	return nil
}
