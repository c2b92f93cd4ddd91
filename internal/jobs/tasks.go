// Package jobs runs background maintenance for the rewards ledger.
package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// TaskTypeLeaderboardReconcile rebuilds the ranking index from balances.
	TaskTypeLeaderboardReconcile = "leaderboard:reconcile"
)

const (
	QueueDefault = "default"
	QueueLow     = "low"
)

// NewLeaderboardReconcileTask creates the reconcile task. It carries no
// payload; the handler always walks the full balance keyspace.
func NewLeaderboardReconcileTask() *asynq.Task {
	return asynq.NewTask(TaskTypeLeaderboardReconcile, nil, asynq.Queue(QueueLow))
}
