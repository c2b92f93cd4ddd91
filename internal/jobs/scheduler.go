package jobs

import (
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Scheduler registers periodic maintenance tasks.
type Scheduler interface {
	RegisterTasks() error
	Run()
	Shutdown()
}

type scheduler struct {
	asynqScheduler *asynq.Scheduler
	reconcileCron  string
	log            *slog.Logger
}

// NewScheduler builds a Scheduler that enqueues the leaderboard reconcile on
// the given cron spec.
func NewScheduler(redisOpt asynq.RedisConnOpt, reconcileCron string, log *slog.Logger) Scheduler {
	if log == nil {
		log = slog.Default()
	}

	return &scheduler{
		asynqScheduler: asynq.NewScheduler(redisOpt, nil),
		reconcileCron:  reconcileCron,
		log:            log,
	}
}

func (s *scheduler) RegisterTasks() error {
	if _, err := s.asynqScheduler.Register(s.reconcileCron, NewLeaderboardReconcileTask()); err != nil {
		return fmt.Errorf("register leaderboard reconcile task: %w", err)
	}

	s.log.Info("scheduler: registered leaderboard reconcile", slog.String("cron", s.reconcileCron))

	return nil
}

func (s *scheduler) Run() {
	s.log.Info("scheduler: starting")

	go func() {
		if err := s.asynqScheduler.Run(); err != nil {
			s.log.Error("scheduler: run failed", slog.Any("error", err))
		}
	}()
}

func (s *scheduler) Shutdown() {
	s.log.Info("scheduler: shutting down")
	s.asynqScheduler.Shutdown()
}
