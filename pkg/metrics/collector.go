// Package metrics exposes Prometheus instrumentation for the rewards service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	claimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_total",
			Help: "Total number of processed claims labeled by outcome",
		},
		[]string{"status"},
	)
	claimDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "claim_duration_seconds",
			Help:    "Duration of claim processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	coinsCreditedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coins_credited_total",
			Help: "Total coins credited through claims",
		},
	)
	unitsCreditedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "units_credited_total",
			Help: "Total quota units credited through claims",
		},
	)
	referralBonusesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "referral_bonuses_total",
			Help: "Total number of referral bonuses granted",
		},
	)
	referralCoinsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "referral_coins_total",
			Help: "Total coins granted as referral bonuses",
		},
	)
	leaderboardQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaderboard_queries_total",
			Help: "Total number of leaderboard reads",
		},
	)
	leaderboardSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leaderboard_last_query_size",
			Help: "Number of entries returned by the most recent leaderboard read",
		},
	)
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	reconcileRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_reconcile_runs_total",
			Help: "Total leaderboard reconciliation runs labeled by status",
		},
		[]string{"status"},
	)
	reconcileEntriesTouched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaderboard_reconcile_entries_total",
			Help: "Total leaderboard entries rewritten by reconciliation",
		},
	)
)

// RecordClaim increments claim counters and records processing duration.
func RecordClaim(status string, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}

	claimsTotal.WithLabelValues(status).Inc()
	claimDurationSeconds.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordCoinsCredited tracks credited coins and quota units.
func RecordCoinsCredited(coins, units int64) {
	coinsCreditedTotal.Add(float64(coins))
	unitsCreditedTotal.Add(float64(units))
}

// RecordReferralBonus tracks a granted referral bonus.
func RecordReferralBonus(coins int64) {
	referralBonusesTotal.Inc()
	referralCoinsTotal.Add(float64(coins))
}

// RecordLeaderboardQuery tracks a leaderboard read and its result size.
func RecordLeaderboardQuery(entries int) {
	leaderboardQueriesTotal.Inc()
	leaderboardSize.Set(float64(entries))
}

// RecordCommand increments bot command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordReconcileRun tracks a leaderboard reconciliation pass.
func RecordReconcileRun(status string, touched int) {
	if status == "" {
		status = "unknown"
	}

	reconcileRunsTotal.WithLabelValues(status).Inc()
	reconcileEntriesTouched.Add(float64(touched))
}
