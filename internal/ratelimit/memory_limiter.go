package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is an in-process fallback Limiter for single-instance
// deployments that run without Redis-based limiting.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter returns an in-memory limiter implementation.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string][]time.Time)}
}

// Check enforces a sliding-window limit for the provided key.
func (m *MemoryLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now()
	windowStart := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	recent := keepRecent(m.buckets[key], windowStart)
	count := len(recent)

	allowed := limit > 0 && count < limit
	if allowed {
		recent = append(recent, now)
		count++
	}

	if len(recent) == 0 {
		delete(m.buckets, key)
	} else {
		m.buckets[key] = recent
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   windowStart.Add(window),
	}, nil
}

func keepRecent(stamps []time.Time, windowStart time.Time) []time.Time {
	first := 0
	for first < len(stamps) && stamps[first].Before(windowStart) {
		first++
	}

	if first == 0 {
		return stamps
	}

	copy(stamps, stamps[first:])
	return stamps[:len(stamps)-first]
}
