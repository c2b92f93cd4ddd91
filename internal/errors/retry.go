package errors

import (
	"context"
	"errors"
	"math"
	"time"
)

const (
	MaxRetries        = 3
	InitialBackoff    = 200 * time.Millisecond
	MaxBackoff        = 5 * time.Second
	BackoffMultiplier = 2.0
)

// WithRetry runs fn with exponential backoff. Used only on outbound
// best-effort paths such as Telegram notifications; the claim pipeline itself
// never retries.
func WithRetry(ctx context.Context, fn func() error) error {
	if fn == nil {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err = fn()
		if err == nil {
			return nil
		}

		if !IsRetryable(err) || attempt == MaxRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoffDuration(attempt + 1)):
		}
	}

	return err
}

// IsRetryable reports whether err is marked retryable. Unknown errors are
// treated as retryable since transient transport failures rarely wrap AppError.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Retryable
	}

	return true
}

func backoffDuration(attempt int) time.Duration {
	backoff := float64(InitialBackoff) * math.Pow(BackoffMultiplier, float64(attempt-1))
	if backoff > float64(MaxBackoff) {
		return MaxBackoff
	}

	return time.Duration(backoff)
}
