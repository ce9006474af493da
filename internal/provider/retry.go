package provider

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy bounds retries of transient provider failures.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryPolicy doubles a 200ms delay per attempt, capped at 5s.
func DefaultRetryPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{MaxRetries: maxRetries, BaseDelay: 200 * time.Millisecond, MaxDelay: 5 * time.Second}
}

// Delay returns the backoff before retry number attempt (0-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}
	d := p.BaseDelay << attempt
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Retry runs fn until it succeeds, returns a non-retryable error, or the policy is exhausted.
// A Retry-After carried by the error replaces the computed backoff. Waiting honours ctx.
func Retry(ctx context.Context, p RetryPolicy, logger *zap.Logger, fn func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil || !IsRetryable(err) || attempt >= p.MaxRetries {
			return err
		}
		wait := p.Delay(attempt)
		var pe *Error
		if errors.As(err, &pe) && pe.RetryAfter > 0 {
			wait = pe.RetryAfter
		}
		if logger != nil {
			logger.Warn("provider call failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait),
				zap.Error(err))
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
