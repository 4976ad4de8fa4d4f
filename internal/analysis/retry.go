package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/reeltruth/reeltruth/internal/inference"
)

const (
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

// RetryPolicy bounds how often a stage is re-attempted after a transient
// inference failure. The zero value, like MaxAttempts == 1, disables retry.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// NoRetry is the default: every stage runs exactly once.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts <= 0 {
		return 1
	}
	return p.MaxAttempts
}

// delay returns how long to wait before the next attempt, or false when err
// must be surfaced now.
func (p RetryPolicy) delay(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if attempt >= p.attempts() || err == nil {
		return 0, false
	}
	if ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var ie *inference.InferenceError
	if !errors.As(err, &ie) || !ie.Retryable() {
		return 0, false
	}
	return p.backoff(attempt), true
}

// backoff doubles from BaseDelay per attempt: attempt 1 -> base, 2 -> 2*base,
// capped at MaxDelay.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base < 0 {
		base = 0
	}
	if base == 0 && p.MaxDelay == 0 {
		base = defaultRetryBaseDelay
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
