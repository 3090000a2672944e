// Package retry re-runs lending operations that lost a race on a database constraint.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/library-lending-engine/internal/domain/shared"
)

const (
	defaultMaxAttempts  = 2
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3
)

var (
	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// Func is one attempt of a retryable operation.
type Func func(ctx context.Context) error

type config struct {
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
}

// Option configures retry behavior.
type Option func(*config) error

// Result describes how an operation finished.
type Result struct {
	Attempts   int
	TotalDelay time.Duration
}

// OnConflict runs fn and repeats it with exponential backoff while it fails with an
// error wrapping shared.ErrConstraintConflict. Any other error is returned immediately.
// The default is one retry (two attempts).
func OnConflict(ctx context.Context, fn Func, options ...Option) (Result, error) {
	cfg := &config{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}
	for _, option := range options {
		if err := option(cfg); err != nil {
			return Result{}, err
		}
	}

	var (
		result  Result
		lastErr error
	)

	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoff(cfg, attempt)
			result.TotalDelay += delay

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return result, ctx.Err()
			}
		}

		result.Attempts++
		lastErr = fn(ctx)
		if lastErr == nil {
			return result, nil
		}
		if !IsRetryable(lastErr) {
			return result, lastErr
		}
	}

	return result, lastErr
}

// IsRetryable reports whether err is a constraint conflict. Timeouts are not retried.
func IsRetryable(err error) bool {
	return errors.Is(err, shared.ErrConstraintConflict)
}

// baseDelay * 2^(attempt-1) plus jitter
func backoff(cfg *config, attempt int) time.Duration {
	delay := cfg.baseDelay * time.Duration(1<<(attempt-1))
	jitter := rand.Float64() * float64(delay) * cfg.jitterFactor //nolint:gosec // jitter only
	return delay + time.Duration(jitter)
}

// WithMaxAttempts sets the total number of attempts, including the first one.
func WithMaxAttempts(attempts int) Option {
	return func(cfg *config) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		cfg.maxAttempts = attempts
		return nil
	}
}

// WithBaseDelay sets the delay before the first retry.
func WithBaseDelay(delay time.Duration) Option {
	return func(cfg *config) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}
		cfg.baseDelay = delay
		return nil
	}
}

// WithJitterFactor sets the random share of each delay, from 0.0 to 1.0.
func WithJitterFactor(factor float64) Option {
	return func(cfg *config) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}
		cfg.jitterFactor = factor
		return nil
	}
}
