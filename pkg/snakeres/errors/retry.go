package errors

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryConfig configures retry behavior for asset loads.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int

	// InitialBackoff is the starting backoff duration.
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration.
	MaxBackoff time.Duration

	// BackoffFactor is the multiplier applied to backoff after each attempt.
	BackoffFactor float64

	// Jitter is the random jitter factor (0.0-1.0).
	Jitter float64

	// RetryableFunc optionally overrides IsRetryable.
	RetryableFunc func(error) bool
}

// NoRetry makes a single attempt. It is the default for registrations.
var NoRetry = RetryConfig{
	MaxAttempts: 1,
}

// DefaultRetry suits assets on network filesystems or removable media.
var DefaultRetry = RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: 50 * time.Millisecond,
	MaxBackoff:     time.Second,
	BackoffFactor:  2.0,
	Jitter:         0.1,
}

// RetryResult contains the result of a retried operation.
type RetryResult[T any] struct {
	Value    T
	Err      error
	Attempts int
	Duration time.Duration
}

// WithRetryContext executes fn with retries, respecting context cancellation.
// The last error is returned as-is so callers can still match it with errors.As.
func WithRetryContext[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func(context.Context) (T, error),
) RetryResult[T] {
	start := time.Now()
	backoff := cfg.InitialBackoff
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	isRetryable := cfg.RetryableFunc
	if isRetryable == nil {
		isRetryable = IsRetryable
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return RetryResult[T]{Err: err, Attempts: attempt, Duration: time.Since(start)}
		}

		result, err := fn(ctx)
		if err == nil {
			return RetryResult[T]{Value: result, Attempts: attempt + 1, Duration: time.Since(start)}
		}
		lastErr = err

		if !isRetryable(err) {
			return RetryResult[T]{Err: err, Attempts: attempt + 1, Duration: time.Since(start)}
		}

		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return RetryResult[T]{Err: ctx.Err(), Attempts: attempt + 1, Duration: time.Since(start)}
			case <-time.After(calculateBackoff(backoff, cfg.Jitter)):
			}

			backoff = time.Duration(float64(backoff) * cfg.BackoffFactor)
			if cfg.MaxBackoff > 0 && backoff > cfg.MaxBackoff {
				backoff = cfg.MaxBackoff
			}
		}
	}

	return RetryResult[T]{Err: lastErr, Attempts: maxAttempts, Duration: time.Since(start)}
}

// calculateBackoff returns the backoff duration with jitter applied.
func calculateBackoff(base time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return base
	}
	jitterAmount := float64(base) * jitter * (rand.Float64()*2 - 1)
	return time.Duration(float64(base) + jitterAmount)
}

// RetryOption configures retry behavior.
type RetryOption func(*RetryConfig)

// WithMaxAttempts sets the maximum number of attempts.
func WithMaxAttempts(n int) RetryOption {
	return func(cfg *RetryConfig) {
		cfg.MaxAttempts = n
	}
}

// WithInitialBackoff sets the initial backoff duration.
func WithInitialBackoff(d time.Duration) RetryOption {
	return func(cfg *RetryConfig) {
		cfg.InitialBackoff = d
	}
}

// WithMaxBackoff sets the maximum backoff duration.
func WithMaxBackoff(d time.Duration) RetryOption {
	return func(cfg *RetryConfig) {
		cfg.MaxBackoff = d
	}
}

// WithBackoffFactor sets the backoff multiplier.
func WithBackoffFactor(f float64) RetryOption {
	return func(cfg *RetryConfig) {
		cfg.BackoffFactor = f
	}
}

// WithJitter sets the jitter factor.
func WithJitter(j float64) RetryOption {
	return func(cfg *RetryConfig) {
		cfg.Jitter = j
	}
}

// NewRetryConfig creates a retry configuration starting from DefaultRetry.
func NewRetryConfig(opts ...RetryOption) RetryConfig {
	cfg := DefaultRetry
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
