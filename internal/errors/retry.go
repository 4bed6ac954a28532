package errors

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cklxx/scoutqueue/internal/logging"
)

// RetryConfig configures exponential backoff. This is a general-purpose
// helper for synchronous retry loops (e.g. a command's HTTP transport
// layer retrying a connection reset before ever surfacing an error to a
// task). It is independent of the task queue's own retry bucket, which
// paces retries through the dispatcher's interval cap instead of
// sleeping in place.
type RetryConfig struct {
	MaxAttempts  int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	JitterFactor float64
}

// DefaultRetryConfig returns sensible defaults: 3 retries after the
// initial attempt (4 calls at most), 1s base delay, 30s cap, ±25% jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		BaseDelay:    1 * time.Second,
		MaxDelay:     30 * time.Second,
		JitterFactor: 0.25,
	}
}

// RetryableFunc is a function that can be retried.
type RetryableFunc func(ctx context.Context) error

// Retry executes fn with exponential backoff, stopping early on a
// permanent (non-transient) error or context cancellation.
func Retry(ctx context.Context, config RetryConfig, fn RetryableFunc) error {
	return RetryWithLog(ctx, config, fn, nil)
}

// RetryWithLog is Retry with an explicit logger; a nil logger falls
// back to a component logger named "retry".
func RetryWithLog(ctx context.Context, config RetryConfig, fn RetryableFunc, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewComponentLogger(logging.ComponentLoggerConfig{ComponentName: "retry"})
	}

	var lastErr error

	for attempt := 0; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			logger.Debug("context cancelled, stopping retries")
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Info("retry succeeded after %d attempts", attempt+1)
			}
			return nil
		}

		lastErr = err
		logger.Debug("attempt %d failed: %v", attempt+1, err)

		if !IsTransient(err) {
			logger.Debug("error is not transient, stopping retries")
			return err
		}

		if attempt == config.MaxAttempts {
			logger.Warn("max retries (%d) exhausted", config.MaxAttempts+1)
			break
		}

		delay := calculateBackoff(attempt, config)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			logger.Debug("context cancelled during backoff")
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// RetryWithResult is Retry for a function that also produces a value.
func RetryWithResult[T any](ctx context.Context, config RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var zeroValue T
	var lastErr error

	for attempt := 0; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return zeroValue, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !IsTransient(err) {
			return zeroValue, err
		}
		if attempt == config.MaxAttempts {
			break
		}

		delay := calculateBackoff(attempt, config)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zeroValue, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}

	return zeroValue, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	multiplier := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(config.BaseDelay) * multiplier)
	if delay > config.MaxDelay {
		delay = config.MaxDelay
	}

	if config.JitterFactor > 0 {
		jitter := float64(delay) * config.JitterFactor
		jitterAmount := (rand.Float64()*2 - 1) * jitter
		delay = time.Duration(float64(delay) + jitterAmount)
		if delay < 0 {
			delay = config.BaseDelay
		}
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	return delay
}

// ShouldRetry reports whether a transient error should be retried given
// how many attempts have already been made.
func ShouldRetry(err error, attemptNumber int, maxAttempts int) bool {
	if err == nil {
		return false
	}
	if attemptNumber >= maxAttempts {
		return false
	}
	return IsTransient(err)
}
