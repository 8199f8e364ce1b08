// Package retry is the caller-side retry policy for rate-limited resolutions.
// The resolver itself never retries.
package retry

import (
	"context"
	"time"
)

// Config holds retry configuration.
type Config struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultConfig returns defaults suited to upstream rate limit windows.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   3,
		InitialDelay:  5 * time.Second,
		MaxDelay:      60 * time.Second,
		BackoffFactor: 2.0,
	}
}

// Do runs fn until it succeeds, shouldRetry rejects the error, or attempts
// run out. waitHint, when non-nil and positive for an error, overrides the
// backoff delay for that attempt (for example a rate limit reset), capped at
// MaxDelay.
func Do[T any](
	ctx context.Context,
	cfg Config,
	fn func(ctx context.Context) (T, error),
	shouldRetry func(error) bool,
	waitHint func(error) time.Duration,
) (T, error) {
	var lastErr error
	var zero T

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	delay := cfg.InitialDelay

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if shouldRetry == nil || !shouldRetry(err) {
			break
		}

		// Don't wait after the last attempt
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		wait := delay
		if waitHint != nil {
			if hint := waitHint(err); hint > 0 {
				wait = hint
			}
		}
		if cfg.MaxDelay > 0 && wait > cfg.MaxDelay {
			wait = cfg.MaxDelay
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return zero, lastErr
}
