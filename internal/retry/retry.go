package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Config describes a bounded retry policy: a fixed number of attempts with a
// fixed delay between them. Sleep may be injected for deterministic tests; it
// defaults to a context-aware time.Sleep.
type Config struct {
	MaxAttempts int
	Delay       time.Duration
	Timeout     time.Duration
	Sleep       func(time.Duration)
}

// WithRetry runs operation up to config.MaxAttempts times, sleeping
// config.Delay between attempts. Each attempt gets its own timeout context
// when config.Timeout is set. The last error is returned once attempts are
// exhausted.
func WithRetry[T any](ctx context.Context, config Config, operation func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		opCtx := ctx
		cancel := func() {}
		if config.Timeout > 0 {
			opCtx, cancel = context.WithTimeout(ctx, config.Timeout)
		}
		result, err := operation(opCtx)
		cancel()

		if err == nil {
			return result, nil
		}
		lastErr = err

		log.Debug().
			Err(err).
			Int("attempt", attempt).
			Msg("Operation failed")

		if attempt < config.MaxAttempts {
			if err := config.sleep(ctx, config.Delay); err != nil {
				return zero, err
			}
		}
	}
	return zero, fmt.Errorf("operation failed after %d attempts: %w", config.MaxAttempts, lastErr)
}

func (c Config) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		c.Sleep(d)
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
