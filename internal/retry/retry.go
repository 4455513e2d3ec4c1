package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"
)

// Config bounds an operation retried with exponential backoff. Timeout applies
// to each attempt; Sleep defaults to real time.
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Timeout    time.Duration
	Sleep      SleepFunc
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as final: WithRetry returns it without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// WithRetry runs operation until it succeeds, returns a Permanent error, or
// MaxRetries retries are spent. A permanent error is returned unwrapped.
func WithRetry[T any](ctx context.Context, config Config, operation func(context.Context) (T, error)) (T, error) {
	var zero T
	sleep := config.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	attempts := config.MaxRetries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		opCtx, cancel := ctx, context.CancelFunc(func() {})
		if config.Timeout > 0 {
			opCtx, cancel = context.WithTimeout(ctx, config.Timeout)
		}
		result, err := operation(opCtx)
		cancel()
		if err == nil {
			return result, nil
		}

		var p *permanentError
		if errors.As(err, &p) {
			log.Debug().Err(p.err).Int("attempt", attempt).Msg("Permanent failure, not retrying")
			return zero, p.err
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		delay := backoffDelay(attempt-1, config.BaseDelay, config.MaxDelay)
		log.Debug().
			Err(err).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("Attempt failed, retrying")
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
	return zero, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

// backoffDelay doubles base per retry, caps it at max and applies 0.5x-1.5x
// jitter, never exceeding max.
func backoffDelay(retry int, base, max time.Duration) time.Duration {
	delay := max
	if retry < 30 {
		if d := base << retry; d > 0 && d < max {
			delay = d
		}
	}
	delay = time.Duration(float64(delay) * (0.5 + rand.Float64()))
	return min(delay, max)
}
