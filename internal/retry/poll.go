package retry

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// PollPolicy describes a bounded fixed-delay polling loop.
type PollPolicy struct {
	Attempts int
	Delay    time.Duration
	Timeout  time.Duration
	Sleep    SleepFunc
}

// Sleep is the real-time SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Poll calls check up to policy.Attempts times, sleeping policy.Delay before each
// attempt, until check reports done. Errors from check are logged and count as a
// failed attempt. The returned bool tells whether any attempt finished the poll;
// running out of attempts is not an error.
func Poll[T any](ctx context.Context, policy PollPolicy, check func(ctx context.Context, attempt int) (T, bool, error)) (T, bool, error) {
	var last T
	sleep := policy.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		if err := sleep(ctx, policy.Delay); err != nil {
			return last, false, err
		}

		opCtx := ctx
		cancel := func() {}
		if policy.Timeout > 0 {
			opCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
		}
		result, done, err := check(opCtx, attempt)
		cancel()

		if err != nil {
			log.Debug().
				Err(err).
				Int("attempt", attempt).
				Msg("Poll attempt failed")
			continue
		}
		last = result
		if done {
			log.Debug().Int("attempt", attempt).Msg("Poll condition met")
			return result, true, nil
		}
	}

	log.Debug().Int("attempts", policy.Attempts).Msg("Poll attempts exhausted")
	return last, false, nil
}
