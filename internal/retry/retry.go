// Package retry provides bounded retry and bounded poll loops with an
// injectable clock so callers can test timing behavior without real timers.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrPollTimeout is returned by Poll when the condition never settles within
// the configured timeout.
var ErrPollTimeout = errors.New("poll timed out")

// Clock abstracts the time source used by retry and poll loops.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock returns a Clock backed by the real time package.
func SystemClock() Clock { return systemClock{} }

// Do runs fn up to attempts times, waiting a fixed delay between failures.
// It returns nil on the first success and the last error otherwise.
func Do(ctx context.Context, attempts int, delay time.Duration, clock Clock, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	if clock == nil {
		clock = SystemClock()
	}

	var lastErr error
	for attempt := range attempts {
		if err := ctx.Err(); err != nil {
			return err
		}

		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}

		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(delay):
		}
	}

	return fmt.Errorf("gave up after %d attempts: %w", attempts, lastErr)
}

// Poll runs fn immediately and then once per interval until fn reports done,
// fn returns an error, the timeout elapses, or ctx is cancelled. A timeout
// yields ErrPollTimeout.
func Poll(ctx context.Context, interval, timeout time.Duration, clock Clock, fn func(ctx context.Context) (bool, error)) error {
	if clock == nil {
		clock = SystemClock()
	}

	deadline := clock.After(timeout)
	for {
		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return ErrPollTimeout
		case <-clock.After(interval):
		}
	}
}
