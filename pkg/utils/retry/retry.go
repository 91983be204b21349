package retry

import (
	"context"
	"errors"
	"time"
)

// ErrRetry is wrapped by errors which are worth trying again.
var ErrRetry = errors.New("retry")

// Backoff blocks until the next try.
//
// It returns ctx.Err() when ctx is done before that.
type Backoff func(context.Context) error

// StaticBackoff waits for interval every time.
func StaticBackoff(interval time.Duration) Backoff {
	return ExponentialBackoff(interval, 1, 0)
}

// ExponentialBackoff waits initialInterval * r^N for the N-th call.
//
// Intervals stop growing at max, when max is positive.
func ExponentialBackoff(initialInterval time.Duration, r float64, max time.Duration) Backoff {
	interval := initialInterval
	return func(ctx context.Context) error {
		timer := time.NewTimer(interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			interval = time.Duration(float64(interval) * r)
			if 0 < max && max < interval {
				interval = max
			}
			return nil
		}
	}
}

// Blocking calls f until it returns nil or an error not wrapping ErrRetry.
//
// The first call is made immediately; b waits between calls. When ctx is done
// while waiting, the last error of f is returned with ctx.Err().
func Blocking[T any](ctx context.Context, b Backoff, f func() (T, error)) (T, error) {
	for {
		last, err := f()
		if err == nil {
			return last, nil
		}
		if !errors.Is(err, ErrRetry) {
			return last, err
		}
		if berr := b(ctx); berr != nil {
			return last, errors.Join(berr, err)
		}
	}
}
