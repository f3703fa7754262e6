// Package retry provides bounded retries with exponential backoff and the
// staggered requeue policy used for persistent failures.
package retry

import (
	"context"
	"errors"
	"time"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the real Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Policy bounds the attempts of one operation.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Backoff returns the wait after the given failed attempt (1-based):
// BaseDelay doubled for every attempt after the first.
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BaseDelay << (attempt - 1)
}

func (p Policy) attempts() int {
	return max(1, p.MaxAttempts)
}

// Do calls fn until it succeeds or MaxAttempts calls have failed, sleeping
// Backoff(n) after failed attempt n except the last. It returns nil on
// success and otherwise the last attempt's error. A nil sleep uses SleepContext.
func Do(ctx context.Context, p Policy, sleep Sleeper, fn func(ctx context.Context) error) error {
	if sleep == nil {
		sleep = SleepContext
	}

	var err error
	n := p.attempts()
	for attempt := 1; attempt <= n; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == n {
			break
		}
		if sleepErr := sleep(ctx, p.Backoff(attempt)); sleepErr != nil {
			return errors.Join(err, sleepErr)
		}
	}
	return err
}

// Requeue configures the second pass given to operations that exhausted
// their first policy: fewer workers, more attempts and a staggered start.
type Requeue struct {
	Concurrency int
	MaxAttempts int
	Delay       time.Duration
	Stagger     time.Duration
}

// Policy returns the per-item retry policy of the second pass, keeping the
// first pass's base delay.
func (r Requeue) Policy(base Policy) Policy {
	return Policy{MaxAttempts: r.MaxAttempts, BaseDelay: base.BaseDelay}
}

// StartDelay returns the wait before the requeued item at index starts,
// spreading retries out so they do not hit the registry together.
func (r Requeue) StartDelay(index int) time.Duration {
	return r.Delay + time.Duration(index)*r.Stagger
}
