// Package retry provides a bounded exponential backoff wrapper for transient
// failures. Provider chains wrap every provider invocation in it; any other
// flaky operation can use it directly.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Options configure a retry loop.
type Options struct {
	// MaxAttempts is the total number of tries including the first. Values
	// below 1 are treated as 1.
	MaxAttempts int
	// BaseDelay is the pause before the second attempt.
	BaseDelay time.Duration
	// Multiplier grows the delay between consecutive attempts. Values below
	// 1 are treated as 1.
	Multiplier float64
	// MaxDelay caps the computed delay. Zero means no cap.
	MaxDelay time.Duration
	// Jitter adds up to Jitter*delay of random extra pause, in [0, 1].
	Jitter float64
	// RetryIf decides whether an error is worth another attempt. Nil retries
	// every error.
	RetryIf func(error) bool
	// Backoff overrides the computed delay entirely. attempt is 2-based: the
	// pause returned for attempt n happens before the nth try.
	Backoff func(attempt int) time.Duration
}

// DefaultOptions is the baseline retry policy.
var DefaultOptions = Options{
	MaxAttempts: 3,
	BaseDelay:   200 * time.Millisecond,
	Multiplier:  2,
	MaxDelay:    10 * time.Second,
}

// ExhaustedError reports that every attempt failed. It unwraps to the last
// underlying error so errors.Is and errors.As keep working through it.
type ExhaustedError struct {
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: %d attempts failed: %v", e.Attempts, e.Err)
}

// Unwrap exposes the last attempt's error.
func (e *ExhaustedError) Unwrap() error { return e.Err }

// Do runs op until it succeeds, the retry predicate rejects the error, the
// context is done, or MaxAttempts is reached.
func Do(ctx context.Context, op func(ctx context.Context) error, optFns ...func(o *Options)) error {
	_, err := DoValue(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, optFns...)
	return err
}

// DoValue is the value-returning variant of Do.
func DoValue[T any](ctx context.Context, op func(ctx context.Context) (T, error), optFns ...func(o *Options)) (T, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, delayFor(opts, attempt)); err != nil {
				return zero, err
			}
		}
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if opts.RetryIf != nil && !opts.RetryIf(err) {
			return zero, err
		}
	}
	return zero, &ExhaustedError{Attempts: opts.MaxAttempts, Err: lastErr}
}

// delayFor computes the pause before the given attempt (attempt >= 2):
// BaseDelay * Multiplier^(attempt-2), capped at MaxDelay, plus jitter.
func delayFor(opts Options, attempt int) time.Duration {
	if opts.Backoff != nil {
		return opts.Backoff(attempt)
	}
	if opts.BaseDelay <= 0 {
		return 0
	}
	mult := opts.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(opts.BaseDelay) * math.Pow(mult, float64(attempt-2))
	if opts.MaxDelay > 0 && d > float64(opts.MaxDelay) {
		d = float64(opts.MaxDelay)
	}
	if opts.Jitter > 0 {
		d += d * opts.Jitter * rand.Float64()
	}
	return time.Duration(d)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
