// Package retry runs an operation again after transient failures, doubling
// the wait between attempts.
package retry

import (
	"context"
	"time"
)

// Policy bounds how often and how patiently an operation is retried.
type Policy struct {
	// Retries is the number of attempts after the first.
	Retries int
	// Base is the wait before the first retry. Each later wait doubles it.
	Base time.Duration
	// Retryable reports whether err is transient. A nil Retryable retries
	// nothing.
	Retryable func(error) bool
}

// Do calls fn until it succeeds, returns an error Retryable rejects, or the
// retries run out. The last error from fn is returned. A cancelled ctx
// stops the loop before the next attempt or during a wait and yields
// ctx.Err().
func (p Policy) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= p.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == p.Retries {
			break
		}
		timer := time.NewTimer(p.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

// Delay is the wait after the given zero-based attempt.
func (p Policy) Delay(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * p.Base
}
