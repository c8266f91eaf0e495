// Package ratelimit provides the per-provider token bucket that governs
// outbound call rate. One Limiter instance is scoped to one provider and
// shared by every concurrent resolution that touches it.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket: it accumulates tokens up to a burst capacity at a
// fixed refill rate and hands out one per permitted call.
type Limiter struct {
	bucket *rate.Limiter
}

// New creates a Limiter holding at most capacity tokens, refilled at
// refillPerSecond. A non-positive capacity is treated as 1 so Take can always
// make progress.
func New(capacity int, refillPerSecond float64) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	return &Limiter{
		bucket: rate.NewLimiter(rate.Limit(refillPerSecond), capacity),
	}
}

// Take blocks until a token is available, then consumes it. The wait has no
// failure mode of its own: the only way out early is cancellation of ctx,
// which belongs to the surrounding operation's timeout, and is reported so
// the caller can abandon the call it was about to make.
func (l *Limiter) Take(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}

// Tokens reports the tokens currently available. Useful for logging and tests.
func (l *Limiter) Tokens() float64 {
	return l.bucket.Tokens()
}
