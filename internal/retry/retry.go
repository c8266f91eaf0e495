// Package retry wraps fallible operations in exponential, jittered backoff.
// It is the only path by which a provider call's error reaches the caller:
// when every attempt fails, the last error propagates and the provider layer
// degrades it to "no result".
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// jitterFactor spreads each delay uniformly over [0.75, 1.25] of its nominal
// value so concurrent callers don't retry in lockstep.
const jitterFactor = 0.25

// Do invokes op, retrying on error up to maxAttempts additional times with
// delays of baseDelay × 2^attempt × jitter. The last error is returned after
// the final attempt. Context cancellation stops the retry loop between
// attempts; op itself is responsible for honoring ctx during an attempt.
func Do[T any](ctx context.Context, op func() (T, error), maxAttempts int, baseDelay time.Duration) (T, error) {
	if maxAttempts < 0 {
		maxAttempts = 0
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = baseDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = jitterFactor
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = 0 // attempt count, not wall clock, bounds the loop

	var out T
	err := backoff.Retry(func() error {
		v, err := op()
		if err != nil {
			return err
		}
		out = v
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(maxAttempts)), ctx))
	return out, err
}
