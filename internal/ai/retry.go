package ai

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// retrySchedule is an exponential backoff capped at maxDelay. A wait asked
// for by the server replaces the next delay once.
type retrySchedule struct {
	exp      *backoff.ExponentialBackOff
	maxDelay time.Duration
	next     *time.Duration
}

func newRetrySchedule(baseDelay, maxDelay time.Duration) *retrySchedule {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = baseDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0.2
	exp.MaxElapsedTime = 0
	if maxDelay > 0 {
		exp.MaxInterval = maxDelay
	}
	exp.Reset()
	return &retrySchedule{exp: exp, maxDelay: maxDelay}
}

func (s *retrySchedule) NextBackOff() time.Duration {
	if s.next != nil {
		d := *s.next
		s.next = nil
		return d
	}
	d := s.exp.NextBackOff()
	if s.maxDelay > 0 && d > s.maxDelay {
		d = s.maxDelay
	}
	return d
}

func (s *retrySchedule) Reset() {
	s.next = nil
	s.exp.Reset()
}

// waitExactly makes the next delay d, typically from a Retry-After header.
func (s *retrySchedule) waitExactly(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.next = &d
}

// withRetry runs op up to attempts times. op stops the loop early by
// returning backoff.Permanent; the wrapped error is what the caller sees.
func withRetry(ctx context.Context, attempts int, sched *retrySchedule, log *zap.Logger, op func(attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}
	attempt := 0
	policy := backoff.WithContext(backoff.WithMaxRetries(sched, uint64(attempts-1)), ctx)
	return backoff.RetryNotify(func() error {
		attempt++
		return op(attempt)
	}, policy, func(err error, wait time.Duration) {
		log.Warn("request failed, retrying", zap.Int("attempt", attempt), zap.Duration("wait", wait), zap.Error(err))
	})
}
