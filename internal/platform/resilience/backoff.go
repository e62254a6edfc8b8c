package resilience

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Schedule yields min(base * 2^attempt, max) for at most MaxRetries attempts.
// It is not safe for concurrent use.
type Schedule struct {
	policy   ReconnectPolicy
	exp      *backoff.ExponentialBackOff
	attempts int
}

func NewSchedule(policy ReconnectPolicy) *Schedule {
	policy = NormalizeReconnectPolicy(policy)
	exp := &backoff.ExponentialBackOff{
		InitialInterval:     policy.BaseDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         policy.MaxDelay,
	}
	exp.Reset()
	return &Schedule{policy: policy, exp: exp}
}

// Next returns the delay before the next attempt, or false once retries are exhausted.
func (s *Schedule) Next() (time.Duration, bool) {
	if s.attempts >= s.policy.MaxRetries {
		return 0, false
	}
	s.attempts++
	delay := s.exp.NextBackOff()
	if delay == backoff.Stop {
		return 0, false
	}
	return delay, true
}

// Reset starts over after a successful connection.
func (s *Schedule) Reset() {
	s.attempts = 0
	s.exp.Reset()
}

func (s *Schedule) Attempts() int {
	return s.attempts
}
