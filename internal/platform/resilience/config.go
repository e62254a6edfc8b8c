package resilience

import "time"

// ReconnectPolicy bounds how a dropped connection is retried.
type ReconnectPolicy struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	MaxRetries int
}

func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   30 * time.Second,
		MaxRetries: 10,
	}
}

func NormalizeReconnectPolicy(p ReconnectPolicy) ReconnectPolicy {
	defaults := DefaultReconnectPolicy()
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaults.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = defaults.MaxDelay
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	if p.MaxRetries < 1 {
		p.MaxRetries = defaults.MaxRetries
	}
	return p
}
