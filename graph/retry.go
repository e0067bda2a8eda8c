package graph

import (
	"strings"
	"time"
)

// BackoffStrategy defines different backoff strategies
type BackoffStrategy int

const (
	FixedBackoff BackoffStrategy = iota
	ExponentialBackoff
	LinearBackoff
)

// RetryPolicy defines how to handle node failures.
type RetryPolicy struct {
	MaxRetries      int
	BackoffStrategy BackoffStrategy
	// BaseDelay defaults to one second.
	BaseDelay time.Duration
	// RetryableErrors lists substrings of retryable error messages.
	RetryableErrors []string
	// Retryable, when set, decides instead of RetryableErrors.
	Retryable func(error) bool
}

func (p *RetryPolicy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	msg := err.Error()
	for _, pattern := range p.RetryableErrors {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// delay returns the wait before retry number attempt+1.
func (p *RetryPolicy) delay(attempt int) time.Duration {
	base := p.BaseDelay
	if base == 0 {
		base = time.Second
	}
	if base < 0 {
		return 0
	}

	switch p.BackoffStrategy {
	case ExponentialBackoff:
		// 1s, 2s, 4s, 8s, ...
		return base * time.Duration(1<<attempt)
	case LinearBackoff:
		// 1s, 2s, 3s, 4s, ...
		return base * time.Duration(attempt+1)
	default:
		return base
	}
}
