package graph

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicyDelay(t *testing.T) {
	fixed := &RetryPolicy{BackoffStrategy: FixedBackoff}
	assert.Equal(t, time.Second, fixed.delay(0))
	assert.Equal(t, time.Second, fixed.delay(3))

	exp := &RetryPolicy{BackoffStrategy: ExponentialBackoff}
	assert.Equal(t, time.Second, exp.delay(0))
	assert.Equal(t, 4*time.Second, exp.delay(2))

	linear := &RetryPolicy{BackoffStrategy: LinearBackoff, BaseDelay: 10 * time.Millisecond}
	assert.Equal(t, 30*time.Millisecond, linear.delay(2))

	none := &RetryPolicy{BaseDelay: -1}
	assert.Equal(t, time.Duration(0), none.delay(5))
}

func TestRetryPolicyRetryable(t *testing.T) {
	p := &RetryPolicy{RetryableErrors: []string{"timeout", "429"}}
	assert.True(t, p.retryable(errors.New("request timeout")))
	assert.True(t, p.retryable(errors.New("status 429")))
	assert.False(t, p.retryable(errors.New("bad request")))
}
