package crawler

import (
	"context"
	"errors"
	"net"
	"time"
)

// retryPolicy decides whether a failed fetch is worth another attempt and how
// long to wait before it.
type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

func newRetryPolicy(maxRetries int, base, max time.Duration) *retryPolicy {
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	if max <= 0 {
		max = 8 * time.Second
	}
	return &retryPolicy{maxRetries: maxRetries, baseDelay: base, maxDelay: max}
}

// RetryableStatus reports whether an HTTP status is an idempotent failure
// worth retrying: 429 and 5xx only. All other 4xx fail immediately.
func (p *retryPolicy) RetryableStatus(status int) bool {
	return status == 429 || status >= 500
}

// RetryableError reports whether a transport-level error is transient.
// Context cancellation is never retried; timeouts and connection failures are.
func (p *retryPolicy) RetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

// Backoff returns the wait before attempt n+1: base * 2^attempt, capped.
func (p *retryPolicy) Backoff(attempt int) time.Duration {
	delay := p.baseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= p.maxDelay {
			return p.maxDelay
		}
	}
	if delay > p.maxDelay {
		delay = p.maxDelay
	}
	return delay
}

// isTimeout reports whether err is a network timeout.
func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
