package crawler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_Backoff(t *testing.T) {
	t.Parallel()

	p := newRetryPolicy(5, 500*time.Millisecond, 8*time.Second)
	require.Equal(t, 500*time.Millisecond, p.Backoff(0))
	require.Equal(t, 1*time.Second, p.Backoff(1))
	require.Equal(t, 2*time.Second, p.Backoff(2))
	require.Equal(t, 4*time.Second, p.Backoff(3))
	require.Equal(t, 8*time.Second, p.Backoff(4))
	// Capped past the ceiling.
	require.Equal(t, 8*time.Second, p.Backoff(10))
}

func TestRetryPolicy_Defaults(t *testing.T) {
	t.Parallel()

	p := newRetryPolicy(3, 0, 0)
	require.Equal(t, 500*time.Millisecond, p.Backoff(0))
	require.Equal(t, 8*time.Second, p.Backoff(20))
}

func TestRetryPolicy_RetryableStatus(t *testing.T) {
	t.Parallel()

	p := newRetryPolicy(3, time.Millisecond, time.Second)
	require.True(t, p.RetryableStatus(429))
	require.True(t, p.RetryableStatus(500))
	require.True(t, p.RetryableStatus(503))
	require.False(t, p.RetryableStatus(404))
	require.False(t, p.RetryableStatus(403))
	require.False(t, p.RetryableStatus(200))
}

func TestRetryPolicy_RetryableError(t *testing.T) {
	t.Parallel()

	p := newRetryPolicy(3, time.Millisecond, time.Second)
	require.False(t, p.RetryableError(nil))
	require.False(t, p.RetryableError(context.Canceled))
	require.True(t, p.RetryableError(errors.New("connection refused")))
	require.True(t, p.RetryableError(context.DeadlineExceeded))
}

func TestIsTimeout(t *testing.T) {
	t.Parallel()

	require.False(t, isTimeout(nil))
	require.False(t, isTimeout(errors.New("boom")))
	require.True(t, isTimeout(context.DeadlineExceeded))
}
