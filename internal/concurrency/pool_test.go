package concurrency

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_AllTasksSucceed(t *testing.T) {
	pool := NewPool(4, DefaultRetryConfig(2))
	ctx := context.Background()
	pool.Start(ctx)

	var completed int32
	for i := 0; i < 20; i++ {
		pool.Submit(i, func(TaskContext) error {
			atomic.AddInt32(&completed, 1)
			return nil
		})
	}
	pool.Close()

	assert.Equal(t, int32(20), completed)
	assert.Equal(t, 20, pool.Outcome().Succeeded())
	assert.Equal(t, 0, pool.Outcome().Failed())
	assert.False(t, pool.Outcome().HasFailures())
}

func TestPool_RetriesTransientThenSucceeds(t *testing.T) {
	pool := NewPool(1, RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond, Multiplier: 2})
	ctx := context.Background()
	pool.Start(ctx)

	var attempts int32
	pool.Submit(0, func(tc TaskContext) error {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return s3clierrors.New(s3clierrors.KindNetworkError, "transient")
		}
		return nil
	})
	pool.Close()

	assert.Equal(t, int32(3), attempts)
	assert.Equal(t, 1, pool.Outcome().Succeeded())
}

func TestPool_NonRetryableFailsImmediately(t *testing.T) {
	pool := NewPool(1, DefaultRetryConfig(5))
	ctx := context.Background()
	pool.Start(ctx)

	var attempts int32
	pool.Submit(0, func(tc TaskContext) error {
		atomic.AddInt32(&attempts, 1)
		return s3clierrors.New(s3clierrors.KindAuthError, "forbidden")
	})
	pool.Close()

	assert.Equal(t, int32(1), attempts, "non-retryable errors must not be retried")
	assert.Equal(t, 1, pool.Outcome().Failed())
	require.Len(t, pool.Outcome().Failures(), 1)
}

func TestPool_ExhaustsRetriesAndFails(t *testing.T) {
	pool := NewPool(1, RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond, Multiplier: 2})
	ctx := context.Background()
	pool.Start(ctx)

	var attempts int32
	pool.Submit(0, func(tc TaskContext) error {
		atomic.AddInt32(&attempts, 1)
		return s3clierrors.New(s3clierrors.KindTimeout, "timed out")
	})
	pool.Close()

	assert.Equal(t, int32(3), attempts)
	assert.Equal(t, 1, pool.Outcome().Failed())
}

func TestPool_CancellationStopsAcceptingTasks(t *testing.T) {
	pool := NewPool(2, DefaultRetryConfig(2))
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	started := make(chan struct{})
	block := make(chan struct{})
	pool.Submit(0, func(tc TaskContext) error {
		close(started)
		<-block
		return nil
	})
	<-started

	cancel()
	close(block)
	pool.Cancel()

	var ranAfterCancel int32
	pool.Submit(1, func(TaskContext) error {
		atomic.StoreInt32(&ranAfterCancel, 1)
		return nil
	})
	pool.Close()

	assert.Equal(t, int32(0), atomic.LoadInt32(&ranAfterCancel), "a task submitted after Cancel must not run")
	assert.GreaterOrEqual(t, pool.Outcome().Cancelled()+pool.Outcome().Succeeded(), 1)
}
