package concurrency

import (
	"context"
	"sync"
	"time"

	s3clierrors "github.com/marmos91/s3cli/internal/errors"
)

// Pool runs a fixed number of workers (W = max_concurrent) over a stream of
// tasks submitted in source order; completion order is unspecified. Each
// task is retried on transient failure per RetryConfig, with full-jitter
// exponential backoff between attempts.
type Pool struct {
	workers int
	retry   RetryConfig

	queue chan queuedTask

	wg        sync.WaitGroup
	stopCh    chan struct{}
	stoppedCh chan struct{}
	startOnce sync.Once

	outcome *BatchOutcome
}

type queuedTask struct {
	index int
	task  Task
}

// NewPool constructs a Pool with the given worker count and retry policy.
func NewPool(workers int, retry RetryConfig) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		workers:   workers,
		retry:     retry,
		queue:     make(chan queuedTask, workers*4),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
		outcome:   &BatchOutcome{},
	}
}

// Start launches the worker goroutines. Must be called once before Submit.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.worker(ctx)
		}
		go func() {
			p.wg.Wait()
			close(p.stoppedCh)
		}()
	})
}

// Submit enqueues a task. It blocks if the internal queue is full, applying
// natural backpressure from producer to worker pool. Submit must not be
// called after Close; after Cancel it drops the task without running it.
func (p *Pool) Submit(index int, task Task) {
	select {
	case <-p.stopCh:
		return
	default:
	}
	select {
	case p.queue <- queuedTask{index: index, task: task}:
	case <-p.stopCh:
	}
}

// Close signals no more tasks will be submitted and waits for in-flight
// tasks to drain. After Close returns, Outcome reflects the final tally.
func (p *Pool) Close() {
	close(p.queue)
	<-p.stoppedCh
}

// Cancel stops the pool from accepting new tasks immediately. In-flight
// tasks still observe ctx cancellation and report KindCancelled; Close
// should still be called afterward to wait for drain.
func (p *Pool) Cancel() {
	select {
	case <-p.stopCh:
	default:
		close(p.stopCh)
	}
}

// Outcome returns the shared aggregator. Safe to read concurrently while
// the pool is running, and authoritative once Close returns.
func (p *Pool) Outcome() *BatchOutcome {
	return p.outcome
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for qt := range p.queue {
		err := p.runWithRetry(ctx, qt.task)
		if err != nil {
			p.outcome.recordFailure(qt.index, err)
		} else {
			p.outcome.recordSuccess()
		}
	}
}

// runWithRetry executes task, retrying transient errors for at most
// retry.MaxAttempts attempts in total (the first run included), with
// full-jitter backoff between attempts.
// Non-transient errors (per s3clierrors.IsRetryable) return on first
// failure. Context cancellation short-circuits the retry loop and is
// reported as KindCancelled.
func (p *Pool) runWithRetry(ctx context.Context, task Task) error {
	var lastErr error

	for attempt := 0; attempt < p.retry.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return s3clierrors.Wrap(s3clierrors.KindCancelled, ctx.Err(), "task cancelled")
		}

		lastErr = task(TaskContext{Attempt: attempt})
		if lastErr == nil {
			return nil
		}

		kind, known := kindOf(lastErr)
		if known && !s3clierrors.IsRetryable(kind) {
			return lastErr
		}

		if attempt == p.retry.MaxAttempts-1 {
			break
		}

		delay := backoffDelay(p.retry, attempt)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return s3clierrors.Wrap(s3clierrors.KindCancelled, ctx.Err(), "task cancelled during backoff")
		case <-p.stopCh:
			timer.Stop()
			return s3clierrors.Wrap(s3clierrors.KindCancelled, nil, "pool shutting down")
		}
	}

	return lastErr
}
