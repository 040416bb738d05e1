// Package concurrency provides the bounded worker pool, retry/backoff, and
// outcome aggregation shared by every verb that fans work out across
// multiple S3 objects or local files.
package concurrency

import (
	"errors"
	"sync"
	"time"

	s3clierrors "github.com/marmos91/s3cli/internal/errors"
)

// Task is one unit of work submitted to the pool. It receives the attempt
// number (starting at 0) so it can make retry-aware decisions (e.g. request
// a fresh multipart upload ID on retry).
type Task func(ctx TaskContext) error

// TaskContext is passed to every Task invocation.
type TaskContext struct {
	Attempt int
}

// RetryConfig governs the fabric's exponential-backoff retry loop.
type RetryConfig struct {
	MaxAttempts int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig mirrors the fixed formula: base 100ms, factor 2, cap 30s.
func DefaultRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxAttempts:  maxRetries + 1,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2,
	}
}

// ItemResult records the terminal outcome of one submitted task.
type ItemResult struct {
	Index int
	Err   error
}

// BatchOutcome aggregates per-item results across a pool run. Every tally
// is guarded by mu, so it is safe to poll mid-flight for progress
// reporting and authoritative once the pool's Close returns. All updates
// and reads take that one mutex; the counters are not lock-free atomics.
type BatchOutcome struct {
	mu        sync.Mutex
	succeeded int
	failed    int
	cancelled int
	failures  []ItemResult
}

func (b *BatchOutcome) recordSuccess() {
	b.mu.Lock()
	b.succeeded++
	b.mu.Unlock()
}

func (b *BatchOutcome) recordFailure(idx int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if kind, ok := kindOf(err); ok && kind == s3clierrors.KindCancelled {
		b.cancelled++
	} else {
		b.failed++
	}
	b.failures = append(b.failures, ItemResult{Index: idx, Err: err})
}

func kindOf(err error) (s3clierrors.Kind, bool) {
	var e *s3clierrors.Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Succeeded, Failed, and Cancelled report the current tallies.
func (b *BatchOutcome) Succeeded() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.succeeded
}

func (b *BatchOutcome) Failed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failed
}

func (b *BatchOutcome) Cancelled() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancelled
}

// Failures returns a copy of the accumulated per-item failures.
func (b *BatchOutcome) Failures() []ItemResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ItemResult, len(b.failures))
	copy(out, b.failures)
	return out
}

// HasFailures reports whether any item failed or was cancelled — callers
// use this to decide the process exit code.
func (b *BatchOutcome) HasFailures() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failed > 0 || b.cancelled > 0
}
