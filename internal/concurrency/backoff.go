package concurrency

import (
	"math"
	"math/rand"
	"time"
)

// backoffDelay computes the full-jitter exponential backoff delay for a
// given attempt (0-indexed): a uniform random duration in
// [0, min(cap, base*factor^attempt)].
func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	capped := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt))
	if capped > float64(cfg.MaxDelay) {
		capped = float64(cfg.MaxDelay)
	}
	if capped <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(capped) + 1))
}

// totalBackoffBudget returns the sum of every possible backoff delay's
// upper bound across all retry attempts, used to compute a task's overall
// deadline (http_timeout × (max_retries+1) + total_backoff).
func totalBackoffBudget(cfg RetryConfig) time.Duration {
	var total time.Duration
	for attempt := 0; attempt < cfg.MaxAttempts-1; attempt++ {
		capped := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt))
		if capped > float64(cfg.MaxDelay) {
			capped = float64(cfg.MaxDelay)
		}
		total += time.Duration(capped)
	}
	return total
}

// TaskDeadline computes the per-task deadline: http_timeout × (max_retries+1)
// plus the total backoff budget across all retries, per the fabric's
// scheduling contract.
func TaskDeadline(httpTimeout time.Duration, retry RetryConfig) time.Duration {
	return httpTimeout*time.Duration(retry.MaxAttempts) + totalBackoffBudget(retry)
}
