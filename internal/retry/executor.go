package retry

import (
	"context"
	"time"
)

// Executor runs an operation and retries it while errors are transient.
//
// Safe for concurrent use. WithOnRetry returns a copy, leaving the receiver unchanged.
type Executor struct {
	classifier Classifier
	backoff    Backoff
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a new Executor.
// Panics if classifier or backoff is nil.
func NewExecutor(classifier Classifier, backoff Backoff) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if backoff == nil {
		panic("backoff cannot be nil")
	}
	return &Executor{classifier: classifier, backoff: backoff}
}

// WithOnRetry returns a new Executor that calls callback before each retry.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation once, then retries on transient errors until the
// backoff's attempt budget is spent. Returns the last error.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	lastErr := operation(ctx)
	if lastErr == nil || !e.classifier.IsTransient(lastErr) {
		return lastErr
	}

	maxAttempts := e.backoff.MaxAttempts()
	for attempt := 0; maxAttempts < 0 || attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		delay := e.backoff.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		lastErr = operation(ctx)
		if lastErr == nil || !e.classifier.IsTransient(lastErr) {
			return lastErr
		}
	}

	return lastErr
}
