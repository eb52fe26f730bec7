package store

import (
	"context"
	"errors"
	"time"
)

const (
	readAttempts = 3
	readBackoff  = 500 * time.Millisecond
)

// retryRead re-attempts an idempotent read-only call after transient host
// failures. Writes, branch creation and pull-request creation must never go
// through here: a blind retry of a non-idempotent call can leave duplicate
// branches or pull requests behind.
func retryRead[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	backoff := readBackoff

	var err error
	for attempt := 0; attempt < readAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		var result T
		result, err = fn()
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, ErrRemoteUnavailable) {
			return zero, err
		}
	}

	return zero, err
}
