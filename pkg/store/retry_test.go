package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryRead_RecoversFromTransientFailure(t *testing.T) {
	calls := 0
	result, err := retryRead(context.Background(), func() (string, error) {
		calls++
		if calls < 3 {
			return "", fmt.Errorf("host down: %w", ErrRemoteUnavailable)
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestRetryRead_GivesUpAfterBoundedAttempts(t *testing.T) {
	calls := 0
	_, err := retryRead(context.Background(), func() (string, error) {
		calls++
		return "", fmt.Errorf("host down: %w", ErrRemoteUnavailable)
	})

	require.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.Equal(t, readAttempts, calls)
}

func TestRetryRead_DoesNotRetryNonTransientErrors(t *testing.T) {
	calls := 0
	_, err := retryRead(context.Background(), func() (string, error) {
		calls++
		return "", fmt.Errorf("missing: %w", ErrNotFound)
	})

	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestRetryRead_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := retryRead(ctx, func() (string, error) {
		calls++
		return "", fmt.Errorf("host down: %w", ErrRemoteUnavailable)
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPipelineConclusion(t *testing.T) {
	assert.Equal(t, "success", pipelineConclusion("success"))
	assert.Equal(t, "failed", pipelineConclusion("failed"))
	assert.Equal(t, "", pipelineConclusion("running"))
	assert.Equal(t, "", pipelineConclusion("pending"))
}
