package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return nil
	}, 3, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_ExhaustsAttempts(t *testing.T) {
	wantErr := errors.New("backend down")
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return wantErr
	}, 3, time.Millisecond)
	assert.Equal(t, wantErr, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_InvalidAttempts(t *testing.T) {
	err := RetryWithBackoff(context.Background(), func() error { return nil }, 0, time.Millisecond)
	assert.Equal(t, ErrInvalidMaxAttempts, err)
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, func() error { return errors.New("never retried") }, 3, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryWithBackoff_PermanentErrorStops(t *testing.T) {
	wantErr := errors.New("invalid api key")
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return Permanent(wantErr)
	}, 5, time.Millisecond)
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_CancellationDuringCallStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		cancel()
		return context.Canceled
	}, 5, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPermanentNil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
