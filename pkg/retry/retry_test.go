package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	return cfg
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	failure := errors.New("still down")
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return failure
	})

	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 3, calls)
}

func TestDo_NonRetryableErrorFailsImmediately(t *testing.T) {
	errTransient := errors.New("service unavailable")
	errPermanent := errors.New("input rejected")

	cfg := fastConfig()
	cfg.RetryableErrors = []error{errTransient}

	calls := 0
	err := Do(context.Background(), cfg, func() error {
		calls++
		return fmt.Errorf("embedding chunk: %w", errPermanent)
	})

	assert.ErrorIs(t, err, errPermanent)
	assert.Equal(t, 1, calls)
}

func TestDo_AllowListedWrappedErrorIsRetried(t *testing.T) {
	errTransient := errors.New("service unavailable")

	cfg := fastConfig()
	cfg.RetryableErrors = []error{errTransient}

	calls := 0
	err := Do(context.Background(), cfg, func() error {
		calls++
		if calls < 2 {
			return fmt.Errorf("embedding chunk: %w", errTransient)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, fastConfig(), func() error {
		calls++
		return errors.New("never reached")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
