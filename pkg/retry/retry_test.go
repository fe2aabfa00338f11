package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func TestDo(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts: 3,
		Backoff:     LineareBackoff(time.Millisecond),
		ShouldRetry: func(err error) bool { return errors.Is(err, errTransient) },
	}

	t.Run("SucceedsAfterRetry", func(t *testing.T) {
		var calls int
		err := Do(t.Context(), cfg, func() error {
			calls++
			if calls < 3 {
				return errTransient
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("GivesUp", func(t *testing.T) {
		var calls int
		err := Do(t.Context(), cfg, func() error {
			calls++
			return errTransient
		})
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 3, calls)
	})

	t.Run("NotRetryable", func(t *testing.T) {
		fatal := errors.New("fatal")
		var calls int
		err := Do(t.Context(), cfg, func() error {
			calls++
			return fatal
		})
		assert.ErrorIs(t, err, fatal)
		assert.Equal(t, 1, calls)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		err := Do(ctx, cfg, func() error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDoWithResult(t *testing.T) {
	v, err := DoWithResult(t.Context(), RetryConfig{}, func() (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
