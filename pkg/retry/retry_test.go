package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	policy := Policy{MaxRetries: 2, Delay: time.Millisecond}
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesAtMostBudget(t *testing.T) {
	calls := 0
	boom := errors.New("load failed")
	policy := Policy{MaxRetries: 2, Delay: time.Millisecond}
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	// initial attempt plus two retries, then the caller falls back
	assert.Equal(t, 3, calls)
}

func TestDoRecoversMidway(t *testing.T) {
	calls := 0
	policy := Policy{MaxRetries: 2, Delay: time.Millisecond}
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoStopsOnTimeout(t *testing.T) {
	calls := 0
	boom := errors.New("slow resource")
	policy := Policy{MaxRetries: 10, Delay: 50 * time.Millisecond, Timeout: 60 * time.Millisecond}
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return boom
	})
	require.Error(t, err)
	assert.Less(t, calls, 11)
}

func TestDoRespectsCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	policy := Policy{MaxRetries: 3, Delay: 10 * time.Millisecond}
	err := policy.Do(ctx, func(ctx context.Context) error {
		return errors.New("never settles")
	})
	require.Error(t, err)
}
