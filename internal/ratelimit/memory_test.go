package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_AdmitsUpToLimit(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryLimiter(Policy{Limit: 3, Window: time.Minute})
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, "alice", now.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d, err := limiter.Allow(ctx, "alice", now.Add(10*time.Second))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 50*time.Second, d.RetryAfter)

	other, err := limiter.Allow(ctx, "bob", now.Add(10*time.Second))
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are independent")
}

func TestMemoryLimiter_WindowSlides(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryLimiter(Policy{Limit: 2, Window: time.Minute})
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	mustAllow := func(at time.Time, want bool) {
		t.Helper()
		d, err := limiter.Allow(ctx, "alice", at)
		require.NoError(t, err)
		require.Equal(t, want, d.Allowed, "at %s", at)
	}

	mustAllow(now, true)
	mustAllow(now.Add(30*time.Second), true)
	mustAllow(now.Add(59*time.Second), false)
	// rejected attempts do not extend the window
	mustAllow(now.Add(60*time.Second), true)
	mustAllow(now.Add(61*time.Second), false)
	mustAllow(now.Add(90*time.Second), true)
}

func TestMemoryLimiter_ConcurrentSameKey(t *testing.T) {
	ctx := context.Background()
	const limit = 10
	limiter := NewMemoryLimiter(Policy{Limit: limit, Window: time.Hour})
	now := time.Now()

	var (
		wg      sync.WaitGroup
		allowed atomic.Int64
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := limiter.Allow(ctx, "alice", now)
			if err == nil && d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, limit, allowed.Load())
}

func TestDisabledPolicyAdmitsEverything(t *testing.T) {
	limiter := NewMemoryLimiter(Policy{Limit: 0, Window: time.Minute})
	for i := 0; i < 1000; i++ {
		d, err := limiter.Allow(context.Background(), "alice", time.Now())
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}
}

func TestMemoryLimiter_PruneDropsIdleKeys(t *testing.T) {
	limiter := NewMemoryLimiter(Policy{Limit: 2, Window: time.Minute})
	pruner, ok := limiter.(Pruner)
	require.True(t, ok)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := limiter.Allow(context.Background(), "idle", start)
	require.NoError(t, err)
	_, err = limiter.Allow(context.Background(), "busy", start.Add(50*time.Second))
	require.NoError(t, err)

	assert.Equal(t, 1, pruner.Prune(start.Add(61*time.Second)))
	assert.Equal(t, 0, pruner.Prune(start.Add(61*time.Second)))
}
