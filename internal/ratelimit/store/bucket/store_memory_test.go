package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unitgate/pkg/requestcontext"
)

func at(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func TestInMemoryBucketStore_AllowN(t *testing.T) {
	store := NewInMemoryBucketStore()
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	for i := range 3 {
		res, err := store.AllowN(at(start), "k", 1, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := store.AllowN(at(start.Add(10*time.Second)), "k", 1, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, start.Add(time.Minute), res.ResetAt)
	assert.Equal(t, 50, res.RetryAfter)

	t.Run("window slides", func(t *testing.T) {
		res, err := store.AllowN(at(start.Add(61*time.Second)), "k", 1, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("keys are independent", func(t *testing.T) {
		res, err := store.AllowN(at(start), "other", 1, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})
}

func TestInMemoryBucketStore_CostAboveLimit(t *testing.T) {
	store := NewInMemoryBucketStore()
	res, err := store.AllowN(context.Background(), "k", 5, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Positive(t, res.RetryAfter)
}

func TestInMemoryBucketStore_Reset(t *testing.T) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()
	_, err := store.AllowN(ctx, "k", 1, 1, time.Minute)
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx, "k"))

	res, err := store.AllowN(ctx, "k", 1, 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestInMemoryBucketStore_RejectsBadArguments(t *testing.T) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()
	_, err := store.AllowN(ctx, "", 1, 1, time.Minute)
	assert.Error(t, err)
	_, err = store.AllowN(ctx, "k", 0, 1, time.Minute)
	assert.Error(t, err)
	_, err = store.AllowN(ctx, "k", 1, 1, 0)
	assert.Error(t, err)
}

func TestInMemoryBucketStore_ConcurrentCallersShareBudget(t *testing.T) {
	store := NewInMemoryBucketStore()
	ctx := at(time.Now())
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 50 {
		wg.Go(func() {
			res, err := store.AllowN(ctx, "shared", 1, 10, time.Minute)
			if err != nil || !res.Allowed {
				return
			}
			mu.Lock()
			allowed++
			mu.Unlock()
		})
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
}
