package bucket

import (
	"context"
	"sync"
	"time"

	"unitgate/internal/ratelimit/models"
	"unitgate/pkg/requestcontext"
)

// InMemoryBucketStore implements a sliding window per key. For more than one
// replica use RedisBucketStore.
type InMemoryBucketStore struct {
	mu      sync.Mutex
	buckets map[string]*slidingWindow
}

type slidingWindow struct {
	timestamps []time.Time
	window     time.Duration
}

func (sw *slidingWindow) tryConsume(cost, limit int, now time.Time) (allowed bool, remaining int, resetAt time.Time) {
	sw.cleanupExpired(now)

	if len(sw.timestamps)+cost > limit {
		if len(sw.timestamps) == 0 {
			return false, 0, now.Add(sw.window)
		}
		return false, 0, sw.timestamps[0].Add(sw.window)
	}

	for range cost {
		sw.timestamps = append(sw.timestamps, now)
	}

	return true, limit - len(sw.timestamps), sw.timestamps[0].Add(sw.window)
}

func (sw *slidingWindow) cleanupExpired(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

func NewInMemoryBucketStore() *InMemoryBucketStore {
	return &InMemoryBucketStore{
		buckets: make(map[string]*slidingWindow),
	}
}

// AllowN consumes cost units from key's window if the limit allows it.
func (s *InMemoryBucketStore) AllowN(ctx context.Context, key string, cost, limit int, window time.Duration) (*models.RateLimitResult, error) {
	if err := validate(key, cost, limit, window); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.buckets[key]
	if !ok {
		bucket = &slidingWindow{window: window}
		s.buckets[key] = bucket
	}
	allowed, remaining, resetAt := bucket.tryConsume(cost, limit, now)

	return &models.RateLimitResult{
		Allowed:    allowed,
		Limit:      limit,
		Remaining:  remaining,
		ResetAt:    resetAt,
		RetryAfter: models.RetryAfterSeconds(allowed, now, resetAt),
	}, nil
}

// Reset clears the counter for a key.
func (s *InMemoryBucketStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}
