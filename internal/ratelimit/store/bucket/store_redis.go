package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"unitgate/internal/ratelimit/models"
	"unitgate/pkg/requestcontext"
)

// slidingWindowScript trims the window, checks the budget and records the
// hit in one round trip. Scores are unix milliseconds.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local oldest = now
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if first[2] then
  oldest = tonumber(first[2])
end
if count + cost > limit then
  return {0, count, oldest}
end
for i = 1, cost do
  redis.call('ZADD', key, now, member .. ':' .. i)
end
redis.call('PEXPIRE', key, window)
return {1, count + cost, oldest}
`)

// RedisBucketStore shares sliding windows across replicas.
type RedisBucketStore struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *RedisBucketStore {
	return &RedisBucketStore{client: client}
}

func (s *RedisBucketStore) AllowN(ctx context.Context, key string, cost, limit int, window time.Duration) (*models.RateLimitResult, error) {
	if err := validate(key, cost, limit, window); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	out, err := slidingWindowScript.Run(ctx, s.client, []string{key},
		now.UnixMilli(), window.Milliseconds(), limit, cost, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("sliding window %s: %w", key, err)
	}
	if len(out) != 3 {
		return nil, fmt.Errorf("sliding window %s: unexpected reply %v", key, out)
	}

	allowed := out[0] == 1
	used := int(out[1])
	resetAt := time.UnixMilli(out[2]).Add(window)
	remaining := 0
	if allowed {
		remaining = limit - used
	}

	return &models.RateLimitResult{
		Allowed:    allowed,
		Limit:      limit,
		Remaining:  remaining,
		ResetAt:    resetAt,
		RetryAfter: models.RetryAfterSeconds(allowed, now, resetAt),
	}, nil
}

func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
