//go:build integration

package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"unitgate/pkg/requestcontext"
	"unitgate/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisBucketStore
}

func TestRedisBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.Flush(context.Background()))
	s.store = NewRedis(s.redis.Client)
}

func (s *RedisBucketStoreSuite) TestBudgetIsEnforcedAcrossCalls() {
	now := time.Now().Truncate(time.Millisecond)
	ctx := requestcontext.WithTime(context.Background(), now)

	for i := range 2 {
		res, err := s.store.AllowN(ctx, "k", 1, 2, time.Minute)
		s.Require().NoError(err)
		s.True(res.Allowed)
		s.Equal(1-i, res.Remaining)
	}

	res, err := s.store.AllowN(ctx, "k", 1, 2, time.Minute)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Equal(now.Add(time.Minute).UnixMilli(), res.ResetAt.UnixMilli())

	ttl, err := s.redis.Client.PTTL(ctx, "k").Result()
	s.Require().NoError(err)
	s.Positive(ttl)
}

func (s *RedisBucketStoreSuite) TestWindowSlides() {
	start := time.Now()
	_, err := s.store.AllowN(requestcontext.WithTime(context.Background(), start), "k", 1, 1, time.Second)
	s.Require().NoError(err)

	later := requestcontext.WithTime(context.Background(), start.Add(2*time.Second))
	res, err := s.store.AllowN(later, "k", 1, 1, time.Second)
	s.Require().NoError(err)
	s.True(res.Allowed)
}

func (s *RedisBucketStoreSuite) TestReset() {
	ctx := context.Background()
	_, err := s.store.AllowN(ctx, "k", 1, 1, time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(ctx, "k"))

	res, err := s.store.AllowN(ctx, "k", 1, 1, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)
}
