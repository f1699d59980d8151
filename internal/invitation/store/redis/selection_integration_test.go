//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"unitgate/internal/directory"
	"unitgate/internal/invitation/models"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/sentinel"
	"unitgate/pkg/testutil"
	"unitgate/pkg/testutil/containers"
)

type SelectionStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *SelectionStore
	ctx   context.Context
}

func TestSelectionStoreSuite(t *testing.T) {
	suite.Run(t, new(SelectionStoreSuite))
}

func (s *SelectionStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *SelectionStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.redis.Flush(s.ctx))
	s.store = NewSelectionStore(s.redis.Client)
}

func (s *SelectionStoreSuite) selection() *models.Selection {
	return &models.Selection{
		ID:             id.NewSelectionID(),
		ApplicantPhone: testutil.ApplicantPhone,
		ManagerPhone:   testutil.ManagerPhone,
		Buildings: []directory.Building{
			{ID: testutil.TestIDs.BuildingA, Code: "A-100", Name: "Alborz"},
			{ID: id.NewBuildingID(), Code: "B-200", Name: "Sahand"},
		},
		ExpiresAt: time.Now().Add(time.Minute).UTC().Truncate(time.Second),
	}
}

func (s *SelectionStoreSuite) TestRoundTrip() {
	sel := s.selection()
	s.Require().NoError(s.store.Save(s.ctx, sel, time.Minute))

	got, err := s.store.Get(s.ctx, sel.ID)
	s.Require().NoError(err)
	s.Equal(sel.Buildings, got.Buildings)
	s.True(got.ExpiresAt.Equal(sel.ExpiresAt))

	ttl, err := s.redis.Client.TTL(s.ctx, key(sel.ID)).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}

func (s *SelectionStoreSuite) TestConsumeOnce() {
	sel := s.selection()
	s.Require().NoError(s.store.Save(s.ctx, sel, time.Minute))

	result := testutil.RunConcurrent(5, func(int) error {
		return s.store.Consume(s.ctx, sel.ID)
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(4), result.NotFounds)

	_, err := s.store.Get(s.ctx, sel.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *SelectionStoreSuite) TestExpires() {
	sel := s.selection()
	s.Require().NoError(s.store.Save(s.ctx, sel, time.Second))
	s.Eventually(func() bool {
		_, err := s.store.Get(s.ctx, sel.ID)
		return err != nil
	}, 5*time.Second, 100*time.Millisecond)
}
