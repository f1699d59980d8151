package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"unitgate/internal/directory"
	"unitgate/internal/membership/models"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/sentinel"
	"unitgate/pkg/testutil"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
	now   time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
	s.now = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) request(applicant, unit string, source models.Source, at time.Time) *models.Request {
	claim := models.Claim{
		BuildingID:       testutil.TestIDs.BuildingA,
		BuildingCode:     "B-100",
		UnitNumber:       unit,
		ResidentCount:    1,
		Role:             models.Tenant(),
		FullName:         "Tara",
		PhoneNumber:      applicant,
		OwnerFullName:    "Omid",
		OwnerPhoneNumber: testutil.OwnerPhone,
	}
	r, err := models.NewRequest(id.NewRequestID(), applicant, claim, source, at)
	s.Require().NoError(err)
	r.RequiresOwnerApproval = true
	return r
}

func (s *MemoryStoreSuite) TestCreate() {
	s.Run("one active request per applicant and unit", func() {
		first := s.request(testutil.TenantPhone, "4", models.SourceDirect, s.now)
		s.Require().NoError(s.store.Create(s.ctx, first))

		dup := s.request(testutil.TenantPhone, "4", models.SourceDirect, s.now)
		s.ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrAlreadyUsed)

		other := s.request(testutil.TenantPhone, "5", models.SourceDirect, s.now)
		s.NoError(s.store.Create(s.ctx, other))
	})

	s.Run("terminal requests free the slot", func() {
		r := s.request(testutil.ApplicantPhone, "9", models.SourceDirect, s.now)
		s.Require().NoError(s.store.Create(s.ctx, r))
		s.Require().NoError(r.Withdraw(s.now))
		s.Require().NoError(s.store.Update(s.ctx, r, models.StatusPending))

		again := s.request(testutil.ApplicantPhone, "9", models.SourceDirect, s.now)
		s.NoError(s.store.Create(s.ctx, again))
	})

	s.Run("stored copy is isolated from the caller", func() {
		r := s.request(testutil.FamilyPhone, "1", models.SourceDirect, s.now)
		s.Require().NoError(s.store.Create(s.ctx, r))
		r.FullName = "changed"

		got, err := s.store.FindByID(s.ctx, r.ID)
		s.Require().NoError(err)
		s.Equal("Tara", got.FullName)
	})
}

// TestUpdate checks the compare-and-set against the persisted status and version.
func (s *MemoryStoreSuite) TestUpdate() {
	r := s.request(testutil.TenantPhone, "4", models.SourceDirect, s.now)
	s.Require().NoError(s.store.Create(s.ctx, r))

	stale, err := s.store.FindByID(s.ctx, r.ID)
	s.Require().NoError(err)

	s.Require().NoError(r.ApproveByOwner(testutil.TestIDs.Owner, s.now))
	s.Require().NoError(s.store.Update(s.ctx, r, models.StatusPending))
	s.Equal(1, r.Version)

	s.Run("stale status loses", func() {
		s.Require().NoError(stale.ApproveByOwner(testutil.TestIDs.Owner, s.now))
		s.ErrorIs(s.store.Update(s.ctx, stale, models.StatusPending), sentinel.ErrInvalidState)
	})

	s.Run("stale version loses even with the right status", func() {
		old := r.Clone()
		old.Version = 0
		s.ErrorIs(s.store.Update(s.ctx, old, models.StatusOwnerApproved), sentinel.ErrInvalidState)
	})

	s.Run("unknown request", func() {
		ghost := s.request(testutil.ApplicantPhone, "1", models.SourceDirect, s.now)
		s.ErrorIs(s.store.Update(s.ctx, ghost, models.StatusPending), sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestLists() {
	older := s.request(testutil.ApplicantPhone, "1", models.SourceSuggested, s.now)
	newer := s.request(testutil.ApplicantPhone, "2", models.SourceSuggested, s.now.Add(time.Hour))
	direct := s.request(testutil.ApplicantPhone, "3", models.SourceDirect, s.now.Add(-time.Hour))
	direct.RequiresOwnerApproval = false
	for _, r := range []*models.Request{newer, older, direct} {
		s.Require().NoError(s.store.Create(s.ctx, r))
	}

	mine, err := s.store.ListByApplicant(s.ctx, "+98 912 000 0004")
	s.Require().NoError(err)
	s.Require().Len(mine, 3)
	s.Equal(direct.ID, mine[0].ID)
	s.Equal(older.ID, mine[1].ID)

	suggested, err := s.store.ListSuggestedPending(s.ctx, testutil.ApplicantPhone)
	s.Require().NoError(err)
	s.Require().Len(suggested, 2)
	s.Equal(older.ID, suggested[0].ID)

	owned, err := s.store.ListByOwnerPhone(s.ctx, testutil.OwnerPhone)
	s.Require().NoError(err)
	s.Len(owned, 3)

	pending, err := s.store.ListManagerPending(s.ctx, testutil.TestIDs.BuildingA)
	s.Require().NoError(err)
	s.Require().Len(pending, 1, "suggestions and owner-gated requests are not the manager's yet")
	s.Equal(direct.ID, pending[0].ID)
}

func (s *MemoryStoreSuite) TestHasApprovedInBuilding() {
	r := s.request(testutil.TenantPhone, "4", models.SourceDirect, s.now)
	s.Require().NoError(s.store.Create(s.ctx, r))

	byID := directory.BuildingRef{ID: testutil.TestIDs.BuildingA}
	byCode := directory.BuildingRef{Code: "b-100"}

	found, err := s.store.HasApprovedInBuilding(s.ctx, testutil.TenantPhone, byID)
	s.Require().NoError(err)
	s.False(found, "pending does not count")

	s.Require().NoError(r.ApproveByOwner(testutil.TestIDs.Owner, s.now))
	s.Require().NoError(s.store.Update(s.ctx, r, models.StatusPending))

	for _, ref := range []directory.BuildingRef{byID, byCode} {
		found, err = s.store.HasApprovedInBuilding(s.ctx, testutil.TenantPhone, ref)
		s.Require().NoError(err)
		s.True(found)
	}

	found, err = s.store.HasApprovedInBuilding(s.ctx, testutil.TenantPhone, directory.BuildingRef{ID: testutil.TestIDs.BuildingB})
	s.Require().NoError(err)
	s.False(found)
}

func (s *MemoryStoreSuite) TestConcurrentApproval() {
	r := s.request(testutil.TenantPhone, "4", models.SourceDirect, s.now)
	s.Require().NoError(s.store.Create(s.ctx, r))

	result := testutil.RunConcurrent(10, func(int) error {
		cur, err := s.store.FindByID(s.ctx, r.ID)
		if err != nil {
			return err
		}
		if err := cur.ApproveByOwner(testutil.TestIDs.Owner, s.now); err != nil {
			return sentinel.ErrInvalidState
		}
		return s.store.Update(s.ctx, cur, models.StatusPending)
	})
	s.EqualValues(1, result.Successes)
	s.EqualValues(9, result.Conflicts)
}
