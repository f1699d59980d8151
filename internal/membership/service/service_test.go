package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"unitgate/internal/directory"
	dirmemory "unitgate/internal/directory/memory"
	invitationmodels "unitgate/internal/invitation/models"
	invitationmemory "unitgate/internal/invitation/store/memory"
	"unitgate/internal/membership/matcher"
	membershipmetrics "unitgate/internal/membership/metrics"
	"unitgate/internal/membership/models"
	"unitgate/internal/membership/store"
	"unitgate/internal/membership/store/memory"
	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/platform/outbox"
	"unitgate/pkg/platform/sentinel"
	"unitgate/pkg/requestcontext"
	"unitgate/pkg/testutil"
)

const buildingCode = "A-100"

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	dir      *dirmemory.Directory
	requests *memory.Store
	box      *outbox.MemoryStore
	metrics  *membershipmetrics.Metrics
	svc      *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.dir = dirmemory.New()
	s.dir.AddBuilding(directory.Building{
		ID:           testutil.TestIDs.BuildingA,
		Code:         buildingCode,
		Name:         "Alborz Tower",
		ManagerPhone: testutil.ManagerPhone,
	})
	s.dir.PutRecord(&directory.OccupantRecord{
		Unit: directory.NewUnitRef(testutil.TestIDs.BuildingA, "12"),
		OccupantData: directory.OccupantData{
			BuildingCode:  buildingCode,
			Floor:         "3",
			Area:          "80",
			OwnerType:     directory.OwnerTypeResident,
			Owner:         directory.Person{FullName: "X", Phone: testutil.OwnerPhone},
			ResidentCount: 2,
		},
		CreatedAt: s.now.Add(-48 * time.Hour),
		UpdatedAt: s.now.Add(-48 * time.Hour),
	})
	s.requests = memory.New()
	s.box = outbox.NewMemoryStore()
	s.metrics = membershipmetrics.NewWith(prometheus.NewRegistry())
	s.svc = s.build(s.dir, s.requests)
}

func (s *ServiceSuite) build(writer directory.Writer, requests store.RequestStore, opts ...Option) *Service {
	tx := NewInMemoryTx(Stores{Requests: requests, Directory: writer, Outbox: s.box})
	m := matcher.New(s.dir, matcher.GuardFunc(s.requests.HasApprovedInBuilding))
	opts = append([]Option{WithMetrics(s.metrics)}, opts...)
	return New(tx, s.requests, s.dir, m, opts...)
}

func (s *ServiceSuite) at(offset time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.now.Add(offset))
}

func ownerClaim() models.Claim {
	return models.Claim{
		BuildingCode:  buildingCode,
		UnitNumber:    "12",
		Floor:         "3",
		Area:          "80",
		ResidentCount: 2,
		Role:          models.Owner(models.OwnerResident),
		FullName:      "X",
		PhoneNumber:   testutil.OwnerPhone,
	}
}

func tenantClaim() models.Claim {
	return models.Claim{
		BuildingCode:     buildingCode,
		UnitNumber:       "12",
		ResidentCount:    1,
		Role:             models.Tenant(),
		FullName:         "Tara Tenant",
		PhoneNumber:      testutil.TenantPhone,
		OwnerFullName:    "X",
		OwnerPhoneNumber: testutil.OwnerPhone,
	}
}

func applicantClaim(unit string) models.Claim {
	return models.Claim{
		BuildingID:    testutil.TestIDs.BuildingA,
		UnitNumber:    unit,
		ResidentCount: 1,
		Role:          models.Owner(models.OwnerResident),
		FullName:      "Arash Applicant",
		PhoneNumber:   testutil.ApplicantPhone,
	}
}

func (s *ServiceSuite) submitTenant() *models.Request {
	r, err := s.svc.Submit(s.ctx, testutil.TenantActor(), tenantClaim())
	s.Require().NoError(err)
	s.Require().Equal(models.StatusPending, r.Status)
	return r
}

func (s *ServiceSuite) eventTypes() []string {
	var out []string
	for _, e := range s.box.Entries() {
		out = append(out, e.EventType)
	}
	return out
}

func (s *ServiceSuite) TestSubmit() {
	s.Run("tenant without owner info is rejected", func() {
		claim := tenantClaim()
		claim.OwnerFullName = ""
		_, err := s.svc.Submit(s.ctx, testutil.TenantActor(), claim)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "owner info required")
	})

	s.Run("unknown building", func() {
		claim := tenantClaim()
		claim.BuildingCode = "Z-9"
		_, err := s.svc.Submit(s.ctx, testutil.TenantActor(), claim)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("anonymous actor", func() {
		_, err := s.svc.Submit(s.ctx, id.Actor{}, tenantClaim())
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("owner empty drops claimed identity", func() {
		claim := applicantClaim("30")
		claim.Role = models.Owner(models.OwnerEmpty)
		r, err := s.svc.Submit(s.ctx, testutil.ApplicantActor(), claim)
		s.Require().NoError(err)
		s.Zero(r.ResidentCount)
		s.Empty(r.FullName)
		s.Empty(r.PhoneNumber)
		s.Equal(testutil.TestIDs.BuildingA, r.BuildingID)
	})
}

func (s *ServiceSuite) TestSubmitUnchangedClaimTakesFastPath() {
	r, err := s.svc.Submit(s.ctx, testutil.OwnerActor(), ownerClaim())
	s.Require().NoError(err)

	s.Equal(models.StatusManagerApproved, r.Status)
	s.True(r.AutoApproved)
	s.False(r.HasBeenEdited)
	s.False(r.RequiresOwnerApproval)
	s.Nil(r.OwnerApprovedAt)
	s.Equal([]string{models.EventSubmitted, models.EventAutoApproved}, s.eventTypes())

	stored, err := s.requests.FindByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusManagerApproved, stored.Status)
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.FastPaths.WithLabelValues(string(models.FastPathAutoApprove))))
}

func (s *ServiceSuite) TestSubmitEditedClaimTakesFullPath() {
	claim := ownerClaim()
	claim.Area = "81"
	r, err := s.svc.Submit(s.ctx, testutil.OwnerActor(), claim)
	s.Require().NoError(err)

	s.Equal(models.StatusPending, r.Status)
	s.True(r.HasBeenEdited)
	s.False(r.AutoApproved)
	s.Equal([]string{models.EventSubmitted}, s.eventTypes())
}

func (s *ServiceSuite) TestFastPathPolicies() {
	unit := directory.NewUnitRef(testutil.TestIDs.BuildingA, "7")
	s.dir.PutRecord(&directory.OccupantRecord{
		Unit: unit,
		OccupantData: directory.OccupantData{
			BuildingCode:  buildingCode,
			OwnerType:     directory.OwnerTypeLandlord,
			Owner:         directory.Person{FullName: "X", Phone: testutil.OwnerPhone},
			Tenant:        &directory.Person{FullName: "Tara Tenant", Phone: testutil.TenantPhone},
			ResidentCount: 1,
		},
		CreatedAt: s.now.Add(-time.Hour),
	})
	claim := tenantClaim()
	claim.UnitNumber = "7"

	s.Run("skip_owner keeps the request pending without the owner gate", func() {
		svc := s.build(s.dir, s.requests, WithFastPathPolicy(models.FastPathSkipOwner))
		r, err := svc.Submit(s.ctx, testutil.TenantActor(), claim)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, r.Status)
		s.False(r.RequiresOwnerApproval)
		s.True(store.AwaitsManager(r))

		_, err = svc.Withdraw(s.ctx, r.ID, testutil.TenantActor())
		s.Require().NoError(err)
	})

	s.Run("disabled takes the full path", func() {
		svc := s.build(s.dir, s.requests, WithFastPathPolicy(models.FastPathDisabled))
		s.Equal(models.FastPathDisabled, svc.Policy())
		r, err := svc.Submit(s.ctx, testutil.TenantActor(), claim)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, r.Status)
		s.True(r.RequiresOwnerApproval)
	})

	s.Run("unknown policy keeps the default", func() {
		svc := s.build(s.dir, s.requests, WithFastPathPolicy("sometimes"))
		s.Equal(models.FastPathAutoApprove, svc.Policy())
	})
}

func (s *ServiceSuite) TestDuplicateActiveRequest() {
	s.submitTenant()
	_, err := s.svc.Submit(s.ctx, testutil.TenantActor(), tenantClaim())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestOwnerApprove() {
	r := s.submitTenant()
	s.True(r.RequiresOwnerApproval)
	s.Equal(testutil.OwnerPhone, r.OwnerOfRecordPhone)

	s.Run("manager cannot skip the owner gate", func() {
		_, err := s.svc.ManagerApprove(s.ctx, r.ID, testutil.ManagerActor())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("only the owner of record", func() {
		_, err := s.svc.OwnerApprove(s.ctx, r.ID, testutil.ApplicantActor())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("second approval conflicts", func() {
		first, err := s.svc.OwnerApprove(s.ctx, r.ID, testutil.OwnerActor())
		s.Require().NoError(err)
		s.Equal(models.StatusOwnerApproved, first.Status)
		s.Equal(testutil.TestIDs.Owner, first.OwnerApprovedBy)

		_, err = s.svc.OwnerApprove(s.ctx, r.ID, testutil.OwnerActor())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown request", func() {
		_, err := s.svc.OwnerApprove(s.ctx, id.NewRequestID(), testutil.OwnerActor())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestApplicantCannotPassOwnOwnerGate() {
	s.Run("tenant naming themselves as owner is rejected", func() {
		claim := tenantClaim()
		claim.UnitNumber = "99"
		claim.OwnerFullName = "Tara Tenant"
		claim.OwnerPhoneNumber = "+98 912 000 0003"
		_, err := s.svc.Submit(s.ctx, testutil.TenantActor(), claim)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Empty(s.eventTypes())
	})

	s.Run("tenant of a unit they own on record is rejected", func() {
		claim := tenantClaim()
		claim.OwnerFullName = "Omid Owner"
		claim.PhoneNumber = testutil.OwnerPhone
		_, err := s.svc.Submit(s.ctx, testutil.OwnerActor(), claim)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("applicant who later becomes owner of record cannot approve", func() {
		claim := tenantClaim()
		claim.UnitNumber = "98"
		r, err := s.svc.Submit(s.ctx, testutil.TenantActor(), claim)
		s.Require().NoError(err)
		s.Require().True(r.RequiresOwnerApproval)

		s.dir.PutRecord(&directory.OccupantRecord{
			Unit: directory.NewUnitRef(testutil.TestIDs.BuildingA, "98"),
			OccupantData: directory.OccupantData{
				BuildingCode: buildingCode,
				OwnerType:    directory.OwnerTypeResident,
				Owner:        directory.Person{FullName: "Tara Tenant", Phone: testutil.TenantPhone},
			},
			CreatedAt: s.now,
		})
		_, err = s.svc.OwnerApprove(s.ctx, r.ID, testutil.TenantActor())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		stored, err := s.requests.FindByID(s.ctx, r.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, stored.Status)
	})
}

func (s *ServiceSuite) TestManagerApproveWritesDirectory() {
	r := s.submitTenant()
	_, err := s.svc.OwnerApprove(s.ctx, r.ID, testutil.OwnerActor())
	s.Require().NoError(err)

	other := testutil.NewActor(id.NewUserID(), "09129999999").Managing(testutil.TestIDs.BuildingB).Build()
	_, err = s.svc.ManagerApprove(s.ctx, r.ID, other)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	approved, err := s.svc.ManagerApprove(s.ctx, r.ID, testutil.ManagerActor())
	s.Require().NoError(err)
	s.Equal(models.StatusManagerApproved, approved.Status)
	s.Equal(testutil.TestIDs.Manager, approved.ApprovedBy)

	rec, err := s.dir.GetUnit(s.ctx, r.Unit())
	s.Require().NoError(err)
	s.Require().NotNil(rec.Tenant)
	s.Equal(testutil.TenantPhone, rec.Tenant.Phone)
	s.Equal(testutil.OwnerPhone, rec.Owner.Phone)
	s.Equal(directory.OwnerTypeLandlord, rec.OwnerType)

	s.Equal([]string{
		models.EventSubmitted,
		models.EventOwnerApproved,
		models.EventManagerApproved,
	}, s.eventTypes())
}

func (s *ServiceSuite) TestManagerApproveDirectoryFailureKeepsOwnerApproved() {
	r := s.submitTenant()
	_, err := s.svc.OwnerApprove(s.ctx, r.ID, testutil.OwnerActor())
	s.Require().NoError(err)

	svc := s.build(failingWriter{Writer: s.dir, err: sentinel.ErrUnavailable}, s.requests)
	_, err = svc.ManagerApprove(s.ctx, r.ID, testutil.ManagerActor())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	stored, err := s.requests.FindByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusOwnerApproved, stored.Status)
	s.Nil(stored.ManagerApprovedAt)

	rec, err := s.dir.GetUnit(s.ctx, r.Unit())
	s.Require().NoError(err)
	s.Nil(rec.Tenant)
}

func (s *ServiceSuite) TestManagerApproveStatusFailureCompensates() {
	r := s.submitTenant()
	_, err := s.svc.OwnerApprove(s.ctx, r.ID, testutil.OwnerActor())
	s.Require().NoError(err)

	svc := s.build(s.dir, failingUpdates{RequestStore: s.requests})
	_, err = svc.ManagerApprove(s.ctx, r.ID, testutil.ManagerActor())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	rec, err := s.dir.GetUnit(s.ctx, r.Unit())
	s.Require().NoError(err)
	s.Nil(rec.Tenant, "directory write must be undone")

	stored, err := s.requests.FindByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusOwnerApproved, stored.Status)
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.Compensations.WithLabelValues("ok")))
}

func (s *ServiceSuite) TestConcurrentOwnerApproval() {
	r := s.submitTenant()

	result := testutil.RunConcurrent(10, func(int) error {
		_, err := s.svc.OwnerApprove(s.ctx, r.ID, testutil.OwnerActor())
		return err
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(9), result.Conflicts)
}

func (s *ServiceSuite) TestReject() {
	r := s.submitTenant()

	s.Run("manager needs a reason", func() {
		_, err := s.svc.Reject(s.ctx, r.ID, testutil.ManagerActor(), "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("applicant cannot reject a direct request", func() {
		_, err := s.svc.Reject(s.ctx, r.ID, testutil.TenantActor(), "changed my mind")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("stranger", func() {
		stranger := testutil.NewActor(id.NewUserID(), "09128888888").Build()
		_, err := s.svc.Reject(s.ctx, r.ID, stranger, "no")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("owner rejects", func() {
		out, err := s.svc.Reject(s.ctx, r.ID, testutil.OwnerActor(), "not my tenant")
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, out.Status)
		s.Equal("not my tenant", out.RejectionReason)
		s.Equal(testutil.TestIDs.Owner, out.RejectedBy)
	})

	s.Run("terminal requests stay terminal", func() {
		_, err := s.svc.Reject(s.ctx, r.ID, testutil.ManagerActor(), "again")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		_, err = s.svc.OwnerApprove(s.ctx, r.ID, testutil.OwnerActor())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestWithdraw() {
	r := s.submitTenant()

	_, err := s.svc.Withdraw(s.ctx, r.ID, testutil.OwnerActor())
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	out, err := s.svc.Withdraw(s.ctx, r.ID, testutil.TenantActor())
	s.Require().NoError(err)
	s.Equal(models.StatusWithdrawn, out.Status)
	s.NotNil(out.WithdrawnAt)

	_, err = s.svc.Withdraw(s.ctx, r.ID, testutil.TenantActor())
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	again, err := s.svc.Submit(s.ctx, testutil.TenantActor(), tenantClaim())
	s.Require().NoError(err, "a withdrawn request frees the unit")
	s.Equal(models.StatusPending, again.Status)
}

func (s *ServiceSuite) TestSuggestionQueueOrdering() {
	manager := testutil.ManagerActor()
	applicant := testutil.ApplicantActor()

	t1, err := s.svc.Suggest(s.at(0), manager, testutil.ApplicantPhone, applicantClaim("21"))
	s.Require().NoError(err)
	t2, err := s.svc.Suggest(s.at(time.Minute), manager, testutil.ApplicantPhone, applicantClaim("22"))
	s.Require().NoError(err)
	s.True(t1.IsSuggested)
	s.Equal(models.SourceSuggested, t1.Source)
	s.Equal(testutil.TestIDs.Manager, t1.SuggestedBy)

	head, err := s.svc.Actionable(s.ctx, applicant)
	s.Require().NoError(err)
	s.Equal(t1.ID, head.ID)

	_, err = s.svc.AcceptSuggested(s.ctx, t2.ID, applicant)
	s.True(dErrors.HasCode(err, dErrors.CodeOrdering))
	_, err = s.svc.RejectSuggested(s.ctx, t2.ID, applicant, "")
	s.True(dErrors.HasCode(err, dErrors.CodeOrdering))

	rejected, err := s.svc.RejectSuggested(s.ctx, t1.ID, applicant, "")
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, rejected.Status)
	s.Empty(rejected.RejectionReason)

	head, err = s.svc.Actionable(s.ctx, applicant)
	s.Require().NoError(err)
	s.Equal(t2.ID, head.ID)

	accepted, err := s.svc.AcceptSuggested(s.ctx, t2.ID, applicant)
	s.Require().NoError(err)
	s.False(accepted.IsSuggested)
	s.Equal(models.SourceSuggested, accepted.Source)
	s.Equal(testutil.TestIDs.Applicant, accepted.ApplicantID)
	s.True(store.AwaitsManager(accepted))

	_, err = s.svc.Actionable(s.ctx, applicant)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestSuggestionGuards() {
	manager := testutil.ManagerActor()
	r, err := s.svc.Suggest(s.ctx, manager, testutil.ApplicantPhone, applicantClaim("21"))
	s.Require().NoError(err)

	s.Run("approvers wait for the applicant", func() {
		_, err := s.svc.ManagerApprove(s.ctx, r.ID, manager)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("open suggestions cannot be withdrawn", func() {
		_, err := s.svc.Withdraw(s.ctx, r.ID, testutil.ApplicantActor())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("another applicant cannot answer", func() {
		_, err := s.svc.AcceptSuggested(s.ctx, r.ID, testutil.TenantActor())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("non-manager cannot suggest", func() {
		_, err := s.svc.Suggest(s.ctx, testutil.OwnerActor(), testutil.ApplicantPhone, applicantClaim("23"))
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("onboarded applicants are not suggested again", func() {
		_, err := s.svc.Submit(s.ctx, testutil.OwnerActor(), ownerClaim())
		s.Require().NoError(err)
		_, err = s.svc.Suggest(s.ctx, manager, testutil.OwnerPhone, ownerClaim())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestActivatedOccupancySuppressesMatching() {
	links := invitationmemory.NewLinkStore()
	link, err := invitationmodels.NewInviteLink(id.NewInviteLinkID(), directory.NewUnitRef(testutil.TestIDs.BuildingA, "12"),
		invitationmodels.RoleOwner, testutil.TestIDs.Manager, s.now.Add(time.Hour), s.now)
	s.Require().NoError(err)
	s.Require().NoError(links.Create(s.ctx, link))
	s.Require().NoError(link.MarkUsed(testutil.OwnerActor(), s.now))
	s.Require().NoError(links.MarkUsed(s.ctx, link))

	tx := NewInMemoryTx(Stores{Requests: s.requests, Directory: s.dir, Outbox: s.box})
	m := matcher.New(s.dir,
		matcher.GuardFunc(s.requests.HasApprovedInBuilding),
		matcher.GuardFunc(links.HasUsedInBuilding),
	)
	svc := New(tx, s.requests, s.dir, m, WithMetrics(s.metrics))

	claim, err := svc.Prefill(s.ctx, testutil.OwnerActor(), "", directory.BuildingRef{Code: buildingCode})
	s.Require().NoError(err)
	s.Nil(claim)

	_, err = svc.Suggest(s.ctx, testutil.ManagerActor(), testutil.OwnerPhone, ownerClaim())
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	r, err := svc.Submit(s.ctx, testutil.OwnerActor(), ownerClaim())
	s.Require().NoError(err)
	s.False(r.AutoApproved)
	s.Equal(models.StatusPending, r.Status)
}

func (s *ServiceSuite) TestSuggestedUnchangedClaimTakesFastPath() {
	claim := ownerClaim()
	r, err := s.svc.Suggest(s.ctx, testutil.ManagerActor(), testutil.OwnerPhone, claim)
	s.Require().NoError(err)
	s.False(r.RequiresOwnerApproval)

	accepted, err := s.svc.AcceptSuggested(s.ctx, r.ID, testutil.OwnerActor())
	s.Require().NoError(err)
	s.Equal(models.StatusManagerApproved, accepted.Status)
	s.True(accepted.AutoApproved)
	s.Equal([]string{
		models.EventSuggested,
		models.EventSuggestionAccepted,
		models.EventAutoApproved,
	}, s.eventTypes())
}

func (s *ServiceSuite) TestEditSuggestedForcesFullPath() {
	r, err := s.svc.Suggest(s.ctx, testutil.ManagerActor(), testutil.OwnerPhone, ownerClaim())
	s.Require().NoError(err)

	edited := ownerClaim()
	edited.Floor = "4"
	out, err := s.svc.EditSuggested(s.ctx, r.ID, testutil.OwnerActor(), edited)
	s.Require().NoError(err)
	s.True(out.HasBeenEdited)
	s.False(out.IsSuggested)
	s.Equal(models.StatusPending, out.Status)
	s.Equal("4", out.Floor)
	s.Equal(testutil.TestIDs.BuildingA, out.BuildingID)

	_, err = s.svc.EditSuggested(s.ctx, r.ID, testutil.OwnerActor(), edited)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	approved, err := s.svc.ManagerApprove(s.ctx, r.ID, testutil.ManagerActor())
	s.Require().NoError(err)
	s.False(approved.AutoApproved)
}

func (s *ServiceSuite) TestQueries() {
	r := s.submitTenant()

	s.Run("get visibility", func() {
		for _, actor := range []id.Actor{testutil.TenantActor(), testutil.OwnerActor(), testutil.ManagerActor()} {
			got, err := s.svc.Get(s.ctx, r.ID, actor)
			s.Require().NoError(err)
			s.Equal(r.ID, got.ID)
		}
		_, err := s.svc.Get(s.ctx, r.ID, testutil.ApplicantActor())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("mine", func() {
		mine, err := s.svc.ListMine(s.ctx, testutil.TenantActor())
		s.Require().NoError(err)
		s.Len(mine, 1)
	})

	s.Run("owner lists", func() {
		pending, err := s.svc.ListPendingOwnerApproval(s.ctx, testutil.OwnerActor())
		s.Require().NoError(err)
		s.Len(pending, 1)

		all, err := s.svc.ListOwnerRequests(s.ctx, testutil.OwnerActor(), "")
		s.Require().NoError(err)
		s.Len(all, 1)

		approved, err := s.svc.ListOwnerRequests(s.ctx, testutil.OwnerActor(), "approved")
		s.Require().NoError(err)
		s.Empty(approved)

		_, err = s.svc.ListOwnerRequests(s.ctx, testutil.OwnerActor(), "bogus")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("manager queue", func() {
		queue, err := s.svc.ListManagerPending(s.ctx, testutil.ManagerActor(), testutil.TestIDs.BuildingA)
		s.Require().NoError(err)
		s.Empty(queue, "still waiting for the owner")

		_, err = s.svc.ListManagerPending(s.ctx, testutil.ManagerActor(), testutil.TestIDs.BuildingB)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		_, err = s.svc.OwnerApprove(s.ctx, r.ID, testutil.OwnerActor())
		s.Require().NoError(err)
		queue, err = s.svc.ListManagerPending(s.ctx, testutil.ManagerActor(), testutil.TestIDs.BuildingA)
		s.Require().NoError(err)
		s.Len(queue, 1)
	})
}

func (s *ServiceSuite) TestPrefill() {
	claim, err := s.svc.Prefill(s.ctx, testutil.OwnerActor(), "", directory.BuildingRef{})
	s.Require().NoError(err)
	s.Require().NotNil(claim)
	s.Equal("12", claim.UnitNumber)
	s.Equal(models.Owner(models.OwnerResident), claim.Role)

	_, err = s.svc.Prefill(s.ctx, testutil.TenantActor(), testutil.OwnerPhone, directory.BuildingRef{})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	byManager, err := s.svc.Prefill(s.ctx, testutil.ManagerActor(), testutil.OwnerPhone, directory.BuildingRef{Code: buildingCode})
	s.Require().NoError(err)
	s.NotNil(byManager)

	_, err = s.svc.Submit(s.ctx, testutil.OwnerActor(), ownerClaim())
	s.Require().NoError(err)
	after, err := s.svc.Prefill(s.ctx, testutil.OwnerActor(), "", directory.BuildingRef{})
	s.Require().NoError(err)
	s.Nil(after, "onboarded applicants get no prefill")
}

func (s *ServiceSuite) TestInMemoryTxHonoursCancellation() {
	tx := NewInMemoryTx(Stores{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := tx.RunInTx(ctx, func(context.Context, Stores) error {
		called = true
		return nil
	})
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	s.False(called)
}

type failingWriter struct {
	directory.Writer
	err error
}

func (w failingWriter) UpsertOccupant(context.Context, directory.UnitRef, directory.OccupantData) (*directory.WriteResult, error) {
	return nil, w.err
}

// failingUpdates lets every read through and fails terminal status writes.
type failingUpdates struct {
	store.RequestStore
}

var errDiskFull = errors.New("disk full")

func (f failingUpdates) Update(ctx context.Context, r *models.Request, expected models.Status) error {
	if r.Status == models.StatusManagerApproved {
		return errDiskFull
	}
	return f.RequestStore.Update(ctx, r, expected)
}
