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
	invitationmetrics "unitgate/internal/invitation/metrics"
	"unitgate/internal/invitation/models"
	"unitgate/internal/invitation/store"
	"unitgate/internal/invitation/store/memory"
	jwttoken "unitgate/internal/jwt_token"
	membershipmodels "unitgate/internal/membership/models"
	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/platform/outbox"
	"unitgate/pkg/requestcontext"
	"unitgate/pkg/secrets"
	"unitgate/pkg/testutil"
)

type InvitationServiceSuite struct {
	suite.Suite
	ctx        context.Context
	now        time.Time
	unit       directory.UnitRef
	buildingB  id.BuildingID
	dir        *dirmemory.Directory
	links      *memory.LinkStore
	family     *memory.FamilyStore
	selections *memory.SelectionStore
	box        *outbox.MemoryStore
	submitter  *recordingSubmitter
	metrics    *invitationmetrics.Metrics
	svc        *Service
}

func TestInvitationServiceSuite(t *testing.T) {
	suite.Run(t, new(InvitationServiceSuite))
}

func (s *InvitationServiceSuite) SetupTest() {
	s.now = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.unit = directory.NewUnitRef(testutil.TestIDs.BuildingA, "12")
	s.buildingB = id.NewBuildingID()

	s.dir = dirmemory.New()
	s.dir.AddBuilding(directory.Building{ID: testutil.TestIDs.BuildingA, Code: "A-100", Name: "Sahand", ManagerPhone: testutil.ManagerPhone})
	s.dir.PutRecord(&directory.OccupantRecord{
		Unit: s.unit,
		OccupantData: directory.OccupantData{
			BuildingCode:  "A-100",
			OwnerType:     directory.OwnerTypeLandlord,
			Owner:         directory.Person{FullName: "Omid Owner", Phone: testutil.OwnerPhone},
			Tenant:        &directory.Person{FullName: "Tara Tenant", Phone: testutil.TenantPhone},
			ResidentCount: 2,
		},
	})

	s.links = memory.NewLinkStore()
	s.family = memory.NewFamilyStore()
	s.selections = memory.NewSelectionStore()
	s.box = outbox.NewMemoryStore()
	s.submitter = &recordingSubmitter{}
	s.metrics = invitationmetrics.NewWith(prometheus.NewRegistry())
	s.svc = s.build(s.dir, s.links)
}

func (s *InvitationServiceSuite) build(writer directory.Writer, links store.LinkStore) *Service {
	hasher, err := secrets.NewHasher([]byte("family-code-key"))
	s.Require().NoError(err)
	tx := NewInMemoryTx(Stores{Links: links, Family: s.family, Directory: writer, Outbox: s.box})
	return New(Deps{
		Tx:         tx,
		Links:      links,
		Family:     s.family,
		Selections: s.selections,
		Directory:  s.dir,
		Tokens:     jwttoken.NewJWTService("test-signing-key", "unitgate", time.Hour),
		Hasher:     hasher,
		Submitter:  s.submitter,
	}, WithMetrics(s.metrics), WithTTLs(0, 0, 10*time.Minute))
}

func (s *InvitationServiceSuite) eventTypes() []string {
	var out []string
	for _, e := range s.box.Entries() {
		out = append(out, e.EventType)
	}
	return out
}

func (s *InvitationServiceSuite) link(unitNumber string, role models.LinkRole) *models.InviteLink {
	l, err := s.svc.CreateLink(s.ctx, testutil.ManagerActor(), directory.NewUnitRef(testutil.TestIDs.BuildingA, unitNumber), role, time.Time{})
	s.Require().NoError(err)
	return l
}

func (s *InvitationServiceSuite) TestCreateLink() {
	l := s.link("7", models.RoleOwner)
	s.NotEmpty(l.Token)
	s.Equal("A-100", l.BuildingCode)
	s.Equal(s.now.Add(defaultLinkTTL), l.ExpiresAt)
	s.Equal([]string{models.EventLinkCreated}, s.eventTypes())

	s.Run("non-manager", func() {
		_, err := s.svc.CreateLink(s.ctx, testutil.OwnerActor(), s.unit, models.RoleResident, time.Time{})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
	s.Run("past expiry", func() {
		_, err := s.svc.CreateLink(s.ctx, testutil.ManagerActor(), s.unit, models.RoleResident, s.now.Add(-time.Minute))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
	s.Run("unknown building", func() {
		other := id.NewBuildingID()
		manager := testutil.NewActor(testutil.TestIDs.Manager, testutil.ManagerPhone).Managing(other).Build()
		_, err := s.svc.CreateLink(s.ctx, manager, directory.NewUnitRef(other, "1"), models.RoleOwner, time.Time{})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *InvitationServiceSuite) TestUseLinkActivatesOccupancy() {
	l := s.link("7", models.RoleOwner)

	used, err := s.svc.UseLink(s.ctx, testutil.ApplicantActor(), l.Token)
	s.Require().NoError(err)
	s.True(used.IsUsed)
	s.Equal(testutil.TestIDs.Applicant, used.UsedBy)

	rec, err := s.dir.GetUnit(s.ctx, l.Unit)
	s.Require().NoError(err)
	s.Equal(testutil.ApplicantPhone, rec.Owner.Phone)
	s.Equal(directory.OwnerTypeResident, rec.OwnerType)
	s.Equal(1, rec.ResidentCount)
	s.Equal([]string{models.EventLinkCreated, models.EventLinkUsed, models.EventOccupancyAdded}, s.eventTypes())
	s.Equal(outbox.AggregateOccupancy, s.box.Entries()[2].AggregateType)

	s.Run("second use", func() {
		_, err := s.svc.UseLink(s.ctx, testutil.TenantActor(), l.Token)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyUsed))
		s.Equal(1.0, promtestutil.ToFloat64(s.metrics.Rejected.WithLabelValues("invite_link", "already_used")))
	})
}

func (s *InvitationServiceSuite) TestUseResidentLinkKeepsOwner() {
	l := s.link("12", models.RoleResident)

	_, err := s.svc.UseLink(s.ctx, testutil.ApplicantActor(), l.Token)
	s.Require().NoError(err)

	rec, err := s.dir.GetUnit(s.ctx, s.unit)
	s.Require().NoError(err)
	s.Equal(testutil.OwnerPhone, rec.Owner.Phone)
	s.Require().NotNil(rec.Tenant)
	s.Equal(testutil.ApplicantPhone, rec.Tenant.Phone)
	s.Equal(directory.OwnerTypeLandlord, rec.OwnerType)
}

func (s *InvitationServiceSuite) TestUseLinkRejections() {
	s.Run("expired", func() {
		l := s.link("8", models.RoleOwner)
		later := requestcontext.WithTime(context.Background(), l.ExpiresAt.Add(time.Second))
		_, err := s.svc.UseLink(later, testutil.ApplicantActor(), l.Token)
		s.True(dErrors.HasCode(err, dErrors.CodeExpired))
	})
	s.Run("forged token", func() {
		_, err := s.svc.UseLink(s.ctx, testutil.ApplicantActor(), "not-a-token")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
	s.Run("empty token", func() {
		_, err := s.svc.ValidateLink(s.ctx, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *InvitationServiceSuite) TestValidateLinkDoesNotConsume() {
	l := s.link("9", models.RoleResident)

	got, err := s.svc.ValidateLink(s.ctx, l.Token)
	s.Require().NoError(err)
	s.False(got.IsUsed)

	_, err = s.svc.UseLink(s.ctx, testutil.ApplicantActor(), l.Token)
	s.NoError(err)
}

func (s *InvitationServiceSuite) TestConcurrentUseLink() {
	l := s.link("7", models.RoleOwner)

	result := testutil.RunConcurrent(10, func(idx int) error {
		actor := testutil.NewActor(id.NewUserID(), "0913000000"+string(rune('0'+idx))).Build()
		_, err := s.svc.UseLink(s.ctx, actor, l.Token)
		return err
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(9), result.Conflicts)

	stored, err := s.links.FindByID(s.ctx, l.ID)
	s.Require().NoError(err)
	s.True(stored.IsUsed)
	rec, err := s.dir.GetUnit(s.ctx, l.Unit)
	s.Require().NoError(err)
	s.NotEmpty(rec.Owner.Phone, "the winner's occupancy survives the losers' compensation")
}

func (s *InvitationServiceSuite) TestUseLinkUndoesDirectoryWriteWhenLinkWriteFails() {
	svc := s.build(s.dir, failingMarkUsed{LinkStore: s.links})
	l := s.link("12", models.RoleResident)

	_, err := svc.UseLink(s.ctx, testutil.ApplicantActor(), l.Token)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	rec, err := s.dir.GetUnit(s.ctx, s.unit)
	s.Require().NoError(err)
	s.Require().NotNil(rec.Tenant)
	s.Equal(testutil.TenantPhone, rec.Tenant.Phone, "directory write must be undone")
}

func (s *InvitationServiceSuite) TestListLinks() {
	s.link("7", models.RoleOwner)
	s.link("8", models.RoleResident)

	out, err := s.svc.ListLinks(s.ctx, testutil.ManagerActor(), testutil.TestIDs.BuildingA)
	s.Require().NoError(err)
	s.Len(out, 2)

	_, err = s.svc.ListLinks(s.ctx, testutil.OwnerActor(), testutil.TestIDs.BuildingA)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *InvitationServiceSuite) TestFamilyInviteAndAccept() {
	inv, code, err := s.svc.InviteFamily(s.ctx, testutil.OwnerActor(), s.unit, testutil.FamilyPhone, "Farah", time.Time{})
	s.Require().NoError(err)
	s.NotEmpty(code)
	s.NotEqual(code, inv.CodeHash)
	s.Equal(models.FamilyPending, inv.Status)
	s.Equal(s.now.Add(defaultFamilyTTL), inv.ExpiresAt)

	family := testutil.NewActor(id.NewUserID(), testutil.FamilyPhone).Named("Farah Family").Build()
	accepted, err := s.svc.AcceptFamily(s.ctx, family, code)
	s.Require().NoError(err)
	s.Equal(models.FamilyAccepted, accepted.Status)

	rec, err := s.dir.GetUnit(s.ctx, s.unit)
	s.Require().NoError(err)
	s.Require().Len(rec.Family, 1)
	s.Equal(testutil.FamilyPhone, rec.Family[0].Phone)
	s.Equal("Farah Family", rec.Family[0].FullName)
	s.Equal([]string{models.EventFamilyInvited, models.EventFamilyAccepted}, s.eventTypes())

	s.Run("accept twice", func() {
		_, err := s.svc.AcceptFamily(s.ctx, family, code)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyUsed))
	})
}

func (s *InvitationServiceSuite) TestFamilyGuards() {
	s.Run("not an occupant", func() {
		_, _, err := s.svc.InviteFamily(s.ctx, testutil.ApplicantActor(), s.unit, testutil.FamilyPhone, "", time.Time{})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
	s.Run("phone already on the unit", func() {
		_, _, err := s.svc.InviteFamily(s.ctx, testutil.OwnerActor(), s.unit, testutil.TenantPhone, "", time.Time{})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
	s.Run("wrong phone accepts", func() {
		_, code, err := s.svc.InviteFamily(s.ctx, testutil.TenantActor(), s.unit, testutil.FamilyPhone, "", time.Time{})
		s.Require().NoError(err)
		_, err = s.svc.AcceptFamily(s.ctx, testutil.ApplicantActor(), code)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
	s.Run("expired", func() {
		_, code, err := s.svc.InviteFamily(s.ctx, testutil.OwnerActor(), s.unit, testutil.FamilyPhone, "", time.Time{})
		s.Require().NoError(err)
		later := requestcontext.WithTime(context.Background(), s.now.Add(defaultFamilyTTL))
		family := testutil.NewActor(id.NewUserID(), testutil.FamilyPhone).Build()
		_, err = s.svc.AcceptFamily(later, family, code)
		s.True(dErrors.HasCode(err, dErrors.CodeExpired))
	})
	s.Run("unknown code", func() {
		_, err := s.svc.AcceptFamily(s.ctx, testutil.ApplicantActor(), "NOPE")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *InvitationServiceSuite) TestListFamily() {
	_, _, err := s.svc.InviteFamily(s.ctx, testutil.OwnerActor(), s.unit, testutil.FamilyPhone, "", time.Time{})
	s.Require().NoError(err)

	for _, actor := range []id.Actor{testutil.OwnerActor(), testutil.TenantActor(), testutil.ManagerActor()} {
		out, err := s.svc.ListFamily(s.ctx, actor, s.unit)
		s.Require().NoError(err)
		s.Len(out, 1)
	}
	_, err = s.svc.ListFamily(s.ctx, testutil.ApplicantActor(), s.unit)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *InvitationServiceSuite) TestResolveManagerPhone() {
	s.Run("single building", func() {
		out, err := s.svc.ResolveManagerPhone(s.ctx, testutil.ApplicantActor(), testutil.ManagerPhone)
		s.Require().NoError(err)
		s.False(out.RequiresSelection())
		s.Require().NotNil(out.Building)
		s.Equal("A-100", out.Building.Code)
	})
	s.Run("unknown phone", func() {
		_, err := s.svc.ResolveManagerPhone(s.ctx, testutil.ApplicantActor(), "09127777777")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
	s.Run("several buildings", func() {
		sel := s.openSelection()
		s.Len(sel.Buildings, 2)
		s.Equal(s.now.Add(10*time.Minute), sel.ExpiresAt)
		s.Equal(testutil.ApplicantPhone, sel.ApplicantPhone)
	})
}

func (s *InvitationServiceSuite) openSelection() *models.Selection {
	s.dir.AddBuilding(directory.Building{ID: s.buildingB, Code: "B-200", ManagerPhone: testutil.ManagerPhone})
	out, err := s.svc.ResolveManagerPhone(s.ctx, testutil.ApplicantActor(), testutil.ManagerPhone)
	s.Require().NoError(err)
	s.Require().True(out.RequiresSelection())
	return out.Selection
}

func (s *InvitationServiceSuite) TestCompleteSelection() {
	sel := s.openSelection()
	claim := membershipmodels.Claim{UnitNumber: "4", Role: membershipmodels.Owner(membershipmodels.OwnerResident)}

	req, err := s.svc.CompleteSelection(s.ctx, testutil.ApplicantActor(), sel.ID, s.buildingB, claim)
	s.Require().NoError(err)
	s.NotNil(req)
	s.Require().Len(s.submitter.claims, 1)
	s.Equal(s.buildingB, s.submitter.claims[0].BuildingID)
	s.Equal("B-200", s.submitter.claims[0].BuildingCode)

	_, err = s.svc.CompleteSelection(s.ctx, testutil.ApplicantActor(), sel.ID, s.buildingB, claim)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "a selection completes once")
}

func (s *InvitationServiceSuite) TestCompleteSelectionGuards() {
	sel := s.openSelection()
	claim := membershipmodels.Claim{UnitNumber: "4"}

	s.Run("another applicant", func() {
		_, err := s.svc.CompleteSelection(s.ctx, testutil.TenantActor(), sel.ID, s.buildingB, claim)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
	s.Run("building not offered", func() {
		_, err := s.svc.CompleteSelection(s.ctx, testutil.ApplicantActor(), sel.ID, id.NewBuildingID(), claim)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
	s.Run("expired", func() {
		later := requestcontext.WithTime(context.Background(), s.now.Add(10*time.Minute))
		_, err := s.svc.CompleteSelection(later, testutil.ApplicantActor(), sel.ID, s.buildingB, claim)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *InvitationServiceSuite) TestCompleteSelectionRestoredWhenSubmitFails() {
	sel := s.openSelection()
	s.submitter.err = dErrors.New(dErrors.CodeValidation, "floor is required")

	_, err := s.svc.CompleteSelection(s.ctx, testutil.ApplicantActor(), sel.ID, s.buildingB, membershipmodels.Claim{})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.selections.Get(s.ctx, sel.ID)
	s.NoError(err, "the applicant can retry the selection")
}

type recordingSubmitter struct {
	claims []membershipmodels.Claim
	err    error
}

func (r *recordingSubmitter) Submit(_ context.Context, actor id.Actor, claim membershipmodels.Claim) (*membershipmodels.Request, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.claims = append(r.claims, claim)
	return &membershipmodels.Request{ID: id.NewRequestID(), ApplicantPhone: actor.Phone}, nil
}

// failingMarkUsed fails every link write after the directory write.
type failingMarkUsed struct {
	store.LinkStore
}

func (f failingMarkUsed) MarkUsed(context.Context, *models.InviteLink) error {
	return errors.New("disk full")
}
