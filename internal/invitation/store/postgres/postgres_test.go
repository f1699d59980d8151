package postgres

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/suite"

	"unitgate/internal/directory"
	"unitgate/internal/invitation/models"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/sentinel"
	"unitgate/pkg/testutil"
)

var (
	linkColumnNames = []string{
		"id", "token", "building_id", "unit_number", "building_code", "role",
		"expires_at", "created_by", "is_used", "used_by", "used_by_phone", "used_at", "created_at",
	}
	familyColumnNames = []string{
		"id", "code_hash", "building_id", "unit_number", "invited_phone", "invited_name",
		"invited_by", "expires_at", "status", "accepted_by", "accepted_at", "created_at", "version",
	}
)

type InvitationStoreSuite struct {
	suite.Suite
	mock   sqlmock.Sqlmock
	links  *LinkStore
	family *FamilyStore
	ctx    context.Context
	now    time.Time
	unit   directory.UnitRef
}

func TestInvitationStoreSuite(t *testing.T) {
	suite.Run(t, new(InvitationStoreSuite))
}

func (s *InvitationStoreSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.T().Cleanup(func() { db.Close() })
	s.mock = mock
	s.links = NewLinkStore(db)
	s.family = NewFamilyStore(db)
	s.ctx = context.Background()
	s.now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	s.unit = directory.NewUnitRef(testutil.TestIDs.BuildingA, "12")
}

func (s *InvitationStoreSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *InvitationStoreSuite) link() *models.InviteLink {
	l, err := models.NewInviteLink(id.NewInviteLinkID(), s.unit, models.RoleResident, testutil.TestIDs.Manager, s.now.Add(time.Hour), s.now)
	s.Require().NoError(err)
	l.Token = "signed.jwt.token"
	l.BuildingCode = "A-100"
	return l
}

func (s *InvitationStoreSuite) linkRow(l *models.InviteLink) *sqlmock.Rows {
	var usedBy, usedAt driver.Value
	if l.UsedAt != nil {
		usedBy = l.UsedBy.String()
		usedAt = *l.UsedAt
	}
	return sqlmock.NewRows(linkColumnNames).AddRow(
		l.ID.String(), l.Token, l.Unit.BuildingID.String(), l.Unit.UnitNumber, l.BuildingCode, string(l.Role),
		l.ExpiresAt, l.CreatedBy.String(), l.IsUsed, usedBy, l.UsedByPhone, usedAt, l.CreatedAt,
	)
}

func (s *InvitationStoreSuite) TestLinkCreate() {
	l := s.link()
	s.mock.ExpectExec(`INSERT INTO invite_links`).WillReturnResult(sqlmock.NewResult(0, 1))
	s.Require().NoError(s.links.Create(s.ctx, l))

	s.mock.ExpectExec(`INSERT INTO invite_links`).WillReturnError(&pgconn.PgError{Code: "23505"})
	s.ErrorIs(s.links.Create(s.ctx, l), sentinel.ErrAlreadyUsed)
}

func (s *InvitationStoreSuite) TestLinkFind() {
	l := s.link()
	s.mock.ExpectQuery(`FROM invite_links WHERE id = \$1`).
		WithArgs(l.ID.String()).
		WillReturnRows(s.linkRow(l))

	got, err := s.links.FindByID(s.ctx, l.ID)
	s.Require().NoError(err)
	s.Equal(l.Unit, got.Unit)
	s.Equal(models.RoleResident, got.Role)
	s.False(got.IsUsed)
	s.Nil(got.UsedAt)
}

func (s *InvitationStoreSuite) TestLinkMarkUsed() {
	s.Run("first use", func() {
		l := s.link()
		s.Require().NoError(l.MarkUsed(testutil.TenantActor(), s.now))
		s.mock.ExpectExec(`UPDATE invite_links\s+SET is_used = TRUE`).
			WithArgs(l.ID.String(), testutil.TestIDs.Tenant.String(), s.now, testutil.TenantPhone).
			WillReturnResult(sqlmock.NewResult(0, 1))
		s.Require().NoError(s.links.MarkUsed(s.ctx, l))
	})

	s.Run("second use", func() {
		l := s.link()
		s.Require().NoError(l.MarkUsed(testutil.TenantActor(), s.now))
		s.mock.ExpectExec(`UPDATE invite_links`).WillReturnResult(sqlmock.NewResult(0, 0))
		s.mock.ExpectQuery(`FROM invite_links WHERE id = \$1`).WillReturnRows(s.linkRow(l))
		s.ErrorIs(s.links.MarkUsed(s.ctx, l), sentinel.ErrAlreadyUsed)
	})

	s.Run("missing", func() {
		l := s.link()
		s.mock.ExpectExec(`UPDATE invite_links`).WillReturnResult(sqlmock.NewResult(0, 0))
		s.mock.ExpectQuery(`FROM invite_links WHERE id = \$1`).WillReturnRows(sqlmock.NewRows(linkColumnNames))
		s.ErrorIs(s.links.MarkUsed(s.ctx, l), sentinel.ErrNotFound)
	})
}

func (s *InvitationStoreSuite) TestLinkList() {
	s.mock.ExpectQuery(`FROM invite_links\s+WHERE building_id = \$1`).
		WithArgs(testutil.TestIDs.BuildingA.String()).
		WillReturnRows(s.linkRow(s.link()))
	out, err := s.links.ListByBuilding(s.ctx, testutil.TestIDs.BuildingA)
	s.Require().NoError(err)
	s.Len(out, 1)
}

func (s *InvitationStoreSuite) TestLinkHasUsedInBuilding() {
	s.mock.ExpectQuery(`SELECT EXISTS \(\s+SELECT 1 FROM invite_links`).
		WithArgs(testutil.TenantPhone, testutil.TestIDs.BuildingA.String(), "A-100").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	used, err := s.links.HasUsedInBuilding(s.ctx, "+98 912 000 0003",
		directory.BuildingRef{ID: testutil.TestIDs.BuildingA, Code: " A-100 "})
	s.Require().NoError(err)
	s.True(used)
}

func (s *InvitationStoreSuite) invitation() *models.FamilyInvitation {
	f, err := models.NewFamilyInvitation(id.NewFamilyInvitationID(), "digest", s.unit, testutil.FamilyPhone, "Fara", testutil.TestIDs.Owner, s.now.Add(time.Hour), s.now)
	s.Require().NoError(err)
	return f
}

func (s *InvitationStoreSuite) familyRow(f *models.FamilyInvitation) *sqlmock.Rows {
	var acceptedBy, acceptedAt driver.Value
	if f.AcceptedAt != nil {
		acceptedBy = f.AcceptedBy.String()
		acceptedAt = *f.AcceptedAt
	}
	return sqlmock.NewRows(familyColumnNames).AddRow(
		f.ID.String(), f.CodeHash, f.Unit.BuildingID.String(), f.Unit.UnitNumber, f.InvitedPhone, f.InvitedName,
		f.InvitedBy.String(), f.ExpiresAt, string(f.Status), acceptedBy, acceptedAt, f.CreatedAt, f.Version,
	)
}

func (s *InvitationStoreSuite) TestFamilyFindByCodeHash() {
	f := s.invitation()
	s.mock.ExpectQuery(`FROM family_invitations WHERE code_hash = \$1`).
		WithArgs("digest").
		WillReturnRows(s.familyRow(f))

	got, err := s.family.FindByCodeHash(s.ctx, "digest")
	s.Require().NoError(err)
	s.Equal(f.ID, got.ID)
	s.Equal(models.FamilyPending, got.Status)
	s.Equal(testutil.FamilyPhone, got.InvitedPhone)

	s.mock.ExpectQuery(`FROM family_invitations WHERE code_hash = \$1`).
		WillReturnRows(sqlmock.NewRows(familyColumnNames))
	_, err = s.family.FindByCodeHash(s.ctx, "other")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InvitationStoreSuite) TestFamilyUpdate() {
	s.Run("accepted", func() {
		f := s.invitation()
		s.Require().NoError(f.Accept(testutil.NewActor(testutil.TestIDs.Applicant, testutil.FamilyPhone).Build(), s.now))
		s.mock.ExpectExec(`UPDATE family_invitations`).
			WithArgs(f.ID.String(), "accepted", testutil.TestIDs.Applicant.String(), s.now, "pending", 0).
			WillReturnResult(sqlmock.NewResult(0, 1))
		s.Require().NoError(s.family.Update(s.ctx, f, models.FamilyPending))
		s.Equal(1, f.Version)
	})

	s.Run("lost race", func() {
		f := s.invitation()
		s.mock.ExpectExec(`UPDATE family_invitations`).WillReturnResult(sqlmock.NewResult(0, 0))
		s.mock.ExpectQuery(`SELECT 1 FROM family_invitations`).
			WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))
		s.ErrorIs(s.family.Update(s.ctx, f, models.FamilyPending), sentinel.ErrInvalidState)
	})
}

func (s *InvitationStoreSuite) TestFamilyHasAcceptedInBuilding() {
	s.mock.ExpectQuery(`SELECT EXISTS \(\s+SELECT 1 FROM family_invitations`).
		WithArgs(testutil.FamilyPhone, testutil.TestIDs.BuildingA.String()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	accepted, err := s.family.HasAcceptedInBuilding(s.ctx, testutil.FamilyPhone, directory.BuildingRef{ID: testutil.TestIDs.BuildingA})
	s.Require().NoError(err)
	s.False(accepted)
}

func (s *InvitationStoreSuite) TestFamilyList() {
	s.mock.ExpectQuery(`FROM family_invitations\s+WHERE building_id = \$1 AND unit_number = \$2`).
		WithArgs(testutil.TestIDs.BuildingA.String(), "12").
		WillReturnRows(s.familyRow(s.invitation()))
	out, err := s.family.ListByUnit(s.ctx, s.unit)
	s.Require().NoError(err)
	s.Len(out, 1)
}
