package postgres

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/suite"

	"unitgate/internal/directory"
	"unitgate/internal/membership/models"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/sentinel"
	"unitgate/pkg/testutil"
)

type PostgresStoreSuite struct {
	suite.Suite
	mock  sqlmock.Sqlmock
	store *Store
	ctx   context.Context
	now   time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.T().Cleanup(func() { db.Close() })
	s.mock = mock
	s.store = New(db)
	s.ctx = context.Background()
	s.now = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *PostgresStoreSuite) request() *models.Request {
	claim := models.Claim{
		BuildingID:    testutil.TestIDs.BuildingA,
		BuildingCode:  "B-100",
		UnitNumber:    "12",
		Floor:         "3",
		Area:          "80",
		ResidentCount: 2,
		Role:          models.Owner(models.OwnerResident),
		FullName:      "X",
		PhoneNumber:   testutil.OwnerPhone,
	}
	r, err := models.NewRequest(id.NewRequestID(), testutil.OwnerPhone, claim, models.SourceDirect, s.now)
	s.Require().NoError(err)
	return r
}

// row renders r the way the driver hands columns back.
func (s *PostgresStoreSuite) row(r *models.Request, status string) *sqlmock.Rows {
	vals := values(r, r.Version)
	out := make([]driver.Value, len(vals))
	for i, v := range vals {
		switch t := v.(type) {
		case uuid.UUID:
			out[i] = t.String()
		case driver.Valuer:
			dv, err := t.Value()
			s.Require().NoError(err)
			out[i] = dv
		default:
			out[i] = v
		}
	}
	out[20] = status
	return sqlmock.NewRows(columns).AddRow(out...)
}

func (s *PostgresStoreSuite) TestCreate() {
	s.Run("inserts every column", func() {
		r := s.request()
		s.mock.ExpectExec("INSERT INTO membership_requests").
			WithArgs(anyArgs(len(columns))...).
			WillReturnResult(sqlmock.NewResult(0, 1))
		s.NoError(s.store.Create(s.ctx, r))
	})

	s.Run("partial unique index maps to already used", func() {
		s.mock.ExpectExec("INSERT INTO membership_requests").
			WillReturnError(&pgconn.PgError{Code: "23505"})
		s.ErrorIs(s.store.Create(s.ctx, s.request()), sentinel.ErrAlreadyUsed)
	})
}

func (s *PostgresStoreSuite) TestUpdate() {
	s.Run("compare and set bumps the version", func() {
		r := s.request()
		s.Require().NoError(r.ApproveByOwner(testutil.TestIDs.Owner, s.now))
		s.mock.ExpectExec(`UPDATE membership_requests\s+SET \(applicant_phone, .*\) = \(\$2, .*\$39\)\s+WHERE id = \$1 AND status = \$40 AND version = \$41`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		s.Require().NoError(s.store.Update(s.ctx, r, models.StatusPending))
		s.Equal(1, r.Version)
	})

	s.Run("lost race is invalid state", func() {
		r := s.request()
		s.mock.ExpectExec("UPDATE membership_requests").WillReturnResult(sqlmock.NewResult(0, 0))
		s.mock.ExpectQuery("FROM membership_requests WHERE id").
			WithArgs(uuid.UUID(r.ID)).
			WillReturnRows(s.row(r, "owner_approved"))

		s.ErrorIs(s.store.Update(s.ctx, r, models.StatusPending), sentinel.ErrInvalidState)
		s.Equal(0, r.Version)
	})

	s.Run("missing row is not found", func() {
		r := s.request()
		s.mock.ExpectExec("UPDATE membership_requests").WillReturnResult(sqlmock.NewResult(0, 0))
		s.mock.ExpectQuery("FROM membership_requests WHERE id").
			WillReturnRows(sqlmock.NewRows(columns))

		s.ErrorIs(s.store.Update(s.ctx, r, models.StatusPending), sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreSuite) TestFindByID() {
	s.Run("legacy approved status is normalized", func() {
		r := s.request()
		s.mock.ExpectQuery("FROM membership_requests WHERE id").
			WillReturnRows(s.row(r, "approved"))

		got, err := s.store.FindByID(s.ctx, r.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusManagerApproved, got.Status)
		s.Equal(r.ID, got.ID)
		s.Equal(models.Owner(models.OwnerResident), got.Role)
		s.True(got.ApplicantID.IsNil())
		s.Nil(got.OwnerApprovedAt)
	})
}

func (s *PostgresStoreSuite) TestListSuggestedPending() {
	r := s.request()
	s.mock.ExpectQuery(`is_suggested AND status = 'pending'\s+ORDER BY created_at, id`).
		WithArgs(testutil.ApplicantPhone).
		WillReturnRows(s.row(r, "pending"))

	got, err := s.store.ListSuggestedPending(s.ctx, "+98 912 000 0004")
	s.Require().NoError(err)
	s.Len(got, 1)
}

func (s *PostgresStoreSuite) TestHasApprovedInBuilding() {
	s.mock.ExpectQuery("SELECT EXISTS").
		WithArgs(testutil.TenantPhone, uuid.UUID(testutil.TestIDs.BuildingA), "B-100").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	found, err := s.store.HasApprovedInBuilding(s.ctx, testutil.TenantPhone,
		directory.BuildingRef{ID: testutil.TestIDs.BuildingA, Code: " B-100 "})
	s.Require().NoError(err)
	s.True(found)
}

func anyArgs(n int) []driver.Value {
	out := make([]driver.Value, n)
	for i := range out {
		out[i] = sqlmock.AnyArg()
	}
	return out
}
