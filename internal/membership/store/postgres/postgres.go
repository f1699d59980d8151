// Package postgres persists membership requests. A partial unique index on
// active requests enforces one open claim per applicant and unit.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"unitgate/internal/directory"
	"unitgate/internal/membership/models"
	"unitgate/internal/membership/store"
	"unitgate/internal/platform/database"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/sentinel"
)

// columns lists every persisted field; id is first and version last.
var columns = []string{
	"id", "applicant_phone", "applicant_id", "applicant_name",
	"building_id", "building_code", "unit_number", "floor", "area", "resident_count",
	"role", "owner_type", "full_name", "phone_number",
	"owner_full_name", "owner_phone_number", "tenant_full_name", "tenant_phone_number",
	"has_parking", "parking_count",
	"status", "source", "is_suggested", "has_been_edited", "requires_owner_approval", "auto_approved",
	"owner_of_record_phone", "suggested_by",
	"created_at", "updated_at",
	"owner_approved_at", "owner_approved_by", "manager_approved_at", "approved_by",
	"rejected_at", "rejection_reason", "rejected_by", "withdrawn_at",
	"version",
}

var selectColumns = strings.Join(columns, ", ")

type Store struct {
	db database.DBTX
}

func New(db database.DBTX) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, r *models.Request) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO membership_requests (`+selectColumns+`)
		VALUES (`+placeholders(1, len(columns))+`)
	`, values(r, r.Version)...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("active request exists: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create membership request: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, r *models.Request, expected models.Status) error {
	mutable := columns[1:]
	args := values(r, r.Version+1)
	n := len(args)
	query := `
		UPDATE membership_requests
		SET (` + strings.Join(mutable, ", ") + `) = (` + placeholders(2, n-1) + `)
		WHERE id = $1 AND status = $` + strconv.Itoa(n+1) + ` AND version = $` + strconv.Itoa(n+2)
	args = append(args, string(expected), r.Version)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("active request exists: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("update membership request: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update membership request rows: %w", err)
	}
	if rows == 0 {
		if _, err := s.FindByID(ctx, r.ID); err != nil {
			return err
		}
		return sentinel.ErrInvalidState
	}
	r.Version++
	return nil
}

func (s *Store) FindByID(ctx context.Context, requestID id.RequestID) (*models.Request, error) {
	r, err := scanRequest(s.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+` FROM membership_requests WHERE id = $1
	`, uuid.UUID(requestID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find membership request: %w", err)
	}
	return r, nil
}

func (s *Store) ListByApplicant(ctx context.Context, applicantPhone string) ([]*models.Request, error) {
	return s.query(ctx, `applicant_phone = $1`, id.NormalizePhone(applicantPhone))
}

func (s *Store) ListByOwnerPhone(ctx context.Context, phone string) ([]*models.Request, error) {
	p := id.NormalizePhone(phone)
	if p == "" {
		return nil, nil
	}
	return s.query(ctx, `(owner_phone_number = $1 OR owner_of_record_phone = $1)`, p)
}

func (s *Store) ListManagerPending(ctx context.Context, building id.BuildingID) ([]*models.Request, error) {
	return s.query(ctx, `building_id = $1 AND NOT is_suggested
		AND (status = 'owner_approved' OR (status = 'pending' AND NOT requires_owner_approval))`,
		uuid.UUID(building))
}

func (s *Store) ListSuggestedPending(ctx context.Context, applicantPhone string) ([]*models.Request, error) {
	return s.query(ctx, `applicant_phone = $1 AND is_suggested AND status = 'pending'`, id.NormalizePhone(applicantPhone))
}

func (s *Store) HasApprovedInBuilding(ctx context.Context, applicantPhone string, building directory.BuildingRef) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM membership_requests
			WHERE applicant_phone = $1
				AND status IN ('owner_approved', 'manager_approved', 'approved')
				AND (building_id = $2 OR ($3 <> '' AND lower(building_code) = lower($3)))
		)
	`, id.NormalizePhone(applicantPhone), uuid.UUID(building.ID), strings.TrimSpace(building.Code)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("approved request lookup: %w", err)
	}
	return exists, nil
}

func (s *Store) query(ctx context.Context, where string, args ...any) ([]*models.Request, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM membership_requests
		WHERE `+where+`
		ORDER BY created_at, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list membership requests: %w", err)
	}
	defer rows.Close()

	var out []*models.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan membership request: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate membership requests: %w", err)
	}
	return out, nil
}

// values returns the row for r in column order with the given version.
func values(r *models.Request, version int) []any {
	return []any{
		uuid.UUID(r.ID),
		r.ApplicantPhone,
		nullUUID(uuid.UUID(r.ApplicantID)),
		r.ApplicantName,
		uuid.UUID(r.BuildingID),
		r.BuildingCode,
		r.UnitNumber,
		r.Floor,
		r.Area,
		r.ResidentCount,
		string(r.Role.Kind()),
		string(r.Role.OwnerType()),
		r.FullName,
		r.PhoneNumber,
		r.OwnerFullName,
		r.OwnerPhoneNumber,
		r.TenantFullName,
		r.TenantPhoneNumber,
		r.HasParking,
		r.ParkingCount,
		string(r.Status),
		string(r.Source),
		r.IsSuggested,
		r.HasBeenEdited,
		r.RequiresOwnerApproval,
		r.AutoApproved,
		r.OwnerOfRecordPhone,
		nullUUID(uuid.UUID(r.SuggestedBy)),
		r.CreatedAt,
		r.UpdatedAt,
		nullTime(r.OwnerApprovedAt),
		nullUUID(uuid.UUID(r.OwnerApprovedBy)),
		nullTime(r.ManagerApprovedAt),
		nullUUID(uuid.UUID(r.ApprovedBy)),
		nullTime(r.RejectedAt),
		r.RejectionReason,
		nullUUID(uuid.UUID(r.RejectedBy)),
		nullTime(r.WithdrawnAt),
		version,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.Request, error) {
	var (
		r                                                            models.Request
		requestID, buildingID                                        uuid.UUID
		applicantID, suggestedBy, ownerApprovedBy, approvedBy, rejBy uuid.NullUUID
		role, ownerType, status, source                              string
		ownerApprovedAt, managerApprovedAt, rejectedAt, withdrawnAt  sql.NullTime
	)
	err := row.Scan(
		&requestID, &r.ApplicantPhone, &applicantID, &r.ApplicantName,
		&buildingID, &r.BuildingCode, &r.UnitNumber, &r.Floor, &r.Area, &r.ResidentCount,
		&role, &ownerType, &r.FullName, &r.PhoneNumber,
		&r.OwnerFullName, &r.OwnerPhoneNumber, &r.TenantFullName, &r.TenantPhoneNumber,
		&r.HasParking, &r.ParkingCount,
		&status, &source, &r.IsSuggested, &r.HasBeenEdited, &r.RequiresOwnerApproval, &r.AutoApproved,
		&r.OwnerOfRecordPhone, &suggestedBy,
		&r.CreatedAt, &r.UpdatedAt,
		&ownerApprovedAt, &ownerApprovedBy, &managerApprovedAt, &approvedBy,
		&rejectedAt, &r.RejectionReason, &rejBy, &withdrawnAt,
		&r.Version,
	)
	if err != nil {
		return nil, err
	}

	if r.Status, err = models.NormalizeStatus(status); err != nil {
		return nil, err
	}
	if r.Role, err = models.ParseRoleProfile(role, ownerType); err != nil {
		return nil, err
	}
	r.ID = id.RequestID(requestID)
	r.BuildingID = id.BuildingID(buildingID)
	r.Source = models.Source(source)
	r.ApplicantID = id.UserID(applicantID.UUID)
	r.SuggestedBy = id.UserID(suggestedBy.UUID)
	r.OwnerApprovedBy = id.UserID(ownerApprovedBy.UUID)
	r.ApprovedBy = id.UserID(approvedBy.UUID)
	r.RejectedBy = id.UserID(rejBy.UUID)
	r.OwnerApprovedAt = timePtr(ownerApprovedAt)
	r.ManagerApprovedAt = timePtr(managerApprovedAt)
	r.RejectedAt = timePtr(rejectedAt)
	r.WithdrawnAt = timePtr(withdrawnAt)
	return &r, nil
}

func placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "$" + strconv.Itoa(from+i)
	}
	return strings.Join(parts, ", ")
}

func nullUUID(u uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: u, Valid: u != uuid.Nil}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ store.RequestStore = (*Store)(nil)
