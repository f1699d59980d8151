package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"unitgate/internal/directory"
	"unitgate/internal/invitation/models"
	"unitgate/internal/invitation/store"
	"unitgate/internal/platform/database"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/sentinel"
)

const familyColumns = `id, code_hash, building_id, unit_number, invited_phone, invited_name,
	invited_by, expires_at, status, accepted_by, accepted_at, created_at, version`

type FamilyStore struct {
	db database.DBTX
}

func NewFamilyStore(db database.DBTX) *FamilyStore {
	return &FamilyStore{db: db}
}

func (s *FamilyStore) Create(ctx context.Context, f *models.FamilyInvitation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO family_invitations (`+familyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		uuid.UUID(f.ID), f.CodeHash, uuid.UUID(f.Unit.BuildingID), f.Unit.UnitNumber, f.InvitedPhone, f.InvitedName,
		uuid.UUID(f.InvitedBy), f.ExpiresAt, string(f.Status), nullUUID(uuid.UUID(f.AcceptedBy)), nullTime(f.AcceptedAt),
		f.CreatedAt, f.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("family invitation exists: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create family invitation: %w", err)
	}
	return nil
}

func (s *FamilyStore) FindByCodeHash(ctx context.Context, codeHash string) (*models.FamilyInvitation, error) {
	f, err := scanFamily(s.db.QueryRowContext(ctx, `
		SELECT `+familyColumns+` FROM family_invitations WHERE code_hash = $1
	`, codeHash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find family invitation: %w", err)
	}
	return f, nil
}

func (s *FamilyStore) findByID(ctx context.Context, invID id.FamilyInvitationID) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM family_invitations WHERE id = $1`, uuid.UUID(invID)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	return err
}

func (s *FamilyStore) Update(ctx context.Context, f *models.FamilyInvitation, expected models.FamilyStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE family_invitations
		SET status = $2, accepted_by = $3, accepted_at = $4, version = version + 1
		WHERE id = $1 AND status = $5 AND version = $6
	`, uuid.UUID(f.ID), string(f.Status), nullUUID(uuid.UUID(f.AcceptedBy)), nullTime(f.AcceptedAt), string(expected), f.Version)
	if err != nil {
		return fmt.Errorf("update family invitation: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update family invitation rows: %w", err)
	}
	if rows == 0 {
		if err := s.findByID(ctx, f.ID); err != nil {
			return err
		}
		return sentinel.ErrInvalidState
	}
	f.Version++
	return nil
}

func (s *FamilyStore) ListByUnit(ctx context.Context, unit directory.UnitRef) ([]*models.FamilyInvitation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+familyColumns+`
		FROM family_invitations
		WHERE building_id = $1 AND unit_number = $2
		ORDER BY created_at DESC, id
	`, uuid.UUID(unit.BuildingID), unit.UnitNumber)
	if err != nil {
		return nil, fmt.Errorf("list family invitations: %w", err)
	}
	defer rows.Close()

	var out []*models.FamilyInvitation
	for rows.Next() {
		f, err := scanFamily(rows)
		if err != nil {
			return nil, fmt.Errorf("scan family invitation: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate family invitations: %w", err)
	}
	return out, nil
}

func (s *FamilyStore) HasAcceptedInBuilding(ctx context.Context, phone string, building directory.BuildingRef) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM family_invitations
			WHERE status = 'accepted' AND invited_phone = $1 AND building_id = $2
		)
	`, id.NormalizePhone(phone), uuid.UUID(building.ID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("accepted family invitation lookup: %w", err)
	}
	return exists, nil
}

func scanFamily(row rowScanner) (*models.FamilyInvitation, error) {
	var (
		f                            models.FamilyInvitation
		invID, buildingID, invitedBy uuid.UUID
		acceptedBy                   uuid.NullUUID
		acceptedAt                   sql.NullTime
		unitNumber, status           string
	)
	err := row.Scan(
		&invID, &f.CodeHash, &buildingID, &unitNumber, &f.InvitedPhone, &f.InvitedName,
		&invitedBy, &f.ExpiresAt, &status, &acceptedBy, &acceptedAt, &f.CreatedAt, &f.Version,
	)
	if err != nil {
		return nil, err
	}
	switch models.FamilyStatus(status) {
	case models.FamilyPending, models.FamilyAccepted:
		f.Status = models.FamilyStatus(status)
	default:
		return nil, fmt.Errorf("unknown family invitation status %q", status)
	}
	f.ID = id.FamilyInvitationID(invID)
	f.Unit = directory.NewUnitRef(id.BuildingID(buildingID), unitNumber)
	f.InvitedBy = id.UserID(invitedBy)
	f.AcceptedBy = id.UserID(acceptedBy.UUID)
	if acceptedAt.Valid {
		t := acceptedAt.Time
		f.AcceptedAt = &t
	}
	return &f, nil
}

var _ store.FamilyStore = (*FamilyStore)(nil)
