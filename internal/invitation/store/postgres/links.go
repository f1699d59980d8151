// Package postgres persists invite links and family invitations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"unitgate/internal/directory"
	"unitgate/internal/invitation/models"
	"unitgate/internal/invitation/store"
	"unitgate/internal/platform/database"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/sentinel"
)

const linkColumns = `id, token, building_id, unit_number, building_code, role,
	expires_at, created_by, is_used, used_by, used_by_phone, used_at, created_at`

type LinkStore struct {
	db database.DBTX
}

func NewLinkStore(db database.DBTX) *LinkStore {
	return &LinkStore{db: db}
}

func (s *LinkStore) Create(ctx context.Context, l *models.InviteLink) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invite_links (`+linkColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		uuid.UUID(l.ID), l.Token, uuid.UUID(l.Unit.BuildingID), l.Unit.UnitNumber, l.BuildingCode, string(l.Role),
		l.ExpiresAt, uuid.UUID(l.CreatedBy), l.IsUsed, nullUUID(uuid.UUID(l.UsedBy)), l.UsedByPhone, nullTime(l.UsedAt), l.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invite link exists: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create invite link: %w", err)
	}
	return nil
}

func (s *LinkStore) FindByID(ctx context.Context, linkID id.InviteLinkID) (*models.InviteLink, error) {
	l, err := scanLink(s.db.QueryRowContext(ctx, `
		SELECT `+linkColumns+` FROM invite_links WHERE id = $1
	`, uuid.UUID(linkID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find invite link: %w", err)
	}
	return l, nil
}

// MarkUsed flips is_used only while it is still false.
func (s *LinkStore) MarkUsed(ctx context.Context, l *models.InviteLink) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE invite_links
		SET is_used = TRUE, used_by = $2, used_at = $3, used_by_phone = $4
		WHERE id = $1 AND is_used = FALSE
	`, uuid.UUID(l.ID), nullUUID(uuid.UUID(l.UsedBy)), nullTime(l.UsedAt), l.UsedByPhone)
	if err != nil {
		return fmt.Errorf("mark invite link used: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark invite link used rows: %w", err)
	}
	if rows == 0 {
		if _, err := s.FindByID(ctx, l.ID); err != nil {
			return err
		}
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (s *LinkStore) ListByBuilding(ctx context.Context, building id.BuildingID) ([]*models.InviteLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+linkColumns+`
		FROM invite_links
		WHERE building_id = $1
		ORDER BY created_at DESC, id
	`, uuid.UUID(building))
	if err != nil {
		return nil, fmt.Errorf("list invite links: %w", err)
	}
	defer rows.Close()

	var out []*models.InviteLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invite link: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invite links: %w", err)
	}
	return out, nil
}

func (s *LinkStore) HasUsedInBuilding(ctx context.Context, phone string, building directory.BuildingRef) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM invite_links
			WHERE is_used AND used_by_phone = $1 AND used_by_phone <> ''
				AND (building_id = $2 OR ($3 <> '' AND lower(building_code) = lower($3)))
		)
	`, id.NormalizePhone(phone), uuid.UUID(building.ID), strings.TrimSpace(building.Code)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("used invite link lookup: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row rowScanner) (*models.InviteLink, error) {
	var (
		l                             models.InviteLink
		linkID, buildingID, createdBy uuid.UUID
		usedBy                        uuid.NullUUID
		usedAt                        sql.NullTime
		unitNumber, role              string
	)
	err := row.Scan(
		&linkID, &l.Token, &buildingID, &unitNumber, &l.BuildingCode, &role,
		&l.ExpiresAt, &createdBy, &l.IsUsed, &usedBy, &l.UsedByPhone, &usedAt, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if l.Role, err = models.ParseLinkRole(role); err != nil {
		return nil, err
	}
	l.ID = id.InviteLinkID(linkID)
	l.Unit = directory.NewUnitRef(id.BuildingID(buildingID), unitNumber)
	l.CreatedBy = id.UserID(createdBy)
	l.UsedBy = id.UserID(usedBy.UUID)
	if usedAt.Valid {
		t := usedAt.Time
		l.UsedAt = &t
	}
	return &l, nil
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

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ store.LinkStore = (*LinkStore)(nil)
