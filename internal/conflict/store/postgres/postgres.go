package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"unitgate/internal/conflict/models"
	"unitgate/internal/conflict/store"
	"unitgate/internal/directory"
	"unitgate/internal/platform/database"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/sentinel"
)

const selectColumns = `id, building_id, unit_number, building_code, reported_by, reporter_phone,
	snapshot, reason, status, resolution_note, resolved_by, resolved_at,
	correction, applied, created_at, updated_at, version`

type Store struct {
	db database.DBTX
}

func New(db database.DBTX) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, r *models.Report) error {
	snapshot, correction, err := encode(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conflict_reports (`+selectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`,
		uuid.UUID(r.ID), uuid.UUID(r.Unit.BuildingID), r.Unit.UnitNumber, r.BuildingCode,
		uuid.UUID(r.ReportedBy), r.ReporterPhone,
		snapshot, r.Reason, string(r.Status), r.ResolutionNote, nullUUID(uuid.UUID(r.ResolvedBy)), nullTime(r.ResolvedAt),
		correction, r.Applied, r.CreatedAt, r.UpdatedAt, r.Version,
	)
	if err != nil {
		return fmt.Errorf("create conflict report: %w", err)
	}
	return nil
}

// Update writes the mutable columns of a report.
func (s *Store) Update(ctx context.Context, r *models.Report, expected models.Status) error {
	_, correction, err := encode(r)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE conflict_reports
		SET status = $2, resolution_note = $3, resolved_by = $4, resolved_at = $5,
			correction = $6, applied = $7, updated_at = $8, version = version + 1
		WHERE id = $1 AND status = $9 AND version = $10
	`,
		uuid.UUID(r.ID), string(r.Status), r.ResolutionNote, nullUUID(uuid.UUID(r.ResolvedBy)), nullTime(r.ResolvedAt),
		correction, r.Applied, r.UpdatedAt, string(expected), r.Version,
	)
	if err != nil {
		return fmt.Errorf("update conflict report: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update conflict report rows: %w", err)
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

func (s *Store) FindByID(ctx context.Context, reportID id.ReportID) (*models.Report, error) {
	r, err := scanReport(s.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+` FROM conflict_reports WHERE id = $1
	`, uuid.UUID(reportID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find conflict report: %w", err)
	}
	return r, nil
}

func (s *Store) List(ctx context.Context, building id.BuildingID, status models.Status) ([]*models.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM conflict_reports
		WHERE building_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at, id
	`, uuid.UUID(building), string(status))
	if err != nil {
		return nil, fmt.Errorf("list conflict reports: %w", err)
	}
	defer rows.Close()

	var out []*models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conflict report: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conflict reports: %w", err)
	}
	return out, nil
}

func encode(r *models.Report) (snapshot, correction []byte, err error) {
	snapshot, err = json.Marshal(r.Snapshot)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	if r.Correction != nil {
		correction, err = json.Marshal(r.Correction)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal correction: %w", err)
		}
	}
	return snapshot, correction, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*models.Report, error) {
	var (
		r                              models.Report
		reportID, buildingID, reporter uuid.UUID
		resolvedBy                     uuid.NullUUID
		resolvedAt                     sql.NullTime
		unitNumber, status             string
		snapshot, correction           []byte
	)
	err := row.Scan(
		&reportID, &buildingID, &unitNumber, &r.BuildingCode, &reporter, &r.ReporterPhone,
		&snapshot, &r.Reason, &status, &r.ResolutionNote, &resolvedBy, &resolvedAt,
		&correction, &r.Applied, &r.CreatedAt, &r.UpdatedAt, &r.Version,
	)
	if err != nil {
		return nil, err
	}
	if r.Status, err = models.NormalizeStatus(status); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshot, &r.Snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(correction) > 0 {
		r.Correction = &models.Correction{}
		if err := json.Unmarshal(correction, r.Correction); err != nil {
			return nil, fmt.Errorf("decode correction: %w", err)
		}
	}
	r.ID = id.ReportID(reportID)
	r.Unit = directory.NewUnitRef(id.BuildingID(buildingID), unitNumber)
	r.ReportedBy = id.UserID(reporter)
	r.ResolvedBy = id.UserID(resolvedBy.UUID)
	if resolvedAt.Valid {
		t := resolvedAt.Time
		r.ResolvedAt = &t
	}
	return &r, nil
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

var _ store.ReportStore = (*Store)(nil)
