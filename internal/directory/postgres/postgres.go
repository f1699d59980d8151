// Package postgres stores the Unit Directory in the service's own database so
// that approval and occupancy commit in one SQL transaction.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"unitgate/internal/directory"
	"unitgate/internal/platform/database"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/sentinel"
	"unitgate/pkg/requestcontext"
)

const occupantColumns = `building_id, unit_number, building_code, floor, area, owner_type,
	owner_full_name, owner_phone, tenant_full_name, tenant_phone,
	resident_count, has_parking, parking_count, created_at, updated_at`

// Directory runs against a *sql.DB or a caller's *sql.Tx. Writes carry no
// compensation because they commit or roll back with the caller.
type Directory struct {
	db database.DBTX
}

func New(db database.DBTX) *Directory {
	return &Directory{db: db}
}

func (d *Directory) LookupByPhone(ctx context.Context, phone string) ([]*directory.OccupantRecord, error) {
	p := id.NormalizePhone(phone)
	if p == "" {
		return nil, nil
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+occupantColumns+`
		FROM unit_occupants
		WHERE owner_phone = $1 OR tenant_phone = $1
		ORDER BY created_at, building_id, unit_number
	`, p)
	if err != nil {
		return nil, fmt.Errorf("lookup occupants by phone: %w", err)
	}
	defer rows.Close()

	var out []*directory.OccupantRecord
	for rows.Next() {
		r, err := scanOccupant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan occupant: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate occupants: %w", err)
	}
	for _, r := range out {
		if r.Family, err = d.family(ctx, r.Unit); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (d *Directory) GetUnit(ctx context.Context, unit directory.UnitRef) (*directory.OccupantRecord, error) {
	r, err := scanOccupant(d.db.QueryRowContext(ctx, `
		SELECT `+occupantColumns+`
		FROM unit_occupants
		WHERE building_id = $1 AND unit_number = $2
	`, uuid.UUID(unit.BuildingID), unit.UnitNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get unit: %w", err)
	}
	if r.Family, err = d.family(ctx, unit); err != nil {
		return nil, err
	}
	return r, nil
}

func (d *Directory) FindBuilding(ctx context.Context, ref directory.BuildingRef) (*directory.Building, error) {
	var row *sql.Row
	if !ref.ID.IsNil() {
		row = d.db.QueryRowContext(ctx, `
			SELECT id, code, name, manager_phone FROM buildings WHERE id = $1
		`, uuid.UUID(ref.ID))
	} else {
		row = d.db.QueryRowContext(ctx, `
			SELECT id, code, name, manager_phone FROM buildings WHERE lower(code) = lower($1)
		`, ref.Code)
	}
	b, err := scanBuilding(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find building: %w", err)
	}
	return b, nil
}

func (d *Directory) BuildingsByManagerPhone(ctx context.Context, phone string) ([]*directory.Building, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, code, name, manager_phone
		FROM buildings
		WHERE manager_phone = $1
		ORDER BY code
	`, id.NormalizePhone(phone))
	if err != nil {
		return nil, fmt.Errorf("buildings by manager phone: %w", err)
	}
	defer rows.Close()

	var out []*directory.Building
	for rows.Next() {
		b, err := scanBuilding(rows)
		if err != nil {
			return nil, fmt.Errorf("scan building: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpsertOccupant replaces the occupant fields of a unit, keeping created_at
// and family links.
func (d *Directory) UpsertOccupant(ctx context.Context, unit directory.UnitRef, data directory.OccupantData) (*directory.WriteResult, error) {
	now := requestcontext.Now(ctx)
	var tenantName, tenantPhone sql.NullString
	if data.Tenant != nil {
		tenantName = sql.NullString{String: data.Tenant.FullName, Valid: true}
		tenantPhone = sql.NullString{String: id.NormalizePhone(data.Tenant.Phone), Valid: true}
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO unit_occupants (`+occupantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		ON CONFLICT (building_id, unit_number) DO UPDATE SET
			building_code = EXCLUDED.building_code,
			floor = EXCLUDED.floor,
			area = EXCLUDED.area,
			owner_type = EXCLUDED.owner_type,
			owner_full_name = EXCLUDED.owner_full_name,
			owner_phone = EXCLUDED.owner_phone,
			tenant_full_name = EXCLUDED.tenant_full_name,
			tenant_phone = EXCLUDED.tenant_phone,
			resident_count = EXCLUDED.resident_count,
			has_parking = EXCLUDED.has_parking,
			parking_count = EXCLUDED.parking_count,
			updated_at = EXCLUDED.updated_at
	`,
		uuid.UUID(unit.BuildingID),
		unit.UnitNumber,
		data.BuildingCode,
		data.Floor,
		data.Area,
		data.OwnerType,
		data.Owner.FullName,
		id.NormalizePhone(data.Owner.Phone),
		tenantName,
		tenantPhone,
		data.ResidentCount,
		data.HasParking,
		data.ParkingCount,
		now,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("building %s: %w", unit.BuildingID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("upsert occupant: %w", err)
	}

	record, err := d.GetUnit(ctx, unit)
	if err != nil {
		return nil, err
	}
	return &directory.WriteResult{Record: record}, nil
}

func (d *Directory) AddFamilyMember(ctx context.Context, unit directory.UnitRef, member directory.FamilyMember) (*directory.WriteResult, error) {
	addedAt := member.AddedAt
	if addedAt.IsZero() {
		addedAt = requestcontext.Now(ctx)
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO family_members (building_id, unit_number, phone, full_name, added_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (building_id, unit_number, phone) DO NOTHING
	`, uuid.UUID(unit.BuildingID), unit.UnitNumber, id.NormalizePhone(member.Phone), member.FullName, addedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("unit %s: %w", unit, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("add family member: %w", err)
	}

	record, err := d.GetUnit(ctx, unit)
	if err != nil {
		return nil, err
	}
	return &directory.WriteResult{Record: record}, nil
}

// AddBuilding inserts or renames a building. Used by seeding and tests.
func (d *Directory) AddBuilding(ctx context.Context, b directory.Building) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO buildings (id, code, name, manager_phone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, name = EXCLUDED.name, manager_phone = EXCLUDED.manager_phone
	`, uuid.UUID(b.ID), b.Code, b.Name, id.NormalizePhone(b.ManagerPhone))
	if err != nil {
		return fmt.Errorf("add building: %w", err)
	}
	return nil
}

func (d *Directory) family(ctx context.Context, unit directory.UnitRef) ([]directory.FamilyMember, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT phone, full_name, added_at
		FROM family_members
		WHERE building_id = $1 AND unit_number = $2
		ORDER BY added_at
	`, uuid.UUID(unit.BuildingID), unit.UnitNumber)
	if err != nil {
		return nil, fmt.Errorf("load family members: %w", err)
	}
	defer rows.Close()

	var out []directory.FamilyMember
	for rows.Next() {
		var m directory.FamilyMember
		if err := rows.Scan(&m.Phone, &m.FullName, &m.AddedAt); err != nil {
			return nil, fmt.Errorf("scan family member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOccupant(row rowScanner) (*directory.OccupantRecord, error) {
	var (
		buildingID              uuid.UUID
		tenantName, tenantPhone sql.NullString
		createdAt, updatedAt    time.Time
		r                       directory.OccupantRecord
	)
	err := row.Scan(
		&buildingID,
		&r.Unit.UnitNumber,
		&r.BuildingCode,
		&r.Floor,
		&r.Area,
		&r.OwnerType,
		&r.Owner.FullName,
		&r.Owner.Phone,
		&tenantName,
		&tenantPhone,
		&r.ResidentCount,
		&r.HasParking,
		&r.ParkingCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Unit.BuildingID = id.BuildingID(buildingID)
	if tenantPhone.Valid {
		r.Tenant = &directory.Person{FullName: tenantName.String, Phone: tenantPhone.String}
	}
	r.CreatedAt = createdAt
	r.UpdatedAt = updatedAt
	return &r, nil
}

func scanBuilding(row rowScanner) (*directory.Building, error) {
	var (
		buildingID uuid.UUID
		b          directory.Building
	)
	if err := row.Scan(&buildingID, &b.Code, &b.Name, &b.ManagerPhone); err != nil {
		return nil, err
	}
	b.ID = id.BuildingID(buildingID)
	return &b, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

var _ directory.Directory = (*Directory)(nil)
