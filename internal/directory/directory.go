// Package directory is the boundary to the Unit Directory, the canonical
// record of who owns or rents each unit. The workflow reads it for matching
// and writes it on terminal approval.
package directory

//go:generate mockgen -source=directory.go -destination=mocks/mocks.go -package=mocks Reader,Writer,Directory

import (
	"context"
	"strings"
	"time"

	id "unitgate/pkg/domain"
)

// UnitRef addresses one unit inside a building.
type UnitRef struct {
	BuildingID id.BuildingID `json:"building_id"`
	UnitNumber string        `json:"unit_number"`
}

func NewUnitRef(building id.BuildingID, unitNumber string) UnitRef {
	return UnitRef{BuildingID: building, UnitNumber: strings.TrimSpace(unitNumber)}
}

func (u UnitRef) String() string {
	return u.BuildingID.String() + "/" + u.UnitNumber
}

func (u UnitRef) IsZero() bool {
	return u.BuildingID.IsNil() || u.UnitNumber == ""
}

// BuildingRef finds a building by id or, when the id is nil, by its public code.
type BuildingRef struct {
	ID   id.BuildingID
	Code string
}

type Building struct {
	ID           id.BuildingID `json:"id"`
	Code         string        `json:"code"`
	Name         string        `json:"name"`
	ManagerPhone string        `json:"manager_phone"`
}

// Matches reports whether the ref names this building by id or by code.
func (b *Building) Matches(ref BuildingRef) bool {
	if !ref.ID.IsNil() && b.ID == ref.ID {
		return true
	}
	return ref.Code != "" && strings.EqualFold(b.Code, strings.TrimSpace(ref.Code))
}

type Person struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

func (p *Person) IsZero() bool {
	return p == nil || (p.FullName == "" && p.Phone == "")
}

type FamilyMember struct {
	FullName string    `json:"full_name,omitempty"`
	Phone    string    `json:"phone"`
	AddedAt  time.Time `json:"added_at"`
}

// Owner types as the directory stores them.
const (
	OwnerTypeEmpty    = "empty"
	OwnerTypeResident = "resident"
	OwnerTypeLandlord = "landlord"
)

// OccupantData is the writable part of an occupant record.
type OccupantData struct {
	BuildingCode  string  `json:"building_code"`
	Floor         string  `json:"floor"`
	Area          string  `json:"area"`
	OwnerType     string  `json:"owner_type"`
	Owner         Person  `json:"owner"`
	Tenant        *Person `json:"tenant,omitempty"`
	ResidentCount int     `json:"resident_count"`
	HasParking    bool    `json:"has_parking"`
	ParkingCount  int     `json:"parking_count"`
}

// OccupantRecord is the canonical occupancy of a unit.
type OccupantRecord struct {
	Unit UnitRef `json:"unit"`
	OccupantData
	Family    []FamilyMember `json:"family,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Clone returns a deep copy so callers never share the directory's state.
func (r *OccupantRecord) Clone() *OccupantRecord {
	if r == nil {
		return nil
	}
	cp := *r
	if r.Tenant != nil {
		t := *r.Tenant
		cp.Tenant = &t
	}
	cp.Family = append([]FamilyMember(nil), r.Family...)
	return &cp
}

// HasOccupant reports whether phone is the owner or tenant of record.
func (r *OccupantRecord) HasOccupant(phone string) bool {
	p := id.NormalizePhone(phone)
	if p == "" {
		return false
	}
	if id.NormalizePhone(r.Owner.Phone) == p {
		return true
	}
	return r.Tenant != nil && id.NormalizePhone(r.Tenant.Phone) == p
}

// IsTenant reports whether phone is the tenant of record.
func (r *OccupantRecord) IsTenant(phone string) bool {
	p := id.NormalizePhone(phone)
	return p != "" && r.Tenant != nil && id.NormalizePhone(r.Tenant.Phone) == p
}

// Phones lists the normalized owner, tenant and family phones on the record.
func (r *OccupantRecord) Phones() []string {
	out := make([]string, 0, 2+len(r.Family))
	if p := id.NormalizePhone(r.Owner.Phone); p != "" {
		out = append(out, p)
	}
	if r.Tenant != nil {
		if p := id.NormalizePhone(r.Tenant.Phone); p != "" {
			out = append(out, p)
		}
	}
	for _, m := range r.Family {
		if p := id.NormalizePhone(m.Phone); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// WriteResult carries the record after a write. Compensate undoes the write
// when the caller's transaction fails afterwards; it is nil when the write
// already belongs to the caller's SQL transaction.
type WriteResult struct {
	Record     *OccupantRecord
	Compensate func(ctx context.Context) error
}

// Reader is the read side of the Unit Directory. Lookups return records
// ordered oldest-created first.
type Reader interface {
	LookupByPhone(ctx context.Context, phone string) ([]*OccupantRecord, error)
	GetUnit(ctx context.Context, unit UnitRef) (*OccupantRecord, error)
	FindBuilding(ctx context.Context, ref BuildingRef) (*Building, error)
	BuildingsByManagerPhone(ctx context.Context, phone string) ([]*Building, error)
}

type Writer interface {
	UpsertOccupant(ctx context.Context, unit UnitRef, data OccupantData) (*WriteResult, error)
	AddFamilyMember(ctx context.Context, unit UnitRef, member FamilyMember) (*WriteResult, error)
}

type Directory interface {
	Reader
	Writer
}
