// Package memory is the in-process Unit Directory used for local runs and tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"unitgate/internal/directory"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/sentinel"
	"unitgate/pkg/requestcontext"
)

// Directory keeps buildings and occupant records in maps. Writes return a
// compensation that restores the previous record.
type Directory struct {
	mu        sync.RWMutex
	buildings map[id.BuildingID]*directory.Building
	units     map[directory.UnitRef]*directory.OccupantRecord
}

func New() *Directory {
	return &Directory{
		buildings: make(map[id.BuildingID]*directory.Building),
		units:     make(map[directory.UnitRef]*directory.OccupantRecord),
	}
}

// AddBuilding registers or replaces a building.
func (d *Directory) AddBuilding(b directory.Building) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b.ManagerPhone = id.NormalizePhone(b.ManagerPhone)
	d.buildings[b.ID] = &b
}

// PutRecord stores a record as-is, keeping its timestamps. Used for seeding.
func (d *Directory) PutRecord(record *directory.OccupantRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.units[record.Unit] = record.Clone()
}

func (d *Directory) LookupByPhone(_ context.Context, phone string) ([]*directory.OccupantRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []*directory.OccupantRecord
	for _, r := range d.units {
		if r.HasOccupant(phone) {
			out = append(out, r.Clone())
		}
	}
	sortOldestFirst(out)
	return out, nil
}

func (d *Directory) GetUnit(_ context.Context, unit directory.UnitRef) (*directory.OccupantRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.units[unit]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return r.Clone(), nil
}

func (d *Directory) FindBuilding(_ context.Context, ref directory.BuildingRef) (*directory.Building, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if b, ok := d.buildings[ref.ID]; ok {
		cp := *b
		return &cp, nil
	}
	for _, b := range d.buildings {
		if b.Matches(ref) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (d *Directory) BuildingsByManagerPhone(_ context.Context, phone string) ([]*directory.Building, error) {
	p := id.NormalizePhone(phone)
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []*directory.Building
	for _, b := range d.buildings {
		if p != "" && b.ManagerPhone == p {
			cp := *b
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *directory.Building) int {
		return cmp.Compare(a.Code, b.Code)
	})
	return out, nil
}

func (d *Directory) UpsertOccupant(ctx context.Context, unit directory.UnitRef, data directory.OccupantData) (*directory.WriteResult, error) {
	now := requestcontext.Now(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.buildings[unit.BuildingID]; !ok {
		return nil, sentinel.ErrNotFound
	}

	previous := d.units[unit].Clone()
	next := &directory.OccupantRecord{
		Unit:         unit,
		OccupantData: data,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if previous != nil {
		next.CreatedAt = previous.CreatedAt
		next.Family = previous.Family
	}
	d.units[unit] = next

	return &directory.WriteResult{
		Record:     next.Clone(),
		Compensate: d.restore(unit, previous),
	}, nil
}

func (d *Directory) AddFamilyMember(ctx context.Context, unit directory.UnitRef, member directory.FamilyMember) (*directory.WriteResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	current, ok := d.units[unit]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	member.Phone = id.NormalizePhone(member.Phone)
	for _, m := range current.Family {
		if m.Phone == member.Phone {
			return &directory.WriteResult{Record: current.Clone(), Compensate: noop}, nil
		}
	}
	if member.AddedAt.IsZero() {
		member.AddedAt = requestcontext.Now(ctx)
	}

	previous := current.Clone()
	next := current.Clone()
	next.Family = append(next.Family, member)
	next.UpdatedAt = member.AddedAt
	d.units[unit] = next

	return &directory.WriteResult{
		Record:     next.Clone(),
		Compensate: d.restore(unit, previous),
	}, nil
}

// DeleteOccupant removes a unit's record. Missing units are not an error.
func (d *Directory) DeleteOccupant(_ context.Context, unit directory.UnitRef) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.units, unit)
	return nil
}

func (d *Directory) RemoveFamilyMember(_ context.Context, unit directory.UnitRef, phone string) error {
	p := id.NormalizePhone(phone)
	d.mu.Lock()
	defer d.mu.Unlock()
	current, ok := d.units[unit]
	if !ok {
		return nil
	}
	next := current.Clone()
	next.Family = slices.DeleteFunc(next.Family, func(m directory.FamilyMember) bool {
		return m.Phone == p
	})
	d.units[unit] = next
	return nil
}

func (d *Directory) restore(unit directory.UnitRef, previous *directory.OccupantRecord) func(context.Context) error {
	return func(context.Context) error {
		d.mu.Lock()
		defer d.mu.Unlock()
		if previous == nil {
			delete(d.units, unit)
			return nil
		}
		d.units[unit] = previous
		return nil
	}
}

func noop(context.Context) error { return nil }

func sortOldestFirst(records []*directory.OccupantRecord) {
	slices.SortStableFunc(records, func(a, b *directory.OccupantRecord) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Unit.String(), b.Unit.String())
	})
}

var _ directory.Directory = (*Directory)(nil)
