// Package seeder loads a small demo directory: two buildings under one
// manager and a couple of occupied units. Local runs and the fake directory
// start from it; IDs are stable so tokengen can mint manager tokens for them.
package seeder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"unitgate/internal/directory"
	id "unitgate/pkg/domain"
)

const (
	DemoManagerPhone = "09120000001"
	DemoManagerName  = "Sara Manager"
)

var (
	MapleCourt = directory.Building{
		ID:           demoBuildingID("maple-court"),
		Code:         "MAPLE",
		Name:         "Maple Court",
		ManagerPhone: DemoManagerPhone,
	}
	CedarHouse = directory.Building{
		ID:           demoBuildingID("cedar-house"),
		Code:         "CEDAR",
		Name:         "Cedar House",
		ManagerPhone: DemoManagerPhone,
	}
)

func demoBuildingID(name string) id.BuildingID {
	return id.BuildingID(uuid.NewSHA1(uuid.NameSpaceOID, []byte("unitgate/demo/"+name)))
}

// Buildings lists every demo building.
func Buildings() []directory.Building {
	return []directory.Building{MapleCourt, CedarHouse}
}

type demoUnit struct {
	unit directory.UnitRef
	data directory.OccupantData
}

func demoUnits() []demoUnit {
	return []demoUnit{
		{
			unit: directory.NewUnitRef(MapleCourt.ID, "12"),
			data: directory.OccupantData{
				BuildingCode:  MapleCourt.Code,
				Floor:         "3",
				Area:          "92",
				OwnerType:     directory.OwnerTypeLandlord,
				Owner:         directory.Person{FullName: "Ali Owner", Phone: "09121111111"},
				Tenant:        &directory.Person{FullName: "Reza Tenant", Phone: "09122222222"},
				ResidentCount: 3,
				HasParking:    true,
				ParkingCount:  1,
			},
		},
		{
			unit: directory.NewUnitRef(MapleCourt.ID, "7"),
			data: directory.OccupantData{
				BuildingCode:  MapleCourt.Code,
				Floor:         "2",
				Area:          "75",
				OwnerType:     directory.OwnerTypeResident,
				Owner:         directory.Person{FullName: "Mina Resident", Phone: "09123333333"},
				ResidentCount: 2,
			},
		},
	}
}

// BuildingStore registers buildings in a directory backend.
type BuildingStore interface {
	AddBuilding(ctx context.Context, b directory.Building) error
}

// Seeder populates a directory backend with demo data
type Seeder struct {
	buildings BuildingStore
	occupants directory.Writer
	logger    *slog.Logger
}

func New(buildings BuildingStore, occupants directory.Writer, logger *slog.Logger) *Seeder {
	return &Seeder{
		buildings: buildings,
		occupants: occupants,
		logger:    logger,
	}
}

// SeedAll is idempotent: buildings are upserted and occupied units rewritten.
func (s *Seeder) SeedAll(ctx context.Context) error {
	s.logger.Info("seeding demo directory...")

	for _, b := range Buildings() {
		if err := s.buildings.AddBuilding(ctx, b); err != nil {
			return fmt.Errorf("failed to seed building %s: %w", b.Code, err)
		}
	}

	units := demoUnits()
	for _, u := range units {
		if _, err := s.occupants.UpsertOccupant(ctx, u.unit, u.data); err != nil {
			return fmt.Errorf("failed to seed unit %s: %w", u.unit, err)
		}
	}

	s.logger.Info("demo directory seeded successfully",
		"buildings", len(Buildings()),
		"units", len(units),
		"manager_phone", DemoManagerPhone,
	)
	return nil
}
