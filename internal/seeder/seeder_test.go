package seeder

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unitgate/internal/directory"
	dirmemory "unitgate/internal/directory/memory"
)

type memoryBuildings struct {
	dir *dirmemory.Directory
}

func (m memoryBuildings) AddBuilding(_ context.Context, b directory.Building) error {
	m.dir.AddBuilding(b)
	return nil
}

func TestSeedAll(t *testing.T) {
	ctx := context.Background()
	dir := dirmemory.New()
	s := New(memoryBuildings{dir}, dir, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, s.SeedAll(ctx))
	// second run must not fail or duplicate
	require.NoError(t, s.SeedAll(ctx))

	managed, err := dir.BuildingsByManagerPhone(ctx, "+98 912 000 0001")
	require.NoError(t, err)
	assert.Len(t, managed, 2)

	rec, err := dir.GetUnit(ctx, directory.NewUnitRef(MapleCourt.ID, "12"))
	require.NoError(t, err)
	assert.True(t, rec.HasOccupant("09121111111"))
	assert.True(t, rec.IsTenant("09122222222"))

	byPhone, err := dir.LookupByPhone(ctx, "09123333333")
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, "7", byPhone[0].Unit.UnitNumber)
}

func TestBuildingIDsAreStable(t *testing.T) {
	assert.Equal(t, MapleCourt.ID, demoBuildingID("maple-court"))
	assert.NotEqual(t, MapleCourt.ID, CedarHouse.ID)
}
