package main

import (
	"context"

	"unitgate/internal/directory"
	dirmemory "unitgate/internal/directory/memory"
)

// memoryBuildings lets the seeder register buildings in the in-memory directory.
type memoryBuildings struct {
	dir *dirmemory.Directory
}

func (m memoryBuildings) AddBuilding(_ context.Context, b directory.Building) error {
	m.dir.AddBuilding(b)
	return nil
}
