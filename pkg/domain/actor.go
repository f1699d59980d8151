package domain

import "slices"

// Actor is the authenticated caller of a workflow operation.
// Managers carry the buildings they administer; every actor carries the
// phone number that links them to occupant records and membership claims.
type Actor struct {
	UserID           UserID
	Phone            string
	FullName         string
	ManagedBuildings []BuildingID
}

// Manages reports whether the actor is a manager of the building.
func (a Actor) Manages(building BuildingID) bool {
	return !building.IsNil() && slices.Contains(a.ManagedBuildings, building)
}

// IsManager reports whether the actor manages at least one building.
func (a Actor) IsManager() bool {
	return len(a.ManagedBuildings) > 0
}

// HasPhone compares the actor's phone with a raw phone number after normalization.
func (a Actor) HasPhone(phone string) bool {
	p := NormalizePhone(phone)
	return p != "" && NormalizePhone(a.Phone) == p
}
