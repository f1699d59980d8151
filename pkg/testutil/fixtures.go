package testutil

import (
	"github.com/google/uuid"

	id "unitgate/pkg/domain"
)

// TestIDs are fixed ids for deterministic fixtures.
var TestIDs = struct {
	BuildingA id.BuildingID
	BuildingB id.BuildingID
	Manager   id.UserID
	Owner     id.UserID
	Tenant    id.UserID
	Applicant id.UserID
}{
	BuildingA: id.BuildingID(uuid.MustParse("b0000000-0000-0000-0000-00000000000a")),
	BuildingB: id.BuildingID(uuid.MustParse("b0000000-0000-0000-0000-00000000000b")),
	Manager:   id.UserID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	Owner:     id.UserID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	Tenant:    id.UserID(uuid.MustParse("33333333-3333-3333-3333-333333333333")),
	Applicant: id.UserID(uuid.MustParse("44444444-4444-4444-4444-444444444444")),
}

// Phones used across fixtures; all are already normalized.
const (
	ManagerPhone   = "09120000001"
	OwnerPhone     = "09120000002"
	TenantPhone    = "09120000003"
	ApplicantPhone = "09120000004"
	FamilyPhone    = "09120000005"
)

// ActorBuilder builds authenticated actors for service and handler tests.
type ActorBuilder struct {
	actor id.Actor
}

func NewActor(userID id.UserID, phone string) *ActorBuilder {
	return &ActorBuilder{actor: id.Actor{UserID: userID, Phone: phone}}
}

func (b *ActorBuilder) Named(name string) *ActorBuilder {
	b.actor.FullName = name
	return b
}

func (b *ActorBuilder) Managing(buildings ...id.BuildingID) *ActorBuilder {
	b.actor.ManagedBuildings = append(b.actor.ManagedBuildings, buildings...)
	return b
}

func (b *ActorBuilder) Build() id.Actor {
	return b.actor
}

func ManagerActor() id.Actor {
	return NewActor(TestIDs.Manager, ManagerPhone).Named("Mina Manager").Managing(TestIDs.BuildingA).Build()
}

func OwnerActor() id.Actor {
	return NewActor(TestIDs.Owner, OwnerPhone).Named("Omid Owner").Build()
}

func TenantActor() id.Actor {
	return NewActor(TestIDs.Tenant, TenantPhone).Named("Tara Tenant").Build()
}

func ApplicantActor() id.Actor {
	return NewActor(TestIDs.Applicant, ApplicantPhone).Named("Arash Applicant").Build()
}
