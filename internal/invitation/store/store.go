// Package store defines persistence for invite links, family invitations and
// manager-phone selections. Implementations return sentinel errors.
package store

import (
	"context"
	"time"

	"unitgate/internal/directory"
	"unitgate/internal/invitation/models"
	id "unitgate/pkg/domain"
)

type LinkStore interface {
	Create(ctx context.Context, l *models.InviteLink) error
	FindByID(ctx context.Context, linkID id.InviteLinkID) (*models.InviteLink, error)
	// MarkUsed persists a used link only if it was still unused. A lost race
	// returns sentinel.ErrAlreadyUsed.
	MarkUsed(ctx context.Context, l *models.InviteLink) error
	ListByBuilding(ctx context.Context, building id.BuildingID) ([]*models.InviteLink, error)
	// HasUsedInBuilding reports a link in the building, matched by id or code,
	// that phone has already used.
	HasUsedInBuilding(ctx context.Context, phone string, building directory.BuildingRef) (bool, error)
}

type FamilyStore interface {
	Create(ctx context.Context, f *models.FamilyInvitation) error
	FindByCodeHash(ctx context.Context, codeHash string) (*models.FamilyInvitation, error)
	// Update compares status and version; a mismatch returns sentinel.ErrInvalidState.
	Update(ctx context.Context, f *models.FamilyInvitation, expected models.FamilyStatus) error
	ListByUnit(ctx context.Context, unit directory.UnitRef) ([]*models.FamilyInvitation, error)
	// HasAcceptedInBuilding reports an invitation into building.ID that phone
	// has accepted.
	HasAcceptedInBuilding(ctx context.Context, phone string, building directory.BuildingRef) (bool, error)
}

// SelectionStore keeps selections until they expire or are consumed.
type SelectionStore interface {
	Save(ctx context.Context, s *models.Selection, ttl time.Duration) error
	Get(ctx context.Context, selectionID id.SelectionID) (*models.Selection, error)
	// Consume deletes the selection; it returns sentinel.ErrNotFound if another
	// caller consumed it first.
	Consume(ctx context.Context, selectionID id.SelectionID) error
}
