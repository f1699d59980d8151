// Package store defines persistence for membership requests. Implementations
// live in the memory and postgres subpackages.
package store

import (
	"context"

	"unitgate/internal/directory"
	"unitgate/internal/membership/models"
	id "unitgate/pkg/domain"
)

// RequestStore persists membership requests. Lists are ordered oldest first.
//
// Create returns sentinel.ErrAlreadyUsed when the applicant already has an
// active request for the same unit. Update is a compare-and-set: it writes
// only when the stored status equals expected and the stored version equals
// r.Version, otherwise it returns sentinel.ErrInvalidState. On success
// r.Version is incremented.
type RequestStore interface {
	Create(ctx context.Context, r *models.Request) error
	Update(ctx context.Context, r *models.Request, expected models.Status) error
	FindByID(ctx context.Context, requestID id.RequestID) (*models.Request, error)
	ListByApplicant(ctx context.Context, applicantPhone string) ([]*models.Request, error)
	// ListByOwnerPhone returns requests naming phone as claimed owner or owner of record.
	ListByOwnerPhone(ctx context.Context, phone string) ([]*models.Request, error)
	// ListManagerPending returns requests in building waiting for a manager decision.
	ListManagerPending(ctx context.Context, building id.BuildingID) ([]*models.Request, error)
	ListSuggestedPending(ctx context.Context, applicantPhone string) ([]*models.Request, error)
	// HasApprovedInBuilding reports an owner- or manager-approved request of the
	// applicant in the building, matched by id or code.
	HasApprovedInBuilding(ctx context.Context, applicantPhone string, building directory.BuildingRef) (bool, error)
}

// AwaitsManager reports whether a manager can act on r now.
func AwaitsManager(r *models.Request) bool {
	return !r.IsSuggested && r.CanManagerApprove()
}
