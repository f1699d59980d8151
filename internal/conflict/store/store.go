// Package store persists conflict reports.
package store

import (
	"context"

	"unitgate/internal/conflict/models"
	id "unitgate/pkg/domain"
)

// ReportStore persists conflict reports, oldest first in lists. Update writes
// only when the stored status equals expected and the versions match,
// otherwise it returns sentinel.ErrInvalidState.
type ReportStore interface {
	Create(ctx context.Context, r *models.Report) error
	Update(ctx context.Context, r *models.Report, expected models.Status) error
	FindByID(ctx context.Context, reportID id.ReportID) (*models.Report, error)
	// List returns the building's reports; an empty status returns all.
	List(ctx context.Context, building id.BuildingID, status models.Status) ([]*models.Report, error)
}
