// Package queue holds the ordering rules of manager-suggested requests: an
// applicant works through their open suggestions strictly oldest first.
package queue

import (
	"slices"

	"unitgate/internal/membership/models"
	dErrors "unitgate/pkg/domain-errors"
)

// IsOpen reports whether r still waits for the applicant's answer.
func IsOpen(r *models.Request) bool {
	return r.IsSuggested && r.Status == models.StatusPending
}

// Open filters the open suggestions and sorts them oldest first. Ties on
// created_at fall back to the id so the order is stable across stores.
func Open(requests []*models.Request) []*models.Request {
	out := make([]*models.Request, 0, len(requests))
	for _, r := range requests {
		if IsOpen(r) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b *models.Request) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		switch as, bs := a.ID.String(), b.ID.String(); {
		case as < bs:
			return -1
		case as > bs:
			return 1
		}
		return 0
	})
	return out
}

// Actionable returns the single suggestion the applicant may act on, or nil.
func Actionable(requests []*models.Request) *models.Request {
	open := Open(requests)
	if len(open) == 0 {
		return nil
	}
	return open[0]
}

// CheckTurn fails with CodeOrdering unless target is the actionable
// suggestion among the applicant's requests.
func CheckTurn(requests []*models.Request, target *models.Request) error {
	if !IsOpen(target) {
		return dErrors.New(dErrors.CodeConflict, "request is not an open suggestion")
	}
	head := Actionable(requests)
	if head == nil || head.ID == target.ID {
		return nil
	}
	return dErrors.New(dErrors.CodeOrdering, "an older suggested request must be resolved first")
}
