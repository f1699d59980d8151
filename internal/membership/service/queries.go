package service

import (
	"context"

	"unitgate/internal/directory"
	"unitgate/internal/membership/models"
	id "unitgate/pkg/domain"
)

// Get returns a request visible to its applicant, its owner of record or a
// manager of its building.
func (s *Service) Get(ctx context.Context, requestID id.RequestID, actor id.Actor) (*models.Request, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, requestNotFound(err)
	}
	if actor.HasPhone(r.ApplicantPhone) || actor.Manages(r.BuildingID) ||
		actor.HasPhone(r.OwnerOfRecordPhone) || actor.HasPhone(r.OwnerPhoneNumber) {
		return r, nil
	}
	return nil, forbidden("actor cannot view this request")
}

func (s *Service) ListMine(ctx context.Context, actor id.Actor) ([]*models.Request, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	out, err := s.requests.ListByApplicant(ctx, actor.Phone)
	if err != nil {
		return nil, translate(err, "list membership requests")
	}
	return out, nil
}

// ListOwnerRequests returns requests naming the actor as owner. An empty
// status returns every status; legacy aliases are accepted.
func (s *Service) ListOwnerRequests(ctx context.Context, actor id.Actor, status string) ([]*models.Request, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var want models.Status
	if status != "" {
		parsed, err := models.NormalizeStatus(status)
		if err != nil {
			return nil, err
		}
		want = parsed
	}
	all, err := s.requests.ListByOwnerPhone(ctx, actor.Phone)
	if err != nil {
		return nil, translate(err, "list owner requests")
	}
	return filter(all, func(r *models.Request) bool {
		return want == "" || r.Status == want
	}), nil
}

// ListPendingOwnerApproval returns the requests waiting on the actor's owner gate.
func (s *Service) ListPendingOwnerApproval(ctx context.Context, actor id.Actor) ([]*models.Request, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	all, err := s.requests.ListByOwnerPhone(ctx, actor.Phone)
	if err != nil {
		return nil, translate(err, "list owner requests")
	}
	return filter(all, func(r *models.Request) bool {
		return r.Status == models.StatusPending && r.RequiresOwnerApproval && !r.IsSuggested &&
			actor.HasPhone(r.OwnerOfRecordPhone)
	}), nil
}

func (s *Service) ListManagerPending(ctx context.Context, actor id.Actor, building id.BuildingID) ([]*models.Request, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.Manages(building) {
		return nil, forbidden("actor does not manage this building")
	}
	out, err := s.requests.ListManagerPending(ctx, building)
	if err != nil {
		return nil, translate(err, "list manager queue")
	}
	return out, nil
}

// Prefill returns the canonical record for phone projected onto a claim, or
// nil when nothing matches or the applicant is already onboarded. Applicants
// prefill for themselves; managers for anyone in their buildings.
func (s *Service) Prefill(ctx context.Context, actor id.Actor, phone string, building directory.BuildingRef) (*models.Claim, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if phone == "" {
		phone = actor.Phone
	}
	if !actor.HasPhone(phone) {
		if building.ID.IsNil() && building.Code == "" {
			return nil, forbidden("building is required to look up another phone")
		}
		b, err := s.directory.FindBuilding(ctx, building)
		if err != nil {
			return nil, translate(err, "resolve building")
		}
		if !actor.Manages(b.ID) {
			return nil, forbidden("actor does not manage this building")
		}
		building = directory.BuildingRef{ID: b.ID, Code: b.Code}
	}
	claim, err := s.matcher.Prefill(ctx, phone, building)
	if err != nil {
		return nil, translate(err, "prefill claim")
	}
	return claim, nil
}

func filter(in []*models.Request, keep func(*models.Request) bool) []*models.Request {
	out := make([]*models.Request, 0, len(in))
	for _, r := range in {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
