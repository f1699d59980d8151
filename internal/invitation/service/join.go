package service

import (
	"context"
	"time"

	"unitgate/internal/invitation/models"
	membershipmodels "unitgate/internal/membership/models"
	"unitgate/internal/platform/tracer"
	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/requestcontext"
)

// ResolveManagerPhone finds the buildings managed by a phone number. A single
// match is returned directly; several matches open a selection the applicant
// must complete before it expires.
func (s *Service) ResolveManagerPhone(ctx context.Context, actor id.Actor, managerPhone string) (out models.JoinResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanManagerPhoneJoin, tracer.String(tracer.AttrApplicant, tracer.HashPhone(actor.Phone)))
	defer func() { span.End(err) }()

	if err := requireActor(actor); err != nil {
		return models.JoinResult{}, err
	}
	phone := id.NormalizePhone(managerPhone)
	if phone == "" {
		return models.JoinResult{}, dErrors.New(dErrors.CodeValidation, "manager_phone is required")
	}
	buildings, err := s.directory.BuildingsByManagerPhone(ctx, phone)
	if err != nil {
		return models.JoinResult{}, translate(err, "find buildings by manager phone")
	}

	switch len(buildings) {
	case 0:
		s.recordJoin("not_found")
		return models.JoinResult{}, dErrors.New(dErrors.CodeNotFound, "no building is managed by this phone number")
	case 1:
		s.recordJoin("single")
		b := *buildings[0]
		return models.JoinResult{Building: &b}, nil
	}

	sel := &models.Selection{
		ID:             id.NewSelectionID(),
		ApplicantPhone: id.NormalizePhone(actor.Phone),
		ManagerPhone:   phone,
		ExpiresAt:      requestcontext.Now(ctx).Add(s.selectionTTL),
	}
	for _, b := range buildings {
		sel.Buildings = append(sel.Buildings, *b)
	}
	if err := s.selections.Save(ctx, sel, s.selectionTTL); err != nil {
		return models.JoinResult{}, translate(err, "save building selection")
	}
	s.recordJoin("selection")
	s.logger.InfoContext(ctx, "building selection opened",
		"selection_id", sel.ID.String(),
		"buildings", len(sel.Buildings),
		"request_id", requestcontext.RequestID(ctx),
	)
	return models.JoinResult{Selection: sel}, nil
}

// CompleteSelection submits the applicant's claim against the building they
// picked from an open selection. The selection is consumed first so it can
// only be completed once; if the submit fails it is restored for the time it
// had left.
func (s *Service) CompleteSelection(ctx context.Context, actor id.Actor, selectionID id.SelectionID, building id.BuildingID, claim membershipmodels.Claim) (*membershipmodels.Request, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	sel, err := s.selections.Get(ctx, selectionID)
	if err != nil {
		return nil, notFound(err, "building selection not found or expired")
	}
	if !sel.BelongsTo(actor) {
		return nil, dErrors.New(dErrors.CodeForbidden, "selection belongs to another applicant")
	}
	if !sel.Offers(building) {
		return nil, dErrors.New(dErrors.CodeValidation, "building is not part of this selection")
	}
	if err := s.selections.Consume(ctx, selectionID); err != nil {
		return nil, notFound(err, "building selection not found or expired")
	}

	claim.BuildingID = building
	for _, b := range sel.Buildings {
		if b.ID == building {
			claim.BuildingCode = b.Code
		}
	}
	req, err := s.submitter.Submit(ctx, actor, claim)
	if err != nil {
		s.restoreSelection(ctx, sel)
		return nil, err
	}
	s.recordJoin("submitted")
	return req, nil
}

func (s *Service) restoreSelection(ctx context.Context, sel *models.Selection) {
	remaining := sel.ExpiresAt.Sub(requestcontext.Now(ctx))
	if remaining < time.Second {
		return
	}
	if err := s.selections.Save(ctx, sel, remaining); err != nil {
		s.logger.WarnContext(ctx, "could not restore building selection",
			"selection_id", sel.ID.String(),
			"error", err,
		)
	}
}

func (s *Service) recordJoin(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordJoin(outcome)
	}
}
