package service

import (
	"context"

	"unitgate/internal/directory"
	"unitgate/internal/membership/matcher"
	"unitgate/internal/membership/models"
	"unitgate/internal/membership/queue"
	"unitgate/internal/membership/store"
	"unitgate/internal/platform/tracer"
	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/requestcontext"
)

// Suggest lets a manager pre-create a request on an applicant's behalf. It
// fails with a conflict when the applicant is already onboarded in the
// building.
func (s *Service) Suggest(ctx context.Context, manager id.Actor, applicantPhone string, claim models.Claim) (out *models.Request, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanSuggest, tracer.String(tracer.AttrApplicant, tracer.HashPhone(applicantPhone)))
	defer func() { span.End(err) }()

	if err := requireActor(manager); err != nil {
		return nil, err
	}
	applicant := id.NormalizePhone(applicantPhone)
	if applicant == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "applicant_phone is required")
	}
	claim.Normalize()
	if err := claim.Validate(); err != nil {
		return nil, err
	}
	b, err := s.resolveBuilding(ctx, &claim)
	if err != nil {
		return nil, err
	}
	if !manager.Manages(b.ID) {
		return nil, forbidden("only a manager of the building can suggest requests")
	}
	suppressed, err := s.matcher.Suppressed(ctx, applicant, directory.BuildingRef{ID: b.ID, Code: b.Code})
	if err != nil {
		return nil, translate(err, "check onboarding")
	}
	if suppressed {
		s.recordVerdict(matcher.Verdict{Suppressed: true})
		return nil, dErrors.New(dErrors.CodeConflict, "applicant is already a member of this building")
	}

	r, err := models.NewRequest(id.NewRequestID(), applicant, claim, models.SourceSuggested, requestcontext.Now(ctx))
	if err != nil {
		return nil, translate(err, "create suggested request")
	}
	r.SuggestedBy = manager.UserID
	if err := s.gate(ctx, r); err != nil {
		return nil, err
	}

	err = s.runWrite(ctx, "suggest membership request", func(ctx context.Context, stores Stores, _ *directory.Saga, events *[]pendingEvent) error {
		if err := ensureNoActive(ctx, stores.Requests, r); err != nil {
			return err
		}
		if err := stores.Requests.Create(ctx, r); err != nil {
			return err
		}
		return emit(ctx, s.audit, stores, events, models.EventSuggested, r, manager.UserID)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Actionable returns the one suggested request the actor may act on now.
func (s *Service) Actionable(ctx context.Context, actor id.Actor) (*models.Request, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	open, err := s.requests.ListSuggestedPending(ctx, actor.Phone)
	if err != nil {
		return nil, translate(err, "list suggested requests")
	}
	head := queue.Actionable(open)
	if head == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no suggested request is waiting")
	}
	return head, nil
}

// AcceptSuggested acknowledges the actionable suggestion as is. It is
// reconciled like a fresh submission, so an unchanged match takes the fast
// path.
func (s *Service) AcceptSuggested(ctx context.Context, requestID id.RequestID, actor id.Actor) (out *models.Request, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanResolveSuggestion,
		tracer.String(tracer.AttrRequestID, requestID.String()),
		tracer.String("suggestion.action", "accept"))
	defer func() { span.End(err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	err = s.runWrite(ctx, "accept suggestion", func(ctx context.Context, stores Stores, saga *directory.Saga, events *[]pendingEvent) error {
		r, err := s.loadTurn(ctx, stores.Requests, requestID, actor)
		if err != nil {
			return err
		}
		verdict, err := s.classify(ctx, r)
		if err != nil {
			return err
		}
		if err := r.Acknowledge(actor.UserID, requestcontext.Now(ctx)); err != nil {
			return err
		}
		r.HasBeenEdited = verdict.HasBeenEdited
		if r.ApplicantName == "" {
			r.ApplicantName = actor.FullName
		}
		approved, err := s.applyFastPath(ctx, r, verdict)
		if err != nil {
			return err
		}
		span.SetAttributes(tracer.Bool(tracer.AttrFastPath, approved))
		if approved {
			if err := writeOccupancy(ctx, stores, saga, r); err != nil {
				return err
			}
		}
		if err := stores.Requests.Update(ctx, r, models.StatusPending); err != nil {
			return err
		}
		out = r
		if err := emit(ctx, s.audit, stores, events, models.EventSuggestionAccepted, r, actor.UserID); err != nil {
			return err
		}
		if approved {
			return emit(ctx, s.audit, stores, events, models.EventAutoApproved, r, id.UserID{})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EditSuggested replaces the actionable suggestion's claim. Edited requests
// never take the fast path.
func (s *Service) EditSuggested(ctx context.Context, requestID id.RequestID, actor id.Actor, claim models.Claim) (out *models.Request, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanResolveSuggestion,
		tracer.String(tracer.AttrRequestID, requestID.String()),
		tracer.String("suggestion.action", "edit"))
	defer func() { span.End(err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	claim.Normalize()
	err = s.runWrite(ctx, "edit suggestion", func(ctx context.Context, stores Stores, _ *directory.Saga, events *[]pendingEvent) error {
		r, err := s.loadTurn(ctx, stores.Requests, requestID, actor)
		if err != nil {
			return err
		}
		if err := r.Edit(actor.UserID, claim, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if r.ApplicantName == "" {
			r.ApplicantName = actor.FullName
		}
		if err := s.gate(ctx, r); err != nil {
			return err
		}
		if err := stores.Requests.Update(ctx, r, models.StatusPending); err != nil {
			return err
		}
		out = r
		return emit(ctx, s.audit, stores, events, models.EventSuggestionEdited, r, actor.UserID)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RejectSuggested declines the actionable suggestion. The reason is optional.
func (s *Service) RejectSuggested(ctx context.Context, requestID id.RequestID, actor id.Actor, reason string) (out *models.Request, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanResolveSuggestion,
		tracer.String(tracer.AttrRequestID, requestID.String()),
		tracer.String("suggestion.action", "reject"))
	defer func() { span.End(err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	err = s.runWrite(ctx, "reject suggestion", func(ctx context.Context, stores Stores, _ *directory.Saga, events *[]pendingEvent) error {
		r, err := s.loadTurn(ctx, stores.Requests, requestID, actor)
		if err != nil {
			return err
		}
		if err := reject(ctx, stores, r, actor, reason); err != nil {
			return err
		}
		out = r
		return emit(ctx, s.audit, stores, events, models.EventRejected, r, actor.UserID)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// loadTurn loads a suggestion addressed to actor and checks it is the
// oldest one still open.
func (s *Service) loadTurn(ctx context.Context, requests store.RequestStore, requestID id.RequestID, actor id.Actor) (*models.Request, error) {
	r, err := requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, requestNotFound(err)
	}
	if !actor.HasPhone(r.ApplicantPhone) {
		return nil, forbidden("suggestion is addressed to another applicant")
	}
	if err := checkTurn(ctx, requests, r); err != nil {
		return nil, err
	}
	return r, nil
}

func checkTurn(ctx context.Context, requests store.RequestStore, r *models.Request) error {
	open, err := requests.ListSuggestedPending(ctx, r.ApplicantPhone)
	if err != nil {
		return err
	}
	return queue.CheckTurn(open, r)
}
