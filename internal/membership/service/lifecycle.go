package service

import (
	"context"

	"unitgate/internal/directory"
	"unitgate/internal/membership/models"
	"unitgate/internal/membership/store"
	"unitgate/internal/platform/tracer"
	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/platform/sentinel"
	"unitgate/pkg/requestcontext"
)

// Submit creates a request for the actor's claim. An unchanged match against
// the directory takes the fast path configured by policy.
func (s *Service) Submit(ctx context.Context, actor id.Actor, claim models.Claim) (out *models.Request, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanSubmit, tracer.String(tracer.AttrApplicant, tracer.HashPhone(actor.Phone)))
	defer func() { span.End(err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	claim.Normalize()
	if err := claim.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.resolveBuilding(ctx, &claim); err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrBuildingID, claim.BuildingID.String()))

	r, err := models.NewRequest(id.NewRequestID(), actor.Phone, claim, models.SourceDirect, requestcontext.Now(ctx))
	if err != nil {
		return nil, translate(err, "create membership request")
	}
	r.ApplicantID = actor.UserID
	r.ApplicantName = actor.FullName
	if err := s.gate(ctx, r); err != nil {
		return nil, err
	}
	verdict, err := s.classify(ctx, r)
	if err != nil {
		return nil, err
	}
	r.HasBeenEdited = verdict.HasBeenEdited
	span.SetAttributes(tracer.String(tracer.AttrVerdict, verdictLabel(verdict)))

	approved, err := s.applyFastPath(ctx, r, verdict)
	if err != nil {
		return nil, translate(err, "apply fast path")
	}
	span.SetAttributes(tracer.Bool(tracer.AttrFastPath, approved))

	err = s.runWrite(ctx, "submit membership request", func(ctx context.Context, stores Stores, saga *directory.Saga, events *[]pendingEvent) error {
		if err := ensureNoActive(ctx, stores.Requests, r); err != nil {
			return err
		}
		if approved {
			if err := writeOccupancy(ctx, stores, saga, r); err != nil {
				return err
			}
		}
		if err := stores.Requests.Create(ctx, r); err != nil {
			return err
		}
		if err := emit(ctx, s.audit, stores, events, models.EventSubmitted, r, actor.UserID); err != nil {
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
	return r, nil
}

// OwnerApprove passes the owner gate. Only the unit's current owner of record
// may call it, and only once.
func (s *Service) OwnerApprove(ctx context.Context, requestID id.RequestID, actor id.Actor) (out *models.Request, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanOwnerApprove, tracer.String(tracer.AttrRequestID, requestID.String()))
	defer func() { span.End(err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	err = s.runWrite(ctx, "approve by owner", func(ctx context.Context, stores Stores, _ *directory.Saga, events *[]pendingEvent) error {
		r, err := stores.Requests.FindByID(ctx, requestID)
		if err != nil {
			return requestNotFound(err)
		}
		owner, err := s.currentOwner(ctx, r)
		if err != nil {
			return err
		}
		if !actor.HasPhone(owner) {
			return forbidden("only the owner of record can approve this request")
		}
		if actor.HasPhone(r.ApplicantPhone) {
			return forbidden("applicants cannot pass their own owner gate")
		}
		if r.IsSuggested {
			return dErrors.New(dErrors.CodeConflict, "request is waiting for the applicant")
		}
		expected := r.Status
		if err := r.ApproveByOwner(actor.UserID, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := stores.Requests.Update(ctx, r, expected); err != nil {
			return err
		}
		out = r
		return emit(ctx, s.audit, stores, events, models.EventOwnerApproved, r, actor.UserID)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ManagerApprove is the final approval. The status change and the directory
// upsert commit together: a failed directory write leaves the request as it
// was, and a failed status write undoes the directory write.
func (s *Service) ManagerApprove(ctx context.Context, requestID id.RequestID, actor id.Actor) (out *models.Request, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanManagerApprove, tracer.String(tracer.AttrRequestID, requestID.String()))
	defer func() { span.End(err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	err = s.runWrite(ctx, "approve by manager", func(ctx context.Context, stores Stores, saga *directory.Saga, events *[]pendingEvent) error {
		r, err := stores.Requests.FindByID(ctx, requestID)
		if err != nil {
			return requestNotFound(err)
		}
		if !actor.Manages(r.BuildingID) {
			return forbidden("only a manager of the building can approve this request")
		}
		if r.IsSuggested {
			return dErrors.New(dErrors.CodeConflict, "request is waiting for the applicant")
		}
		expected := r.Status
		if err := r.ApproveByManager(actor.UserID, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := writeOccupancy(ctx, stores, saga, r); err != nil {
			return err
		}
		span.SetAttributes(tracer.Bool(tracer.AttrCompensated, saga.Len() > 0))
		if err := stores.Requests.Update(ctx, r, expected); err != nil {
			return err
		}
		out = r
		return emit(ctx, s.audit, stores, events, models.EventManagerApproved, r, actor.UserID)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reject closes a Pending or OwnerApproved request. Managers and owners must
// give a reason; an applicant may only reject their own open suggestion, in
// queue order, with an optional reason.
func (s *Service) Reject(ctx context.Context, requestID id.RequestID, actor id.Actor, reason string) (out *models.Request, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanReject, tracer.String(tracer.AttrRequestID, requestID.String()))
	defer func() { span.End(err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	err = s.runWrite(ctx, "reject membership request", func(ctx context.Context, stores Stores, _ *directory.Saga, events *[]pendingEvent) error {
		r, err := stores.Requests.FindByID(ctx, requestID)
		if err != nil {
			return requestNotFound(err)
		}
		role, err := s.rejectorRole(ctx, actor, r)
		if err != nil {
			return err
		}
		switch role {
		case models.RejectorApplicant:
			if !r.IsSuggested {
				return forbidden("applicants withdraw their own requests")
			}
			if err := checkTurn(ctx, stores.Requests, r); err != nil {
				return err
			}
		default:
			if reason == "" {
				return dErrors.New(dErrors.CodeValidation, "rejection_reason is required")
			}
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

// Withdraw lets the applicant cancel their own Pending request.
func (s *Service) Withdraw(ctx context.Context, requestID id.RequestID, actor id.Actor) (out *models.Request, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanWithdraw, tracer.String(tracer.AttrRequestID, requestID.String()))
	defer func() { span.End(err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	err = s.runWrite(ctx, "withdraw membership request", func(ctx context.Context, stores Stores, _ *directory.Saga, events *[]pendingEvent) error {
		r, err := stores.Requests.FindByID(ctx, requestID)
		if err != nil {
			return requestNotFound(err)
		}
		if !actor.HasPhone(r.ApplicantPhone) {
			return forbidden("only the applicant can withdraw this request")
		}
		if r.IsSuggested {
			return dErrors.New(dErrors.CodeConflict, "open suggestions are answered with accept, edit or reject")
		}
		expected := r.Status
		if err := r.Withdraw(requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := stores.Requests.Update(ctx, r, expected); err != nil {
			return err
		}
		out = r
		return emit(ctx, s.audit, stores, events, models.EventWithdrawn, r, actor.UserID)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func reject(ctx context.Context, stores Stores, r *models.Request, actor id.Actor, reason string) error {
	expected := r.Status
	if err := r.Reject(actor.UserID, reason, requestcontext.Now(ctx)); err != nil {
		return err
	}
	return stores.Requests.Update(ctx, r, expected)
}

// rejectorRole picks the strongest capacity the actor holds on r.
func (s *Service) rejectorRole(ctx context.Context, actor id.Actor, r *models.Request) (models.RejectorRole, error) {
	if actor.Manages(r.BuildingID) {
		return models.RejectorManager, nil
	}
	if r.RequiresOwnerApproval {
		owner, err := s.currentOwner(ctx, r)
		if err != nil {
			return "", err
		}
		if actor.HasPhone(owner) {
			return models.RejectorOwner, nil
		}
	}
	if actor.HasPhone(r.ApplicantPhone) {
		return models.RejectorApplicant, nil
	}
	return "", forbidden("actor cannot reject this request")
}

// currentOwner re-reads the owner of record, falling back to the one
// resolved at submission.
func (s *Service) currentOwner(ctx context.Context, r *models.Request) (string, error) {
	owner, err := s.ownerOfRecord(ctx, r.Claim)
	if err != nil {
		return "", err
	}
	if owner == "" {
		owner = r.OwnerOfRecordPhone
	}
	return owner, nil
}

// ensureNoActive rejects a second active request of the applicant for the
// same unit. The store's uniqueness rule backs this up under races.
func ensureNoActive(ctx context.Context, requests store.RequestStore, r *models.Request) error {
	mine, err := requests.ListByApplicant(ctx, r.ApplicantPhone)
	if err != nil {
		return err
	}
	for _, other := range mine {
		if other.ID != r.ID && other.IsActive() && other.BuildingID == r.BuildingID && other.UnitNumber == r.UnitNumber {
			return sentinel.ErrAlreadyUsed
		}
	}
	return nil
}
