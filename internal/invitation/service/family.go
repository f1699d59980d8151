package service

import (
	"context"
	"slices"
	"time"

	"unitgate/internal/directory"
	"unitgate/internal/invitation/models"
	"unitgate/internal/platform/tracer"
	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/platform/outbox"
	"unitgate/pkg/requestcontext"
	"unitgate/pkg/secrets"
)

// InviteFamily issues a family invitation for the actor's unit. The
// plaintext code is returned once and never stored. A zero expiresAt uses the
// default lifetime.
func (s *Service) InviteFamily(ctx context.Context, actor id.Actor, unit directory.UnitRef, phone, name string, expiresAt time.Time) (*models.FamilyInvitation, string, error) {
	if err := requireActor(actor); err != nil {
		return nil, "", err
	}
	if unit.IsZero() {
		return nil, "", dErrors.New(dErrors.CodeValidation, "building_id and unit_number are required")
	}
	current, err := s.loadUnit(ctx, unit)
	if err != nil {
		return nil, "", err
	}
	if current == nil || !current.HasOccupant(actor.Phone) {
		return nil, "", dErrors.New(dErrors.CodeForbidden, "only the owner or tenant of record can invite family members")
	}
	if id.NormalizePhone(phone) == "" {
		return nil, "", dErrors.New(dErrors.CodeValidation, "invited_phone is required")
	}
	if slices.Contains(current.Phones(), id.NormalizePhone(phone)) {
		return nil, "", dErrors.New(dErrors.CodeConflict, "phone number is already linked to this unit")
	}

	code, err := secrets.Generate()
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "generate invitation code")
	}
	digest, err := s.hasher.Hash(code)
	if err != nil {
		return nil, "", err
	}
	now := requestcontext.Now(ctx)
	if expiresAt.IsZero() {
		expiresAt = now.Add(s.familyTTL)
	}
	inv, err := models.NewFamilyInvitation(id.NewFamilyInvitationID(), digest, unit, phone, name, actor.UserID, expiresAt, now)
	if err != nil {
		return nil, "", err
	}

	err = s.runWrite(ctx, "invite family member", func(ctx context.Context, stores Stores, _ *directory.Saga, events *[]pendingEvent) error {
		if err := stores.Family.Create(ctx, inv); err != nil {
			return err
		}
		return emit(ctx, stores, events, outbox.AggregateFamilyInvitation, models.EventFamilyInvited, models.FamilyEvent(inv, actor, now), actor.UserID)
	})
	if err != nil {
		return nil, "", err
	}
	return inv, code, nil
}

// AcceptFamily redeems a family code for the invited phone and links the
// actor to the unit as a family member.
func (s *Service) AcceptFamily(ctx context.Context, actor id.Actor, code string) (out *models.FamilyInvitation, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanFamilyAccept, tracer.String(tracer.AttrApplicant, tracer.HashPhone(actor.Phone)))
	defer func() { span.End(err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	digest, err := s.hasher.Hash(code)
	if err != nil {
		return nil, err
	}
	inv, err := s.family.FindByCodeHash(ctx, digest)
	if err != nil {
		return nil, notFound(err, "family invitation not found")
	}
	span.SetAttributes(tracer.String(tracer.AttrBuildingID, inv.Unit.BuildingID.String()))

	now := requestcontext.Now(ctx)
	if err := inv.Accept(actor, now); err != nil {
		s.recordRejected("family_invitation", err)
		return nil, err
	}
	member := inv.Member(actor)

	err = s.runWrite(ctx, "accept family invitation", func(ctx context.Context, stores Stores, saga *directory.Saga, events *[]pendingEvent) error {
		res, err := stores.Directory.AddFamilyMember(ctx, inv.Unit, member)
		if err != nil {
			return err
		}
		saga.Track(res)
		if err := stores.Family.Update(ctx, inv, models.FamilyPending); err != nil {
			return err
		}
		return emit(ctx, stores, events, outbox.AggregateFamilyInvitation, models.EventFamilyAccepted, models.FamilyEvent(inv, actor, now), actor.UserID)
	})
	if err != nil {
		// A concurrent accept moved the invitation on first.
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			err = &dErrors.Error{Code: dErrors.CodeAlreadyUsed, Message: "family invitation has already been accepted", Err: err}
		}
		s.recordRejected("family_invitation", err)
		return nil, err
	}
	return inv, nil
}

// ListFamily returns a unit's invitations to its occupants and the building's
// managers.
func (s *Service) ListFamily(ctx context.Context, actor id.Actor, unit directory.UnitRef) ([]*models.FamilyInvitation, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if unit.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "building_id and unit_number are required")
	}
	if !actor.Manages(unit.BuildingID) {
		current, err := s.loadUnit(ctx, unit)
		if err != nil {
			return nil, err
		}
		if current == nil || !current.HasOccupant(actor.Phone) {
			return nil, dErrors.New(dErrors.CodeForbidden, "only occupants and building managers can list family invitations")
		}
	}
	out, err := s.family.ListByUnit(ctx, unit)
	if err != nil {
		return nil, translate(err, "list family invitations")
	}
	return out, nil
}
