package service

import (
	"context"
	"time"

	"unitgate/internal/directory"
	"unitgate/internal/invitation/models"
	jwttoken "unitgate/internal/jwt_token"
	"unitgate/internal/platform/tracer"
	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/platform/outbox"
	"unitgate/pkg/requestcontext"
)

// CreateLink mints a one-shot invite link for a unit. Only the building's
// managers may create links. A zero expiresAt uses the default lifetime.
func (s *Service) CreateLink(ctx context.Context, actor id.Actor, unit directory.UnitRef, role models.LinkRole, expiresAt time.Time) (*models.InviteLink, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if unit.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "building_id and unit_number are required")
	}
	if !actor.Manages(unit.BuildingID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only building managers can create invite links")
	}
	building, err := s.resolveBuilding(ctx, directory.BuildingRef{ID: unit.BuildingID})
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if expiresAt.IsZero() {
		expiresAt = now.Add(s.linkTTL)
	}
	link, err := models.NewInviteLink(id.NewInviteLinkID(), unit, role, actor.UserID, expiresAt, now)
	if err != nil {
		return nil, err
	}
	link.BuildingCode = building.Code
	link.Token, err = s.tokens.SignInvite(ctx, jwttoken.InvitePayload{
		LinkID:     link.ID,
		BuildingID: unit.BuildingID,
		UnitNumber: unit.UnitNumber,
		Role:       string(role),
		ExpiresAt:  expiresAt,
	})
	if err != nil {
		return nil, err
	}

	err = s.runWrite(ctx, "create invite link", func(ctx context.Context, stores Stores, _ *directory.Saga, events *[]pendingEvent) error {
		if err := stores.Links.Create(ctx, link); err != nil {
			return err
		}
		return emit(ctx, stores, events, outbox.AggregateInviteLink, models.EventLinkCreated, models.LinkEvent(link, actor, now), actor.UserID)
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

// ValidateLink reports whether a token names a usable link without using it.
func (s *Service) ValidateLink(ctx context.Context, token string) (*models.InviteLink, error) {
	link, err := s.lookupLink(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := link.CheckUsable(requestcontext.Now(ctx)); err != nil {
		s.recordRejected("invite_link", err)
		return nil, err
	}
	return link, nil
}

// UseLink consumes the link and activates the holder's occupancy of the unit
// immediately. A link is used at most once; the loser of a race gets
// AlreadyUsed and the directory write is undone.
func (s *Service) UseLink(ctx context.Context, actor id.Actor, token string) (out *models.InviteLink, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanInviteUse, tracer.String(tracer.AttrApplicant, tracer.HashPhone(actor.Phone)))
	defer func() { span.End(err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	link, err := s.lookupLink(ctx, token)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrBuildingID, link.Unit.BuildingID.String()))

	now := requestcontext.Now(ctx)
	if err := link.MarkUsed(actor, now); err != nil {
		s.recordRejected("invite_link", err)
		return nil, err
	}
	current, err := s.loadUnit(ctx, link.Unit)
	if err != nil {
		return nil, err
	}
	data := link.Occupancy(current, actor)

	err = s.runWrite(ctx, "use invite link", func(ctx context.Context, stores Stores, saga *directory.Saga, events *[]pendingEvent) error {
		res, err := stores.Directory.UpsertOccupant(ctx, link.Unit, data)
		if err != nil {
			return err
		}
		saga.Track(res)
		if err := stores.Links.MarkUsed(ctx, link); err != nil {
			return err
		}
		ev := models.LinkEvent(link, actor, now)
		if err := emit(ctx, stores, events, outbox.AggregateInviteLink, models.EventLinkUsed, ev, actor.UserID); err != nil {
			return err
		}
		return emit(ctx, stores, events, outbox.AggregateOccupancy, models.EventOccupancyAdded, ev, actor.UserID)
	})
	if err != nil {
		s.recordRejected("invite_link", err)
		return nil, err
	}
	return link, nil
}

// ListLinks returns a building's links for its managers.
func (s *Service) ListLinks(ctx context.Context, actor id.Actor, building id.BuildingID) ([]*models.InviteLink, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if building.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "building_id is required")
	}
	if !actor.Manages(building) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only building managers can list invite links")
	}
	out, err := s.links.ListByBuilding(ctx, building)
	if err != nil {
		return nil, translate(err, "list invite links")
	}
	return out, nil
}

// lookupLink verifies the token and loads the link it names. The stored
// token must match so a link is only reachable through the token it was
// issued with.
func (s *Service) lookupLink(ctx context.Context, token string) (*models.InviteLink, error) {
	if token == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "token is required")
	}
	claims, err := s.tokens.ParseInvite(token, requestcontext.Now(ctx))
	if err != nil {
		s.recordRejected("invite_link", err)
		return nil, err
	}
	linkID, err := id.ParseInviteLinkID(claims.ID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "invite link not found")
	}
	link, err := s.links.FindByID(ctx, linkID)
	if err != nil {
		return nil, notFound(err, "invite link not found")
	}
	if link.Token != token {
		return nil, dErrors.New(dErrors.CodeNotFound, "invite link not found")
	}
	return link, nil
}
