package models

import (
	"time"

	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/outbox"
)

const (
	EventLinkCreated    = "invite_link_created"
	EventLinkUsed       = "invite_link_used"
	EventFamilyInvited  = "family_invited"
	EventFamilyAccepted = "family_invitation_accepted"
	EventOccupancyAdded = "occupancy_activated"
)

type Event struct {
	AggregateID string `json:"aggregate_id"`
	outbox.UnitHint
	Role       string    `json:"role,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func LinkEvent(l *InviteLink, actor id.Actor, now time.Time) Event {
	e := Event{
		AggregateID: l.ID.String(),
		UnitHint: outbox.UnitHint{
			BuildingID: l.Unit.BuildingID.String(),
			UnitNumber: l.Unit.UnitNumber,
		},
		Role:       string(l.Role),
		OccurredAt: now,
	}
	if p := id.NormalizePhone(actor.Phone); p != "" && l.IsUsed {
		e.Phones = []string{p}
	}
	if !actor.UserID.IsNil() {
		e.ActorID = actor.UserID.String()
	}
	return e
}

func FamilyEvent(f *FamilyInvitation, actor id.Actor, now time.Time) Event {
	e := Event{
		AggregateID: f.ID.String(),
		UnitHint: outbox.UnitHint{
			BuildingID: f.Unit.BuildingID.String(),
			UnitNumber: f.Unit.UnitNumber,
			Phones:     []string{f.InvitedPhone},
		},
		Role:       "family",
		OccurredAt: now,
	}
	if !actor.UserID.IsNil() {
		e.ActorID = actor.UserID.String()
	}
	return e
}
