package models

import (
	"time"

	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/outbox"
)

// Lifecycle event types, used as audit event names and outbox event types.
const (
	EventSubmitted          = "membership_submitted"
	EventOwnerApproved      = "membership_owner_approved"
	EventManagerApproved    = "membership_manager_approved"
	EventAutoApproved       = "membership_auto_approved"
	EventRejected           = "membership_rejected"
	EventWithdrawn          = "membership_withdrawn"
	EventSuggested          = "membership_suggested"
	EventSuggestionAccepted = "membership_suggestion_accepted"
	EventSuggestionEdited   = "membership_suggestion_edited"
)

// Event is the outbox payload for a request transition.
type Event struct {
	RequestID string `json:"request_id"`
	outbox.UnitHint
	Status     Status    `json:"status"`
	Role       string    `json:"role"`
	ActorID    string    `json:"actor_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEvent(r *Request, actor id.UserID, now time.Time) Event {
	e := Event{
		RequestID: r.ID.String(),
		UnitHint: outbox.UnitHint{
			BuildingID: r.BuildingID.String(),
			UnitNumber: r.UnitNumber,
			Phones:     r.phones(),
		},
		Status:     r.Status,
		Role:       r.Role.String(),
		Reason:     r.RejectionReason,
		OccurredAt: now,
	}
	if !actor.IsNil() {
		e.ActorID = actor.String()
	}
	return e
}

func (r *Request) phones() []string {
	var out []string
	for _, p := range []string{r.ApplicantPhone, r.PhoneNumber, r.OwnerPhoneNumber, r.TenantPhoneNumber, r.OwnerOfRecordPhone} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
