package models

import (
	"time"

	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/outbox"
)

const (
	EventReported  = "conflict_reported"
	EventResolved  = "conflict_resolved"
	EventRejected  = "conflict_rejected"
	EventCorrected = "conflict_directory_corrected"
)

type Event struct {
	ReportID string `json:"report_id"`
	outbox.UnitHint
	Status     Status    `json:"status"`
	ActorID    string    `json:"actor_id,omitempty"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEvent(r *Report, actor id.UserID, now time.Time) Event {
	phones := []string{}
	for _, p := range []string{r.Snapshot.Owner.Phone, r.ReporterPhone} {
		if p != "" {
			phones = append(phones, p)
		}
	}
	if r.Snapshot.Tenant != nil && r.Snapshot.Tenant.Phone != "" {
		phones = append(phones, r.Snapshot.Tenant.Phone)
	}
	e := Event{
		ReportID: r.ID.String(),
		UnitHint: outbox.UnitHint{
			BuildingID: r.Unit.BuildingID.String(),
			UnitNumber: r.Unit.UnitNumber,
			Phones:     phones,
		},
		Status:     r.Status,
		Note:       r.ResolutionNote,
		OccurredAt: now,
	}
	if !actor.IsNil() {
		e.ActorID = actor.String()
	}
	return e
}
