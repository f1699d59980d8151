// Package outbox implements the transactional outbox: workflow events are
// appended in the same transaction as the state change and a worker later
// publishes them to Kafka.
package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Aggregate types carried on every entry.
const (
	AggregateMembershipRequest = "membership_request"
	AggregateConflictReport    = "conflict_report"
	AggregateInviteLink        = "invite_link"
	AggregateFamilyInvitation  = "family_invitation"
	AggregateOccupancy         = "occupancy"
)

type Entry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte // JSON event body
	CreatedAt     time.Time
	ProcessedAt   *time.Time // nil until published
}

func (e *Entry) IsPending() bool {
	return e.ProcessedAt == nil
}

func NewEntry(aggregateType, aggregateID, eventType string, payload []byte, now time.Time) *Entry {
	return &Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}
}

// UnitHint is embedded in payloads of events that change a unit's occupancy.
// Directory cache invalidation reads only these fields.
type UnitHint struct {
	BuildingID string   `json:"building_id,omitempty"`
	UnitNumber string   `json:"unit_number,omitempty"`
	Phones     []string `json:"phones,omitempty"`
}
