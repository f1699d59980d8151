// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "unitgate/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a ReportID where a RequestID is expected.
type (
	UserID             uuid.UUID
	BuildingID         uuid.UUID
	RequestID          uuid.UUID
	ReportID           uuid.UUID
	InviteLinkID       uuid.UUID
	FamilyInvitationID uuid.UUID
	SelectionID        uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, token claims, API inputs).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseBuildingID(s string) (BuildingID, error) {
	id, err := parseUUID(s, "building ID")
	return BuildingID(id), err
}

func ParseRequestID(s string) (RequestID, error) {
	id, err := parseUUID(s, "request ID")
	return RequestID(id), err
}

func ParseReportID(s string) (ReportID, error) {
	id, err := parseUUID(s, "report ID")
	return ReportID(id), err
}

func ParseInviteLinkID(s string) (InviteLinkID, error) {
	id, err := parseUUID(s, "invite link ID")
	return InviteLinkID(id), err
}

func ParseFamilyInvitationID(s string) (FamilyInvitationID, error) {
	id, err := parseUUID(s, "family invitation ID")
	return FamilyInvitationID(id), err
}

func ParseSelectionID(s string) (SelectionID, error) {
	id, err := parseUUID(s, "selection ID")
	return SelectionID(id), err
}

// String methods - for logging, SQL parameters and JSON.

func (id UserID) String() string             { return uuid.UUID(id).String() }
func (id BuildingID) String() string         { return uuid.UUID(id).String() }
func (id RequestID) String() string          { return uuid.UUID(id).String() }
func (id ReportID) String() string           { return uuid.UUID(id).String() }
func (id InviteLinkID) String() string       { return uuid.UUID(id).String() }
func (id FamilyInvitationID) String() string { return uuid.UUID(id).String() }
func (id SelectionID) String() string        { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id UserID) IsNil() bool             { return uuid.UUID(id) == uuid.Nil }
func (id BuildingID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id ReportID) IsNil() bool           { return uuid.UUID(id) == uuid.Nil }
func (id InviteLinkID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id FamilyInvitationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SelectionID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }

// New* helpers generate random identifiers.

func NewUserID() UserID                         { return UserID(uuid.New()) }
func NewBuildingID() BuildingID                 { return BuildingID(uuid.New()) }
func NewRequestID() RequestID                   { return RequestID(uuid.New()) }
func NewReportID() ReportID                     { return ReportID(uuid.New()) }
func NewInviteLinkID() InviteLinkID             { return InviteLinkID(uuid.New()) }
func NewFamilyInvitationID() FamilyInvitationID { return FamilyInvitationID(uuid.New()) }
func NewSelectionID() SelectionID               { return SelectionID(uuid.New()) }

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return id, nil
}

// Text marshalling keeps ids readable in JSON payloads (directory wire
// format, cached records, outbox events).

func (id UserID) MarshalText() ([]byte, error)             { return uuid.UUID(id).MarshalText() }
func (id BuildingID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id RequestID) MarshalText() ([]byte, error)          { return uuid.UUID(id).MarshalText() }
func (id ReportID) MarshalText() ([]byte, error)           { return uuid.UUID(id).MarshalText() }
func (id InviteLinkID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id FamilyInvitationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id SelectionID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error             { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *BuildingID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *RequestID) UnmarshalText(b []byte) error          { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ReportID) UnmarshalText(b []byte) error           { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *InviteLinkID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *FamilyInvitationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *SelectionID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
