// Package models holds conflict reports: a dispute about who occupies a unit,
// closed exactly once by a manager or the owner of record.
package models

import (
	"strings"
	"time"

	"unitgate/internal/directory"
	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
	StatusRejected Status = "rejected"
)

func NormalizeStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusResolved, StatusRejected:
		return s, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown status: "+raw)
}

// Action is how a report is closed.
type Action string

const (
	ActionResolve Action = "resolve"
	ActionReject  Action = "reject"
)

func ParseAction(raw string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(raw))); a {
	case ActionResolve, ActionReject:
		return a, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "action must be resolve or reject")
}

// Snapshot is the occupancy of the unit when the report was filed.
type Snapshot struct {
	OwnerType     string            `json:"owner_type"`
	Owner         directory.Person  `json:"owner"`
	Tenant        *directory.Person `json:"tenant,omitempty"`
	ResidentCount int               `json:"resident_count"`
}

func SnapshotOf(r *directory.OccupantRecord) Snapshot {
	s := Snapshot{
		OwnerType:     r.OwnerType,
		Owner:         r.Owner,
		ResidentCount: r.ResidentCount,
	}
	if r.Tenant != nil {
		t := *r.Tenant
		s.Tenant = &t
	}
	return s
}

type Report struct {
	ID            id.ReportID
	Unit          directory.UnitRef
	BuildingCode  string
	ReportedBy    id.UserID
	ReporterPhone string
	Snapshot      Snapshot
	Reason        string
	Status        Status

	ResolutionNote string
	ResolvedBy     id.UserID
	ResolvedAt     *time.Time
	// Correction is the directory change requested on resolve. Applied is
	// set once it has been written.
	Correction *Correction
	Applied    bool

	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int
}

func NewReport(reportID id.ReportID, unit directory.UnitRef, reporter id.Actor, snapshot Snapshot, reason string, now time.Time) (*Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	if unit.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "building_id and unit_number are required")
	}
	return &Report{
		ID:            reportID,
		Unit:          unit,
		ReportedBy:    reporter.UserID,
		ReporterPhone: id.NormalizePhone(reporter.Phone),
		Snapshot:      snapshot,
		Reason:        reason,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (r *Report) Clone() *Report {
	cp := *r
	if r.ResolvedAt != nil {
		t := *r.ResolvedAt
		cp.ResolvedAt = &t
	}
	if r.Snapshot.Tenant != nil {
		t := *r.Snapshot.Tenant
		cp.Snapshot.Tenant = &t
	}
	if r.Correction != nil {
		c := r.Correction.clone()
		cp.Correction = &c
	}
	return &cp
}

// Close moves a pending report to its terminal status.
func (r *Report) Close(action Action, by id.UserID, note string, now time.Time) error {
	if r.Status != StatusPending {
		return dErrors.New(dErrors.CodeInvariantViolation, "conflict report is already closed")
	}
	switch action {
	case ActionResolve:
		r.Status = StatusResolved
	case ActionReject:
		r.Status = StatusRejected
	default:
		return dErrors.New(dErrors.CodeValidation, "action must be resolve or reject")
	}
	r.ResolutionNote = strings.TrimSpace(note)
	r.ResolvedBy = by
	r.ResolvedAt = &now
	r.UpdatedAt = now
	return nil
}
