package models

import (
	"strings"

	dErrors "unitgate/pkg/domain-errors"
)

type Status string

const (
	StatusPending         Status = "pending"
	StatusOwnerApproved   Status = "owner_approved"
	StatusManagerApproved Status = "manager_approved"
	StatusRejected        Status = "rejected"
	StatusWithdrawn       Status = "withdrawn"
)

// legacyApproved is the old wire value for a manager-approved request.
const legacyApproved = "approved"

// NormalizeStatus parses a status from any external source. The legacy
// "approved" alias maps to StatusManagerApproved.
func NormalizeStatus(raw string) (Status, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch Status(s) {
	case StatusPending, StatusOwnerApproved, StatusManagerApproved, StatusRejected, StatusWithdrawn:
		return Status(s), nil
	}
	if s == legacyApproved {
		return StatusManagerApproved, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown status: "+raw)
}

// IsActive reports whether the request still occupies the applicant's slot
// for its unit.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusOwnerApproved
}

func (s Status) IsTerminal() bool {
	return s == StatusManagerApproved || s == StatusRejected || s == StatusWithdrawn
}

func (s Status) IsApproved() bool {
	return s == StatusOwnerApproved || s == StatusManagerApproved
}

// transitions lists every legal edge. Anything else moves backward or out of
// a terminal state.
var transitions = map[Status][]Status{
	StatusPending:       {StatusOwnerApproved, StatusManagerApproved, StatusRejected, StatusWithdrawn},
	StatusOwnerApproved: {StatusManagerApproved, StatusRejected},
}

func (s Status) CanMoveTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Source records how a request entered the lifecycle.
type Source string

const (
	SourceDirect       Source = "direct"
	SourceSuggested    Source = "suggested"
	SourceManagerPhone Source = "manager_phone"
)

// FastPathPolicy decides what happens to a submission that matches the
// directory record unedited.
type FastPathPolicy string

const (
	FastPathAutoApprove FastPathPolicy = "auto_approve"
	FastPathSkipOwner   FastPathPolicy = "skip_owner"
	FastPathDisabled    FastPathPolicy = "disabled"
)

// RejectorRole is the capacity in which an actor rejects a request.
type RejectorRole string

const (
	RejectorManager   RejectorRole = "manager"
	RejectorOwner     RejectorRole = "owner"
	RejectorApplicant RejectorRole = "applicant"
)
