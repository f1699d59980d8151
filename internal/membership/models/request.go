package models

import (
	"time"

	"unitgate/internal/directory"
	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
)

// Request is one applicant's claim on one unit and its approval state.
// It is never deleted; Rejected and Withdrawn are kept for audit.
type Request struct {
	ID             id.RequestID
	ApplicantPhone string
	ApplicantID    id.UserID // nil for suggestions made before the applicant signed up
	ApplicantName  string
	Claim

	Status                Status
	Source                Source
	IsSuggested           bool // manager-created and not yet acknowledged
	HasBeenEdited         bool
	RequiresOwnerApproval bool
	AutoApproved          bool
	// OwnerOfRecordPhone is the owner phone resolved at submission: the
	// directory owner of the unit, or the claimed owner for unknown units.
	OwnerOfRecordPhone string
	SuggestedBy        id.UserID

	CreatedAt         time.Time
	UpdatedAt         time.Time
	OwnerApprovedAt   *time.Time
	OwnerApprovedBy   id.UserID
	ManagerApprovedAt *time.Time
	ApprovedBy        id.UserID
	RejectedAt        *time.Time
	RejectionReason   string
	RejectedBy        id.UserID
	WithdrawnAt       *time.Time

	// Version counts persisted writes. Stores compare it on update.
	Version int
}

// NewRequest builds a Pending request from a normalized, validated claim.
func NewRequest(requestID id.RequestID, applicantPhone string, claim Claim, source Source, now time.Time) (*Request, error) {
	applicantPhone = id.NormalizePhone(applicantPhone)
	if applicantPhone == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "applicant phone is required")
	}
	if claim.BuildingID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "building must be resolved before creating a request")
	}
	if err := claim.Validate(); err != nil {
		return nil, err
	}
	return &Request{
		ID:             requestID,
		ApplicantPhone: applicantPhone,
		Claim:          claim,
		Status:         StatusPending,
		Source:         source,
		IsSuggested:    source == SourceSuggested,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Clone returns a deep copy.
func (r *Request) Clone() *Request {
	cp := *r
	cp.OwnerApprovedAt = clonePtr(r.OwnerApprovedAt)
	cp.ManagerApprovedAt = clonePtr(r.ManagerApprovedAt)
	cp.RejectedAt = clonePtr(r.RejectedAt)
	cp.WithdrawnAt = clonePtr(r.WithdrawnAt)
	return &cp
}

func (r *Request) IsActive() bool {
	return r.Status.IsActive()
}

// WasSuggested reports whether a manager created the request, acknowledged or not.
func (r *Request) WasSuggested() bool {
	return r.Source == SourceSuggested
}

func (r *Request) move(next Status, now time.Time) error {
	if !r.Status.CanMoveTo(next) {
		return dErrors.New(dErrors.CodeInvariantViolation, "cannot move request from "+string(r.Status)+" to "+string(next))
	}
	r.Status = next
	r.UpdatedAt = now
	return nil
}

// ApproveByOwner moves Pending to OwnerApproved.
func (r *Request) ApproveByOwner(by id.UserID, now time.Time) error {
	if r.Status != StatusPending {
		return dErrors.New(dErrors.CodeInvariantViolation, "request is not awaiting owner approval")
	}
	if err := r.move(StatusOwnerApproved, now); err != nil {
		return err
	}
	r.OwnerApprovedAt = &now
	r.OwnerApprovedBy = by
	return nil
}

// CanManagerApprove reports whether the owner gate is satisfied.
func (r *Request) CanManagerApprove() bool {
	return r.Status == StatusOwnerApproved || (r.Status == StatusPending && !r.RequiresOwnerApproval)
}

// ApproveByManager is the terminal approval.
func (r *Request) ApproveByManager(by id.UserID, now time.Time) error {
	if !r.CanManagerApprove() {
		if r.Status == StatusPending {
			return dErrors.New(dErrors.CodeInvariantViolation, "request still needs owner approval")
		}
		return dErrors.New(dErrors.CodeInvariantViolation, "request is not awaiting manager approval")
	}
	if err := r.move(StatusManagerApproved, now); err != nil {
		return err
	}
	r.ManagerApprovedAt = &now
	r.ApprovedBy = by
	r.IsSuggested = false
	return nil
}

// AutoApprove is the fast path: Pending straight to ManagerApproved with no approver.
func (r *Request) AutoApprove(now time.Time) error {
	if r.Status != StatusPending {
		return dErrors.New(dErrors.CodeInvariantViolation, "only pending requests can be auto-approved")
	}
	if err := r.move(StatusManagerApproved, now); err != nil {
		return err
	}
	r.ManagerApprovedAt = &now
	r.AutoApproved = true
	r.IsSuggested = false
	return nil
}

func (r *Request) Reject(by id.UserID, reason string, now time.Time) error {
	if !r.Status.IsActive() {
		return dErrors.New(dErrors.CodeInvariantViolation, "request can no longer be rejected")
	}
	if err := r.move(StatusRejected, now); err != nil {
		return err
	}
	r.RejectedAt = &now
	r.RejectedBy = by
	r.RejectionReason = reason
	r.IsSuggested = false
	return nil
}

func (r *Request) Withdraw(now time.Time) error {
	if r.Status != StatusPending {
		return dErrors.New(dErrors.CodeInvariantViolation, "only pending requests can be withdrawn")
	}
	if err := r.move(StatusWithdrawn, now); err != nil {
		return err
	}
	r.WithdrawnAt = &now
	r.IsSuggested = false
	return nil
}

// Acknowledge marks a suggestion as taken up by the applicant without edits.
func (r *Request) Acknowledge(applicant id.UserID, now time.Time) error {
	if !r.IsSuggested || r.Status != StatusPending {
		return dErrors.New(dErrors.CodeInvariantViolation, "request is not an open suggestion")
	}
	r.IsSuggested = false
	r.ApplicantID = applicant
	r.UpdatedAt = now
	return nil
}

// Occupancy is the directory record data this request establishes.
func (r *Request) Occupancy() directory.OccupantData {
	name := r.ApplicantName
	if name == "" {
		name = r.FullName
	}
	return r.OccupantData(r.ApplicantPhone, name)
}

// Edit replaces a suggestion's claim with the applicant's version. The
// request then always takes the full approval path.
func (r *Request) Edit(applicant id.UserID, claim Claim, now time.Time) error {
	if !r.IsSuggested || r.Status != StatusPending {
		return dErrors.New(dErrors.CodeInvariantViolation, "request is not an open suggestion")
	}
	claim.BuildingID = r.BuildingID
	claim.BuildingCode = r.BuildingCode
	if err := claim.Validate(); err != nil {
		return err
	}
	if err := r.Acknowledge(applicant, now); err != nil {
		return err
	}
	r.Claim = claim
	r.HasBeenEdited = true
	return nil
}

func clonePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
