package handler

import (
	"strings"

	"unitgate/internal/conflict/models"
	"unitgate/pkg/validation"
)

type ReportRequest struct {
	BuildingID string `json:"building_id" validate:"required,uuid"`
	UnitNumber string `json:"unit_number" validate:"required,notblank,max=32"`
	Reason     string `json:"reason" validate:"required,notblank"`
}

func (r *ReportRequest) Sanitize() {
	validation.TrimStrings(&r.BuildingID, &r.UnitNumber, &r.Reason)
}

func (r *ReportRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	return validation.CheckStringLength("reason", r.Reason, validation.MaxReasonLength)
}

// ResolveRequest closes a report. Correction is only honoured with
// action=resolve.
type ResolveRequest struct {
	Action     string             `json:"action" validate:"required"`
	Note       string             `json:"note"`
	Correction *models.Correction `json:"correction,omitempty"`
}

func (r *ResolveRequest) Sanitize() {
	validation.TrimStrings(&r.Action, &r.Note)
}

func (r *ResolveRequest) Normalize() {
	r.Action = strings.ToLower(r.Action)
}

func (r *ResolveRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	if _, err := models.ParseAction(r.Action); err != nil {
		return err
	}
	return validation.CheckStringLength("note", r.Note, validation.MaxReasonLength)
}
