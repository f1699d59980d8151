package handler

import (
	"strings"
	"time"

	membershiphandler "unitgate/internal/membership/handler"
	membershipmodels "unitgate/internal/membership/models"
	id "unitgate/pkg/domain"
	"unitgate/pkg/validation"
)

type CreateLinkRequest struct {
	BuildingID string     `json:"building_id" validate:"required,uuid"`
	UnitNumber string     `json:"unit_number" validate:"required,notblank,max=32"`
	Role       string     `json:"role" validate:"required,oneof=owner resident tenant"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func (r *CreateLinkRequest) Sanitize() {
	validation.TrimStrings(&r.BuildingID, &r.UnitNumber, &r.Role)
}

func (r *CreateLinkRequest) Normalize() {
	r.Role = strings.ToLower(r.Role)
}

func (r *CreateLinkRequest) Validate() error {
	return validation.Validate(r)
}

func (r *CreateLinkRequest) expiresAt() time.Time {
	if r.ExpiresAt == nil {
		return time.Time{}
	}
	return *r.ExpiresAt
}

type InviteFamilyRequest struct {
	BuildingID   string     `json:"building_id" validate:"required,uuid"`
	UnitNumber   string     `json:"unit_number" validate:"required,notblank,max=32"`
	InvitedPhone string     `json:"invited_phone" validate:"required,phone"`
	InvitedName  string     `json:"invited_name" validate:"max=200"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

func (r *InviteFamilyRequest) Sanitize() {
	validation.TrimStrings(&r.BuildingID, &r.UnitNumber, &r.InvitedPhone, &r.InvitedName)
}

func (r *InviteFamilyRequest) Validate() error {
	return validation.Validate(r)
}

func (r *InviteFamilyRequest) expiresAt() time.Time {
	if r.ExpiresAt == nil {
		return time.Time{}
	}
	return *r.ExpiresAt
}

type AcceptFamilyRequest struct {
	Code string `json:"code" validate:"required,notblank,max=64"`
}

func (r *AcceptFamilyRequest) Sanitize() {
	validation.TrimStrings(&r.Code)
}

func (r *AcceptFamilyRequest) Normalize() {
	r.Code = strings.ToUpper(r.Code)
}

func (r *AcceptFamilyRequest) Validate() error {
	return validation.Validate(r)
}

type ManagerPhoneRequest struct {
	ManagerPhone string `json:"manager_phone" validate:"required,phone"`
}

func (r *ManagerPhoneRequest) Sanitize() {
	validation.TrimStrings(&r.ManagerPhone)
}

func (r *ManagerPhoneRequest) Validate() error {
	return validation.Validate(r)
}

// CompleteSelectionRequest picks a building from an open selection and
// carries the claim to submit against it.
type CompleteSelectionRequest struct {
	BuildingID string `json:"building_id" validate:"required,uuid"`
	membershiphandler.ClaimRequest
}

func (r *CompleteSelectionRequest) Sanitize() {
	validation.TrimStrings(&r.BuildingID)
	r.ClaimRequest.Sanitize()
	r.ClaimRequest.BuildingID = r.BuildingID
}

func (r *CompleteSelectionRequest) Normalize() {
	r.ClaimRequest.Normalize()
}

func (r *CompleteSelectionRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	return r.ClaimRequest.Validate()
}

func (r *CompleteSelectionRequest) toClaim() (id.BuildingID, membershipmodels.Claim, error) {
	building, err := id.ParseBuildingID(r.BuildingID)
	if err != nil {
		return id.BuildingID{}, membershipmodels.Claim{}, err
	}
	claim, err := r.ClaimRequest.ToClaim()
	if err != nil {
		return id.BuildingID{}, membershipmodels.Claim{}, err
	}
	return building, claim, nil
}
