package handler

import (
	"strings"

	"unitgate/internal/membership/models"
	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/validation"
)

// ClaimRequest is the wire form of a claim. Role-specific requirements are
// checked by the service after the role is parsed.
type ClaimRequest struct {
	BuildingID        string `json:"building_id" validate:"omitempty,uuid"`
	BuildingCode      string `json:"building_code" validate:"max=64"`
	UnitNumber        string `json:"unit_number" validate:"required,notblank,max=32"`
	Floor             string `json:"floor" validate:"max=16"`
	Area              string `json:"area" validate:"max=16"`
	ResidentCount     int    `json:"resident_count" validate:"gte=0,max=50"`
	Role              string `json:"role" validate:"required"`
	OwnerType         string `json:"owner_type"`
	FullName          string `json:"full_name" validate:"max=200"`
	PhoneNumber       string `json:"phone_number" validate:"omitempty,phone"`
	OwnerFullName     string `json:"owner_full_name" validate:"max=200"`
	OwnerPhoneNumber  string `json:"owner_phone_number" validate:"omitempty,phone"`
	TenantFullName    string `json:"tenant_full_name" validate:"max=200"`
	TenantPhoneNumber string `json:"tenant_phone_number" validate:"omitempty,phone"`
	HasParking        bool   `json:"has_parking"`
	ParkingCount      int    `json:"parking_count" validate:"gte=0"`
}

func (c *ClaimRequest) Sanitize() {
	validation.TrimStrings(
		&c.BuildingID, &c.BuildingCode, &c.UnitNumber, &c.Floor, &c.Area,
		&c.Role, &c.OwnerType, &c.FullName, &c.PhoneNumber,
		&c.OwnerFullName, &c.OwnerPhoneNumber, &c.TenantFullName, &c.TenantPhoneNumber,
	)
}

func (c *ClaimRequest) Normalize() {
	c.Role = strings.ToLower(c.Role)
	c.OwnerType = strings.ToLower(c.OwnerType)
}

func (c *ClaimRequest) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if c.BuildingID == "" && c.BuildingCode == "" {
		return dErrors.New(dErrors.CodeValidation, "building_id or building_code is required")
	}
	_, err := models.ParseRoleProfile(c.Role, c.OwnerType)
	return err
}

// ToClaim converts a validated request.
func (c *ClaimRequest) ToClaim() (models.Claim, error) {
	role, err := models.ParseRoleProfile(c.Role, c.OwnerType)
	if err != nil {
		return models.Claim{}, err
	}
	claim := models.Claim{
		BuildingCode:      c.BuildingCode,
		UnitNumber:        c.UnitNumber,
		Floor:             c.Floor,
		Area:              c.Area,
		ResidentCount:     c.ResidentCount,
		Role:              role,
		FullName:          c.FullName,
		PhoneNumber:       c.PhoneNumber,
		OwnerFullName:     c.OwnerFullName,
		OwnerPhoneNumber:  c.OwnerPhoneNumber,
		TenantFullName:    c.TenantFullName,
		TenantPhoneNumber: c.TenantPhoneNumber,
		HasParking:        c.HasParking,
		ParkingCount:      c.ParkingCount,
	}
	if c.BuildingID != "" {
		building, err := id.ParseBuildingID(c.BuildingID)
		if err != nil {
			return models.Claim{}, err
		}
		claim.BuildingID = building
	}
	return claim, nil
}

type SuggestRequest struct {
	ApplicantPhone string `json:"applicant_phone" validate:"required,phone"`
	ClaimRequest
}

func (s *SuggestRequest) Sanitize() {
	s.ApplicantPhone = strings.TrimSpace(s.ApplicantPhone)
	s.ClaimRequest.Sanitize()
}

func (s *SuggestRequest) Validate() error {
	if err := validation.Validate(s); err != nil {
		return err
	}
	return s.ClaimRequest.Validate()
}

type RejectRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

func (r *RejectRequest) Sanitize() {
	r.RejectionReason = strings.TrimSpace(r.RejectionReason)
}

func (r *RejectRequest) Validate() error {
	return validation.CheckStringLength("rejection_reason", r.RejectionReason, validation.MaxReasonLength)
}
