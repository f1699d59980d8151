package handler

import (
	"time"

	"unitgate/internal/membership/models"
)

type ClaimResponse struct {
	BuildingID        string `json:"building_id"`
	BuildingCode      string `json:"building_code"`
	UnitNumber        string `json:"unit_number"`
	Floor             string `json:"floor"`
	Area              string `json:"area"`
	ResidentCount     int    `json:"resident_count"`
	Role              string `json:"role"`
	OwnerType         string `json:"owner_type,omitempty"`
	FullName          string `json:"full_name"`
	PhoneNumber       string `json:"phone_number"`
	OwnerFullName     string `json:"owner_full_name,omitempty"`
	OwnerPhoneNumber  string `json:"owner_phone_number,omitempty"`
	TenantFullName    string `json:"tenant_full_name,omitempty"`
	TenantPhoneNumber string `json:"tenant_phone_number,omitempty"`
	HasParking        bool   `json:"has_parking"`
	ParkingCount      int    `json:"parking_count"`
}

type RequestResponse struct {
	ID             string `json:"id"`
	ApplicantPhone string `json:"applicant_phone"`
	ClaimResponse

	Status                string     `json:"status"`
	Source                string     `json:"source"`
	IsSuggested           bool       `json:"is_suggested"`
	WasSuggested          bool       `json:"was_suggested"`
	HasBeenEdited         bool       `json:"has_been_edited"`
	RequiresOwnerApproval bool       `json:"requires_owner_approval"`
	AutoApproved          bool       `json:"auto_approved"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	OwnerApprovedAt       *time.Time `json:"owner_approved_at,omitempty"`
	ManagerApprovedAt     *time.Time `json:"manager_approved_at,omitempty"`
	RejectedAt            *time.Time `json:"rejected_at,omitempty"`
	RejectionReason       string     `json:"rejection_reason,omitempty"`
	WithdrawnAt           *time.Time `json:"withdrawn_at,omitempty"`
}

type ListResponse struct {
	Requests []RequestResponse `json:"requests"`
	Count    int               `json:"count"`
}

// PrefillResponse carries the record on file for the phone, if any.
type PrefillResponse struct {
	Found bool           `json:"found"`
	Claim *ClaimResponse `json:"claim,omitempty"`
}

func toClaimResponse(c *models.Claim) ClaimResponse {
	return ClaimResponse{
		BuildingID:        c.BuildingID.String(),
		BuildingCode:      c.BuildingCode,
		UnitNumber:        c.UnitNumber,
		Floor:             c.Floor,
		Area:              c.Area,
		ResidentCount:     c.ResidentCount,
		Role:              string(c.Role.Kind()),
		OwnerType:         string(c.Role.OwnerType()),
		FullName:          c.FullName,
		PhoneNumber:       c.PhoneNumber,
		OwnerFullName:     c.OwnerFullName,
		OwnerPhoneNumber:  c.OwnerPhoneNumber,
		TenantFullName:    c.TenantFullName,
		TenantPhoneNumber: c.TenantPhoneNumber,
		HasParking:        c.HasParking,
		ParkingCount:      c.ParkingCount,
	}
}

func toRequestResponse(r *models.Request) RequestResponse {
	return RequestResponse{
		ID:                    r.ID.String(),
		ApplicantPhone:        r.ApplicantPhone,
		ClaimResponse:         toClaimResponse(&r.Claim),
		Status:                string(r.Status),
		Source:                string(r.Source),
		IsSuggested:           r.IsSuggested,
		WasSuggested:          r.WasSuggested(),
		HasBeenEdited:         r.HasBeenEdited,
		RequiresOwnerApproval: r.RequiresOwnerApproval,
		AutoApproved:          r.AutoApproved,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
		OwnerApprovedAt:       r.OwnerApprovedAt,
		ManagerApprovedAt:     r.ManagerApprovedAt,
		RejectedAt:            r.RejectedAt,
		RejectionReason:       r.RejectionReason,
		WithdrawnAt:           r.WithdrawnAt,
	}
}

func toListResponse(requests []*models.Request) ListResponse {
	out := ListResponse{Requests: make([]RequestResponse, 0, len(requests))}
	for _, r := range requests {
		out.Requests = append(out.Requests, toRequestResponse(r))
	}
	out.Count = len(out.Requests)
	return out
}
