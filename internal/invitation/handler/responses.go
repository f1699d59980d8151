package handler

import (
	"time"

	"unitgate/internal/directory"
	"unitgate/internal/invitation/models"
	membershipmodels "unitgate/internal/membership/models"
)

type LinkResponse struct {
	ID           string     `json:"id"`
	Token        string     `json:"token,omitempty"`
	BuildingID   string     `json:"building_id"`
	BuildingCode string     `json:"building_code,omitempty"`
	UnitNumber   string     `json:"unit_number"`
	Role         string     `json:"role"`
	ExpiresAt    time.Time  `json:"expires_at"`
	IsUsed       bool       `json:"is_used"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type LinkListResponse struct {
	Links []LinkResponse `json:"links"`
	Count int            `json:"count"`
}

// toLinkResponse includes the token only when withToken is set, so it is
// shown to the manager who created the link and not echoed back afterwards.
func toLinkResponse(l *models.InviteLink, withToken bool) LinkResponse {
	res := LinkResponse{
		ID:           l.ID.String(),
		BuildingID:   l.Unit.BuildingID.String(),
		BuildingCode: l.BuildingCode,
		UnitNumber:   l.Unit.UnitNumber,
		Role:         string(l.Role),
		ExpiresAt:    l.ExpiresAt,
		IsUsed:       l.IsUsed,
		UsedAt:       l.UsedAt,
		CreatedAt:    l.CreatedAt,
	}
	if withToken {
		res.Token = l.Token
	}
	return res
}

func toLinkListResponse(links []*models.InviteLink) LinkListResponse {
	out := LinkListResponse{Links: make([]LinkResponse, 0, len(links)), Count: len(links)}
	for _, l := range links {
		out.Links = append(out.Links, toLinkResponse(l, true))
	}
	return out
}

type FamilyResponse struct {
	ID           string     `json:"id"`
	Code         string     `json:"code,omitempty"`
	BuildingID   string     `json:"building_id"`
	UnitNumber   string     `json:"unit_number"`
	InvitedPhone string     `json:"invited_phone"`
	InvitedName  string     `json:"invited_name,omitempty"`
	Status       string     `json:"status"`
	ExpiresAt    time.Time  `json:"expires_at"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type FamilyListResponse struct {
	Invitations []FamilyResponse `json:"invitations"`
	Count       int              `json:"count"`
}

func toFamilyResponse(f *models.FamilyInvitation, now time.Time) FamilyResponse {
	return FamilyResponse{
		ID:           f.ID.String(),
		BuildingID:   f.Unit.BuildingID.String(),
		UnitNumber:   f.Unit.UnitNumber,
		InvitedPhone: f.InvitedPhone,
		InvitedName:  f.InvitedName,
		Status:       string(f.DisplayStatus(now)),
		ExpiresAt:    f.ExpiresAt,
		AcceptedAt:   f.AcceptedAt,
		CreatedAt:    f.CreatedAt,
	}
}

func toFamilyListResponse(invitations []*models.FamilyInvitation, now time.Time) FamilyListResponse {
	out := FamilyListResponse{Invitations: make([]FamilyResponse, 0, len(invitations)), Count: len(invitations)}
	for _, f := range invitations {
		out.Invitations = append(out.Invitations, toFamilyResponse(f, now))
	}
	return out
}

type BuildingResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// JoinResponse carries either the single building or the selection to
// complete.
type JoinResponse struct {
	RequiresSelection bool               `json:"requires_selection"`
	Building          *BuildingResponse  `json:"building,omitempty"`
	SelectionID       string             `json:"selection_id,omitempty"`
	Buildings         []BuildingResponse `json:"buildings,omitempty"`
	ExpiresAt         *time.Time         `json:"expires_at,omitempty"`
}

func toBuildingResponse(b directory.Building) BuildingResponse {
	return BuildingResponse{ID: b.ID.String(), Code: b.Code, Name: b.Name}
}

func toJoinResponse(r models.JoinResult) JoinResponse {
	if !r.RequiresSelection() {
		b := toBuildingResponse(*r.Building)
		return JoinResponse{Building: &b}
	}
	res := JoinResponse{
		RequiresSelection: true,
		SelectionID:       r.Selection.ID.String(),
		ExpiresAt:         &r.Selection.ExpiresAt,
	}
	for _, b := range r.Selection.Buildings {
		res.Buildings = append(res.Buildings, toBuildingResponse(b))
	}
	return res
}

type SubmittedResponse struct {
	RequestID    string `json:"request_id"`
	Status       string `json:"status"`
	AutoApproved bool   `json:"auto_approved"`
}

func toSubmittedResponse(r *membershipmodels.Request) SubmittedResponse {
	return SubmittedResponse{RequestID: r.ID.String(), Status: string(r.Status), AutoApproved: r.AutoApproved}
}
