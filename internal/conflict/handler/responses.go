package handler

import (
	"time"

	"unitgate/internal/conflict/models"
)

type ReportResponse struct {
	ID             string             `json:"id"`
	BuildingID     string             `json:"building_id"`
	BuildingCode   string             `json:"building_code,omitempty"`
	UnitNumber     string             `json:"unit_number"`
	ReportedBy     string             `json:"reported_by"`
	Snapshot       models.Snapshot    `json:"current_resident_snapshot"`
	Reason         string             `json:"reason"`
	Status         string             `json:"status"`
	ResolutionNote string             `json:"resolution_note,omitempty"`
	ResolvedBy     string             `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time         `json:"resolved_at,omitempty"`
	Correction     *models.Correction `json:"correction,omitempty"`
	Applied        bool               `json:"correction_applied"`
	CreatedAt      time.Time          `json:"created_at"`
}

type ListResponse struct {
	Reports []ReportResponse `json:"reports"`
	Count   int              `json:"count"`
}

func toReportResponse(r *models.Report) ReportResponse {
	res := ReportResponse{
		ID:             r.ID.String(),
		BuildingID:     r.Unit.BuildingID.String(),
		BuildingCode:   r.BuildingCode,
		UnitNumber:     r.Unit.UnitNumber,
		ReportedBy:     r.ReportedBy.String(),
		Snapshot:       r.Snapshot,
		Reason:         r.Reason,
		Status:         string(r.Status),
		ResolutionNote: r.ResolutionNote,
		ResolvedAt:     r.ResolvedAt,
		Correction:     r.Correction,
		Applied:        r.Applied,
		CreatedAt:      r.CreatedAt,
	}
	if !r.ResolvedBy.IsNil() {
		res.ResolvedBy = r.ResolvedBy.String()
	}
	return res
}

func toListResponse(reports []*models.Report) ListResponse {
	out := ListResponse{Reports: make([]ReportResponse, 0, len(reports)), Count: len(reports)}
	for _, r := range reports {
		out.Reports = append(out.Reports, toReportResponse(r))
	}
	return out
}
