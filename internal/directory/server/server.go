// Package server exposes a directory.Directory over the HTTP protocol spoken
// by the httpclient package. It backs the stand-alone fake directory and the
// client tests.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"unitgate/internal/directory"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/sentinel"
)

// Backend is a directory that can also undo writes.
type Backend interface {
	directory.Directory
	DeleteOccupant(ctx context.Context, unit directory.UnitRef) error
	RemoveFamilyMember(ctx context.Context, unit directory.UnitRef, phone string) error
}

// UpsertResponse is the body of PUT .../occupant.
type UpsertResponse struct {
	Record   *directory.OccupantRecord `json:"record"`
	Previous *directory.OccupantRecord `json:"previous,omitempty"`
}

// FamilyResponse is the body of POST .../family. Added is false when the
// phone was already linked.
type FamilyResponse struct {
	Record *directory.OccupantRecord `json:"record"`
	Added  bool                      `json:"added"`
}

type Handler struct {
	backend Backend
}

func New(backend Backend) *Handler {
	return &Handler{backend: backend}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/occupants", h.lookupByPhone)
	r.Get("/v1/buildings", h.findBuildingByCode)
	r.Get("/v1/buildings/{building_id}", h.findBuilding)
	r.Get("/v1/managers/{phone}/buildings", h.buildingsByManager)
	r.Get("/v1/buildings/{building_id}/units/{unit}", h.getUnit)
	r.Put("/v1/buildings/{building_id}/units/{unit}/occupant", h.upsertOccupant)
	r.Delete("/v1/buildings/{building_id}/units/{unit}/occupant", h.deleteOccupant)
	r.Post("/v1/buildings/{building_id}/units/{unit}/family", h.addFamilyMember)
	r.Delete("/v1/buildings/{building_id}/units/{unit}/family/{phone}", h.removeFamilyMember)
}

func (h *Handler) lookupByPhone(w http.ResponseWriter, r *http.Request) {
	records, err := h.backend.LookupByPhone(r.Context(), r.URL.Query().Get("phone"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if records == nil {
		records = []*directory.OccupantRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) findBuildingByCode(w http.ResponseWriter, r *http.Request) {
	b, err := h.backend.FindBuilding(r.Context(), directory.BuildingRef{Code: r.URL.Query().Get("code")})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) findBuilding(w http.ResponseWriter, r *http.Request) {
	buildingID, err := id.ParseBuildingID(chi.URLParam(r, "building_id"))
	if err != nil {
		writeErr(w, sentinel.ErrInvalidInput)
		return
	}
	b, err := h.backend.FindBuilding(r.Context(), directory.BuildingRef{ID: buildingID})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) buildingsByManager(w http.ResponseWriter, r *http.Request) {
	buildings, err := h.backend.BuildingsByManagerPhone(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if buildings == nil {
		buildings = []*directory.Building{}
	}
	writeJSON(w, http.StatusOK, buildings)
}

func (h *Handler) getUnit(w http.ResponseWriter, r *http.Request) {
	unit, ok := unitFromPath(w, r)
	if !ok {
		return
	}
	record, err := h.backend.GetUnit(r.Context(), unit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) upsertOccupant(w http.ResponseWriter, r *http.Request) {
	unit, ok := unitFromPath(w, r)
	if !ok {
		return
	}
	var data directory.OccupantData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeErr(w, sentinel.ErrInvalidInput)
		return
	}
	previous, err := h.backend.GetUnit(r.Context(), unit)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		writeErr(w, err)
		return
	}
	res, err := h.backend.UpsertOccupant(r.Context(), unit, data)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UpsertResponse{Record: res.Record, Previous: previous})
}

func (h *Handler) deleteOccupant(w http.ResponseWriter, r *http.Request) {
	unit, ok := unitFromPath(w, r)
	if !ok {
		return
	}
	if err := h.backend.DeleteOccupant(r.Context(), unit); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addFamilyMember(w http.ResponseWriter, r *http.Request) {
	unit, ok := unitFromPath(w, r)
	if !ok {
		return
	}
	var member directory.FamilyMember
	if err := json.NewDecoder(r.Body).Decode(&member); err != nil {
		writeErr(w, sentinel.ErrInvalidInput)
		return
	}
	before, err := h.backend.GetUnit(r.Context(), unit)
	if err != nil {
		writeErr(w, err)
		return
	}
	res, err := h.backend.AddFamilyMember(r.Context(), unit, member)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FamilyResponse{
		Record: res.Record,
		Added:  len(res.Record.Family) > len(before.Family),
	})
}

func (h *Handler) removeFamilyMember(w http.ResponseWriter, r *http.Request) {
	unit, ok := unitFromPath(w, r)
	if !ok {
		return
	}
	if err := h.backend.RemoveFamilyMember(r.Context(), unit, chi.URLParam(r, "phone")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func unitFromPath(w http.ResponseWriter, r *http.Request) (directory.UnitRef, bool) {
	buildingID, err := id.ParseBuildingID(chi.URLParam(r, "building_id"))
	if err != nil {
		writeErr(w, sentinel.ErrInvalidInput)
		return directory.UnitRef{}, false
	}
	return directory.NewUnitRef(buildingID, chi.URLParam(r, "unit")), true
}

func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, sentinel.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // headers already sent
}
