// Package handler exposes the conflict ledger over HTTP.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"unitgate/internal/conflict/models"
	"unitgate/internal/directory"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/httputil"
	"unitgate/pkg/requestcontext"
)

type Service interface {
	Report(ctx context.Context, actor id.Actor, unit directory.UnitRef, reason string) (*models.Report, error)
	Resolve(ctx context.Context, reportID id.ReportID, actor id.Actor, action models.Action, note string, correction *models.Correction) (*models.Report, error)
	List(ctx context.Context, actor id.Actor, building id.BuildingID, status models.Status) ([]*models.Report, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/conflicts", func(r chi.Router) {
		r.Post("/", h.HandleReport)
		r.Get("/", h.HandleList)
		r.Post("/{id}/resolve", h.HandleResolve)
	})
}

func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReportRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	building, err := id.ParseBuildingID(req.BuildingID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.service.Report(ctx, actor, directory.NewUnitRef(building, req.UnitNumber), req.Reason)
	if err != nil {
		h.fail(ctx, w, "report conflict", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toReportResponse(out))
}

func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	reportID, err := id.ParseReportID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ResolveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	action, err := models.ParseAction(req.Action)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.service.Resolve(ctx, reportID, actor, action, req.Note, req.Correction)
	if err != nil {
		h.fail(ctx, w, "resolve conflict", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toReportResponse(out))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	building, err := id.ParseBuildingID(r.URL.Query().Get("building_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var status models.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		if status, err = models.NormalizeStatus(raw); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	out, err := h.service.List(ctx, actor, building, status)
	if err != nil {
		h.fail(ctx, w, "list conflicts", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(out))
}

func (h *Handler) begin(w http.ResponseWriter, r *http.Request) (context.Context, string, id.Actor, bool) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, err := httputil.RequireActor(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return ctx, requestID, id.Actor{}, false
	}
	return ctx, requestID, actor, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, action, requestID string, err error) {
	h.logger.WarnContext(ctx, "failed to "+action,
		"request_id", requestID,
		"error", err,
	)
	httputil.WriteError(w, err)
}
