// Package handler exposes the membership workflow over HTTP.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"unitgate/internal/directory"
	"unitgate/internal/membership/models"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/httputil"
	"unitgate/pkg/requestcontext"
)

// Service is the membership workflow as the handler sees it.
type Service interface {
	Submit(ctx context.Context, actor id.Actor, claim models.Claim) (*models.Request, error)
	Get(ctx context.Context, requestID id.RequestID, actor id.Actor) (*models.Request, error)
	ListMine(ctx context.Context, actor id.Actor) ([]*models.Request, error)
	ListOwnerRequests(ctx context.Context, actor id.Actor, status string) ([]*models.Request, error)
	ListPendingOwnerApproval(ctx context.Context, actor id.Actor) ([]*models.Request, error)
	ListManagerPending(ctx context.Context, actor id.Actor, building id.BuildingID) ([]*models.Request, error)
	Prefill(ctx context.Context, actor id.Actor, phone string, building directory.BuildingRef) (*models.Claim, error)
	OwnerApprove(ctx context.Context, requestID id.RequestID, actor id.Actor) (*models.Request, error)
	ManagerApprove(ctx context.Context, requestID id.RequestID, actor id.Actor) (*models.Request, error)
	Reject(ctx context.Context, requestID id.RequestID, actor id.Actor, reason string) (*models.Request, error)
	Withdraw(ctx context.Context, requestID id.RequestID, actor id.Actor) (*models.Request, error)
	Suggest(ctx context.Context, manager id.Actor, applicantPhone string, claim models.Claim) (*models.Request, error)
	Actionable(ctx context.Context, actor id.Actor) (*models.Request, error)
	AcceptSuggested(ctx context.Context, requestID id.RequestID, actor id.Actor) (*models.Request, error)
	EditSuggested(ctx context.Context, requestID id.RequestID, actor id.Actor, claim models.Claim) (*models.Request, error)
	RejectSuggested(ctx context.Context, requestID id.RequestID, actor id.Actor, reason string) (*models.Request, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the membership and suggestion routes. Callers wrap the
// router in the auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Route("/membership", func(r chi.Router) {
		r.Post("/create", h.HandleSubmit)
		r.Get("/list", h.HandleListMine)
		r.Get("/by-phone", h.HandlePrefill)
		r.Get("/owner/requests", h.HandleOwnerRequests)
		r.Get("/owner/pending-approval", h.HandlePendingOwnerApproval)
		r.Get("/manager/pending", h.HandleManagerPending)

		r.Post("/suggestions", h.HandleSuggest)
		r.Get("/suggestions/actionable", h.HandleActionable)
		r.Post("/suggestions/{id}/accept", h.HandleAcceptSuggested)
		r.Post("/suggestions/{id}/edit", h.HandleEditSuggested)
		r.Post("/suggestions/{id}/reject", h.HandleRejectSuggested)

		r.Get("/{id}", h.HandleGet)
		r.Post("/{id}/approve-by-owner", h.HandleOwnerApprove)
		r.Post("/{id}/approve-by-manager", h.HandleManagerApprove)
		r.Post("/{id}/reject", h.HandleReject)
		r.Post("/{id}/withdraw", h.HandleWithdraw)
	})
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ClaimRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	claim, err := req.ToClaim()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.service.Submit(ctx, actor, claim)
	if err != nil {
		h.fail(ctx, w, "submit membership request", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRequestResponse(out))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.withRequest(w, r, "get membership request", h.service.Get)
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "list membership requests", h.service.ListMine)
}

func (h *Handler) HandleOwnerRequests(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	h.list(w, r, "list owner requests", func(ctx context.Context, actor id.Actor) ([]*models.Request, error) {
		return h.service.ListOwnerRequests(ctx, actor, status)
	})
}

func (h *Handler) HandlePendingOwnerApproval(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "list pending owner approvals", h.service.ListPendingOwnerApproval)
}

func (h *Handler) HandleManagerPending(w http.ResponseWriter, r *http.Request) {
	building, err := id.ParseBuildingID(r.URL.Query().Get("building_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.list(w, r, "list manager queue", func(ctx context.Context, actor id.Actor) ([]*models.Request, error) {
		return h.service.ListManagerPending(ctx, actor, building)
	})
}

func (h *Handler) HandlePrefill(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	var ref directory.BuildingRef
	if raw := r.URL.Query().Get("building_id"); raw != "" {
		building, err := id.ParseBuildingID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		ref.ID = building
	}
	ref.Code = r.URL.Query().Get("building_code")

	claim, err := h.service.Prefill(ctx, actor, r.URL.Query().Get("phone_number"), ref)
	if err != nil {
		h.fail(ctx, w, "prefill claim", requestID, err)
		return
	}
	res := PrefillResponse{Found: claim != nil}
	if claim != nil {
		c := toClaimResponse(claim)
		res.Claim = &c
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleOwnerApprove(w http.ResponseWriter, r *http.Request) {
	h.withRequest(w, r, "approve by owner", h.service.OwnerApprove)
}

func (h *Handler) HandleManagerApprove(w http.ResponseWriter, r *http.Request) {
	h.withRequest(w, r, "approve by manager", h.service.ManagerApprove)
}

func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	h.withRequest(w, r, "withdraw membership request", h.service.Withdraw)
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.rejectWith(w, r, "reject membership request", h.service.Reject)
}

func (h *Handler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SuggestRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	claim, err := req.ToClaim()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.service.Suggest(ctx, actor, req.ApplicantPhone, claim)
	if err != nil {
		h.fail(ctx, w, "suggest membership request", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRequestResponse(out))
}

func (h *Handler) HandleActionable(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	out, err := h.service.Actionable(ctx, actor)
	if err != nil {
		h.fail(ctx, w, "load actionable suggestion", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(out))
}

func (h *Handler) HandleAcceptSuggested(w http.ResponseWriter, r *http.Request) {
	h.withRequest(w, r, "accept suggestion", h.service.AcceptSuggested)
}

func (h *Handler) HandleEditSuggested(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	target, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ClaimRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	claim, err := req.ToClaim()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.service.EditSuggested(ctx, target, actor, claim)
	if err != nil {
		h.fail(ctx, w, "edit suggestion", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(out))
}

func (h *Handler) HandleRejectSuggested(w http.ResponseWriter, r *http.Request) {
	h.rejectWith(w, r, "reject suggestion", h.service.RejectSuggested)
}

// begin pulls the request id and the authenticated actor from the context.
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

func (h *Handler) withRequest(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context, id.RequestID, id.Actor) (*models.Request, error)) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	target, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := fn(ctx, target, actor)
	if err != nil {
		h.fail(ctx, w, action, requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(out))
}

func (h *Handler) rejectWith(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context, id.RequestID, id.Actor, string) (*models.Request, error)) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	target, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RejectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	out, err := fn(ctx, target, actor, req.RejectionReason)
	if err != nil {
		h.fail(ctx, w, action, requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(out))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context, id.Actor) ([]*models.Request, error)) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	out, err := fn(ctx, actor)
	if err != nil {
		h.fail(ctx, w, action, requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(out))
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, action, requestID string, err error) {
	h.logger.WarnContext(ctx, "failed to "+action,
		"request_id", requestID,
		"error", err,
	)
	httputil.WriteError(w, err)
}
