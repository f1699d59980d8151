// Package handler exposes invite links, family invitations and the
// manager-phone join over HTTP.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"unitgate/internal/directory"
	"unitgate/internal/invitation/models"
	membershipmodels "unitgate/internal/membership/models"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/httputil"
	"unitgate/pkg/requestcontext"
)

type Service interface {
	CreateLink(ctx context.Context, actor id.Actor, unit directory.UnitRef, role models.LinkRole, expiresAt time.Time) (*models.InviteLink, error)
	ValidateLink(ctx context.Context, token string) (*models.InviteLink, error)
	UseLink(ctx context.Context, actor id.Actor, token string) (*models.InviteLink, error)
	ListLinks(ctx context.Context, actor id.Actor, building id.BuildingID) ([]*models.InviteLink, error)
	InviteFamily(ctx context.Context, actor id.Actor, unit directory.UnitRef, phone, name string, expiresAt time.Time) (*models.FamilyInvitation, string, error)
	AcceptFamily(ctx context.Context, actor id.Actor, code string) (*models.FamilyInvitation, error)
	ListFamily(ctx context.Context, actor id.Actor, unit directory.UnitRef) ([]*models.FamilyInvitation, error)
	ResolveManagerPhone(ctx context.Context, actor id.Actor, managerPhone string) (models.JoinResult, error)
	CompleteSelection(ctx context.Context, actor id.Actor, selectionID id.SelectionID, building id.BuildingID, claim membershipmodels.Claim) (*membershipmodels.Request, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
	lookup  func(http.Handler) http.Handler
	redeem  func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithGuards wraps the routes that take a caller-supplied secret: lookup
// guards invite tokens and manager phones, redeem guards family codes.
func WithGuards(lookup, redeem func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		if lookup != nil {
			h.lookup = lookup
		}
		if redeem != nil {
			h.redeem = redeem
		}
	}
}

func passthrough(next http.Handler) http.Handler { return next }

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger:  logger,
		service: service,
		lookup:  passthrough,
		redeem:  passthrough,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/invite-links", func(r chi.Router) {
		r.Post("/", h.HandleCreateLink)
		r.Get("/", h.HandleListLinks)
		r.With(h.lookup).Get("/{token}", h.HandleValidateLink)
		r.With(h.lookup).Post("/{token}/use", h.HandleUseLink)
	})
	r.Route("/family-invitations", func(r chi.Router) {
		r.Post("/", h.HandleInviteFamily)
		r.Get("/", h.HandleListFamily)
		r.With(h.redeem).Post("/accept", h.HandleAcceptFamily)
	})
	r.Route("/join/manager-phone", func(r chi.Router) {
		r.With(h.lookup).Post("/", h.HandleResolveManagerPhone)
		r.Post("/{selection_id}/complete", h.HandleCompleteSelection)
	})
}

func (h *Handler) HandleCreateLink(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateLinkRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	building, err := id.ParseBuildingID(req.BuildingID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	role, err := models.ParseLinkRole(req.Role)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	link, err := h.service.CreateLink(ctx, actor, directory.NewUnitRef(building, req.UnitNumber), role, req.expiresAt())
	if err != nil {
		h.fail(ctx, w, "create invite link", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toLinkResponse(link, true))
}

// HandleValidateLink is public so a link can be previewed before sign-in.
func (h *Handler) HandleValidateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	link, err := h.service.ValidateLink(ctx, chi.URLParam(r, "token"))
	if err != nil {
		h.fail(ctx, w, "validate invite link", requestcontext.RequestID(ctx), err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toLinkResponse(link, false))
}

func (h *Handler) HandleUseLink(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	link, err := h.service.UseLink(ctx, actor, chi.URLParam(r, "token"))
	if err != nil {
		h.fail(ctx, w, "use invite link", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toLinkResponse(link, false))
}

func (h *Handler) HandleListLinks(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	building, err := id.ParseBuildingID(r.URL.Query().Get("building_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	links, err := h.service.ListLinks(ctx, actor, building)
	if err != nil {
		h.fail(ctx, w, "list invite links", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toLinkListResponse(links))
}

func (h *Handler) HandleInviteFamily(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[InviteFamilyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	building, err := id.ParseBuildingID(req.BuildingID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	inv, code, err := h.service.InviteFamily(ctx, actor, directory.NewUnitRef(building, req.UnitNumber), req.InvitedPhone, req.InvitedName, req.expiresAt())
	if err != nil {
		h.fail(ctx, w, "invite family member", requestID, err)
		return
	}
	res := toFamilyResponse(inv, requestcontext.Now(ctx))
	res.Code = code
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) HandleAcceptFamily(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AcceptFamilyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	inv, err := h.service.AcceptFamily(ctx, actor, req.Code)
	if err != nil {
		h.fail(ctx, w, "accept family invitation", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toFamilyResponse(inv, requestcontext.Now(ctx)))
}

func (h *Handler) HandleListFamily(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	building, err := id.ParseBuildingID(q.Get("building_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	invitations, err := h.service.ListFamily(ctx, actor, directory.NewUnitRef(building, q.Get("unit_number")))
	if err != nil {
		h.fail(ctx, w, "list family invitations", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toFamilyListResponse(invitations, requestcontext.Now(ctx)))
}

func (h *Handler) HandleResolveManagerPhone(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ManagerPhoneRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	result, err := h.service.ResolveManagerPhone(ctx, actor, req.ManagerPhone)
	if err != nil {
		h.fail(ctx, w, "resolve manager phone", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toJoinResponse(result))
}

func (h *Handler) HandleCompleteSelection(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	selectionID, err := id.ParseSelectionID(chi.URLParam(r, "selection_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[CompleteSelectionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	building, claim, err := req.toClaim()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.service.CompleteSelection(ctx, actor, selectionID, building, claim)
	if err != nil {
		h.fail(ctx, w, "complete building selection", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toSubmittedResponse(out))
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
