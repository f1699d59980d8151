// Package service is the invitation gateway: the entry points into a unit
// that bypass a direct claim. Invite links and family invitations write the
// directory themselves; the manager-phone join hands off to the membership
// lifecycle.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"unitgate/internal/directory"
	invitationmetrics "unitgate/internal/invitation/metrics"
	"unitgate/internal/invitation/models"
	"unitgate/internal/invitation/store"
	jwttoken "unitgate/internal/jwt_token"
	membershipmodels "unitgate/internal/membership/models"
	"unitgate/internal/platform/tracer"
	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/platform/outbox"
	"unitgate/pkg/platform/sentinel"
	"unitgate/pkg/requestcontext"
	"unitgate/pkg/secrets"
)

// TokenIssuer signs and verifies invite link tokens.
type TokenIssuer interface {
	SignInvite(ctx context.Context, p jwttoken.InvitePayload) (string, error)
	ParseInvite(token string, now time.Time) (*jwttoken.InviteClaims, error)
}

// Submitter is the membership lifecycle entry used by the manager-phone join.
type Submitter interface {
	Submit(ctx context.Context, actor id.Actor, claim membershipmodels.Claim) (*membershipmodels.Request, error)
}

const (
	defaultLinkTTL      = 7 * 24 * time.Hour
	defaultFamilyTTL    = 72 * time.Hour
	defaultSelectionTTL = 15 * time.Minute
)

type Service struct {
	tx         TxRunner
	links      store.LinkStore
	family     store.FamilyStore
	selections store.SelectionStore
	directory  directory.Reader
	tokens     TokenIssuer
	hasher     *secrets.Hasher
	submitter  Submitter

	linkTTL      time.Duration
	familyTTL    time.Duration
	selectionTTL time.Duration

	logger  *slog.Logger
	metrics *invitationmetrics.Metrics
	tracer  tracer.Tracer
}

// Deps groups the collaborators New needs.
type Deps struct {
	Tx         TxRunner
	Links      store.LinkStore
	Family     store.FamilyStore
	Selections store.SelectionStore
	Directory  directory.Reader
	Tokens     TokenIssuer
	Hasher     *secrets.Hasher
	Submitter  Submitter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *invitationmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithTTLs overrides the default lifetimes. Non-positive values keep the
// default.
func WithTTLs(link, family, selection time.Duration) Option {
	return func(s *Service) {
		if link > 0 {
			s.linkTTL = link
		}
		if family > 0 {
			s.familyTTL = family
		}
		if selection > 0 {
			s.selectionTTL = selection
		}
	}
}

func New(deps Deps, opts ...Option) *Service {
	s := &Service{
		tx:           deps.Tx,
		links:        deps.Links,
		family:       deps.Family,
		selections:   deps.Selections,
		directory:    deps.Directory,
		tokens:       deps.Tokens,
		hasher:       deps.Hasher,
		submitter:    deps.Submitter,
		linkTTL:      defaultLinkTTL,
		familyTTL:    defaultFamilyTTL,
		selectionTTL: defaultSelectionTTL,
		logger:       slog.Default(),
		tracer:       tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type pendingEvent struct {
	name        string
	aggregateID string
	building    id.BuildingID
	unitNumber  string
	by          id.UserID
}

// runWrite runs fn in a transaction and undoes tracked directory writes when
// it fails. Audit lines are logged after commit.
func (s *Service) runWrite(ctx context.Context, action string, fn func(ctx context.Context, stores Stores, saga *directory.Saga, events *[]pendingEvent) error) error {
	var (
		saga   directory.Saga
		events []pendingEvent
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, stores Stores) error {
		return fn(ctx, stores, &saga, &events)
	})
	if err != nil {
		if saga.Len() > 0 {
			if cerr := saga.Compensate(ctx); cerr != nil {
				s.logger.ErrorContext(ctx, "directory compensation failed: occupancy may not match invitation state",
					"alert", "fatal_consistency",
					"action", action,
					"cause", err,
					"error", cerr,
				)
			} else {
				s.logger.WarnContext(ctx, "directory write compensated", "action", action, "cause", err)
			}
		}
		return translate(err, action)
	}
	for _, ev := range events {
		args := []any{
			"event", ev.name,
			"log_type", "audit",
			"aggregate_id", ev.aggregateID,
			"building_id", ev.building.String(),
			"unit_number", ev.unitNumber,
		}
		if !ev.by.IsNil() {
			args = append(args, "user_id", ev.by.String())
		}
		if requestID := requestcontext.RequestID(ctx); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		s.logger.InfoContext(ctx, ev.name, args...)
		if s.metrics != nil {
			s.metrics.RecordEvent(ev.name)
		}
	}
	return nil
}

func emit(ctx context.Context, stores Stores, events *[]pendingEvent, aggregate, event string, payload models.Event, by id.UserID) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event, err)
	}
	entry := outbox.NewEntry(aggregate, payload.AggregateID, event, raw, requestcontext.Now(ctx))
	if err := stores.Outbox.Append(ctx, entry); err != nil {
		return fmt.Errorf("append %s: %w", event, err)
	}
	building, _ := id.ParseBuildingID(payload.BuildingID) //nolint:errcheck // payloads carry ids we formatted
	*events = append(*events, pendingEvent{
		name:        event,
		aggregateID: payload.AggregateID,
		building:    building,
		unitNumber:  payload.UnitNumber,
		by:          by,
	})
	return nil
}

func (s *Service) recordRejected(kind string, err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case dErrors.HasCode(err, dErrors.CodeExpired):
		s.metrics.RecordRejected(kind, "expired")
	case dErrors.HasCode(err, dErrors.CodeAlreadyUsed):
		s.metrics.RecordRejected(kind, "already_used")
	}
}

// resolveBuilding finds the building by id or code and returns NotFound for
// unknown ones.
func (s *Service) resolveBuilding(ctx context.Context, ref directory.BuildingRef) (*directory.Building, error) {
	b, err := s.directory.FindBuilding(ctx, ref)
	if err != nil {
		return nil, notFound(err, "building not found")
	}
	return b, nil
}

// loadUnit returns the unit's record, or nil when it has none.
func (s *Service) loadUnit(ctx context.Context, unit directory.UnitRef) (*directory.OccupantRecord, error) {
	rec, err := s.directory.GetUnit(ctx, unit)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, translate(err, "load unit")
	}
	return rec, nil
}

func requireActor(actor id.Actor) error {
	if actor.UserID.IsNil() || id.NormalizePhone(actor.Phone) == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "authenticated actor with a phone number required")
	}
	return nil
}

func notFound(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, msg)
	}
	return translate(err, msg)
}

// translate maps store and directory errors to domain errors.
func translate(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return &dErrors.Error{Code: dErrors.CodeAlreadyUsed, Message: "invitation has already been used", Err: err}
	case errors.Is(err, sentinel.ErrInvalidState):
		return &dErrors.Error{Code: dErrors.CodeConflict, Message: "invitation changed concurrently, reload and retry", Err: err}
	case errors.Is(err, sentinel.ErrUnavailable):
		return &dErrors.Error{Code: dErrors.CodeUnavailable, Message: "dependency unavailable", Err: err}
	case errors.Is(err, sentinel.ErrNotFound):
		return &dErrors.Error{Code: dErrors.CodeNotFound, Message: "not found", Err: err}
	case dErrors.HasCode(err, dErrors.CodeInvariantViolation):
		return &dErrors.Error{Code: dErrors.CodeConflict, Message: err.Error(), Err: err}
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
}
