// Package service runs the membership lifecycle: submission, the owner and
// manager approval gates, suggested requests and the atomic directory write
// on final approval.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"unitgate/internal/directory"
	"unitgate/internal/membership/matcher"
	membershipmetrics "unitgate/internal/membership/metrics"
	"unitgate/internal/membership/models"
	"unitgate/internal/membership/store"
	"unitgate/internal/platform/tracer"
	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/platform/sentinel"
)

type Service struct {
	tx        TxRunner
	requests  store.RequestStore
	directory directory.Reader
	matcher   *matcher.Matcher
	policy    models.FastPathPolicy
	logger    *slog.Logger
	metrics   *membershipmetrics.Metrics
	tracer    tracer.Tracer
	audit     *auditEmitter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *membershipmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithFastPathPolicy sets what happens to unchanged claims. Unknown values
// keep the default, auto_approve.
func WithFastPathPolicy(p models.FastPathPolicy) Option {
	return func(s *Service) {
		switch p {
		case models.FastPathAutoApprove, models.FastPathSkipOwner, models.FastPathDisabled:
			s.policy = p
		}
	}
}

// New wires the service. requests and dir serve unlocked reads; writes go
// through tx.
func New(tx TxRunner, requests store.RequestStore, dir directory.Reader, m *matcher.Matcher, opts ...Option) *Service {
	s := &Service{
		tx:        tx,
		requests:  requests,
		directory: dir,
		matcher:   m,
		policy:    models.FastPathAutoApprove,
		logger:    slog.Default(),
		tracer:    tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.audit = &auditEmitter{logger: s.logger}
	return s
}

// Policy reports the configured fast-path policy.
func (s *Service) Policy() models.FastPathPolicy {
	return s.policy
}

func requireActor(actor id.Actor) error {
	if actor.UserID.IsNil() || id.NormalizePhone(actor.Phone) == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "authenticated actor with a phone number required")
	}
	return nil
}

// resolveBuilding fills the claim's building id and canonical code.
func (s *Service) resolveBuilding(ctx context.Context, claim *models.Claim) (*directory.Building, error) {
	b, err := s.directory.FindBuilding(ctx, directory.BuildingRef{ID: claim.BuildingID, Code: claim.BuildingCode})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "building not found")
		}
		return nil, translate(err, "resolve building")
	}
	claim.BuildingID = b.ID
	claim.BuildingCode = b.Code
	return b, nil
}

// ownerOfRecord is the phone allowed to pass the owner gate: the directory
// owner of the unit, or the claimed owner when the unit has no record.
func (s *Service) ownerOfRecord(ctx context.Context, claim models.Claim) (string, error) {
	rec, err := s.directory.GetUnit(ctx, claim.Unit())
	switch {
	case err == nil:
		if p := id.NormalizePhone(rec.Owner.Phone); p != "" {
			return p, nil
		}
	case !errors.Is(err, sentinel.ErrNotFound):
		return "", translate(err, "load unit")
	}
	if claim.Role.IsTenant() {
		return claim.OwnerPhoneNumber, nil
	}
	return "", nil
}

// gate computes the owner of record and whether the owner must approve. Tenant
// claims always need their owner. Owner claims need the recorded owner when
// it is someone else.
func (s *Service) gate(ctx context.Context, r *models.Request) error {
	owner, err := s.ownerOfRecord(ctx, r.Claim)
	if err != nil {
		return err
	}
	r.OwnerOfRecordPhone = owner
	if r.Role.IsTenant() {
		if owner == r.ApplicantPhone {
			return dErrors.New(dErrors.CodeValidation, "a tenant cannot be the owner of their own unit")
		}
		r.RequiresOwnerApproval = true
		return nil
	}
	r.RequiresOwnerApproval = owner != "" && owner != r.ApplicantPhone
	return nil
}

func (s *Service) classify(ctx context.Context, r *models.Request) (matcher.Verdict, error) {
	v, err := s.matcher.Classify(ctx, r.ApplicantPhone, r.Claim)
	if err != nil {
		return matcher.Verdict{}, translate(err, "match claim")
	}
	s.recordVerdict(v)
	return v, nil
}

// applyFastPath acts on an unchanged verdict per policy. It reports whether
// the request was approved outright, in which case the caller must write
// the directory.
func (s *Service) applyFastPath(ctx context.Context, r *models.Request, v matcher.Verdict) (bool, error) {
	if !v.Unchanged() {
		return false, nil
	}
	switch s.policy {
	case models.FastPathAutoApprove:
		if err := r.AutoApprove(r.UpdatedAt); err != nil {
			return false, err
		}
		s.recordFastPath()
		return true, nil
	case models.FastPathSkipOwner:
		r.RequiresOwnerApproval = false
		s.recordFastPath()
	}
	return false, nil
}

// writeOccupancy upserts the directory record a final approval establishes.
func writeOccupancy(ctx context.Context, stores Stores, saga *directory.Saga, r *models.Request) error {
	res, err := stores.Directory.UpsertOccupant(ctx, r.Unit(), r.Occupancy())
	if err != nil {
		return err
	}
	saga.Track(res)
	return nil
}

// runWrite runs fn in a transaction and undoes tracked directory writes when
// it fails. Audit events are logged after commit.
func (s *Service) runWrite(ctx context.Context, action string, fn func(ctx context.Context, stores Stores, saga *directory.Saga, events *[]pendingEvent) error) error {
	var (
		saga   directory.Saga
		events []pendingEvent
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, stores Stores) error {
		return fn(ctx, stores, &saga, &events)
	})
	if err != nil {
		s.compensate(ctx, &saga, action, err)
		if errors.Is(err, sentinel.ErrInvalidState) || dErrors.HasCode(err, dErrors.CodeOrdering) {
			s.recordConflict(action)
		}
		return translate(err, action)
	}
	s.audit.log(ctx, events...)
	for _, ev := range events {
		s.recordTransition(ev.name)
	}
	return nil
}

func (s *Service) compensate(ctx context.Context, saga *directory.Saga, action string, cause error) {
	if saga.Len() == 0 {
		return
	}
	if err := saga.Compensate(ctx); err != nil {
		s.logger.ErrorContext(ctx, "directory compensation failed: occupancy may not match membership state",
			"alert", "fatal_consistency",
			"action", action,
			"cause", cause,
			"error", err,
		)
		s.recordCompensation(false)
		return
	}
	s.logger.WarnContext(ctx, "directory write compensated", "action", action, "cause", cause)
	s.recordCompensation(true)
}

func emit(ctx context.Context, audit *auditEmitter, stores Stores, events *[]pendingEvent, event string, r *models.Request, by id.UserID) error {
	ev, err := audit.append(ctx, stores.Outbox, event, r, by)
	if err != nil {
		return err
	}
	*events = append(*events, ev)
	return nil
}

func (s *Service) recordTransition(event string) {
	if s.metrics != nil {
		s.metrics.RecordTransition(event)
	}
}

func (s *Service) recordVerdict(v matcher.Verdict) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordVerdict(verdictLabel(v))
}

func (s *Service) recordFastPath() {
	if s.metrics != nil {
		s.metrics.RecordFastPath(string(s.policy))
	}
}

func (s *Service) recordCompensation(ok bool) {
	if s.metrics != nil {
		s.metrics.RecordCompensation(ok)
	}
}

func (s *Service) recordConflict(operation string) {
	if s.metrics != nil {
		s.metrics.RecordConflict(strings.ReplaceAll(operation, " ", "_"))
	}
}

func verdictLabel(v matcher.Verdict) string {
	switch {
	case v.Suppressed:
		return "suppressed"
	case v.Fresh():
		return "fresh"
	case v.HasBeenEdited:
		return "edited"
	}
	return "unchanged"
}
