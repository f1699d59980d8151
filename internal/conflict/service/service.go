// Package service is the conflict ledger: residents dispute the recorded
// occupancy of a unit and a manager or the owner of record closes the report,
// optionally correcting the directory in the same step.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	conflictmetrics "unitgate/internal/conflict/metrics"
	"unitgate/internal/conflict/models"
	"unitgate/internal/conflict/store"
	"unitgate/internal/directory"
	"unitgate/internal/platform/tracer"
	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/platform/outbox"
	"unitgate/pkg/platform/sentinel"
	"unitgate/pkg/requestcontext"
)

type Service struct {
	tx         TxRunner
	reports    store.ReportStore
	directory  directory.Reader
	correction bool
	logger     *slog.Logger
	metrics    *conflictmetrics.Metrics
	tracer     tracer.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *conflictmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithDirectoryCorrection toggles writing corrections to the directory on
// resolve. When off, the correction is kept on the report only.
func WithDirectoryCorrection(enabled bool) Option {
	return func(s *Service) {
		s.correction = enabled
	}
}

func New(tx TxRunner, reports store.ReportStore, dir directory.Reader, opts ...Option) *Service {
	s := &Service{
		tx:         tx,
		reports:    reports,
		directory:  dir,
		correction: true,
		logger:     slog.Default(),
		tracer:     tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Report files a dispute against the current occupancy of unit.
func (s *Service) Report(ctx context.Context, actor id.Actor, unit directory.UnitRef, reason string) (out *models.Report, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanConflictReport, tracer.String(tracer.AttrBuildingID, unit.BuildingID.String()))
	defer func() { span.End(err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if unit.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "building_id and unit_number are required")
	}
	building, err := s.directory.FindBuilding(ctx, directory.BuildingRef{ID: unit.BuildingID})
	if err != nil {
		return nil, notFound(err, "building not found")
	}
	current, err := s.directory.GetUnit(ctx, unit)
	if err != nil {
		return nil, notFound(err, "unit has no recorded occupant")
	}
	if current.OwnerType == directory.OwnerTypeEmpty && current.Owner.IsZero() && current.Tenant.IsZero() {
		return nil, dErrors.New(dErrors.CodeNotFound, "unit has no recorded occupant")
	}

	r, err := models.NewReport(id.NewReportID(), unit, actor, models.SnapshotOf(current), reason, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	r.BuildingCode = building.Code

	err = s.runWrite(ctx, "report conflict", func(ctx context.Context, stores Stores, _ *directory.Saga, events *[]pendingEvent) error {
		if err := stores.Reports.Create(ctx, r); err != nil {
			return err
		}
		return s.emit(ctx, stores, events, models.EventReported, r, actor.UserID)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Resolve closes a pending report. A correction is only accepted with
// ActionResolve; it is written to the directory when the correction policy is
// on, and the report only closes if that write succeeds.
func (s *Service) Resolve(ctx context.Context, reportID id.ReportID, actor id.Actor, action models.Action, note string, correction *models.Correction) (out *models.Report, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanConflictResolve)
	defer func() { span.End(err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if correction.IsEmpty() {
		correction = nil
	}
	if correction != nil {
		if action != models.ActionResolve {
			return nil, dErrors.New(dErrors.CodeValidation, "a correction can only accompany resolve")
		}
		if err := correction.Validate(); err != nil {
			return nil, err
		}
	}

	r, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		return nil, notFound(err, "conflict report not found")
	}
	span.SetAttributes(tracer.String(tracer.AttrBuildingID, r.Unit.BuildingID.String()))

	current, err := s.directory.GetUnit(ctx, r.Unit)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, translate(err, "load unit")
	}
	if !s.mayResolve(actor, r, current) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the building manager or the owner of record can resolve this report")
	}

	if err := r.Close(action, actor.UserID, note, requestcontext.Now(ctx)); err != nil {
		return nil, translate(err, "close conflict report")
	}
	r.Correction = correction
	apply := correction != nil && s.correction

	err = s.runWrite(ctx, "resolve conflict", func(ctx context.Context, stores Stores, saga *directory.Saga, events *[]pendingEvent) error {
		if apply {
			// the correction lands on the record as it is now, not as it was
			// when the resolver was authorized
			latest, err := stores.Directory.GetUnit(ctx, r.Unit)
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "unit has no recorded occupant to correct")
			}
			if err != nil {
				return err
			}
			res, err := stores.Directory.UpsertOccupant(ctx, r.Unit, correction.Apply(latest.OccupantData))
			if err != nil {
				return err
			}
			saga.Track(res)
			r.Applied = true
		}
		if err := stores.Reports.Update(ctx, r, models.StatusPending); err != nil {
			return err
		}
		event := models.EventResolved
		if r.Status == models.StatusRejected {
			event = models.EventRejected
		}
		if err := s.emit(ctx, stores, events, event, r, actor.UserID); err != nil {
			return err
		}
		if r.Applied {
			return s.emit(ctx, stores, events, models.EventCorrected, r, actor.UserID)
		}
		return nil
	})
	if correction != nil {
		s.recordCorrection(correctionOutcome(apply, err))
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// List returns the reports of a building, oldest first. Only the building's
// managers may list them.
func (s *Service) List(ctx context.Context, actor id.Actor, building id.BuildingID, status models.Status) ([]*models.Report, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if building.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "building_id is required")
	}
	if !actor.Manages(building) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only building managers can list conflict reports")
	}
	out, err := s.reports.List(ctx, building, status)
	if err != nil {
		return nil, translate(err, "list conflict reports")
	}
	return out, nil
}

// mayResolve allows the building's managers and the owner of record. With no
// current record the owner in the report's snapshot stands in.
func (s *Service) mayResolve(actor id.Actor, r *models.Report, current *directory.OccupantRecord) bool {
	if actor.Manages(r.Unit.BuildingID) {
		return true
	}
	owner := r.Snapshot.Owner.Phone
	if current != nil {
		owner = current.Owner.Phone
	}
	return owner != "" && actor.HasPhone(owner)
}

type pendingEvent struct {
	name   string
	report *models.Report
	by     id.UserID
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
				s.logger.ErrorContext(ctx, "directory compensation failed: occupancy may not match conflict ledger",
					"alert", "fatal_consistency",
					"action", action,
					"cause", err,
					"error", cerr,
				)
			} else {
				s.logger.WarnContext(ctx, "directory correction compensated", "action", action, "cause", err)
			}
		}
		return translate(err, action)
	}
	for _, ev := range events {
		s.logAudit(ctx, ev)
		if s.metrics != nil {
			s.metrics.RecordEvent(ev.name)
		}
	}
	return nil
}

func (s *Service) emit(ctx context.Context, stores Stores, events *[]pendingEvent, event string, r *models.Report, by id.UserID) error {
	now := requestcontext.Now(ctx)
	payload, err := json.Marshal(models.NewEvent(r, by, now))
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event, err)
	}
	if err := stores.Outbox.Append(ctx, outbox.NewEntry(outbox.AggregateConflictReport, r.ID.String(), event, payload, now)); err != nil {
		return fmt.Errorf("append %s: %w", event, err)
	}
	*events = append(*events, pendingEvent{name: event, report: r.Clone(), by: by})
	return nil
}

func (s *Service) logAudit(ctx context.Context, ev pendingEvent) {
	args := []any{
		"event", ev.name,
		"log_type", "audit",
		"conflict_report_id", ev.report.ID.String(),
		"building_id", ev.report.Unit.BuildingID.String(),
		"unit_number", ev.report.Unit.UnitNumber,
		"status", string(ev.report.Status),
		"user_id", ev.by.String(),
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	s.logger.InfoContext(ctx, ev.name, args...)
}

func (s *Service) recordCorrection(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordCorrection(outcome)
	}
}

func correctionOutcome(applied bool, err error) string {
	switch {
	case err != nil:
		return "failed"
	case applied:
		return "applied"
	}
	return "recorded"
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
	case errors.Is(err, sentinel.ErrInvalidState):
		return &dErrors.Error{Code: dErrors.CodeConflict, Message: "conflict report changed concurrently, reload and retry", Err: err}
	case errors.Is(err, sentinel.ErrUnavailable):
		return &dErrors.Error{Code: dErrors.CodeUnavailable, Message: "unit directory unavailable", Err: err}
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
