package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"unitgate/internal/membership/models"
	"unitgate/internal/platform/privacy"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/outbox"
	"unitgate/pkg/requestcontext"
)

// auditEmitter writes lifecycle events to the outbox inside the transaction
// and to the audit log once it commits.
type auditEmitter struct {
	logger *slog.Logger
}

type pendingEvent struct {
	name string
	req  *models.Request
	by   id.UserID
}

func (e *auditEmitter) append(ctx context.Context, box outbox.Store, event string, r *models.Request, by id.UserID) (pendingEvent, error) {
	now := requestcontext.Now(ctx)
	payload, err := json.Marshal(models.NewEvent(r, by, now))
	if err != nil {
		return pendingEvent{}, fmt.Errorf("marshal %s: %w", event, err)
	}
	if err := box.Append(ctx, outbox.NewEntry(outbox.AggregateMembershipRequest, r.ID.String(), event, payload, now)); err != nil {
		return pendingEvent{}, fmt.Errorf("append %s: %w", event, err)
	}
	return pendingEvent{name: event, req: r.Clone(), by: by}, nil
}

func (e *auditEmitter) log(ctx context.Context, events ...pendingEvent) {
	if e.logger == nil {
		return
	}
	for _, ev := range events {
		args := []any{
			"event", ev.name,
			"log_type", "audit",
			"membership_request_id", ev.req.ID.String(),
			"building_id", ev.req.BuildingID.String(),
			"unit_number", ev.req.UnitNumber,
			"status", string(ev.req.Status),
			"applicant", privacy.MaskPhone(ev.req.ApplicantPhone),
		}
		if !ev.by.IsNil() {
			args = append(args, "user_id", ev.by.String())
		}
		if requestID := requestcontext.RequestID(ctx); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		e.logger.InfoContext(ctx, ev.name, args...)
	}
}
