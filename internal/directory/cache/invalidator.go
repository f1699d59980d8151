package cache

import (
	"context"
	"encoding/json"

	"unitgate/internal/directory"
	"unitgate/internal/platform/kafka/consumer"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/outbox"
)

// Invalidator consumes membership events and drops cache entries for the
// units they touch. It covers writes that bypass the decorator, such as
// Postgres directory writes made inside another replica's transaction.
type Invalidator struct {
	cache *Cache
}

func NewInvalidator(cache *Cache) *Invalidator {
	return &Invalidator{cache: cache}
}

// Handle never fails on malformed payloads so one bad event cannot stall the
// partition.
func (i *Invalidator) Handle(ctx context.Context, msg *consumer.Message) error {
	var hint outbox.UnitHint
	if err := json.Unmarshal(msg.Value, &hint); err != nil {
		i.cache.logger.WarnContext(ctx, "skipping undecodable membership event",
			"error", err,
			"event_type", msg.Headers["event_type"],
			"offset", msg.Offset,
		)
		return nil
	}

	var unit directory.UnitRef
	if buildingID, err := id.ParseBuildingID(hint.BuildingID); err == nil {
		unit = directory.NewUnitRef(buildingID, hint.UnitNumber)
	}
	i.cache.Invalidate(ctx, "event", unit, hint.Phones...)
	return nil
}

var _ consumer.Handler = (*Invalidator)(nil)
