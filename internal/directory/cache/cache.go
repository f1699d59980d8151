// Package cache is a Redis read-through decorator for the Unit Directory.
// Phone lookups and unit reads are cached with a TTL; writes through the
// decorator and occupancy events from Kafka drop the affected keys.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"unitgate/internal/directory"
	dirmetrics "unitgate/internal/directory/metrics"
	id "unitgate/pkg/domain"
)

const (
	phoneKeyPrefix = "directory:phone:"
	unitKeyPrefix  = "directory:unit:"
	defaultTTL     = 5 * time.Minute
)

type Cache struct {
	next    directory.Directory
	client  redis.Cmdable
	ttl     time.Duration
	metrics *dirmetrics.Metrics
	logger  *slog.Logger
}

type Option func(*Cache)

func WithMetrics(m *dirmetrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

func New(next directory.Directory, client redis.Cmdable, ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	c := &Cache{next: next, client: client, ttl: ttl, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) LookupByPhone(ctx context.Context, phone string) ([]*directory.OccupantRecord, error) {
	key := phoneKey(phone)
	var cached []*directory.OccupantRecord
	if c.get(ctx, "lookup_by_phone", key, &cached) {
		return cached, nil
	}
	records, err := c.next.LookupByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, records)
	return records, nil
}

func (c *Cache) GetUnit(ctx context.Context, unit directory.UnitRef) (*directory.OccupantRecord, error) {
	key := unitKey(unit)
	var cached directory.OccupantRecord
	if c.get(ctx, "get_unit", key, &cached) {
		return &cached, nil
	}
	record, err := c.next.GetUnit(ctx, unit)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, record)
	return record, nil
}

func (c *Cache) FindBuilding(ctx context.Context, ref directory.BuildingRef) (*directory.Building, error) {
	return c.next.FindBuilding(ctx, ref)
}

func (c *Cache) BuildingsByManagerPhone(ctx context.Context, phone string) ([]*directory.Building, error) {
	return c.next.BuildingsByManagerPhone(ctx, phone)
}

func (c *Cache) UpsertOccupant(ctx context.Context, unit directory.UnitRef, data directory.OccupantData) (*directory.WriteResult, error) {
	stale := c.stalePhones(ctx, unit)
	res, err := c.next.UpsertOccupant(ctx, unit, data)
	if err != nil {
		return nil, err
	}
	return c.afterWrite(ctx, unit, stale, res), nil
}

func (c *Cache) AddFamilyMember(ctx context.Context, unit directory.UnitRef, member directory.FamilyMember) (*directory.WriteResult, error) {
	stale := c.stalePhones(ctx, unit)
	res, err := c.next.AddFamilyMember(ctx, unit, member)
	if err != nil {
		return nil, err
	}
	return c.afterWrite(ctx, unit, stale, res), nil
}

// Invalidate drops the unit key and the phone keys. Redis failures are logged
// and swallowed; the TTL bounds staleness.
func (c *Cache) Invalidate(ctx context.Context, source string, unit directory.UnitRef, phones ...string) {
	keys := make([]string, 0, len(phones)+1)
	if !unit.IsZero() {
		keys = append(keys, unitKey(unit))
	}
	for _, p := range phones {
		if n := id.NormalizePhone(p); n != "" {
			keys = append(keys, phoneKey(n))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "directory cache invalidation failed", "error", err, "keys", len(keys))
		return
	}
	if c.metrics != nil {
		c.metrics.RecordInvalidations(source, len(keys))
	}
}

func (c *Cache) afterWrite(ctx context.Context, unit directory.UnitRef, stale []string, res *directory.WriteResult) *directory.WriteResult {
	phones := append(stale, res.Record.Phones()...)
	c.Invalidate(ctx, "write", unit, phones...)
	if res.Compensate == nil {
		return res
	}
	undo := res.Compensate
	return &directory.WriteResult{
		Record: res.Record,
		Compensate: func(ctx context.Context) error {
			err := undo(ctx)
			c.Invalidate(ctx, "write", unit, phones...)
			return err
		},
	}
}

// stalePhones reads the current record from the backend, bypassing the
// cache, so phones that a write removes are invalidated too.
func (c *Cache) stalePhones(ctx context.Context, unit directory.UnitRef) []string {
	current, err := c.next.GetUnit(ctx, unit)
	if err != nil {
		return nil
	}
	return current.Phones()
}

func (c *Cache) get(ctx context.Context, op, key string, dst any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "directory cache read failed", "error", err, "operation", op)
		}
		c.recordMiss(op)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.WarnContext(ctx, "directory cache entry undecodable", "error", err, "operation", op)
		c.recordMiss(op)
		return false
	}
	if c.metrics != nil {
		c.metrics.RecordCacheHit(op)
	}
	return true
}

func (c *Cache) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "directory cache write failed", "error", err)
	}
}

func (c *Cache) recordMiss(op string) {
	if c.metrics != nil {
		c.metrics.RecordCacheMiss(op)
	}
}

func phoneKey(phone string) string {
	return phoneKeyPrefix + id.NormalizePhone(phone)
}

func unitKey(unit directory.UnitRef) string {
	return fmt.Sprintf("%s%s", unitKeyPrefix, unit.String())
}

var _ directory.Directory = (*Cache)(nil)
