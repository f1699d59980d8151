// Package redis keeps manager-phone selections in Redis with a TTL, so a
// selection survives restarts and is shared across replicas.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"unitgate/internal/invitation/models"
	"unitgate/internal/invitation/store"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/sentinel"
)

const keyPrefix = "invitation:selection:"

type SelectionStore struct {
	client redis.Cmdable
}

func NewSelectionStore(client redis.Cmdable) *SelectionStore {
	return &SelectionStore{client: client}
}

func (s *SelectionStore) Save(ctx context.Context, sel *models.Selection, ttl time.Duration) error {
	raw, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	if err := s.client.Set(ctx, key(sel.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save selection: %w", errors.Join(err, sentinel.ErrUnavailable))
	}
	return nil
}

func (s *SelectionStore) Get(ctx context.Context, selectionID id.SelectionID) (*models.Selection, error) {
	raw, err := s.client.Get(ctx, key(selectionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load selection: %w", errors.Join(err, sentinel.ErrUnavailable))
	}
	var sel models.Selection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	return &sel, nil
}

// Consume relies on DEL reporting how many keys it removed, so only one
// caller sees 1.
func (s *SelectionStore) Consume(ctx context.Context, selectionID id.SelectionID) error {
	n, err := s.client.Del(ctx, key(selectionID)).Result()
	if err != nil {
		return fmt.Errorf("consume selection: %w", errors.Join(err, sentinel.ErrUnavailable))
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func key(selectionID id.SelectionID) string {
	return keyPrefix + selectionID.String()
}

var _ store.SelectionStore = (*SelectionStore)(nil)
