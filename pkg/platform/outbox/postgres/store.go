package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"unitgate/internal/platform/database"
	"unitgate/pkg/platform/outbox"
)

const maxBatch = 1000

// Store implements outbox.Store over a *sql.DB or a caller's *sql.Tx.
type Store struct {
	db database.DBTX
}

func New(db database.DBTX) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, entry *outbox.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ID, entry.AggregateType, entry.AggregateID, entry.EventType, entry.Payload, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// FetchUnprocessed locks the returned rows with SKIP LOCKED when run inside a
// transaction so concurrent workers split the backlog.
func (s *Store) FetchUnprocessed(ctx context.Context, limit int) ([]*outbox.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	limit = min(limit, maxBatch)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at, processed_at
		FROM outbox
		WHERE processed_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unprocessed entries: %w", err)
	}
	defer rows.Close()

	var entries []*outbox.Entry
	for rows.Next() {
		var (
			e           outbox.Entry
			processedAt sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt, &processedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		if processedAt.Valid {
			e.ProcessedAt = &processedAt.Time
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox entries: %w", err)
	}
	return entries, nil
}

func (s *Store) MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE outbox SET processed_at = $2 WHERE id = $1 AND processed_at IS NULL`, id, processedAt)
	if err != nil {
		return fmt.Errorf("mark outbox entry processed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("outbox entry not found or already processed: %s", id)
	}
	return nil
}

func (s *Store) CountPending(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outbox WHERE processed_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending entries: %w", err)
	}
	return n, nil
}

func (s *Store) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM outbox WHERE processed_at IS NOT NULL AND processed_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete processed entries: %w", err)
	}
	return res.RowsAffected()
}

var _ outbox.Store = (*Store)(nil)
