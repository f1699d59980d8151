package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists outbox entries. Append is called inside the business
// transaction; the rest is used by the worker.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	// FetchUnprocessed returns up to limit pending entries, oldest first.
	FetchUnprocessed(ctx context.Context, limit int) ([]*Entry, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error
	CountPending(ctx context.Context) (int64, error)
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
