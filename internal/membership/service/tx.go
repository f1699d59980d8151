package service

import (
	"context"
	"sync"
	"time"

	"unitgate/internal/directory"
	"unitgate/internal/membership/store"
	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/platform/outbox"
)

// Stores are the write handles bound to one transaction.
type Stores struct {
	Requests  store.RequestStore
	Directory directory.Writer
	Outbox    outbox.Store
}

// TxRunner runs fn inside a transactional boundary. The Postgres runner
// binds every store to one *sql.Tx; the in-memory runner serializes callers.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

const defaultTxTimeout = 5 * time.Second

// InMemoryTx serializes mutations over in-memory stores. Directory writes
// are not rolled back by it; the service compensates them.
type InMemoryTx struct {
	mu      sync.Mutex
	stores  Stores
	timeout time.Duration
}

func NewInMemoryTx(stores Stores) *InMemoryTx {
	return &InMemoryTx{stores: stores, timeout: defaultTxTimeout}
}

func (t *InMemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx, t.stores)
}
