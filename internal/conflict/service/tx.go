package service

import (
	"context"
	"sync"
	"time"

	"unitgate/internal/conflict/store"
	"unitgate/internal/directory"
	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/platform/outbox"
)

// Stores are the write handles bound to one transaction.
type Stores struct {
	Reports   store.ReportStore
	// Directory reads inside the transaction see the caller's own writes.
	Directory directory.Directory
	Outbox    outbox.Store
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

const defaultTxTimeout = 5 * time.Second

// InMemoryTx serializes mutations over in-memory stores.
type InMemoryTx struct {
	mu     sync.Mutex
	stores Stores
}

func NewInMemoryTx(stores Stores) *InMemoryTx {
	return &InMemoryTx{stores: stores}
}

func (t *InMemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTxTimeout)
		defer cancel()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx, t.stores)
}
