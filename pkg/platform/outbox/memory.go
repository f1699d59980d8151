package outbox

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps entries in insertion order.
type MemoryStore struct {
	mu      sync.Mutex
	entries []*Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *entry
	s.entries = append(s.entries, &cp)
	return nil
}

func (s *MemoryStore) FetchUnprocessed(_ context.Context, limit int) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Entry, 0, limit)
	for _, e := range s.entries {
		if len(out) == limit {
			break
		}
		if e.IsPending() {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) MarkProcessed(_ context.Context, id uuid.UUID, processedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id && e.IsPending() {
			t := processedAt
			e.ProcessedAt = &t
			return nil
		}
	}
	return fmt.Errorf("outbox entry not found or already processed: %s", id)
}

func (s *MemoryStore) CountPending(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.entries {
		if e.IsPending() {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	s.entries = slices.DeleteFunc(s.entries, func(e *Entry) bool {
		return e.ProcessedAt != nil && e.ProcessedAt.Before(before)
	})
	return int64(n - len(s.entries)), nil
}

// Entries returns a copy of every entry, for tests.
func (s *MemoryStore) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = *e
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
