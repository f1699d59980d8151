// Package memory holds in-process invitation stores for tests and local runs.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"unitgate/internal/directory"
	"unitgate/internal/invitation/models"
	"unitgate/internal/invitation/store"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/sentinel"
	"unitgate/pkg/requestcontext"
)

type LinkStore struct {
	mu    sync.RWMutex
	links map[id.InviteLinkID]*models.InviteLink
}

func NewLinkStore() *LinkStore {
	return &LinkStore{links: make(map[id.InviteLinkID]*models.InviteLink)}
}

func (s *LinkStore) Create(_ context.Context, l *models.InviteLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.links[l.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.links[l.ID] = l.Clone()
	return nil
}

func (s *LinkStore) FindByID(_ context.Context, linkID id.InviteLinkID) (*models.InviteLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.links[linkID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return l.Clone(), nil
}

func (s *LinkStore) MarkUsed(_ context.Context, l *models.InviteLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.links[l.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.IsUsed {
		return sentinel.ErrAlreadyUsed
	}
	s.links[l.ID] = l.Clone()
	return nil
}

func (s *LinkStore) ListByBuilding(_ context.Context, building id.BuildingID) ([]*models.InviteLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.InviteLink
	for _, l := range s.links {
		if l.Unit.BuildingID == building {
			out = append(out, l.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *models.InviteLink) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *LinkStore) HasUsedInBuilding(_ context.Context, phone string, building directory.BuildingRef) (bool, error) {
	p := id.NormalizePhone(phone)
	code := strings.TrimSpace(building.Code)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.links {
		if !l.IsUsed || p == "" || l.UsedByPhone != p {
			continue
		}
		if (!building.ID.IsNil() && l.Unit.BuildingID == building.ID) || (code != "" && strings.EqualFold(l.BuildingCode, code)) {
			return true, nil
		}
	}
	return false, nil
}

type FamilyStore struct {
	mu          sync.RWMutex
	invitations map[id.FamilyInvitationID]*models.FamilyInvitation
}

func NewFamilyStore() *FamilyStore {
	return &FamilyStore{invitations: make(map[id.FamilyInvitationID]*models.FamilyInvitation)}
}

func (s *FamilyStore) Create(_ context.Context, f *models.FamilyInvitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.invitations {
		if existing.ID == f.ID || existing.CodeHash == f.CodeHash {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.invitations[f.ID] = f.Clone()
	return nil
}

func (s *FamilyStore) FindByCodeHash(_ context.Context, codeHash string) (*models.FamilyInvitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.invitations {
		if f.CodeHash == codeHash {
			return f.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *FamilyStore) Update(_ context.Context, f *models.FamilyInvitation, expected models.FamilyStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.invitations[f.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != expected || current.Version != f.Version {
		return sentinel.ErrInvalidState
	}
	f.Version++
	s.invitations[f.ID] = f.Clone()
	return nil
}

func (s *FamilyStore) ListByUnit(_ context.Context, unit directory.UnitRef) ([]*models.FamilyInvitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.FamilyInvitation
	for _, f := range s.invitations {
		if f.Unit == unit {
			out = append(out, f.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *models.FamilyInvitation) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *FamilyStore) HasAcceptedInBuilding(_ context.Context, phone string, building directory.BuildingRef) (bool, error) {
	p := id.NormalizePhone(phone)
	if p == "" || building.ID.IsNil() {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.invitations {
		if f.Status == models.FamilyAccepted && f.InvitedPhone == p && f.Unit.BuildingID == building.ID {
			return true, nil
		}
	}
	return false, nil
}

// SelectionStore expires entries lazily against the request time.
type SelectionStore struct {
	mu         sync.Mutex
	selections map[id.SelectionID]selectionEntry
}

type selectionEntry struct {
	selection *models.Selection
	expiresAt time.Time
}

func NewSelectionStore() *SelectionStore {
	return &SelectionStore{selections: make(map[id.SelectionID]selectionEntry)}
}

func (s *SelectionStore) Save(ctx context.Context, sel *models.Selection, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sel
	cp.Buildings = slices.Clone(sel.Buildings)
	s.selections[sel.ID] = selectionEntry{selection: &cp, expiresAt: requestcontext.Now(ctx).Add(ttl)}
	return nil
}

func (s *SelectionStore) Get(ctx context.Context, selectionID id.SelectionID) (*models.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(ctx, selectionID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *e.selection
	cp.Buildings = slices.Clone(e.selection.Buildings)
	return &cp, nil
}

func (s *SelectionStore) Consume(ctx context.Context, selectionID id.SelectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(ctx, selectionID); !ok {
		return sentinel.ErrNotFound
	}
	delete(s.selections, selectionID)
	return nil
}

func (s *SelectionStore) live(ctx context.Context, selectionID id.SelectionID) (selectionEntry, bool) {
	e, ok := s.selections[selectionID]
	if !ok {
		return selectionEntry{}, false
	}
	if !requestcontext.Now(ctx).Before(e.expiresAt) {
		delete(s.selections, selectionID)
		return selectionEntry{}, false
	}
	return e, true
}

var (
	_ store.LinkStore      = (*LinkStore)(nil)
	_ store.FamilyStore    = (*FamilyStore)(nil)
	_ store.SelectionStore = (*SelectionStore)(nil)
)
