package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"unitgate/internal/directory"
	"unitgate/internal/membership/models"
	"unitgate/internal/membership/store"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/sentinel"
)

// Store keeps requests in memory. Reads and writes hand out copies.
type Store struct {
	mu       sync.RWMutex
	requests map[id.RequestID]*models.Request
}

func New() *Store {
	return &Store{requests: make(map[id.RequestID]*models.Request)}
}

func (s *Store) Create(_ context.Context, r *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[r.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	if s.activeDuplicate(r) {
		return sentinel.ErrAlreadyUsed
	}
	s.requests[r.ID] = r.Clone()
	return nil
}

func (s *Store) Update(_ context.Context, r *models.Request, expected models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.requests[r.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != expected || current.Version != r.Version {
		return sentinel.ErrInvalidState
	}
	if r.IsActive() && s.activeDuplicate(r) {
		return sentinel.ErrAlreadyUsed
	}
	r.Version++
	s.requests[r.ID] = r.Clone()
	return nil
}

// activeDuplicate reports another active request of the same applicant on
// the same unit. Caller holds the lock.
func (s *Store) activeDuplicate(r *models.Request) bool {
	if !r.IsActive() {
		return false
	}
	for _, other := range s.requests {
		if other.ID != r.ID && other.IsActive() &&
			other.ApplicantPhone == r.ApplicantPhone &&
			other.BuildingID == r.BuildingID &&
			other.UnitNumber == r.UnitNumber {
			return true
		}
	}
	return false
}

func (s *Store) FindByID(_ context.Context, requestID id.RequestID) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return r.Clone(), nil
}

func (s *Store) ListByApplicant(_ context.Context, applicantPhone string) ([]*models.Request, error) {
	p := id.NormalizePhone(applicantPhone)
	return s.list(func(r *models.Request) bool { return r.ApplicantPhone == p }), nil
}

func (s *Store) ListByOwnerPhone(_ context.Context, phone string) ([]*models.Request, error) {
	p := id.NormalizePhone(phone)
	if p == "" {
		return nil, nil
	}
	return s.list(func(r *models.Request) bool {
		return r.OwnerPhoneNumber == p || r.OwnerOfRecordPhone == p
	}), nil
}

func (s *Store) ListManagerPending(_ context.Context, building id.BuildingID) ([]*models.Request, error) {
	return s.list(func(r *models.Request) bool {
		return r.BuildingID == building && store.AwaitsManager(r)
	}), nil
}

func (s *Store) ListSuggestedPending(_ context.Context, applicantPhone string) ([]*models.Request, error) {
	p := id.NormalizePhone(applicantPhone)
	return s.list(func(r *models.Request) bool {
		return r.ApplicantPhone == p && r.IsSuggested && r.Status == models.StatusPending
	}), nil
}

func (s *Store) HasApprovedInBuilding(_ context.Context, applicantPhone string, building directory.BuildingRef) (bool, error) {
	p := id.NormalizePhone(applicantPhone)
	code := strings.TrimSpace(building.Code)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.requests {
		if r.ApplicantPhone != p || !r.Status.IsApproved() {
			continue
		}
		if (!building.ID.IsNil() && r.BuildingID == building.ID) || (code != "" && strings.EqualFold(r.BuildingCode, code)) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) list(keep func(*models.Request) bool) []*models.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Request
	for _, r := range s.requests {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *models.Request) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

var _ store.RequestStore = (*Store)(nil)
