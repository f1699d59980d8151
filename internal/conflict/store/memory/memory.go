package memory

import (
	"context"
	"slices"
	"sync"

	"unitgate/internal/conflict/models"
	"unitgate/internal/conflict/store"
	id "unitgate/pkg/domain"
	"unitgate/pkg/platform/sentinel"
)

type Store struct {
	mu      sync.RWMutex
	reports map[id.ReportID]*models.Report
}

func New() *Store {
	return &Store{reports: make(map[id.ReportID]*models.Report)}
}

func (s *Store) Create(_ context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.reports[r.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.reports[r.ID] = r.Clone()
	return nil
}

func (s *Store) Update(_ context.Context, r *models.Report, expected models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.reports[r.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != expected || current.Version != r.Version {
		return sentinel.ErrInvalidState
	}
	r.Version++
	s.reports[r.ID] = r.Clone()
	return nil
}

func (s *Store) FindByID(_ context.Context, reportID id.ReportID) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[reportID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return r.Clone(), nil
}

func (s *Store) List(_ context.Context, building id.BuildingID, status models.Status) ([]*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Report
	for _, r := range s.reports {
		if r.Unit.BuildingID == building && (status == "" || r.Status == status) {
			out = append(out, r.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *models.Report) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

var _ store.ReportStore = (*Store)(nil)
