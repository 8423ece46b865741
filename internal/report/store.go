package report

import (
	"context"
	"sync"

	"github.com/amsen20/adaptsched/internal/model"
)

// Store keeps the most recent reports in memory for the HTTP surface.
type Store struct {
	limit int

	mutex   sync.RWMutex
	reports []model.SlotReport
	summary *model.RunSummary
}

func NewStore(limit int) *Store {
	if limit < 1 {
		limit = 1
	}

	return &Store{limit: limit}
}

func (s *Store) Publish(_ context.Context, r *model.SlotReport) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.reports = append(s.reports, *r)
	if len(s.reports) > s.limit {
		s.reports = s.reports[len(s.reports)-s.limit:]
	}

	return nil
}

func (s *Store) SetSummary(summary *model.RunSummary) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	copied := *summary
	s.summary = &copied
}

func (s *Store) Summary() (model.RunSummary, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.summary == nil {
		return model.RunSummary{}, false
	}

	return *s.summary, true
}

func (s *Store) Reports() []model.SlotReport {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ret := make([]model.SlotReport, len(s.reports))
	copy(ret, s.reports)

	return ret
}

func (s *Store) Latest() (model.SlotReport, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if len(s.reports) == 0 {
		return model.SlotReport{}, false
	}

	return s.reports[len(s.reports)-1], true
}
