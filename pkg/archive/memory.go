package archive

import (
	"context"
	"sort"
	"sync"

	"github.com/memslab/lasermill/pkg/errors"
)

// MemoryStore keeps reports in memory. Used in tests and when no
// archive is configured but report plumbing should still run.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]RunReport
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]RunReport)}
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, report RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.RunID] = report
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, runID string) (RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[runID]
	if !ok {
		return RunReport{}, errors.New(errors.ErrCodeNotFound, "run %s is not archived", runID)
	}
	return report, nil
}

// Recent implements Store.
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]RunReport, error) {
	if limit < 1 {
		limit = 10
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]RunReport, 0, len(s.reports))
	for _, r := range s.reports {
		reports = append(reports, r)
	}
	sort.Slice(reports, func(a, b int) bool {
		return reports[a].StartedAt.After(reports[b].StartedAt)
	})
	if len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

// Close implements Store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
