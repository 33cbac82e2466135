package testkit

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"rngbench/domain/core"
	"rngbench/domain/run"
)

// InMemoryResultRepository implements ResultRepository with in-memory storage.
// Stored values are copied so callers cannot mutate them afterwards.
type InMemoryResultRepository struct {
	results     map[core.ResultID]run.TestResult
	comparisons map[core.BenchmarkID]run.Comparison
	mu          sync.RWMutex
}

func NewInMemoryResultRepository() *InMemoryResultRepository {
	return &InMemoryResultRepository{
		results:     make(map[core.ResultID]run.TestResult),
		comparisons: make(map[core.BenchmarkID]run.Comparison),
	}
}

func (s *InMemoryResultRepository) SaveResult(ctx context.Context, result *run.TestResult) error {
	if result == nil || result.ID == "" {
		return fmt.Errorf("result must have an ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results[result.ID] = *result
	return nil
}

func (s *InMemoryResultRepository) GetResult(ctx context.Context, id core.ResultID) (*run.TestResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, exists := s.results[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", core.ErrResultNotFound, id)
	}
	return &result, nil
}

func (s *InMemoryResultRepository) ListResults(ctx context.Context, filter run.ResultFilter) ([]*run.TestResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*run.TestResult, 0, len(s.results))
	for _, r := range s.results {
		if !filter.Matches(&r) {
			continue
		}
		results = append(results, &r)
	}

	// IDs are UUIDv7, so the tie-break keeps creation order within a clock tick
	sort.Slice(results, func(i, j int) bool {
		ti, tj := results[i].CreatedAt.Time(), results[j].CreatedAt.Time()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return results[i].ID > results[j].ID
	})

	if filter.Limit > 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}
	return results, nil
}

func (s *InMemoryResultRepository) SaveComparison(ctx context.Context, comparison *run.Comparison) error {
	if comparison == nil || comparison.Manifest == nil {
		return fmt.Errorf("comparison must carry a manifest")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *comparison
	cp.Cells = append([]run.Cell(nil), comparison.Cells...)
	s.comparisons[comparison.Manifest.ID] = cp
	return nil
}

func (s *InMemoryResultRepository) GetComparison(ctx context.Context, id core.BenchmarkID) (*run.Comparison, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comparison, exists := s.comparisons[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", core.ErrComparisonNotFound, id)
	}
	comparison.Cells = append([]run.Cell(nil), comparison.Cells...)
	return &comparison, nil
}

// Len returns the number of stored results
func (s *InMemoryResultRepository) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}
