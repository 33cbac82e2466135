package ports

import (
	"context"

	"rngbench/domain/core"
	"rngbench/domain/run"
)

// ResultRepository persists test results and comparison runs
type ResultRepository interface {
	// SaveResult inserts or replaces a result by ID
	SaveResult(ctx context.Context, result *run.TestResult) error

	// GetResult retrieves a result; a missing ID yields core.ErrResultNotFound
	GetResult(ctx context.Context, id core.ResultID) (*run.TestResult, error)

	// ListResults returns results newest first, narrowed by the filter
	ListResults(ctx context.Context, filter run.ResultFilter) ([]*run.TestResult, error)

	// SaveComparison stores a finished comparison matrix
	SaveComparison(ctx context.Context, comparison *run.Comparison) error

	// GetComparison retrieves a comparison by its manifest ID
	GetComparison(ctx context.Context, id core.BenchmarkID) (*run.Comparison, error)
}
