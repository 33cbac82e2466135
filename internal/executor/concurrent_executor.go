// Package executor runs batches of jobs under a cost-weighted concurrency
// budget. Cheap jobs share the budget; expensive ones take a larger slice of
// it so a comparison never runs several heavy tests at once.
package executor

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"rngbench/internal"
)

// DefaultCost is charged for jobs without an entry in the cost table
const DefaultCost = 3

// TestCosts weights battery tests by computational cost (1-10 scale)
func TestCosts() map[string]int64 {
	return map[string]int64{
		// Single pass over the stream
		"nist_monobit":         1,
		"nist_block_frequency": 1,
		"nist_runs":            1,
		"nist_longest_run":     1,
		"nist_cumulative_sums": 1,
		"frequency_test":       1,
		"uniformity_test":      1,

		// Random walk and template scans
		"nist_random_excursions":         2,
		"nist_random_excursions_variant": 2,
		"nist_overlapping_template":      2,
		"nist_non_overlapping_template":  2,
		"nist_universal":                 2,

		// Pattern tables and matrix work
		"nist_approximate_entropy": 3,
		"nist_serial":              4,
		"nist_matrix_rank":         4,

		// FFT and Berlekamp-Massey
		"nist_dft":               5,
		"nist_linear_complexity": 6,
	}
}

// Job is one unit of weighted work
type Job struct {
	Name string
	Cost int64
	Run  func(ctx context.Context) error
}

// ConcurrentExecutor manages weighted job execution
type ConcurrentExecutor struct {
	sem      *semaphore.Weighted
	capacity int64
	logger   *internal.Logger
}

// NewConcurrentExecutor creates an executor with the given cost capacity
func NewConcurrentExecutor(capacity int64, logger *internal.Logger) *ConcurrentExecutor {
	if capacity < 1 {
		capacity = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ConcurrentExecutor{
		sem:      semaphore.NewWeighted(capacity),
		capacity: capacity,
		logger:   logger,
	}
}

// Capacity returns the total cost budget
func (ce *ConcurrentExecutor) Capacity() int64 { return ce.capacity }

// CostOf looks up a job cost in the test table
func CostOf(name string) int64 {
	if c, ok := TestCosts()[name]; ok {
		return c
	}
	return DefaultCost
}

// Execute runs every job and returns one error slot per job. A failing job
// does not stop the others; only cancellation of ctx does. Queued jobs wait
// for capacity as long as ctx allows.
func (ce *ConcurrentExecutor) Execute(ctx context.Context, jobs []Job) []error {
	errs := make([]error, len(jobs))
	var g errgroup.Group

	for i, job := range jobs {
		cost := job.Cost
		if cost <= 0 {
			cost = DefaultCost
		}
		// a job larger than the budget would never be admitted
		if cost > ce.capacity {
			cost = ce.capacity
		}

		g.Go(func() error {
			if err := ce.sem.Acquire(ctx, cost); err != nil {
				errs[i] = fmt.Errorf("capacity unavailable for %s: %w", job.Name, err)
				return nil
			}
			defer ce.sem.Release(cost)

			start := time.Now()
			errs[i] = job.Run(ctx)
			ce.logger.Trace("[ConcurrentExecutor] %s finished (cost: %d, duration: %v)", job.Name, cost, time.Since(start))
			return nil
		})
	}

	_ = g.Wait()
	return errs
}
