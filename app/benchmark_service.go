package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"rngbench/adapters/datakind"
	"rngbench/domain/core"
	"rngbench/domain/run"
	"rngbench/domain/sample"
	"rngbench/domain/verdict"
	"rngbench/internal"
	"rngbench/internal/executor"
	"rngbench/ports"
)

// BenchmarkService times generators and runs generator x test comparisons
type BenchmarkService struct {
	generators ports.GeneratorPort
	battery    ports.BatteryPort
	results    ports.ResultRepository
	workers    int
	logger     *internal.Logger
}

// BenchmarkRequest selects the generators to time. An empty list means all.
type BenchmarkRequest struct {
	Generators []string    `json:"generators,omitempty"`
	Samples    int         `json:"samples"`
	Seed       sample.Seed `json:"-"`
}

// CompareRequest selects the matrix dimensions. Empty lists mean all.
type CompareRequest struct {
	Generators []string               `json:"generators,omitempty"`
	Tests      []string               `json:"tests,omitempty"`
	Samples    int                    `json:"samples"`
	Seed       sample.Seed            `json:"-"`
	TestParams map[string]interface{} `json:"test_params,omitempty"`

	// ID pre-assigns the comparison ID; empty means a fresh one
	ID core.BenchmarkID `json:"-"`

	// OnCell is called as each cell completes, possibly from several
	// goroutines at once
	OnCell func(cell run.Cell, done, total int) `json:"-"`
}

// NewBenchmarkService creates a benchmark service running at most workers
// generators at once
func NewBenchmarkService(generators ports.GeneratorPort, battery ports.BatteryPort, results ports.ResultRepository, workers int, logger *internal.Logger) *BenchmarkService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &BenchmarkService{
		generators: generators,
		battery:    battery,
		results:    results,
		workers:    workers,
		logger:     logger,
	}
}

// Benchmark generates Samples bits from every selected generator in turn and
// reports throughput. A generator that fails gets an entry carrying its error
// and the run continues.
func (s *BenchmarkService) Benchmark(ctx context.Context, req BenchmarkRequest) (*run.BenchmarkReport, error) {
	if req.Samples <= 0 {
		return nil, core.NewConfigurationError("samples", fmt.Sprintf("must be positive, got %d", req.Samples))
	}
	infos, err := s.selectGenerators(req.Generators)
	if err != nil {
		return nil, err
	}

	report := &run.BenchmarkReport{
		ID:        core.NewBenchmarkID(),
		Samples:   req.Samples,
		Entries:   make([]run.BenchmarkEntry, 0, len(infos)),
		CreatedAt: core.Now(),
	}

	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry := run.BenchmarkEntry{Generator: info.Name}

		gen, err := s.generators.Generate(ctx, ports.GenerationRequest{
			Generator: info.Name,
			Seed:      seedFor(req.Seed, info),
			NBits:     req.Samples,
		})
		if err != nil {
			s.logger.Warn("[BenchmarkService] %s failed: %v", info.Name, err)
			entry.Error = err.Error()
			report.Entries = append(report.Entries, entry)
			continue
		}

		entry.Bits = len(gen.Bits)
		entry.Elapsed = core.Seconds(gen.Elapsed)
		if mean, err := stats.LoadRawData([]uint8(gen.Bits)).Mean(); err == nil {
			entry.MeanBit = mean
		}
		if entry.Elapsed > 0 {
			entry.BitsPerSecond = float64(entry.Bits) / entry.Elapsed
		}
		s.logger.Debug("[BenchmarkService] %s: %d bits in %.4fs", info.Name, entry.Bits, entry.Elapsed)
		report.Entries = append(report.Entries, entry)
	}

	return report, nil
}

// Compare generates one stream per generator and runs every selected test
// against it. Streams are produced by a bounded worker pool; test cells are
// admitted by cost through the concurrent executor. The finished matrix is
// stored and returned.
func (s *BenchmarkService) Compare(ctx context.Context, req CompareRequest) (*run.Comparison, error) {
	infos, err := s.selectGenerators(req.Generators)
	if err != nil {
		return nil, err
	}
	tests, err := s.selectTests(req.Tests)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	id := req.ID
	if id == "" {
		id = core.NewBenchmarkID()
	}
	manifest := run.NewManifest(id, names, tests, req.Samples, req.Seed.String(), run.CodeVersion)
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	comparison := run.NewComparison(manifest)

	log := s.logger
	log.Info("[BenchmarkService] comparison %s: %d generators x %d tests, %d bits",
		manifest.ID, len(names), len(tests), req.Samples)

	type stream struct {
		bits   sample.BitStream
		floats []float64
		err    error
	}
	streams := make([]stream, len(infos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, info := range infos {
		g.Go(func() error {
			gen, err := s.generators.Generate(gctx, ports.GenerationRequest{
				Generator: info.Name,
				Seed:      seedFor(req.Seed, info),
				NBits:     req.Samples,
			})
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				streams[i].err = err
				return nil
			}
			floats, err := datakind.ToFloats(samplesOf(gen))
			streams[i] = stream{bits: gen.Bits, floats: floats, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := len(infos) * len(tests)
	var done atomic.Int64
	finish := func(i, j int, cell run.Cell) {
		comparison.Set(i, j, cell)
		n := int(done.Add(1))
		if req.OnCell != nil {
			req.OnCell(cell, n, total)
		}
	}

	exec := executor.NewConcurrentExecutor(int64(s.workers)*executor.DefaultCost, log)
	jobs := make([]executor.Job, 0, total)
	for i := range infos {
		for j, test := range tests {
			st := streams[i]
			jobs = append(jobs, executor.Job{
				Name: fmt.Sprintf("%s/%s", names[i], test),
				Cost: executor.CostOf(test),
				Run: func(ctx context.Context) error {
					cell := run.Cell{Generator: names[i], TestName: test}
					if st.err != nil {
						cell.Status = verdict.StatusError
						cell.Error = st.err.Error()
						finish(i, j, cell)
						return nil
					}

					start := time.Now()
					outcome, err := s.battery.Run(ctx, test, st.bits, st.floats, req.TestParams)
					if err != nil {
						return err
					}
					result := &run.TestResult{Generator: names[i], TestName: test}
					result.ApplyOutcome(outcome)
					result.ExecutionTime = core.Seconds(time.Since(start))
					finish(i, j, run.CellFromResult(result))
					return nil
				},
			})
		}
	}

	for k, err := range exec.Execute(ctx, jobs) {
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		i, j := k/len(tests), k%len(tests)
		log.Warn("[BenchmarkService] comparison %s: %s/%s failed: %v", manifest.ID, names[i], tests[j], err)
		finish(i, j, run.Cell{
			Generator: names[i],
			TestName:  tests[j],
			Status:    verdict.StatusError,
			Error:     err.Error(),
		})
	}

	if err := s.results.SaveComparison(ctx, comparison); err != nil {
		return nil, fmt.Errorf("failed to save comparison: %w", err)
	}
	log.Info("[BenchmarkService] comparison %s finished, passes per generator %v", manifest.ID, comparison.PassCount())
	return comparison, nil
}

// GetComparison loads a stored comparison
func (s *BenchmarkService) GetComparison(ctx context.Context, id core.BenchmarkID) (*run.Comparison, error) {
	return s.results.GetComparison(ctx, id)
}

func (s *BenchmarkService) selectGenerators(names []string) ([]ports.GeneratorInfo, error) {
	all := s.generators.Generators()
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]ports.GeneratorInfo, len(all))
	for _, info := range all {
		byName[info.Name] = info
	}
	out := make([]ports.GeneratorInfo, 0, len(names))
	for _, n := range names {
		info, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrUnknownGenerator, n)
		}
		out = append(out, info)
	}
	return out, nil
}

func (s *BenchmarkService) selectTests(names []string) ([]string, error) {
	if len(names) == 0 {
		infos := s.battery.Tests()
		out := make([]string, len(infos))
		for i, t := range infos {
			out[i] = t.Name
		}
		return out, nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		canonical, err := s.battery.Resolve(n)
		if err != nil {
			return nil, err
		}
		out[i] = canonical
	}
	return out, nil
}

// seedFor falls back to the generator's reference seed when none was given
func seedFor(seed sample.Seed, info ports.GeneratorInfo) sample.Seed {
	if !seed.IsAbsent() || info.Seed == "" {
		return seed
	}
	parsed, err := sample.ParseSeed(info.Seed)
	if err != nil {
		return seed
	}
	return parsed
}
