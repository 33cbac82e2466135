package app

import (
	"context"
	"fmt"
	"time"

	"rngbench/adapters/datakind"
	"rngbench/domain/core"
	"rngbench/domain/run"
	"rngbench/domain/sample"
	"rngbench/domain/verdict"
	"rngbench/internal"
	"rngbench/ports"
)

// TestService runs one battery test against one generator and stores the result
type TestService struct {
	generators ports.GeneratorPort
	battery    ports.BatteryPort
	results    ports.ResultRepository
	logger     *internal.Logger
}

// RunTestRequest defines the inputs of a single test run
type RunTestRequest struct {
	Generator    string                 `json:"generator"`
	TestName     string                 `json:"test_name"`
	SamplesCount int                    `json:"samples_count"`
	Seed         sample.Seed            `json:"-"`
	Parameters   map[string]uint64      `json:"parameters,omitempty"`
	TestParams   map[string]interface{} `json:"test_params,omitempty"`
	BitsPerValue int                    `json:"bits_per_value,omitempty"`

	// KeepBits stores the generated stream on the result
	KeepBits bool `json:"keep_bits,omitempty"`
}

// NewTestService creates a test service
func NewTestService(generators ports.GeneratorPort, battery ports.BatteryPort, results ports.ResultRepository, logger *internal.Logger) *TestService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &TestService{
		generators: generators,
		battery:    battery,
		results:    results,
		logger:     logger,
	}
}

// RunTest generates SamplesCount bits, converts them to the representations
// the test needs, scores them and persists the result.
//
// Request validation errors (unknown test, bad sample count) are returned.
// Once validation passes every failure becomes a stored result with
// StatusError: a generator that cannot produce its stream still yields a
// record explaining why.
func (s *TestService) RunTest(ctx context.Context, req RunTestRequest) (*run.TestResult, error) {
	testName, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	req.TestName = testName

	start := time.Now()
	result := &run.TestResult{
		ID:           core.NewResultID(),
		Generator:    req.Generator,
		TestName:     req.TestName,
		SamplesCount: req.SamplesCount,
		Seed:         req.Seed.String(),
		Parameters:   req.TestParams,
		Fingerprint:  run.NewFingerprint(req.Generator, req.Seed, req.SamplesCount, req.Parameters, run.CodeVersion),
		CreatedAt:    core.Now(),
	}

	gen, err := s.generators.Generate(ctx, ports.GenerationRequest{
		Generator:    req.Generator,
		Seed:         req.Seed,
		NBits:        req.SamplesCount,
		Params:       req.Parameters,
		BitsPerValue: req.BitsPerValue,
	})
	if err != nil {
		if core.IsConfigurationError(err) || ctx.Err() != nil {
			return nil, err
		}
		s.logger.Warn("[TestService] generation failed for %s: %v", req.Generator, err)
		return s.saveError(ctx, result, start, err)
	}
	result.GenerationTime = core.Seconds(gen.Elapsed)

	set := samplesOf(gen)
	bits, err := datakind.ToBits(set)
	if err != nil {
		return s.saveError(ctx, result, start, err)
	}
	floats, err := datakind.ToFloats(set)
	if err != nil {
		return s.saveError(ctx, result, start, err)
	}

	outcome, err := s.battery.Run(ctx, req.TestName, bits, floats, req.TestParams)
	if err != nil {
		return nil, err
	}

	result.ApplyOutcome(outcome)
	result.ExecutionTime = core.Seconds(time.Since(start))
	result.Stream = core.ComputeStreamFingerprint(bits)
	if req.KeepBits {
		result.Bits = bits
	}

	s.logger.Debug("[TestService] %s/%s passed=%v score=%.4f in %.3fs",
		req.Generator, req.TestName, result.Passed, result.Score, result.ExecutionTime)

	if err := s.results.SaveResult(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save test result: %w", err)
	}
	return result, nil
}

// GetResult loads a stored result
func (s *TestService) GetResult(ctx context.Context, id core.ResultID) (*run.TestResult, error) {
	return s.results.GetResult(ctx, id)
}

// ListResults lists stored results, newest first
func (s *TestService) ListResults(ctx context.Context, filter run.ResultFilter) ([]*run.TestResult, error) {
	return s.results.ListResults(ctx, filter)
}

func (s *TestService) validate(req RunTestRequest) (string, error) {
	if req.Generator == "" {
		return "", core.NewConfigurationError("generator", "is required")
	}
	if req.SamplesCount <= 0 {
		return "", core.NewConfigurationError("samples_count", fmt.Sprintf("must be positive, got %d", req.SamplesCount))
	}
	return s.battery.Resolve(req.TestName)
}

func (s *TestService) saveError(ctx context.Context, result *run.TestResult, start time.Time, cause error) (*run.TestResult, error) {
	result.ApplyOutcome(verdict.Failed(cause))
	result.SamplesCount = 0
	result.ExecutionTime = core.Seconds(time.Since(start))
	if err := s.results.SaveResult(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save error result: %w", err)
	}
	return result, nil
}

// samplesOf returns the generator's raw output when it is not a bit stream,
// so float tests see the original values rather than re-chunked bits
func samplesOf(gen *ports.Generation) sample.SampleSet {
	if gen.Samples != nil {
		return *gen.Samples
	}
	return sample.BitsSet(gen.Bits)
}
