// Package battery runs NIST SP 800-22 style randomness tests over bit streams,
// plus two lightweight float checks kept for older reports.
//
// Every test is a pure function of its input. Undersized input yields a
// failed Outcome with StatusInsufficient rather than an error; the only error
// Run returns is an unknown test name.
package battery

import (
	"context"
	"fmt"
	"strings"

	"rngbench/domain/core"
	"rngbench/domain/sample"
	"rngbench/domain/verdict"
	"rngbench/ports"
)

// TestName identifies a battery test
type TestName string

const (
	Monobit                 TestName = "nist_monobit"
	BlockFrequency          TestName = "nist_block_frequency"
	Runs                    TestName = "nist_runs"
	LongestRun              TestName = "nist_longest_run"
	CumulativeSums          TestName = "nist_cumulative_sums"
	ApproximateEntropy      TestName = "nist_approximate_entropy"
	MatrixRank              TestName = "nist_matrix_rank"
	Spectral                TestName = "nist_dft"
	NonOverlappingTemplate  TestName = "nist_non_overlapping_template"
	OverlappingTemplate     TestName = "nist_overlapping_template"
	Universal               TestName = "nist_universal"
	LinearComplexity        TestName = "nist_linear_complexity"
	Serial                  TestName = "nist_serial"
	RandomExcursions        TestName = "nist_random_excursions"
	RandomExcursionsVariant TestName = "nist_random_excursions_variant"

	// Legacy float checks with ad hoc scores
	Frequency  TestName = "frequency_test"
	Uniformity TestName = "uniformity_test"
)

// All lists every test in display order
var All = []TestName{
	Monobit, BlockFrequency, Runs, LongestRun, CumulativeSums,
	ApproximateEntropy, MatrixRank, Spectral, NonOverlappingTemplate,
	OverlappingTemplate, Universal, LinearComplexity, Serial,
	RandomExcursions, RandomExcursionsVariant, Frequency, Uniformity,
}

// NIST lists the bit-stream tests
func NIST() []TestName {
	out := make([]TestName, 0, len(All))
	for _, t := range All {
		if !t.IsLegacy() {
			out = append(out, t)
		}
	}
	return out
}

// IsLegacy reports whether the test scores floats with a deviation heuristic
func (t TestName) IsLegacy() bool {
	return t == Frequency || t == Uniformity
}

// ParseTestName resolves a name, accepting the short form without "nist_"
func ParseTestName(s string) (TestName, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range All {
		if string(t) == s || strings.TrimPrefix(string(t), "nist_") == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownTest, s)
}

// Minimum input sizes shared by several tests
const (
	minBits           = 100
	minLongestRunBits = 128
)

type testFunc func(bits sample.BitStream, floats []float64, p Params) verdict.Outcome

type test struct {
	description string
	minBits     int
	run         testFunc
}

var registry = map[TestName]test{
	Monobit:                 {"Proportion of ones versus zeros", minBits, monobit},
	BlockFrequency:          {"Proportion of ones within M-bit blocks", minBits, blockFrequency},
	Runs:                    {"Number of runs of identical bits", minBits, runs},
	LongestRun:              {"Longest run of ones within blocks", minLongestRunBits, longestRun},
	CumulativeSums:          {"Maximal excursion of the random walk, forward and reverse", minBits, cumulativeSums},
	ApproximateEntropy:      {"Frequency of overlapping m and m+1 bit patterns", minBits, approximateEntropy},
	MatrixRank:              {"Rank of disjoint 32x32 binary matrices", rankMatrixBits, matrixRank},
	Spectral:                {"Periodic features in the discrete Fourier transform", minBits, spectral},
	NonOverlappingTemplate:  {"Occurrences of an aperiodic template, skipping past matches", defaultTemplateBlock, nonOverlappingTemplate},
	OverlappingTemplate:     {"Occurrences of the all-ones template, overlapping", overlappingBlock, overlappingTemplate},
	Universal:               {"Maurer's universal compressibility statistic", 0, universal},
	LinearComplexity:        {"Length of the shortest LFSR per block (Berlekamp-Massey)", 0, linearComplexity},
	Serial:                  {"Frequency of all overlapping m-bit patterns", minBits, serial},
	RandomExcursions:        {"Visits to states -4..4 per random walk cycle", 0, randomExcursions},
	RandomExcursionsVariant: {"Total visits to states -9..9 across the random walk", 0, randomExcursionsVariant},
	Frequency:               {"Chi-square of floats over 10 equal bins", 0, legacyFrequency},
	Uniformity:              {"Mean and variance of floats versus U(0,1)", 0, legacyUniformity},
}

// Info describes a test
type Info struct {
	Name        TestName `json:"name"`
	Description string   `json:"description"`
	Legacy      bool     `json:"legacy"`
	MinBits     int      `json:"min_bits,omitempty"`
}

// Describe lists every test in display order
func Describe() []Info {
	out := make([]Info, 0, len(All))
	for _, name := range All {
		t := registry[name]
		out = append(out, Info{Name: name, Description: t.description, Legacy: name.IsLegacy(), MinBits: t.minBits})
	}
	return out
}

// Run executes one test. Unknown names fail immediately with ErrUnknownTest;
// a panic inside a test becomes a StatusError outcome.
func Run(name TestName, bits sample.BitStream, floats []float64, params Params) (out verdict.Outcome, err error) {
	t, ok := registry[name]
	if !ok {
		return verdict.Outcome{}, fmt.Errorf("%w: %q", core.ErrUnknownTest, name)
	}

	defer func() {
		if r := recover(); r != nil {
			out = verdict.Failed(core.NewExecutionError(string(name), r))
			err = nil
		}
	}()

	return t.run(bits, floats, params), nil
}

// Battery adapts Run to ports.BatteryPort
type Battery struct{}

// New creates a Battery
func New() *Battery { return &Battery{} }

// Run resolves the test name and honors cancellation before starting; tests
// themselves are not interruptible
func (b *Battery) Run(ctx context.Context, test string, bits sample.BitStream, floats []float64, params map[string]interface{}) (verdict.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return verdict.Outcome{}, err
	}
	name, err := ParseTestName(test)
	if err != nil {
		return verdict.Outcome{}, err
	}
	return Run(name, bits, floats, Params(params))
}

// Resolve returns the canonical test name
func (b *Battery) Resolve(test string) (string, error) {
	name, err := ParseTestName(test)
	return string(name), err
}

// Tests lists the available tests
func (b *Battery) Tests() []ports.TestInfo {
	infos := Describe()
	out := make([]ports.TestInfo, len(infos))
	for i, info := range infos {
		out[i] = ports.TestInfo{
			Name:        string(info.Name),
			Description: info.Description,
			Legacy:      info.Legacy,
			MinBits:     info.MinBits,
		}
	}
	return out
}

func insufficient(name TestName, have, need int, stats verdict.Statistics) verdict.Outcome {
	stats.Set("n", have)
	stats.Set("required", need)
	return verdict.Insufficient(core.NewInsufficientDataError(string(name), have, need).Error(), stats)
}
