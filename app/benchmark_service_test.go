package app_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rngbench/app"
	"rngbench/domain/core"
	"rngbench/domain/run"
	"rngbench/domain/sample"
	"rngbench/domain/verdict"
	"rngbench/internal/testkit"
	"rngbench/ports"
)

func TestBenchmarkEveryGenerator(t *testing.T) {
	kit := testkit.NewTestKit()

	report, err := kit.BenchmarkService(2).Benchmark(context.Background(), app.BenchmarkRequest{Samples: 4096})
	require.NoError(t, err)

	require.Len(t, report.Entries, len(kit.Registry().Names()))
	for _, e := range report.Entries {
		assert.True(t, e.OK(), "%s: %s", e.Generator, e.Error)
		assert.Equal(t, 4096, e.Bits)
		assert.GreaterOrEqual(t, e.MeanBit, 0.0)
		assert.LessOrEqual(t, e.MeanBit, 1.0)
	}
	_, ok := report.Fastest()
	assert.True(t, ok)
}

func TestBenchmarkReportsFailuresPerGenerator(t *testing.T) {
	kit := testkit.NewTestKitWithEntropy(bytes.NewReader(nil))

	report, err := kit.BenchmarkService(1).Benchmark(context.Background(), app.BenchmarkRequest{
		Generators: []string{"lcg", "system", "pcg32"},
		Samples:    1024,
	})
	require.NoError(t, err)
	require.Len(t, report.Entries, 3)

	assert.True(t, report.Entries[0].OK())
	assert.False(t, report.Entries[1].OK())
	assert.True(t, report.Entries[2].OK())
}

func TestBenchmarkValidation(t *testing.T) {
	svc := testkit.NewTestKit().BenchmarkService(1)

	_, err := svc.Benchmark(context.Background(), app.BenchmarkRequest{Samples: 0})
	assert.True(t, core.IsConfigurationError(err))

	_, err = svc.Benchmark(context.Background(), app.BenchmarkRequest{Generators: []string{"nope"}, Samples: 10})
	assert.ErrorIs(t, err, core.ErrUnknownGenerator)
}

func TestCompareBuildsMatrix(t *testing.T) {
	kit := testkit.NewTestKit()
	svc := kit.BenchmarkService(2)
	ctx := context.Background()

	comparison, err := svc.Compare(ctx, app.CompareRequest{
		Generators: []string{"lcg", "splitmix64", "pcg32"},
		Tests:      []string{"monobit", "nist_runs", "frequency_test"},
		Samples:    8192,
	})
	require.NoError(t, err)

	m := comparison.Manifest
	assert.Equal(t, []string{"nist_monobit", "nist_runs", "frequency_test"}, m.Tests)
	require.Len(t, comparison.Cells, 9)
	for i, gen := range m.Generators {
		for j, cell := range comparison.Row(i) {
			assert.Equal(t, gen, cell.Generator)
			assert.Equal(t, m.Tests[j], cell.TestName)
			assert.NotEqual(t, verdict.StatusError, cell.Status, "%s/%s: %s", gen, cell.TestName, cell.Error)
			assert.NotEmpty(t, cell.Status)
		}
	}

	stored, err := svc.GetComparison(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, comparison.Cells, stored.Cells)
}

func TestCompareDefaultsToEverything(t *testing.T) {
	kit := testkit.NewTestKit()

	comparison, err := kit.BenchmarkService(4).Compare(context.Background(), app.CompareRequest{
		Generators: []string{"splitmix64"},
		Samples:    2048,
	})
	require.NoError(t, err)
	assert.Len(t, comparison.Manifest.Tests, len(kit.Battery().Tests()))
	assert.Len(t, comparison.Cells, len(kit.Battery().Tests()))
}

func TestCompareMarksBrokenGenerators(t *testing.T) {
	kit := testkit.NewTestKitWithEntropy(bytes.NewReader(nil))

	comparison, err := kit.BenchmarkService(2).Compare(context.Background(), app.CompareRequest{
		Generators: []string{"system", "lcg"},
		Tests:      []string{"monobit", "runs"},
		Samples:    1024,
	})
	require.NoError(t, err)

	for _, cell := range comparison.Row(0) {
		assert.Equal(t, verdict.StatusError, cell.Status)
		assert.NotEmpty(t, cell.Error)
		assert.False(t, cell.Passed)
	}
	for _, cell := range comparison.Row(1) {
		assert.NotEqual(t, verdict.StatusError, cell.Status)
	}
}

func TestCompareReportsProgress(t *testing.T) {
	kit := testkit.NewTestKit()
	id := core.NewBenchmarkID()

	var mu sync.Mutex
	var seen []int
	comparison, err := kit.BenchmarkService(2).Compare(context.Background(), app.CompareRequest{
		ID:         id,
		Generators: []string{"lcg", "pcg32"},
		Tests:      []string{"nist_monobit", "nist_runs", "frequency_test"},
		Samples:    2048,
		OnCell: func(cell run.Cell, done, total int) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, 6, total)
			seen = append(seen, done)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, id, comparison.Manifest.ID)
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6}, seen)
}

func TestCompareValidation(t *testing.T) {
	svc := testkit.NewTestKit().BenchmarkService(1)
	ctx := context.Background()

	_, err := svc.Compare(ctx, app.CompareRequest{Tests: []string{"nist_bogus"}, Samples: 100})
	assert.ErrorIs(t, err, core.ErrUnknownTest)

	_, err = svc.Compare(ctx, app.CompareRequest{Generators: []string{"lcg"}, Samples: 0})
	assert.True(t, core.IsConfigurationError(err))

	_, err = svc.GetComparison(ctx, core.NewBenchmarkID())
	assert.ErrorIs(t, err, core.ErrComparisonNotFound)
}

// brokenTest wraps a battery so one test fails outside its Outcome
type brokenTest struct {
	ports.BatteryPort
	name string
}

func (b brokenTest) Run(ctx context.Context, test string, bits sample.BitStream, floats []float64, params map[string]interface{}) (verdict.Outcome, error) {
	if test == b.name {
		return verdict.Outcome{}, errors.New("worker lost")
	}
	return b.BatteryPort.Run(ctx, test, bits, floats, params)
}

func TestCompareKeepsFinishedCellsWhenOneFails(t *testing.T) {
	kit := testkit.NewTestKit()
	svc := app.NewBenchmarkService(kit.Generators(), brokenTest{kit.Battery(), "nist_runs"}, kit.Results(), 1, nil)

	var mu sync.Mutex
	var cells int
	comparison, err := svc.Compare(context.Background(), app.CompareRequest{
		Generators: []string{"lcg", "pcg32"},
		Tests:      []string{"nist_monobit", "nist_runs"},
		Samples:    2048,
		OnCell: func(run.Cell, int, int) {
			mu.Lock()
			cells++
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, cells)

	for i := range comparison.Manifest.Generators {
		row := comparison.Row(i)
		assert.NotEqual(t, verdict.StatusError, row[0].Status)
		assert.Equal(t, verdict.StatusError, row[1].Status)
		assert.Equal(t, "nist_runs", row[1].TestName)
		assert.Contains(t, row[1].Error, "worker lost")
	}

	_, err = svc.GetComparison(context.Background(), comparison.Manifest.ID)
	assert.NoError(t, err)
}
