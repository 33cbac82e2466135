package postgres

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rngbench/domain/core"
	"rngbench/domain/run"
	"rngbench/domain/sample"
	"rngbench/domain/verdict"
)

func TestResultRowRoundTrip(t *testing.T) {
	var stats verdict.Statistics
	stats.Set("p_value", 0.42)
	stats.Set("ones", 512)

	bits := sample.BitStream{1, 0, 1, 1}
	original := &run.TestResult{
		ID:             core.NewResultID(),
		Generator:      "pcg32",
		TestName:       "nist_monobit",
		SamplesCount:   1024,
		Seed:           "(42,54)",
		Parameters:     map[string]interface{}{"block_size": float64(128)},
		ExecutionTime:  0.25,
		GenerationTime: 0.05,
		Bits:           bits,
		Stream:         core.ComputeStreamFingerprint(bits),
		Fingerprint:    run.NewFingerprint("pcg32", sample.SeedOf(42, 54), 1024, nil, run.CodeVersion),
		CreatedAt:      core.NewTimestamp(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)),
	}
	original.ApplyOutcome(verdict.FromPValue(0.42, stats))

	row, err := toResultRow(original)
	require.NoError(t, err)
	assert.False(t, row.ErrorMessage.Valid)
	assert.True(t, row.StreamFingerprint.Valid)
	assert.JSONEq(t, `[1,0,1,1]`, string(row.Bits))

	back, err := row.toResult()
	require.NoError(t, err)
	assert.Equal(t, original.ID, back.ID)
	assert.Equal(t, original.Parameters, back.Parameters)
	assert.Equal(t, original.Bits, back.Bits)
	assert.Equal(t, original.Stream, back.Stream)
	assert.Equal(t, original.Fingerprint, back.Fingerprint)
	assert.Equal(t, verdict.StatusPassed, back.Status)
	assert.True(t, original.CreatedAt.Time().Equal(back.CreatedAt.Time()))

	p, ok := back.PValue()
	require.True(t, ok)
	assert.Equal(t, 0.42, p)
}

func TestResultRowWithoutBits(t *testing.T) {
	r := &run.TestResult{ID: core.NewResultID(), Error: "boom", CreatedAt: core.Now()}
	r.ApplyOutcome(verdict.Failed(core.NewExecutionError("generate", "boom")))

	row, err := toResultRow(r)
	require.NoError(t, err)
	assert.Nil(t, row.Bits)
	assert.True(t, row.ErrorMessage.Valid)

	back, err := row.toResult()
	require.NoError(t, err)
	assert.Nil(t, back.Bits)
	assert.Equal(t, verdict.StatusError, back.Status)
}

func TestBuildListQuery(t *testing.T) {
	query, args := buildListQuery(run.ResultFilter{})
	assert.NotContains(t, query, "$1")
	assert.Empty(t, args)

	query, args = buildListQuery(run.ResultFilter{Generator: "lcg", TestName: "nist_runs", Limit: 5})
	assert.Contains(t, query, "generator = $1")
	assert.Contains(t, query, "test_name = $2")
	assert.Contains(t, query, "LIMIT $3")
	assert.Equal(t, []interface{}{"lcg", "nist_runs", 5}, args)

	query, args = buildListQuery(run.ResultFilter{TestName: "nist_dft"})
	assert.Contains(t, query, "test_name = $1")
	assert.Len(t, args, 1)
}

func TestDecodeComparison(t *testing.T) {
	m := run.NewManifest(core.NewBenchmarkID(), []string{"lcg"}, []string{"nist_monobit", "nist_runs"}, 100, "1", run.CodeVersion)
	c := run.NewComparison(m)
	c.Set(0, 1, run.Cell{Generator: "lcg", TestName: "nist_runs", Passed: true, Status: verdict.StatusPassed})

	manifestJSON, err := json.Marshal(c.Manifest)
	require.NoError(t, err)
	cellsJSON, err := json.Marshal(c.Cells)
	require.NoError(t, err)

	back, err := decodeComparison(manifestJSON, cellsJSON)
	require.NoError(t, err)
	assert.Equal(t, m.ID, back.Manifest.ID)
	assert.Equal(t, m.Tests, back.Manifest.Tests)
	assert.Equal(t, c.Cells, back.Cells)
	assert.Equal(t, []int{1}, back.PassCount())

	_, err = decodeComparison([]byte("{"), cellsJSON)
	assert.Error(t, err)
}
