package battery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rngbench/adapters/prng"
	"rngbench/domain/core"
	"rngbench/domain/sample"
	"rngbench/domain/verdict"
	"rngbench/internal/bitpack"
	"rngbench/ports"
)

// splitMixBits draws n bits from SplitMix64, 64 bits per value, MSB first
func splitMixBits(t *testing.T, seed uint64, n int) sample.BitStream {
	t.Helper()
	bits, err := bitpack.ReadN(prng.NewSplitMix(seed), n, 64, true)
	require.NoError(t, err)
	return bits
}

func repeat(bit uint8, n int) sample.BitStream {
	out := make(sample.BitStream, n)
	for i := range out {
		out[i] = bit
	}
	return out
}

func TestBatteryPassesOnSplitMix(t *testing.T) {
	if testing.Short() {
		t.Skip("long bit stream")
	}
	bits := splitMixBits(t, 2, 1<<20)

	for _, name := range NIST() {
		t.Run(string(name), func(t *testing.T) {
			out, err := Run(name, bits, nil, nil)
			require.NoError(t, err)
			assert.True(t, out.Passed, "statistics: %v", out.Statistics.Map())
			assert.Equal(t, verdict.StatusPassed, out.Status)

			p, ok := out.PValue()
			require.True(t, ok)
			assert.GreaterOrEqual(t, p, verdict.SignificanceLevel)
			assert.InDelta(t, p, out.Score, 1e-12)
		})
	}
}

func TestMonobitBalancedStream(t *testing.T) {
	bits := append(repeat(0, 10000), repeat(1, 10000)...)

	out, err := Run(Monobit, bits, nil, nil)
	require.NoError(t, err)
	assert.True(t, out.Passed)
	assert.InDelta(t, 1.0, out.Score, 1e-12)

	ones, ok := out.Statistics.Get("ones")
	require.True(t, ok)
	assert.Equal(t, 10000, ones)
}

func TestConstantStreamsFail(t *testing.T) {
	ones := repeat(1, 1<<15)

	for _, name := range []TestName{Monobit, BlockFrequency, CumulativeSums, ApproximateEntropy, MatrixRank, Serial, OverlappingTemplate} {
		t.Run(string(name), func(t *testing.T) {
			out, err := Run(name, ones, nil, nil)
			require.NoError(t, err)
			assert.False(t, out.Passed)
			assert.Equal(t, verdict.StatusFailed, out.Status)
			assert.Less(t, out.Score, verdict.SignificanceLevel)
		})
	}
}

func TestMatrixRankAllOnes(t *testing.T) {
	out, err := Run(MatrixRank, repeat(1, 1<<15), nil, nil)
	require.NoError(t, err)
	assert.False(t, out.Passed)

	lower, _ := out.Statistics.Get("lower_rank")
	assert.Equal(t, 32, lower)
	density, _ := out.Statistics.Float("ones_density")
	assert.Equal(t, 1.0, density)
}

func TestRunsPreTestRejects(t *testing.T) {
	out, err := Run(Runs, repeat(1, 1000), nil, nil)
	require.NoError(t, err)
	assert.False(t, out.Passed)
	assert.Equal(t, verdict.StatusFailed, out.Status)
	assert.Zero(t, out.Score)
	assert.Contains(t, out.Error, "pre-test")
}

func TestNonOverlappingTemplateAllZeros(t *testing.T) {
	out, err := Run(NonOverlappingTemplate, repeat(0, 100000), nil, nil)
	require.NoError(t, err)
	assert.False(t, out.Passed)

	tmpl, _ := out.Statistics.Get("template")
	assert.Equal(t, "000000001", tmpl)
}

func TestNonOverlappingTemplateRejectsBadTemplate(t *testing.T) {
	out, err := Run(NonOverlappingTemplate, repeat(0, 10000), nil, Params{"template": "01x"})
	require.NoError(t, err)
	assert.False(t, out.Passed)
	assert.NotEmpty(t, out.Error)
}

func TestInsufficientInput(t *testing.T) {
	short := splitMixBits(t, 7, 64)

	for _, name := range NIST() {
		t.Run(string(name), func(t *testing.T) {
			out, err := Run(name, short, nil, nil)
			require.NoError(t, err)
			assert.False(t, out.Passed)
			assert.Equal(t, verdict.StatusInsufficient, out.Status)
			assert.Zero(t, out.Score)
			assert.NotEmpty(t, out.Error)
		})
	}
}

func TestInsufficientAtModerateLength(t *testing.T) {
	// enough for the simple tests, too short for the block-hungry ones
	bits := splitMixBits(t, 7, 2000)

	for _, name := range []TestName{Universal, LinearComplexity, RandomExcursions, RandomExcursionsVariant} {
		out, err := Run(name, bits, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, verdict.StatusInsufficient, out.Status, name)
	}
}

func TestLegacyChecksOnEvenlySpacedFloats(t *testing.T) {
	floats := make([]float64, 1000)
	for i := range floats {
		floats[i] = (float64(i) + 0.5) / float64(len(floats))
	}

	freq, err := Run(Frequency, nil, floats, nil)
	require.NoError(t, err)
	assert.True(t, freq.Passed)
	assert.InDelta(t, 1.0, freq.Score, 1e-12)

	uni, err := Run(Uniformity, nil, floats, nil)
	require.NoError(t, err)
	assert.True(t, uni.Passed)
	mean, _ := uni.Statistics.Float("mean")
	assert.InDelta(t, 0.5, mean, 1e-9)
}

func TestLegacyChecksOnSkewedFloats(t *testing.T) {
	floats := make([]float64, 500)
	for i := range floats {
		floats[i] = 0.05
	}

	freq, err := Run(Frequency, nil, floats, nil)
	require.NoError(t, err)
	assert.False(t, freq.Passed)
	assert.Zero(t, freq.Score)

	uni, err := Run(Uniformity, nil, floats, nil)
	require.NoError(t, err)
	assert.False(t, uni.Passed)

	empty, err := Run(Uniformity, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, verdict.StatusInsufficient, empty.Status)
}

func TestRunUnknownTest(t *testing.T) {
	_, err := Run("bogus", nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnknownTest))
	assert.True(t, core.IsConfigurationError(err))
}

func TestRunRecoversPanics(t *testing.T) {
	const name TestName = "panics"
	registry[name] = test{run: func(sample.BitStream, []float64, Params) verdict.Outcome {
		panic("boom")
	}}
	t.Cleanup(func() { delete(registry, name) })

	out, err := Run(name, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, verdict.StatusError, out.Status)
	assert.False(t, out.Passed)
	assert.Contains(t, out.Error, "boom")
}

func TestBatteryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Run(ctx, string(Monobit), repeat(1, 200), nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatteryPortResolvesShortNames(t *testing.T) {
	var port ports.BatteryPort = New()

	out, err := port.Run(context.Background(), "monobit", append(repeat(0, 500), repeat(1, 500)...), nil, map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, out.Passed)

	_, err = port.Run(context.Background(), "nist_bogus", nil, nil, nil)
	assert.ErrorIs(t, err, core.ErrUnknownTest)

	name, err := port.Resolve("dft")
	require.NoError(t, err)
	assert.Equal(t, string(Spectral), name)

	tests := port.Tests()
	require.Len(t, tests, len(All))
	assert.Equal(t, string(Monobit), tests[0].Name)
	assert.Equal(t, rankMatrixBits, tests[6].MinBits)
}

func TestParseTestName(t *testing.T) {
	tests := []struct {
		in   string
		want TestName
	}{
		{"nist_monobit", Monobit},
		{"monobit", Monobit},
		{" NIST_DFT ", Spectral},
		{"frequency_test", Frequency},
		{"random_excursions_variant", RandomExcursionsVariant},
	}
	for _, tt := range tests {
		got, err := ParseTestName(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseTestName("chi")
	assert.ErrorIs(t, err, core.ErrUnknownTest)
}

func TestDescribeCoversEveryTest(t *testing.T) {
	infos := Describe()
	require.Len(t, infos, len(All))
	assert.Len(t, NIST(), 15)
	for i, info := range infos {
		assert.Equal(t, All[i], info.Name)
		assert.NotEmpty(t, info.Description)
		assert.Equal(t, info.Name.IsLegacy(), info.Legacy)
	}
}

// piBits is the first 100 bits of the binary expansion of pi, the shared
// input of the SP 800-22 worked examples
const piBits = "1100100100001111110110101010001000100001011010001100001000110100110001001100011001100010100010111000"

func TestWorkedExamples(t *testing.T) {
	bits := mustBits(t, piBits)

	cases := []struct {
		name   TestName
		params Params
		stat   string
		want   float64
	}{
		{Monobit, nil, "p_value", 0.109599},
		{BlockFrequency, Params{"block_size": 10}, "p_value", 0.706438},
		{Runs, nil, "p_value", 0.500798},
		{CumulativeSums, nil, "p_value_forward", 0.219194},
		{CumulativeSums, nil, "p_value_reverse", 0.114866},
		{ApproximateEntropy, Params{"m": 2}, "p_value", 0.235301},
	}
	for _, tc := range cases {
		t.Run(string(tc.name)+"/"+tc.stat, func(t *testing.T) {
			out, err := Run(tc.name, bits, nil, tc.params)
			require.NoError(t, err)
			p, ok := out.Statistics.Float(tc.stat)
			require.True(t, ok)
			assert.InDelta(t, tc.want, p, 1e-6)
		})
	}
}

func TestWorkedExamplesShortInputs(t *testing.T) {
	apen := approximateEntropyM(mustBits(t, "0100110101"), 3)
	p, _ := apen.Statistics.Float("p_value")
	assert.InDelta(t, 0.261961, p, 1e-6)

	s := serialM(mustBits(t, "0011011101"), 3)
	p1, _ := s.Statistics.Float("p_value1")
	p2, _ := s.Statistics.Float("p_value2")
	assert.InDelta(t, 0.808792, p1, 1e-6)
	assert.InDelta(t, 0.670320, p2, 1e-6)
}

func TestPatternLengthOverrideBounds(t *testing.T) {
	bits := splitMixBits(t, 3, 1000)

	for _, name := range []TestName{Serial, ApproximateEntropy} {
		for _, m := range []int{40, 1 << 20, -3, 1} {
			out, err := Run(name, bits, nil, Params{"m": m})
			require.NoError(t, err)
			assert.False(t, out.Passed)
			assert.Equal(t, verdict.StatusFailed, out.Status)
			assert.Contains(t, out.Error, "m must be within")
		}
	}

	// floor(log2 1000) = 9: serial allows up to 7
	out, err := Run(Serial, bits, nil, Params{"m": 7})
	require.NoError(t, err)
	m, _ := out.Statistics.Get("m")
	assert.Equal(t, 7, m)
	assert.Empty(t, out.Error)

	out, err = Run(Serial, bits, nil, Params{"m": 8})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Error)
}
