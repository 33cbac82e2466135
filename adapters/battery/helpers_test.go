package battery

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rngbench/domain/core"
	"rngbench/domain/sample"
)

func mustBits(t *testing.T, s string) sample.BitStream {
	t.Helper()
	b, err := sample.ParseBitStream(s)
	require.NoError(t, err)
	return b
}

func TestBerlekampMassey(t *testing.T) {
	assert.Equal(t, 4, berlekampMassey(mustBits(t, "1101011110001")))
	assert.Equal(t, 0, berlekampMassey(mustBits(t, "00000000")))
	assert.Equal(t, 8, berlekampMassey(mustBits(t, "00000001")))
	assert.Equal(t, 1, berlekampMassey(mustBits(t, "1111111111")))
	assert.Equal(t, 2, berlekampMassey(mustBits(t, "0101010101")))
}

func TestGF2Rank(t *testing.T) {
	identity := make([]uint32, 32)
	for i := range identity {
		identity[i] = 1 << uint(i)
	}
	assert.Equal(t, 32, gf2Rank(identity))
	assert.Equal(t, 0, gf2Rank(make([]uint32, 32)))

	dup := make([]uint32, 32)
	copy(dup, identity)
	dup[5] = dup[4]
	assert.Equal(t, 31, gf2Rank(dup))

	// the input is left untouched
	assert.Equal(t, uint32(1<<4), dup[4])
}

func TestPatternCountsWrapAround(t *testing.T) {
	bits := mustBits(t, "0011")
	assert.Equal(t, []int{1, 1, 1, 1}, patternCounts(bits, 2))
	assert.Equal(t, []int{4}, patternCounts(bits, 0))

	long := mustBits(t, "0110100110010110")
	for _, m := range []int{1, 3, 5} {
		total := 0
		for _, c := range patternCounts(long, m) {
			total += c
		}
		assert.Equal(t, len(long), total, "m=%d", m)
	}
}

func TestSpectralModuliMatchDirectDFT(t *testing.T) {
	bits := mustBits(t, "1100100100001111110110101010001000100001011010001100001000110100")
	got := spectralModuli(bits)
	require.Len(t, got, len(bits)/2)

	n := len(bits)
	for k := range got {
		var sum complex128
		for j, b := range bits {
			angle := -2 * math.Pi * float64(k*j) / float64(n)
			sum += complex(2*float64(b)-1, 0) * cmplx.Exp(complex(0, angle))
		}
		assert.InDelta(t, cmplx.Abs(sum), got[k], 1e-9, "k=%d", k)
	}
}

func TestChiSquareP(t *testing.T) {
	assert.Equal(t, 1.0, chiSquareP(0, 4))
	assert.Equal(t, 0.0, chiSquareP(3, 0))
	// df 2 reduces to exp(-x/2)
	assert.InDelta(t, math.Exp(-1.5), chiSquareP(3, 2), 1e-12)
	assert.Less(t, chiSquareP(1e4, 5), 1e-12)
}

func TestCusumP(t *testing.T) {
	assert.Equal(t, 1.0, cusumP(100, 0))
	assert.Less(t, cusumP(1000, 1000), 1e-6)
	assert.Greater(t, cusumP(10000, 50), 0.5)
}

func TestExcursionProbabilitiesSumToOne(t *testing.T) {
	for _, x := range excursionStates {
		total := 0.0
		for k := 0; k <= 5; k++ {
			total += excursionProbability(x, k)
		}
		assert.InDelta(t, 1.0, total, 1e-12, "x=%d", x)
	}
}

func TestNewWalkClosesFinalCycle(t *testing.T) {
	// sums: 1 0 -1 -2 -1 0 1
	w := newWalk(mustBits(t, "1000111"))
	assert.Equal(t, []int{1, 0, -1, -2, -1, 0, 1}, w.sums)
	assert.Equal(t, [][2]int{{0, 2}, {2, 6}, {6, 7}}, w.cycles)
}

func TestUniversalBlockLength(t *testing.T) {
	assert.Equal(t, 6, universalBlockLength(1000))
	assert.Equal(t, 6, universalBlockLength(904959))
	assert.Equal(t, 7, universalBlockLength(904960))
	assert.Equal(t, 8, universalBlockLength(2068480))
}

func TestParseTemplate(t *testing.T) {
	tmpl, err := parseTemplate("000000001")
	require.NoError(t, err)
	assert.Len(t, tmpl, 9)

	_, err = parseTemplate("")
	assert.Error(t, err)
	_, err = parseTemplate("0101010101010101010101010101010")
	assert.Error(t, err)
}

func TestParams(t *testing.T) {
	p := Params{"a": 3, "b": float64(7), "c": "11", "d": "x"}
	assert.Equal(t, 3, p.Int("a", 0))
	assert.Equal(t, 7, p.Int("b", 0))
	assert.Equal(t, 11, p.Int("c", 0))
	assert.Equal(t, 9, p.Int("d", 9))
	assert.Equal(t, 9, p.Int("missing", 9))
	assert.Equal(t, "3", p.String("a", ""))
	assert.Equal(t, "def", p.String("missing", "def"))
}

func TestParseParams(t *testing.T) {
	p, err := ParseParams([]string{"block_size=256", "template=000111", "m=4"})
	require.NoError(t, err)
	assert.Equal(t, 256, p["block_size"])
	assert.Equal(t, "000111", p["template"])
	assert.Equal(t, 4, p.Int("m", 0))

	_, err = ParseParams([]string{"nonsense"})
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
}
