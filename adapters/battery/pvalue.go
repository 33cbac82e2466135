package battery

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"rngbench/domain/sample"
)

// chiSquareP is the upper tail of the chi-square distribution, i.e.
// igamc(df/2, chi/2)
func chiSquareP(chi float64, df int) float64 {
	if df <= 0 || math.IsNaN(chi) {
		return 0
	}
	if chi <= 0 {
		return 1
	}
	return distuv.ChiSquared{K: float64(df)}.Survival(chi)
}

// erfcP converts a normalized deviation into a two-sided p-value
func erfcP(z float64) float64 {
	return math.Erfc(math.Abs(z) / math.Sqrt2)
}

func phi(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// chiSquare sums (observed - n*pi)^2 / (n*pi) over categories
func chiSquare(observed []int, n int, pi []float64) float64 {
	chi := 0.0
	for i, o := range observed {
		expected := float64(n) * pi[i]
		d := float64(o) - expected
		chi += d * d / expected
	}
	return chi
}

// partialSums returns S_1..S_n of the +/-1 mapped bits
func partialSums(bits sample.BitStream) []int {
	out := make([]int, len(bits))
	s := 0
	for i, b := range bits {
		s += 2*int(b) - 1
		out[i] = s
	}
	return out
}

// patternCounts counts the overlapping m-bit patterns of bits, wrapping
// around the end so every position starts a pattern
func patternCounts(bits sample.BitStream, m int) []int {
	counts := make([]int, 1<<uint(m))
	if m == 0 {
		counts[0] = len(bits)
		return counts
	}
	n := len(bits)
	mask := 1<<uint(m) - 1
	v := 0
	for i := 0; i < m-1; i++ {
		v = v<<1 | int(bits[i%n])
	}
	for i := 0; i < n; i++ {
		v = (v<<1 | int(bits[(i+m-1)%n])) & mask
		counts[v]++
	}
	return counts
}
