package battery

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"rngbench/domain/sample"
	"rngbench/domain/verdict"
)

// spectralModuli returns |DFT| of the +/-1 mapped bits for the first n/2
// frequencies
func spectralModuli(bits sample.BitStream) []float64 {
	n := len(bits)
	x := make([]float64, n)
	for i, b := range bits {
		x[i] = 2*float64(b) - 1
	}
	coeffs := fourier.NewFFT(n).Coefficients(nil, x)

	out := make([]float64, n/2)
	for k := range out {
		out[k] = cmplx.Abs(coeffs[k])
	}
	return out
}

func spectral(bits sample.BitStream, _ []float64, _ Params) verdict.Outcome {
	n := len(bits)
	if n < minBits {
		return insufficient(Spectral, n, minBits, verdict.Statistics{})
	}

	fn := float64(n)
	threshold := math.Sqrt(math.Log(1/0.05) * fn)
	n0 := 0.95 * fn / 2

	n1 := 0
	for _, m := range spectralModuli(bits) {
		if m < threshold {
			n1++
		}
	}
	d := (float64(n1) - n0) / math.Sqrt(fn*0.95*0.05/4)
	p := erfcP(d)

	var stats verdict.Statistics
	stats.Set("p_value", p)
	stats.Set("peaks_below_threshold", n1)
	stats.Set("expected_peaks", n0)
	stats.Set("threshold", threshold)
	stats.Set("d", d)
	return verdict.FromPValue(p, stats)
}
