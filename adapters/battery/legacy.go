package battery

import (
	"math"

	"github.com/montanaflynn/stats"

	"rngbench/domain/sample"
	"rngbench/domain/verdict"
)

// Legacy checks keep their original ad hoc scoring: the score measures
// distance from the ideal rather than a p-value.
const (
	frequencyBins     = 10
	frequencyCritical = 16.919 // chi-square, df 9, alpha 0.05

	uniformMeanTolerance     = 0.05
	uniformVarianceTolerance = 0.02
)

func legacyFrequency(_ sample.BitStream, floats []float64, _ Params) verdict.Outcome {
	n := len(floats)
	if n == 0 {
		return insufficient(Frequency, 0, 1, verdict.Statistics{})
	}

	bins := make([]int, frequencyBins)
	for _, f := range floats {
		idx := int(f * frequencyBins)
		bins[min(max(idx, 0), frequencyBins-1)]++
	}
	expected := float64(n) / frequencyBins
	chi := 0.0
	for _, o := range bins {
		d := float64(o) - expected
		chi += d * d / expected
	}

	var st verdict.Statistics
	st.Set("chi_square", chi)
	st.Set("critical_value", frequencyCritical)
	st.Set("bins", bins)
	st.Set("expected_per_bin", expected)
	return verdict.NewOutcome(chi < frequencyCritical, 1-chi/frequencyCritical, st)
}

func legacyUniformity(_ sample.BitStream, floats []float64, _ Params) verdict.Outcome {
	if len(floats) == 0 {
		return insufficient(Uniformity, 0, 1, verdict.Statistics{})
	}

	data := stats.Float64Data(floats)
	mean, err := data.Mean()
	if err != nil {
		return verdict.Failed(err)
	}
	variance, err := data.PopulationVariance()
	if err != nil {
		return verdict.Failed(err)
	}

	meanDiff := math.Abs(mean - 0.5)
	varDiff := math.Abs(variance - 1.0/12)

	var st verdict.Statistics
	st.Set("mean", mean)
	st.Set("expected_mean", 0.5)
	st.Set("variance", variance)
	st.Set("expected_variance", 1.0/12)
	st.Set("mean_diff", meanDiff)
	st.Set("var_diff", varDiff)
	passed := meanDiff < uniformMeanTolerance && varDiff < uniformVarianceTolerance
	return verdict.NewOutcome(passed, 1-(meanDiff*10+varDiff*5), st)
}
