package battery

import (
	"fmt"
	"math"

	"rngbench/domain/sample"
	"rngbench/domain/verdict"
)

// maxPatternLength caps the block length of the pattern tests; each run
// allocates 2^m counters
const maxPatternLength = 24

// patternLength picks the block length for the pattern tests: the override,
// else min(limit, floor(log2 n) - offset), never below 2. An override must
// lie within 2..max(2, floor(log2 n) - offset).
func patternLength(params Params, n, limit, offset int) (int, error) {
	ceiling := max(int(math.Floor(math.Log2(float64(n))))-offset, 2)
	m := params.Int("m", 0)
	if m == 0 {
		return min(limit, ceiling), nil
	}
	if bound := min(ceiling, maxPatternLength); m < 2 || m > bound {
		return 0, fmt.Errorf("m must be within 2..%d for %d bits, got %d", bound, n, m)
	}
	return m, nil
}

func phiM(bits sample.BitStream, m int) float64 {
	n := float64(len(bits))
	sum := 0.0
	for _, c := range patternCounts(bits, m) {
		if c == 0 {
			continue
		}
		pi := float64(c) / n
		sum += pi * math.Log(pi)
	}
	return sum
}

func approximateEntropy(bits sample.BitStream, _ []float64, params Params) verdict.Outcome {
	n := len(bits)
	if n < minBits {
		return insufficient(ApproximateEntropy, n, minBits, verdict.Statistics{})
	}
	m, err := patternLength(params, n, 10, 5)
	if err != nil {
		return verdict.Rejected(err.Error(), verdict.Statistics{})
	}
	return approximateEntropyM(bits, m)
}

func approximateEntropyM(bits sample.BitStream, m int) verdict.Outcome {
	n := len(bits)
	apen := phiM(bits, m) - phiM(bits, m+1)
	chi := 2 * float64(n) * (math.Ln2 - apen)
	p := chiSquareP(chi, 1<<uint(m))

	var stats verdict.Statistics
	stats.Set("p_value", p)
	stats.Set("approximate_entropy", apen)
	stats.Set("chi_square", chi)
	stats.Set("m", m)
	return verdict.FromPValue(p, stats)
}

// psiSquared is (2^m / n) * sum(counts^2) - n, with psi^2 of a
// non-positive length defined as 0
func psiSquared(bits sample.BitStream, m int) float64 {
	if m <= 0 {
		return 0
	}
	n := float64(len(bits))
	sum := 0.0
	for _, c := range patternCounts(bits, m) {
		sum += float64(c) * float64(c)
	}
	return math.Ldexp(sum, m)/n - n
}

func serial(bits sample.BitStream, _ []float64, params Params) verdict.Outcome {
	n := len(bits)
	if n < minBits {
		return insufficient(Serial, n, minBits, verdict.Statistics{})
	}
	m, err := patternLength(params, n, 16, 2)
	if err != nil {
		return verdict.Rejected(err.Error(), verdict.Statistics{})
	}
	return serialM(bits, m)
}

// serialM needs m >= 2
func serialM(bits sample.BitStream, m int) verdict.Outcome {
	psiM := psiSquared(bits, m)
	psiM1 := psiSquared(bits, m-1)
	psiM2 := psiSquared(bits, m-2)

	delta1 := psiM - psiM1
	delta2 := psiM - 2*psiM1 + psiM2
	p1 := chiSquareP(delta1, 1<<uint(m-1))
	p2 := chiSquareP(delta2, 1<<uint(m-2))

	var stats verdict.Statistics
	stats.Set("p_value", math.Min(p1, p2))
	stats.Set("p_value1", p1)
	stats.Set("p_value2", p2)
	stats.Set("delta1", delta1)
	stats.Set("delta2", delta2)
	stats.Set("m", m)
	passed := p1 >= verdict.SignificanceLevel && p2 >= verdict.SignificanceLevel
	return verdict.NewOutcome(passed, math.Min(p1, p2), stats)
}
