package battery

import (
	"math"

	"rngbench/domain/sample"
	"rngbench/domain/verdict"
)

func monobit(bits sample.BitStream, _ []float64, _ Params) verdict.Outcome {
	n := len(bits)
	if n < minBits {
		return insufficient(Monobit, n, minBits, verdict.Statistics{})
	}

	ones := bits.Ones()
	s := 2*ones - n
	sObs := math.Abs(float64(s)) / math.Sqrt(float64(n))
	p := math.Erfc(sObs / math.Sqrt2)

	var stats verdict.Statistics
	stats.Set("p_value", p)
	stats.Set("test_statistic", sObs)
	stats.Set("ones", ones)
	stats.Set("zeros", n-ones)
	return verdict.FromPValue(p, stats)
}

const defaultFrequencyBlock = 128

func blockFrequency(bits sample.BitStream, _ []float64, params Params) verdict.Outcome {
	m := params.Int("block_size", defaultFrequencyBlock)
	n := len(bits)
	if m <= 0 || n < m || n < minBits {
		return insufficient(BlockFrequency, n, max(m, minBits), verdict.Statistics{})
	}

	blocks := n / m
	chi := 0.0
	for i := 0; i < blocks; i++ {
		pi := float64(bits[i*m:(i+1)*m].Ones()) / float64(m)
		chi += (pi - 0.5) * (pi - 0.5)
	}
	chi *= 4 * float64(m)
	p := chiSquareP(chi, blocks)

	var stats verdict.Statistics
	stats.Set("p_value", p)
	stats.Set("chi_square", chi)
	stats.Set("num_blocks", blocks)
	stats.Set("block_size", m)
	return verdict.FromPValue(p, stats)
}

func runs(bits sample.BitStream, _ []float64, _ Params) verdict.Outcome {
	n := len(bits)
	if n < minBits {
		return insufficient(Runs, n, minBits, verdict.Statistics{})
	}

	pi := bits.Mean()
	tau := 2 / math.Sqrt(float64(n))
	if math.Abs(pi-0.5) >= tau {
		var stats verdict.Statistics
		stats.Set("proportion", pi)
		stats.Set("tau", tau)
		return verdict.Rejected("pre-test failed: proportion of ones not close to 0.5", stats)
	}

	v := 1
	for i := 1; i < n; i++ {
		if bits[i] != bits[i-1] {
			v++
		}
	}
	expected := 2 * float64(n) * pi * (1 - pi)
	p := math.Erfc(math.Abs(float64(v)-expected) / (2 * math.Sqrt(2*float64(n)) * pi * (1 - pi)))

	var stats verdict.Statistics
	stats.Set("p_value", p)
	stats.Set("runs", v)
	stats.Set("expected_runs", expected)
	stats.Set("proportion", pi)
	return verdict.FromPValue(p, stats)
}

// longestRunTable holds the block size, category bounds and probabilities
// for one length regime
type longestRunTable struct {
	m  int
	v  []int
	pi []float64
}

func longestRunParams(n int) longestRunTable {
	switch {
	case n < 6272:
		return longestRunTable{8, []int{1, 2, 3, 4}, []float64{0.2148, 0.3672, 0.2305, 0.1875}}
	case n < 750000:
		return longestRunTable{128, []int{4, 5, 6, 7, 8, 9}, []float64{0.1174, 0.2430, 0.2493, 0.1752, 0.1027, 0.1124}}
	}
	return longestRunTable{10000, []int{10, 11, 12, 13, 14, 15, 16}, []float64{0.0882, 0.2092, 0.2483, 0.1933, 0.1208, 0.0675, 0.0727}}
}

func longestRun(bits sample.BitStream, _ []float64, _ Params) verdict.Outcome {
	n := len(bits)
	if n < minLongestRunBits {
		return insufficient(LongestRun, n, minLongestRunBits, verdict.Statistics{})
	}

	table := longestRunParams(n)
	k := len(table.v) - 1
	blocks := n / table.m
	freq := make([]int, k+1)

	for i := 0; i < blocks; i++ {
		longest, run := 0, 0
		for _, b := range bits[i*table.m : (i+1)*table.m] {
			if b == 1 {
				run++
				longest = max(longest, run)
			} else {
				run = 0
			}
		}
		switch {
		case longest <= table.v[0]:
			freq[0]++
		case longest >= table.v[k]:
			freq[k]++
		default:
			freq[longest-table.v[0]]++
		}
	}

	chi := chiSquare(freq, blocks, table.pi)
	p := chiSquareP(chi, k)

	var stats verdict.Statistics
	stats.Set("p_value", p)
	stats.Set("chi_square", chi)
	stats.Set("frequencies", freq)
	stats.Set("num_blocks", blocks)
	stats.Set("block_size", table.m)
	return verdict.FromPValue(p, stats)
}

func cumulativeSums(bits sample.BitStream, _ []float64, _ Params) verdict.Outcome {
	n := len(bits)
	if n < minBits {
		return insufficient(CumulativeSums, n, minBits, verdict.Statistics{})
	}

	forward, reverse := 0, 0
	s := 0
	for _, b := range bits {
		s += 2*int(b) - 1
		forward = max(forward, abs(s))
	}
	s = 0
	for i := n - 1; i >= 0; i-- {
		s += 2*int(bits[i]) - 1
		reverse = max(reverse, abs(s))
	}

	pForward := cusumP(n, forward)
	pReverse := cusumP(n, reverse)
	p := math.Min(pForward, pReverse)

	var stats verdict.Statistics
	stats.Set("p_value", p)
	stats.Set("p_value_forward", pForward)
	stats.Set("p_value_reverse", pReverse)
	stats.Set("max_excursion_forward", forward)
	stats.Set("max_excursion_reverse", reverse)
	return verdict.FromPValue(p, stats)
}

// cusumP evaluates the two-sum tail probability for a maximal excursion z.
// The summation bounds use truncating integer division.
func cusumP(n, z int) float64 {
	if z == 0 {
		return 1
	}
	sqrtN := math.Sqrt(float64(n))
	fz := float64(z)

	sum1 := 0.0
	for k := (-n/z + 1) / 4; k <= (n/z-1)/4; k++ {
		fk := float64(k)
		sum1 += phi((4*fk+1)*fz/sqrtN) - phi((4*fk-1)*fz/sqrtN)
	}
	sum2 := 0.0
	for k := (-n/z - 3) / 4; k <= (n/z-1)/4; k++ {
		fk := float64(k)
		sum2 += phi((4*fk+3)*fz/sqrtN) - phi((4*fk+1)*fz/sqrtN)
	}
	return verdict.ClampScore(1 - sum1 + sum2)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
