package battery

import (
	"math"

	"rngbench/domain/sample"
	"rngbench/domain/verdict"
)

// Expected value and variance of the statistic for L = 1..16
var (
	universalExpected = []float64{0, 0.7326495, 1.5374383, 2.4016068, 3.3112247, 4.2534266, 5.2177052,
		6.1962507, 7.1836656, 8.1764248, 9.1723243, 10.170032, 11.168765, 12.168070, 13.167693, 14.167488, 15.167379}
	universalVariance = []float64{0, 0.690, 1.338, 1.901, 2.358, 2.705, 2.954,
		3.125, 3.238, 3.311, 3.356, 3.384, 3.401, 3.410, 3.416, 3.419, 3.421}
)

// universalBlockLength picks L by sequence length; below the smallest
// recommended length L stays at 6
func universalBlockLength(n int) int {
	thresholds := []int{904960, 2068480, 4654080, 10342400, 22753280, 49643520, 107560960, 231669760, 496435200, 1059061760}
	l := 6
	for _, t := range thresholds {
		if n < t {
			break
		}
		l++
	}
	return l
}

func universal(bits sample.BitStream, _ []float64, params Params) verdict.Outcome {
	n := len(bits)
	l := params.Int("L", universalBlockLength(n))
	if l < 1 || l > 16 {
		return verdict.Rejected("block length L must be within 1..16", verdict.Statistics{})
	}
	q := params.Int("Q", 10*(1<<uint(l)))
	k := n/l - q
	if q <= 0 || k <= 0 {
		return insufficient(Universal, n, (q+1)*l, verdict.Statistics{})
	}

	block := func(i int) int {
		v := 0
		for _, b := range bits[(i-1)*l : i*l] {
			v = v<<1 | int(b)
		}
		return v
	}

	last := make([]int, 1<<uint(l))
	for i := 1; i <= q; i++ {
		last[block(i)] = i
	}
	sum := 0.0
	for i := q + 1; i <= q+k; i++ {
		v := block(i)
		sum += math.Log2(float64(i - last[v]))
		last[v] = i
	}

	fn := sum / float64(k)
	fl, fk := float64(l), float64(k)
	c := 0.7 - 0.8/fl + (4+32/fl)*math.Pow(fk, -3/fl)/15
	sigma := c * math.Sqrt(universalVariance[l]/fk)
	p := math.Erfc(math.Abs(fn-universalExpected[l]) / (math.Sqrt2 * sigma))

	var stats verdict.Statistics
	stats.Set("p_value", p)
	stats.Set("fn", fn)
	stats.Set("expected", universalExpected[l])
	stats.Set("sigma", sigma)
	stats.Set("L", l)
	stats.Set("Q", q)
	stats.Set("K", k)
	return verdict.FromPValue(p, stats)
}
