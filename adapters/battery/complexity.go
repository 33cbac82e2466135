package battery

import (
	"math"

	"rngbench/domain/sample"
	"rngbench/domain/verdict"
)

const (
	defaultComplexityBlock = 500
	minComplexityBlocks    = 200
)

var complexityProbabilities = []float64{0.010417, 0.03125, 0.125, 0.5, 0.25, 0.0625, 0.020833}

// berlekampMassey returns the linear complexity of s over GF(2)
func berlekampMassey(s sample.BitStream) int {
	n := len(s)
	c := make([]uint8, n+1)
	b := make([]uint8, n+1)
	t := make([]uint8, n+1)
	c[0], b[0] = 1, 1

	l, m := 0, -1
	for i := 0; i < n; i++ {
		d := s[i]
		for j := 1; j <= l; j++ {
			d ^= c[j] & s[i-j]
		}
		if d == 0 {
			continue
		}
		copy(t, c)
		shift := i - m
		for j := 0; j+shift <= n; j++ {
			c[j+shift] ^= b[j]
		}
		if 2*l <= i {
			l = i + 1 - l
			m = i
			copy(b, t)
		}
	}
	return l
}

func linearComplexity(bits sample.BitStream, _ []float64, params Params) verdict.Outcome {
	m := params.Int("block_size", defaultComplexityBlock)
	n := len(bits)
	if m <= 0 {
		return verdict.Rejected("block_size must be positive", verdict.Statistics{})
	}
	blocks := n / m
	if blocks < minComplexityBlocks {
		return insufficient(LinearComplexity, n, m*minComplexityBlocks, verdict.Statistics{})
	}

	fm := float64(m)
	sign := 1.0
	if m%2 == 1 {
		sign = -1
	}
	mu := fm/2 + (9-sign)/36 - (fm/3+2.0/9)/math.Pow(2, fm)

	freq := make([]int, 7)
	for i := 0; i < blocks; i++ {
		l := berlekampMassey(bits[i*m : (i+1)*m])
		t := sign*(float64(l)-mu) + 2.0/9
		switch {
		case t <= -2.5:
			freq[0]++
		case t <= -1.5:
			freq[1]++
		case t <= -0.5:
			freq[2]++
		case t <= 0.5:
			freq[3]++
		case t <= 1.5:
			freq[4]++
		case t <= 2.5:
			freq[5]++
		default:
			freq[6]++
		}
	}

	chi := chiSquare(freq, blocks, complexityProbabilities)
	p := chiSquareP(chi, 6)

	var stats verdict.Statistics
	stats.Set("p_value", p)
	stats.Set("chi_square", chi)
	stats.Set("frequencies", freq)
	stats.Set("mean", mu)
	stats.Set("M", m)
	stats.Set("N", blocks)
	return verdict.FromPValue(p, stats)
}
