package battery

import (
	"fmt"
	"math"

	"rngbench/domain/sample"
	"rngbench/domain/verdict"
)

const minExcursionCycles = 500

var (
	excursionStates = []int{-4, -3, -2, -1, 1, 2, 3, 4}
	variantStates   = []int{-9, -8, -7, -6, -5, -4, -3, -2, -1, 1, 2, 3, 4, 5, 6, 7, 8, 9}
)

// walk is the +/-1 random walk split into cycles between returns to zero.
// A final partial cycle is closed as if a zero were appended.
type walk struct {
	sums   []int
	cycles [][2]int // half-open index ranges into sums
}

func newWalk(bits sample.BitStream) walk {
	sums := partialSums(bits)
	w := walk{sums: sums}
	start := 0
	for i, s := range sums {
		if s == 0 {
			w.cycles = append(w.cycles, [2]int{start, i + 1})
			start = i + 1
		}
	}
	if len(sums) > 0 && sums[len(sums)-1] != 0 {
		w.cycles = append(w.cycles, [2]int{start, len(sums)})
	}
	return w
}

// cycleGate reports whether the walk has enough cycles for the excursion tests
func cycleGate(name TestName, bits sample.BitStream, w walk) (verdict.Outcome, bool) {
	j := len(w.cycles)
	need := max(minExcursionCycles, int(math.Ceil(0.005*math.Sqrt(float64(len(bits))))))
	if j >= need {
		return verdict.Outcome{}, true
	}
	var stats verdict.Statistics
	stats.Set("cycles", j)
	stats.Set("required_cycles", need)
	return verdict.Insufficient(fmt.Sprintf("%s: too few cycles (%d, need %d)", name, j, need), stats), false
}

// excursionProbability is pi_k(x), the chance a cycle visits x exactly k
// times, with k = 5 meaning five or more
func excursionProbability(x, k int) float64 {
	ax := math.Abs(float64(x))
	q := 1 - 1/(2*ax)
	switch {
	case k == 0:
		return q
	case k < 5:
		return 1 / (4 * ax * ax) * math.Pow(q, float64(k-1))
	}
	return 1 / (2 * ax) * math.Pow(q, 4)
}

func randomExcursions(bits sample.BitStream, _ []float64, _ Params) verdict.Outcome {
	w := newWalk(bits)
	if out, ok := cycleGate(RandomExcursions, bits, w); !ok {
		return out
	}
	j := len(w.cycles)

	// nu[state][k]: cycles visiting the state exactly k times
	nu := make(map[int][]int, len(excursionStates))
	for _, x := range excursionStates {
		nu[x] = make([]int, 6)
	}
	visits := make(map[int]int, len(excursionStates))
	for _, c := range w.cycles {
		for k := range visits {
			delete(visits, k)
		}
		for _, s := range w.sums[c[0]:c[1]] {
			if s >= -4 && s <= 4 && s != 0 {
				visits[s]++
			}
		}
		for _, x := range excursionStates {
			nu[x][min(visits[x], 5)]++
		}
	}

	var stats verdict.Statistics
	minP := 1.0
	allPass := true
	for _, x := range excursionStates {
		pi := make([]float64, 6)
		for k := range pi {
			pi[k] = excursionProbability(x, k)
		}
		chi := chiSquare(nu[x], j, pi)
		p := chiSquareP(chi, 5)
		stats.Set(fmt.Sprintf("p_value_%+d", x), p)
		minP = math.Min(minP, p)
		allPass = allPass && p >= verdict.SignificanceLevel
	}
	stats.Set("p_value", minP)
	stats.Set("cycles", j)
	return verdict.NewOutcome(allPass, minP, stats)
}

func randomExcursionsVariant(bits sample.BitStream, _ []float64, _ Params) verdict.Outcome {
	w := newWalk(bits)
	if out, ok := cycleGate(RandomExcursionsVariant, bits, w); !ok {
		return out
	}
	j := float64(len(w.cycles))

	counts := make(map[int]int, len(variantStates))
	for _, s := range w.sums {
		if s >= -9 && s <= 9 {
			counts[s]++
		}
	}

	var stats verdict.Statistics
	minP := 1.0
	allPass := true
	for _, x := range variantStates {
		xi := float64(counts[x])
		ax := math.Abs(float64(x))
		p := math.Erfc(math.Abs(xi-j) / math.Sqrt(2*j*(4*ax-2)))
		stats.Set(fmt.Sprintf("p_value_%+d", x), p)
		minP = math.Min(minP, p)
		allPass = allPass && p >= verdict.SignificanceLevel
	}
	stats.Set("p_value", minP)
	stats.Set("cycles", int(j))
	return verdict.NewOutcome(allPass, minP, stats)
}
