package battery

import (
	"rngbench/domain/sample"
	"rngbench/domain/verdict"
)

const (
	rankRows       = 32
	rankCols       = 32
	rankMatrixBits = rankRows * rankCols
)

var rankProbabilities = []float64{0.2888, 0.5776, 0.1336}

// gf2Rank computes the rank of a binary matrix whose rows are packed into
// uint32 words, eliminating with XOR row operations
func gf2Rank(rows []uint32) int {
	m := make([]uint32, len(rows))
	copy(m, rows)

	rank := 0
	for col := rankCols - 1; col >= 0 && rank < len(m); col-- {
		bit := uint32(1) << uint(col)
		pivot := -1
		for r := rank; r < len(m); r++ {
			if m[r]&bit != 0 {
				pivot = r
				break
			}
		}
		if pivot < 0 {
			continue
		}
		m[rank], m[pivot] = m[pivot], m[rank]
		for r := range m {
			if r != rank && m[r]&bit != 0 {
				m[r] ^= m[rank]
			}
		}
		rank++
	}
	return rank
}

func packRow(row sample.BitStream) uint32 {
	var w uint32
	for _, b := range row {
		w = w<<1 | uint32(b)
	}
	return w
}

func matrixRank(stream sample.BitStream, _ []float64, _ Params) verdict.Outcome {
	n := len(stream)
	if n < rankMatrixBits {
		return insufficient(MatrixRank, n, rankMatrixBits, verdict.Statistics{})
	}

	matrices := n / rankMatrixBits
	counts := make([]int, 3) // full rank, full-1, lower
	rows := make([]uint32, rankRows)
	for i := 0; i < matrices; i++ {
		block := stream[i*rankMatrixBits : (i+1)*rankMatrixBits]
		for r := range rows {
			rows[r] = packRow(block[r*rankCols : (r+1)*rankCols])
		}
		switch gf2Rank(rows) {
		case rankRows:
			counts[0]++
		case rankRows - 1:
			counts[1]++
		default:
			counts[2]++
		}
	}

	chi := chiSquare(counts, matrices, rankProbabilities)
	p := chiSquareP(chi, 2)

	var stats verdict.Statistics
	stats.Set("p_value", p)
	stats.Set("chi_square", chi)
	stats.Set("full_rank", counts[0])
	stats.Set("rank_minus_one", counts[1])
	stats.Set("lower_rank", counts[2])
	stats.Set("num_matrices", matrices)
	stats.Set("ones_density", float64(stream.Ones())/float64(n))
	return verdict.FromPValue(p, stats)
}
