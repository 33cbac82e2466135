package battery

import (
	"fmt"
	"math"

	"rngbench/domain/sample"
	"rngbench/domain/verdict"
)

const (
	defaultTemplate      = "000000001"
	defaultTemplateBlock = 1000

	overlappingLength = 9
	overlappingBlock  = 1032
	overlappingCap    = 5
)

var overlappingProbabilities = []float64{0.364091, 0.185659, 0.139381, 0.100571, 0.0704323, 0.139865}

func parseTemplate(s string) (sample.BitStream, error) {
	t, err := sample.ParseBitStream(s)
	if err != nil {
		return nil, err
	}
	if len(t) == 0 || len(t) > 30 {
		return nil, fmt.Errorf("template length %d outside 1..30", len(t))
	}
	return t, nil
}

func matchesAt(bits sample.BitStream, i int, tmpl sample.BitStream) bool {
	for j, b := range tmpl {
		if bits[i+j] != b {
			return false
		}
	}
	return true
}

func nonOverlappingTemplate(bits sample.BitStream, _ []float64, params Params) verdict.Outcome {
	tmpl, err := parseTemplate(params.String("template", defaultTemplate))
	if err != nil {
		return verdict.Rejected(err.Error(), verdict.Statistics{})
	}
	blockSize := params.Int("block_size", defaultTemplateBlock)
	n := len(bits)
	m := len(tmpl)
	if blockSize < m || n < blockSize {
		return insufficient(NonOverlappingTemplate, n, max(blockSize, m), verdict.Statistics{})
	}

	blocks := n / blockSize
	counts := make([]int, blocks)
	for b := 0; b < blocks; b++ {
		block := bits[b*blockSize : (b+1)*blockSize]
		for i := 0; i <= blockSize-m; {
			if matchesAt(block, i, tmpl) {
				counts[b]++
				i += m
			} else {
				i++
			}
		}
	}

	fm := float64(m)
	pow := math.Ldexp(1, m)
	mu := float64(blockSize-m+1) / pow
	sigma2 := float64(blockSize) * (1/pow - (2*fm-1)/(pow*pow))

	chi := 0.0
	for _, c := range counts {
		d := float64(c) - mu
		chi += d * d / sigma2
	}
	p := chiSquareP(chi, blocks)

	var stats verdict.Statistics
	stats.Set("p_value", p)
	stats.Set("chi_square", chi)
	stats.Set("template", tmpl.String())
	stats.Set("mean", mu)
	stats.Set("variance", sigma2)
	stats.Set("num_blocks", blocks)
	return verdict.FromPValue(p, stats)
}

func overlappingTemplate(bits sample.BitStream, _ []float64, _ Params) verdict.Outcome {
	n := len(bits)
	if n < overlappingBlock {
		return insufficient(OverlappingTemplate, n, overlappingBlock, verdict.Statistics{})
	}

	blocks := n / overlappingBlock
	freq := make([]int, overlappingCap+1)
	for b := 0; b < blocks; b++ {
		block := bits[b*overlappingBlock : (b+1)*overlappingBlock]
		count, run := 0, 0
		for _, bit := range block {
			if bit == 1 {
				run++
				if run >= overlappingLength {
					count++
				}
			} else {
				run = 0
			}
		}
		freq[min(count, overlappingCap)]++
	}

	chi := chiSquare(freq, blocks, overlappingProbabilities)
	p := chiSquareP(chi, overlappingCap)

	lambda := float64(overlappingBlock-overlappingLength+1) / math.Ldexp(1, overlappingLength)

	var stats verdict.Statistics
	stats.Set("p_value", p)
	stats.Set("chi_square", chi)
	stats.Set("frequencies", freq)
	stats.Set("lambda", lambda)
	stats.Set("eta", lambda/2)
	stats.Set("num_blocks", blocks)
	return verdict.FromPValue(p, stats)
}
