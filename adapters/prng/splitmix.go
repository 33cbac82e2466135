package prng

import "rngbench/internal/bitpack"

const splitMixGamma = 0x9E3779B97F4A7C15

// SplitMix is the SplitMix64 generator
type SplitMix struct {
	state uint64
}

// NewSplitMix seeds the generator; callers pass 1 when no seed is supplied
func NewSplitMix(seed uint64) *SplitMix {
	return &SplitMix{state: seed}
}

// Next adds the golden-ratio increment and returns the mixed state
func (g *SplitMix) Next() (uint64, error) {
	g.state += splitMixGamma
	return mix64(g.state), nil
}

func newSplitMixStepper(req Request, _ int, _ *env) (bitpack.Stepper, error) {
	return NewSplitMix(req.Seed.First(1)), nil
}
