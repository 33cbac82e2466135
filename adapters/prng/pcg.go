package prng

import (
	"math/bits"

	"rngbench/internal/bitpack"
)

const pcgMultiplier = 6364136223846793005

// PCG32Width is the default chunk width
const PCG32Width = 32

// PermutedCongruential is PCG-XSH-RR: a 64-bit LCG whose state is permuted
// into a 32-bit output.
type PermutedCongruential struct {
	state uint64
	inc   uint64
}

// NewPermutedCongruential seeds from (initstate, seq) the way the reference
// pcg32_srandom does: two LCG steps around adding initstate.
func NewPermutedCongruential(initState, seq uint64) *PermutedCongruential {
	g := &PermutedCongruential{inc: seq<<1 | 1}
	g.step()
	g.state += initState
	g.step()
	return g
}

func (g *PermutedCongruential) step() {
	g.state = g.state*pcgMultiplier + g.inc
}

// Next advances the state and returns the 32-bit output
func (g *PermutedCongruential) Next() (uint64, error) {
	g.step()
	x := g.state
	xorshifted := uint32(((x >> 18) ^ x) >> 27)
	rot := int(x >> 59)
	return uint64(bits.RotateLeft32(xorshifted, -rot)), nil
}

func newPCGStepper(req Request, _ int, _ *env) (bitpack.Stepper, error) {
	return NewPermutedCongruential(req.Seed.At(0, 1), req.Seed.At(1, 1)), nil
}
