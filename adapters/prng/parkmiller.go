package prng

import "rngbench/internal/bitpack"

// Park-Miller minimal standard constants
const (
	pmA = 16807
	pmM = 2147483647 // 2^31 - 1
	pmQ = pmM / pmA  // 127773
	pmR = pmM % pmA  // 2836
)

// ParkMillerWidth is the default chunk width
const ParkMillerWidth = 31

// MinimalStandard is the Park-Miller generator, stepped with Schrage's
// method so a*x never leaves 32-bit signed range.
type MinimalStandard struct {
	x int64
}

// NewMinimalStandard seeds with seed mod (2^31-1), forced to at least 1
func NewMinimalStandard(seed uint64) *MinimalStandard {
	x := int64(seed % pmM)
	if x <= 0 {
		x = 1
	}
	return &MinimalStandard{x: x}
}

// Next advances the state and returns it; the state stays in [1, 2^31-2]
func (g *MinimalStandard) Next() (uint64, error) {
	hi := g.x / pmQ
	lo := g.x % pmQ
	t := pmA*lo - pmR*hi
	if t > 0 {
		g.x = t
	} else {
		g.x = t + pmM
	}
	return uint64(g.x), nil
}

func newParkMillerStepper(req Request, _ int, _ *env) (bitpack.Stepper, error) {
	return NewMinimalStandard(req.Seed.First(1)), nil
}
