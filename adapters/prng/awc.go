package prng

import (
	"fmt"
	"math/bits"

	"rngbench/domain/core"
	"rngbench/internal/bitpack"
)

// Add-with-carry defaults
const (
	DefaultAWCLag      = 24
	DefaultAWCShortLag = 10
	DefaultAWCBase     = 1 << 32

	maxAWCLag = 1 << 16
)

// AddWithCarry computes x_n = (x_{n-r} + x_{n-s} + carry) mod base over an
// r-slot ring. A base of 0 means 2^64.
type AddWithCarry struct {
	state []uint64
	r, s  int
	base  uint64
	carry uint64
	p     int
}

// NewAddWithCarry builds the generator from an explicit lag table. Values are
// reduced mod base, a short table is padded from the seed-1 table and a long
// one is truncated to r.
func NewAddWithCarry(state []uint64, r, s int, base uint64) (*AddWithCarry, error) {
	if r <= 0 || s <= 0 || s >= r {
		return nil, core.NewConfigurationError("r,s", fmt.Sprintf("require r > s > 0, got r=%d s=%d", r, s))
	}
	if r > maxAWCLag {
		return nil, core.NewConfigurationError("r", fmt.Sprintf("lag %d exceeds %d", r, maxAWCLag))
	}
	table := make([]uint64, r)
	n := copy(table, state)
	for i := 0; i < n; i++ {
		table[i] = reduce(table[i], base)
	}
	if n < r {
		copy(table[n:], awcSeedTable(1, r-n, base))
	}
	return &AddWithCarry{state: table, r: r, s: s, base: base}, nil
}

// NewAddWithCarrySeeded synthesizes the lag table from a single seed
func NewAddWithCarrySeeded(seed uint64, r, s int, base uint64) (*AddWithCarry, error) {
	if r <= 0 || r > maxAWCLag {
		return NewAddWithCarry(nil, r, s, base)
	}
	return NewAddWithCarry(awcSeedTable(seed, r, base), r, s, base)
}

// awcSeedTable runs a small 31-bit LCG purely to fill the initial table
func awcSeedTable(seed uint64, n int, base uint64) []uint64 {
	x := seed & 0x7fffffff
	if x == 0 {
		x = 1
	}
	out := make([]uint64, n)
	for i := range out {
		x = (1103515245*x + 12345) & 0x7fffffff
		out[i] = reduce(x, base)
	}
	return out
}

func reduce(v, base uint64) uint64 {
	if base == 0 {
		return v
	}
	return v % base
}

// Next advances the ring by one slot and returns the new value
func (g *AddWithCarry) Next() (uint64, error) {
	lagR := g.state[g.p]
	lagS := g.state[(g.p-g.s+g.r)%g.r]

	sum, c1 := bits.Add64(lagR, lagS, g.carry)
	switch {
	case g.base == 0:
		g.carry = c1
	case c1 == 1 || sum >= g.base:
		// both lags are below base, so one subtraction suffices
		sum -= g.base
		g.carry = 1
	default:
		g.carry = 0
	}

	g.state[g.p] = sum
	g.p = (g.p + 1) % g.r
	return sum, nil
}

func awcWidth(p Params) int {
	base := p.Get("base", DefaultAWCBase)
	if isPowerOfTwo(base) {
		return bitLength(base) - 1
	}
	return bitLength(base)
}

func newAWCStepper(req Request, _ int, _ *env) (bitpack.Stepper, error) {
	r := int(req.Params.Get("r", DefaultAWCLag))
	s := int(req.Params.Get("s", DefaultAWCShortLag))
	base := req.Params.Get("base", DefaultAWCBase)

	switch {
	case len(req.State) > 0:
		return NewAddWithCarry(req.State, r, s, base)
	case req.Seed.IsTuple():
		return NewAddWithCarry(req.Seed.Values(), r, s, base)
	}
	return NewAddWithCarrySeeded(req.Seed.First(1), r, s, base)
}
