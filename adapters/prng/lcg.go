package prng

import (
	"fmt"
	"sort"

	"rngbench/domain/core"
	"rngbench/internal/bitpack"
)

// Default seed used by the linear congruential presets
const DefaultLCGSeed = 123456789

// LCGPresets are well-known (a, c, m) triples
var LCGPresets = map[string]Params{
	"glibc":             {"a": 1103515245, "c": 12345, "m": 1 << 31},
	"numerical_recipes": {"a": 1664525, "c": 1013904223, "m": 1 << 32},
	"msvc":              {"a": 214013, "c": 2531011, "m": 1 << 32},
}

// LCGPreset returns a copy of a named preset
func LCGPreset(name string) (Params, error) {
	p, ok := LCGPresets[name]
	if !ok {
		return nil, core.NewConfigurationError("preset", fmt.Sprintf("unknown lcg preset %q (have %v)", name, presetNames()))
	}
	return Params{}.Merge(p), nil
}

func presetNames() []string {
	names := make([]string, 0, len(LCGPresets))
	for n := range LCGPresets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LinearCongruential is x = (a*x + c) mod m. A modulus of 0 means 2^64.
type LinearCongruential struct {
	a, c, m uint64
	x       uint64
}

// NewLinearCongruential seeds the generator with seed mod m
func NewLinearCongruential(seed, a, c, m uint64) *LinearCongruential {
	x := seed
	if m != 0 {
		x %= m
	}
	return &LinearCongruential{a: a, c: c, m: m, x: x}
}

// Next advances the state and returns it
func (g *LinearCongruential) Next() (uint64, error) {
	g.x = mulAddMod(g.a, g.x, g.c, g.m)
	return g.x, nil
}

func lcgWidth(p Params) int {
	m := p.Get("m", LCGPresets["glibc"]["m"])
	if m == 1 {
		return 1
	}
	return bitLength(m)
}

func newLCGStepper(req Request, _ int, _ *env) (bitpack.Stepper, error) {
	glibc := LCGPresets["glibc"]
	a := req.Params.Get("a", glibc["a"])
	c := req.Params.Get("c", glibc["c"])
	m := req.Params.Get("m", glibc["m"])
	return NewLinearCongruential(req.Seed.First(DefaultLCGSeed), a, c, m), nil
}
