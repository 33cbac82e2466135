// Package prng implements the bit-stream generators: linear congruential,
// Park-Miller, add-with-carry, Blum-Blum-Shub, PCG32, SplitMix64, a seeded
// library source, the OS entropy source, and out-of-process binaries.
//
// Every generator honors the same contract: a Request carrying the seed, the
// number of bits, algorithm parameters, chunk width and bit order produces a
// Result holding exactly NBits bits and the elapsed generation time.
package prng

import (
	"context"
	"fmt"
	"time"

	"rngbench/domain/core"
	"rngbench/domain/sample"
	"rngbench/internal/bitpack"
)

// Name identifies a generator in the registry
type Name string

const (
	LCG        Name = "lcg"
	ParkMiller Name = "park_miller"
	AWC        Name = "awc"
	BBS        Name = "bbs"
	PCG32      Name = "pcg32"
	SplitMix64 Name = "splitmix64"
	Seeded     Name = "seeded"
	System     Name = "system"
)

// Builtins lists the in-process generators in display order
var Builtins = []Name{LCG, ParkMiller, AWC, BBS, PCG32, SplitMix64, Seeded, System}

// IsBuiltin reports whether n names an in-process generator
func IsBuiltin(n Name) bool {
	for _, b := range Builtins {
		if b == n {
			return true
		}
	}
	return false
}

// BitOrder selects how each chunk is unpacked. The zero value is MSB-first.
type BitOrder int

const (
	MSBFirst BitOrder = iota
	LSBFirst
)

func (o BitOrder) String() string {
	if o == LSBFirst {
		return "lsb"
	}
	return "msb"
}

// ParseBitOrder accepts "msb", "lsb" or "" (MSB-first)
func ParseBitOrder(s string) (BitOrder, error) {
	switch s {
	case "", "msb", "msb_first":
		return MSBFirst, nil
	case "lsb", "lsb_first":
		return LSBFirst, nil
	}
	return MSBFirst, core.NewConfigurationError("bit_order", fmt.Sprintf("%q is not msb or lsb", s))
}

// Params carries algorithm-specific integer parameters (a, c, m, r, s, base, p, q).
// A missing key selects the algorithm default.
type Params map[string]uint64

// Get returns the value for key, or def when unset
func (p Params) Get(key string, def uint64) uint64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Merge returns a copy of p with other's keys layered on top
func (p Params) Merge(other Params) Params {
	out := make(Params, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Request is one generation call
type Request struct {
	Seed   sample.Seed
	NBits  int
	Params Params
	// State is an explicit add-with-carry lag table
	State []uint64
	// BitsPerValue of 0 selects the algorithm default
	BitsPerValue int
	Order        BitOrder
}

// Result is the output of one generation call
type Result struct {
	Generator    Name             `json:"generator"`
	Bits         sample.BitStream `json:"bits"`
	BitsPerValue int              `json:"bits_per_value"`
	Steps        uint64           `json:"steps"`
	Elapsed      time.Duration    `json:"elapsed"`

	// Samples holds the raw output when a generator emitted integers or
	// floats; Bits is then derived from it
	Samples *sample.SampleSet `json:"samples,omitempty"`
}

// ElapsedSeconds returns the generation time in seconds
func (r Result) ElapsedSeconds() float64 { return core.Seconds(r.Elapsed) }

// BitsPerSecond returns the generation throughput, 0 when nothing was timed
func (r Result) BitsPerSecond() float64 {
	secs := r.ElapsedSeconds()
	if secs <= 0 {
		return 0
	}
	return float64(len(r.Bits)) / secs
}

// Generator produces bit streams
type Generator interface {
	Name() Name
	Description() string
	Generate(ctx context.Context, req Request) (Result, error)
}

// Streamer is implemented by generators that can emit bits incrementally.
// Memory use of the returned reader is bounded by the algorithm state.
type Streamer interface {
	Open(req Request) (*bitpack.Reader, error)
}

func resolveWidth(requested, def int) (int, error) {
	width := requested
	if width == 0 {
		width = def
	}
	if err := bitpack.ValidateWidth(width); err != nil {
		return 0, core.NewConfigurationError("bits_per_value", err.Error())
	}
	return width, nil
}

func validateCount(n int) error {
	if n < 0 {
		return core.NewConfigurationError("n_bits", fmt.Sprintf("must be non-negative, got %d", n))
	}
	return nil
}
