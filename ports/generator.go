package ports

import (
	"context"
	"time"

	"rngbench/domain/sample"
)

// GenerationRequest asks a named generator for a bit stream.
// Zero BitsPerValue means the generator's default width; nil Params means
// the catalog defaults.
type GenerationRequest struct {
	Generator    string            `json:"generator"`
	Seed         sample.Seed       `json:"-"`
	NBits        int               `json:"n_bits"`
	Params       map[string]uint64 `json:"params,omitempty"`
	BitsPerValue int               `json:"bits_per_value,omitempty"`
	LSBFirst     bool              `json:"lsb_first,omitempty"`
}

// Generation is a produced bit stream with its timing
type Generation struct {
	Generator    string           `json:"generator"`
	Bits         sample.BitStream `json:"bits"`
	BitsPerValue int              `json:"bits_per_value"`
	Steps        uint64           `json:"steps"`
	Elapsed      time.Duration    `json:"elapsed"`

	// Samples is the untranslated output of generators that do not emit
	// bits; nil for bit streams
	Samples *sample.SampleSet `json:"samples,omitempty"`
}

// GeneratorInfo describes a registered generator for listings
type GeneratorInfo struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Kind         string            `json:"kind"`
	DefaultWidth int               `json:"default_width,omitempty"`
	Seed         string            `json:"default_seed,omitempty"`
	Params       map[string]uint64 `json:"default_params,omitempty"`
}

// GeneratorPort produces bit streams from named generators
type GeneratorPort interface {
	// Generate runs one generator to exactly req.NBits bits
	Generate(ctx context.Context, req GenerationRequest) (*Generation, error)

	// Generators lists every registered generator in display order
	Generators() []GeneratorInfo
}
