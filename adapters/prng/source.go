package prng

import (
	"context"

	"rngbench/ports"
)

// Source exposes a Registry as a ports.GeneratorPort. Parameters and chunk
// width left unspecified by the caller come from the generator's reference
// profile; the seed is passed through untouched so an absent seed keeps its
// per-generator meaning.
type Source struct {
	reg *Registry
}

// NewSource wraps reg
func NewSource(reg *Registry) *Source {
	return &Source{reg: reg}
}

// Registry returns the wrapped registry
func (s *Source) Registry() *Registry { return s.reg }

// Generate implements ports.GeneratorPort
func (s *Source) Generate(ctx context.Context, req ports.GenerationRequest) (*ports.Generation, error) {
	name := Name(req.Generator)
	if _, err := s.reg.Get(name); err != nil {
		return nil, err
	}

	profile := ProfileFor(name)
	width := req.BitsPerValue
	if width == 0 && len(req.Params) == 0 {
		width = profile.BitsPerValue
	}
	order := MSBFirst
	if req.LSBFirst {
		order = LSBFirst
	}

	res, err := s.reg.Generate(ctx, name, Request{
		Seed:         req.Seed,
		NBits:        req.NBits,
		Params:       profile.Params.Merge(Params(req.Params)),
		BitsPerValue: width,
		Order:        order,
	})
	if err != nil {
		return nil, err
	}

	return &ports.Generation{
		Generator:    string(res.Generator),
		Bits:         res.Bits,
		BitsPerValue: res.BitsPerValue,
		Steps:        res.Steps,
		Elapsed:      res.Elapsed,
		Samples:      res.Samples,
	}, nil
}

// Generators implements ports.GeneratorPort
func (s *Source) Generators() []ports.GeneratorInfo {
	infos := s.reg.Describe()
	out := make([]ports.GeneratorInfo, len(infos))
	for i, info := range infos {
		out[i] = ports.GeneratorInfo{
			Name:         string(info.Name),
			Description:  info.Description,
			Kind:         string(info.Kind),
			DefaultWidth: info.DefaultWidth,
			Seed:         info.Profile.Seed,
			Params:       info.Profile.Params,
		}
	}
	return out
}
