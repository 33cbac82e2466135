package prng

import "rngbench/domain/sample"

// Profile is the reference configuration a generator is benchmarked with
type Profile struct {
	Seed         sample.Seed
	Params       Params
	BitsPerValue int
}

// Request builds a generation request for n bits from the profile
func (p Profile) Request(n int) Request {
	return Request{
		Seed:         p.Seed,
		NBits:        n,
		Params:       Params{}.Merge(p.Params),
		BitsPerValue: p.BitsPerValue,
	}
}

// DefaultExternalSeed is passed to out-of-process generators when none is given
const DefaultExternalSeed = 12345

var profiles = map[Name]Profile{
	LCG:        {Seed: sample.SeedOf(DefaultLCGSeed), Params: LCGPresets["glibc"], BitsPerValue: 31},
	ParkMiller: {Seed: sample.SeedOf(DefaultLCGSeed), BitsPerValue: 31},
	AWC:        {Seed: sample.SeedOf(DefaultLCGSeed), Params: Params{"r": DefaultAWCLag, "s": DefaultAWCShortLag, "base": DefaultAWCBase}, BitsPerValue: 32},
	BBS:        {Seed: sample.SeedOf(12345), Params: Params{"p": DefaultBBSP, "q": DefaultBBSQ}, BitsPerValue: 4},
	PCG32:      {Seed: sample.SeedOf(42, 54), BitsPerValue: 32},
	SplitMix64: {Seed: sample.SeedOf(DefaultLCGSeed), BitsPerValue: 64},
	Seeded:     {Seed: sample.SeedOf(12345), BitsPerValue: 32},
	System:     {BitsPerValue: 32},
}

// ProfileFor returns the reference profile for a generator. Generators
// without one (external binaries) get the default external seed.
func ProfileFor(name Name) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	return Profile{Seed: sample.SeedOf(DefaultExternalSeed)}
}

// Info describes a registered generator
type Info struct {
	Name         Name            `json:"name"`
	Description  string          `json:"description"`
	Builtin      bool            `json:"builtin"`
	Kind         sample.DataKind `json:"kind"`
	DefaultWidth int             `json:"default_width,omitempty"`
	Profile      ProfileInfo     `json:"profile"`
}

// ProfileInfo is the serializable form of a Profile
type ProfileInfo struct {
	Seed         string `json:"seed"`
	Params       Params `json:"params,omitempty"`
	BitsPerValue int    `json:"bits_per_value,omitempty"`
}

// Describe lists every registered generator with its reference profile
func (r *Registry) Describe() []Info {
	names := r.Names()
	out := make([]Info, 0, len(names))
	for _, n := range names {
		g, err := r.Get(n)
		if err != nil {
			continue
		}
		p := ProfileFor(n)
		info := Info{
			Name:        n,
			Description: g.Description(),
			Builtin:     IsBuiltin(n),
			Kind:        sample.KindBits,
			Profile: ProfileInfo{
				Seed:         p.Seed.String(),
				Params:       p.Params,
				BitsPerValue: p.BitsPerValue,
			},
		}
		if a, ok := g.(*algorithm); ok {
			info.DefaultWidth = a.DefaultWidth(p.Params)
		}
		out = append(out, info)
	}
	return out
}
