package prng

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	"rngbench/domain/core"
	"rngbench/internal/bitpack"
)

// Option configures a Registry
type Option func(*env)

// WithEntropy replaces the OS entropy source used by the system generator
// and by unseeded BBS / seeded calls
func WithEntropy(r io.Reader) Option {
	return func(e *env) { e.entropy = r }
}

// Registry maps generator names to implementations. The in-process
// generators are fixed at construction; out-of-process ones are added
// explicitly with Register.
type Registry struct {
	mu         sync.RWMutex
	generators map[Name]Generator
	order      []Name
}

// NewRegistry creates a registry holding every builtin generator
func NewRegistry(opts ...Option) *Registry {
	e := &env{entropy: rand.Reader}
	for _, opt := range opts {
		opt(e)
	}

	r := &Registry{generators: make(map[Name]Generator)}
	for _, a := range builtinAlgorithms(e) {
		r.generators[a.name] = a
		r.order = append(r.order, a.name)
	}
	return r
}

func builtinAlgorithms(e *env) []*algorithm {
	return []*algorithm{
		{name: LCG, description: "Linear congruential x = (a*x + c) mod m", width: lcgWidth, build: newLCGStepper, env: e},
		{name: ParkMiller, description: "Park-Miller minimal standard (Schrage), m = 2^31-1", width: fixedWidth(ParkMillerWidth), build: newParkMillerStepper, env: e},
		{name: AWC, description: "Add-with-carry lagged Fibonacci (r, s, base)", width: awcWidth, build: newAWCStepper, env: e},
		{name: BBS, description: "Blum-Blum-Shub quadratic residue generator", width: fixedWidth(1), build: newBBSStepper, env: e},
		{name: PCG32, description: "PCG-XSH-RR 64-bit state, 32-bit output", width: fixedWidth(PCG32Width), build: newPCGStepper, env: e},
		{name: SplitMix64, description: "SplitMix64 golden-ratio mixer", width: fixedWidth(64), build: newSplitMixStepper, env: e},
		{name: Seeded, description: "Seeded library source (math/rand)", width: fixedWidth(32), build: newSeededStepper, env: e},
		{name: System, description: "Operating system entropy (crypto/rand)", width: fixedWidth(32), build: newSystemStepper, env: e},
	}
}

// Register adds a generator, typically an out-of-process binary
func (r *Registry) Register(g Generator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.generators[g.Name()]; exists {
		return core.NewConfigurationError("generator", fmt.Sprintf("%q is already registered", g.Name()))
	}
	r.generators[g.Name()] = g
	r.order = append(r.order, g.Name())
	return nil
}

// Get resolves a generator by name
func (r *Registry) Get(name Name) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownGenerator, name)
	}
	return g, nil
}

// Names lists registered generators in registration order
func (r *Registry) Names() []Name {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Name, len(r.order))
	copy(out, r.order)
	return out
}

// Generate resolves name and runs one generation call
func (r *Registry) Generate(ctx context.Context, name Name, req Request) (Result, error) {
	g, err := r.Get(name)
	if err != nil {
		return Result{}, err
	}
	return g.Generate(ctx, req)
}

// Open returns an incremental reader for generators that support streaming
func (r *Registry) Open(name Name, req Request) (*bitpack.Reader, error) {
	g, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	s, ok := g.(Streamer)
	if !ok {
		return nil, core.NewConfigurationError("generator", fmt.Sprintf("%q cannot stream", name))
	}
	return s.Open(req)
}
