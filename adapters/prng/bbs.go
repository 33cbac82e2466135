package prng

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"math/bits"

	"rngbench/domain/core"
	"rngbench/internal/bitpack"
)

// Blum-Blum-Shub defaults
const (
	DefaultBBSP = 383
	DefaultBBSQ = 503
)

// BlumBlumShub squares its state mod N = p*q and emits the low bits
type BlumBlumShub struct {
	n uint64
	x uint64
}

// NewBlumBlumShub validates the Blum primes and derives the state from the
// seed: seed mod N (0 becomes 1), probed upward until coprime with N, then
// squared mod N.
func NewBlumBlumShub(seed, p, q uint64) (*BlumBlumShub, error) {
	n, err := blumModulus(p, q)
	if err != nil {
		return nil, err
	}
	s := CoprimeSeed(seed, n)
	return &BlumBlumShub{n: n, x: mulMod(s, s, n)}, nil
}

// Modulus returns N
func (g *BlumBlumShub) Modulus() uint64 { return g.n }

// Next squares the state and returns it; callers keep the low bits
func (g *BlumBlumShub) Next() (uint64, error) {
	g.x = mulMod(g.x, g.x, g.n)
	return g.x, nil
}

// CoprimeSeed reduces seed mod n and probes upward until gcd(seed, n) == 1
func CoprimeSeed(seed, n uint64) uint64 {
	s := seed % n
	if s == 0 {
		s = 1
	}
	for gcd(s, n) != 1 {
		s++
	}
	return s
}

func blumModulus(p, q uint64) (uint64, error) {
	for _, v := range []struct {
		name  string
		prime uint64
	}{{"p", p}, {"q", q}} {
		if v.prime <= 3 || v.prime%4 != 3 {
			return 0, core.NewConfigurationError(v.name, fmt.Sprintf("%d is not congruent to 3 mod 4", v.prime))
		}
		if !new(big.Int).SetUint64(v.prime).ProbablyPrime(20) {
			return 0, core.NewConfigurationError(v.name, fmt.Sprintf("%d is not prime", v.prime))
		}
	}
	hi, n := bits.Mul64(p, q)
	if hi != 0 {
		return 0, core.NewConfigurationError("p,q", "modulus p*q overflows 64 bits")
	}
	return n, nil
}

// randomBBSSeed draws a seed uniformly from [2, n-1)
func randomBBSSeed(entropy io.Reader, n uint64) (uint64, error) {
	span := new(big.Int).SetUint64(n - 3)
	v, err := rand.Int(entropy, span)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrEntropyExhausted, err)
	}
	return v.Uint64() + 2, nil
}

func newBBSStepper(req Request, _ int, e *env) (bitpack.Stepper, error) {
	p := req.Params.Get("p", DefaultBBSP)
	q := req.Params.Get("q", DefaultBBSQ)

	seed := req.Seed.First(0)
	if req.Seed.IsAbsent() {
		n, err := blumModulus(p, q)
		if err != nil {
			return nil, err
		}
		if seed, err = randomBBSSeed(e.entropy, n); err != nil {
			return nil, err
		}
	}
	return NewBlumBlumShub(seed, p, q)
}
