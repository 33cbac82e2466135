package prng

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rngbench/domain/core"
	"rngbench/domain/sample"
	"rngbench/internal/bitpack"
)

func generate(t *testing.T, reg *Registry, name Name, req Request) Result {
	t.Helper()
	res, err := reg.Generate(context.Background(), name, req)
	require.NoError(t, err)
	return res
}

func TestLCGScenario(t *testing.T) {
	reg := NewRegistry()
	res := generate(t, reg, LCG, Request{
		Seed:         sample.SeedOf(123456789),
		NBits:        31,
		Params:       Params{"a": 1103515245, "c": 12345, "m": 1 << 31},
		BitsPerValue: 31,
	})

	assert.Equal(t, bitpack.Pack(398764591, 31, true), []uint8(res.Bits))
	assert.Equal(t, uint64(398764591), bitpack.Unpack(res.Bits, true))
}

func TestLCGDefaultWidthIsModulusBitLength(t *testing.T) {
	assert.Equal(t, 32, lcgWidth(Params{"m": 1 << 31}))
	assert.Equal(t, 33, lcgWidth(Params{"m": 1 << 32}))
	assert.Equal(t, 64, lcgWidth(Params{"m": 0}))
	assert.Equal(t, 1, lcgWidth(Params{"m": 1}))
}

func TestLCGFullWidthWraparound(t *testing.T) {
	// m = 2^64 must wrap like native uint64 arithmetic
	x, a, c := ^uint64(0), uint64(6364136223846793005), uint64(1442695040888963407)
	g := NewLinearCongruential(x, a, c, 0)
	v, _ := g.Next()
	assert.Equal(t, x*a+c, v)

	// large modulus exercises the 128-bit intermediate
	m := uint64(1<<63 + 25)
	g = NewLinearCongruential(1<<62, 1<<40, 3, m)
	v, _ = g.Next()
	assert.Less(t, v, m)
}

func TestLCGPresets(t *testing.T) {
	p, err := LCGPreset("msvc")
	require.NoError(t, err)
	assert.Equal(t, uint64(214013), p["a"])

	p["a"] = 1
	assert.Equal(t, uint64(214013), LCGPresets["msvc"]["a"])

	_, err = LCGPreset("nope")
	assert.True(t, core.IsConfigurationError(err))
}

func TestParkMillerKnownValues(t *testing.T) {
	g := NewMinimalStandard(1)
	v, _ := g.Next()
	assert.Equal(t, uint64(16807), v)

	g = NewMinimalStandard(1)
	for i := 0; i < 9999; i++ {
		_, _ = g.Next()
	}
	v, _ = g.Next()
	assert.Equal(t, uint64(1043618065), v)

	// zero seed is forced to 1
	z := NewMinimalStandard(pmM)
	v, _ = z.Next()
	assert.Equal(t, uint64(16807), v)
}

func TestAWCSeededOutput(t *testing.T) {
	g, err := NewAddWithCarrySeeded(123456789, DefaultAWCLag, DefaultAWCShortLag, DefaultAWCBase)
	require.NoError(t, err)
	assert.Equal(t, []uint64{231794730, 1126946331, 1757975480}, g.state[:3])

	v1, _ := g.Next()
	v2, _ := g.Next()
	assert.Equal(t, uint64(1329361702), v1)
	assert.Equal(t, uint64(1563884448), v2)
}

func TestAWCRejectsBadLags(t *testing.T) {
	for _, lags := range [][2]int{{10, 10}, {10, 24}, {24, 0}, {0, 0}} {
		_, err := NewAddWithCarrySeeded(1, lags[0], lags[1], DefaultAWCBase)
		assert.True(t, core.IsConfigurationError(err), "r=%d s=%d", lags[0], lags[1])
	}

	reg := NewRegistry()
	_, err := reg.Generate(context.Background(), AWC, Request{NBits: 8, Params: Params{"r": 5, "s": 7}})
	assert.True(t, core.IsConfigurationError(err))
}

func TestAWCExplicitStatePadding(t *testing.T) {
	g, err := NewAddWithCarry([]uint64{1<<32 + 5, 7}, 4, 1, 1<<32)
	require.NoError(t, err)
	pad := awcSeedTable(1, 2, 1<<32)
	assert.Equal(t, []uint64{5, 7, pad[0], pad[1]}, g.state)

	long, err := NewAddWithCarry([]uint64{1, 2, 3, 4, 5, 6}, 4, 1, 1<<32)
	require.NoError(t, err)
	assert.Len(t, long.state, 4)
}

func TestAWCCarry(t *testing.T) {
	// base 10, r=2, s=1: 9 + 9 overflows and sets the carry
	g, err := NewAddWithCarry([]uint64{9, 9}, 2, 1, 10)
	require.NoError(t, err)
	v, _ := g.Next()
	assert.Equal(t, uint64(8), v)
	assert.Equal(t, uint64(1), g.carry)

	// base 2^64 uses the native carry
	full, err := NewAddWithCarry([]uint64{^uint64(0), 2}, 2, 1, 0)
	require.NoError(t, err)
	v, _ = full.Next()
	assert.Equal(t, uint64(1), v)
	assert.Equal(t, uint64(1), full.carry)
}

func TestAWCDefaultWidth(t *testing.T) {
	assert.Equal(t, 32, awcWidth(Params{}))
	assert.Equal(t, 4, awcWidth(Params{"base": 10}))
	assert.Equal(t, 64, awcWidth(Params{"base": 0}))
}

func TestBBSReproducible(t *testing.T) {
	reg := NewRegistry()
	req := Request{Seed: sample.SeedOf(12345), NBits: 16, Params: Params{"p": 383, "q": 503}}

	first := generate(t, reg, BBS, req)
	second := generate(t, reg, BBS, req)
	assert.Equal(t, first.Bits, second.Bits)
	assert.Equal(t, sample.BitStream{1, 0, 1, 1, 0, 0, 1, 0, 0, 0, 1, 1, 0, 0, 1, 1}, first.Bits)
}

func TestBBSCoprimeAdjustment(t *testing.T) {
	n := uint64(383 * 503)
	assert.Equal(t, uint64(12345), CoprimeSeed(12345, n))
	assert.Equal(t, uint64(384), CoprimeSeed(383, n))
	assert.Equal(t, uint64(1), CoprimeSeed(n, n))
}

func TestBBSRejectsNonBlumPrimes(t *testing.T) {
	cases := []Params{
		{"p": 13, "q": 503}, // 13 % 4 == 1
		{"p": 3, "q": 503},
		{"p": 15, "q": 503}, // 15 % 4 == 3 but composite
	}
	for _, p := range cases {
		_, err := NewBlumBlumShub(1, p["p"], p["q"])
		assert.True(t, core.IsConfigurationError(err), "%v", p)
	}
}

func TestBBSAbsentSeedUsesEntropy(t *testing.T) {
	reg := NewRegistry(WithEntropy(bytes.NewReader(bytes.Repeat([]byte{0x42}, 64))))
	a := generate(t, reg, BBS, Request{NBits: 32})
	assert.Len(t, a.Bits, 32)
}

func TestPCG32KnownOutput(t *testing.T) {
	g := NewPermutedCongruential(42, 54)
	want := []uint64{0x7b47f409, 0xba1d3330, 0x83d2f293, 0xbfa4784b, 0xcbed606e}
	for i, w := range want {
		v, _ := g.Next()
		assert.Equal(t, w, v, "output %d", i)
	}
}

func TestSplitMixScenario(t *testing.T) {
	reg := NewRegistry()
	res := generate(t, reg, SplitMix64, Request{NBits: 64})

	state := uint64(1) + 0x9E3779B97F4A7C15
	z := (state ^ (state >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z ^= z >> 31

	assert.Equal(t, uint64(0x910a2dec89025cc1), z)
	assert.Equal(t, z, bitpack.Unpack(res.Bits, true))
}

func TestDeterminismAndLength(t *testing.T) {
	reg := NewRegistry()
	for _, name := range Builtins {
		if name == System {
			continue
		}
		for _, n := range []int{0, 1, 63, 1000} {
			req := ProfileFor(name).Request(n)
			a := generate(t, reg, name, req)
			b := generate(t, reg, name, req)
			assert.Len(t, a.Bits, n, "%s n=%d", name, n)
			assert.Equal(t, a.Bits, b.Bits, "%s n=%d", name, n)
			assert.NoError(t, a.Bits.Validate())
			if n == 0 {
				assert.Zero(t, a.Elapsed)
			}
		}
	}
}

func TestBitOrderAcrossGenerators(t *testing.T) {
	reg := NewRegistry()
	msb := generate(t, reg, PCG32, Request{Seed: sample.SeedOf(7), NBits: 32})
	lsb := generate(t, reg, PCG32, Request{Seed: sample.SeedOf(7), NBits: 32, Order: LSBFirst})

	reversed := make(sample.BitStream, len(lsb.Bits))
	for i, b := range lsb.Bits {
		reversed[len(reversed)-1-i] = b
	}
	assert.Equal(t, msb.Bits, reversed)
}

func TestBitsPerValueValidation(t *testing.T) {
	reg := NewRegistry()
	for _, w := range []int{-1, 65} {
		_, err := reg.Generate(context.Background(), SplitMix64, Request{NBits: 8, BitsPerValue: w})
		assert.True(t, core.IsConfigurationError(err), "width %d", w)
	}

	_, err := reg.Generate(context.Background(), SplitMix64, Request{NBits: -1})
	assert.True(t, core.IsConfigurationError(err))
}

func TestSeededSource(t *testing.T) {
	reg := NewRegistry()
	a := generate(t, reg, Seeded, Request{Seed: sample.SeedOf(1, 2), NBits: 128})
	b := generate(t, reg, Seeded, Request{Seed: sample.SeedOf(2, 1), NBits: 128})
	assert.NotEqual(t, a.Bits, b.Bits)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("device gone") }

func TestSystemSource(t *testing.T) {
	stream := []byte{0xAB, 0xCD, 0xEF, 0x01, 0x80}
	reg := NewRegistry(WithEntropy(bytes.NewReader(stream)))

	res := generate(t, reg, System, Request{NBits: 12, BitsPerValue: 12})
	// two bytes big-endian, masked to 12 bits
	assert.Equal(t, bitpack.Pack(0xABCD&0xFFF, 12, true), []uint8(res.Bits))

	failing := NewRegistry(WithEntropy(failingReader{}))
	_, err := failing.Generate(context.Background(), System, Request{NBits: 8})
	assert.True(t, core.IsExternalSourceError(err))
	assert.ErrorIs(t, err, core.ErrEntropyExhausted)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, Builtins, reg.Names())

	_, err := reg.Get("mersenne")
	assert.ErrorIs(t, err, core.ErrUnknownGenerator)
	assert.True(t, core.IsConfigurationError(err))

	ext, err := NewExternal("chacha20", "/opt/chacha20gen", 0, &MockRunner{})
	require.NoError(t, err)
	require.NoError(t, reg.Register(ext))
	assert.Error(t, reg.Register(ext))
	assert.Contains(t, reg.Names(), Name("chacha20"))

	_, err = reg.Open("chacha20", Request{NBits: 8})
	assert.True(t, core.IsConfigurationError(err))

	infos := reg.Describe()
	require.Len(t, infos, len(Builtins)+1)
	assert.Equal(t, 31, infos[1].DefaultWidth)
	assert.False(t, infos[len(infos)-1].Builtin)
}

func TestStreamingReader(t *testing.T) {
	reg := NewRegistry()
	req := Request{Seed: sample.SeedOf(99), NBits: 1000}
	whole := generate(t, reg, ParkMiller, req)

	r, err := reg.Open(ParkMiller, req)
	require.NoError(t, err)
	got := make([]uint8, 0, 1000)
	buf := make([]uint8, 77)
	for len(got) < 1000 {
		want := min(len(buf), 1000-len(got))
		_, err := r.Read(buf[:want])
		require.NoError(t, err)
		got = append(got, buf[:want]...)
	}
	assert.Equal(t, []uint8(whole.Bits), got)
}

func TestGenerateHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRegistry().Generate(ctx, LCG, Request{NBits: 100})
	assert.ErrorIs(t, err, context.Canceled)
}
