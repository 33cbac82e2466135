package prng

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rngbench/domain/core"
	"rngbench/domain/sample"
	"rngbench/internal/bitpack"
	"rngbench/ports"
)

var _ ports.GeneratorPort = (*Source)(nil)

func TestSourceAppliesProfileDefaults(t *testing.T) {
	src := NewSource(NewRegistry())

	gen, err := src.Generate(context.Background(), ports.GenerationRequest{
		Generator: string(LCG),
		Seed:      sample.SeedOf(123456789),
		NBits:     31,
	})
	require.NoError(t, err)
	assert.Equal(t, 31, gen.BitsPerValue)
	assert.Equal(t, bitpack.Pack(398764591, 31, true), []uint8(gen.Bits))
}

func TestSourceExplicitWidthAndOrder(t *testing.T) {
	src := NewSource(NewRegistry())

	gen, err := src.Generate(context.Background(), ports.GenerationRequest{
		Generator:    string(SplitMix64),
		Seed:         sample.SeedOf(1),
		NBits:        64,
		BitsPerValue: 64,
		LSBFirst:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(0x910a2dec89025cc1), bitpack.Unpack(gen.Bits, false))
}

func TestSourceUnknownGenerator(t *testing.T) {
	_, err := NewSource(NewRegistry()).Generate(context.Background(), ports.GenerationRequest{Generator: "nope", NBits: 8})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownGenerator)
}

func TestSourceGenerators(t *testing.T) {
	infos := NewSource(NewRegistry()).Generators()
	require.Len(t, infos, len(Builtins))
	assert.Equal(t, string(LCG), infos[0].Name)
	assert.Equal(t, string(sample.KindBits), infos[0].Kind)
	assert.Equal(t, uint64(1103515245), infos[0].Params["a"])
	assert.Equal(t, "(42,54)", infos[4].Seed)
}
