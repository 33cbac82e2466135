package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeystreamBitsZeroSeed(t *testing.T) {
	// RFC 8439 A.1 test vector #1: all-zero key and nonce, counter 0
	bits, err := keystreamBits(0, 32, 32, true)
	require.NoError(t, err)

	var v uint32
	for _, b := range bits {
		v = v<<1 | uint32(b)
	}
	assert.Equal(t, uint32(0x76b8e0ad), v)
}

func TestKeystreamBitsSeedChangesStream(t *testing.T) {
	a, err := keystreamBits(1, 256, 32, true)
	require.NoError(t, err)
	b, err := keystreamBits(2, 256, 32, true)
	require.NoError(t, err)
	again, err := keystreamBits(1, 256, 32, true)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, again)
}

func TestKeystreamBitsLSBFirstReversesChunks(t *testing.T) {
	msb, err := keystreamBits(5, 16, 8, true)
	require.NoError(t, err)
	lsb, err := keystreamBits(5, 16, 8, false)
	require.NoError(t, err)

	for chunk := 0; chunk < 2; chunk++ {
		for i := 0; i < 8; i++ {
			assert.Equal(t, msb[chunk*8+i], lsb[chunk*8+7-i])
		}
	}
}

func TestRunOutputContract(t *testing.T) {
	out, err := run([]string{"12345", "100"})
	require.NoError(t, err)
	assert.Len(t, out.Bits, 100)
	assert.GreaterOrEqual(t, out.Time, 0.0)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Regexp(t, `^\{"bits":\[[01](,[01])*\],"time":`, string(data))

	out, err = run([]string{"-1", "0"})
	require.NoError(t, err)
	assert.Empty(t, out.Bits)

	_, err = run([]string{"abc", "10"})
	assert.Error(t, err)
	_, err = run([]string{"1", "-5"})
	assert.Error(t, err)
	_, err = run([]string{"1", "10", "65"})
	assert.Error(t, err)
}
