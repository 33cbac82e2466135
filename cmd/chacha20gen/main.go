// Command chacha20gen is an external generator built on the ChaCha20
// keystream. It follows the external generator contract:
//
//	chacha20gen <seed> <n_bits> [bits_per_value] [msb_first]
//
// and prints {"bits":[...],"time":<seconds>} on stdout. The key is all
// zeros; the seed is folded big-endian into the last eight nonce bytes, so
// seed 0 reproduces the plain zero key/nonce stream.
package main

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/chacha20"

	"rngbench/domain/sample"
	"rngbench/internal/bitpack"
)

const (
	defaultBits         = 200
	defaultBitsPerValue = 32
)

type output struct {
	Bits sample.BitStream `json:"bits"`
	Time float64          `json:"time"`
}

func main() {
	out, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) (*output, error) {
	var (
		seed     uint64
		nBits    = defaultBits
		width    = defaultBitsPerValue
		msbFirst = true
		err      error
	)
	if len(args) > 0 {
		if seed, err = parseSeed(args[0]); err != nil {
			return nil, err
		}
	}
	if len(args) > 1 {
		if nBits, err = strconv.Atoi(args[1]); err != nil || nBits < 0 {
			return nil, fmt.Errorf("n_bits must be a non-negative integer, got %q", args[1])
		}
	}
	if len(args) > 2 {
		if width, err = strconv.Atoi(args[2]); err != nil {
			return nil, fmt.Errorf("bits_per_value must be an integer, got %q", args[2])
		}
	}
	if len(args) > 3 {
		msbFirst = !strings.EqualFold(args[3], "false")
	}

	start := time.Now()
	bits, err := keystreamBits(seed, nBits, width, msbFirst)
	if err != nil {
		return nil, err
	}
	return &output{Bits: bits, Time: time.Since(start).Seconds()}, nil
}

// parseSeed accepts unsigned or negative decimal seeds; negatives keep
// their two's complement pattern
func parseSeed(s string) (uint64, error) {
	if strings.HasPrefix(s, "-") {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seed %q: %w", s, err)
		}
		return uint64(v), nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seed %q: %w", s, err)
	}
	return v, nil
}

// keystreamBits reads ceil(width/8) keystream bytes per value, interprets
// them big-endian and keeps the low width bits
func keystreamBits(seed uint64, nBits, width int, msbFirst bool) (sample.BitStream, error) {
	if err := bitpack.ValidateWidth(width); err != nil {
		return nil, err
	}

	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	binary.BigEndian.PutUint64(nonce[chacha20.NonceSize-8:], seed)

	cipher, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	buf := make([]byte, (width+7)/8)
	step := bitpack.StepFunc(func() (uint64, error) {
		clear(buf)
		cipher.XORKeyStream(buf, buf)
		var v uint64
		for _, b := range buf {
			v = v<<8 | uint64(b)
		}
		return v & bitpack.Mask(width), nil
	})

	bits, err := bitpack.ReadN(step, nBits, width, msbFirst)
	if err != nil {
		return nil, err
	}
	return sample.BitStream(bits), nil
}
