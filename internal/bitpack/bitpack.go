// Package bitpack converts fixed-width integers into bit sequences and turns
// per-step generator output into a bounded, incremental bit stream.
package bitpack

import (
	"errors"
	"fmt"
)

// MaxWidth is the widest chunk a single step can emit
const MaxWidth = 64

// ErrWidth is returned for chunk widths outside [1, MaxWidth]
var ErrWidth = errors.New("bitpack: chunk width out of range")

// Pack returns the low width bits of value. MSB-first yields bit width-1 down
// to bit 0; LSB-first yields bit 0 up to bit width-1. Bits above 63 are zero.
func Pack(value uint64, width int, msbFirst bool) []uint8 {
	if width <= 0 {
		return []uint8{}
	}
	return AppendPacked(make([]uint8, 0, width), value, width, msbFirst)
}

// AppendPacked is Pack writing into dst
func AppendPacked(dst []uint8, value uint64, width int, msbFirst bool) []uint8 {
	if msbFirst {
		for i := width - 1; i >= 0; i-- {
			dst = append(dst, bitAt(value, i))
		}
		return dst
	}
	for i := 0; i < width; i++ {
		dst = append(dst, bitAt(value, i))
	}
	return dst
}

func bitAt(value uint64, i int) uint8 {
	if i >= 64 {
		return 0
	}
	return uint8(value>>uint(i)) & 1
}

// Unpack is the inverse of Pack for up to 64 bits
func Unpack(bits []uint8, msbFirst bool) uint64 {
	var v uint64
	n := len(bits)
	if n > MaxWidth {
		n = MaxWidth
	}
	for i := 0; i < n; i++ {
		if bits[i]&1 == 0 {
			continue
		}
		if msbFirst {
			v |= 1 << uint(n-1-i)
		} else {
			v |= 1 << uint(i)
		}
	}
	return v
}

// Mask returns a value with the low width bits set
func Mask(width int) uint64 {
	if width <= 0 {
		return 0
	}
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}

// ValidateWidth checks a chunk width
func ValidateWidth(width int) error {
	if width < 1 || width > MaxWidth {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrWidth, width, MaxWidth)
	}
	return nil
}
