package prng

import "math/bits"

// mulAddMod computes (a*x + c) mod m over the full 128-bit product.
// m == 0 means a modulus of 2^64.
func mulAddMod(a, x, c, m uint64) uint64 {
	hi, lo := bits.Mul64(a, x)
	var carry uint64
	lo, carry = bits.Add64(lo, c, 0)
	hi += carry
	if m == 0 {
		return lo
	}
	_, rem := bits.Div64(hi%m, lo, m)
	return rem
}

func mulMod(a, b, m uint64) uint64 {
	return mulAddMod(a, b, 0, m)
}

// bitLength mirrors an integer's bit length with m == 0 standing for 2^64
func bitLength(m uint64) int {
	if m == 0 {
		return 64
	}
	return bits.Len64(m)
}

func isPowerOfTwo(v uint64) bool {
	return v != 0 && v&(v-1) == 0
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// mix64 is the SplitMix64 finalizer
func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// foldSeed reduces a seed tuple to one 64-bit value
func foldSeed(values []uint64) uint64 {
	if len(values) == 1 {
		return values[0]
	}
	var h uint64
	for _, v := range values {
		h = mix64((h ^ v) + splitMixGamma)
	}
	return h
}
