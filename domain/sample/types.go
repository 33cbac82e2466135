package sample

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BitStream is an ordered sequence of 0/1 values. Order is generation order.
type BitStream []uint8

// Len returns the number of bits
func (b BitStream) Len() int { return len(b) }

// Ones counts the set bits
func (b BitStream) Ones() int {
	ones := 0
	for _, bit := range b {
		ones += int(bit & 1)
	}
	return ones
}

// Mean returns the proportion of ones, 0 for an empty stream
func (b BitStream) Mean() float64 {
	if len(b) == 0 {
		return 0
	}
	return float64(b.Ones()) / float64(len(b))
}

// Validate checks the alphabet invariant
func (b BitStream) Validate() error {
	for i, bit := range b {
		if bit > 1 {
			return fmt.Errorf("bit %d has value %d, expected 0 or 1", i, bit)
		}
	}
	return nil
}

// String renders the stream as a run of '0'/'1' characters
func (b BitStream) String() string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, bit := range b {
		sb.WriteByte('0' + bit)
	}
	return sb.String()
}

// ParseBitStream parses a string of '0'/'1' characters
func ParseBitStream(s string) (BitStream, error) {
	out := make(BitStream, 0, len(s))
	for i, r := range s {
		switch r {
		case '0':
			out = append(out, 0)
		case '1':
			out = append(out, 1)
		default:
			return nil, fmt.Errorf("invalid bit %q at position %d", r, i)
		}
	}
	return out, nil
}

// MarshalJSON writes the stream as an array of 0/1 numbers. A plain []uint8
// would otherwise be base64 encoded.
func (b BitStream) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	var sb strings.Builder
	sb.Grow(2*len(b) + 2)
	sb.WriteByte('[')
	for i, bit := range b {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('0' + bit&1)
	}
	sb.WriteByte(']')
	return []byte(sb.String()), nil
}

// UnmarshalJSON accepts an array of 0/1 numbers or a "0101" string
func (b *BitStream) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseBitStream(s)
		if err != nil {
			return err
		}
		*b = parsed
		return nil
	}
	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("bit stream must be an array of 0/1 or a bit string: %w", err)
	}
	if values == nil {
		*b = nil
		return nil
	}
	out := make(BitStream, len(values))
	for i, v := range values {
		if v != 0 && v != 1 {
			return fmt.Errorf("bit %d has value %d, expected 0 or 1", i, v)
		}
		out[i] = uint8(v)
	}
	*b = out
	return nil
}

// DataKind tags which representation a SampleSet carries
type DataKind string

const (
	KindBits     DataKind = "bits"
	KindIntegers DataKind = "integers"
	KindFloats   DataKind = "floats"
)

// ParseDataKind validates a data kind name
func ParseDataKind(s string) (DataKind, error) {
	switch DataKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindBits:
		return KindBits, nil
	case KindIntegers:
		return KindIntegers, nil
	case KindFloats:
		return KindFloats, nil
	}
	return "", fmt.Errorf("unknown data kind %q", s)
}

// SampleSet carries exactly one of Bits, Integers or Floats, selected by Kind
type SampleSet struct {
	Kind     DataKind  `json:"kind"`
	Bits     BitStream `json:"bits,omitempty"`
	Integers []uint64  `json:"integers,omitempty"`
	Floats   []float64 `json:"floats,omitempty"`
}

// Len returns the number of samples in the active representation
func (s SampleSet) Len() int {
	switch s.Kind {
	case KindBits:
		return len(s.Bits)
	case KindIntegers:
		return len(s.Integers)
	case KindFloats:
		return len(s.Floats)
	}
	return 0
}

// BitsSet wraps a bit stream
func BitsSet(b BitStream) SampleSet { return SampleSet{Kind: KindBits, Bits: b} }

// IntegersSet wraps integer samples
func IntegersSet(v []uint64) SampleSet { return SampleSet{Kind: KindIntegers, Integers: v} }

// FloatsSet wraps float samples
func FloatsSet(v []float64) SampleSet { return SampleSet{Kind: KindFloats, Floats: v} }

// Seed is an integer, a short tuple of integers, or absent.
// The zero value is absent.
type Seed struct {
	values []uint64
}

// NoSeed returns an absent seed
func NoSeed() Seed { return Seed{} }

// SeedOf builds a seed from one or more integers
func SeedOf(values ...uint64) Seed {
	if len(values) == 0 {
		return Seed{}
	}
	cp := make([]uint64, len(values))
	copy(cp, values)
	return Seed{values: cp}
}

// SeedFromInt64 builds a single-integer seed, keeping the two's complement bit pattern
func SeedFromInt64(v int64) Seed { return SeedOf(uint64(v)) }

// IsAbsent reports whether no seed was supplied
func (s Seed) IsAbsent() bool { return len(s.values) == 0 }

// IsTuple reports whether more than one integer was supplied
func (s Seed) IsTuple() bool { return len(s.values) > 1 }

// Values returns a copy of the seed integers
func (s Seed) Values() []uint64 {
	cp := make([]uint64, len(s.values))
	copy(cp, s.values)
	return cp
}

// First returns the first seed integer, or def when absent
func (s Seed) First(def uint64) uint64 {
	if len(s.values) == 0 {
		return def
	}
	return s.values[0]
}

// At returns the i-th seed integer, or def when not supplied
func (s Seed) At(i int, def uint64) uint64 {
	if i < 0 || i >= len(s.values) {
		return def
	}
	return s.values[i]
}

// String renders "none", "42" or "(42,54)"
func (s Seed) String() string {
	switch len(s.values) {
	case 0:
		return "none"
	case 1:
		return strconv.FormatUint(s.values[0], 10)
	}
	parts := make([]string, len(s.values))
	for i, v := range s.values {
		parts[i] = strconv.FormatUint(v, 10)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// ParseSeed accepts "", "none", "42", "-7", "42,54" or "(42,54)"
func ParseSeed(s string) (Seed, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimSuffix(s, ")"), "(")
	if s == "" || strings.EqualFold(s, "none") {
		return NoSeed(), nil
	}
	parts := strings.Split(s, ",")
	values := make([]uint64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, "-") {
			v, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				return Seed{}, fmt.Errorf("invalid seed component %q: %w", p, err)
			}
			values = append(values, uint64(v))
			continue
		}
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Seed{}, fmt.Errorf("invalid seed component %q: %w", p, err)
		}
		values = append(values, v)
	}
	return SeedOf(values...), nil
}
