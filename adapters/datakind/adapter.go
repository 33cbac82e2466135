// Package datakind converts generator output between bits, integers and floats
// and guesses which kind an untagged sample holds.
package datakind

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"rngbench/domain/core"
	"rngbench/domain/sample"
	"rngbench/internal/bitpack"
)

// FloatChunkBits is the number of bits folded into one float
const FloatChunkBits = 32

const floatChunkMax = float64(1<<FloatChunkBits - 1)

// BitsToFloats reads 32-bit MSB-first chunks and scales each into [0,1].
// A trailing partial chunk is dropped.
func BitsToFloats(bits sample.BitStream) []float64 {
	n := len(bits) / FloatChunkBits
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		chunk := bits[i*FloatChunkBits : (i+1)*FloatChunkBits]
		out[i] = float64(bitpack.Unpack(chunk, true)) / floatChunkMax
	}
	return out
}

// IntegersToFloats min-max normalizes the whole sample. A constant sample
// maps to 0.5 everywhere.
func IntegersToFloats(values []uint64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	data := make(stats.Float64Data, len(values))
	for i, v := range values {
		data[i] = float64(v)
	}
	lo, _ := data.Min()
	hi, _ := data.Max()

	out := make([]float64, len(values))
	span := hi - lo
	for i, v := range data {
		if span == 0 {
			out[i] = 0.5
			continue
		}
		out[i] = (v - lo) / span
	}
	return out
}

// IntegersToBits keeps the least significant bit of each integer
func IntegersToBits(values []uint64) sample.BitStream {
	out := make(sample.BitStream, len(values))
	for i, v := range values {
		out[i] = uint8(v & 1)
	}
	return out
}

// FloatsToBits thresholds each float at 0.5
func FloatsToBits(values []float64) sample.BitStream {
	out := make(sample.BitStream, len(values))
	for i, v := range values {
		if v > 0.5 {
			out[i] = 1
		}
	}
	return out
}

// ToBits converts a tagged sample set into a bit stream
func ToBits(s sample.SampleSet) (sample.BitStream, error) {
	switch s.Kind {
	case sample.KindBits:
		if s.Bits == nil {
			return sample.BitStream{}, nil
		}
		return s.Bits, nil
	case sample.KindIntegers:
		return IntegersToBits(s.Integers), nil
	case sample.KindFloats:
		return FloatsToBits(s.Floats), nil
	}
	return nil, core.NewConfigurationError("kind", fmt.Sprintf("unknown data kind %q", s.Kind))
}

// ToFloats converts a tagged sample set into floats in [0,1]
func ToFloats(s sample.SampleSet) ([]float64, error) {
	switch s.Kind {
	case sample.KindBits:
		return BitsToFloats(s.Bits), nil
	case sample.KindIntegers:
		return IntegersToFloats(s.Integers), nil
	case sample.KindFloats:
		if s.Floats == nil {
			return []float64{}, nil
		}
		return s.Floats, nil
	}
	return nil, core.NewConfigurationError("kind", fmt.Sprintf("unknown data kind %q", s.Kind))
}

// Detect guesses the kind of a generator's output. Generators registered as
// bit streams are BITS; otherwise the first sample decides: 0 or 1 is BITS,
// another integer is INTEGERS, anything else FLOATS. Callers that know the
// kind should tag the SampleSet instead, since a short integer sample can
// look like bits.
func Detect(generator string, bitStream bool, probe float64) sample.DataKind {
	if bitStream || strings.HasSuffix(generator, "_bit_stream") {
		return sample.KindBits
	}
	if math.IsNaN(probe) || math.IsInf(probe, 0) || probe != math.Trunc(probe) {
		return sample.KindFloats
	}
	if probe == 0 || probe == 1 {
		return sample.KindBits
	}
	return sample.KindIntegers
}

// DetectValues probes the first element of raw values
func DetectValues(values []float64) sample.DataKind {
	if len(values) == 0 {
		return sample.KindFloats
	}
	return Detect("", false, values[0])
}

// FromValues tags raw numeric output using DetectValues. Integers must be
// non-negative to survive the conversion.
func FromValues(values []float64) sample.SampleSet {
	switch DetectValues(values) {
	case sample.KindBits:
		bits := make(sample.BitStream, len(values))
		for i, v := range values {
			if v != 0 {
				bits[i] = 1
			}
		}
		return sample.BitsSet(bits)
	case sample.KindIntegers:
		ints := make([]uint64, len(values))
		for i, v := range values {
			if v > 0 {
				ints[i] = uint64(v)
			}
		}
		return sample.IntegersSet(ints)
	}
	return sample.FloatsSet(values)
}
