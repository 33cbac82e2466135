package prng

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"

	"rngbench/domain/core"
	"rngbench/internal/bitpack"
)

// librarySource delegates to math/rand. An absent seed draws one from the
// entropy source, so only seeded calls are reproducible.
type librarySource struct {
	rng *rand.Rand
}

func newLibrarySource(seed int64) *librarySource {
	return &librarySource{rng: rand.New(rand.NewSource(seed))}
}

func (g *librarySource) Next() (uint64, error) {
	return g.rng.Uint64(), nil
}

func newSeededStepper(req Request, _ int, e *env) (bitpack.Stepper, error) {
	if req.Seed.IsAbsent() {
		var buf [8]byte
		if _, err := io.ReadFull(e.entropy, buf[:]); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrEntropyExhausted, err)
		}
		return newLibrarySource(int64(binary.BigEndian.Uint64(buf[:]))), nil
	}
	return newLibrarySource(int64(foldSeed(req.Seed.Values()))), nil
}
