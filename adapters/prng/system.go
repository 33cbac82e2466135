package prng

import (
	"fmt"
	"io"

	"rngbench/domain/core"
	"rngbench/internal/bitpack"
)

// entropySource reads ceil(width/8) bytes per step, big-endian, masked to
// width bits. Read failures are reported, never retried.
type entropySource struct {
	r    io.Reader
	mask uint64
	buf  []byte
}

func newEntropySource(r io.Reader, width int) *entropySource {
	return &entropySource{
		r:    r,
		mask: bitpack.Mask(width),
		buf:  make([]byte, (width+7)/8),
	}
}

func (g *entropySource) Next() (uint64, error) {
	if _, err := io.ReadFull(g.r, g.buf); err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrEntropyExhausted, err)
	}
	var v uint64
	for _, b := range g.buf {
		v = v<<8 | uint64(b)
	}
	return v & g.mask, nil
}

func newSystemStepper(_ Request, width int, e *env) (bitpack.Stepper, error) {
	return newEntropySource(e.entropy, width), nil
}
