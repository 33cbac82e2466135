package prng

import (
	"context"
	"io"
	"time"

	"rngbench/domain/sample"
	"rngbench/internal/bitpack"
)

// generateChunk bounds how many bits are produced between context checks
const generateChunk = 1 << 16

type env struct {
	entropy io.Reader
}

type stepperFactory func(req Request, width int, e *env) (bitpack.Stepper, error)

// algorithm is an in-process generator: a width rule plus a state factory
type algorithm struct {
	name        Name
	description string
	width       func(Params) int
	build       stepperFactory
	env         *env
}

func fixedWidth(w int) func(Params) int {
	return func(Params) int { return w }
}

func (a *algorithm) Name() Name          { return a.name }
func (a *algorithm) Description() string { return a.description }

// DefaultWidth is the chunk width used when a request leaves it unset
func (a *algorithm) DefaultWidth(p Params) int { return a.width(p) }

// Open validates the request and returns an incremental reader over the stream
func (a *algorithm) Open(req Request) (*bitpack.Reader, error) {
	r, _, err := a.open(req)
	return r, err
}

func (a *algorithm) open(req Request) (*bitpack.Reader, int, error) {
	width, err := resolveWidth(req.BitsPerValue, a.width(req.Params))
	if err != nil {
		return nil, 0, err
	}
	step, err := a.build(req, width, a.env)
	if err != nil {
		return nil, 0, err
	}
	r, err := bitpack.NewReader(step, width, req.Order == MSBFirst)
	if err != nil {
		return nil, 0, err
	}
	return r, width, nil
}

// Generate produces exactly req.NBits bits
func (a *algorithm) Generate(ctx context.Context, req Request) (Result, error) {
	if err := validateCount(req.NBits); err != nil {
		return Result{}, err
	}
	reader, width, err := a.open(req)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Generator:    a.name,
		Bits:         make(sample.BitStream, req.NBits),
		BitsPerValue: width,
	}
	if req.NBits == 0 {
		return res, nil
	}

	start := time.Now()
	for off := 0; off < req.NBits; off += generateChunk {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		end := min(off+generateChunk, req.NBits)
		if _, err := reader.Read(res.Bits[off:end]); err != nil {
			return Result{}, err
		}
	}
	res.Elapsed = time.Since(start)
	res.Steps = reader.Steps()
	return res, nil
}
