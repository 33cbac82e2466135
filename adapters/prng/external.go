package prng

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"rngbench/adapters/datakind"
	"rngbench/domain/core"
	"rngbench/domain/sample"
)

// DefaultExternalTimeout bounds one out-of-process generation call
const DefaultExternalTimeout = 60 * time.Second

// ProcessRunner executes a generator binary and returns its stdout
type ProcessRunner interface {
	Run(ctx context.Context, path string, args ...string) ([]byte, error)
}

// ExecRunner runs binaries with os/exec
type ExecRunner struct{}

// NewExecRunner creates a runner that executes real processes
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes path and returns stdout; stderr is folded into the error
func (ExecRunner) Run(ctx context.Context, path string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			err = fmt.Errorf("%w: exit code %d", core.ErrProcessExit, exitErr.ExitCode())
		}
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// External is a generator living in a separate binary. It is invoked as
// `<path> <seed> <n_bits>` and must print {"bits":[...],"time":<seconds>}
// or the raw-values form described at ParseExternalOutput.
type External struct {
	name    Name
	path    string
	timeout time.Duration
	runner  ProcessRunner
}

// NewExternal registers nothing by itself; pass the result to Registry.Register
func NewExternal(name Name, path string, timeout time.Duration, runner ProcessRunner) (*External, error) {
	if name == "" {
		return nil, core.NewConfigurationError("name", "external generator needs a name")
	}
	if IsBuiltin(name) {
		return nil, core.NewConfigurationError("name", fmt.Sprintf("%q shadows a builtin generator", name))
	}
	if path == "" {
		return nil, core.NewConfigurationError("path", fmt.Sprintf("external generator %q has no binary", name))
	}
	if timeout <= 0 {
		timeout = DefaultExternalTimeout
	}
	if runner == nil {
		runner = NewExecRunner()
	}
	return &External{name: name, path: path, timeout: timeout, runner: runner}, nil
}

func (e *External) Name() Name { return e.name }

func (e *External) Description() string { return "External binary " + e.path }

// Path returns the binary location
func (e *External) Path() string { return e.path }

// Generate runs the binary once. Only the seed and bit count cross the
// process boundary; params and chunk width are the binary's own business.
func (e *External) Generate(ctx context.Context, req Request) (Result, error) {
	if err := validateCount(req.NBits); err != nil {
		return Result{}, err
	}
	res := Result{Generator: e.name, Bits: sample.BitStream{}}
	if req.NBits == 0 {
		return res, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	seed := strconv.FormatUint(req.Seed.First(DefaultExternalSeed), 10)
	start := time.Now()
	out, err := e.runner.Run(ctx, e.path, seed, strconv.Itoa(req.NBits))
	wall := time.Since(start)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("%w: %s after %s", core.ErrExternalTimeout, e.name, e.timeout)
		}
		if core.IsExternalSourceError(err) {
			return Result{}, fmt.Errorf("%s: %w", e.name, err)
		}
		return Result{}, core.NewExternalSourceError(string(e.name), err)
	}

	set, reported, err := ParseExternalOutput(out, req.NBits)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", e.name, err)
	}
	bits, err := datakind.ToBits(set)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", e.name, err)
	}
	res.Bits = bits
	if set.Kind != sample.KindBits {
		res.Samples = &set
	}
	res.Elapsed = wall
	if reported > 0 {
		res.Elapsed = reported
	}
	return res, nil
}

// ParseExternalOutput validates the JSON an external generator prints.
//
// The usual form is {"bits":[...]} holding exactly n values, each 0 or 1.
// A binary may instead print raw numbers as {"values":[...]}, optionally
// tagged with "kind" (bits, integers or floats); untagged values are
// classified by probing the first one. Either array must hold n elements.
func ParseExternalOutput(out []byte, n int) (sample.SampleSet, time.Duration, error) {
	if !gjson.ValidBytes(out) {
		return sample.SampleSet{}, 0, fmt.Errorf("%w: stdout is not valid JSON", core.ErrMalformedOutput)
	}
	doc := gjson.ParseBytes(out)

	var elapsed time.Duration
	if t := doc.Get("time"); t.Type == gjson.Number && t.Num > 0 {
		elapsed = time.Duration(t.Num * float64(time.Second))
	}

	if field := doc.Get("bits"); field.Exists() {
		values, err := numbers(field, "bits", n)
		if err != nil {
			return sample.SampleSet{}, 0, err
		}
		set, err := tagValues(values, sample.KindBits)
		return set, elapsed, err
	}

	field := doc.Get("values")
	if !field.Exists() {
		return sample.SampleSet{}, 0, fmt.Errorf("%w: missing \"bits\" array", core.ErrMalformedOutput)
	}
	values, err := numbers(field, "values", n)
	if err != nil {
		return sample.SampleSet{}, 0, err
	}
	kind := sample.DataKind("")
	if k := doc.Get("kind"); k.Exists() {
		if kind, err = sample.ParseDataKind(k.String()); err != nil {
			return sample.SampleSet{}, 0, fmt.Errorf("%w: %v", core.ErrMalformedOutput, err)
		}
	}
	set, err := tagValues(values, kind)
	return set, elapsed, err
}

func numbers(field gjson.Result, key string, n int) ([]float64, error) {
	if !field.IsArray() {
		return nil, fmt.Errorf("%w: %q is not an array", core.ErrMalformedOutput, key)
	}
	elems := field.Array()
	if len(elems) != n {
		return nil, fmt.Errorf("%w: expected %d %s, got %d", core.ErrMalformedOutput, n, key, len(elems))
	}
	out := make([]float64, n)
	for i, v := range elems {
		if v.Type != gjson.Number || v.Num < 0 {
			return nil, fmt.Errorf("%w: element %d is %s, not a non-negative number", core.ErrMalformedOutput, i, v.Raw)
		}
		out[i] = v.Num
	}
	return out, nil
}

// tagValues builds the sample set for kind; an empty kind is detected
func tagValues(values []float64, kind sample.DataKind) (sample.SampleSet, error) {
	if kind == "" {
		return datakind.FromValues(values), nil
	}
	switch kind {
	case sample.KindBits:
		bits := make(sample.BitStream, len(values))
		for i, v := range values {
			if v != 0 && v != 1 {
				return sample.SampleSet{}, fmt.Errorf("%w: element %d is %v, not 0 or 1", core.ErrMalformedOutput, i, v)
			}
			bits[i] = uint8(v)
		}
		return sample.BitsSet(bits), nil
	case sample.KindIntegers:
		ints := make([]uint64, len(values))
		for i, v := range values {
			if v != math.Trunc(v) || v >= 1<<64 {
				return sample.SampleSet{}, fmt.Errorf("%w: element %d is %v, not an unsigned integer", core.ErrMalformedOutput, i, v)
			}
			ints[i] = uint64(v)
		}
		return sample.IntegersSet(ints), nil
	}
	return sample.FloatsSet(values), nil
}
