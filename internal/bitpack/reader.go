package bitpack

// Stepper advances a generator by one step and returns the value to pack.
type Stepper interface {
	Next() (uint64, error)
}

// StepFunc adapts a function to Stepper
type StepFunc func() (uint64, error)

// Next calls f
func (f StepFunc) Next() (uint64, error) { return f() }

// Reader emits the bits of successive Stepper values, width bits per step.
// It holds at most one chunk, so memory does not grow with the bits read.
type Reader struct {
	step     Stepper
	width    int
	msbFirst bool
	chunk    [MaxWidth]uint8
	pos      int
	n        int
	err      error
	steps    uint64
}

// NewReader creates a Reader; width must be in [1, MaxWidth]
func NewReader(step Stepper, width int, msbFirst bool) (*Reader, error) {
	if err := ValidateWidth(width); err != nil {
		return nil, err
	}
	return &Reader{step: step, width: width, msbFirst: msbFirst}, nil
}

// Read fills p with the next bits. It returns fewer than len(p) bits only
// when the stepper fails; the failure is returned and sticks.
func (r *Reader) Read(p []uint8) (int, error) {
	written := 0
	for written < len(p) {
		if r.pos == r.n {
			if r.err != nil {
				return written, r.err
			}
			if err := r.fill(); err != nil {
				r.err = err
				return written, err
			}
		}
		c := copy(p[written:], r.chunk[r.pos:r.n])
		r.pos += c
		written += c
	}
	return written, nil
}

// Steps reports how many values have been drawn from the stepper
func (r *Reader) Steps() uint64 { return r.steps }

func (r *Reader) fill() error {
	v, err := r.step.Next()
	if err != nil {
		return err
	}
	r.steps++
	AppendPacked(r.chunk[:0], v, r.width, r.msbFirst)
	r.pos, r.n = 0, r.width
	return nil
}

// ReadN draws exactly n bits. The last step's chunk is truncated to the
// remaining count.
func ReadN(step Stepper, n, width int, msbFirst bool) ([]uint8, error) {
	if n <= 0 {
		return []uint8{}, nil
	}
	r, err := NewReader(step, width, msbFirst)
	if err != nil {
		return nil, err
	}
	out := make([]uint8, n)
	if _, err := r.Read(out); err != nil {
		return nil, err
	}
	return out, nil
}
