package run

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"rngbench/domain/core"
	"rngbench/domain/verdict"
)

// Manifest pins down everything needed to replay a comparison run.
// It is written before any cell executes.
type Manifest struct {
	ID          core.BenchmarkID `json:"id"`
	Generators  []string         `json:"generators"`
	Tests       []string         `json:"tests"`
	Samples     int              `json:"samples"`
	Seed        string           `json:"seed"`
	CodeVersion string           `json:"code_version"`
	Fingerprint core.Hash        `json:"fingerprint"`
	CreatedAt   core.Timestamp   `json:"created_at"`
}

// NewManifest creates a manifest for a generator x test comparison
func NewManifest(id core.BenchmarkID, generators, tests []string, samples int, seed, codeVersion string) *Manifest {
	return &Manifest{
		ID:          id,
		Generators:  append([]string(nil), generators...),
		Tests:       append([]string(nil), tests...),
		Samples:     samples,
		Seed:        seed,
		CodeVersion: codeVersion,
		Fingerprint: computeManifestFingerprint(generators, tests, samples, seed, codeVersion),
		CreatedAt:   core.Now(),
	}
}

func computeManifestFingerprint(generators, tests []string, samples int, seed, codeVersion string) core.Hash {
	data := fmt.Sprintf("generators:%s|tests:%s|samples:%d|seed:%s|code:%s",
		strings.Join(generators, ","), strings.Join(tests, ","), samples, seed, codeVersion)
	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.ID).IsEmpty() {
		return core.NewConfigurationError("id", "cannot be empty")
	}
	if len(m.Generators) == 0 {
		return core.NewConfigurationError("generators", "at least one generator is required")
	}
	if len(m.Tests) == 0 {
		return core.NewConfigurationError("tests", "at least one test is required")
	}
	if m.Samples <= 0 {
		return core.NewConfigurationError("samples", "must be positive")
	}
	if m.CodeVersion == "" {
		return core.NewConfigurationError("code_version", "cannot be empty")
	}
	return nil
}

// Cell is one generator/test pair of a comparison
type Cell struct {
	Generator     string         `json:"generator"`
	TestName      string         `json:"test_name"`
	Passed        bool           `json:"passed"`
	Score         float64        `json:"score"`
	Status        verdict.Status `json:"status"`
	PValue        *float64       `json:"p_value,omitempty"`
	Error         string         `json:"error,omitempty"`
	ExecutionTime float64        `json:"execution_time"`
}

// CellFromResult condenses a stored result into a matrix cell
func CellFromResult(r *TestResult) Cell {
	c := Cell{
		Generator:     r.Generator,
		TestName:      r.TestName,
		Passed:        r.Passed,
		Score:         r.Score,
		Status:        r.Status,
		Error:         r.Error,
		ExecutionTime: r.ExecutionTime,
	}
	if p, ok := r.PValue(); ok {
		c.PValue = &p
	}
	return c
}

// Comparison is the generator x test matrix. Cells are stored row-major in
// manifest order.
type Comparison struct {
	Manifest *Manifest `json:"manifest"`
	Cells    []Cell    `json:"cells"`
}

// NewComparison allocates an empty matrix for the manifest
func NewComparison(m *Manifest) *Comparison {
	cells := make([]Cell, len(m.Generators)*len(m.Tests))
	for i, g := range m.Generators {
		for j, t := range m.Tests {
			cells[i*len(m.Tests)+j] = Cell{Generator: g, TestName: t}
		}
	}
	return &Comparison{Manifest: m, Cells: cells}
}

// Set stores a cell at its row and column
func (c *Comparison) Set(row, col int, cell Cell) {
	c.Cells[row*len(c.Manifest.Tests)+col] = cell
}

// Cell looks up a generator/test pair
func (c *Comparison) Cell(generator, test string) (Cell, bool) {
	for _, cell := range c.Cells {
		if cell.Generator == generator && cell.TestName == test {
			return cell, true
		}
	}
	return Cell{}, false
}

// Row returns the cells of one generator in test order
func (c *Comparison) Row(i int) []Cell {
	n := len(c.Manifest.Tests)
	return c.Cells[i*n : (i+1)*n]
}

// PassCount counts passing tests per generator, in manifest order
func (c *Comparison) PassCount() []int {
	out := make([]int, len(c.Manifest.Generators))
	for i := range c.Manifest.Generators {
		for _, cell := range c.Row(i) {
			if cell.Passed {
				out[i]++
			}
		}
	}
	return out
}
