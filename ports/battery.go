package ports

import (
	"context"

	"rngbench/domain/sample"
	"rngbench/domain/verdict"
)

// TestInfo describes one battery test
type TestInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Legacy      bool   `json:"legacy"`
	MinBits     int    `json:"min_bits,omitempty"`
}

// BatteryPort runs statistical tests over generated samples
type BatteryPort interface {
	// Run executes one test. Unknown names are a configuration error; every
	// other failure is reported inside the Outcome.
	Run(ctx context.Context, test string, bits sample.BitStream, floats []float64, params map[string]interface{}) (verdict.Outcome, error)

	// Resolve maps a test name, including short forms, to its canonical name
	Resolve(test string) (string, error)

	// Tests lists the available tests in display order
	Tests() []TestInfo
}
