package testkit

import (
	"bytes"

	"rngbench/adapters/battery"
	"rngbench/adapters/prng"
	"rngbench/app"
	"rngbench/internal"
	"rngbench/ports"
)

// TestKit wires the services against in-memory storage and a fixed entropy
// pool so tests that touch the system generator stay reproducible
type TestKit struct {
	registry *prng.Registry
	results  *InMemoryResultRepository
	logger   *internal.Logger
}

// NewTestKit creates a kit whose system entropy is the repeating byte pattern
// 0x00, 0x01, ... 0xff
func NewTestKit() *TestKit {
	return NewTestKitWithEntropy(bytes.NewReader(entropyPool(1 << 16)))
}

// NewTestKitWithEntropy creates a kit reading system entropy from r
func NewTestKitWithEntropy(r *bytes.Reader) *TestKit {
	return &TestKit{
		registry: prng.NewRegistry(prng.WithEntropy(r)),
		results:  NewInMemoryResultRepository(),
		logger:   internal.NewLogger(internal.LogLevelError),
	}
}

func entropyPool(n int) []byte {
	pool := make([]byte, n)
	for i := range pool {
		pool[i] = byte(i)
	}
	return pool
}

// Registry returns the generator registry
func (t *TestKit) Registry() *prng.Registry { return t.registry }

// Generators returns the registry behind the generator port
func (t *TestKit) Generators() ports.GeneratorPort { return prng.NewSource(t.registry) }

// Battery returns the battery port
func (t *TestKit) Battery() ports.BatteryPort { return battery.New() }

// Results returns the shared in-memory repository
func (t *TestKit) Results() *InMemoryResultRepository { return t.results }

// TestService returns a test service over the kit's ports
func (t *TestKit) TestService() *app.TestService {
	return app.NewTestService(t.Generators(), t.Battery(), t.results, t.logger)
}

// BenchmarkService returns a benchmark service over the kit's ports
func (t *TestKit) BenchmarkService(workers int) *app.BenchmarkService {
	return app.NewBenchmarkService(t.Generators(), t.Battery(), t.results, workers, t.logger)
}
