package container

import (
	"context"
	"fmt"
	"log"

	"rngbench/adapters/battery"
	"rngbench/adapters/postgres"
	"rngbench/adapters/prng"
	"rngbench/app"
	"rngbench/internal"
	"rngbench/internal/config"
	"rngbench/internal/testkit"
	"rngbench/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB     *sqlx.DB
	runner prng.ProcessRunner

	// Adapters
	Registry   *prng.Registry
	Generators ports.GeneratorPort
	Battery    ports.BatteryPort
	Results    ports.ResultRepository

	// Services
	TestService      *app.TestService
	BenchmarkService *app.BenchmarkService
}

// Option customizes container construction
type Option func(*Container)

// WithRegistry replaces the generator registry, e.g. with fixed entropy
func WithRegistry(reg *prng.Registry) Option {
	return func(c *Container) { c.Registry = reg }
}

// WithRunner sets the process runner used for external generators
func WithRunner(runner prng.ProcessRunner) Option {
	return func(c *Container) { c.runner = runner }
}

// New creates a container with in-memory storage. Call InitWithDatabase
// afterwards to persist results in PostgreSQL.
func New(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	level, _ := internal.ParseLogLevel(cfg.LogLevel)
	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(level),
		runner: prng.NewExecRunner(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Registry == nil {
		c.Registry = prng.NewRegistry()
	}

	if err := c.registerExternalGenerators(); err != nil {
		return nil, fmt.Errorf("failed to register external generators: %w", err)
	}

	c.Generators = prng.NewSource(c.Registry)
	c.Battery = battery.New()
	c.Results = testkit.NewInMemoryResultRepository()
	c.initServices()

	return c, nil
}

// InitWithDatabase switches result storage to PostgreSQL
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	// Test database connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.Results = postgres.NewResultRepository(db)
	c.initServices()

	log.Printf("Container initialized successfully with database connection")
	return nil
}

func (c *Container) initServices() {
	c.TestService = app.NewTestService(c.Generators, c.Battery, c.Results, c.Logger)
	c.BenchmarkService = app.NewBenchmarkService(c.Generators, c.Battery, c.Results, c.Config.Runner.Workers, c.Logger)
}

func (c *Container) registerExternalGenerators() error {
	for _, g := range c.Config.External.Generators {
		ext, err := prng.NewExternal(prng.Name(g.Name), g.Path, c.Config.External.Timeout, c.runner)
		if err != nil {
			return err
		}
		if err := c.Registry.Register(ext); err != nil {
			return err
		}
		c.Logger.Info("[Container] registered external generator %s -> %s", g.Name, g.Path)
	}
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
