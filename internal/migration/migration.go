package migration

import (
	"context"

	"rngbench/internal"
	"rngbench/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
	logger  *internal.Logger
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "2.0.0",
		logger:  internal.DefaultLogger,
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

type step struct {
	name string
	sql  string
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, s := range r.steps() {
		if _, err := db.ExecContext(ctx, s.sql); err != nil {
			return errors.WithCode(errors.CodeDatabaseError, errors.Wrapf(err, "failed to %s", s.name))
		}
		r.logger.Debug("[Migration] %s", s.name)
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			// Log but don't fail on index creation errors
			r.logger.Warn("[Migration] failed to create index: %v", err)
		}
	}

	r.logger.Info("[Migration] schema at version %s", r.version)
	return nil
}

func (r *MigrationRunner) steps() []step {
	return []step{
		{"create test_results table", createTestResultsTable},
		{"add generation_time column", addGenerationTimeColumn},
		{"create comparisons table", createComparisonsTable},
	}
}

const createTestResultsTable = `
	CREATE TABLE IF NOT EXISTS test_results (
		id UUID PRIMARY KEY,
		generator VARCHAR(100) NOT NULL,
		test_name VARCHAR(100) NOT NULL,
		samples_count INTEGER NOT NULL DEFAULT 0,
		seed VARCHAR(200) NOT NULL DEFAULT 'none',
		parameters JSONB,
		passed BOOLEAN NOT NULL,
		score DOUBLE PRECISION NOT NULL DEFAULT 0,
		status VARCHAR(30) NOT NULL,
		statistics JSONB,
		error_message TEXT,
		execution_time DOUBLE PRECISION NOT NULL DEFAULT 0,
		bits JSONB,
		stream_fingerprint VARCHAR(64),
		fingerprint JSONB,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)
`

// generation_time arrived after the first schema; older databases get it here
const addGenerationTimeColumn = `
	DO $$
	BEGIN
		IF NOT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = 'test_results' AND column_name = 'generation_time'
		) THEN
			ALTER TABLE test_results ADD COLUMN generation_time DOUBLE PRECISION NOT NULL DEFAULT 0;
		END IF;
	END $$;
`

const createComparisonsTable = `
	CREATE TABLE IF NOT EXISTS comparisons (
		id UUID PRIMARY KEY,
		fingerprint VARCHAR(64) NOT NULL,
		manifest JSONB NOT NULL,
		cells JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)
`

var indexes = []string{
	// Test results indexes
	"CREATE INDEX IF NOT EXISTS idx_results_generator ON test_results(generator)",
	"CREATE INDEX IF NOT EXISTS idx_results_test_name ON test_results(test_name)",
	"CREATE INDEX IF NOT EXISTS idx_results_generator_test ON test_results(generator, test_name)",
	"CREATE INDEX IF NOT EXISTS idx_results_created_at ON test_results(created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_results_stream ON test_results(stream_fingerprint)",

	// Comparisons indexes
	"CREATE INDEX IF NOT EXISTS idx_comparisons_fingerprint ON comparisons(fingerprint)",
	"CREATE INDEX IF NOT EXISTS idx_comparisons_created_at ON comparisons(created_at DESC)",
}
