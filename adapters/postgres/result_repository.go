package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"rngbench/domain/core"
	"rngbench/domain/run"
	"rngbench/domain/sample"
	"rngbench/domain/verdict"
	"rngbench/ports"
)

// ResultRepositoryImpl implements ResultRepository for PostgreSQL
type ResultRepositoryImpl struct {
	db *sqlx.DB
}

// NewResultRepository creates a new PostgreSQL result repository
func NewResultRepository(db *sqlx.DB) ports.ResultRepository {
	return &ResultRepositoryImpl{db: db}
}

// resultRow mirrors the test_results table
type resultRow struct {
	ID                string         `db:"id"`
	Generator         string         `db:"generator"`
	TestName          string         `db:"test_name"`
	SamplesCount      int            `db:"samples_count"`
	Seed              string         `db:"seed"`
	Parameters        []byte         `db:"parameters"`
	Passed            bool           `db:"passed"`
	Score             float64        `db:"score"`
	Status            string         `db:"status"`
	Statistics        []byte         `db:"statistics"`
	ErrorMessage      sql.NullString `db:"error_message"`
	ExecutionTime     float64        `db:"execution_time"`
	GenerationTime    float64        `db:"generation_time"`
	Bits              []byte         `db:"bits"`
	StreamFingerprint sql.NullString `db:"stream_fingerprint"`
	Fingerprint       []byte         `db:"fingerprint"`
	CreatedAt         time.Time      `db:"created_at"`
}

const resultColumns = `id, generator, test_name, samples_count, seed, parameters, passed, score, status,
	statistics, error_message, execution_time, generation_time, bits, stream_fingerprint, fingerprint, created_at`

func toResultRow(r *run.TestResult) (*resultRow, error) {
	params, err := json.Marshal(r.Parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parameters: %w", err)
	}
	statistics, err := json.Marshal(r.Statistics)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal statistics: %w", err)
	}
	fingerprint, err := json.Marshal(r.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fingerprint: %w", err)
	}

	row := &resultRow{
		ID:                r.ID.String(),
		Generator:         r.Generator,
		TestName:          r.TestName,
		SamplesCount:      r.SamplesCount,
		Seed:              r.Seed,
		Parameters:        params,
		Passed:            r.Passed,
		Score:             r.Score,
		Status:            string(r.Status),
		Statistics:        statistics,
		ErrorMessage:      sql.NullString{String: r.Error, Valid: r.Error != ""},
		ExecutionTime:     r.ExecutionTime,
		GenerationTime:    r.GenerationTime,
		StreamFingerprint: sql.NullString{String: r.Stream.String(), Valid: r.Stream != ""},
		Fingerprint:       fingerprint,
		CreatedAt:         r.CreatedAt.Time(),
	}
	if r.Bits != nil {
		bits, err := json.Marshal(r.Bits)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal bits: %w", err)
		}
		row.Bits = bits
	}
	return row, nil
}

func (row *resultRow) toResult() (*run.TestResult, error) {
	r := &run.TestResult{
		ID:             core.ResultID(row.ID),
		Generator:      row.Generator,
		TestName:       row.TestName,
		SamplesCount:   row.SamplesCount,
		Seed:           row.Seed,
		Passed:         row.Passed,
		Score:          row.Score,
		Status:         verdict.Status(row.Status),
		Error:          row.ErrorMessage.String,
		ExecutionTime:  row.ExecutionTime,
		GenerationTime: row.GenerationTime,
		Stream:         core.StreamFingerprint(row.StreamFingerprint.String),
		CreatedAt:      core.NewTimestamp(row.CreatedAt),
	}

	if len(row.Parameters) > 0 {
		if err := json.Unmarshal(row.Parameters, &r.Parameters); err != nil {
			return nil, fmt.Errorf("failed to unmarshal parameters: %w", err)
		}
	}
	if len(row.Statistics) > 0 {
		if err := json.Unmarshal(row.Statistics, &r.Statistics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal statistics: %w", err)
		}
	}
	if len(row.Fingerprint) > 0 {
		if err := json.Unmarshal(row.Fingerprint, &r.Fingerprint); err != nil {
			return nil, fmt.Errorf("failed to unmarshal fingerprint: %w", err)
		}
	}
	if len(row.Bits) > 0 {
		var bits sample.BitStream
		if err := json.Unmarshal(row.Bits, &bits); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bits: %w", err)
		}
		r.Bits = bits
	}
	return r, nil
}

// SaveResult inserts or replaces a test result
func (r *ResultRepositoryImpl) SaveResult(ctx context.Context, result *run.TestResult) error {
	row, err := toResultRow(result)
	if err != nil {
		return err
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO test_results (
			id, generator, test_name, samples_count, seed, parameters, passed, score, status,
			statistics, error_message, execution_time, generation_time, bits, stream_fingerprint,
			fingerprint, created_at
		) VALUES (
			:id, :generator, :test_name, :samples_count, :seed, :parameters, :passed, :score, :status,
			:statistics, :error_message, :execution_time, :generation_time, :bits, :stream_fingerprint,
			:fingerprint, :created_at
		)
		ON CONFLICT (id) DO UPDATE SET
			passed = EXCLUDED.passed,
			score = EXCLUDED.score,
			status = EXCLUDED.status,
			statistics = EXCLUDED.statistics,
			error_message = EXCLUDED.error_message,
			execution_time = EXCLUDED.execution_time,
			generation_time = EXCLUDED.generation_time,
			bits = EXCLUDED.bits,
			stream_fingerprint = EXCLUDED.stream_fingerprint`, row)
	if err != nil {
		return fmt.Errorf("failed to save test result %s: %w", result.ID, err)
	}
	return nil
}

// GetResult retrieves a result by ID
func (r *ResultRepositoryImpl) GetResult(ctx context.Context, id core.ResultID) (*run.TestResult, error) {
	var row resultRow
	err := r.db.GetContext(ctx, &row, `SELECT `+resultColumns+` FROM test_results WHERE id = $1`, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrResultNotFound, id)
		}
		return nil, fmt.Errorf("failed to get test result: %w", err)
	}
	return row.toResult()
}

// ListResults returns results newest first
func (r *ResultRepositoryImpl) ListResults(ctx context.Context, filter run.ResultFilter) ([]*run.TestResult, error) {
	query, args := buildListQuery(filter)

	var rows []resultRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list test results: %w", err)
	}

	results := make([]*run.TestResult, 0, len(rows))
	for i := range rows {
		res, err := rows[i].toResult()
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func buildListQuery(filter run.ResultFilter) (string, []interface{}) {
	query := `SELECT ` + resultColumns + ` FROM test_results WHERE 1=1`
	var args []interface{}

	if filter.Generator != "" {
		args = append(args, filter.Generator)
		query += fmt.Sprintf(" AND generator = $%d", len(args))
	}
	if filter.TestName != "" {
		args = append(args, filter.TestName)
		query += fmt.Sprintf(" AND test_name = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args
}

// SaveComparison stores a comparison matrix; the manifest and cells are JSONB
func (r *ResultRepositoryImpl) SaveComparison(ctx context.Context, comparison *run.Comparison) error {
	if comparison == nil || comparison.Manifest == nil {
		return fmt.Errorf("comparison must carry a manifest")
	}
	manifest, err := json.Marshal(comparison.Manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	cells, err := json.Marshal(comparison.Cells)
	if err != nil {
		return fmt.Errorf("failed to marshal cells: %w", err)
	}

	m := comparison.Manifest
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO comparisons (id, fingerprint, manifest, cells, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			manifest = EXCLUDED.manifest,
			cells = EXCLUDED.cells`,
		m.ID.String(), m.Fingerprint.String(), manifest, cells, m.CreatedAt.Time())
	if err != nil {
		return fmt.Errorf("failed to save comparison %s: %w", m.ID, err)
	}
	return nil
}

// GetComparison retrieves a comparison by its manifest ID
func (r *ResultRepositoryImpl) GetComparison(ctx context.Context, id core.BenchmarkID) (*run.Comparison, error) {
	var manifestJSON, cellsJSON []byte
	err := r.db.QueryRowContext(ctx, `SELECT manifest, cells FROM comparisons WHERE id = $1`, id.String()).
		Scan(&manifestJSON, &cellsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrComparisonNotFound, id)
		}
		return nil, fmt.Errorf("failed to get comparison: %w", err)
	}
	return decodeComparison(manifestJSON, cellsJSON)
}

func decodeComparison(manifestJSON, cellsJSON []byte) (*run.Comparison, error) {
	var c run.Comparison
	c.Manifest = &run.Manifest{}
	if err := json.Unmarshal(manifestJSON, c.Manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	if err := json.Unmarshal(cellsJSON, &c.Cells); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cells: %w", err)
	}
	return &c, nil
}
