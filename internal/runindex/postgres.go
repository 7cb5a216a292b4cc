// Package runindex mirrors RunMetadata into a queryable index — Postgres in
// the server deployment, or an embedded SQLite file when no Postgres run
// index is available — so the API's
// GET /runs listing endpoint does not need to walk the Run Store's
// filesystem tree. internal/runstore remains the authoritative store; this
// package is a derived, rebuildable secondary index.
//
// Grounded on internal/repository/variant.go (pgxpool query
// idiom, error wrapping, logging fields) and internal/database/connection.go
// (pool construction), adapted from *pgxpool.Pool to database/sql so the
// Postgres path is exercised by github.com/DATA-DOG/go-sqlmock in unit
// tests the same way internal/mcp/optimization/query_optimizer.go
// is tested, while still running on pgx/v5 via its stdlib driver adapter.
package runindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"

	"github.com/repurposectl/repurposectl/internal/domain"
)

// PostgresIndex is the Postgres-backed run metadata index.
type PostgresIndex struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewPostgresIndex opens a pgx-backed database/sql connection pool to dsn.
func NewPostgresIndex(dsn string, log *logrus.Logger) (*PostgresIndex, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("runindex: opening postgres pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("runindex: pinging postgres: %w", err)
	}

	log.WithField("driver", "pgx").Info("run index postgres pool established")
	return &PostgresIndex{db: db, log: log}, nil
}

// Close closes the underlying connection pool.
func (p *PostgresIndex) Close() error {
	return p.db.Close()
}

// Upsert inserts or updates a run's metadata row, keyed by run_id.
func (p *PostgresIndex) Upsert(ctx context.Context, m domain.RunMetadata) error {
	query := `
		INSERT INTO run_metadata (
			run_id, indication, geography, status, created_at, started_at,
			completed_at, error_message, report_path
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (run_id) DO UPDATE SET
			status = EXCLUDED.status,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			error_message = EXCLUDED.error_message,
			report_path = EXCLUDED.report_path`

	_, err := p.db.ExecContext(ctx, query,
		m.RunID, m.Indication, m.Geography, string(m.Status), m.CreatedAt,
		m.StartedAt, m.CompletedAt, m.ErrorMessage, m.ReportPath,
	)
	if err != nil {
		p.log.WithFields(logrus.Fields{"run_id": m.RunID, "error": err}).Error("failed to upsert run metadata")
		return fmt.Errorf("runindex: upsert run %s: %w", m.RunID, err)
	}
	return nil
}

// Get retrieves one run's metadata by ID.
func (p *PostgresIndex) Get(ctx context.Context, runID string) (*domain.RunMetadata, error) {
	query := `
		SELECT run_id, indication, geography, status, created_at, started_at,
			completed_at, error_message, report_path
		FROM run_metadata
		WHERE run_id = $1`

	m, err := scanRunMetadata(p.db.QueryRowContext(ctx, query, runID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("run %q not found", runID))
		}
		return nil, fmt.Errorf("runindex: get run %s: %w", runID, err)
	}
	return m, nil
}

// List returns the most recently created runs, newest first.
func (p *PostgresIndex) List(ctx context.Context, limit, offset int) ([]domain.RunMetadata, error) {
	query := `
		SELECT run_id, indication, geography, status, created_at, started_at,
			completed_at, error_message, report_path
		FROM run_metadata
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := p.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("runindex: list runs: %w", err)
	}
	defer rows.Close()

	var out []domain.RunMetadata
	for rows.Next() {
		m, err := scanRunMetadata(rows)
		if err != nil {
			return nil, fmt.Errorf("runindex: scan run row: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("runindex: iterating run rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRunMetadata(s rowScanner) (*domain.RunMetadata, error) {
	var m domain.RunMetadata
	var status string
	var startedAt, completedAt sql.NullTime
	var errorMessage, reportPath sql.NullString

	if err := s.Scan(
		&m.RunID, &m.Indication, &m.Geography, &status, &m.CreatedAt,
		&startedAt, &completedAt, &errorMessage, &reportPath,
	); err != nil {
		return nil, err
	}

	m.Status = domain.RunStatus(status)
	if startedAt.Valid {
		m.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		m.CompletedAt = &completedAt.Time
	}
	m.ErrorMessage = errorMessage.String
	m.ReportPath = reportPath.String
	return &m, nil
}
