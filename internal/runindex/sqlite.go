package runindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/repurposectl/repurposectl/internal/domain"
)

// SQLiteIndex is the embedded run metadata index the server command uses
// when no Postgres run index is available, one file on disk rather than a
// server connection. Grounded on
// internal/feedback/sqlite.go's schema/WAL-mode/directory-creation idiom.
type SQLiteIndex struct {
	db *sql.DB
}

// NewSQLiteIndex opens (creating if necessary) the SQLite database at dbPath.
func NewSQLiteIndex(dbPath string) (*SQLiteIndex, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("runindex: creating directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("runindex: opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("runindex: setting WAL mode: %w", err)
	}

	if err := createSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("runindex: creating schema: %w", err)
	}

	return &SQLiteIndex{db: db}, nil
}

func createSQLiteSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS run_metadata (
		run_id TEXT PRIMARY KEY,
		indication TEXT NOT NULL,
		geography TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		started_at DATETIME,
		completed_at DATETIME,
		error_message TEXT DEFAULT '',
		report_path TEXT DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_run_metadata_created_at ON run_metadata(created_at);
	CREATE INDEX IF NOT EXISTS idx_run_metadata_status ON run_metadata(status);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying database handle.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

// Upsert inserts or updates a run's metadata row.
func (s *SQLiteIndex) Upsert(ctx context.Context, m domain.RunMetadata) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_metadata (
			run_id, indication, geography, status, created_at, started_at,
			completed_at, error_message, report_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id) DO UPDATE SET
			status = excluded.status,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at,
			error_message = excluded.error_message,
			report_path = excluded.report_path
	`,
		m.RunID, m.Indication, m.Geography, string(m.Status), m.CreatedAt,
		m.StartedAt, m.CompletedAt, m.ErrorMessage, m.ReportPath,
	)
	if err != nil {
		return fmt.Errorf("runindex: upsert run %s: %w", m.RunID, err)
	}
	return nil
}

// Get retrieves one run's metadata by ID.
func (s *SQLiteIndex) Get(ctx context.Context, runID string) (*domain.RunMetadata, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, indication, geography, status, created_at, started_at,
			completed_at, error_message, report_path
		FROM run_metadata WHERE run_id = ?
	`, runID)

	m, err := scanRunMetadata(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("run %q not found", runID))
		}
		return nil, fmt.Errorf("runindex: get run %s: %w", runID, err)
	}
	return m, nil
}

// List returns the most recently created runs, newest first.
func (s *SQLiteIndex) List(ctx context.Context, limit, offset int) ([]domain.RunMetadata, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, indication, geography, status, created_at, started_at,
			completed_at, error_message, report_path
		FROM run_metadata
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
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
