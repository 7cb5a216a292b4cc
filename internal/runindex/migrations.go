package runindex

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

// MigrationRunner applies the run_metadata and graph-DB table migrations
// against a Postgres database. Grounded on
// internal/database/migrations.go's MigrationRunner, adapted to the
// golang-migrate pgx/v5 database driver in place of the lib/pq-backed
// postgres driver — pgx/v5 is already the pool the rest of the pipeline
// standardizes on, so no second Postgres driver is needed.
type MigrationRunner struct {
	migrate *migrate.Migrate
	log     *logrus.Logger
}

// NewMigrationRunner opens a migration instance reading .sql files from
// migrationsPath and applying them via pgx5DatabaseURL (a "pgx5://" DSN).
func NewMigrationRunner(pgx5DatabaseURL, migrationsPath string, log *logrus.Logger) (*MigrationRunner, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), pgx5DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("runindex: creating migration instance: %w", err)
	}
	return &MigrationRunner{migrate: m, log: log}, nil
}

// Up applies all pending migrations.
func (r *MigrationRunner) Up() error {
	r.log.Info("running run-index migrations up")
	if err := r.migrate.Up(); err != nil {
		if err == migrate.ErrNoChange {
			r.log.Info("no pending migrations")
			return nil
		}
		return fmt.Errorf("runindex: migrating up: %w", err)
	}
	return nil
}

// Down rolls back one migration.
func (r *MigrationRunner) Down() error {
	if err := r.migrate.Steps(-1); err != nil {
		if err == migrate.ErrNoChange {
			return nil
		}
		return fmt.Errorf("runindex: migrating down: %w", err)
	}
	return nil
}

// Close releases the migration instance's source and database handles.
func (r *MigrationRunner) Close() error {
	sourceErr, dbErr := r.migrate.Close()
	if sourceErr != nil {
		return fmt.Errorf("runindex: closing migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("runindex: closing migration database: %w", dbErr)
	}
	return nil
}
