package runindex

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/repurposectl/repurposectl/internal/domain"
)

func setupPostgresIndex(t *testing.T) (*PostgresIndex, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	pgxDSN := "postgres://testuser:testpass@" + host + ":" + port.Port() + "/testdb?sslmode=disable"
	pgx5DSN := "pgx5://testuser:testpass@" + host + ":" + port.Port() + "/testdb?sslmode=disable"

	migrationRunner, err := NewMigrationRunner(pgx5DSN, "../../migrations", testLogger())
	if err != nil {
		t.Fatalf("failed to create migration runner: %v", err)
	}
	if err := migrationRunner.Up(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	idx, err := NewPostgresIndex(pgxDSN, testLogger())
	if err != nil {
		t.Fatalf("failed to open run index: %v", err)
	}

	cleanup := func() {
		idx.Close()
		migrationRunner.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	}

	return idx, cleanup
}

func TestPostgresIndex_Integration_UpsertGetList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers-backed integration test in -short mode")
	}

	idx, cleanup := setupPostgresIndex(t)
	defer cleanup()

	ctx := context.Background()
	m := domain.RunMetadata{
		RunID:      "run-int-1",
		Indication: "multiple myeloma",
		Geography:  "US",
		Status:     domain.RunRunning,
		CreatedAt:  time.Now().UTC(),
	}

	if err := idx.Upsert(ctx, m); err != nil {
		t.Fatalf("failed to upsert run metadata: %v", err)
	}

	got, err := idx.Get(ctx, "run-int-1")
	if err != nil {
		t.Fatalf("failed to get run metadata: %v", err)
	}
	if got.Indication != m.Indication {
		t.Errorf("expected indication %q, got %q", m.Indication, got.Indication)
	}

	m.Status = domain.RunSucceeded
	if err := idx.Upsert(ctx, m); err != nil {
		t.Fatalf("failed to update run metadata: %v", err)
	}

	got, err = idx.Get(ctx, "run-int-1")
	if err != nil {
		t.Fatalf("failed to re-get run metadata: %v", err)
	}
	if got.Status != domain.RunSucceeded {
		t.Errorf("expected status %s, got %s", domain.RunSucceeded, got.Status)
	}

	metas, err := idx.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(metas) != 1 {
		t.Fatalf("expected 1 run, got %d", len(metas))
	}
}
