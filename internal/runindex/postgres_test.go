package runindex

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repurposectl/repurposectl/internal/domain"
)

func newMockedIndex(t *testing.T) (*PostgresIndex, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &PostgresIndex{db: db, log: nil}, mock
}

func TestPostgresIndex_Upsert(t *testing.T) {
	idx, mock := newMockedIndex(t)
	idx.log = testLogger()

	m := domain.RunMetadata{
		RunID:      "run-1",
		Indication: "multiple myeloma",
		Geography:  "US",
		Status:     domain.RunRunning,
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO run_metadata").
		WithArgs(m.RunID, m.Indication, m.Geography, string(m.Status), m.CreatedAt, m.StartedAt, m.CompletedAt, m.ErrorMessage, m.ReportPath).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := idx.Upsert(context.Background(), m)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresIndex_Get(t *testing.T) {
	idx, mock := newMockedIndex(t)
	idx.log = testLogger()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"run_id", "indication", "geography", "status", "created_at",
		"started_at", "completed_at", "error_message", "report_path",
	}).AddRow("run-1", "multiple myeloma", "US", "RUNNING", now, nil, nil, "", "")

	mock.ExpectQuery("SELECT (.+) FROM run_metadata WHERE run_id = ").
		WithArgs("run-1").
		WillReturnRows(rows)

	meta, err := idx.Get(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", meta.RunID)
	assert.Equal(t, domain.RunRunning, meta.Status)
	assert.Nil(t, meta.StartedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresIndex_Get_NotFound(t *testing.T) {
	idx, mock := newMockedIndex(t)
	idx.log = testLogger()

	mock.ExpectQuery("SELECT (.+) FROM run_metadata WHERE run_id = ").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := idx.Get(context.Background(), "missing")
	require.Error(t, err)
	code, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrNotFound, code)
}

func TestPostgresIndex_List(t *testing.T) {
	idx, mock := newMockedIndex(t)
	idx.log = testLogger()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"run_id", "indication", "geography", "status", "created_at",
		"started_at", "completed_at", "error_message", "report_path",
	}).
		AddRow("run-2", "disease two", "EU", "SUCCEEDED", now, nil, nil, "", "").
		AddRow("run-1", "disease one", "US", "RUNNING", now.Add(-time.Hour), nil, nil, "", "")

	mock.ExpectQuery("SELECT (.+) FROM run_metadata").
		WithArgs(10, 0).
		WillReturnRows(rows)

	metas, err := idx.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "run-2", metas[0].RunID)
	assert.Equal(t, "run-1", metas[1].RunID)
}
