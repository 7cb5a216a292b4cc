package runindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repurposectl/repurposectl/internal/domain"
)

func newTestSQLiteIndex(t *testing.T) *SQLiteIndex {
	tmpDir, err := os.MkdirTemp("", "runindex-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	idx, err := NewSQLiteIndex(filepath.Join(tmpDir, "runindex.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestNewSQLiteIndex_CreatesFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "runindex-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "runindex.db")
	idx, err := NewSQLiteIndex(dbPath)
	require.NoError(t, err)
	defer idx.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestSQLiteIndex_UpsertAndGet(t *testing.T) {
	idx := newTestSQLiteIndex(t)
	ctx := context.Background()

	m := domain.RunMetadata{
		RunID:      "run-1",
		Indication: "multiple myeloma",
		Geography:  "US",
		Status:     domain.RunQueued,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, idx.Upsert(ctx, m))

	got, err := idx.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, m.Indication, got.Indication)
	assert.Equal(t, domain.RunQueued, got.Status)
}

func TestSQLiteIndex_Upsert_UpdatesExistingRow(t *testing.T) {
	idx := newTestSQLiteIndex(t)
	ctx := context.Background()

	m := domain.RunMetadata{RunID: "run-1", Indication: "x", Geography: "US", Status: domain.RunQueued, CreatedAt: time.Now().UTC()}
	require.NoError(t, idx.Upsert(ctx, m))

	m.Status = domain.RunSucceeded
	require.NoError(t, idx.Upsert(ctx, m))

	got, err := idx.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunSucceeded, got.Status)
}

func TestSQLiteIndex_Get_NotFound(t *testing.T) {
	idx := newTestSQLiteIndex(t)

	_, err := idx.Get(context.Background(), "missing")
	require.Error(t, err)
	code, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrNotFound, code)
}

func TestSQLiteIndex_List_OrdersByCreatedAtDesc(t *testing.T) {
	idx := newTestSQLiteIndex(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, idx.Upsert(ctx, domain.RunMetadata{RunID: "older", Indication: "a", Geography: "US", Status: domain.RunSucceeded, CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, idx.Upsert(ctx, domain.RunMetadata{RunID: "newer", Indication: "b", Geography: "US", Status: domain.RunQueued, CreatedAt: now}))

	metas, err := idx.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "newer", metas[0].RunID)
	assert.Equal(t, "older", metas[1].RunID)
}
