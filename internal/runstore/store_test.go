package runstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repurposectl/repurposectl/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	tmpDir, err := os.MkdirTemp("", "runstore-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	s, err := New(tmpDir)
	require.NoError(t, err)
	return s
}

func TestCreateRun_WritesMetadataFile(t *testing.T) {
	s := newTestStore(t)

	err := s.CreateRun("run-1", "multiple myeloma", "US", domain.RunQueued)
	require.NoError(t, err)

	path := filepath.Join(s.root, "run-1", metadataFile)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestGetMetadata_RoundTrips(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateRun("run-1", "multiple myeloma", "US", domain.RunQueued))

	meta, err := s.GetMetadata("run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", meta.RunID)
	assert.Equal(t, "multiple myeloma", meta.Indication)
	assert.Equal(t, domain.RunQueued, meta.Status)
	assert.False(t, meta.CreatedAt.IsZero())
}

func TestGetMetadata_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetMetadata("does-not-exist")
	require.Error(t, err)
	code, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrNotFound, code)
}

func TestUpdateMetadata_MergesFields(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateRun("run-1", "multiple myeloma", "US", domain.RunQueued))

	err := s.UpdateMetadata("run-1", func(m *domain.RunMetadata) {
		m.Status = domain.RunRunning
	})
	require.NoError(t, err)

	meta, err := s.GetMetadata("run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunRunning, meta.Status)
	// Fields not touched by update survive.
	assert.Equal(t, "multiple myeloma", meta.Indication)
}

func TestSaveAndLoadState_RoundTrips(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateRun("run-1", "multiple myeloma", "US", domain.RunQueued))

	state := &domain.RouteAState{
		RunID:      "run-1",
		Indication: "multiple myeloma",
		Geography:  "US",
		Status:     domain.RunRunning,
	}
	require.NoError(t, s.SaveState("run-1", state))

	loaded, err := s.LoadState("run-1")
	require.NoError(t, err)
	assert.Equal(t, state.RunID, loaded.RunID)
	assert.Equal(t, state.Indication, loaded.Indication)
	assert.Equal(t, domain.RunRunning, loaded.Status)
}

func TestSaveState_LastWriteWins(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateRun("run-1", "multiple myeloma", "US", domain.RunQueued))

	require.NoError(t, s.SaveState("run-1", &domain.RouteAState{RunID: "run-1", Status: domain.RunRunning}))
	require.NoError(t, s.SaveState("run-1", &domain.RouteAState{RunID: "run-1", Status: domain.RunSucceeded}))

	loaded, err := s.LoadState("run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunSucceeded, loaded.Status)
}

func TestLoadState_NotFound(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateRun("run-1", "multiple myeloma", "US", domain.RunQueued))

	_, err := s.LoadState("run-1")
	require.Error(t, err)
	code, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrNotFound, code)
}

func TestSaveReport_WritesFileAndUpdatesMetadata(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateRun("run-1", "multiple myeloma", "US", domain.RunQueued))

	path, err := s.SaveReport("run-1", []byte("# Report\n"), "report.md")
	require.NoError(t, err)
	assert.FileExists(t, path)

	meta, err := s.GetMetadata("run-1")
	require.NoError(t, err)
	assert.Equal(t, path, meta.ReportPath)
}

func TestRuns_AreIsolatedByDirectory(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateRun("run-1", "disease one", "US", domain.RunQueued))
	require.NoError(t, s.CreateRun("run-2", "disease two", "EU", domain.RunQueued))

	meta1, err := s.GetMetadata("run-1")
	require.NoError(t, err)
	meta2, err := s.GetMetadata("run-2")
	require.NoError(t, err)

	assert.Equal(t, "disease one", meta1.Indication)
	assert.Equal(t, "disease two", meta2.Indication)
}
