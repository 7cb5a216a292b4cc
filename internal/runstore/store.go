// Package runstore implements the file-based Run Store (§4.9): per-run
// persistence of metadata, full pipeline state, and the rendered report,
// laid out as <root>/<run_id>/{metadata.json,state.json,report.<ext>}.
//
// Grounded on original_source/backend/app/services/run_store.py's RunStore
// (create_run/update_metadata/get_metadata/save_state/load_state/save_report),
// using internal/feedback.SQLiteStore's directory-creation and
// error-wrapping idiom (os.MkdirAll + fmt.Errorf %w).
package runstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/repurposectl/repurposectl/internal/domain"
)

const (
	metadataFile = "metadata.json"
	stateFile    = "state.json"
	dirPerm      = 0o755
	filePerm     = 0o644
)

// Store persists run metadata, state, and reports under a root directory.
// Each run gets its own subdirectory; writes within a run directory are
// serialized by runLock to avoid interleaved partial writes from concurrent
// stage-boundary saves, but different runs never contend with each other.
type Store struct {
	root string

	mu       sync.Mutex
	runLocks map[string]*sync.Mutex
}

// New constructs a Store rooted at dir, creating it if necessary.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("runstore: create root dir: %w", err)
	}
	return &Store{root: dir, runLocks: make(map[string]*sync.Mutex)}, nil
}

func (s *Store) lockFor(runID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.runLocks[runID]
	if !ok {
		l = &sync.Mutex{}
		s.runLocks[runID] = l
	}
	return l
}

func (s *Store) runDir(runID string) (string, error) {
	dir := filepath.Join(s.root, runID)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("runstore: create run dir %s: %w", runID, err)
	}
	return dir, nil
}

// CreateRun writes the initial metadata.json for a new run.
func (s *Store) CreateRun(runID, indication, geography string, status domain.RunStatus) error {
	lock := s.lockFor(runID)
	lock.Lock()
	defer lock.Unlock()

	dir, err := s.runDir(runID)
	if err != nil {
		return err
	}

	metadata := domain.RunMetadata{
		RunID:      runID,
		Indication: indication,
		Geography:  geography,
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}

	return writeJSON(filepath.Join(dir, metadataFile), metadata)
}

// UpdateMetadata applies a partial update to an existing run's metadata.json,
// reading the current value, merging fields via update, and writing it back.
func (s *Store) UpdateMetadata(runID string, update func(*domain.RunMetadata)) error {
	lock := s.lockFor(runID)
	lock.Lock()
	defer lock.Unlock()

	dir, err := s.runDir(runID)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, metadataFile)

	var metadata domain.RunMetadata
	if err := readJSON(path, &metadata); err != nil {
		return fmt.Errorf("runstore: read metadata for update %s: %w", runID, err)
	}

	update(&metadata)

	return writeJSON(path, metadata)
}

// GetMetadata loads a run's metadata.json. Returns domain.ErrNotFound if the
// run does not exist.
func (s *Store) GetMetadata(runID string) (*domain.RunMetadata, error) {
	lock := s.lockFor(runID)
	lock.Lock()
	defer lock.Unlock()

	path := filepath.Join(s.root, runID, metadataFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, domain.NewNotFoundError(fmt.Sprintf("run %q not found", runID))
	}

	var metadata domain.RunMetadata
	if err := readJSON(path, &metadata); err != nil {
		return nil, fmt.Errorf("runstore: read metadata %s: %w", runID, err)
	}
	return &metadata, nil
}

// SaveState writes the full RouteAState snapshot for a run, overwriting any
// prior state.json — last write wins, matching the orchestrator's
// stage-boundary persistence model.
func (s *Store) SaveState(runID string, state *domain.RouteAState) error {
	lock := s.lockFor(runID)
	lock.Lock()
	defer lock.Unlock()

	dir, err := s.runDir(runID)
	if err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, stateFile), state)
}

// LoadState reads the most recently saved RouteAState for a run. Returns
// domain.ErrNotFound if no state has been saved yet.
func (s *Store) LoadState(runID string) (*domain.RouteAState, error) {
	lock := s.lockFor(runID)
	lock.Lock()
	defer lock.Unlock()

	path := filepath.Join(s.root, runID, stateFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, domain.NewNotFoundError(fmt.Sprintf("no state saved for run %q", runID))
	}

	var state domain.RouteAState
	if err := readJSON(path, &state); err != nil {
		return nil, fmt.Errorf("runstore: read state %s: %w", runID, err)
	}
	return &state, nil
}

// SaveReport writes the rendered report bytes under the run directory using
// filename, then records the resulting path in metadata.json.
func (s *Store) SaveReport(runID string, reportBytes []byte, filename string) (string, error) {
	lock := s.lockFor(runID)
	lock.Lock()
	defer lock.Unlock()

	dir, err := s.runDir(runID)
	if err != nil {
		return "", err
	}
	reportPath := filepath.Join(dir, filename)
	if err := os.WriteFile(reportPath, reportBytes, filePerm); err != nil {
		return "", fmt.Errorf("runstore: write report %s: %w", runID, err)
	}

	metaPath := filepath.Join(dir, metadataFile)
	var metadata domain.RunMetadata
	if err := readJSON(metaPath, &metadata); err != nil {
		return "", fmt.Errorf("runstore: read metadata after report write %s: %w", runID, err)
	}
	metadata.ReportPath = reportPath
	if err := writeJSON(metaPath, metadata); err != nil {
		return "", err
	}

	return reportPath, nil
}

func writeJSON(path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("runstore: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, b, filePerm); err != nil {
		return fmt.Errorf("runstore: write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
