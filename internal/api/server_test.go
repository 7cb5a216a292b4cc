package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repurposectl/repurposectl/internal/domain"
	"github.com/repurposectl/repurposectl/internal/orchestrator"
	"github.com/repurposectl/repurposectl/internal/runstore"
)

func newTestServer(t *testing.T) (*Server, *runstore.Store) {
	dir, err := os.MkdirTemp("", "api-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, err := runstore.New(dir)
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.PanicLevel)

	orch := orchestrator.New(nil, nil, nil, nil, nil, nil, nil, nil, nil, store, nil, 3, log)
	cfg := ServerConfig{Host: "127.0.0.1", Port: 0}
	return NewServer(cfg, orch, store, nil, log), store
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleCreateRun_ValidationErrors(t *testing.T) {
	s, _ := newTestServer(t)

	cases := []string{
		`{}`,
		`{"indication":"asthma"}`,
		`{"indication":"asthma","geography":"US","min_phase":9}`,
	}
	for _, body := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/run", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		s.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "body %s", body)
	}
}

func TestHandleCreateRun_Accepted(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"indication":"asthma","geography":"US","oral_only":true}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/run", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp createRunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, domain.RunQueued, resp.Status)
}

func TestHandleGetRun_NotFound(t *testing.T) {
	s, _ := newTestServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/run/does-not-exist", nil)
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGetRun_Found(t *testing.T) {
	s, store := newTestServer(t)
	require.NoError(t, store.CreateRun("run-1", "asthma", "US", domain.RunQueued))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/run/run-1", nil)
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp runStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, domain.RunQueued, resp.Status)
}

func TestHandleGetRunState_NotFoundBeforeFirstSave(t *testing.T) {
	s, store := newTestServer(t)
	require.NoError(t, store.CreateRun("run-2", "asthma", "US", domain.RunQueued))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/run/run-2/state", nil)
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGetRunState_Found(t *testing.T) {
	s, store := newTestServer(t)
	require.NoError(t, store.CreateRun("run-3", "asthma", "US", domain.RunQueued))
	require.NoError(t, store.SaveState("run-3", &domain.RouteAState{RunID: "run-3", Indication: "asthma"}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/run/run-3/state", nil)
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleGetRunReport_NotReady(t *testing.T) {
	s, store := newTestServer(t)
	require.NoError(t, store.CreateRun("run-4", "asthma", "US", domain.RunQueued))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/run/run-4/report", nil)
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleListRuns_NoIndexConfigured(t *testing.T) {
	s, _ := newTestServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/runs", nil)
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
