package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/repurposectl/repurposectl/internal/domain"
	"github.com/repurposectl/repurposectl/internal/orchestrator"
)

// createRunRequest is the POST /run body (§6).
type createRunRequest struct {
	Indication       string `json:"indication" binding:"required"`
	Geography        string `json:"geography" binding:"required"`
	MinPhase         *int   `json:"min_phase"`
	OralOnly         bool   `json:"oral_only"`
	ExcludeBiologics bool   `json:"exclude_biologics"`
	StrictFTO        bool   `json:"strict_fto"`
}

type createRunResponse struct {
	RunID     string          `json:"run_id"`
	Status    domain.RunStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	Message   string          `json:"message"`
}

// handleCreateRun validates the request, assigns a run_id, and starts the
// orchestrator in the background — it returns immediately with QUEUED
// status, mirroring the original route's BackgroundTasks.add_task idiom.
func (s *Server) handleCreateRun(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if req.MinPhase != nil && (*req.MinPhase < 0 || *req.MinPhase > 4) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "min_phase must be between 0 and 4"})
		return
	}

	runID := uuid.NewString()
	now := time.Now().UTC()

	runReq := orchestrator.RunRequest{
		Indication:       req.Indication,
		Geography:        req.Geography,
		MinPhase:         req.MinPhase,
		OralOnly:         req.OralOnly,
		ExcludeBiologics: req.ExcludeBiologics,
		StrictFTO:        req.StrictFTO,
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if err := s.orchestrator.Execute(bgCtx, runID, runReq); err != nil {
			s.log.WithError(err).WithField("run_id", runID).Error("orchestrator execution failed to persist progress")
		}
	}()

	c.JSON(http.StatusAccepted, createRunResponse{
		RunID:     runID,
		Status:    domain.RunQueued,
		CreatedAt: now,
		Message:   "run " + runID + " queued for " + req.Indication,
	})
}

// runStatusResponse is the GET /run/:id body (§6).
type runStatusResponse struct {
	RunID           string          `json:"run_id"`
	Status          domain.RunStatus `json:"status"`
	Indication      string          `json:"indication"`
	Geography       string          `json:"geography"`
	CreatedAt       time.Time       `json:"created_at"`
	StartedAt       *time.Time      `json:"started_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CandidatesFound int             `json:"candidates_found"`
	TrialsCount     int             `json:"trials_count"`
	ReportURL       string          `json:"report_url,omitempty"`
	ErrorMessage    string          `json:"error_message,omitempty"`
}

func (s *Server) handleGetRun(c *gin.Context) {
	runID := c.Param("id")
	metadata, err := s.store.GetMetadata(runID)
	if err != nil {
		s.respondStoreError(c, runID, err)
		return
	}

	resp := runStatusResponse{
		RunID:        metadata.RunID,
		Status:       metadata.Status,
		Indication:   metadata.Indication,
		Geography:    metadata.Geography,
		CreatedAt:    metadata.CreatedAt,
		StartedAt:    metadata.StartedAt,
		CompletedAt:  metadata.CompletedAt,
		ErrorMessage: metadata.ErrorMessage,
	}

	if state, err := s.store.LoadState(runID); err == nil {
		resp.CandidatesFound = len(state.Candidates)
		if state.TrialsOutput != nil {
			resp.TrialsCount = state.TrialsOutput.TotalTrials
		}
		if metadata.ReportPath != "" {
			resp.ReportURL = "/run/" + runID + "/report"
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetRunState(c *gin.Context) {
	runID := c.Param("id")
	if _, err := s.store.GetMetadata(runID); err != nil {
		s.respondStoreError(c, runID, err)
		return
	}

	state, err := s.store.LoadState(runID)
	if err != nil {
		s.respondStoreError(c, runID, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) handleGetRunReport(c *gin.Context) {
	runID := c.Param("id")
	metadata, err := s.store.GetMetadata(runID)
	if err != nil {
		s.respondStoreError(c, runID, err)
		return
	}
	if metadata.ReportPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not ready yet for run " + runID})
		return
	}
	c.File(metadata.ReportPath)
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.index == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run index not configured"})
		return
	}

	limit := parseIntDefault(c.Query("limit"), 20)
	offset := parseIntDefault(c.Query("offset"), 0)

	runs, err := s.index.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) respondStoreError(c *gin.Context, runID string, err error) {
	if code, ok := domain.CodeOf(err); ok && code == domain.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "run " + runID + " not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func parseIntDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
