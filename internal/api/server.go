// Package api implements the HTTP surface of §6: POST /run, GET /run/:id,
// GET /run/:id/report, GET /run/:id/state, GET /runs, GET /health.
//
// Server, NewServer, setupRoutes, corsMiddleware, requestIDMiddleware, and
// the health handler follow a standard gin middleware-stack idiom; routes
// are the pipeline's own.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/repurposectl/repurposectl/internal/domain"
	"github.com/repurposectl/repurposectl/internal/orchestrator"
	"github.com/repurposectl/repurposectl/internal/runstore"
)

// RunIndex is the read path for GET /runs, satisfied by both
// internal/runindex.PostgresIndex and internal/runindex.SQLiteIndex.
type RunIndex interface {
	List(ctx context.Context, limit, offset int) ([]domain.RunMetadata, error)
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server is the HTTP surface over one Orchestrator.
type Server struct {
	cfg          ServerConfig
	orchestrator *orchestrator.Orchestrator
	store        *runstore.Store
	index        RunIndex
	log          *logrus.Logger

	router *gin.Engine
	server *http.Server
}

// NewServer wires the pipeline's Orchestrator, Run Store, and run-index
// mirror into a gin.Engine with a standard logging/recovery/CORS/request-ID
// middleware stack.
func NewServer(cfg ServerConfig, orch *orchestrator.Orchestrator, store *runstore.Store, index RunIndex, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if log.Level == logrus.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())

	s := &Server{cfg: cfg, orchestrator: orch, store: store, index: index, log: log, router: router}
	s.setupRoutes()
	return s
}

// Start runs the HTTP server until ctx is canceled, then shuts it down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	s.router.POST("/run", s.handleCreateRun)
	s.router.GET("/run/:id", s.handleGetRun)
	s.router.GET("/run/:id/state", s.handleGetRunState)
	s.router.GET("/run/:id/report", s.handleGetRunReport)
	s.router.GET("/runs", s.handleListRuns)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// corsMiddleware adds CORS headers to responses.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-API-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestIDMiddleware adds a unique request ID to each request.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}
