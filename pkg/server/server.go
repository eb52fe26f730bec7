package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opsconsole/bluegreen-manager/pkg/bluegreen"
	"github.com/opsconsole/bluegreen-manager/pkg/inspector"
	"github.com/opsconsole/bluegreen-manager/pkg/orchestrator"
	"github.com/opsconsole/bluegreen-manager/pkg/store"
)

// Server exposes the release operations over HTTP. It is a thin JSON layer:
// all behaviour lives in the orchestrator, store and inspector packages, so
// any other UI or CLI can drive the same operations directly.
type Server struct {
	engine       *gin.Engine
	orchestrator *orchestrator.Orchestrator
	store        store.DocumentStore
	runner       store.WorkflowRunner
	inspector    inspector.Inspector
	summarizer   inspector.Summarizer
	appsBasePath string
}

type Options struct {
	Orchestrator *orchestrator.Orchestrator
	Store        store.DocumentStore
	// Runner may be nil when the store backend has no CI integration.
	Runner store.WorkflowRunner
	// Inspector and Summarizer may be nil when job inspection is not
	// configured.
	Inspector  inspector.Inspector
	Summarizer inspector.Summarizer

	AppsBasePath string
}

func New(opts Options) *Server {
	s := &Server{
		engine:       gin.New(),
		orchestrator: opts.Orchestrator,
		store:        opts.Store,
		runner:       opts.Runner,
		inspector:    opts.Inspector,
		summarizer:   opts.Summarizer,
		appsBasePath: opts.AppsBasePath,
	}
	s.engine.Use(gin.Recovery())
	s.routes()

	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.health)

	api := s.engine.Group("/api")
	api.POST("/propose/version", s.proposeVersion)
	api.POST("/propose/flip", s.proposeFlip)
	api.POST("/propose/switch", s.proposeSwitch)
	api.GET("/apps", s.listApps)
	api.GET("/apps/:app/values", s.listValues)
	api.POST("/workflows/:id/dispatch", s.dispatchWorkflow)
	api.GET("/workflows/:id/runs", s.listRuns)
	api.GET("/workflows/:id/watch", s.watchWorkflow)
	api.GET("/jobs", s.listJobs)
	api.POST("/jobs/:id/summary", s.summarizeJob)
}

// ServeHTTP makes the server mountable and testable as a plain http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *Server) Run(addr string) error {
	slog.Info("HTTP server listening", "addr", addr)

	return s.engine.Run(addr)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// abort maps the error taxonomy onto HTTP statuses and ends the request.
func abort(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, store.ErrInvalidArgument),
		errors.Is(err, bluegreen.ErrInvalidSlot),
		errors.Is(err, bluegreen.ErrInvalidSwitchState):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrRemoteUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, store.ErrNotSupported):
		status = http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	slog.Error("request failed", "path", c.FullPath(), "status", status, "error", err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
