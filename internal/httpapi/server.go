// Package httpapi exposes the manager over HTTP: an execution endpoint for
// the four request pipelines and a GitHub webhook receiver.
package httpapi

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/quarrydocs/quarry/pkg/core"
)

const serviceVersion = "0.1.0"

// Executor runs requests. *quarry.Manager satisfies it.
type Executor interface {
	Execute(ctx context.Context, req core.Request) (*core.Response, error)
	ExecuteWithRunID(ctx context.Context, req core.Request, runID string) (*core.Response, error)
}

// Server holds the handlers' shared dependencies.
type Server struct {
	exec          Executor
	webhookSecret string
	logger        *slog.Logger
}

// NewServer creates a server. An empty webhookSecret disables signature
// verification.
func NewServer(exec Executor, webhookSecret string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{exec: exec, webhookSecret: webhookSecret, logger: logger}
}

// Router assembles the route table.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.index)
	r.GET("/api/v1/health", s.health)
	r.POST("/api/v1/execute", s.execute)
	r.POST("/webhooks/github", s.githubWebhook)

	return r
}
