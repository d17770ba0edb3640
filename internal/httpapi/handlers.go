package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quarrydocs/quarry/pkg/core"
	"github.com/quarrydocs/quarry/pkg/sandbox"
)

func (s *Server) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "ssot-manager",
		"version": serviceVersion,
		"endpoints": gin.H{
			"execute": "/api/v1/execute",
			"health":  "/api/v1/health",
			"webhook": "/webhooks/github",
		},
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ssot-manager",
		"version": serviceVersion,
	})
}

// execute runs one request. Caller mistakes (unknown request types, paths
// outside the corpus) map to 400, everything else to 500.
func (s *Server) execute(c *gin.Context) {
	var req core.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	resp, err := s.exec.Execute(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if isCallerError(err) {
			status = http.StatusBadRequest
		}
		s.logger.Error("execute failed", "error", err, "status", status)
		c.JSON(status, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func isCallerError(err error) bool {
	return errors.Is(err, core.ErrUnknownRequestType) ||
		errors.Is(err, core.ErrUnknownOperation) ||
		errors.Is(err, sandbox.ErrInvalidPath)
}
