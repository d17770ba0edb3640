package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quarrydocs/quarry/pkg/core"
)

type pullRequestEvent struct {
	Action      string `json:"action"`
	PullRequest struct {
		Number int `json:"number"`
	} `json:"pull_request"`
}

type pushEvent struct {
	Ref        string `json:"ref"`
	After      string `json:"after"`
	Repository struct {
		DefaultBranch string `json:"default_branch"`
	} `json:"repository"`
	Commits []json.RawMessage `json:"commits"`
}

// githubWebhook handles GitHub events: pull_request opened/synchronize and
// pushes to the default branch trigger a full validation run.
func (s *Server) githubWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "unreadable body"})
		return
	}

	if s.webhookSecret != "" {
		signature := c.GetHeader("X-Hub-Signature-256")
		if !validSignature(body, signature, s.webhookSecret) {
			s.logger.Warn("webhook signature rejected")
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid signature"})
			return
		}
	}

	event := c.GetHeader("X-GitHub-Event")
	switch event {
	case "ping":
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Webhook configured successfully"})
	case "pull_request":
		s.handlePullRequest(c, body)
	case "push":
		s.handlePush(c, body)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Unsupported event type: %s", event)})
	}
}

func (s *Server) handlePullRequest(c *gin.Context, body []byte) {
	var payload pullRequestEvent
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if payload.Action != "opened" && payload.Action != "synchronize" {
		c.JSON(http.StatusOK, gin.H{"status": "skipped", "action": payload.Action})
		return
	}

	runID := fmt.Sprintf("webhook-pr-%d", payload.PullRequest.Number)
	result, err := s.exec.ExecuteWithRunID(c.Request.Context(), core.Request{
		RequestType:     core.RequestValidate,
		ValidationScope: "all",
	}, runID)
	if err != nil {
		s.logger.Error("webhook validation failed", "run_id", runID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            "processed",
		"event":             "pull_request",
		"action":            payload.Action,
		"pr_number":         payload.PullRequest.Number,
		"validation_result": result,
	})
}

func (s *Server) handlePush(c *gin.Context, body []byte) {
	var payload pushEvent
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	defaultBranch := payload.Repository.DefaultBranch
	if defaultBranch == "" {
		defaultBranch = "main"
	}
	if !strings.HasSuffix(payload.Ref, defaultBranch) {
		c.JSON(http.StatusOK, gin.H{"status": "skipped", "ref": payload.Ref})
		return
	}

	after := payload.After
	if after == "" {
		after = "unknown"
	}
	if len(after) > 8 {
		after = after[:8]
	}
	runID := "webhook-push-" + after

	result, err := s.exec.ExecuteWithRunID(c.Request.Context(), core.Request{
		RequestType:     core.RequestValidate,
		ValidationScope: "all",
	}, runID)
	if err != nil {
		s.logger.Error("webhook validation failed", "run_id", runID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            "processed",
		"event":             "push",
		"ref":               payload.Ref,
		"commit_count":      len(payload.Commits),
		"validation_result": result,
	})
}

// validSignature checks the sha256 HMAC GitHub sends in X-Hub-Signature-256.
func validSignature(body []byte, header, secret string) bool {
	const prefix = "sha256="
	if !strings.HasPrefix(header, prefix) {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(want), []byte(strings.TrimPrefix(header, prefix)))
}
