package httpapi

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydocs/quarry/pkg/core"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeExecutor struct {
	resp      *core.Response
	err       error
	lastReq   core.Request
	lastRunID string
}

func (f *fakeExecutor) Execute(ctx context.Context, req core.Request) (*core.Response, error) {
	f.lastReq = req
	return f.resp, f.err
}

func (f *fakeExecutor) ExecuteWithRunID(ctx context.Context, req core.Request, runID string) (*core.Response, error) {
	f.lastReq = req
	f.lastRunID = runID
	return f.resp, f.err
}

func okResponse() *core.Response {
	return &core.Response{
		ResponseType:     core.ResponseValidationReport,
		Status:           core.StatusSuccess,
		ValidationReport: &core.ValidationReport{Passed: true},
	}
}

func serve(t *testing.T, exec *fakeExecutor, secret string, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	NewServer(exec, secret, nil).Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := serve(t, &fakeExecutor{}, "", req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ssot-manager", body["service"])
}

func TestExecute_RoutesRequest(t *testing.T) {
	exec := &fakeExecutor{resp: okResponse()}

	payload := `{"request_type":"validate","validation_scope":"all"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/execute", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(t, exec, "", req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.RequestValidate, exec.lastReq.RequestType)
	assert.Equal(t, "all", exec.lastReq.ValidationScope)

	var resp core.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, core.ResponseValidationReport, resp.ResponseType)
}

func TestExecute_CallerErrorsAre400(t *testing.T) {
	exec := &fakeExecutor{err: core.ErrUnknownRequestType}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/execute", bytes.NewBufferString(`{"request_type":"bogus"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(t, exec, "", req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExecute_WorkerErrorsAre500(t *testing.T) {
	exec := &fakeExecutor{err: assert.AnError}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/execute", bytes.NewBufferString(`{"request_type":"query"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(t, exec, "", req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestExecute_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/execute", bytes.NewBufferString(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(t, &fakeExecutor{}, "", req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func sign(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestWebhook_Ping(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/github", bytes.NewBufferString(`{}`))
	req.Header.Set("X-GitHub-Event", "ping")
	rec := serve(t, &fakeExecutor{}, "", req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Webhook configured successfully")
}

func TestWebhook_PullRequestTriggersValidation(t *testing.T) {
	exec := &fakeExecutor{resp: okResponse()}

	body := `{"action":"opened","pull_request":{"number":42}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/github", bytes.NewBufferString(body))
	req.Header.Set("X-GitHub-Event", "pull_request")
	rec := serve(t, exec, "", req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.RequestValidate, exec.lastReq.RequestType)
	assert.Equal(t, "all", exec.lastReq.ValidationScope)
	assert.Equal(t, "webhook-pr-42", exec.lastRunID)
	assert.Contains(t, rec.Body.String(), `"status":"processed"`)
}

func TestWebhook_PullRequestSkipsOtherActions(t *testing.T) {
	exec := &fakeExecutor{resp: okResponse()}

	body := `{"action":"closed","pull_request":{"number":7}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/github", bytes.NewBufferString(body))
	req.Header.Set("X-GitHub-Event", "pull_request")
	rec := serve(t, exec, "", req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"skipped"`)
	assert.Empty(t, exec.lastRunID, "skipped actions must not execute anything")
}

func TestWebhook_PushToDefaultBranch(t *testing.T) {
	exec := &fakeExecutor{resp: okResponse()}

	body := `{"ref":"refs/heads/main","after":"0123456789abcdef","repository":{"default_branch":"main"},"commits":[{},{}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/github", bytes.NewBufferString(body))
	req.Header.Set("X-GitHub-Event", "push")
	rec := serve(t, exec, "", req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "webhook-push-01234567", exec.lastRunID)
	assert.Contains(t, rec.Body.String(), `"commit_count":2`)
}

func TestWebhook_PushToFeatureBranchSkipped(t *testing.T) {
	exec := &fakeExecutor{resp: okResponse()}

	body := `{"ref":"refs/heads/feature/x","repository":{"default_branch":"main"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/github", bytes.NewBufferString(body))
	req.Header.Set("X-GitHub-Event", "push")
	rec := serve(t, exec, "", req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"skipped"`)
}

func TestWebhook_UnsupportedEvent(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/github", bytes.NewBufferString(`{}`))
	req.Header.Set("X-GitHub-Event", "star")
	rec := serve(t, &fakeExecutor{}, "", req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhook_SignatureVerification(t *testing.T) {
	const secret = "hunter2"
	body := `{}`

	t.Run("Valid Signature Accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/github", bytes.NewBufferString(body))
		req.Header.Set("X-GitHub-Event", "ping")
		req.Header.Set("X-Hub-Signature-256", sign(body, secret))
		rec := serve(t, &fakeExecutor{}, secret, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Bad Signature Rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/github", bytes.NewBufferString(body))
		req.Header.Set("X-GitHub-Event", "ping")
		req.Header.Set("X-Hub-Signature-256", sign(body, "wrong"))
		rec := serve(t, &fakeExecutor{}, secret, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Missing Signature Rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/github", bytes.NewBufferString(body))
		req.Header.Set("X-GitHub-Event", "ping")
		rec := serve(t, &fakeExecutor{}, secret, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
