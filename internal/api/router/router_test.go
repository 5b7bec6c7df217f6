package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/scamtrap-ai/scamtrap/internal/engage"
	"github.com/scamtrap-ai/scamtrap/internal/llm"
	"github.com/scamtrap-ai/scamtrap/internal/session"
	"github.com/scamtrap-ai/scamtrap/pkg/logging"
)

type staticGenerator struct{}

func (staticGenerator) GenerateReply(_ context.Context, _ []llm.Turn, _ string) string {
	return "ok ok, tell me more"
}

func newTestRouter(t *testing.T, apiKey string) http.Handler {
	t.Helper()

	logger := logging.NewWithWriter("error", io.Discard)
	svc := engage.NewService(session.NewMemoryStore(0), staticGenerator{}, nil, 3, 8, logger, nil)

	cfg := &Config{
		Logger:        logger,
		EngageHandler: engage.NewHandler(svc, logger),
		APIKey:        apiKey,
	}
	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, "test-key")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterEntryRequiresAPIKey(t *testing.T) {
	router := newTestRouter(t, "test-key")

	body := `{"sessionId": "conv-1", "message": "hello"}`
	req := httptest.NewRequest(http.MethodPost, "/honey-pot-entry", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rr.Code)
	}
}

func TestRouterEntryWithAPIKey(t *testing.T) {
	router := newTestRouter(t, "test-key")

	body := `{"sessionId": "conv-1", "message": {"sender": "scammer", "text": "verify your account"}}`
	req := httptest.NewRequest(http.MethodPost, "/honey-pot-entry", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", "test-key")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	var resp engage.Response
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "success" || resp.Reply == "" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestRouterChatAlias(t *testing.T) {
	router := newTestRouter(t, "test-key")

	body := `{"sessionId": "conv-2", "message": "hello"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("x-api-key", "test-key")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d on alias route, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterSessionEndpointProtected(t *testing.T) {
	router := newTestRouter(t, "test-key")

	req := httptest.NewRequest(http.MethodGet, "/sessions/conv-1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rr.Code)
	}
}

func TestRouterRootEndpoint(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "running") {
		t.Fatalf("unexpected root body: %s", rr.Body.String())
	}
}
