package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/travel-assistant/internal/adapter/http"
	"github.com/couchcryptid/travel-assistant/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChat struct {
	readyErr error
	result   domain.TurnResult
	err      error

	gotSession string
	gotMessage string
	calls      int
	resets     []string
	history    map[string][]domain.Turn
}

func (m *mockChat) CheckReadiness(_ context.Context) error { return m.readyErr }

func (m *mockChat) ProcessTurn(_ context.Context, sessionID, message string) (domain.TurnResult, error) {
	m.calls++
	m.gotSession = sessionID
	m.gotMessage = message
	return m.result, m.err
}

func (m *mockChat) Reset(sessionID string) { m.resets = append(m.resets, sessionID) }

func (m *mockChat) NewSession() string { return "3f1c2b7a-0000-4000-8000-000000000001" }

func (m *mockChat) Transcript(sessionID string) []domain.Turn { return m.history[sessionID] }

func newTestServer(chat *mockChat) *httpadapter.Server {
	return httpadapter.NewServer(":0", chat, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func do(srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestChat_Success(t *testing.T) {
	tokyo := "Tokyo"
	chat := &mockChat{result: domain.TurnResult{
		SessionID:          "s1",
		Reply:              "Bring layers.",
		DataSources:        domain.DataSources{Weather: true, Location: &tokyo, Cached: false},
		ConversationLength: 2,
	}}
	rec := do(newTestServer(chat), http.MethodPost, "/chat", `{"message":"  What should I pack for Tokyo?  ","sessionId":"s1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "What should I pack for Tokyo?", chat.gotMessage)
	assert.Equal(t, "s1", chat.gotSession)
	assert.JSONEq(t, `{
		"success": true,
		"sessionId": "s1",
		"reply": "Bring layers.",
		"dataSourcesUsed": {"weather": true, "location": "Tokyo", "cached": false},
		"conversationLength": 2
	}`, rec.Body.String())
}

func TestChat_NullLocation(t *testing.T) {
	chat := &mockChat{result: domain.TurnResult{SessionID: "default", Reply: "Hi!", ConversationLength: 2}}
	rec := do(newTestServer(chat), http.MethodPost, "/chat", `{"message":"Hello"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, chat.gotSession, "session defaulting happens in the service")
	body := decode(t, rec)
	sources := body["dataSourcesUsed"].(map[string]any)
	assert.Nil(t, sources["location"])
}

func TestChat_InvalidMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing", `{}`},
		{"empty", `{"message":""}`},
		{"whitespace", `{"message":"   "}`},
		{"not a string", `{"message":42}`},
		{"malformed json", `{"message":`},
		{"no body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &mockChat{}
			rec := do(newTestServer(chat), http.MethodPost, "/chat", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Message is required and must be a non-empty string", decode(t, rec)["error"])
			assert.Equal(t, 0, chat.calls)
		})
	}
}

func TestChat_RateLimited(t *testing.T) {
	chat := &mockChat{err: fmt.Errorf("anthropic: %w", domain.ErrRateLimited)}
	rec := do(newTestServer(chat), http.MethodPost, "/chat", `{"message":"Hi"}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests. Please wait a moment and try again.", decode(t, rec)["error"])
}

func TestChat_InternalError(t *testing.T) {
	chat := &mockChat{err: errors.New("connection refused")}
	rec := do(newTestServer(chat), http.MethodPost, "/chat", `{"message":"Hi"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Something went wrong. Please try again.", body["error"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestReset(t *testing.T) {
	chat := &mockChat{}
	srv := newTestServer(chat)

	rec := do(srv, http.MethodPost, "/reset", `{"sessionId":"s1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Conversation history cleared"}`, rec.Body.String())

	rec = do(srv, http.MethodPost, "/reset", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"s1", ""}, chat.resets)
}

func TestReset_InvalidBody(t *testing.T) {
	chat := &mockChat{}
	rec := do(newTestServer(chat), http.MethodPost, "/reset", `not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, chat.resets)
}

func TestCreateSession(t *testing.T) {
	rec := do(newTestServer(&mockChat{}), http.MethodPost, "/sessions", "")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "3f1c2b7a-0000-4000-8000-000000000001", decode(t, rec)["sessionId"])
}

func TestSessionHistory(t *testing.T) {
	chat := &mockChat{history: map[string][]domain.Turn{
		"s1": {domain.UserTurn("Hi"), domain.AssistantTurn("Hello!")},
	}}
	srv := newTestServer(chat)

	rec := do(srv, http.MethodGet, "/sessions/s1/history", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sessionId":"s1","history":[{"role":"user","content":"Hi"},{"role":"assistant","content":"Hello!"}]}`, rec.Body.String())

	rec = do(srv, http.MethodGet, "/sessions/unknown/history", "")
	assert.JSONEq(t, `{"sessionId":"unknown","history":[]}`, rec.Body.String())
}

func TestHealthReturnsTimestamp(t *testing.T) {
	rec := do(newTestServer(&mockChat{}), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
	assert.NoError(t, err)
}

func TestHealthzReturns200(t *testing.T) {
	rec := do(newTestServer(&mockChat{}), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := do(newTestServer(&mockChat{}), http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode(t, rec)["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := do(newTestServer(&mockChat{readyErr: errors.New("language model not configured")}), http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "language model not configured", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(newTestServer(&mockChat{}), http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(&mockChat{})

	rec := do(srv, http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "given-id")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "given-id", rec.Header().Get("X-Request-ID"))
}

func TestUnknownMethodRejected(t *testing.T) {
	rec := do(newTestServer(&mockChat{}), http.MethodGet, "/chat", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
