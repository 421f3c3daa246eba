package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/travel-assistant/internal/domain"
	"github.com/couchcryptid/travel-assistant/internal/observability"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	headerRequestID = "X-Request-ID"
	maxBodyBytes    = 64 << 10

	msgInvalidMessage = "Message is required and must be a non-empty string"
	msgRateLimited    = "Too many requests. Please wait a moment and try again."
	msgInternal       = "Something went wrong. Please try again."
)

var validate = validator.New()

// ChatService is the conversation surface the API exposes.
type ChatService interface {
	sharedobs.ReadinessChecker
	ProcessTurn(ctx context.Context, sessionID, message string) (domain.TurnResult, error)
	Reset(sessionID string)
	NewSession() string
	Transcript(sessionID string) []domain.Turn
}

// Server exposes the chat API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	chat       ChatService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the chat routes, /health, /healthz,
// /readyz, and /metrics.
func NewServer(addr string, chat ChatService, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		chat:   chat,
		logger: logger,
	}
	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.withRequestLogging(mux),
		ReadTimeout: 10 * time.Second,
		// Model calls dominate response time.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(chat))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type chatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionID string `json:"sessionId" validate:"omitempty,max=128"`
}

type chatResponse struct {
	Success bool `json:"success"`
	domain.TurnResult
}

type resetRequest struct {
	SessionID string `json:"sessionId" validate:"omitempty,max=128"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidMessage)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidMessage)
		return
	}

	result, err := s.chat.ProcessTurn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		log := observability.LoggerFromContext(r.Context(), s.logger)
		if errors.Is(err, domain.ErrRateLimited) {
			log.Warn("chat rate limited", "error", err)
			writeError(w, http.StatusTooManyRequests, msgRateLimited)
			return
		}
		log.Error("chat failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, chatResponse{Success: true, TurnResult: result})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	// The body is optional.
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sessionId")
		return
	}

	s.chat.Reset(req.SessionID)
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Conversation history cleared",
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusCreated, map[string]string{"sessionId": s.chat.NewSession()})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	history := s.chat.Transcript(id)
	if history == nil {
		history = []domain.Turn{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"sessionId": id,
		"history":   history,
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// withRequestLogging assigns every request an id and writes one access log
// line when it completes.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(observability.WithRequestID(r.Context(), id)))

		level := slog.LevelInfo
		if isProbe(r.URL.Path) {
			level = slog.LevelDebug
		}
		s.logger.Log(r.Context(), level, "http request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func isProbe(path string) bool {
	switch path {
	case "/health", "/healthz", "/readyz", "/metrics":
		return true
	}
	return false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
