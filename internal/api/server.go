package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/lastro-co/insights-agent/internal/processor"
)

// InsightsRunner is the invocation surface the server drives.
type InsightsRunner interface {
	Process(ctx context.Context, req processor.Request) *processor.Outcome
}

type Server struct {
	router   *chi.Mux
	port     int
	apiToken string
	runner   InsightsRunner
	logger   *slog.Logger
}

func NewServer(port int, apiToken string, runner InsightsRunner, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		apiToken: apiToken,
		runner:   runner,
		logger:   logger,
	}

	router.Use(s.requestID)

	router.Get("/health", s.health)
	router.Get("/api/v1/insights/status", s.status)
	router.Post("/api/v1/insights", s.insights)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// requestID tags every request so log lines from one invocation correlate.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		s.logger.Info("request", "req_id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"agent":  "insights-agent",
		"status": "ready",
	})
}

type insightsRequest struct {
	ContactID    string `json:"contactId"`
	CreateNote   *bool  `json:"createNote"`
	SinceEpochMs *int64 `json:"sinceEpochMs"`
}

func (s *Server) insights(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r) {
		return
	}

	var req insightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ContactID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "contactId is required"})
		return
	}

	createNote := true
	if req.CreateNote != nil {
		createNote = *req.CreateNote
	}

	outcome := s.runner.Process(r.Context(), processor.Request{
		ContactID:    req.ContactID,
		CreateNote:   createNote,
		SinceEpochMs: req.SinceEpochMs,
	})
	writeJSON(w, http.StatusOK, outcome)
}

// authorize enforces the bearer token when one is configured: 401 for a
// missing or malformed header, 403 for a wrong token.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) bool {
	if s.apiToken == "" {
		return true
	}

	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token != s.apiToken {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid token"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
