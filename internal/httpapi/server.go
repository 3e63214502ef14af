// Package httpapi serves the mathlink tools over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/njchilds90/mathlink"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Server exposes one Client. Requests are serialized because the kernel
// session answers one at a time.
type Server struct {
	client *mathlink.Client
	logger *slog.Logger
	mu     sync.Mutex
}

// NewHandler returns the router. gatherer backs /metrics; nil omits it.
func NewHandler(client *mathlink.Client, logger *slog.Logger, gatherer prometheus.Gatherer) http.Handler {
	s := &Server{client: client, logger: logger}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.Health)
	r.Get("/schema", s.Schema)
	r.Post("/tool", s.Tool)
	r.Post("/evaluate", s.Evaluate)
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": mathlink.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Schema handles GET /schema with the tool list.
func (s *Server) Schema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(mathlink.MCPToolSpec()))
}

// Tool handles POST /tool with a ToolRequest body.
func (s *Server) Tool(w http.ResponseWriter, r *http.Request) {
	var req mathlink.ToolRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.call(w, r, req)
}

type evaluateRequest struct {
	Text string `json:"text"`
}

// Evaluate handles POST /evaluate, sending {"text": ...} to the kernel and
// returning its FullForm reply.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	var body evaluateRequest
	err := decodeBody(w, r, &body)
	if err == nil && body.Text == "" {
		err = errors.New("missing text")
	}
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.call(w, r, mathlink.ToolRequest{
		Tool:   "evaluate",
		Params: map[string]interface{}{"text": body.Text},
	})
}

func (s *Server) call(w http.ResponseWriter, r *http.Request, req mathlink.ToolRequest) {
	s.mu.Lock()
	resp := s.client.HandleToolCall(r.Context(), req)
	s.mu.Unlock()

	status := http.StatusOK
	if resp.Error != "" {
		status = http.StatusUnprocessableEntity
		s.logger.Info("tool call failed", "tool", req.Tool, "error", resp.Error)
	}
	s.writeJSON(w, status, resp)
}

// decodeBody reads exactly one JSON value with no unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("invalid JSON: trailing data")
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}
