// Package http exposes the operational surface of the fleet server: session
// listing, status queries, operator toasts, health and metrics.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tillgrid/tillgrid/internal/logging"
	"github.com/tillgrid/tillgrid/internal/metrics"
	"github.com/tillgrid/tillgrid/pkg/domain"
	"github.com/tillgrid/tillgrid/pkg/session"
	"github.com/tillgrid/tillgrid/pkg/status"
)

// Server handles the admin API.
type Server struct {
	registry *session.Registry
	cache    *status.Cache
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer builds the admin server over the registry and status cache.
func NewServer(registry *session.Registry, cache *status.Cache, m *metrics.Metrics, opts ...Option) *Server {
	s := &Server{
		registry: registry,
		cache:    cache,
		metrics:  m,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the chi router for the admin API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Get("/sessions", s.listSessions)
	r.Get("/sessions/{app}/{node}", s.getSession)
	r.Post("/sessions/{app}/{node}/toast", s.postToast)
	r.Get("/status/{sourceID}", s.getStatus)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.registry.Len(),
	})
}

// SessionSummary is the wire form of one live session.
type SessionSummary struct {
	ApplicationID string `json:"application_id"`
	NodeID        string `json:"node_id"`
	ScreenID      string `json:"screen_id,omitempty"`
	DeviceID      string `json:"device_id,omitempty"`
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.registry.Snapshot()
	summaries := make([]SessionSummary, 0, len(ids))
	for _, id := range ids {
		sess, ok := s.registry.Retrieve(id.ApplicationID, id.NodeID)
		if !ok {
			continue
		}
		summaries = append(summaries, summarize(sess))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(summaries),
		"sessions": summaries,
	})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	app, node := chi.URLParam(r, "app"), chi.URLParam(r, "node")
	sess, ok := s.registry.Retrieve(app, node)
	if !ok {
		http.Error(w, domain.ErrSessionNotFound.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, summarize(sess))
}

// ToastRequest is the body of the operator toast endpoint.
type ToastRequest struct {
	Text     string `json:"text"`
	Severity string `json:"severity,omitempty"`
}

func (s *Server) postToast(w http.ResponseWriter, r *http.Request) {
	app, node := chi.URLParam(r, "app"), chi.URLParam(r, "node")
	sess, ok := s.registry.Retrieve(app, node)
	if !ok {
		http.Error(w, domain.ErrSessionNotFound.Error(), http.StatusNotFound)
		return
	}

	var body ToastRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == "" {
		http.Error(w, "invalid toast body", http.StatusBadRequest)
		return
	}
	severity := domain.ToastSeverity(body.Severity)
	if severity == "" {
		severity = domain.ToastInfo
	}

	toast := &domain.Toast{
		DeviceID: sess.Device().DeviceID,
		Text:     body.Text,
		Severity: severity,
	}
	if err := sess.ShowToast(r.Context(), toast); err != nil {
		s.logger.Error("operator toast failed", "terminal", sess.Terminal().String(), "error", err)
		http.Error(w, "delivery failed", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "sourceID")
	report := s.cache.Latest(r.Context(), sourceID)
	writeJSON(w, http.StatusOK, report)
}

func summarize(sess *session.Session) SessionSummary {
	id := sess.Terminal()
	return SessionSummary{
		ApplicationID: id.ApplicationID,
		NodeID:        id.NodeID,
		ScreenID:      sess.CurrentScreenID(),
		DeviceID:      sess.Device().DeviceID,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("response encode failed", "error", err)
	}
}

// ListenAndServe runs the admin API until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s.Handler()}
	errs := make(chan error, 1)
	go func() { errs <- server.ListenAndServe() }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errs:
		return err
	}
}
