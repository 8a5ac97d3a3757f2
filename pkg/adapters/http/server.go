package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/aretw0/xcallback/internal/logging"
	"github.com/aretw0/xcallback/pkg/pending"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 64 << 10

// Manager is the part of xcallback.Manager the bus needs.
type Manager interface {
	HandleURL(ctx context.Context, u *url.URL) bool
	Pending() *pending.Table
	CallbackScheme() string
}

// OpenRequest is the body of POST /open.
type OpenRequest struct {
	URL string `json:"url"`
}

// OpenResponse reports whether the manager consumed the URL.
type OpenResponse struct {
	Handled bool `json:"handled"`
}

// PendingEntry describes one request awaiting a response.
type PendingEntry struct {
	ID     string `json:"id"`
	Scheme string `json:"scheme"`
	Action string `json:"action"`
}

// Server serves the URL bus for one manager.
type Server struct {
	Manager Manager
	Events  *EventStream

	metrics http.Handler
	logger  *slog.Logger
}

// HandlerOption configures the handler.
type HandlerOption func(*Server)

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) HandlerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithEvents streams lifecycle events at GET /events.
func WithEvents(events *EventStream) HandlerOption {
	return func(s *Server) {
		s.Events = events
	}
}

// WithLogger sets the logger for request failures.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates the HTTP handler for the bus.
func NewHandler(m Manager, opts ...HandlerOption) http.Handler {
	s := &Server{
		Manager: m,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post("/open", s.Open)
	r.Get("/pending", s.ListPending)
	r.Get("/healthz", s.Health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	if s.Events != nil {
		r.Get("/events", s.SubscribeEvents)
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

// Open handles POST /open. The URL comes as JSON {"url": ...} or as the
// "url" form field.
func (s *Server) Open(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	raw, err := readURL(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Open: Invalid request body", "err", err)
		return
	}
	if raw == "" {
		http.Error(w, "Missing url", http.StatusBadRequest)
		return
	}

	u, err := url.Parse(raw)
	if err != nil {
		http.Error(w, "Invalid url", http.StatusBadRequest)
		s.logger.Warn("Open: Invalid url", "url", raw, "err", err)
		return
	}

	handled := s.Manager.HandleURL(r.Context(), u)
	s.logger.Debug("Open: URL delivered", "url", raw, "handled", handled)
	writeJSON(w, s.logger, OpenResponse{Handled: handled})
}

func readURL(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body OpenRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", err
		}
		return body.URL, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.PostForm.Get("url"), nil
}

// ListPending handles GET /pending.
func (s *Server) ListPending(w http.ResponseWriter, r *http.Request) {
	table := s.Manager.Pending()
	entries := []PendingEntry{}
	for _, id := range table.IDs() {
		req, ok := table.Get(id)
		if !ok {
			continue
		}
		entries = append(entries, PendingEntry{ID: req.ID, Scheme: req.Scheme, Action: req.Action})
	}
	writeJSON(w, s.logger, entries)
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{
		"status":          "ok",
		"callback_scheme": s.Manager.CallbackScheme(),
	})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "err", err)
	}
}
