// # internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"tangle/internal/config"
	"tangle/internal/diag"
	tangleerrors "tangle/internal/errors"
	"tangle/internal/graph"
	"tangle/internal/observability"
	"tangle/internal/parser"
)

// Server exposes the build pipeline over HTTP. Every request constructs
// its own Graph; nothing graph-shaped is shared across requests.
type Server struct {
	cfg     *config.Config
	parser  *parser.Parser
	limiter *rate.Limiter
	srv     *http.Server
}

// GraphRequest is the analyze-request body. Absent fields fall back to the
// server's configuration.
type GraphRequest struct {
	Path       string         `json:"path"`
	BaseDir    string         `json:"baseDir,omitempty"`
	Extensions []string       `json:"extensions,omitempty"`
	Include    []string       `json:"include,omitempty"`
	Exclude    []string       `json:"exclude,omitempty"`
	Aliases    []config.Alias `json:"aliases,omitempty"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func New(addr string, cfg *config.Config, p *parser.Parser) *Server {
	s := &Server{
		cfg:     cfg,
		parser:  p,
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.throttle)

	r.Post("/api/graph", s.handleGraph)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	slog.Info("graph server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(withBuildID(r.Context(), id)))
	})
}

func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "up"})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req GraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.count("/api/graph", http.StatusBadRequest)
		writeError(w, http.StatusBadRequest, string(tangleerrors.CodeValidationError), "invalid request body")
		return
	}
	if req.Path == "" {
		s.count("/api/graph", http.StatusBadRequest)
		writeError(w, http.StatusBadRequest, string(tangleerrors.CodeValidationError), "path is required")
		return
	}

	cfg := s.mergeConfig(req)

	builder, err := graph.NewBuilder(req.Path, cfg, s.parser, diag.NewSlogSink(slog.With("build", buildID(r.Context()))))
	if err != nil {
		status := http.StatusInternalServerError
		code := tangleerrors.CodeInternal
		switch {
		case tangleerrors.IsCode(err, tangleerrors.CodeNotFound):
			status, code = http.StatusNotFound, tangleerrors.CodeNotFound
		case tangleerrors.IsCode(err, tangleerrors.CodeValidationError):
			status, code = http.StatusBadRequest, tangleerrors.CodeValidationError
		}
		s.count("/api/graph", status)
		writeError(w, status, string(code), err.Error())
		return
	}

	g, err := builder.Build(r.Context())
	if err != nil {
		s.count("/api/graph", http.StatusInternalServerError)
		writeError(w, http.StatusInternalServerError, string(tangleerrors.CodeInternal), err.Error())
		return
	}

	s.count("/api/graph", http.StatusOK)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(g.Serialize())
}

// mergeConfig layers request overrides on top of the server configuration.
func (s *Server) mergeConfig(req GraphRequest) *config.Config {
	cfg := *s.cfg
	if req.BaseDir != "" {
		cfg.BaseDir = req.BaseDir
	}
	if len(req.Extensions) > 0 {
		cfg.Extensions = req.Extensions
	}
	if len(req.Include) > 0 {
		cfg.Include = req.Include
	}
	if len(req.Exclude) > 0 {
		cfg.Exclude = req.Exclude
	}
	if len(req.Aliases) > 0 {
		cfg.Aliases = req.Aliases
	}
	return &cfg
}

func (s *Server) count(route string, status int) {
	observability.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type ctxKey int

const buildIDKey ctxKey = 0

func withBuildID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, buildIDKey, id)
}

func buildID(ctx context.Context) string {
	if id, ok := ctx.Value(buildIDKey).(string); ok {
		return id
	}
	return ""
}
