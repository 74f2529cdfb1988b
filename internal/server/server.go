// Package server provides the HTTP handlers and routing for the tool server.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"mcp-mini/internal/manifest"
	"mcp-mini/internal/telemetry"
	"mcp-mini/internal/weather"
)

// ManifestRoute is where the tool manifest is served.
const ManifestRoute = "/.well-known/mcp-manifest"

const (
	defaultRequestTimeout = 60 * time.Second
	requestTimeoutSlack   = 2 * time.Second
)

// Config contains the collaborators a Server needs. Manifest is required;
// the rest fall back to defaults.
type Config struct {
	Manifest *manifest.Store
	Weather  *weather.Client
	Observer *telemetry.ToolObserver
	Logger   *slog.Logger
	// Now is the clock used by get_datetime.
	Now func() time.Time
}

// Server contains the configured router and tool table.
type Server struct {
	router   *chi.Mux
	manifest *manifest.Store
	weather  *weather.Client
	observer *telemetry.ToolObserver
	logger   *slog.Logger
	now      func() time.Time
	tools    map[ToolName]toolFunc
}

// New constructs a Server with middleware and routes configured.
func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		manifest: cfg.Manifest,
		weather:  cfg.Weather,
		observer: cfg.Observer,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	if s.weather == nil {
		s.weather = weather.New("", nil)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.requestTimeout()))

	s.router.Get("/", s.handleRoot)
	s.router.Get("/health", s.handleHealth)
	s.router.Get(ManifestRoute, s.handleManifest)
	s.router.Post("/call", s.handleCall)

	s.registerToolHandlers()

	return s
}

// requestTimeout bounds a whole request: the weather call plus slack for
// encoding the response. Without a client timeout it falls back to
// defaultRequestTimeout.
func (s *Server) requestTimeout() time.Duration {
	if s.weather.HTTP == nil || s.weather.HTTP.Timeout <= 0 {
		return defaultRequestTimeout
	}
	return s.weather.HTTP.Timeout + requestTimeoutSlack
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootStatus{Status: "Server running", Manifest: ManifestRoute})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleManifest(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.manifest.Raw())
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var req CallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorDetail{Detail: "invalid json"})
		return
	}
	name, ok := req.toolName()
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorDetail{Detail: "Missing 'tool' in request body"})
		return
	}
	writeJSON(w, http.StatusOK, s.dispatch(r, name, req.arguments()))
}

// dispatch runs one tool call with logging and telemetry around it.
func (s *Server) dispatch(r *http.Request, name ToolName, args Arguments) Envelope {
	callID := uuid.NewString()
	ctx, span := s.observer.StartSpan(r.Context(), string(name), callID)
	start := time.Now()

	env := s.invoke(ctx, name, args)

	elapsed := time.Since(start)
	s.observer.ObserveInvoke(ctx, span, telemetry.Invocation{
		Tool:     string(name),
		CallID:   callID,
		Duration: elapsed,
		OK:       env.OK,
		Error:    env.Error,
	})
	attrs := []any{
		"tool", string(name),
		"call_id", callID,
		"request_id", middleware.GetReqID(r.Context()),
		"ok", env.OK,
		"duration", elapsed,
	}
	if env.OK {
		s.logger.Info("tool call", attrs...)
	} else {
		s.logger.Warn("tool call failed", append(attrs, "error", env.Error)...)
	}
	return env
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs one line per request through logger.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
					"remote", r.RemoteAddr,
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
