// Package server exposes the diff engine over HTTP.
//
//	POST /api/diff      diff two tree documents
//	POST /api/render    render a tree document as SQL
//	POST /api/validate  validate a tree document against the schema
//	GET  /healthz       liveness
//	GET  /metrics       Prometheus scrape endpoint, when enabled
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/sqldiff/pkg/observability"
	"github.com/Sumatoshi-tech/sqldiff/pkg/service"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
)

// Default limits used when Settings leaves them unset.
const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second
	defaultMaxBodyBytes = 32 << 20
	shutdownGrace       = 10 * time.Second
)

// Settings are the listener and request limits.
type Settings struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxBodyBytes int64
}

// Deps holds injectable dependencies. Zero-value fields use no-op defaults.
type Deps struct {
	Service *service.Service
	Logger  *slog.Logger
	Tracer  trace.Tracer
	RED     *observability.REDMetrics

	// Metrics serves /metrics. Nil leaves the route unregistered.
	Metrics http.Handler

	Version string
}

// DiffRequest is the body of POST /api/diff.
type DiffRequest struct {
	Source    json.RawMessage        `json:"source"`
	Target    json.RawMessage        `json:"target"`
	Matchings []service.MatchingPath `json:"matchings,omitempty"`
	Dialect   string                 `json:"dialect,omitempty"`
	DeltaOnly bool                   `json:"delta_only,omitempty"`
}

// RenderRequest is the body of POST /api/render.
type RenderRequest struct {
	Tree    json.RawMessage `json:"tree"`
	Dialect string          `json:"dialect,omitempty"`
}

// ValidateResponse is the body returned by POST /api/validate.
type ValidateResponse struct {
	Issues []node.Issue `json:"issues,omitempty"`
	Valid  bool         `json:"valid"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// Server is the HTTP API.
type Server struct {
	svc      *service.Service
	logger   *slog.Logger
	handler  http.Handler
	settings Settings
}

// New builds the server and its routes.
func New(settings Settings, deps Deps) *Server {
	if settings.ReadTimeout <= 0 {
		settings.ReadTimeout = defaultReadTimeout
	}

	if settings.WriteTimeout <= 0 {
		settings.WriteTimeout = defaultWriteTimeout
	}

	if settings.IdleTimeout <= 0 {
		settings.IdleTimeout = defaultIdleTimeout
	}

	if settings.MaxBodyBytes <= 0 {
		settings.MaxBodyBytes = defaultMaxBodyBytes
	}

	srv := &Server{svc: deps.Service, logger: deps.Logger, settings: settings}

	if srv.logger == nil {
		srv.logger = slog.Default()
	}

	if srv.svc == nil {
		srv.svc = service.New(service.Deps{Logger: srv.logger, Tracer: deps.Tracer})
	}

	tracer := deps.Tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer("sqldiff")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/diff", srv.handleDiff)
	mux.HandleFunc("POST /api/render", srv.handleRender)
	mux.HandleFunc("POST /api/validate", srv.handleValidate)
	mux.Handle("GET /healthz", observability.HealthHandler(deps.Version))

	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	srv.handler = observability.HTTPMiddleware(tracer, deps.RED, mux)

	return srv
}

// Handler returns the root handler with tracing and metrics applied.
func (srv *Server) Handler() http.Handler {
	return srv.handler
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (srv *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         srv.settings.Addr,
		Handler:      srv.handler,
		ReadTimeout:  srv.settings.ReadTimeout,
		WriteTimeout: srv.settings.WriteTimeout,
		IdleTimeout:  srv.settings.IdleTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		srv.logger.InfoContext(ctx, "sqldiff server listening", "addr", srv.settings.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}
