package devtools

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vcache/internal/errors"
	"github.com/vango-dev/vcache/pkg/reactive"
	"github.com/vango-dev/vcache/pkg/snapshot"
	"github.com/vango-dev/vcache/pkg/store"
)

// Default tracer name for the inspector.
const defaultTracerName = "vcache/devtools"

// Server is the cache inspector.
type Server struct {
	cache    *store.Cache
	root     *reactive.Owner
	logger   *slog.Logger
	tracer   trace.Tracer
	upgrader websocket.Upgrader

	snapshots   snapshot.Backend
	metrics     http.Handler
	metricsPath string

	// pingInterval is how often /watch connections are pinged.
	pingInterval time.Duration

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracerName sets the tracer name used for request spans.
func WithTracerName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.tracer = otel.Tracer(name)
		}
	}
}

// WithMetrics serves h at path.
func WithMetrics(h http.Handler, path string) Option {
	return func(s *Server) {
		s.metrics = h
		s.metricsPath = path
	}
}

// WithSnapshots enables the snapshot routes on backend b.
func WithSnapshots(b snapshot.Backend) Option {
	return func(s *Server) {
		s.snapshots = b
	}
}

// WithCheckOrigin sets the WebSocket origin check. By default only
// same-origin upgrades are accepted.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// New creates an inspector for c.
func New(c *store.Cache, opts ...Option) *Server {
	s := &Server{
		cache:  c,
		root:   reactive.NewOwner(nil),
		logger: slog.Default(),
		tracer: otel.Tracer(defaultTracerName),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		pingInterval: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	store.Provide(s.root, c)

	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})

	r.Get("/keys", s.handleListKeys)
	r.Get("/keys/*", s.handleGetKey)
	r.Put("/keys/*", s.handlePutKey)
	r.Get("/watch", s.handleWatch)

	if s.snapshots != nil {
		r.Get("/snapshots", s.handleListSnapshots)
		r.Post("/snapshots/{name}", s.handleSaveSnapshot)
		r.Post("/snapshots/{name}/restore", s.handleRestoreSnapshot)
	}

	if s.metrics != nil && s.metricsPath != "" {
		r.Method(http.MethodGet, s.metricsPath, s.metrics)
	}

	return r
}

// Handler returns the inspector's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close tears down every open /watch binding.
func (s *Server) Close() {
	s.root.Dispose()
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("devtools listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("devtools stopped")
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug("devtools request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// startSpan starts a request span. end records err (if any) on the span.
func (s *Server) startSpan(r *http.Request, name string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	ctx, span := s.tracer.Start(r.Context(), name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...))

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

type errorBody struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Code: errors.CodeOf(err), Error: err.Error()})
}
