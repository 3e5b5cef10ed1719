package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/algotrace/internal/runner"
	"github.com/roach88/algotrace/internal/store"
	"github.com/roach88/algotrace/internal/trace"
)

// Defaults for untrusted callers.
const (
	DefaultTimeout  = 5 * time.Second
	DefaultMaxSteps = 10000
)

// Server serves catalog runs over HTTP.
type Server struct {
	runner   *runner.Runner
	store    *store.Store
	logger   *slog.Logger
	timeout  time.Duration
	maxSteps int
	policy   trace.OverflowPolicy
	registry *prometheus.Registry
	metrics  *metrics
	engine   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithTimeout bounds each run. Default: DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// WithMaxSteps caps the records per run. 0 disables the cap.
// Default: DefaultMaxSteps.
func WithMaxSteps(n int) Option {
	return func(s *Server) {
		s.maxSteps = n
	}
}

// WithPolicy sets the overflow policy for every run. Default: PolicyDrop.
func WithPolicy(p trace.OverflowPolicy) Option {
	return func(s *Server) {
		s.policy = p
	}
}

// WithStore serves stored runs under /runs/:id. Runs are only recorded if
// the runner was built with the same store.
func WithStore(st *store.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithLogger sets the request logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// New creates a server running algorithms through r.
func New(r *runner.Runner, opts ...Option) *Server {
	s := &Server{
		runner:   r,
		timeout:  DefaultTimeout,
		maxSteps: DefaultMaxSteps,
		policy:   trace.PolicyDrop,
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.metrics = newMetrics(s.registry)

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	s.registerRoutes(engine)
	s.engine = engine
	return s
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/health", s.HandleHealth)
	r.GET("/algorithms", s.HandleAlgorithms)
	r.POST("/run/:algorithm", s.HandleRunPost)
	r.GET("/run/:algorithm", s.HandleRunGet)
	r.GET("/runs/:id", s.HandleStoredRun)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr, "timeout", s.timeout)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		s.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout+time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// requestLogger logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.Writer.Header().Get("X-Request-ID"),
		)
	}
}
