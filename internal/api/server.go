package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"breaktime/internal/metrics"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// ServerConfig contains runtime options for Server.
type ServerConfig struct {
	ListenAddr     string
	MetricsEnabled bool
}

// Server is the local control HTTP server.
type Server struct {
	server   *http.Server
	logger   zerolog.Logger
	listener net.Listener // Optional pre-created listener (for systemd socket activation)
}

// NewRouter builds the route tree for handler.
func NewRouter(handler *Handler, options ServerConfig, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(LoggingMiddleware(logger))

	handler.RegisterRoutes(r)
	if options.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}
	return r
}

// NewServer creates a new control server.
func NewServer(handler *Handler, options ServerConfig, logger zerolog.Logger) *Server {
	logger = logger.With().Str("component", "api-server").Logger()
	return &Server{
		server: &http.Server{
			Addr:              options.ListenAddr,
			Handler:           NewRouter(handler, options, logger),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// SetListener sets a pre-created listener for systemd socket activation
func (s *Server) SetListener(ln net.Listener) {
	s.listener = ln
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	if s.listener == nil {
		ln, err := net.Listen("tcp", s.server.Addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
		}
		s.listener = ln
	} else {
		s.logger.Debug().Msg("Using systemd socket-activated listener")
	}

	s.logger.Info().Str("addr", s.listener.Addr().String()).Msg("Starting control server")
	go func() {
		if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Control server error")
		}
	}()
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully stops the control server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping control server")
	return s.server.Shutdown(ctx)
}

// LoggingMiddleware logs each request at debug level.
func LoggingMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(wrapped, r)

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Int("status", wrapped.Status()).
				Dur("duration", time.Since(start)).
				Msg("Control request")
		})
	}
}
