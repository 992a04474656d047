// Package api serves the analysis pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/julianshen/repodoc/internal/pipeline"
)

// Analyzer runs one analysis. *pipeline.Coordinator satisfies it.
type Analyzer interface {
	Run(ctx context.Context, req pipeline.Request, obs pipeline.Observer) (*pipeline.AnalysisResult, error)
}

// Options configures a Server.
type Options struct {
	Version    string
	AllowLocal bool
	BodyLimit  string
}

// Server holds the handler dependencies.
type Server struct {
	analyzer Analyzer
	opts     Options
	logger   *slog.Logger
}

// NewServer creates a Server.
func NewServer(analyzer Analyzer, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BodyLimit == "" {
		opts.BodyLimit = "1M"
	}
	return &Server{analyzer: analyzer, opts: opts, logger: logger}
}

// Echo builds the echo instance with middleware and routes registered.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(s.logger)

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10,
	}))
	e.Use(middleware.BodyLimit(s.opts.BodyLimit))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	}))

	s.RegisterRoutes(e)
	return e
}

// RegisterRoutes registers all API routes with the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.HandleHealth)

	g := e.Group("/api")
	g.POST("/analyze", s.HandleAnalyze)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	e := s.Echo()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", "addr", addr)
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("api server shutting down")
	return e.Shutdown(shutdownCtx)
}
