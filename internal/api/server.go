// Package api serves the analysis pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/reeltruth/reeltruth/internal/analysis"
)

// Analyzer is the pipeline the server drives.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Report, error)
	Models() analysis.StageModels
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Addr string
	// Analyzer is nil when no inference credential is configured; analyze
	// requests then fail with a configuration error.
	Analyzer       Analyzer
	Logger         *slog.Logger
	StartTime      time.Time
	Version        string
	InstanceID     string
	APIToken       string
	AuthDisabled   bool
	AllowedHosts   []string
	AllowedOrigins []string
	AnalyzeTimeout time.Duration
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      0,
			IdleTimeout:       60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Serve accepts connections on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting HTTP server", "addr", ln.Addr().String())
	err := s.httpServer.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
