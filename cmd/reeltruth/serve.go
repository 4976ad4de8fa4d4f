package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reeltruth/reeltruth/internal/api"
	"github.com/reeltruth/reeltruth/internal/config"
	"github.com/reeltruth/reeltruth/internal/db"
	"github.com/reeltruth/reeltruth/internal/settings"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return ctx.serve(sigCtx, cfg, ctx.logger(cfg), cmd.OutOrStdout(), nil)
		},
	}
}

// serve runs the HTTP API until ctx is cancelled. ready, when non-nil, is
// called with the bound address once the listener is open.
func (c *commandContext) serve(ctx context.Context, cfg config.Config, logger *slog.Logger, out io.Writer, ready func(addr string)) error {
	startTime := time.Now()

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger.Info("starting reeltruth", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := settings.NewRepository(database.Conn())

	instanceID, err := settings.EnsureInstanceID(ctx, repo)
	if err != nil {
		return fmt.Errorf("failed to ensure instance ID: %w", err)
	}

	var authToken string
	if !cfg.AuthDisabled() {
		authToken, err = settings.EnsureAuthToken(ctx, repo, cfg.APIToken())
		if err != nil {
			return fmt.Errorf("failed to ensure auth token: %w", err)
		}
	}

	serverCfg := api.ServerConfig{
		Addr:           cfg.Addr(),
		Logger:         logger,
		StartTime:      startTime,
		Version:        config.Version,
		InstanceID:     instanceID,
		APIToken:       authToken,
		AuthDisabled:   cfg.AuthDisabled(),
		AllowedHosts:   cfg.AllowedHosts(),
		AllowedOrigins: cfg.AllowedOrigins(),
		AnalyzeTimeout: cfg.AnalyzeTimeout(),
	}

	analyzer, err := c.buildAnalyzer(ctx, cfg, logger)
	switch {
	case errors.Is(err, errNoAPIKey):
		logger.Warn("inference API key not configured; analyze requests will fail", "env", config.EnvGeminiAPIKey)
	case err != nil:
		return err
	default:
		serverCfg.Analyzer = analyzer
		models := analyzer.Models()
		logger.Info("analysis pipeline ready", "extract_model", models.Extract, "evaluate_model", models.Evaluate)
	}

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
	}

	printBanner(out, ln.Addr().String(), authToken, instanceID)
	if ready != nil {
		ready(ln.Addr().String())
	}

	apiServer := api.NewServer(serverCfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return apiServer.Serve(ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("initiating graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

func printBanner(out io.Writer, addr, token, instanceID string) {
	if token == "" {
		token = "(auth disabled)"
	}
	if len(instanceID) > 16 {
		instanceID = instanceID[:16] + "..."
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "╔═══════════════════════════════════════════════════════════════════════════════╗")
	fmt.Fprintf(out, "║  %-77s║\n", "REELTRUTH "+config.Version)
	fmt.Fprintln(out, "╠═══════════════════════════════════════════════════════════════════════════════╣")
	fmt.Fprintf(out, "║  API URL:     %-64s║\n", "http://"+addr)
	fmt.Fprintf(out, "║  Auth Token:  %-64s║\n", token)
	fmt.Fprintf(out, "║  Instance ID: %-64s║\n", instanceID)
	fmt.Fprintln(out, "╚═══════════════════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(out)
}
