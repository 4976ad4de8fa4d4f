package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reeltruth/reeltruth/internal/analysis"
	"github.com/reeltruth/reeltruth/internal/language"
	"github.com/reeltruth/reeltruth/internal/logging"
	"github.com/reeltruth/reeltruth/internal/render"
)

type analyzeOptions struct {
	url        string
	language   string
	raw        bool
	showClaims bool
	style      string
	timeout    time.Duration
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one video and print the report",
		Example: `  reeltruth analyze --url https://www.youtube.com/watch?v=abc123
  reeltruth analyze --url https://youtu.be/abc123 --language es --show-claims`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return ctx.analyze(sigCtx, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.url, "url", "u", "", "Video URL to analyze")
	cmd.Flags().StringVarP(&opts.language, "language", "l", language.DefaultCode, "Output language (name or ISO 639-1 code)")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the report as plain markdown")
	cmd.Flags().BoolVar(&opts.showClaims, "show-claims", false, "Also print the extracted claims")
	cmd.Flags().StringVar(&opts.style, "style", "", "Glamour style for the report (dark, light, notty, ...)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Abort the analysis after this long (default from config)")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func (c *commandContext) analyze(ctx context.Context, opts analyzeOptions, out io.Writer) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	// stdout carries the report.
	logger := logging.NewLoggerTo(os.Stderr, cfg.LogLevel(), cfg.LogFormat())

	analyzer, err := c.buildAnalyzer(ctx, cfg, logger)
	if err != nil {
		return err
	}

	timeout := opts.timeout
	if timeout == 0 {
		timeout = cfg.AnalyzeTimeout()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	report, err := analyzer.Analyze(ctx, analysis.Request{
		VideoLocator:   strings.TrimSpace(opts.url),
		TargetLanguage: language.Resolve(opts.language),
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	markdown := report.Text
	if opts.showClaims {
		markdown = render.Section("Extracted claims", report.Claims) + "\n" + render.Section("Evaluation", report.Text)
	}

	return render.Report(out, markdown, render.Options{Raw: opts.raw, Style: opts.style})
}
