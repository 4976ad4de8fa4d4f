package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/reeltruth/reeltruth/internal/analysis"
	"github.com/reeltruth/reeltruth/internal/config"
	"github.com/reeltruth/reeltruth/internal/inference"
	"github.com/reeltruth/reeltruth/internal/logging"
)

// errNoAPIKey is returned when a command needs inference but no key is set.
var errNoAPIKey = errors.New(config.EnvGeminiAPIKey + " is not set")

// generatorFactory builds the inference backend. Tests replace it.
type generatorFactory func(ctx context.Context, cfg config.Config, logger *slog.Logger) (inference.Generator, error)

type commandContext struct {
	configFlag *string

	newGenerator generatorFactory

	configOnce sync.Once
	config     *config.EnvConfig
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		newGenerator: newGenAIGenerator,
	}
}

func (c *commandContext) ensureConfig() (*config.EnvConfig, error) {
	c.configOnce.Do(func() {
		var (
			cfg *config.EnvConfig
			err error
		)
		if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
			cfg, err = config.Load(strings.TrimSpace(*c.configFlag))
		} else {
			cfg, err = config.New()
		}
		if err != nil {
			c.configErr = fmt.Errorf("failed to load config: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cfg config.Config) *slog.Logger {
	return logging.NewLogger(cfg.LogLevel(), cfg.LogFormat())
}

// buildAnalyzer wires the configured generator into an analyzer. It returns
// errNoAPIKey when no inference credential is configured.
func (c *commandContext) buildAnalyzer(ctx context.Context, cfg config.Config, logger *slog.Logger) (*analysis.Analyzer, error) {
	gen, err := c.newGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return analysis.New(gen,
		analysis.WithModels(analysis.StageModels{
			Extract:  cfg.ExtractModel(),
			Evaluate: cfg.EvaluateModel(),
		}),
		analysis.WithRetry(analysis.RetryPolicy{
			MaxAttempts: cfg.RetryAttempts(),
			BaseDelay:   cfg.RetryBaseDelay(),
			MaxDelay:    cfg.RetryMaxDelay(),
		}),
		analysis.WithLogger(logger),
	)
}

func newGenAIGenerator(ctx context.Context, cfg config.Config, logger *slog.Logger) (inference.Generator, error) {
	if cfg.GeminiAPIKey() == "" {
		return nil, errNoAPIKey
	}
	client, err := inference.NewGenAIClient(ctx, inference.GenAIConfig{
		APIKey:  cfg.GeminiAPIKey(),
		BaseURL: cfg.InferenceBaseURL(),
		Timeout: cfg.InferenceTimeout(),
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create inference client: %w", err)
	}
	return client, nil
}
