package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reeltruth/reeltruth/internal/inference"
	"github.com/reeltruth/reeltruth/internal/logging"
	"github.com/reeltruth/reeltruth/internal/prompt"
)

// Analyzer sequences the extraction and evaluation stages for one request at
// a time. It holds no per-request state and is safe for concurrent use.
type Analyzer struct {
	generator  inference.Generator
	models     StageModels
	retry      RetryPolicy
	logger     *slog.Logger
	sleep      func(context.Context, time.Duration) error
	transition func(id string, from, to State)
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithModels overrides the stage to model mapping.
func WithModels(models StageModels) Option {
	return func(a *Analyzer) {
		a.models = models
	}
}

// WithRetry enables bounded retry of transient inference failures.
func WithRetry(policy RetryPolicy) Option {
	return func(a *Analyzer) {
		a.retry = policy
	}
}

// WithLogger sets the logger; nil keeps logging discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithSleeper overrides how retry waits are performed (useful for tests).
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(a *Analyzer) {
		if sleep != nil {
			a.sleep = sleep
		}
	}
}

// WithTransitionHook registers a callback invoked on every state change.
func WithTransitionHook(fn func(id string, from, to State)) Option {
	return func(a *Analyzer) {
		a.transition = fn
	}
}

// New creates an Analyzer that sends both stages through gen.
func New(gen inference.Generator, opts ...Option) (*Analyzer, error) {
	if gen == nil {
		return nil, errors.New("analysis: generator is required")
	}

	a := &Analyzer{
		generator: gen,
		models:    DefaultStageModels(),
		retry:     NoRetry(),
		logger:    logging.Discard(),
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(a)
	}

	if strings.TrimSpace(a.models.Extract) == "" || strings.TrimSpace(a.models.Evaluate) == "" {
		return nil, errors.New("analysis: a model is required for both stages")
	}
	a.logger = logging.WithComponent(a.logger, "analysis")
	return a, nil
}

// Models returns the configured stage to model mapping.
func (a *Analyzer) Models() StageModels {
	return a.models
}

// run tracks one request through the state machine.
type run struct {
	a     *Analyzer
	id    string
	state State
	log   *slog.Logger
}

func (r *run) to(next State) {
	prev := r.state
	r.state = next
	r.log.Debug("analysis state changed", "from", prev, "to", next)
	if r.a.transition != nil {
		r.a.transition(r.id, prev, next)
	}
}

func (r *run) fail(err *PipelineError) (*Report, error) {
	r.to(StateError)
	return nil, err
}

// Analyze extracts the claims made in the video and evaluates them, returning
// the evaluation text. Stage two always runs after stage one succeeds, even
// when no claims were extracted. Every failure is a *PipelineError.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	r := &run{a: a, id: uuid.NewString(), state: StateInit}
	r.log = logging.WithAnalysisID(a.logger, r.id)

	r.to(StateValidating)
	if strings.TrimSpace(req.VideoLocator) == "" {
		return r.fail(invalidInput(FieldVideoLocator))
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		return r.fail(invalidInput(FieldTargetLanguage))
	}

	r.log.Info("analysis started",
		"locator", logging.SanitizeLocator(req.VideoLocator),
		"language", req.TargetLanguage,
	)

	r.to(StateExtracting)
	extractPrompt, err := prompt.BuildExtraction(req.TargetLanguage)
	if err != nil {
		return r.fail(unknownFailure(fmt.Errorf("build extraction prompt: %w", err)))
	}
	claims, perr := a.runStage(ctx, r, StageExtract, req.VideoLocator, extractPrompt)
	if perr != nil {
		return r.fail(perr)
	}

	r.to(StateEvaluating)
	evaluatePrompt, err := prompt.BuildEvaluation(req.TargetLanguage, claims)
	if err != nil {
		return r.fail(unknownFailure(fmt.Errorf("build evaluation prompt: %w", err)))
	}
	text, perr := a.runStage(ctx, r, StageEvaluate, req.VideoLocator, evaluatePrompt)
	if perr != nil {
		return r.fail(perr)
	}

	r.to(StateDone)
	report := &Report{
		ID:       r.id,
		Text:     text,
		Claims:   claims,
		Locator:  req.VideoLocator,
		Language: req.TargetLanguage,
		Models:   a.models,
		Duration: time.Since(start),
	}
	r.log.Info("analysis complete",
		"duration_ms", report.Duration.Milliseconds(),
		"report_chars", len(text),
	)
	return report, nil
}

func (a *Analyzer) runStage(ctx context.Context, r *run, stage Stage, locator, instruction string) (string, *PipelineError) {
	if err := ctx.Err(); err != nil {
		return "", cancelled(stage, err)
	}

	model := a.models.For(stage)
	parts := []inference.Part{
		inference.VideoPart(locator),
		inference.TextPart(instruction),
	}

	log := r.log.With("stage", stage, "model", model)
	log.Debug("stage started", "prompt_chars", len(instruction))
	stageStart := time.Now()

	text, err := a.generate(ctx, log, model, parts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Warn("stage cancelled", "error", ctxErr)
			return "", cancelled(stage, ctxErr)
		}
		log.Error("stage failed", "error", err, "duration_ms", time.Since(stageStart).Milliseconds())
		return "", upstreamFailure(stage, err)
	}

	if strings.TrimSpace(text) == "" {
		log.Warn("stage returned empty output")
	}
	log.Info("stage finished",
		"duration_ms", time.Since(stageStart).Milliseconds(),
		"output_chars", len(text),
	)
	return text, nil
}

func (a *Analyzer) generate(ctx context.Context, log *slog.Logger, model string, parts []inference.Part) (string, error) {
	for attempt := 1; ; attempt++ {
		text, err := a.generator.Generate(ctx, model, parts)
		if err == nil {
			return text, nil
		}

		delay, retry := a.retry.delay(ctx, err, attempt)
		if !retry {
			return "", err
		}
		log.Warn("retrying stage after transient failure",
			"attempt", attempt,
			"max_attempts", a.retry.attempts(),
			"delay_ms", delay.Milliseconds(),
			"error", err,
		)
		if serr := a.sleep(ctx, delay); serr != nil {
			return "", serr
		}
	}
}
