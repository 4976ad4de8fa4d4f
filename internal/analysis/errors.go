package analysis

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure for the boundary.
type Kind string

const (
	KindInvalidInput    Kind = "invalid_input"
	KindUpstreamFailure Kind = "upstream_failure"
	KindCancelled       Kind = "cancelled"
	KindUnknownFailure  Kind = "unknown_failure"
)

// Request fields named by InvalidInput errors.
const (
	FieldVideoLocator   = "video_locator"
	FieldTargetLanguage = "target_language"
)

// PipelineError is the single error type Analyze returns.
type PipelineError struct {
	Kind  Kind
	Stage Stage  // set for upstream failures and cancellations
	Field string // set for invalid input
	Err   error
}

func (e *PipelineError) Error() string {
	switch e.Kind {
	case KindInvalidInput:
		return fmt.Sprintf("invalid input: missing %s", e.Field)
	case KindUpstreamFailure:
		return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
	case KindCancelled:
		if e.Stage != "" {
			return fmt.Sprintf("%s stage cancelled: %v", e.Stage, e.Err)
		}
		return fmt.Sprintf("analysis cancelled: %v", e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("analysis failed: %v", e.Err)
		}
		return "analysis failed"
	}
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// KindOf returns the pipeline kind of err, or KindUnknownFailure when err is
// not a *PipelineError.
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknownFailure
}

// IsInvalidInput reports whether err is a client-side input error.
func IsInvalidInput(err error) bool {
	return KindOf(err) == KindInvalidInput
}

func invalidInput(field string) *PipelineError {
	return &PipelineError{Kind: KindInvalidInput, Field: field}
}

func upstreamFailure(stage Stage, err error) *PipelineError {
	return &PipelineError{Kind: KindUpstreamFailure, Stage: stage, Err: err}
}

func cancelled(stage Stage, err error) *PipelineError {
	return &PipelineError{Kind: KindCancelled, Stage: stage, Err: err}
}

func unknownFailure(err error) *PipelineError {
	return &PipelineError{Kind: KindUnknownFailure, Err: err}
}
