// Package analysis runs the two-stage claim analysis pipeline: extract the
// claims a video makes, then evaluate them against general knowledge with the
// same video re-supplied as context.
package analysis

import "time"

// Stage names one of the two inference calls.
type Stage string

const (
	StageExtract  Stage = "extract"
	StageEvaluate Stage = "evaluate"
)

// State is the position of a request in the pipeline.
type State string

const (
	StateInit       State = "init"
	StateValidating State = "validating"
	StateExtracting State = "extracting"
	StateEvaluating State = "evaluating"
	StateDone       State = "done"
	StateError      State = "error"
)

// Default model identifiers: a lighter model extracts, a stronger one evaluates.
const (
	DefaultExtractModel  = "gemini-2.0-flash-001"
	DefaultEvaluateModel = "gemini-2.5-flash-preview-04-17"
)

// StageModels maps each stage to the model that serves it.
type StageModels struct {
	Extract  string `json:"extract" yaml:"extract"`
	Evaluate string `json:"evaluate" yaml:"evaluate"`
}

// DefaultStageModels returns the reference model pairing.
func DefaultStageModels() StageModels {
	return StageModels{Extract: DefaultExtractModel, Evaluate: DefaultEvaluateModel}
}

// For returns the model configured for stage.
func (m StageModels) For(stage Stage) string {
	if stage == StageExtract {
		return m.Extract
	}
	return m.Evaluate
}

// Request is one analysis: which video, and which language to answer in.
type Request struct {
	VideoLocator   string
	TargetLanguage string
}

// Report is the outcome of a successful analysis. Text is the evaluation
// stage's output and the only part callers are required to show; Claims is
// the extraction output kept for transparency.
type Report struct {
	ID       string
	Text     string
	Claims   string
	Locator  string
	Language string
	Models   StageModels
	Duration time.Duration
}
