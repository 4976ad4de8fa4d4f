// Package inference wraps calls to the external multimodal generation
// service. A call takes a model identifier and an ordered list of content
// parts (video references and text instructions) and returns generated text
// or an *InferenceError.
package inference

import (
	"context"
	"strconv"
)

// PartKind tags a content part.
type PartKind string

const (
	PartVideo PartKind = "video-reference"
	PartText  PartKind = "text"
)

// Part is one element of an inference payload. Exactly one of Locator or
// Text is meaningful, selected by Kind.
type Part struct {
	Kind     PartKind
	Locator  string
	MIMEType string
	Text     string
}

// VideoPart references a video the service resolves on its own side.
func VideoPart(locator string) Part {
	return Part{Kind: PartVideo, Locator: locator}
}

// TextPart carries instruction text.
func TextPart(text string) Part {
	return Part{Kind: PartText, Text: text}
}

// Generator performs one generation call per invocation. Implementations do
// not retry and must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, model string, parts []Part) (string, error)
}

// ValidateParts checks the payload contract shared by every Generator: a
// model is named, at least one text part is present and every video part
// carries a locator.
func ValidateParts(model string, parts []Part) error {
	if model == "" {
		return &InferenceError{Kind: KindInvalidRequest, Message: "model identifier required"}
	}
	hasText := false
	for i, p := range parts {
		switch p.Kind {
		case PartText:
			hasText = true
		case PartVideo:
			if p.Locator == "" {
				return &InferenceError{Kind: KindInvalidRequest, Message: "video part has empty locator"}
			}
		default:
			return &InferenceError{Kind: KindInvalidRequest, Message: "unknown part kind at index " + strconv.Itoa(i)}
		}
	}
	if !hasText {
		return &InferenceError{Kind: KindInvalidRequest, Message: "at least one text part required"}
	}
	return nil
}
