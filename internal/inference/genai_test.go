package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"google.golang.org/genai"

	"github.com/reeltruth/reeltruth/internal/logging"
)

type fakeModels struct {
	calls    int
	model    string
	contents []*genai.Content
	resp     *genai.GenerateContentResponse
	err      error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.contents = contents
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(text, genai.RoleModel),
		}},
	}
}

func newTestClient(models *fakeModels) *GenAIClient {
	return &GenAIClient{models: models, logger: logging.Discard()}
}

func TestNewGenAIClient_RequiresAPIKey(t *testing.T) {
	if _, err := NewGenAIClient(context.Background(), GenAIConfig{}); err == nil {
		t.Fatal("NewGenAIClient() with empty key should fail")
	}
}

func TestGenAIClient_Generate_OrdersParts(t *testing.T) {
	models := &fakeModels{resp: textResponse("1. A claim.")}
	c := newTestClient(models)

	got, err := c.Generate(context.Background(), "gemini-test",
		[]Part{VideoPart("https://video.example/abc"), TextPart("list claims")})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "1. A claim." {
		t.Errorf("Generate() = %q, want %q", got, "1. A claim.")
	}
	if models.model != "gemini-test" {
		t.Errorf("model = %q, want gemini-test", models.model)
	}
	if len(models.contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(models.contents))
	}

	parts := models.contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want 2", len(parts))
	}
	if parts[0].FileData == nil || parts[0].FileData.FileURI != "https://video.example/abc" {
		t.Errorf("first part = %+v, want file data for the video", parts[0])
	}
	if parts[1].Text != "list claims" {
		t.Errorf("second part text = %q, want %q", parts[1].Text, "list claims")
	}
	if models.contents[0].Role != string(genai.RoleUser) {
		t.Errorf("role = %q, want %q", models.contents[0].Role, genai.RoleUser)
	}
}

func TestGenAIClient_Generate_InvalidPayloadMakesNoCall(t *testing.T) {
	tests := []struct {
		name  string
		model string
		parts []Part
	}{
		{"no model", "", []Part{TextPart("x")}},
		{"no text part", "m", []Part{VideoPart("https://video.example/a")}},
		{"empty locator", "m", []Part{VideoPart(""), TextPart("x")}},
		{"unknown kind", "m", []Part{{Kind: "audio"}, TextPart("x")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models := &fakeModels{resp: textResponse("unused")}
			_, err := newTestClient(models).Generate(context.Background(), tt.model, tt.parts)

			var ie *InferenceError
			if !errors.As(err, &ie) || ie.Kind != KindInvalidRequest {
				t.Fatalf("Generate() error = %v, want invalid_request", err)
			}
			if models.calls != 0 {
				t.Errorf("calls = %d, want 0", models.calls)
			}
		})
	}
}

func TestGenAIClient_Generate_ClassifiesAPIError(t *testing.T) {
	models := &fakeModels{err: genai.APIError{Code: 429, Message: "Resource has been exhausted", Status: "RESOURCE_EXHAUSTED"}}

	_, err := newTestClient(models).Generate(context.Background(), "m", []Part{TextPart("x")})

	var ie *InferenceError
	if !errors.As(err, &ie) {
		t.Fatalf("Generate() error = %T, want *InferenceError", err)
	}
	want := InferenceError{Kind: KindRateLimited, StatusCode: 429, Message: "Resource has been exhausted"}
	if diff := cmp.Diff(want, *ie, cmpopts.IgnoreFields(InferenceError{}, "Err")); diff != "" {
		t.Errorf("InferenceError mismatch (-want +got):\n%s", diff)
	}
	if !ie.Retryable() {
		t.Error("rate limited error should be retryable")
	}
}

func TestGenAIClient_Generate_Blocked(t *testing.T) {
	models := &fakeModels{resp: &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
	}}

	_, err := newTestClient(models).Generate(context.Background(), "m", []Part{TextPart("x")})

	var ie *InferenceError
	if !errors.As(err, &ie) || ie.Kind != KindBlocked {
		t.Fatalf("Generate() error = %v, want blocked", err)
	}
}

func TestGenAIClient_Generate_NoCandidatesIsEmptyText(t *testing.T) {
	models := &fakeModels{resp: &genai.GenerateContentResponse{}}

	got, err := newTestClient(models).Generate(context.Background(), "m", []Part{TextPart("x")})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "" {
		t.Errorf("Generate() = %q, want empty", got)
	}
}
