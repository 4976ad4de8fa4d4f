package inference

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/reeltruth/reeltruth/internal/logging"
)

// GenAIConfig captures what the Gemini client needs at construction time.
type GenAIConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger
}

// GenAIClient implements Generator over the Google GenAI SDK. It is
// read-only after construction and shared by all requests.
type GenAIClient struct {
	models modelsAPI
	logger *slog.Logger
}

// modelsAPI is the slice of *genai.Models the client uses.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewGenAIClient creates a Gemini API client with an injected credential.
func NewGenAIClient(ctx context.Context, cfg GenAIConfig) (*GenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &GenAIClient{
		models: client.Models,
		logger: logging.WithComponent(logger, "inference"),
	}, nil
}

// Generate sends one GenerateContent request and returns the response text.
func (c *GenAIClient) Generate(ctx context.Context, model string, parts []Part) (string, error) {
	if err := ValidateParts(model, parts); err != nil {
		return "", err
	}

	contents := []*genai.Content{genai.NewContentFromParts(toGenAIParts(parts), genai.RoleUser)}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		ie := Classify(err)
		c.logger.Warn("generate content failed",
			"model", model,
			"kind", ie.Kind,
			"status", ie.StatusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return "", ie
	}

	return responseText(resp)
}

func toGenAIParts(parts []Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case PartVideo:
			out = append(out, &genai.Part{
				FileData: &genai.FileData{FileURI: p.Locator, MIMEType: p.MIMEType},
			})
		case PartText:
			out = append(out, genai.NewPartFromText(p.Text))
		}
	}
	return out
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", &InferenceError{Kind: KindUnknown, Message: "no response received from model"}
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		msg := string(fb.BlockReason)
		if fb.BlockReasonMessage != "" {
			msg += ": " + fb.BlockReasonMessage
		}
		return "", &InferenceError{Kind: KindBlocked, Message: msg}
	}
	// No candidates is an empty result, not a failure.
	if len(resp.Candidates) == 0 {
		return "", nil
	}
	return resp.Text(), nil
}
