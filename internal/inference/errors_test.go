package inference

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genai"
)

func TestClassify_StatusCodes(t *testing.T) {
	tests := []struct {
		code      int
		want      ErrorKind
		retryable bool
	}{
		{400, KindInvalidRequest, false},
		{401, KindAuth, false},
		{403, KindAuth, false},
		{404, KindInvalidRequest, false},
		{408, KindTimeout, true},
		{429, KindRateLimited, true},
		{500, KindUnavailable, true},
		{503, KindUnavailable, true},
		{504, KindTimeout, true},
		{418, KindUnknown, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			ie := Classify(fmt.Errorf("wrapped: %w", genai.APIError{Code: tt.code, Message: "boom"}))
			if ie.Kind != tt.want {
				t.Errorf("Kind = %s, want %s", ie.Kind, tt.want)
			}
			if ie.StatusCode != tt.code {
				t.Errorf("StatusCode = %d, want %d", ie.StatusCode, tt.code)
			}
			if ie.Retryable() != tt.retryable {
				t.Errorf("Retryable() = %v, want %v", ie.Retryable(), tt.retryable)
			}
		})
	}
}

func TestClassify_MessageFallsBackToStatus(t *testing.T) {
	ie := Classify(genai.APIError{Code: 503, Status: "UNAVAILABLE"})
	if ie.Message != "UNAVAILABLE" {
		t.Errorf("Message = %q, want UNAVAILABLE", ie.Message)
	}
}

func TestClassify_ContextDeadline(t *testing.T) {
	ie := Classify(fmt.Errorf("post: %w", context.DeadlineExceeded))
	if ie.Kind != KindTimeout {
		t.Errorf("Kind = %s, want %s", ie.Kind, KindTimeout)
	}
	if !errors.Is(ie, context.DeadlineExceeded) {
		t.Error("classified error should unwrap to context.DeadlineExceeded")
	}
}

func TestClassify_PassesThroughInferenceError(t *testing.T) {
	orig := &InferenceError{Kind: KindBlocked, Message: "SAFETY"}
	if got := Classify(orig); got != orig {
		t.Errorf("Classify() = %v, want the original error", got)
	}
}

func TestClassify_Unknown(t *testing.T) {
	ie := Classify(errors.New("connection reset by peer"))
	if ie.Kind != KindUnknown {
		t.Errorf("Kind = %s, want %s", ie.Kind, KindUnknown)
	}
	if ie.Message != "connection reset by peer" {
		t.Errorf("Message = %q", ie.Message)
	}
}

func TestInferenceError_Error(t *testing.T) {
	withStatus := &InferenceError{Kind: KindAuth, StatusCode: 401, Message: "API key not valid"}
	if got, want := withStatus.Error(), "inference auth (HTTP 401): API key not valid"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	noStatus := &InferenceError{Kind: KindTimeout, Message: "deadline"}
	if got, want := noStatus.Error(), "inference timeout: deadline"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
