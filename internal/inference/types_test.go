package inference

import (
	"errors"
	"testing"
)

func TestValidateParts_UnknownKindNamesIndex(t *testing.T) {
	parts := []Part{
		VideoPart("https://video.example/abc"),
		{Kind: PartKind("audio"), Text: "x"},
		TextPart("list the claims"),
	}

	err := ValidateParts("gemini-test", parts)

	var ie *InferenceError
	if !errors.As(err, &ie) {
		t.Fatalf("ValidateParts() error = %v, want *InferenceError", err)
	}
	if ie.Kind != KindInvalidRequest {
		t.Errorf("Kind = %q, want %q", ie.Kind, KindInvalidRequest)
	}
	if want := "unknown part kind at index 1"; ie.Message != want {
		t.Errorf("Message = %q, want %q", ie.Message, want)
	}
}

func TestValidateParts_Valid(t *testing.T) {
	parts := []Part{VideoPart("https://video.example/abc"), TextPart("list the claims")}
	if err := ValidateParts("gemini-test", parts); err != nil {
		t.Errorf("ValidateParts() error = %v, want nil", err)
	}
}
