package inference

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/genai"
)

// ErrorKind classifies why a generation call failed.
type ErrorKind string

const (
	KindAuth           ErrorKind = "auth"
	KindRateLimited    ErrorKind = "rate_limited"
	KindInvalidRequest ErrorKind = "invalid_request"
	KindTimeout        ErrorKind = "timeout"
	KindUnavailable    ErrorKind = "unavailable"
	KindBlocked        ErrorKind = "blocked"
	KindUnknown        ErrorKind = "unknown"
)

// InferenceError is the failure half of a generation result. Message carries
// the service's diagnostic text unchanged.
type InferenceError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *InferenceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("inference %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("inference %s: %s", e.Kind, e.Message)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a later identical call could plausibly succeed.
func (e *InferenceError) Retryable() bool {
	switch e.Kind {
	case KindRateLimited, KindTimeout, KindUnavailable:
		return true
	default:
		return false
	}
}

// Classify converts an error returned by the genai SDK (or the transport
// beneath it) into an *InferenceError. Errors that already are
// *InferenceError pass through.
func Classify(err error) *InferenceError {
	if err == nil {
		return nil
	}

	var ie *InferenceError
	if errors.As(err, &ie) {
		return ie
	}

	if code, msg, ok := apiErrorDetails(err); ok {
		return &InferenceError{Kind: kindForStatus(code), StatusCode: code, Message: msg, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &InferenceError{Kind: KindTimeout, Message: err.Error(), Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &InferenceError{Kind: KindTimeout, Message: err.Error(), Err: err}
	}

	return &InferenceError{Kind: KindUnknown, Message: err.Error(), Err: err}
}

func apiErrorDetails(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErrorMessage(apiErr), true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrorMessage(*apiErrPtr), true
	}
	return 0, "", false
}

func apiErrorMessage(e genai.APIError) string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != "" {
		return e.Status
	}
	return http.StatusText(e.Code)
}

func kindForStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout:
		return KindTimeout
	case code == http.StatusBadRequest, code == http.StatusNotFound,
		code == http.StatusUnprocessableEntity, code == http.StatusRequestEntityTooLarge:
		return KindInvalidRequest
	case code >= http.StatusInternalServerError:
		return KindUnavailable
	default:
		return KindUnknown
	}
}
