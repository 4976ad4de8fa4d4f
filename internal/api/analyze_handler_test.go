package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/reeltruth/reeltruth/internal/analysis"
)

func TestAnalyze_Success(t *testing.T) {
	fake := newFakeAnalyzer()
	rr := doRequest(t, testConfig(fake), http.MethodPost, "/api/analyze",
		`{"url":"https://video.example/abc","language":"English"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var body AnalyzeResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Analysis != fake.report.Text {
		t.Errorf("analysis = %q, want %q", body.Analysis, fake.report.Text)
	}
	if body.Claims != "" {
		t.Errorf("claims = %q, want omitted", body.Claims)
	}
	if body.Models != analysis.DefaultStageModels() {
		t.Errorf("models = %+v", body.Models)
	}
	if body.RequestID == "" || body.RequestID != rr.Header().Get("X-Request-ID") {
		t.Errorf("request_id = %q, header = %q", body.RequestID, rr.Header().Get("X-Request-ID"))
	}
	if body.DurationMS != 1500 {
		t.Errorf("duration_ms = %d, want 1500", body.DurationMS)
	}

	if len(fake.requests) != 1 {
		t.Fatalf("analyzer calls = %d, want 1", len(fake.requests))
	}
	want := analysis.Request{VideoLocator: "https://video.example/abc", TargetLanguage: "English"}
	if fake.requests[0] != want {
		t.Errorf("request = %+v, want %+v", fake.requests[0], want)
	}
}

func TestAnalyze_IncludeClaimsAndLanguageCode(t *testing.T) {
	fake := newFakeAnalyzer()
	rr := doRequest(t, testConfig(fake), http.MethodPost, "/api/analyze",
		`{"url":" https://video.example/abc ","language":"fr","include_claims":true}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var body AnalyzeResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Claims != fake.report.Claims {
		t.Errorf("claims = %q, want %q", body.Claims, fake.report.Claims)
	}
	if body.Language != "French" {
		t.Errorf("language = %q, want French", body.Language)
	}
	if got := fake.requests[0].VideoLocator; got != "https://video.example/abc" {
		t.Errorf("locator = %q, want trimmed", got)
	}
}

func TestAnalyze_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"invalid json", `{"url":`, "invalid request body"},
		{"missing url", `{"language":"English"}`, "missing url"},
		{"blank url", `{"url":"   ","language":"English"}`, "missing url"},
		{"missing language", `{"url":"https://video.example/abc"}`, "missing language"},
		{"blank language", `{"url":"https://video.example/abc","language":" "}`, "missing language"},
		{"relative url", `{"url":"/watch?v=1","language":"English"}`, "url must be an absolute http or https URL"},
		{"non-http url", `{"url":"ftp://video.example/abc","language":"English"}`, "url must be an absolute http or https URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeAnalyzer()
			rr := doRequest(t, testConfig(fake), http.MethodPost, "/api/analyze", tt.body)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
			}
			body := decodeError(t, rr)
			if body.Error != tt.wantMsg || body.Code != "BAD_REQUEST" {
				t.Errorf("error = %+v, want %q BAD_REQUEST", body, tt.wantMsg)
			}
			if fake.calls() != 0 {
				t.Errorf("analyzer calls = %d, want 0", fake.calls())
			}
		})
	}
}

func TestAnalyze_BodyTooLarge(t *testing.T) {
	fake := newFakeAnalyzer()
	body := `{"url":"https://video.example/abc","language":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	rr := doRequest(t, testConfig(fake), http.MethodPost, "/api/analyze", body)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusRequestEntityTooLarge)
	}
	if fake.calls() != 0 {
		t.Errorf("analyzer calls = %d, want 0", fake.calls())
	}
}

func TestAnalyze_AllowedHosts(t *testing.T) {
	cfg := testConfig(newFakeAnalyzer())
	cfg.AllowedHosts = []string{"www.youtube.com", "YouTu.be"}

	tests := []struct {
		url        string
		wantStatus int
	}{
		{"https://www.youtube.com/watch?v=abc", http.StatusOK},
		{"https://youtu.be/abc", http.StatusOK},
		{"https://video.example/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rr := doRequest(t, cfg, http.MethodPost, "/api/analyze", `{"url":"`+tt.url+`","language":"English"}`)
		if rr.Code != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.url, rr.Code, tt.wantStatus)
		}
	}
}

func TestAnalyze_MissingAPIKey(t *testing.T) {
	rr := doRequest(t, testConfig(nil), http.MethodPost, "/api/analyze",
		`{"url":"https://video.example/abc","language":"English"}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	body := decodeError(t, rr)
	if body.Code != "CONFIG_ERROR" || body.Error != "server configuration error: API key missing" {
		t.Errorf("error = %+v", body)
	}
}

func TestAnalyze_InputCheckedBeforeAPIKey(t *testing.T) {
	rr := doRequest(t, testConfig(nil), http.MethodPost, "/api/analyze", `{"language":"English"}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestAnalyze_PipelineErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "upstream failure",
			err:        &analysis.PipelineError{Kind: analysis.KindUpstreamFailure, Stage: analysis.StageExtract, Err: errors.New("quota exhausted")},
			wantStatus: http.StatusBadGateway,
			wantCode:   "UPSTREAM_FAILURE",
			wantMsg:    "extract stage failed: quota exhausted",
		},
		{
			name:       "deadline",
			err:        &analysis.PipelineError{Kind: analysis.KindCancelled, Stage: analysis.StageEvaluate, Err: context.DeadlineExceeded},
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "TIMEOUT",
			wantMsg:    "analysis timed out",
		},
		{
			name:       "client cancelled",
			err:        &analysis.PipelineError{Kind: analysis.KindCancelled, Stage: analysis.StageExtract, Err: context.Canceled},
			wantStatus: StatusClientClosedRequest,
			wantCode:   "CANCELLED",
			wantMsg:    "analysis cancelled",
		},
		{
			name:       "invalid input from pipeline",
			err:        &analysis.PipelineError{Kind: analysis.KindInvalidInput, Field: analysis.FieldTargetLanguage},
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
			wantMsg:    "missing language",
		},
		{
			name:       "unknown failure",
			err:        &analysis.PipelineError{Kind: analysis.KindUnknownFailure, Err: errors.New("bad template")},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "internal server error",
		},
		{
			name:       "untyped error",
			err:        errors.New("surprise"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeAnalyzer()
			fake.err = tt.err
			rr := doRequest(t, testConfig(fake), http.MethodPost, "/api/analyze",
				`{"url":"https://video.example/abc","language":"English"}`)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			body := decodeError(t, rr)
			if body.Code != tt.wantCode || body.Error != tt.wantMsg {
				t.Errorf("error = %+v, want {%q %q}", body, tt.wantMsg, tt.wantCode)
			}
		})
	}
}

func TestAnalyze_AppliesTimeout(t *testing.T) {
	fake := newFakeAnalyzer()
	cfg := testConfig(fake)

	doRequest(t, cfg, http.MethodPost, "/api/analyze", `{"url":"https://video.example/abc","language":"English"}`)
	if fake.sawDeadline {
		t.Error("context had a deadline with no analyze timeout configured")
	}

	cfg.AnalyzeTimeout = time.Minute
	doRequest(t, cfg, http.MethodPost, "/api/analyze", `{"url":"https://video.example/abc","language":"English"}`)
	if !fake.sawDeadline {
		t.Error("context had no deadline with analyze timeout configured")
	}
}
