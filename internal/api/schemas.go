package api

import (
	"github.com/reeltruth/reeltruth/internal/analysis"
	"github.com/reeltruth/reeltruth/internal/language"
)

type HealthResponse struct {
	Status              string `json:"status"`
	Version             string `json:"version"`
	UptimeS             int64  `json:"uptime_s"`
	InstanceID          string `json:"instance_id"`
	InferenceConfigured bool   `json:"inference_configured"`
}

// AnalyzeRequest is the body of POST /api/analyze. Language may be a
// free-text language name or an ISO 639-1 code.
type AnalyzeRequest struct {
	URL           string `json:"url" validate:"required,http_url"`
	Language      string `json:"language" validate:"required"`
	IncludeClaims bool   `json:"include_claims,omitempty"`
}

type AnalyzeResponse struct {
	Analysis   string               `json:"analysis"`
	Claims     string               `json:"claims,omitempty"`
	Language   string               `json:"language"`
	Models     analysis.StageModels `json:"models"`
	AnalysisID string               `json:"analysis_id"`
	RequestID  string               `json:"request_id"`
	DurationMS int64                `json:"duration_ms"`
}

type LanguagesResponse struct {
	Default   string           `json:"default"`
	Languages []language.Entry `json:"languages"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func ReportToResponse(report *analysis.Report, includeClaims bool, requestID string) AnalyzeResponse {
	resp := AnalyzeResponse{
		Analysis:   report.Text,
		Language:   report.Language,
		Models:     report.Models,
		AnalysisID: report.ID,
		RequestID:  requestID,
		DurationMS: report.Duration.Milliseconds(),
	}
	if includeClaims {
		resp.Claims = report.Claims
	}
	return resp
}
