package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/reeltruth/reeltruth/internal/analysis"
	"github.com/reeltruth/reeltruth/internal/language"
	"github.com/reeltruth/reeltruth/internal/logging"
)

// StatusClientClosedRequest is returned when the caller goes away mid-analysis.
const StatusClientClosedRequest = 499

var validate = validator.New()

func analyzeHandler(cfg ServerConfig) http.HandlerFunc {
	hosts := make(map[string]bool, len(cfg.AllowedHosts))
	for _, h := range cfg.AllowedHosts {
		hosts[strings.ToLower(h)] = true
	}

	return func(w http.ResponseWriter, r *http.Request) {
		requestID := requestIDFrom(r.Context())
		logger := logging.WithRequestID(logging.WithComponent(cfg.Logger, "api"), requestID)

		var req AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				WriteError(w, http.StatusRequestEntityTooLarge, "request body too large", "PAYLOAD_TOO_LARGE")
				return
			}
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		req.URL = strings.TrimSpace(req.URL)
		req.Language = strings.TrimSpace(req.Language)

		if msg := validateAnalyzeRequest(req, hosts); msg != "" {
			WriteError(w, http.StatusBadRequest, msg, "BAD_REQUEST")
			return
		}

		if cfg.Analyzer == nil {
			logger.Error("inference API key not configured")
			WriteError(w, http.StatusInternalServerError, "server configuration error: API key missing", "CONFIG_ERROR")
			return
		}

		ctx := r.Context()
		if cfg.AnalyzeTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.AnalyzeTimeout)
			defer cancel()
		}

		report, err := cfg.Analyzer.Analyze(ctx, analysis.Request{
			VideoLocator:   req.URL,
			TargetLanguage: language.Resolve(req.Language),
		})
		if err != nil {
			writeAnalysisError(ctx, w, logger, err)
			return
		}

		WriteJSON(w, http.StatusOK, ReportToResponse(report, req.IncludeClaims, requestID))
	}
}

// validateAnalyzeRequest returns a client-facing message for the first
// problem in req, or "" when req is acceptable.
func validateAnalyzeRequest(req AnalyzeRequest, hosts map[string]bool) string {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return "invalid request"
		}
		fe := verrs[0]
		switch {
		case fe.Field() == "URL" && fe.Tag() == "required":
			return "missing url"
		case fe.Field() == "URL":
			return "url must be an absolute http or https URL"
		case fe.Field() == "Language":
			return "missing language"
		default:
			return "invalid " + strings.ToLower(fe.Field())
		}
	}

	if len(hosts) > 0 {
		u, err := url.Parse(req.URL)
		if err != nil || !hosts[strings.ToLower(u.Hostname())] {
			return "video host is not allowed"
		}
	}
	return ""
}

func writeAnalysisError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	var perr *analysis.PipelineError
	if !errors.As(err, &perr) {
		logger.Error("analysis failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
		return
	}

	switch perr.Kind {
	case analysis.KindInvalidInput:
		msg := "missing language"
		if perr.Field == analysis.FieldVideoLocator {
			msg = "missing url"
		}
		WriteError(w, http.StatusBadRequest, msg, "BAD_REQUEST")
	case analysis.KindUpstreamFailure:
		logger.Warn("analysis upstream failure", "stage", perr.Stage, "error", err)
		WriteError(w, http.StatusBadGateway, perr.Error(), "UPSTREAM_FAILURE")
	case analysis.KindCancelled:
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			logger.Warn("analysis timed out", "stage", perr.Stage)
			WriteError(w, http.StatusGatewayTimeout, "analysis timed out", "TIMEOUT")
			return
		}
		logger.Info("analysis cancelled by client", "stage", perr.Stage)
		WriteError(w, StatusClientClosedRequest, "analysis cancelled", "CANCELLED")
	default:
		logger.Error("analysis failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
