// Package logging provides structured logging for the reeltruth service.
// It uses the standard library log/slog package; the "text" format renders
// colorized console output through tint.
package logging

import (
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

// ParseLevel maps a level name to a slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured logger writing to stdout.
// Supported levels: debug, info, warn, error. Supported formats: json, text.
func NewLogger(level, format string) *slog.Logger {
	return NewLoggerTo(os.Stdout, level, format)
}

// NewLoggerTo is NewLogger with an explicit destination.
func NewLoggerTo(w io.Writer, level, format string) *slog.Logger {
	lvl := ParseLevel(level)

	if strings.EqualFold(format, FormatText) {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			AddSource:  lvl == slog.LevelDebug,
			TimeFormat: time.Kitchen,
		}))
	}

	opts := &slog.HandlerOptions{
		Level: lvl,
		// Add source location for debug level
		AddSource: lvl == slog.LevelDebug,
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Discard returns a logger that drops everything. Used where a nil logger is passed.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithRequestID returns a logger with request_id attribute
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With("request_id", requestID)
}

// WithComponent returns a logger with component attribute
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

// WithAnalysisID returns a logger with analysis_id attribute
func WithAnalysisID(logger *slog.Logger, analysisID string) *slog.Logger {
	return logger.With("analysis_id", analysisID)
}

// SanitizeToken masks a token for safe logging.
// Shows first 4 and last 4 characters only.
// Returns "****" for tokens shorter than 8 characters.
func SanitizeToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeLocator strips the query string (except a "v" video ID), fragment
// and user info from a video locator so signed URLs never reach the logs. Locators that do not
// parse as URLs are returned unchanged.
func SanitizeLocator(locator string) string {
	u, err := url.Parse(locator)
	if err != nil || u.Host == "" {
		return locator
	}
	// keep the video ID of watch URLs
	if id := u.Query().Get("v"); id != "" {
		u.RawQuery = url.Values{"v": {id}}.Encode()
	} else {
		u.RawQuery = ""
	}
	u.Fragment = ""
	u.User = nil
	return u.String()
}
