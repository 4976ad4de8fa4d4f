package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reeltruth/reeltruth/internal/language"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist(cfg.AllowedOrigins))
	r.Use(BodyLimitMiddleware(MaxBodyBytes))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		if !cfg.AuthDisabled {
			r.Use(AuthMiddleware(cfg.APIToken, cfg.Logger))
		}

		r.Post("/api/analyze", analyzeHandler(cfg))
		r.Get("/api/languages", languagesHandler())
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:              "ok",
			Version:             cfg.Version,
			UptimeS:             uptime,
			InstanceID:          cfg.InstanceID,
			InferenceConfigured: cfg.Analyzer != nil,
		})
	}
}

func languagesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, LanguagesResponse{
			Default:   language.DefaultCode,
			Languages: language.Catalog(),
		})
	}
}
