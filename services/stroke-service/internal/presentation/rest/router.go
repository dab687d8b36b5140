package rest

import (
	"log/slog"
	"net/http"
)

// RouterConfig collects the handlers mounted by NewRouter.
type RouterConfig struct {
	Health     *HealthHandler
	Prediction *PredictionHandler
	Logger     *slog.Logger
	CORSOrigin string

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

// NewRouter builds the HTTP handler for the inference daemon.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	cfg.Health.RegisterRoutes(mux)
	cfg.Prediction.RegisterRoutes(mux)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	var h http.Handler = mux
	h = CORSMiddleware(cfg.CORSOrigin)(h)
	h = LoggingMiddleware(cfg.Logger)(h)
	return h
}
