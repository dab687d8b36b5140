package rest

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

// HealthHandler provides HTTP health check endpoints for the stroke service.
type HealthHandler struct {
	logger    *slog.Logger
	checks    map[string]Check
	startTime time.Time
	timeout   time.Duration
}

// NewHealthHandler creates a new health check handler. Readiness fails while
// any of checks returns an error.
func NewHealthHandler(logger *slog.Logger, checks map[string]Check) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		checks:    checks,
		startTime: time.Now(),
		timeout:   2 * time.Second,
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks"`
}

// RegisterRoutes registers health endpoints on the provided ServeMux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz handles liveness probe requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: serviceName,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Readyz handles readiness probe requests.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := ReadinessResponse{
		Status:  "ready",
		Service: serviceName,
		Checks:  make(map[string]string, len(names)),
	}
	code := http.StatusOK
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.WarnContext(ctx, "readiness check failed",
				slog.String("check", name),
				slog.String("error", err.Error()),
			)
			resp.Checks[name] = err.Error()
			resp.Status = "not ready"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	writeJSON(w, code, resp)
}
