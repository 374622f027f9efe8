package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/dfspersona/internal/domain/types"
	"github.com/okian/dfspersona/pkg/metrics"
)

const (
	serviceName    = "dfs-behavioral-parser"
	serviceVersion = "1.0.0"
)

// HealthHandler handles liveness and metrics requests.
type HealthHandler struct {
	health  types.Health
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		health:  types.Health{Status: "healthy", Service: serviceName, Version: version},
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET / and GET /health.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.health)
}

// HandleMetrics handles GET /healthz with the Prometheus exposition.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
