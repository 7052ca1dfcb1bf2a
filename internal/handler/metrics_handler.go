package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Delmat237/XCCM1-BACKEND/internal/models"
	"github.com/Delmat237/XCCM1-BACKEND/pkg/response"
)

type metricsSource interface {
	Handler() http.Handler
	Snapshot() models.SystemMetrics
}

type cacheState interface {
	Enabled() bool
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics metricsSource
	cache   cacheState
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics metricsSource, cache cacheState) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, cache: cache}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Snapshot godoc
// @Summary Metrics snapshot
// @Description Aggregated request and cache counters
// @Tags Observability
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/metrics [get]
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	var snapshot models.SystemMetrics
	if h.metrics != nil {
		snapshot = h.metrics.Snapshot()
	}
	enabled := h.cache != nil && h.cache.Enabled()
	response.JSON(c, http.StatusOK, snapshot, nil, map[string]interface{}{"cache_enabled": enabled})
}

// Health responds with a generic OK payload for readiness/liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
