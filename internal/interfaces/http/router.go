package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// RouterConfig aggregates everything the route tree needs.
type RouterConfig struct {
	Handlers *Handlers
	Metrics  *prometheus.AppMetrics
	// MetricsHandler serves /metrics; nil disables the endpoint.
	MetricsHandler nethttp.Handler
	Logger         logging.Logger
	// Mode is gin's run mode: "debug", "release", or "test".
	Mode string
}

// NewRouter builds the complete route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(RequestID())
	r.Use(Recovery(logger))
	r.Use(RequestLogger(logger))
	r.Use(Metrics(cfg.Metrics))

	h := cfg.Handlers
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	{
		api.POST("/resolve", h.Resolve)
		api.POST("/decide", h.Decide)
		api.POST("/extract", h.Extract)
		api.POST("/cleanup", h.Cleanup)
		api.POST("/descriptions/search", h.SearchDescriptions)
	}

	return r
}
