package http

import (
	"net/http"

	"futurfounder/internal/core/domain"
	"futurfounder/internal/core/ports"
	"futurfounder/internal/core/services"
	"futurfounder/pkg/errors"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes operator endpoints: inspecting a visitor's experiment
// assignments and swapping the analytics configuration at runtime.
type AdminHandler struct {
	analytics *services.AnalyticsService
	repo      ports.AssignmentRepository
}

func NewAdminHandler(analytics *services.AnalyticsService, repo ports.AssignmentRepository) *AdminHandler {
	return &AdminHandler{
		analytics: analytics,
		repo:      repo,
	}
}

func (h *AdminHandler) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	admin := router.Group("/api/v1/admin", auth)
	{
		admin.GET("/assignments/:visitorId", h.GetAssignments)
		admin.POST("/reconfigure", h.Reconfigure)
	}
}

func (h *AdminHandler) GetAssignments(c *gin.Context) {
	visitorID := domain.VisitorID(c.Param("visitorId"))
	if visitorID == "" {
		c.Error(errors.NewInvalidPayloadError("visitor ID is required"))
		return
	}

	assignments, err := h.repo.Get(c.Request.Context(), visitorID)
	if err != nil {
		c.Error(errors.NewInternalError(err))
		return
	}
	if len(assignments) == 0 {
		c.Error(errors.NewNotFoundError("visitor"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"visitor_id":  visitorID,
		"assignments": assignments,
	})
}

// Reconfigure swaps the analytics configuration. Omitted fields keep their
// current values; the facade tears down and rebuilds the sinks atomically.
func (h *AdminHandler) Reconfigure(c *gin.Context) {
	var req struct {
		MeasurementID             *string `json:"measurement_id"`
		HeatmapID                 *string `json:"heatmap_id"`
		HeatmapsEnabled           *bool   `json:"heatmaps_enabled"`
		ConversionTrackingEnabled *bool   `json:"conversion_tracking_enabled"`
		PerformanceMonitoring     *bool   `json:"performance_monitoring_enabled"`
		ABTestingEnabled          *bool   `json:"ab_testing_enabled"`
		Debug                     *bool   `json:"debug"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}

	cfg := h.analytics.Config()
	if req.MeasurementID != nil {
		cfg.MeasurementID = *req.MeasurementID
	}
	if req.HeatmapID != nil {
		cfg.HeatmapID = *req.HeatmapID
	}
	if req.HeatmapsEnabled != nil {
		cfg.HeatmapsEnabled = *req.HeatmapsEnabled
	}
	if req.ConversionTrackingEnabled != nil {
		cfg.ConversionTrackingEnabled = *req.ConversionTrackingEnabled
	}
	if req.PerformanceMonitoring != nil {
		cfg.PerformanceMonitoringEnabled = *req.PerformanceMonitoring
	}
	if req.ABTestingEnabled != nil {
		cfg.ABTestingEnabled = *req.ABTestingEnabled
	}
	if req.Debug != nil {
		cfg.Debug = *req.Debug
	}

	h.analytics.Reconfigure(cfg)

	c.JSON(http.StatusOK, gin.H{
		"status": "reconfigured",
		"config": gin.H{
			"conversion_tracking_enabled":    cfg.ConversionTrackingEnabled,
			"performance_monitoring_enabled": cfg.PerformanceMonitoringEnabled,
			"ab_testing_enabled":             cfg.ABTestingEnabled,
			"heatmaps_enabled":               cfg.HeatmapsEnabled,
			"debug":                          cfg.Debug,
		},
	})
}
