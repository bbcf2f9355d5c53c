package http

import (
	"fmt"
	"net/http"
	"time"

	"futurfounder/internal/core/domain"
	"futurfounder/internal/core/services"
	"futurfounder/pkg/cache"
	"futurfounder/pkg/errors"
	"futurfounder/pkg/utils"
	"futurfounder/pkg/validation"

	"github.com/gin-gonic/gin"
)

const (
	visitorCookieName   = "ff_vid"
	visitorCookieMaxAge = int(365 * 24 * time.Hour / time.Second)
)

// TrackHandler is the beacon's public collection surface. Every endpoint
// validates at the boundary, hands the payload to the analytics facade and
// returns 202: delivery downstream is best-effort and the page never waits
// on sink outcomes.
type TrackHandler struct {
	analytics *services.AnalyticsService

	// scrollSeen deduplicates scroll depth thresholds per visitor so a
	// visitor bouncing around the page reports each threshold once.
	scrollSeen *cache.Cache
}

func NewTrackHandler(analytics *services.AnalyticsService) *TrackHandler {
	return &TrackHandler{
		analytics:  analytics,
		scrollSeen: cache.NewCache(30 * time.Minute),
	}
}

func (h *TrackHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/track/event", h.TrackEvent)
		api.POST("/track/conversion", h.TrackConversion)
		api.POST("/track/cta", h.TrackCTAClick)
		api.POST("/track/form", h.TrackFormSubmission)
		api.POST("/track/scroll", h.TrackScrollDepth)
		api.POST("/track/vitals", h.TrackWebVitals)

		api.POST("/experiments/:testId/variant", h.GetVariant)
		api.POST("/experiments/:testId/convert", h.TrackExperimentConversion)
	}
}

// visitorID reads the visitor cookie, minting one on first contact so every
// response carries a stable ID back to the page.
func (h *TrackHandler) visitorID(c *gin.Context) domain.VisitorID {
	if id, err := c.Cookie(visitorCookieName); err == nil && id != "" {
		return domain.VisitorID(id)
	}

	id := utils.GenerateVisitorID()
	c.SetCookie(visitorCookieName, id, visitorCookieMaxAge, "/", "", false, true)
	return domain.VisitorID(id)
}

func (h *TrackHandler) TrackEvent(c *gin.Context) {
	var req struct {
		Action   string                 `json:"action" binding:"required"`
		Category string                 `json:"category" binding:"required"`
		Label    string                 `json:"label"`
		Value    *float64               `json:"value"`
		Params   map[string]interface{} `json:"params"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}

	if err := validation.ValidateAction(req.Action); err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}
	if err := validation.ValidateCategory(req.Category); err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}
	if err := validation.ValidateLabel(req.Label); err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}

	params, err := validation.ParseParams(req.Params)
	if err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}

	h.analytics.TrackEvent(c.Request.Context(), domain.Event{
		Action:    req.Action,
		Category:  req.Category,
		Label:     req.Label,
		Value:     req.Value,
		Params:    params,
		VisitorID: h.visitorID(c),
	})

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *TrackHandler) TrackConversion(c *gin.Context) {
	var req struct {
		Name          string                 `json:"name" binding:"required"`
		Value         *float64               `json:"value"`
		Currency      string                 `json:"currency"`
		TransactionID string                 `json:"transaction_id"`
		Params        map[string]interface{} `json:"params"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}

	params, err := validation.ParseParams(req.Params)
	if err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}

	transactionID := req.TransactionID
	if transactionID == "" {
		transactionID = utils.GenerateTransactionID()
	}

	h.analytics.TrackConversion(c.Request.Context(), domain.Conversion{
		Name:          req.Name,
		Value:         req.Value,
		Currency:      req.Currency,
		TransactionID: transactionID,
		Params:        params,
		VisitorID:     h.visitorID(c),
	})

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *TrackHandler) TrackCTAClick(c *gin.Context) {
	var req struct {
		Name     string                 `json:"name" binding:"required"`
		Location string                 `json:"location" binding:"required"`
		Params   map[string]interface{} `json:"params"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}

	params, err := validation.ParseParams(req.Params)
	if err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}

	h.analytics.TrackCTAClick(c.Request.Context(), h.visitorID(c), req.Name, req.Location, params)

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *TrackHandler) TrackFormSubmission(c *gin.Context) {
	var req struct {
		FormName string                 `json:"form_name" binding:"required"`
		Success  *bool                  `json:"success" binding:"required"`
		Params   map[string]interface{} `json:"params"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}

	params, err := validation.ParseParams(req.Params)
	if err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}

	h.analytics.TrackFormSubmission(c.Request.Context(), h.visitorID(c), req.FormName, *req.Success, params)

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *TrackHandler) TrackScrollDepth(c *gin.Context) {
	var req struct {
		Percent *int `json:"percent" binding:"required"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}

	if err := validation.ValidateScrollDepth(*req.Percent); err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}

	visitorID := h.visitorID(c)
	dedupeKey := fmt.Sprintf("%s:%d", visitorID, *req.Percent)
	if !h.scrollSeen.SetIfAbsent(dedupeKey, struct{}{}) {
		c.JSON(http.StatusAccepted, gin.H{"status": "duplicate"})
		return
	}

	h.analytics.TrackScrollDepth(c.Request.Context(), visitorID, *req.Percent)

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *TrackHandler) TrackWebVitals(c *gin.Context) {
	var req struct {
		Metrics map[string]float64 `json:"metrics" binding:"required"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}

	visitorID := h.visitorID(c)
	accepted := 0
	for name, value := range req.Metrics {
		metric := domain.Metric(name)
		if !metric.IsWebVital() {
			continue
		}
		h.analytics.Performance().ObserveVital(c.Request.Context(), visitorID, metric, value)
		accepted++
	}

	if accepted == 0 {
		c.Error(errors.NewInvalidPayloadError("no known web vital metrics in payload"))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "metrics": accepted})
}

func (h *TrackHandler) GetVariant(c *gin.Context) {
	testID := c.Param("testId")
	if err := validation.ValidateTestID(testID); err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}

	var req struct {
		Variants []struct {
			ID   string `json:"id" binding:"required"`
			Name string `json:"name"`
		} `json:"variants" binding:"required,min=1"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}

	candidates := make([]domain.Variant, 0, len(req.Variants))
	for _, v := range req.Variants {
		if err := validation.ValidateVariantID(v.ID); err != nil {
			c.Error(errors.NewInvalidPayloadError(err.Error()))
			return
		}
		name := v.Name
		if name == "" {
			name = v.ID
		}
		candidates = append(candidates, domain.Variant{
			ID:   domain.VariantID(v.ID),
			Name: name,
		})
	}

	assignment, err := h.analytics.GetABTestVariant(c.Request.Context(), h.visitorID(c), domain.TestID(testID), candidates)
	if err != nil {
		if err == domain.ErrNoVariants {
			c.Error(errors.NewInvalidPayloadError("at least one variant is required"))
			return
		}
		c.Error(errors.NewInternalError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

func (h *TrackHandler) TrackExperimentConversion(c *gin.Context) {
	testID := c.Param("testId")
	if err := validation.ValidateTestID(testID); err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}

	var req struct {
		ConversionType string `json:"conversion_type"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidPayloadError(err.Error()))
		return
	}

	conversionType := req.ConversionType
	if conversionType == "" {
		conversionType = "conversion"
	}

	// Attribution without an assignment is a silent no-op, so this endpoint
	// accepts the request either way.
	if err := h.analytics.TrackABTestConversion(c.Request.Context(), h.visitorID(c), domain.TestID(testID), conversionType); err != nil {
		c.Error(errors.NewInternalError(err))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
