package handler

import (
	"context"
	"net/http"

	"acadex.dev/acadex/internal/service"
	"acadex.dev/acadex/pkg/apperror"
	"acadex.dev/acadex/pkg/response"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analytics service.AnalyticsService
}

func NewAnalyticsHandler(analytics service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) Users(c *gin.Context) {
	h.serve(c, h.analytics.Users)
}

func (h *AnalyticsHandler) Courses(c *gin.Context) {
	h.serve(c, h.analytics.Courses)
}

func (h *AnalyticsHandler) Orders(c *gin.Context) {
	h.serve(c, h.analytics.Orders)
}

func (h *AnalyticsHandler) serve(c *gin.Context, series func(ctx context.Context, period string) ([]service.Bucket, error)) {
	period := c.Query("type")
	if period == "" {
		response.Error(c, apperror.Validation("analytics type is required"))
		return
	}

	buckets, err := series(c.Request.Context(), period)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"analytics": buckets})
}
