package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/citibike-dashboard-go/internal/models"
	"github.com/jengzang/citibike-dashboard-go/pkg/response"
)

// AggregateProvider exposes the aggregate tables behind the charts
type AggregateProvider interface {
	Summary(ctx context.Context) (models.DatasetSummary, error)
	DailyTotals(ctx context.Context) ([]models.DailyAggregate, error)
	RollingTotals(ctx context.Context, window int) ([]models.DailyAggregate, error)
	TopCategories(ctx context.Context, column string, n int) ([]models.StationRanking, error)
	DemandPivot(ctx context.Context) (models.HourWeekdayPivot, error)
}

// AggregateHandler handles HTTP requests for aggregate tables
type AggregateHandler struct {
	provider AggregateProvider
}

// NewAggregateHandler creates a new aggregate handler
func NewAggregateHandler(provider AggregateProvider) *AggregateHandler {
	return &AggregateHandler{
		provider: provider,
	}
}

// GetSummary handles GET /api/v1/aggregates/summary
func (h *AggregateHandler) GetSummary(c *gin.Context) {
	summary, err := h.provider.Summary(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, summary)
}

// GetDaily handles GET /api/v1/aggregates/daily
func (h *AggregateHandler) GetDaily(c *gin.Context) {
	rows, err := h.provider.DailyTotals(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"rows":  rows,
		"count": len(rows),
	})
}

// GetRolling handles GET /api/v1/aggregates/rolling
func (h *AggregateHandler) GetRolling(c *gin.Context) {
	var filter models.RollingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	rows, err := h.provider.RollingTotals(c.Request.Context(), filter.Window)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"rows":  rows,
		"count": len(rows),
	})
}

// GetTopStations handles GET /api/v1/aggregates/top-stations
func (h *AggregateHandler) GetTopStations(c *gin.Context) {
	var filter models.RankingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	rows, err := h.provider.TopCategories(c.Request.Context(), filter.Column, filter.Limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"rows":  rows,
		"count": len(rows),
	})
}

// GetHeatmap handles GET /api/v1/aggregates/heatmap
func (h *AggregateHandler) GetHeatmap(c *gin.Context) {
	pivot, err := h.provider.DemandPivot(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, pivot)
}

func (h *AggregateHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	status, msg := classifyError(err)
	response.Error(c, status, msg)
}
