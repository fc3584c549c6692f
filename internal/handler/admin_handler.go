package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/citibike-dashboard-go/internal/middleware"
	"github.com/jengzang/citibike-dashboard-go/pkg/response"
)

// CacheClearer empties the dataset cache
type CacheClearer interface {
	ClearCache() int
}

// AdminHandler handles administrative HTTP requests
type AdminHandler struct {
	cache  CacheClearer
	logger *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(cache CacheClearer, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		cache:  cache,
		logger: logger,
	}
}

// ClearCache handles POST /api/v1/admin/cache/clear
func (h *AdminHandler) ClearCache(c *gin.Context) {
	n := h.cache.ClearCache()
	h.logger.Info("dataset cache cleared", "entries", n, "subject", c.GetString(middleware.SubjectKey))
	response.Success(c, gin.H{"cleared": n})
}
