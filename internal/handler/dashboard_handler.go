package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/citibike-dashboard-go/internal/views"
)

// PageRenderer computes the page state of a view
type PageRenderer interface {
	Render(ctx context.Context, v views.View) (*views.Page, error)
}

// DashboardHandler serves the HTML dashboard pages
type DashboardHandler struct {
	renderer PageRenderer
	appTitle string
	logger   *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(renderer PageRenderer, appTitle string, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		renderer: renderer,
		appTitle: appTitle,
		logger:   logger,
	}
}

// Index handles GET /
func (h *DashboardHandler) Index(c *gin.Context) {
	h.render(c, views.Intro)
}

// GetView handles GET /views/:view
func (h *DashboardHandler) GetView(c *gin.Context) {
	v, err := views.ParseView(c.Param("view"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Unknown view: "+c.Param("view"))
		return
	}
	h.render(c, v)
}

func (h *DashboardHandler) render(c *gin.Context, v views.View) {
	page, err := h.renderer.Render(c.Request.Context(), v)
	if err != nil {
		status, msg := classifyError(err)
		h.logger.Error("view render failed", "view", v.Slug(), "error", err)
		_ = c.Error(err)
		h.renderError(c, status, msg)
		return
	}

	var buf bytes.Buffer
	if err := views.RenderPage(&buf, h.appTitle, page); err != nil {
		h.logger.Error("page template failed", "view", v.Slug(), "error", err)
		h.renderError(c, http.StatusInternalServerError, "Failed to render page")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *DashboardHandler) renderError(c *gin.Context, status int, msg string) {
	var buf bytes.Buffer
	if err := views.RenderError(&buf, h.appTitle, status, msg); err != nil {
		c.String(status, msg)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
