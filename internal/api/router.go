package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jengzang/citibike-dashboard-go/internal/handler"
	"github.com/jengzang/citibike-dashboard-go/internal/metrics"
	"github.com/jengzang/citibike-dashboard-go/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by SetupRouter
type Handlers struct {
	Dashboard  *handler.DashboardHandler
	Aggregates *handler.AggregateHandler
	Admin      *handler.AdminHandler
	Health     *handler.HealthHandler
}

// RouterOptions carries the middleware dependencies
type RouterOptions struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	RateLimiter *middleware.RateLimiter // nil disables rate limiting
	JWTSecret   []byte
}

// SetupRouter 设置路由
func SetupRouter(h Handlers, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.Metrics(opts.Metrics))

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", h.Health.Check)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	limited := r.Group("")
	if opts.RateLimiter != nil {
		limited.Use(middleware.RateLimit(opts.RateLimiter))
	}

	// 页面
	limited.GET("/", h.Dashboard.Index)
	limited.GET("/views/:view", h.Dashboard.GetView)

	// API 路由组
	api := limited.Group("/api/v1")
	{
		aggregates := api.Group("/aggregates")
		{
			aggregates.GET("/summary", h.Aggregates.GetSummary)
			aggregates.GET("/daily", h.Aggregates.GetDaily)
			aggregates.GET("/rolling", h.Aggregates.GetRolling)
			aggregates.GET("/top-stations", h.Aggregates.GetTopStations)
			aggregates.GET("/heatmap", h.Aggregates.GetHeatmap)
		}

		admin := api.Group("/admin", middleware.JWTAuth(opts.JWTSecret))
		{
			admin.POST("/cache/clear", h.Admin.ClearCache)
		}
	}

	return r
}

// Handler wraps the router with gzip compression for clients that accept it
func Handler(r *gin.Engine) http.Handler {
	return gzhttp.GzipHandler(r)
}
