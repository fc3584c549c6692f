package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/citibike-dashboard-go/internal/dataset"
	"github.com/jengzang/citibike-dashboard-go/internal/handler"
	"github.com/jengzang/citibike-dashboard-go/internal/metrics"
	"github.com/jengzang/citibike-dashboard-go/internal/middleware"
	"github.com/jengzang/citibike-dashboard-go/internal/service"
	"github.com/jengzang/citibike-dashboard-go/internal/views"
)

var secret = []byte("router-secret")

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, views.LoadTemplates())

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "trips.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("started_at,start_station_name,avgTemp\n"+
		"2022-01-03 08:15:00,A,3.5\n2022-01-03 09:15:00,B,3.5\n2022-01-04 08:00:00,A,4\n"), 0o644))

	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	svc := service.NewDashboardService(dataset.NewCSVSource(csvPath), dataset.NewCache(m, nil), service.DashboardConfig{
		MapAssetPath: filepath.Join(dir, "missing_map.html"),
	}, m, nil)

	return SetupRouter(Handlers{
		Dashboard:  handler.NewDashboardHandler(svc, "Citi Bike", nil),
		Aggregates: handler.NewAggregateHandler(svc),
		Admin:      handler.NewAdminHandler(svc, nil),
		Health:     handler.NewHealthHandler(),
	}, RouterOptions{Metrics: m, JWTSecret: secret})
}

func serve(r *gin.Engine, method, target, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequestWithContext(context.Background(), method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Pages(t *testing.T) {
	r := newTestRouter(t)

	for _, v := range views.All() {
		w := serve(r, http.MethodGet, "/views/"+v.Slug(), "")
		assert.Equal(t, http.StatusOK, w.Code, v.Slug())
	}

	w := serve(r, http.MethodGet, "/views/ride-map", "")
	assert.Contains(t, w.Body.String(), "Kepler map file not found")

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/views/nope", "").Code)
}

func TestRouter_APIAndOps(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodGet, "/api/v1/aggregates/top-stations?limit=1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"station":"A"`)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "").Code)

	w = serve(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dashboard_http_requests_total")

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodOptions, "/api/v1/aggregates/daily", "").Code)
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/api/v1/admin/cache/clear", "").Code)

	token, err := middleware.IssueToken(secret, "ops", time.Minute)
	require.NoError(t, err)

	// load once so there is something to clear
	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/aggregates/daily", "").Code)

	w := serve(r, http.MethodPost, "/api/v1/admin/cache/clear", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cleared":1`)
}

func TestHandler_Gzip(t *testing.T) {
	h := Handler(newTestRouter(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/views/recommendations", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}
