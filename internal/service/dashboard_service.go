package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jengzang/citibike-dashboard-go/internal/dataset"
	"github.com/jengzang/citibike-dashboard-go/internal/metrics"
	"github.com/jengzang/citibike-dashboard-go/internal/models"
	"github.com/jengzang/citibike-dashboard-go/internal/spatial"
	"github.com/jengzang/citibike-dashboard-go/internal/stats"
	"github.com/jengzang/citibike-dashboard-go/internal/views"
)

// DashboardConfig holds the display parameters of the dashboard
type DashboardConfig struct {
	MapAssetPath  string
	DefaultCenter spatial.Coordinate
	TopN          int
	RollingWindow int
}

// DashboardService runs the load -> aggregate -> chart pipeline for each view
type DashboardService struct {
	source  dataset.Source
	cache   *dataset.Cache
	cfg     DashboardConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(source dataset.Source, cache *dataset.Cache, cfg DashboardConfig, m *metrics.Metrics, logger *slog.Logger) *DashboardService {
	if cfg.TopN <= 0 {
		cfg.TopN = stats.DefaultTopN
	}
	if cfg.RollingWindow <= 0 {
		cfg.RollingWindow = stats.DefaultRollingWindow
	}
	if cfg.DefaultCenter == (spatial.Coordinate{}) {
		cfg.DefaultCenter = spatial.DefaultCenter
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		source:  source,
		cache:   cache,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
	}
}

// Dataset returns the (cached) trip dataset
func (s *DashboardService) Dataset(ctx context.Context) (*models.Dataset, error) {
	ds, err := s.cache.Get(ctx, s.source)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return ds, nil
}

// ClearCache drops every cached dataset and returns how many were dropped
func (s *DashboardService) ClearCache() int {
	return s.cache.Invalidate()
}

// Render computes the page for a view. Dataset errors abort the render; a
// missing map asset only degrades the map panel.
func (s *DashboardService) Render(ctx context.Context, v views.View) (*views.Page, error) {
	render, ok := renderers[v]
	if !ok {
		return nil, fmt.Errorf("unknown view %d", v)
	}

	in := renderInput{
		TopN:          s.cfg.TopN,
		RollingWindow: s.cfg.RollingWindow,
		Center:        s.cfg.DefaultCenter,
		MapAssetPath:  s.cfg.MapAssetPath,
	}

	if v.NeedsData() {
		ds, err := s.Dataset(ctx)
		if err != nil {
			s.metrics.ObserveViewRender(v.Slug(), metrics.OutcomeError)
			return nil, err
		}
		in.Dataset = ds
	}

	if v == views.RideMap {
		s.prepareMap(&in)
	}

	page, err := render(in)
	if err != nil {
		s.metrics.ObserveViewRender(v.Slug(), metrics.OutcomeError)
		return nil, fmt.Errorf("failed to render view %s: %w", v.Slug(), err)
	}
	page.View = v

	outcome := metrics.OutcomeSuccess
	if page.Degraded {
		outcome = metrics.OutcomeDegraded
	}
	s.metrics.ObserveViewRender(v.Slug(), outcome)
	return page, nil
}

// prepareMap centres the map on the trips when coordinates are available and reads the map document
func (s *DashboardService) prepareMap(in *renderInput) {
	if in.Dataset != nil && in.Dataset.HasCoordinates {
		if ext, ok := spatial.TripExtent(in.Dataset.Trips); ok {
			in.Extent = &ext
			in.Center = ext.Center
		}
	}

	if s.cfg.MapAssetPath == "" {
		in.MapErr = &views.AssetNotFoundError{Path: "(not configured)", Err: os.ErrNotExist}
		return
	}

	dir, name := filepath.Split(s.cfg.MapAssetPath)
	if dir == "" {
		dir = "."
	}
	in.MapDocument, in.MapErr = views.LoadMapAsset(os.DirFS(dir), name, in.Center)

	var notFound *views.AssetNotFoundError
	if errors.As(in.MapErr, &notFound) {
		s.logger.Warn("map asset missing", "path", s.cfg.MapAssetPath)
	} else if in.MapErr != nil {
		s.logger.Error("map asset unreadable", "path", s.cfg.MapAssetPath, "error", in.MapErr)
	}
}

// DailyTotals returns trips per day with mean temperature
func (s *DashboardService) DailyTotals(ctx context.Context) ([]models.DailyAggregate, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return stats.DailyTotals(ds.Trips), nil
}

// RollingTotals returns trips per day with the trailing mean over window days
func (s *DashboardService) RollingTotals(ctx context.Context, window int) ([]models.DailyAggregate, error) {
	if window <= 0 {
		window = s.cfg.RollingWindow
	}
	daily, err := s.DailyTotals(ctx)
	if err != nil {
		return nil, err
	}
	return stats.WithRollingMean(daily, window), nil
}

// TopCategories returns the n most frequent values of column
func (s *DashboardService) TopCategories(ctx context.Context, column string, n int) ([]models.StationRanking, error) {
	if column == "" {
		column = models.ColumnStartStationName
	}
	if n <= 0 {
		n = s.cfg.TopN
	}
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return stats.TopN(ds.Trips, column, n)
}

// DemandPivot returns the hour by weekday trip grid
func (s *DashboardService) DemandPivot(ctx context.Context) (models.HourWeekdayPivot, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return models.HourWeekdayPivot{}, err
	}
	return stats.HourWeekday(ds.Trips), nil
}

// Summary returns headline numbers for the dataset
func (s *DashboardService) Summary(ctx context.Context) (models.DatasetSummary, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return models.DatasetSummary{}, err
	}
	return stats.Summarize(ds), nil
}
