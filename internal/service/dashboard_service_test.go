package service

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/citibike-dashboard-go/internal/dataset"
	"github.com/jengzang/citibike-dashboard-go/internal/models"
	"github.com/jengzang/citibike-dashboard-go/internal/spatial"
	"github.com/jengzang/citibike-dashboard-go/internal/views"
)

type staticSource struct {
	ds  *models.Dataset
	err error
}

func (s *staticSource) Key() (string, error) { return "static@1", nil }

func (s *staticSource) Load(context.Context) (*models.Dataset, error) {
	return s.ds, s.err
}

func ptr(v float64) *float64 { return &v }

func sampleDataset() *models.Dataset {
	ds := &models.Dataset{Source: "sample", HasTemperature: true, HasCoordinates: true}
	start := time.Date(2022, 1, 3, 8, 0, 0, 0, time.UTC) // Monday
	stations := []string{"A", "A", "A", "B", "B", "C"}
	for d := 0; d < 10; d++ {
		for i, s := range stations {
			at := start.AddDate(0, 0, d).Add(time.Duration(i) * time.Hour)
			ds.Trips = append(ds.Trips, models.Trip{
				StartedAt:        at,
				Date:             dataset.DateOf(at),
				StartStationName: s,
				TripCount:        1,
				AvgTemp:          ptr(float64(d)),
				StartLat:         ptr(40.70 + float64(i)*0.01),
				StartLng:         ptr(-74.00),
			})
		}
	}
	return ds
}

func newService(t *testing.T, src dataset.Source, mapPath string) *DashboardService {
	t.Helper()
	return NewDashboardService(src, dataset.NewCache(nil, nil), DashboardConfig{MapAssetPath: mapPath}, nil, nil)
}

func TestRender_AllViews(t *testing.T) {
	svc := newService(t, &staticSource{ds: sampleDataset()}, "")

	for _, v := range views.All() {
		t.Run(v.Slug(), func(t *testing.T) {
			page, err := svc.Render(context.Background(), v)
			require.NoError(t, err)
			assert.Equal(t, v, page.View)
			assert.NotEmpty(t, page.Heading)
		})
	}
}

func TestRender_TopStations(t *testing.T) {
	svc := newService(t, &staticSource{ds: sampleDataset()}, "")

	page, err := svc.Render(context.Background(), views.TopStations)
	require.NoError(t, err)
	require.Len(t, page.Charts, 1)
	assert.Contains(t, string(page.Charts[0].Option), "Top 10 Start Stations in NYC")
	assert.Equal(t, "A (30 trips)", page.Stats[0].Value)
}

func TestRender_DailyTripsHasRollingSeries(t *testing.T) {
	svc := newService(t, &staticSource{ds: sampleDataset()}, "")

	page, err := svc.Render(context.Background(), views.DailyTrips)
	require.NoError(t, err)
	require.Len(t, page.Charts, 1)
	assert.Contains(t, string(page.Charts[0].Option), "7-day Moving Average")
	assert.Empty(t, page.Notices)
}

func TestRender_TemperatureWithoutColumn(t *testing.T) {
	ds := sampleDataset()
	ds.HasTemperature = false
	for i := range ds.Trips {
		ds.Trips[i].AvgTemp = nil
	}
	svc := newService(t, &staticSource{ds: ds}, "")

	page, err := svc.Render(context.Background(), views.Temperature)
	require.NoError(t, err)
	require.Len(t, page.Notices, 1)
	assert.Equal(t, views.NoticeWarning, page.Notices[0].Level)
	assert.False(t, page.Degraded)
}

func TestRender_MissingMapAssetDegrades(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "citibike_small_map.html")
	svc := newService(t, &staticSource{ds: sampleDataset()}, missing)

	page, err := svc.Render(context.Background(), views.RideMap)
	require.NoError(t, err)
	assert.True(t, page.Degraded)
	assert.Nil(t, page.Map)
	require.Len(t, page.Notices, 1)
	assert.Equal(t, views.NoticeError, page.Notices[0].Level)
	assert.Contains(t, page.Notices[0].Message, missing)
}

func TestRender_MapAssetRecenteredOnTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.html")
	require.NoError(t, os.WriteFile(path, []byte("{latitude:37.7,longitude:-122.4}"), 0o644))

	ds := sampleDataset()
	svc := newService(t, &staticSource{ds: ds}, path)

	page, err := svc.Render(context.Background(), views.RideMap)
	require.NoError(t, err)
	require.NotNil(t, page.Map)
	assert.False(t, page.Degraded)
	assert.NotContains(t, page.Map.Document, "-122")

	ext, ok := spatial.TripExtent(ds.Trips)
	require.True(t, ok)
	assert.Equal(t, "{latitude:"+strconv.FormatFloat(ext.Center.Lat, 'f', 4, 64)+",longitude:-74.0000}", page.Map.Document)
	assert.InDelta(t, 40.725, ext.Center.Lat, 1e-3)
}

func TestRender_MapUsesDefaultCenterWithoutCoordinates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.html")
	require.NoError(t, os.WriteFile(path, []byte("{latitude:37.7,longitude:-122.4}"), 0o644))

	ds := sampleDataset()
	ds.HasCoordinates = false
	svc := newService(t, &staticSource{ds: ds}, path)

	page, err := svc.Render(context.Background(), views.RideMap)
	require.NoError(t, err)
	require.NotNil(t, page.Map)
	assert.Equal(t, "{latitude:40.7128,longitude:-74.0060}", page.Map.Document)
}

func TestRender_DataFormatErrorAborts(t *testing.T) {
	src := &staticSource{err: &dataset.DataFormatError{Source: "trips.csv", Row: 3, Column: "started_at"}}
	svc := newService(t, src, "")

	_, err := svc.Render(context.Background(), views.TopStations)
	var formatErr *dataset.DataFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, 3, formatErr.Row)

	// views without data still render
	page, err := svc.Render(context.Background(), views.Recommendations)
	require.NoError(t, err)
	assert.NotEmpty(t, page.Sections)
}

func TestRender_UnknownView(t *testing.T) {
	svc := newService(t, &staticSource{ds: sampleDataset()}, "")
	_, err := svc.Render(context.Background(), views.View(99))
	assert.Error(t, err)
}

func TestAggregates(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, &staticSource{ds: sampleDataset()}, "")

	daily, err := svc.DailyTotals(ctx)
	require.NoError(t, err)
	assert.Len(t, daily, 10)
	assert.Equal(t, 6, daily[0].Trips)

	rolling, err := svc.RollingTotals(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, rolling[5].TripsRolling)
	require.NotNil(t, rolling[6].TripsRolling)
	assert.Equal(t, 6.0, *rolling[6].TripsRolling)

	top, err := svc.TopCategories(ctx, "", 2)
	require.NoError(t, err)
	assert.Equal(t, []models.StationRanking{{Rank: 1, Station: "A", Trips: 30}, {Rank: 2, Station: "B", Trips: 20}}, top)

	_, err = svc.TopCategories(ctx, "end_station_name", 2)
	assert.Error(t, err)

	pivot, err := svc.DemandPivot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, pivot.Total)
	assert.Equal(t, 2, pivot.At(time.Monday, 8))

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, summary.TotalTrips)
	assert.Equal(t, 3, summary.Stations)
}

func TestClearCache(t *testing.T) {
	svc := newService(t, &staticSource{ds: sampleDataset()}, "")
	_, err := svc.Dataset(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, svc.ClearCache())
	assert.Equal(t, 0, svc.ClearCache())
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "0", formatInt(0))
	assert.Equal(t, "999", formatInt(999))
	assert.Equal(t, "1,000", formatInt(1000))
	assert.Equal(t, "29,838,806", formatInt(29838806))
	assert.Equal(t, "-12,345", formatInt(-12345))
}
