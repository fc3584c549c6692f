package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/citibike-dashboard-go/internal/database"
	"github.com/jengzang/citibike-dashboard-go/internal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{Path: filepath.Join(t.TempDir(), "trips.db"), MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrationManager(db).RunMigrations(ctx))
	return db
}

func ptr(v float64) *float64 { return &v }

func TestTripRepository_ReplaceAllAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewTripRepository(openTestDB(t))

	started := time.Date(2022, 7, 4, 17, 30, 0, 0, time.UTC)
	ds := &models.Dataset{
		Source:         "trips.csv",
		HasTripCount:   true,
		HasTemperature: true,
		HasCoordinates: true,
		Trips: []models.Trip{
			{StartedAt: started, Date: started.Truncate(24 * time.Hour), StartStationName: "Pier 40", TripCount: 3, AvgTemp: ptr(28.5), StartLat: ptr(40.7291), StartLng: ptr(-74.0105)},
			{StartedAt: started.Add(time.Hour), Date: started.Truncate(24 * time.Hour), StartStationName: "W 21 St & 6 Ave", TripCount: 1},
		},
	}

	n, err := repo.ReplaceAll(ctx, ds)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	trips, err := repo.ListTrips(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, ds.Trips[0].StartedAt, trips[0].StartedAt)
	assert.Equal(t, ds.Trips[0].Date, trips[0].Date)
	assert.Equal(t, "Pier 40", trips[0].StartStationName)
	assert.Equal(t, 3, trips[0].TripCount)
	require.NotNil(t, trips[0].AvgTemp)
	assert.InDelta(t, 28.5, *trips[0].AvgTemp, 1e-9)
	assert.Nil(t, trips[1].AvgTemp)
	assert.Nil(t, trips[1].StartLat)

	// a second import replaces the first
	ds.Trips = ds.Trips[:1]
	ds.HasTemperature = false
	_, err = repo.ReplaceAll(ctx, ds)
	require.NoError(t, err)

	trips, err = repo.ListTrips(ctx)
	require.NoError(t, err)
	assert.Len(t, trips, 1)

	last, err := repo.LatestImport(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.EqualValues(t, 1, last.RowCount)
	assert.Equal(t, "trips.csv", last.SourcePath)
	assert.True(t, last.HasTripCount)
	assert.False(t, last.HasTemperature)
	assert.False(t, last.ImportedAt.IsZero())
}

func TestTripRepository_LatestImportEmpty(t *testing.T) {
	repo := NewTripRepository(openTestDB(t))

	last, err := repo.LatestImport(context.Background())
	require.NoError(t, err)
	assert.Nil(t, last)
}
