package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/jengzang/citibike-dashboard-go/internal/models"
	"github.com/jengzang/citibike-dashboard-go/internal/repository"
)

// SQLiteSource reads trips previously stored by the importer
type SQLiteSource struct {
	Path string
	repo *repository.TripRepository
}

// NewSQLiteSource creates a source over an open database whose file lives at path
func NewSQLiteSource(path string, db *sql.DB) *SQLiteSource {
	return &SQLiteSource{
		Path: path,
		repo: repository.NewTripRepository(db),
	}
}

// Key returns the path plus modification time of the database file
func (s *SQLiteSource) Key() (string, error) {
	return fileKey(s.Path)
}

// Load reads all stored trips
func (s *SQLiteSource) Load(ctx context.Context) (*models.Dataset, error) {
	trips, err := s.repo.ListTrips(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load trips from %s: %w", s.Path, err)
	}

	ds := &models.Dataset{
		Source:       s.Path,
		Trips:        trips,
		HasTripCount: true,
	}

	last, err := s.repo.LatestImport(ctx)
	if err != nil {
		return nil, err
	}
	if last != nil {
		ds.HasTemperature = last.HasTemperature
		ds.HasCoordinates = last.HasCoordinates
	}

	if info, err := os.Stat(s.Path); err == nil {
		ds.ModTime = info.ModTime()
	}
	return ds, nil
}
