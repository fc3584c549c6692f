package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/citibike-dashboard-go/internal/database"
	"github.com/jengzang/citibike-dashboard-go/internal/models"
)

// TripRepository handles database operations for imported bike trips
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

// ImportRecord describes one dataset import
type ImportRecord struct {
	ID             int64     `json:"id"`
	SourcePath     string    `json:"source_path"`
	RowCount       int64     `json:"row_count"`
	HasTripCount   bool      `json:"has_trip_count"`
	HasTemperature bool      `json:"has_temperature"`
	HasCoordinates bool      `json:"has_coordinates"`
	ImportedAt     time.Time `json:"imported_at"`
}

// ReplaceAll swaps the stored trips for the given dataset in one transaction
func (r *TripRepository) ReplaceAll(ctx context.Context, ds *models.Dataset) (int64, error) {
	var inserted int64
	err := database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM bike_trips"); err != nil {
			return fmt.Errorf("failed to clear bike_trips: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO bike_trips
			(started_at, trip_date, start_station_name, start_lat, start_lng, trip_count, avg_temp)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range ds.Trips {
			_, err := stmt.ExecContext(ctx,
				t.StartedAt.Unix(), t.Date.Unix(), t.StartStationName,
				nullFloat(t.StartLat), nullFloat(t.StartLng),
				t.TripCount, nullFloat(t.AvgTemp),
			)
			if err != nil {
				return fmt.Errorf("failed to insert trip: %w", err)
			}
			inserted++
		}

		_, err = tx.ExecContext(ctx, `INSERT INTO dataset_imports
			(source_path, row_count, has_trip_count, has_temperature, has_coordinates)
			VALUES (?, ?, ?, ?, ?)`,
			ds.Source, inserted, ds.HasTripCount, ds.HasTemperature, ds.HasCoordinates)
		if err != nil {
			return fmt.Errorf("failed to record import: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ListTrips returns every stored trip in insertion order
func (r *TripRepository) ListTrips(ctx context.Context) ([]models.Trip, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT started_at, trip_date, start_station_name,
		start_lat, start_lng, trip_count, avg_temp
		FROM bike_trips
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var t models.Trip
		var startedAt, tripDate int64
		var lat, lng, temp sql.NullFloat64

		if err := rows.Scan(&startedAt, &tripDate, &t.StartStationName, &lat, &lng, &t.TripCount, &temp); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}

		t.StartedAt = time.Unix(startedAt, 0).UTC()
		t.Date = time.Unix(tripDate, 0).UTC()
		t.StartLat = floatPtr(lat)
		t.StartLng = floatPtr(lng)
		t.AvgTemp = floatPtr(temp)
		trips = append(trips, t)
	}

	return trips, rows.Err()
}

// LatestImport returns the most recent import record, or nil when nothing was imported
func (r *TripRepository) LatestImport(ctx context.Context) (*ImportRecord, error) {
	var rec ImportRecord
	var importedAt int64
	err := r.db.QueryRowContext(ctx, `SELECT id, source_path, row_count,
		has_trip_count, has_temperature, has_coordinates, imported_at
		FROM dataset_imports
		ORDER BY id DESC
		LIMIT 1`).Scan(
		&rec.ID, &rec.SourcePath, &rec.RowCount,
		&rec.HasTripCount, &rec.HasTemperature, &rec.HasCoordinates, &importedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest import: %w", err)
	}
	rec.ImportedAt = time.Unix(importedAt, 0).UTC()
	return &rec, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
