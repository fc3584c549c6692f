package models

import "time"

// Trip represents one bicycle rental event loaded from the source dataset
type Trip struct {
	// Temporal info
	StartedAt time.Time `json:"started_at" db:"started_at"` // Naive local timestamp, stored as UTC
	Date      time.Time `json:"date" db:"date"`             // Calendar day, midnight UTC

	// Station info
	StartStationName string   `json:"start_station_name" db:"start_station_name"`
	StartLat         *float64 `json:"start_lat,omitempty" db:"start_lat"`
	StartLng         *float64 `json:"start_lng,omitempty" db:"start_lng"`

	// Measures
	TripCount int      `json:"trip_count" db:"trip_count"`       // 1 per row unless the source carries its own count
	AvgTemp   *float64 `json:"avg_temp,omitempty" db:"avg_temp"` // Daily mean temperature (°C) joined onto the row
}

// Dataset is an immutable in-memory table of trips plus the column layout it was read with
type Dataset struct {
	Source  string    `json:"source"`
	ModTime time.Time `json:"mod_time"`
	Trips   []Trip    `json:"-"`

	// Column presence in the source
	HasTripCount   bool `json:"has_trip_count"`
	HasTemperature bool `json:"has_temperature"`
	HasCoordinates bool `json:"has_coordinates"`
}

// Len returns the number of trip rows
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Trips)
}

// Column names understood by the loader and by categorical rankings
const (
	ColumnDate             = "date"
	ColumnStartedAt        = "started_at"
	ColumnStartStationName = "start_station_name"
	ColumnTripCount        = "trip_count"
	ColumnAvgTemp          = "avgTemp"
	ColumnStartLat         = "start_lat"
	ColumnStartLng         = "start_lng"
	ColumnWeekday          = "weekday"
)

// CategoricalValue returns the value of a categorical column for a trip.
// The second result is false for columns that cannot be ranked.
func CategoricalValue(t Trip, column string) (string, bool) {
	switch column {
	case ColumnStartStationName:
		return t.StartStationName, true
	case ColumnDate:
		return t.Date.Format("2006-01-02"), true
	case ColumnWeekday:
		return t.StartedAt.Weekday().String(), true
	default:
		return "", false
	}
}
