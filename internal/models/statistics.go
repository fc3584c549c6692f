package models

import "time"

// DailyAggregate is one calendar day of trip activity
type DailyAggregate struct {
	Date         time.Time `json:"date"`
	Trips        int       `json:"trips"`
	AvgTemp      *float64  `json:"avg_temp,omitempty"`      // nil when no row of the day carries a temperature
	TripsRolling *float64  `json:"trips_rolling,omitempty"` // nil until the rolling window is full
}

// StationRanking is one row of a top-N frequency ranking
type StationRanking struct {
	Rank    int    `json:"rank"`
	Station string `json:"station"`
	Trips   int    `json:"trips"`
}

// Weekdays lists day names in pivot row order
var Weekdays = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// HourWeekdayPivot is a dense weekday x hour-of-day grid of trip counts
type HourWeekdayPivot struct {
	Weekdays [7]string  `json:"weekdays"`
	Hours    [24]int    `json:"hours"`
	Counts   [7][24]int `json:"counts"` // Counts[weekdayRow][hour]
	Total    int        `json:"total"`
	Max      int        `json:"max"`
}

// WeekdayRow maps a time.Weekday to its Monday-first row index
func WeekdayRow(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// At returns the count for a weekday and hour
func (p *HourWeekdayPivot) At(d time.Weekday, hour int) int {
	if hour < 0 || hour > 23 {
		return 0
	}
	return p.Counts[WeekdayRow(d)][hour]
}

// DatasetSummary holds headline numbers for the intro page
type DatasetSummary struct {
	TotalTrips      int       `json:"total_trips"`
	Rows            int       `json:"rows"`
	Days            int       `json:"days"`
	Stations        int       `json:"stations"`
	FirstDate       time.Time `json:"first_date"`
	LastDate        time.Time `json:"last_date"`
	BusiestDate     time.Time `json:"busiest_date"`
	BusiestDayTrips int       `json:"busiest_day_trips"`
	MedianDayTrips  float64   `json:"median_day_trips"`
}
