package stats

import (
	"github.com/jengzang/citibike-dashboard-go/internal/models"
)

// Summarize computes headline numbers over a dataset
func Summarize(ds *models.Dataset) models.DatasetSummary {
	s := models.DatasetSummary{Rows: ds.Len()}
	if ds.Len() == 0 {
		return s
	}

	stations := make(map[string]struct{})
	for _, t := range ds.Trips {
		s.TotalTrips += t.TripCount
		if t.StartStationName != "" {
			stations[t.StartStationName] = struct{}{}
		}
	}
	s.Stations = len(stations)

	daily := DailyTotals(ds.Trips)
	s.Days = len(daily)
	s.FirstDate = daily[0].Date
	s.LastDate = daily[len(daily)-1].Date

	perDay := make([]float64, len(daily))
	for i, row := range daily {
		perDay[i] = float64(row.Trips)
		if row.Trips > s.BusiestDayTrips {
			s.BusiestDayTrips = row.Trips
			s.BusiestDate = row.Date
		}
	}
	s.MedianDayTrips = Median(perDay)
	return s
}
