package stats

import (
	"sort"
	"time"

	"github.com/jengzang/citibike-dashboard-go/internal/models"
)

// DefaultRollingWindow is the number of days in the moving average
const DefaultRollingWindow = 7

// DailyTotals groups trips by calendar date, summing trip counts and averaging
// the temperature of rows that carry one. Rows are sorted ascending by date;
// dates without trips produce no row.
func DailyTotals(trips []models.Trip) []models.DailyAggregate {
	type bucket struct {
		trips   int
		tempSum float64
		tempN   int
	}

	buckets := make(map[time.Time]*bucket)
	for _, t := range trips {
		b, ok := buckets[t.Date]
		if !ok {
			b = &bucket{}
			buckets[t.Date] = b
		}
		b.trips += t.TripCount
		if t.AvgTemp != nil {
			b.tempSum += *t.AvgTemp
			b.tempN++
		}
	}

	rows := make([]models.DailyAggregate, 0, len(buckets))
	for date, b := range buckets {
		row := models.DailyAggregate{Date: date, Trips: b.trips}
		if b.tempN > 0 {
			avg := b.tempSum / float64(b.tempN)
			row.AvgTemp = &avg
		}
		rows = append(rows, row)
	}

	sortByDate(rows)
	return rows
}

// WithRollingMean returns a copy of rows, sorted by date, with TripsRolling set
// to the trailing mean over window rows. The first window-1 rows stay nil.
func WithRollingMean(rows []models.DailyAggregate, window int) []models.DailyAggregate {
	out := make([]models.DailyAggregate, len(rows))
	copy(out, rows)
	sortByDate(out)

	values := make([]float64, len(out))
	for i, row := range out {
		values[i] = float64(row.Trips)
	}
	for i, v := range RollingMean(values, window) {
		out[i].TripsRolling = v
	}
	return out
}

func sortByDate(rows []models.DailyAggregate) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
}
