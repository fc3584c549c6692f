package stats

import (
	"github.com/jengzang/citibike-dashboard-go/internal/models"
)

// HourWeekday counts trips per (weekday, hour of day) of their start time.
// The grid is always 7x24, Monday first, with zeros for empty cells.
func HourWeekday(trips []models.Trip) models.HourWeekdayPivot {
	p := models.HourWeekdayPivot{Weekdays: models.Weekdays}
	for h := range p.Hours {
		p.Hours[h] = h
	}

	for _, t := range trips {
		row := models.WeekdayRow(t.StartedAt.Weekday())
		p.Counts[row][t.StartedAt.Hour()]++
		p.Total++
	}

	for _, hours := range p.Counts {
		for _, c := range hours {
			if c > p.Max {
				p.Max = c
			}
		}
	}
	return p
}
