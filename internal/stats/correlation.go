package stats

import (
	"math"

	"github.com/jengzang/citibike-dashboard-go/internal/models"
)

// PearsonCorrelation calculates the Pearson correlation coefficient between two variables.
// Returns a value between -1 and 1, or 0 when either series is constant or too short.
func PearsonCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}

	meanX := Mean(x)
	meanY := Mean(y)

	var sumXY, sumX2, sumY2 float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		sumXY += dx * dy
		sumX2 += dx * dx
		sumY2 += dy * dy
	}

	if sumX2 == 0 || sumY2 == 0 {
		return 0
	}

	return sumXY / math.Sqrt(sumX2*sumY2)
}

// TripsTemperatureCorrelation correlates daily trips with daily mean temperature,
// using only days that carry a temperature
func TripsTemperatureCorrelation(rows []models.DailyAggregate) (r float64, days int) {
	var trips, temps []float64
	for _, row := range rows {
		if row.AvgTemp == nil {
			continue
		}
		trips = append(trips, float64(row.Trips))
		temps = append(temps, *row.AvgTemp)
	}
	return PearsonCorrelation(trips, temps), len(trips)
}
