package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/citibike-dashboard-go/internal/models"
)

func day(d int) time.Time {
	return time.Date(2022, 1, d, 0, 0, 0, 0, time.UTC)
}

func trip(station string, started time.Time) models.Trip {
	return models.Trip{
		StartedAt:        started,
		Date:             time.Date(started.Year(), started.Month(), started.Day(), 0, 0, 0, 0, time.UTC),
		StartStationName: station,
		TripCount:        1,
	}
}

func ptr(v float64) *float64 { return &v }

func TestDailyTotals(t *testing.T) {
	t.Parallel()

	trips := []models.Trip{
		trip("A", day(3).Add(9*time.Hour)),
		trip("B", day(1).Add(8*time.Hour)),
		trip("A", day(3).Add(18*time.Hour)),
	}
	trips[0].AvgTemp = ptr(4)
	trips[2].AvgTemp = ptr(6)
	trips[1].TripCount = 5

	rows := DailyTotals(trips)
	require.Len(t, rows, 2)

	assert.Equal(t, day(1), rows[0].Date)
	assert.Equal(t, 5, rows[0].Trips)
	assert.Nil(t, rows[0].AvgTemp)

	assert.Equal(t, day(3), rows[1].Date)
	assert.Equal(t, 2, rows[1].Trips)
	require.NotNil(t, rows[1].AvgTemp)
	assert.InDelta(t, 5.0, *rows[1].AvgTemp, 1e-9)
}

func TestDailyTotals_SumMatchesRowCount(t *testing.T) {
	t.Parallel()

	var trips []models.Trip
	for i := 0; i < 100; i++ {
		trips = append(trips, trip("S", day(1+i%9).Add(time.Duration(i)*time.Minute)))
	}

	total := 0
	for _, row := range DailyTotals(trips) {
		total += row.Trips
	}
	assert.Equal(t, len(trips), total)
}

func TestDailyTotals_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, DailyTotals(nil))
}

func TestWithRollingMean_ConstantSeries(t *testing.T) {
	t.Parallel()

	rows := make([]models.DailyAggregate, 10)
	for i := range rows {
		rows[i] = models.DailyAggregate{Date: day(i + 1), Trips: 5}
	}

	out := WithRollingMean(rows, DefaultRollingWindow)
	require.Len(t, out, 10)
	for i := 0; i < 6; i++ {
		assert.Nil(t, out[i].TripsRolling, "row %d", i+1)
	}
	for i := 6; i < 10; i++ {
		require.NotNil(t, out[i].TripsRolling, "row %d", i+1)
		assert.Equal(t, 5.0, *out[i].TripsRolling)
	}

	// input untouched
	assert.Nil(t, rows[9].TripsRolling)
}

func TestWithRollingMean_SortsFirst(t *testing.T) {
	t.Parallel()

	rows := []models.DailyAggregate{
		{Date: day(3), Trips: 30},
		{Date: day(1), Trips: 10},
		{Date: day(2), Trips: 20},
	}
	out := WithRollingMean(rows, 2)

	assert.Equal(t, day(1), out[0].Date)
	assert.Nil(t, out[0].TripsRolling)
	assert.InDelta(t, 15.0, *out[1].TripsRolling, 1e-9)
	assert.InDelta(t, 25.0, *out[2].TripsRolling, 1e-9)
}

func TestRollingMean(t *testing.T) {
	t.Parallel()

	got := RollingMean([]float64{1, 2, 3, 4}, 3)
	assert.Nil(t, got[0])
	assert.Nil(t, got[1])
	assert.InDelta(t, 2.0, *got[2], 1e-9)
	assert.InDelta(t, 3.0, *got[3], 1e-9)

	for _, v := range RollingMean([]float64{1, 2}, 7) {
		assert.Nil(t, v)
	}
	assert.Len(t, RollingMean([]float64{1, 2}, 0), 2)
}

func TestTopN(t *testing.T) {
	t.Parallel()

	var trips []models.Trip
	for _, s := range []string{"A", "A", "A", "B", "B", "C"} {
		trips = append(trips, trip(s, day(1)))
	}

	got, err := TopN(trips, models.ColumnStartStationName, 2)
	require.NoError(t, err)
	assert.Equal(t, []models.StationRanking{
		{Rank: 1, Station: "A", Trips: 3},
		{Rank: 2, Station: "B", Trips: 2},
	}, got)
}

func TestTopN_TiesKeepFirstSeenOrder(t *testing.T) {
	t.Parallel()

	var trips []models.Trip
	for _, s := range []string{"C", "B", "A", "B", "C", "A", ""} {
		trips = append(trips, trip(s, day(1)))
	}

	got, err := TopN(trips, models.ColumnStartStationName, DefaultTopN)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "C", got[0].Station)
	assert.Equal(t, "B", got[1].Station)
	assert.Equal(t, "A", got[2].Station)
}

func TestTopN_EdgeCases(t *testing.T) {
	t.Parallel()

	trips := []models.Trip{trip("A", day(3)), trip("B", day(3)), trip("C", day(4))}

	got, err := TopN(trips, models.ColumnStartStationName, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = TopN(nil, models.ColumnStartStationName, 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = TopN(trips, models.ColumnDate, 1)
	require.NoError(t, err)
	assert.Equal(t, "2022-01-03", got[0].Station)
	assert.Equal(t, 2, got[0].Trips)

	_, err = TopN(trips, "end_station_name", 3)
	assert.Error(t, err)
}

func TestHourWeekday_SingleTrip(t *testing.T) {
	t.Parallel()

	monday := time.Date(2022, 1, 3, 8, 42, 0, 0, time.UTC)
	require.Equal(t, time.Monday, monday.Weekday())

	p := HourWeekday([]models.Trip{trip("A", monday)})

	assert.Equal(t, models.Weekdays, p.Weekdays)
	assert.Equal(t, 23, p.Hours[23])
	assert.Equal(t, 1, p.Total)
	assert.Equal(t, 1, p.Max)
	for d := 0; d < 7; d++ {
		for h := 0; h < 24; h++ {
			want := 0
			if d == 0 && h == 8 {
				want = 1
			}
			assert.Equal(t, want, p.Counts[d][h], "weekday %d hour %d", d, h)
		}
	}
	assert.Equal(t, 1, p.At(time.Monday, 8))
}

func TestHourWeekday_CountsRowsAndSundayLast(t *testing.T) {
	t.Parallel()

	sunday := time.Date(2022, 1, 2, 23, 5, 0, 0, time.UTC)
	tr := trip("A", sunday)
	tr.TripCount = 10

	p := HourWeekday([]models.Trip{tr, tr})
	assert.Equal(t, 2, p.Counts[6][23])
	assert.Equal(t, 2, p.At(time.Sunday, 23))
	assert.Zero(t, p.At(time.Sunday, 24))
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	ds := &models.Dataset{Trips: []models.Trip{
		trip("A", day(1)),
		trip("A", day(2)),
		trip("B", day(2)),
		trip("C", day(5)),
	}}

	s := Summarize(ds)
	assert.Equal(t, 4, s.TotalTrips)
	assert.Equal(t, 4, s.Rows)
	assert.Equal(t, 3, s.Days)
	assert.Equal(t, 3, s.Stations)
	assert.Equal(t, day(1), s.FirstDate)
	assert.Equal(t, day(5), s.LastDate)
	assert.Equal(t, day(2), s.BusiestDate)
	assert.Equal(t, 2, s.BusiestDayTrips)
	assert.InDelta(t, 1.0, s.MedianDayTrips, 1e-9)

	assert.Zero(t, Summarize(&models.Dataset{}).Days)
}

func TestTripsTemperatureCorrelation(t *testing.T) {
	t.Parallel()

	rows := []models.DailyAggregate{
		{Trips: 10, AvgTemp: ptr(1)},
		{Trips: 20, AvgTemp: ptr(2)},
		{Trips: 99},
		{Trips: 30, AvgTemp: ptr(3)},
	}
	r, days := TripsTemperatureCorrelation(rows)
	assert.Equal(t, 3, days)
	assert.InDelta(t, 1.0, r, 1e-9)

	assert.Zero(t, PearsonCorrelation([]float64{1, 1}, []float64{2, 3}))
	assert.Zero(t, PearsonCorrelation([]float64{1}, []float64{2}))
}

func TestMedian(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 3.0, Median([]float64{5, 3, 1}))
	assert.Zero(t, Median(nil))
}
