// Package chart builds ECharts specifications from aggregate tables.
// Builders are pure: the same input always yields the same option.
package chart

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/jengzang/citibike-dashboard-go/internal/models"
)

const dateLayout = "2006-01-02"

// missing is how ECharts expects a gap in a line series
const missing = "-"

// Spec is a chart that can be serialized to an ECharts option
type Spec interface {
	Validate()
	JSON() map[string]interface{}
}

// OptionJSON serializes a chart to the option object passed to echarts.setOption
// after Validate has copied the axis categories into the option
func OptionJSON(s Spec) ([]byte, error) {
	s.Validate()
	b, err := json.Marshal(s.JSON())
	if err != nil {
		return nil, fmt.Errorf("failed to encode chart option: %w", err)
	}
	return b, nil
}

// TopStationsBar builds the most popular start stations bar chart
func TopStationsBar(rows []models.StationRanking, topN int) *charts.Bar {
	names := make([]string, 0, len(rows))
	data := make([]opts.BarData, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Station)
		data = append(data, opts.BarData{Name: r.Station, Value: r.Trips})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Top %d Start Stations in NYC", topN)}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "Station Name",
			AxisLabel: &opts.AxisLabel{Rotate: 45, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Number of Trips"}),
	)
	bar.SetXAxis(names).AddSeries("Trips", data)
	return bar
}

// TripsVsTemperature builds the dual-axis daily trips and average temperature chart
func TripsVsTemperature(rows []models.DailyAggregate) *charts.Line {
	dates := make([]string, 0, len(rows))
	trips := make([]opts.LineData, 0, len(rows))
	temps := make([]opts.LineData, 0, len(rows))
	for _, r := range rows {
		dates = append(dates, r.Date.Format(dateLayout))
		trips = append(trips, opts.LineData{Value: r.Trips})
		temps = append(temps, optionalPoint(r.AvgTemp))
	}

	return dualAxisLine(
		"Daily Citi Bike Trips vs Average Temperature (2022)",
		dates,
		"Number of Trips", trips,
		"Average Temperature (°C)", temps,
	)
}

// TripsWithRollingMean builds the dual-axis daily trips and 7-day moving average chart
func TripsWithRollingMean(rows []models.DailyAggregate) *charts.Line {
	dates := make([]string, 0, len(rows))
	trips := make([]opts.LineData, 0, len(rows))
	rolling := make([]opts.LineData, 0, len(rows))
	for _, r := range rows {
		dates = append(dates, r.Date.Format(dateLayout))
		trips = append(trips, opts.LineData{Value: r.Trips})
		rolling = append(rolling, optionalPoint(r.TripsRolling))
	}

	return dualAxisLine(
		"Daily Citi Bike Trips and 7-day Moving Average (2022)",
		dates,
		"Daily Trips", trips,
		"7-day Moving Average", rolling,
	)
}

func dualAxisLine(title string, dates []string, leftName string, left []opts.LineData, rightName string, right []opts.LineData) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: leftName}),
	)
	line.ExtendYAxis(opts.YAxis{Name: rightName})

	line.SetXAxis(dates).
		AddSeries(leftName, left).
		AddSeries(rightName, right, charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))
	return line
}

// DemandHeatmap builds the hour by weekday demand heatmap
func DemandHeatmap(p models.HourWeekdayPivot) *charts.HeatMap {
	hours := make([]string, len(p.Hours))
	for i, h := range p.Hours {
		hours[i] = strconv.Itoa(h)
	}
	days := p.Weekdays[:]

	data := make([]opts.HeatMapData, 0, len(days)*len(hours))
	for row := range p.Counts {
		for h, c := range p.Counts[row] {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{h, row, c}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Citi Bike demand by hour and weekday"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Hour of day", Type: "category", Data: hours}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Day of week", Type: "category", Data: days}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(p.Max),
			InRange:    &opts.VisualMapInRange{Color: []string{"#1a0933", "#b5367a", "#fbe9a6"}},
		}),
	)
	hm.SetXAxis(hours).AddSeries("Trips", data)
	return hm
}

func optionalPoint(v *float64) opts.LineData {
	if v == nil {
		return opts.LineData{Value: missing}
	}
	return opts.LineData{Value: *v}
}
