package service

import (
	"errors"
	"fmt"
	"html/template"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jengzang/citibike-dashboard-go/internal/chart"
	"github.com/jengzang/citibike-dashboard-go/internal/models"
	"github.com/jengzang/citibike-dashboard-go/internal/spatial"
	"github.com/jengzang/citibike-dashboard-go/internal/stats"
	"github.com/jengzang/citibike-dashboard-go/internal/views"
)

const (
	chartHeight = 480
	mapHeight   = 700
	dateLayout  = "2006-01-02"
)

// renderInput is everything a render function may look at. Dataset is nil
// for views that do not need data.
type renderInput struct {
	Dataset       *models.Dataset
	TopN          int
	RollingWindow int
	Center        spatial.Coordinate
	Extent        *spatial.Extent
	MapAssetPath  string
	MapDocument   string
	MapErr        error
}

type renderFunc func(in renderInput) (*views.Page, error)

var renderers = map[views.View]renderFunc{
	views.Intro:           renderIntro,
	views.Temperature:     renderTemperature,
	views.DailyTrips:      renderDailyTrips,
	views.TopStations:     renderTopStations,
	views.RideMap:         renderRideMap,
	views.DemandHeatmap:   renderDemandHeatmap,
	views.Recommendations: renderRecommendations,
}

func renderIntro(in renderInput) (*views.Page, error) {
	s := stats.Summarize(in.Dataset)
	page := &views.Page{
		Title:   "Intro",
		Heading: "Citi Bike 2022 – NYC Dashboard",
		Intro: []string{
			"This dashboard explores how Citi Bike is used across New York City.",
		},
		Sections: []views.Section{{
			Heading: "What you can do here",
			Bullets: []string{
				"Follow how daily rides change over time and with temperature",
				"Find the most popular start stations",
				"Get a spatial overview of trips on the map",
				"See ride demand by hour and weekday",
				"Read recommendations drawn from the analysis",
			},
		}},
	}

	page.Stats = []views.Stat{
		{Label: "Trips", Value: formatInt(s.TotalTrips)},
		{Label: "Start stations", Value: formatInt(s.Stations)},
		{Label: "Days covered", Value: formatInt(s.Days)},
	}
	if s.Days > 0 {
		page.Stats = append(page.Stats,
			views.Stat{Label: "Period", Value: s.FirstDate.Format(dateLayout) + " to " + s.LastDate.Format(dateLayout)},
			views.Stat{Label: "Busiest day", Value: fmt.Sprintf("%s (%s trips)", s.BusiestDate.Format(dateLayout), formatInt(s.BusiestDayTrips))},
			views.Stat{Label: "Median trips per day", Value: strconv.FormatFloat(s.MedianDayTrips, 'f', 0, 64)},
		)
	} else {
		page.AddNotice(views.NoticeWarning, "The trip dataset is empty.")
	}
	return page, nil
}

func renderTemperature(in renderInput) (*views.Page, error) {
	daily := stats.DailyTotals(in.Dataset.Trips)

	page := &views.Page{
		Title:   "How Temperature Influences Daily Trips",
		Heading: "Daily Trips vs Average Temperature",
	}

	panel, err := chartPanel("trips-temperature", "", chart.TripsVsTemperature(daily))
	if err != nil {
		return nil, err
	}
	page.Charts = append(page.Charts, panel)

	if !in.Dataset.HasTemperature {
		page.AddNotice(views.NoticeWarning, "The dataset has no avgTemp column, so the temperature series is empty.")
		return page, nil
	}

	if r, days := stats.TripsTemperatureCorrelation(daily); days >= 2 {
		page.Stats = append(page.Stats,
			views.Stat{Label: "Correlation (trips, temperature)", Value: strconv.FormatFloat(r, 'f', 2, 64)},
			views.Stat{Label: "Days with temperature", Value: formatInt(days)},
		)
	}
	page.Sections = []views.Section{{
		Heading: "Interpretation",
		Body:    "Ridership follows temperature: warm months carry far more trips than cold ones.",
	}}
	return page, nil
}

func renderDailyTrips(in renderInput) (*views.Page, error) {
	rows := stats.WithRollingMean(stats.DailyTotals(in.Dataset.Trips), in.RollingWindow)

	page := &views.Page{
		Title:   "Daily Trips",
		Heading: fmt.Sprintf("Daily Trips and %d-day Moving Average", in.RollingWindow),
	}

	panel, err := chartPanel("trips-rolling", "", chart.TripsWithRollingMean(rows))
	if err != nil {
		return nil, err
	}
	page.Charts = append(page.Charts, panel)

	if len(rows) < in.RollingWindow {
		page.AddNotice(views.NoticeInfo, fmt.Sprintf("Fewer than %d days of data, the moving average is not defined yet.", in.RollingWindow))
	}
	page.Sections = []views.Section{{
		Heading: "Interpretation",
		Body:    "The first series is the exact number of trips per day; the moving average smooths out day to day noise.",
		Bullets: []string{
			"Warmer months show higher trip volumes",
			"Sustained summer demand puts pressure on bike availability",
			"The moving average makes the seasonal trend easy to read",
		},
	}}
	return page, nil
}

func renderTopStations(in renderInput) (*views.Page, error) {
	ranking, err := stats.TopN(in.Dataset.Trips, models.ColumnStartStationName, in.TopN)
	if err != nil {
		return nil, err
	}

	page := &views.Page{
		Title:   "Top Stations",
		Heading: "Most Popular Start Stations",
	}

	panel, err := chartPanel("top-stations", "", chart.TopStationsBar(ranking, in.TopN))
	if err != nil {
		return nil, err
	}
	page.Charts = append(page.Charts, panel)

	if len(ranking) > 0 {
		page.Stats = append(page.Stats, views.Stat{
			Label: "Busiest station",
			Value: fmt.Sprintf("%s (%s trips)", ranking[0].Station, formatInt(ranking[0].Trips)),
		})
	}
	page.Sections = []views.Section{{
		Heading: "Interpretation",
		Body:    "A small group of stations dominates usage. Keeping them stocked with bikes and free docks has the largest effect on shortages.",
		Bullets: []string{
			"Near transport hubs",
			"In dense residential or business areas such as Midtown",
			"Close to tourist spots",
		},
	}}
	return page, nil
}

func renderRideMap(in renderInput) (*views.Page, error) {
	page := &views.Page{
		Title:   "Citibike Ride Map",
		Heading: "Citi Bike Trips Map – Kepler.gl",
	}

	var notFound *views.AssetNotFoundError
	switch {
	case errors.As(in.MapErr, &notFound):
		page.AddNotice(views.NoticeError, fmt.Sprintf("Kepler map file not found. Check that '%s' exists.", in.MapAssetPath))
		return page, nil
	case in.MapErr != nil:
		page.AddNotice(views.NoticeError, fmt.Sprintf("Kepler map file could not be read: %v", in.MapErr))
		return page, nil
	}

	page.Map = &views.MapPanel{Document: in.MapDocument, Height: mapHeight}
	page.Stats = append(page.Stats, views.Stat{
		Label: "Map centre",
		Value: fmt.Sprintf("%.4f, %.4f", in.Center.Lat, in.Center.Lng),
	})
	if in.Extent != nil {
		page.Stats = append(page.Stats, views.Stat{
			Label: "Farthest start from centre",
			Value: fmt.Sprintf("%.1f km", in.Extent.RadiusMeters/1000),
		})
	}
	page.Sections = []views.Section{{
		Heading: "Interpretation",
		Body:    "Activity concentrates in central Manhattan around Midtown and Downtown, while outer zones show lower demand.",
	}}
	return page, nil
}

func renderDemandHeatmap(in renderInput) (*views.Page, error) {
	pivot := stats.HourWeekday(in.Dataset.Trips)

	page := &views.Page{
		Title:   "Ride Demand Heatmap: Hour vs. Weekday",
		Heading: "Peak Demand: Heatmap by Hour and Weekday",
	}

	panel, err := chartPanel("demand-heatmap", "", chart.DemandHeatmap(pivot))
	if err != nil {
		return nil, err
	}
	page.Charts = append(page.Charts, panel)

	if day, hour, ok := peakCell(pivot); ok {
		page.Stats = append(page.Stats, views.Stat{
			Label: "Peak hour",
			Value: fmt.Sprintf("%s %02d:00 (%s trips)", pivot.Weekdays[day], hour, formatInt(pivot.Max)),
		})
	}
	page.Sections = []views.Section{{
		Heading: "Interpretation",
		Body:    "Demand peaks in weekday rush hours and spreads out on weekends.",
		Bullets: []string{
			"Boost supply in central Manhattan during rush hours",
			"Move bikes to recreational areas on weekends",
			"Plan redistribution around commuter patterns",
		},
	}}
	return page, nil
}

const recommendations = `### 1. More bikes during weekday rush hours
Demand peaks on **weekdays between 7–9 AM and 4–7 PM**.

- Focus redistribution on Midtown, Downtown and Lower Manhattan
- Stock those stations before the rush starts

### 2. Strengthen high-demand central stations
The map and the station ranking both point at the central business district.

- Plan for higher supply than in outer areas
- Add temporary docking capacity in busy seasons

### 3. Follow weekend recreational demand
Weekend rides peak in the late morning and early afternoon.

- Shift bikes toward parks and waterfronts
- Less focus on commuter hot spots

### 4. Rebalance overnight
- Run overnight balancing routes
- Prepare inventory for the next morning

### 5. Forecast demand
Seasonal and hourly patterns are stable enough to plan with, especially combined with weather forecasts.
`

func renderRecommendations(renderInput) (*views.Page, error) {
	return &views.Page{
		Title:   "Recommendations",
		Heading: "Recommendations",
		Intro: []string{
			"The usage patterns point to a few clear ways to improve bike supply.",
		},
		Sections: []views.Section{{Markdown: recommendations}},
	}, nil
}

func chartPanel(id, heading string, spec chart.Spec) (views.ChartPanel, error) {
	option, err := chart.OptionJSON(spec)
	if err != nil {
		return views.ChartPanel{}, fmt.Errorf("failed to build chart %s: %w", id, err)
	}
	return views.ChartPanel{
		ID:      id,
		Heading: heading,
		Option:  template.JS(option),
		Height:  chartHeight,
	}, nil
}

// peakCell returns the first cell holding the pivot maximum
func peakCell(p models.HourWeekdayPivot) (day, hour int, ok bool) {
	if p.Max == 0 {
		return 0, 0, false
	}
	for d := range p.Counts {
		for h, c := range p.Counts[d] {
			if c == p.Max {
				return d, h, true
			}
		}
	}
	return 0, 0, false
}

var printer = message.NewPrinter(language.English)

func formatInt(n int) string {
	return printer.Sprintf("%d", n)
}
