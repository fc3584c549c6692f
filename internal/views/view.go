// Package views defines the dashboard pages and renders them to HTML.
package views

import (
	"fmt"
)

// View is one page of the dashboard
type View int

const (
	Intro View = iota
	Temperature
	DailyTrips
	TopStations
	RideMap
	DemandHeatmap
	Recommendations
)

var viewInfo = [...]struct {
	slug     string
	label    string
	needData bool
}{
	Intro:           {"intro", "Intro", true},
	Temperature:     {"temperature", "Trips vs. Temperature", true},
	DailyTrips:      {"daily-trips", "How Temperature Influences Daily Trips", true},
	TopStations:     {"top-stations", "Top Stations", true},
	RideMap:         {"ride-map", "Citibike Ride Map", true},
	DemandHeatmap:   {"demand-heatmap", "Ride Demand Heatmap: Hour vs. Weekday", true},
	Recommendations: {"recommendations", "Recommendations", false},
}

// All returns every view in navigation order
func All() []View {
	views := make([]View, len(viewInfo))
	for i := range viewInfo {
		views[i] = View(i)
	}
	return views
}

// ParseView resolves a URL slug to a view
func ParseView(slug string) (View, error) {
	for i, info := range viewInfo {
		if info.slug == slug {
			return View(i), nil
		}
	}
	return 0, fmt.Errorf("unknown view %q", slug)
}

// Valid reports whether v is one of the defined views
func (v View) Valid() bool {
	return v >= 0 && int(v) < len(viewInfo)
}

// Slug is the URL path segment of the view
func (v View) Slug() string {
	if !v.Valid() {
		return ""
	}
	return viewInfo[v].slug
}

// Label is the navigation text of the view
func (v View) Label() string {
	if !v.Valid() {
		return ""
	}
	return viewInfo[v].label
}

// NeedsData reports whether rendering the view reads the trip dataset
func (v View) NeedsData() bool {
	return v.Valid() && viewInfo[v].needData
}

func (v View) String() string {
	return v.Slug()
}
