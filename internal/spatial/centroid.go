// Package spatial derives map viewport parameters from trip start coordinates.
package spatial

import (
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"

	"github.com/jengzang/citibike-dashboard-go/internal/models"
)

// Coordinate is a latitude/longitude pair in degrees
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DefaultCenter is lower Manhattan
var DefaultCenter = Coordinate{Lat: 40.7128, Lng: -74.0060}

// Centroid returns the spherical centroid of the points. The second result
// is false when there are no points or they cancel out.
func Centroid(points []Coordinate) (Coordinate, bool) {
	var sum r3.Vector
	for _, p := range points {
		sum = sum.Add(s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lng)).Vector)
	}
	if sum.Norm() < 1e-9 {
		return Coordinate{}, false
	}
	ll := s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	return Coordinate{Lat: ll.Lat.Degrees(), Lng: ll.Lng.Degrees()}, true
}

// Extent describes where trips start
type Extent struct {
	Center       Coordinate `json:"center"`
	RadiusMeters float64    `json:"radius_meters"` // Farthest trip start from the center
	Points       int        `json:"points"`
}

// TripExtent computes the centroid and radius of trip start coordinates.
// Trips without coordinates are skipped.
func TripExtent(trips []models.Trip) (Extent, bool) {
	points := make([]Coordinate, 0, len(trips))
	for _, t := range trips {
		if t.StartLat == nil || t.StartLng == nil {
			continue
		}
		points = append(points, Coordinate{Lat: *t.StartLat, Lng: *t.StartLng})
	}

	center, ok := Centroid(points)
	if !ok {
		return Extent{}, false
	}

	ext := Extent{Center: center, Points: len(points)}
	for _, p := range points {
		if d := HaversineDistance(center.Lat, center.Lng, p.Lat, p.Lng); d > ext.RadiusMeters {
			ext.RadiusMeters = d
		}
	}
	return ext, true
}
