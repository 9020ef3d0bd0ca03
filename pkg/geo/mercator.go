package geo

import (
	"math"

	"github.com/lintang-b-s/routetracker/pkg/datastructure"
)

// Spherical-mercator planar projection. Used for the "unprojected" cumulative
// distances of segment export and the turn-overview distances, where the
// display layer wants planar lengths rather than geodesic meters.

func MercatorFromLatLon(c datastructure.Coordinate) (x, y float64) {
	x = earthRadiusM * degreeToRadians(c.Lon)
	y = earthRadiusM * math.Log(math.Tan(math.Pi/4.0+degreeToRadians(c.Lat)/2.0))
	return x, y
}

// MercatorLength is the planar euclidean distance between two points after
// mercator projection.
func MercatorLength(a, b datastructure.Coordinate) float64 {
	ax, ay := MercatorFromLatLon(a)
	bx, by := MercatorFromLatLon(b)
	return math.Hypot(bx-ax, by-ay)
}

// MercatorDistanceAlongPath sums planar segment lengths between two vertex
// indices of a path.
func MercatorDistanceAlongPath(startIdx, endIdx int, path []datastructure.Coordinate) float64 {
	dist := 0.0
	for i := startIdx + 1; i <= endIdx; i++ {
		dist += MercatorLength(path[i-1], path[i])
	}
	return dist
}

// Rect is a geographic search window.
type Rect struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

func (r Rect) Contains(c datastructure.Coordinate) bool {
	return c.Lat >= r.MinLat && c.Lat <= r.MaxLat &&
		c.Lon >= r.MinLon && c.Lon <= r.MaxLon
}

// RectAroundPoint builds the search window centered on (lat, lon) with the
// given half-width in meters.
func RectAroundPoint(lat, lon, halfWidthM float64) Rect {
	upperLat, upperLon := GetDestinationPoint(lat, lon, 45, halfWidthM*math.Sqrt2/1000.0)
	lowerLat, lowerLon := GetDestinationPoint(lat, lon, 225, halfWidthM*math.Sqrt2/1000.0)
	return Rect{
		MinLat: math.Min(lowerLat, upperLat),
		MinLon: math.Min(lowerLon, upperLon),
		MaxLat: math.Max(lowerLat, upperLat),
		MaxLon: math.Max(lowerLon, upperLon),
	}
}
