package geo

import (
	"github.com/lintang-b-s/routetracker/pkg/datastructure"

	"github.com/golang/geo/s2"
)

// ProjectPointToSegment returns the closest point on the segment (segStart,
// segEnd) to p.
func ProjectPointToSegment(segStart, segEnd, p datastructure.Coordinate) datastructure.Coordinate {
	aS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(segStart.Lat, segStart.Lon))
	bS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(segEnd.Lat, segEnd.Lon))
	pS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon))

	projection := s2.Project(pS2, aS2, bS2)
	projectLatLng := s2.LatLngFromPoint(projection)
	return datastructure.NewCoordinate(projectLatLng.Lat.Degrees(), projectLatLng.Lng.Degrees())
}

// PointLinePerpendicularDistance is the distance in meters from p to the
// segment (segStart, segEnd).
func PointLinePerpendicularDistance(segStart, segEnd, p datastructure.Coordinate) float64 {
	proj := ProjectPointToSegment(segStart, segEnd, p)
	return HaversineDistanceM(p.Lat, p.Lon, proj.Lat, proj.Lon)
}
