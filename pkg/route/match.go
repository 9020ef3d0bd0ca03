package route

import (
	"math"

	"github.com/lintang-b-s/routetracker/pkg/datastructure"
	"github.com/lintang-b-s/routetracker/pkg/geo"
)

// MoveIterator advances the route cursor toward the given fix. When the
// previous fix is recent enough and the new fix reports a speed, the search
// is biased toward the predicted arc-length offset speed*Δt instead of a
// plain nearest-point scan. Returns whether a valid projection was found.
func (r *Route) MoveIterator(info datastructure.GPSLocation) bool {
	predictDistance := -1.0
	if r.currentTime > 0.0 && info.HasSpeed {
		deltaT := info.Timestamp - r.currentTime
		if deltaT > 0.0 && deltaT < locationTimeThresholdSec {
			predictDistance = info.Speed * deltaT
		}
	}

	rect := geo.RectAroundPoint(info.Lat, info.Lon,
		math.Max(r.settings.MatchingThresholdM, info.HorizontalAccuracy))
	res := r.poly.UpdateProjectionByPrediction(rect, predictDistance)
	if r.simplifiedPoly.IsValid() {
		r.simplifiedPoly.UpdateProjectionByPrediction(rect, predictDistance)
	}

	r.currentTime = info.Timestamp
	return res.IsValid()
}

// MatchLocationToRoute snaps the fix coordinates (and optionally bearing)
// onto the cursor projection when the fix lies within the matching threshold
// of the route, and reports the snap to the diagnostics sink.
func (r *Route) MatchLocationToRoute(location *datastructure.GPSLocation,
	routeMatchingInfo *datastructure.RouteMatchingInfo) {
	if !r.poly.IsValid() {
		return
	}
	iter := r.poly.CurrentIter()
	distFromRouteM := geo.HaversineDistanceM(iter.Point.Lat, iter.Point.Lon,
		location.Lat, location.Lon)
	if distFromRouteM >= r.settings.MatchingThresholdM {
		return
	}

	location.Lat = iter.Point.Lat
	location.Lon = iter.Point.Lon
	if r.settings.MatchBearing {
		location.Bearing = r.polySegBearing(iter.Index)
	}
	routeMatchingInfo.Set(iter.Point, iter.Index, r.MercatorDistanceFromBegin())
}

// polySegBearing is the compass bearing of the path segment starting at
// vertex ind, skipping consecutive near-duplicate points.
func (r *Route) polySegBearing(ind int) float64 {
	polySz := r.poly.Size()
	panicIf(ind+1 >= polySz, "route: segment bearing past the last vertex")

	p1 := r.poly.PointAt(ind)
	i := ind + 1
	p2 := r.poly.PointAt(i)
	for samePoint(p1, p2) && i+1 < polySz {
		i++
		p2 = r.poly.PointAt(i)
	}
	if samePoint(p1, p2) {
		return 0.0
	}
	return geo.BearingTo(p1.Lat, p1.Lon, p2.Lat, p2.Lon)
}

// IsCurrentOnEnd reports whether the cursor is within the end tolerance of
// the destination.
func (r *Route) IsCurrentOnEnd() bool {
	return r.poly.DistanceToEndM() < onEndToleranceM
}

// CurrentDirectionPoint returns the point the UI direction arrow should aim
// at, preferring the simplified path in pedestrian-mode display.
func (r *Route) CurrentDirectionPoint() (datastructure.Coordinate, bool) {
	if r.settings.KeepPedestrianInfo && r.simplifiedPoly.IsValid() {
		return r.simplifiedPoly.GetCurrentDirectionPoint(onEndToleranceM)
	}
	return r.poly.GetCurrentDirectionPoint(onEndToleranceM)
}

func samePoint(a, b datastructure.Coordinate) bool {
	return a.Lat == b.Lat && a.Lon == b.Lon
}
