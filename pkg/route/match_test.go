package route

import (
	"testing"

	"github.com/lintang-b-s/routetracker/pkg/datastructure"

	"github.com/stretchr/testify/assert"
)

func TestMoveIteratorFixOnVertex(t *testing.T) {
	r := buildStraightRoute(5)
	target := r.poly.PointAt(2)

	fix := datastructure.GPSLocation{Lat: target.Lat, Lon: target.Lon, Timestamp: 100.0}
	assert.True(t, r.MoveIterator(fix))

	cursor := r.poly.CurrentIter()
	assert.InDelta(t, target.Lat, cursor.Point.Lat, 1e-7)
	assert.InDelta(t, target.Lon, cursor.Point.Lon, 1e-7)
}

func TestMoveIteratorPredictionWindow(t *testing.T) {
	r := buildStraightRoute(5)

	first := r.poly.PointAt(1)
	assert.True(t, r.MoveIterator(datastructure.GPSLocation{
		Lat: first.Lat, Lon: first.Lon, Timestamp: 100.0,
	}))
	posAfterFirst := r.poly.DistanceFromBeginM()

	// 10 s at ~11 m/s should advance the cursor about one segment
	second := r.poly.PointAt(2)
	assert.True(t, r.MoveIterator(datastructure.GPSLocation{
		Lat: second.Lat, Lon: second.Lon,
		Speed: 11.1, HasSpeed: true, Timestamp: 110.0,
	}))
	assert.Greater(t, r.poly.DistanceFromBeginM(), posAfterFirst)
}

func TestMoveIteratorFarFromRoute(t *testing.T) {
	r := buildStraightRoute(5)

	assert.False(t, r.MoveIterator(datastructure.GPSLocation{
		Lat: 1.0, Lon: 0.002, Timestamp: 100.0,
	}))
	assert.Equal(t, 0, r.poly.CurrentIter().Index)
}

func TestMatchLocationToRouteSnaps(t *testing.T) {
	r := buildStraightRoute(5)
	target := r.poly.PointAt(2)

	// a fix ~11 m north of vertex 2, inside the matching threshold
	fix := datastructure.GPSLocation{Lat: 0.0001, Lon: target.Lon, Timestamp: 100.0}
	assert.True(t, r.MoveIterator(fix))

	var matchingInfo datastructure.RouteMatchingInfo
	r.MatchLocationToRoute(&fix, &matchingInfo)

	assert.True(t, matchingInfo.HasRouteMatching())
	assert.InDelta(t, target.Lat, fix.Lat, 1e-7)
	assert.InDelta(t, target.Lon, fix.Lon, 1e-7)
	// car settings overwrite the bearing with the path direction (due east)
	assert.InDelta(t, 90.0, fix.Bearing, 0.5)
}

func TestMatchLocationToRouteTooFar(t *testing.T) {
	r := buildStraightRoute(5)

	// cursor stays on the origin, the fix is ~111 m away from it
	fix := datastructure.GPSLocation{Lat: 0.001, Lon: 0.0, Timestamp: 100.0}
	var matchingInfo datastructure.RouteMatchingInfo
	r.MatchLocationToRoute(&fix, &matchingInfo)

	assert.False(t, matchingInfo.HasRouteMatching())
	assert.Equal(t, 0.001, fix.Lat)
}

func TestIsCurrentOnEnd(t *testing.T) {
	r := buildStraightRoute(5)
	assert.False(t, r.IsCurrentOnEnd())

	moveCursorToVertex(r, 4)
	assert.True(t, r.IsCurrentOnEnd())
}

func TestCurrentDirectionPoint(t *testing.T) {
	r := buildStraightRoute(5)

	pt, ok := r.CurrentDirectionPoint()
	assert.True(t, ok)
	assert.Equal(t, r.poly.PointAt(1), pt)
}

func TestPedestrianSimplifiedPath(t *testing.T) {
	r := NewRoute("pedestrian", buildStraightPoints(5), "walk", PedestrianRoutingSettings())
	assert.True(t, r.simplifiedPoly.IsValid())

	// collinear points collapse to the two end points
	assert.Equal(t, 2, r.simplifiedPoly.Size())
}
