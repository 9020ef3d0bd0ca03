package geo

import (
	"math"
	"testing"

	"github.com/lintang-b-s/routetracker/pkg/datastructure"
)

func TestHaversineDistance(t *testing.T) {
	// one thousandth of a degree of longitude on the equator
	distM := HaversineDistanceM(0.0, 0.0, 0.0, 0.001)
	if math.Abs(distM-111.2) > 0.5 {
		t.Errorf("expected ~111.2 m, got %f", distM)
	}

	distKM := CalculateHaversineDistance(-7.565837, 110.831586, -7.566063, 110.832379)
	if distKM <= 0 || distKM > 0.2 {
		t.Errorf("expected a distance below 200 m, got %f km", distKM)
	}
}

func TestHaversineDistanceSubCentimeter(t *testing.T) {
	// millimetre-scale separations must not collapse to zero, the
	// projector ranks near-vertex candidates by these distances
	distM := HaversineDistanceM(0.0, 0.0, 0.0, 1e-8)
	if distM <= 0 {
		t.Errorf("expected a positive distance for 1e-8 deg, got %g", distM)
	}
	if math.Abs(distM-0.0011) > 0.0002 {
		t.Errorf("expected ~1.1 mm, got %g m", distM)
	}

	if d := HaversineDistanceM(0.0, 0.0, 0.0, 5e-7); d <= 0 {
		t.Errorf("expected a positive distance for 5e-7 deg, got %g", d)
	}

	if d := HaversineDistanceM(0.0, 0.0, 0.0, 0.0); d != 0 {
		t.Errorf("expected zero for identical points, got %g", d)
	}
}

func TestBearingTo(t *testing.T) {
	east := BearingTo(0.0, 0.0, 0.0, 0.001)
	if math.Abs(east-90.0) > 0.01 {
		t.Errorf("expected bearing 90, got %f", east)
	}

	north := BearingTo(0.0, 0.0, 0.001, 0.0)
	if math.Abs(north-0.0) > 0.01 {
		t.Errorf("expected bearing 0, got %f", north)
	}
}

func TestGetDestinationPointRoundTrip(t *testing.T) {
	lat, lon := GetDestinationPoint(0.0, 0.0, 90.0, 0.1)
	back := HaversineDistanceM(0.0, 0.0, lat, lon)
	if math.Abs(back-100.0) > 0.5 {
		t.Errorf("expected 100 m, got %f", back)
	}
}

func TestRectAroundPointContains(t *testing.T) {
	rect := RectAroundPoint(0.0, 0.002, 50.0)
	if !rect.Contains(datastructure.NewCoordinate(0.0, 0.002)) {
		t.Errorf("rect must contain its center")
	}
	if rect.Contains(datastructure.NewCoordinate(0.0, 0.003)) {
		t.Errorf("rect must not contain a point 111 m away")
	}
}

func TestProjectPointToSegment(t *testing.T) {
	segStart := datastructure.NewCoordinate(0.0, 0.0)
	segEnd := datastructure.NewCoordinate(0.0, 0.002)

	proj := ProjectPointToSegment(segStart, segEnd, datastructure.NewCoordinate(0.0001, 0.001))
	if math.Abs(proj.Lat) > 1e-6 || math.Abs(proj.Lon-0.001) > 1e-6 {
		t.Errorf("expected projection near (0, 0.001), got (%f, %f)", proj.Lat, proj.Lon)
	}

	// a point past the segment end clamps to the end point
	clamped := ProjectPointToSegment(segStart, segEnd, datastructure.NewCoordinate(0.0, 0.005))
	if math.Abs(clamped.Lon-0.002) > 1e-6 {
		t.Errorf("expected clamp to segment end, got lon %f", clamped.Lon)
	}
}

func TestRamerDouglasPeucker(t *testing.T) {
	lineCoords := []datastructure.Coordinate{
		{Lat: -7.565837, Lon: 110.831586},
		{Lat: -7.566063, Lon: 110.832379},
		{Lat: -7.566406, Lon: 110.833232},
	}

	simplified := RamerDouglasPeucker(lineCoords, PedestrianSimplifyThresholdM)
	if len(simplified) > 2 {
		t.Errorf("expected 2, got %d", len(simplified))
	}
}

func TestMercatorDistanceAlongPath(t *testing.T) {
	path := []datastructure.Coordinate{
		datastructure.NewCoordinate(0.0, 0.0),
		datastructure.NewCoordinate(0.0, 0.001),
		datastructure.NewCoordinate(0.0, 0.002),
	}

	whole := MercatorDistanceAlongPath(0, 2, path)
	half := MercatorDistanceAlongPath(0, 1, path)
	if whole <= 0 {
		t.Errorf("expected positive planar length, got %f", whole)
	}
	if math.Abs(whole-2*half) > 1e-9 {
		t.Errorf("expected symmetric halves, got %f and %f", whole, half)
	}
}
