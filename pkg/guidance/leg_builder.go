package guidance

import (
	"errors"
	"fmt"
	"math"

	"github.com/lintang-b-s/routetracker/pkg/datastructure"
	"github.com/lintang-b-s/routetracker/pkg/geo"
	"github.com/lintang-b-s/routetracker/pkg/route"
)

var (
	ErrEdgeCountMismatch = errors.New("leg edge count must be vertex count - 1")
)

// LegEdge describes one edge of a computed leg: the street it runs on, the
// expected travel speed and an optional congestion class.
type LegEdge struct {
	StreetName string                   `json:"street_name"`
	SpeedKmH   float64                  `json:"speed_kmh"`
	Traffic    datastructure.SpeedGroup `json:"traffic"`
	HasTraffic bool                     `json:"has_traffic"`
}

// Leg is an independently computed path portion with per-edge annotations,
// as handed over by the route planner.
type Leg struct {
	Points    []datastructure.Coordinate `json:"points"`
	Edges     []LegEdge                  `json:"edges"`
	Altitudes []int16                    `json:"altitudes,omitempty"`
}

// LegBuilder populates the annotation tables of a freshly constructed route
// from a leg description: turn signs from orientation deltas, time
// checkpoints from edge speeds, street intervals from name changes.
type LegBuilder struct{}

func NewLegBuilder() *LegBuilder {
	return &LegBuilder{}
}

// Apply fills the turn, time, street, altitude and traffic tables of r.
func (lb *LegBuilder) Apply(r *route.Route, leg Leg) error {
	n := len(leg.Points)
	if n < 2 {
		return fmt.Errorf("leg must have at least 2 points, got %d", n)
	}
	if len(leg.Edges) != n-1 {
		return fmt.Errorf("%w: %d edges for %d points", ErrEdgeCountMismatch, len(leg.Edges), n)
	}
	if len(leg.Altitudes) != 0 && len(leg.Altitudes) != n {
		return fmt.Errorf("altitudes must be empty or one per vertex, got %d for %d points",
			len(leg.Altitudes), n)
	}
	for i, e := range leg.Edges {
		if e.SpeedKmH <= 0 {
			return fmt.Errorf("edge %d has non-positive speed %f", i, e.SpeedKmH)
		}
	}

	r.SetTurnInstructions(lb.buildTurns(leg))
	r.SetSectionTimes(lb.buildTimes(leg))
	r.SetStreetNames(lb.buildStreets(leg))
	r.SetAltitudes(leg.Altitudes)
	r.SetTraffic(lb.buildTraffic(leg))
	return nil
}

func (lb *LegBuilder) buildTurns(leg Leg) []datastructure.TurnItem {
	n := len(leg.Points)
	turns := make([]datastructure.TurnItem, 0, 4)

	prevOrientation := geo.Orientation(
		leg.Points[0].Lat, leg.Points[0].Lon, leg.Points[1].Lat, leg.Points[1].Lon)
	for i := 1; i < n-1; i++ {
		next := leg.Points[i+1]
		sign := getTurnDirection(leg.Points[i].Lat, leg.Points[i].Lon,
			next.Lat, next.Lon, prevOrientation)
		prevOrientation = geo.Orientation(leg.Points[i].Lat, leg.Points[i].Lon, next.Lat, next.Lon)

		if sign == datastructure.CONTINUE_ON_STREET {
			continue
		}
		turns = append(turns, datastructure.NewTurnItem(i, sign, leg.Edges[i].StreetName))
	}

	turns = append(turns, datastructure.NewTurnItem(n-1, datastructure.FINISH, ""))
	return turns
}

func (lb *LegBuilder) buildTimes(leg Leg) []route.TimeCheckpoint {
	n := len(leg.Points)
	times := make([]route.TimeCheckpoint, 0, 4)

	cumulative := 0.0
	lastAppended := 0.0
	for i := 1; i < n; i++ {
		prev := leg.Points[i-1]
		cur := leg.Points[i]
		distM := geo.HaversineDistanceM(prev.Lat, prev.Lon, cur.Lat, cur.Lon)
		cumulative += distM / (leg.Edges[i-1].SpeedKmH / 3.6)

		speedChanges := i < n-1 && leg.Edges[i].SpeedKmH != leg.Edges[i-1].SpeedKmH
		if (speedChanges || i == n-1) && cumulative > lastAppended {
			times = append(times, route.TimeCheckpoint{Index: i, TimeSec: cumulative})
			lastAppended = cumulative
		}
	}
	return times
}

func (lb *LegBuilder) buildStreets(leg Leg) []route.StreetEntry {
	streets := make([]route.StreetEntry, 0, 4)
	streets = append(streets, route.StreetEntry{Index: 0, Name: leg.Edges[0].StreetName})
	for i := 1; i < len(leg.Edges); i++ {
		if leg.Edges[i].StreetName != leg.Edges[i-1].StreetName {
			streets = append(streets, route.StreetEntry{Index: i, Name: leg.Edges[i].StreetName})
		}
	}
	return streets
}

func (lb *LegBuilder) buildTraffic(leg Leg) []datastructure.SpeedGroup {
	anyKnown := false
	for _, e := range leg.Edges {
		if e.HasTraffic {
			anyKnown = true
			break
		}
	}
	if !anyKnown {
		return nil
	}

	traffic := make([]datastructure.SpeedGroup, len(leg.Edges))
	for i, e := range leg.Edges {
		if e.HasTraffic {
			traffic[i] = e.Traffic
		} else {
			traffic[i] = datastructure.SpeedGroupUnknown
		}
	}
	return traffic
}

func getTurnDirection(prevLat, prevLon, lat, lon, prevOrientation float64) int {
	delta := geo.CalculateOrientationDelta(prevLat, prevLon, lat, lon, prevOrientation)
	absDelta := math.Abs(delta)
	deltaDegree := absDelta * (180 / math.Pi)
	if deltaDegree < 12 {
		// 12°
		return datastructure.CONTINUE_ON_STREET
	} else if deltaDegree < 40 {
		if delta < 0 {
			return datastructure.TURN_SLIGHT_LEFT
		}
		return datastructure.TURN_SLIGHT_RIGHT
	} else if deltaDegree < 105 {
		if delta < 0 {
			return datastructure.TURN_LEFT
		}
		return datastructure.TURN_RIGHT
	} else if delta < 0 {
		return datastructure.TURN_SHARP_LEFT
	}
	return datastructure.TURN_SHARP_RIGHT
}
