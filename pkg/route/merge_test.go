package route

import (
	"testing"

	"github.com/lintang-b-s/routetracker/pkg/datastructure"

	"github.com/stretchr/testify/assert"
)

// buildLeadRoute is the already followed part: three vertices ending on a
// synthetic destination, the shape every computed route has before a merge.
func buildLeadRoute() *Route {
	r := NewRoute("vehicle", buildStraightPoints(3), "lead", CarRoutingSettings())
	r.SetTurnInstructions([]datastructure.TurnItem{
		datastructure.NewTurnItem(2, datastructure.FINISH, ""),
	})
	r.SetSectionTimes([]TimeCheckpoint{{Index: 2, TimeSec: 20.0}})
	r.SetStreetNames([]StreetEntry{{Index: 0, Name: "A"}})
	return r
}

// buildContinuationRoute starts exactly on the lead route's last vertex.
func buildContinuationRoute() *Route {
	points := buildStraightPoints(5)[2:]
	r := NewRoute("vehicle", points, "continuation", CarRoutingSettings())
	r.SetTurnInstructions([]datastructure.TurnItem{
		datastructure.NewTurnItem(2, datastructure.FINISH, ""),
	})
	r.SetSectionTimes([]TimeCheckpoint{{Index: 2, TimeSec: 15.0}})
	r.SetStreetNames([]StreetEntry{
		{Index: 0, Name: "A"},
		{Index: 1, Name: "B"},
	})
	return r
}

func TestAppendRouteTables(t *testing.T) {
	r := buildLeadRoute()
	r.AppendRoute(buildContinuationRoute())

	assert.Equal(t, 5, r.poly.Size())

	// merged turn indices strictly increasing, destination on the final vertex
	assert.True(t, r.turns.IsStrictlySorted())
	assert.Equal(t, 4, r.turns.Back().Index)
	assert.True(t, r.turns.Back().Value.IsDestination())

	// continuation times shifted to stay relative to the single origin
	assert.True(t, r.times.IsStrictlySorted())
	assert.Equal(t, 4, r.times.Back().Index)
	assert.InDelta(t, 35.0, r.times.Back().Value, 1e-9)
	assert.InDelta(t, 35.0, r.TotalTimeSec(), 1e-9)

	// the junction street entry is dropped, the rest rebased
	moveCursorToVertex(r, 1)
	assert.Equal(t, "A", r.CurrentStreetName())
	moveCursorToVertex(r, 3)
	assert.Equal(t, "B", r.CurrentStreetName())
}

func TestAppendRouteEmptyContinuation(t *testing.T) {
	r := buildLeadRoute()
	empty := NewRoute("vehicle", nil, "empty", CarRoutingSettings())

	r.AppendRoute(empty)
	assert.Equal(t, 3, r.poly.Size())
	assert.Equal(t, 2, r.turns.Back().Index)
}

func TestAppendRouteContinuityViolation(t *testing.T) {
	r := buildLeadRoute()
	far := NewRoute("vehicle", []datastructure.Coordinate{
		datastructure.NewCoordinate(1.0, 1.0),
		datastructure.NewCoordinate(1.0, 1.001),
	}, "far", CarRoutingSettings())

	assert.Panics(t, func() {
		r.AppendRoute(far)
	})
}

func TestAppendTrafficBackfill(t *testing.T) {
	r := buildLeadRoute()
	other := buildContinuationRoute()
	other.SetTraffic([]datastructure.SpeedGroup{
		datastructure.SpeedGroupG3,
		datastructure.SpeedGroupG1,
	})

	r.AppendRoute(other)

	// lead region backfilled with unknown, continuation values preserved
	assert.Equal(t, r.poly.Size()-1, len(r.traffic))
	assert.Equal(t, []datastructure.SpeedGroup{
		datastructure.SpeedGroupUnknown,
		datastructure.SpeedGroupUnknown,
		datastructure.SpeedGroupG3,
		datastructure.SpeedGroupG1,
	}, r.traffic)
}

func TestAppendTrafficBothSides(t *testing.T) {
	r := buildLeadRoute()
	r.SetTraffic([]datastructure.SpeedGroup{
		datastructure.SpeedGroupG0,
		datastructure.SpeedGroupG5,
	})
	other := buildContinuationRoute()

	r.AppendRoute(other)

	// continuation without data padded with unknown, one entry per edge
	assert.Equal(t, r.poly.Size()-1, len(r.traffic))
	assert.Equal(t, datastructure.SpeedGroupG0, r.traffic[0])
	assert.Equal(t, datastructure.SpeedGroupG5, r.traffic[1])
	assert.Equal(t, datastructure.SpeedGroupUnknown, r.traffic[2])
	assert.Equal(t, datastructure.SpeedGroupUnknown, r.traffic[3])
}
