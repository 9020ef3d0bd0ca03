package route

import (
	"github.com/lintang-b-s/routetracker/pkg/datastructure"
	"github.com/lintang-b-s/routetracker/pkg/geo"
)

const (
	// mergeContinuityToleranceM bounds how far the popped endpoint of the
	// current route may lie from the first point of the continuation.
	mergeContinuityToleranceM = 2.0
)

// AppendRoute stitches a newly computed continuation onto this route, used
// after a re-route while keeping the already traveled history. The current
// synthetic endpoint (destination vertex, destination turn, last time entry)
// is removed, every continuation table entry is rebased by the remaining
// vertex count, entries on the shared junction vertex are dropped, and the
// continuation times are shifted to stay relative to the single origin.
func (r *Route) AppendRoute(other *Route) {
	if !other.IsValid() {
		return
	}

	estimatedTime := 0.0
	if !r.times.Empty() {
		estimatedTime = r.times.Back().Value
	}

	if r.poly.Size() != 0 {
		panicIf(r.turns.Empty(), "route: append on a route without turns")
		panicIf(r.times.Empty(), "route: append on a route without times")
		if !r.streets.Empty() {
			panicIf(r.streets.Back().Index+1 >= r.poly.Size(),
				"route: street entry on the synthetic endpoint")
		}

		// remove the synthetic road end point and its turn instruction
		endPt := r.poly.End().Point
		startPt := other.poly.Begin().Point
		panicIf(geo.HaversineDistanceM(endPt.Lat, endPt.Lon, startPt.Lat, startPt.Lon) >=
			mergeContinuityToleranceM, "route: merge boundary farther than continuity tolerance")
		r.poly.PopBack()
		panicIf(!r.turns.Back().Value.IsDestination(),
			"route: popped turn is not the destination marker")
		r.turns.PopBack()
		r.times.PopBack()
	}

	indexOffset := r.poly.Size()

	// appending turns; the shared junction vertex is already represented
	for _, t := range other.turns.Entries() {
		if t.Index == 0 {
			continue
		}
		turn := t.Value
		turn.Index += indexOffset
		r.turns.Append(turn.Index, turn)
	}

	// appending street names
	for _, s := range other.streets.Entries() {
		if s.Index == 0 {
			continue
		}
		r.streets.Append(s.Index+indexOffset, s.Value)
	}

	// appending times
	for _, t := range other.times.Entries() {
		if t.Index == 0 {
			continue
		}
		r.times.Append(t.Index+indexOffset, t.Value+estimatedTime)
	}

	r.appendTraffic(other)

	r.poly.Append(other.poly)
	if len(r.traffic) != 0 {
		panicIf(len(r.traffic)+1 != r.poly.Size(),
			"route: merged traffic size mismatch")
	}
	r.Update()
}

// appendTraffic merges the optional per-edge traffic arrays. Regions without
// traffic data are backfilled with unknown entries so that the merged array
// keeps one entry per edge.
func (r *Route) appendTraffic(other *Route) {
	if len(r.traffic) == 0 && len(other.traffic) == 0 {
		return
	}

	if !r.IsValid() {
		r.traffic = append([]datastructure.SpeedGroup(nil), other.traffic...)
		return
	}

	// the synthetic endpoint is already popped here, so the backfilled
	// array has one entry per remaining vertex (== per merged edge of the
	// old region)
	if len(r.traffic) == 0 {
		r.traffic = make([]datastructure.SpeedGroup, r.poly.Size())
		for i := range r.traffic {
			r.traffic[i] = datastructure.SpeedGroupUnknown
		}
	}
	panicIf(len(r.traffic) != r.poly.Size(), "route: traffic size mismatch before append")

	if len(other.traffic) == 0 {
		panicIf(other.poly.Size() < 1, "route: continuation without vertices")
		for i := 0; i < other.poly.Size()-1; i++ {
			r.traffic = append(r.traffic, datastructure.SpeedGroupUnknown)
		}
	} else {
		r.traffic = append(r.traffic, other.traffic...)
	}
}
