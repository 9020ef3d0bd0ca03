package route

import (
	"github.com/lintang-b-s/routetracker/pkg/datastructure"
	"github.com/lintang-b-s/routetracker/pkg/geo"
)

// Subroute interface over a route with exactly one subroute, equal to the
// whole route. The subroute id is assigned once by an external scheduler.

// SubrouteSettings reports how one subroute is followed.
type SubrouteSettings struct {
	Settings RoutingSettings `json:"settings"`
	Router   string          `json:"router"`
	Uid      uint64          `json:"uid"`
}

func (r *Route) SubrouteCount() int {
	if r.IsValid() {
		return 1
	}
	return 0
}

func (r *Route) SubrouteSettings(segmentIdx int) SubrouteSettings {
	panicIf(segmentIdx >= r.SubrouteCount(), "route: subroute index out of range")
	return SubrouteSettings{
		Settings: r.settings,
		Router:   r.router,
		Uid:      r.subrouteUid,
	}
}

func (r *Route) SetSubrouteUid(segmentIdx int, uid uint64) {
	panicIf(segmentIdx >= r.SubrouteCount(), "route: subroute index out of range")
	r.subrouteUid = uid
}

// SubrouteInfo builds one record per path edge: the edge end point, a turn
// sitting exactly on the end vertex, carried-forward checkpoint time,
// cumulative metric and planar distances, altitude and edge traffic class.
func (r *Route) SubrouteInfo(segmentIdx int) []datastructure.SegmentInfo {
	panicIf(segmentIdx >= r.SubrouteCount(), "route: subroute index out of range")
	panicIf(!r.IsValid(), "route: segment export on an invalid route")

	points := r.poly.Points()
	polySz := r.poly.Size()

	panicIf(r.turns.Empty(), "route: turn table empty on a non-empty path")
	panicIf(r.turns.Back().Index >= polySz, "route: turn index out of path range")
	panicIf(!r.turns.IsStrictlySorted(), "route: turn table not sorted")

	if len(r.altitudes) != 0 {
		panicIf(len(r.altitudes) != polySz, "route: altitude array size mismatch")
	}

	panicIf(r.times.Empty(), "route: time table empty on a non-empty path")
	panicIf(r.times.Back().Index >= polySz, "route: time index out of path range")
	panicIf(!r.times.IsStrictlySorted(), "route: time table not sorted")

	if len(r.traffic) != 0 {
		panicIf(len(r.traffic)+1 != polySz, "route: traffic array size mismatch")
	}

	// a turn at the very beginning of the route can not belong to any edge
	turnItemIdx := 0
	if r.turns.At(0).Index == 0 {
		turnItemIdx = 1
	}

	lastTimeSec := 0.0
	timeIdx := 0

	distFromBeginM := 0.0
	distFromBeginMerc := 0.0
	info := make([]datastructure.SegmentInfo, 0, polySz-1)
	for i := 1; i < polySz; i++ {
		var turn datastructure.TurnItem
		hasTurn := false
		if turnItemIdx < r.turns.Len() && r.turns.At(turnItemIdx).Index == i {
			turn = r.turns.At(turnItemIdx).Value
			hasTurn = true
			turnItemIdx++
		}

		for timeIdx < r.times.Len() && r.times.At(timeIdx).Index <= i {
			lastTimeSec = r.times.At(timeIdx).Value
			timeIdx++
		}

		distFromBeginM += geo.HaversineDistanceM(points[i-1].Lat, points[i-1].Lon,
			points[i].Lat, points[i].Lon)
		distFromBeginMerc += geo.MercatorLength(points[i-1], points[i])

		altitude := datastructure.InvalidAltitude
		if len(r.altitudes) != 0 {
			altitude = r.altitudes[i]
		}
		traffic := datastructure.SpeedGroupUnknown
		if len(r.traffic) != 0 {
			traffic = r.traffic[i-1]
		}

		info = append(info, datastructure.SegmentInfo{
			Point:             points[i],
			Turn:              turn,
			HasTurn:           hasTurn,
			Altitude:          altitude,
			DistFromBeginM:    distFromBeginM,
			DistFromBeginMerc: distFromBeginMerc,
			TimeFromBeginSec:  lastTimeSec,
			Traffic:           traffic,
		})
	}
	return info
}
