package datastructure

const (
	// InvalidAltitude marks a vertex whose altitude is not known.
	InvalidAltitude = int16(-512)
)

// SegmentInfo is one exported per-edge record of a route: the edge ending at
// Point, the turn located exactly on its end vertex (zero TurnItem if none),
// cumulative metric and planar distances from the route start, the time
// checkpoint carried forward to this vertex and the congestion class of the
// edge.
type SegmentInfo struct {
	Point             Coordinate `json:"point"`
	Turn              TurnItem   `json:"turn"`
	HasTurn           bool       `json:"has_turn"`
	Altitude          int16      `json:"altitude"`
	DistFromBeginM    float64    `json:"distance_from_begin_meters"`
	DistFromBeginMerc float64    `json:"distance_from_begin_mercator"`
	TimeFromBeginSec  float64    `json:"time_from_begin_sec"`
	Traffic           SpeedGroup `json:"traffic"`
}
