package route

import (
	"github.com/lintang-b-s/routetracker/pkg/datastructure"
	"github.com/lintang-b-s/routetracker/pkg/followline"
	"github.com/lintang-b-s/routetracker/pkg/geo"
	"github.com/lintang-b-s/routetracker/pkg/util"
)

const (
	// locationTimeThresholdSec bounds the Δt between consecutive fixes used
	// for arc-length prediction; larger gaps mean a stale or garbled
	// timestamp and disable prediction for that fix.
	locationTimeThresholdSec = 60.0
	// onEndToleranceM is the remaining distance under which the route
	// counts as finished.
	onEndToleranceM = 10.0
	// StreetNameLinkM gates the look-ahead street announcement: a street
	// starting farther ahead than this is not reported yet.
	StreetNameLinkM = 400.0
)

// TimeCheckpoint is one time-table entry: cumulative travel seconds from the
// route start at the given path vertex.
type TimeCheckpoint struct {
	Index   int     `json:"index"`
	TimeSec float64 `json:"time_sec"`
}

// StreetEntry is one street-table entry: the street name valid from Index up
// to (exclusive) the next entry's index. Empty names mark unnamed stretches.
type StreetEntry struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// Route tracks a moving agent's progress along a precomputed path. It owns
// the path (through a followed polyline), the index-keyed annotation tables
// filled in by a leg builder after construction, and answers the navigation
// query surface. Reads and mutations must be serialized by the caller.
type Route struct {
	router   string
	settings RoutingSettings
	name     string

	poly           *followline.FollowedPolyline
	simplifiedPoly *followline.FollowedPolyline

	// timestamp of the previous matched fix, 0 when none recorded yet
	currentTime float64

	turns   *datastructure.IndexedTable[datastructure.TurnItem]
	times   *datastructure.IndexedTable[float64]
	streets *datastructure.IndexedTable[string]

	altitudes []int16
	traffic   []datastructure.SpeedGroup

	absentCountries map[string]struct{}
	subrouteUid     uint64
}

func NewRoute(router string, points []datastructure.Coordinate, name string,
	settings RoutingSettings) *Route {
	r := &Route{
		router:          router,
		settings:        settings,
		name:            name,
		poly:            followline.NewFollowedPolyline(points),
		simplifiedPoly:  followline.NewFollowedPolyline(nil),
		turns:           datastructure.NewIndexedTable[datastructure.TurnItem](),
		times:           datastructure.NewIndexedTable[float64](),
		streets:         datastructure.NewIndexedTable[string](),
		absentCountries: make(map[string]struct{}),
	}
	r.Update()
	return r
}

func (r *Route) IsValid() bool {
	return r.poly.IsValid()
}

func (r *Route) Router() string {
	return r.router
}

func (r *Route) Name() string {
	return r.name
}

func (r *Route) Settings() RoutingSettings {
	return r.settings
}

func (r *Route) Poly() *followline.FollowedPolyline {
	return r.poly
}

// Table setters, called by the leg builder right after construction.

func (r *Route) SetTurnInstructions(turns []datastructure.TurnItem) {
	r.turns = datastructure.NewIndexedTable[datastructure.TurnItem]()
	for _, t := range turns {
		r.turns.Append(t.Index, t)
	}
}

func (r *Route) SetSectionTimes(times []TimeCheckpoint) {
	r.times = datastructure.NewIndexedTable[float64]()
	for _, t := range times {
		r.times.Append(t.Index, t.TimeSec)
	}
}

func (r *Route) SetStreetNames(streets []StreetEntry) {
	r.streets = datastructure.NewIndexedTable[string]()
	for _, s := range streets {
		r.streets.Append(s.Index, s.Name)
	}
}

func (r *Route) SetAltitudes(altitudes []int16) {
	r.altitudes = altitudes
}

func (r *Route) SetTraffic(traffic []datastructure.SpeedGroup) {
	r.traffic = traffic
}

func (r *Route) Traffic() []datastructure.SpeedGroup {
	return r.traffic
}

// AddAbsentCountry records a region the computed route could not reach.
// Empty names and duplicates are ignored.
func (r *Route) AddAbsentCountry(name string) {
	if name != "" {
		r.absentCountries[name] = struct{}{}
	}
}

func (r *Route) AbsentCountries() []string {
	countries := make([]string, 0, len(r.absentCountries))
	for name := range r.absentCountries {
		countries = append(countries, name)
	}
	return util.QuickSortG(countries, func(a, b string) int {
		if a < b {
			return -1
		} else if a > b {
			return 1
		}
		return 0
	})
}

// Distance queries.

func (r *Route) TotalDistanceM() float64 {
	if !r.poly.IsValid() {
		return 0.0
	}
	return r.poly.TotalDistanceM()
}

func (r *Route) DistanceFromBeginM() float64 {
	if !r.poly.IsValid() {
		return 0.0
	}
	return r.poly.DistanceFromBeginM()
}

func (r *Route) DistanceToEndM() float64 {
	if !r.poly.IsValid() {
		return 0.0
	}
	return r.poly.DistanceToEndM()
}

func (r *Route) MercatorDistanceFromBegin() float64 {
	return r.poly.MercatorDistanceFromBegin()
}

// Time queries.

func (r *Route) TotalTimeSec() float64 {
	if r.times.Empty() {
		return 0.0
	}
	return r.times.Back().Value
}

// CurrentTimeToEndSec interpolates the remaining travel time: the fixed time
// from the next checkpoint to the destination, plus the current
// inter-checkpoint segment time scaled by the remaining-distance fraction.
func (r *Route) CurrentTimeToEndSec() float64 {
	polySz := r.poly.Size()
	if r.times.Empty() || polySz == 0 {
		panicIf(r.times.Empty() && polySz != 0, "route: time table empty on a non-empty path")
		return 0.0
	}

	curIdx := r.poly.CurrentIter().Index
	target := r.times.LowerBound(curIdx)
	if target == r.times.Len() {
		return 0.0
	}

	targetEntry := r.times.At(target)
	panicIf(targetEntry.Index >= polySz, "route: time checkpoint out of path range")

	segTime := targetEntry.Value
	prevIdx := 0
	if target > 0 {
		prev := r.times.At(target - 1)
		segTime -= prev.Value
		prevIdx = prev.Index
	}

	segDist := r.poly.DistanceM(r.poly.IterToIndex(prevIdx), r.poly.IterToIndex(targetEntry.Index))
	remDist := r.poly.DistanceM(r.poly.CurrentIter(), r.poly.IterToIndex(targetEntry.Index))

	fixed := r.TotalTimeSec() - targetEntry.Value
	if almostZero(segDist) {
		// degenerate zero-length checkpoint segment, fractional term dropped
		return fixed
	}
	return fixed + segTime*(remDist/segDist)
}

// Turn queries.

// currentTurnPos is the position in the turn table of the turn ahead of the
// cursor. Standing exactly on a turn vertex yields the next turn
// (upper-bound semantics).
func (r *Route) currentTurnPos() int {
	if r.turns.Empty() {
		panicIf(r.poly.IsValid(), "route: turn table empty on a non-empty path")
		return 0
	}
	return r.turns.UpperBound(r.poly.CurrentIter().Index)
}

// CurrentTurn returns the turn ahead of the cursor and the arc length to it.
func (r *Route) CurrentTurn() (float64, datastructure.TurnItem, bool) {
	pos := r.currentTurnPos()
	if pos == r.turns.Len() {
		return 0.0, datastructure.TurnItem{}, false
	}
	turn := r.turns.At(pos).Value
	dist := r.poly.DistanceM(r.poly.CurrentIter(), r.poly.IterToIndex(turn.Index))
	return dist, turn, true
}

// NextTurn returns the turn after the current one, if any remains.
func (r *Route) NextTurn() (float64, datastructure.TurnItem, bool) {
	pos := r.currentTurnPos()
	if pos == r.turns.Len() || pos+1 == r.turns.Len() {
		return 0.0, datastructure.TurnItem{}, false
	}
	turn := r.turns.At(pos + 1).Value
	dist := r.poly.DistanceM(r.poly.CurrentIter(), r.poly.IterToIndex(turn.Index))
	return dist, turn, true
}

// NextTurns returns the current turn plus at most one following turn, each
// with its distance from the cursor.
func (r *Route) NextTurns() ([]datastructure.TurnItemDist, bool) {
	currentDist, currentTurn, ok := r.CurrentTurn()
	if !ok {
		return nil, false
	}
	turns := []datastructure.TurnItemDist{{Turn: currentTurn, DistMeters: currentDist}}

	if nextDist, nextTurn, ok := r.NextTurn(); ok {
		turns = append(turns, datastructure.TurnItemDist{Turn: nextTurn, DistMeters: nextDist})
	}
	return turns, true
}

// TurnsDistances returns the cumulative planar distance from the route start
// to every displayed turn. Turns on the path side points (first or last
// vertex) can not be displayed properly and are skipped.
func (r *Route) TurnsDistances() []float64 {
	distances := make([]float64, 0, r.turns.Len())
	if !r.poly.IsValid() {
		return distances
	}

	points := r.poly.Points()
	mercatorDistance := 0.0
	for pos := 0; pos < r.turns.Len(); pos++ {
		turn := r.turns.At(pos)
		if turn.Index == 0 || turn.Index == len(points)-1 {
			continue
		}

		formerTurnIndex := 0
		if pos > 0 {
			formerTurnIndex = r.turns.At(pos - 1).Index
		}

		mercatorDistance += geo.MercatorDistanceAlongPath(formerTurnIndex, turn.Index, points)
		distances = append(distances, mercatorDistance)
	}
	return distances
}

// Street queries.

// CurrentStreetName returns the street covering the cursor vertex, empty for
// pedestrian-only legs with no street table.
func (r *Route) CurrentStreetName() string {
	pos := r.streets.IntervalAt(r.poly.CurrentIter().Index)
	if pos < 0 {
		return ""
	}
	return r.streets.At(pos).Value
}

// StreetNameAfterIdx looks ahead from vertex idx for the next named street
// and reports it only when it starts within StreetNameLinkM; a street
// farther ahead is not relevant yet.
func (r *Route) StreetNameAfterIdx(idx int) string {
	polyIter := r.poly.IterToIndex(idx)
	if !polyIter.IsValid() {
		return ""
	}
	pos := r.streets.IntervalAt(idx)
	if pos < 0 {
		return ""
	}
	for ; pos < r.streets.Len(); pos++ {
		entry := r.streets.At(pos)
		if entry.Value == "" {
			continue
		}
		startIdx := entry.Index
		if startIdx < idx {
			startIdx = idx
		}
		if r.poly.DistanceM(polyIter, r.poly.IterToIndex(startIdx)) < StreetNameLinkM {
			return entry.Value
		}
		return ""
	}
	return ""
}

// Update rebuilds the simplified-path cache and resets the tracking clock.
// Called after construction and after every merge.
func (r *Route) Update() {
	if !r.poly.IsValid() {
		return
	}
	if r.settings.KeepPedestrianInfo {
		simplified := geo.RamerDouglasPeucker(r.poly.Points(), geo.PedestrianSimplifyThresholdM)
		r.simplifiedPoly = followline.NewFollowedPolyline(simplified)
	} else {
		// release memory, the simplified geometry is unused
		r.simplifiedPoly = followline.NewFollowedPolyline(nil)
	}
	r.currentTime = 0.0
}

// DebugPrint returns the textual path description for diagnostics.
func DebugPrint(r *Route) string {
	return datastructure.CreatePolyline(r.poly.Points())
}

func almostZero(v float64) bool {
	return v < 1e-9 && v > -1e-9
}

func panicIf(cond bool, msg string) {
	if cond {
		panic(msg)
	}
}
