package followline

import (
	"github.com/lintang-b-s/routetracker/pkg/datastructure"
	"github.com/lintang-b-s/routetracker/pkg/geo"
)

// Iter is a cursor on a followed polyline: a point lying on the segment that
// starts at vertex Index. Index == -1 marks an invalid cursor.
type Iter struct {
	Point datastructure.Coordinate
	Index int
}

func InvalidIter() Iter {
	return Iter{Index: -1}
}

func (it Iter) IsValid() bool {
	return it.Index >= 0
}

// FollowedPolyline owns an ordered point path together with a movable
// arc-length cursor. It answers total/consumed/remaining distance queries and
// re-projects GPS fixes onto the path inside a search window, optionally
// biased toward a predicted arc-length offset.
type FollowedPolyline struct {
	points     []datastructure.Coordinate
	prefixM    []float64 // cumulative haversine meters up to each vertex
	prefixMerc []float64 // cumulative planar mercator length up to each vertex
	current    Iter
}

func NewFollowedPolyline(points []datastructure.Coordinate) *FollowedPolyline {
	fp := &FollowedPolyline{}
	fp.assign(points)
	return fp
}

func (fp *FollowedPolyline) assign(points []datastructure.Coordinate) {
	fp.points = points
	fp.prefixM = make([]float64, len(points))
	fp.prefixMerc = make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		fp.prefixM[i] = fp.prefixM[i-1] +
			geo.HaversineDistanceM(points[i-1].Lat, points[i-1].Lon, points[i].Lat, points[i].Lon)
		fp.prefixMerc[i] = fp.prefixMerc[i-1] + geo.MercatorLength(points[i-1], points[i])
	}
	if len(points) > 0 {
		fp.current = Iter{Point: points[0], Index: 0}
	} else {
		fp.current = InvalidIter()
	}
}

// IsValid reports whether the polyline has at least one segment.
func (fp *FollowedPolyline) IsValid() bool {
	return fp != nil && len(fp.points) > 1
}

func (fp *FollowedPolyline) Size() int {
	return len(fp.points)
}

func (fp *FollowedPolyline) Points() []datastructure.Coordinate {
	return fp.points
}

func (fp *FollowedPolyline) PointAt(i int) datastructure.Coordinate {
	return fp.points[i]
}

func (fp *FollowedPolyline) Begin() Iter {
	if len(fp.points) == 0 {
		return InvalidIter()
	}
	return Iter{Point: fp.points[0], Index: 0}
}

func (fp *FollowedPolyline) End() Iter {
	if len(fp.points) == 0 {
		return InvalidIter()
	}
	return Iter{Point: fp.points[len(fp.points)-1], Index: len(fp.points) - 1}
}

func (fp *FollowedPolyline) CurrentIter() Iter {
	return fp.current
}

// IterToIndex returns a cursor standing exactly on vertex idx.
func (fp *FollowedPolyline) IterToIndex(idx int) Iter {
	if idx < 0 || idx >= len(fp.points) {
		return InvalidIter()
	}
	return Iter{Point: fp.points[idx], Index: idx}
}

// arcPos is the traveled arc length in meters at a cursor.
func (fp *FollowedPolyline) arcPos(it Iter) float64 {
	base := fp.points[it.Index]
	return fp.prefixM[it.Index] +
		geo.HaversineDistanceM(base.Lat, base.Lon, it.Point.Lat, it.Point.Lon)
}

func (fp *FollowedPolyline) mercPos(it Iter) float64 {
	return fp.prefixMerc[it.Index] + geo.MercatorLength(fp.points[it.Index], it.Point)
}

func (fp *FollowedPolyline) TotalDistanceM() float64 {
	if len(fp.points) == 0 {
		return 0
	}
	return fp.prefixM[len(fp.points)-1]
}

func (fp *FollowedPolyline) DistanceFromBeginM() float64 {
	if !fp.current.IsValid() {
		return 0
	}
	return fp.arcPos(fp.current)
}

func (fp *FollowedPolyline) DistanceToEndM() float64 {
	return fp.TotalDistanceM() - fp.DistanceFromBeginM()
}

func (fp *FollowedPolyline) MercatorDistanceFromBegin() float64 {
	if !fp.current.IsValid() {
		return 0
	}
	return fp.mercPos(fp.current)
}

// DistanceM is the arc length between two cursors, positive when to lies
// ahead of from.
func (fp *FollowedPolyline) DistanceM(from, to Iter) float64 {
	return fp.arcPos(to) - fp.arcPos(from)
}

// UpdateProjection moves the cursor to the nearest-point projection of the
// window center, considering only projections inside the window.
func (fp *FollowedPolyline) UpdateProjection(rect geo.Rect) Iter {
	return fp.UpdateProjectionByPrediction(rect, -1.0)
}

// UpdateProjectionByPrediction moves the cursor to the best projection of
// the window center onto the remaining path. With predictDistanceM >= 0 the
// best candidate is the one closest along the path to the predicted cursor
// offset; otherwise it is the geographically nearest one. The cursor never
// moves backward. Returns the new cursor, or an invalid one (cursor
// untouched) when no projection falls inside the window.
func (fp *FollowedPolyline) UpdateProjectionByPrediction(rect geo.Rect, predictDistanceM float64) Iter {
	if !fp.IsValid() || !fp.current.IsValid() {
		return InvalidIter()
	}

	center := datastructure.NewCoordinate(
		(rect.MinLat+rect.MaxLat)/2.0, (rect.MinLon+rect.MaxLon)/2.0)
	currentPos := fp.arcPos(fp.current)
	predictedPos := currentPos + predictDistanceM

	best := InvalidIter()
	bestScore := 0.0
	for i := fp.current.Index; i+1 < len(fp.points); i++ {
		proj := geo.ProjectPointToSegment(fp.points[i], fp.points[i+1], center)
		if !rect.Contains(proj) {
			continue
		}
		candidate := Iter{Point: proj, Index: i}
		candidatePos := fp.arcPos(candidate)
		if candidatePos < currentPos {
			// projection behind the cursor on the current segment
			candidate = fp.current
			candidatePos = currentPos
		}

		var score float64
		if predictDistanceM >= 0 {
			score = absFloat(candidatePos - predictedPos)
		} else {
			score = geo.HaversineDistanceM(center.Lat, center.Lon,
				candidate.Point.Lat, candidate.Point.Lon)
		}
		// on a tie (fix exactly on a shared vertex) take the later
		// segment, so the cursor lands past the vertex
		if !best.IsValid() || score < bestScore ||
			(score == bestScore && candidate.Index > best.Index) {
			best = candidate
			bestScore = score
		}
	}

	if best.IsValid() {
		fp.current = best
	}
	return best
}

// GetCurrentDirectionPoint returns a path point ahead of the cursor for the
// direction arrow. False when the remaining distance is below toleranceM.
func (fp *FollowedPolyline) GetCurrentDirectionPoint(toleranceM float64) (datastructure.Coordinate, bool) {
	if !fp.IsValid() || !fp.current.IsValid() {
		return datastructure.Coordinate{}, false
	}
	if fp.DistanceToEndM() < toleranceM {
		return datastructure.Coordinate{}, false
	}

	j := fp.current.Index + 1
	for j < len(fp.points)-1 && nearlySamePoint(fp.points[j], fp.current.Point) {
		j++
	}
	return fp.points[j], true
}

// Append extends the path with another polyline's points and rebuilds the
// prefix sums. The cursor stays on its vertex.
func (fp *FollowedPolyline) Append(other *FollowedPolyline) {
	cursorIdx := 0
	if fp.current.IsValid() {
		cursorIdx = fp.current.Index
	}
	joined := make([]datastructure.Coordinate, 0, len(fp.points)+len(other.points))
	joined = append(joined, fp.points...)
	joined = append(joined, other.points...)
	fp.assign(joined)
	fp.current = fp.IterToIndex(cursorIdx)
}

// PopBack removes the last path vertex.
func (fp *FollowedPolyline) PopBack() {
	if len(fp.points) == 0 {
		return
	}
	trimmed := fp.points[:len(fp.points)-1]
	cursorIdx := 0
	if fp.current.IsValid() && fp.current.Index < len(trimmed) {
		cursorIdx = fp.current.Index
	}
	fp.assign(trimmed)
	if len(trimmed) > 0 {
		fp.current = fp.IterToIndex(cursorIdx)
	}
}

const samePointToleranceM = 0.01

func nearlySamePoint(a, b datastructure.Coordinate) bool {
	return geo.HaversineDistanceM(a.Lat, a.Lon, b.Lat, b.Lon) < samePointToleranceM
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
