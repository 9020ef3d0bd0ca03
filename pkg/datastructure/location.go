package datastructure

// GPSLocation is one raw GPS fix from a positioning source. Lat, Lon and
// Bearing may be overwritten by route matching when the fix is snapped onto
// the followed path.
type GPSLocation struct {
	Lat                float64 `json:"lat"`
	Lon                float64 `json:"lon"`
	Bearing            float64 `json:"bearing"`
	Speed              float64 `json:"speed"`
	HasSpeed           bool    `json:"has_speed"`
	Timestamp          float64 `json:"timestamp"`
	HorizontalAccuracy float64 `json:"horizontal_accuracy"`
}

func NewGPSLocation(lat, lon float64) GPSLocation {
	return GPSLocation{Lat: lat, Lon: lon}
}

func (g GPSLocation) Point() Coordinate {
	return NewCoordinate(g.Lat, g.Lon)
}

// RouteMatchingInfo is what a successful snap reports to the diagnostics
// sink: the snapped point, which path vertex the cursor sits on and the
// planar arc length traveled from the route start.
type RouteMatchingInfo struct {
	SnappedPoint     Coordinate
	VertexIndex      int
	DistFromBeginM   float64
	hasRouteMatching bool
}

func (r *RouteMatchingInfo) Set(pt Coordinate, index int, distFromBegin float64) {
	r.SnappedPoint = pt
	r.VertexIndex = index
	r.DistFromBeginM = distFromBegin
	r.hasRouteMatching = true
}

func (r *RouteMatchingInfo) HasRouteMatching() bool {
	return r.hasRouteMatching
}
