package route

// RoutingSettings controls how a followed route matches GPS fixes. The
// caller passes it explicitly at construction; there is no ambient default.
type RoutingSettings struct {
	// MatchingThresholdM is the max distance between a fix and its cursor
	// projection for the fix to be snapped onto the route.
	MatchingThresholdM float64
	// MatchBearing overwrites the fix bearing with the local path-segment
	// direction when the fix is snapped.
	MatchBearing bool
	// KeepPedestrianInfo keeps a simplified copy of the path for
	// pedestrian-mode display.
	KeepPedestrianInfo bool
}

func CarRoutingSettings() RoutingSettings {
	return RoutingSettings{
		MatchingThresholdM: 50.0,
		MatchBearing:       true,
		KeepPedestrianInfo: false,
	}
}

func PedestrianRoutingSettings() RoutingSettings {
	return RoutingSettings{
		MatchingThresholdM: 20.0,
		MatchBearing:       false,
		KeepPedestrianInfo: true,
	}
}
