package geo

import "math"

// BearingTo returns the initial compass bearing in degrees [0, 360) of the
// great-circle path from (lat1, lon1) to (lat2, lon2).
func BearingTo(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := degreeToRadians(lat1)
	phi2 := degreeToRadians(lat2)
	dLambda := degreeToRadians(lon2 - lon1)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	theta := math.Atan2(y, x)
	return math.Mod(radiansToDegree(theta)+360.0, 360.0)
}

func calcOrientation(lat1, lon1, lat2, lon2 float64) float64 {
	return degreeToRadians(BearingTo(lat1, lon1, lat2, lon2))
}

// alignOrientation shifts orientation by a whole turn so that it falls
// within half a turn of baseOrientation.
func alignOrientation(baseOrientation, orientation float64) float64 {
	if baseOrientation >= 0 {
		if orientation < -math.Pi+baseOrientation {
			return orientation + 2*math.Pi
		}
		return orientation
	}
	if orientation > math.Pi+baseOrientation {
		return orientation - 2*math.Pi
	}
	return orientation
}

// CalculateOrientationDelta returns the signed orientation change in radians
// between the previous heading and the heading toward (lat, lon).
func CalculateOrientationDelta(prevLat, prevLon, lat, lon, prevOrientation float64) float64 {
	orientation := calcOrientation(prevLat, prevLon, lat, lon)
	orientation = alignOrientation(prevOrientation, orientation)
	return orientation - prevOrientation
}

// Orientation returns the heading in radians from (lat1, lon1) to (lat2, lon2).
func Orientation(lat1, lon1, lat2, lon2 float64) float64 {
	return calcOrientation(lat1, lon1, lat2, lon2)
}

// GetDestinationPoint returns the point reached from (lat, lon) after
// traveling distKM kilometers on the given compass bearing.
func GetDestinationPoint(lat, lon, bearingDeg, distKM float64) (float64, float64) {
	delta := distKM / earthRadiusKM
	theta := degreeToRadians(bearingDeg)
	phi1 := degreeToRadians(lat)
	lambda1 := degreeToRadians(lon)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) +
		math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2))

	return radiansToDegree(phi2), radiansToDegree(lambda2)
}
