package geo

import "math"

const earthRadiusMeters = 6_371_000.0

// degToMeters converts degree-scaled planar distances to meters.
const degToMeters = math.Pi / 180 * earthRadiusMeters

// MetersPerDegree is a conservative integer lower bound on degToMeters.
// Multiplying a planar degree distance by it never overestimates the
// great-circle length along a meridian.
const MetersPerDegree = 111_000.0

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// PointToSegmentDist computes the distance in meters from point P to segment AB
// and the projection ratio along AB, clamped to [0,1].
func PointToSegmentDist(pLat, pLon, aLat, aLon, bLat, bLon float64) (dist float64, ratio float64) {
	// Equirectangular projection, good enough for snap distances.
	cosLat := math.Cos((aLat + bLat) / 2 * math.Pi / 180)

	ax, ay := aLon*cosLat, aLat
	bx, by := bLon*cosLat, bLat
	px, py := pLon*cosLat, pLat

	// Compare the unprojected coordinates: cosLat noise can make identical
	// points differ by ~1e-15 after projection.
	if aLat == bLat && aLon == bLon {
		ex := px - ax
		ey := py - ay
		return math.Sqrt(ex*ex+ey*ey) * degToMeters, 0
	}

	dx := bx - ax
	dy := by - ay
	lenSq := dx*dx + dy*dy

	var t float64
	if lenSq > 0 {
		t = ((px-ax)*dx + (py-ay)*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}

	ex := px - (ax + t*dx)
	ey := py - (ay + t*dy)
	return math.Sqrt(ex*ex+ey*ey) * degToMeters, t
}

// MetersToDegrees converts a distance in meters to an approximate span in
// degrees of latitude. Used to size search boxes around a query point.
func MetersToDegrees(m float64) float64 {
	return m / degToMeters
}
