package eventqueue

import (
	"math"
	"regexp"
	"strconv"
)

// EarthRadiusKM is the mean Earth radius used for distance calculations.
const EarthRadiusKM = 6371.0

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

var distanceToken = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*km\s*$`)

// ParseDistanceToken reads a trailing "<number> KM" token from a location
// string such as "Main Rd, 3.5 KM".
func ParseDistanceToken(s string) (float64, bool) {
	m := distanceToken.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	km, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return km, true
}
