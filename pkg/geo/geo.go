// Package geo provides great-circle distance math for coordinate pairs.
package geo

import "math"

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Distance returns the haversine great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// ValidLat reports whether lat is a valid latitude in degrees.
func ValidLat(lat float64) bool {
	return lat >= -90 && lat <= 90 && !math.IsNaN(lat)
}

// ValidLon reports whether lon is a valid longitude in degrees.
func ValidLon(lon float64) bool {
	return lon >= -180 && lon <= 180 && !math.IsNaN(lon)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
