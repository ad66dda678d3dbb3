package location

import (
	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
	"github.com/foxhuntgame/foxhunt/pkg/geo"
)

// Fix is a single timestamped coordinate reading. A new fix replaces, never
// merges with, the previous one for a player.
type Fix struct {
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Accuracy  *float64 `json:"accuracy,omitempty"` // meters
	Timestamp int64    `json:"timestamp"`          // epoch millis
}

// Point returns the fix coordinates as a geo point
func (f Fix) Point() geo.Point {
	return geo.Point{Lat: f.Lat, Lon: f.Lon}
}

// Validate checks structural shape and coordinate ranges
func (f Fix) Validate() error {
	if !geo.ValidLat(f.Lat) {
		return shared.NewInvalidInput("latitude out of range: %f", f.Lat)
	}
	if !geo.ValidLon(f.Lon) {
		return shared.NewInvalidInput("longitude out of range: %f", f.Lon)
	}
	if f.Accuracy != nil && *f.Accuracy < 0 {
		return shared.NewInvalidInput("accuracy cannot be negative: %f", *f.Accuracy)
	}
	if f.Timestamp < 0 {
		return shared.NewInvalidInput("timestamp cannot be negative: %d", f.Timestamp)
	}
	return nil
}
