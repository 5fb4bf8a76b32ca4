package domain

import "fmt"

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Valid reports whether both components are finite WGS84 values.
func (c Coordinates) Valid() bool {
	return c.Lon >= -180 && c.Lon <= 180 && c.Lat >= -90 && c.Lat <= 90
}

// Key renders the coordinates at polyline precision for cache keys.
func (c Coordinates) Key() string { return fmt.Sprintf("%.5f,%.5f", c.Lon, c.Lat) }

// Represents a geocoder hit offered to the user when picking an origin or destination.
type Place struct {
	Name string
	Coordinates
}
