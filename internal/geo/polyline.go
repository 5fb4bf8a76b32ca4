package geo

import (
	"fmt"
	"freightflow/internal/domain"
	"math"

	polyline "github.com/twpayne/go-polyline"
)

const earthRadiusKm = 6371.0088

// Decode expands an encoded polyline (precision 5, lat/lon order on the wire)
// into points in provider order.
func Decode(encoded string) ([]domain.Coordinates, error) {
	coords, rest, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("decode polyline: %d trailing bytes", len(rest))
	}

	out := make([]domain.Coordinates, 0, len(coords))
	for _, c := range coords {
		out = append(out, domain.Coordinates{Lat: c[0], Lon: c[1]})
	}
	return out, nil
}

// HaversineKm returns the great-circle distance between two points.
func HaversineKm(a, b domain.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
