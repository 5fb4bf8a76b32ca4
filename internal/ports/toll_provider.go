package ports

import (
	"context"
	"freightflow/internal/domain"
)

// Contract for pricing road tolls along a route, in AUD.
// Implementations may fail; callers decide how to recover.
type TollProvider interface {
	Price(
		ctx context.Context,
		origin domain.Coordinates,
		destination domain.Coordinates,
		vehicleType string,
		waypoints []domain.Coordinates,
	) (float64, error)
}
