package ports

import (
	"context"
	"freightflow/internal/domain"
)

// MaxAlternatives is the provider cap on candidate routes per query.
const MaxAlternatives = 3

// Contract for retrieving candidate driving routes between two points.
type DirectionsProvider interface {
	// Return at most MaxAlternatives routes, in the order the provider ranked them.
	Routes(ctx context.Context, origin, destination domain.Coordinates) ([]domain.CandidateRoute, error)
}

// Contract for resolving free-text place queries to coordinates.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]domain.Place, error)
}
