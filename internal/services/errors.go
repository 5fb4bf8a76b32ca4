package services

import "errors"

var (
	// ErrInvalidQuery is returned when origin, destination or deadline are
	// missing or out of range. The caller should re-prompt the user.
	ErrInvalidQuery = errors.New("invalid route query")

	// ErrDirections wraps failures of the directions provider.
	ErrDirections = errors.New("directions provider failed")

	// ErrNoRoutes is returned when the directions provider has no candidate routes.
	ErrNoRoutes = errors.New("no candidate routes")

	// ErrTooManyRoutes is returned when more candidates than the provider cap are supplied.
	ErrTooManyRoutes = errors.New("too many candidate routes")
)
