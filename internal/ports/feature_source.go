package ports

import (
	"context"
	"errors"
	"freightflow/internal/domain"
)

// ErrNoSnapshot is returned by a FeatureSource before its first snapshot exists.
var ErrNoSnapshot = errors.New("no feature snapshot available")

// Port: the most recently snapshotted hazard or traffic features.
// Reading never triggers a fetch from the upstream feed.
type FeatureSource interface {
	Features(ctx context.Context) ([]domain.Feature, error)
}
