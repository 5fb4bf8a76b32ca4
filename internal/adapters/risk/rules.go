package risk

import (
	"context"
	"errors"
	"fmt"
	"freightflow/internal/domain"
	"freightflow/internal/geo"
	"freightflow/internal/ports"
)

const (
	// MajorRadiusKm is how close a major hazard must be to any route point.
	MajorRadiusKm = 1.0

	delayNearHazard = 0.8
	delayClear      = 0.2
)

var majorTypes = map[string]bool{"Crash": true, "Flood": true}

// Rules is the deterministic classifier: crashes and floods within
// MajorRadiusKm of the route make a delay likely.
type Rules struct {
	hazards ports.FeatureSource
}

func NewRules(hazards ports.FeatureSource) *Rules {
	return &Rules{hazards: hazards}
}

func (r *Rules) Classify(ctx context.Context, polyline string) (ports.RiskReply, error) {
	points, err := geo.Decode(polyline)
	if err != nil {
		return ports.RiskReply{}, fmt.Errorf("rules classify: %w", err)
	}

	var features []domain.Feature
	if r.hazards != nil {
		features, err = r.hazards.Features(ctx)
		if err != nil && !errors.Is(err, ports.ErrNoSnapshot) {
			return ports.RiskReply{}, fmt.Errorf("rules classify: %w", err)
		}
	}

	return ports.StructuredReply(Assess(points, features)), nil
}

// Assess scores route points against an explicit feature set.
func Assess(points []domain.Coordinates, features []domain.Feature) domain.RiskAssessment {
	avoid := make([]domain.Coordinates, 0)
	for _, f := range features {
		if !majorTypes[f.Type] {
			continue
		}
		if closestKm(points, f.At) <= MajorRadiusKm {
			avoid = append(avoid, f.At)
		}
	}

	if len(avoid) == 0 {
		return domain.RiskAssessment{DelayProb: delayClear, Avoid: avoid, Explain: "No major hazards near route"}
	}
	return domain.RiskAssessment{
		DelayProb: delayNearHazard,
		Avoid:     avoid,
		Explain:   fmt.Sprintf("%d major hazard(s) within %.1f km of route", len(avoid), MajorRadiusKm),
	}
}

func closestKm(points []domain.Coordinates, at domain.Coordinates) float64 {
	best := -1.0
	for _, p := range points {
		d := geo.HaversineKm(p, at)
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		return MajorRadiusKm + 1
	}
	return best
}
