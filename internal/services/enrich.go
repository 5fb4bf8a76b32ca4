package services

import (
	"context"
	"fmt"
	"freightflow/internal/domain"
	"freightflow/internal/geo"
	"freightflow/internal/platform/obs"
	"freightflow/internal/ports"
	"math"

	"go.uber.org/zap"
)

// unparsedRisk stands in for a classifier reply that could not be decoded.
var unparsedRisk = domain.RiskAssessment{DelayProb: 0.5, Explain: "parse error"}

// RouteQuery is one user request for a route recommendation.
type RouteQuery struct {
	Origin      domain.Coordinates
	Destination domain.Coordinates
	DeadlineMin float64
}

// Validate rejects queries that cannot be enriched. It runs before any
// collaborator is called.
func (q RouteQuery) Validate() error {
	if !q.Origin.Valid() {
		return fmt.Errorf("%w: origin %v out of range", ErrInvalidQuery, q.Origin.CoordsToList())
	}
	if !q.Destination.Valid() {
		return fmt.Errorf("%w: destination %v out of range", ErrInvalidQuery, q.Destination.CoordsToList())
	}
	if math.IsNaN(q.DeadlineMin) || q.DeadlineMin <= 0 {
		return fmt.Errorf("%w: deadline must be positive minutes", ErrInvalidQuery)
	}
	return nil
}

// Enricher turns candidate routes into enriched routes by combining the
// scoring functions with the risk classifier and toll provider.
type Enricher struct {
	risk        ports.RiskClassifier
	toll        ports.TollProvider
	vehicleType string
	logger      *zap.Logger
	metrics     *obs.Metrics
}

func NewEnricher(
	risk ports.RiskClassifier,
	toll ports.TollProvider,
	vehicleType string,
	logger *zap.Logger,
	metrics *obs.Metrics,
) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if vehicleType == "" {
		vehicleType = "car"
	}
	return &Enricher{
		risk:        risk,
		toll:        toll,
		vehicleType: vehicleType,
		logger:      logger,
		metrics:     metrics,
	}
}

// Enrich scores one candidate. Toll and classifier problems are absorbed;
// only an undecodable geometry fails.
func (e *Enricher) Enrich(
	ctx context.Context,
	c domain.CandidateRoute,
	q RouteQuery,
	hazards []domain.Feature,
	traffic []domain.Feature,
) (_ *domain.EnrichedRoute, err error) {
	defer obs.Time(ctx, e.logger, "enrich.Route")(&err)

	points, err := geo.Decode(c.Geometry)
	if err != nil {
		return nil, fmt.Errorf("enrich route: %w", err)
	}

	km := c.DistanceKm()
	eta := c.EtaMin()
	risk := e.assessRisk(ctx, c.Geometry)
	toll := e.tollPrice(ctx, q, points)

	return &domain.EnrichedRoute{
		Polyline:    c.Geometry,
		DistanceKm:  km,
		EtaMin:      eta,
		TollPrice:   toll,
		Cost:        EstimateCost(km, eta, toll),
		Delay:       risk.DelayProb,
		Avoid:       risk.Avoid,
		RiskExplain: risk.Explain,
		HazardSafe:  !PassesNear(points, hazards, ProximityToleranceDeg),
		TrafficSafe: !PassesNear(points, traffic, ProximityToleranceDeg),
		PromiseOK:   PromiseOK(eta, q.DeadlineMin),
		CO2:         EstimateEmissions(km),
	}, nil
}

// EnrichAll enriches candidates sequentially, preserving provider order.
func (e *Enricher) EnrichAll(
	ctx context.Context,
	candidates []domain.CandidateRoute,
	q RouteQuery,
	hazards []domain.Feature,
	traffic []domain.Feature,
) ([]*domain.EnrichedRoute, error) {
	if len(candidates) == 0 {
		return nil, ErrNoRoutes
	}
	if len(candidates) > ports.MaxAlternatives {
		return nil, fmt.Errorf("%w: got %d, cap is %d", ErrTooManyRoutes, len(candidates), ports.MaxAlternatives)
	}

	out := make([]*domain.EnrichedRoute, 0, len(candidates))
	for i, c := range candidates {
		r, err := e.Enrich(ctx, c, q, hazards, traffic)
		if err != nil {
			return nil, fmt.Errorf("enrich candidate %d: %w", i+1, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (e *Enricher) assessRisk(ctx context.Context, polyline string) domain.RiskAssessment {
	if e.risk == nil {
		return unparsedRisk
	}

	reply, err := e.risk.Classify(ctx, polyline)
	if err != nil {
		e.logger.Warn("risk classifier failed", zap.String("req_id", obs.RequestID(ctx)), zap.Error(err))
		return unparsedRisk
	}

	a, err := reply.Decode()
	if err != nil {
		e.logger.Warn("risk reply not parseable", zap.String("req_id", obs.RequestID(ctx)), zap.Error(err))
		return unparsedRisk
	}
	return a
}

func (e *Enricher) tollPrice(ctx context.Context, q RouteQuery, waypoints []domain.Coordinates) float64 {
	if e.toll == nil {
		return 0
	}

	price, err := e.toll.Price(ctx, q.Origin, q.Destination, e.vehicleType, waypoints)
	if err != nil {
		e.logger.Warn("could not get toll for route, pricing at zero",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Error(err),
		)
		e.metrics.TollFallback()
		return 0
	}
	if price < 0 || math.IsNaN(price) {
		e.logger.Warn("toll provider returned invalid price, pricing at zero", zap.Float64("price", price))
		e.metrics.TollFallback()
		return 0
	}
	return price
}
