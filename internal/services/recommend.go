package services

import (
	"context"
	"errors"
	"fmt"
	"freightflow/internal/domain"
	"freightflow/internal/kpi"
	"freightflow/internal/platform/obs"
	"freightflow/internal/ports"
	"time"

	"go.uber.org/zap"
)

// Recommendation is the result of one query: the arbitrated selection, how
// the KPI policy judged it and the KPI snapshot taken right after.
type Recommendation struct {
	Query     RouteQuery
	Selection domain.Selection
	Outcome   kpi.Outcome
	KPI       kpi.Snapshot
}

// Recommender runs the full query pipeline: directions, enrichment,
// arbitration and KPI recording.
type Recommender struct {
	directions ports.DirectionsProvider
	enricher   *Enricher
	hazards    ports.FeatureSource
	traffic    ports.FeatureSource
	kpi        *kpi.Tracker
	logger     *zap.Logger
	metrics    *obs.Metrics
}

type RecommenderDeps struct {
	Directions ports.DirectionsProvider
	Enricher   *Enricher
	Hazards    ports.FeatureSource
	Traffic    ports.FeatureSource
	KPI        *kpi.Tracker
	Logger     *zap.Logger
	Metrics    *obs.Metrics
}

func NewRecommender(d RecommenderDeps) (*Recommender, error) {
	if d.Directions == nil {
		return nil, errors.New("new recommender: directions provider is required")
	}
	if d.Enricher == nil {
		return nil, errors.New("new recommender: enricher is required")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.KPI == nil {
		d.KPI = kpi.NewRolling(kpi.DefaultWindow)
	}
	return &Recommender{
		directions: d.Directions,
		enricher:   d.Enricher,
		hazards:    d.Hazards,
		traffic:    d.Traffic,
		kpi:        d.KPI,
		logger:     d.Logger,
		metrics:    d.Metrics,
	}, nil
}

// KPI exposes the tracker so read-only endpoints can snapshot it.
func (s *Recommender) KPI() *kpi.Tracker { return s.kpi }

// Recommend answers one route query. The KPI tracker is updated exactly once
// per successful call and never on failure.
func (s *Recommender) Recommend(ctx context.Context, q RouteQuery) (_ *Recommendation, err error) {
	start := time.Now()
	defer obs.Time(ctx, s.logger, "recommend.Query")(&err)
	defer func() { s.metrics.ObserveQuery(queryOutcome(err), time.Since(start)) }()

	if err := q.Validate(); err != nil {
		return nil, err
	}

	candidates, err := s.directions.Routes(ctx, q.Origin, q.Destination)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w: %w", ErrDirections, err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoRoutes
	}

	hazards, err := s.features(ctx, "hazards", s.hazards)
	if err != nil {
		return nil, err
	}
	traffic, err := s.features(ctx, "traffic", s.traffic)
	if err != nil {
		return nil, err
	}

	routes, err := s.enricher.EnrichAll(ctx, candidates, q, hazards, traffic)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	sel, err := Arbitrate(routes)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	s.metrics.FinalistTier(sel.FinalistTier)

	outcome, err := s.kpi.Observe(ctx, sel)
	if err != nil {
		s.logger.Warn("kpi record failed", zap.String("req_id", obs.RequestID(ctx)), zap.Error(err))
	}
	snap, err := s.kpi.Snapshot(ctx)
	if err != nil {
		s.logger.Warn("kpi snapshot failed", zap.String("req_id", obs.RequestID(ctx)), zap.Error(err))
		snap = kpi.Snapshot{}
	}

	return &Recommendation{Query: q, Selection: sel, Outcome: outcome, KPI: snap}, nil
}

// features reads a snapshot source. A missing snapshot means nothing is
// known yet and reads as an empty set.
func (s *Recommender) features(ctx context.Context, name string, src ports.FeatureSource) ([]domain.Feature, error) {
	if src == nil {
		return nil, nil
	}
	fs, err := src.Features(ctx)
	if errors.Is(err, ports.ErrNoSnapshot) {
		s.logger.Warn("no snapshot yet, treating as empty",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.String("source", name),
		)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("recommend: read %s: %w", name, err)
	}
	return fs, nil
}

func queryOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidQuery):
		return "invalid"
	case errors.Is(err, ErrNoRoutes):
		return "no_routes"
	default:
		return "error"
	}
}
