package services

import (
	"context"
	"errors"
	"freightflow/internal/domain"
	"freightflow/internal/kpi"
	"freightflow/internal/ports"
	"sync"
)

type fakeRisk struct {
	mu      sync.Mutex
	replies map[string]ports.RiskReply
	err     error
	calls   int
}

func (f *fakeRisk) Classify(ctx context.Context, polyline string) (ports.RiskReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return ports.RiskReply{}, f.err
	}
	if r, ok := f.replies[polyline]; ok {
		return r, nil
	}
	return ports.StructuredReply(domain.RiskAssessment{DelayProb: 0.2, Explain: "No nearby incidents."}), nil
}

type fakeToll struct {
	price float64
	err   error
	last  []domain.Coordinates
}

func (f *fakeToll) Price(ctx context.Context, origin, destination domain.Coordinates, vehicleType string, waypoints []domain.Coordinates) (float64, error) {
	f.last = waypoints
	if f.err != nil {
		return 0, f.err
	}
	return f.price, nil
}

type staticFeatures struct {
	features []domain.Feature
	err      error
}

func (s staticFeatures) Features(ctx context.Context) ([]domain.Feature, error) {
	return s.features, s.err
}

type failingKPIStore struct{}

func (failingKPIStore) Record(ctx context.Context, delayed bool, saved float64) error {
	return errors.New("store unavailable")
}

func (failingKPIStore) Snapshot(ctx context.Context) (kpi.Snapshot, error) {
	return kpi.Snapshot{}, errors.New("store unavailable")
}
