package directions

import (
	"context"
	"fmt"
	"freightflow/internal/domain"
	"freightflow/internal/ports"
)

type MockPair struct {
	From, To domain.Coordinates
	Routes   []domain.CandidateRoute
}

// MockDirectionsProvider serves fixed candidates per origin/destination pair.
type MockDirectionsProvider struct {
	m     map[string][]domain.CandidateRoute
	Calls int
}

func NewMockDirectionsProvider(pairs []MockPair) *MockDirectionsProvider {
	m := make(map[string][]domain.CandidateRoute, len(pairs))
	for _, p := range pairs {
		m[p.From.Key()+"|"+p.To.Key()] = p.Routes
	}
	return &MockDirectionsProvider{m: m}
}

func (p *MockDirectionsProvider) Routes(ctx context.Context, origin, destination domain.Coordinates) ([]domain.CandidateRoute, error) {
	p.Calls++
	routes, ok := p.m[origin.Key()+"|"+destination.Key()]
	if !ok {
		return nil, fmt.Errorf("missing pair %s -> %s", origin.Key(), destination.Key())
	}
	if len(routes) > ports.MaxAlternatives {
		routes = routes[:ports.MaxAlternatives]
	}
	return routes, nil
}
