package services

import (
	"freightflow/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCost(t *testing.T) {
	assert.InDelta(t, 15.0, EstimateCost(10, 15, 0), 1e-9)
	assert.InDelta(t, 20.5, EstimateCost(10, 15, 5.5), 1e-9)
	assert.Equal(t, 0.0, EstimateCost(0, 0, 0))
}

func TestEstimateCostMonotonicInToll(t *testing.T) {
	prev := EstimateCost(42, 37, 0)
	for _, toll := range []float64{0.01, 1, 3.5, 3.5, 12, 100} {
		got := EstimateCost(42, 37, toll)
		assert.GreaterOrEqual(t, got, prev, "toll=%v", toll)
		prev = got
	}
}

func TestEstimateEmissions(t *testing.T) {
	assert.InDelta(t, 2.5, EstimateEmissions(10), 1e-9)
}

func TestPromiseOK(t *testing.T) {
	assert.True(t, PromiseOK(60, 60))
	assert.True(t, PromiseOK(59.9, 60))
	assert.False(t, PromiseOK(60.1, 60))
}

func TestPassesNear(t *testing.T) {
	route := []domain.Coordinates{
		{Lon: 151.2093, Lat: -33.8688},
		{Lon: 151.1000, Lat: -33.8000},
	}

	tests := []struct {
		name     string
		features []domain.Feature
		want     bool
	}{
		{name: "no features", want: false},
		{
			name:     "exact coordinate",
			features: []domain.Feature{{Type: "Crash", At: route[1]}},
			want:     true,
		},
		{
			name:     "inside box",
			features: []domain.Feature{{Type: "Crash", At: domain.Coordinates{Lon: 151.2099, Lat: -33.8682}}},
			want:     true,
		},
		{
			name:     "reflected inside box",
			features: []domain.Feature{{Type: "Crash", At: domain.Coordinates{Lon: 151.2087, Lat: -33.8694}}},
			want:     true,
		},
		{
			name:     "outside in longitude only",
			features: []domain.Feature{{Type: "Crash", At: domain.Coordinates{Lon: 151.2110, Lat: -33.8688}}},
			want:     false,
		},
		{
			name:     "far away",
			features: []domain.Feature{{Type: "Flood", At: domain.Coordinates{Lon: 150.0, Lat: -32.0}}},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PassesNear(route, tt.features, ProximityToleranceDeg))
		})
	}
}
