package kpi

import (
	"context"
	"freightflow/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selection(rec, base *domain.EnrichedRoute, routes ...*domain.EnrichedRoute) domain.Selection {
	return domain.Selection{Routes: routes, Recommended: rec, Baseline: base}
}

func TestDashboardPolicy(t *testing.T) {
	safe := &domain.EnrichedRoute{Delay: 0.2, Cost: 30}
	risky := &domain.EnrichedRoute{Delay: 0.8, Cost: 20}
	similar := &domain.EnrichedRoute{Delay: 0.75, Cost: 40}

	tests := []struct {
		name        string
		sel         domain.Selection
		wantDelayed bool
		wantSaved   float64
	}{
		{
			name:        "risky and well above the safest option",
			sel:         selection(risky, risky, safe, risky),
			wantDelayed: true,
			wantSaved:   0,
		},
		{
			name:        "risky but every option is as risky",
			sel:         selection(risky, similar, similar, risky),
			wantDelayed: false,
			wantSaved:   20,
		},
		{
			name:        "low risk",
			sel:         selection(safe, risky, safe, risky),
			wantDelayed: false,
			wantSaved:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delayed, saved := DashboardPolicy{}.Observe(tt.sel)
			assert.Equal(t, tt.wantDelayed, delayed)
			assert.Equal(t, tt.wantSaved, saved)
		})
	}
}

func TestAPIPolicy(t *testing.T) {
	first := &domain.EnrichedRoute{Delay: 0.1, Cost: 50}
	rec := &domain.EnrichedRoute{Delay: 0.71, Cost: 35}

	delayed, saved := APIPolicy{}.Observe(selection(rec, rec, first, rec))
	assert.True(t, delayed)
	assert.Equal(t, 15.0, saved)

	// 0.6 is delayed for the dashboard rule but not for the API rule.
	mid := &domain.EnrichedRoute{Delay: 0.6, Cost: 60}
	delayed, saved = APIPolicy{}.Observe(selection(mid, first, first, mid))
	assert.False(t, delayed)
	assert.Equal(t, 0.0, saved)

	delayed, _ = DashboardPolicy{}.Observe(selection(mid, first, first, mid))
	assert.True(t, delayed)
}

func TestTrackerVariantsStayDistinct(t *testing.T) {
	ctx := context.Background()

	rolling := NewRolling(2)
	cumulative := NewCumulative(nil)
	assert.Equal(t, ModeRolling, rolling.Mode())
	assert.Equal(t, ModeCumulative, cumulative.Mode())

	low := &domain.EnrichedRoute{Delay: 0.1, Cost: 10}
	mid := &domain.EnrichedRoute{Delay: 0.6, Cost: 10}
	sel := selection(mid, mid, low, mid)

	for i := 0; i < 3; i++ {
		_, err := rolling.Observe(ctx, sel)
		require.NoError(t, err)
		_, err = cumulative.Observe(ctx, sel)
		require.NoError(t, err)
	}

	rs, err := rolling.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Routes)
	assert.Equal(t, 1.0, rs.DelayPct)

	cs, err := cumulative.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, cs.Routes)
	assert.Equal(t, 0.0, cs.DelayPct)
}

func TestTrackerRejectsIncompleteSelection(t *testing.T) {
	_, err := NewRolling(5).Observe(context.Background(), domain.Selection{})
	assert.Error(t, err)
}
