package kpi

import (
	"context"
	"fmt"
	"freightflow/internal/domain"
)

// Tracker binds an aggregator to the policy of its deployment variant.
// It is constructed once per process and shared by reference.
type Tracker struct {
	mode   Mode
	agg    Aggregator
	policy Policy
}

// NewRolling returns the dashboard variant: a window of the given capacity
// judged by DashboardPolicy.
func NewRolling(capacity int) *Tracker {
	return &Tracker{mode: ModeRolling, agg: NewWindow(capacity), policy: DashboardPolicy{}}
}

// NewCumulative returns the served-API variant over store, judged by
// APIPolicy. store must keep unbounded totals (Counters or a shared store).
func NewCumulative(store Aggregator) *Tracker {
	if store == nil {
		store = NewCounters()
	}
	return &Tracker{mode: ModeCumulative, agg: store, policy: APIPolicy{}}
}

func (t *Tracker) Mode() Mode { return t.mode }

// Outcome is how the tracker's policy judged one query.
type Outcome struct {
	Delayed bool
	Saved   float64
}

// Observe judges one completed query and records it. The outcome is returned
// even when the store fails, so callers can still report it.
func (t *Tracker) Observe(ctx context.Context, sel domain.Selection) (Outcome, error) {
	if sel.Recommended == nil || sel.Baseline == nil || len(sel.Routes) == 0 {
		return Outcome{}, fmt.Errorf("kpi observe: incomplete selection")
	}

	delayed, saved := t.policy.Observe(sel)
	out := Outcome{Delayed: delayed, Saved: saved}
	if err := t.agg.Record(ctx, delayed, saved); err != nil {
		return out, fmt.Errorf("kpi observe: %w", err)
	}
	return out, nil
}

func (t *Tracker) Snapshot(ctx context.Context) (Snapshot, error) {
	s, err := t.agg.Snapshot(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("kpi snapshot: %w", err)
	}
	return s, nil
}
