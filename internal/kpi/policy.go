package kpi

import (
	"freightflow/internal/domain"
	"math"
)

// Policy turns one selection into the (delayed, saved) observation fed to an
// aggregator.
type Policy interface {
	Observe(sel domain.Selection) (delayed bool, saved float64)
}

// DashboardPolicy is the rule used with the rolling window: the recommended
// route counts as delayed when it is likely late and noticeably riskier than
// the safest option, and savings are measured against the cheapest route.
type DashboardPolicy struct{}

func (DashboardPolicy) Observe(sel domain.Selection) (bool, float64) {
	rec := sel.Recommended
	minDelay := math.Inf(1)
	for _, r := range sel.Routes {
		minDelay = math.Min(minDelay, r.Delay)
	}

	delayed := rec.Delay > 0.5 && rec.Delay-minDelay > 0.10
	return delayed, math.Max(0, sel.Baseline.Cost-rec.Cost)
}

// APIPolicy is the rule used with cumulative counters: a recommendation is
// high risk above 0.7, and savings are measured against the provider's
// first-ranked route.
type APIPolicy struct{}

func (APIPolicy) Observe(sel domain.Selection) (bool, float64) {
	rec := sel.Recommended
	first := sel.Routes[0]
	return rec.Delay > 0.7, math.Max(0, first.Cost-rec.Cost)
}
