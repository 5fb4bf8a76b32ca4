package services

import (
	"cmp"
	"freightflow/internal/domain"
	"strings"
)

// NoReason marks a route that passed every check.
const NoReason = "—"

// relaxationTiers are tried in order; the first tier that keeps at least one
// route supplies the finalists. When every tier is empty the full list is used.
var relaxationTiers = []func(r *domain.EnrichedRoute) bool{
	func(r *domain.EnrichedRoute) bool { return r.HazardSafe && r.TrafficSafe && r.PromiseOK },
	func(r *domain.EnrichedRoute) bool { return r.HazardSafe && r.PromiseOK },
	func(r *domain.EnrichedRoute) bool { return r.HazardSafe },
}

// Finalists applies the relaxation tiers and returns the surviving routes
// along with the 1-based tier that produced them (len(relaxationTiers)+1 for
// the unfiltered fallback).
func Finalists(routes []*domain.EnrichedRoute) ([]*domain.EnrichedRoute, int) {
	for i, keep := range relaxationTiers {
		kept := make([]*domain.EnrichedRoute, 0, len(routes))
		for _, r := range routes {
			if keep(r) {
				kept = append(kept, r)
			}
		}
		if len(kept) > 0 {
			return kept, i + 1
		}
	}
	return routes, len(relaxationTiers) + 1
}

// Arbitrate picks the recommended, baseline and alternate routes.
//
// Recommended minimizes (CO2, cost, delay) over the finalists, baseline
// minimizes cost over every route, and alternate minimizes (delay, ETA) over
// whatever is left. Ties go to the earlier route. Identity is by pointer.
func Arbitrate(routes []*domain.EnrichedRoute) (domain.Selection, error) {
	if len(routes) == 0 {
		return domain.Selection{}, ErrNoRoutes
	}

	finalists, tier := Finalists(routes)

	recommended := argmin(finalists, func(a, b *domain.EnrichedRoute) int {
		return cmp.Or(
			cmp.Compare(a.CO2, b.CO2),
			cmp.Compare(a.Cost, b.Cost),
			cmp.Compare(a.Delay, b.Delay),
		)
	})

	baseline := argmin(routes, func(a, b *domain.EnrichedRoute) int {
		return cmp.Compare(a.Cost, b.Cost)
	})

	rest := make([]*domain.EnrichedRoute, 0, len(routes))
	for _, r := range routes {
		if r != recommended && r != baseline {
			rest = append(rest, r)
		}
	}

	var alternate *domain.EnrichedRoute
	if len(rest) > 0 {
		alternate = argmin(rest, func(a, b *domain.EnrichedRoute) int {
			return cmp.Or(
				cmp.Compare(a.Delay, b.Delay),
				cmp.Compare(a.EtaMin, b.EtaMin),
			)
		})
	}

	return domain.Selection{
		Routes:       routes,
		Recommended:  recommended,
		Baseline:     baseline,
		Alternate:    alternate,
		FinalistTier: tier,
	}, nil
}

// argmin returns the first element with the smallest key under compare.
func argmin(routes []*domain.EnrichedRoute, compare func(a, b *domain.EnrichedRoute) int) *domain.EnrichedRoute {
	best := routes[0]
	for _, r := range routes[1:] {
		if compare(r, best) < 0 {
			best = r
		}
	}
	return best
}

// RejectionReason lists the checks a route failed, in a fixed order.
func RejectionReason(r *domain.EnrichedRoute) string {
	reasons := make([]string, 0, 3)
	if !r.HazardSafe {
		reasons = append(reasons, "crosses hazard")
	}
	if !r.TrafficSafe {
		reasons = append(reasons, "crosses traffic")
	}
	if !r.PromiseOK {
		reasons = append(reasons, "misses delivery time")
	}
	if len(reasons) == 0 {
		return NoReason
	}
	return strings.Join(reasons, ", ")
}

// TableReason is the reason shown in the decision table: the recommended
// route is never "rejected".
func TableReason(sel domain.Selection, r *domain.EnrichedRoute) string {
	if r == sel.Recommended {
		return NoReason
	}
	return RejectionReason(r)
}
