package domain

// Represents one path option returned by the directions provider.
// Geometry is an encoded polyline (precision 5) in provider order.
type CandidateRoute struct {
	Geometry        string
	DistanceMeters  float64
	DurationSeconds float64
}

// DistanceKm converts the provider distance to kilometres.
func (c CandidateRoute) DistanceKm() float64 { return c.DistanceMeters / 1000 }

// EtaMin converts the provider duration to minutes.
func (c CandidateRoute) EtaMin() float64 { return c.DurationSeconds / 60 }

// Represents a candidate route augmented with cost, risk and safety scores.
// Values are kept at full precision; rounding happens at the response edge.
// An EnrichedRoute is built once by the enricher and never mutated after.
type EnrichedRoute struct {
	Polyline    string
	DistanceKm  float64
	EtaMin      float64
	TollPrice   float64
	Cost        float64
	Delay       float64
	Avoid       []Coordinates
	RiskExplain string
	HazardSafe  bool
	TrafficSafe bool
	PromiseOK   bool
	CO2         float64
}

// Represents the outcome of one arbitration run.
// Recommended and Baseline are always set and may point at the same route.
// Alternate is nil when no third distinct route exists. Identity is pointer
// identity into Routes.
type Selection struct {
	Routes       []*EnrichedRoute
	Recommended  *EnrichedRoute
	Baseline     *EnrichedRoute
	Alternate    *EnrichedRoute
	FinalistTier int
}
