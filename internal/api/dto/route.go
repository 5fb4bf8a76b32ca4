package dto

import "math"

type RiskResponse struct {
	DelayProb   float64     `json:"delay_prob"`
	AvoidCoords [][]float64 `json:"avoid_coords"`
	Explain     string      `json:"explain"`
}

type RouteResponse struct {
	Polyline    string       `json:"polyline"`
	DistanceKm  float64      `json:"distance_km"`
	EtaMin      float64      `json:"eta_min"`
	TollAUD     float64      `json:"toll_aud"`
	CostAUD     float64      `json:"cost_aud"`
	CO2Kg       float64      `json:"co2_kg"`
	Risk        RiskResponse `json:"risk"`
	HazardSafe  bool         `json:"hazard_safe"`
	TrafficSafe bool         `json:"traffic_safe"`
	PromiseOK   bool         `json:"promise_ok"`
}

// DecisionRow is one line of the decision table shown next to the map.
type DecisionRow struct {
	Route       int     `json:"route"`
	Role        string  `json:"role"`
	HazardSafe  bool    `json:"hazard_safe"`
	TrafficSafe bool    `json:"traffic_safe"`
	PromiseOK   bool    `json:"promise_ok"`
	CostAUD     float64 `json:"cost_aud"`
	TollAUD     float64 `json:"toll_aud"`
	CO2Kg       float64 `json:"co2_kg"`
	DelayProb   float64 `json:"delay_prob"`
	Reason      string  `json:"reason"`
}

// RouteOptionsResponse indexes into Routes for the three selections.
// Alternate is null when fewer than three distinct routes exist.
type RouteOptionsResponse struct {
	Routes       []RouteResponse `json:"routes"`
	Recommended  int             `json:"recommended"`
	Baseline     int             `json:"baseline"`
	Alternate    *int            `json:"alternate"`
	FinalistTier int             `json:"finalist_tier"`
	SavedAUD     float64         `json:"saved_aud"`
	Decision     []DecisionRow   `json:"decision"`
	KPI          KPIResponse     `json:"kpi"`
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
