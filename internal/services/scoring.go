package services

import (
	"freightflow/internal/domain"
	"math"
)

// Fixed cost and emission factors for a light freight vehicle.
const (
	FuelPerKmAUD     = 0.25
	DriverPerHourAUD = 50.0
	EmissionKgPerKm  = 0.25

	// ProximityToleranceDeg is the half-width, in degrees of both latitude
	// and longitude, of the box a feature must fall in to count as "near".
	ProximityToleranceDeg = 0.001
)

// EstimateCost returns fuel plus pro-rated driver wage plus toll, in AUD.
func EstimateCost(distanceKm, etaMin, toll float64) float64 {
	return distanceKm*FuelPerKmAUD + (etaMin/60)*DriverPerHourAUD + toll
}

// EstimateEmissions returns kg of CO2 for the given distance.
func EstimateEmissions(distanceKm float64) float64 {
	return distanceKm * EmissionKgPerKm
}

// PromiseOK reports whether the route arrives within the deadline.
func PromiseOK(etaMin, deadlineMin float64) bool {
	return etaMin <= deadlineMin
}

// PassesNear reports whether any route point lies inside the axis-aligned
// box of half-width tolerance around any feature point. The box is in
// degrees, so its ground size shrinks in longitude away from the equator.
func PassesNear(points []domain.Coordinates, features []domain.Feature, tolerance float64) bool {
	for _, p := range points {
		for _, f := range features {
			if math.Abs(p.Lon-f.At.Lon) < tolerance && math.Abs(p.Lat-f.At.Lat) < tolerance {
				return true
			}
		}
	}
	return false
}
