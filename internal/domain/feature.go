package domain

// A point hazard or traffic incident taken from a GeoJSON snapshot.
type Feature struct {
	Type string
	At   Coordinates
}

// Delay risk for one route as judged by a risk classifier.
type RiskAssessment struct {
	DelayProb float64
	Avoid     []Coordinates
	Explain   string
}
