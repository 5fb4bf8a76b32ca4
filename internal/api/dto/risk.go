package dto

import "encoding/json"

// RiskRequest scores one polyline. When Hazards carries a FeatureCollection
// the rule engine runs against it instead of the configured classifier.
type RiskRequest struct {
	Polyline string          `json:"polyline" binding:"required"`
	Hazards  json.RawMessage `json:"hazards"`
}
