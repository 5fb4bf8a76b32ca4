package hazards

import (
	"encoding/json"
	"errors"
	"fmt"
	"freightflow/internal/domain"
	"strings"
)

// FeatureCollection is the on-disk snapshot shape. Features are kept raw so
// a snapshot round-trips every upstream property untouched.
type FeatureCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

type geoFeature struct {
	Geometry struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Type string `json:"type"`
	} `json:"properties"`
}

// DecodePayload accepts either a FeatureCollection or a bare feature list,
// the two shapes the TfNSW feed has been seen to return.
func DecodePayload(body []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, errors.New("decode payload: empty body")
	}

	switch trimmed[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("decode payload: feature list: %w", err)
		}
		return list, nil
	case '{':
		var fc struct {
			Features *[]json.RawMessage `json:"features"`
		}
		if err := json.Unmarshal(body, &fc); err != nil {
			return nil, fmt.Errorf("decode payload: feature collection: %w", err)
		}
		if fc.Features == nil {
			return nil, errors.New("decode payload: object without features")
		}
		return *fc.Features, nil
	default:
		return nil, errors.New("decode payload: unexpected payload structure")
	}
}

// ParseFeatures extracts point features. Features without a [lon, lat]
// point geometry are skipped and counted.
func ParseFeatures(raw []json.RawMessage) (features []domain.Feature, skipped int) {
	features = make([]domain.Feature, 0, len(raw))
	for _, r := range raw {
		var f geoFeature
		if err := json.Unmarshal(r, &f); err != nil {
			skipped++
			continue
		}

		var pt []float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &pt); err != nil || len(pt) < 2 {
			skipped++
			continue
		}

		at := domain.Coordinates{Lon: pt[0], Lat: pt[1]}
		if !at.Valid() {
			skipped++
			continue
		}
		features = append(features, domain.Feature{Type: f.Properties.Type, At: at})
	}
	return features, skipped
}
