package ports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"freightflow/internal/domain"
	"strings"
)

// Contract for estimating the delay risk of a route geometry.
type RiskClassifier interface {
	Classify(ctx context.Context, polyline string) (RiskReply, error)
}

// RiskReply is the tagged result of a classifier: either a structured
// assessment or the raw JSON text a language model produced.
type RiskReply struct {
	assessment *domain.RiskAssessment
	text       string
}

func StructuredReply(a domain.RiskAssessment) RiskReply {
	return RiskReply{assessment: &a}
}

func TextReply(text string) RiskReply {
	return RiskReply{text: text}
}

// IsText reports whether the reply still needs decoding.
func (r RiskReply) IsText() bool { return r.assessment == nil }

// riskJSON is the wire shape shared by the model prompt and the HTTP API.
type riskJSON struct {
	DelayProb   *float64    `json:"delay_prob"`
	AvoidCoords [][]float64 `json:"avoid_coords"`
	Explain     string      `json:"explain"`
}

// Decode returns the structured assessment, parsing text replies.
// Delay probabilities outside [0,1] are clamped.
func (r RiskReply) Decode() (domain.RiskAssessment, error) {
	if r.assessment != nil {
		a := *r.assessment
		a.DelayProb = clampProb(a.DelayProb)
		return a, nil
	}

	body := strings.TrimSpace(r.text)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)

	if body == "" {
		return domain.RiskAssessment{}, errors.New("decode risk reply: empty text")
	}

	var raw riskJSON
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("decode risk reply: %w", err)
	}
	if raw.DelayProb == nil {
		return domain.RiskAssessment{}, errors.New("decode risk reply: missing delay_prob")
	}

	avoid := make([]domain.Coordinates, 0, len(raw.AvoidCoords))
	for i, c := range raw.AvoidCoords {
		if len(c) != 2 {
			return domain.RiskAssessment{}, fmt.Errorf("decode risk reply: avoid_coords[%d] has %d values", i, len(c))
		}
		avoid = append(avoid, domain.Coordinates{Lon: c[0], Lat: c[1]})
	}

	return domain.RiskAssessment{DelayProb: clampProb(*raw.DelayProb), Avoid: avoid, Explain: raw.Explain}, nil
}

func clampProb(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// EncodeRisk renders an assessment in the wire shape accepted by Decode.
func EncodeRisk(a domain.RiskAssessment) ([]byte, error) {
	p := a.DelayProb
	coords := make([][]float64, 0, len(a.Avoid))
	for _, c := range a.Avoid {
		coords = append(coords, c.CoordsToList())
	}
	return json.Marshal(riskJSON{DelayProb: &p, AvoidCoords: coords, Explain: a.Explain})
}
