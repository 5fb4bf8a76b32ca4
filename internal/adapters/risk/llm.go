package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"freightflow/internal/platform/httpx"
	"freightflow/internal/platform/obs"
	"freightflow/internal/ports"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultModel   = "gpt-4.1-2025-04-14"
	DefaultBaseURL = "https://api.openai.com/v1"

	temperature = 0.2
)

const instructions = "You are FreightFlow's Risk Agent.\n" +
	"The user supplies an encoded `polyline` and the live NSW hazards.\n" +
	"Return JSON **exactly** with keys:\n" +
	`{"delay_prob": float (0-1), "avoid_coords": [[lon,lat]…], "explain": str}`

// LLM asks a chat-completions model to judge the route. Its reply is passed
// back as text; decoding happens at the caller.
type LLM struct {
	client  *httpx.Client
	apiKey  string
	model   string
	baseURL string
	hazards ports.FeatureSource
	logger  *zap.Logger
}

type LLMConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *httpx.Client
	Hazards ports.FeatureSource
	Logger  *zap.Logger
}

func NewLLM(cfg LLMConfig) *LLM {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Client == nil {
		cfg.Client = httpx.New(60*time.Second, 2)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &LLM{
		client:  cfg.Client,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		hazards: cfg.Hazards,
		logger:  cfg.Logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Temperature    float64       `json:"temperature"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type slimHazard struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func (l *LLM) Classify(ctx context.Context, polyline string) (_ ports.RiskReply, err error) {
	defer obs.Time(ctx, l.logger, "openai.Classify")(&err)

	if l.apiKey == "" {
		return ports.RiskReply{}, errors.New("llm classify: OPENAI_API_KEY not set")
	}

	hazards := make([]slimHazard, 0)
	if l.hazards != nil {
		// A missing snapshot leaves the model with no live hazards.
		if fs, err := l.hazards.Features(ctx); err == nil {
			for _, f := range fs {
				hazards = append(hazards, slimHazard{Type: f.Type, Coordinates: f.At.CoordsToList()})
			}
		}
	}

	user, err := json.Marshal(map[string]any{"polyline": polyline, "hazards": hazards})
	if err != nil {
		return ports.RiskReply{}, fmt.Errorf("llm classify: encode prompt: %w", err)
	}

	payload := chatRequest{
		Model:       l.model,
		Temperature: temperature,
		Messages: []chatMessage{
			{Role: "system", Content: instructions},
			{Role: "user", Content: string(user)},
		},
	}
	payload.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(payload)
	if err != nil {
		return ports.RiskReply{}, fmt.Errorf("llm classify: encode request: %w", err)
	}

	resp, err := l.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+l.apiKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return ports.RiskReply{}, fmt.Errorf("llm classify: execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.RiskReply{}, fmt.Errorf("llm classify: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return ports.RiskReply{}, errors.New("llm classify: no choices in response")
	}

	l.logger.Info("risk handled by model", zap.String("req_id", obs.RequestID(ctx)), zap.String("model", l.model))
	return ports.TextReply(decoded.Choices[0].Message.Content), nil
}
