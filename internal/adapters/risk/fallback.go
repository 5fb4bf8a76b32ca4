package risk

import (
	"context"
	"errors"
	"freightflow/internal/platform/httpx"
	"freightflow/internal/platform/obs"
	"freightflow/internal/ports"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Fallback asks primary first and answers from secondary when primary fails.
// It only returns an error when both do.
type Fallback struct {
	primary   ports.RiskClassifier
	secondary ports.RiskClassifier
	logger    *zap.Logger
	metrics   *obs.Metrics
}

func NewFallback(primary, secondary ports.RiskClassifier, logger *zap.Logger, metrics *obs.Metrics) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger, metrics: metrics}
}

func (f *Fallback) Classify(ctx context.Context, polyline string) (ports.RiskReply, error) {
	reply, err := f.primary.Classify(ctx, polyline)
	if err == nil {
		return reply, nil
	}

	f.logger.Warn("model fallback", zap.String("req_id", obs.RequestID(ctx)), zap.Error(err))
	f.metrics.RiskFallback(fallbackReason(err))
	return f.secondary.Classify(ctx, polyline)
}

func fallbackReason(err error) string {
	var se *httpx.StatusError
	if errors.As(err, &se) && se.Code == http.StatusTooManyRequests {
		return "rate_limited"
	}
	return "model_error"
}

// ModelEnabled reports whether key can reach the model. Empty keys and
// keys starting with "test" are treated as absent.
func ModelEnabled(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && !strings.HasPrefix(strings.ToLower(key), "test")
}

type Config struct {
	OpenAIKey string
	Model     string
	BaseURL   string
	Hazards   ports.FeatureSource
	Logger    *zap.Logger
	Metrics   *obs.Metrics
}

// New returns the rule engine alone when the model is disabled, and the model
// backed by the rule engine otherwise.
func New(cfg Config) ports.RiskClassifier {
	rules := NewRules(cfg.Hazards)
	if !ModelEnabled(cfg.OpenAIKey) {
		return rules
	}

	llm := NewLLM(LLMConfig{
		APIKey:  cfg.OpenAIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		Hazards: cfg.Hazards,
		Logger:  cfg.Logger,
	})
	return NewFallback(llm, rules, cfg.Logger, cfg.Metrics)
}
