package obs

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors used across the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	RouteQueries       *prometheus.CounterVec
	RouteQueryDuration prometheus.Histogram
	TollFallbacks      prometheus.Counter
	RiskFallbacks      *prometheus.CounterVec
	FinalistTiers      *prometheus.CounterVec
	SnapshotFeatures   *prometheus.GaugeVec
}

// NewMetrics registers collectors against reg, defaulting to the global
// registry when nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	queries, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "route_queries_total",
		Help: "Route recommendation queries, labeled by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_query_duration_seconds",
		Help:    "End-to-end latency of a route recommendation query.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 40},
	}))
	if err != nil {
		return nil, err
	}
	tolls, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "toll_fallbacks_total",
		Help: "Toll lookups that failed and were priced at zero.",
	}))
	if err != nil {
		return nil, err
	}
	risk, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "risk_fallbacks_total",
		Help: "Risk classifications answered by the rule engine instead of the model, by reason.",
	}, []string{"reason"}))
	if err != nil {
		return nil, err
	}
	tiers, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finalist_tier_total",
		Help: "Arbitration runs by the relaxation tier that produced the finalists.",
	}, []string{"tier"}))
	if err != nil {
		return nil, err
	}
	features, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "snapshot_features",
		Help: "Number of features in the currently loaded snapshot.",
	}, []string{"source"}))
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		gatherer:           gatherer,
		RouteQueries:       queries,
		RouteQueryDuration: duration,
		TollFallbacks:      tolls,
		RiskFallbacks:      risk,
		FinalistTiers:      tiers,
		SnapshotFeatures:   features,
	}

	return m, nil
}

// register adds c to reg, reusing the collector already registered under the
// same descriptor so two constructions against one registry share state.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}

// Handler exposes the gathered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveQuery(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.RouteQueries.WithLabelValues(outcome).Inc()
	m.RouteQueryDuration.Observe(dur.Seconds())
}

func (m *Metrics) TollFallback() {
	if m == nil {
		return
	}
	m.TollFallbacks.Inc()
}

func (m *Metrics) RiskFallback(reason string) {
	if m == nil {
		return
	}
	m.RiskFallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) FinalistTier(tier int) {
	if m == nil {
		return
	}
	m.FinalistTiers.WithLabelValues(strconv.Itoa(tier)).Inc()
}

func (m *Metrics) SnapshotSize(source string, n int) {
	if m == nil {
		return
	}
	m.SnapshotFeatures.WithLabelValues(source).Set(float64(n))
}
