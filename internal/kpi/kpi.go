// Package kpi aggregates per-query outcomes into the dashboard KPIs:
// the share of delayed recommendations and the money saved against baseline.
//
// Two deployment variants exist and are deliberately kept apart. The rolling
// variant keeps the last N observations and judges delay with the dashboard
// rule; the cumulative variant counts forever and judges delay with the
// served-API rule. Pick one with NewRolling or NewCumulative.
package kpi

import (
	"context"
	"fmt"
)

// Snapshot is the aggregate over all currently retained observations.
type Snapshot struct {
	DelayPct   float64
	MoneySaved float64
	Routes     int
}

// Aggregator stores observations. Implementations synchronize internally.
type Aggregator interface {
	Record(ctx context.Context, delayed bool, saved float64) error
	Snapshot(ctx context.Context) (Snapshot, error)
}

type Mode string

const (
	ModeRolling    Mode = "rolling"
	ModeCumulative Mode = "cumulative"
)

// DefaultWindow is the rolling window capacity used by the dashboard.
const DefaultWindow = 50

// ParseMode validates a configured mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeRolling, ModeCumulative:
		return Mode(s), nil
	case "":
		return ModeRolling, nil
	default:
		return "", fmt.Errorf("kpi: unknown mode %q (want %q or %q)", s, ModeRolling, ModeCumulative)
	}
}
