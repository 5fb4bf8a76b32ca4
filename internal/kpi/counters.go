package kpi

import (
	"context"
	"sync"
)

// Counters keeps unbounded cumulative totals in process memory.
type Counters struct {
	mu         sync.Mutex
	routes     int
	highRisk   int
	moneySaved float64
}

func NewCounters() *Counters { return &Counters{} }

func (c *Counters) Record(_ context.Context, delayed bool, saved float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.routes++
	if delayed {
		c.highRisk++
	}
	c.moneySaved += saved
	return nil
}

func (c *Counters) Snapshot(_ context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.routes == 0 {
		return Snapshot{}, nil
	}
	return Snapshot{
		DelayPct:   float64(c.highRisk) / float64(c.routes),
		MoneySaved: c.moneySaved,
		Routes:     c.routes,
	}, nil
}
