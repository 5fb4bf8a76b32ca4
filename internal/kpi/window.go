package kpi

import (
	"context"
	"sync"
)

type observation struct {
	delayed bool
	saved   float64
}

// Window is a fixed-capacity rolling window; the oldest observation is
// evicted once capacity is exceeded.
type Window struct {
	mu   sync.Mutex
	buf  []observation
	next int
	full bool
}

func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = DefaultWindow
	}
	return &Window{buf: make([]observation, capacity)}
}

func (w *Window) Record(_ context.Context, delayed bool, saved float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf[w.next] = observation{delayed: delayed, saved: saved}
	w.next++
	if w.next == len(w.buf) {
		w.next = 0
		w.full = true
	}
	return nil
}

func (w *Window) Snapshot(_ context.Context) (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := w.next
	if w.full {
		n = len(w.buf)
	}
	if n == 0 {
		return Snapshot{}, nil
	}

	delayed := 0
	saved := 0.0
	for _, o := range w.buf[:n] {
		if o.delayed {
			delayed++
		}
		saved += o.saved
	}

	return Snapshot{
		DelayPct:   float64(delayed) / float64(n),
		MoneySaved: saved,
		Routes:     n,
	}, nil
}

// Capacity returns the maximum number of retained observations.
func (w *Window) Capacity() int { return len(w.buf) }
