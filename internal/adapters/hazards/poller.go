package hazards

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultInterval   = 15 * time.Minute
	DefaultRetryDelay = 60 * time.Second
)

// Poller snapshots a Fetcher into a directory on a fixed cadence.
type Poller struct {
	feed     Fetcher
	dir      string
	interval time.Duration
	retry    time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewPoller(feed Fetcher, dir string, interval, retry time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if retry <= 0 {
		retry = DefaultRetryDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{feed: feed, dir: dir, interval: interval, retry: retry, logger: logger, now: time.Now}
}

// Once fetches the feed and writes one snapshot, returning its path.
func (p *Poller) Once(ctx context.Context) (string, error) {
	features, err := p.feed.Fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}

	path, err := WriteSnapshot(p.dir, features, p.now())
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}

	p.logger.Info("snapshot saved", zap.String("file", filepath.Base(path)), zap.Int("hazards", len(features)))
	return path, nil
}

// Run snapshots until ctx is cancelled, waiting the full interval after a
// success and the retry delay after a failure.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("ingest loop running", zap.Duration("interval", p.interval), zap.String("dir", p.dir))

	for {
		wait := p.interval
		if _, err := p.Once(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("fetch failed", zap.Error(err))
			wait = p.retry
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.Info("ingest loop stopped")
			return nil
		case <-timer.C:
		}
	}
}
