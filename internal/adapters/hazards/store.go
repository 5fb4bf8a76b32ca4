package hazards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"freightflow/internal/domain"
	"freightflow/internal/platform/obs"
	"freightflow/internal/ports"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Store serves the most recent snapshot in a directory. Reads never touch
// the upstream feed; Load or Watch swap in newer snapshots.
type Store struct {
	dir     string
	source  string
	logger  *zap.Logger
	metrics *obs.Metrics

	mu       sync.RWMutex
	path     string
	raw      []byte
	features []domain.Feature
}

func NewStore(dir, source string, logger *zap.Logger, metrics *obs.Metrics) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, source: source, logger: logger, metrics: metrics}
}

func (s *Store) Dir() string { return s.dir }

// Features returns the loaded snapshot's point features.
func (s *Store) Features(_ context.Context) ([]domain.Feature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.raw == nil {
		return nil, ports.ErrNoSnapshot
	}
	return s.features, nil
}

// Raw returns the loaded snapshot exactly as stored on disk.
func (s *Store) Raw(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.raw == nil {
		return nil, ports.ErrNoSnapshot
	}
	return s.raw, nil
}

// Load reads the newest snapshot in the directory. ErrNoSnapshot is returned
// when the directory holds none yet; the previous snapshot, if any, stays.
func (s *Store) Load(ctx context.Context) error {
	path, err := LatestSnapshot(s.dir)
	if err != nil {
		return err
	}
	return s.loadFile(ctx, path)
}

func (s *Store) loadFile(ctx context.Context, path string) error {
	s.mu.RLock()
	current := s.path
	s.mu.RUnlock()
	if current != "" && filepath.Base(path) < filepath.Base(current) {
		return nil
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load snapshot %q: %w", path, err)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return fmt.Errorf("load snapshot %q: %w", path, err)
	}
	features, skipped := ParseFeatures(fc.Features)

	s.mu.Lock()
	s.path = path
	s.raw = body
	s.features = features
	s.mu.Unlock()

	s.metrics.SnapshotSize(s.source, len(features))
	s.logger.Info("snapshot loaded",
		zap.String("req_id", obs.RequestID(ctx)),
		zap.String("source", s.source),
		zap.String("file", filepath.Base(path)),
		zap.Int("features", len(features)),
		zap.Int("skipped", skipped),
	)
	return nil
}

// Watch reloads the store whenever a new snapshot appears in the directory.
// It blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("watch snapshots: create dir: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch snapshots: %w", err)
	}
	defer w.Close()

	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("watch snapshots: add %q: %w", s.dir, err)
	}

	// A snapshot may have landed between startup and Add.
	if err := s.Load(ctx); err != nil && !errors.Is(err, ports.ErrNoSnapshot) {
		s.logger.Warn("snapshot reload failed", zap.String("source", s.source), zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !IsSnapshot(event.Name) {
				continue
			}
			if err := s.loadFile(ctx, event.Name); err != nil {
				s.logger.Warn("snapshot reload failed", zap.String("source", s.source), zap.Error(err))
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("snapshot watcher error", zap.String("source", s.source), zap.Error(err))
		}
	}
}
