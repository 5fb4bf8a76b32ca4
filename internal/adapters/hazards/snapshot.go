package hazards

import (
	"encoding/json"
	"fmt"
	"freightflow/internal/ports"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	snapshotExt    = ".geojson"
	snapshotLayout = "2006-01-02_15-04"
)

// SnapshotName is the file name for a snapshot taken at t (UTC, minute
// resolution). Names sort chronologically.
func SnapshotName(t time.Time) string {
	return t.UTC().Format(snapshotLayout) + snapshotExt
}

// IsSnapshot reports whether name looks like a snapshot file.
func IsSnapshot(name string) bool {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, snapshotExt) || strings.HasPrefix(base, ".") {
		return false
	}
	_, err := time.Parse(snapshotLayout, strings.TrimSuffix(base, snapshotExt))
	return err == nil
}

// WriteSnapshot stores features as one FeatureCollection file in dir. The
// file is written under a temporary name and renamed so readers never see a
// partial snapshot. A second snapshot in the same minute replaces the first.
func WriteSnapshot(dir string, features []json.RawMessage, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("write snapshot: create dir: %w", err)
	}
	if features == nil {
		features = []json.RawMessage{}
	}

	body, err := json.Marshal(FeatureCollection{Type: "FeatureCollection", Features: features})
	if err != nil {
		return "", fmt.Errorf("write snapshot: encode: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return "", fmt.Errorf("write snapshot: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write snapshot: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write snapshot: close: %w", err)
	}

	out := filepath.Join(dir, SnapshotName(now))
	if err := os.Rename(tmp.Name(), out); err != nil {
		return "", fmt.Errorf("write snapshot: rename: %w", err)
	}
	return out, nil
}

// LatestSnapshot returns the newest snapshot path in dir, or
// ports.ErrNoSnapshot when there is none.
func LatestSnapshot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return "", ports.ErrNoSnapshot
	}
	if err != nil {
		return "", fmt.Errorf("latest snapshot: read dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && IsSnapshot(e.Name()) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", ports.ErrNoSnapshot
	}

	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1]), nil
}
