package cache

import (
	"context"
	"errors"
	"fmt"
	"freightflow/internal/domain"
	"freightflow/internal/platform/db"
	"freightflow/internal/platform/obs"
	"time"

	"go.uber.org/zap"
)

// SQLDirectionsCache is a SQL-backed cache of candidate routes per
// origin/destination pair. Entries older than the TTL are treated as misses
// because routing conditions change through the day.
type SQLDirectionsCache struct {
	conn   *db.Conn
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewSQLDirectionsCache(conn *db.Conn, ttl time.Duration, logger *zap.Logger) *SQLDirectionsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLDirectionsCache{conn: conn, ttl: ttl, logger: logger, now: time.Now}
}

// Get returns cached candidates in provider order. ok is false on a miss or
// when the entry has expired.
func (s *SQLDirectionsCache) Get(
	ctx context.Context,
	origin, destination domain.Coordinates,
) (_ []domain.CandidateRoute, ok bool, err error) {
	defer obs.Time(ctx, s.logger, "directions.cache.Get")(&err)

	if s.conn == nil || s.conn.DB == nil {
		return nil, false, errors.New("directions cache: db is nil")
	}

	q := s.conn.Dialect.Rebind(`
	SELECT geometry, distance_meters, duration_seconds, fetched_at
    FROM directions_cache
    WHERE origin = ?
        AND destination = ?
    ORDER BY seq;
	`)

	rows, err := s.conn.DB.QueryContext(ctx, q, origin.Key(), destination.Key())
	if err != nil {
		return nil, false, fmt.Errorf("get directions cache: query directions_cache table: %w", err)
	}
	defer rows.Close()

	cutoff := s.now().Add(-s.ttl).Unix()
	out := make([]domain.CandidateRoute, 0, 3)
	for rows.Next() {
		var r domain.CandidateRoute
		var fetchedAt int64
		if err := rows.Scan(&r.Geometry, &r.DistanceMeters, &r.DurationSeconds, &fetchedAt); err != nil {
			return nil, false, fmt.Errorf("get directions cache: scan rows: %w", err)
		}
		if s.ttl > 0 && fetchedAt < cutoff {
			return nil, false, nil
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("get directions cache: row iteration: %w", err)
	}

	if len(out) == 0 {
		return nil, false, nil
	}
	return out, true, nil
}

// Put replaces the cached candidates for one pair.
func (s *SQLDirectionsCache) Put(
	ctx context.Context,
	origin, destination domain.Coordinates,
	routes []domain.CandidateRoute,
) error {
	if s.conn == nil || s.conn.DB == nil {
		return errors.New("directions cache: db is nil")
	}

	if len(routes) == 0 {
		return nil
	}

	tx, err := s.conn.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert directions cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	from, to := origin.Key(), destination.Key()

	if _, err := tx.ExecContext(ctx, s.conn.Dialect.Rebind(`
	DELETE FROM directions_cache WHERE origin = ? AND destination = ?;
	`), from, to); err != nil {
		return fmt.Errorf("insert directions cache: clear pair: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.conn.Dialect.Rebind(`
	INSERT INTO directions_cache (
        origin,
        destination,
        seq,
        geometry,
        distance_meters,
        duration_seconds,
        fetched_at
    )
    VALUES (?, ?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("insert directions cache: db prepare: %w", err)
	}
	defer stmt.Close()

	fetchedAt := s.now().Unix()
	for i, r := range routes {
		if r.Geometry == "" {
			return fmt.Errorf("insert directions cache: empty geometry at seq %d", i)
		}

		if _, err := stmt.ExecContext(ctx, from, to, i, r.Geometry, r.DistanceMeters, r.DurationSeconds, fetchedAt); err != nil {
			return fmt.Errorf("insert directions cache seq=%d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert directions cache commit: %w", err)
	}

	return nil
}
