package cache

import (
	"context"
	"errors"
	"fmt"
	"freightflow/internal/domain"
	"freightflow/internal/platform/db"
	"freightflow/internal/platform/obs"
	"strings"

	"go.uber.org/zap"
)

// SQLGeocodeCache is a SQL-backed cache mapping place queries to their
// ranked geocoder hits. Query keys are normalized here so callers can pass
// raw user input.
type SQLGeocodeCache struct {
	conn   *db.Conn
	logger *zap.Logger
}

func NewSQLGeocodeCache(conn *db.Conn, logger *zap.Logger) *SQLGeocodeCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLGeocodeCache{conn: conn, logger: logger}
}

// NormalizeQuery collapses whitespace and case so equivalent searches share an entry.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// Get fetches the cached hits for a query.
func (s *SQLGeocodeCache) Get(ctx context.Context, query string) (_ []domain.Place, ok bool, err error) {
	defer obs.Time(ctx, s.logger, "geocode.cache.Get")(&err)

	if s.conn == nil || s.conn.DB == nil {
		return nil, false, errors.New("geocode cache: db is nil")
	}

	key := NormalizeQuery(query)
	if key == "" {
		return nil, false, errors.New("get geocode cache: query must not be empty")
	}

	q := s.conn.Dialect.Rebind(`
	SELECT name, lon, lat
    FROM geocode_cache
    WHERE query = ?
    ORDER BY seq;
	`)

	rows, err := s.conn.DB.QueryContext(ctx, q, key)
	if err != nil {
		return nil, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	var out []domain.Place
	for rows.Next() {
		var p domain.Place
		if err := rows.Scan(&p.Name, &p.Lon, &p.Lat); err != nil {
			return nil, false, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}

	return out, len(out) > 0, nil
}

// Put stores the hits for a query, replacing any previous entry.
func (s *SQLGeocodeCache) Put(ctx context.Context, query string, places []domain.Place) error {
	if s.conn == nil || s.conn.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	key := NormalizeQuery(query)
	if key == "" {
		return errors.New("insert geocode cache: empty query key")
	}

	if len(places) == 0 {
		return nil
	}

	tx, err := s.conn.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.conn.Dialect.Rebind(`
	DELETE FROM geocode_cache WHERE query = ?;
	`), key); err != nil {
		return fmt.Errorf("insert geocode cache: clear query: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.conn.Dialect.Rebind(`
	INSERT INTO geocode_cache (query, seq, name, lon, lat)
    VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (query, seq) DO UPDATE
	SET name = EXCLUDED.name,
		lon = EXCLUDED.lon,
		lat = EXCLUDED.lat;
	`))
	if err != nil {
		return fmt.Errorf("insert geocode cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for i, p := range places {
		if _, err := stmt.ExecContext(ctx, key, i, p.Name, p.Lon, p.Lat); err != nil {
			return fmt.Errorf("insert geocode cache query=%q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}

	return nil
}
