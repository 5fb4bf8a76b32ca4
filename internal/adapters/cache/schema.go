package cache

import (
	"context"
	"errors"
	"fmt"
	"freightflow/internal/platform/db"
)

// InitSchema creates the cache tables. The DDL is shared by Postgres and
// SQLite; both accept DOUBLE PRECISION and ON CONFLICT upserts.
func InitSchema(ctx context.Context, conn *db.Conn) error {
	if conn == nil || conn.DB == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDirectionsCacheQuery := `
	CREATE TABLE IF NOT EXISTS directions_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        seq INTEGER NOT NULL,
        geometry TEXT NOT NULL,
        distance_meters DOUBLE PRECISION NOT NULL,
        duration_seconds DOUBLE PRECISION NOT NULL,
        fetched_at BIGINT NOT NULL,
        PRIMARY KEY (origin, destination, seq)
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        query TEXT NOT NULL,
        seq INTEGER NOT NULL,
        name TEXT NOT NULL,
        lon DOUBLE PRECISION NOT NULL,
        lat DOUBLE PRECISION NOT NULL,
        PRIMARY KEY (query, seq)
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_directions_cache_fetched_at
    ON directions_cache(fetched_at);
	`

	statements := []string{
		createDirectionsCacheQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
