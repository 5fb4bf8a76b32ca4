package main

import (
	"context"
	"freightflow/internal/adapters/cache"
	"freightflow/internal/config"
	"freightflow/internal/platform/db"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// dbtool creates the cache schema ahead of a deploy. It targets DATABASE_URL
// when set and the SQLite file at DB_PATH otherwise.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	dbPath := config.Get("DB_PATH", "data/app.db")
	if strings.TrimSpace(databaseURL) == "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			log.Fatal(err)
		}
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, databaseURL, dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Printf("Initializing %s cache schema...", conn.Dialect)
	if err := cache.InitSchema(ctx, conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")
}
