package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads; getEnv treats empty as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		FileEnv, "PORT", "APP_ENV", "MAPBOX_TOKEN", "KPI_MODE", "KPI_WINDOW",
		"HAZARD_DIR", "TRAFFIC_DIR", "INGEST_INTERVAL", "INGEST_RETRY",
		"DIRECTIONS_CACHE_TTL", "VEHICLE_TYPE", "DEFAULT_DEADLINE_MIN",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAPBOX_TOKEN", "pk.abc")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "rolling", cfg.KPI.Mode)
	assert.Equal(t, 50, cfg.KPI.Window)
	assert.Equal(t, 15*time.Minute, cfg.Hazards.Interval)
	assert.Equal(t, time.Minute, cfg.Hazards.Retry)
	assert.Equal(t, cfg.Hazards.Dir, cfg.Hazards.TrafficDir)
	assert.Equal(t, 15*time.Minute, cfg.Database.DirectionsCacheTTL)
	assert.Equal(t, "car", cfg.Routing.VehicleType)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freightflow.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = "9000"

[kpi]
mode = "cumulative"
window = 10

[hazards]
dir = "/srv/hazards"
interval = "5m"

[routing]
default_deadline_min = 45.0
`), 0o644))

	clearEnv(t)
	t.Setenv(FileEnv, path)
	t.Setenv("PORT", "7000")
	t.Setenv("KPI_WINDOW", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port, "env wins over file")
	assert.Equal(t, "cumulative", cfg.KPI.Mode)
	assert.Equal(t, 10, cfg.KPI.Window, "unparseable env keeps file value")
	assert.Equal(t, "/srv/hazards", cfg.Hazards.TrafficDir)
	assert.Equal(t, 5*time.Minute, cfg.Hazards.Interval)
	assert.Equal(t, 45.0, cfg.Routing.DefaultDeadlineMin)
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0o644))
	t.Setenv(FileEnv, path)

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")

	cfg.Mapbox.Token = "pk.abc"
	cfg.KPI.Window = 0
	require.Error(t, cfg.Validate())
}

func TestGet(t *testing.T) {
	t.Setenv("FREIGHTFLOW_TEST_KEY", "")
	assert.Equal(t, "fallback", Get("FREIGHTFLOW_TEST_KEY", "fallback"))
	t.Setenv("FREIGHTFLOW_TEST_KEY", "set")
	assert.Equal(t, "set", Get("FREIGHTFLOW_TEST_KEY", "fallback"))
}
