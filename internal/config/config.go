// Package config loads service settings from an optional TOML file and the
// environment. Environment variables always win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileEnv names the variable pointing at an optional TOML config file.
const FileEnv = "FREIGHTFLOW_CONFIG"

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Mapbox   MapboxConfig   `toml:"mapbox"`
	TfNSW    TfNSWConfig    `toml:"tfnsw"`
	OpenAI   OpenAIConfig   `toml:"openai"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	KPI      KPIConfig      `toml:"kpi"`
	Hazards  HazardsConfig  `toml:"hazards"`
	Routing  RoutingConfig  `toml:"routing"`
}

type ServerConfig struct {
	Port         string        `toml:"port"`
	AppEnv       string        `toml:"app_env"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

type MapboxConfig struct {
	Token   string `toml:"token"`
	BaseURL string `toml:"base_url"`
}

type TfNSWConfig struct {
	APIKey string `toml:"api_key"`
}

type OpenAIConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// DatabaseConfig selects the cache database: Postgres when URL is set,
// otherwise SQLite at Path.
type DatabaseConfig struct {
	URL                string        `toml:"url"`
	Path               string        `toml:"path"`
	DirectionsCacheTTL time.Duration `toml:"directions_cache_ttl"`
}

// RedisConfig backs the cumulative KPI store when Addr is set.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type KPIConfig struct {
	Mode   string `toml:"mode"`
	Window int    `toml:"window"`
}

type HazardsConfig struct {
	Dir        string        `toml:"dir"`
	TrafficDir string        `toml:"traffic_dir"`
	Interval   time.Duration `toml:"interval"`
	Retry      time.Duration `toml:"retry"`
	InProcess  bool          `toml:"in_process"`
}

type RoutingConfig struct {
	VehicleType        string  `toml:"vehicle_type"`
	DefaultDeadlineMin float64 `toml:"default_deadline_min"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			AppEnv:       "production",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		Database: DatabaseConfig{
			Path:               "data/app.db",
			DirectionsCacheTTL: 15 * time.Minute,
		},
		KPI: KPIConfig{
			Mode:   "rolling",
			Window: 50,
		},
		Hazards: HazardsConfig{
			Dir:      "data/hazards",
			Interval: 15 * time.Minute,
			Retry:    60 * time.Second,
		},
		Routing: RoutingConfig{
			VehicleType:        "car",
			DefaultDeadlineMin: 60,
		},
	}
}

// Load builds the configuration: defaults, then the TOML file named by
// FREIGHTFLOW_CONFIG (if any), then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv(FileEnv); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config: decode %q: %w", path, err)
		}
	}

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.AppEnv = getEnv("APP_ENV", cfg.Server.AppEnv)
	cfg.Server.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)

	cfg.Mapbox.Token = getEnv("MAPBOX_TOKEN", cfg.Mapbox.Token)
	cfg.Mapbox.BaseURL = getEnv("MAPBOX_BASE_URL", cfg.Mapbox.BaseURL)
	cfg.TfNSW.APIKey = getEnv("TFNSW_API_KEY", cfg.TfNSW.APIKey)
	cfg.OpenAI.APIKey = getEnv("OPENAI_API_KEY", cfg.OpenAI.APIKey)
	cfg.OpenAI.Model = getEnv("OPENAI_MODEL", cfg.OpenAI.Model)

	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.Path = getEnv("DB_PATH", cfg.Database.Path)
	cfg.Database.DirectionsCacheTTL = getDurationEnv("DIRECTIONS_CACHE_TTL", cfg.Database.DirectionsCacheTTL)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getIntEnv("REDIS_DB", cfg.Redis.DB)

	cfg.KPI.Mode = getEnv("KPI_MODE", cfg.KPI.Mode)
	cfg.KPI.Window = getIntEnv("KPI_WINDOW", cfg.KPI.Window)

	cfg.Hazards.Dir = getEnv("HAZARD_DIR", cfg.Hazards.Dir)
	cfg.Hazards.TrafficDir = getEnv("TRAFFIC_DIR", cfg.Hazards.TrafficDir)
	cfg.Hazards.Interval = getDurationEnv("INGEST_INTERVAL", cfg.Hazards.Interval)
	cfg.Hazards.Retry = getDurationEnv("INGEST_RETRY", cfg.Hazards.Retry)
	cfg.Hazards.InProcess = getBoolEnv("INGEST_IN_PROCESS", cfg.Hazards.InProcess)
	if cfg.Hazards.TrafficDir == "" {
		cfg.Hazards.TrafficDir = cfg.Hazards.Dir
	}

	cfg.Routing.VehicleType = getEnv("VEHICLE_TYPE", cfg.Routing.VehicleType)
	cfg.Routing.DefaultDeadlineMin = getFloatEnv("DEFAULT_DEADLINE_MIN", cfg.Routing.DefaultDeadlineMin)

	return cfg, nil
}

// Validate checks the settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Mapbox.Token) == "" {
		errs = append(errs, errors.New("MAPBOX_TOKEN is required"))
	}
	if c.KPI.Window < 1 {
		errs = append(errs, fmt.Errorf("KPI_WINDOW must be positive, got %d", c.KPI.Window))
	}
	if c.Routing.DefaultDeadlineMin <= 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_DEADLINE_MIN must be positive, got %v", c.Routing.DefaultDeadlineMin))
	}
	return errors.Join(errs...)
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	return getEnv(key, fallback)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
