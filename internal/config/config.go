package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port          string
	Env           string
	JWTSecret     string
	MigrationsDir string

	// CORSAllowedHosts lists the browser origins (host[:port]) of the quote editor.
	CORSAllowedHosts []string

	DB        DatabaseConfig
	Redis     RedisConfig
	Selection SelectionConfig
	Catalog   CatalogConfig
	Worker    WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters. An empty Host disables
// Redis and the service falls back to in-process stores.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// SelectionConfig tunes the selection panels.
type SelectionConfig struct {
	RecentLimit          int
	PageSize             int
	SearchDebounce       time.Duration
	PanelTTL             time.Duration
	InventoryCacheTTL    time.Duration
	TreatmentCatalogPath string
}

// CatalogConfig points panels at a hosted catalog API. An empty RemoteURL
// keeps panels on the local database.
type CatalogConfig struct {
	RemoteURL   string
	RemoteToken string
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	InventoryWarmInterval time.Duration
	PanelSweepInterval    time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Missing .env is fine: production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.CORSAllowedHosts = splitList(getEnv("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000"))
	cfg.MigrationsDir = getEnv("MIGRATIONS_DIR", "migrations")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Selection panels
	cfg.Selection = SelectionConfig{
		RecentLimit:          getEnvInt("RECENT_LIMIT", 10),
		PageSize:             getEnvInt("PAGE_SIZE", 50),
		TreatmentCatalogPath: getEnv("TREATMENT_CATALOG_PATH", ""),
	}

	// Remote catalog
	cfg.Catalog = CatalogConfig{
		RemoteURL:   getEnv("CATALOG_REMOTE_URL", ""),
		RemoteToken: getEnv("CATALOG_REMOTE_TOKEN", ""),
	}

	var err error
	if cfg.Selection.SearchDebounce, err = parseDurationEnv("SEARCH_DEBOUNCE", "300ms"); err != nil {
		return nil, fmt.Errorf("invalid SEARCH_DEBOUNCE: %w", err)
	}
	if cfg.Selection.PanelTTL, err = parseDurationEnv("PANEL_TTL", "30m"); err != nil {
		return nil, fmt.Errorf("invalid PANEL_TTL: %w", err)
	}
	if cfg.Selection.InventoryCacheTTL, err = parseDurationEnv("INVENTORY_CACHE_TTL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid INVENTORY_CACHE_TTL: %w", err)
	}

	// Workers (durations)
	if cfg.Worker.InventoryWarmInterval, err = parseDurationEnv("INVENTORY_WARM_INTERVAL", "4m"); err != nil {
		return nil, fmt.Errorf("invalid INVENTORY_WARM_INTERVAL: %w", err)
	}
	if cfg.Worker.PanelSweepInterval, err = parseDurationEnv("PANEL_SWEEP_INTERVAL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid PANEL_SWEEP_INTERVAL: %w", err)
	}

	if cfg.Selection.RecentLimit <= 0 {
		return nil, errors.New("RECENT_LIMIT must be greater than zero")
	}
	if cfg.Selection.PageSize <= 0 || cfg.Selection.PageSize > 200 {
		return nil, errors.New("PAGE_SIZE must be between 1 and 200")
	}

	// Basic validation for DB parameters
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// LoadDatabase reads only the database section. The CLI uses it for
// migrations and imports where JWT and Redis are irrelevant.
func LoadDatabase() (*DatabaseConfig, error) {
	_ = godotenv.Load()

	db := &DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
	if db.Host == "" || db.User == "" || db.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}
	return db, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
