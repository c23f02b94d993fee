package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Recent upload store backends
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds all configuration for the back-office console
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	API      APIConfig      `yaml:"api"`
	Cache    CacheConfig    `yaml:"cache"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Uploads  UploadsConfig  `yaml:"uploads"`
	Views    ViewsConfig    `yaml:"views"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// AllowedOrigins are the browser origins allowed cross-origin and on
	// the watch stream; empty means same-origin only
	AllowedOrigins []string `yaml:"allowed_origins"`
	// APIKeys are the caller keys accepted on the console API
	APIKeys []string `yaml:"api_keys"`
}

// APIConfig describes the admin backend the console talks to
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	CSRFCookie string        `yaml:"csrf_cookie"`
	CSRFHeader string        `yaml:"csrf_header"`
	Timeout    time.Duration `yaml:"timeout"`
	AuthToken  string        `yaml:"auth_token"`
}

// CacheConfig holds query cache configuration
type CacheConfig struct {
	MaxEntries      int           `yaml:"max_entries"`
	StaleTime       time.Duration `yaml:"stale_time"`
	GCTime          time.Duration `yaml:"gc_time"`
	JanitorInterval time.Duration `yaml:"janitor_interval"`
	// SharedTier enables the Redis second level
	SharedTier bool `yaml:"shared_tier"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// DatabaseConfig holds PostgreSQL configuration. An empty DSN disables
// the database.
type DatabaseConfig struct {
	DSN          string        `yaml:"dsn"`
	MaxOpenConns int32         `yaml:"max_open_conns"`
	MaxIdleConns int32         `yaml:"max_idle_conns"`
	MaxLifetime  time.Duration `yaml:"max_lifetime"`
}

// UploadsConfig holds asset upload configuration
type UploadsConfig struct {
	MaxImages       int    `yaml:"max_images"`
	MaxImageSizeMB  int    `yaml:"max_image_size_mb"`
	MaxDocuments    int    `yaml:"max_documents"`
	MaxDocumentSize int    `yaml:"max_document_size_mb"`
	RecentLimit     int    `yaml:"recent_limit"`
	RecentStore     string `yaml:"recent_store"`
}

// ViewsConfig holds table preset configuration
type ViewsConfig struct {
	// Dir overrides the built-in presets when set
	Dir      string        `yaml:"dir"`
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		API: APIConfig{
			BaseURL:    "http://localhost:5000/api/v1",
			CSRFCookie: "csrf_token",
			CSRFHeader: "x-csrf-token",
			Timeout:    30 * time.Second,
		},
		Cache: CacheConfig{
			MaxEntries:      1000,
			StaleTime:       30 * time.Second,
			GCTime:          5 * time.Minute,
			JanitorInterval: time.Minute,
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
			Prefix:  "backoffice:cache:",
			TTL:     5 * time.Minute,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 1,
			MaxLifetime:  30 * time.Minute,
		},
		Uploads: UploadsConfig{
			MaxImages:       10,
			MaxImageSizeMB:  5,
			MaxDocuments:    5,
			MaxDocumentSize: 10,
			RecentLimit:     50,
			RecentStore:     StoreMemory,
		},
		Views: ViewsConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Load loads configuration: built-in defaults, then the YAML file named by
// BACKOFFICE_CONFIG, then environment variables
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("BACKOFFICE_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFile overlays a YAML file onto the configuration
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables
func (c *Config) ApplyEnv() {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("SERVER_PORT", c.Server.Port)
	c.Server.AllowedOrigins = getEnvAsSlice("SERVER_ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Server.APIKeys = getEnvAsSlice("SERVER_API_KEYS", c.Server.APIKeys)

	c.API.BaseURL = getEnv("API_BASE_URL", c.API.BaseURL)
	c.API.CSRFCookie = getEnv("API_CSRF_COOKIE", c.API.CSRFCookie)
	c.API.CSRFHeader = getEnv("API_CSRF_HEADER", c.API.CSRFHeader)
	c.API.Timeout = getEnvAsDuration("API_TIMEOUT", c.API.Timeout)
	c.API.AuthToken = getEnv("API_AUTH_TOKEN", c.API.AuthToken)

	c.Cache.MaxEntries = getEnvAsInt("CACHE_MAX_ENTRIES", c.Cache.MaxEntries)
	c.Cache.StaleTime = getEnvAsDuration("CACHE_STALE_TIME", c.Cache.StaleTime)
	c.Cache.GCTime = getEnvAsDuration("CACHE_GC_TIME", c.Cache.GCTime)
	c.Cache.JanitorInterval = getEnvAsDuration("CACHE_JANITOR_INTERVAL", c.Cache.JanitorInterval)
	c.Cache.SharedTier = getEnvAsBool("CACHE_SHARED_TIER", c.Cache.SharedTier)

	c.Redis.Address = getEnv("REDIS_ADDRESS", c.Redis.Address)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("REDIS_DB", c.Redis.DB)
	c.Redis.Prefix = getEnv("REDIS_PREFIX", c.Redis.Prefix)
	c.Redis.TTL = getEnvAsDuration("REDIS_TTL", c.Redis.TTL)

	c.Database.DSN = getEnv("DATABASE_DSN", c.Database.DSN)
	c.Database.MaxOpenConns = int32(getEnvAsInt("DATABASE_MAX_OPEN_CONNS", int(c.Database.MaxOpenConns)))
	c.Database.MaxIdleConns = int32(getEnvAsInt("DATABASE_MAX_IDLE_CONNS", int(c.Database.MaxIdleConns)))
	c.Database.MaxLifetime = getEnvAsDuration("DATABASE_MAX_LIFETIME", c.Database.MaxLifetime)

	c.Uploads.MaxImages = getEnvAsInt("UPLOADS_MAX_IMAGES", c.Uploads.MaxImages)
	c.Uploads.MaxImageSizeMB = getEnvAsInt("UPLOADS_MAX_IMAGE_SIZE_MB", c.Uploads.MaxImageSizeMB)
	c.Uploads.MaxDocuments = getEnvAsInt("UPLOADS_MAX_DOCUMENTS", c.Uploads.MaxDocuments)
	c.Uploads.MaxDocumentSize = getEnvAsInt("UPLOADS_MAX_DOCUMENT_SIZE_MB", c.Uploads.MaxDocumentSize)
	c.Uploads.RecentLimit = getEnvAsInt("UPLOADS_RECENT_LIMIT", c.Uploads.RecentLimit)
	c.Uploads.RecentStore = getEnv("UPLOADS_RECENT_STORE", c.Uploads.RecentStore)

	c.Views.Dir = getEnv("VIEWS_DIR", c.Views.Dir)
	c.Views.Debounce = getEnvAsDuration("VIEWS_DEBOUNCE", c.Views.Debounce)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if len(c.Server.APIKeys) == 0 {
		return fmt.Errorf("at least one server API key is required")
	}
	for _, key := range c.Server.APIKeys {
		if len(key) < 16 {
			return fmt.Errorf("server API keys must be at least 16 characters")
		}
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("api base URL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api base URL: %q", c.API.BaseURL)
	}

	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("invalid cache max entries: %d", c.Cache.MaxEntries)
	}

	switch c.Uploads.RecentStore {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database DSN is required for the %s recent store", StorePostgres)
		}
	default:
		return fmt.Errorf("unknown recent upload store: %q", c.Uploads.RecentStore)
	}

	if c.Uploads.MaxImages < 1 || c.Uploads.MaxDocuments < 1 {
		return fmt.Errorf("upload file limits must be positive")
	}

	return nil
}

// Addr is the listen address of the console server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
