package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

type Config struct {
	// Server
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string

	// Upstream flight data
	AviationStackAPIKey  string
	AviationStackBaseURL string
	UpstreamTimeout      time.Duration
	UpstreamRPS          float64
	UpstreamBurst        int
	UpstreamStatusRPS    float64
	UpstreamStatusBurst  int

	// Cache
	CacheBackend  string
	CacheTTL      time.Duration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Metrics
	MetricsEnabled   bool
	MetricsNamespace string
}

// LoadConfig reads the environment, after loading a .env file when one is
// present. A missing API key is valid: lookups then serve the fallback
// schedule.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		ReadTimeout:     getEnvDuration("READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		AviationStackAPIKey:  strings.TrimSpace(os.Getenv("AVIATIONSTACK_API_KEY")),
		AviationStackBaseURL: getEnv("AVIATIONSTACK_BASE_URL", "https://api.aviationstack.com/v1"),
		UpstreamTimeout:      getEnvDuration("UPSTREAM_TIMEOUT", 2*time.Second),
		UpstreamRPS:          getEnvFloat("UPSTREAM_RPS", 5),
		UpstreamBurst:        getEnvInt("UPSTREAM_BURST", 10),

		CacheBackend:  strings.ToLower(getEnv("CACHE_BACKEND", CacheMemory)),
		CacheTTL:      getEnvDuration("CACHE_TTL", 30*time.Minute),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MetricsEnabled:   getEnvBool("METRICS_ENABLED", true),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "flightlookup"),
	}

	// Status lookups share the route quota unless tuned separately.
	cfg.UpstreamStatusRPS = getEnvFloat("UPSTREAM_STATUS_RPS", cfg.UpstreamRPS)
	cfg.UpstreamStatusBurst = getEnvInt("UPSTREAM_STATUS_BURST", cfg.UpstreamBurst)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.CacheBackend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("invalid CACHE_BACKEND %q: want memory, redis or none", c.CacheBackend)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("invalid UPSTREAM_TIMEOUT %v: must be positive", c.UpstreamTimeout)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("invalid CACHE_TTL %v: must be positive", c.CacheTTL)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
