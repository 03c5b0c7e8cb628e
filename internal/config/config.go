package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Data sources understood by the loader.
const (
	SourceJSON   = "json"
	SourceSQLite = "sqlite"
	SourceKafka  = "kafka"
)

// Cache backends for the API's record cache.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataSource      string
	DataFile        string
	SQLitePath      string
	KafkaBrokers    []string
	KafkaTopic      string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	LoadTimeout     time.Duration
	CacheTTL        time.Duration
	CacheBackend    string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	// Report settings.
	LimitedThresholdMM float64
	TopN               int
	WindowTopN         int
	WindowDays         int
}

// Load reads configuration from environment variables, applying defaults where unset.
// Variables in an optional .env file (or the file named by ENV_FILE) are applied
// first without overriding the real environment.
func Load() (*Config, error) {
	if err := loadDotEnv(sharedcfg.EnvOrDefault("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	loadTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("LOAD_TIMEOUT", "30s"))
	if err != nil || loadTimeout <= 0 {
		return nil, errors.New("invalid LOAD_TIMEOUT")
	}

	cacheTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("CACHE_TTL", "30s"))
	if err != nil || cacheTTL < 0 {
		return nil, errors.New("invalid CACHE_TTL")
	}

	redisDB, err := strconv.Atoi(sharedcfg.EnvOrDefault("REDIS_DB", "0"))
	if err != nil || redisDB < 0 {
		return nil, errors.New("invalid REDIS_DB")
	}

	limited, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("LIMITED_THRESHOLD_MM", "2.0"), 64)
	if err != nil || limited < 0 {
		return nil, errors.New("invalid LIMITED_THRESHOLD_MM")
	}

	topN, err := parsePositiveInt("TOP_N", 25)
	if err != nil {
		return nil, err
	}
	windowTopN, err := parsePositiveInt("WINDOW_TOP_N", 10)
	if err != nil {
		return nil, err
	}
	windowDays, err := parsePositiveInt("WINDOW_DAYS", 365)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataSource:      sharedcfg.EnvOrDefault("DATA_SOURCE", SourceJSON),
		DataFile:        sharedcfg.EnvOrDefault("RAINFALL_DATA_FILE", "rainfall_data.json"),
		SQLitePath:      sharedcfg.EnvOrDefault("SQLITE_PATH", "rainfall.db"),
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "rainfall-measurements"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":6655"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		LoadTimeout:     loadTimeout,
		CacheTTL:        cacheTTL,
		CacheBackend:    sharedcfg.EnvOrDefault("CACHE_BACKEND", CacheMemory),
		RedisAddr:       sharedcfg.EnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         redisDB,

		LimitedThresholdMM: limited,
		TopN:               topN,
		WindowTopN:         windowTopN,
		WindowDays:         windowDays,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings required by the selected data source are present.
func (c *Config) Validate() error {
	switch c.DataSource {
	case SourceJSON:
		if c.DataFile == "" {
			return errors.New("RAINFALL_DATA_FILE is required for the json source")
		}
	case SourceSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite source")
		}
	case SourceKafka:
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required for the kafka source")
		}
		if c.KafkaTopic == "" {
			return errors.New("KAFKA_TOPIC is required for the kafka source")
		}
	default:
		return fmt.Errorf("invalid DATA_SOURCE %q (want json, sqlite or kafka)", c.DataSource)
	}

	switch c.CacheBackend {
	case CacheMemory:
	case CacheRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis cache")
		}
	default:
		return fmt.Errorf("invalid CACHE_BACKEND %q (want memory or redis)", c.CacheBackend)
	}
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}
