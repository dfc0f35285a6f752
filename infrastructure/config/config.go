package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"api-monitor/infrastructure/logging"
)

type ClickHouse struct {
	Host      string
	Port      string
	Database  string
	User      string
	Password  string
	BatchSize int
}

// DSN builds the native-protocol URL the clickhouse driver expects.
func (c ClickHouse) DSN() string {
	return fmt.Sprintf("clickhouse://%s:%s@%s:%s/%s?dial_timeout=5s", c.User, c.Password, c.Host, c.Port, c.Database)
}

type Config struct {
	Source      string
	FixtureFile string
	FixtureSeed int64
	FixtureSize int

	BackendURL     string
	BackendTimeout time.Duration
	FetchPageSize  int

	ClickHouse ClickHouse

	ListenAddr string
	CacheSize  int

	SlowThresholdMS int64

	Log logging.Config
}

// Load reads .env when present, then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using environment variables")
	}

	lc := logging.DefaultConfig()
	lc.Level = GetString("LOG_LEVEL", lc.Level)
	lc.Format = GetString("LOG_FORMAT", lc.Format)
	lc.Output = GetString("LOG_OUTPUT", lc.Output)
	lc.FilePath = GetString("LOG_FILE", lc.FilePath)
	lc.Compress = GetBool("LOG_COMPRESS", lc.Compress)

	return Config{
		Source:      GetString("MONITOR_SOURCE", "fixture"),
		FixtureFile: GetString("FIXTURE_FILE", ""),
		FixtureSeed: int64(GetInt("FIXTURE_SEED", 0)),
		FixtureSize: GetInt("FIXTURE_REQUESTS", 50),

		BackendURL:     GetString("BACKEND_URL", "http://localhost:3000"),
		BackendTimeout: GetDuration("BACKEND_TIMEOUT", 15*time.Second),
		FetchPageSize:  GetInt("BACKEND_PAGE_SIZE", 100),

		ClickHouse: ClickHouse{
			Host:      GetString("CH_HOST", "localhost"),
			Port:      GetString("CH_PORT", "9000"),
			Database:  GetString("CH_DATABASE", "default"),
			User:      GetString("CH_USER", "default"),
			Password:  GetString("CH_PASSWORD", ""),
			BatchSize: GetInt("CH_BATCH_SIZE", 5000),
		},

		ListenAddr: GetString("LISTEN_ADDR", ":8080"),
		CacheSize:  GetInt("QUERY_CACHE_SIZE", 256),

		SlowThresholdMS: int64(GetInt("SLOW_THRESHOLD_MS", 1000)),

		Log: lc,
	}
}

func GetString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func GetInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			log.Warn().Str("key", key).Err(err).Msg("invalid integer in environment")
			return fallback
		}
		return parsed
	}
	return fallback
}

func GetBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			log.Warn().Str("key", key).Err(err).Msg("invalid boolean in environment")
			return fallback
		}
		return parsed
	}
	return fallback
}

// GetDuration accepts Go duration syntax ("15s", "2m").
func GetDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			log.Warn().Str("key", key).Err(err).Msg("invalid duration in environment")
			return fallback
		}
		return parsed
	}
	return fallback
}
