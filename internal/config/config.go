package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all CLI settings, populated from environment variables and an
// optional .env file.
type Config struct {
	// OpenWeatherMap current-weather API.
	WeatherAPIKey    string
	WeatherBaseURL   string
	WeatherCountry   string
	WeatherTimeout   time.Duration
	WeatherCacheTTL  time.Duration // 0 disables the cache
	WeatherCacheSize int

	DatabaseURL     string // empty disables persistence
	ReportDir       string
	CropCatalogPath string // empty uses the built-in catalog

	KafkaBrokers []string // empty disables the Kafka sink
	KafkaTopic   string

	RedisAddr     string // empty disables the Redis sink
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	MetricsAddr     string // empty disables the metrics server
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("OPENWEATHER_TIMEOUT", "10s"))
	if err != nil || weatherTimeout <= 0 {
		return nil, errors.New("invalid OPENWEATHER_TIMEOUT")
	}

	cacheTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("WEATHER_CACHE_TTL", "10m"))
	if err != nil || cacheTTL < 0 {
		return nil, errors.New("invalid WEATHER_CACHE_TTL")
	}

	redisDB, err := strconv.Atoi(sharedcfg.EnvOrDefault("REDIS_DB", "0"))
	if err != nil || redisDB < 0 {
		return nil, errors.New("invalid REDIS_DB")
	}

	var brokers []string
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		WeatherAPIKey:    strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY")),
		WeatherBaseURL:   sharedcfg.EnvOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather"),
		WeatherCountry:   sharedcfg.EnvOrDefault("OPENWEATHER_COUNTRY", "BR"),
		WeatherTimeout:   weatherTimeout,
		WeatherCacheTTL:  cacheTTL,
		WeatherCacheSize: parseCacheSize(),

		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ReportDir:       sharedcfg.EnvOrDefault("REPORT_DIR", "data"),
		CropCatalogPath: strings.TrimSpace(os.Getenv("CROP_CATALOG_PATH")),

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "pest-alerts"),

		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		RedisChannel:  sharedcfg.EnvOrDefault("REDIS_CHANNEL", "pest-alerts"),

		MetricsAddr:     strings.TrimSpace(os.Getenv("METRICS_ADDR")),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.WeatherAPIKey == "" {
		return nil, errors.New("OPENWEATHER_API_KEY is required")
	}
	if cfg.ReportDir == "" {
		return nil, errors.New("REPORT_DIR is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parseCacheSize() int {
	if s := os.Getenv("WEATHER_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 100
}
