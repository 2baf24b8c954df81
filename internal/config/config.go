package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	TMDB       TMDBConfig       `mapstructure:"tmdb"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Session    SessionConfig    `mapstructure:"session"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Security   SecurityConfig   `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type CatalogConfig struct {
	MoviesPath     string `mapstructure:"movies_path"`
	SimilarityPath string `mapstructure:"similarity_path"`
}

type TMDBConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	ImageBaseURL   string        `mapstructure:"image_base_url"`
	APIKey         string        `mapstructure:"api_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Retry          RetryConfig   `mapstructure:"retry"`
	Breaker        BreakerConfig `mapstructure:"breaker"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
}

type BreakerConfig struct {
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
	MaxHalfOpen      uint32        `mapstructure:"max_half_open"`
}

type RedisConfig struct {
	Sessions RedisInstanceConfig `mapstructure:"sessions"`
	Cache    RedisInstanceConfig `mapstructure:"cache"`
}

type RedisInstanceConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	JWTSecret   string          `mapstructure:"jwt_secret"`
	TokenTTL    time.Duration   `mapstructure:"token_ttl"`
	HistorySize int             `mapstructure:"history_size"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	// Set defaults
	setDefaults()

	// Environment variable overrides
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	// Catalog defaults
	viper.SetDefault("catalog.movies_path", "./model_files/movies.json")
	viper.SetDefault("catalog.similarity_path", "./model_files/similarity.json")

	// TMDB defaults
	viper.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	viper.SetDefault("tmdb.image_base_url", "https://image.tmdb.org/t/p/w500")
	viper.SetDefault("tmdb.request_timeout", "10s")
	viper.SetDefault("tmdb.retry.max_attempts", 5)
	viper.SetDefault("tmdb.retry.initial_interval", "1s")
	viper.SetDefault("tmdb.retry.max_interval", "30s")
	viper.SetDefault("tmdb.breaker.failure_threshold", 5)
	viper.SetDefault("tmdb.breaker.open_timeout", "30s")
	viper.SetDefault("tmdb.breaker.max_half_open", 1)
	viper.SetDefault("tmdb.cache_ttl", "1h")

	// Redis defaults
	viper.SetDefault("redis.sessions.max_retries", 3)
	viper.SetDefault("redis.sessions.pool_size", 10)
	viper.SetDefault("redis.sessions.timeout", "5s")
	viper.SetDefault("redis.cache.max_retries", 3)
	viper.SetDefault("redis.cache.pool_size", 5)
	viper.SetDefault("redis.cache.timeout", "10s")

	// Session defaults
	viper.SetDefault("session.token_ttl", "24h")
	viper.SetDefault("session.history_size", 5)
	viper.SetDefault("session.rate_limit.requests", 1000)
	viper.SetDefault("session.rate_limit.window", "1h")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")

	// Security defaults
	viper.SetDefault("security.cors.allowed_origins", []string{"*"})
	viper.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"*"})
}
