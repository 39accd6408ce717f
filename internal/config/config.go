// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	Version        string `mapstructure:"APP_VERSION"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	DatabaseURL              string `mapstructure:"DATABASE_URL"`
	DBHost                   string `mapstructure:"DB_HOST"`
	DBPort                   string `mapstructure:"DB_PORT"`
	DBUser                   string `mapstructure:"DB_USER"`
	DBPassword               string `mapstructure:"DB_PASSWORD"`
	DBName                   string `mapstructure:"DB_NAME"`
	DBSSLMode                string `mapstructure:"DB_SSLMODE"`
	DBMaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBAutoMigrate            bool   `mapstructure:"DB_AUTOMIGRATE"`

	RedisURL string `mapstructure:"REDIS_URL"`

	RateLimitMaxRequests int `mapstructure:"RATE_LIMIT_MAX_REQUESTS"`
	RateLimitWindowMS    int `mapstructure:"RATE_LIMIT_WINDOW_MS"`

	PostsPageSize     int   `mapstructure:"POSTS_PAGE_SIZE"`
	PostsMaxPageSize  int   `mapstructure:"POSTS_MAX_PAGE_SIZE"`
	SearchPageSize    int   `mapstructure:"SEARCH_PAGE_SIZE"`
	PopularPostsLimit int   `mapstructure:"POPULAR_POSTS_LIMIT"`
	ExcerptLength     int   `mapstructure:"EXCERPT_LENGTH"`
	HotViewsThreshold int64 `mapstructure:"HOT_VIEWS_THRESHOLD"`
	HotLikesThreshold int64 `mapstructure:"HOT_LIKES_THRESHOLD"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint        string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// Community defaults. These match the values the board has always used.
const (
	DefaultPostsPageSize     = 20
	DefaultPostsMaxPageSize  = 100
	DefaultSearchPageSize    = 20
	DefaultPopularPostsLimit = 6
	DefaultExcerptLength     = 200
	DefaultHotViewsThreshold = 1000
	DefaultHotLikesThreshold = 100
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.DBSSLMode = strings.ToLower(strings.TrimSpace(config.DBSSLMode))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "3000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_VERSION", "1.0.0")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "ra_community")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("DB_AUTOMIGRATE", true)

	viper.SetDefault("REDIS_URL", "localhost:6379")

	viper.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW_MS", 15*60*1000)

	viper.SetDefault("POSTS_PAGE_SIZE", DefaultPostsPageSize)
	viper.SetDefault("POSTS_MAX_PAGE_SIZE", DefaultPostsMaxPageSize)
	viper.SetDefault("SEARCH_PAGE_SIZE", DefaultSearchPageSize)
	viper.SetDefault("POPULAR_POSTS_LIMIT", DefaultPopularPostsLimit)
	viper.SetDefault("EXCERPT_LENGTH", DefaultExcerptLength)
	viper.SetDefault("HOT_VIEWS_THRESHOLD", DefaultHotViewsThreshold)
	viper.SetDefault("HOT_LIKES_THRESHOLD", DefaultHotLikesThreshold)

	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
}

// IsProduction reports whether the config targets a production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.PostsPageSize <= 0 {
		return errors.New("POSTS_PAGE_SIZE must be positive")
	}
	if c.PostsMaxPageSize < c.PostsPageSize {
		return errors.New("POSTS_MAX_PAGE_SIZE must be at least POSTS_PAGE_SIZE")
	}
	if c.SearchPageSize <= 0 {
		return errors.New("SEARCH_PAGE_SIZE must be positive")
	}
	if c.PopularPostsLimit <= 0 {
		return errors.New("POPULAR_POSTS_LIMIT must be positive")
	}
	if c.ExcerptLength <= 0 {
		return errors.New("EXCERPT_LENGTH must be positive")
	}
	if c.RateLimitMaxRequests <= 0 || c.RateLimitWindowMS <= 0 {
		return errors.New("RATE_LIMIT_MAX_REQUESTS and RATE_LIMIT_WINDOW_MS must be positive")
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DatabaseURL == "" && (c.DBPassword == "password" || c.DBPassword == "") {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DatabaseURL == "" && (c.DBSSLMode == "disable" || c.DBSSLMode == "") {
			return errors.New("DB_SSLMODE must not be 'disable' in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
