// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"`

	DatabaseURL              string `mapstructure:"DATABASE_URL"`
	DBHost                   string `mapstructure:"DB_HOST"`
	DBPort                   string `mapstructure:"DB_PORT"`
	DBUser                   string `mapstructure:"DB_USER"`
	DBPassword               string `mapstructure:"DB_PASSWORD"`
	DBName                   string `mapstructure:"DB_NAME"`
	DBSSLMode                string `mapstructure:"DB_SSLMODE"`
	DBSchemaMode             string `mapstructure:"DB_SCHEMA_MODE"`
	DBMaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	Auth0Audience string `mapstructure:"AUTH0_AUDIENCE"`
	Auth0Issuer   string `mapstructure:"AUTH0_ISSUER"`
	Auth0JWKSURL  string `mapstructure:"AUTH0_JWKS_URL"`

	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	RateLimitMax   int    `mapstructure:"RATE_LIMIT_MAX"`

	FeedAnonymousLimit int `mapstructure:"FEED_ANONYMOUS_LIMIT"`
	PostMaxLength      int `mapstructure:"POST_MAX_LENGTH"`
	CommentMaxLength   int `mapstructure:"COMMENT_MAX_LENGTH"`

	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base file is optional; environment variables alone are enough.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("invalid profile config 'config.%s.yml': %w", env, err)
			}
		} else {
			log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
		}
	}

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "fakex")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "fakex")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_SCHEMA_MODE", "")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("AUTH0_AUDIENCE", "")
	viper.SetDefault("AUTH0_ISSUER", "")
	viper.SetDefault("AUTH0_JWKS_URL", "")
	viper.SetDefault("ALLOWED_ORIGINS", "*")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("RATE_LIMIT_MAX", 100)
	viper.SetDefault("FEED_ANONYMOUS_LIMIT", 5)
	viper.SetDefault("POST_MAX_LENGTH", 280)
	viper.SetDefault("COMMENT_MAX_LENGTH", 280)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "otlp")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.DBSchemaMode = strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
	c.Auth0Issuer = strings.TrimSpace(c.Auth0Issuer)
	c.Auth0Audience = strings.TrimSpace(c.Auth0Audience)
	c.AllowedOrigins = strings.TrimSpace(c.AllowedOrigins)
}

// IsProduction reports whether the service runs with production strictness.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// IssuerURL returns the token issuer with the trailing slash the identity provider puts in "iss".
func (c *Config) IssuerURL() string {
	if c.Auth0Issuer == "" || strings.HasSuffix(c.Auth0Issuer, "/") {
		return c.Auth0Issuer
	}
	return c.Auth0Issuer + "/"
}

// JWKSURL returns the key set location, derived from the issuer unless set explicitly.
func (c *Config) JWKSURL() string {
	if c.Auth0JWKSURL != "" {
		return c.Auth0JWKSURL
	}
	return c.IssuerURL() + ".well-known/jwks.json"
}

// DSN returns the Postgres connection string, preferring DATABASE_URL.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	sslMode := c.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, sslMode,
	)
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.Auth0Audience == "" {
		return errors.New("AUTH0_AUDIENCE is required")
	}
	if c.Auth0Issuer == "" {
		return errors.New("AUTH0_ISSUER is required")
	}
	if _, err := url.ParseRequestURI(c.Auth0Issuer); err != nil {
		return fmt.Errorf("AUTH0_ISSUER must be a URL: %w", err)
	}
	if c.FeedAnonymousLimit <= 0 {
		return errors.New("FEED_ANONYMOUS_LIMIT must be positive")
	}
	if c.PostMaxLength <= 0 || c.CommentMaxLength <= 0 {
		return errors.New("POST_MAX_LENGTH and COMMENT_MAX_LENGTH must be positive")
	}
	if c.DBConnMaxLifetimeMinutes < 0 {
		return errors.New("DB_CONN_MAX_LIFETIME_MINUTES cannot be negative")
	}
	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return errors.New("TRACING_SAMPLE_RATIO must be between 0 and 1")
	}
	switch c.DBSchemaMode {
	case "", "hybrid", "sql", "auto":
	default:
		return fmt.Errorf("DB_SCHEMA_MODE %q is not one of hybrid, sql, auto", c.DBSchemaMode)
	}

	if c.IsProduction() {
		if c.DatabaseURL == "" {
			if c.DBPassword == "password" || c.DBPassword == "" {
				return errors.New("a strong DB_PASSWORD is required in production")
			}
			if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
				return errors.New("DB_SSLMODE must enable TLS in production")
			}
		}
		if !strings.HasPrefix(c.Auth0Issuer, "https://") {
			return errors.New("AUTH0_ISSUER must use https in production")
		}
		if c.DBSchemaMode == "auto" {
			return errors.New("DB_SCHEMA_MODE=auto is not allowed in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if c.RedisURL == "" {
		log.Println("WARNING: REDIS_URL is empty; feed caching and Redis rate limiting are disabled.")
	}

	return nil
}
