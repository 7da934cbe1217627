package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv             string        `mapstructure:"APP_ENV"`
	Port               string        `mapstructure:"PORT"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	JWTSecretKey       string        `mapstructure:"JWT_SECRET_KEY"`
	TokenTTL           time.Duration `mapstructure:"TOKEN_TTL"`
	RedisURL           string        `mapstructure:"REDIS_URL"`
	CORSAllowedOrigins string        `mapstructure:"CORS_ALLOWED_ORIGINS"` // comma-separated
	LoginRatePerSecond float64       `mapstructure:"LOGIN_RATE_PER_SECOND"`
	LoginBurst         int           `mapstructure:"LOGIN_BURST"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	MaxPerPage         int           `mapstructure:"MAX_PER_PAGE"`
}

var ErrMissingSecret = errors.New("JWT_SECRET_KEY is not set")

// LoadDotEnv loads .env.local, falling back to .env. Missing files are not an error.
func LoadDotEnv() bool {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			return false
		}
	}
	return true
}

// LoadConfig reads the process environment on top of the defaults below.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "sqlite://blog.db")
	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("TOKEN_TTL", 24*time.Hour)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("LOGIN_RATE_PER_SECOND", 5)
	v.SetDefault("LOGIN_BURST", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_PER_PAGE", 100)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.JWTSecretKey == "" && !cfg.IsTest() {
		return Config{}, ErrMissingSecret
	}
	return cfg, nil
}

func (c Config) IsTest() bool {
	return c.AppEnv == "test"
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

// CORSOrigins returns the allowed origins as slice
func (c Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
