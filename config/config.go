package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port   string
	AppEnv string

	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	AIPlanTimeout time.Duration

	RateLimitPerSecond float64
	RateLimitBurst     int

	PublicBaseURL   string
	DefaultTimezone string
	OrphanSweepAge  time.Duration
	PoolCacheTTL    time.Duration
}

func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }

func (c *Config) AIEnabled() bool { return c.OpenAIKey != "" }

func (c *Config) Development() bool { return c.AppEnv == "development" }

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "travelbook")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("AI_PLAN_TIMEOUT", "20s")
	v.SetDefault("RATE_LIMIT_PER_SECOND", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("DEFAULT_TIMEZONE", "Asia/Ho_Chi_Minh")
	v.SetDefault("ORPHAN_SWEEP_AGE", "15m")
	v.SetDefault("POOL_CACHE_TTL", "10m")
	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:               v.GetString("PORT"),
		AppEnv:             strings.ToLower(v.GetString("APP_ENV")),
		MongoURI:           v.GetString("MONGO_URI"),
		MongoDB:            v.GetString("MONGO_DB"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		OpenAIKey:          strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		OpenAIModel:        v.GetString("OPENAI_MODEL"),
		OpenAIBaseURL:      v.GetString("OPENAI_BASE_URL"),
		AIPlanTimeout:      v.GetDuration("AI_PLAN_TIMEOUT"),
		RateLimitPerSecond: v.GetFloat64("RATE_LIMIT_PER_SECOND"),
		RateLimitBurst:     v.GetInt("RATE_LIMIT_BURST"),
		PublicBaseURL:      strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		DefaultTimezone:    v.GetString("DEFAULT_TIMEZONE"),
		OrphanSweepAge:     v.GetDuration("ORPHAN_SWEEP_AGE"),
		PoolCacheTTL:       v.GetDuration("POOL_CACHE_TTL"),
	}

	if cfg.Port != "" && cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}
	if cfg.JWTSecret == "" && !cfg.Development() {
		return nil, fmt.Errorf("JWT_SECRET is required outside development")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret"
	}
	if cfg.AIPlanTimeout <= 0 {
		return nil, fmt.Errorf("AI_PLAN_TIMEOUT must be positive")
	}
	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return nil, fmt.Errorf("DEFAULT_TIMEZONE: %w", err)
	}
	return cfg, nil
}
