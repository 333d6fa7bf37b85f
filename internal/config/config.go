package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Logs    LogConfig
	API     APIConfig
	Web     WebConfig
	Session SessionConfig
	Redis   RedisConfig
}

type LogConfig struct {
	Development bool
	Level       string
}

type APIConfig struct {
	URL     string
	Timeout time.Duration
}

type WebConfig struct {
	Port string
}

type SessionConfig struct {
	Backend      string // redis or memory
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads the environment, pulling in a .env file first unless APP_ENV is production.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		// a missing .env is fine
		_ = godotenv.Load()
	}

	timeout, err := durationEnv("API_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	ttl, err := durationEnv("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	dev, err := boolEnv("LOG_DEVELOPMENT", os.Getenv("APP_ENV") != "production")
	if err != nil {
		return nil, err
	}
	secure, err := boolEnv("COOKIE_SECURE", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		Logs: LogConfig{
			Development: dev,
			Level:       os.Getenv("LOG_LEVEL"),
		},
		API: APIConfig{
			URL:     stringEnv("API_URL", "http://127.0.0.1:8000"),
			Timeout: timeout,
		},
		Web: WebConfig{
			Port: stringEnv("PORT", "8080"),
		},
		Session: SessionConfig{
			Backend:      stringEnv("SESSION_BACKEND", "redis"),
			TTL:          ttl,
			CookieName:   stringEnv("SESSION_COOKIE", "predictor_session"),
			CookieSecure: secure,
		},
		Redis: RedisConfig{
			Addr:     stringEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
	}, nil
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", key, err)
	}
	return b, nil
}
