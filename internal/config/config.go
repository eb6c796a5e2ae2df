package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// DefaultFeedURL is the public OpenSky states endpoint
const DefaultFeedURL = "https://opensky-network.org/api/states/all"

// Config holds the application configuration
type Config struct {
	DatabaseURL   string
	Port          string
	FeedURL       string
	FetchInterval time.Duration
	FetchTimeout  time.Duration
	RedisAddr     string // optional; empty disables the flight-state cache
	NATSURL       string // optional; empty disables flight-state publishing
}

// Load loads the configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	feedURL := os.Getenv("OPENSKY_URL")
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}

	interval, err := durationEnv("FETCH_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, err
	}

	timeout, err := durationEnv("FETCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:   databaseURL,
		Port:          port,
		FeedURL:       feedURL,
		FetchInterval: interval,
		FetchTimeout:  timeout,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		NATSURL:       os.Getenv("NATS_URL"),
	}, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %s", key, d)
	}
	return d, nil
}
