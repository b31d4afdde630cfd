// Package config loads the application configuration from the environment
// with sensible defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port        string
	MetricsAddr string // empty disables the metrics server

	OpenWeatherAPIKey string

	// HTTPTimeout bounds every outbound provider call so one slow upstream
	// cannot stall a request.
	HTTPTimeout time.Duration

	// ModelDir holds the classifier artifact.
	ModelDir string

	// Leaderboard view.
	LeaderboardCities []string
	LeaderboardTTL    time.Duration
	RefreshInterval   time.Duration

	// Prediction history retention (in-memory store).
	StoreMaxHistory int

	// Optional collaborators.
	DatabaseURL  string
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{
		Port:              getenvDefault("PORT", "8080"),
		MetricsAddr:       os.Getenv("METRICS_ADDR"),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		ModelDir:          getenvDefault("MODEL_DIR", "models"),
		StoreMaxHistory:   getenvInt("STORE_MAX_HISTORY", 200),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		KafkaTopic:        getenvDefault("KAFKA_TOPIC", "envirowatch.predictions"),
	}

	timeout, err := getenvDuration("HTTP_TIMEOUT", 8*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	ttl, err := getenvDuration("LEADERBOARD_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.LeaderboardTTL = ttl

	interval, err := getenvDuration("REFRESH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.RefreshInterval = interval

	cities := getenvDefault("LEADERBOARD_CITIES", "Delhi,Mumbai,Pune,Bengaluru,Hyderabad")
	for _, city := range strings.Split(cities, ",") {
		if city = strings.TrimSpace(city); city != "" {
			cfg.LeaderboardCities = append(cfg.LeaderboardCities, city)
		}
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
