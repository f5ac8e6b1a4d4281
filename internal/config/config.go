package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Database URLs
	PostgresURL   string
	ClickHouseURL string
	RedisURL      string

	// Riot API
	RiotAPIKey      string
	RiotRegionalURL string
	RiotPlatformURL string
	RiotTimeout     time.Duration

	// Composition model (optional; empty disables the insight)
	CompositionModelPath string

	// Analysis tuning
	MatchCountForAI    int
	MinGamesChampML    int
	MinGamesClustering int
	NumClusters        int

	// Worker pool
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
}

// Load loads configuration from environment variables.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  getEnv("ENV", "development"),

		RiotRegionalURL: getEnv("RIOT_REGIONAL_URL", "https://europe.api.riotgames.com"),
		RiotPlatformURL: getEnv("RIOT_PLATFORM_URL", "https://euw1.api.riotgames.com"),
		RiotTimeout:     getEnvDuration("RIOT_TIMEOUT", 30*time.Second),

		CompositionModelPath: getEnv("COMPOSITION_MODEL_PATH", ""),

		MatchCountForAI:    getEnvInt("MATCH_COUNT_FOR_AI", 20),
		MinGamesChampML:    getEnvInt("MIN_GAMES_CHAMP_ML", 10),
		MinGamesClustering: getEnvInt("MIN_GAMES_CLUSTERING", 15),
		NumClusters:        getEnvInt("NUM_CLUSTERS", 3),

		WorkerCount:   getEnvInt("WORKER_COUNT", 2),
		QueueSize:     getEnvInt("QUEUE_SIZE", 1000),
		BatchSize:     getEnvInt("BATCH_SIZE", 20),
		FlushInterval: getEnvDuration("FLUSH_INTERVAL", 2*time.Second),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	rawOrigins := strings.Split(origins, ",")
	for _, o := range rawOrigins {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.PostgresURL, err = getEnvRequired("POSTGRES_URL"); err != nil {
		return nil, err
	}
	if cfg.ClickHouseURL, err = getEnvRequired("CLICKHOUSE_URL"); err != nil {
		return nil, err
	}
	if cfg.RedisURL, err = getEnvRequired("REDIS_URL"); err != nil {
		return nil, err
	}
	if cfg.RiotAPIKey, err = getEnvRequired("RIOT_API_KEY"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
