package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	DiscordToken string

	// MongoDB
	MongoURL string
	DBName   string

	// FAL.ai image generation
	FALKey string

	// HTTP API
	APIAddr string

	// Game tuning
	StartQuorum           int
	EncounterBias         float64
	TickMinSeconds        int
	TickMaxSeconds        int
	EncounterDelaySeconds int

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken: os.Getenv("DISCORD_BOT_TOKEN"),
		MongoURL:     os.Getenv("MONGO_URL"),
		DBName:       getEnvOrDefault("DB_NAME", "cut_royale"),
		FALKey:       os.Getenv("FAL_KEY"),
		APIAddr:      getEnvOrDefault("API_ADDR", ":8001"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.StartQuorum, err = getEnvInt("GAME_START_QUORUM", 10); err != nil {
		return nil, err
	}
	if cfg.TickMinSeconds, err = getEnvInt("TICK_MIN_SECONDS", 10); err != nil {
		return nil, err
	}
	if cfg.TickMaxSeconds, err = getEnvInt("TICK_MAX_SECONDS", 30); err != nil {
		return nil, err
	}
	if cfg.EncounterDelaySeconds, err = getEnvInt("ENCOUNTER_DELAY_SECONDS", 10); err != nil {
		return nil, err
	}

	biasStr := getEnvOrDefault("ENCOUNTER_WIN_BIAS", "0.6")
	bias, err := strconv.ParseFloat(biasStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ENCOUNTER_WIN_BIAS: %w", err)
	}
	if bias < 0 || bias > 1 {
		return nil, fmt.Errorf("ENCOUNTER_WIN_BIAS must be between 0 and 1, got %v", bias)
	}
	cfg.EncounterBias = bias

	if cfg.TickMinSeconds <= 0 || cfg.TickMaxSeconds < cfg.TickMinSeconds {
		return nil, fmt.Errorf("invalid tick interval: min=%d max=%d", cfg.TickMinSeconds, cfg.TickMaxSeconds)
	}

	// Validate required fields
	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}
	if cfg.MongoURL == "" {
		return nil, fmt.Errorf("MONGO_URL is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
