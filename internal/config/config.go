package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURI         string
	ListenAddr          string
	FeedToken           string
	ExtendCron          string
	ExtendHorizonMonths int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	return &Config{
		DatabaseURI:         os.Getenv("DATABASE_URI"),
		ListenAddr:          getEnvOrDefault("LISTEN_ADDR", ":8080"),
		FeedToken:           os.Getenv("FEED_TOKEN"),
		ExtendCron:          getEnvOrDefault("EXTEND_CRON", "0 3 * * *"),
		ExtendHorizonMonths: getEnvIntOrDefault("EXTEND_HORIZON_MONTHS", 6),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return defaultValue
	}
	return n
}
