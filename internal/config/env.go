package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads <environment>.env into the process environment.
// Variables already set win over the file.
func Load(environment string) error {
	return godotenv.Load(environment + ".env")
}

// getEnv gets an environment variable with a fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an environment variable as an integer with a fallback
func getIntEnv(key string, fallback int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return fallback
}

func getSecondsEnv(key string, fallback int) time.Duration {
	return time.Duration(getIntEnv(key, fallback)) * time.Second
}
