package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Sheet        string
	WageStrategy string
	ChunkSize    int
	FilePattern  string

	RunLogDB string

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Sheet:        getEnv("LCA_SHEET", "0"),
		WageStrategy: getEnv("LCA_WAGE_STRATEGY", "from"),
		ChunkSize:    getEnvInt("LCA_CHUNK_SIZE", 200000),
		FilePattern:  getEnv("LCA_PATTERN", `.*\.xlsx$`),

		RunLogDB: getEnv("RUN_LOG_DB", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if cfg.ChunkSize <= 0 {
		return Config{}, fmt.Errorf("LCA_CHUNK_SIZE must be positive, got %d", cfg.ChunkSize)
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required option: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
