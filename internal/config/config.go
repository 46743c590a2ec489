package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Alias1177/CardioPredictor/internal/database"
	"github.com/Alias1177/CardioPredictor/internal/endpoint"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// DefaultAPIBase is the build-time service address, set with
// -ldflags "-X github.com/Alias1177/CardioPredictor/internal/config.DefaultAPIBase=https://..."
var DefaultAPIBase = "http://localhost:8000/api"

// History backends
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config is a read-only snapshot of the application configuration
type Config struct {
	APIBase            string // resolved once, see endpoint.Resolver
	LogLevel           string
	LogFile            string
	RequestTimeout     time.Duration
	RequestsPerSec     int
	StatusRetryTimeout time.Duration
	HistoryBackend     string
	HistoryPath        string
	DB                 database.ConnectionParams
	TelegramBotToken   string
}

// Overrides are values supplied on the command line. They win over the environment.
type Overrides struct {
	APIBase  string
	LogLevel string
}

// Load initializes configuration from environment variables
func Load(overrides Overrides) (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	runtimeBase := overrides.APIBase
	if runtimeBase == "" {
		runtimeBase = os.Getenv("PREDICTOR_API_BASE")
	}
	cfg.APIBase = endpoint.Resolver{Override: runtimeBase, Default: DefaultAPIBase}.ResolveBaseURL()

	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	cfg.LogFile = os.Getenv("LOG_FILE")
	cfg.RequestTimeout = time.Duration(getEnvIntWithDefault("REQUEST_TIMEOUT", 15)) * time.Second
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)
	cfg.StatusRetryTimeout = time.Duration(getEnvIntWithDefault("STATUS_RETRY_TIMEOUT", 3)) * time.Second
	cfg.HistoryBackend = strings.ToLower(getEnvWithDefault("HISTORY_BACKEND", BackendFile))
	cfg.HistoryPath = getEnvWithDefault("HISTORY_PATH", defaultHistoryPath(cfg.HistoryBackend))

	cfg.DB = database.ConnectionParams{
		Host:     getEnvWithDefault("DB_HOST", "localhost"),
		Port:     getEnvWithDefault("DB_PORT", "5432"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
		SSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),
	}
	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	return &cfg, nil
}

func defaultHistoryPath(backend string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	dir = filepath.Join(dir, "cardiopredictor")
	if backend == BackendSQLite {
		return filepath.Join(dir, "history.db")
	}
	return dir
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}
