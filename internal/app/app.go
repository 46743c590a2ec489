// Package app wires configuration into the collaborators shared by the front ends.
package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Alias1177/CardioPredictor/internal/api/prediction"
	"github.com/Alias1177/CardioPredictor/internal/config"
	"github.com/Alias1177/CardioPredictor/internal/database"
	"github.com/Alias1177/CardioPredictor/internal/history"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type noopCloser struct{}

func (noopCloser) Close() error { return nil }

// SetupLogging configures the global logger: console on stderr, plus a rotating file when logFile is set
func SetupLogging(logLevel, logFile string) io.Closer {
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	var closer io.Closer = noopCloser{}
	var output io.Writer = console
	if logFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		output = zerolog.MultiLevelWriter(console, rotating)
		closer = rotating
	}

	// Set log level from config
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
	return closer
}

// NewPredictionClient builds the service client from the configuration snapshot
func NewPredictionClient(cfg *config.Config) *prediction.Client {
	return prediction.NewClient(prediction.ClientOptions{
		BaseURL:            cfg.APIBase,
		RequestTimeout:     cfg.RequestTimeout,
		RequestsPerSec:     cfg.RequestsPerSec,
		StatusRetryTimeout: cfg.StatusRetryTimeout,
	})
}

// OpenHistoryStorage opens the configured history backend. The closer releases database connections.
func OpenHistoryStorage(cfg *config.Config) (history.Storage, io.Closer, error) {
	switch cfg.HistoryBackend {
	case config.BackendFile, "":
		return history.NewFileStorage(cfg.HistoryPath), noopCloser{}, nil
	case config.BackendMemory:
		return history.NewMemoryStorage(), noopCloser{}, nil
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.HistoryPath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating history directory: %w", err)
		}
		db, err := database.OpenSQLite(cfg.HistoryPath)
		if err != nil {
			return nil, nil, err
		}
		return history.NewSQLStorage(db), db, nil
	case config.BackendPostgres:
		db, err := database.New(cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
		}
		return history.NewSQLStorage(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unsupported history backend: %s. Must be file, sqlite, postgres, or memory", cfg.HistoryBackend)
	}
}
