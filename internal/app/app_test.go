package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Alias1177/CardioPredictor/internal/config"
	"github.com/Alias1177/CardioPredictor/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenHistoryStorage(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"file", config.Config{HistoryBackend: config.BackendFile, HistoryPath: filepath.Join(dir, "files")}},
		{"memory", config.Config{HistoryBackend: config.BackendMemory}},
		{"sqlite", config.Config{HistoryBackend: config.BackendSQLite, HistoryPath: filepath.Join(dir, "nested", "history.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, closer, err := OpenHistoryStorage(&tt.cfg)
			require.NoError(t, err)
			defer func() { assert.NoError(t, closer.Close()) }()

			ctx := context.Background()
			require.NoError(t, storage.Write(ctx, history.DefaultKey, []byte("[]")))
			data, err := storage.Read(ctx, history.DefaultKey)
			require.NoError(t, err)
			assert.Equal(t, "[]", string(data))
		})
	}
}

func TestOpenHistoryStorageUnknownBackend(t *testing.T) {
	_, _, err := OpenHistoryStorage(&config.Config{HistoryBackend: "redis"})
	assert.Error(t, err)
}

func TestSetupLoggingWithFile(t *testing.T) {
	closer := SetupLogging("debug", filepath.Join(t.TempDir(), "predictor.log"))
	assert.NoError(t, closer.Close())

	closer = SetupLogging("bogus", "")
	assert.NoError(t, closer.Close())
}
