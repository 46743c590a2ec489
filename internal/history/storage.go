package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Alias1177/CardioPredictor/internal/database"
)

// ErrNotFound is returned by a Storage when nothing was stored under the key yet
var ErrNotFound = errors.New("history: nothing stored")

// Storage is a durable key/value slot for the serialized history log.
// Every failure is an explicit error; the Store decides how to degrade.
type Storage interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

// MemoryStorage keeps values in process memory only
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

func (m *MemoryStorage) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStorage) Write(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), data...)
	return nil
}

// FileStorage keeps one JSON file per key inside Dir
type FileStorage struct {
	Dir string
}

func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{Dir: dir}
}

func (f *FileStorage) path(key string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(key)
	return filepath.Join(f.Dir, name+".json")
}

func (f *FileStorage) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Write replaces the file atomically so a crash never leaves a half-written log
func (f *FileStorage) Write(_ context.Context, key string, data []byte) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	tmp, err := os.CreateTemp(f.Dir, ".history-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	return os.Rename(tmp.Name(), f.path(key))
}

// SQLStorage keeps values in the client_storage table of a SQLite or PostgreSQL database
type SQLStorage struct {
	db *database.DB
}

func NewSQLStorage(db *database.DB) *SQLStorage {
	return &SQLStorage{db: db}
}

func (s *SQLStorage) Read(ctx context.Context, key string) ([]byte, error) {
	value, err := s.db.GetValue(ctx, key)
	if errors.Is(err, database.ErrNoValue) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (s *SQLStorage) Write(ctx context.Context, key string, data []byte) error {
	return s.db.PutValue(ctx, key, string(data))
}
