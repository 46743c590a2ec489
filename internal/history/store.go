// Package history keeps the most recent predictions in durable client storage.
//
// Durability is advisory: storage failures are logged and swallowed, and the
// in-memory log stays authoritative for the life of the Store.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/Alias1177/CardioPredictor/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultKey is the storage slot holding the serialized log
const DefaultKey = "predict.history.v1"

// Store is the bounded, newest-first prediction history
type Store struct {
	mu      sync.Mutex
	storage Storage
	key     string
	limit   int
	entries models.HistoryLog
	logger  zerolog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithKey stores the log under key instead of DefaultKey
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLimit overrides models.HistoryLimit
func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

var _ models.HistoryRecorder = (*Store)(nil)

// NewStore creates an empty store. Call Load to restore persisted entries.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		key:     DefaultKey,
		limit:   models.HistoryLimit,
		entries: models.HistoryLog{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.With().Str("component", "history_store").Str("key", s.key).Logger()
	return s
}

// Load restores the log from storage. Missing or corrupt data yields an empty log.
func (s *Store) Load(ctx context.Context) models.HistoryLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = s.read(ctx)
	return s.snapshot()
}

// Record prepends entry, evicts the oldest entries beyond the limit and persists the result
func (s *Store) Record(ctx context.Context, entry models.HistoryEntry) models.HistoryLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(models.HistoryLog, 0, s.limit)
	next = append(next, entry)
	next = append(next, s.entries...)
	if len(next) > s.limit {
		next = next[:s.limit]
	}
	s.entries = next

	s.persist(ctx)
	return s.snapshot()
}

// Clear empties the log and persists the empty log
func (s *Store) Clear(ctx context.Context) models.HistoryLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = models.HistoryLog{}
	s.persist(ctx)
	return s.snapshot()
}

// Entries returns the in-memory log without touching storage
func (s *Store) Entries() models.HistoryLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() models.HistoryLog {
	out := make(models.HistoryLog, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) read(ctx context.Context) models.HistoryLog {
	data, err := s.storage.Read(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return models.HistoryLog{}
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read history, starting empty")
		return models.HistoryLog{}
	}

	entries, err := Decode(data, s.limit)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Stored history is corrupt, starting empty")
		return models.HistoryLog{}
	}
	return entries
}

func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.entries)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to encode history")
		return
	}
	if err := s.storage.Write(ctx, s.key, data); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist history")
	}
}

type storedEntry struct {
	At     *int64 `json:"at"`
	Result *struct {
		Probability *float64 `json:"probability"`
		Label       *int     `json:"label"`
	} `json:"result"`
}

// Decode parses a serialized log, dropping malformed elements and keeping at most limit entries.
// It fails only when data is not a JSON array.
func Decode(data []byte, limit int) (models.HistoryLog, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := make(models.HistoryLog, 0, min(len(raw), limit))
	for _, item := range raw {
		if len(out) == limit {
			break
		}
		var e storedEntry
		if err := json.Unmarshal(item, &e); err != nil {
			continue
		}
		if e.At == nil || e.Result == nil || e.Result.Probability == nil || e.Result.Label == nil {
			continue
		}
		if *e.Result.Label != 0 && *e.Result.Label != 1 {
			continue
		}
		out = append(out, models.HistoryEntry{
			At:     *e.At,
			Result: models.PredictionResult{Probability: *e.Result.Probability, Label: *e.Result.Label},
		})
	}
	return out, nil
}
