package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// ErrNoValue is returned by GetValue when the key has never been written
var ErrNoValue = errors.New("database: no value for key")

type dialect struct {
	createTable string
	selectValue string
	upsertValue string
	deleteValue string
}

var postgresDialect = dialect{
	createTable: `
		CREATE TABLE IF NOT EXISTS client_storage (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	selectValue: `SELECT value FROM client_storage WHERE key = $1`,
	upsertValue: `
		INSERT INTO client_storage (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	deleteValue: `DELETE FROM client_storage WHERE key = $1`,
}

var sqliteDialect = dialect{
	createTable: `
		CREATE TABLE IF NOT EXISTS client_storage (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	selectValue: `SELECT value FROM client_storage WHERE key = ?`,
	upsertValue: `
		INSERT INTO client_storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	deleteValue: `DELETE FROM client_storage WHERE key = ?`,
}

// DB represents a database connection holding client-side key/value state
type DB struct {
	*sql.DB
	dialect dialect
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new PostgreSQL connection
func New(params ConnectionParams) (*DB, error) {
	// Create PostgreSQL connection string
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	return setup(db, postgresDialect)
}

// OpenSQLite opens (or creates) a SQLite database file
func OpenSQLite(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database at %q: %w", path, err)
	}
	// Limit SQLite to a single open connection to avoid "database is locked" errors
	db.SetMaxOpenConns(1)

	return setup(db, sqliteDialect)
}

func setup(db *sql.DB, d dialect) (*DB, error) {
	// Check connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Create tables if they don't exist
	if _, err := db.Exec(d.createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating client_storage table: %w", err)
	}

	return &DB{DB: db, dialect: d}, nil
}

// GetValue reads the value stored under key
func (db *DB) GetValue(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, db.dialect.selectValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoValue
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// PutValue stores value under key, replacing any previous value
func (db *DB) PutValue(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx, db.dialect.upsertValue, key, value, time.Now().UTC())
	return err
}

// DeleteValue removes key. Deleting a missing key is not an error.
func (db *DB) DeleteValue(ctx context.Context, key string) error {
	_, err := db.ExecContext(ctx, db.dialect.deleteValue, key)
	return err
}
