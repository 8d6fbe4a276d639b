package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/five82/skytrack/internal/logger"
)

// SQLite stores entries in a single kv table.
type SQLite struct {
	db  *sql.DB
	log *logger.Logger
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string, log *logger.Logger) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// One connection keeps ":memory:" databases coherent and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db, log: log.Named("cache-sqlite")}, nil
}

func (c *SQLite) Put(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache encode failed", logger.String("key", key), logger.Error(err))
		return
	}
	_, err = c.db.Exec(`
	INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		c.log.Warn("cache write failed", logger.String("key", key), logger.Error(err))
	}
}

func (c *SQLite) Get(key string, dest any) bool {
	var raw string
	err := c.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.log.Warn("cache read failed", logger.String("key", key), logger.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.log.Debug("cache entry undecodable", logger.String("key", key), logger.Error(err))
		return false
	}
	return true
}

func (c *SQLite) Remove(key string) {
	if _, err := c.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		c.log.Warn("cache delete failed", logger.String("key", key), logger.Error(err))
	}
}

// Close closes the database connection.
func (c *SQLite) Close() error {
	return c.db.Close()
}
