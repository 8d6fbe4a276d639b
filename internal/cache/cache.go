// Package cache persists the last good flight snapshot so the tracker has
// something to show when the network is gone.
//
// Values are stored as JSON under string keys. Writes are fire-and-forget:
// a failed Put is logged and otherwise ignored. Get reports false for a
// missing key and for a stored value that no longer decodes into dest. There
// is no expiry; callers decide how old is too old.
package cache

import (
	"fmt"
	"strings"

	"github.com/five82/skytrack/internal/config"
	"github.com/five82/skytrack/internal/logger"
)

// Keys used for the last successful fetch.
const (
	LastSnapshotKey     = "cached_flights"
	LastSnapshotTimeKey = "cache_timestamp"
)

// Cache is a small typed key/value store.
type Cache interface {
	Put(key string, value any)
	Get(key string, dest any) bool
	Remove(key string)
	Close() error
}

// Open returns the backend selected by cfg.CacheBackend.
func Open(cfg config.Config, log *logger.Logger) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.CacheBackend)) {
	case "", config.CacheSQLite:
		return OpenSQLite(cfg.CachePath, log)
	case config.CacheFile:
		return OpenFile(cfg.CachePath, log)
	case config.CacheMemory:
		return NewMemory(log), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
