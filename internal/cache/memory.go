package cache

import (
	"encoding/json"
	"sync"

	"github.com/five82/skytrack/internal/logger"
)

// Memory is a process-local Cache. Values go through JSON like the durable
// backends so decoding behaves the same everywhere.
type Memory struct {
	log     *logger.Logger
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory returns an empty in-memory cache. A nil log discards output.
func NewMemory(log *logger.Logger) *Memory {
	return &Memory{log: log.Named("cache-memory"), entries: make(map[string][]byte)}
}

func (c *Memory) Put(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache encode failed", logger.String("key", key), logger.Error(err))
		return
	}
	c.mu.Lock()
	c.entries[key] = data
	c.mu.Unlock()
}

func (c *Memory) Get(key string, dest any) bool {
	c.mu.RLock()
	data, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.log.Debug("cache entry undecodable", logger.String("key", key), logger.Error(err))
		return false
	}
	return true
}

func (c *Memory) Remove(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *Memory) Close() error { return nil }
