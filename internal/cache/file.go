package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/five82/skytrack/internal/logger"
)

// File keeps one JSON document per key inside a directory.
type File struct {
	dir string
	log *logger.Logger
}

// OpenFile creates dir if needed.
func OpenFile(dir string, log *logger.Logger) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &File{dir: dir, log: log.Named("cache-file")}, nil
}

func (c *File) path(key string) string {
	return filepath.Join(c.dir, url.PathEscape(key)+".json")
}

func (c *File) Put(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache encode failed", logger.String("key", key), logger.Error(err))
		return
	}
	if err := c.write(c.path(key), data); err != nil {
		c.log.Warn("cache write failed", logger.String("key", key), logger.Error(err))
	}
}

func (c *File) write(path string, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *File) Get(key string, dest any) bool {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.log.Warn("cache read failed", logger.String("key", key), logger.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.log.Debug("cache entry undecodable", logger.String("key", key), logger.Error(err))
		return false
	}
	return true
}

func (c *File) Remove(key string) {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.log.Warn("cache delete failed", logger.String("key", key), logger.Error(err))
	}
}

func (c *File) Close() error { return nil }
