package cache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const entryExt = ".json"

// FileCache stores one JSON file per key under dir, fanned out into 256
// subdirectories by the first byte of the key hash. It backs the CLI.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache opens (and creates) a file cache in dir.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// fileEntry is the on-disk form of one cached value. Entries written by
// another schema version are misses.
type fileEntry struct {
	Key       string    `json:"key"`
	Version   string    `json:"version"`
	ExpiresAt time.Time `json:"expires_at"`
	Data      []byte    `json:"data"`
}

func (e *fileEntry) live(now time.Time) bool {
	return e.Version == schemaVersion && (e.ExpiresAt.IsZero() || now.Before(e.ExpiresAt))
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	e, err := readEntry(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	// A hash collision or a corrupt, stale or expired entry is a miss.
	if e == nil || e.Key != key || !e.live(c.now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	e := fileEntry{Key: key, Version: schemaVersion, Data: data}
	if ttl > 0 {
		e.ExpiresAt = c.now().Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	// Readers never see a partial entry.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Stats returns the entry count and their total size in bytes.
func (c *FileCache) Stats() (entries int, size int64, err error) {
	err = c.walk(func(_ string, info fs.FileInfo) error {
		entries++
		size += info.Size()
		return nil
	})
	return entries, size, err
}

// Prune removes expired, corrupt and other-version entries and returns how
// many were removed.
func (c *FileCache) Prune(ctx context.Context) (removed int, err error) {
	now := c.now()
	err = c.walk(func(path string, _ fs.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		e, err := readEntry(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if e != nil && e.live(now) {
			return nil
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
		return nil
	})
	return removed, err
}

// Clear removes every entry.
func (c *FileCache) Clear() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0755)
}

func (c *FileCache) Close() error { return nil }

func (c *FileCache) walk(fn func(path string, info fs.FileInfo) error) error {
	return filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, entryExt) {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return fn(path, info)
	})
}

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+entryExt)
}

// readEntry returns nil and no error for a file that is not a valid entry.
func readEntry(path string) (*fileEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var e fileEntry
	if json.Unmarshal(raw, &e) != nil {
		return nil, nil
	}
	return &e, nil
}

var _ Cache = (*FileCache)(nil)
