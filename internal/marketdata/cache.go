package marketdata

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"investiq/internal/interfaces"
)

// FileCache stores one JSON envelope per key under a directory.
type FileCache struct {
	dir string
	mu  sync.RWMutex
	now func() time.Time
}

type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

var _ interfaces.Cache = (*FileCache)(nil)

func NewFileCache(dir string) (*FileCache, error) {
	if dir == "" {
		dir = "cache/marketdata"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir %s: %w", dir, err)
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, err := os.ReadFile(c.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(b, &entry); err != nil {
		return nil, false, nil
	}
	if entry.Key != key || c.now().After(entry.ExpiresAt) {
		return nil, false, nil
	}
	return entry.Data, true, nil
}

func (c *FileCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := json.Marshal(fileEntry{Key: key, Data: value, ExpiresAt: c.now().Add(ttl)})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(key), b, 0o644)
}

// CleanupExpired removes entries past their expiry and returns how many.
func (c *FileCache) CleanupExpired() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		p := filepath.Join(c.dir, e.Name())
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var entry fileEntry
		if json.Unmarshal(b, &entry) != nil || c.now().After(entry.ExpiresAt) {
			if os.Remove(p) == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func (c *FileCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:16])+".json")
}
