package marketdata

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache is a file-based JSON cache for fetched market data keyed by
// source, method and a hash of the request parameters.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// NewCache creates a cache rooted at dir. A disabled cache never hits the
// filesystem.
func NewCache(dir string, ttl time.Duration, enabled bool) *Cache {
	return &Cache{dir: dir, ttl: ttl, enabled: enabled}
}

func (c *Cache) key(source, method string, params interface{}) string {
	data, _ := json.Marshal(params)
	hash := md5.Sum(data)
	return fmt.Sprintf("%s_%s_%x.json", source, method, hash)
}

// Get loads a cached entry into result, reporting whether a fresh entry
// existed. Expired entries are removed on access.
func (c *Cache) Get(source, method string, params interface{}, result interface{}) bool {
	if !c.enabled {
		return false
	}

	path := filepath.Join(c.dir, c.key(source, method, params))
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) > c.ttl {
		os.Remove(path)
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, result) == nil
}

// Set stores an entry.
func (c *Cache) Set(source, method string, params interface{}, data interface{}) error {
	if !c.enabled {
		return nil
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, c.key(source, method, params)), jsonData, 0o644)
}
