package dataflows

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CacheManager is a file-backed JSON cache keyed by vendor, capability, and
// request parameters. Entries expire by file modification time.
type CacheManager struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

func NewCacheManager(dir string, ttl time.Duration, enabled bool) *CacheManager {
	return &CacheManager{dir: dir, ttl: ttl, enabled: enabled}
}

func (cm *CacheManager) key(vendor, capability string, params interface{}) string {
	data, _ := json.Marshal(params)
	return fmt.Sprintf("%s_%s_%x.json", vendor, capability, sha1.Sum(data))
}

// Get loads a cached value into result and reports whether it was usable.
func (cm *CacheManager) Get(vendor, capability string, params, result interface{}) bool {
	if cm == nil || !cm.enabled {
		return false
	}
	path := filepath.Join(cm.dir, cm.key(vendor, capability, params))

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) > cm.ttl {
		_ = os.Remove(path)
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, result) == nil
}

// Set stores a value. Cache failures are not fatal to the caller.
func (cm *CacheManager) Set(vendor, capability string, params, value interface{}) error {
	if cm == nil || !cm.enabled {
		return nil
	}
	if err := os.MkdirAll(cm.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cm.dir, cm.key(vendor, capability, params)), data, 0o644)
}
