// Package cache stores downloaded kernel bytes in memory and on disk
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/planets/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// KernelKey generates a cache key for a kernel source. The expected checksum
// is part of the key, so pinning a different hash never serves stale bytes.
func KernelKey(source, sha256Hex string) string {
	hash := sha256.Sum256([]byte(source + "\x00" + sha256Hex))
	return "planets:v1:" + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg. A disabled cache stores nothing.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled || cfg.Dir == "" {
		return Nop{}
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}

// Nop is a cache that never hits
type Nop struct{}

func (Nop) Get(string) ([]byte, bool)               { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error                     { return nil }
func (Nop) Clear() error                            { return nil }
