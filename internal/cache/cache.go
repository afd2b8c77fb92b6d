// Package cache memoizes analysis results. Analysis is a pure function of
// the catalog, the engine settings and the document, so a result keyed by all
// three never goes stale; TTLs only bound disk usage.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/ppiankov/termlens/internal/model"
)

const keyPrefix = "termlens:v2:"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// AnalysisKey derives the cache key for analyzing doc with the catalog
// identified by fingerprint under the engine settings in settings. Fields are
// length-prefixed so that no two distinct inputs share a key.
func AnalysisKey(fingerprint, settings string, doc model.Document) string {
	h := sha256.New()
	for _, part := range []string{fingerprint, settings, string(doc.Type), doc.Title, doc.Content} {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(part)))
		h.Write(n[:])
		h.Write([]byte(part))
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// New builds the cache described by cfg, or nil when caching is disabled
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}
