// Package cache keeps parsed trees and written output between runs of the
// same process, so watch mode only reparses and rewrites what changed.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/max-scopp/ts-flattered/core/logger"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

// ParseCache memoizes tsast.Parse by file name and content. Trees are never
// mutated in place, so a cached tree can back any number of builders.
type ParseCache struct {
	entries *lru.Cache[string, *tsast.SourceFile]
	mutex   sync.Mutex
	metrics CacheMetrics
}

func NewParseCache(config *CacheConfig) (*ParseCache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}
	entries, err := lru.New[string, *tsast.SourceFile](config.ParseEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create parse cache: %w", err)
	}
	logger.Debug("Created parse cache with %d entries", config.ParseEntries)
	return &ParseCache{entries: entries}, nil
}

// ContentHash is the cache key of text parsed as fileName.
func ContentHash(fileName, text string) string {
	h := sha256.New()
	h.Write([]byte(fileName))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Parse returns the cached tree for fileName and text, parsing on a miss.
// Parse errors are not cached.
func (pc *ParseCache) Parse(ctx context.Context, fileName, text string) (*tsast.SourceFile, error) {
	key := ContentHash(fileName, text)
	if tree, ok := pc.entries.Get(key); ok {
		pc.count(true)
		logger.Debug("ParseCache: Hit for %s", fileName)
		return tree, nil
	}
	pc.count(false)
	logger.Debug("ParseCache: Miss for %s", fileName)

	tree, err := tsast.Parse(ctx, fileName, text)
	if err != nil {
		return nil, err
	}
	pc.entries.Add(key, tree)
	return tree, nil
}

func (pc *ParseCache) count(hit bool) {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()
	if hit {
		pc.metrics.Hits++
	} else {
		pc.metrics.Misses++
	}
}

// Invalidate drops the tree for fileName and text, if cached.
func (pc *ParseCache) Invalidate(fileName, text string) {
	if pc.entries.Remove(ContentHash(fileName, text)) {
		pc.mutex.Lock()
		pc.metrics.Invalidations++
		pc.mutex.Unlock()
	}
}

func (pc *ParseCache) Len() int { return pc.entries.Len() }

func (pc *ParseCache) Metrics() CacheMetrics {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()
	m := pc.metrics
	m.TotalEntries = pc.entries.Len()
	m.CalculateHitRate()
	return m
}

func (pc *ParseCache) LogStats() {
	m := pc.Metrics()
	logger.Info("Parse cache: %d entries, %d hits, %d misses (%.1f%% hit rate)",
		m.TotalEntries, m.Hits, m.Misses, m.HitRate)
}

func (pc *ParseCache) Clear() {
	pc.entries.Purge()
	pc.mutex.Lock()
	pc.metrics = CacheMetrics{}
	pc.mutex.Unlock()
	logger.Debug("ParseCache: Cleared all entries")
}
