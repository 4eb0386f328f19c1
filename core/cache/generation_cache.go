package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/max-scopp/ts-flattered/core/logger"
)

// GenerationInfo is what was last written to one output path.
type GenerationInfo struct {
	OutputPath  string    `json:"output_path"`
	ContentHash string    `json:"content_hash"`
	WrittenAt   time.Time `json:"written_at"`
}

// GenerationCache remembers the content of every output file written in this
// process so unchanged output is not rewritten.
type GenerationCache struct {
	entries map[string]*GenerationInfo
	mutex   sync.RWMutex
}

func NewGenerationCache() *GenerationCache {
	return &GenerationCache{entries: make(map[string]*GenerationInfo)}
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// NeedsWrite reports whether content differs from what was last written to
// outputPath, with the reason.
func (gc *GenerationCache) NeedsWrite(outputPath, content string) (bool, string) {
	gc.mutex.RLock()
	defer gc.mutex.RUnlock()

	entry, exists := gc.entries[outputPath]
	if !exists {
		return true, "no generation record found"
	}
	if current := hashContent(content); entry.ContentHash != current {
		return true, "content changed (hash: " + entry.ContentHash[:8] + " -> " + current[:8] + ")"
	}
	logger.Debug("GenerationCache: %s does not need rewriting", outputPath)
	return false, ""
}

func (gc *GenerationCache) MarkWritten(outputPath, content string) {
	gc.mutex.Lock()
	defer gc.mutex.Unlock()
	gc.entries[outputPath] = &GenerationInfo{
		OutputPath:  outputPath,
		ContentHash: hashContent(content),
		WrittenAt:   time.Now(),
	}
}

func (gc *GenerationCache) GetGenerationInfo(outputPath string) (GenerationInfo, bool) {
	gc.mutex.RLock()
	defer gc.mutex.RUnlock()
	entry, exists := gc.entries[outputPath]
	if !exists {
		return GenerationInfo{}, false
	}
	return *entry, true
}

func (gc *GenerationCache) Invalidate(outputPath string) {
	gc.mutex.Lock()
	defer gc.mutex.Unlock()
	if _, exists := gc.entries[outputPath]; exists {
		delete(gc.entries, outputPath)
		logger.Debug("GenerationCache: Invalidated %s", outputPath)
	}
}

// GetGeneratedFiles returns every output path with a record, sorted.
func (gc *GenerationCache) GetGeneratedFiles() []string {
	gc.mutex.RLock()
	defer gc.mutex.RUnlock()
	files := make([]string, 0, len(gc.entries))
	for p := range gc.entries {
		files = append(files, p)
	}
	sort.Strings(files)
	return files
}

func (gc *GenerationCache) Clear() {
	gc.mutex.Lock()
	defer gc.mutex.Unlock()
	gc.entries = make(map[string]*GenerationInfo)
}
