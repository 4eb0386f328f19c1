package models

import "time"

// DiscoveredFile is a source file found under the project root.
type DiscoveredFile struct {
	Path    string // Absolute or working-directory-relative path on disk
	RelPath string // Slash-separated path relative to the root, used as the registry key
	Size    int64
	ModTime time.Time
}
