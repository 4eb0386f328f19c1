package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/max-scopp/ts-flattered/core/builder"
	"github.com/max-scopp/ts-flattered/core/cache"
	"github.com/max-scopp/ts-flattered/core/config"
	"github.com/max-scopp/ts-flattered/core/logger"
	"github.com/max-scopp/ts-flattered/core/models"
	"github.com/max-scopp/ts-flattered/core/registry"
	"github.com/max-scopp/ts-flattered/core/shared"
)

type SourceWalker interface {
	Walk(root string) ([]models.DiscoveredFile, error)
}

// Walker discovers source files below a root directory.
type Walker struct {
	Extensions  []string
	Exclude     []string
	Concurrency int
}

func NewWalker(cfg *config.Config) *Walker {
	exclude := append([]string{".git", "node_modules"}, cfg.Exclude...)
	if cfg.Output != "" {
		exclude = append(exclude, cfg.Output)
	}
	return &Walker{
		Extensions:  cfg.Extensions,
		Exclude:     shared.Dedupe(exclude),
		Concurrency: cfg.Concurrency,
	}
}

// Excluded reports whether relPath, relative to the walk root, is or lies
// inside one of the excluded paths.
func Excluded(relPath string, exclude []string) bool {
	relPath = filepath.ToSlash(filepath.Clean(relPath))
	for _, ex := range exclude {
		ex = filepath.ToSlash(filepath.Clean(ex))
		if relPath == ex || strings.HasPrefix(relPath, ex+"/") {
			return true
		}
		// Bare names such as node_modules match at any depth.
		if !strings.Contains(ex, "/") {
			for _, seg := range strings.Split(relPath, "/") {
				if seg == ex {
					return true
				}
			}
		}
	}
	return false
}

func (w *Walker) matches(name string) bool {
	if strings.HasSuffix(name, ".d.ts") {
		return false
	}
	for _, ext := range w.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Walk returns the source files below root in lexical order.
func (w *Walker) Walk(root string) ([]models.DiscoveredFile, error) {
	var discovered []models.DiscoveredFile

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		if Excluded(relPath, w.Exclude) {
			if info.IsDir() {
				logger.Debug("Excluding directory: %s", relPath)
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || !w.matches(info.Name()) {
			return nil
		}

		discovered = append(discovered, models.DiscoveredFile{
			Path:    path,
			RelPath: filepath.ToSlash(relPath),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", root, err)
	}

	logger.Debug("Discovered %d source files under %s", len(discovered), root)
	return discovered, nil
}

// Load parses files concurrently and registers them under their relative
// paths. Registration happens afterwards, in walk order, because the
// registry is not safe for concurrent use.
func (w *Walker) Load(ctx context.Context, files []models.DiscoveredFile, reg *registry.Registry, parses *cache.ParseCache) error {
	units := make([]*builder.SourceFile, len(files))

	g, ctx := errgroup.WithContext(ctx)
	if w.Concurrency > 0 {
		g.SetLimit(w.Concurrency)
	}
	for i, f := range files {
		g.Go(func() error {
			data, err := os.ReadFile(f.Path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", f.Path, err)
			}
			unit, err := parse(ctx, parses, f.RelPath, string(data))
			if err != nil {
				return err
			}
			units[i] = unit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, unit := range units {
		if err := reg.RegisterAs(files[i].RelPath, unit); err != nil {
			return err
		}
	}
	logger.Info("Registered %d source files", len(units))
	return nil
}

// LoadFile reads one file and registers it, replacing an earlier version.
func LoadFile(ctx context.Context, root, relPath string, reg *registry.Registry, parses *cache.ParseCache) error {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", relPath, err)
	}
	unit, err := parse(ctx, parses, relPath, string(data))
	if err != nil {
		return err
	}
	return reg.RegisterAs(relPath, unit)
}

func parse(ctx context.Context, parses *cache.ParseCache, name, text string) (*builder.SourceFile, error) {
	if parses == nil {
		return builder.ParseSourceFile(ctx, name, text)
	}
	tree, err := parses.Parse(ctx, name, text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return builder.AdoptSourceFile(tree), nil
}
