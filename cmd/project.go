package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/max-scopp/ts-flattered/core/cache"
	"github.com/max-scopp/ts-flattered/core/config"
	"github.com/max-scopp/ts-flattered/core/logger"
	"github.com/max-scopp/ts-flattered/core/pathutil"
	"github.com/max-scopp/ts-flattered/core/registry"
	"github.com/max-scopp/ts-flattered/core/walker"
)

// project is everything a command needs about the loaded source tree. It is
// the only place a registry is created.
type project struct {
	cfg      *config.Config
	root     string
	registry *registry.Registry
	parses   *cache.ParseCache
	walker   *walker.Walker
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

func loadProject(ctx context.Context) (*project, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", cfg.Root, err)
	}
	if stat, err := os.Stat(root); err != nil || !stat.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	parses, err := cache.NewParseCache(&cache.CacheConfig{ParseEntries: cfg.Cache.ParseEntries})
	if err != nil {
		return nil, err
	}

	p := &project{
		cfg:      cfg,
		root:     root,
		registry: registry.New(),
		parses:   parses,
		walker:   walker.NewWalker(cfg),
	}
	for _, dep := range cfg.ExternalDependencies {
		if err := p.registry.RegisterExternalDependency(dep); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	files, err := p.walker.Walk(root)
	if err != nil {
		return nil, err
	}
	if err := p.walker.Load(ctx, files, p.registry, parses); err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	logger.Debug("Loaded %d files from %s", p.registry.Len(), root)
	return p, nil
}

// key turns a path given on the command line into a registry path.
func (p *project) key(arg string) string {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return pathutil.Normalize(arg)
	}
	rel, err := filepath.Rel(p.root, abs)
	if err != nil {
		return pathutil.Normalize(arg)
	}
	return pathutil.Normalize(filepath.ToSlash(rel))
}

func (p *project) outputDir(flag string) string {
	if flag != "" {
		return flag
	}
	if filepath.IsAbs(p.cfg.Output) {
		return p.cfg.Output
	}
	return filepath.Join(p.root, p.cfg.Output)
}
