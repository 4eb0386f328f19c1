package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/max-scopp/ts-flattered/core/logger"
	"github.com/max-scopp/ts-flattered/core/models"
	"gopkg.in/yaml.v3"
)

const FileName = "ts-flattered.yaml"

type Config struct {
	// Root is the project directory that registry paths are relative to.
	Root       string   `yaml:"root"`
	Extensions []string `yaml:"extensions"`
	Exclude    []string `yaml:"exclude"`
	Output     string   `yaml:"output"`
	// Concurrency bounds how many files are printed and written at once.
	Concurrency int   `yaml:"concurrency"`
	Print       Print `yaml:"print"`
	Cache       Cache `yaml:"cache"`

	ExternalDependencies []models.ExternalDependency `yaml:"external_dependencies"`
}

type Print struct {
	RemoveComments bool `yaml:"remove_comments"`
}

type Cache struct {
	ParseEntries int `yaml:"parse_entries"`
}

func Default() *Config {
	return &Config{
		Root:        ".",
		Extensions:  []string{".ts", ".tsx"},
		Exclude:     []string{".git", "node_modules", "dist", "build", ".next"},
		Output:      "out",
		Concurrency: runtime.NumCPU(),
		Cache:       Cache{ParseEntries: 512},
	}
}

// Load reads ts-flattered.yaml from the working directory, or returns the
// default config when there is none.
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working dir: %w", err)
	}

	filePath := filepath.Join(wd, FileName)
	if _, err := os.Stat(filePath); err != nil {
		logger.Debug("No config file found, using default config")
		return Default(), nil
	}
	return LoadFile(filePath)
}

// LoadFile reads the config at filePath. Fields missing from the file keep
// their default values.
func LoadFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filePath, err)
	}
	logger.Debug("Config file found: %s", filePath)
	logger.Debug("Config: %+v", *cfg)

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root must not be empty")
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("at least one extension is required")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.Cache.ParseEntries < 1 {
		return fmt.Errorf("cache.parse_entries must be positive, got %d", c.Cache.ParseEntries)
	}
	for i, dep := range c.ExternalDependencies {
		if dep.ModuleSpecifier == "" {
			return fmt.Errorf("external_dependencies[%d] has no module", i)
		}
	}
	return nil
}
