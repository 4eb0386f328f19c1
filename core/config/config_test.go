package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
root: web
output: generated
concurrency: 2
print:
  remove_comments: true
external_dependencies:
  - module: "@angular/core"
    named_exports: [Component, Input]
    type_only_exports: [OnInit]
  - module: react
    default_export: React
`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "web", cfg.Root)
	assert.Equal(t, "generated", cfg.Output)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.True(t, cfg.Print.RemoveComments)
	assert.Equal(t, []string{".ts", ".tsx"}, cfg.Extensions)
	assert.Equal(t, 512, cfg.Cache.ParseEntries)

	require.Len(t, cfg.ExternalDependencies, 2)
	assert.Equal(t, "@angular/core", cfg.ExternalDependencies[0].ModuleSpecifier)
	assert.Equal(t, []string{"OnInit"}, cfg.ExternalDependencies[0].TypeOnlyExports)
	assert.Equal(t, "React", cfg.ExternalDependencies[1].DefaultExport)
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"bad yaml":       "root: [",
		"no concurrency": "concurrency: 0",
		"no extensions":  "extensions: []",
		"no module":      "external_dependencies:\n  - named_exports: [A]",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := LoadFile(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
