// Package registry tracks the source files of one generation run and the
// import dependencies between them. A Registry is a plain in-memory catalogue
// without locking; callers that register from several goroutines serialize
// access themselves.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/max-scopp/ts-flattered/core/builder"
	"github.com/max-scopp/ts-flattered/core/logger"
	"github.com/max-scopp/ts-flattered/core/models"
	"github.com/max-scopp/ts-flattered/core/pathutil"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

var (
	ErrNotRegistered = errors.New("file not registered")
	ErrPathConflict  = errors.New("path already registered")
)

type Registry struct {
	files map[string]*builder.SourceFile
	deps  map[string][]models.ImportDependency

	externals     map[string]models.ExternalDependency
	externalOrder []string
}

func New() *Registry {
	return &Registry{
		files:     make(map[string]*builder.SourceFile),
		deps:      make(map[string][]models.ImportDependency),
		externals: make(map[string]models.ExternalDependency),
	}
}

// Register stores unit under its own file name and computes its import
// dependencies right away.
func (r *Registry) Register(unit *builder.SourceFile) error {
	return r.RegisterAs(unit.FileName(), unit)
}

// RegisterAs stores unit under path, renaming the unit so its file name and
// registry key agree. Registering a path again replaces the earlier unit.
func (r *Registry) RegisterAs(path string, unit *builder.SourceFile) error {
	if unit == nil {
		return fmt.Errorf("failed to register %s: nil source file", path)
	}
	key := pathutil.Normalize(path)
	if key == "" || key == "." {
		return fmt.Errorf("failed to register file: %w: empty path", pathutil.ErrMalformedPath)
	}
	if unit.FileName() != key {
		unit.Rename(key)
	}
	r.files[key] = unit
	r.deps[key] = analyze(key, unit)
	logger.Debug("registry: registered %s with %d imports", key, len(r.deps[key]))
	return nil
}

func analyze(path string, unit *builder.SourceFile) []models.ImportDependency {
	var deps []models.ImportDependency
	add := func(spec string, dep models.ImportDependency) {
		dep.FilePath = path
		dep.ModuleSpecifier = spec
		dep.IsRelative = pathutil.IsRelativeImport(spec)
		if dep.IsRelative {
			dep.ResolvedPath = pathutil.ResolveImportPath(spec, path)
		}
		deps = append(deps, dep)
	}
	for _, st := range unit.Get().Statements {
		switch x := st.(type) {
		case *tsast.ImportDeclaration:
			add(x.ModuleSpecifier, models.ImportDependency{Declaration: x})
		case *tsast.RawStatement:
			for _, ref := range x.References {
				add(ref.Specifier, models.ImportDependency{Raw: x})
			}
		}
	}
	if deps == nil {
		deps = []models.ImportDependency{}
	}
	return deps
}

// Refresh recomputes the dependencies of path from its current statements.
func (r *Registry) Refresh(path string) error {
	key := pathutil.Normalize(path)
	unit, ok := r.files[key]
	if !ok {
		return fmt.Errorf("failed to refresh %s: %w", key, ErrNotRegistered)
	}
	r.deps[key] = analyze(key, unit)
	return nil
}

func (r *Registry) Unregister(path string) bool {
	key := pathutil.Normalize(path)
	if _, ok := r.files[key]; !ok {
		return false
	}
	delete(r.files, key)
	delete(r.deps, key)
	return true
}

func (r *Registry) Get(path string) (*builder.SourceFile, bool) {
	unit, ok := r.files[pathutil.Normalize(path)]
	return unit, ok
}

func (r *Registry) Has(path string) bool {
	_, ok := r.files[pathutil.Normalize(path)]
	return ok
}

// Paths returns every registered path in sorted order.
func (r *Registry) Paths() []string {
	paths := make([]string, 0, len(r.files))
	for p := range r.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (r *Registry) Len() int { return len(r.files) }

// Units returns the registered files in path order.
func (r *Registry) Units() []*builder.SourceFile {
	paths := r.Paths()
	out := make([]*builder.SourceFile, 0, len(paths))
	for _, p := range paths {
		out = append(out, r.files[p])
	}
	return out
}

// Clear drops every file and external dependency.
func (r *Registry) Clear() {
	r.files = make(map[string]*builder.SourceFile)
	r.deps = make(map[string][]models.ImportDependency)
	r.externals = make(map[string]models.ExternalDependency)
	r.externalOrder = nil
}

// GetImportDependencies returns the dependencies computed at the last
// registration of path. Unknown paths yield an empty list.
func (r *Registry) GetImportDependencies(path string) []models.ImportDependency {
	deps := r.deps[pathutil.Normalize(path)]
	out := make([]models.ImportDependency, len(deps))
	copy(out, deps)
	return out
}

// GetFilesThatImport returns the sorted paths of files with an import that
// resolves to target. The comparison ignores source extensions and index
// files, and a partial target such as "types/common" matches any resolved
// path ending in it. Package names match non-relative imports exactly.
func (r *Registry) GetFilesThatImport(target string) []string {
	want := pathutil.StripExtension(target)
	var out []string
	for _, p := range r.Paths() {
		for _, dep := range r.deps[p] {
			if importsTarget(dep, target, want) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func importsTarget(dep models.ImportDependency, target, want string) bool {
	if !dep.IsRelative {
		return dep.ModuleSpecifier == target
	}
	got := pathutil.StripExtension(dep.ResolvedPath)
	if got == want {
		return true
	}
	return want != "" && !strings.HasPrefix(want, "/") && strings.HasSuffix(got, "/"+strings.TrimPrefix(want, "./"))
}
