package registry

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/max-scopp/ts-flattered/core/imports"
	"github.com/max-scopp/ts-flattered/core/logger"
	"github.com/max-scopp/ts-flattered/core/models"
	"github.com/max-scopp/ts-flattered/core/pathutil"
	"github.com/max-scopp/ts-flattered/core/symbols"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

// RegisterExternalDependency records the exports of a module outside the
// registry. Registering a module again replaces the earlier entry.
func (r *Registry) RegisterExternalDependency(dep models.ExternalDependency) error {
	if dep.ModuleSpecifier == "" {
		return fmt.Errorf("failed to register external dependency: %w", imports.ErrMissingModuleSpecifier)
	}
	if pathutil.IsRelativeImport(dep.ModuleSpecifier) {
		return fmt.Errorf("failed to register external dependency %q: relative specifier", dep.ModuleSpecifier)
	}
	if _, ok := r.externals[dep.ModuleSpecifier]; !ok {
		r.externalOrder = append(r.externalOrder, dep.ModuleSpecifier)
	}
	r.externals[dep.ModuleSpecifier] = dep
	return nil
}

func (r *Registry) GetExternalDependency(moduleSpecifier string) (models.ExternalDependency, bool) {
	dep, ok := r.externals[moduleSpecifier]
	return dep, ok
}

// ExternalDependencies returns every external dependency sorted by module
// specifier.
func (r *Registry) ExternalDependencies() []models.ExternalDependency {
	out := make([]models.ExternalDependency, 0, len(r.externals))
	for _, dep := range r.externals {
		out = append(out, dep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModuleSpecifier < out[j].ModuleSpecifier })
	return out
}

// FindExternalDependencyByExport returns the first registered module that
// exports name, by default, named or type-only export.
func (r *Registry) FindExternalDependencyByExport(name string) (models.ExternalDependency, bool) {
	for _, spec := range r.externalOrder {
		dep := r.externals[spec]
		if found, _ := dep.Exports(name); found {
			return dep, true
		}
	}
	return models.ExternalDependency{}, false
}

// ResolveSymbol finds an import that binds name in the file at fromPath.
// External dependencies are tried first, then the named exports of registered
// files, in path order.
func (r *Registry) ResolveSymbol(name, fromPath string) (imports.ImportOptions, bool) {
	if dep, ok := r.FindExternalDependencyByExport(name); ok {
		opts := imports.ImportOptions{ModuleSpecifier: dep.ModuleSpecifier}
		_, typeOnly := dep.Exports(name)
		switch {
		case dep.DefaultExport == name:
			opts.DefaultImport = name
			opts.TypeOnly = typeOnly
		case typeOnly:
			opts.TypeOnlyNamedImports = []string{name}
		default:
			opts.NamedImports = []string{name}
		}
		return opts, true
	}

	fromPath = pathutil.Normalize(fromPath)
	for _, p := range r.Paths() {
		if p == fromPath || !exports(r.files[p].ExportedNames(), name) {
			continue
		}
		spec, err := relativeSpecifier(fromPath, p)
		if err != nil {
			logger.Debug("registry: cannot import %s from %s: %v", name, p, err)
			continue
		}
		return imports.ImportOptions{ModuleSpecifier: spec, NamedImports: []string{name}}, true
	}
	return imports.ImportOptions{}, false
}

func exports(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// relativeSpecifier is the extensionless relative specifier that reaches
// target from the file at fromFile. Index files are named explicitly.
func relativeSpecifier(fromFile, target string) (string, error) {
	mod := pathutil.StripExtension(target)
	if strings.HasPrefix(path.Base(target), "index.") && path.Base(mod) != "index" {
		mod = path.Join(mod, "index")
	}
	rel, err := pathutil.Relative(dirOf(fromFile), mod)
	if err != nil {
		return "", err
	}
	// The module is a file, so a path ending in a directory needs its name.
	if rel == "." || rel == ".." || strings.HasSuffix(rel, "/..") {
		rel = path.Join(rel, "..", path.Base(mod))
	}
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel, nil
}

func dirOf(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i]
	}
	return "."
}

// AutoImport adds imports for the symbols guesser finds in code that the
// file at filePath neither imports nor declares. It returns the names it
// imported. Names it cannot resolve are left alone.
func (r *Registry) AutoImport(filePath, code string, guesser symbols.Guesser) ([]string, error) {
	key := pathutil.Normalize(filePath)
	unit, ok := r.files[key]
	if !ok {
		return nil, fmt.Errorf("failed to auto-import into %s: %w", key, ErrNotRegistered)
	}

	bound := boundNames(unit.Imports(), unit.Get().Statements)
	var added []string
	for _, name := range guesser.Guess(code) {
		if bound[name] {
			continue
		}
		opts, ok := r.ResolveSymbol(name, key)
		if !ok {
			logger.Debug("registry: no import found for %s in %s", name, key)
			continue
		}
		if err := unit.AddOrUpdateImport(opts); err != nil {
			return added, fmt.Errorf("failed to auto-import %s into %s: %w", name, key, err)
		}
		bound[name] = true
		added = append(added, name)
	}
	if len(added) > 0 {
		r.deps[key] = analyze(key, unit)
		logger.Debug("registry: auto-imported %s into %s", strings.Join(added, ", "), key)
	}
	return added, nil
}

// boundNames collects the local names a file already has: import bindings,
// declared classes and names exported by raw statements.
func boundNames(decls []*tsast.ImportDeclaration, statements []tsast.Statement) map[string]bool {
	bound := make(map[string]bool)
	for _, d := range decls {
		if d.Clause == nil {
			continue
		}
		bound[d.Clause.Default] = true
		bound[d.Clause.Namespace] = true
		for _, s := range d.Clause.Named {
			bound[s.LocalName()] = true
		}
	}
	for _, st := range statements {
		switch x := st.(type) {
		case *tsast.ClassDeclaration:
			bound[x.Name] = true
		case *tsast.RawStatement:
			for _, n := range x.Exports {
				bound[n] = true
			}
		}
	}
	delete(bound, "")
	return bound
}
