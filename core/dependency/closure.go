// Package dependency follows relative imports between registered files.
package dependency

import (
	"sort"

	"github.com/max-scopp/ts-flattered/core/logger"
	"github.com/max-scopp/ts-flattered/core/pathutil"
	"github.com/max-scopp/ts-flattered/core/registry"
)

// Resolver maps resolved import targets to the registered files that
// provide them.
type Resolver struct {
	reg *registry.Registry
	// byModule indexes registered paths by their extensionless module path.
	byModule map[string]string
}

func NewResolver(reg *registry.Registry) *Resolver {
	r := &Resolver{reg: reg, byModule: make(map[string]string)}
	for _, p := range reg.Paths() {
		mod := pathutil.StripExtension(p)
		if _, taken := r.byModule[mod]; !taken {
			r.byModule[mod] = p
		}
	}
	return r
}

// File returns the registered file an import target resolves to.
func (r *Resolver) File(resolved string) (string, bool) {
	p, ok := r.byModule[pathutil.StripExtension(resolved)]
	return p, ok
}

// Direct returns the registered files that path imports relatively, sorted.
// Targets that are not registered, such as stylesheets, are skipped.
func (r *Resolver) Direct(path string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, dep := range r.reg.GetImportDependencies(path) {
		if !dep.IsRelative {
			continue
		}
		p, ok := r.File(dep.ResolvedPath)
		if !ok {
			logger.Debug("Dependency %s of %s is not registered", dep.ModuleSpecifier, path)
			continue
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Closure returns roots and every registered file they reach through
// relative imports, sorted. Import cycles are fine.
func (r *Resolver) Closure(roots ...string) []string {
	visited := make(map[string]bool)
	var visit func(p string)
	visit = func(p string) {
		if visited[p] {
			return
		}
		visited[p] = true
		for _, next := range r.Direct(p) {
			visit(next)
		}
	}
	for _, root := range roots {
		root = pathutil.Normalize(root)
		if !r.reg.Has(root) {
			logger.Debug("Skipping unregistered root %s", root)
			continue
		}
		visit(root)
	}

	out := make([]string, 0, len(visited))
	for p := range visited {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
