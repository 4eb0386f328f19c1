package registry

import (
	"fmt"
	"sort"

	"github.com/max-scopp/ts-flattered/core/builder"
	"github.com/max-scopp/ts-flattered/core/logger"
	"github.com/max-scopp/ts-flattered/core/models"
	"github.com/max-scopp/ts-flattered/core/pathutil"
)

type MoveOptions struct {
	// RewriteInbound also rewrites relative imports in files that stay put
	// but point into the moved set.
	RewriteInbound bool
}

// move is a staged rename of registered files. Nothing in the registry
// changes until every new path and module specifier has been computed.
type move struct {
	fromBase, toBase string
	// prefix is set for subtree moves, where any target below fromBase moves
	// along with the files, registered or not.
	prefix bool
	paths  map[string]string
	order  []string
}

// targetAfter maps a resolved import target to where it lives after the move.
func (m *move) targetAfter(target string) string {
	for _, oldPath := range m.order {
		if !pathutil.SameModule(target, oldPath) {
			continue
		}
		base := pathutil.StripExtension(target)
		return pathutil.StripExtension(m.paths[oldPath]) + target[len(base):]
	}
	if m.prefix {
		if moved, ok := pathutil.ReplacePrefix(target, m.fromBase, m.toBase); ok {
			return moved
		}
	}
	return target
}

type stagedFile struct {
	unit             *builder.SourceFile
	oldPath, newPath string
	specs            map[string]string
}

// RewriteAllRelativeImports moves every file under fromBase to the same place
// under toBase and rewrites the relative imports of the moved files so they
// still reach their targets. Files outside fromBase are not rewritten, even
// when they import a moved file; use Move with RewriteInbound for that.
func (r *Registry) RewriteAllRelativeImports(fromBase, toBase string) (*models.MoveReport, error) {
	return r.Move(fromBase, toBase, MoveOptions{})
}

// Move moves every file under fromBase to toBase. It either applies the whole
// move or returns an error and leaves the registry unchanged.
func (r *Registry) Move(fromBase, toBase string, opts MoveOptions) (*models.MoveReport, error) {
	fromBase = pathutil.Normalize(fromBase)
	toBase = pathutil.Normalize(toBase)
	m := &move{fromBase: fromBase, toBase: toBase, prefix: true, paths: make(map[string]string)}

	for _, p := range r.Paths() {
		if !pathutil.IsUnder(p, fromBase) {
			continue
		}
		newPath, _ := pathutil.ReplacePrefix(p, fromBase, toBase)
		if err := pathutil.ValidateMovedPath(p, newPath, fromBase, toBase); err != nil {
			return nil, fmt.Errorf("failed to move %s to %s: %w", fromBase, toBase, err)
		}
		m.paths[p] = newPath
	}
	if len(m.paths) == 0 {
		logger.Warn("registry: no registered files under %s", fromBase)
	}
	return r.apply(m, opts)
}

// UpdateFilePath moves one registered file and rewrites its relative imports
// so they keep their targets.
func (r *Registry) UpdateFilePath(oldPath, newPath string) error {
	oldPath = pathutil.Normalize(oldPath)
	newPath = pathutil.Normalize(newPath)
	if !r.Has(oldPath) {
		return fmt.Errorf("failed to update path of %s: %w", oldPath, ErrNotRegistered)
	}
	if newPath == "" || newPath == "." {
		return fmt.Errorf("failed to update path of %s: %w: empty path", oldPath, pathutil.ErrMalformedPath)
	}
	m := &move{fromBase: oldPath, toBase: newPath, paths: map[string]string{oldPath: newPath}}
	_, err := r.apply(m, MoveOptions{})
	return err
}

func (r *Registry) apply(m *move, opts MoveOptions) (*models.MoveReport, error) {
	report := &models.MoveReport{FromBase: m.fromBase, ToBase: m.toBase}
	m.order = sortedKeys(m.paths)

	// Two files may not land on one path, and a moved file may not replace a
	// file that stays.
	taken := make(map[string]string, len(m.paths))
	for _, oldPath := range m.order {
		newPath := m.paths[oldPath]
		if other, ok := taken[newPath]; ok {
			return nil, fmt.Errorf("failed to move %s and %s to %s: %w", other, oldPath, newPath, ErrPathConflict)
		}
		taken[newPath] = oldPath
		if _, moving := m.paths[newPath]; !moving && newPath != oldPath && r.Has(newPath) {
			return nil, fmt.Errorf("failed to move %s to %s: %w", oldPath, newPath, ErrPathConflict)
		}
	}

	var staged []stagedFile
	for _, p := range r.Paths() {
		newPath, moving := m.paths[p]
		if !moving {
			if !opts.RewriteInbound {
				continue
			}
			newPath = p
		}
		specs, err := r.stageImports(p, newPath, m)
		if err != nil {
			return nil, err
		}
		if moving || len(specs) > 0 {
			staged = append(staged, stagedFile{unit: r.files[p], oldPath: p, newPath: newPath, specs: specs})
		}
	}

	// Commit. Nothing below can fail.
	for _, s := range staged {
		if len(s.specs) == 0 {
			continue
		}
		s.unit.RewriteImports(func(spec string) (string, error) {
			if next, ok := s.specs[spec]; ok {
				return next, nil
			}
			return spec, nil
		})
		for _, from := range sortedKeys(s.specs) {
			report.Rewrites = append(report.Rewrites, models.ImportRewrite{FilePath: s.newPath, From: from, To: s.specs[from]})
		}
	}
	for _, s := range staged {
		if s.oldPath != s.newPath {
			delete(r.files, s.oldPath)
			delete(r.deps, s.oldPath)
			report.Moved = append(report.Moved, models.FileMove{From: s.oldPath, To: s.newPath})
		}
	}
	for _, s := range staged {
		s.unit.Rename(s.newPath)
		r.files[s.newPath] = s.unit
		r.deps[s.newPath] = analyze(s.newPath, s.unit)
	}

	logger.Debug("registry: moved %d files from %s to %s, rewrote %d imports",
		len(report.Moved), m.fromBase, m.toBase, len(report.Rewrites))
	return report, nil
}

// stageImports computes the new module specifier of every relative import and
// re-export of the file at oldPath once it lives at newPath. Unchanged specifiers are left
// out of the result.
func (r *Registry) stageImports(oldPath, newPath string, m *move) (map[string]string, error) {
	specs := make(map[string]string)
	for _, spec := range r.files[oldPath].ModuleSpecifiers() {
		if !pathutil.IsRelativeImport(spec) {
			continue
		}
		if _, done := specs[spec]; done {
			continue
		}
		next, err := pathutil.RetargetImportPath(spec, oldPath, newPath, m.targetAfter)
		if err != nil {
			return nil, fmt.Errorf("failed to move %s to %s: %w", oldPath, newPath, err)
		}
		if next != spec {
			specs[spec] = next
		}
	}
	return specs, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
