// Package pathutil resolves and rewrites module specifiers. Every function
// works on POSIX-style paths; backslashes are turned into forward slashes
// before anything else happens. Paths are logical: "src/a.ts" and "/src/a.ts"
// are both fine as long as one convention is used consistently.
package pathutil

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrEscapesRoot is returned when a relative path would need to climb
	// above the logical root to reach its target.
	ErrEscapesRoot = errors.New("path escapes logical root")
	// ErrMalformedPath is returned when a computed path fails validation.
	ErrMalformedPath = errors.New("malformed path")
)

// sourceExtensions are stripped when comparing a module specifier's target
// with a file path. Longest first so ".d.ts" wins over ".ts".
var sourceExtensions = []string{".d.ts", ".tsx", ".ts", ".mts", ".cts", ".jsx", ".js", ".mjs", ".cjs"}

func ToSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// Normalize converts separators and cleans the path. The empty path stays
// empty instead of becoming ".".
func Normalize(p string) string {
	p = ToSlash(p)
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

// IsRelativeImport reports whether spec starts with "./" or "../".
func IsRelativeImport(spec string) bool {
	spec = ToSlash(spec)
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// ResolveImportPath resolves a relative specifier against the directory of
// fromFile. Non-relative specifiers come back unchanged.
func ResolveImportPath(spec, fromFile string) string {
	if !IsRelativeImport(spec) {
		return spec
	}
	return path.Join(path.Dir(Normalize(fromFile)), ToSlash(spec))
}

// CalculateNewImportPath rewrites spec so that, written in newFile, it still
// points at the target it had when written in oldFile.
func CalculateNewImportPath(spec, oldFilePath, newFilePath string) (string, error) {
	return RetargetImportPath(spec, oldFilePath, newFilePath, nil)
}

// RetargetImportPath is CalculateNewImportPath for moves where the target
// itself may move too. mapTarget receives the resolved target and returns its
// location after the move; nil means the target stays put.
func RetargetImportPath(spec, oldFilePath, newFilePath string, mapTarget func(string) string) (string, error) {
	if !IsRelativeImport(spec) {
		return spec, nil
	}
	oldFilePath = Normalize(oldFilePath)
	newFilePath = Normalize(newFilePath)

	target := ResolveImportPath(spec, oldFilePath)
	newTarget := target
	if mapTarget != nil {
		newTarget = Normalize(mapTarget(target))
	}
	if newTarget == target && path.Dir(oldFilePath) == path.Dir(newFilePath) {
		return spec, nil
	}

	rel, err := Relative(path.Dir(newFilePath), newTarget)
	if err != nil {
		return "", fmt.Errorf("failed to rewrite %q from %s to %s: %w", spec, oldFilePath, newFilePath, err)
	}
	switch {
	case rel == ".":
		rel = "./"
	case rel == ".." || strings.HasSuffix(rel, "/.."):
		rel += "/"
	case !strings.HasPrefix(rel, "../"):
		rel = "./" + rel
	}
	if err := ValidateSpecifier(rel); err != nil {
		return "", fmt.Errorf("failed to rewrite %q from %s to %s: %w", spec, oldFilePath, newFilePath, err)
	}
	return rel, nil
}

// Relative returns the path from directory fromDir to target, the way
// path.Rel would if the standard library had one for slash paths.
func Relative(fromDir, target string) (string, error) {
	fromDir = Normalize(fromDir)
	target = Normalize(target)
	if fromDir == "" {
		fromDir = "."
	}
	if target == "" {
		target = "."
	}
	if path.IsAbs(fromDir) != path.IsAbs(target) {
		return "", fmt.Errorf("%w: cannot relate %s to %s", ErrMalformedPath, fromDir, target)
	}

	base := segments(fromDir)
	targ := segments(target)

	common := 0
	for common < len(base) && common < len(targ) && base[common] == targ[common] {
		common++
	}
	for _, s := range base[common:] {
		if s == ".." {
			return "", fmt.Errorf("%w: %s is not reachable from %s", ErrEscapesRoot, target, fromDir)
		}
	}

	parts := make([]string, 0, len(base)-common+len(targ)-common)
	for range base[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, targ[common:]...)
	if len(parts) == 0 {
		return ".", nil
	}
	return strings.Join(parts, "/"), nil
}

func segments(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." {
		return nil
	}
	return strings.Split(p, "/")
}

// ValidateSpecifier checks that a computed relative specifier is well formed.
func ValidateSpecifier(spec string) error {
	if !IsRelativeImport(spec) {
		return fmt.Errorf("%w: %q is not a relative specifier", ErrMalformedPath, spec)
	}
	if strings.Contains(spec, "//") {
		return fmt.Errorf("%w: %q has an empty segment", ErrMalformedPath, spec)
	}
	rest := strings.TrimPrefix(strings.TrimPrefix(spec, "./"), "../")
	for strings.HasPrefix(rest, "../") {
		rest = strings.TrimPrefix(rest, "../")
	}
	if strings.Contains("/"+rest+"/", "/../") || strings.Contains("/"+rest+"/", "/./") {
		return fmt.Errorf("%w: %q is not normalized", ErrMalformedPath, spec)
	}
	return nil
}

// ValidateMovedPath checks a file path produced by moving oldPath from
// fromBase to toBase. It rejects empty or unclean results, results that
// escape the root, and results whose remainder below toBase differs from the
// old remainder below fromBase (a doubled or dropped segment).
func ValidateMovedPath(oldPath, newPath, fromBase, toBase string) error {
	if newPath == "" || newPath == "." {
		return fmt.Errorf("%w: empty path for %s", ErrMalformedPath, oldPath)
	}
	if strings.Contains(newPath, `\`) || path.Clean(newPath) != newPath {
		return fmt.Errorf("%w: %q is not normalized", ErrMalformedPath, newPath)
	}
	if newPath == ".." || strings.HasPrefix(newPath, "../") {
		return fmt.Errorf("%w: %q", ErrEscapesRoot, newPath)
	}
	oldRest, ok := remainder(oldPath, fromBase)
	if !ok {
		return fmt.Errorf("%w: %s is not under %s", ErrMalformedPath, oldPath, fromBase)
	}
	newRest, ok := remainder(newPath, toBase)
	if !ok || newRest != oldRest {
		return fmt.Errorf("%w: moving %s from %s to %s produced %s", ErrMalformedPath, oldPath, fromBase, toBase, newPath)
	}
	return nil
}

func remainder(p, base string) (string, bool) {
	p = Normalize(p)
	base = Normalize(base)
	if !IsUnder(p, base) {
		return "", false
	}
	switch {
	case base == "" || base == ".":
		return p, true
	case base == "/":
		return strings.TrimPrefix(p, "/"), true
	default:
		return strings.TrimPrefix(strings.TrimPrefix(p, base), "/"), true
	}
}

// IsUnder reports whether p is base or lies inside it.
func IsUnder(p, base string) bool {
	p = Normalize(p)
	base = Normalize(base)
	if base == "" || base == "." {
		return !path.IsAbs(p) && p != ".." && !strings.HasPrefix(p, "../")
	}
	if base == "/" {
		return path.IsAbs(p)
	}
	return p == base || strings.HasPrefix(p, base+"/")
}

// ReplacePrefix substitutes the to prefix for the from prefix of p. The
// remainder of the path is preserved exactly. The second result is false
// when p is not under from.
func ReplacePrefix(p, from, to string) (string, bool) {
	p = Normalize(p)
	from = Normalize(from)
	to = Normalize(to)
	if !IsUnder(p, from) {
		return p, false
	}
	rest, _ := remainder(p, from)
	if rest == "" {
		if to == "" {
			return ".", true
		}
		return to, true
	}
	if to == "" || to == "." {
		return rest, true
	}
	return path.Join(to, rest), true
}

// StripExtension removes a source extension and a trailing "/index" so a
// file path can be compared with an extensionless module specifier target.
func StripExtension(p string) string {
	p = Normalize(p)
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(p, ext) {
			p = strings.TrimSuffix(p, ext)
			break
		}
	}
	if p != "index" && strings.HasSuffix(p, "/index") {
		p = strings.TrimSuffix(p, "/index")
	}
	return p
}

// SameModule reports whether a resolved import target and a file path name
// the same module, ignoring extensions and index files.
func SameModule(resolved, filePath string) bool {
	return StripExtension(resolved) == StripExtension(filePath)
}
