// Package imports builds, inspects and merges import declarations.
package imports

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/max-scopp/ts-flattered/core/tsast"
)

var ErrMissingModuleSpecifier = errors.New("import without module specifier")

// ImportOptions describes one import declaration. Named imports are written
// either "Name" or "Name as Alias".
type ImportOptions struct {
	ModuleSpecifier      string
	DefaultImport        string
	NamespaceImport      string
	NamedImports         []string
	TypeOnlyNamedImports []string
	// TypeOnly marks the whole declaration, as in import type { A } from "x".
	TypeOnly bool
}

func (o ImportOptions) hasBindings() bool {
	return o.DefaultImport != "" || o.NamespaceImport != "" || len(o.NamedImports) > 0 || len(o.TypeOnlyNamedImports) > 0
}

// Build constructs a declaration from opts. Named imports win over a
// namespace import since the two cannot share one clause. Options without any
// binding produce a side-effect import.
func Build(opts ImportOptions) (*tsast.ImportDeclaration, error) {
	if strings.TrimSpace(opts.ModuleSpecifier) == "" {
		return nil, ErrMissingModuleSpecifier
	}
	if !opts.hasBindings() {
		return tsast.NewImportDeclaration(opts.TypeOnly, nil, opts.ModuleSpecifier), nil
	}
	return tsast.NewImportDeclaration(opts.TypeOnly, clauseOf(opts), opts.ModuleSpecifier), nil
}

func clauseOf(opts ImportOptions) *tsast.ImportClause {
	named := specifiers(opts.NamedImports, opts.TypeOnlyNamedImports)
	namespace := opts.NamespaceImport
	if len(named) > 0 {
		namespace = ""
	}
	return tsast.NewImportClause(opts.DefaultImport, namespace, named)
}

// specifiers turns name lists into specifiers. A name listed as both plain
// and type-only is imported as a value.
func specifiers(plain, typeOnly []string) []tsast.ImportSpecifier {
	seen := make(map[string]bool)
	var out []tsast.ImportSpecifier
	for _, n := range plain {
		s := ParseSpecifier(n)
		if s.Name == "" || seen[s.String()] {
			continue
		}
		seen[s.String()] = true
		s.TypeOnly = false
		out = append(out, s)
	}
	for _, n := range typeOnly {
		s := ParseSpecifier(n)
		if s.Name == "" || seen[s.String()] {
			continue
		}
		seen[s.String()] = true
		s.TypeOnly = true
		out = append(out, s)
	}
	return out
}

// ParseSpecifier reads "Name", "Name as Alias" or "type Name as Alias".
func ParseSpecifier(s string) tsast.ImportSpecifier {
	fields := strings.Fields(s)
	var spec tsast.ImportSpecifier
	if len(fields) > 1 && fields[0] == "type" {
		spec.TypeOnly = true
		fields = fields[1:]
	}
	switch {
	case len(fields) == 0:
	case len(fields) >= 3 && fields[1] == "as":
		spec.Name = fields[0]
		if fields[2] != fields[0] {
			spec.Alias = fields[2]
		}
	default:
		spec.Name = fields[0]
	}
	return spec
}

// ExtractImportOptions is the inverse of Build.
func ExtractImportOptions(decl *tsast.ImportDeclaration) ImportOptions {
	opts := ImportOptions{ModuleSpecifier: decl.ModuleSpecifier, TypeOnly: decl.TypeOnly}
	if decl.Clause == nil {
		return opts
	}
	opts.DefaultImport = decl.Clause.Default
	opts.NamespaceImport = decl.Clause.Namespace
	for _, s := range decl.Clause.Named {
		if s.TypeOnly {
			opts.TypeOnlyNamedImports = append(opts.TypeOnlyNamedImports, s.String())
		} else {
			opts.NamedImports = append(opts.NamedImports, s.String())
		}
	}
	return opts
}

// MergeImportDeclarations combines existing with incoming, which must target
// the same module. Named imports are unioned with existing entries first.
// Incoming default and namespace bindings replace existing ones. The result
// is a new declaration carrying the existing comments and quote style.
func MergeImportDeclarations(existing *tsast.ImportDeclaration, incoming ImportOptions) (*tsast.ImportDeclaration, error) {
	if existing == nil {
		return Build(incoming)
	}
	if incoming.ModuleSpecifier != "" && incoming.ModuleSpecifier != existing.ModuleSpecifier {
		return nil, fmt.Errorf("failed to merge import of %q into import of %q: module specifiers differ",
			incoming.ModuleSpecifier, existing.ModuleSpecifier)
	}
	cur := ExtractImportOptions(existing)
	in := incoming
	in.ModuleSpecifier = existing.ModuleSpecifier

	// A declaration-level type-only import merged with a value import turns
	// its names into inline type-only specifiers.
	typeOnly := cur.TypeOnly && in.TypeOnly
	if cur.TypeOnly && !typeOnly {
		cur = demote(cur)
	}
	if in.TypeOnly && !typeOnly {
		in = demote(in)
	}

	merged := ImportOptions{
		ModuleSpecifier:      existing.ModuleSpecifier,
		DefaultImport:        firstNonEmpty(in.DefaultImport, cur.DefaultImport),
		NamespaceImport:      firstNonEmpty(in.NamespaceImport, cur.NamespaceImport),
		NamedImports:         union(cur.NamedImports, in.NamedImports),
		TypeOnlyNamedImports: union(cur.TypeOnlyNamedImports, in.TypeOnlyNamedImports),
		TypeOnly:             typeOnly,
	}
	var clause *tsast.ImportClause
	if merged.hasBindings() || existing.Clause != nil {
		clause = clauseOf(merged)
	}
	decl := tsast.UpdateImportDeclaration(nil, existing.Comments, typeOnly, clause, existing.ModuleSpecifier)
	if existing.Quote != 0 {
		decl.Quote = existing.Quote
	}
	return decl, nil
}

func demote(o ImportOptions) ImportOptions {
	o.TypeOnly = false
	o.TypeOnlyNamedImports = append(append([]string(nil), o.NamedImports...), o.TypeOnlyNamedImports...)
	o.NamedImports = nil
	return o
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, n := range list {
			key := ParseSpecifier(n).String()
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, n)
		}
	}
	return out
}

// Equivalent reports whether a and b import the same bindings from the same
// module, ignoring specifier order, comments and quote style.
func Equivalent(a, b *tsast.ImportDeclaration) bool {
	if a == nil || b == nil {
		return a == b
	}
	if (a.Clause == nil) != (b.Clause == nil) || a.Attributes != b.Attributes {
		return false
	}
	x, y := ExtractImportOptions(a), ExtractImportOptions(b)
	return x.ModuleSpecifier == y.ModuleSpecifier &&
		x.TypeOnly == y.TypeOnly &&
		x.DefaultImport == y.DefaultImport &&
		x.NamespaceImport == y.NamespaceImport &&
		sameSet(x.NamedImports, y.NamedImports) &&
		sameSet(x.TypeOnlyNamedImports, y.TypeOnlyNamedImports)
}

func sameSet(a, b []string) bool {
	return strings.Join(sortedSet(a), "\x00") == strings.Join(sortedSet(b), "\x00")
}

func sortedSet(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, n := range list {
		key := ParseSpecifier(n).String()
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// NamedSet returns the local names bound by decl's named imports.
func NamedSet(decl *tsast.ImportDeclaration) []string {
	if decl == nil || decl.Clause == nil {
		return nil
	}
	out := make([]string, 0, len(decl.Clause.Named))
	for _, s := range decl.Clause.Named {
		out = append(out, s.LocalName())
	}
	return out
}

// IsEmpty reports whether decl has a clause that binds nothing, which is what
// is left after removing the last named import.
func IsEmpty(decl *tsast.ImportDeclaration) bool {
	c := decl.Clause
	return c != nil && c.Default == "" && c.Namespace == "" && len(c.Named) == 0
}
