package builder

import (
	"context"
	"fmt"

	"github.com/max-scopp/ts-flattered/core/imports"
	"github.com/max-scopp/ts-flattered/core/logger"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

// SourceFile is one logical file: its path and its top-level statements.
// Statements are always read from the current tree, so the two cannot drift.
type SourceFile struct {
	node *tsast.SourceFile
}

func NewSourceFile(fileName string, statements ...tsast.Statement) *SourceFile {
	return &SourceFile{node: tsast.NewSourceFile(fileName, statements)}
}

// ParseSourceFile parses text into a SourceFile named fileName.
func ParseSourceFile(ctx context.Context, fileName, text string) (*SourceFile, error) {
	node, err := tsast.Parse(ctx, fileName, text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fileName, err)
	}
	return &SourceFile{node: node}, nil
}

func AdoptSourceFile(node *tsast.SourceFile) *SourceFile {
	return &SourceFile{node: node}
}

func (f *SourceFile) Get() *tsast.SourceFile { return f.node }

func (f *SourceFile) FileName() string { return f.node.FileName }

func (f *SourceFile) Rename(fileName string) *SourceFile {
	f.node = tsast.UpdateSourceFile(f.node, fileName, f.node.Statements)
	return f
}

// Statements returns a copy of the top-level statements.
func (f *SourceFile) Statements() []tsast.Statement {
	return append([]tsast.Statement(nil), f.node.Statements...)
}

func (f *SourceFile) setStatements(statements []tsast.Statement) *SourceFile {
	f.node = tsast.UpdateSourceFile(f.node, f.node.FileName, statements)
	return f
}

func (f *SourceFile) AddStatements(statements ...tsast.Statement) *SourceFile {
	return f.setStatements(append(f.Statements(), statements...))
}

func (f *SourceFile) PrependStatements(statements ...tsast.Statement) *SourceFile {
	return f.setStatements(append(append([]tsast.Statement(nil), statements...), f.node.Statements...))
}

// UpdateStatements replaces every statement matching pred with fn's result in
// one left-to-right scan. A nil result removes the statement. It returns the
// number of matches.
func (f *SourceFile) UpdateStatements(pred func(tsast.Statement) bool, fn func(tsast.Statement) tsast.Statement) int {
	out := make([]tsast.Statement, 0, len(f.node.Statements))
	matched := 0
	for _, st := range f.node.Statements {
		if !pred(st) {
			out = append(out, st)
			continue
		}
		matched++
		if next := fn(st); next != nil {
			out = append(out, next)
		}
	}
	if matched > 0 {
		f.setStatements(out)
	}
	return matched
}

func (f *SourceFile) AddClass(c *Class) *SourceFile {
	return f.AddStatements(c.Get())
}

// Class adopts the first class called name. The builder is detached; use
// UpdateClass to change the file.
func (f *SourceFile) Class(name string) (*Class, bool) {
	for _, st := range f.node.Statements {
		if c, ok := st.(*tsast.ClassDeclaration); ok && c.Name == name {
			return AdoptClass(c), true
		}
	}
	return nil, false
}

func (f *SourceFile) Classes() []*Class {
	var out []*Class
	for _, st := range f.node.Statements {
		if c, ok := st.(*tsast.ClassDeclaration); ok {
			out = append(out, AdoptClass(c))
		}
	}
	return out
}

// UpdateClass runs fn on the first class called name and stores the result in
// place. It reports false when the file has no such class.
func (f *SourceFile) UpdateClass(name string, fn func(*Class)) bool {
	done := false
	f.UpdateStatements(func(st tsast.Statement) bool {
		c, ok := st.(*tsast.ClassDeclaration)
		if done || !ok || c.Name != name {
			return false
		}
		done = true
		return true
	}, func(st tsast.Statement) tsast.Statement {
		b := AdoptClass(st.(*tsast.ClassDeclaration))
		fn(b)
		return b.Get()
	})
	return done
}

func (f *SourceFile) Imports() []*tsast.ImportDeclaration {
	var out []*tsast.ImportDeclaration
	for _, st := range f.node.Statements {
		if d, ok := st.(*tsast.ImportDeclaration); ok {
			out = append(out, d)
		}
	}
	return out
}

// Import returns the first import of moduleSpecifier.
func (f *SourceFile) Import(moduleSpecifier string) (*tsast.ImportDeclaration, bool) {
	for _, d := range f.Imports() {
		if d.ModuleSpecifier == moduleSpecifier {
			return d, true
		}
	}
	return nil, false
}

// AddOrUpdateImport merges opts into the first import binding names from the
// same module. Without one, a new import goes after the last import.
func (f *SourceFile) AddOrUpdateImport(opts imports.ImportOptions) error {
	statements := f.Statements()
	lastImport := -1
	for i, st := range statements {
		d, ok := st.(*tsast.ImportDeclaration)
		if !ok {
			continue
		}
		lastImport = i
		if d.ModuleSpecifier != opts.ModuleSpecifier || d.Clause == nil {
			continue
		}
		merged, err := imports.MergeImportDeclarations(d, opts)
		if err != nil {
			return fmt.Errorf("failed to update import of %q in %s: %w", opts.ModuleSpecifier, f.FileName(), err)
		}
		statements[i] = merged
		f.setStatements(statements)
		return nil
	}

	decl, err := imports.Build(opts)
	if err != nil {
		return fmt.Errorf("failed to add import to %s: %w", f.FileName(), err)
	}
	at := lastImport + 1
	statements = append(statements[:at], append([]tsast.Statement{decl}, statements[at:]...)...)
	f.setStatements(statements)
	logger.Debug("%s: added import of %q", f.FileName(), opts.ModuleSpecifier)
	return nil
}

// RemoveImport removes every import of moduleSpecifier.
func (f *SourceFile) RemoveImport(moduleSpecifier string) bool {
	return f.UpdateStatements(func(st tsast.Statement) bool {
		d, ok := st.(*tsast.ImportDeclaration)
		return ok && d.ModuleSpecifier == moduleSpecifier
	}, func(tsast.Statement) tsast.Statement { return nil }) > 0
}

// RemoveNamedImport drops name from imports of moduleSpecifier. An import
// left binding nothing is removed.
func (f *SourceFile) RemoveNamedImport(moduleSpecifier, name string) bool {
	changed := false
	f.UpdateStatements(func(st tsast.Statement) bool {
		d, ok := st.(*tsast.ImportDeclaration)
		return ok && d.ModuleSpecifier == moduleSpecifier && d.Clause != nil
	}, func(st tsast.Statement) tsast.Statement {
		before := st.(*tsast.ImportDeclaration)
		after := imports.Adopt(before).RemoveNamed(name).Get()
		if after != before {
			changed = true
		}
		if imports.IsEmpty(after) {
			return nil
		}
		return after
	})
	return changed
}

// ReplaceImport points imports of oldSpecifier at newSpecifier and returns
// how many were changed.
func (f *SourceFile) ReplaceImport(oldSpecifier, newSpecifier string) int {
	return f.UpdateStatements(func(st tsast.Statement) bool {
		d, ok := st.(*tsast.ImportDeclaration)
		return ok && d.ModuleSpecifier == oldSpecifier
	}, func(st tsast.Statement) tsast.Statement {
		return imports.Adopt(st.(*tsast.ImportDeclaration)).ModuleSpecifier(newSpecifier).Get()
	})
}

// ModuleSpecifiers lists every module specifier the file refers to in
// statement order: imports first, then the raw references of re-exports and
// import-equals statements at their own positions. Duplicates are kept.
func (f *SourceFile) ModuleSpecifiers() []string {
	var out []string
	for _, st := range f.node.Statements {
		switch x := st.(type) {
		case *tsast.ImportDeclaration:
			out = append(out, x.ModuleSpecifier)
		case *tsast.RawStatement:
			for _, ref := range x.References {
				out = append(out, ref.Specifier)
			}
		}
	}
	return out
}

// RewriteImports computes a new module specifier for every import and every
// raw module reference with fn. All results are computed before anything
// changes, so an error leaves the file untouched.
func (f *SourceFile) RewriteImports(fn func(spec string) (string, error)) (int, error) {
	statements := f.Statements()
	changed := 0
	for i, st := range statements {
		switch x := st.(type) {
		case *tsast.ImportDeclaration:
			spec, err := fn(x.ModuleSpecifier)
			if err != nil {
				return 0, fmt.Errorf("failed to rewrite imports of %s: %w", f.FileName(), err)
			}
			if spec == x.ModuleSpecifier {
				continue
			}
			statements[i] = tsast.UpdateImportDeclaration(x, x.Comments, x.TypeOnly, x.Clause, spec)
			changed++
		case *tsast.RawStatement:
			if len(x.References) == 0 {
				continue
			}
			specs := make([]string, len(x.References))
			for j, ref := range x.References {
				spec, err := fn(ref.Specifier)
				if err != nil {
					return 0, fmt.Errorf("failed to rewrite imports of %s: %w", f.FileName(), err)
				}
				specs[j] = spec
			}
			if next := tsast.RetargetRawStatement(x, specs); next != x {
				statements[i] = next
				changed++
			}
		}
	}
	if changed > 0 {
		f.setStatements(statements)
	}
	return changed, nil
}

// ExportedNames lists the names the file exports, in statement order.
func (f *SourceFile) ExportedNames() []string {
	var out []string
	for _, st := range f.node.Statements {
		switch x := st.(type) {
		case *tsast.ClassDeclaration:
			switch {
			case tsast.HasModifier(x.Modifiers, tsast.ModDefault):
				out = append(out, "default")
			case tsast.HasModifier(x.Modifiers, tsast.ModExport):
				out = append(out, x.Name)
			}
		case *tsast.RawStatement:
			out = append(out, x.Exports...)
		}
	}
	return out
}

func (f *SourceFile) Print(opts tsast.PrintOptions) (string, error) {
	text, err := tsast.Print(f.node, opts)
	if err != nil {
		return "", fmt.Errorf("failed to print %s: %w", f.FileName(), err)
	}
	return text, nil
}
