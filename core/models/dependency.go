package models

import "github.com/max-scopp/ts-flattered/core/tsast"

// ImportDependency is derived from one import declaration, re-export or
// import-equals statement of a registered file. It is recomputed whenever the
// file is registered.
type ImportDependency struct {
	FilePath        string // Path of the importing file: "src/components/Button.tsx"
	ModuleSpecifier string // Specifier as written: "../types/common"
	IsRelative      bool
	ResolvedPath    string // Resolved target for relative specifiers: "src/types/common"
	// Declaration is set for import declarations, Raw for specifiers found in
	// raw statements such as `export * from "./x"`.
	Declaration *tsast.ImportDeclaration
	Raw         *tsast.RawStatement
}

// ExternalDependency describes a module outside the registry, such as an npm
// package, and the names it exports.
type ExternalDependency struct {
	ModuleSpecifier   string   `yaml:"module"`
	DefaultExport     string   `yaml:"default_export"`
	NamedExports      []string `yaml:"named_exports"`
	TypeOnlyExports   []string `yaml:"type_only_exports"`
	DefaultIsTypeOnly bool     `yaml:"default_is_type_only"`
}

// Exports reports whether name is one of the module's exports and whether it
// is type-only.
func (d ExternalDependency) Exports(name string) (found, typeOnly bool) {
	if name == "" {
		return false, false
	}
	if d.DefaultExport == name {
		return true, d.DefaultIsTypeOnly
	}
	for _, n := range d.NamedExports {
		if n == name {
			return true, false
		}
	}
	for _, n := range d.TypeOnlyExports {
		if n == name {
			return true, true
		}
	}
	return false, false
}
