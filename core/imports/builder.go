package imports

import "github.com/max-scopp/ts-flattered/core/tsast"

// Builder edits one import declaration. Each call stores an updated copy of
// the declaration and returns the same Builder.
type Builder struct {
	node *tsast.ImportDeclaration
}

// New starts a side-effect import of moduleSpecifier; adding a binding turns
// it into a regular import.
func New(moduleSpecifier string) *Builder {
	return &Builder{node: tsast.NewImportDeclaration(false, nil, moduleSpecifier)}
}

func Adopt(node *tsast.ImportDeclaration) *Builder {
	return &Builder{node: node}
}

func (b *Builder) Get() *tsast.ImportDeclaration {
	return b.node
}

func (b *Builder) clause() tsast.ImportClause {
	if b.node.Clause == nil {
		return tsast.ImportClause{}
	}
	return *b.node.Clause
}

func (b *Builder) setClause(c tsast.ImportClause) *Builder {
	n := b.node
	b.node = tsast.UpdateImportDeclaration(n, n.Comments, n.TypeOnly, &c, n.ModuleSpecifier)
	return b
}

func (b *Builder) ModuleSpecifier(spec string) *Builder {
	n := b.node
	b.node = tsast.UpdateImportDeclaration(n, n.Comments, n.TypeOnly, n.Clause, spec)
	return b
}

func (b *Builder) TypeOnly(typeOnly bool) *Builder {
	n := b.node
	b.node = tsast.UpdateImportDeclaration(n, n.Comments, typeOnly, n.Clause, n.ModuleSpecifier)
	return b
}

func (b *Builder) Default(name string) *Builder {
	c := b.clause()
	c.Default = name
	return b.setClause(c)
}

// Namespace binds the whole module to name. Named imports are dropped since
// they cannot share a clause with a namespace binding.
func (b *Builder) Namespace(name string) *Builder {
	c := b.clause()
	c.Namespace = name
	c.Named = nil
	return b.setClause(c)
}

// AddNamed adds plain named imports. An existing namespace binding is
// replaced by the named-imports binding.
func (b *Builder) AddNamed(names ...string) *Builder {
	return b.add(false, names)
}

func (b *Builder) AddTypeOnly(names ...string) *Builder {
	return b.add(true, names)
}

func (b *Builder) add(typeOnly bool, names []string) *Builder {
	if len(names) == 0 {
		return b
	}
	c := b.clause()
	c.Namespace = ""
	named := append([]tsast.ImportSpecifier(nil), c.Named...)
	for _, n := range names {
		spec := ParseSpecifier(n)
		if spec.Name == "" {
			continue
		}
		spec.TypeOnly = spec.TypeOnly || typeOnly
		if i := indexOf(named, spec); i >= 0 {
			// A plain import of a type-only name upgrades it.
			if !spec.TypeOnly {
				named[i].TypeOnly = false
			}
			continue
		}
		named = append(named, spec)
	}
	c.Named = named
	return b.setClause(c)
}

func indexOf(list []tsast.ImportSpecifier, s tsast.ImportSpecifier) int {
	for i, x := range list {
		if x.Name == s.Name && x.LocalName() == s.LocalName() {
			return i
		}
	}
	return -1
}

// RemoveNamed removes named imports whose imported or local name is name.
func (b *Builder) RemoveNamed(name string) *Builder {
	if b.node.Clause == nil {
		return b
	}
	c := b.clause()
	named := make([]tsast.ImportSpecifier, 0, len(c.Named))
	for _, s := range c.Named {
		if s.Name != name && s.LocalName() != name {
			named = append(named, s)
		}
	}
	if len(named) == len(c.Named) {
		return b
	}
	c.Named = named
	return b.setClause(c)
}

// Options returns the structural description of the current declaration.
func (b *Builder) Options() ImportOptions {
	return ExtractImportOptions(b.node)
}
