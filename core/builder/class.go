package builder

import (
	"github.com/max-scopp/ts-flattered/core/decorator"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

var classKind = &declKind[*tsast.ClassDeclaration]{
	comments:   func(n *tsast.ClassDeclaration) []string { return n.Comments },
	decorators: func(n *tsast.ClassDeclaration) []*tsast.Decorator { return n.Decorators },
	modifiers:  func(n *tsast.ClassDeclaration) []tsast.Modifier { return n.Modifiers },
	with: func(n *tsast.ClassDeclaration, comments []string, decorators []*tsast.Decorator, modifiers []tsast.Modifier) *tsast.ClassDeclaration {
		return tsast.UpdateClassDeclaration(n, comments, decorators, modifiers, n.Name, n.TypeParameters, n.Extends, n.Implements, n.Members)
	},
}

type Class struct {
	decl[*tsast.ClassDeclaration]
}

func NewClass(name string) *Class {
	return AdoptClass(tsast.NewClassDeclaration(name))
}

// AdoptClass wraps an existing class node. Nothing changes until a mutator
// is called.
func AdoptClass(node *tsast.ClassDeclaration) *Class {
	return &Class{decl: decl[*tsast.ClassDeclaration]{node: node, kind: classKind}}
}

func (c *Class) Get() *tsast.ClassDeclaration { return c.node }

func (c *Class) Name() string { return c.node.Name }

type classFields struct {
	name           string
	typeParameters string
	extends        string
	implements     []string
	members        []tsast.ClassElement
}

func (c *Class) fields() classFields {
	n := c.node
	return classFields{n.Name, n.TypeParameters, n.Extends, n.Implements, n.Members}
}

func (c *Class) apply(f classFields) *Class {
	n := c.node
	c.node = tsast.UpdateClassDeclaration(n, n.Comments, n.Decorators, n.Modifiers,
		f.name, f.typeParameters, f.extends, f.implements, f.members)
	return c
}

func (c *Class) Rename(name string) *Class {
	f := c.fields()
	f.name = name
	return c.apply(f)
}

func (c *Class) Export() *Class {
	c.setModifier(tsast.ModExport, true)
	return c
}

func (c *Class) ExportDefault() *Class {
	c.setModifier(tsast.ModExport, true)
	c.setModifier(tsast.ModDefault, true)
	return c
}

func (c *Class) Abstract(on bool) *Class {
	c.setModifier(tsast.ModAbstract, on)
	return c
}

func (c *Class) IsExported() bool { return c.hasModifier(tsast.ModExport) }

func (c *Class) Extends(base string) *Class {
	f := c.fields()
	f.extends = base
	return c.apply(f)
}

// Implements appends interfaces that are not listed yet.
func (c *Class) Implements(names ...string) *Class {
	f := c.fields()
	impl := append([]string(nil), f.implements...)
	for _, n := range names {
		found := false
		for _, x := range impl {
			if x == n {
				found = true
				break
			}
		}
		if !found {
			impl = append(impl, n)
		}
	}
	f.implements = impl
	return c.apply(f)
}

func (c *Class) TypeParameters(tp string) *Class {
	f := c.fields()
	f.typeParameters = typeParams(tp)
	return c.apply(f)
}

func (c *Class) AddDecorator(d *decorator.Decorator) *Class {
	c.addDecorator(d)
	return c
}

func (c *Class) Decorator(name string) (*decorator.Decorator, bool) {
	return c.findDecorator(name)
}

func (c *Class) UpdateDecorator(name string, fn func(*decorator.Decorator)) bool {
	return c.updateDecorator(name, fn)
}

func (c *Class) RemoveDecorator(name string) *Class {
	c.removeDecorator(name)
	return c
}

func (c *Class) Doc(text string) *Class {
	c.doc(text)
	return c
}

// Members returns a copy of the member list.
func (c *Class) Members() []tsast.ClassElement {
	return append([]tsast.ClassElement(nil), c.node.Members...)
}

func (c *Class) setMembers(members []tsast.ClassElement) *Class {
	f := c.fields()
	f.members = members
	return c.apply(f)
}

func (c *Class) AddMember(members ...tsast.ClassElement) *Class {
	return c.setMembers(append(c.Members(), members...))
}

func (c *Class) AddProperty(p *Property) *Class {
	return c.AddMember(p.Get())
}

func (c *Class) AddMethod(m *Method) *Class {
	return c.AddMember(m.Get())
}

// AddConstructor replaces an existing constructor in place. Otherwise the
// constructor goes before the first method.
func (c *Class) AddConstructor(ctor *Constructor) *Class {
	members := c.Members()
	at := len(members)
	for i, m := range members {
		switch m.(type) {
		case *tsast.ConstructorDeclaration:
			members[i] = ctor.Get()
			return c.setMembers(members)
		case *tsast.MethodDeclaration:
			if at == len(members) {
				at = i
			}
		}
	}
	members = append(members[:at], append([]tsast.ClassElement{ctor.Get()}, members[at:]...)...)
	return c.setMembers(members)
}

// MemberName returns the declared name of a member, "constructor" for
// constructors and "" for raw members.
func MemberName(m tsast.ClassElement) string {
	switch x := m.(type) {
	case *tsast.PropertyDeclaration:
		return x.Name
	case *tsast.MethodDeclaration:
		return x.Name
	case *tsast.ConstructorDeclaration:
		return "constructor"
	default:
		return ""
	}
}

// Property adopts the first field called name. The returned builder is
// detached; use UpdateProperty to change the class.
func (c *Class) Property(name string) (*Property, bool) {
	for _, m := range c.node.Members {
		if p, ok := m.(*tsast.PropertyDeclaration); ok && p.Name == name {
			return AdoptProperty(p), true
		}
	}
	return nil, false
}

func (c *Class) Method(name string) (*Method, bool) {
	for _, m := range c.node.Members {
		if x, ok := m.(*tsast.MethodDeclaration); ok && x.Name == name {
			return AdoptMethod(x), true
		}
	}
	return nil, false
}

func (c *Class) Constructor() (*Constructor, bool) {
	for _, m := range c.node.Members {
		if x, ok := m.(*tsast.ConstructorDeclaration); ok {
			return AdoptConstructor(x), true
		}
	}
	return nil, false
}

// Properties adopts every field in member order.
func (c *Class) Properties() []*Property {
	var out []*Property
	for _, m := range c.node.Members {
		if p, ok := m.(*tsast.PropertyDeclaration); ok {
			out = append(out, AdoptProperty(p))
		}
	}
	return out
}

func (c *Class) Methods() []*Method {
	var out []*Method
	for _, m := range c.node.Members {
		if x, ok := m.(*tsast.MethodDeclaration); ok {
			out = append(out, AdoptMethod(x))
		}
	}
	return out
}

// UpdateProperty runs fn on the first field called name and stores the result
// in place. It reports false when there is no such field.
func (c *Class) UpdateProperty(name string, fn func(*Property)) bool {
	return len(c.UpdateProperties(onlyFirst(func(p *tsast.PropertyDeclaration) bool { return p.Name == name }), fn)) > 0
}

func (c *Class) UpdateMethod(name string, fn func(*Method)) bool {
	return len(c.UpdateMethods(onlyFirst(func(m *tsast.MethodDeclaration) bool { return m.Name == name }), fn)) > 0
}

func (c *Class) UpdateConstructor(fn func(*Constructor)) bool {
	members := c.Members()
	for i, m := range members {
		if x, ok := m.(*tsast.ConstructorDeclaration); ok {
			b := AdoptConstructor(x)
			fn(b)
			members[i] = b.Get()
			c.setMembers(members)
			return true
		}
	}
	return false
}

// UpdateProperties scans members left to right and runs fn on every field
// matching pred. It returns one builder per match, in member order.
func (c *Class) UpdateProperties(pred func(*tsast.PropertyDeclaration) bool, fn func(*Property)) []*Property {
	return updateMembers(c, pred, fn, AdoptProperty, (*Property).Get)
}

func (c *Class) UpdateMethods(pred func(*tsast.MethodDeclaration) bool, fn func(*Method)) []*Method {
	return updateMembers(c, pred, fn, AdoptMethod, (*Method).Get)
}

func updateMembers[N tsast.ClassElement, B any](c *Class, pred func(N) bool, fn func(B), adopt func(N) B, get func(B) N) []B {
	members := c.Members()
	var out []B
	for i, m := range members {
		x, ok := m.(N)
		if !ok || !pred(x) {
			continue
		}
		b := adopt(x)
		fn(b)
		members[i] = get(b)
		out = append(out, b)
	}
	if len(out) > 0 {
		c.setMembers(members)
	}
	return out
}

func onlyFirst[N any](pred func(N) bool) func(N) bool {
	done := false
	return func(n N) bool {
		if done || !pred(n) {
			return false
		}
		done = true
		return true
	}
}

// RemoveMember removes every member called name, which covers overloads. It
// reports whether anything was removed.
func (c *Class) RemoveMember(name string) bool {
	cur := c.node.Members
	members := make([]tsast.ClassElement, 0, len(cur))
	for _, m := range cur {
		if MemberName(m) != name {
			members = append(members, m)
		}
	}
	if len(members) == len(cur) {
		return false
	}
	c.setMembers(members)
	return true
}
