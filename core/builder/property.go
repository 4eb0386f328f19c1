package builder

import (
	"fmt"

	"github.com/max-scopp/ts-flattered/core/decorator"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

var propertyKind = &declKind[*tsast.PropertyDeclaration]{
	comments:   func(n *tsast.PropertyDeclaration) []string { return n.Comments },
	decorators: func(n *tsast.PropertyDeclaration) []*tsast.Decorator { return n.Decorators },
	modifiers:  func(n *tsast.PropertyDeclaration) []tsast.Modifier { return n.Modifiers },
	with: func(n *tsast.PropertyDeclaration, comments []string, decorators []*tsast.Decorator, modifiers []tsast.Modifier) *tsast.PropertyDeclaration {
		return tsast.UpdatePropertyDeclaration(n, comments, decorators, modifiers, n.Name, n.Optional, n.Definite, n.Type, n.Initializer)
	},
}

// Property builds a class field.
type Property struct {
	decl[*tsast.PropertyDeclaration]
	err error
}

func NewProperty(name, typ string) *Property {
	return AdoptProperty(tsast.NewPropertyDeclaration(name, typ, nil))
}

// AdoptProperty wraps a parsed or built property node as is.
func AdoptProperty(node *tsast.PropertyDeclaration) *Property {
	return &Property{decl: decl[*tsast.PropertyDeclaration]{node: node, kind: propertyKind}}
}

func (p *Property) Get() *tsast.PropertyDeclaration { return p.node }

func (p *Property) Name() string { return p.node.Name }

// Err returns the first initializer conversion failure.
func (p *Property) Err() error { return p.err }

func (p *Property) update(name string, optional, definite bool, typ string, init tsast.Expression) *Property {
	n := p.node
	p.node = tsast.UpdatePropertyDeclaration(n, n.Comments, n.Decorators, n.Modifiers, name, optional, definite, typ, init)
	return p
}

func (p *Property) Rename(name string) *Property {
	n := p.node
	return p.update(name, n.Optional, n.Definite, n.Type, n.Initializer)
}

func (p *Property) Type(typ string) *Property {
	n := p.node
	return p.update(n.Name, n.Optional, n.Definite, typ, n.Initializer)
}

// Initializer sets the value the field is initialized with. v is converted
// with tsast.ValueOf; nil removes the initializer.
func (p *Property) Initializer(v any) *Property {
	n := p.node
	if v == nil {
		return p.update(n.Name, n.Optional, n.Definite, n.Type, nil)
	}
	expr, err := tsast.ValueOf(v)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("property %s: %w", n.Name, err)
		}
		return p
	}
	return p.update(n.Name, n.Optional, n.Definite, n.Type, expr)
}

// Optional marks the field with "?". It clears the definite assertion since a
// field cannot carry both.
func (p *Property) Optional(optional bool) *Property {
	n := p.node
	return p.update(n.Name, optional, n.Definite && !optional, n.Type, n.Initializer)
}

func (p *Property) Definite(definite bool) *Property {
	n := p.node
	return p.update(n.Name, n.Optional && !definite, definite, n.Type, n.Initializer)
}

func (p *Property) Readonly(on bool) *Property {
	p.setModifier(tsast.ModReadonly, on)
	return p
}

func (p *Property) Static(on bool) *Property {
	p.setModifier(tsast.ModStatic, on)
	return p
}

// Access sets public, protected or private; "" removes it.
func (p *Property) Access(m tsast.Modifier) *Property {
	p.setAccess(m)
	return p
}

func (p *Property) AddDecorator(d *decorator.Decorator) *Property {
	p.addDecorator(d)
	return p
}

func (p *Property) Decorator(name string) (*decorator.Decorator, bool) {
	return p.findDecorator(name)
}

func (p *Property) UpdateDecorator(name string, fn func(*decorator.Decorator)) bool {
	return p.updateDecorator(name, fn)
}

func (p *Property) RemoveDecorator(name string) *Property {
	p.removeDecorator(name)
	return p
}

func (p *Property) Doc(text string) *Property {
	p.doc(text)
	return p
}
