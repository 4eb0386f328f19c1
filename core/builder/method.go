package builder

import (
	"strings"

	"github.com/max-scopp/ts-flattered/core/decorator"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

var methodKind = &declKind[*tsast.MethodDeclaration]{
	comments:   func(n *tsast.MethodDeclaration) []string { return n.Comments },
	decorators: func(n *tsast.MethodDeclaration) []*tsast.Decorator { return n.Decorators },
	modifiers:  func(n *tsast.MethodDeclaration) []tsast.Modifier { return n.Modifiers },
	with: func(n *tsast.MethodDeclaration, comments []string, decorators []*tsast.Decorator, modifiers []tsast.Modifier) *tsast.MethodDeclaration {
		return tsast.UpdateMethodDeclaration(n, comments, decorators, modifiers, n.Name, n.Optional, n.TypeParameters, n.Parameters, n.ReturnType, n.Body)
	},
}

type Method struct {
	decl[*tsast.MethodDeclaration]
}

// NewMethod starts a method with an empty body.
func NewMethod(name string) *Method {
	return AdoptMethod(tsast.NewMethodDeclaration(name, nil, "", tsast.NewBlock()))
}

func AdoptMethod(node *tsast.MethodDeclaration) *Method {
	return &Method{decl: decl[*tsast.MethodDeclaration]{node: node, kind: methodKind}}
}

func (m *Method) Get() *tsast.MethodDeclaration { return m.node }

func (m *Method) Name() string { return m.node.Name }

type methodFields struct {
	name           string
	optional       bool
	typeParameters string
	parameters     []*tsast.Parameter
	returnType     string
	body           *tsast.Block
}

func (m *Method) fields() methodFields {
	n := m.node
	return methodFields{n.Name, n.Optional, n.TypeParameters, n.Parameters, n.ReturnType, n.Body}
}

func (m *Method) apply(f methodFields) *Method {
	n := m.node
	m.node = tsast.UpdateMethodDeclaration(n, n.Comments, n.Decorators, n.Modifiers,
		f.name, f.optional, f.typeParameters, f.parameters, f.returnType, f.body)
	return m
}

func (m *Method) Rename(name string) *Method {
	f := m.fields()
	f.name = name
	return m.apply(f)
}

func (m *Method) AddParameter(params ...*tsast.Parameter) *Method {
	f := m.fields()
	f.parameters = append(append([]*tsast.Parameter(nil), f.parameters...), params...)
	return m.apply(f)
}

// Parameters returns a copy of the parameter list.
func (m *Method) Parameters() []*tsast.Parameter {
	return append([]*tsast.Parameter(nil), m.node.Parameters...)
}

func (m *Method) Returns(typ string) *Method {
	f := m.fields()
	f.returnType = typ
	return m.apply(f)
}

// TypeParameters sets the generic parameter list, with or without the angle
// brackets.
func (m *Method) TypeParameters(tp string) *Method {
	f := m.fields()
	f.typeParameters = typeParams(tp)
	return m.apply(f)
}

// Body replaces the body with the given statements, one per line.
func (m *Method) Body(statements ...string) *Method {
	f := m.fields()
	f.body = tsast.NewBlock(statements...)
	return m.apply(f)
}

func (m *Method) Optional(optional bool) *Method {
	f := m.fields()
	f.optional = optional
	return m.apply(f)
}

func (m *Method) Async(on bool) *Method {
	m.setModifier(tsast.ModAsync, on)
	return m
}

func (m *Method) Static(on bool) *Method {
	m.setModifier(tsast.ModStatic, on)
	return m
}

// Abstract marks the method abstract and drops its body; turning it off gives
// the method an empty body.
func (m *Method) Abstract(on bool) *Method {
	m.setModifier(tsast.ModAbstract, on)
	f := m.fields()
	switch {
	case on:
		f.body = nil
	case f.body == nil:
		f.body = tsast.NewBlock()
	}
	return m.apply(f)
}

func (m *Method) Access(mod tsast.Modifier) *Method {
	m.setAccess(mod)
	return m
}

func (m *Method) AddDecorator(d *decorator.Decorator) *Method {
	m.addDecorator(d)
	return m
}

func (m *Method) Decorator(name string) (*decorator.Decorator, bool) {
	return m.findDecorator(name)
}

func (m *Method) UpdateDecorator(name string, fn func(*decorator.Decorator)) bool {
	return m.updateDecorator(name, fn)
}

func (m *Method) RemoveDecorator(name string) *Method {
	m.removeDecorator(name)
	return m
}

func (m *Method) Doc(text string) *Method {
	m.doc(text)
	return m
}

func typeParams(tp string) string {
	tp = strings.TrimSpace(tp)
	if tp == "" || strings.HasPrefix(tp, "<") {
		return tp
	}
	return "<" + tp + ">"
}
