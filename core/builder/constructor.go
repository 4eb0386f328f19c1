package builder

import (
	"errors"
	"fmt"

	"github.com/max-scopp/ts-flattered/core/decorator"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

var ErrMissingBody = errors.New("constructor requires a body")

var constructorKind = &declKind[*tsast.ConstructorDeclaration]{
	comments:   func(n *tsast.ConstructorDeclaration) []string { return n.Comments },
	decorators: func(*tsast.ConstructorDeclaration) []*tsast.Decorator { return nil },
	modifiers:  func(n *tsast.ConstructorDeclaration) []tsast.Modifier { return n.Modifiers },
	with: func(n *tsast.ConstructorDeclaration, comments []string, _ []*tsast.Decorator, modifiers []tsast.Modifier) *tsast.ConstructorDeclaration {
		return tsast.UpdateConstructorDeclaration(n, comments, modifiers, n.Parameters, n.Body)
	},
}

type Constructor struct {
	decl[*tsast.ConstructorDeclaration]
}

// NewConstructor builds a constructor. A nil body is rejected; pass
// tsast.NewBlock() for an empty one.
func NewConstructor(body *tsast.Block, params ...*tsast.Parameter) (*Constructor, error) {
	if body == nil {
		return nil, fmt.Errorf("failed to build constructor with %d parameters: %w", len(params), ErrMissingBody)
	}
	for i, p := range params {
		if p == nil || p.Name == "" {
			return nil, fmt.Errorf("failed to build constructor: parameter %d: %w", i, tsast.ErrInvalidNode)
		}
	}
	return AdoptConstructor(tsast.NewConstructorDeclaration(params, body)), nil
}

func AdoptConstructor(node *tsast.ConstructorDeclaration) *Constructor {
	return &Constructor{decl: decl[*tsast.ConstructorDeclaration]{node: node, kind: constructorKind}}
}

func (c *Constructor) Get() *tsast.ConstructorDeclaration { return c.node }

func (c *Constructor) AddParameter(params ...*tsast.Parameter) *Constructor {
	n := c.node
	all := append(append([]*tsast.Parameter(nil), n.Parameters...), params...)
	c.node = tsast.UpdateConstructorDeclaration(n, n.Comments, n.Modifiers, all, n.Body)
	return c
}

func (c *Constructor) Parameters() []*tsast.Parameter {
	return append([]*tsast.Parameter(nil), c.node.Parameters...)
}

func (c *Constructor) Body(statements ...string) *Constructor {
	n := c.node
	c.node = tsast.UpdateConstructorDeclaration(n, n.Comments, n.Modifiers, n.Parameters, tsast.NewBlock(statements...))
	return c
}

func (c *Constructor) Access(m tsast.Modifier) *Constructor {
	c.setAccess(m)
	return c
}

func (c *Constructor) Doc(text string) *Constructor {
	c.doc(text)
	return c
}

// Param builds a plain parameter.
func Param(name, typ string) *tsast.Parameter {
	return tsast.NewParameter(name, typ)
}

func OptionalParam(name, typ string) *tsast.Parameter {
	return tsast.UpdateParameter(nil, nil, nil, name, true, typ, nil)
}

// DefaultParam builds a parameter with a default value; value is converted
// with tsast.ValueOf.
func DefaultParam(name, typ string, value any) (*tsast.Parameter, error) {
	expr, err := tsast.ValueOf(value)
	if err != nil {
		return nil, fmt.Errorf("failed to build parameter %s: %w", name, err)
	}
	return tsast.UpdateParameter(nil, nil, nil, name, false, typ, expr), nil
}

// ParameterProperty builds a constructor parameter that also declares a
// field, such as "private readonly repo: Repo".
func ParameterProperty(access tsast.Modifier, readonly bool, name, typ string) *tsast.Parameter {
	var mods []tsast.Modifier
	if access != "" {
		mods = append(mods, access)
	}
	if readonly {
		mods = append(mods, tsast.ModReadonly)
	}
	return tsast.UpdateParameter(nil, nil, mods, name, false, typ, nil)
}

// DecoratedParam returns p with the decorators appended, e.g. @Inject(TOKEN).
func DecoratedParam(p *tsast.Parameter, decs ...*decorator.Decorator) *tsast.Parameter {
	all := append([]*tsast.Decorator(nil), p.Decorators...)
	for _, d := range decs {
		all = append(all, d.Get())
	}
	return tsast.UpdateParameter(p, all, p.Modifiers, p.Name, p.Optional, p.Type, p.Initializer)
}
