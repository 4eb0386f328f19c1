package tsast

import (
	"fmt"
	"strings"
)

type PrintOptions struct {
	// RemoveComments drops leading comments attached to nodes. Comments that
	// live inside raw text are kept.
	RemoveComments bool
	// Indent is the per-level indentation, four spaces when empty.
	Indent string
}

type printer struct {
	opts  PrintOptions
	sb    strings.Builder
	level int
}

// Print renders any node as TypeScript source.
func Print(n Node, opts PrintOptions) (string, error) {
	if opts.Indent == "" {
		opts.Indent = "    "
	}
	p := &printer{opts: opts}
	if err := p.node(n); err != nil {
		return "", err
	}
	return p.sb.String(), nil
}

// PrintExpression renders an expression on a single line.
func PrintExpression(e Expression) (string, error) {
	p := &printer{opts: PrintOptions{Indent: "    "}}
	if err := p.expr(e); err != nil {
		return "", err
	}
	return p.sb.String(), nil
}

func (p *printer) write(s string) {
	p.sb.WriteString(s)
}

func (p *printer) indent() {
	for i := 0; i < p.level; i++ {
		p.sb.WriteString(p.opts.Indent)
	}
}

func (p *printer) comments(cs []string) {
	if p.opts.RemoveComments {
		return
	}
	for _, c := range cs {
		p.indent()
		p.write(c)
		p.write("\n")
	}
}

func (p *printer) node(n Node) error {
	switch x := n.(type) {
	case nil:
		return fmt.Errorf("%w: nil node", ErrInvalidNode)
	case *SourceFile:
		return p.sourceFile(x)
	case Statement:
		return p.statement(x)
	case ClassElement:
		return p.member(x)
	case *Parameter:
		return p.parameter(x)
	case *Decorator:
		return p.decorator(x)
	case Expression:
		return p.expr(x)
	default:
		return fmt.Errorf("%w: unsupported node %T", ErrInvalidNode, n)
	}
}

func (p *printer) sourceFile(f *SourceFile) error {
	for i, st := range f.Statements {
		if err := p.statement(st); err != nil {
			return fmt.Errorf("statement %d of %s: %w", i, f.FileName, err)
		}
	}
	return nil
}

// statement writes st followed by a newline.
func (p *printer) statement(st Statement) error {
	switch x := st.(type) {
	case nil:
		return fmt.Errorf("%w: nil statement", ErrInvalidNode)
	case *ImportDeclaration:
		return p.importDecl(x)
	case *ClassDeclaration:
		return p.class(x)
	case *RawStatement:
		p.comments(x.Comments)
		p.indent()
		p.write(x.Text)
		p.write("\n")
		return nil
	default:
		return fmt.Errorf("%w: unsupported statement %T", ErrInvalidNode, st)
	}
}

func (p *printer) importDecl(d *ImportDeclaration) error {
	if d.ModuleSpecifier == "" {
		return fmt.Errorf("%w: import declaration without module specifier", ErrInvalidNode)
	}
	p.comments(d.Comments)
	p.indent()
	p.write("import ")
	if d.TypeOnly {
		p.write("type ")
	}
	if d.Clause != nil {
		p.write(ImportClauseText(d.Clause))
		p.write(" from ")
	}
	p.write(quote(d.ModuleSpecifier, d.Quote))
	if d.Attributes != "" {
		p.write(" ")
		p.write(d.Attributes)
	}
	p.write(";")
	if d.TrailingComment != "" && !p.opts.RemoveComments {
		p.write(" ")
		p.write(d.TrailingComment)
	}
	p.write("\n")
	return nil
}

// ImportClauseText renders the part of an import between "import" and "from".
func ImportClauseText(c *ImportClause) string {
	var parts []string
	if c.Default != "" {
		parts = append(parts, c.Default)
	}
	if c.Namespace != "" {
		parts = append(parts, "* as "+c.Namespace)
	}
	if len(c.Named) > 0 {
		names := make([]string, 0, len(c.Named))
		for _, s := range c.Named {
			if s.TypeOnly {
				names = append(names, "type "+s.String())
			} else {
				names = append(names, s.String())
			}
		}
		parts = append(parts, "{ "+strings.Join(names, ", ")+" }")
	}
	if len(parts) == 0 {
		return "{}"
	}
	return strings.Join(parts, ", ")
}

func (p *printer) decorators(ds []*Decorator, inline bool) error {
	for _, d := range ds {
		if !inline {
			p.indent()
		}
		if err := p.decorator(d); err != nil {
			return err
		}
		if inline {
			p.write(" ")
		} else {
			p.write("\n")
		}
	}
	return nil
}

func (p *printer) decorator(d *Decorator) error {
	if d == nil || d.Expression == nil {
		return fmt.Errorf("%w: decorator without expression", ErrInvalidNode)
	}
	p.write("@")
	return p.expr(d.Expression)
}

func (p *printer) modifiers(mods []Modifier) {
	for _, m := range mods {
		p.write(string(m))
		p.write(" ")
	}
}

func (p *printer) class(c *ClassDeclaration) error {
	if c.Name == "" && !HasModifier(c.Modifiers, ModDefault) {
		return fmt.Errorf("%w: class declaration without name", ErrInvalidNode)
	}
	p.comments(c.Comments)
	if err := p.decorators(c.Decorators, false); err != nil {
		return fmt.Errorf("class %s: %w", c.Name, err)
	}
	p.indent()
	p.modifiers(c.Modifiers)
	p.write("class")
	if c.Name != "" {
		p.write(" ")
		p.write(c.Name)
	}
	p.write(c.TypeParameters)
	if c.Extends != "" {
		p.write(" extends ")
		p.write(c.Extends)
	}
	if len(c.Implements) > 0 {
		p.write(" implements ")
		p.write(strings.Join(c.Implements, ", "))
	}
	p.write(" {\n")
	p.level++
	for i, m := range c.Members {
		if err := p.member(m); err != nil {
			p.level--
			return fmt.Errorf("class %s member %d: %w", c.Name, i, err)
		}
	}
	p.level--
	p.indent()
	p.write("}\n")
	return nil
}

// member writes a class element followed by a newline.
func (p *printer) member(m ClassElement) error {
	switch x := m.(type) {
	case nil:
		return fmt.Errorf("%w: nil class member", ErrInvalidNode)
	case *PropertyDeclaration:
		return p.property(x)
	case *MethodDeclaration:
		return p.method(x)
	case *ConstructorDeclaration:
		return p.constructor(x)
	case *RawMember:
		p.comments(x.Comments)
		p.indent()
		p.write(x.Text)
		p.write("\n")
		return nil
	default:
		return fmt.Errorf("%w: unsupported class member %T", ErrInvalidNode, m)
	}
}

func (p *printer) property(d *PropertyDeclaration) error {
	if d.Name == "" {
		return fmt.Errorf("%w: property without name", ErrInvalidNode)
	}
	p.comments(d.Comments)
	if err := p.decorators(d.Decorators, false); err != nil {
		return fmt.Errorf("property %s: %w", d.Name, err)
	}
	p.indent()
	p.modifiers(d.Modifiers)
	p.write(d.Name)
	if d.Optional {
		p.write("?")
	} else if d.Definite {
		p.write("!")
	}
	if d.Type != "" {
		p.write(": ")
		p.write(d.Type)
	}
	if d.Initializer != nil {
		p.write(" = ")
		if err := p.expr(d.Initializer); err != nil {
			return fmt.Errorf("property %s: %w", d.Name, err)
		}
	}
	p.write(";\n")
	return nil
}

func (p *printer) method(d *MethodDeclaration) error {
	if d.Name == "" {
		return fmt.Errorf("%w: method without name", ErrInvalidNode)
	}
	p.comments(d.Comments)
	if err := p.decorators(d.Decorators, false); err != nil {
		return fmt.Errorf("method %s: %w", d.Name, err)
	}
	p.indent()
	p.modifiers(d.Modifiers)
	p.write(d.Name)
	if d.Optional {
		p.write("?")
	}
	p.write(d.TypeParameters)
	if err := p.parameters(d.Parameters); err != nil {
		return fmt.Errorf("method %s: %w", d.Name, err)
	}
	if d.ReturnType != "" {
		p.write(": ")
		p.write(d.ReturnType)
	}
	if d.Body == nil {
		p.write(";\n")
		return nil
	}
	p.write(" ")
	p.block(d.Body)
	p.write("\n")
	return nil
}

func (p *printer) constructor(d *ConstructorDeclaration) error {
	p.comments(d.Comments)
	p.indent()
	p.modifiers(d.Modifiers)
	p.write("constructor")
	if err := p.parameters(d.Parameters); err != nil {
		return fmt.Errorf("constructor: %w", err)
	}
	if d.Body == nil {
		p.write(";\n")
		return nil
	}
	p.write(" ")
	p.block(d.Body)
	p.write("\n")
	return nil
}

func (p *printer) parameters(params []*Parameter) error {
	p.write("(")
	for i, param := range params {
		if i > 0 {
			p.write(", ")
		}
		if err := p.parameter(param); err != nil {
			return err
		}
	}
	p.write(")")
	return nil
}

func (p *printer) parameter(d *Parameter) error {
	if d == nil || d.Name == "" {
		return fmt.Errorf("%w: parameter without name", ErrInvalidNode)
	}
	if err := p.decorators(d.Decorators, true); err != nil {
		return fmt.Errorf("parameter %s: %w", d.Name, err)
	}
	p.modifiers(d.Modifiers)
	p.write(d.Name)
	if d.Optional {
		p.write("?")
	}
	if d.Type != "" {
		p.write(": ")
		p.write(d.Type)
	}
	if d.Initializer != nil {
		p.write(" = ")
		if err := p.expr(d.Initializer); err != nil {
			return fmt.Errorf("parameter %s: %w", d.Name, err)
		}
	}
	return nil
}

func (p *printer) block(b *Block) {
	if b.Raw != "" {
		p.write(b.Raw)
		return
	}
	if len(b.Statements) == 0 {
		p.write("{ }")
		return
	}
	p.write("{\n")
	p.level++
	for _, st := range b.Statements {
		for _, line := range strings.Split(st, "\n") {
			if strings.TrimSpace(line) == "" {
				p.write("\n")
				continue
			}
			p.indent()
			p.write(line)
			p.write("\n")
		}
	}
	p.level--
	p.indent()
	p.write("}")
}

func (p *printer) expr(e Expression) error {
	switch x := e.(type) {
	case nil:
		return fmt.Errorf("%w: nil expression", ErrInvalidNode)
	case *Identifier:
		p.write(x.Name)
	case *StringLiteral:
		p.write(quote(x.Value, x.Quote))
	case *NumericLiteral:
		p.write(x.Text)
	case *BooleanLiteral:
		if x.Value {
			p.write("true")
		} else {
			p.write("false")
		}
	case *NullLiteral:
		p.write("null")
	case *RawExpression:
		p.write(x.Text)
	case *ArrayLiteral:
		p.write("[")
		for i, el := range x.Elements {
			if i > 0 {
				p.write(", ")
			}
			if err := p.expr(el); err != nil {
				return err
			}
		}
		p.write("]")
	case *ObjectLiteral:
		if len(x.Properties) == 0 {
			p.write("{}")
			return nil
		}
		p.write("{ ")
		for i, prop := range x.Properties {
			if i > 0 {
				p.write(", ")
			}
			if prop.Quoted {
				p.write(quote(prop.Name, '"'))
			} else {
				p.write(prop.Name)
			}
			if prop.Shorthand {
				continue
			}
			p.write(": ")
			if err := p.expr(prop.Initializer); err != nil {
				return fmt.Errorf("property %s: %w", prop.Name, err)
			}
		}
		p.write(" }")
	case *CallExpression:
		if err := p.expr(x.Callee); err != nil {
			return err
		}
		p.write(x.TypeArguments)
		p.write("(")
		for i, arg := range x.Arguments {
			if i > 0 {
				p.write(", ")
			}
			if err := p.expr(arg); err != nil {
				return err
			}
		}
		p.write(")")
	default:
		return fmt.Errorf("%w: unsupported expression %T", ErrInvalidNode, e)
	}
	return nil
}

func quote(s string, q byte) string {
	if q == 0 {
		q = '"'
	}
	var sb strings.Builder
	sb.WriteByte(q)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case q, '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte(q)
	return sb.String()
}
