package tsast

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/max-scopp/ts-flattered/core/logger"
)

// Parse reads TypeScript source text into a SourceFile. The tree-sitter TSX
// grammar is used for .tsx/.jsx files and the TypeScript grammar otherwise.
// Parsing is error tolerant: regions tree-sitter could not parse are kept as
// raw statements, use SyntaxErrors to report them.
func Parse(ctx context.Context, fileName, text string) (*SourceFile, error) {
	content := []byte(text)
	tree, err := parseTree(ctx, fileName, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: %s: tree-sitter returned no root node", ErrParse, fileName)
	}

	c := &converter{src: content}
	statements := c.program(root)
	logger.Debug("tsast: parsed %s into %d statements", fileName, len(statements))
	return &SourceFile{FileName: fileName, Statements: statements}, nil
}

func parseTree(ctx context.Context, fileName string, content []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	if strings.HasSuffix(fileName, ".tsx") || strings.HasSuffix(fileName, ".jsx") {
		parser.SetLanguage(tsx.GetLanguage())
	} else {
		parser.SetLanguage(typescript.GetLanguage())
	}
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, fileName, err)
	}
	return tree, nil
}

type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

// SyntaxErrors returns the ERROR and MISSING nodes tree-sitter produced for
// text, with 1-based line and column numbers.
func SyntaxErrors(ctx context.Context, fileName, text string) ([]SyntaxError, error) {
	content := []byte(text)
	tree, err := parseTree(ctx, fileName, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var out []SyntaxError
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch {
		case n.IsMissing():
			out = append(out, syntaxErrorAt(n, "missing "+n.Type()))
			return
		case n.IsError():
			snippet := strings.TrimSpace(n.Content(content))
			if len(snippet) > 40 {
				snippet = snippet[:40] + "..."
			}
			out = append(out, syntaxErrorAt(n, fmt.Sprintf("unexpected %q", snippet)))
			return
		}
		if !n.HasError() {
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	return out, nil
}

func syntaxErrorAt(n *sitter.Node, msg string) SyntaxError {
	pt := n.StartPoint()
	return SyntaxError{Line: int(pt.Row) + 1, Column: int(pt.Column) + 1, Message: msg}
}

type converter struct {
	src []byte
}

func (c *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(c.src)
}

func (c *converter) program(root *sitter.Node) []Statement {
	var statements []Statement
	var pending []string
	var prevEndRow uint32
	hasPrev := false

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() == "comment" {
			// A comment on the line a raw statement or import ends belongs to it.
			if hasPrev && child.StartPoint().Row == prevEndRow && len(statements) > 0 {
				switch prev := statements[len(statements)-1].(type) {
				case *RawStatement:
					prev.Text += " " + c.text(child)
					continue
				case *ImportDeclaration:
					prev.TrailingComment = joinComments(prev.TrailingComment, c.text(child))
					continue
				}
			}
			pending = append(pending, c.text(child))
			continue
		}

		st := c.statement(child)
		switch x := st.(type) {
		case *ImportDeclaration:
			x.Comments = pending
		case *ClassDeclaration:
			x.Comments = pending
		case *RawStatement:
			x.Comments = pending
		}
		pending = nil
		statements = append(statements, st)
		prevEndRow = child.EndPoint().Row
		hasPrev = true
	}
	for _, cm := range pending {
		statements = append(statements, &RawStatement{Text: cm})
	}
	return statements
}

func (c *converter) statement(n *sitter.Node) Statement {
	switch n.Type() {
	case "import_statement":
		if imp, ok := c.importStatement(n); ok {
			return imp
		}
	case "class_declaration", "abstract_class_declaration":
		if cls, ok := c.class(n, nil, nil); ok {
			return cls
		}
	case "export_statement":
		if st, ok := c.exportStatement(n); ok {
			return st
		}
	}
	return &RawStatement{Text: c.text(n), Exports: c.exportedNames(n), References: c.references(n)}
}

// references finds the module specifier of an import or export statement
// kept as raw text.
func (c *converter) references(n *sitter.Node) []ModuleReference {
	var source *sitter.Node
	switch n.Type() {
	case "import_statement", "export_statement":
		source = n.ChildByFieldName("source")
	case "ERROR":
		// An import or re-export the grammar could not take whole, such as
		// one with an assert clause.
		if firstTokenOfType(n, "import") || firstTokenOfType(n, "export") {
			source = firstChildOfType(n, "string")
		}
	}
	if source == nil && n.Type() == "import_statement" {
		if req := firstChildOfType(n, "import_require_clause"); req != nil {
			source = req.ChildByFieldName("source")
			if source == nil {
				source = firstChildOfType(req, "string")
			}
		}
	}
	if source == nil {
		return nil
	}
	value, _, ok := c.stringValue(source)
	if !ok || value == "" {
		return nil
	}
	return []ModuleReference{{
		Specifier: value,
		Start:     int(source.StartByte() - n.StartByte()),
		End:       int(source.EndByte() - n.StartByte()),
	}}
}

func joinComments(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}

// importStatement models an import with a string source. Require-equals,
// typeof imports and comments inside the statement stay raw. A comment after
// the source is kept as the trailing comment.
func (c *converter) importStatement(n *sitter.Node) (*ImportDeclaration, bool) {
	source := n.ChildByFieldName("source")
	if source == nil {
		return nil, false
	}
	decl := &ImportDeclaration{}
	// The grammar has no assert clause; it shows up as an ERROR starting
	// with the identifier "assert" after the source.
	assertStart, assertEnd := -1, -1
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if assertStart >= 0 && child.Type() != ";" && child.Type() != "comment" {
			assertEnd = int(child.EndByte())
			continue
		}
		switch child.Type() {
		case "type":
			decl.TypeOnly = true
		case "ERROR":
			if child.StartByte() < source.EndByte() || !c.isAssertKeyword(child.Child(0)) {
				return nil, false
			}
			assertStart, assertEnd = int(child.StartByte()), int(child.EndByte())
		case "typeof", "import_require_clause":
			return nil, false
		case "import_attribute":
			decl.Attributes = c.text(child)
		case "comment":
			if child.StartByte() < source.EndByte() || decl.Attributes == "" && hasLaterChild(n, i, "import_attribute") {
				return nil, false
			}
			decl.TrailingComment = joinComments(decl.TrailingComment, c.text(child))
		case "import_clause":
			if containsType(child, "comment") {
				return nil, false
			}
			clause, ok := c.importClause(child)
			if !ok {
				return nil, false
			}
			decl.Clause = clause
		}
	}
	if assertStart >= 0 {
		decl.Attributes = string(c.src[assertStart:assertEnd])
	}
	value, q, ok := c.stringValue(source)
	if !ok || value == "" {
		return nil, false
	}
	decl.ModuleSpecifier = value
	decl.Quote = q
	return decl, true
}

func (c *converter) isAssertKeyword(n *sitter.Node) bool {
	return n != nil && n.Type() == "identifier" && c.text(n) == "assert"
}

func (c *converter) importClause(n *sitter.Node) (*ImportClause, bool) {
	clause := &ImportClause{}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "identifier":
			clause.Default = c.text(child)
		case "namespace_import":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if gc := child.NamedChild(j); gc.Type() == "identifier" {
					clause.Namespace = c.text(gc)
				}
			}
		case "named_imports":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				gc := child.NamedChild(j)
				switch gc.Type() {
				case "import_specifier":
					spec, ok := c.importSpecifier(gc)
					if !ok {
						return nil, false
					}
					clause.Named = append(clause.Named, spec)
				default:
					return nil, false
				}
			}
		default:
			return nil, false
		}
	}
	return clause, true
}

func (c *converter) importSpecifier(n *sitter.Node) (ImportSpecifier, bool) {
	var spec ImportSpecifier
	name := n.ChildByFieldName("name")
	if name == nil {
		return spec, false
	}
	spec.Name = c.text(name)
	if alias := n.ChildByFieldName("alias"); alias != nil {
		spec.Alias = c.text(alias)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "type" {
			spec.TypeOnly = true
		}
	}
	return spec, true
}

func (c *converter) exportStatement(n *sitter.Node) (Statement, bool) {
	decl := n.ChildByFieldName("declaration")
	if decl == nil {
		return nil, false
	}
	if decl.Type() != "class_declaration" && decl.Type() != "abstract_class_declaration" {
		return nil, false
	}
	mods := []Modifier{ModExport}
	var decorators []*Decorator
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "default":
			mods = append(mods, ModDefault)
		case "decorator":
			d, ok := c.decorator(child)
			if !ok {
				return nil, false
			}
			decorators = append(decorators, d)
		case "comment":
			return nil, false
		}
	}
	cls, ok := c.class(decl, decorators, mods)
	if !ok {
		return nil, false
	}
	return cls, true
}

func (c *converter) class(n *sitter.Node, decorators []*Decorator, mods []Modifier) (*ClassDeclaration, bool) {
	cls := &ClassDeclaration{
		Decorators: decorators,
		Modifiers:  mods,
	}
	if name := n.ChildByFieldName("name"); name != nil {
		cls.Name = c.text(name)
	}
	if tp := n.ChildByFieldName("type_parameters"); tp != nil {
		cls.TypeParameters = c.text(tp)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "abstract":
			cls.Modifiers = append(cls.Modifiers, ModAbstract)
		case "decorator":
			d, ok := c.decorator(child)
			if !ok {
				return nil, false
			}
			cls.Decorators = append(cls.Decorators, d)
		case "class_heritage":
			c.heritage(child, cls)
		case "comment":
			return nil, false
		}
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return nil, false
	}
	members, ok := c.classBody(body)
	if !ok {
		return nil, false
	}
	cls.Members = members
	return cls, true
}

func (c *converter) heritage(n *sitter.Node, cls *ClassDeclaration) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "extends_clause":
			cls.Extends = strings.TrimSpace(strings.TrimPrefix(c.text(child), "extends"))
		case "implements_clause":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				cls.Implements = append(cls.Implements, c.text(child.NamedChild(j)))
			}
		}
	}
}

func (c *converter) classBody(n *sitter.Node) ([]ClassElement, bool) {
	var members []ClassElement
	var comments []string
	var decorators []*Decorator

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		var member ClassElement
		switch child.Type() {
		case "comment":
			comments = append(comments, c.text(child))
			continue
		case "decorator":
			d, ok := c.decorator(child)
			if !ok {
				return nil, false
			}
			decorators = append(decorators, d)
			continue
		case "method_definition", "method_signature", "abstract_method_signature":
			if m, ok := c.method(child, decorators); ok {
				member = m
			}
		case "public_field_definition":
			if p, ok := c.property(child, decorators); ok {
				member = p
			}
		}
		if member == nil {
			if len(decorators) > 0 {
				// Decorators the model could not attach structurally stay in
				// front of the raw member text.
				return nil, false
			}
			member = &RawMember{Text: c.text(child)}
		}
		setMemberComments(member, comments)
		comments = nil
		decorators = nil
		members = append(members, member)
	}
	if len(decorators) > 0 {
		return nil, false
	}
	for _, cm := range comments {
		members = append(members, &RawMember{Text: cm})
	}
	return members, true
}

func setMemberComments(m ClassElement, comments []string) {
	switch x := m.(type) {
	case *PropertyDeclaration:
		x.Comments = comments
	case *MethodDeclaration:
		x.Comments = comments
	case *ConstructorDeclaration:
		x.Comments = comments
	case *RawMember:
		x.Comments = comments
	}
}

type memberHead struct {
	decorators []*Decorator
	modifiers  []Modifier
	optional   bool
	definite   bool
}

func (c *converter) memberHead(n *sitter.Node, decorators []*Decorator) (memberHead, bool) {
	h := memberHead{decorators: decorators}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "decorator":
			d, ok := c.decorator(child)
			if !ok {
				return h, false
			}
			h.decorators = append(h.decorators, d)
		case "accessibility_modifier":
			h.modifiers = append(h.modifiers, Modifier(strings.TrimSpace(c.text(child))))
		case "override_modifier":
			h.modifiers = append(h.modifiers, ModOverride)
		case "static", "readonly", "async", "abstract", "declare", "get", "set":
			h.modifiers = append(h.modifiers, Modifier(child.Type()))
		case "?":
			h.optional = true
		case "!":
			h.definite = true
		case "*", "comment":
			return h, false
		}
	}
	return h, true
}

func (c *converter) method(n *sitter.Node, decorators []*Decorator) (ClassElement, bool) {
	head, ok := c.memberHead(n, decorators)
	if !ok {
		return nil, false
	}
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil, false
	}
	params, ok := c.parameters(n.ChildByFieldName("parameters"))
	if !ok {
		return nil, false
	}
	var body *Block
	if b := n.ChildByFieldName("body"); b != nil {
		body = &Block{Raw: c.text(b)}
	}

	if c.text(name) == "constructor" && n.Type() == "method_definition" {
		if len(head.decorators) > 0 {
			return nil, false
		}
		return &ConstructorDeclaration{
			Modifiers:  head.modifiers,
			Parameters: params,
			Body:       body,
		}, true
	}

	m := &MethodDeclaration{
		Decorators: head.decorators,
		Modifiers:  head.modifiers,
		Name:       c.text(name),
		Optional:   head.optional,
		Parameters: params,
		Body:       body,
	}
	if tp := n.ChildByFieldName("type_parameters"); tp != nil {
		m.TypeParameters = c.text(tp)
	}
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		m.ReturnType = typeAnnotation(c.text(rt))
	}
	return m, true
}

func (c *converter) property(n *sitter.Node, decorators []*Decorator) (*PropertyDeclaration, bool) {
	head, ok := c.memberHead(n, decorators)
	if !ok {
		return nil, false
	}
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil, false
	}
	p := &PropertyDeclaration{
		Decorators: head.decorators,
		Modifiers:  head.modifiers,
		Name:       c.text(name),
		Optional:   head.optional,
		Definite:   head.definite,
	}
	if t := n.ChildByFieldName("type"); t != nil {
		p.Type = typeAnnotation(c.text(t))
	}
	if v := n.ChildByFieldName("value"); v != nil {
		p.Initializer = c.expression(v)
	}
	return p, true
}

func (c *converter) parameters(n *sitter.Node) ([]*Parameter, bool) {
	if n == nil {
		return nil, false
	}
	var params []*Parameter
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "required_parameter", "optional_parameter":
			param, ok := c.parameter(child)
			if !ok {
				return nil, false
			}
			params = append(params, param)
		default:
			return nil, false
		}
	}
	return params, true
}

func (c *converter) parameter(n *sitter.Node) (*Parameter, bool) {
	param := &Parameter{Optional: n.Type() == "optional_parameter"}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "decorator":
			d, ok := c.decorator(child)
			if !ok {
				return nil, false
			}
			param.Decorators = append(param.Decorators, d)
		case "accessibility_modifier":
			param.Modifiers = append(param.Modifiers, Modifier(strings.TrimSpace(c.text(child))))
		case "override_modifier":
			param.Modifiers = append(param.Modifiers, ModOverride)
		case "readonly":
			param.Modifiers = append(param.Modifiers, ModReadonly)
		case "comment":
			return nil, false
		}
	}
	pattern := n.ChildByFieldName("pattern")
	if pattern == nil {
		return nil, false
	}
	param.Name = c.text(pattern)
	if t := n.ChildByFieldName("type"); t != nil {
		param.Type = typeAnnotation(c.text(t))
	}
	if v := n.ChildByFieldName("value"); v != nil {
		param.Initializer = c.expression(v)
	}
	return param, true
}

func typeAnnotation(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, ":")
	return strings.TrimSpace(s)
}

func (c *converter) decorator(n *sitter.Node) (*Decorator, bool) {
	if n.NamedChildCount() == 0 {
		return nil, false
	}
	return &Decorator{Expression: c.expression(n.NamedChild(0))}, true
}

func (c *converter) expression(n *sitter.Node) Expression {
	raw := &RawExpression{Text: c.text(n)}
	switch n.Type() {
	case "identifier":
		return &Identifier{Name: c.text(n)}
	case "undefined":
		return &Identifier{Name: "undefined"}
	case "string":
		if v, q, ok := c.stringValue(n); ok {
			return &StringLiteral{Value: v, Quote: q}
		}
	case "number":
		return &NumericLiteral{Text: c.text(n)}
	case "true":
		return &BooleanLiteral{Value: true}
	case "false":
		return &BooleanLiteral{Value: false}
	case "null":
		return &NullLiteral{}
	case "array":
		arr := &ArrayLiteral{}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "comment" {
				return raw
			}
			arr.Elements = append(arr.Elements, c.expression(child))
		}
		return arr
	case "object":
		if obj, ok := c.object(n); ok {
			return obj
		}
	case "call_expression":
		fn := n.ChildByFieldName("function")
		args := n.ChildByFieldName("arguments")
		if fn == nil || args == nil || args.Type() != "arguments" {
			return raw
		}
		call := &CallExpression{Callee: c.expression(fn)}
		if ta := n.ChildByFieldName("type_arguments"); ta != nil {
			call.TypeArguments = c.text(ta)
		}
		for i := 0; i < int(args.NamedChildCount()); i++ {
			arg := args.NamedChild(i)
			if arg.Type() == "comment" {
				return raw
			}
			call.Arguments = append(call.Arguments, c.expression(arg))
		}
		return call
	}
	return raw
}

func (c *converter) object(n *sitter.Node) (*ObjectLiteral, bool) {
	obj := &ObjectLiteral{}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "pair":
			key := child.ChildByFieldName("key")
			value := child.ChildByFieldName("value")
			if key == nil || value == nil {
				return nil, false
			}
			prop := &PropertyAssignment{Initializer: c.expression(value)}
			switch key.Type() {
			case "property_identifier", "number":
				prop.Name = c.text(key)
			case "string":
				v, _, ok := c.stringValue(key)
				if !ok {
					return nil, false
				}
				prop.Name = v
				prop.Quoted = true
			default:
				return nil, false
			}
			obj.Properties = append(obj.Properties, prop)
		case "shorthand_property_identifier":
			obj.Properties = append(obj.Properties, &PropertyAssignment{Name: c.text(child), Shorthand: true})
		default:
			return nil, false
		}
	}
	return obj, true
}

// stringValue unquotes a string node, returning the value and quote char.
func (c *converter) stringValue(n *sitter.Node) (string, byte, bool) {
	s := c.text(n)
	if len(s) < 2 {
		return "", 0, false
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return "", 0, false
	}
	inner := s[1 : len(s)-1]
	if !strings.Contains(inner, `\`) {
		return inner, q, true
	}
	if q == '\'' {
		inner = strings.ReplaceAll(inner, `\'`, `'`)
		inner = strings.ReplaceAll(inner, `"`, `\"`)
	}
	v, err := strconv.Unquote(`"` + inner + `"`)
	if err != nil {
		return "", 0, false
	}
	return v, q, true
}

// exportedNames lists the names a raw top-level statement exports.
func (c *converter) exportedNames(n *sitter.Node) []string {
	if n.Type() != "export_statement" {
		return nil
	}
	var names []string
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "default" {
			names = append(names, "default")
		}
	}
	decl := n.ChildByFieldName("declaration")
	if decl == nil {
		if clause := firstChildOfType(n, "export_clause"); clause != nil && n.ChildByFieldName("source") == nil {
			for i := 0; i < int(clause.NamedChildCount()); i++ {
				spec := clause.NamedChild(i)
				if spec.Type() != "export_specifier" {
					continue
				}
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					names = append(names, c.text(alias))
				} else if name := spec.ChildByFieldName("name"); name != nil {
					names = append(names, c.text(name))
				}
			}
		}
		return names
	}
	switch decl.Type() {
	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			vd := decl.NamedChild(i)
			if vd.Type() != "variable_declarator" {
				continue
			}
			if name := vd.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
				names = append(names, c.text(name))
			}
		}
	default:
		if name := decl.ChildByFieldName("name"); name != nil {
			names = append(names, c.text(name))
		}
	}
	return names
}

func firstTokenOfType(n *sitter.Node, typ string) bool {
	return n.ChildCount() > 0 && n.Child(0).Type() == typ
}

func hasLaterChild(n *sitter.Node, after int, typ string) bool {
	for i := after + 1; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == typ {
			return true
		}
	}
	return false
}

func containsType(n *sitter.Node, typ string) bool {
	if n.Type() == typ {
		return true
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if containsType(n.Child(i), typ) {
			return true
		}
	}
	return false
}

func firstChildOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == typ {
			return child
		}
	}
	return nil
}
