package tsast

import "strings"

// Factory and update functions. Every Update* call takes the current node and
// an explicit value for each field. It returns the input node untouched when
// no field differs, otherwise a new node. Slices are copied on the way in so
// callers can keep appending to their own slices afterwards.

func NewSourceFile(fileName string, statements []Statement) *SourceFile {
	return &SourceFile{FileName: fileName, Statements: cloneSlice(statements)}
}

func UpdateSourceFile(n *SourceFile, fileName string, statements []Statement) *SourceFile {
	if n != nil && n.FileName == fileName && sameSlice(n.Statements, statements) {
		return n
	}
	return NewSourceFile(fileName, statements)
}

func NewImportDeclaration(typeOnly bool, clause *ImportClause, moduleSpecifier string) *ImportDeclaration {
	return &ImportDeclaration{TypeOnly: typeOnly, Clause: cloneClause(clause), ModuleSpecifier: moduleSpecifier, Quote: '"'}
}

func UpdateImportDeclaration(n *ImportDeclaration, comments []string, typeOnly bool, clause *ImportClause, moduleSpecifier string) *ImportDeclaration {
	if n != nil && sameSlice(n.Comments, comments) && n.TypeOnly == typeOnly && n.Clause == clause && n.ModuleSpecifier == moduleSpecifier {
		return n
	}
	next := ImportDeclaration{Quote: '"'}
	if n != nil {
		next = *n
		if next.Quote == 0 {
			next.Quote = '"'
		}
	}
	next.Comments = cloneSlice(comments)
	next.TypeOnly = typeOnly
	next.Clause = cloneClause(clause)
	next.ModuleSpecifier = moduleSpecifier
	return &next
}

func NewImportClause(defaultName, namespace string, named []ImportSpecifier) *ImportClause {
	return &ImportClause{Default: defaultName, Namespace: namespace, Named: cloneSlice(named)}
}

func cloneClause(c *ImportClause) *ImportClause {
	if c == nil {
		return nil
	}
	return NewImportClause(c.Default, c.Namespace, c.Named)
}

func NewClassDeclaration(name string) *ClassDeclaration {
	return &ClassDeclaration{Name: name}
}

func UpdateClassDeclaration(
	n *ClassDeclaration,
	comments []string,
	decorators []*Decorator,
	modifiers []Modifier,
	name string,
	typeParameters string,
	extends string,
	implements []string,
	members []ClassElement,
) *ClassDeclaration {
	if n != nil &&
		sameSlice(n.Comments, comments) &&
		sameSlice(n.Decorators, decorators) &&
		sameSlice(n.Modifiers, modifiers) &&
		n.Name == name &&
		n.TypeParameters == typeParameters &&
		n.Extends == extends &&
		sameSlice(n.Implements, implements) &&
		sameSlice(n.Members, members) {
		return n
	}
	return &ClassDeclaration{
		Comments:       cloneSlice(comments),
		Decorators:     cloneSlice(decorators),
		Modifiers:      cloneSlice(modifiers),
		Name:           name,
		TypeParameters: typeParameters,
		Extends:        extends,
		Implements:     cloneSlice(implements),
		Members:        cloneSlice(members),
	}
}

func NewPropertyDeclaration(name, typ string, initializer Expression) *PropertyDeclaration {
	return &PropertyDeclaration{Name: name, Type: typ, Initializer: initializer}
}

func UpdatePropertyDeclaration(
	n *PropertyDeclaration,
	comments []string,
	decorators []*Decorator,
	modifiers []Modifier,
	name string,
	optional, definite bool,
	typ string,
	initializer Expression,
) *PropertyDeclaration {
	if n != nil &&
		sameSlice(n.Comments, comments) &&
		sameSlice(n.Decorators, decorators) &&
		sameSlice(n.Modifiers, modifiers) &&
		n.Name == name &&
		n.Optional == optional &&
		n.Definite == definite &&
		n.Type == typ &&
		n.Initializer == initializer {
		return n
	}
	return &PropertyDeclaration{
		Comments:    cloneSlice(comments),
		Decorators:  cloneSlice(decorators),
		Modifiers:   cloneSlice(modifiers),
		Name:        name,
		Optional:    optional,
		Definite:    definite,
		Type:        typ,
		Initializer: initializer,
	}
}

func NewMethodDeclaration(name string, parameters []*Parameter, returnType string, body *Block) *MethodDeclaration {
	return &MethodDeclaration{Name: name, Parameters: cloneSlice(parameters), ReturnType: returnType, Body: body}
}

func UpdateMethodDeclaration(
	n *MethodDeclaration,
	comments []string,
	decorators []*Decorator,
	modifiers []Modifier,
	name string,
	optional bool,
	typeParameters string,
	parameters []*Parameter,
	returnType string,
	body *Block,
) *MethodDeclaration {
	if n != nil &&
		sameSlice(n.Comments, comments) &&
		sameSlice(n.Decorators, decorators) &&
		sameSlice(n.Modifiers, modifiers) &&
		n.Name == name &&
		n.Optional == optional &&
		n.TypeParameters == typeParameters &&
		sameSlice(n.Parameters, parameters) &&
		n.ReturnType == returnType &&
		n.Body == body {
		return n
	}
	return &MethodDeclaration{
		Comments:       cloneSlice(comments),
		Decorators:     cloneSlice(decorators),
		Modifiers:      cloneSlice(modifiers),
		Name:           name,
		Optional:       optional,
		TypeParameters: typeParameters,
		Parameters:     cloneSlice(parameters),
		ReturnType:     returnType,
		Body:           body,
	}
}

func NewConstructorDeclaration(parameters []*Parameter, body *Block) *ConstructorDeclaration {
	return &ConstructorDeclaration{Parameters: cloneSlice(parameters), Body: body}
}

func UpdateConstructorDeclaration(
	n *ConstructorDeclaration,
	comments []string,
	modifiers []Modifier,
	parameters []*Parameter,
	body *Block,
) *ConstructorDeclaration {
	if n != nil &&
		sameSlice(n.Comments, comments) &&
		sameSlice(n.Modifiers, modifiers) &&
		sameSlice(n.Parameters, parameters) &&
		n.Body == body {
		return n
	}
	return &ConstructorDeclaration{
		Comments:   cloneSlice(comments),
		Modifiers:  cloneSlice(modifiers),
		Parameters: cloneSlice(parameters),
		Body:       body,
	}
}

func NewParameter(name, typ string) *Parameter {
	return &Parameter{Name: name, Type: typ}
}

func UpdateParameter(
	n *Parameter,
	decorators []*Decorator,
	modifiers []Modifier,
	name string,
	optional bool,
	typ string,
	initializer Expression,
) *Parameter {
	if n != nil &&
		sameSlice(n.Decorators, decorators) &&
		sameSlice(n.Modifiers, modifiers) &&
		n.Name == name &&
		n.Optional == optional &&
		n.Type == typ &&
		n.Initializer == initializer {
		return n
	}
	return &Parameter{
		Decorators:  cloneSlice(decorators),
		Modifiers:   cloneSlice(modifiers),
		Name:        name,
		Optional:    optional,
		Type:        typ,
		Initializer: initializer,
	}
}

func NewBlock(statements ...string) *Block {
	return &Block{Statements: cloneSlice(statements)}
}

func NewDecorator(expr Expression) *Decorator {
	return &Decorator{Expression: expr}
}

func UpdateDecorator(n *Decorator, expr Expression) *Decorator {
	if n != nil && n.Expression == expr {
		return n
	}
	return &Decorator{Expression: expr}
}

func NewRawStatement(text string) *RawStatement {
	return &RawStatement{Text: text}
}

// RetargetRawStatement replaces the specifier of each reference of n with the
// matching entry of specs, keeping the original quote characters. It returns
// n when nothing differs or specs does not line up with the references.
func RetargetRawStatement(n *RawStatement, specs []string) *RawStatement {
	if len(specs) != len(n.References) {
		return n
	}
	changed := false
	for i, ref := range n.References {
		if specs[i] != ref.Specifier {
			changed = true
		}
	}
	if !changed {
		return n
	}

	var sb strings.Builder
	refs := make([]ModuleReference, 0, len(n.References))
	last := 0
	for i, ref := range n.References {
		sb.WriteString(n.Text[last:ref.Start])
		lit := n.Text[ref.Start:ref.End]
		if specs[i] != ref.Specifier {
			lit = quote(specs[i], lit[0])
		}
		start := sb.Len()
		sb.WriteString(lit)
		refs = append(refs, ModuleReference{Specifier: specs[i], Start: start, End: sb.Len()})
		last = ref.End
	}
	sb.WriteString(n.Text[last:])
	return &RawStatement{
		Comments:   cloneSlice(n.Comments),
		Text:       sb.String(),
		Exports:    cloneSlice(n.Exports),
		References: refs,
	}
}

func NewRawMember(text string) *RawMember {
	return &RawMember{Text: text}
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{Name: name}
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{Value: value, Quote: '"'}
}

func NewNumericLiteral(text string) *NumericLiteral {
	return &NumericLiteral{Text: text}
}

func NewBooleanLiteral(v bool) *BooleanLiteral {
	return &BooleanLiteral{Value: v}
}

func NewNull() *NullLiteral {
	return &NullLiteral{}
}

func NewRawExpression(text string) *RawExpression {
	return &RawExpression{Text: text}
}

func NewArrayLiteral(elements []Expression) *ArrayLiteral {
	return &ArrayLiteral{Elements: cloneSlice(elements)}
}

func UpdateArrayLiteral(n *ArrayLiteral, elements []Expression) *ArrayLiteral {
	if n != nil && sameSlice(n.Elements, elements) {
		return n
	}
	return NewArrayLiteral(elements)
}

func NewObjectLiteral(props []*PropertyAssignment) *ObjectLiteral {
	return &ObjectLiteral{Properties: cloneSlice(props)}
}

func UpdateObjectLiteral(n *ObjectLiteral, props []*PropertyAssignment) *ObjectLiteral {
	if n != nil && sameSlice(n.Properties, props) {
		return n
	}
	return NewObjectLiteral(props)
}

func NewPropertyAssignment(name string, initializer Expression) *PropertyAssignment {
	return &PropertyAssignment{Name: name, Initializer: initializer, Quoted: !isIdentifierName(name)}
}

func NewCallExpression(callee Expression, args []Expression) *CallExpression {
	return &CallExpression{Callee: callee, Arguments: cloneSlice(args)}
}

func UpdateCallExpression(n *CallExpression, callee Expression, typeArguments string, args []Expression) *CallExpression {
	if n != nil && n.Callee == callee && n.TypeArguments == typeArguments && sameSlice(n.Arguments, args) {
		return n
	}
	return &CallExpression{Callee: callee, TypeArguments: typeArguments, Arguments: cloneSlice(args)}
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func sameSlice[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
