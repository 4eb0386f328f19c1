// Package tsast is a small persistent syntax tree for TypeScript sources.
//
// Nodes are treated as immutable values: nothing in this module mutates a
// node after it has been constructed. Changes are made with the Update*
// functions, which return a fresh copy with the requested fields replaced.
// Constructs the model does not understand structurally are carried as raw
// source text so that parse -> print never drops content.
package tsast

type Kind int

const (
	KindSourceFile Kind = iota
	KindImportDeclaration
	KindClassDeclaration
	KindRawStatement
	KindPropertyDeclaration
	KindMethodDeclaration
	KindConstructorDeclaration
	KindRawMember
	KindParameter
	KindDecorator
	KindIdentifier
	KindStringLiteral
	KindNumericLiteral
	KindBooleanLiteral
	KindNullLiteral
	KindArrayLiteral
	KindObjectLiteral
	KindCallExpression
	KindRawExpression
)

func (k Kind) String() string {
	switch k {
	case KindSourceFile:
		return "SourceFile"
	case KindImportDeclaration:
		return "ImportDeclaration"
	case KindClassDeclaration:
		return "ClassDeclaration"
	case KindRawStatement:
		return "RawStatement"
	case KindPropertyDeclaration:
		return "PropertyDeclaration"
	case KindMethodDeclaration:
		return "MethodDeclaration"
	case KindConstructorDeclaration:
		return "ConstructorDeclaration"
	case KindRawMember:
		return "RawMember"
	case KindParameter:
		return "Parameter"
	case KindDecorator:
		return "Decorator"
	case KindIdentifier:
		return "Identifier"
	case KindStringLiteral:
		return "StringLiteral"
	case KindNumericLiteral:
		return "NumericLiteral"
	case KindBooleanLiteral:
		return "BooleanLiteral"
	case KindNullLiteral:
		return "NullLiteral"
	case KindArrayLiteral:
		return "ArrayLiteral"
	case KindObjectLiteral:
		return "ObjectLiteral"
	case KindCallExpression:
		return "CallExpression"
	case KindRawExpression:
		return "RawExpression"
	default:
		return "Unknown"
	}
}

type Node interface {
	Kind() Kind
}

// Statement is a top-level entry of a SourceFile.
type Statement interface {
	Node
	statementNode()
}

// ClassElement is a member of a class body.
type ClassElement interface {
	Node
	classElementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Modifier string

const (
	ModExport    Modifier = "export"
	ModDefault   Modifier = "default"
	ModDeclare   Modifier = "declare"
	ModPublic    Modifier = "public"
	ModProtected Modifier = "protected"
	ModPrivate   Modifier = "private"
	ModStatic    Modifier = "static"
	ModAbstract  Modifier = "abstract"
	ModOverride  Modifier = "override"
	ModReadonly  Modifier = "readonly"
	ModAsync     Modifier = "async"
	ModGet       Modifier = "get"
	ModSet       Modifier = "set"
)

// modifierOrder is the order in which modifiers are printed when a builder
// inserts one. Parsed nodes keep their source order.
var modifierOrder = []Modifier{
	ModExport, ModDefault, ModDeclare,
	ModPublic, ModProtected, ModPrivate,
	ModStatic, ModAbstract, ModOverride, ModReadonly, ModAsync,
	ModGet, ModSet,
}

func ModifierRank(m Modifier) int {
	for i, o := range modifierOrder {
		if o == m {
			return i
		}
	}
	return len(modifierOrder)
}

func IsAccessModifier(m Modifier) bool {
	return m == ModPublic || m == ModProtected || m == ModPrivate
}

type SourceFile struct {
	FileName   string
	Statements []Statement
}

func (*SourceFile) Kind() Kind { return KindSourceFile }

type ImportSpecifier struct {
	Name     string
	Alias    string
	TypeOnly bool
}

// LocalName is the binding introduced in the importing file.
func (s ImportSpecifier) LocalName() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// String renders the specifier as written between the braces, without the
// inline type keyword.
func (s ImportSpecifier) String() string {
	if s.Alias != "" && s.Alias != s.Name {
		return s.Name + " as " + s.Alias
	}
	return s.Name
}

type ImportClause struct {
	Default   string
	Namespace string
	Named     []ImportSpecifier
}

type ImportDeclaration struct {
	Comments []string
	TypeOnly bool
	// Clause is nil for side-effect imports (import "x";).
	Clause          *ImportClause
	ModuleSpecifier string
	// Quote is the quote character of the module specifier, '"' when zero.
	Quote byte
	// Attributes is the import attribute clause as written, such as
	// `with { type: "json" }`.
	Attributes string
	// TrailingComment is a comment on the same line after the import.
	TrailingComment string
}

func (*ImportDeclaration) Kind() Kind     { return KindImportDeclaration }
func (*ImportDeclaration) statementNode() {}

type ClassDeclaration struct {
	Comments       []string
	Decorators     []*Decorator
	Modifiers      []Modifier
	Name           string
	TypeParameters string
	Extends        string
	Implements     []string
	Members        []ClassElement
}

func (*ClassDeclaration) Kind() Kind     { return KindClassDeclaration }
func (*ClassDeclaration) statementNode() {}

// RawStatement is any top-level statement kept verbatim.
type RawStatement struct {
	Comments []string
	Text     string
	// Exports lists names the statement exports, when the parser could tell.
	Exports []string
	// References are the module specifiers quoted in Text, such as the source
	// of a re-export or an import-equals require. Ordered by position.
	References []ModuleReference
}

// ModuleReference is a module specifier inside raw statement text.
type ModuleReference struct {
	Specifier string
	// Start and End are the byte offsets of the quoted literal in the text.
	Start, End int
}

func (*RawStatement) Kind() Kind     { return KindRawStatement }
func (*RawStatement) statementNode() {}

type PropertyDeclaration struct {
	Comments    []string
	Decorators  []*Decorator
	Modifiers   []Modifier
	Name        string
	Optional    bool
	Definite    bool
	Type        string
	Initializer Expression
}

func (*PropertyDeclaration) Kind() Kind        { return KindPropertyDeclaration }
func (*PropertyDeclaration) classElementNode() {}

type MethodDeclaration struct {
	Comments       []string
	Decorators     []*Decorator
	Modifiers      []Modifier
	Name           string
	Optional       bool
	TypeParameters string
	Parameters     []*Parameter
	ReturnType     string
	// Body is nil for abstract methods and overload signatures.
	Body *Block
}

func (*MethodDeclaration) Kind() Kind        { return KindMethodDeclaration }
func (*MethodDeclaration) classElementNode() {}

type ConstructorDeclaration struct {
	Comments   []string
	Modifiers  []Modifier
	Parameters []*Parameter
	Body       *Block
}

func (*ConstructorDeclaration) Kind() Kind        { return KindConstructorDeclaration }
func (*ConstructorDeclaration) classElementNode() {}

// RawMember is a class member kept verbatim (index signatures, static blocks).
type RawMember struct {
	Comments []string
	Text     string
}

func (*RawMember) Kind() Kind        { return KindRawMember }
func (*RawMember) classElementNode() {}

type Parameter struct {
	Decorators  []*Decorator
	Modifiers   []Modifier
	Name        string
	Optional    bool
	Type        string
	Initializer Expression
}

func (*Parameter) Kind() Kind { return KindParameter }

// Block is a function body. Raw holds the verbatim source of a parsed body
// including braces; otherwise Statements are printed one per line.
type Block struct {
	Statements []string
	Raw        string
}

type Decorator struct {
	Expression Expression
}

func (*Decorator) Kind() Kind { return KindDecorator }

// Name returns the decorator's callee name, e.g. "Entity" for @Entity({...}).
func (d *Decorator) Name() string {
	if d == nil {
		return ""
	}
	return calleeName(d.Expression)
}

func calleeName(e Expression) string {
	switch x := e.(type) {
	case *Identifier:
		return x.Name
	case *CallExpression:
		return calleeName(x.Callee)
	case *RawExpression:
		return x.Text
	default:
		return ""
	}
}

type Identifier struct {
	Name string
}

func (*Identifier) Kind() Kind      { return KindIdentifier }
func (*Identifier) expressionNode() {}

type StringLiteral struct {
	Value string
	Quote byte
}

func (*StringLiteral) Kind() Kind      { return KindStringLiteral }
func (*StringLiteral) expressionNode() {}

type NumericLiteral struct {
	Text string
}

func (*NumericLiteral) Kind() Kind      { return KindNumericLiteral }
func (*NumericLiteral) expressionNode() {}

type BooleanLiteral struct {
	Value bool
}

func (*BooleanLiteral) Kind() Kind      { return KindBooleanLiteral }
func (*BooleanLiteral) expressionNode() {}

type NullLiteral struct{}

func (*NullLiteral) Kind() Kind      { return KindNullLiteral }
func (*NullLiteral) expressionNode() {}

type ArrayLiteral struct {
	Elements []Expression
}

func (*ArrayLiteral) Kind() Kind      { return KindArrayLiteral }
func (*ArrayLiteral) expressionNode() {}

type PropertyAssignment struct {
	Name        string
	Quoted      bool
	Shorthand   bool
	Initializer Expression
}

type ObjectLiteral struct {
	Properties []*PropertyAssignment
}

func (*ObjectLiteral) Kind() Kind      { return KindObjectLiteral }
func (*ObjectLiteral) expressionNode() {}

// Property returns the initializer of the named property.
func (o *ObjectLiteral) Property(name string) (Expression, bool) {
	if o == nil {
		return nil, false
	}
	for _, p := range o.Properties {
		if p.Name == name {
			if p.Shorthand {
				return &Identifier{Name: p.Name}, true
			}
			return p.Initializer, true
		}
	}
	return nil, false
}

type CallExpression struct {
	Callee        Expression
	TypeArguments string
	Arguments     []Expression
}

func (*CallExpression) Kind() Kind      { return KindCallExpression }
func (*CallExpression) expressionNode() {}

type RawExpression struct {
	Text string
}

func (*RawExpression) Kind() Kind      { return KindRawExpression }
func (*RawExpression) expressionNode() {}

// HasModifier reports whether mods contains m.
func HasModifier(mods []Modifier, m Modifier) bool {
	for _, x := range mods {
		if x == m {
			return true
		}
	}
	return false
}
