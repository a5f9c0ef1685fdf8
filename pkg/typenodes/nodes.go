// Package typenodes defines the already-parsed type-syntax surface consumed by
// the lowering engine. The parser and binder live outside this module; they hand
// lowering these nodes plus resolver callbacks. Nodes are plain data with no
// behavior beyond the marker method, so independent front ends can construct
// them freely.
package typenodes

// Node is the closed set of type-syntax forms.
type Node interface {
	typeNode()
}

// Reference is a named type reference, optionally applied to type arguments
// (`Foo`, `Foo<A, B>`). NodeIndex carries the parse-local node identity used as
// a resolution fallback; it is zero for synthesized nodes.
type Reference struct {
	Name      string
	Args      []Node
	NodeIndex int
}

// Literal is a literal type (`"x"`, `42`, `10n`, `true`, `-0x1f`).
type Literal struct {
	Lit LiteralNode
}

// LiteralNode is the literal payload of a Literal type node.
type LiteralNode interface {
	literalNode()
}

// StringLit carries the decoded string text.
type StringLit struct {
	Text string
}

// NumberLit carries the raw source text; Value is set when the parser already
// decoded it (plain decimal forms).
type NumberLit struct {
	Text     string
	Value    float64
	HasValue bool
}

// BigIntLit carries the raw source text including any radix prefix, without
// the trailing `n`.
type BigIntLit struct {
	Text string
}

// BoolLit is `true` or `false` in type position.
type BoolLit struct {
	Value bool
}

// PrefixUnary is a unary `-`/`+` applied to a numeric or bigint literal.
type PrefixUnary struct {
	Minus   bool
	Operand LiteralNode
}

// ArrayType is `T[]`.
type ArrayType struct {
	Element Node
}

// TupleType is `[A, b?: B, ...rest: C[]]`.
type TupleType struct {
	Elements []TupleElement
}

// TupleElement is one tuple position.
type TupleElement struct {
	Name     string
	Type     Node
	Optional bool
	Rest     bool
}

// ObjectType is a type literal `{ ... }`.
type ObjectType struct {
	Members []Member
}

// Member is one member of an object type literal.
type Member interface {
	objectMember()
}

// Visibility of a class/object member.
type Visibility int

const (
	Public Visibility = iota
	Private
	Protected
)

// PropertySignature is `name?: T` (readonly, visibility and the declaring
// entity are carried through for nominal checks).
type PropertySignature struct {
	Name       string
	Type       Node
	Optional   bool
	Readonly   bool
	Visibility Visibility
	// DeclaredBy identifies the declaring entity for private/protected
	// members; zero means none.
	DeclaredBy uint32
}

// MethodSignature is `name(params): R`.
type MethodSignature struct {
	Name       string
	Fn         *FunctionType
	Optional   bool
	Visibility Visibility
	DeclaredBy uint32
}

// GetAccessor is `get name(): T`.
type GetAccessor struct {
	Name string
	Type Node
}

// SetAccessor is `set name(v: T)`.
type SetAccessor struct {
	Name string
	Type Node
}

// IndexSignatureMember is `[key: string]: T` or `[key: number]: T`.
type IndexSignatureMember struct {
	KeyIsNumber bool
	Value       Node
	Readonly    bool
}

// CallSignatureMember is a bare call signature inside an object type.
type CallSignatureMember struct {
	Fn *FunctionType
}

// ConstructSignatureMember is `new (params): R` inside an object type.
type ConstructSignatureMember struct {
	Fn *FunctionType
}

// FunctionType is `(params) => R`, also used for constructor types and
// signatures. Predicate is set for `x is T` / `asserts x is T` returns.
type FunctionType struct {
	TypeParams []TypeParamDecl
	Params     []Param
	This       Node
	Return     Node
	Predicate  *Predicate
}

// ConstructorType is `new (params) => R`.
type ConstructorType struct {
	Fn *FunctionType
}

// Param is one parameter of a function type.
type Param struct {
	Name     string
	Type     Node
	Optional bool
	Rest     bool
}

// TypeParamDecl declares a generic parameter with optional constraint/default.
type TypeParamDecl struct {
	Name       string
	Constraint Node
	Default    Node
}

// Predicate is a type-predicate return annotation.
type Predicate struct {
	Asserts bool
	// Target is the narrowed parameter name, or "this".
	Target string
	Type   Node
}

// UnionType is `A | B`.
type UnionType struct {
	Members []Node
}

// IntersectionType is `A & B`.
type IntersectionType struct {
	Members []Node
}

// ConditionalType is `Check extends Extends ? True : False`.
type ConditionalType struct {
	Check   Node
	Extends Node
	True    Node
	False   Node
}

// InferType is `infer R` (with an optional TS 4.7 constraint).
type InferType struct {
	Name       string
	Constraint Node
}

// MappedType is `{ [K in C as N]: T }` with +/-/absent modifiers.
type MappedType struct {
	ParamName  string
	Constraint Node
	NameType   Node
	Template   Node
	Readonly   Modifier
	Optional   Modifier
}

// Modifier is a mapped-type modifier state.
type Modifier int

const (
	ModifierNone Modifier = iota
	ModifierAdd
	ModifierRemove
)

// IndexedAccessType is `T[K]`.
type IndexedAccessType struct {
	Object Node
	Index  Node
}

// TypeOperator is `keyof T`, `readonly T` or `unique symbol`.
type TypeOperator struct {
	Op    OperatorKind
	Inner Node
}

// OperatorKind selects the type operator.
type OperatorKind int

const (
	OpKeyOf OperatorKind = iota
	OpReadonly
	OpUnique
)

// TemplateLiteralType is a template literal type: Head text followed by
// alternating type/text spans.
type TemplateLiteralType struct {
	Head  string
	Spans []TemplateSpan
}

// TemplateSpan is one `${T}text` segment.
type TemplateSpan struct {
	Type Node
	Text string
}

// TypeQuery is `typeof x`.
type TypeQuery struct {
	Name      string
	NodeIndex int
}

// ThisType is the polymorphic `this` type.
type ThisType struct{}

// ParenType is a parenthesized type.
type ParenType struct {
	Inner Node
}

func (*Reference) typeNode()           {}
func (*Literal) typeNode()             {}
func (*ArrayType) typeNode()           {}
func (*TupleType) typeNode()           {}
func (*ObjectType) typeNode()          {}
func (*FunctionType) typeNode()        {}
func (*ConstructorType) typeNode()     {}
func (*UnionType) typeNode()           {}
func (*IntersectionType) typeNode()    {}
func (*ConditionalType) typeNode()     {}
func (*InferType) typeNode()           {}
func (*MappedType) typeNode()          {}
func (*IndexedAccessType) typeNode()   {}
func (*TypeOperator) typeNode()        {}
func (*TemplateLiteralType) typeNode() {}
func (*TypeQuery) typeNode()           {}
func (*ThisType) typeNode()            {}
func (*ParenType) typeNode()           {}

func (*StringLit) literalNode()   {}
func (*NumberLit) literalNode()   {}
func (*BigIntLit) literalNode()   {}
func (*BoolLit) literalNode()     {}
func (*PrefixUnary) literalNode() {}

func (*PropertySignature) objectMember()        {}
func (*MethodSignature) objectMember()          {}
func (*GetAccessor) objectMember()              {}
func (*SetAccessor) objectMember()              {}
func (*IndexSignatureMember) objectMember()     {}
func (*CallSignatureMember) objectMember()      {}
func (*ConstructSignatureMember) objectMember() {}
