package types

// Handle is an opaque key into the interner identifying one type shape.
// Equality of handles is sound for acyclic shapes (hash-consing guarantees
// identical shapes intern to identical handles) but not sufficient for cyclic
// shapes, which go through the Canonicalizer.
type Handle uint32

// Pre-seeded intrinsic handles. These exist in every interner from birth so
// the common types never allocate and compare O(1).
const (
	// None is the internal zero placeholder, never a valid type.
	None Handle = iota
	// ErrorType is the absorbing recovery sentinel: compatible with
	// everything, produced whenever lowering or resolution fails.
	ErrorType
	Never
	Unknown
	Any
	Void
	Undefined
	Null
	Boolean
	Number
	String
	BigInt
	Symbol
	// ObjectKeyword is the `object` keyword (any non-primitive value).
	ObjectKeyword
	BoolTrue
	BoolFalse

	firstUserHandle
)

// IsIntrinsic reports whether h is one of the pre-seeded handles.
func (h Handle) IsIntrinsic() bool { return h < firstUserHandle && h != None }

// IsNullish reports whether h is null or undefined.
func (h Handle) IsNullish() bool { return h == Null || h == Undefined }

// Atom is an interned property/parameter name.
type Atom uint32

// ParamID is the identity of a bound type parameter. IDs are allocated per
// lexical scope during lowering, so substitution never needs
// capture-avoidance renaming.
type ParamID uint32

// DefID is a stable, cross-file identity for a declaration, distinct from any
// single parse's node indices. Lazy shapes defer to it.
type DefID uint32

// SymbolID identifies a binder symbol (declaring entities for nominal checks,
// typeof targets, unique symbols).
type SymbolID uint32

// IntrinsicKind enumerates the intrinsic types.
type IntrinsicKind int

const (
	KindAny IntrinsicKind = iota
	KindUnknown
	KindNever
	KindVoid
	KindUndefined
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindBigInt
	KindSymbol
	KindObject
)

var intrinsicNames = [...]string{
	KindAny: "any", KindUnknown: "unknown", KindNever: "never", KindVoid: "void",
	KindUndefined: "undefined", KindNull: "null", KindBoolean: "boolean",
	KindNumber: "number", KindString: "string", KindBigInt: "bigint",
	KindSymbol: "symbol", KindObject: "object",
}

func (k IntrinsicKind) String() string {
	if int(k) < len(intrinsicNames) {
		return intrinsicNames[k]
	}
	return "intrinsic?"
}

// LiteralKind discriminates literal values.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBigInt
	LiteralBoolean
)

// LiteralValue is a literal type's value. Bigints are canonical decimal digit
// strings (optionally sign-prefixed) so equal values intern identically
// regardless of source radix.
type LiteralValue struct {
	Kind LiteralKind
	Str  string
	Num  float64
	Bool bool
}

// IntrinsicFor returns the widened intrinsic handle for a literal.
func (v LiteralValue) IntrinsicFor() Handle {
	switch v.Kind {
	case LiteralString:
		return String
	case LiteralNumber:
		return Number
	case LiteralBigInt:
		return BigInt
	default:
		return Boolean
	}
}

// Visibility of an object/class member.
type Visibility int

const (
	Public Visibility = iota
	Private
	Protected
)

func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case Protected:
		return "protected"
	default:
		return "public"
	}
}

// Property is one named member of an object or callable shape. Read and Write
// may diverge for get/set pairs.
type Property struct {
	Name     Atom
	Read     Handle
	Write    Handle
	Optional bool
	Readonly bool
	IsMethod bool
	Visible  Visibility
	// Parent is the declaring entity, consulted for nominal checks on
	// non-public members. Zero means none.
	Parent SymbolID
}

// IndexSignature is a `[key: string|number]: T` structural fallback.
type IndexSignature struct {
	Value    Handle
	Readonly bool
}

// TupleElem is one tuple position.
type TupleElem struct {
	Type     Handle
	Name     Atom
	Optional bool
	Rest     bool
}

// TypeParam describes a generic parameter.
type TypeParam struct {
	Name       Atom
	ID         ParamID
	Constraint Handle
	Default    Handle
}

// Param is a function signature parameter.
type Param struct {
	Name     Atom
	Type     Handle
	Optional bool
	Rest     bool
}

// PredicateTarget discriminates what a type predicate narrows.
type PredicateTarget int

const (
	PredicateParam PredicateTarget = iota
	PredicateThis
)

// Predicate is an `x is T` / `asserts x is T` return annotation. ParamIndex
// is the ordinal position of the narrowed parameter for later flow
// correlation; -1 for `this`.
type Predicate struct {
	Asserts    bool
	Target     PredicateTarget
	ParamName  Atom
	ParamIndex int
	Type       Handle
}

// Signature is one call or construct signature.
type Signature struct {
	TypeParams []TypeParam
	Params     []Param
	This       Handle
	Return     Handle
	Predicate  *Predicate
	IsMethod   bool
}

// MappedModifier is a mapped type's +/-/absent modifier state.
type MappedModifier int

const (
	MappedNone MappedModifier = iota
	MappedAdd
	MappedRemove
)

// TemplateSpan is one text or embedded-type segment of a template literal
// type.
type TemplateSpan struct {
	IsType bool
	Text   Atom
	Type   Handle
}

// StringIntrinsicKind selects a string-manipulation intrinsic.
type StringIntrinsicKind int

const (
	IntrinsicUppercase StringIntrinsicKind = iota
	IntrinsicLowercase
	IntrinsicCapitalize
	IntrinsicUncapitalize
)

// Shape is the closed set of type shapes stored behind handles. Every
// traversal in this module switches exhaustively over these variants; a
// missed variant silently breaks cycle guarding, so new shapes must be
// threaded through the canonicalizer, instantiation, infer collection and the
// subtype checker together.
type Shape interface {
	shape()
}

// IntrinsicShape is one of the intrinsic types.
type IntrinsicShape struct {
	Kind IntrinsicKind
}

// LiteralShape is a string/number/bigint/boolean literal type.
type LiteralShape struct {
	Value LiteralValue
}

// ArrayShape is `T[]`.
type ArrayShape struct {
	Elem Handle
}

// TupleShape is an ordered element list.
type TupleShape struct {
	Elems []TupleElem
}

// ObjectShape is a property list with optional index signatures. Owner gives
// class instance shapes nominal identity; zero for structural literals.
type ObjectShape struct {
	Props       []Property
	StringIndex *IndexSignature
	NumberIndex *IndexSignature
	Owner       SymbolID
}

// FunctionShape is a single-signature function or constructor type.
type FunctionShape struct {
	Sig           Signature
	IsConstructor bool
}

// CallableShape carries overloaded call/construct signatures plus members.
type CallableShape struct {
	CallSignatures      []Signature
	ConstructSignatures []Signature
	Props               []Property
	StringIndex         *IndexSignature
	NumberIndex         *IndexSignature
	Owner               SymbolID
}

// UnionShape is a member set (insertion-ordered, deduplicated).
type UnionShape struct {
	Members []Handle
}

// IntersectionShape is a member set.
type IntersectionShape struct {
	Members []Handle
}

// TypeParamShape is a reference to a bound generic parameter.
type TypeParamShape struct {
	Param TypeParam
}

// ApplicationShape is an unresolved generic instantiation Base<Args>.
type ApplicationShape struct {
	Base Handle
	Args []Handle
}

// ConditionalShape is `Check extends Extends ? True : False`. Distributive is
// recorded at lowering time when Check is a bare type parameter; distribution
// over unions happens in the evaluator outside this core.
type ConditionalShape struct {
	Check        Handle
	Extends      Handle
	True         Handle
	False        Handle
	Distributive bool
}

// MappedShape is `{ [K in Constraint as NameType]: Template }`.
type MappedShape struct {
	Param      TypeParam
	Constraint Handle
	NameType   Handle
	Template   Handle
	Readonly   MappedModifier
	Optional   MappedModifier
}

// IndexAccessShape is `T[K]`, deferred to the evaluating layer.
type IndexAccessShape struct {
	Object Handle
	Index  Handle
}

// KeyOfShape is `keyof T`.
type KeyOfShape struct {
	Inner Handle
}

// ReadonlyShape is `readonly T`.
type ReadonlyShape struct {
	Inner Handle
}

// NoInferShape is `NoInfer<T>`.
type NoInferShape struct {
	Inner Handle
}

// TemplateLiteralShape is alternating text/type spans.
type TemplateLiteralShape struct {
	Spans []TemplateSpan
}

// InferShape is an `infer R` binding inside a conditional's extends clause.
type InferShape struct {
	Param TypeParam
}

// LazyShape is a deferred reference to a declaration, enabling forward and
// recursive references before the target is fully lowered.
type LazyShape struct {
	Def DefID
}

// EnumShape is a nominal enum with a structural member type.
type EnumShape struct {
	Def    DefID
	Member Handle
}

// TypeQueryShape is `typeof x`.
type TypeQueryShape struct {
	Symbol SymbolID
}

// UniqueSymbolShape is `unique symbol`.
type UniqueSymbolShape struct {
	Symbol SymbolID
}

// ThisShape is the polymorphic `this` type.
type ThisShape struct{}

// ModuleNamespaceShape is `import * as ns` in type position.
type ModuleNamespaceShape struct {
	Symbol SymbolID
}

// StringIntrinsicShape is Uppercase/Lowercase/Capitalize/Uncapitalize.
type StringIntrinsicShape struct {
	Kind StringIntrinsicKind
	Arg  Handle
}

// ErrorShape is the recovery sentinel's shape.
type ErrorShape struct{}

func (*IntrinsicShape) shape()       {}
func (*LiteralShape) shape()         {}
func (*ArrayShape) shape()           {}
func (*TupleShape) shape()           {}
func (*ObjectShape) shape()          {}
func (*FunctionShape) shape()        {}
func (*CallableShape) shape()        {}
func (*UnionShape) shape()           {}
func (*IntersectionShape) shape()    {}
func (*TypeParamShape) shape()       {}
func (*ApplicationShape) shape()     {}
func (*ConditionalShape) shape()     {}
func (*MappedShape) shape()          {}
func (*IndexAccessShape) shape()     {}
func (*KeyOfShape) shape()           {}
func (*ReadonlyShape) shape()        {}
func (*NoInferShape) shape()         {}
func (*TemplateLiteralShape) shape() {}
func (*InferShape) shape()           {}
func (*LazyShape) shape()            {}
func (*EnumShape) shape()            {}
func (*TypeQueryShape) shape()       {}
func (*UniqueSymbolShape) shape()    {}
func (*ThisShape) shape()            {}
func (*ModuleNamespaceShape) shape() {}
func (*StringIntrinsicShape) shape() {}
func (*ErrorShape) shape()           {}
