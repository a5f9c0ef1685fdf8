package typenodes

// Builder helpers keep tests and embedding checkers terse.

// Ty builds a bare named type reference.
func Ty(name string, args ...Node) *Reference {
	return &Reference{Name: name, Args: args}
}

// StrLit builds a string literal type.
func StrLit(text string) *Literal {
	return &Literal{Lit: &StringLit{Text: text}}
}

// NumLit builds a numeric literal type from source text (supports radix
// prefixes and `_` separators; lowering decodes it).
func NumLit(text string) *Literal {
	return &Literal{Lit: &NumberLit{Text: text}}
}

// NumVal builds a numeric literal type from an already-decoded value.
func NumVal(value float64) *Literal {
	return &Literal{Lit: &NumberLit{Value: value, HasValue: true}}
}

// BigLit builds a bigint literal type from source text without the `n` suffix.
func BigLit(text string) *Literal {
	return &Literal{Lit: &BigIntLit{Text: text}}
}

// BoolT builds a boolean literal type.
func BoolT(v bool) *Literal {
	return &Literal{Lit: &BoolLit{Value: v}}
}

// Neg wraps a literal in a unary minus.
func Neg(lit LiteralNode) *Literal {
	return &Literal{Lit: &PrefixUnary{Minus: true, Operand: lit}}
}

// Arr builds `T[]`.
func Arr(elem Node) *ArrayType {
	return &ArrayType{Element: elem}
}

// UnionT builds `A | B | ...`.
func UnionT(members ...Node) *UnionType {
	return &UnionType{Members: members}
}

// IntersectT builds `A & B & ...`.
func IntersectT(members ...Node) *IntersectionType {
	return &IntersectionType{Members: members}
}

// Prop builds a required property signature.
func Prop(name string, typ Node) *PropertySignature {
	return &PropertySignature{Name: name, Type: typ}
}

// OptProp builds an optional property signature.
func OptProp(name string, typ Node) *PropertySignature {
	return &PropertySignature{Name: name, Type: typ, Optional: true}
}

// Obj builds an object type literal.
func Obj(members ...Member) *ObjectType {
	return &ObjectType{Members: members}
}

// Fn builds a function type with positional parameters.
func Fn(ret Node, params ...Param) *FunctionType {
	return &FunctionType{Params: params, Return: ret}
}

// P builds a required parameter.
func P(name string, typ Node) Param {
	return Param{Name: name, Type: typ}
}

// RestP builds a rest parameter.
func RestP(name string, typ Node) Param {
	return Param{Name: name, Type: typ, Rest: true}
}

// Cond builds a conditional type.
func Cond(check, extends, whenTrue, whenFalse Node) *ConditionalType {
	return &ConditionalType{Check: check, Extends: extends, True: whenTrue, False: whenFalse}
}

// Infer builds `infer Name`.
func Infer(name string) *InferType {
	return &InferType{Name: name}
}

// KeyOf builds `keyof T`.
func KeyOf(inner Node) *TypeOperator {
	return &TypeOperator{Op: OpKeyOf, Inner: inner}
}

// ReadonlyT builds `readonly T`.
func ReadonlyT(inner Node) *TypeOperator {
	return &TypeOperator{Op: OpReadonly, Inner: inner}
}

// Idx builds `T[K]`.
func Idx(object, index Node) *IndexedAccessType {
	return &IndexedAccessType{Object: object, Index: index}
}

// TupleElem builds an unnamed tuple element.
func TupleElem(typ Node) TupleElement {
	return TupleElement{Type: typ}
}

// RestElem builds a rest tuple element.
func RestElem(typ Node) TupleElement {
	return TupleElement{Type: typ, Rest: true}
}

// Tuple builds a tuple type from elements.
func Tuple(elems ...TupleElement) *TupleType {
	return &TupleType{Elements: elems}
}
