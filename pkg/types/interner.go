package types

import (
	"math"
	"strconv"
	"strings"
)

// Interner is the canonical, append-only arena of type shapes for one
// checking session. Constructing the same shape twice returns the same
// handle; shapes are immutable after creation and live until the session
// ends. The arena is safe for concurrent readers once lowering for a file has
// finished, because nothing already interned is ever edited.
type Interner struct {
	shapes []Shape
	byKey  map[string]Handle

	atoms    []string
	atomByID map[string]Atom
}

// NewInterner builds an interner pre-seeded with the intrinsic handles.
func NewInterner() *Interner {
	in := &Interner{
		byKey:    make(map[string]Handle),
		atomByID: make(map[string]Atom),
	}
	// Slot 0 is the None placeholder.
	in.shapes = append(in.shapes, nil)
	seed := []Shape{
		&ErrorShape{},
		&IntrinsicShape{Kind: KindNever},
		&IntrinsicShape{Kind: KindUnknown},
		&IntrinsicShape{Kind: KindAny},
		&IntrinsicShape{Kind: KindVoid},
		&IntrinsicShape{Kind: KindUndefined},
		&IntrinsicShape{Kind: KindNull},
		&IntrinsicShape{Kind: KindBoolean},
		&IntrinsicShape{Kind: KindNumber},
		&IntrinsicShape{Kind: KindString},
		&IntrinsicShape{Kind: KindBigInt},
		&IntrinsicShape{Kind: KindSymbol},
		&IntrinsicShape{Kind: KindObject},
		&LiteralShape{Value: LiteralValue{Kind: LiteralBoolean, Bool: true}},
		&LiteralShape{Value: LiteralValue{Kind: LiteralBoolean, Bool: false}},
	}
	in.shapes = append(in.shapes, seed...)
	// Atom 0 is the empty name.
	in.atoms = append(in.atoms, "")
	in.atomByID[""] = 0
	return in
}

// Len reports how many shapes the session has interned.
func (in *Interner) Len() int { return len(in.shapes) }

// Shape returns the shape behind a handle. Callers must not mutate it.
func (in *Interner) Shape(h Handle) Shape {
	if int(h) >= len(in.shapes) {
		return in.shapes[ErrorType]
	}
	return in.shapes[h]
}

// Atom interns a property/parameter name.
func (in *Interner) Atom(name string) Atom {
	if a, ok := in.atomByID[name]; ok {
		return a
	}
	a := Atom(len(in.atoms))
	in.atoms = append(in.atoms, name)
	in.atomByID[name] = a
	return a
}

// AtomName resolves an atom back to its string.
func (in *Interner) AtomName(a Atom) string {
	if int(a) >= len(in.atoms) {
		return ""
	}
	return in.atoms[a]
}

func (in *Interner) intern(key string, build func() Shape) Handle {
	if h, ok := in.byKey[key]; ok {
		return h
	}
	h := Handle(len(in.shapes))
	in.shapes = append(in.shapes, build())
	in.byKey[key] = h
	return h
}

// key building -------------------------------------------------------------

type keyBuf struct {
	strings.Builder
}

func (k *keyBuf) h(h Handle) { k.WriteString(strconv.FormatUint(uint64(h), 36)); k.WriteByte(',') }
func (k *keyBuf) u(v uint32) { k.WriteString(strconv.FormatUint(uint64(v), 36)); k.WriteByte(',') }
func (k *keyBuf) i(v int)    { k.WriteString(strconv.Itoa(v)); k.WriteByte(',') }
func (k *keyBuf) s(v string) { k.WriteString(strconv.Quote(v)); k.WriteByte(',') }

func (k *keyBuf) b(v bool) {
	if v {
		k.WriteByte('1')
	} else {
		k.WriteByte('0')
	}
	k.WriteByte(',')
}

func (k *keyBuf) tag(t string) { k.WriteString(t); k.WriteByte('(') }

func (k *keyBuf) prop(p Property) {
	k.u(uint32(p.Name))
	k.h(p.Read)
	k.h(p.Write)
	k.b(p.Optional)
	k.b(p.Readonly)
	k.b(p.IsMethod)
	k.i(int(p.Visible))
	k.u(uint32(p.Parent))
}

func (k *keyBuf) index(idx *IndexSignature) {
	if idx == nil {
		k.WriteString("-,")
		return
	}
	k.h(idx.Value)
	k.b(idx.Readonly)
}

func (k *keyBuf) typeParam(tp TypeParam) {
	k.u(uint32(tp.Name))
	k.u(uint32(tp.ID))
	k.h(tp.Constraint)
	k.h(tp.Default)
}

func (k *keyBuf) sig(s Signature) {
	k.i(len(s.TypeParams))
	for _, tp := range s.TypeParams {
		k.typeParam(tp)
	}
	k.i(len(s.Params))
	for _, p := range s.Params {
		k.u(uint32(p.Name))
		k.h(p.Type)
		k.b(p.Optional)
		k.b(p.Rest)
	}
	k.h(s.This)
	k.h(s.Return)
	k.b(s.IsMethod)
	if s.Predicate != nil {
		k.b(s.Predicate.Asserts)
		k.i(int(s.Predicate.Target))
		k.u(uint32(s.Predicate.ParamName))
		k.i(s.Predicate.ParamIndex)
		k.h(s.Predicate.Type)
	} else {
		k.WriteString("-,")
	}
}

// constructors -------------------------------------------------------------

// Intrinsic returns the pre-seeded handle for an intrinsic kind.
func (in *Interner) Intrinsic(kind IntrinsicKind) Handle {
	switch kind {
	case KindAny:
		return Any
	case KindUnknown:
		return Unknown
	case KindNever:
		return Never
	case KindVoid:
		return Void
	case KindUndefined:
		return Undefined
	case KindNull:
		return Null
	case KindBoolean:
		return Boolean
	case KindNumber:
		return Number
	case KindString:
		return String
	case KindBigInt:
		return BigInt
	case KindSymbol:
		return Symbol
	case KindObject:
		return ObjectKeyword
	default:
		return ErrorType
	}
}

// LiteralString interns a string literal type.
func (in *Interner) LiteralString(text string) Handle {
	var k keyBuf
	k.tag("ls")
	k.s(text)
	return in.intern(k.String(), func() Shape {
		return &LiteralShape{Value: LiteralValue{Kind: LiteralString, Str: text}}
	})
}

// LiteralNumber interns a numeric literal type.
func (in *Interner) LiteralNumber(value float64) Handle {
	var k keyBuf
	k.tag("ln")
	k.WriteString(strconv.FormatUint(math.Float64bits(value), 36))
	return in.intern(k.String(), func() Shape {
		return &LiteralShape{Value: LiteralValue{Kind: LiteralNumber, Num: value}}
	})
}

// LiteralBigInt interns a bigint literal type from canonical decimal digits.
// Negative values carry a leading '-'. "-0" folds to "0".
func (in *Interner) LiteralBigInt(digits string) Handle {
	if digits == "-0" {
		digits = "0"
	}
	var k keyBuf
	k.tag("lb")
	k.s(digits)
	return in.intern(k.String(), func() Shape {
		return &LiteralShape{Value: LiteralValue{Kind: LiteralBigInt, Str: digits}}
	})
}

// LiteralBool returns the pre-seeded true/false literal handle.
func (in *Interner) LiteralBool(v bool) Handle {
	if v {
		return BoolTrue
	}
	return BoolFalse
}

// Array interns `elem[]`.
func (in *Interner) Array(elem Handle) Handle {
	var k keyBuf
	k.tag("ar")
	k.h(elem)
	return in.intern(k.String(), func() Shape { return &ArrayShape{Elem: elem} })
}

// Tuple interns an ordered element list.
func (in *Interner) Tuple(elems []TupleElem) Handle {
	var k keyBuf
	k.tag("tu")
	for _, e := range elems {
		k.h(e.Type)
		k.u(uint32(e.Name))
		k.b(e.Optional)
		k.b(e.Rest)
	}
	elems = append([]TupleElem(nil), elems...)
	return in.intern(k.String(), func() Shape { return &TupleShape{Elems: elems} })
}

// Object interns a property list with optional index signatures.
func (in *Interner) Object(props []Property, strIdx, numIdx *IndexSignature) Handle {
	return in.ObjectOf(props, strIdx, numIdx, 0)
}

// ObjectOf interns an object shape with a nominal owner (class instance
// types). Owner participates in identity so distinct classes never collapse
// into one handle.
func (in *Interner) ObjectOf(props []Property, strIdx, numIdx *IndexSignature, owner SymbolID) Handle {
	var k keyBuf
	k.tag("ob")
	for _, p := range props {
		k.prop(p)
	}
	k.index(strIdx)
	k.index(numIdx)
	k.u(uint32(owner))
	props = append([]Property(nil), props...)
	return in.intern(k.String(), func() Shape {
		return &ObjectShape{Props: props, StringIndex: strIdx, NumberIndex: numIdx, Owner: owner}
	})
}

// Function interns a single-signature function type.
func (in *Interner) Function(sig Signature) Handle {
	return in.functionLike(sig, false)
}

// Constructor interns a single-signature constructor function type.
func (in *Interner) Constructor(sig Signature) Handle {
	return in.functionLike(sig, true)
}

func (in *Interner) functionLike(sig Signature, isConstructor bool) Handle {
	var k keyBuf
	k.tag("fn")
	k.sig(sig)
	k.b(isConstructor)
	return in.intern(k.String(), func() Shape {
		return &FunctionShape{Sig: sig, IsConstructor: isConstructor}
	})
}

// Callable interns an overloaded callable shape.
func (in *Interner) Callable(shape CallableShape) Handle {
	var k keyBuf
	k.tag("cb")
	k.i(len(shape.CallSignatures))
	for _, s := range shape.CallSignatures {
		k.sig(s)
	}
	k.i(len(shape.ConstructSignatures))
	for _, s := range shape.ConstructSignatures {
		k.sig(s)
	}
	for _, p := range shape.Props {
		k.prop(p)
	}
	k.index(shape.StringIndex)
	k.index(shape.NumberIndex)
	k.u(uint32(shape.Owner))
	return in.intern(k.String(), func() Shape {
		cp := shape
		cp.CallSignatures = append([]Signature(nil), shape.CallSignatures...)
		cp.ConstructSignatures = append([]Signature(nil), shape.ConstructSignatures...)
		cp.Props = append([]Property(nil), shape.Props...)
		return &cp
	})
}

// Union interns a member set: nested unions flatten, duplicates drop, never
// drops, zero members collapse to never and one member to itself.
func (in *Interner) Union(members []Handle) Handle {
	flat := make([]Handle, 0, len(members))
	seen := make(map[Handle]bool, len(members))
	var add func(h Handle)
	add = func(h Handle) {
		if u, ok := in.Shape(h).(*UnionShape); ok {
			for _, m := range u.Members {
				add(m)
			}
			return
		}
		if h == Never || seen[h] {
			return
		}
		seen[h] = true
		flat = append(flat, h)
	}
	for _, m := range members {
		add(m)
	}
	// any absorbs the union.
	for _, m := range flat {
		if m == Any {
			return Any
		}
	}
	switch len(flat) {
	case 0:
		return Never
	case 1:
		return flat[0]
	}
	var k keyBuf
	k.tag("un")
	for _, m := range flat {
		k.h(m)
	}
	return in.intern(k.String(), func() Shape { return &UnionShape{Members: flat} })
}

// Union2 interns the union of exactly two members.
func (in *Interner) Union2(a, b Handle) Handle {
	return in.Union([]Handle{a, b})
}

// Intersection interns a member set: flattens, dedupes, collapses zero
// members to unknown and one member to itself; never absorbs.
func (in *Interner) Intersection(members []Handle) Handle {
	flat := make([]Handle, 0, len(members))
	seen := make(map[Handle]bool, len(members))
	var add func(h Handle)
	add = func(h Handle) {
		if s, ok := in.Shape(h).(*IntersectionShape); ok {
			for _, m := range s.Members {
				add(m)
			}
			return
		}
		if h == Unknown || seen[h] {
			return
		}
		seen[h] = true
		flat = append(flat, h)
	}
	for _, m := range members {
		add(m)
	}
	for _, m := range flat {
		if m == Never {
			return Never
		}
	}
	switch len(flat) {
	case 0:
		return Unknown
	case 1:
		return flat[0]
	}
	var k keyBuf
	k.tag("in")
	for _, m := range flat {
		k.h(m)
	}
	return in.intern(k.String(), func() Shape { return &IntersectionShape{Members: flat} })
}

// TypeParameter interns a bound generic parameter reference.
func (in *Interner) TypeParameter(tp TypeParam) Handle {
	var k keyBuf
	k.tag("tp")
	k.typeParam(tp)
	return in.intern(k.String(), func() Shape { return &TypeParamShape{Param: tp} })
}

// Application interns an unresolved generic instantiation Base<Args>.
func (in *Interner) Application(base Handle, args []Handle) Handle {
	var k keyBuf
	k.tag("ap")
	k.h(base)
	for _, a := range args {
		k.h(a)
	}
	args = append([]Handle(nil), args...)
	return in.intern(k.String(), func() Shape { return &ApplicationShape{Base: base, Args: args} })
}

// Conditional interns `Check extends Extends ? True : False`.
func (in *Interner) Conditional(check, extends, whenTrue, whenFalse Handle, distributive bool) Handle {
	var k keyBuf
	k.tag("co")
	k.h(check)
	k.h(extends)
	k.h(whenTrue)
	k.h(whenFalse)
	k.b(distributive)
	return in.intern(k.String(), func() Shape {
		return &ConditionalShape{Check: check, Extends: extends, True: whenTrue, False: whenFalse, Distributive: distributive}
	})
}

// Mapped interns a mapped type.
func (in *Interner) Mapped(m MappedShape) Handle {
	var k keyBuf
	k.tag("ma")
	k.typeParam(m.Param)
	k.h(m.Constraint)
	k.h(m.NameType)
	k.h(m.Template)
	k.i(int(m.Readonly))
	k.i(int(m.Optional))
	return in.intern(k.String(), func() Shape { cp := m; return &cp })
}

// IndexAccess interns `T[K]`.
func (in *Interner) IndexAccess(object, index Handle) Handle {
	var k keyBuf
	k.tag("ia")
	k.h(object)
	k.h(index)
	return in.intern(k.String(), func() Shape { return &IndexAccessShape{Object: object, Index: index} })
}

// KeyOf interns `keyof T`.
func (in *Interner) KeyOf(inner Handle) Handle {
	var k keyBuf
	k.tag("ko")
	k.h(inner)
	return in.intern(k.String(), func() Shape { return &KeyOfShape{Inner: inner} })
}

// Readonly interns `readonly T`.
func (in *Interner) Readonly(inner Handle) Handle {
	var k keyBuf
	k.tag("ro")
	k.h(inner)
	return in.intern(k.String(), func() Shape { return &ReadonlyShape{Inner: inner} })
}

// NoInfer interns `NoInfer<T>`.
func (in *Interner) NoInfer(inner Handle) Handle {
	var k keyBuf
	k.tag("ni")
	k.h(inner)
	return in.intern(k.String(), func() Shape { return &NoInferShape{Inner: inner} })
}

// TemplateLiteral interns alternating text/type spans.
func (in *Interner) TemplateLiteral(spans []TemplateSpan) Handle {
	var k keyBuf
	k.tag("tl")
	for _, s := range spans {
		k.b(s.IsType)
		k.u(uint32(s.Text))
		k.h(s.Type)
	}
	spans = append([]TemplateSpan(nil), spans...)
	return in.intern(k.String(), func() Shape { return &TemplateLiteralShape{Spans: spans} })
}

// Infer interns an `infer R` binding.
func (in *Interner) Infer(tp TypeParam) Handle {
	var k keyBuf
	k.tag("if")
	k.typeParam(tp)
	return in.intern(k.String(), func() Shape { return &InferShape{Param: tp} })
}

// Lazy interns a deferred reference to a definition. Lazy handles may be
// constructed before the target declaration is fully lowered, which is what
// makes mutual and self recursion representable.
func (in *Interner) Lazy(def DefID) Handle {
	var k keyBuf
	k.tag("lz")
	k.u(uint32(def))
	return in.intern(k.String(), func() Shape { return &LazyShape{Def: def} })
}

// Enum interns a nominal enum type.
func (in *Interner) Enum(def DefID, member Handle) Handle {
	var k keyBuf
	k.tag("en")
	k.u(uint32(def))
	k.h(member)
	return in.intern(k.String(), func() Shape { return &EnumShape{Def: def, Member: member} })
}

// TypeQuery interns `typeof x`.
func (in *Interner) TypeQuery(sym SymbolID) Handle {
	var k keyBuf
	k.tag("tq")
	k.u(uint32(sym))
	return in.intern(k.String(), func() Shape { return &TypeQueryShape{Symbol: sym} })
}

// UniqueSymbol interns `unique symbol`.
func (in *Interner) UniqueSymbol(sym SymbolID) Handle {
	var k keyBuf
	k.tag("us")
	k.u(uint32(sym))
	return in.intern(k.String(), func() Shape { return &UniqueSymbolShape{Symbol: sym} })
}

// This interns the polymorphic `this` type.
func (in *Interner) This() Handle {
	return in.intern("th(", func() Shape { return &ThisShape{} })
}

// ModuleNamespace interns a namespace type.
func (in *Interner) ModuleNamespace(sym SymbolID) Handle {
	var k keyBuf
	k.tag("mn")
	k.u(uint32(sym))
	return in.intern(k.String(), func() Shape { return &ModuleNamespaceShape{Symbol: sym} })
}

// StringIntrinsic interns Uppercase/Lowercase/Capitalize/Uncapitalize<T>.
func (in *Interner) StringIntrinsic(kind StringIntrinsicKind, arg Handle) Handle {
	var k keyBuf
	k.tag("si")
	k.i(int(kind))
	k.h(arg)
	return in.intern(k.String(), func() Shape { return &StringIntrinsicShape{Kind: kind, Arg: arg} })
}
