package types

import (
	"strconv"
	"strings"
)

// Canonicalizer decides structural identity of two handles when the graph is
// cyclic. Hash-consing already makes acyclic identity an integer comparison,
// but two handles can denote the same recursive type reached through
// different construction paths (an interface referencing itself under two
// definition ids). Naive recursive equality loops forever on those.
//
// The walk rewrites the graph into a finite tree: each back-edge target gets
// a position-based index (first-visit order) instead of its raw handle. Two
// handles are structurally identical iff their canonical trees are equal. A
// session cache stores each handle's canonical id once computed, so repeat
// identity checks are O(1) integer comparisons.
type Canonicalizer struct {
	in       *Interner
	resolver TypeResolver
	maxDepth int

	ids   map[Handle]uint32
	codes map[string]uint32
}

// NewCanonicalizer builds a canonicalizer sharing the session interner and
// resolver.
func NewCanonicalizer(in *Interner, resolver TypeResolver) *Canonicalizer {
	if resolver == nil {
		resolver = NoopResolver{}
	}
	return &Canonicalizer{
		in:       in,
		resolver: resolver,
		maxDepth: DefaultMaxDepth,
		ids:      make(map[Handle]uint32),
		codes:    make(map[string]uint32),
	}
}

// Identical reports whether two handles denote the same type, including
// recursive types.
func (c *Canonicalizer) Identical(a, b Handle) bool {
	if a == b {
		return true
	}
	return c.CanonicalID(a) == c.CanonicalID(b)
}

// CanonicalID returns the session-stable canonical id for a handle.
func (c *Canonicalizer) CanonicalID(h Handle) uint32 {
	if id, ok := c.ids[h]; ok {
		return id
	}
	var b strings.Builder
	w := canonWalk{c: c, stack: make(map[Handle]int)}
	w.encode(&b, h, 0)
	code := b.String()
	id, ok := c.codes[code]
	if !ok {
		id = uint32(len(c.codes) + 1)
		c.codes[code] = id
	}
	c.ids[h] = id
	return id
}

type canonWalk struct {
	c *Canonicalizer
	// stack maps in-progress handles to their first-visit order.
	stack map[Handle]int
	order int
}

func (w *canonWalk) encode(b *strings.Builder, h Handle, depth int) {
	if pos, ok := w.stack[h]; ok {
		b.WriteByte('@')
		b.WriteString(strconv.Itoa(pos))
		return
	}
	if depth > w.c.maxDepth {
		// Fail closed: a bail token unique to this handle, so identity is
		// only claimed when it is certain.
		b.WriteString("!depth:")
		b.WriteString(strconv.FormatUint(uint64(h), 10))
		return
	}
	w.stack[h] = w.order
	w.order++
	defer delete(w.stack, h)

	in := w.c.in
	switch s := in.Shape(h).(type) {
	case *ErrorShape, nil:
		b.WriteString("err")
	case *IntrinsicShape:
		b.WriteString("i:")
		b.WriteString(strconv.Itoa(int(s.Kind)))
	case *LiteralShape:
		b.WriteString("l:")
		b.WriteString(strconv.Itoa(int(s.Value.Kind)))
		b.WriteByte(':')
		switch s.Value.Kind {
		case LiteralString, LiteralBigInt:
			b.WriteString(strconv.Quote(s.Value.Str))
		case LiteralNumber:
			b.WriteString(strconv.FormatFloat(s.Value.Num, 'g', -1, 64))
		case LiteralBoolean:
			b.WriteString(strconv.FormatBool(s.Value.Bool))
		}
	case *ArrayShape:
		b.WriteString("arr(")
		w.encode(b, s.Elem, depth+1)
		b.WriteByte(')')
	case *TupleShape:
		b.WriteString("tup(")
		for _, e := range s.Elems {
			w.encode(b, e.Type, depth+1)
			b.WriteByte(';')
			b.WriteString(in.AtomName(e.Name))
			if e.Optional {
				b.WriteByte('?')
			}
			if e.Rest {
				b.WriteString("...")
			}
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case *ObjectShape:
		b.WriteString("obj(")
		b.WriteString(strconv.Itoa(int(s.Owner)))
		b.WriteByte(';')
		for _, p := range s.Props {
			w.encodeProp(b, p, depth)
		}
		w.encodeIndex(b, s.StringIndex, depth)
		w.encodeIndex(b, s.NumberIndex, depth)
		b.WriteByte(')')
	case *FunctionShape:
		b.WriteString("fn(")
		if s.IsConstructor {
			b.WriteString("new;")
		}
		w.encodeSig(b, s.Sig, depth)
		b.WriteByte(')')
	case *CallableShape:
		b.WriteString("call(")
		b.WriteString(strconv.Itoa(int(s.Owner)))
		b.WriteByte(';')
		for _, sig := range s.CallSignatures {
			w.encodeSig(b, sig, depth)
		}
		b.WriteByte('|')
		for _, sig := range s.ConstructSignatures {
			w.encodeSig(b, sig, depth)
		}
		b.WriteByte('|')
		for _, p := range s.Props {
			w.encodeProp(b, p, depth)
		}
		w.encodeIndex(b, s.StringIndex, depth)
		w.encodeIndex(b, s.NumberIndex, depth)
		b.WriteByte(')')
	case *UnionShape:
		b.WriteString("uni(")
		for _, m := range s.Members {
			w.encode(b, m, depth+1)
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case *IntersectionShape:
		b.WriteString("int(")
		for _, m := range s.Members {
			w.encode(b, m, depth+1)
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case *TypeParamShape:
		b.WriteString("par:")
		b.WriteString(strconv.Itoa(int(s.Param.ID)))
	case *ApplicationShape:
		b.WriteString("app(")
		w.encode(b, s.Base, depth+1)
		for _, a := range s.Args {
			b.WriteByte(',')
			w.encode(b, a, depth+1)
		}
		b.WriteByte(')')
	case *ConditionalShape:
		b.WriteString("cond(")
		w.encode(b, s.Check, depth+1)
		b.WriteByte(',')
		w.encode(b, s.Extends, depth+1)
		b.WriteByte(',')
		w.encode(b, s.True, depth+1)
		b.WriteByte(',')
		w.encode(b, s.False, depth+1)
		if s.Distributive {
			b.WriteString(",dist")
		}
		b.WriteByte(')')
	case *MappedShape:
		b.WriteString("map(")
		b.WriteString(strconv.Itoa(int(s.Param.ID)))
		b.WriteByte(',')
		w.encode(b, s.Constraint, depth+1)
		b.WriteByte(',')
		w.encode(b, s.NameType, depth+1)
		b.WriteByte(',')
		w.encode(b, s.Template, depth+1)
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(int(s.Readonly)))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(int(s.Optional)))
		b.WriteByte(')')
	case *IndexAccessShape:
		b.WriteString("idx(")
		w.encode(b, s.Object, depth+1)
		b.WriteByte(',')
		w.encode(b, s.Index, depth+1)
		b.WriteByte(')')
	case *KeyOfShape:
		b.WriteString("keyof(")
		w.encode(b, s.Inner, depth+1)
		b.WriteByte(')')
	case *ReadonlyShape:
		b.WriteString("ro(")
		w.encode(b, s.Inner, depth+1)
		b.WriteByte(')')
	case *NoInferShape:
		b.WriteString("noinf(")
		w.encode(b, s.Inner, depth+1)
		b.WriteByte(')')
	case *TemplateLiteralShape:
		b.WriteString("tmpl(")
		for _, sp := range s.Spans {
			if sp.IsType {
				w.encode(b, sp.Type, depth+1)
			} else {
				b.WriteString(strconv.Quote(in.AtomName(sp.Text)))
			}
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case *InferShape:
		b.WriteString("infer:")
		b.WriteString(strconv.Itoa(int(s.Param.ID)))
	case *LazyShape:
		if resolved, ok := w.c.resolver.ResolveLazy(s.Def); ok && resolved != h {
			w.encode(b, resolved, depth+1)
		} else {
			b.WriteString("lazy:")
			b.WriteString(strconv.Itoa(int(s.Def)))
		}
	case *EnumShape:
		// Enums are nominal: the definition id is the identity.
		b.WriteString("enum:")
		b.WriteString(strconv.Itoa(int(s.Def)))
	case *TypeQueryShape:
		b.WriteString("query:")
		b.WriteString(strconv.Itoa(int(s.Symbol)))
	case *UniqueSymbolShape:
		b.WriteString("usym:")
		b.WriteString(strconv.Itoa(int(s.Symbol)))
	case *ThisShape:
		b.WriteString("this")
	case *ModuleNamespaceShape:
		b.WriteString("ns:")
		b.WriteString(strconv.Itoa(int(s.Symbol)))
	case *StringIntrinsicShape:
		b.WriteString("strin:")
		b.WriteString(strconv.Itoa(int(s.Kind)))
		b.WriteByte('(')
		w.encode(b, s.Arg, depth+1)
		b.WriteByte(')')
	}
}

func (w *canonWalk) encodeProp(b *strings.Builder, p Property, depth int) {
	b.WriteString(w.c.in.AtomName(p.Name))
	b.WriteByte(':')
	w.encode(b, p.Read, depth+1)
	if p.Write != p.Read && p.Write != None {
		b.WriteByte('/')
		w.encode(b, p.Write, depth+1)
	}
	if p.Optional {
		b.WriteByte('?')
	}
	if p.Readonly {
		b.WriteByte('!')
	}
	if p.IsMethod {
		b.WriteByte('m')
	}
	b.WriteString(strconv.Itoa(int(p.Visible)))
	b.WriteString(strconv.Itoa(int(p.Parent)))
	b.WriteByte(',')
}

func (w *canonWalk) encodeIndex(b *strings.Builder, idx *IndexSignature, depth int) {
	if idx == nil {
		b.WriteString("-;")
		return
	}
	w.encode(b, idx.Value, depth+1)
	if idx.Readonly {
		b.WriteByte('!')
	}
	b.WriteByte(';')
}

func (w *canonWalk) encodeSig(b *strings.Builder, sig Signature, depth int) {
	b.WriteByte('<')
	for _, tp := range sig.TypeParams {
		b.WriteString(strconv.Itoa(int(tp.ID)))
		if tp.Constraint != None {
			b.WriteByte(':')
			w.encode(b, tp.Constraint, depth+1)
		}
		if tp.Default != None {
			b.WriteByte('=')
			w.encode(b, tp.Default, depth+1)
		}
		b.WriteByte(',')
	}
	b.WriteString(">(")
	for _, p := range sig.Params {
		if p.Rest {
			b.WriteString("...")
		}
		w.encode(b, p.Type, depth+1)
		if p.Optional {
			b.WriteByte('?')
		}
		b.WriteByte(',')
	}
	b.WriteString(")->")
	w.encode(b, sig.Return, depth+1)
	if sig.This != None {
		b.WriteString("/this:")
		w.encode(b, sig.This, depth+1)
	}
	if sig.IsMethod {
		b.WriteByte('m')
	}
	if sig.Predicate != nil {
		b.WriteString("/pred")
	}
	b.WriteByte(';')
}
