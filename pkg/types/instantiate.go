package types

// Substitution maps bound type-parameter identities to concrete handles.
// Parameter identities are allocated per lexical scope during lowering, so
// substitution never needs capture-avoidance renaming.
type Substitution map[ParamID]Handle

// Instantiate rewrites a handle, replacing bound type parameters throughout
// its shape. Every result is interned, so instantiating with an empty or
// irrelevant substitution returns the input handle unchanged.
//
// Used to resolve Application(base, args) against a concrete shape, expand a
// mapped type for a concrete key, and resolve infer bindings into conditional
// branches.
func Instantiate(in *Interner, h Handle, sub Substitution) Handle {
	if len(sub) == 0 {
		return h
	}
	inst := instantiator{in: in, sub: sub, maxDepth: DefaultMaxDepth}
	return inst.walk(h, 0)
}

type instantiator struct {
	in       *Interner
	sub      Substitution
	maxDepth int
}

func (t *instantiator) walk(h Handle, depth int) Handle {
	if depth > t.maxDepth {
		return ErrorType
	}
	in := t.in
	switch s := in.Shape(h).(type) {
	case *TypeParamShape:
		if r, ok := t.sub[s.Param.ID]; ok {
			return r
		}
		return h
	case *InferShape:
		if r, ok := t.sub[s.Param.ID]; ok {
			return r
		}
		return h
	case *ArrayShape:
		return in.Array(t.walk(s.Elem, depth+1))
	case *TupleShape:
		elems := make([]TupleElem, len(s.Elems))
		for i, e := range s.Elems {
			e.Type = t.walk(e.Type, depth+1)
			elems[i] = e
		}
		return in.Tuple(elems)
	case *ObjectShape:
		props := make([]Property, len(s.Props))
		for i, p := range s.Props {
			p.Read = t.walk(p.Read, depth+1)
			if p.Write != None {
				p.Write = t.walk(p.Write, depth+1)
			}
			props[i] = p
		}
		return in.ObjectOf(props, t.walkIndex(s.StringIndex, depth), t.walkIndex(s.NumberIndex, depth), s.Owner)
	case *FunctionShape:
		if s.IsConstructor {
			return in.Constructor(t.walkSig(s.Sig, depth))
		}
		return in.Function(t.walkSig(s.Sig, depth))
	case *CallableShape:
		out := CallableShape{Owner: s.Owner}
		for _, sig := range s.CallSignatures {
			out.CallSignatures = append(out.CallSignatures, t.walkSig(sig, depth))
		}
		for _, sig := range s.ConstructSignatures {
			out.ConstructSignatures = append(out.ConstructSignatures, t.walkSig(sig, depth))
		}
		for _, p := range s.Props {
			p.Read = t.walk(p.Read, depth+1)
			if p.Write != None {
				p.Write = t.walk(p.Write, depth+1)
			}
			out.Props = append(out.Props, p)
		}
		out.StringIndex = t.walkIndex(s.StringIndex, depth)
		out.NumberIndex = t.walkIndex(s.NumberIndex, depth)
		return in.Callable(out)
	case *UnionShape:
		members := make([]Handle, len(s.Members))
		for i, m := range s.Members {
			members[i] = t.walk(m, depth+1)
		}
		return in.Union(members)
	case *IntersectionShape:
		members := make([]Handle, len(s.Members))
		for i, m := range s.Members {
			members[i] = t.walk(m, depth+1)
		}
		return in.Intersection(members)
	case *ApplicationShape:
		args := make([]Handle, len(s.Args))
		for i, a := range s.Args {
			args[i] = t.walk(a, depth+1)
		}
		return in.Application(t.walk(s.Base, depth+1), args)
	case *ConditionalShape:
		return in.Conditional(
			t.walk(s.Check, depth+1),
			t.walk(s.Extends, depth+1),
			t.walk(s.True, depth+1),
			t.walk(s.False, depth+1),
			s.Distributive,
		)
	case *MappedShape:
		out := *s
		// The mapped type's own loop parameter stays bound; everything
		// else substitutes.
		out.Constraint = t.walk(s.Constraint, depth+1)
		if s.NameType != None {
			out.NameType = t.walk(s.NameType, depth+1)
		}
		out.Template = t.walk(s.Template, depth+1)
		if s.Param.Constraint != None {
			out.Param.Constraint = t.walk(s.Param.Constraint, depth+1)
		}
		return in.Mapped(out)
	case *IndexAccessShape:
		return in.IndexAccess(t.walk(s.Object, depth+1), t.walk(s.Index, depth+1))
	case *KeyOfShape:
		return in.KeyOf(t.walk(s.Inner, depth+1))
	case *ReadonlyShape:
		return in.Readonly(t.walk(s.Inner, depth+1))
	case *NoInferShape:
		return in.NoInfer(t.walk(s.Inner, depth+1))
	case *TemplateLiteralShape:
		spans := make([]TemplateSpan, len(s.Spans))
		for i, sp := range s.Spans {
			if sp.IsType {
				sp.Type = t.walk(sp.Type, depth+1)
			}
			spans[i] = sp
		}
		return in.TemplateLiteral(spans)
	case *EnumShape:
		return h
	case *StringIntrinsicShape:
		return in.StringIntrinsic(s.Kind, t.walk(s.Arg, depth+1))
	default:
		// Intrinsics, literals, lazy refs, queries, unique symbols, this,
		// namespaces and the error sentinel contain no parameters.
		return h
	}
}

func (t *instantiator) walkIndex(idx *IndexSignature, depth int) *IndexSignature {
	if idx == nil {
		return nil
	}
	return &IndexSignature{Value: t.walk(idx.Value, depth+1), Readonly: idx.Readonly}
}

func (t *instantiator) walkSig(sig Signature, depth int) Signature {
	out := sig
	out.TypeParams = make([]TypeParam, len(sig.TypeParams))
	for i, tp := range sig.TypeParams {
		if tp.Constraint != None {
			tp.Constraint = t.walk(tp.Constraint, depth+1)
		}
		if tp.Default != None {
			tp.Default = t.walk(tp.Default, depth+1)
		}
		out.TypeParams[i] = tp
	}
	out.Params = make([]Param, len(sig.Params))
	for i, p := range sig.Params {
		p.Type = t.walk(p.Type, depth+1)
		out.Params[i] = p
	}
	if sig.This != None {
		out.This = t.walk(sig.This, depth+1)
	}
	out.Return = t.walk(sig.Return, depth+1)
	if sig.Predicate != nil {
		pred := *sig.Predicate
		if pred.Type != None {
			pred.Type = t.walk(pred.Type, depth+1)
		}
		out.Predicate = &pred
	}
	return out
}

// ResolveApplication expands an Application handle against its base's
// definition, substituting argument handles for the definition's parameters
// (missing arguments fall back to parameter defaults, then to their
// constraints, then to error). Returns the input handle when the base cannot
// be resolved.
func ResolveApplication(in *Interner, resolver TypeResolver, h Handle) (Handle, bool) {
	app, ok := in.Shape(h).(*ApplicationShape)
	if !ok {
		return h, false
	}
	lazy, ok := in.Shape(app.Base).(*LazyShape)
	if !ok {
		return h, false
	}
	body, ok := resolver.ResolveLazy(lazy.Def)
	if !ok {
		return h, false
	}
	params := resolver.DefinitionParams(lazy.Def)
	if len(params) == 0 {
		return body, true
	}
	sub := make(Substitution, len(params))
	for i, tp := range params {
		switch {
		case i < len(app.Args):
			sub[tp.ID] = app.Args[i]
		case tp.Default != None:
			sub[tp.ID] = tp.Default
		case tp.Constraint != None:
			sub[tp.ID] = tp.Constraint
		default:
			sub[tp.ID] = ErrorType
		}
	}
	return Instantiate(in, body, sub), true
}

// ExpandMappedForKey instantiates a mapped type's template for one concrete
// key, yielding the property type the expansion would produce for that key.
func ExpandMappedForKey(in *Interner, m *MappedShape, key Handle) Handle {
	return Instantiate(in, m.Template, Substitution{m.Param.ID: key})
}
