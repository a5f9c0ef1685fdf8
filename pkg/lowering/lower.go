// Package lowering converts parsed type-syntax nodes into interned type
// handles. It is pure over its inputs: name and symbol resolution is injected,
// and anything that fails to resolve lowers to the error sentinel rather than
// aborting.
package lowering

import (
	"gradient/typesys-go/pkg/typenodes"
	"gradient/typesys-go/pkg/types"
)

// Resolver supplies declaration and symbol lookups to the lowerer. All three
// lookups report ok=false for unknown names; the lowerer recovers with the
// error sentinel.
type Resolver interface {
	// DefinitionForName resolves a type name visible at the lowering site.
	DefinitionForName(name string) (types.DefID, bool)
	// DefinitionForNode resolves through the parse-local node index when
	// name lookup fails (merged declarations, aliased imports).
	DefinitionForNode(nodeIndex int) (types.DefID, bool)
	// SymbolForName resolves a value binding for `typeof` queries.
	SymbolForName(name string) (types.SymbolID, bool)
}

// NoopResolver resolves nothing.
type NoopResolver struct{}

func (NoopResolver) DefinitionForName(string) (types.DefID, bool) { return 0, false }
func (NoopResolver) DefinitionForNode(int) (types.DefID, bool)    { return 0, false }
func (NoopResolver) SymbolForName(string) (types.SymbolID, bool)  { return 0, false }

// MergedResolver consults Primary, then Fallback.
type MergedResolver struct {
	Primary  Resolver
	Fallback Resolver
}

func (m MergedResolver) DefinitionForName(name string) (types.DefID, bool) {
	if d, ok := m.Primary.DefinitionForName(name); ok {
		return d, true
	}
	return m.Fallback.DefinitionForName(name)
}

func (m MergedResolver) DefinitionForNode(idx int) (types.DefID, bool) {
	if d, ok := m.Primary.DefinitionForNode(idx); ok {
		return d, true
	}
	return m.Fallback.DefinitionForNode(idx)
}

func (m MergedResolver) SymbolForName(name string) (types.SymbolID, bool) {
	if s, ok := m.Primary.SymbolForName(name); ok {
		return s, true
	}
	return m.Fallback.SymbolForName(name)
}

// Lowerer lowers type nodes into one interner session. Type-parameter scopes
// nest lexically; parameter identities are allocated here, so substitution
// downstream never needs renaming.
type Lowerer struct {
	in       *types.Interner
	resolver Resolver
	scopes   []map[string]types.Handle
	maxDepth int

	nextParam  types.ParamID
	nextUnique types.SymbolID
}

// NewLowerer builds a lowerer over the session interner. A nil resolver
// resolves nothing.
func NewLowerer(in *types.Interner, resolver Resolver) *Lowerer {
	if resolver == nil {
		resolver = NoopResolver{}
	}
	return &Lowerer{
		in:         in,
		resolver:   resolver,
		maxDepth:   types.DefaultMaxDepth,
		nextParam:  1,
		nextUnique: 1,
	}
}

// Interner exposes the session interner.
func (l *Lowerer) Interner() *types.Interner { return l.in }

// Lower converts one type node to a handle. It never fails: malformed or
// unresolvable input lowers to the error sentinel.
func (l *Lowerer) Lower(n typenodes.Node) types.Handle {
	return l.lower(n, 0)
}

func (l *Lowerer) lower(n typenodes.Node, depth int) types.Handle {
	if n == nil || depth > l.maxDepth {
		return types.ErrorType
	}
	in := l.in
	switch n := n.(type) {
	case *typenodes.Reference:
		return l.lowerReference(n, depth)
	case *typenodes.Literal:
		return l.lowerLiteral(n.Lit)
	case *typenodes.ArrayType:
		return in.Array(l.lower(n.Element, depth+1))
	case *typenodes.TupleType:
		elems := make([]types.TupleElem, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = types.TupleElem{
				Type:     l.lower(e.Type, depth+1),
				Name:     l.atomOrZero(e.Name),
				Optional: e.Optional,
				Rest:     e.Rest,
			}
		}
		return in.Tuple(elems)
	case *typenodes.ObjectType:
		return l.lowerObject(n, depth)
	case *typenodes.FunctionType:
		return in.Function(l.lowerSignature(n, false, depth))
	case *typenodes.ConstructorType:
		// Constructor types become a callable with one construct
		// signature, so `new (...)` and class statics unify downstream.
		return in.Callable(types.CallableShape{
			ConstructSignatures: []types.Signature{l.lowerSignature(n.Fn, false, depth)},
		})
	case *typenodes.UnionType:
		members := make([]types.Handle, len(n.Members))
		for i, m := range n.Members {
			members[i] = l.lower(m, depth+1)
		}
		return in.Union(members)
	case *typenodes.IntersectionType:
		members := make([]types.Handle, len(n.Members))
		for i, m := range n.Members {
			members[i] = l.lower(m, depth+1)
		}
		return in.Intersection(members)
	case *typenodes.ConditionalType:
		return l.lowerConditional(n, depth)
	case *typenodes.InferType:
		// An infer binding outside a conditional's extends clause is
		// malformed input.
		if h, ok := l.lookup(n.Name); ok {
			return h
		}
		return types.ErrorType
	case *typenodes.MappedType:
		return l.lowerMapped(n, depth)
	case *typenodes.IndexedAccessType:
		return in.IndexAccess(l.lower(n.Object, depth+1), l.lower(n.Index, depth+1))
	case *typenodes.TypeOperator:
		switch n.Op {
		case typenodes.OpKeyOf:
			return in.KeyOf(l.lower(n.Inner, depth+1))
		case typenodes.OpReadonly:
			return in.Readonly(l.lower(n.Inner, depth+1))
		default:
			sym := l.nextUnique
			l.nextUnique++
			return in.UniqueSymbol(sym)
		}
	case *typenodes.TemplateLiteralType:
		return l.lowerTemplate(n, depth)
	case *typenodes.TypeQuery:
		if sym, ok := l.resolver.SymbolForName(n.Name); ok {
			return in.TypeQuery(sym)
		}
		return types.ErrorType
	case *typenodes.ThisType:
		return in.This()
	case *typenodes.ParenType:
		return l.lower(n.Inner, depth)
	default:
		return types.ErrorType
	}
}

func (l *Lowerer) lowerConditional(n *typenodes.ConditionalType, depth int) types.Handle {
	check := l.lower(n.Check, depth+1)

	// Distribution over union check types applies only when the check is a
	// bare, unapplied type parameter in the source.
	distributive := false
	if ref, ok := unwrapParens(n.Check).(*typenodes.Reference); ok && len(ref.Args) == 0 {
		if _, isParam := l.in.Shape(check).(*types.TypeParamShape); isParam {
			distributive = true
		}
	}

	// Infer bindings declared in the extends clause scope over the extends
	// clause and the true branch only.
	l.pushScope()
	extends := l.lowerExtends(n.Extends, depth+1)
	whenTrue := l.lower(n.True, depth+1)
	l.popScope()
	whenFalse := l.lower(n.False, depth+1)

	return l.in.Conditional(check, extends, whenTrue, whenFalse, distributive)
}

// lowerExtends lowers a conditional's extends clause, binding each `infer`
// occurrence as a fresh parameter in the current scope. Repeated mentions of
// one name share a binding.
func (l *Lowerer) lowerExtends(n typenodes.Node, depth int) types.Handle {
	if inf, ok := unwrapParens(n).(*typenodes.InferType); ok {
		return l.bindInfer(inf, depth)
	}
	switch n := n.(type) {
	case *typenodes.ParenType:
		return l.lowerExtends(n.Inner, depth)
	case *typenodes.ArrayType:
		return l.in.Array(l.lowerExtends(n.Element, depth+1))
	case *typenodes.TupleType:
		elems := make([]types.TupleElem, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = types.TupleElem{
				Type:     l.lowerExtends(e.Type, depth+1),
				Name:     l.atomOrZero(e.Name),
				Optional: e.Optional,
				Rest:     e.Rest,
			}
		}
		return l.in.Tuple(elems)
	case *typenodes.UnionType:
		members := make([]types.Handle, len(n.Members))
		for i, m := range n.Members {
			members[i] = l.lowerExtends(m, depth+1)
		}
		return l.in.Union(members)
	case *typenodes.IntersectionType:
		members := make([]types.Handle, len(n.Members))
		for i, m := range n.Members {
			members[i] = l.lowerExtends(m, depth+1)
		}
		return l.in.Intersection(members)
	case *typenodes.Reference:
		if len(n.Args) > 0 {
			// Lower arguments through the infer-aware path so
			// `Box<infer T>` binds.
			rewritten := &typenodes.Reference{Name: n.Name, NodeIndex: n.NodeIndex}
			args := make([]types.Handle, len(n.Args))
			for i, a := range n.Args {
				args[i] = l.lowerExtends(a, depth+1)
			}
			base := l.lowerReference(rewritten, depth)
			if _, ok := l.in.Shape(base).(*types.LazyShape); ok {
				return l.in.Application(base, args)
			}
			// Non-deferred bases (Array, intrinsics) rebuild from the
			// already-lowered arguments.
			return l.applyBuiltin(n.Name, args)
		}
		return l.lowerReference(n, depth)
	case *typenodes.FunctionType:
		return l.in.Function(l.lowerSignatureWith(n, depth, l.lowerExtends))
	case *typenodes.ObjectType:
		return l.lowerObjectWith(n, depth, l.lowerExtends)
	default:
		return l.lower(n, depth)
	}
}

func (l *Lowerer) bindInfer(inf *typenodes.InferType, depth int) types.Handle {
	if h, ok := l.lookup(inf.Name); ok {
		return h
	}
	tp := types.TypeParam{
		Name: l.in.Atom(inf.Name),
		ID:   l.allocParam(),
	}
	if inf.Constraint != nil {
		tp.Constraint = l.lower(inf.Constraint, depth+1)
	}
	h := l.in.Infer(tp)
	l.declare(inf.Name, h)
	return h
}

// applyBuiltin re-applies arguments to the handful of references that lower
// without a Lazy base.
func (l *Lowerer) applyBuiltin(name string, args []types.Handle) types.Handle {
	arg := types.Any
	if len(args) > 0 {
		arg = args[0]
	}
	switch name {
	case "Array":
		return l.in.Array(arg)
	case "ReadonlyArray":
		return l.in.Readonly(l.in.Array(arg))
	case "NoInfer":
		return l.in.NoInfer(arg)
	case "Uppercase":
		return l.in.StringIntrinsic(types.IntrinsicUppercase, arg)
	case "Lowercase":
		return l.in.StringIntrinsic(types.IntrinsicLowercase, arg)
	case "Capitalize":
		return l.in.StringIntrinsic(types.IntrinsicCapitalize, arg)
	case "Uncapitalize":
		return l.in.StringIntrinsic(types.IntrinsicUncapitalize, arg)
	default:
		return types.ErrorType
	}
}

func (l *Lowerer) lowerMapped(n *typenodes.MappedType, depth int) types.Handle {
	// The constraint is lowered outside the key scope: `K in keyof T`
	// cannot see K.
	constraint := l.lower(n.Constraint, depth+1)

	tp := types.TypeParam{
		Name:       l.in.Atom(n.ParamName),
		ID:         l.allocParam(),
		Constraint: constraint,
	}
	l.pushScope()
	l.declare(n.ParamName, l.in.TypeParameter(tp))

	var nameType types.Handle
	if n.NameType != nil {
		nameType = l.lower(n.NameType, depth+1)
	}
	template := l.lower(n.Template, depth+1)
	l.popScope()

	return l.in.Mapped(types.MappedShape{
		Param:      tp,
		Constraint: constraint,
		NameType:   nameType,
		Template:   template,
		Readonly:   mapModifier(n.Readonly),
		Optional:   mapModifier(n.Optional),
	})
}

func mapModifier(m typenodes.Modifier) types.MappedModifier {
	switch m {
	case typenodes.ModifierAdd:
		return types.MappedAdd
	case typenodes.ModifierRemove:
		return types.MappedRemove
	default:
		return types.MappedNone
	}
}

func (l *Lowerer) lowerTemplate(n *typenodes.TemplateLiteralType, depth int) types.Handle {
	var spans []types.TemplateSpan
	if n.Head != "" {
		spans = append(spans, types.TemplateSpan{Text: l.in.Atom(n.Head)})
	}
	for _, sp := range n.Spans {
		spans = append(spans, types.TemplateSpan{IsType: true, Type: l.lower(sp.Type, depth+1)})
		if sp.Text != "" {
			spans = append(spans, types.TemplateSpan{Text: l.in.Atom(sp.Text)})
		}
	}
	return l.in.TemplateLiteral(spans)
}

func unwrapParens(n typenodes.Node) typenodes.Node {
	for {
		p, ok := n.(*typenodes.ParenType)
		if !ok {
			return n
		}
		n = p.Inner
	}
}

// Scope management.

func (l *Lowerer) pushScope() {
	l.scopes = append(l.scopes, make(map[string]types.Handle))
}

func (l *Lowerer) popScope() {
	l.scopes = l.scopes[:len(l.scopes)-1]
}

func (l *Lowerer) declare(name string, h types.Handle) {
	l.scopes[len(l.scopes)-1][name] = h
}

func (l *Lowerer) lookup(name string) (types.Handle, bool) {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if h, ok := l.scopes[i][name]; ok {
			return h, true
		}
	}
	return types.None, false
}

func (l *Lowerer) allocParam() types.ParamID {
	id := l.nextParam
	l.nextParam++
	return id
}

func (l *Lowerer) atomOrZero(name string) types.Atom {
	if name == "" {
		return 0
	}
	return l.in.Atom(name)
}
