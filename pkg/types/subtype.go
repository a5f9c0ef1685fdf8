package types

// checkResult is the internal outcome of one subtype query. A detected cycle
// is coinductively true: a closed loop in the type graph (`interface List {
// next: List }`) is valid recursion. An exceeded depth bound is expansive
// recursion and is conservatively false.
type checkResult int

const (
	resFalse checkResult = iota
	resTrue
	resCycle
	resDepth
)

func (r checkResult) isTrue() bool { return r == resTrue || r == resCycle }

// SubtypeChecker answers "is source usable where target is expected" for one
// checking session. Behavior flags are explicit fields; the two legacy flags
// exist to match external compiler behavior, not a principled type theory,
// and stay configurable for that reason.
type SubtypeChecker struct {
	in       *Interner
	resolver TypeResolver
	canon    *Canonicalizer
	guard    recursionGuard

	// StrictNullChecks off means a nullish source is assignable to
	// everything.
	StrictNullChecks bool
	// StrictFunctionTypes selects contravariant function parameters;
	// methods and constructors stay bivariant regardless.
	StrictFunctionTypes bool
	// AllowVoidReturn accepts any source return type against a void
	// target return.
	AllowVoidReturn bool
	// AllowBivariantRest treats a target rest parameter of any/unknown
	// element type as matching everything.
	AllowBivariantRest bool
	// AllowBivariantParamCount skips the required-parameter arity check.
	AllowBivariantParamCount bool
	// DisableMethodBivariance makes method parameters contravariant too.
	DisableMethodBivariance bool

	tracing bool
	failure *FailureReason
}

// NewSubtypeChecker builds a checker sharing the session interner. A nil
// resolver leaves Lazy handles opaque.
func NewSubtypeChecker(in *Interner, resolver TypeResolver) *SubtypeChecker {
	if resolver == nil {
		resolver = NoopResolver{}
	}
	return &SubtypeChecker{
		in:                  in,
		resolver:            resolver,
		canon:               NewCanonicalizer(in, resolver),
		guard:               newRecursionGuard(DefaultMaxDepth),
		StrictNullChecks:    true,
		StrictFunctionTypes: true,
		AllowVoidReturn:     true,
	}
}

// Canonicalizer exposes the session canonicalizer for identity queries.
func (c *SubtypeChecker) Canonicalizer() *Canonicalizer { return c.canon }

// Reset clears per-query cycle state while preserving configuration.
func (c *SubtypeChecker) Reset() {
	c.guard.reset()
	c.failure = nil
}

// IsAssignable reports whether source may be used where target is expected.
func (c *SubtypeChecker) IsAssignable(source, target Handle) bool {
	c.Reset()
	return c.check(source, target).isTrue()
}

// fail records the first reason when tracing and returns false.
func (c *SubtypeChecker) fail(r *FailureReason) checkResult {
	if c.tracing && c.failure == nil {
		c.failure = r
	}
	return resFalse
}

// probe runs a speculative check whose failure reason must not leak into the
// final explanation (union members, bivariant second directions).
func (c *SubtypeChecker) probe(source, target Handle) checkResult {
	if !c.tracing {
		return c.check(source, target)
	}
	saved := c.failure
	res := c.check(source, target)
	c.failure = saved
	return res
}

// checkNested runs a check and captures its reason separately so the caller
// can wrap it.
func (c *SubtypeChecker) checkNested(source, target Handle) (checkResult, *FailureReason) {
	if !c.tracing {
		return c.check(source, target), nil
	}
	saved := c.failure
	c.failure = nil
	res := c.check(source, target)
	nested := c.failure
	c.failure = saved
	return res, nested
}

func (c *SubtypeChecker) resolveLazy(h Handle) Handle {
	if lazy, ok := c.in.Shape(h).(*LazyShape); ok {
		if resolved, ok := c.resolver.ResolveLazy(lazy.Def); ok {
			return resolved
		}
	}
	return h
}

func (c *SubtypeChecker) check(source, target Handle) checkResult {
	// Identical handles are identical types (hash-consing).
	if source == target {
		return resTrue
	}
	// Error absorbs in every comparison so one unresolved reference never
	// cascades into unrelated failures.
	if source == ErrorType || target == ErrorType {
		return resTrue
	}
	if !c.StrictNullChecks && source.IsNullish() {
		return resTrue
	}
	if source == Any {
		return resTrue
	}
	if target == Any || target == Unknown {
		return resTrue
	}
	if source == Never {
		return resTrue
	}

	pair := handlePair{s: source, t: target}
	// A reversed in-flight pair means bivariant cross-recursion: same
	// closed loop, other direction.
	if c.guard.visiting.Contains(handlePair{s: target, t: source}) {
		return resCycle
	}
	switch c.guard.enter(pair) {
	case recursionCycle:
		return resCycle
	case recursionDepthExceeded:
		return resDepth
	}
	defer c.guard.leave(pair)

	// Lazy sides resolve to structural form before all further rules.
	rs, rt := c.resolveLazy(source), c.resolveLazy(target)
	if rs != source || rt != target {
		return c.check(rs, rt)
	}

	// Cyclic structural identity: hash-consing cannot see through cycles,
	// the canonicalizer can, and its cache keeps repeats O(1).
	if c.canon.Identical(source, target) {
		return resTrue
	}

	if target == Never {
		return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target})
	}

	return c.checkInner(source, target)
}

func (c *SubtypeChecker) checkInner(source, target Handle) checkResult {
	in := c.in

	// Union source: every member must fit the target.
	if s, ok := in.Shape(source).(*UnionShape); ok {
		for _, m := range s.Members {
			res, nested := c.checkNested(m, target)
			if !res.isTrue() {
				return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target, Nested: nested})
			}
		}
		return resTrue
	}

	// Union target: any member may fit. Identity pre-scan first.
	if t, ok := in.Shape(target).(*UnionShape); ok {
		for _, m := range t.Members {
			if source == m {
				return resTrue
			}
		}
		for _, m := range t.Members {
			if c.probe(source, m).isTrue() {
				return resTrue
			}
		}
		// A constrained type parameter may fit through its constraint.
		if sp, ok := in.Shape(source).(*TypeParamShape); ok && sp.Param.Constraint != None {
			if c.probe(sp.Param.Constraint, target).isTrue() {
				return resTrue
			}
		}
		// An intersection source may fit through any member.
		if si, ok := in.Shape(source).(*IntersectionShape); ok {
			for _, m := range si.Members {
				if c.probe(m, target).isTrue() {
					return resTrue
				}
			}
		}
		return c.fail(&FailureReason{
			Kind:         ReasonNoUnionMember,
			Source:       source,
			Target:       target,
			UnionMembers: append([]Handle(nil), t.Members...),
		})
	}

	// Intersection target: every member must admit the source.
	if t, ok := in.Shape(target).(*IntersectionShape); ok {
		for _, m := range t.Members {
			res, nested := c.checkNested(source, m)
			if !res.isTrue() {
				return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target, Nested: nested})
			}
		}
		return resTrue
	}

	// Intersection source: any member may fit.
	if s, ok := in.Shape(source).(*IntersectionShape); ok {
		for _, m := range s.Members {
			if c.probe(m, target).isTrue() {
				return resTrue
			}
		}
		return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target})
	}

	// Type parameter source: decided by its constraint.
	if s, ok := in.Shape(source).(*TypeParamShape); ok {
		if s.Param.Constraint != None {
			return c.check(s.Param.Constraint, target)
		}
		return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target})
	}
	// A concrete type is never assignable to an opaque type parameter:
	// the parameter could be instantiated as anything satisfying its
	// constraint.
	if _, ok := in.Shape(target).(*TypeParamShape); ok {
		return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target})
	}

	sShape := in.Shape(source)
	tShape := in.Shape(target)

	switch t := tShape.(type) {
	case *IntrinsicShape:
		switch s := sShape.(type) {
		case *IntrinsicShape:
			return c.checkIntrinsic(s.Kind, t.Kind, source, target)
		case *LiteralShape:
			if s.Value.IntrinsicFor() == target {
				return resTrue
			}
			return c.fail(&FailureReason{Kind: ReasonIntrinsicMismatch, Source: source, Target: target})
		case *EnumShape:
			// Enum members stay structurally assignable to their
			// primitive.
			return c.check(s.Member, target)
		case *UniqueSymbolShape:
			if t.Kind == KindSymbol {
				return resTrue
			}
		case *TemplateLiteralShape:
			if t.Kind == KindString {
				return resTrue
			}
		case *ObjectShape, *CallableShape, *ArrayShape, *TupleShape, *FunctionShape:
			if t.Kind == KindObject {
				return resTrue
			}
		}
		return c.fail(&FailureReason{Kind: ReasonIntrinsicMismatch, Source: source, Target: target})

	case *LiteralShape:
		// Identical literals were caught by handle equality; an intrinsic
		// source never narrows into a literal.
		return c.fail(&FailureReason{Kind: ReasonIntrinsicMismatch, Source: source, Target: target})

	case *TemplateLiteralShape:
		if s, ok := sShape.(*LiteralShape); ok && s.Value.Kind == LiteralString {
			if c.matchTemplateLiteral(s.Value.Str, t.Spans) {
				return resTrue
			}
		}
		return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target})

	case *EnumShape:
		if s, ok := sShape.(*EnumShape); ok && s.Def == t.Def {
			return resTrue
		}
		// Enums are nominal: equal member shapes do not make two enums
		// compatible.
		return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target})
	}

	switch s := sShape.(type) {
	case *ArrayShape:
		switch t := tShape.(type) {
		case *ArrayShape:
			res, nested := c.checkNested(s.Elem, t.Elem)
			if res.isTrue() {
				return resTrue
			}
			return c.fail(&FailureReason{Kind: ReasonArrayElement, Source: s.Elem, Target: t.Elem, Nested: nested})
		case *TupleShape:
			return c.checkArrayToTuple(s, t, source, target)
		case *ObjectShape, *CallableShape:
			return c.checkViaArrayInterface(s.Elem, target, source)
		case *ReadonlyShape:
			return c.check(source, t.Inner)
		}
	case *TupleShape:
		switch t := tShape.(type) {
		case *TupleShape:
			return c.checkTuple(s, t, source, target)
		case *ArrayShape:
			return c.checkTupleToArray(s, t, source, target)
		case *ObjectShape, *CallableShape:
			elems := make([]Handle, 0, len(s.Elems))
			for _, e := range s.Elems {
				elems = append(elems, e.Type)
			}
			return c.checkViaArrayInterface(in.Union(elems), target, source)
		case *ReadonlyShape:
			return c.check(source, t.Inner)
		}
	case *ReadonlyShape:
		switch t := tShape.(type) {
		case *ReadonlyShape:
			return c.check(s.Inner, t.Inner)
		case *ArrayShape, *TupleShape:
			// A readonly array never satisfies a mutable one.
			return c.fail(&FailureReason{Kind: ReasonReadonly, Source: source, Target: target})
		default:
			return c.check(s.Inner, target)
		}
	case *ObjectShape:
		switch t := tShape.(type) {
		case *ObjectShape:
			return c.checkObject(s, t, source, target)
		case *CallableShape:
			return c.checkObjectToCallable(s, t, source, target)
		case *ArrayShape:
			// Compare against the Array interface instantiated with the
			// target element, the same structural path as the reverse
			// direction.
			body, elem, ok := c.resolver.ArrayInterface()
			if ok {
				inst := Instantiate(in, body, Substitution{elem: t.Elem})
				return c.check(source, inst)
			}
		}
	case *CallableShape:
		switch t := tShape.(type) {
		case *CallableShape:
			return c.checkCallable(s, t, source, target)
		case *FunctionShape:
			return c.checkCallableToFunction(s, t, source, target)
		case *ObjectShape:
			return c.checkCallableToObject(s, t, source, target)
		}
	case *FunctionShape:
		switch t := tShape.(type) {
		case *FunctionShape:
			return c.checkFunction(s, t, source, target)
		case *CallableShape:
			return c.checkFunctionToCallable(s, t, source, target)
		case *ObjectShape:
			// A bare function satisfies an object type with no required
			// members (all-optional or empty).
			return c.checkObject(&ObjectShape{}, t, source, target)
		}
	case *ApplicationShape:
		if resolved, ok := ResolveApplication(in, c.resolver, source); ok {
			return c.check(resolved, target)
		}
		if t, ok := tShape.(*ApplicationShape); ok {
			if resolved, ok := ResolveApplication(in, c.resolver, target); ok {
				return c.check(source, resolved)
			}
			return c.checkApplicationPair(s, t, source, target)
		}
	case *ConditionalShape:
		if t, ok := tShape.(*ConditionalShape); ok {
			return c.checkConditionalPair(s, t, source, target)
		}
		// Both branches fitting the target is sufficient regardless of
		// which one evaluation picks.
		if c.probe(s.True, target).isTrue() && c.probe(s.False, target).isTrue() {
			return resTrue
		}
	case *EnumShape:
		return c.check(s.Member, target)
	}

	if _, ok := tShape.(*ApplicationShape); ok {
		if resolved, ok := ResolveApplication(in, c.resolver, target); ok {
			return c.check(source, resolved)
		}
	}
	if t, ok := tShape.(*ConditionalShape); ok {
		// A source fitting both branches fits whichever branch evaluation
		// picks.
		if c.probe(source, t.True).isTrue() && c.probe(source, t.False).isTrue() {
			return resTrue
		}
	}

	return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target})
}

func (c *SubtypeChecker) checkIntrinsic(s, t IntrinsicKind, source, target Handle) checkResult {
	if s == t {
		return resTrue
	}
	// undefined narrows into void.
	if s == KindUndefined && t == KindVoid {
		return resTrue
	}
	return c.fail(&FailureReason{Kind: ReasonIntrinsicMismatch, Source: source, Target: target})
}

// checkViaArrayInterface compares an array-like source against an object-like
// target by instantiating the built-in Array interface with the element type
// and recursing structurally, instead of a hardcoded array rule.
func (c *SubtypeChecker) checkViaArrayInterface(elem, target, source Handle) checkResult {
	body, param, ok := c.resolver.ArrayInterface()
	if !ok {
		return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target})
	}
	inst := Instantiate(c.in, body, Substitution{param: elem})
	return c.check(inst, target)
}

func (c *SubtypeChecker) checkApplicationPair(s, t *ApplicationShape, source, target Handle) checkResult {
	if s.Base != t.Base || len(s.Args) != len(t.Args) {
		return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target})
	}
	for i := range s.Args {
		if !c.probe(s.Args[i], t.Args[i]).isTrue() {
			return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target})
		}
	}
	return resTrue
}

func (c *SubtypeChecker) checkConditionalPair(s, t *ConditionalShape, source, target Handle) checkResult {
	if c.canon.Identical(s.Check, t.Check) && c.canon.Identical(s.Extends, t.Extends) {
		if c.probe(s.True, t.True).isTrue() && c.probe(s.False, t.False).isTrue() {
			return resTrue
		}
	}
	return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target})
}
