package types

import "strconv"

func (c *SubtypeChecker) checkFunction(s, t *FunctionShape, source, target Handle) checkResult {
	if s.IsConstructor != t.IsConstructor {
		return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target})
	}
	return c.checkSignature(s.Sig, t.Sig, source, target)
}

// checkSignatureNested runs a signature check capturing its reason separately
// so overload resolution can report the best candidate's failure.
func (c *SubtypeChecker) checkSignatureNested(ssig, tsig Signature, source, target Handle) (checkResult, *FailureReason) {
	if !c.tracing {
		return c.checkSignature(ssig, tsig, source, target), nil
	}
	saved := c.failure
	c.failure = nil
	res := c.checkSignature(ssig, tsig, source, target)
	nested := c.failure
	c.failure = saved
	return res, nested
}

// checkSignature relates one source signature to one target signature:
// parameters contravariant under strict function types (bivariant for
// methods), returns covariant, `this` contravariant.
func (c *SubtypeChecker) checkSignature(ssig, tsig Signature, source, target Handle) checkResult {
	ssig, tsig = c.normalizeGenerics(ssig, tsig)

	if !c.AllowBivariantParamCount {
		sReq := requiredParamCount(ssig)
		if !hasRestParam(tsig) && sReq > len(tsig.Params) {
			return c.fail(&FailureReason{
				Kind: ReasonTooManyParameters, Source: source, Target: target,
				SourceCount: sReq, TargetCount: len(tsig.Params),
			})
		}
	}

	if !c.bivariantRestEscape(tsig) {
		if res := c.checkParams(ssig, tsig, source, target); !res.isTrue() {
			return res
		}
	}

	// `this` is a parameter and compares contravariantly.
	if tsig.This != None && ssig.This != None {
		res, nested := c.checkNested(tsig.This, ssig.This)
		if !res.isTrue() {
			return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target, Nested: nested})
		}
	}

	if tsig.Predicate != nil {
		sp := ssig.Predicate
		if sp == nil || sp.Asserts != tsig.Predicate.Asserts || sp.Target != tsig.Predicate.Target {
			return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target})
		}
		if tsig.Predicate.Type != None {
			if !c.probe(sp.Type, tsig.Predicate.Type).isTrue() {
				return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target})
			}
		}
	}

	// A void-returning target accepts any source return: the caller has
	// promised to ignore the result.
	if tsig.Return == Void && c.AllowVoidReturn {
		return resTrue
	}
	res, nested := c.checkNested(ssig.Return, tsig.Return)
	if !res.isTrue() {
		return c.fail(&FailureReason{
			Kind: ReasonReturnType, Source: ssig.Return, Target: tsig.Return, Nested: nested,
		})
	}
	return resTrue
}

// normalizeGenerics aligns two generic signatures for comparison. Same-arity
// type parameter lists alpha-rename the source's parameters to the target's;
// a one-sided generic erases its own parameters to any.
func (c *SubtypeChecker) normalizeGenerics(ssig, tsig Signature) (Signature, Signature) {
	switch {
	case len(ssig.TypeParams) == 0 && len(tsig.TypeParams) == 0:
		return ssig, tsig
	case len(ssig.TypeParams) == len(tsig.TypeParams):
		sub := make(Substitution, len(ssig.TypeParams))
		for i, tp := range ssig.TypeParams {
			sub[tp.ID] = c.in.TypeParameter(tsig.TypeParams[i])
		}
		inst := instantiator{in: c.in, sub: sub, maxDepth: DefaultMaxDepth}
		return inst.walkSig(ssig, 0), tsig
	default:
		return c.eraseTypeParams(ssig), c.eraseTypeParams(tsig)
	}
}

func (c *SubtypeChecker) eraseTypeParams(sig Signature) Signature {
	if len(sig.TypeParams) == 0 {
		return sig
	}
	sub := make(Substitution, len(sig.TypeParams))
	for _, tp := range sig.TypeParams {
		sub[tp.ID] = Any
	}
	inst := instantiator{in: c.in, sub: sub, maxDepth: DefaultMaxDepth}
	out := inst.walkSig(sig, 0)
	out.TypeParams = nil
	return out
}

func requiredParamCount(sig Signature) int {
	n := 0
	for _, p := range sig.Params {
		if !p.Optional && !p.Rest {
			n++
		}
	}
	return n
}

func hasRestParam(sig Signature) bool {
	return len(sig.Params) > 0 && sig.Params[len(sig.Params)-1].Rest
}

// bivariantRestEscape reproduces a legacy rule: a target rest parameter of
// any/unknown element type matches every parameter list.
func (c *SubtypeChecker) bivariantRestEscape(tsig Signature) bool {
	if !c.AllowBivariantRest || !hasRestParam(tsig) {
		return false
	}
	elem, ok := c.restElementAt(tsig.Params[len(tsig.Params)-1].Type, 0)
	return ok && (elem == Any || elem == Unknown)
}

func (c *SubtypeChecker) checkParams(ssig, tsig Signature, source, target Handle) checkResult {
	bivariant := !c.StrictFunctionTypes ||
		(ssig.IsMethod && tsig.IsMethod && !c.DisableMethodBivariance)

	limit := len(ssig.Params)
	if len(tsig.Params) > limit {
		limit = len(tsig.Params)
	}
	for i := 0; i < limit; i++ {
		st, sOpt, sok := c.paramTypeAt(ssig, i)
		tt, tOpt, tok := c.paramTypeAt(tsig, i)
		// A position one side does not accept carries no constraint; the
		// arity rule already bounded required counts.
		if !sok || !tok {
			break
		}
		if c.StrictNullChecks {
			if sOpt {
				st = c.in.Union2(st, Undefined)
			}
			if tOpt {
				tt = c.in.Union2(tt, Undefined)
			}
		}
		res, nested := c.checkNested(tt, st)
		if !res.isTrue() {
			if bivariant && c.probe(st, tt).isTrue() {
				continue
			}
			return c.fail(&FailureReason{
				Kind: ReasonParameterType, Source: st, Target: tt,
				Index: i, Nested: nested,
			})
		}
	}
	return resTrue
}

// paramTypeAt returns the parameter type a signature accepts at call position
// i, expanding a trailing rest parameter over all later positions.
func (c *SubtypeChecker) paramTypeAt(sig Signature, i int) (Handle, bool, bool) {
	for j, p := range sig.Params {
		if p.Rest {
			if i < j {
				break
			}
			// Rest positions are not optional parameters: they never
			// widen with undefined, they just aren't required.
			h, ok := c.restElementAt(p.Type, i-j)
			return h, false, ok
		}
		if j == i {
			return p.Type, p.Optional, true
		}
	}
	return None, false, false
}

// restElementAt resolves the element type a rest parameter contributes at
// offset off past its own position. Rest parameters carry their full array or
// tuple type.
func (c *SubtypeChecker) restElementAt(rest Handle, off int) (Handle, bool) {
	switch s := c.in.Shape(rest).(type) {
	case *ArrayShape:
		return s.Elem, true
	case *ReadonlyShape:
		return c.restElementAt(s.Inner, off)
	case *TupleShape:
		if off < len(s.Elems) {
			e := s.Elems[off]
			if e.Rest {
				return c.restElementAt(e.Type, 0)
			}
			return e.Type, true
		}
		if n := len(s.Elems); n > 0 && s.Elems[n-1].Rest {
			return c.restElementAt(s.Elems[n-1].Type, 0)
		}
		return None, false
	default:
		return rest, true
	}
}

// Tuple rules.

func (c *SubtypeChecker) checkTuple(s, t *TupleShape, source, target Handle) checkResult {
	sReq := requiredTupleCount(s)
	tReq := requiredTupleCount(t)
	if sReq < tReq {
		return c.fail(&FailureReason{
			Kind: ReasonTupleArity, Source: source, Target: target,
			SourceCount: sReq, TargetCount: tReq,
		})
	}

	for i, te := range t.Elems {
		if te.Rest {
			return c.checkTupleRest(s, t, i, source, target)
		}
		if i < len(s.Elems) {
			se := s.Elems[i]
			if se.Rest {
				// A fixed target position cannot bind an open source.
				return c.fail(&FailureReason{
					Kind: ReasonTupleArity, Source: source, Target: target,
					SourceCount: sReq, TargetCount: len(t.Elems),
				})
			}
			res, nested := c.checkNested(se.Type, te.Type)
			if !res.isTrue() {
				return c.fail(&FailureReason{
					Kind: ReasonTupleElement, Source: se.Type, Target: te.Type,
					Index: i, Nested: nested,
				})
			}
		} else if !te.Optional {
			return c.fail(&FailureReason{
				Kind: ReasonTupleArity, Source: source, Target: target,
				SourceCount: len(s.Elems), TargetCount: tReq,
			})
		}
	}

	// Closed target: the source may not overflow it or leave it open.
	if len(s.Elems) > len(t.Elems) || tupleHasRest(s) {
		return c.fail(&FailureReason{
			Kind: ReasonTupleArity, Source: source, Target: target,
			SourceCount: len(s.Elems), TargetCount: len(t.Elems),
		})
	}
	return resTrue
}

// checkTupleRest relates the source against a target rest element at position
// i. The target elements after the rest bind the source's trailing elements
// from the right first, then the rest expansion's fixed prefix consumes from
// the left, and the variadic element absorbs whatever remains in the middle.
func (c *SubtypeChecker) checkTupleRest(s, t *TupleShape, i int, source, target Handle) checkResult {
	exp := c.expandTupleRest(t.Elems[i].Type)
	tail := t.Elems[i+1:]

	sourceEnd := len(s.Elems)
	for k := len(tail) - 1; k >= 0; k-- {
		te := tail[k]
		if sourceEnd <= i {
			if !te.Optional {
				return c.fail(&FailureReason{
					Kind: ReasonTupleArity, Source: source, Target: target,
					SourceCount: len(s.Elems), TargetCount: requiredTupleCount(t),
				})
			}
			break
		}
		se := s.Elems[sourceEnd-1]
		if se.Rest {
			if !te.Optional {
				return c.fail(&FailureReason{
					Kind: ReasonTupleArity, Source: source, Target: target,
					SourceCount: len(s.Elems), TargetCount: requiredTupleCount(t),
				})
			}
			break
		}
		res, nested := c.checkNested(se.Type, te.Type)
		if te.Optional && !res.isTrue() {
			break
		}
		if !res.isTrue() {
			return c.fail(&FailureReason{
				Kind: ReasonTupleElement, Source: se.Type, Target: te.Type,
				Index: sourceEnd - 1, Nested: nested,
			})
		}
		sourceEnd--
	}

	pos := i
	for _, tf := range exp.fixed {
		if pos >= sourceEnd {
			if !tf.Optional {
				return c.fail(&FailureReason{
					Kind: ReasonTupleArity, Source: source, Target: target,
					SourceCount: len(s.Elems), TargetCount: requiredTupleCount(t),
				})
			}
			continue
		}
		se := s.Elems[pos]
		if se.Rest {
			return c.fail(&FailureReason{
				Kind: ReasonTupleArity, Source: source, Target: target,
				SourceCount: len(s.Elems), TargetCount: requiredTupleCount(t),
			})
		}
		res, nested := c.checkNested(se.Type, tf.Type)
		if !res.isTrue() {
			return c.fail(&FailureReason{
				Kind: ReasonTupleElement, Source: se.Type, Target: tf.Type,
				Index: pos, Nested: nested,
			})
		}
		pos++
	}

	if exp.variadic != None {
		for ; pos < sourceEnd; pos++ {
			se := s.Elems[pos]
			st, tt := se.Type, exp.variadic
			if se.Rest {
				// An open middle must fit the variadic element as a whole.
				tt = c.in.Array(exp.variadic)
			}
			res, nested := c.checkNested(st, tt)
			if !res.isTrue() {
				return c.fail(&FailureReason{
					Kind: ReasonTupleElement, Source: st, Target: tt,
					Index: pos, Nested: nested,
				})
			}
		}
		return resTrue
	}

	if pos < sourceEnd {
		return c.fail(&FailureReason{
			Kind: ReasonTupleArity, Source: source, Target: target,
			SourceCount: len(s.Elems), TargetCount: requiredTupleCount(t),
		})
	}
	return resTrue
}

// tupleRestExpansion flattens the type carried by a rest element: a leading
// run of fixed elements plus at most one variadic element type.
type tupleRestExpansion struct {
	fixed    []TupleElem
	variadic Handle
}

func (c *SubtypeChecker) expandTupleRest(h Handle) tupleRestExpansion {
	switch s := c.in.Shape(h).(type) {
	case *ArrayShape:
		return tupleRestExpansion{variadic: s.Elem}
	case *ReadonlyShape:
		return c.expandTupleRest(s.Inner)
	case *TupleShape:
		var fixed []TupleElem
		for _, e := range s.Elems {
			if e.Rest {
				inner := c.expandTupleRest(e.Type)
				fixed = append(fixed, inner.fixed...)
				return tupleRestExpansion{fixed: fixed, variadic: inner.variadic}
			}
			fixed = append(fixed, e)
		}
		return tupleRestExpansion{fixed: fixed, variadic: None}
	default:
		return tupleRestExpansion{variadic: h}
	}
}

func requiredTupleCount(t *TupleShape) int {
	n := 0
	for _, e := range t.Elems {
		if !e.Optional && !e.Rest {
			n++
		}
	}
	return n
}

func tupleHasRest(t *TupleShape) bool {
	for _, e := range t.Elems {
		if e.Rest {
			return true
		}
	}
	return false
}

func (c *SubtypeChecker) checkTupleToArray(s *TupleShape, t *ArrayShape, source, target Handle) checkResult {
	for i, e := range s.Elems {
		if e.Rest {
			exp := c.expandTupleRest(e.Type)
			for _, f := range exp.fixed {
				res, nested := c.checkNested(f.Type, t.Elem)
				if !res.isTrue() {
					return c.fail(&FailureReason{
						Kind: ReasonTupleElement, Source: f.Type, Target: t.Elem,
						Index: i, Nested: nested,
					})
				}
			}
			if exp.variadic != None {
				res, nested := c.checkNested(exp.variadic, t.Elem)
				if !res.isTrue() {
					return c.fail(&FailureReason{
						Kind: ReasonTupleElement, Source: exp.variadic, Target: t.Elem,
						Index: i, Nested: nested,
					})
				}
			}
			continue
		}
		res, nested := c.checkNested(e.Type, t.Elem)
		if !res.isTrue() {
			return c.fail(&FailureReason{
				Kind: ReasonTupleElement, Source: e.Type, Target: t.Elem,
				Index: i, Nested: nested,
			})
		}
	}
	return resTrue
}

// checkArrayToTuple: an array's length is unknown, so only a never element
// type can inhabit a tuple, and only when the tuple tolerates emptiness.
func (c *SubtypeChecker) checkArrayToTuple(s *ArrayShape, t *TupleShape, source, target Handle) checkResult {
	if s.Elem != Never || !c.tupleAllowsEmpty(t) {
		return c.fail(&FailureReason{
			Kind: ReasonTupleArity, Source: source, Target: target,
			SourceCount: 0, TargetCount: requiredTupleCount(t),
		})
	}
	return resTrue
}

func (c *SubtypeChecker) tupleAllowsEmpty(t *TupleShape) bool {
	for i, e := range t.Elems {
		if e.Rest {
			if i+1 < len(t.Elems) {
				return false
			}
			exp := c.expandTupleRest(e.Type)
			for _, f := range exp.fixed {
				if !f.Optional {
					return false
				}
			}
			return true
		}
		if !e.Optional {
			return false
		}
	}
	return true
}

// matchTemplateLiteral decides whether a string literal inhabits a template
// literal type by backtracking over placeholder split points.
func (c *SubtypeChecker) matchTemplateLiteral(s string, spans []TemplateSpan) bool {
	if len(spans) == 0 {
		return s == ""
	}
	sp := spans[0]
	if !sp.IsType {
		text := c.in.AtomName(sp.Text)
		if len(s) < len(text) || s[:len(text)] != text {
			return false
		}
		return c.matchTemplateLiteral(s[len(text):], spans[1:])
	}
	for i := 0; i <= len(s); i++ {
		if c.placeholderMatches(sp.Type, s[:i]) && c.matchTemplateLiteral(s[i:], spans[1:]) {
			return true
		}
	}
	return false
}

func (c *SubtypeChecker) placeholderMatches(h Handle, text string) bool {
	switch h {
	case String, Any:
		return true
	case Number:
		_, err := strconv.ParseFloat(text, 64)
		return err == nil
	case BigInt:
		return isNumericName(text)
	case Boolean:
		return text == "true" || text == "false"
	}
	switch s := c.in.Shape(h).(type) {
	case *LiteralShape:
		switch s.Value.Kind {
		case LiteralString:
			return s.Value.Str == text
		case LiteralNumber:
			return strconv.FormatFloat(s.Value.Num, 'g', -1, 64) == text
		case LiteralBigInt:
			return s.Value.Str == text
		case LiteralBoolean:
			return strconv.FormatBool(s.Value.Bool) == text
		}
	case *UnionShape:
		for _, m := range s.Members {
			if c.placeholderMatches(m, text) {
				return true
			}
		}
	case *TemplateLiteralShape:
		return c.matchTemplateLiteral(text, s.Spans)
	}
	return false
}
