package types

// checkObject implements structural object assignability: every required
// target member must be present and compatible in the source, index
// signatures serve as fallbacks, and non-public members compare nominally.
func (c *SubtypeChecker) checkObject(s, t *ObjectShape, source, target Handle) checkResult {
	// Missing required members are collected in target-declared order so
	// the explanation lists them the way the target declares them.
	var missing []Atom
	for _, tp := range t.Props {
		sp, ok := findProp(s.Props, tp.Name)
		if !ok {
			if idx := c.sourceIndexFor(s.StringIndex, s.NumberIndex, tp.Name); idx != nil {
				res, nested := c.checkNested(idx.Value, tp.Read)
				if !res.isTrue() {
					return c.fail(&FailureReason{
						Kind: ReasonPropertyType, Source: source, Target: target,
						Property: tp.Name, Nested: nested,
					})
				}
				continue
			}
			if tp.Optional {
				continue
			}
			missing = append(missing, tp.Name)
			continue
		}
		if res := c.checkProperty(sp, tp, source, target); !res.isTrue() {
			return res
		}
	}
	switch len(missing) {
	case 0:
	case 1:
		return c.fail(&FailureReason{Kind: ReasonMissingProperty, Source: source, Target: target, Property: missing[0]})
	default:
		return c.fail(&FailureReason{Kind: ReasonMissingProperties, Source: source, Target: target, Properties: missing})
	}
	return c.checkTargetIndexes(s.Props, s.StringIndex, s.NumberIndex, t.StringIndex, t.NumberIndex, source, target)
}

func findProp(props []Property, name Atom) (Property, bool) {
	for _, p := range props {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// sourceIndexFor picks the source index signature applicable to a target
// member name: the number index when the name is numeric-looking, else the
// string index.
func (c *SubtypeChecker) sourceIndexFor(str, num *IndexSignature, name Atom) *IndexSignature {
	if num != nil && isNumericName(c.in.AtomName(name)) {
		return num
	}
	return str
}

// isNumericName reports whether a member name is a canonical numeric key, the
// form a number index signature covers.
func isNumericName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	// Leading zeros are string keys, not numeric ones.
	return len(name) == 1 || name[0] != '0'
}

func (c *SubtypeChecker) checkProperty(sp, tp Property, source, target Handle) checkResult {
	// Private and protected members are nominal: both sides must carry the
	// same visibility and originate from the same declaring entity.
	if sp.Visible != Public || tp.Visible != Public {
		if sp.Visible != tp.Visible {
			return c.fail(&FailureReason{
				Kind: ReasonPropertyVisibility, Source: source, Target: target,
				Property: tp.Name, SourceVisibility: sp.Visible, TargetVisibility: tp.Visible,
			})
		}
		if sp.Parent != tp.Parent {
			return c.fail(&FailureReason{Kind: ReasonPropertyNominal, Source: source, Target: target, Property: tp.Name})
		}
	}
	if sp.Optional && !tp.Optional {
		return c.fail(&FailureReason{Kind: ReasonOptionalRequired, Source: source, Target: target, Property: tp.Name})
	}
	// Read side is covariant. Methods stay bivariant (their signatures
	// carry IsMethod and relax parameter variance downstream).
	res, nested := c.checkNested(sp.Read, tp.Read)
	if !res.isTrue() {
		if sp.IsMethod && tp.IsMethod && !c.DisableMethodBivariance && c.probe(tp.Read, sp.Read).isTrue() {
			return resTrue
		}
		return c.fail(&FailureReason{
			Kind: ReasonPropertyType, Source: source, Target: target,
			Property: tp.Name, Nested: nested,
		})
	}
	// Divergent write types (get/set pairs) compare in reverse: whatever
	// the target accepts for writing, the source must accept too.
	if tp.Write != None && tp.Write != tp.Read {
		sw := sp.Write
		if sw == None {
			sw = sp.Read
		}
		res, nested := c.checkNested(tp.Write, sw)
		if !res.isTrue() {
			return c.fail(&FailureReason{
				Kind: ReasonPropertyType, Source: source, Target: target,
				Property: tp.Name, Nested: nested,
			})
		}
	}
	return resTrue
}

// checkTargetIndexes verifies the target's index signatures against the
// source's members and index signatures.
func (c *SubtypeChecker) checkTargetIndexes(sProps []Property, sStr, sNum, tStr, tNum *IndexSignature, source, target Handle) checkResult {
	if tStr != nil {
		for _, p := range sProps {
			if p.Visible != Public {
				continue
			}
			if !c.probe(p.Read, tStr.Value).isTrue() {
				return c.fail(&FailureReason{Kind: ReasonIndexSignature, Source: source, Target: target, Property: p.Name})
			}
		}
		if res := c.checkIndexPair(sStr, tStr, source, target); !res.isTrue() {
			return res
		}
		if sNum != nil {
			if !c.probe(sNum.Value, tStr.Value).isTrue() {
				return c.fail(&FailureReason{Kind: ReasonIndexSignature, Source: source, Target: target})
			}
			// A number index alone covers only numeric keys; it cannot
			// stand in for a string index.
			if sStr == nil && len(sProps) == 0 {
				return c.fail(&FailureReason{Kind: ReasonIndexSignature, Source: source, Target: target})
			}
		}
	}
	if tNum != nil {
		for _, p := range sProps {
			if p.Visible != Public || !isNumericName(c.in.AtomName(p.Name)) {
				continue
			}
			if !c.probe(p.Read, tNum.Value).isTrue() {
				return c.fail(&FailureReason{Kind: ReasonIndexSignature, Source: source, Target: target, Property: p.Name})
			}
		}
		// A string index covers numeric keys too, so it may stand in for a
		// missing number index.
		sIdx := sNum
		if sIdx == nil {
			sIdx = sStr
		}
		if res := c.checkIndexPair(sIdx, tNum, source, target); !res.isTrue() {
			return res
		}
	}
	return resTrue
}

func (c *SubtypeChecker) checkIndexPair(sIdx, tIdx *IndexSignature, source, target Handle) checkResult {
	if sIdx == nil {
		return resTrue
	}
	// A readonly index signature never satisfies a mutable one.
	if sIdx.Readonly && !tIdx.Readonly {
		return c.fail(&FailureReason{Kind: ReasonReadonly, Source: source, Target: target})
	}
	res, nested := c.checkNested(sIdx.Value, tIdx.Value)
	if !res.isTrue() {
		return c.fail(&FailureReason{Kind: ReasonIndexSignature, Source: source, Target: target, Nested: nested})
	}
	return resTrue
}

// checkObjectToCallable: a plain object can satisfy a callable target only
// when the target demands no call or construct behavior.
func (c *SubtypeChecker) checkObjectToCallable(s *ObjectShape, t *CallableShape, source, target Handle) checkResult {
	if len(t.CallSignatures) > 0 || len(t.ConstructSignatures) > 0 {
		return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target})
	}
	return c.checkObject(s, &ObjectShape{
		Props: t.Props, StringIndex: t.StringIndex, NumberIndex: t.NumberIndex, Owner: t.Owner,
	}, source, target)
}

// checkCallableToObject: a callable satisfies an object target through its
// member surface; the call signatures are extra capability.
func (c *SubtypeChecker) checkCallableToObject(s *CallableShape, t *ObjectShape, source, target Handle) checkResult {
	return c.checkObject(&ObjectShape{
		Props: s.Props, StringIndex: s.StringIndex, NumberIndex: s.NumberIndex, Owner: s.Owner,
	}, t, source, target)
}

// checkCallable: every target signature must be matched by some source
// signature of the same kind, then the member surfaces compare structurally.
func (c *SubtypeChecker) checkCallable(s, t *CallableShape, source, target Handle) checkResult {
	if res := c.checkSignatureSets(s.CallSignatures, t.CallSignatures, source, target); !res.isTrue() {
		return res
	}
	if res := c.checkSignatureSets(s.ConstructSignatures, t.ConstructSignatures, source, target); !res.isTrue() {
		return res
	}
	return c.checkObject(&ObjectShape{
		Props: s.Props, StringIndex: s.StringIndex, NumberIndex: s.NumberIndex, Owner: s.Owner,
	}, &ObjectShape{
		Props: t.Props, StringIndex: t.StringIndex, NumberIndex: t.NumberIndex, Owner: t.Owner,
	}, source, target)
}

func (c *SubtypeChecker) checkSignatureSets(sSigs, tSigs []Signature, source, target Handle) checkResult {
	for _, tsig := range tSigs {
		matched := false
		var first *FailureReason
		for _, ssig := range sSigs {
			res, nested := c.checkSignatureNested(ssig, tsig, source, target)
			if res.isTrue() {
				matched = true
				break
			}
			if first == nil {
				first = nested
			}
		}
		if !matched {
			return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target, Nested: first})
		}
	}
	return resTrue
}

// checkFunctionToCallable: the single source signature must satisfy every
// target signature of its kind, and the target may demand no members beyond
// optional ones.
func (c *SubtypeChecker) checkFunctionToCallable(s *FunctionShape, t *CallableShape, source, target Handle) checkResult {
	var sigs []Signature
	if s.IsConstructor {
		if len(t.CallSignatures) > 0 {
			return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target})
		}
		sigs = t.ConstructSignatures
	} else {
		if len(t.ConstructSignatures) > 0 {
			return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target})
		}
		sigs = t.CallSignatures
	}
	for _, tsig := range sigs {
		res, nested := c.checkSignatureNested(s.Sig, tsig, source, target)
		if !res.isTrue() {
			return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target, Nested: nested})
		}
	}
	return c.checkObject(&ObjectShape{}, &ObjectShape{
		Props: t.Props, StringIndex: t.StringIndex, NumberIndex: t.NumberIndex,
	}, source, target)
}

// checkCallableToFunction: some source signature of the right kind must
// satisfy the single target signature.
func (c *SubtypeChecker) checkCallableToFunction(s *CallableShape, t *FunctionShape, source, target Handle) checkResult {
	sigs := s.CallSignatures
	if t.IsConstructor {
		sigs = s.ConstructSignatures
	}
	var first *FailureReason
	for _, ssig := range sigs {
		res, nested := c.checkSignatureNested(ssig, t.Sig, source, target)
		if res.isTrue() {
			return resTrue
		}
		if first == nil {
			first = nested
		}
	}
	return c.fail(&FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target, Nested: first})
}
