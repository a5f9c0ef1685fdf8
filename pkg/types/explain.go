package types

// ReasonKind tags a structured assignability failure reason.
type ReasonKind int

const (
	// ReasonGenericMismatch is the fallback when no more specific rule
	// applies.
	ReasonGenericMismatch ReasonKind = iota
	// ReasonMissingProperty: one required target property absent from the
	// source.
	ReasonMissingProperty
	// ReasonMissingProperties: several required target properties absent,
	// listed in target-declared order.
	ReasonMissingProperties
	// ReasonPropertyType: a matched property's type is incompatible;
	// Nested carries the inner reason.
	ReasonPropertyType
	// ReasonPropertyVisibility: private/protected vs public mismatch.
	ReasonPropertyVisibility
	// ReasonPropertyNominal: private/protected members declared by
	// different entities.
	ReasonPropertyNominal
	// ReasonOptionalRequired: optional source member against a required
	// target member.
	ReasonOptionalRequired
	// ReasonReadonly: a readonly index signature against a mutable
	// requirement.
	ReasonReadonly
	// ReasonIndexSignature: a property or index signature fails the other
	// side's applicable index signature.
	ReasonIndexSignature
	// ReasonArrayElement: array element types incompatible.
	ReasonArrayElement
	// ReasonTupleElement: tuple element type mismatch at Index.
	ReasonTupleElement
	// ReasonTupleArity: tuple lengths irreconcilable.
	ReasonTupleArity
	// ReasonReturnType: function return types incompatible (nested).
	ReasonReturnType
	// ReasonTooManyParameters: source requires more parameters than the
	// target supplies.
	ReasonTooManyParameters
	// ReasonParameterType: parameter at Index incompatible.
	ReasonParameterType
	// ReasonNoUnionMember: source matches no member of the target union;
	// UnionMembers lists every candidate.
	ReasonNoUnionMember
	// ReasonIntrinsicMismatch: intrinsic or literal kinds disagree.
	ReasonIntrinsicMismatch
	// ReasonErrorInvolved: the re-derivation hit the depth bound and
	// failed closed; one of the sides collapsed to the error sentinel.
	ReasonErrorInvolved
)

var reasonNames = [...]string{
	ReasonGenericMismatch:    "mismatch",
	ReasonMissingProperty:    "missing-property",
	ReasonMissingProperties:  "missing-properties",
	ReasonPropertyType:       "property-type-mismatch",
	ReasonPropertyVisibility: "property-visibility-mismatch",
	ReasonPropertyNominal:    "property-nominal-mismatch",
	ReasonOptionalRequired:   "optional-required-mismatch",
	ReasonReadonly:           "readonly-mismatch",
	ReasonIndexSignature:     "index-signature-mismatch",
	ReasonArrayElement:       "array-element-mismatch",
	ReasonTupleElement:       "tuple-element-mismatch",
	ReasonTupleArity:         "tuple-arity-mismatch",
	ReasonReturnType:         "return-type-mismatch",
	ReasonTooManyParameters:  "too-many-parameters",
	ReasonParameterType:      "parameter-type-mismatch",
	ReasonNoUnionMember:      "no-union-member-matches",
	ReasonIntrinsicMismatch:  "intrinsic-mismatch",
	ReasonErrorInvolved:      "error-involved",
}

func (k ReasonKind) String() string {
	if int(k) < len(reasonNames) {
		return reasonNames[k]
	}
	return "reason?"
}

// FailureReason is the structured explanation re-derived after IsAssignable
// returned false. It mirrors the checker's rule list; the diagnostic layer
// renders it.
type FailureReason struct {
	Kind   ReasonKind
	Source Handle
	Target Handle

	// Property names the member involved; Properties lists several for
	// the missing-properties case, in target-declared order.
	Property   Atom
	Properties []Atom

	// Index is the element/parameter position for tuple, array and
	// parameter reasons.
	Index int

	// SourceCount/TargetCount carry arity information.
	SourceCount int
	TargetCount int

	// UnionMembers enumerates the target union for no-union-member.
	UnionMembers []Handle

	// Visibilities for the visibility mismatch case.
	SourceVisibility Visibility
	TargetVisibility Visibility

	// Nested is the inner reason for property/return wrappers.
	Nested *FailureReason
}

// ExplainFailure re-derives a structured reason for a failed assignability
// check. It is meant to be called only after IsAssignable returned false,
// never on the hot path. It returns nil when closer inspection shows the
// pair is actually compatible, so the fast and slow paths can never disagree
// about the boolean outcome.
func (c *SubtypeChecker) ExplainFailure(source, target Handle) *FailureReason {
	c.Reset()
	c.tracing = true
	defer func() {
		c.tracing = false
		c.failure = nil
	}()
	res := c.check(source, target)
	if res.isTrue() {
		return nil
	}
	if res == resDepth {
		return &FailureReason{Kind: ReasonErrorInvolved, Source: source, Target: target}
	}
	if c.failure == nil {
		return &FailureReason{Kind: ReasonGenericMismatch, Source: source, Target: target}
	}
	return c.failure
}
