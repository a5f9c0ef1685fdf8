package types

import "testing"

func obj(in *Interner, members ...Property) Handle {
	return in.Object(members, nil, nil)
}

func prop(in *Interner, name string, read Handle) Property {
	return Property{Name: in.Atom(name), Read: read}
}

func TestObjectWidthSubtyping(t *testing.T) {
	in := NewInterner()
	c := newChecker(in)
	wide := obj(in, prop(in, "a", String), prop(in, "b", Number))
	narrow := obj(in, prop(in, "a", String))

	assertAssignable(t, c, wide, narrow)
	assertNotAssignable(t, c, narrow, wide)
}

func TestObjectMissingPropertiesAreOrdered(t *testing.T) {
	in := NewInterner()
	c := newChecker(in)
	target := obj(in, prop(in, "x", String), prop(in, "y", Number), prop(in, "z", Boolean))
	source := obj(in, prop(in, "y", Number))

	assertNotAssignable(t, c, source, target)
	r := c.ExplainFailure(source, target)
	if r == nil || r.Kind != ReasonMissingProperties {
		t.Fatalf("expected missing-properties, got %+v", r)
	}
	if len(r.Properties) != 2 || in.AtomName(r.Properties[0]) != "x" || in.AtomName(r.Properties[1]) != "z" {
		t.Fatalf("expected [x z] in declared order, got %v", r.Properties)
	}
}

func TestOptionalTargetProperty(t *testing.T) {
	in := NewInterner()
	c := newChecker(in)
	target := obj(in, Property{Name: in.Atom("a"), Read: String, Optional: true})
	assertAssignable(t, c, obj(in), target)
	// Present optional members still need compatible types.
	assertNotAssignable(t, c, obj(in, prop(in, "a", Number)), target)
}

func TestOptionalSourceIntoRequired(t *testing.T) {
	in := NewInterner()
	c := newChecker(in)
	source := obj(in, Property{Name: in.Atom("a"), Read: String, Optional: true})
	target := obj(in, prop(in, "a", String))

	assertNotAssignable(t, c, source, target)
	r := c.ExplainFailure(source, target)
	if r == nil || r.Kind != ReasonOptionalRequired {
		t.Fatalf("expected optional-required mismatch, got %+v", r)
	}
}

func TestNominalPrivateMembers(t *testing.T) {
	in := NewInterner()
	c := newChecker(in)
	name := in.Atom("secret")
	classA := obj(in, Property{Name: name, Read: String, Visible: Private, Parent: 1})
	classAAgain := obj(in, Property{Name: name, Read: String, Visible: Private, Parent: 1})
	classB := obj(in, Property{Name: name, Read: String, Visible: Private, Parent: 2})

	assertAssignable(t, c, classA, classAAgain)
	assertNotAssignable(t, c, classA, classB)
	r := c.ExplainFailure(classA, classB)
	if r == nil || r.Kind != ReasonPropertyNominal {
		t.Fatalf("expected nominal mismatch, got %+v", r)
	}
}

func TestVisibilityDowngrade(t *testing.T) {
	in := NewInterner()
	c := newChecker(in)
	name := in.Atom("v")
	pub := obj(in, Property{Name: name, Read: String})
	priv := obj(in, Property{Name: name, Read: String, Visible: Private, Parent: 1})

	assertNotAssignable(t, c, pub, priv)
	assertNotAssignable(t, c, priv, pub)
	r := c.ExplainFailure(pub, priv)
	if r == nil || r.Kind != ReasonPropertyVisibility {
		t.Fatalf("expected visibility mismatch, got %+v", r)
	}
}

func TestGetSetWriteTypes(t *testing.T) {
	in := NewInterner()
	c := newChecker(in)
	name := in.Atom("value")
	strOrNum := in.Union([]Handle{String, Number})

	// Target reads string, accepts string|number on write.
	target := obj(in, Property{Name: name, Read: String, Write: strOrNum})
	// Source accepting only string on write cannot honor the wider
	// target write type.
	narrowWriter := obj(in, Property{Name: name, Read: String, Write: String})
	wideWriter := obj(in, Property{Name: name, Read: String, Write: strOrNum})

	assertAssignable(t, c, wideWriter, target)
	assertNotAssignable(t, c, narrowWriter, target)
}

func TestIndexSignatureSatisfiesProperties(t *testing.T) {
	in := NewInterner()
	c := newChecker(in)
	dict := in.Object(nil, &IndexSignature{Value: String}, nil)
	target := obj(in, prop(in, "name", String))

	assertAssignable(t, c, dict, target)
	assertNotAssignable(t, c, dict, obj(in, prop(in, "count", Number)))
}

func TestPropertiesSatisfyTargetIndex(t *testing.T) {
	in := NewInterner()
	c := newChecker(in)
	target := in.Object(nil, &IndexSignature{Value: String}, nil)

	assertAssignable(t, c, obj(in, prop(in, "a", String), prop(in, "b", String)), target)
	assertNotAssignable(t, c, obj(in, prop(in, "a", Number)), target)
}

func TestNumericIndexRules(t *testing.T) {
	in := NewInterner()
	c := newChecker(in)
	numIdx := in.Object(nil, nil, &IndexSignature{Value: String})

	// Numeric-looking member names fall under the number index; others
	// do not.
	assertAssignable(t, c, obj(in, prop(in, "0", String), prop(in, "name", Number)), numIdx)
	assertNotAssignable(t, c, obj(in, prop(in, "0", Number)), numIdx)

	// A string index can stand in for a missing number index.
	strIdx := in.Object(nil, &IndexSignature{Value: String}, nil)
	assertAssignable(t, c, strIdx, numIdx)
	assertNotAssignable(t, c, numIdx, strIdx)
}

func TestReadonlyIndexNeverSatisfiesMutable(t *testing.T) {
	in := NewInterner()
	c := newChecker(in)
	ro := in.Object(nil, &IndexSignature{Value: String, Readonly: true}, nil)
	mut := in.Object(nil, &IndexSignature{Value: String}, nil)

	assertAssignable(t, c, mut, ro)
	assertNotAssignable(t, c, ro, mut)
	r := c.ExplainFailure(ro, mut)
	if r == nil || r.Kind != ReasonReadonly {
		t.Fatalf("expected readonly mismatch, got %+v", r)
	}
}

func TestArrayAgainstObjectViaArrayInterface(t *testing.T) {
	in := NewInterner()
	defs := NewDefTable()
	// Minimal Array<T> surface: { length: number; pop(): T | undefined }.
	elem := TypeParam{Name: in.Atom("T"), ID: 9}
	elemRef := in.TypeParameter(elem)
	body := in.Object([]Property{
		{Name: in.Atom("length"), Read: Number},
		{Name: in.Atom("pop"), Read: in.Function(Signature{
			Return: in.Union([]Handle{elemRef, Undefined}), IsMethod: true,
		}), IsMethod: true},
	}, nil, nil)
	defs.SetArrayInterface(body, elem.ID)
	c := NewSubtypeChecker(in, defs)

	lengthOnly := obj(in, prop(in, "length", Number))
	assertAssignable(t, c, in.Array(String), lengthOnly)
	assertNotAssignable(t, c, in.Array(String), obj(in, prop(in, "length", String)))

	popStr := obj(in, Property{
		Name: in.Atom("pop"),
		Read: in.Function(Signature{Return: in.Union([]Handle{String, Undefined}), IsMethod: true}),
	})
	assertAssignable(t, c, in.Array(String), popStr)
}

func TestCallableMemberSurface(t *testing.T) {
	in := NewInterner()
	c := newChecker(in)
	fn := in.Callable(CallableShape{
		CallSignatures: []Signature{{Return: String}},
		Props:          []Property{prop(in, "describe", String)},
	})

	assertAssignable(t, c, fn, obj(in, prop(in, "describe", String)))
	assertNotAssignable(t, c, obj(in, prop(in, "describe", String)), fn)
	assertAssignable(t, c, fn, in.Function(Signature{Return: String}))
}
