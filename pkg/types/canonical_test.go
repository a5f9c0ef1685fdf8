package types

import "testing"

// linkedDef registers `{ value: V; next: #def }` and returns its Lazy handle.
func linkedDef(in *Interner, defs *DefTable, def DefID, value Handle) Handle {
	lazy := in.Lazy(def)
	body := in.Object([]Property{
		{Name: in.Atom("value"), Read: value},
		{Name: in.Atom("next"), Read: lazy},
	}, nil, nil)
	defs.Define(def, body)
	return lazy
}

func TestCanonicalIdentityAcrossDefinitions(t *testing.T) {
	in := NewInterner()
	defs := NewDefTable()
	a := linkedDef(in, defs, 1, String)
	b := linkedDef(in, defs, 2, String)
	if a == b {
		t.Fatalf("distinct definitions must have distinct handles")
	}

	canon := NewCanonicalizer(in, defs)
	if !canon.Identical(a, b) {
		t.Fatalf("structurally identical recursive definitions must canonicalize equal")
	}

	c := linkedDef(in, defs, 3, Number)
	if canon.Identical(a, c) {
		t.Fatalf("recursive definitions differing in a member type must not canonicalize equal")
	}
}

func TestCanonicalIDIsCached(t *testing.T) {
	in := NewInterner()
	defs := NewDefTable()
	a := linkedDef(in, defs, 1, String)
	canon := NewCanonicalizer(in, defs)
	first := canon.CanonicalID(a)
	if canon.CanonicalID(a) != first {
		t.Fatalf("canonical ids must be stable within a session")
	}
}

func TestCanonicalSelfReferenceTerminates(t *testing.T) {
	in := NewInterner()
	defs := NewDefTable()
	// A definition whose body is a union containing itself.
	lazy := in.Lazy(7)
	body := in.Union([]Handle{Null, in.Object([]Property{
		{Name: in.Atom("self"), Read: lazy},
	}, nil, nil)})
	defs.Define(7, body)

	canon := NewCanonicalizer(in, defs)
	// The deferred reference and its expansion denote the same type; the
	// back-edge rewrite makes both encodings start their cycle at
	// position zero.
	if !canon.Identical(lazy, body) {
		t.Fatalf("a deferred reference must be identical to its own expansion")
	}
}

func TestCanonicalMutualRecursion(t *testing.T) {
	in := NewInterner()
	defs := NewDefTable()
	// a -> b -> a and c -> d -> c with identical member layout.
	la, lb := in.Lazy(10), in.Lazy(11)
	defs.Define(10, in.Object([]Property{{Name: in.Atom("peer"), Read: lb}}, nil, nil))
	defs.Define(11, in.Object([]Property{{Name: in.Atom("peer"), Read: la}}, nil, nil))
	lc, ld := in.Lazy(12), in.Lazy(13)
	defs.Define(12, in.Object([]Property{{Name: in.Atom("peer"), Read: ld}}, nil, nil))
	defs.Define(13, in.Object([]Property{{Name: in.Atom("peer"), Read: lc}}, nil, nil))

	canon := NewCanonicalizer(in, defs)
	if !canon.Identical(la, lc) {
		t.Fatalf("isomorphic mutually recursive definitions must canonicalize equal")
	}
}

func TestCanonicalEnumIsNominal(t *testing.T) {
	in := NewInterner()
	canon := NewCanonicalizer(in, nil)
	a := in.Enum(1, Number)
	b := in.Enum(2, Number)
	if canon.Identical(a, b) {
		t.Fatalf("enums with distinct definitions must never canonicalize equal")
	}
}
