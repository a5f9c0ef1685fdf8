package types

import "testing"

func TestInstantiateSubstitutes(t *testing.T) {
	in := NewInterner()
	tp := TypeParam{Name: in.Atom("T"), ID: 1}
	ref := in.TypeParameter(tp)

	got := Instantiate(in, in.Array(ref), Substitution{1: String})
	if got != in.Array(String) {
		t.Fatalf("expected T[] with T=string to be string[], got %s", Format(in, got))
	}

	obj := in.Object([]Property{{Name: in.Atom("v"), Read: ref}}, nil, nil)
	got = Instantiate(in, obj, Substitution{1: Number})
	if got != in.Object([]Property{{Name: in.Atom("v"), Read: Number}}, nil, nil) {
		t.Fatalf("expected object member substituted, got %s", Format(in, got))
	}
}

func TestInstantiateEmptySubstitutionIsIdentity(t *testing.T) {
	in := NewInterner()
	h := in.Array(String)
	if Instantiate(in, h, nil) != h {
		t.Fatalf("empty substitution must return the input handle")
	}
	// Irrelevant substitutions re-intern to the same handle.
	if Instantiate(in, h, Substitution{42: Number}) != h {
		t.Fatalf("irrelevant substitution must return the same handle")
	}
}

func TestInstantiateSignature(t *testing.T) {
	in := NewInterner()
	tp := TypeParam{Name: in.Atom("T"), ID: 1}
	ref := in.TypeParameter(tp)
	f := in.Function(Signature{Params: []Param{{Type: ref}}, Return: in.Array(ref)})

	got := Instantiate(in, f, Substitution{1: String})
	want := in.Function(Signature{Params: []Param{{Type: String}}, Return: in.Array(String)})
	if got != want {
		t.Fatalf("expected %s, got %s", Format(in, want), Format(in, got))
	}
}

func TestInstantiateKeepsMappedLoopParamBound(t *testing.T) {
	in := NewInterner()
	outer := TypeParam{Name: in.Atom("T"), ID: 1}
	key := TypeParam{Name: in.Atom("K"), ID: 2}
	m := in.Mapped(MappedShape{
		Param:      key,
		Constraint: in.KeyOf(in.TypeParameter(outer)),
		Template:   in.TypeParameter(key),
	})

	got := Instantiate(in, m, Substitution{1: in.Object([]Property{{Name: in.Atom("a"), Read: String}}, nil, nil)})
	shape, ok := in.Shape(got).(*MappedShape)
	if !ok {
		t.Fatalf("expected a mapped shape, got %T", in.Shape(got))
	}
	if _, stillParam := in.Shape(shape.Template).(*TypeParamShape); !stillParam {
		t.Fatalf("the mapped key parameter must stay bound, got %s", Format(in, shape.Template))
	}
	if _, isKeyOf := in.Shape(shape.Constraint).(*KeyOfShape); !isKeyOf {
		t.Fatalf("expected the constraint substituted in place, got %s", Format(in, shape.Constraint))
	}
}

func TestResolveApplicationDefaults(t *testing.T) {
	in := NewInterner()
	defs := NewDefTable()
	a := TypeParam{Name: in.Atom("A"), ID: 1}
	b := TypeParam{Name: in.Atom("B"), ID: 2, Default: Number}
	body := in.Tuple([]TupleElem{{Type: in.TypeParameter(a)}, {Type: in.TypeParameter(b)}})
	defs.DefineGeneric(1, body, []TypeParam{a, b})

	app := in.Application(in.Lazy(1), []Handle{String})
	got, ok := ResolveApplication(in, defs, app)
	if !ok {
		t.Fatalf("expected the application to resolve")
	}
	want := in.Tuple([]TupleElem{{Type: String}, {Type: Number}})
	if got != want {
		t.Fatalf("expected defaults to fill missing arguments, got %s", Format(in, got))
	}
}

func TestResolveApplicationUnknownBase(t *testing.T) {
	in := NewInterner()
	app := in.Application(in.Lazy(9), []Handle{String})
	got, ok := ResolveApplication(in, NoopResolver{}, app)
	if ok || got != app {
		t.Fatalf("an unresolvable base must return the input handle")
	}
}

func TestExpandMappedForKey(t *testing.T) {
	in := NewInterner()
	key := TypeParam{Name: in.Atom("K"), ID: 5}
	m := &MappedShape{
		Param:      key,
		Constraint: String,
		Template:   in.Array(in.TypeParameter(key)),
	}
	got := ExpandMappedForKey(in, m, in.LiteralString("a"))
	if got != in.Array(in.LiteralString("a")) {
		t.Fatalf("expected the template instantiated for the key, got %s", Format(in, got))
	}
}
