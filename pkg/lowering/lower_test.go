package lowering

import (
	"testing"

	"gradient/typesys-go/pkg/typenodes"
	"gradient/typesys-go/pkg/types"
)

// mapResolver is a test Resolver over fixed name tables.
type mapResolver struct {
	defs    map[string]types.DefID
	nodes   map[int]types.DefID
	symbols map[string]types.SymbolID
}

func (m mapResolver) DefinitionForName(name string) (types.DefID, bool) {
	d, ok := m.defs[name]
	return d, ok
}

func (m mapResolver) DefinitionForNode(idx int) (types.DefID, bool) {
	d, ok := m.nodes[idx]
	return d, ok
}

func (m mapResolver) SymbolForName(name string) (types.SymbolID, bool) {
	s, ok := m.symbols[name]
	return s, ok
}

func TestKeywordReferences(t *testing.T) {
	l := NewLowerer(types.NewInterner(), nil)
	cases := map[string]types.Handle{
		"any": types.Any, "unknown": types.Unknown, "never": types.Never,
		"void": types.Void, "undefined": types.Undefined, "null": types.Null,
		"boolean": types.Boolean, "number": types.Number, "string": types.String,
		"bigint": types.BigInt, "symbol": types.Symbol, "object": types.ObjectKeyword,
	}
	for name, want := range cases {
		if got := l.Lower(typenodes.Ty(name)); got != want {
			t.Fatalf("keyword %q lowered to %d, want %d", name, got, want)
		}
	}
}

func TestUnknownReferenceIsError(t *testing.T) {
	l := NewLowerer(types.NewInterner(), nil)
	if l.Lower(typenodes.Ty("Missing")) != types.ErrorType {
		t.Fatalf("unresolved references must lower to the error sentinel")
	}
}

func TestReferenceResolution(t *testing.T) {
	in := types.NewInterner()
	l := NewLowerer(in, mapResolver{
		defs:  map[string]types.DefID{"Foo": 7},
		nodes: map[int]types.DefID{42: 9},
	})

	if got := l.Lower(typenodes.Ty("Foo")); got != in.Lazy(7) {
		t.Fatalf("expected a deferred reference to definition 7")
	}

	got := l.Lower(typenodes.Ty("Foo", typenodes.Ty("string")))
	want := in.Application(in.Lazy(7), []types.Handle{types.String})
	if got != want {
		t.Fatalf("expected an application over the deferred base")
	}

	// Name lookup fails; the node index fallback resolves.
	byNode := &typenodes.Reference{Name: "Aliased", NodeIndex: 42}
	if l.Lower(byNode) != in.Lazy(9) {
		t.Fatalf("expected the node-index fallback to resolve")
	}
}

func TestArraySpecialCases(t *testing.T) {
	in := types.NewInterner()
	l := NewLowerer(in, nil)

	if l.Lower(typenodes.Ty("Array", typenodes.Ty("string"))) != in.Array(types.String) {
		t.Fatalf("Array<string> must lower to string[]")
	}
	if l.Lower(typenodes.Ty("Array")) != in.Array(types.Any) {
		t.Fatalf("bare Array must lower to any[]")
	}
	want := in.Readonly(in.Array(types.Number))
	if l.Lower(typenodes.Ty("ReadonlyArray", typenodes.Ty("number"))) != want {
		t.Fatalf("ReadonlyArray<number> must lower to readonly number[]")
	}
}

func TestArrayShadowedByDeclaration(t *testing.T) {
	in := types.NewInterner()
	l := NewLowerer(in, mapResolver{defs: map[string]types.DefID{"Array": 4}})

	want := in.Application(in.Lazy(4), []types.Handle{types.String})
	if got := l.Lower(typenodes.Ty("Array", typenodes.Ty("string"))); got != want {
		t.Fatalf("a declared Array must shadow the builtin alias")
	}
	if l.Lower(typenodes.Ty("Array")) != in.Lazy(4) {
		t.Fatalf("a bare shadowed Array must resolve to its declaration")
	}
	// The builtin meaning survives for names nothing declares.
	if l.Lower(typenodes.Ty("ReadonlyArray", typenodes.Ty("number"))) != in.Readonly(in.Array(types.Number)) {
		t.Fatalf("an unshadowed ReadonlyArray must keep its builtin meaning")
	}
}

func TestStringIntrinsics(t *testing.T) {
	in := types.NewInterner()
	l := NewLowerer(in, nil)
	got := l.Lower(typenodes.Ty("Uppercase", typenodes.Ty("string")))
	if got != in.StringIntrinsic(types.IntrinsicUppercase, types.String) {
		t.Fatalf("Uppercase<string> must lower to a string intrinsic")
	}
	if l.Lower(typenodes.Ty("Uppercase")) != types.ErrorType {
		t.Fatalf("arity-less intrinsics are malformed")
	}
	got = l.Lower(typenodes.Ty("NoInfer", typenodes.Ty("string")))
	if got != in.NoInfer(types.String) {
		t.Fatalf("NoInfer<string> must lower to a NoInfer wrapper")
	}
}

func TestFunctionTypeParamScopes(t *testing.T) {
	in := types.NewInterner()
	l := NewLowerer(in, nil)

	// <T>(x: T) => T[]
	fn := &typenodes.FunctionType{
		TypeParams: []typenodes.TypeParamDecl{{Name: "T"}},
		Params:     []typenodes.Param{{Name: "x", Type: typenodes.Ty("T")}},
		Return:     typenodes.Arr(typenodes.Ty("T")),
	}
	h := l.Lower(fn)
	shape, ok := in.Shape(h).(*types.FunctionShape)
	if !ok {
		t.Fatalf("expected a function shape, got %T", in.Shape(h))
	}
	param, ok := in.Shape(shape.Sig.Params[0].Type).(*types.TypeParamShape)
	if !ok {
		t.Fatalf("expected the parameter to reference the bound type parameter")
	}
	ret, ok := in.Shape(shape.Sig.Return).(*types.ArrayShape)
	if !ok || ret.Elem != shape.Sig.Params[0].Type {
		t.Fatalf("expected the return element to share the parameter binding")
	}
	if shape.Sig.TypeParams[0].ID != param.Param.ID {
		t.Fatalf("declared parameter and its reference must share an identity")
	}

	// The binding does not leak past the signature.
	if l.Lower(typenodes.Ty("T")) != types.ErrorType {
		t.Fatalf("type parameters must not escape their scope")
	}
}

func TestConditionalDistributivity(t *testing.T) {
	in := types.NewInterner()
	l := NewLowerer(in, nil)

	// Inside <T>(x: T) => T extends string ? 'y' : 'n', the check is a
	// bare parameter: distributive.
	fn := &typenodes.FunctionType{
		TypeParams: []typenodes.TypeParamDecl{{Name: "T"}},
		Return: typenodes.Cond(
			typenodes.Ty("T"), typenodes.Ty("string"),
			typenodes.StrLit("y"), typenodes.StrLit("n"),
		),
	}
	shape := in.Shape(l.Lower(fn)).(*types.FunctionShape)
	cond := in.Shape(shape.Sig.Return).(*types.ConditionalShape)
	if !cond.Distributive {
		t.Fatalf("a bare type-parameter check must be distributive")
	}

	// T[] extends string ? ... is not a bare parameter.
	fn.Return = typenodes.Cond(
		typenodes.Arr(typenodes.Ty("T")), typenodes.Ty("string"),
		typenodes.StrLit("y"), typenodes.StrLit("n"),
	)
	shape = in.Shape(l.Lower(fn)).(*types.FunctionShape)
	cond = in.Shape(shape.Sig.Return).(*types.ConditionalShape)
	if cond.Distributive {
		t.Fatalf("a wrapped check must not be distributive")
	}
}

func TestInferBindingScopes(t *testing.T) {
	in := types.NewInterner()
	l := NewLowerer(in, nil)

	// X extends (infer R)[] ? R : never
	cond := typenodes.Cond(
		typenodes.Ty("string"),
		typenodes.Arr(typenodes.Infer("R")),
		typenodes.Ty("R"),
		typenodes.Ty("R"),
	)
	h := l.Lower(cond)
	shape := in.Shape(h).(*types.ConditionalShape)

	ext := in.Shape(shape.Extends).(*types.ArrayShape)
	inf, ok := in.Shape(ext.Elem).(*types.InferShape)
	if !ok {
		t.Fatalf("expected the extends element to be an infer binding")
	}
	if shape.True != ext.Elem {
		t.Fatalf("the true branch must see the infer binding")
	}
	// The false branch is outside the binding's scope.
	if shape.False != types.ErrorType {
		t.Fatalf("the false branch must not see the infer binding, got %s", types.Format(in, shape.False))
	}
	if inf.Param.Name != in.Atom("R") {
		t.Fatalf("infer binding must keep its name")
	}
}

func TestInferInsideApplication(t *testing.T) {
	in := types.NewInterner()
	l := NewLowerer(in, mapResolver{defs: map[string]types.DefID{"Box": 3}})

	cond := typenodes.Cond(
		typenodes.Ty("string"),
		typenodes.Ty("Box", typenodes.Infer("T")),
		typenodes.Ty("T"),
		typenodes.Ty("never"),
	)
	shape := in.Shape(l.Lower(cond)).(*types.ConditionalShape)
	app, ok := in.Shape(shape.Extends).(*types.ApplicationShape)
	if !ok {
		t.Fatalf("expected an application in the extends clause")
	}
	if _, ok := in.Shape(app.Args[0]).(*types.InferShape); !ok {
		t.Fatalf("expected the application argument to be an infer binding")
	}
	if shape.True != app.Args[0] {
		t.Fatalf("the true branch must share the binding")
	}
}

func TestMappedTypeScopes(t *testing.T) {
	in := types.NewInterner()
	l := NewLowerer(in, nil)

	// { [K in keyof string as K]: K[] } (the constraint cannot see K).
	m := &typenodes.MappedType{
		ParamName:  "K",
		Constraint: typenodes.KeyOf(typenodes.Ty("string")),
		NameType:   typenodes.Ty("K"),
		Template:   typenodes.Arr(typenodes.Ty("K")),
		Optional:   typenodes.ModifierAdd,
	}
	shape, ok := in.Shape(l.Lower(m)).(*types.MappedShape)
	if !ok {
		t.Fatalf("expected a mapped shape")
	}
	if _, ok := in.Shape(shape.Constraint).(*types.KeyOfShape); !ok {
		t.Fatalf("expected the constraint lowered outside the key scope")
	}
	if _, ok := in.Shape(shape.NameType).(*types.TypeParamShape); !ok {
		t.Fatalf("expected the name remap to see the key parameter")
	}
	arr, ok := in.Shape(shape.Template).(*types.ArrayShape)
	if !ok {
		t.Fatalf("expected the template lowered inside the key scope")
	}
	if arr.Elem != shape.NameType {
		t.Fatalf("template and name remap must share the key binding")
	}
	if shape.Optional != types.MappedAdd {
		t.Fatalf("modifiers must carry through")
	}
	// K does not leak.
	if l.Lower(typenodes.Ty("K")) != types.ErrorType {
		t.Fatalf("the key parameter must not escape the mapped type")
	}
}

func TestObjectLowering(t *testing.T) {
	in := types.NewInterner()
	l := NewLowerer(in, nil)

	h := l.Lower(typenodes.Obj(
		typenodes.Prop("a", typenodes.Ty("string")),
		typenodes.OptProp("b", typenodes.Ty("number")),
		&typenodes.GetAccessor{Name: "value", Type: typenodes.Ty("string")},
		&typenodes.SetAccessor{Name: "value", Type: typenodes.UnionT(typenodes.Ty("string"), typenodes.Ty("number"))},
		&typenodes.IndexSignatureMember{Value: typenodes.Ty("string")},
	))
	shape, ok := in.Shape(h).(*types.ObjectShape)
	if !ok {
		t.Fatalf("expected an object shape, got %T", in.Shape(h))
	}
	if len(shape.Props) != 3 {
		t.Fatalf("expected get/set to merge into one member, got %d props", len(shape.Props))
	}
	value := shape.Props[2]
	if value.Read != types.String {
		t.Fatalf("expected the getter type on the read side")
	}
	if value.Write != in.Union([]types.Handle{types.String, types.Number}) {
		t.Fatalf("expected the setter type on the write side")
	}
	if shape.StringIndex == nil || shape.StringIndex.Value != types.String {
		t.Fatalf("expected the string index signature carried through")
	}
}

func TestCallableLowering(t *testing.T) {
	in := types.NewInterner()
	l := NewLowerer(in, nil)

	h := l.Lower(typenodes.Obj(
		&typenodes.CallSignatureMember{Fn: typenodes.Fn(typenodes.Ty("string"))},
		typenodes.Prop("tag", typenodes.Ty("string")),
	))
	shape, ok := in.Shape(h).(*types.CallableShape)
	if !ok {
		t.Fatalf("a call signature must switch the result to a callable, got %T", in.Shape(h))
	}
	if len(shape.CallSignatures) != 1 || len(shape.Props) != 1 {
		t.Fatalf("unexpected callable layout %+v", shape)
	}

	ctor := l.Lower(&typenodes.ConstructorType{Fn: typenodes.Fn(typenodes.Ty("string"))})
	cshape, ok := in.Shape(ctor).(*types.CallableShape)
	if !ok || len(cshape.ConstructSignatures) != 1 {
		t.Fatalf("a constructor type must lower to a callable with one construct signature")
	}
}

func TestPredicateLowering(t *testing.T) {
	in := types.NewInterner()
	l := NewLowerer(in, nil)

	fn := &typenodes.FunctionType{
		Params:    []typenodes.Param{{Name: "a", Type: typenodes.Ty("unknown")}, {Name: "b", Type: typenodes.Ty("unknown")}},
		Return:    typenodes.Ty("boolean"),
		Predicate: &typenodes.Predicate{Target: "b", Type: typenodes.Ty("string")},
	}
	shape := in.Shape(l.Lower(fn)).(*types.FunctionShape)
	pred := shape.Sig.Predicate
	if pred == nil || pred.Target != types.PredicateParam || pred.ParamIndex != 1 {
		t.Fatalf("expected the predicate to capture parameter ordinal 1, got %+v", pred)
	}
	if pred.Type != types.String {
		t.Fatalf("expected the predicate type lowered")
	}

	asserts := &typenodes.FunctionType{
		Params:    []typenodes.Param{{Name: "x", Type: typenodes.Ty("unknown")}},
		Predicate: &typenodes.Predicate{Asserts: true, Target: "x", Type: typenodes.Ty("string")},
	}
	shape = in.Shape(l.Lower(asserts)).(*types.FunctionShape)
	if shape.Sig.Return != types.Void {
		t.Fatalf("asserting signatures must return void")
	}

	thisPred := &typenodes.FunctionType{
		Predicate: &typenodes.Predicate{Target: "this", Type: typenodes.Ty("string")},
	}
	shape = in.Shape(l.Lower(thisPred)).(*types.FunctionShape)
	if shape.Sig.Predicate.Target != types.PredicateThis || shape.Sig.Predicate.ParamIndex != -1 {
		t.Fatalf("expected a this predicate, got %+v", shape.Sig.Predicate)
	}
}

func TestTemplateLiteralLowering(t *testing.T) {
	in := types.NewInterner()
	l := NewLowerer(in, nil)

	h := l.Lower(&typenodes.TemplateLiteralType{
		Head: "on",
		Spans: []typenodes.TemplateSpan{
			{Type: typenodes.Ty("string"), Text: "End"},
		},
	})
	shape, ok := in.Shape(h).(*types.TemplateLiteralShape)
	if !ok {
		t.Fatalf("expected a template literal shape")
	}
	if len(shape.Spans) != 3 {
		t.Fatalf("expected head, type and tail spans, got %d", len(shape.Spans))
	}
	if in.AtomName(shape.Spans[0].Text) != "on" || !shape.Spans[1].IsType || in.AtomName(shape.Spans[2].Text) != "End" {
		t.Fatalf("unexpected span layout %+v", shape.Spans)
	}
}

func TestTypeQueryLowering(t *testing.T) {
	in := types.NewInterner()
	l := NewLowerer(in, mapResolver{symbols: map[string]types.SymbolID{"config": 12}})

	if l.Lower(&typenodes.TypeQuery{Name: "config"}) != in.TypeQuery(12) {
		t.Fatalf("typeof must resolve through the symbol table")
	}
	if l.Lower(&typenodes.TypeQuery{Name: "missing"}) != types.ErrorType {
		t.Fatalf("an unresolved typeof lowers to the error sentinel")
	}
}

func TestUniqueSymbolsAreDistinct(t *testing.T) {
	l := NewLowerer(types.NewInterner(), nil)
	a := l.Lower(&typenodes.TypeOperator{Op: typenodes.OpUnique})
	b := l.Lower(&typenodes.TypeOperator{Op: typenodes.OpUnique})
	if a == b {
		t.Fatalf("each unique symbol occurrence must be nominally distinct")
	}
}

func TestDepthGuardLowersToError(t *testing.T) {
	in := types.NewInterner()
	l := NewLowerer(in, nil)

	var deep typenodes.Node = typenodes.Ty("string")
	for i := 0; i < types.DefaultMaxDepth+10; i++ {
		deep = typenodes.Arr(deep)
	}
	h := l.Lower(deep)
	// The innermost layers collapse to the error sentinel instead of
	// recursing without bound.
	for {
		arr, ok := in.Shape(h).(*types.ArrayShape)
		if !ok {
			break
		}
		h = arr.Elem
	}
	if h != types.ErrorType {
		t.Fatalf("expected the depth bound to produce the error sentinel, got %s", types.Format(in, h))
	}
}
