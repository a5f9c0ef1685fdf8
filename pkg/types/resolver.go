package types

// TypeResolver expands deferred references for the canonicalizer and the
// subtype checker. The surrounding checker layer supplies one per session;
// lowering only writes Lazy handles and never resolves them itself, which
// keeps the data flow one-directional.
type TypeResolver interface {
	// ResolveLazy expands a definition reference to its structural form.
	// Returns false when the definition is unknown; the caller treats the
	// handle as opaque in that case.
	ResolveLazy(def DefID) (Handle, bool)

	// DefinitionParams reports the type parameters a definition binds, in
	// declaration order, for resolving generic applications.
	DefinitionParams(def DefID) []TypeParam

	// ArrayInterface exposes the built-in Array interface body and its
	// element type parameter. The subtype checker instantiates it to
	// compare arrays against object shapes structurally instead of
	// hardcoding an array rule.
	ArrayInterface() (body Handle, elem ParamID, ok bool)
}

// NoopResolver resolves nothing. Useful for acyclic, fully-structural
// sessions and tests.
type NoopResolver struct{}

func (NoopResolver) ResolveLazy(DefID) (Handle, bool)        { return None, false }
func (NoopResolver) DefinitionParams(DefID) []TypeParam      { return nil }
func (NoopResolver) ArrayInterface() (Handle, ParamID, bool) { return None, 0, false }

// DefTable is a map-backed TypeResolver for sessions that register their
// definitions up front (and for tests). It is append-only like the interner.
type DefTable struct {
	defs   map[DefID]Handle
	params map[DefID][]TypeParam

	arrayBody  Handle
	arrayElem  ParamID
	arrayReady bool
}

// NewDefTable builds an empty definition table.
func NewDefTable() *DefTable {
	return &DefTable{
		defs:   make(map[DefID]Handle),
		params: make(map[DefID][]TypeParam),
	}
}

// Define registers (or forward-declares, then completes) a definition body.
func (t *DefTable) Define(def DefID, body Handle) {
	t.defs[def] = body
}

// DefineGeneric registers a generic definition with its bound parameters.
func (t *DefTable) DefineGeneric(def DefID, body Handle, params []TypeParam) {
	t.defs[def] = body
	t.params[def] = params
}

// SetArrayInterface registers the built-in Array interface body.
func (t *DefTable) SetArrayInterface(body Handle, elem ParamID) {
	t.arrayBody = body
	t.arrayElem = elem
	t.arrayReady = true
}

func (t *DefTable) ResolveLazy(def DefID) (Handle, bool) {
	h, ok := t.defs[def]
	return h, ok
}

func (t *DefTable) DefinitionParams(def DefID) []TypeParam {
	return t.params[def]
}

func (t *DefTable) ArrayInterface() (Handle, ParamID, bool) {
	return t.arrayBody, t.arrayElem, t.arrayReady
}
