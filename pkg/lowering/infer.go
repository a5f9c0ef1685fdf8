package lowering

import (
	"github.com/hashicorp/go-set/v3"

	"gradient/typesys-go/pkg/types"
)

// InferParams collects the `infer` bindings reachable inside a lowered
// extends clause, in first-encounter order. The conditional evaluator uses
// the list to seed its substitution before resolving a branch. The walk
// covers every shape variant and carries a visited set, so shared subtrees
// and recursive references terminate.
func InferParams(in *types.Interner, h types.Handle) []types.TypeParam {
	w := inferWalker{
		in:      in,
		visited: set.New[types.Handle](16),
		seen:    set.New[types.ParamID](4),
	}
	w.walk(h)
	return w.params
}

type inferWalker struct {
	in      *types.Interner
	visited *set.Set[types.Handle]
	seen    *set.Set[types.ParamID]
	params  []types.TypeParam
}

func (w *inferWalker) walk(h types.Handle) {
	if w.visited.Contains(h) {
		return
	}
	w.visited.Insert(h)

	switch s := w.in.Shape(h).(type) {
	case *types.InferShape:
		if !w.seen.Contains(s.Param.ID) {
			w.seen.Insert(s.Param.ID)
			w.params = append(w.params, s.Param)
		}
		if s.Param.Constraint != types.None {
			w.walk(s.Param.Constraint)
		}
	case *types.ArrayShape:
		w.walk(s.Elem)
	case *types.TupleShape:
		for _, e := range s.Elems {
			w.walk(e.Type)
		}
	case *types.ObjectShape:
		w.walkProps(s.Props, s.StringIndex, s.NumberIndex)
	case *types.CallableShape:
		for _, sig := range s.CallSignatures {
			w.walkSig(sig)
		}
		for _, sig := range s.ConstructSignatures {
			w.walkSig(sig)
		}
		w.walkProps(s.Props, s.StringIndex, s.NumberIndex)
	case *types.FunctionShape:
		w.walkSig(s.Sig)
	case *types.UnionShape:
		for _, m := range s.Members {
			w.walk(m)
		}
	case *types.IntersectionShape:
		for _, m := range s.Members {
			w.walk(m)
		}
	case *types.ApplicationShape:
		w.walk(s.Base)
		for _, a := range s.Args {
			w.walk(a)
		}
	case *types.ConditionalShape:
		// A nested conditional owns its inner infer bindings; only its
		// check type can reference outer ones.
		w.walk(s.Check)
	case *types.MappedShape:
		w.walk(s.Constraint)
		if s.NameType != types.None {
			w.walk(s.NameType)
		}
		w.walk(s.Template)
	case *types.IndexAccessShape:
		w.walk(s.Object)
		w.walk(s.Index)
	case *types.KeyOfShape:
		w.walk(s.Inner)
	case *types.ReadonlyShape:
		w.walk(s.Inner)
	case *types.NoInferShape:
		w.walk(s.Inner)
	case *types.TemplateLiteralShape:
		for _, sp := range s.Spans {
			if sp.IsType {
				w.walk(sp.Type)
			}
		}
	case *types.StringIntrinsicShape:
		w.walk(s.Arg)
	case *types.TypeParamShape:
		if s.Param.Constraint != types.None {
			w.walk(s.Param.Constraint)
		}
	}
}

func (w *inferWalker) walkProps(props []types.Property, strIdx, numIdx *types.IndexSignature) {
	for _, p := range props {
		w.walk(p.Read)
		if p.Write != types.None {
			w.walk(p.Write)
		}
	}
	if strIdx != nil {
		w.walk(strIdx.Value)
	}
	if numIdx != nil {
		w.walk(numIdx.Value)
	}
}

func (w *inferWalker) walkSig(sig types.Signature) {
	for _, tp := range sig.TypeParams {
		if tp.Constraint != types.None {
			w.walk(tp.Constraint)
		}
		if tp.Default != types.None {
			w.walk(tp.Default)
		}
	}
	for _, p := range sig.Params {
		w.walk(p.Type)
	}
	if sig.This != types.None {
		w.walk(sig.This)
	}
	w.walk(sig.Return)
	if sig.Predicate != nil && sig.Predicate.Type != types.None {
		w.walk(sig.Predicate.Type)
	}
}
