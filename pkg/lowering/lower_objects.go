package lowering

import (
	"gradient/typesys-go/pkg/typenodes"
	"gradient/typesys-go/pkg/types"
)

// lowerFn is the node-lowering callback threaded through object and signature
// lowering, so the infer-aware extends path reuses the same structure walk.
type lowerFn func(typenodes.Node, int) types.Handle

func (l *Lowerer) lowerObject(n *typenodes.ObjectType, depth int) types.Handle {
	return l.lowerObjectWith(n, depth, l.lower)
}

// lowerObjectWith flattens an object type literal's members. Get/set pairs
// merge into one property with divergent read/write types; the presence of
// any call or construct signature switches the result to a callable shape.
func (l *Lowerer) lowerObjectWith(n *typenodes.ObjectType, depth int, low lowerFn) types.Handle {
	var (
		props     []types.Property
		propIdx   = make(map[types.Atom]int)
		strIdx    *types.IndexSignature
		numIdx    *types.IndexSignature
		calls     []types.Signature
		construct []types.Signature
	)

	upsert := func(name types.Atom) *types.Property {
		if i, ok := propIdx[name]; ok {
			return &props[i]
		}
		propIdx[name] = len(props)
		props = append(props, types.Property{Name: name})
		return &props[len(props)-1]
	}

	for _, m := range n.Members {
		switch m := m.(type) {
		case *typenodes.PropertySignature:
			p := upsert(l.in.Atom(m.Name))
			p.Read = l.typeOrAny(m.Type, depth, low)
			p.Optional = m.Optional
			p.Readonly = m.Readonly
			p.Visible = types.Visibility(m.Visibility)
			p.Parent = types.SymbolID(m.DeclaredBy)
		case *typenodes.MethodSignature:
			p := upsert(l.in.Atom(m.Name))
			p.Read = l.in.Function(l.lowerSignatureAs(m.Fn, true, depth, low))
			p.Optional = m.Optional
			p.IsMethod = true
			p.Visible = types.Visibility(m.Visibility)
			p.Parent = types.SymbolID(m.DeclaredBy)
		case *typenodes.GetAccessor:
			p := upsert(l.in.Atom(m.Name))
			p.Read = l.typeOrAny(m.Type, depth, low)
		case *typenodes.SetAccessor:
			p := upsert(l.in.Atom(m.Name))
			p.Write = l.typeOrAny(m.Type, depth, low)
			if p.Read == types.None {
				// Write-only member: reading yields what was written.
				p.Read = p.Write
			}
		case *typenodes.IndexSignatureMember:
			sig := &types.IndexSignature{Value: l.typeOrAny(m.Value, depth, low), Readonly: m.Readonly}
			if m.KeyIsNumber {
				numIdx = sig
			} else {
				strIdx = sig
			}
		case *typenodes.CallSignatureMember:
			calls = append(calls, l.lowerSignatureAs(m.Fn, false, depth, low))
		case *typenodes.ConstructSignatureMember:
			construct = append(construct, l.lowerSignatureAs(m.Fn, false, depth, low))
		}
	}

	if len(calls) > 0 || len(construct) > 0 {
		return l.in.Callable(types.CallableShape{
			CallSignatures:      calls,
			ConstructSignatures: construct,
			Props:               props,
			StringIndex:         strIdx,
			NumberIndex:         numIdx,
		})
	}
	return l.in.Object(props, strIdx, numIdx)
}

func (l *Lowerer) lowerSignature(fn *typenodes.FunctionType, isMethod bool, depth int) types.Signature {
	return l.lowerSignatureAs(fn, isMethod, depth, l.lower)
}

func (l *Lowerer) lowerSignatureWith(fn *typenodes.FunctionType, depth int, low lowerFn) types.Signature {
	return l.lowerSignatureAs(fn, false, depth, low)
}

// lowerSignatureAs lowers one call/construct signature. Declared type
// parameters scope over their own constraints and defaults (F-bounds work),
// the parameter list, `this` and the return type.
func (l *Lowerer) lowerSignatureAs(fn *typenodes.FunctionType, isMethod bool, depth int, low lowerFn) types.Signature {
	l.pushScope()
	defer l.popScope()

	tps := make([]types.TypeParam, len(fn.TypeParams))
	for i, d := range fn.TypeParams {
		tp := types.TypeParam{Name: l.in.Atom(d.Name), ID: l.allocParam()}
		tps[i] = tp
		l.declare(d.Name, l.in.TypeParameter(tp))
	}
	for i, d := range fn.TypeParams {
		if d.Constraint != nil {
			tps[i].Constraint = low(d.Constraint, depth+1)
		}
		if d.Default != nil {
			tps[i].Default = low(d.Default, depth+1)
		}
	}

	params := make([]types.Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = types.Param{
			Name:     l.atomOrZero(p.Name),
			Type:     l.typeOrAny(p.Type, depth, low),
			Optional: p.Optional,
			Rest:     p.Rest,
		}
	}

	sig := types.Signature{
		TypeParams: tps,
		Params:     params,
		IsMethod:   isMethod,
	}
	if fn.This != nil {
		sig.This = low(fn.This, depth+1)
	}
	sig.Return = l.typeOrAny(fn.Return, depth, low)

	if fn.Predicate != nil {
		pred := &types.Predicate{Asserts: fn.Predicate.Asserts}
		if fn.Predicate.Type != nil {
			pred.Type = low(fn.Predicate.Type, depth+1)
		}
		if fn.Predicate.Target == "this" {
			pred.Target = types.PredicateThis
			pred.ParamIndex = -1
		} else {
			pred.Target = types.PredicateParam
			pred.ParamName = l.in.Atom(fn.Predicate.Target)
			pred.ParamIndex = -1
			for i, p := range fn.Params {
				if p.Name == fn.Predicate.Target {
					pred.ParamIndex = i
					break
				}
			}
		}
		sig.Predicate = pred
		// An asserting function returns nothing to the caller.
		if pred.Asserts {
			sig.Return = types.Void
		} else if fn.Return == nil {
			sig.Return = types.Boolean
		}
	}
	return sig
}

func (l *Lowerer) typeOrAny(n typenodes.Node, depth int, low lowerFn) types.Handle {
	if n == nil {
		return types.Any
	}
	return low(n, depth+1)
}
