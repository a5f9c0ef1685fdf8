package lowering

import (
	"gradient/typesys-go/pkg/typenodes"
	"gradient/typesys-go/pkg/types"
)

// Primitive keywords resolve before anything else; they cannot be shadowed.
var keywordHandles = map[string]types.Handle{
	"any":       types.Any,
	"unknown":   types.Unknown,
	"never":     types.Never,
	"void":      types.Void,
	"undefined": types.Undefined,
	"null":      types.Null,
	"boolean":   types.Boolean,
	"number":    types.Number,
	"string":    types.String,
	"bigint":    types.BigInt,
	"symbol":    types.Symbol,
	"object":    types.ObjectKeyword,
}

// lowerReference resolves a named reference. Priority: primitive keywords,
// then lexically scoped type parameters, then the string-manipulation
// intrinsics, then declaration lookup (name first, node-index fallback). The
// built-in array aliases apply only when no declaration shadows the name.
// Unresolvable names lower to the error sentinel.
func (l *Lowerer) lowerReference(n *typenodes.Reference, depth int) types.Handle {
	if h, ok := keywordHandles[n.Name]; ok && len(n.Args) == 0 {
		return h
	}
	if h, ok := l.lookup(n.Name); ok {
		if len(n.Args) > 0 {
			// Type parameters are not generic.
			return types.ErrorType
		}
		return h
	}

	switch n.Name {
	case "Uppercase":
		return l.stringIntrinsic(types.IntrinsicUppercase, n, depth)
	case "Lowercase":
		return l.stringIntrinsic(types.IntrinsicLowercase, n, depth)
	case "Capitalize":
		return l.stringIntrinsic(types.IntrinsicCapitalize, n, depth)
	case "Uncapitalize":
		return l.stringIntrinsic(types.IntrinsicUncapitalize, n, depth)
	case "NoInfer":
		if len(n.Args) != 1 {
			return types.ErrorType
		}
		return l.in.NoInfer(l.lower(n.Args[0], depth+1))
	}

	def, ok := l.resolver.DefinitionForName(n.Name)
	if !ok && n.NodeIndex != 0 {
		def, ok = l.resolver.DefinitionForNode(n.NodeIndex)
	}
	if !ok {
		switch n.Name {
		case "Array":
			return l.in.Array(l.singleArg(n, depth))
		case "ReadonlyArray":
			return l.in.Readonly(l.in.Array(l.singleArg(n, depth)))
		}
		return types.ErrorType
	}
	base := l.in.Lazy(def)
	if len(n.Args) == 0 {
		return base
	}
	args := make([]types.Handle, len(n.Args))
	for i, a := range n.Args {
		args[i] = l.lower(a, depth+1)
	}
	return l.in.Application(base, args)
}

func (l *Lowerer) stringIntrinsic(kind types.StringIntrinsicKind, n *typenodes.Reference, depth int) types.Handle {
	if len(n.Args) != 1 {
		return types.ErrorType
	}
	return l.in.StringIntrinsic(kind, l.lower(n.Args[0], depth+1))
}

// singleArg lowers the sole type argument of an array alias; a bare `Array`
// is an array of any.
func (l *Lowerer) singleArg(n *typenodes.Reference, depth int) types.Handle {
	if len(n.Args) == 0 {
		return types.Any
	}
	if len(n.Args) > 1 {
		return types.ErrorType
	}
	return l.lower(n.Args[0], depth+1)
}
