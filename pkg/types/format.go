package types

import (
	"strconv"
	"strings"
)

// Format renders a handle as source-like type text for diagnostics. Cycles
// print as "..." at the point of re-entry.
func Format(in *Interner, h Handle) string {
	f := formatter{in: in, seen: make(map[Handle]bool)}
	var b strings.Builder
	f.write(&b, h)
	return b.String()
}

type formatter struct {
	in   *Interner
	seen map[Handle]bool
}

func (f *formatter) write(b *strings.Builder, h Handle) {
	if f.seen[h] {
		b.WriteString("...")
		return
	}
	f.seen[h] = true
	defer delete(f.seen, h)

	in := f.in
	switch s := in.Shape(h).(type) {
	case *ErrorShape, nil:
		b.WriteString("error")
	case *IntrinsicShape:
		b.WriteString(s.Kind.String())
	case *LiteralShape:
		switch s.Value.Kind {
		case LiteralString:
			b.WriteString(strconv.Quote(s.Value.Str))
		case LiteralNumber:
			b.WriteString(strconv.FormatFloat(s.Value.Num, 'g', -1, 64))
		case LiteralBigInt:
			b.WriteString(s.Value.Str)
			b.WriteByte('n')
		case LiteralBoolean:
			b.WriteString(strconv.FormatBool(s.Value.Bool))
		}
	case *ArrayShape:
		f.writeAtom(b, s.Elem)
		b.WriteString("[]")
	case *TupleShape:
		b.WriteByte('[')
		for i, e := range s.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			if e.Rest {
				b.WriteString("...")
			}
			if e.Name != 0 {
				b.WriteString(in.AtomName(e.Name))
				if e.Optional {
					b.WriteByte('?')
				}
				b.WriteString(": ")
				f.write(b, e.Type)
				continue
			}
			f.write(b, e.Type)
			if e.Optional {
				b.WriteByte('?')
			}
		}
		b.WriteByte(']')
	case *ObjectShape:
		f.writeMembers(b, s.Props, s.StringIndex, s.NumberIndex)
	case *FunctionShape:
		if s.IsConstructor {
			b.WriteString("new ")
		}
		f.writeSig(b, s.Sig, " => ")
	case *CallableShape:
		b.WriteString("{ ")
		for _, sig := range s.CallSignatures {
			f.writeSig(b, sig, ": ")
			b.WriteString("; ")
		}
		for _, sig := range s.ConstructSignatures {
			b.WriteString("new ")
			f.writeSig(b, sig, ": ")
			b.WriteString("; ")
		}
		for _, p := range s.Props {
			f.writeProp(b, p)
		}
		f.writeIndex(b, s.StringIndex, "string")
		f.writeIndex(b, s.NumberIndex, "number")
		b.WriteByte('}')
	case *UnionShape:
		for i, m := range s.Members {
			if i > 0 {
				b.WriteString(" | ")
			}
			f.writeAtom(b, m)
		}
	case *IntersectionShape:
		for i, m := range s.Members {
			if i > 0 {
				b.WriteString(" & ")
			}
			f.writeAtom(b, m)
		}
	case *TypeParamShape:
		b.WriteString(in.AtomName(s.Param.Name))
	case *ApplicationShape:
		f.write(b, s.Base)
		b.WriteByte('<')
		for i, a := range s.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			f.write(b, a)
		}
		b.WriteByte('>')
	case *ConditionalShape:
		f.write(b, s.Check)
		b.WriteString(" extends ")
		f.write(b, s.Extends)
		b.WriteString(" ? ")
		f.write(b, s.True)
		b.WriteString(" : ")
		f.write(b, s.False)
	case *MappedShape:
		b.WriteString("{ [")
		b.WriteString(in.AtomName(s.Param.Name))
		b.WriteString(" in ")
		f.write(b, s.Constraint)
		if s.NameType != None {
			b.WriteString(" as ")
			f.write(b, s.NameType)
		}
		b.WriteString("]: ")
		f.write(b, s.Template)
		b.WriteString(" }")
	case *IndexAccessShape:
		f.writeAtom(b, s.Object)
		b.WriteByte('[')
		f.write(b, s.Index)
		b.WriteByte(']')
	case *KeyOfShape:
		b.WriteString("keyof ")
		f.writeAtom(b, s.Inner)
	case *ReadonlyShape:
		b.WriteString("readonly ")
		f.writeAtom(b, s.Inner)
	case *NoInferShape:
		b.WriteString("NoInfer<")
		f.write(b, s.Inner)
		b.WriteByte('>')
	case *TemplateLiteralShape:
		b.WriteByte('`')
		for _, sp := range s.Spans {
			if sp.IsType {
				b.WriteString("${")
				f.write(b, sp.Type)
				b.WriteByte('}')
			} else {
				b.WriteString(in.AtomName(sp.Text))
			}
		}
		b.WriteByte('`')
	case *InferShape:
		b.WriteString("infer ")
		b.WriteString(in.AtomName(s.Param.Name))
	case *LazyShape:
		b.WriteString("#" + strconv.Itoa(int(s.Def)))
	case *EnumShape:
		b.WriteString("enum#" + strconv.Itoa(int(s.Def)))
	case *TypeQueryShape:
		b.WriteString("typeof #" + strconv.Itoa(int(s.Symbol)))
	case *UniqueSymbolShape:
		b.WriteString("unique symbol")
	case *ThisShape:
		b.WriteString("this")
	case *ModuleNamespaceShape:
		b.WriteString("namespace#" + strconv.Itoa(int(s.Symbol)))
	case *StringIntrinsicShape:
		switch s.Kind {
		case IntrinsicUppercase:
			b.WriteString("Uppercase<")
		case IntrinsicLowercase:
			b.WriteString("Lowercase<")
		case IntrinsicCapitalize:
			b.WriteString("Capitalize<")
		default:
			b.WriteString("Uncapitalize<")
		}
		f.write(b, s.Arg)
		b.WriteByte('>')
	}
}

// writeAtom parenthesizes compound operands so `string | number[]` and
// `(string | number)[]` print differently.
func (f *formatter) writeAtom(b *strings.Builder, h Handle) {
	switch f.in.Shape(h).(type) {
	case *UnionShape, *IntersectionShape, *FunctionShape, *ConditionalShape:
		b.WriteByte('(')
		f.write(b, h)
		b.WriteByte(')')
	default:
		f.write(b, h)
	}
}

func (f *formatter) writeMembers(b *strings.Builder, props []Property, strIdx, numIdx *IndexSignature) {
	if len(props) == 0 && strIdx == nil && numIdx == nil {
		b.WriteString("{}")
		return
	}
	b.WriteString("{ ")
	for _, p := range props {
		f.writeProp(b, p)
	}
	f.writeIndex(b, strIdx, "string")
	f.writeIndex(b, numIdx, "number")
	b.WriteByte('}')
}

func (f *formatter) writeProp(b *strings.Builder, p Property) {
	if p.Visible != Public {
		b.WriteString(p.Visible.String())
		b.WriteByte(' ')
	}
	if p.Readonly {
		b.WriteString("readonly ")
	}
	b.WriteString(f.in.AtomName(p.Name))
	if p.Optional {
		b.WriteByte('?')
	}
	b.WriteString(": ")
	f.write(b, p.Read)
	b.WriteString("; ")
}

func (f *formatter) writeIndex(b *strings.Builder, idx *IndexSignature, key string) {
	if idx == nil {
		return
	}
	if idx.Readonly {
		b.WriteString("readonly ")
	}
	b.WriteString("[key: ")
	b.WriteString(key)
	b.WriteString("]: ")
	f.write(b, idx.Value)
	b.WriteString("; ")
}

func (f *formatter) writeSig(b *strings.Builder, sig Signature, arrow string) {
	if len(sig.TypeParams) > 0 {
		b.WriteByte('<')
		for i, tp := range sig.TypeParams {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.in.AtomName(tp.Name))
			if tp.Constraint != None {
				b.WriteString(" extends ")
				f.write(b, tp.Constraint)
			}
		}
		b.WriteByte('>')
	}
	b.WriteByte('(')
	for i, p := range sig.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Rest {
			b.WriteString("...")
		}
		if p.Name != 0 {
			b.WriteString(f.in.AtomName(p.Name))
			if p.Optional {
				b.WriteByte('?')
			}
			b.WriteString(": ")
		}
		f.write(b, p.Type)
	}
	b.WriteByte(')')
	b.WriteString(arrow)
	f.write(b, sig.Return)
}
