package lowering

import (
	"testing"

	"gradient/typesys-go/pkg/typenodes"
	"gradient/typesys-go/pkg/types"
)

func lowerNumber(t *testing.T, l *Lowerer, text string) float64 {
	t.Helper()
	h := l.Lower(typenodes.NumLit(text))
	shape, ok := l.Interner().Shape(h).(*types.LiteralShape)
	if !ok || shape.Value.Kind != types.LiteralNumber {
		t.Fatalf("expected %q to lower to a number literal, got %T", text, l.Interner().Shape(h))
	}
	return shape.Value.Num
}

func lowerBigInt(t *testing.T, l *Lowerer, text string) string {
	t.Helper()
	h := l.Lower(typenodes.BigLit(text))
	shape, ok := l.Interner().Shape(h).(*types.LiteralShape)
	if !ok || shape.Value.Kind != types.LiteralBigInt {
		t.Fatalf("expected %q to lower to a bigint literal, got %T", text, l.Interner().Shape(h))
	}
	return shape.Value.Str
}

func TestNumberLiteralRadixes(t *testing.T) {
	l := NewLowerer(types.NewInterner(), nil)
	cases := []struct {
		text string
		want float64
	}{
		{"42", 42},
		{"4_2", 42},
		{"0x10", 16},
		{"0x1_0", 16},
		{"0xfF", 255},
		{"0o17", 15},
		{"0b101", 5},
		{"1.5", 1.5},
		{"1e3", 1000},
	}
	for _, c := range cases {
		if got := lowerNumber(t, l, c.text); got != c.want {
			t.Fatalf("%q lowered to %v, want %v", c.text, got, c.want)
		}
	}
}

func TestNumberLiteralBadDigits(t *testing.T) {
	l := NewLowerer(types.NewInterner(), nil)
	for _, text := range []string{"0x", "0xg1", "0b2", "0o9", "", "12abc"} {
		if h := l.Lower(typenodes.NumLit(text)); h != types.ErrorType {
			t.Fatalf("expected %q to lower to the error sentinel, got %d", text, h)
		}
	}
}

func TestBigIntNormalization(t *testing.T) {
	l := NewLowerer(types.NewInterner(), nil)
	cases := []struct{ text, want string }{
		{"10", "10"},
		{"0010", "10"},
		{"0", "0"},
		{"1_000", "1000"},
		{"0x10", "16"},
		{"0xff", "255"},
		{"0b1010", "10"},
		{"0o17", "15"},
		{"0x0", "0"},
		{"0xDEADBEEFDEADBEEFDEADBEEF", "68915718021581205938132336367"},
	}
	for _, c := range cases {
		if got := lowerBigInt(t, l, c.text); got != c.want {
			t.Fatalf("%q normalized to %q, want %q", c.text, got, c.want)
		}
	}

	// Equal values intern identically regardless of source radix.
	if l.Lower(typenodes.BigLit("0x10")) != l.Lower(typenodes.BigLit("16")) {
		t.Fatalf("expected 0x10n and 16n to share a handle")
	}
}

func TestNegativeLiterals(t *testing.T) {
	l := NewLowerer(types.NewInterner(), nil)
	if got := lowerNumber(t, l, "0x10"); got != 16 {
		t.Fatalf("sanity: got %v", got)
	}

	h := l.Lower(typenodes.Neg(&typenodes.NumberLit{Text: "1.5"}))
	shape := l.Interner().Shape(h).(*types.LiteralShape)
	if shape.Value.Num != -1.5 {
		t.Fatalf("expected -1.5, got %v", shape.Value.Num)
	}

	h = l.Lower(typenodes.Neg(&typenodes.BigIntLit{Text: "10"}))
	shape = l.Interner().Shape(h).(*types.LiteralShape)
	if shape.Value.Str != "-10" {
		t.Fatalf("expected -10, got %q", shape.Value.Str)
	}

	// -0n folds to 0n.
	h = l.Lower(typenodes.Neg(&typenodes.BigIntLit{Text: "0"}))
	shape = l.Interner().Shape(h).(*types.LiteralShape)
	if shape.Value.Str != "0" {
		t.Fatalf("expected negative zero folded, got %q", shape.Value.Str)
	}
}

func TestStringAndBoolLiterals(t *testing.T) {
	in := types.NewInterner()
	l := NewLowerer(in, nil)
	if l.Lower(typenodes.StrLit("hi")) != in.LiteralString("hi") {
		t.Fatalf("string literal must intern through the session interner")
	}
	if l.Lower(typenodes.BoolT(true)) != types.BoolTrue {
		t.Fatalf("true literal must be the pre-seeded handle")
	}
}
