package lowering

import (
	"strconv"
	"strings"

	"gradient/typesys-go/pkg/typenodes"
	"gradient/typesys-go/pkg/types"
)

func (l *Lowerer) lowerLiteral(lit typenodes.LiteralNode) types.Handle {
	switch lit := lit.(type) {
	case *typenodes.StringLit:
		return l.in.LiteralString(lit.Text)
	case *typenodes.NumberLit:
		if lit.HasValue {
			return l.in.LiteralNumber(lit.Value)
		}
		v, ok := parseNumberText(lit.Text)
		if !ok {
			return types.ErrorType
		}
		return l.in.LiteralNumber(v)
	case *typenodes.BigIntLit:
		digits, ok := normalizeBigIntText(lit.Text)
		if !ok {
			return types.ErrorType
		}
		return l.in.LiteralBigInt(digits)
	case *typenodes.BoolLit:
		return l.in.LiteralBool(lit.Value)
	case *typenodes.PrefixUnary:
		return l.lowerSignedLiteral(lit)
	default:
		return types.ErrorType
	}
}

func (l *Lowerer) lowerSignedLiteral(u *typenodes.PrefixUnary) types.Handle {
	switch op := u.Operand.(type) {
	case *typenodes.NumberLit:
		v, ok := op.Value, op.HasValue
		if !ok {
			v, ok = parseNumberText(op.Text)
		}
		if !ok {
			return types.ErrorType
		}
		if u.Minus {
			v = -v
		}
		return l.in.LiteralNumber(v)
	case *typenodes.BigIntLit:
		digits, ok := normalizeBigIntText(op.Text)
		if !ok {
			return types.ErrorType
		}
		// -0n folds to 0n.
		if u.Minus && digits != "0" {
			digits = "-" + digits
		}
		return l.in.LiteralBigInt(digits)
	default:
		return types.ErrorType
	}
}

// parseNumberText decodes a numeric literal's source text, handling the
// 0x/0o/0b radix prefixes and `_` separators the standard float parser does
// not accept.
func parseNumberText(text string) (float64, bool) {
	s := stripSeparators(text)
	if s == "" {
		return 0, false
	}
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			return parseRadixDigits(s[2:], 16)
		case 'o', 'O':
			return parseRadixDigits(s[2:], 8)
		case 'b', 'B':
			return parseRadixDigits(s[2:], 2)
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseRadixDigits accumulates digits one by one, so values beyond the int64
// range degrade to float precision instead of overflowing.
func parseRadixDigits(digits string, base int) (float64, bool) {
	if digits == "" {
		return 0, false
	}
	v := 0.0
	for i := 0; i < len(digits); i++ {
		d := digitValue(digits[i])
		if d < 0 || d >= base {
			return 0, false
		}
		v = v*float64(base) + float64(d)
	}
	return v, true
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}

// normalizeBigIntText converts a bigint literal's source digits (any radix)
// to canonical decimal form, so `0x10n` and `16n` intern identically.
func normalizeBigIntText(text string) (string, bool) {
	s := stripSeparators(text)
	if s == "" {
		return "", false
	}
	base := 10
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base, s = 16, s[2:]
		case 'o', 'O':
			base, s = 8, s[2:]
		case 'b', 'B':
			base, s = 2, s[2:]
		}
	}
	if s == "" {
		return "", false
	}
	digits := make([]int, 0, len(s))
	for i := 0; i < len(s); i++ {
		d := digitValue(s[i])
		if d < 0 || d >= base {
			return "", false
		}
		digits = append(digits, d)
	}
	if base == 10 {
		return strings.TrimLeft(s, "0") + pickZero(s), true
	}
	return bigintBaseToDecimal(digits, base), true
}

// pickZero keeps a single zero when trimming stripped everything.
func pickZero(s string) string {
	if strings.Trim(s, "0") == "" {
		return "0"
	}
	return ""
}

// bigintBaseToDecimal converts arbitrary-precision base-b digits to decimal
// by repeated long division by ten, collecting remainders.
func bigintBaseToDecimal(digits []int, base int) string {
	// Drop leading zeros first so the loop terminates on the value, not
	// the textual length.
	i := 0
	for i < len(digits) && digits[i] == 0 {
		i++
	}
	digits = digits[i:]
	if len(digits) == 0 {
		return "0"
	}
	var out []byte
	for len(digits) > 0 {
		rem := 0
		next := digits[:0:0]
		for _, d := range digits {
			cur := rem*base + d
			q := cur / 10
			rem = cur % 10
			if len(next) > 0 || q != 0 {
				next = append(next, q)
			}
		}
		out = append(out, byte('0'+rem))
		digits = next
	}
	for a, b := 0, len(out)-1; a < b; a, b = a+1, b-1 {
		out[a], out[b] = out[b], out[a]
	}
	return string(out)
}

func stripSeparators(s string) string {
	if !strings.ContainsRune(s, '_') {
		return s
	}
	return strings.ReplaceAll(s, "_", "")
}
