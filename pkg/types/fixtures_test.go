package types

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Conformance fixtures: each case lowers two small type expressions and
// asserts the assignability verdict, so rule regressions show up as a named
// fixture instead of a unit test diff.

type fixtureFile struct {
	Suites []fixtureSuite `yaml:"suites"`
}

type fixtureSuite struct {
	Name             string        `yaml:"name"`
	StrictNullChecks *bool         `yaml:"strict_null_checks"`
	Cases            []fixtureCase `yaml:"cases"`
}

type fixtureCase struct {
	Source     string `yaml:"source"`
	Target     string `yaml:"target"`
	Assignable bool   `yaml:"assignable"`
}

func TestAssignabilityFixtures(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "assignability.yaml"))
	require.NoError(t, err)

	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	var file fixtureFile
	require.NoError(t, dec.Decode(&file))
	require.NotEmpty(t, file.Suites)

	for _, suite := range file.Suites {
		suite := suite
		t.Run(suite.Name, func(t *testing.T) {
			in := NewInterner()
			c := NewSubtypeChecker(in, nil)
			if suite.StrictNullChecks != nil {
				c.StrictNullChecks = *suite.StrictNullChecks
			}
			for _, tc := range suite.Cases {
				source, err := parseTypeExpr(in, tc.Source)
				require.NoError(t, err, "source %q", tc.Source)
				target, err := parseTypeExpr(in, tc.Target)
				require.NoError(t, err, "target %q", tc.Target)

				got := c.IsAssignable(source, target)
				require.Equalf(t, tc.Assignable, got, "%s -> %s", tc.Source, tc.Target)

				// The explanation engine must agree with the verdict.
				require.Equalf(t, tc.Assignable, c.ExplainFailure(source, target) == nil,
					"explanation disagrees for %s -> %s", tc.Source, tc.Target)
			}
		})
	}
}

// parseTypeExpr reads the small fixture grammar: keywords, string/number/
// boolean literals, `T[]`, unions, tuples and object literals.
func parseTypeExpr(in *Interner, src string) (Handle, error) {
	p := &exprParser{in: in, src: src}
	h, err := p.parseUnion()
	if err != nil {
		return None, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return None, fmt.Errorf("fixture: trailing input at %d in %q", p.pos, src)
	}
	return h, nil
}

type exprParser struct {
	in  *Interner
	src string
	pos int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *exprParser) eat(c byte) bool {
	p.skipSpace()
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) parseUnion() (Handle, error) {
	first, err := p.parsePostfix()
	if err != nil {
		return None, err
	}
	members := []Handle{first}
	for p.eat('|') {
		next, err := p.parsePostfix()
		if err != nil {
			return None, err
		}
		members = append(members, next)
	}
	if len(members) == 1 {
		return first, nil
	}
	return p.in.Union(members), nil
}

func (p *exprParser) parsePostfix() (Handle, error) {
	h, err := p.parsePrimary()
	if err != nil {
		return None, err
	}
	for {
		p.skipSpace()
		if strings.HasPrefix(p.src[p.pos:], "[]") {
			p.pos += 2
			h = p.in.Array(h)
			continue
		}
		return h, nil
	}
}

func (p *exprParser) parsePrimary() (Handle, error) {
	p.skipSpace()
	switch {
	case p.eat('('):
		h, err := p.parseUnion()
		if err != nil {
			return None, err
		}
		if !p.eat(')') {
			return None, fmt.Errorf("fixture: expected ')' at %d", p.pos)
		}
		return h, nil
	case p.peek() == '[':
		return p.parseTuple()
	case p.peek() == '{':
		return p.parseObject()
	case p.peek() == '"' || p.peek() == '\'':
		return p.parseString()
	case p.peek() >= '0' && p.peek() <= '9' || p.peek() == '-':
		return p.parseNumber()
	default:
		return p.parseIdent()
	}
}

func (p *exprParser) parseTuple() (Handle, error) {
	p.pos++ // '['
	var elems []TupleElem
	p.skipSpace()
	if p.eat(']') {
		return p.in.Tuple(nil), nil
	}
	for {
		p.skipSpace()
		rest := false
		if strings.HasPrefix(p.src[p.pos:], "...") {
			rest = true
			p.pos += 3
		}
		h, err := p.parseUnion()
		if err != nil {
			return None, err
		}
		optional := p.eat('?')
		elems = append(elems, TupleElem{Type: h, Optional: optional, Rest: rest})
		if p.eat(',') {
			continue
		}
		if p.eat(']') {
			return p.in.Tuple(elems), nil
		}
		return None, fmt.Errorf("fixture: expected ',' or ']' at %d", p.pos)
	}
}

func (p *exprParser) parseObject() (Handle, error) {
	p.pos++ // '{'
	var props []Property
	p.skipSpace()
	if p.eat('}') {
		return p.in.Object(nil, nil, nil), nil
	}
	for {
		p.skipSpace()
		name := p.readWord()
		if name == "" {
			return None, fmt.Errorf("fixture: expected member name at %d", p.pos)
		}
		optional := p.eat('?')
		if !p.eat(':') {
			return None, fmt.Errorf("fixture: expected ':' at %d", p.pos)
		}
		h, err := p.parseUnion()
		if err != nil {
			return None, err
		}
		props = append(props, Property{Name: p.in.Atom(name), Read: h, Optional: optional})
		if p.eat(',') || p.eat(';') {
			p.skipSpace()
			if p.eat('}') {
				return p.in.Object(props, nil, nil), nil
			}
			continue
		}
		if p.eat('}') {
			return p.in.Object(props, nil, nil), nil
		}
		return None, fmt.Errorf("fixture: expected ',' or '}' at %d", p.pos)
	}
}

func (p *exprParser) parseString() (Handle, error) {
	quote := p.src[p.pos]
	p.pos++
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != quote {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return None, fmt.Errorf("fixture: unterminated string at %d", start)
	}
	text := p.src[start:p.pos]
	p.pos++
	return p.in.LiteralString(text), nil
}

func (p *exprParser) parseNumber() (Handle, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '.') {
		p.pos++
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return None, fmt.Errorf("fixture: bad number %q", p.src[start:p.pos])
	}
	return p.in.LiteralNumber(v), nil
}

func (p *exprParser) readWord() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *exprParser) parseIdent() (Handle, error) {
	word := p.readWord()
	switch word {
	case "any":
		return Any, nil
	case "unknown":
		return Unknown, nil
	case "never":
		return Never, nil
	case "void":
		return Void, nil
	case "undefined":
		return Undefined, nil
	case "null":
		return Null, nil
	case "boolean":
		return Boolean, nil
	case "number":
		return Number, nil
	case "string":
		return String, nil
	case "bigint":
		return BigInt, nil
	case "symbol":
		return Symbol, nil
	case "object":
		return ObjectKeyword, nil
	case "true":
		return BoolTrue, nil
	case "false":
		return BoolFalse, nil
	case "":
		return None, fmt.Errorf("fixture: unexpected character at %d", p.pos)
	default:
		return None, fmt.Errorf("fixture: unknown name %q", word)
	}
}
