package coltype

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// maxDepth bounds the recursion of nested composite types (Array of Array
// of ... ), guarding against a malicious or corrupt type string driving the
// parser into a stack overflow.
const maxDepth = 32

// ErrTooDeep is returned when a type string nests composites past maxDepth.
var ErrTooDeep = errors.New("coltype: type nesting exceeds maximum depth")

// lexer is a hand-rolled byte cursor over a type string. It has no notion
// of tokens beyond "skip insignificant bytes, then match a literal or a
// run of ident characters" -- the grammar is small enough that a real
// tokenizer would only add ceremony.
type lexer struct {
	s   string
	pos int
}

func newLexer(s string) *lexer {
	return &lexer{s: s}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.s) && (l.s[l.pos] == ' ' || l.s[l.pos] == '\t') {
		l.pos++
	}
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.s) {
		return 0
	}
	return l.s[l.pos]
}

// match consumes a single literal byte, returning false (without advancing)
// if it isn't present.
func (l *lexer) match(c byte) bool {
	l.skipSpace()
	if l.peek() != c {
		return false
	}
	l.pos++
	return true
}

// matchIdent consumes a run of identifier characters (letters, digits,
// underscore) and returns it, or "" if the cursor isn't on one.
func (l *lexer) matchIdent() string {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.s) && isIdentByte(l.s[l.pos]) {
		l.pos++
	}
	return l.s[start:l.pos]
}

// matchInt consumes an optionally-signed decimal integer.
func (l *lexer) matchInt() (int64, bool) {
	l.skipSpace()
	start := l.pos
	if l.peek() == '-' {
		l.pos++
	}
	digitsStart := l.pos
	for l.pos < len(l.s) && l.s[l.pos] >= '0' && l.s[l.pos] <= '9' {
		l.pos++
	}
	if l.pos == digitsStart {
		l.pos = start
		return 0, false
	}
	v, err := strconv.ParseInt(l.s[start:l.pos], 10, 64)
	if err != nil {
		l.pos = start
		return 0, false
	}
	return v, true
}

// matchQuoted consumes a single-quoted string, handling '' as an escaped
// literal quote, and returns the unescaped contents.
func (l *lexer) matchQuoted() (string, bool) {
	l.skipSpace()
	if l.peek() != '\'' {
		return "", false
	}
	start := l.pos
	l.pos++
	var b strings.Builder
	for {
		if l.pos >= len(l.s) {
			l.pos = start
			return "", false
		}
		c := l.s[l.pos]
		if c == '\'' {
			if l.pos+1 < len(l.s) && l.s[l.pos+1] == '\'' {
				b.WriteByte('\'')
				l.pos += 2
				continue
			}
			l.pos++
			return b.String(), true
		}
		b.WriteByte(c)
		l.pos++
	}
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// Parse parses a canonical type string such as "Array(Nullable(Decimal(9, 3)))"
// into a Type tree. Results are memoized in a small ARC cache keyed by the
// exact input text, since the same handful of column types recur across
// every block in a query result.
func Parse(s string) (*Type, error) {
	if t, ok := typeCache.Get(s); ok {
		return t, nil
	}
	l := newLexer(s)
	t, err := parseType(l, 0)
	if err != nil {
		return nil, err
	}
	l.skipSpace()
	if l.pos != len(l.s) {
		return nil, errors.Errorf("coltype: trailing garbage in type %q at offset %d", s, l.pos)
	}
	typeCache.Add(s, t)
	return t, nil
}

// parseType implements the single production of the grammar:
//
//	type := ident [ "(" arg ("," arg)* ")" ]
//
// where the meaning of each arg depends on which ident introduced it. depth
// counts composite nesting so a runaway input can't blow the goroutine stack.
func parseType(l *lexer, depth int) (*Type, error) {
	if depth > maxDepth {
		return nil, ErrTooDeep
	}
	name := l.matchIdent()
	if name == "" {
		return nil, errors.Errorf("coltype: expected a type name at offset %d", l.pos)
	}

	switch name {
	case "Array":
		if !l.match('(') {
			return nil, errors.Errorf("coltype: Array expects '(' at offset %d", l.pos)
		}
		elem, err := parseType(l, depth+1)
		if err != nil {
			return nil, err
		}
		if !l.match(')') {
			return nil, errors.Errorf("coltype: Array expects ')' at offset %d", l.pos)
		}
		return NewArray(elem), nil

	case "Nullable":
		if !l.match('(') {
			return nil, errors.Errorf("coltype: Nullable expects '(' at offset %d", l.pos)
		}
		elem, err := parseType(l, depth+1)
		if err != nil {
			return nil, err
		}
		if !l.match(')') {
			return nil, errors.Errorf("coltype: Nullable expects ')' at offset %d", l.pos)
		}
		return NewNullable(elem), nil

	case "LowCardinality":
		if !l.match('(') {
			return nil, errors.Errorf("coltype: LowCardinality expects '(' at offset %d", l.pos)
		}
		elem, err := parseType(l, depth+1)
		if err != nil {
			return nil, err
		}
		if !l.match(')') {
			return nil, errors.Errorf("coltype: LowCardinality expects ')' at offset %d", l.pos)
		}
		return NewLowCardinality(elem), nil

	case "Tuple":
		if !l.match('(') {
			return nil, errors.Errorf("coltype: Tuple expects '(' at offset %d", l.pos)
		}
		var elems []*Type
		for {
			e, err := parseType(l, depth+1)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if l.match(',') {
				continue
			}
			break
		}
		if !l.match(')') {
			return nil, errors.Errorf("coltype: Tuple expects ')' at offset %d", l.pos)
		}
		return NewTuple(elems), nil

	case "Map":
		if !l.match('(') {
			return nil, errors.Errorf("coltype: Map expects '(' at offset %d", l.pos)
		}
		key, err := parseType(l, depth+1)
		if err != nil {
			return nil, err
		}
		if !l.match(',') {
			return nil, errors.Errorf("coltype: Map expects ',' at offset %d", l.pos)
		}
		val, err := parseType(l, depth+1)
		if err != nil {
			return nil, err
		}
		if !l.match(')') {
			return nil, errors.Errorf("coltype: Map expects ')' at offset %d", l.pos)
		}
		return NewMap(key, val), nil

	case "FixedString":
		if !l.match('(') {
			return nil, errors.Errorf("coltype: FixedString expects '(' at offset %d", l.pos)
		}
		n, ok := l.matchInt()
		if !ok || n < 0 {
			return nil, errors.Errorf("coltype: FixedString expects a non-negative length at offset %d", l.pos)
		}
		if !l.match(')') {
			return nil, errors.Errorf("coltype: FixedString expects ')' at offset %d", l.pos)
		}
		return NewFixedString(int(n)), nil

	case "Decimal":
		if !l.match('(') {
			return nil, errors.Errorf("coltype: Decimal expects '(' at offset %d", l.pos)
		}
		p, ok := l.matchInt()
		if !ok {
			return nil, errors.Errorf("coltype: Decimal expects precision at offset %d", l.pos)
		}
		if !l.match(',') {
			return nil, errors.Errorf("coltype: Decimal expects ',' at offset %d", l.pos)
		}
		sc, ok := l.matchInt()
		if !ok {
			return nil, errors.Errorf("coltype: Decimal expects scale at offset %d", l.pos)
		}
		if !l.match(')') {
			return nil, errors.Errorf("coltype: Decimal expects ')' at offset %d", l.pos)
		}
		if p < 1 || p > 38 {
			return nil, errors.Errorf("coltype: Decimal precision %d out of range [1,38]", p)
		}
		if sc < 0 || sc > p {
			return nil, errors.Errorf("coltype: Decimal scale %d out of range [0,%d]", sc, p)
		}
		return NewDecimal(int(p), int(sc)), nil

	case "DateTime":
		if !l.match('(') {
			return NewDateTime(""), nil
		}
		tz, ok := l.matchQuoted()
		if !ok {
			return nil, errors.Errorf("coltype: DateTime expects a quoted timezone at offset %d", l.pos)
		}
		if !l.match(')') {
			return nil, errors.Errorf("coltype: DateTime expects ')' at offset %d", l.pos)
		}
		return NewDateTime(tz), nil

	case "DateTime64":
		if !l.match('(') {
			return nil, errors.Errorf("coltype: DateTime64 expects '(' at offset %d", l.pos)
		}
		p, ok := l.matchInt()
		if !ok || p < 0 || p > 9 {
			return nil, errors.Errorf("coltype: DateTime64 expects precision in [0,9] at offset %d", l.pos)
		}
		var tz string
		if l.match(',') {
			tz, ok = l.matchQuoted()
			if !ok {
				return nil, errors.Errorf("coltype: DateTime64 expects a quoted timezone at offset %d", l.pos)
			}
		}
		if !l.match(')') {
			return nil, errors.Errorf("coltype: DateTime64 expects ')' at offset %d", l.pos)
		}
		return NewDateTime64(int(p), tz), nil

	case "Enum8", "Enum16":
		bits := 8
		if name == "Enum16" {
			bits = 16
		}
		if !l.match('(') {
			return nil, errors.Errorf("coltype: %s expects '(' at offset %d", name, l.pos)
		}
		var values []EnumValue
		for {
			label, ok := l.matchQuoted()
			if !ok {
				return nil, errors.Errorf("coltype: %s expects a quoted label at offset %d", name, l.pos)
			}
			if !l.match('=') {
				return nil, errors.Errorf("coltype: %s expects '=' at offset %d", name, l.pos)
			}
			v, ok := l.matchInt()
			if !ok {
				return nil, errors.Errorf("coltype: %s expects an integer value at offset %d", name, l.pos)
			}
			values = append(values, EnumValue{Label: label, Value: int32(v)})
			if l.match(',') {
				continue
			}
			break
		}
		if !l.match(')') {
			return nil, errors.Errorf("coltype: %s expects ')' at offset %d", name, l.pos)
		}
		return NewEnum(bits, values), nil

	default:
		if k, ok := nameToScalarKind[name]; ok {
			return Scalar(k), nil
		}
		return nil, errors.Errorf("coltype: unknown type name %q at offset %d", name, l.pos)
	}
}
