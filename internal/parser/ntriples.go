package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/roach88/ahghee/internal/syntax"
)

const maxTripleLine = 1 << 20

// ParseNTriples reads an N-Triples document. Blank lines and `#` comments
// are skipped; every other line must hold exactly one statement.
func ParseNTriples(r io.Reader) ([]*syntax.Triple, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxTripleLine)

	var triples []*syntax.Triple
	line := 0
	for sc.Scan() {
		line++
		s := &tripleScanner{input: sc.Text(), line: line}
		s.skipSpace()
		if s.done() || s.peek() == '#' {
			continue
		}
		t, err := s.statement()
		if err != nil {
			return nil, err
		}
		triples = append(triples, t)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read n-triples: %w", err)
	}
	return triples, nil
}

type tripleScanner struct {
	input string
	pos   int
	line  int
}

func (s *tripleScanner) done() bool {
	return s.pos >= len(s.input)
}

func (s *tripleScanner) peek() byte {
	if s.done() {
		return 0
	}
	return s.input[s.pos]
}

func (s *tripleScanner) skipSpace() {
	for !s.done() && (s.peek() == ' ' || s.peek() == '\t' || s.peek() == '\r') {
		s.pos++
	}
}

func (s *tripleScanner) errorf(format string, args ...any) error {
	return errorAt(s.line, s.pos+1, format, args...)
}

func (s *tripleScanner) pos1() syntax.Pos {
	return syntax.Pos{Line: s.line, Col: s.pos + 1}
}

func (s *tripleScanner) statement() (*syntax.Triple, error) {
	t := &syntax.Triple{Pos: s.pos1()}
	var err error

	if t.Subject, err = s.term(); err != nil {
		return nil, err
	}
	if t.Subject.Kind == syntax.TermLiteral {
		return nil, errorAt(s.line, t.Subject.Pos.Col, "subject must be an IRI or blank node")
	}

	s.skipSpace()
	if t.Predicate, err = s.term(); err != nil {
		return nil, err
	}
	if t.Predicate.Kind != syntax.TermIRI {
		return nil, errorAt(s.line, t.Predicate.Pos.Col, "predicate must be an IRI")
	}

	s.skipSpace()
	if t.Object, err = s.term(); err != nil {
		return nil, err
	}

	s.skipSpace()
	if s.peek() != '.' {
		return nil, s.errorf("expected '.' after object")
	}
	s.pos++
	s.skipSpace()
	if !s.done() && s.peek() != '#' {
		return nil, s.errorf("unexpected text after statement")
	}
	return t, nil
}

func (s *tripleScanner) term() (*syntax.Term, error) {
	pos := s.pos1()
	switch {
	case s.peek() == '<':
		iri, err := s.iri()
		if err != nil {
			return nil, err
		}
		return &syntax.Term{Kind: syntax.TermIRI, Value: iri, Pos: pos}, nil
	case strings.HasPrefix(s.input[s.pos:], "_:"):
		s.pos += 2
		start := s.pos
		for !s.done() && isBlankLabelChar(s.peek()) {
			s.pos++
		}
		// labels never end with '.', which terminates the statement
		for s.pos > start && s.input[s.pos-1] == '.' {
			s.pos--
		}
		if s.pos == start {
			return nil, s.errorf("empty blank node label")
		}
		return &syntax.Term{Kind: syntax.TermBlank, Value: s.input[start:s.pos], Pos: pos}, nil
	case s.peek() == '"':
		return s.literal(pos)
	}
	if s.done() {
		return nil, s.errorf("unexpected end of line")
	}
	return nil, s.errorf("unexpected character %q", s.peek())
}

func (s *tripleScanner) iri() (string, error) {
	s.pos++ // <
	end := strings.IndexByte(s.input[s.pos:], '>')
	if end < 0 {
		return "", s.errorf("unterminated IRI")
	}
	raw := s.input[s.pos : s.pos+end]
	if strings.ContainsAny(raw, " <\"{}|^`") {
		return "", s.errorf("invalid IRI %q", raw)
	}
	s.pos += end + 1
	iri, err := unescapeNT(raw)
	if err != nil {
		return "", s.errorf("%v", err)
	}
	return iri, nil
}

func (s *tripleScanner) literal(pos syntax.Pos) (*syntax.Term, error) {
	s.pos++ // opening quote
	start := s.pos
	for {
		if s.done() {
			return nil, s.errorf("unterminated literal")
		}
		ch := s.peek()
		if ch == '\\' {
			s.pos += 2
			continue
		}
		if ch == '"' {
			break
		}
		s.pos++
	}
	value, err := unescapeNT(s.input[start:s.pos])
	if err != nil {
		return nil, s.errorf("%v", err)
	}
	s.pos++ // closing quote

	t := &syntax.Term{Kind: syntax.TermLiteral, Value: value, Pos: pos}
	switch {
	case strings.HasPrefix(s.input[s.pos:], "^^"):
		s.pos += 2
		if s.peek() != '<' {
			return nil, s.errorf("expected datatype IRI")
		}
		if t.Datatype, err = s.iri(); err != nil {
			return nil, err
		}
	case s.peek() == '@':
		s.pos++
		start := s.pos
		for !s.done() && (isLetter(s.peek()) || isDigit(s.peek()) || s.peek() == '-') {
			s.pos++
		}
		if s.pos == start {
			return nil, s.errorf("empty language tag")
		}
		t.Lang = s.input[start:s.pos]
	}
	return t, nil
}

func isBlankLabelChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_' || ch == '-' || ch == '.' || ch >= utf8.RuneSelf
}

// unescapeNT decodes the N-Triples string and IRI escapes.
func unescapeNT(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("dangling escape")
		}
		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'f':
			b.WriteByte('\f')
		case '"', '\'', '\\':
			b.WriteByte(s[i])
		case 'u', 'U':
			width := 4
			if s[i] == 'U' {
				width = 8
			}
			if i+1+width > len(s) {
				return "", fmt.Errorf("short \\%c escape", s[i])
			}
			code, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32)
			if err != nil {
				return "", fmt.Errorf("invalid \\%c escape: %w", s[i], err)
			}
			b.WriteRune(rune(code))
			i += width
		default:
			return "", fmt.Errorf("unknown escape \\%c", s[i])
		}
	}
	return b.String(), nil
}
