package parser

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Lexer tokenizes command input.
type Lexer struct {
	input  string
	pos    int
	line   int
	col    int
	tokens []Token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
		col:   1,
	}
}

// Lex tokenizes the entire input. The returned slice always ends with EOF.
func (l *Lexer) Lex() ([]Token, error) {
	for {
		l.skipWhitespaceAndComments()
		if l.pos >= len(l.input) {
			break
		}

		start, line, col := l.pos, l.line, l.col
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tok.Start, tok.End, tok.Line, tok.Col = start, l.pos, line, col
		l.tokens = append(l.tokens, tok)
	}

	l.tokens = append(l.tokens, Token{
		Type:  TokenEOF,
		Line:  l.line,
		Col:   l.col,
		Start: l.pos,
		End:   l.pos,
	})
	return l.tokens, nil
}

func (l *Lexer) next() (Token, error) {
	ch := l.peek()
	switch ch {
	case '"':
		s, err := l.readString()
		if err != nil {
			return Token{}, err
		}
		return Token{Type: TokenString, Value: s}, nil
	case '{':
		return l.single(TokenLeftBrace), nil
	case '}':
		return l.single(TokenRightBrace), nil
	case '[':
		return l.single(TokenLeftBracket), nil
	case ']':
		return l.single(TokenRightBracket), nil
	case '(':
		return l.single(TokenLeftParen), nil
	case ')':
		return l.single(TokenRightParen), nil
	case ',':
		return l.single(TokenComma), nil
	case ':':
		return l.single(TokenColon), nil
	case ';':
		return l.single(TokenSemicolon), nil
	case '^':
		return l.single(TokenCaret), nil
	case '*':
		return l.single(TokenStar), nil
	case '|':
		if l.peekAt(1) == '|' {
			l.advanceN(2)
			return Token{Type: TokenBoolOp, Value: "||"}, nil
		}
		return l.single(TokenPipe), nil
	case '&':
		if l.peekAt(1) == '&' {
			l.advanceN(2)
			return Token{Type: TokenBoolOp, Value: "&&"}, nil
		}
	case '=':
		if l.peekAt(1) == '=' {
			l.advanceN(2)
			return Token{Type: TokenMathOp, Value: "=="}, nil
		}
	case '!':
		if l.peekAt(1) == '=' {
			l.advanceN(2)
			return Token{Type: TokenMathOp, Value: "!="}, nil
		}
	case '<':
		if iri, ok := l.scanIRI(); ok {
			return Token{Type: TokenIRI, Value: iri}, nil
		}
		if l.peekAt(1) == '=' {
			l.advanceN(2)
			return Token{Type: TokenMathOp, Value: "<="}, nil
		}
		l.advance()
		return Token{Type: TokenMathOp, Value: "<"}, nil
	case '>':
		if l.peekAt(1) == '=' {
			l.advanceN(2)
			return Token{Type: TokenMathOp, Value: ">="}, nil
		}
		l.advance()
		return Token{Type: TokenMathOp, Value: ">"}, nil
	case '-':
		if isLetter(l.peekAt(1)) {
			l.advance()
			return Token{Type: TokenFlags, Value: l.readWhile(isIdentChar)}, nil
		}
		if isDigit(l.peekAt(1)) {
			return Token{Type: TokenNumber, Value: l.readNumber()}, nil
		}
	case '+':
		if isDigit(l.peekAt(1)) {
			return Token{Type: TokenNumber, Value: l.readNumber()}, nil
		}
	default:
		if isDigit(ch) {
			return Token{Type: TokenNumber, Value: l.readNumber()}, nil
		}
		if isIdentStart(ch) {
			return Token{Type: TokenIdent, Value: l.readWhile(isIdentChar)}, nil
		}
	}
	return Token{}, errorAt(l.line, l.col, "unexpected character %q", rune(ch))
}

func (l *Lexer) single(t TokenType) Token {
	v := string(l.peek())
	l.advance()
	return Token{Type: t, Value: v}
}

func (l *Lexer) peek() byte {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) advance() {
	if l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

// skipWhitespaceAndComments skips whitespace and `#` line comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		ch := l.peek()
		if unicode.IsSpace(rune(ch)) {
			l.advance()
		} else if ch == '#' {
			for l.pos < len(l.input) && l.peek() != '\n' {
				l.advance()
			}
		} else {
			break
		}
	}
}

// readString reads a JSON string literal and returns its decoded value.
func (l *Lexer) readString() (string, error) {
	line, col := l.line, l.col
	start := l.pos
	l.advance() // opening quote

	for l.pos < len(l.input) {
		ch := l.peek()
		switch ch {
		case '\\':
			l.advanceN(2)
		case '"':
			l.advance()
			var s string
			if err := json.Unmarshal([]byte(l.input[start:l.pos]), &s); err != nil {
				return "", errorAt(line, col, "invalid string literal: %v", err)
			}
			return s, nil
		case '\n':
			return "", errorAt(line, col, "newline in string literal")
		default:
			l.advance()
		}
	}
	return "", errorAt(line, col, "unterminated string")
}

// scanIRI reads `<...>` when the bracketed text is a plausible IRI.
// Otherwise it consumes nothing so `<` can lex as an operator.
func (l *Lexer) scanIRI() (string, bool) {
	end := l.pos + 1
	for end < len(l.input) {
		ch := l.input[end]
		if ch == '>' {
			break
		}
		if isIRIExcluded(ch) {
			return "", false
		}
		end++
	}
	if end >= len(l.input) || end == l.pos+1 {
		return "", false
	}
	iri := l.input[l.pos+1 : end]
	l.advanceN(end - l.pos + 1)
	return iri, true
}

func isIRIExcluded(ch byte) bool {
	return ch <= ' ' || strings.IndexByte(`<"{}|^`+"`\\", ch) >= 0
}

// readNumber reads a JSON-style number with an optional sign.
func (l *Lexer) readNumber() string {
	start := l.pos
	if c := l.peek(); c == '-' || c == '+' {
		l.advance()
	}
	l.readWhile(isDigit)
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		l.readWhile(isDigit)
	}
	if c := l.peek(); c == 'e' || c == 'E' {
		next := l.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(2))) {
			l.advanceN(2)
			l.readWhile(isDigit)
		}
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readWhile(pred func(byte) bool) string {
	start := l.pos
	for l.pos < len(l.input) && pred(l.peek()) {
		l.advance()
	}
	return l.input[start:l.pos]
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '_' || ch == '$'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '-' || ch == '.'
}
