package parser

import "fmt"

// TokenType represents the type of a command token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenString
	TokenNumber
	TokenIRI
	TokenIdent
	TokenFlags
	TokenLeftBrace
	TokenRightBrace
	TokenLeftBracket
	TokenRightBracket
	TokenLeftParen
	TokenRightParen
	TokenComma
	TokenColon
	TokenPipe
	TokenSemicolon
	TokenCaret
	TokenStar
	TokenMathOp
	TokenBoolOp
)

var tokenNames = map[TokenType]string{
	TokenEOF:          "EOF",
	TokenString:       "String",
	TokenNumber:       "Number",
	TokenIRI:          "IRI",
	TokenIdent:        "Ident",
	TokenFlags:        "Flags",
	TokenLeftBrace:    "{",
	TokenRightBrace:   "}",
	TokenLeftBracket:  "[",
	TokenRightBracket: "]",
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenComma:        ",",
	TokenColon:        ":",
	TokenPipe:         "|",
	TokenSemicolon:    ";",
	TokenCaret:        "^",
	TokenStar:         "*",
	TokenMathOp:       "MathOp",
	TokenBoolOp:       "BoolOp",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", int(t))
}

// Token is a lexical token. Value is decoded: strings are unquoted, IRIs
// lose their angle brackets, flags lose the leading dash. Start and End
// are byte offsets of the source span.
type Token struct {
	Type  TokenType
	Value string
	Line  int
	Col   int
	Start int
	End   int
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return fmt.Sprintf("EOF[%d:%d]", t.Line, t.Col)
	case TokenString:
		return fmt.Sprintf("String[%d:%d]:%q", t.Line, t.Col, t.Value)
	case TokenIRI:
		return fmt.Sprintf("IRI[%d:%d]:<%s>", t.Line, t.Col, t.Value)
	default:
		return fmt.Sprintf("%s[%d:%d]:%s", t.Type, t.Line, t.Col, t.Value)
	}
}
