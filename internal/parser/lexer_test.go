package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexTypes(t *testing.T, input string) []TokenType {
	t.Helper()
	tokens, err := NewLexer(input).Lex()
	require.NoError(t, err)
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestLexer_TokenTypes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenType
	}{
		{"empty", "", []TokenType{TokenEOF}},
		{"keyword and string", `get "n1"`, []TokenType{TokenIdent, TokenString, TokenEOF}},
		{"flags", `get -hv "n1"`, []TokenType{TokenIdent, TokenFlags, TokenString, TokenEOF}},
		{"negative number", `-12.5e3`, []TokenType{TokenNumber, TokenEOF}},
		{"iri", `<http://x/y>`, []TokenType{TokenIRI, TokenEOF}},
		{"less than", `("age" < 3)`, []TokenType{TokenLeftParen, TokenString, TokenMathOp, TokenNumber, TokenRightParen, TokenEOF}},
		{"less equal", `<= 3`, []TokenType{TokenMathOp, TokenNumber, TokenEOF}},
		{"pipe vs or", `| ||`, []TokenType{TokenPipe, TokenBoolOp, TokenEOF}},
		{"and", `&&`, []TokenType{TokenBoolOp, TokenEOF}},
		{"clude atoms", `^"a" * $int`, []TokenType{TokenCaret, TokenString, TokenStar, TokenIdent, TokenEOF}},
		{"range", `[0:2]`, []TokenType{TokenLeftBracket, TokenNumber, TokenColon, TokenNumber, TokenRightBracket, TokenEOF}},
		{"comment", "get # trailing\n\"n1\"", []TokenType{TokenIdent, TokenString, TokenEOF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, lexTypes(t, tt.input))
		})
	}
}

func TestLexer_DecodesValues(t *testing.T) {
	tokens, err := NewLexer("\"a\\\"b\u00e9\" <urn:x> -htv").Lex()
	require.NoError(t, err)
	require.Len(t, tokens, 4)

	assert.Equal(t, "a\"b\u00e9", tokens[0].Value)
	assert.Equal(t, "urn:x", tokens[1].Value)
	assert.Equal(t, "htv", tokens[2].Value)
}

func TestLexer_Positions(t *testing.T) {
	tokens, err := NewLexer("get\n  \"n1\"").Lex()
	require.NoError(t, err)

	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 1, tokens[0].Col)
	assert.Equal(t, 2, tokens[1].Line)
	assert.Equal(t, 3, tokens[1].Col)
	assert.Equal(t, 6, tokens[1].Start)
	assert.Equal(t, 10, tokens[1].End)
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"unterminated string", `"abc`, "unterminated string"},
		{"newline in string", "\"ab\ncd\"", "newline in string"},
		{"bad escape", `"\q"`, "invalid string literal"},
		{"stray ampersand", `&`, "unexpected character"},
		{"stray bang", `!x`, "unexpected character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLexer(tt.input).Lex()
			require.Error(t, err)
			assert.True(t, IsSyntaxError(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
