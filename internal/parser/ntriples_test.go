package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ahghee/internal/syntax"
)

func TestParseNTriples(t *testing.T) {
	doc := `# people
<http://ex/alice> <http://ex/name> "Alice" .
<http://ex/alice> <http://ex/knows> <http://ex/bob> .

_:b1 <http://ex/label> "chat"@fr .
<http://ex/bob> <http://ex/age> "42"^^<http://www.w3.org/2001/XMLSchema#integer> . # trailing
<http://ex/bob> <http://ex/friend> _:b1.
`
	triples, err := ParseNTriples(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, triples, 5)

	first := triples[0]
	assert.Equal(t, syntax.TermIRI, first.Subject.Kind)
	assert.Equal(t, "http://ex/alice", first.Subject.Value)
	assert.Equal(t, "http://ex/name", first.Predicate.Value)
	assert.Equal(t, syntax.TermLiteral, first.Object.Kind)
	assert.Equal(t, "Alice", first.Object.Value)
	assert.Equal(t, 2, first.Pos.Line)

	assert.Equal(t, syntax.TermIRI, triples[1].Object.Kind)

	blank := triples[2]
	assert.Equal(t, syntax.TermBlank, blank.Subject.Kind)
	assert.Equal(t, "b1", blank.Subject.Value)
	assert.Equal(t, "fr", blank.Object.Lang)

	typed := triples[3]
	assert.Equal(t, "42", typed.Object.Value)
	assert.Equal(t, "http://www.w3.org/2001/XMLSchema#integer", typed.Object.Datatype)

	assert.Equal(t, syntax.TermBlank, triples[4].Object.Kind)
	assert.Equal(t, "b1", triples[4].Object.Value)
}

func TestParseNTriples_Escapes(t *testing.T) {
	doc := `<s> <p> "line\nbreak \"quoted\" \u00E9\U0001F600" .`
	triples, err := ParseNTriples(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, triples, 1)
	assert.Equal(t, "line\nbreak \"quoted\" \u00e9\U0001F600", triples[0].Object.Value)
}

func TestParseNTriples_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"literal subject", `"s" <p> <o> .`, "subject must be"},
		{"blank predicate", `<s> _:p <o> .`, "predicate must be an IRI"},
		{"missing dot", `<s> <p> <o>`, "expected '.'"},
		{"space in iri", `<s <p> <o> .`, "invalid IRI"},
		{"unterminated literal", `<s> <p> "abc .`, "unterminated literal"},
		{"bad escape", `<s> <p> "a\q" .`, "unknown escape"},
		{"garbage after", `<s> <p> <o> . <x>`, "unexpected text"},
		{"empty lang", `<s> <p> "a"@ .`, "empty language tag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNTriples(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, IsSyntaxError(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
