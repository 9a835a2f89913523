package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ahghee/internal/syntax"
)

func TestParse_PutPairForm(t *testing.T) {
	cmd, err := ParseCommand(`put {"id": {"iri": "n1"}, "kvps": {"name": "alice", "knows": <n2>, <n3>: "likes", <n4>: <n5>}}`)
	require.NoError(t, err)

	assert.Equal(t, syntax.CommandPut, cmd.Kind)
	require.Len(t, cmd.Nodes, 1)
	node := cmd.Nodes[0]
	assert.Empty(t, node.JSON)
	require.NotNil(t, node.ID)
	assert.Equal(t, `{"iri": "n1"}`, node.ID.JSON)

	require.Len(t, node.Pairs, 4)
	kinds := []syntax.PairKind{syntax.PairProperty, syntax.PairEdge, syntax.PairBackEdge, syntax.PairBiEdge}
	for i, kind := range kinds {
		assert.Equal(t, kind, node.Pairs[i].Kind, "pair %d", i)
	}
	assert.Equal(t, "name", node.Pairs[0].Key.Text)
	assert.Equal(t, "alice", node.Pairs[0].Value.Text)
	assert.Equal(t, "n2", node.Pairs[1].Value.Text)
	assert.Equal(t, "n3", node.Pairs[2].Key.Text)
}

func TestParse_PutPairFormIDs(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		remote string
		iri    string
	}{
		{"string", `put {"id": "n1", "kvps": {}}`, "", "n1"},
		{"iri", `put {"id": <n1>, "kvps": {}}`, "", "n1"},
		{"remote", `put {"id": "r1":"n1", "kvps": {"a": 1}}`, "r1", "n1"},
		{"kvps first", `put {"kvps": {"a": 1}, "id": "r1":"n1"}`, "r1", "n1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand(tt.input)
			require.NoError(t, err)
			require.Len(t, cmd.Nodes, 1)
			node := cmd.Nodes[0]
			assert.Empty(t, node.JSON)
			require.NotNil(t, node.ID)
			assert.Equal(t, tt.remote, node.ID.Remote)
			assert.Equal(t, tt.iri, node.ID.IRI)
		})
	}
}

func TestParse_PutJSONForm(t *testing.T) {
	src := `put {"id": {"iri": "n1"}, "attributes": []}, {"id": {"iri": "n2"}, "attributes": []}`
	cmd, err := ParseCommand(src)
	require.NoError(t, err)

	require.Len(t, cmd.Nodes, 2)
	assert.Equal(t, `{"id": {"iri": "n1"}, "attributes": []}`, cmd.Nodes[0].JSON)
	assert.Nil(t, cmd.Nodes[0].ID)
	assert.Equal(t, src, cmd.Text)
}

func TestParse_GetNodeIDs(t *testing.T) {
	cmd, err := ParseCommand(`get -h "n1", "peer":"n2", <n3>, {"iri": "n4", "graph": "g"}`)
	require.NoError(t, err)

	assert.Equal(t, syntax.CommandGet, cmd.Kind)
	assert.Equal(t, "h", cmd.Flags)
	require.Len(t, cmd.IDs, 4)
	assert.Equal(t, "n1", cmd.IDs[0].IRI)
	assert.Equal(t, "peer", cmd.IDs[1].Remote)
	assert.Equal(t, "n2", cmd.IDs[1].IRI)
	assert.Equal(t, "n3", cmd.IDs[2].IRI)
	assert.Equal(t, `{"iri": "n4", "graph": "g"}`, cmd.IDs[3].JSON)
}

func TestParse_Stages(t *testing.T) {
	cmd, err := ParseCommand(`get "n1" | follow any[1:2] | where ("age" >= 21) | skip 2 | limit 5 | fields ["a", "b"]`)
	require.NoError(t, err)

	require.Len(t, cmd.Pipes, 5)
	kinds := []syntax.PipeKind{syntax.PipeFollow, syntax.PipeWhere, syntax.PipeSkip, syntax.PipeLimit, syntax.PipeFields}
	for i, kind := range kinds {
		assert.Equal(t, kind, cmd.Pipes[i].Kind, "stage %d", i)
	}

	follow := cmd.Pipes[0].Follow
	assert.True(t, follow.Any)
	require.NotNil(t, follow.Range)
	assert.Equal(t, "1", follow.Range.From)
	assert.Equal(t, "2", follow.Range.To)

	where := cmd.Pipes[1].Where
	assert.False(t, where.IsCompound())
	assert.Equal(t, "age", where.Property.Text)
	assert.Equal(t, ">=", where.MathOp)
	assert.Equal(t, "21", where.Value.Text)

	assert.Equal(t, "2", cmd.Pipes[2].Count.Text)
	assert.Equal(t, "5", cmd.Pipes[3].Count.Text)

	fields := cmd.Pipes[4].Fields
	require.Len(t, fields.Cludes, 2)
	assert.Equal(t, "a", fields.Cludes[0].Parts[0].Text)
	assert.Equal(t, "b", fields.Cludes[1].Parts[0].Text)
	assert.Equal(t, `fields ["a", "b"]`, cmd.Pipes[4].Raw)
}

func TestParse_CompoundFollow(t *testing.T) {
	cmd, err := ParseCommand(`get "n1" | follow ("knows"[:2] || ("likes" and "owns"[0:1]))`)
	require.NoError(t, err)

	edge := cmd.Pipes[0].Follow
	require.True(t, edge.IsCompound())
	assert.Equal(t, "||", edge.BoolOp)
	assert.Equal(t, "knows", edge.Left.Value.Text)
	assert.Equal(t, "", edge.Left.Range.From)
	assert.Equal(t, "2", edge.Left.Range.To)

	right := edge.Right
	require.True(t, right.IsCompound())
	assert.Equal(t, "and", right.BoolOp)
	assert.Nil(t, right.Left.Range)
	assert.Equal(t, "0", right.Right.Range.From)
}

func TestParse_CompoundWhere(t *testing.T) {
	cmd, err := ParseCommand(`get "n1" | where (("age" > 1) && ("name" != "bob"))`)
	require.NoError(t, err)

	where := cmd.Pipes[0].Where
	require.True(t, where.IsCompound())
	assert.Equal(t, "&&", where.BoolOp)
	assert.Equal(t, ">", where.Left.MathOp)
	assert.Equal(t, "!=", where.Right.MathOp)
	assert.Equal(t, "bob", where.Right.Value.Text)
}

func TestParse_Cludes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, c *syntax.Clude)
	}{
		{
			name:  "single part",
			input: `"name"`,
			check: func(t *testing.T, c *syntax.Clude) {
				require.Len(t, c.Parts, 1)
				assert.Equal(t, syntax.PartMatch, c.Parts[0].Kind)
			},
		},
		{
			name:  "op",
			input: `^"name":$string`,
			check: func(t *testing.T, c *syntax.Clude) {
				require.Len(t, c.Parts, 2)
				assert.Equal(t, syntax.PartAnchored, c.Parts[0].Kind)
				assert.Equal(t, syntax.PartTypeString, c.Parts[1].Kind)
			},
		},
		{
			name:  "lone caret",
			input: `^:$int`,
			check: func(t *testing.T, c *syntax.Clude) {
				require.Len(t, c.Parts, 2)
				assert.Equal(t, syntax.PartAnchored, c.Parts[0].Kind)
				assert.Empty(t, c.Parts[0].Text)
				assert.Equal(t, syntax.PartTypeInt, c.Parts[1].Kind)
			},
		},
		{
			name:  "include with base",
			input: `* include("a")`,
			check: func(t *testing.T, c *syntax.Clude) {
				require.Len(t, c.Cludes, 1)
				assert.Equal(t, syntax.PartWildcard, c.Cludes[0].Parts[0].Kind)
				require.NotNil(t, c.Include)
				assert.Nil(t, c.Exclude)
			},
		},
		{
			name:  "exclude with base",
			input: `["a", "b"] exclude($float)`,
			check: func(t *testing.T, c *syntax.Clude) {
				require.Len(t, c.Cludes, 1)
				assert.Len(t, c.Cludes[0].Cludes, 2)
				require.NotNil(t, c.Exclude)
				assert.Equal(t, syntax.PartTypeFloat, c.Exclude.Parts[0].Kind)
				assert.Nil(t, c.Include)
			},
		},
		{
			name:  "standalone exclude",
			input: `exclude("secret")`,
			check: func(t *testing.T, c *syntax.Clude) {
				assert.Empty(t, c.Cludes)
				require.NotNil(t, c.Exclude)
				assert.Equal(t, "secret", c.Exclude.Parts[0].Text)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand(`get "n1" | fields ` + tt.input)
			require.NoError(t, err)
			tt.check(t, cmd.Pipes[0].Fields)
		})
	}
}

func TestParse_UnknownStageKeepsName(t *testing.T) {
	cmd, err := ParseCommand(`get "n1" | sortby ("a", [1, 2]) | limit 1`)
	require.NoError(t, err)

	require.Len(t, cmd.Pipes, 2)
	assert.Equal(t, syntax.PipeUnknown, cmd.Pipes[0].Kind)
	assert.Equal(t, "sortby", cmd.Pipes[0].Name)
	assert.Equal(t, `sortby ("a", [1, 2])`, cmd.Pipes[0].Raw)
	assert.Equal(t, syntax.PipeLimit, cmd.Pipes[1].Kind)
}

func TestParse_MultipleCommands(t *testing.T) {
	cmds, err := Parse("put {\"id\": \"n1\", \"kvps\": {}}\nget \"n1\"; get \"n2\"")
	require.NoError(t, err)

	require.Len(t, cmds, 3)
	assert.Equal(t, syntax.CommandPut, cmds[0].Kind)
	assert.Equal(t, "n1", cmds[0].Nodes[0].ID.IRI)
	assert.Equal(t, 2, cmds[1].Pos.Line)
	assert.Equal(t, `get "n2"`, cmds[2].Text)
}

func TestParse_Values(t *testing.T) {
	cmd, err := ParseCommand(`put {"id": "n1", "kvps": {"a": 1.5, "b": true, "c": null, "d": [1, "x"], "e": {"k": false}, "f": bare}}`)
	require.NoError(t, err)

	pairs := cmd.Nodes[0].Pairs
	require.Len(t, pairs, 6)
	assert.Equal(t, syntax.ValueNumber, pairs[0].Value.Kind)
	assert.Equal(t, syntax.ValueTrue, pairs[1].Value.Kind)
	assert.Equal(t, syntax.ValueNull, pairs[2].Value.Kind)
	assert.Equal(t, syntax.ValueArray, pairs[3].Value.Kind)
	assert.Len(t, pairs[3].Value.Items, 2)
	assert.Equal(t, syntax.ValueObject, pairs[4].Value.Kind)
	assert.Equal(t, `{"k": false}`, pairs[4].Value.Raw)
	assert.Equal(t, syntax.ValueRaw, pairs[5].Value.Kind)
	assert.Equal(t, "bare", pairs[5].Value.Raw)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"unknown command", `delete "n1"`, "expected put or get"},
		{"unknown flag", `get -x "n1"`, "unknown flag"},
		{"missing id", `get | limit 1`, "expected node id"},
		{"bad range", `get "n1" | follow any[1 2]`, "expected :"},
		{"unclosed where", `get "n1" | where ("a" == 1`, "expected )"},
		{"missing mathop", `get "n1" | where ("a" 1)`, "expected MathOp"},
		{"bad clude part", `get "n1" | fields 12`, "expected field selector"},
		{"trailing garbage", `get "n1" "n2"`, "expected end of command"},
		{"kvps not object", `put {"id": "n1", "kvps": [1]}`, "kvps must be an object"},
		{"put without node", `put "n1"`, "expected node object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.True(t, IsSyntaxError(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseCommand_RequiresExactlyOne(t *testing.T) {
	_, err := ParseCommand(`get "a"; get "b"`)
	assert.ErrorContains(t, err, "single command")

	_, err = ParseCommand(`  # nothing here`)
	assert.ErrorContains(t, err, "empty input")
}
