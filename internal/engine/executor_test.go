package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/queryir"
)

// social builds:
//
//	a -knows-> b -knows-> c -knows-> a
//	a -likes-> c
//	b -knows-> ghost (never stored)
func social(t *testing.T) *MemoryBackend {
	t.Helper()
	b := NewMemoryBackend()
	seed(t, b,
		node("a",
			ir.KV(ir.Str("name"), ir.Str("alice")),
			ir.KV(ir.Str("knows"), ir.Ref("b")),
			ir.KV(ir.Str("likes"), ir.Ref("c")),
		),
		node("b",
			ir.KV(ir.Str("name"), ir.Str("bob")),
			ir.KV(ir.Str("knows"), ir.Ref("c")),
			ir.KV(ir.Str("knows"), ir.Ref("ghost")),
		),
		node("c",
			ir.KV(ir.Str("name"), ir.Str("carol")),
			ir.KV(ir.Str("age"), ir.I32(30)),
			ir.KV(ir.Str("knows"), ir.Ref("a")),
		),
	)
	return b
}

func rng(from, to uint32) queryir.Range {
	return queryir.Range{From: from, To: to}
}

func knows(from, to uint32) queryir.EdgeRange {
	return queryir.EdgeRange{Edge: ir.Str("knows"), Range: rng(from, to)}
}

func TestExecute_Pipelines(t *testing.T) {
	anyTo2 := rng(1, 2)

	tests := []struct {
		name     string
		root     string
		pipeline *queryir.Step
		want     []string
	}{
		{"no pipeline", "a", nil, []string{"a"}},
		{"one hop", "a", queryir.Chain(queryir.Follow{Edge: knows(1, 1)}), []string{"b"}},
		{"two hops", "a", queryir.Chain(queryir.Follow{Edge: knows(2, 2)}), []string{"c"}},
		{"depth zero keeps source", "a", queryir.Chain(queryir.Follow{Edge: knows(0, 1)}), []string{"a", "b"}},
		{"cycle terminates", "a", queryir.Chain(queryir.Follow{Edge: knows(1, 10)}), []string{"b", "c"}},
		{"dangling skipped", "b", queryir.Chain(queryir.Follow{Edge: knows(1, 1)}), []string{"c"}},
		{"any default range", "a", queryir.Chain(queryir.Follow{Edge: queryir.FollowAny{}}), []string{"b", "c"}},
		{"any ranged", "b", queryir.Chain(queryir.Follow{Edge: queryir.FollowAny{Range: &anyTo2}}), []string{"c", "a"}},
		{"edge or", "a", queryir.Chain(queryir.Follow{Edge: queryir.EdgeCompare{
			Left:   queryir.EdgeRange{Edge: ir.Str("likes"), Range: rng(1, 1)},
			BoolOp: queryir.Or,
			Right:  knows(1, 1),
		}}), []string{"c", "b"}},
		{"edge and", "a", queryir.Chain(queryir.Follow{Edge: queryir.EdgeCompare{
			Left:   knows(1, 2),
			BoolOp: queryir.And,
			Right:  queryir.EdgeRange{Edge: ir.Str("likes"), Range: rng(1, 1)},
		}}), []string{"c"}},
		{"follow then filter", "a", queryir.Chain(
			queryir.Follow{Edge: knows(1, 2)},
			queryir.Filter{Expr: where("age", queryir.Ge, ir.I32(30))},
		), []string{"c"}},
		{"chained follows", "a", queryir.Chain(
			queryir.Follow{Edge: knows(1, 1)},
			queryir.Follow{Edge: knows(1, 1)},
		), []string{"c"}},
		{"skip", "a", queryir.Chain(queryir.Follow{Edge: knows(0, 2)}, queryir.Skip{N: 1}), []string{"b", "c"}},
		{"skip past end", "a", queryir.Chain(queryir.Skip{N: 5}), []string{}},
		{"limit", "a", queryir.Chain(queryir.Follow{Edge: knows(0, 2)}, queryir.Limit{N: 2}), []string{"a", "b"}},
		{"limit zero", "a", queryir.Chain(queryir.Limit{N: 0}), []string{}},
		{"skip then limit", "a", queryir.Chain(
			queryir.Follow{Edge: knows(0, 2)},
			queryir.Skip{N: 1},
			queryir.Limit{N: 1},
		), []string{"b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRun(t, social(t), nil)
			r.root = ir.NodeID{IRI: tt.root}

			got, err := r.execute(tt.pipeline)
			require.NoError(t, err)
			assert.Equal(t, tt.want, iris(got))
		})
	}
}

func TestExecute_Fields(t *testing.T) {
	r := newRun(t, social(t), nil)
	r.root = ir.NodeID{IRI: "c"}

	got, err := r.execute(queryir.Chain(queryir.Fields{Clude: queryir.TwoClude{
		Left:    queryir.Wildcard{},
		Exclude: queryir.MatchPart{Text: "knows", Exact: true},
	}}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []ir.KeyValue{
		ir.KV(ir.Str("name"), ir.Str("carol")),
		ir.KV(ir.Str("age"), ir.I32(30)),
	}, got[0].Attributes)
}

func TestExecute_FollowAfterFieldsReadsStoredNodes(t *testing.T) {
	r := newRun(t, social(t), nil)
	r.root = ir.NodeID{IRI: "a"}

	// fields drops the knows edge from the source, so follow finds nothing.
	got, err := r.execute(queryir.Chain(
		queryir.Fields{Clude: queryir.MatchPart{Text: "name"}},
		queryir.Follow{Edge: knows(1, 1)},
	))
	require.NoError(t, err)
	assert.Empty(t, got)

	// Nodes reached by follow are whole again.
	r.quota = newVisitQuota(r.root, DefaultMaxVisits)
	got, err = r.execute(queryir.Chain(
		queryir.Fields{Clude: queryir.MatchPart{Text: "knows"}},
		queryir.Follow{Edge: knows(1, 1)},
	))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Attributes, 3)
	assert.True(t, r.pristine)
}

func TestExecute_MissingRoot(t *testing.T) {
	r := newRun(t, social(t), nil)
	r.root = ir.NodeID{IRI: "nobody"}

	_, err := r.execute(nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExecute_VisitQuota(t *testing.T) {
	r := newRun(t, social(t), nil)
	r.root = ir.NodeID{IRI: "a"}
	r.quota = newVisitQuota(r.root, 2)

	_, err := r.execute(queryir.Chain(queryir.Follow{Edge: knows(1, 5)}))
	require.Error(t, err)
	assert.True(t, IsVisitsExceededError(err))
}

func TestCombine(t *testing.T) {
	a, b, c := node("a"), node("b"), node("c")

	assert.Equal(t, []string{"b", "a"}, iris(combine([]ir.Node{b, a, c}, queryir.And, []ir.Node{a, b})))
	assert.Equal(t, []string{"b", "c", "a"}, iris(combine([]ir.Node{b, c}, queryir.Or, []ir.Node{c, a})))
	assert.Empty(t, combine(nil, queryir.And, []ir.Node{a}))
}

func TestNeighbors(t *testing.T) {
	n := node("n",
		ir.KV(ir.Str("knows"), ir.Ref("x")),
		ir.KV(ir.Str("name"), ir.Str("n")),
		ir.KV(ir.Ref("rel"), ir.Ref("y")),
		ir.KV(ir.Str("knows"), ir.Ref("z")),
	)

	all := neighbors(n, nil)
	require.Len(t, all, 3)
	assert.Equal(t, "y", all[1].IRI)

	byKey := neighbors(n, ir.Str("knows"))
	require.Len(t, byKey, 2)
	assert.Equal(t, "x", byKey[0].IRI)
	assert.Equal(t, "z", byKey[1].IRI)

	assert.Len(t, neighbors(n, ir.Ref("rel")), 1)
}
