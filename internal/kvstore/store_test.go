package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ahghee/internal/engine"
	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/queryir"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func version(seq int64, id ir.NodeID, kvs ...ir.KeyValue) engine.Version {
	n := ir.Node{ID: id, Attributes: kvs}
	n.Canonicalize()
	return engine.Version{Seq: seq, ContentHash: ir.MustNodeContentHash(n), Node: n}
}

func TestStore_WriteRead(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	v := version(1, ir.NodeID{Graph: "g", IRI: "alice"},
		ir.KV(ir.Str("name"), ir.Str("alice")),
		ir.KV(ir.Str("knows"), ir.Ref("bob")),
	)
	written, err := s.Write(ctx, []engine.Version{v})
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	got, err := s.Read(ctx, ir.NodeID{Graph: "g", IRI: "alice", Remote: "peer"})
	require.NoError(t, err)
	assert.Equal(t, v.ContentHash, ir.MustNodeContentHash(got))

	_, err = s.Read(ctx, ir.NodeID{IRI: "alice"})
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestStore_VersionsAreOrderedAndIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	id := ir.NodeID{IRI: "n"}

	for seq, val := range []int32{1, 1, 2, 2, 3} {
		_, err := s.Write(ctx, []engine.Version{version(int64(seq+1), id, ir.KV(ir.Str("v"), ir.I32(val)))})
		require.NoError(t, err)
	}

	versions, err := s.Versions(ctx, id)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, []int64{1, 3, 5}, []int64{versions[0].Seq, versions[1].Seq, versions[2].Seq})

	last, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), last)
}

func TestStore_VersionPrefixDoesNotLeak(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Write(ctx, []engine.Version{
		version(1, ir.NodeID{IRI: "a"}),
		version(2, ir.NodeID{IRI: "ab"}),
		version(3, ir.NodeID{Graph: "a", IRI: "b"}),
	})
	require.NoError(t, err)

	versions, err := s.Versions(ctx, ir.NodeID{IRI: "a"})
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, int64(1), versions[0].Seq)

	unknown, err := s.Versions(ctx, ir.NodeID{IRI: "zzz"})
	require.NoError(t, err)
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s1, err := Open(dir)
	require.NoError(t, err)
	_, err = s1.Write(ctx, []engine.Version{version(7, ir.NodeID{IRI: "n"})})
	require.NoError(t, err)
	require.NoError(t, s1.Sync(ctx))
	require.NoError(t, s1.Close())

	s2, err := Open(dir)
	require.NoError(t, err)
	defer s2.Close()

	last, err := s2.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), last)

	_, err = s2.Read(ctx, ir.NodeID{IRI: "n"})
	assert.NoError(t, err)
}

func TestStore_InMemory(t *testing.T) {
	ctx := context.Background()
	s, err := Open("", WithInMemory())
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Write(ctx, []engine.Version{version(1, ir.NodeID{IRI: "n"})})
	require.NoError(t, err)
	require.NoError(t, s.Sync(ctx))

	_, err = s.Read(ctx, ir.NodeID{IRI: "n"})
	assert.NoError(t, err)
}

// Badger has no filter pushdown; the engine evaluates where in memory.
func TestStore_EngineFiltersInMemory(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	e, err := engine.New(ctx, s, engine.WithWorkers(2))
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Add(ctx, []ir.Node{
		{ID: ir.NodeID{IRI: "a"}, Attributes: []ir.KeyValue{
			ir.KV(ir.Str("knows"), ir.Ref("b")),
			ir.KV(ir.Str("knows"), ir.Ref("c")),
		}},
		{ID: ir.NodeID{IRI: "b"}, Attributes: []ir.KeyValue{ir.KV(ir.Str("age"), ir.I32(20))}},
		{ID: ir.NodeID{IRI: "c"}, Attributes: []ir.KeyValue{ir.KV(ir.Str("age"), ir.I32(40))}},
	}))

	items, err := e.Items(ctx, []ir.NodeID{{IRI: "a"}}, queryir.Chain(
		queryir.Follow{Edge: queryir.EdgeRange{Edge: ir.Str("knows"), Range: queryir.DefaultRange}},
		queryir.Filter{Expr: queryir.CompareKeyValue{Property: ir.Str("age"), MathOp: queryir.Gt, Value: ir.I32(30)}},
	))
	require.NoError(t, err)
	require.NoError(t, items[0].Err)
	require.Len(t, items[0].Nodes, 1)
	assert.Equal(t, "c", items[0].Nodes[0].ID.IRI)
}
