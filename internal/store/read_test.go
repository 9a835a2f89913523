package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/roach88/ahghee/internal/engine"
	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/queryir"
)

func TestRead_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Read(context.Background(), ir.NodeID{IRI: "missing"})
	if !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("Read() error = %v, want ErrNotFound", err)
	}
}

func TestRead_GraphIsPartOfIdentity(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	v := testVersion(1, "n")
	v.Node.ID.Graph = "g"
	v.ContentHash = ir.MustNodeContentHash(v.Node)
	if _, err := s.Write(ctx, []engine.Version{v}); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	if _, err := s.Read(ctx, ir.NodeID{Graph: "g", IRI: "n", Remote: "peer"}); err != nil {
		t.Errorf("Read(g/n) failed: %v", err)
	}
	if _, err := s.Read(ctx, ir.NodeID{IRI: "n"}); !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("Read(n) error = %v, want ErrNotFound", err)
	}
}

func TestVersions_Unknown(t *testing.T) {
	s := createTestStore(t)

	versions, err := s.Versions(context.Background(), ir.NodeID{IRI: "missing"})
	if err != nil {
		t.Fatalf("Versions() failed: %v", err)
	}
	if versions == nil || len(versions) != 0 {
		t.Errorf("Versions() = %v, want empty slice", versions)
	}
}

func TestLastSeq_Empty(t *testing.T) {
	s := createTestStore(t)

	seq, err := s.LastSeq(context.Background())
	if err != nil {
		t.Fatalf("LastSeq() failed: %v", err)
	}
	if seq != 0 {
		t.Errorf("LastSeq() = %d, want 0", seq)
	}
}

func seedPeople(t *testing.T, s *Store) []ir.NodeID {
	t.Helper()
	_, err := s.Write(context.Background(), []engine.Version{
		testVersion(1, "alice",
			ir.KV(ir.Str("name"), ir.Str("alice")),
			ir.KV(ir.Str("age"), ir.I32(21)),
			ir.KV(ir.Str("admin"), ir.Bool(true)),
			ir.KV(ir.Str("knows"), ir.Ref("bob")),
		),
		testVersion(2, "bob",
			ir.KV(ir.Str("name"), ir.Str("bob")),
			ir.KV(ir.Str("age"), ir.F64(34.5)),
			ir.KV(ir.Str("admin"), ir.Bool(false)),
		),
		testVersion(3, "carol",
			ir.KV(ir.Str("name"), ir.Str("carol")),
			ir.KV(ir.Str("age"), ir.Str("unknown")),
			ir.KV(ir.Ref("rdf:type"), ir.Str("Person")),
		),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return []ir.NodeID{{IRI: "carol"}, {IRI: "bob"}, {IRI: "alice"}, {IRI: "ghost"}}
}

func cmp(key string, op queryir.MathOp, v ir.DataBlock) queryir.CompareKeyValue {
	return queryir.CompareKeyValue{Property: ir.Str(key), MathOp: op, Value: v}
}

func TestMatchFilter(t *testing.T) {
	tests := []struct {
		name string
		expr queryir.FilterExpr
		want []string
	}{
		{"number gt", cmp("age", queryir.Gt, ir.I32(30)), []string{"bob"}},
		{"number across kinds", cmp("age", queryir.Le, ir.F32(21)), []string{"alice"}},
		{"string class only", cmp("age", queryir.Eq, ir.Str("unknown")), []string{"carol"}},
		{"number ne excludes other classes", cmp("age", queryir.Ne, ir.I32(21)), []string{"bob"}},
		{"string ordered", cmp("name", queryir.Lt, ir.Str("bz")), []string{"alice", "bob"}},
		{"bool eq", cmp("admin", queryir.Eq, ir.Bool(false)), []string{"bob"}},
		{"node ref eq", cmp("knows", queryir.Eq, ir.Ref("bob")), []string{"alice"}},
		{"node ref key", queryir.CompareKeyValue{Property: ir.Ref("rdf:type"), MathOp: queryir.Eq, Value: ir.Str("Person")}, []string{"carol"}},
		{"and", queryir.CompareCompound{
			Left:   cmp("admin", queryir.Eq, ir.Bool(true)),
			BoolOp: queryir.And,
			Right:  cmp("age", queryir.Lt, ir.I32(30)),
		}, []string{"alice"}},
		{"or", queryir.CompareCompound{
			Left:   cmp("name", queryir.Eq, ir.Str("carol")),
			BoolOp: queryir.Or,
			Right:  cmp("knows", queryir.Eq, ir.Ref("bob")),
		}, []string{"alice", "carol"}},
	}

	s := createTestStore(t)
	ids := seedPeople(t, s)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, err := s.MatchFilter(context.Background(), ids, tt.expr)
			if err != nil {
				t.Fatalf("MatchFilter() failed: %v", err)
			}
			var got []string
			for _, id := range []string{"alice", "bob", "carol", "ghost"} {
				if matched[ir.NodeKey{IRI: id}] {
					got = append(got, id)
				}
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("matched = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchFilter_Unsupported(t *testing.T) {
	s := createTestStore(t)
	ids := seedPeople(t, s)

	_, err := s.MatchFilter(context.Background(), ids, cmp("age", queryir.Lt, ir.Bool(true)))
	if !errors.Is(err, engine.ErrFilterUnsupported) {
		t.Errorf("error = %v, want ErrFilterUnsupported", err)
	}
}

func TestMatchFilter_Chunks(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var versions []engine.Version
	var ids []ir.NodeID
	for i := 0; i < matchChunk+50; i++ {
		iri := fmt.Sprintf("n%04d", i)
		versions = append(versions, testVersion(int64(i+1), iri, ir.KV(ir.Str("i"), ir.I32(int32(i)))))
		ids = append(ids, ir.NodeID{IRI: iri})
	}
	if _, err := s.Write(ctx, versions); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	matched, err := s.MatchFilter(ctx, ids, cmp("i", queryir.Ge, ir.I32(int32(matchChunk-10))))
	if err != nil {
		t.Fatalf("MatchFilter() failed: %v", err)
	}
	if len(matched) != 60 {
		t.Errorf("matched %d nodes, want 60", len(matched))
	}
}

// The engine must give the same answer over the store with and without
// pushdown.
func TestMatchFilter_AgreesWithEngine(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	seedPeople(t, s)

	e, err := engine.New(ctx, s)
	if err != nil {
		t.Fatalf("engine.New() failed: %v", err)
	}
	defer e.Close()

	pipeline := queryir.Chain(
		queryir.Follow{Edge: queryir.FollowAny{Range: &queryir.Range{From: 0, To: 1}}},
		queryir.Filter{Expr: cmp("admin", queryir.Eq, ir.Bool(false))},
	)
	items, err := e.Items(ctx, []ir.NodeID{{IRI: "alice"}}, pipeline)
	if err != nil {
		t.Fatalf("Items() failed: %v", err)
	}
	if items[0].Err != nil {
		t.Fatalf("item error: %v", items[0].Err)
	}
	if len(items[0].Nodes) != 1 || items[0].Nodes[0].ID.IRI != "bob" {
		t.Errorf("nodes = %v, want [bob]", items[0].Nodes)
	}
}
