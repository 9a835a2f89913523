package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Compile-time checks that all cases satisfy DataBlock.
var (
	_ DataBlock = Str("")
	_ DataBlock = I32(0)
	_ DataBlock = I64(0)
	_ DataBlock = UI64(0)
	_ DataBlock = F32(0)
	_ DataBlock = F64(0)
	_ DataBlock = Bool(false)
	_ DataBlock = NodeRef{}
	_ DataBlock = Map{}
	_ DataBlock = Array{}
	_ DataBlock = RawTyped{}
	_ DataBlock = None{}
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		value DataBlock
		kind  Kind
		name  string
	}{
		{nil, KindNone, "none"},
		{None{}, KindNone, "none"},
		{Str("x"), KindStr, "str"},
		{I32(1), KindI32, "i32"},
		{I64(1), KindI64, "i64"},
		{UI64(1), KindUI64, "ui64"},
		{F32(1), KindF32, "f32"},
		{F64(1), KindF64, "f64"},
		{Bool(true), KindBool, "bool"},
		{Ref("n"), KindNodeRef, "nodeid"},
		{Map{}, KindMap, "map"},
		{Array{}, KindArray, "array"},
		{RawTyped{}, KindRawTyped, "typed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.value))
			assert.Equal(t, tt.name, tt.kind.String())
		})
	}
	assert.Equal(t, "kind(99)", Kind(99).String())
}

func TestKindIsNumeric(t *testing.T) {
	for _, k := range []Kind{KindI32, KindI64, KindUI64, KindF32, KindF64} {
		assert.True(t, k.IsNumeric(), k.String())
	}
	for _, k := range []Kind{KindNone, KindStr, KindBool, KindNodeRef, KindMap, KindArray, KindRawTyped} {
		assert.False(t, k.IsNumeric(), k.String())
	}
}

func TestAsFloat64(t *testing.T) {
	f, ok := AsFloat64(I32(-3))
	assert.True(t, ok)
	assert.Equal(t, -3.0, f)

	f, ok = AsFloat64(F32(1.5))
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)

	_, ok = AsFloat64(Str("1"))
	assert.False(t, ok)
}

func TestEqualData(t *testing.T) {
	assert.True(t, EqualData(nil, None{}))
	assert.True(t, EqualData(Str("a"), Str("a")))
	assert.False(t, EqualData(Str("a"), Str("b")))
	assert.False(t, EqualData(I32(1), I64(1)))
	assert.True(t, EqualData(
		NodeRef{ID: NodeID{IRI: "x", Remote: "r1"}},
		NodeRef{ID: NodeID{IRI: "x", Remote: "r2"}},
	))
	assert.True(t, EqualData(
		Map{KV(Str("a"), I32(1))},
		Map{KV(Str("a"), I32(1))},
	))
	assert.False(t, EqualData(
		Map{KV(Str("a"), I32(1))},
		Map{KV(Str("a"), I32(2))},
	))
	assert.True(t, EqualData(Array{T(Str("x"))}, Array{T(Str("x"))}))
	assert.False(t, EqualData(Array{T(Str("x"))}, Array{}))
	assert.True(t, EqualData(
		RawTyped{TypeIRI: "application/json", Bytes: []byte("{}")},
		RawTyped{TypeIRI: "application/json", Bytes: []byte("{}")},
	))
}

func TestTMDEqualConsidersMetadata(t *testing.T) {
	a := TMD{Data: Str("chat"), Metadata: Str("lang:fr")}
	b := TMD{Data: Str("chat"), Metadata: Str("lang:en")}
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(a))
}

func TestKeyValueDirection(t *testing.T) {
	assert.Equal(t, Property, KV(Str("name"), Str("alice")).Direction())
	assert.Equal(t, ForwardEdge, KV(Str("knows"), Ref("bob")).Direction())
	assert.Equal(t, BackwardEdge, KV(Ref("bob"), Str("knows")).Direction())
	assert.Equal(t, BidirectionalEdge, KV(Ref("a"), Ref("b")).Direction())
}

func TestNodeCanonicalize(t *testing.T) {
	n := Node{
		ID:        NodeID{IRI: "n1", Pointer: MemoryPointer{Offset: 12}},
		Fragments: []MemoryPointer{{Offset: 1}},
	}
	n.Canonicalize()

	assert.True(t, n.ID.Pointer.IsNull())
	assert.Len(t, n.Fragments, FragmentSlots)
	for _, f := range n.Fragments {
		assert.True(t, f.IsNull())
	}
}
