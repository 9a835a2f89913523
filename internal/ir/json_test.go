package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalDataBlock(t *testing.T) {
	tests := []struct {
		name     string
		value    DataBlock
		expected string
	}{
		{"nil", nil, "null"},
		{"none", None{}, "null"},
		{"str", Str("a<b"), `{"str":"a<b"}`},
		{"i32", I32(42), `{"i32":42}`},
		{"i64", I64(-5000000000), `{"i64":-5000000000}`},
		{"ui64", UI64(18446744073709551615), `{"ui64":18446744073709551615}`},
		{"f32", F32(1.5), `{"f32":1.5}`},
		{"f64", F64(3.14), `{"f64":3.14}`},
		{"bool", Bool(true), `{"bool":true}`},
		{"nodeid", NodeRef{ID: NodeID{Graph: "g", IRI: "n"}}, `{"nodeid":{"graph":"g","iri":"n"}}`},
		{"empty map", Map{}, `{"map":[]}`},
		{"empty array", Array(nil), `{"array":[]}`},
		{"typed", RawTyped{TypeIRI: "application/json", Bytes: []byte("{}")}, `{"typed":{"bytes":"e30=","typeIri":"application/json"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalDataBlock(tt.value)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestMarshalDataBlockRejectsNaN(t *testing.T) {
	_, err := MarshalDataBlock(F64(nan()))
	assert.Error(t, err)
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}

func TestUnmarshalDataBlockRoundTrip(t *testing.T) {
	values := []DataBlock{
		Str("x"), I32(-7), I64(1 << 40), UI64(1 << 63), F32(0.25), F64(2.5), Bool(false),
		NodeRef{ID: NodeID{Graph: "g", IRI: "n", Remote: "peer"}},
		Map{KV(Str("k"), Array{T(I32(1)), {Data: Str("v"), Metadata: Str("lang:en")}})},
		RawTyped{TypeIRI: "text/plain", Bytes: []byte("hi")},
	}

	for _, v := range values {
		t.Run(KindOf(v).String(), func(t *testing.T) {
			data, err := MarshalDataBlock(v)
			require.NoError(t, err)
			got, err := UnmarshalDataBlock(data)
			require.NoError(t, err)
			assert.True(t, EqualData(v, got), "got %#v", got)
			assert.Equal(t, KindOf(v), KindOf(got))
		})
	}
}

func TestUnmarshalDataBlockOneofDiscipline(t *testing.T) {
	_, err := UnmarshalDataBlock([]byte(`{"str":"a","i32":1}`))
	assert.ErrorContains(t, err, "exactly one case")

	_, err = UnmarshalDataBlock([]byte(`{"decimal":"1.0"}`))
	assert.ErrorContains(t, err, "unknown datablock case")

	_, err = UnmarshalDataBlock([]byte(`{"i32":5000000000}`))
	assert.Error(t, err)

	got, err := UnmarshalDataBlock([]byte(`null`))
	require.NoError(t, err)
	assert.Equal(t, KindNone, KindOf(got))
}

func TestUnmarshalDataBlockQuoted64(t *testing.T) {
	got, err := UnmarshalDataBlock([]byte(`{"i64":"9007199254740993"}`))
	require.NoError(t, err)
	assert.Equal(t, I64(9007199254740993), got)

	got, err = UnmarshalDataBlock([]byte(`{"ui64":"18446744073709551615"}`))
	require.NoError(t, err)
	assert.Equal(t, UI64(18446744073709551615), got)
}

func TestTMDJSON(t *testing.T) {
	tmd := TMD{Data: Str("chat"), Metadata: Str("lang:fr")}

	data, err := json.Marshal(tmd)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"str":"chat"},"metadata":{"str":"lang:fr"}}`, string(data))

	var back TMD
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, tmd.Equal(back))

	data, err = json.Marshal(T(None{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":null}`, string(data))
}

func TestDecodeNode(t *testing.T) {
	literal := `{
		"id": {"iri": "n1", "graph": "g"},
		"attributes": [
			{"key": {"data": {"str": "age"}}, "value": {"data": {"i32": 30}}}
		]
	}`

	n, err := DecodeNode([]byte(literal))
	require.NoError(t, err)
	assert.Equal(t, NodeID{Graph: "g", IRI: "n1"}, n.ID)
	require.Len(t, n.Attributes, 1)
	assert.True(t, n.Attributes[0].Equal(KV(Str("age"), I32(30))))
}

func TestDecodeNodeRejectsUnknownFields(t *testing.T) {
	_, err := DecodeNode([]byte(`{"id":{"iri":"n1"},"attrs":[]}`))
	assert.ErrorContains(t, err, "unknown field")
}
