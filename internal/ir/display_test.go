package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplay(t *testing.T) {
	tests := []struct {
		name string
		in   DataBlock
		want string
	}{
		{"nil", nil, "null"},
		{"str", Str("alice"), "alice"},
		{"i32", I32(-42), "-42"},
		{"ui64", UI64(math.MaxUint64), "18446744073709551615"},
		{"f32", F32(1.5), "1.5"},
		{"f64", F64(3.14), "3.14"},
		{"bool", Bool(true), "true"},
		{"ref", Ref("n1"), "<n1>"},
		{"array", Array{T(I32(1))}, `{"array":[{"data":{"i32":1}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Display(tt.in))
		})
	}
}

func TestDisplayTMD(t *testing.T) {
	assert.Equal(t, "bob@en", DisplayTMD(TMD{Data: Str("bob"), Metadata: Str(LangTagPrefix + "en")}))
	assert.Equal(t, "5^^<http://www.w3.org/2001/XMLSchema#int>",
		DisplayTMD(TMD{Data: I32(5), Metadata: Ref("http://www.w3.org/2001/XMLSchema#int")}))
	assert.Equal(t, "plain", DisplayTMD(T(Str("plain"))))
}
