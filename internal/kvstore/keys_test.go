package kvstore

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/ahghee/internal/ir"
)

func TestVersionKey_SortsBySeq(t *testing.T) {
	id := ir.NodeID{IRI: "n"}
	k1 := versionKey(id, 1)
	k2 := versionKey(id, 256)
	k3 := versionKey(id, 1<<40)

	assert.Negative(t, bytes.Compare(k1, k2))
	assert.Negative(t, bytes.Compare(k2, k3))
	assert.True(t, bytes.HasPrefix(k1, versionPrefix(id)))
}

func TestNodeKey_IsPrefixFree(t *testing.T) {
	a := nodeKey(ir.NodeID{IRI: "a"})
	ab := nodeKey(ir.NodeID{IRI: "ab"})
	graphA := nodeKey(ir.NodeID{Graph: "a", IRI: ""})

	assert.False(t, bytes.HasPrefix(ab, a))
	assert.NotEqual(t, a, graphA)
}

func TestSeqEncoding(t *testing.T) {
	assert.Equal(t, int64(42), decodeSeq(encodeSeq(42)))
	assert.Equal(t, int64(0), decodeSeq(nil))
}
