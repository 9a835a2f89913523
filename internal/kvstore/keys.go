package kvstore

import (
	"encoding/binary"

	"github.com/roach88/ahghee/internal/ir"
)

// Key layout. Node identities are length-prefixed so one node's version
// prefix never covers another node ("a" vs "ab").
//
//	n/<id>        current version record
//	v/<id><seq>   history record, seq big-endian so versions scan in order
//	m/seq         highest stored seq
const (
	prefixNode    byte = 'n'
	prefixVersion byte = 'v'
)

var keyLastSeq = []byte("m/seq")

func appendID(b []byte, id ir.NodeID) []byte {
	b = binary.AppendUvarint(b, uint64(len(id.Graph)))
	b = append(b, id.Graph...)
	b = binary.AppendUvarint(b, uint64(len(id.IRI)))
	return append(b, id.IRI...)
}

func nodeKey(id ir.NodeID) []byte {
	return appendID([]byte{prefixNode, '/'}, id)
}

func versionPrefix(id ir.NodeID) []byte {
	return appendID([]byte{prefixVersion, '/'}, id)
}

func versionKey(id ir.NodeID, seq int64) []byte {
	return binary.BigEndian.AppendUint64(versionPrefix(id), uint64(seq))
}

func encodeSeq(seq int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(seq))
}

func decodeSeq(b []byte) int64 {
	if len(b) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}
