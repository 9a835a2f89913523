package ir

import (
	"slices"
	"strings"

	"github.com/spaolacci/murmur3"
)

// MemoryPointer is an opaque storage address. The zero value is the
// canonical null pointer used for nodes that have not been persisted.
type MemoryPointer struct {
	PartitionKey uint32 `json:"partitionKey,omitempty"`
	Filename     uint32 `json:"filename,omitempty"`
	Offset       uint64 `json:"offset,omitempty"`
	Length       uint64 `json:"length,omitempty"`
}

// NullMemoryPointer returns the canonical null pointer.
func NullMemoryPointer() MemoryPointer {
	return MemoryPointer{}
}

// IsNull reports whether p is the canonical null pointer.
func (p MemoryPointer) IsNull() bool {
	return p == MemoryPointer{}
}

// NodeID names a node within a graph.
//
// Equality, ordering and hashing consider Graph and IRI only. Remote names
// the peer that owns the node and Pointer is where a storage engine last
// placed it; neither participates in identity.
type NodeID struct {
	Graph   string        `json:"graph,omitempty"`
	IRI     string        `json:"iri"`
	Remote  string        `json:"remote,omitempty"`
	Pointer MemoryPointer `json:"pointer,omitzero"`
}

// NodeKey is the comparable identity of a NodeID, for use as a map key.
type NodeKey struct {
	Graph string
	IRI   string
}

// Key returns the identity portion of id.
func (id NodeID) Key() NodeKey {
	return NodeKey{Graph: id.Graph, IRI: id.IRI}
}

// Equal reports whether id and other name the same node.
func (id NodeID) Equal(other NodeID) bool {
	return id.Graph == other.Graph && id.IRI == other.IRI
}

// Compare orders NodeIDs by Graph then IRI using ordinal byte comparison.
func (id NodeID) Compare(other NodeID) int {
	if c := strings.Compare(id.Graph, other.Graph); c != 0 {
		return c
	}
	return strings.Compare(id.IRI, other.IRI)
}

// Hash returns the 32-bit MurmurHash3 of Graph followed by IRI.
// The value is stable across processes and safe to persist.
func (id NodeID) Hash() uint32 {
	h := murmur3.New32()
	h.Write([]byte(id.Graph))
	h.Write([]byte(id.IRI))
	return h.Sum32()
}

// String renders the id for logs and CLI output.
func (id NodeID) String() string {
	var b strings.Builder
	if id.Remote != "" {
		b.WriteString(id.Remote)
		b.WriteByte(':')
	}
	if id.Graph != "" {
		b.WriteString(id.Graph)
		b.WriteByte('/')
	}
	b.WriteString(id.IRI)
	return b.String()
}

// CompareNodeIDs compares two possibly-nil ids. A nil id sorts after
// every non-nil id; two nils are equal.
func CompareNodeIDs(a, b *NodeID) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

// SortNodeIDs sorts ids in place by identity order.
func SortNodeIDs(ids []NodeID) {
	slices.SortStableFunc(ids, NodeID.Compare)
}

// DedupNodeIDs returns ids with later duplicates removed, keeping the
// first occurrence of each identity and the original order.
func DedupNodeIDs(ids []NodeID) []NodeID {
	seen := make(map[NodeKey]struct{}, len(ids))
	out := make([]NodeID, 0, len(ids))
	for _, id := range ids {
		k := id.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, id)
	}
	return out
}
