package compiler

import (
	"bytes"
	"encoding/json"

	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/syntax"
)

// NodeID builds an ir.NodeID from either written form. The JSON object
// form is decoded field by field; the string form sets IRI and Remote.
// The pointer is always the canonical null pointer.
func NodeID(n *syntax.NodeID) (ir.NodeID, error) {
	if n == nil {
		return ir.NodeID{}, errorf(MalformedNodeID, syntax.Pos{}, "missing node id")
	}

	var id ir.NodeID
	if n.JSON != "" {
		dec := json.NewDecoder(bytes.NewReader([]byte(n.JSON)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&id); err != nil {
			return ir.NodeID{}, wrapError(MalformedNodeID, n.Pos, err, "decode node id")
		}
	} else {
		id = ir.NodeID{IRI: n.IRI, Remote: n.Remote}
	}

	if id.IRI == "" {
		return ir.NodeID{}, errorf(MalformedNodeID, n.Pos, "node id has no iri")
	}
	id.Pointer = ir.NullMemoryPointer()
	return id, nil
}

// NodeIDs builds every id of a get command, in order.
func NodeIDs(ns []*syntax.NodeID) ([]ir.NodeID, error) {
	ids := make([]ir.NodeID, 0, len(ns))
	for _, n := range ns {
		id, err := NodeID(n)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
