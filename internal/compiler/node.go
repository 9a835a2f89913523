package compiler

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/syntax"
)

//go:embed node.schema.json
var nodeSchemaJSON string

var nodeSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(nodeSchemaJSON))
})

// BuildNode builds a node from one put operand. Both the raw JSON form and
// the id+kvps form produce a canonicalized node: null id pointer and the
// reserved null fragment slots.
func BuildNode(lit *syntax.NodeLiteral) (ir.Node, error) {
	if lit == nil {
		return ir.Node{}, errorf(MalformedLiteral, syntax.Pos{}, "missing node literal")
	}
	if lit.JSON != "" {
		return nodeFromJSON(lit.JSON, lit.Pos)
	}
	return nodeFromPairs(lit)
}

func nodeFromJSON(text string, pos syntax.Pos) (ir.Node, error) {
	schema, err := nodeSchema()
	if err != nil {
		return ir.Node{}, fmt.Errorf("node schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(text))
	if err != nil {
		return ir.Node{}, wrapError(MalformedLiteral, pos, err, "node literal is not JSON")
	}
	if !result.Valid() {
		return ir.Node{}, schemaError(result.Errors(), pos)
	}

	n, err := ir.DecodeNode([]byte(text))
	if err != nil {
		return ir.Node{}, wrapError(MalformedLiteral, pos, err, "node literal")
	}
	n.Canonicalize()
	return n, nil
}

// schemaError reports every violation in one error. Violations under the
// id make the whole error MalformedNodeId.
func schemaError(errs []gojsonschema.ResultError, pos syntax.Pos) error {
	kind := MalformedLiteral
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		if isNodeIDViolation(e) {
			kind = MalformedNodeID
		}
		msgs = append(msgs, e.String())
	}
	return errorf(kind, pos, "node literal invalid against schema: %s", strings.Join(msgs, "; "))
}

func isNodeIDViolation(e gojsonschema.ResultError) bool {
	field := e.Field()
	if field == "id" || strings.HasPrefix(field, "id.") {
		return true
	}
	return e.Type() == "required" && e.Details()["property"] == "id"
}

func nodeFromPairs(lit *syntax.NodeLiteral) (ir.Node, error) {
	id, err := NodeID(lit.ID)
	if err != nil {
		return ir.Node{}, err
	}

	n := ir.Node{ID: id, Attributes: make([]ir.KeyValue, 0, len(lit.Pairs))}
	for _, p := range lit.Pairs {
		kv, err := pairKeyValue(p)
		if err != nil {
			return ir.Node{}, err
		}
		n.Attributes = append(n.Attributes, kv)
	}
	n.Canonicalize()
	return n, nil
}

// pairKeyValue maps the four attribute shapes onto one KeyValue. An IRI
// on either side becomes a NodeRef on that side.
func pairKeyValue(p *syntax.Pair) (ir.KeyValue, error) {
	if p.Key == nil || p.Value == nil {
		return ir.KeyValue{}, errorf(MalformedLiteral, p.Pos, "incomplete attribute")
	}
	switch p.Kind {
	case syntax.PairProperty:
		return ir.KV(Value(p.Key), Value(p.Value)), nil
	case syntax.PairEdge:
		return ir.KV(Value(p.Key), ir.Ref(p.Value.Text)), nil
	case syntax.PairBackEdge:
		return ir.KV(ir.Ref(p.Key.Text), Value(p.Value)), nil
	case syntax.PairBiEdge:
		return ir.KV(ir.Ref(p.Key.Text), ir.Ref(p.Value.Text)), nil
	}
	return ir.KeyValue{}, errorf(MalformedLiteral, p.Pos, "unknown attribute shape %d", p.Kind)
}

// FromTriples groups statements into nodes by subject. Nodes appear in
// first-seen subject order and attributes in statement order.
func FromTriples(triples []*syntax.Triple, r BlankNodeResolver) ([]ir.Node, error) {
	index := make(map[ir.NodeKey]int)
	var nodes []ir.Node

	for _, t := range triples {
		subject, err := Subject(t.Subject, r)
		if err != nil {
			return nil, err
		}
		key, err := Predicate(t.Predicate)
		if err != nil {
			return nil, err
		}
		value, err := Object(t.Object, r)
		if err != nil {
			return nil, err
		}

		i, ok := index[subject.Key()]
		if !ok {
			i = len(nodes)
			index[subject.Key()] = i
			nodes = append(nodes, ir.Node{ID: subject})
		}
		nodes[i].Attributes = append(nodes[i].Attributes, ir.KeyValue{Key: key, Value: value})
	}

	for i := range nodes {
		nodes[i].Canonicalize()
	}
	return nodes, nil
}
