package compiler

import (
	"math"
	"strconv"

	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/syntax"
)

// RawJSONType is the type IRI of literals kept as uninterpreted source text.
const RawJSONType = "application/json"

// Value materializes a literal into a DataBlock. It never fails: shapes
// that are not recognized are kept as raw JSON text, and null (or a nil
// literal) is None. An empty object has no members to map and is kept
// as raw JSON too.
func Value(v *syntax.Value) ir.DataBlock {
	if v == nil {
		return ir.None{}
	}

	switch v.Kind {
	case syntax.ValueString:
		return ir.Str(v.Text)
	case syntax.ValueNumber:
		if d, ok := Number(v.Text); ok {
			return d
		}
	case syntax.ValueObject:
		if len(v.Members) == 0 {
			break
		}
		m := make(ir.Map, 0, len(v.Members))
		for _, member := range v.Members {
			m = append(m, ir.KV(Value(member.Key), Value(member.Value)))
		}
		return m
	case syntax.ValueArray:
		arr := make(ir.Array, 0, len(v.Items))
		for _, item := range v.Items {
			arr = append(arr, ir.T(Value(item)))
		}
		return arr
	case syntax.ValueTrue:
		return ir.Bool(true)
	case syntax.ValueFalse:
		return ir.Bool(false)
	case syntax.ValueNull:
		return ir.None{}
	case syntax.ValueIRI:
		return ir.Ref(v.Text)
	}

	return rawJSON(v.Raw)
}

func rawJSON(text string) ir.DataBlock {
	if text == "" {
		return ir.None{}
	}
	return ir.RawTyped{TypeIRI: RawJSONType, Bytes: []byte(text)}
}

// Number parses a numeric literal using the widening cascade int32,
// int64, uint64, float32, float64. A float literal becomes F32 only when
// float32 holds it exactly. ok is false when the text is not a finite
// number.
func Number(text string) (d ir.DataBlock, ok bool) {
	if i, err := strconv.ParseInt(text, 10, 32); err == nil {
		return ir.I32(i), true
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return ir.I64(i), true
	}
	if u, err := strconv.ParseUint(text, 10, 64); err == nil {
		return ir.UI64(u), true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || !isDecimal(text) {
		return nil, false
	}
	if f32 := float32(f); float64(f32) == f {
		return ir.F32(f32), true
	}
	return ir.F64(f), true
}

// isDecimal rejects the hex, underscore and named forms ParseFloat accepts.
func isDecimal(text string) bool {
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c >= '0' && c <= '9':
		case c == '.', c == 'e', c == 'E', c == '+', c == '-':
		default:
			return false
		}
	}
	return true
}

// Object materializes the object of an N-Triples statement. Literal
// datatypes become NodeRef metadata and language tags become
// Str("lang:<tag>") metadata. Blank nodes are resolved through r.
func Object(t *syntax.Term, r BlankNodeResolver) (ir.TMD, error) {
	switch t.Kind {
	case syntax.TermLiteral:
		tmd := ir.T(ir.Str(t.Value))
		switch {
		case t.Datatype != "":
			tmd.Metadata = ir.Ref(t.Datatype)
		case t.Lang != "":
			tmd.Metadata = ir.Str(ir.LangTagPrefix + t.Lang)
		}
		return tmd, nil
	case syntax.TermIRI:
		return ir.T(ir.Ref(t.Value)), nil
	case syntax.TermBlank:
		iri, err := resolveBlank(t, r)
		if err != nil {
			return ir.TMD{}, err
		}
		return ir.T(ir.Ref(iri)), nil
	}
	return ir.TMD{}, errorf(MalformedLiteral, t.Pos, "unknown term kind %d", t.Kind)
}

// Predicate materializes a statement predicate as a NodeRef key.
func Predicate(t *syntax.Term) (ir.TMD, error) {
	if t.Kind != syntax.TermIRI || t.Value == "" {
		return ir.TMD{}, errorf(MalformedLiteral, t.Pos, "predicate must be an IRI")
	}
	return ir.T(ir.Ref(t.Value)), nil
}

// Subject resolves a statement subject to a NodeID.
func Subject(t *syntax.Term, r BlankNodeResolver) (ir.NodeID, error) {
	switch t.Kind {
	case syntax.TermIRI:
		if t.Value == "" {
			return ir.NodeID{}, errorf(MalformedNodeID, t.Pos, "subject has an empty IRI")
		}
		return ir.NodeID{IRI: t.Value}, nil
	case syntax.TermBlank:
		iri, err := resolveBlank(t, r)
		if err != nil {
			return ir.NodeID{}, err
		}
		return ir.NodeID{IRI: iri}, nil
	}
	return ir.NodeID{}, errorf(MalformedNodeID, t.Pos, "subject must be an IRI or blank node")
}

func resolveBlank(t *syntax.Term, r BlankNodeResolver) (string, error) {
	if r == nil {
		return "", errorf(MalformedLiteral, t.Pos, "blank node _:%s without a resolver", t.Value)
	}
	iri, err := r.Resolve(t.Value)
	if err != nil {
		return "", wrapError(MalformedLiteral, t.Pos, err, "resolve blank node _:%s", t.Value)
	}
	if iri == "" {
		return "", errorf(MalformedLiteral, t.Pos, "blank node _:%s resolved to an empty IRI", t.Value)
	}
	return iri, nil
}
