package engine

import (
	"strings"

	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/queryir"
	"github.com/roach88/ahghee/internal/querysql"
)

// matchFilter evaluates a where filter against one node in memory.
//
// A leaf matches when some attribute whose key equals the property has a
// value satisfying the comparison. Compound filters combine leaves with
// and/or. The SQL lowering in querysql implements the same rules.
func matchFilter(expr queryir.FilterExpr, n ir.Node) bool {
	switch f := expr.(type) {
	case queryir.CompareKeyValue:
		for _, kv := range n.Attributes {
			if ir.EqualData(kv.Key.Data, f.Property) && compareData(kv.Value.Data, f.MathOp, f.Value) {
				return true
			}
		}
		return false
	case queryir.CompareCompound:
		switch f.BoolOp {
		case queryir.And:
			return matchFilter(f.Left, n) && matchFilter(f.Right, n)
		case queryir.Or:
			return matchFilter(f.Left, n) || matchFilter(f.Right, n)
		}
	}
	return false
}

// compareData applies op to an attribute value and a literal.
//
// Both sides must share a value class (querysql.ColumnsOf): numbers compare
// as float64, strings bytewise, and booleans and node references support
// only == and !=. Values of different classes never match, not even
// under !=.
func compareData(attr ir.DataBlock, op queryir.MathOp, literal ir.DataBlock) bool {
	a := querysql.ColumnsOf(attr)
	l := querysql.ColumnsOf(literal)
	if a.Class != l.Class {
		return false
	}

	switch a.Class {
	case querysql.ClassNum:
		return ordered(op, a.Num.(float64), l.Num.(float64))
	case querysql.ClassStr:
		return ordered(op, a.Text.(string), l.Text.(string))
	case querysql.ClassBool, querysql.ClassNodeID:
		return equality(op, ir.EqualData(attr, literal))
	}

	if ir.KindOf(attr) != ir.KindOf(literal) {
		return false
	}
	return equality(op, ir.EqualData(attr, literal))
}

func ordered[T float64 | string](op queryir.MathOp, a, b T) bool {
	switch op {
	case queryir.Eq:
		return a == b
	case queryir.Ne:
		return a != b
	case queryir.Lt:
		return a < b
	case queryir.Le:
		return a <= b
	case queryir.Gt:
		return a > b
	case queryir.Ge:
		return a >= b
	}
	return false
}

func equality(op queryir.MathOp, equal bool) bool {
	switch op {
	case queryir.Eq:
		return equal
	case queryir.Ne:
		return !equal
	}
	return false
}

// matchClude reports whether a field selector keeps kv.
//
//	"a"          key contains "a"
//	^"a"         key is exactly "a"
//	*            every attribute
//	$int         value is an integer (likewise $float, $string)
//	k:v          key matches k and value matches v
//	[c1, c2]     any of the selectors
//	c include(x) c or x
//	c exclude(x) c and not x
//	include(x)   x
//	exclude(x)   everything except x
func matchClude(c queryir.Clude, kv ir.KeyValue) bool {
	switch v := c.(type) {
	case queryir.MatchPart:
		return matchPart(v, kv.Key.Data)
	case queryir.Wildcard:
		return true
	case queryir.TypeMatch:
		return v.Kind.Matches(ir.KindOf(kv.Value.Data))
	case queryir.CludeOp:
		return matchSide(v.Left, kv.Key.Data) && matchSide(v.Right, kv.Value.Data)
	case queryir.Include:
		return matchClude(v.Inner, kv)
	case queryir.Exclude:
		return !matchClude(v.Inner, kv)
	case queryir.TwoClude:
		base := matchClude(v.Left, kv)
		switch {
		case v.Include != nil:
			return base || matchClude(v.Include, kv)
		case v.Exclude != nil:
			return base && !matchClude(v.Exclude, kv)
		}
		return base
	case queryir.CludeList:
		for _, item := range v.Items {
			if matchClude(item, kv) {
				return true
			}
		}
	}
	return false
}

// matchSide matches one side of a key:value selector against d.
func matchSide(c queryir.Clude, d ir.DataBlock) bool {
	switch v := c.(type) {
	case queryir.MatchPart:
		return matchPart(v, d)
	case queryir.Wildcard:
		return true
	case queryir.TypeMatch:
		return v.Kind.Matches(ir.KindOf(d))
	}
	return false
}

func matchPart(p queryir.MatchPart, d ir.DataBlock) bool {
	text, ok := textOf(d)
	if !ok {
		return false
	}
	if p.Exact {
		return text == p.Text
	}
	return strings.Contains(text, p.Text)
}

// textOf returns the matchable text of a key or value: the string itself
// or a node reference's IRI.
func textOf(d ir.DataBlock) (string, bool) {
	switch v := d.(type) {
	case ir.Str:
		return string(v), true
	case ir.NodeRef:
		return v.ID.IRI, true
	}
	return "", false
}

// project keeps the attributes of n selected by c. The returned node never
// shares its attribute slice with n.
func project(c queryir.Clude, n ir.Node) ir.Node {
	out := n
	out.Attributes = make([]ir.KeyValue, 0, len(n.Attributes))
	for _, kv := range n.Attributes {
		if matchClude(c, kv) {
			out.Attributes = append(out.Attributes, kv)
		}
	}
	return out
}
