package querysql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/queryir"
)

// ErrUnsupported marks filter shapes that have no SQL form. Callers fall
// back to evaluating the filter in memory.
var ErrUnsupported = errors.New("filter not supported in SQL")

// FilterCompiler compiles where filters to parameterized SQL over the
// attributes table.
//
// All values are parameterized (never interpolated), and every SELECT ends
// in an ORDER BY with COLLATE BINARY so results are deterministic.
type FilterCompiler struct {
	// NodeTable is the table or alias holding the graph and iri columns
	// the filter correlates with.
	NodeTable string
}

// NewFilterCompiler creates a compiler correlated with the nodes table.
func NewFilterCompiler() *FilterCompiler {
	return &FilterCompiler{NodeTable: "nodes"}
}

// Compile converts a filter to a boolean SQL expression.
// Returns (sql, params, error); errors wrap ErrUnsupported when any leaf
// has no SQL form.
func (c *FilterCompiler) Compile(expr queryir.FilterExpr) (string, []any, error) {
	if expr == nil {
		return "", nil, fmt.Errorf("cannot compile nil filter")
	}

	switch f := expr.(type) {
	case queryir.CompareKeyValue:
		return c.compileLeaf(f)
	case queryir.CompareCompound:
		return c.compileCompound(f)
	default:
		return "", nil, fmt.Errorf("%w: filter type %T", ErrUnsupported, expr)
	}
}

// CompileMatch builds a query selecting which of ids satisfy expr. Rows
// are (graph, iri) pairs.
func (c *FilterCompiler) CompileMatch(expr queryir.FilterExpr, ids []ir.NodeID) (string, []any, error) {
	where, params, err := c.Compile(expr)
	if err != nil {
		return "", nil, err
	}

	t := c.NodeTable
	idSQL := "1 = 0"
	idParams := make([]any, 0, 2*len(ids))
	if len(ids) > 0 {
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = fmt.Sprintf("(%s.graph = ? AND %s.iri = ?)", t, t)
			idParams = append(idParams, id.Graph, id.IRI)
		}
		idSQL = strings.Join(parts, " OR ")
	}

	sql := fmt.Sprintf("SELECT %s.graph, %s.iri FROM %s WHERE (%s) AND %s ORDER BY %s.graph COLLATE BINARY ASC, %s.iri COLLATE BINARY ASC",
		t, t, fromClause(t), idSQL, where, t, t)
	return sql, append(idParams, params...), nil
}

func fromClause(t string) string {
	if t == "nodes" {
		return "nodes"
	}
	return "nodes AS " + t
}

func (c *FilterCompiler) compileCompound(f queryir.CompareCompound) (string, []any, error) {
	var joiner string
	switch f.BoolOp {
	case queryir.And:
		joiner = " AND "
	case queryir.Or:
		joiner = " OR "
	default:
		return "", nil, fmt.Errorf("%w: boolean operator %q", ErrUnsupported, f.BoolOp)
	}

	left, leftParams, err := c.Compile(f.Left)
	if err != nil {
		return "", nil, err
	}
	right, rightParams, err := c.Compile(f.Right)
	if err != nil {
		return "", nil, err
	}
	return "(" + left + joiner + right + ")", append(leftParams, rightParams...), nil
}

// compileLeaf compiles one comparison to an EXISTS over the node's
// attributes: some attribute whose key equals the property and whose
// value satisfies the comparison.
func (c *FilterCompiler) compileLeaf(f queryir.CompareKeyValue) (string, []any, error) {
	keySQL, keyParams, err := keyPredicate(f.Property)
	if err != nil {
		return "", nil, err
	}
	valSQL, valParams, err := valuePredicate(f.MathOp, f.Value)
	if err != nil {
		return "", nil, err
	}

	t := c.NodeTable
	sql := fmt.Sprintf("EXISTS (SELECT 1 FROM attributes a WHERE a.graph = %s.graph AND a.iri = %s.iri AND %s AND %s)",
		t, t, keySQL, valSQL)
	return sql, append(keyParams, valParams...), nil
}

func keyPredicate(property ir.DataBlock) (string, []any, error) {
	col := ColumnsOf(property)
	switch col.Class {
	case ClassStr:
		return "a.key_class = ? AND a.key_text = ?", []any{ClassStr, col.Text}, nil
	case ClassNodeID:
		return "a.key_class = ? AND a.key_graph = ? AND a.key_text = ?", []any{ClassNodeID, col.Graph, col.Text}, nil
	}
	return "", nil, fmt.Errorf("%w: property of kind %s", ErrUnsupported, ir.KindOf(property))
}

var sqlOps = map[queryir.MathOp]string{
	queryir.Eq: "=",
	queryir.Ne: "<>",
	queryir.Lt: "<",
	queryir.Le: "<=",
	queryir.Gt: ">",
	queryir.Ge: ">=",
}

func valuePredicate(op queryir.MathOp, value ir.DataBlock) (string, []any, error) {
	sqlOp, ok := sqlOps[op]
	if !ok {
		return "", nil, fmt.Errorf("%w: comparison operator %q", ErrUnsupported, op)
	}

	col := ColumnsOf(value)
	switch col.Class {
	case ClassNum:
		return "a.value_class = ? AND a.value_num " + sqlOp + " ?", []any{ClassNum, col.Num}, nil
	case ClassStr:
		return "a.value_class = ? AND a.value_text " + sqlOp + " ? COLLATE BINARY", []any{ClassStr, col.Text}, nil
	case ClassBool:
		if op.IsOrdered() {
			break
		}
		return "a.value_class = ? AND a.value_num " + sqlOp + " ?", []any{ClassBool, col.Num}, nil
	case ClassNodeID:
		switch op {
		case queryir.Eq:
			return "a.value_class = ? AND a.value_graph = ? AND a.value_text = ?", []any{ClassNodeID, col.Graph, col.Text}, nil
		case queryir.Ne:
			return "a.value_class = ? AND NOT (a.value_graph = ? AND a.value_text = ?)", []any{ClassNodeID, col.Graph, col.Text}, nil
		}
	}
	return "", nil, fmt.Errorf("%w: %s %s value", ErrUnsupported, op, ir.KindOf(value))
}
