package store

import (
	"fmt"

	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/querysql"
)

// marshalNode serializes a node to canonical JSON for the body column.
func marshalNode(n ir.Node) (string, error) {
	b, err := ir.MarshalCanonical(n)
	if err != nil {
		return "", fmt.Errorf("marshal node %s: %w", n.ID, err)
	}
	return string(b), nil
}

// unmarshalNode restores a node from its body column.
func unmarshalNode(body string) (ir.Node, error) {
	n, err := ir.DecodeNode([]byte(body))
	if err != nil {
		return ir.Node{}, fmt.Errorf("unmarshal node: %w", err)
	}
	return n, nil
}

// attributeRow is one row of the attributes table.
type attributeRow struct {
	ord   int
	key   querysql.Columns
	value querysql.Columns
}

func attributeRows(n ir.Node) []attributeRow {
	rows := make([]attributeRow, len(n.Attributes))
	for i, kv := range n.Attributes {
		rows[i] = attributeRow{
			ord:   i,
			key:   querysql.ColumnsOf(kv.Key.Data),
			value: querysql.ColumnsOf(kv.Value.Data),
		}
	}
	return rows
}
