package querysql

import (
	"github.com/roach88/ahghee/internal/ir"
)

// Value classes stored in the attributes table. Two datablocks are only
// ever compared when they share a class.
const (
	ClassStr    = "str"
	ClassNum    = "num"
	ClassBool   = "bool"
	ClassNodeID = "nodeid"
	ClassOther  = "other"
)

// Columns is the indexed projection of one datablock. Graph and Text are
// used by str and nodeid, Num by num and bool.
type Columns struct {
	Class string
	Graph string
	Text  any
	Num   any
}

// ColumnsOf projects d onto the attribute columns. Maps, arrays, raw
// values and None land in ClassOther and are never pushed down.
func ColumnsOf(d ir.DataBlock) Columns {
	switch v := d.(type) {
	case ir.Str:
		return Columns{Class: ClassStr, Text: string(v)}
	case ir.NodeRef:
		return Columns{Class: ClassNodeID, Graph: v.ID.Graph, Text: v.ID.IRI}
	case ir.Bool:
		n := 0.0
		if v {
			n = 1
		}
		return Columns{Class: ClassBool, Num: n}
	}
	if f, ok := ir.AsFloat64(d); ok {
		return Columns{Class: ClassNum, Num: f}
	}
	return Columns{Class: ClassOther}
}
