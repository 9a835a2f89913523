package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/ahghee/internal/compiler"
	"github.com/roach88/ahghee/internal/engine"
	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/syntax"
)

// Result is the outcome of one command.
type Result struct {
	Command string
	Kind    syntax.CommandKind
	Flags   compiler.PrintMode
	// IDs are the put node ids or the get root ids, in command order.
	IDs     []ir.NodeID
	Written int
	Items   []engine.Item
	// History is set for get -h, keyed by root.
	History map[ir.NodeKey][]engine.Version
	Err     error
	Elapsed time.Duration
}

// OK reports whether the command and every item in it succeeded.
func (r Result) OK() bool {
	if r.Err != nil {
		return false
	}
	for _, item := range r.Items {
		if item.Err != nil {
			return false
		}
	}
	return true
}

// Status renders the command outcome as a status line body, e.g.
//
//	put(n1, n2).done in 3ms
//	get(a).err(NOT_FOUND: query(a): node not found)
func (r Result) Status() string {
	head := fmt.Sprintf("%s(%s)", r.Kind, joinIRIs(r.IDs))
	if r.Err != nil {
		return fmt.Sprintf("%s.err(%v)", head, r.Err)
	}
	return fmt.Sprintf("%s.done in %dms", head, r.Elapsed.Milliseconds())
}

// ItemStatus renders one get item as a status line body.
func ItemStatus(item engine.Item) string {
	if item.Err != nil {
		return fmt.Sprintf("get(%s).err(%v)", item.ID.IRI, item.Err)
	}
	return fmt.Sprintf("get(%s).done", item.ID.IRI)
}

func joinIRIs(ids []ir.NodeID) string {
	iris := make([]string, len(ids))
	for i, id := range ids {
		iris[i] = id.IRI
	}
	return strings.Join(iris, ", ")
}
