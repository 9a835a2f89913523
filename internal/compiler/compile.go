// Package compiler maps parse trees onto the data model and compiles pipe
// stages into a queryir.Step chain. Compilation performs no I/O; the only
// state it touches is a caller-supplied blank node resolver.
package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/queryir"
	"github.com/roach88/ahghee/internal/syntax"
)

// PrintMode holds the command flags. Flags only affect presentation.
type PrintMode uint8

const (
	PrintHistory PrintMode = 1 << iota // h
	PrintTimes                         // t
	PrintVerbose                       // v
)

var flagLetters = []struct {
	letter byte
	mode   PrintMode
}{
	{'h', PrintHistory},
	{'t', PrintTimes},
	{'v', PrintVerbose},
}

// ParseFlags reads flag letters such as "hv". Repeated letters are allowed.
func ParseFlags(flags string) (PrintMode, error) {
	var m PrintMode
	for i := 0; i < len(flags); i++ {
		found := false
		for _, f := range flagLetters {
			if flags[i] == f.letter {
				m |= f.mode
				found = true
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown flag %q", flags[i])
		}
	}
	return m, nil
}

// Has reports whether every flag in f is set.
func (m PrintMode) Has(f PrintMode) bool {
	return m&f == f
}

// String renders the set flags in canonical order, e.g. "htv".
func (m PrintMode) String() string {
	var b strings.Builder
	for _, f := range flagLetters {
		if m.Has(f.mode) {
			b.WriteByte(f.letter)
		}
	}
	return b.String()
}

// MarshalText encodes the flags as their letters.
func (m PrintMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// PutRequest is a compiled put command.
type PutRequest struct {
	Nodes []ir.Node `json:"nodes"`
	Flags PrintMode `json:"flags"`
}

// GetRequest is a compiled get command.
type GetRequest struct {
	IDs      []ir.NodeID   `json:"ids"`
	Pipeline *queryir.Step `json:"pipeline"`
	Flags    PrintMode     `json:"flags"`
}

// Compiled is the result of compiling one command. Exactly one of Put and
// Get is set, matching Kind.
type Compiled struct {
	Kind syntax.CommandKind `json:"-"`
	Text string             `json:"-"`
	Put  *PutRequest        `json:"put,omitempty"`
	Get  *GetRequest        `json:"get,omitempty"`
}

// Compile dispatches a parsed command to the node builder or the
// pipeline compiler. It has no side effects; errors abort only this
// command.
func Compile(cmd *syntax.Command) (*Compiled, error) {
	flags, err := ParseFlags(cmd.Flags)
	if err != nil {
		return nil, errorf(MalformedLiteral, cmd.Pos, "%v", err)
	}
	out := &Compiled{Kind: cmd.Kind, Text: cmd.Text}

	switch cmd.Kind {
	case syntax.CommandPut:
		nodes := make([]ir.Node, 0, len(cmd.Nodes))
		for _, lit := range cmd.Nodes {
			n, err := BuildNode(lit)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
		out.Put = &PutRequest{Nodes: nodes, Flags: flags}

	case syntax.CommandGet:
		ids, err := NodeIDs(cmd.IDs)
		if err != nil {
			return nil, err
		}
		step, err := Pipeline(cmd.Pipes)
		if err != nil {
			return nil, err
		}
		out.Get = &GetRequest{IDs: ids, Pipeline: step, Flags: flags}

	default:
		return nil, errorf(UnsupportedOperator, cmd.Pos, "unknown command kind %s", cmd.Kind)
	}
	return out, nil
}
