// Package syntax defines the parse tree produced by the command and
// N-Triples front-ends. The tree is plain data: the compiler maps each node
// kind to the data model and never mutates it.
package syntax

import "fmt"

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// IsValid reports whether p was set by a parser.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

// CommandKind distinguishes put from get.
type CommandKind int

const (
	CommandPut CommandKind = iota + 1
	CommandGet
)

func (k CommandKind) String() string {
	switch k {
	case CommandPut:
		return "put"
	case CommandGet:
		return "get"
	}
	return "unknown"
}

// Command is one top-level statement.
type Command struct {
	Kind  CommandKind
	Flags string // flag letters as written, e.g. "hv"
	Nodes []*NodeLiteral
	IDs   []*NodeID
	Pipes []*PipeCmd
	Text  string // source text of the whole command
	Pos   Pos
}

// NodeLiteral is one put operand. JSON is set for the raw node literal
// form; ID and Pairs are set for the {"id": ..., "kvps": {...}} form.
type NodeLiteral struct {
	JSON  string
	ID    *NodeID
	Pairs []*Pair
	Pos   Pos
}

// NodeID is a node id as written: a JSON object, or an IRI with an
// optional remote prefix.
type NodeID struct {
	JSON   string
	Remote string
	IRI    string
	Pos    Pos
}

// ValueKind enumerates literal shapes.
type ValueKind int

const (
	ValueString ValueKind = iota + 1
	ValueNumber
	ValueObject
	ValueArray
	ValueTrue
	ValueFalse
	ValueNull
	ValueIRI
	ValueRaw
)

// Value is a literal. Text holds the decoded content for strings and IRIs
// and the literal spelling for numbers; Raw is the exact source span.
type Value struct {
	Kind    ValueKind
	Text    string
	Raw     string
	Members []*Member
	Items   []*Value
	Pos     Pos
}

// Member is one object member. Keys are strings or IRIs.
type Member struct {
	Key   *Value
	Value *Value
}

// PairKind is the syntactic shape of an attribute in the kvps form.
type PairKind int

const (
	PairProperty PairKind = iota + 1 // "k": value
	PairEdge                         // "k": <iri>
	PairBackEdge                     // <iri>: "k"
	PairBiEdge                       // <iri>: <iri>
)

// Pair is one attribute of a kvps object.
type Pair struct {
	Kind  PairKind
	Key   *Value
	Value *Value
	Pos   Pos
}

// PipeKind identifies a pipe stage.
type PipeKind int

const (
	PipeUnknown PipeKind = iota
	PipeFollow
	PipeWhere
	PipeSkip
	PipeLimit
	PipeFields
)

// PipeCmd is one `| stage` of a get command. Name is the stage keyword as
// written, which is all that is known about an unrecognized stage.
type PipeCmd struct {
	Kind   PipeKind
	Name   string
	Follow *EdgeExpr
	Where  *CompareExpr
	Count  *Value
	Fields *Clude
	Raw    string
	Pos    Pos
}

// Range is `[from:to]`; From is empty when omitted.
type Range struct {
	From string
	To   string
	Pos  Pos
}

// EdgeExpr is a follow target: `any[range]`, `value[range]`, or
// `(left BOOLOP right)`.
type EdgeExpr struct {
	Any    bool
	Value  *Value
	Range  *Range
	Left   *EdgeExpr
	BoolOp string
	Right  *EdgeExpr
	Pos    Pos
}

// IsCompound reports whether e joins two sub-expressions.
func (e *EdgeExpr) IsCompound() bool {
	return e.Left != nil || e.Right != nil
}

// CompareExpr is a where filter: `(property MATHOP value)` or
// `(left BOOLOP right)`.
type CompareExpr struct {
	Property *Value
	MathOp   string
	Value    *Value
	Left     *CompareExpr
	BoolOp   string
	Right    *CompareExpr
	Pos      Pos
}

// IsCompound reports whether c joins two sub-filters.
func (c *CompareExpr) IsCompound() bool {
	return c.Left != nil || c.Right != nil
}

// PartKind enumerates field selector atoms.
type PartKind int

const (
	PartMatch      PartKind = iota + 1 // "name"
	PartAnchored                       // ^"name", or a lone ^
	PartWildcard                       // *
	PartTypeInt                        // $int
	PartTypeFloat                      // $float
	PartTypeString                     // $string
)

// CludePart is a field selector atom.
type CludePart struct {
	Kind PartKind
	Text string
	Pos  Pos
}

// Clude is a field selector. Exactly one alternative applies:
//   - Parts: one part, or `left:right`
//   - Include or Exclude, with Cludes holding the base selection when
//     one is written before the keyword
//   - Cludes alone: a bracketed list
type Clude struct {
	Parts   []*CludePart
	Cludes  []*Clude
	Include *Clude
	Exclude *Clude
	Pos     Pos
}

// TermKind enumerates N-Triples term shapes.
type TermKind int

const (
	TermIRI TermKind = iota + 1
	TermBlank
	TermLiteral
)

// Term is one N-Triples term. Value is the IRI, blank label (without
// `_:`), or literal lexical form.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Lang     string
	Pos      Pos
}

// Triple is one N-Triples statement.
type Triple struct {
	Subject   *Term
	Predicate *Term
	Object    *Term
	Pos       Pos
}
