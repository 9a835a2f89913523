package queryir

import "github.com/roach88/ahghee/internal/ir"

// Step is one stage of a compiled pipeline. Each Step owns its Next.
type Step struct {
	Op   Operator
	Next *Step
}

// Chain links ops into a pipeline in the given order. It returns nil
// when ops is empty.
func Chain(ops ...Operator) *Step {
	var head *Step
	for i := len(ops) - 1; i >= 0; i-- {
		head = &Step{Op: ops[i], Next: head}
	}
	return head
}

// Ops returns the operators of the pipeline starting at s, in order.
func (s *Step) Ops() []Operator {
	var ops []Operator
	for cur := s; cur != nil; cur = cur.Next {
		ops = append(ops, cur.Op)
	}
	return ops
}

// Len returns the number of stages starting at s.
func (s *Step) Len() int {
	n := 0
	for cur := s; cur != nil; cur = cur.Next {
		n++
	}
	return n
}

// Operator is the payload of a Step.
//
// This is a sealed interface - only Follow, Filter, Skip, Limit and
// Fields implement it, so executors can switch exhaustively.
type Operator interface {
	operatorNode()
}

// Follow traverses edges from each node in the stream.
type Follow struct {
	Edge EdgeExpr
}

// Filter keeps nodes whose attributes satisfy Expr.
type Filter struct {
	Expr FilterExpr
}

// Skip drops the first N nodes of the stream.
type Skip struct {
	N uint64
}

// Limit keeps the first N nodes of the stream.
type Limit struct {
	N uint64
}

// Fields projects each node's attributes through a selector.
type Fields struct {
	Clude Clude
}

func (Follow) operatorNode() {}
func (Filter) operatorNode() {}
func (Skip) operatorNode()   {}
func (Limit) operatorNode()  {}
func (Fields) operatorNode() {}

// Range bounds traversal depth, inclusive on both ends.
type Range struct {
	From uint32
	To   uint32
}

// DefaultRange is the depth used when a follow stage gives none.
var DefaultRange = Range{From: 1, To: 1}

// BoolOp joins two sub-expressions.
type BoolOp string

const (
	And BoolOp = "and"
	Or  BoolOp = "or"
)

// MathOp compares an attribute value with a literal.
type MathOp string

const (
	Eq MathOp = "=="
	Ne MathOp = "!="
	Lt MathOp = "<"
	Le MathOp = "<="
	Gt MathOp = ">"
	Ge MathOp = ">="
)

// IsOrdered reports whether op needs an ordering rather than equality.
func (op MathOp) IsOrdered() bool {
	switch op {
	case Lt, Le, Gt, Ge:
		return true
	}
	return false
}

// EdgeExpr is the target of a follow stage (sealed).
type EdgeExpr interface {
	edgeNode()
}

// FollowAny follows every outgoing edge. A nil Range means DefaultRange.
type FollowAny struct {
	Range *Range
}

// EdgeRange follows edges whose key equals Edge.
type EdgeRange struct {
	Edge  ir.DataBlock
	Range Range
}

// EdgeCompare combines two edge expressions: And intersects the reached
// nodes, Or unites them.
type EdgeCompare struct {
	Left   EdgeExpr
	BoolOp BoolOp
	Right  EdgeExpr
}

func (FollowAny) edgeNode()   {}
func (EdgeRange) edgeNode()   {}
func (EdgeCompare) edgeNode() {}

// FilterExpr is the condition of a where stage (sealed).
type FilterExpr interface {
	filterNode()
}

// CompareKeyValue matches a node when an attribute keyed Property has a
// value v such that `v MathOp Value` holds.
type CompareKeyValue struct {
	Property ir.DataBlock
	MathOp   MathOp
	Value    ir.DataBlock
}

// CompareCompound combines two filters.
type CompareCompound struct {
	Left   FilterExpr
	BoolOp BoolOp
	Right  FilterExpr
}

func (CompareKeyValue) filterNode() {}
func (CompareCompound) filterNode() {}

// TypeKind selects attribute values by runtime type.
type TypeKind int

const (
	TypeInt TypeKind = iota + 1
	TypeFloat
	TypeString
)

func (k TypeKind) String() string {
	switch k {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	}
	return "unknown"
}

// Matches reports whether a value of kind falls under k.
func (k TypeKind) Matches(kind ir.Kind) bool {
	switch k {
	case TypeInt:
		return kind == ir.KindI32 || kind == ir.KindI64 || kind == ir.KindUI64
	case TypeFloat:
		return kind == ir.KindF32 || kind == ir.KindF64
	case TypeString:
		return kind == ir.KindStr
	}
	return false
}

// Clude is a field selector (sealed).
//
// Atoms (MatchPart, Wildcard, TypeMatch) and CludeOp select attributes
// directly. Include and Exclude restrict or remove a selection, TwoClude
// extends or trims a base selection, and CludeList unites independent
// selections.
type Clude interface {
	cludeNode()
}

// MatchPart matches attribute keys. A plain match tests whether the key
// contains Text; an exact (anchored) match tests equality.
type MatchPart struct {
	Exact bool
	Text  string
}

// Wildcard matches every attribute.
type Wildcard struct{}

// TypeMatch matches attributes by the runtime type of their value.
type TypeMatch struct {
	Kind TypeKind
}

// CludeOp matches the key against Left and the value against Right.
type CludeOp struct {
	Left  Clude
	Right Clude
}

// Include keeps only what Inner selects.
type Include struct {
	Inner Clude
}

// Exclude removes what Inner selects.
type Exclude struct {
	Inner Clude
}

// TwoClude applies Left as a base selection, then adds the attributes
// Include selects (base or include) or removes the ones Exclude selects
// (base and not exclude). Exactly one of the two is set.
type TwoClude struct {
	Left    Clude
	Include Clude
	Exclude Clude
}

// CludeList unites the selections of Items.
type CludeList struct {
	Items []Clude
}

func (MatchPart) cludeNode() {}
func (Wildcard) cludeNode()  {}
func (TypeMatch) cludeNode() {}
func (CludeOp) cludeNode()   {}
func (Include) cludeNode()   {}
func (Exclude) cludeNode()   {}
func (TwoClude) cludeNode()  {}
func (CludeList) cludeNode() {}
