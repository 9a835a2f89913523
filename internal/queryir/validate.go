package queryir

import (
	"fmt"

	"github.com/roach88/ahghee/internal/ir"
)

// MaxFollowDepth is the deepest traversal Validate accepts without a
// warning. Executors enforce their own limit.
const MaxFollowDepth = 16

// ValidationResult contains the pushdown analysis of a pipeline.
type ValidationResult struct {
	// IsPortable indicates every filter can be evaluated by a storage
	// backend and no stage is degenerate.
	IsPortable bool

	// Warnings lists the stages that prevent portability, in pipeline order.
	Warnings []string
}

// Validate checks a pipeline for stages that cannot be pushed down to a
// backend or that can never produce results.
//
// Non-portable pipelines still execute correctly with the in-memory
// evaluator. Validate is a pure function with no side effects.
func Validate(s *Step) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	for i, cur := 0, s; cur != nil; i, cur = i+1, cur.Next {
		v.stage = i + 1
		v.validateOperator(cur.Op)
	}

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	stage    int
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	v.warnings = append(v.warnings, fmt.Sprintf("stage %d: %s", v.stage, msg))
}

func (v *validator) validateOperator(op Operator) {
	switch o := op.(type) {
	case Follow:
		v.validateEdge(o.Edge)
	case Filter:
		v.validateFilter(o.Expr)
	case Skip:
		// always portable
	case Limit:
		if o.N == 0 {
			v.addWarning("limit 0 yields no results")
		}
	case Fields:
		v.validateClude(o.Clude)
	case nil:
		v.addWarning("nil operator")
	default:
		v.addWarning("Unknown operator type: %T - portability cannot be verified", op)
	}
}

func (v *validator) validateEdge(e EdgeExpr) {
	switch edge := e.(type) {
	case FollowAny:
		if edge.Range != nil {
			v.validateRange(*edge.Range)
		}
	case EdgeRange:
		v.validateRange(edge.Range)
		switch ir.KindOf(edge.Edge) {
		case ir.KindStr, ir.KindNodeRef:
		default:
			v.addWarning("edge key of kind %s never matches an attribute key", ir.KindOf(edge.Edge))
		}
	case EdgeCompare:
		v.validateBoolOp(edge.BoolOp)
		v.validateEdge(edge.Left)
		v.validateEdge(edge.Right)
	default:
		v.addWarning("Unknown edge expression type: %T", e)
	}
}

func (v *validator) validateRange(r Range) {
	if r.To > MaxFollowDepth {
		v.addWarning("follow depth %d exceeds %d", r.To, MaxFollowDepth)
	}
	if r.From > r.To {
		v.addWarning("range [%d:%d] is empty", r.From, r.To)
	}
}

func (v *validator) validateBoolOp(op BoolOp) {
	if op != And && op != Or {
		v.addWarning("unknown boolean operator %q", op)
	}
}

func (v *validator) validateFilter(f FilterExpr) {
	switch expr := f.(type) {
	case CompareKeyValue:
		v.validateCompare(expr)
	case CompareCompound:
		v.validateBoolOp(expr.BoolOp)
		v.validateFilter(expr.Left)
		v.validateFilter(expr.Right)
	default:
		v.addWarning("Unknown filter expression type: %T", f)
	}
}

func (v *validator) validateCompare(c CompareKeyValue) {
	switch c.MathOp {
	case Eq, Ne, Lt, Le, Gt, Ge:
	default:
		v.addWarning("unknown comparison operator %q", c.MathOp)
		return
	}

	kind := ir.KindOf(c.Value)
	switch {
	case kind == ir.KindNone:
		v.addWarning("property %s compared to null - evaluated in memory", describe(c.Property))
	case kind == ir.KindMap || kind == ir.KindArray || kind == ir.KindRawTyped:
		v.addWarning("property %s compared to a %s value - evaluated in memory", describe(c.Property), kind)
	case c.MathOp.IsOrdered() && (kind == ir.KindBool || kind == ir.KindNodeRef):
		v.addWarning("operator %s on a %s value never matches", c.MathOp, kind)
	}

	if k := ir.KindOf(c.Property); k != ir.KindStr && k != ir.KindNodeRef {
		v.addWarning("property of kind %s - evaluated in memory", k)
	}
}

func (v *validator) validateClude(c Clude) {
	switch cl := c.(type) {
	case MatchPart, Wildcard, TypeMatch:
	case CludeOp:
		v.validateClude(cl.Left)
		v.validateClude(cl.Right)
	case Include:
		v.validateClude(cl.Inner)
	case Exclude:
		if _, ok := cl.Inner.(Wildcard); ok {
			v.addWarning("exclude(*) removes every field")
		}
		v.validateClude(cl.Inner)
	case TwoClude:
		if (cl.Include == nil) == (cl.Exclude == nil) {
			v.addWarning("two-clude needs exactly one of include or exclude")
		}
		v.validateClude(cl.Left)
		if cl.Include != nil {
			v.validateClude(cl.Include)
		}
		if cl.Exclude != nil {
			v.validateClude(cl.Exclude)
		}
	case CludeList:
		if len(cl.Items) == 0 {
			v.addWarning("empty field list selects nothing")
		}
		for _, item := range cl.Items {
			v.validateClude(item)
		}
	default:
		v.addWarning("Unknown clude type: %T", c)
	}
}

func describe(d ir.DataBlock) string {
	if s, ok := d.(ir.Str); ok {
		return fmt.Sprintf("%q", string(s))
	}
	return ir.KindOf(d).String()
}
