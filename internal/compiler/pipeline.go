package compiler

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/ahghee/internal/queryir"
	"github.com/roach88/ahghee/internal/syntax"
)

// Pipeline compiles pipe stages into a Step chain in source order. It
// returns nil for no stages. Any failing stage fails the whole pipeline.
func Pipeline(stages []*syntax.PipeCmd) (*queryir.Step, error) {
	ops := make([]queryir.Operator, 0, len(stages))
	for _, stage := range stages {
		op, err := compileStage(stage)
		if err != nil {
			var ce *Error
			if errors.As(err, &ce) && ce.Stage == "" {
				ce.Stage = stage.Name
			}
			return nil, err
		}
		ops = append(ops, op)
	}
	return queryir.Chain(ops...), nil
}

func compileStage(stage *syntax.PipeCmd) (queryir.Operator, error) {
	switch stage.Kind {
	case syntax.PipeFollow:
		edge, err := compileEdge(stage.Follow, stage.Pos)
		if err != nil {
			return nil, err
		}
		return queryir.Follow{Edge: edge}, nil
	case syntax.PipeWhere:
		expr, err := compileFilter(stage.Where, stage.Pos)
		if err != nil {
			return nil, err
		}
		return queryir.Filter{Expr: expr}, nil
	case syntax.PipeSkip:
		n, err := count(stage.Count, stage.Pos)
		if err != nil {
			return nil, err
		}
		return queryir.Skip{N: n}, nil
	case syntax.PipeLimit:
		n, err := count(stage.Count, stage.Pos)
		if err != nil {
			return nil, err
		}
		return queryir.Limit{N: n}, nil
	case syntax.PipeFields:
		c, err := Clude(stage.Fields)
		if err != nil {
			return nil, err
		}
		return queryir.Fields{Clude: c}, nil
	}
	return nil, errorf(UnsupportedOperator, stage.Pos, "unsupported pipe stage %q", stage.Name)
}

func compileEdge(e *syntax.EdgeExpr, pos syntax.Pos) (queryir.EdgeExpr, error) {
	if e == nil {
		return nil, errorf(MalformedLiteral, pos, "missing follow target")
	}

	switch {
	case e.Any:
		if e.Range == nil {
			return queryir.FollowAny{}, nil
		}
		r, err := compileRange(e.Range)
		if err != nil {
			return nil, err
		}
		return queryir.FollowAny{Range: &r}, nil

	case e.IsCompound():
		left, err := compileEdge(e.Left, e.Pos)
		if err != nil {
			return nil, err
		}
		op, err := boolOp(e.BoolOp, e.Pos)
		if err != nil {
			return nil, err
		}
		right, err := compileEdge(e.Right, e.Pos)
		if err != nil {
			return nil, err
		}
		return queryir.EdgeCompare{Left: left, BoolOp: op, Right: right}, nil
	}

	r := queryir.DefaultRange
	if e.Range != nil {
		var err error
		if r, err = compileRange(e.Range); err != nil {
			return nil, err
		}
	}
	return queryir.EdgeRange{Edge: Value(e.Value), Range: r}, nil
}

func compileRange(r *syntax.Range) (queryir.Range, error) {
	from := uint32(0)
	if r.From != "" {
		n, err := bound(r.From, r.Pos, "range start")
		if err != nil {
			return queryir.Range{}, err
		}
		from = n
	}
	to, err := bound(r.To, r.Pos, "range end")
	if err != nil {
		return queryir.Range{}, err
	}
	if from > to {
		return queryir.Range{}, errorf(InvalidRange, r.Pos, "range start %d is after end %d", from, to)
	}
	return queryir.Range{From: from, To: to}, nil
}

func bound(text string, pos syntax.Pos, what string) (uint32, error) {
	n, err := nonNegative(text, pos, what)
	if err != nil {
		return 0, err
	}
	if n > math.MaxUint32 {
		return 0, errorf(InvalidRange, pos, "%s %s is too large", what, text)
	}
	return uint32(n), nil
}

func nonNegative(text string, pos syntax.Pos, what string) (uint64, error) {
	if strings.HasPrefix(text, "-") {
		return 0, errorf(InvalidRange, pos, "%s %s is negative", what, text)
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(text, "+"), 10, 64)
	if err != nil {
		return 0, errorf(InvalidRange, pos, "%s %q is not an integer", what, text)
	}
	return n, nil
}

func count(v *syntax.Value, pos syntax.Pos) (uint64, error) {
	if v == nil {
		return 0, errorf(InvalidRange, pos, "missing count")
	}
	if v.Kind != syntax.ValueNumber {
		return 0, errorf(InvalidRange, v.Pos, "count %s is not an integer", v.Raw)
	}
	return nonNegative(v.Text, v.Pos, "count")
}

func boolOp(text string, pos syntax.Pos) (queryir.BoolOp, error) {
	switch text {
	case "&&", "and":
		return queryir.And, nil
	case "||", "or":
		return queryir.Or, nil
	}
	return "", errorf(MalformedLiteral, pos, "unknown boolean operator %q", text)
}

func mathOp(text string, pos syntax.Pos) (queryir.MathOp, error) {
	switch op := queryir.MathOp(text); op {
	case queryir.Eq, queryir.Ne, queryir.Lt, queryir.Le, queryir.Gt, queryir.Ge:
		return op, nil
	}
	return "", errorf(MalformedLiteral, pos, "unknown comparison operator %q", text)
}

func compileFilter(c *syntax.CompareExpr, pos syntax.Pos) (queryir.FilterExpr, error) {
	if c == nil {
		return nil, errorf(MalformedLiteral, pos, "missing where condition")
	}

	if c.IsCompound() {
		left, err := compileFilter(c.Left, c.Pos)
		if err != nil {
			return nil, err
		}
		op, err := boolOp(c.BoolOp, c.Pos)
		if err != nil {
			return nil, err
		}
		right, err := compileFilter(c.Right, c.Pos)
		if err != nil {
			return nil, err
		}
		return queryir.CompareCompound{Left: left, BoolOp: op, Right: right}, nil
	}

	op, err := mathOp(c.MathOp, c.Pos)
	if err != nil {
		return nil, err
	}
	return queryir.CompareKeyValue{
		Property: Value(c.Property),
		MathOp:   op,
		Value:    Value(c.Value),
	}, nil
}
