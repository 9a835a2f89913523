package queryir

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/ahghee/internal/ir"
)

// MarshalJSON encodes a step as an object with one member named after the
// operator and an optional "next" member:
//
//	{"skip":2,"next":{"limit":5}}
func (s Step) MarshalJSON() ([]byte, error) {
	name, body, err := operatorJSON(s.Op)
	if err != nil {
		return nil, err
	}
	out := map[string]any{name: body}
	if s.Next != nil {
		out["next"] = s.Next
	}
	return json.Marshal(out)
}

// Hash returns the content hash of the pipeline starting at s. An empty
// pipeline hashes as JSON null.
func Hash(s *Step) (string, error) {
	if s == nil {
		return ir.ContentHash(ir.DomainPipeline, nil)
	}
	return ir.ContentHash(ir.DomainPipeline, s)
}

func operatorJSON(op Operator) (string, any, error) {
	switch o := op.(type) {
	case Follow:
		body, err := edgeJSON(o.Edge)
		return "follow", body, err
	case Filter:
		body, err := filterJSON(o.Expr)
		return "where", body, err
	case Skip:
		return "skip", o.N, nil
	case Limit:
		return "limit", o.N, nil
	case Fields:
		body, err := cludeJSON(o.Clude)
		return "fields", body, err
	}
	return "", nil, fmt.Errorf("unknown operator type: %T", op)
}

func dataJSON(d ir.DataBlock) (json.RawMessage, error) {
	b, err := ir.MarshalDataBlock(d)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

type rangeJSON struct {
	From uint32 `json:"from"`
	To   uint32 `json:"to"`
}

func edgeJSON(e EdgeExpr) (any, error) {
	switch v := e.(type) {
	case FollowAny:
		body := map[string]any{}
		if v.Range != nil {
			body["range"] = rangeJSON(*v.Range)
		}
		return map[string]any{"any": body}, nil
	case EdgeRange:
		data, err := dataJSON(v.Edge)
		if err != nil {
			return nil, fmt.Errorf("edge: %w", err)
		}
		return map[string]any{"edge": map[string]any{
			"data":  data,
			"range": rangeJSON(v.Range),
		}}, nil
	case EdgeCompare:
		left, err := edgeJSON(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := edgeJSON(v.Right)
		if err != nil {
			return nil, err
		}
		return map[string]any{"compare": map[string]any{
			"left":   left,
			"boolOp": v.BoolOp,
			"right":  right,
		}}, nil
	}
	return nil, fmt.Errorf("unknown edge expression type: %T", e)
}

func filterJSON(f FilterExpr) (any, error) {
	switch v := f.(type) {
	case CompareKeyValue:
		prop, err := dataJSON(v.Property)
		if err != nil {
			return nil, fmt.Errorf("property: %w", err)
		}
		val, err := dataJSON(v.Value)
		if err != nil {
			return nil, fmt.Errorf("value: %w", err)
		}
		return map[string]any{"compare": map[string]any{
			"property": prop,
			"mathOp":   v.MathOp,
			"value":    val,
		}}, nil
	case CompareCompound:
		left, err := filterJSON(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := filterJSON(v.Right)
		if err != nil {
			return nil, err
		}
		return map[string]any{"compound": map[string]any{
			"left":   left,
			"boolOp": v.BoolOp,
			"right":  right,
		}}, nil
	}
	return nil, fmt.Errorf("unknown filter expression type: %T", f)
}

func cludeJSON(c Clude) (any, error) {
	switch v := c.(type) {
	case MatchPart:
		return map[string]any{"match": map[string]any{"exact": v.Exact, "text": v.Text}}, nil
	case Wildcard:
		return map[string]any{"wildcard": map[string]any{}}, nil
	case TypeMatch:
		return map[string]any{"type": v.Kind.String()}, nil
	case CludeOp:
		left, err := cludeJSON(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := cludeJSON(v.Right)
		if err != nil {
			return nil, err
		}
		return map[string]any{"op": map[string]any{"left": left, "right": right}}, nil
	case Include:
		inner, err := cludeJSON(v.Inner)
		if err != nil {
			return nil, err
		}
		return map[string]any{"include": inner}, nil
	case Exclude:
		inner, err := cludeJSON(v.Inner)
		if err != nil {
			return nil, err
		}
		return map[string]any{"exclude": inner}, nil
	case TwoClude:
		left, err := cludeJSON(v.Left)
		if err != nil {
			return nil, err
		}
		body := map[string]any{"left": left}
		if v.Include != nil {
			if body["include"], err = cludeJSON(v.Include); err != nil {
				return nil, err
			}
		}
		if v.Exclude != nil {
			if body["exclude"], err = cludeJSON(v.Exclude); err != nil {
				return nil, err
			}
		}
		return map[string]any{"twoClude": body}, nil
	case CludeList:
		items := make([]any, 0, len(v.Items))
		for _, item := range v.Items {
			body, err := cludeJSON(item)
			if err != nil {
				return nil, err
			}
			items = append(items, body)
		}
		return map[string]any{"list": items}, nil
	}
	return nil, fmt.Errorf("unknown clude type: %T", c)
}
