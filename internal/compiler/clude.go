package compiler

import (
	"github.com/roach88/ahghee/internal/queryir"
	"github.com/roach88/ahghee/internal/syntax"
)

// Clude compiles a field selector.
//
//	"a"                 MatchPart{Text: "a"}
//	^"a"                MatchPart{Exact: true, Text: "a"}
//	^                   MatchPart{Exact: true}
//	"a":$int            CludeOp{Left, Right}
//	["a", "b"]          CludeList
//	c include(x)        TwoClude{Left: c, Include: x}
//	c exclude(x)        TwoClude{Left: c, Exclude: x}
//	include(x)          Include{x}
//	exclude(x)          Exclude{x}
//
// include/exclude with anything other than exactly one base selector
// compile to the standalone forms.
func Clude(c *syntax.Clude) (queryir.Clude, error) {
	if c == nil {
		return nil, errorf(MalformedLiteral, syntax.Pos{}, "missing field selector")
	}

	switch {
	case len(c.Parts) == 1:
		return cludePart(c.Parts[0])

	case len(c.Parts) == 2:
		left, err := cludePart(c.Parts[0])
		if err != nil {
			return nil, err
		}
		right, err := cludePart(c.Parts[1])
		if err != nil {
			return nil, err
		}
		return queryir.CludeOp{Left: left, Right: right}, nil

	case len(c.Parts) > 2:
		return nil, errorf(MalformedLiteral, c.Pos, "field comparison takes two parts, got %d", len(c.Parts))

	case c.Include != nil:
		inner, err := Clude(c.Include)
		if err != nil {
			return nil, err
		}
		if len(c.Cludes) != 1 {
			return queryir.Include{Inner: inner}, nil
		}
		left, err := Clude(c.Cludes[0])
		if err != nil {
			return nil, err
		}
		return queryir.TwoClude{Left: left, Include: inner}, nil

	case c.Exclude != nil:
		inner, err := Clude(c.Exclude)
		if err != nil {
			return nil, err
		}
		if len(c.Cludes) != 1 {
			return queryir.Exclude{Inner: inner}, nil
		}
		left, err := Clude(c.Cludes[0])
		if err != nil {
			return nil, err
		}
		return queryir.TwoClude{Left: left, Exclude: inner}, nil

	case len(c.Cludes) > 0:
		items := make([]queryir.Clude, 0, len(c.Cludes))
		for _, sub := range c.Cludes {
			item, err := Clude(sub)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return queryir.CludeList{Items: items}, nil
	}

	return nil, errorf(MalformedLiteral, c.Pos, "empty field selector")
}

func cludePart(p *syntax.CludePart) (queryir.Clude, error) {
	switch p.Kind {
	case syntax.PartMatch:
		return queryir.MatchPart{Text: p.Text}, nil
	case syntax.PartAnchored:
		return queryir.MatchPart{Exact: true, Text: p.Text}, nil
	case syntax.PartWildcard:
		return queryir.Wildcard{}, nil
	case syntax.PartTypeInt:
		return queryir.TypeMatch{Kind: queryir.TypeInt}, nil
	case syntax.PartTypeFloat:
		return queryir.TypeMatch{Kind: queryir.TypeFloat}, nil
	case syntax.PartTypeString:
		return queryir.TypeMatch{Kind: queryir.TypeString}, nil
	}
	return nil, errorf(MalformedLiteral, p.Pos, "unknown field selector kind %d", p.Kind)
}
