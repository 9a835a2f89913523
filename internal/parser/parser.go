// Package parser turns command text and N-Triples documents into the
// parse tree defined by package syntax.
package parser

import (
	"strings"

	"github.com/roach88/ahghee/internal/syntax"
)

// Parser is a recursive-descent parser over a pre-lexed token stream.
type Parser struct {
	src    string
	tokens []Token
	pos    int
}

// Parse parses src as a sequence of put/get commands separated by `;` or
// by the next command keyword.
func Parse(src string) ([]*syntax.Command, error) {
	tokens, err := NewLexer(src).Lex()
	if err != nil {
		return nil, err
	}
	p := &Parser{src: src, tokens: tokens}

	var cmds []*syntax.Command
	for {
		for p.peek().Type == TokenSemicolon {
			p.advance()
		}
		if p.peek().Type == TokenEOF {
			return cmds, nil
		}
		cmd, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
}

// ParseCommand parses src, which must contain exactly one command.
func ParseCommand(src string) (*syntax.Command, error) {
	cmds, err := Parse(src)
	if err != nil {
		return nil, err
	}
	switch len(cmds) {
	case 0:
		return nil, errorAt(1, 1, "empty input")
	case 1:
		return cmds[0], nil
	}
	return nil, errorAt(cmds[1].Pos.Line, cmds[1].Pos.Col, "expected a single command, found %d", len(cmds))
}

func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Type != TokenEOF {
		p.pos++
	}
	return tok
}

// prevEnd is the end offset of the last consumed token.
func (p *Parser) prevEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.tokens[p.pos-1].End
}

func (p *Parser) expect(t TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != t {
		return tok, p.unexpected(tok, t.String())
	}
	return p.advance(), nil
}

func (p *Parser) unexpected(tok Token, want string) error {
	if tok.Type == TokenEOF {
		return errorAt(tok.Line, tok.Col, "unexpected end of input, expected %s", want)
	}
	return errorAt(tok.Line, tok.Col, "unexpected %s %q, expected %s", tok.Type, tok.Value, want)
}

func posOf(tok Token) syntax.Pos {
	return syntax.Pos{Line: tok.Line, Col: tok.Col}
}

func isKeyword(tok Token, words ...string) bool {
	if tok.Type != TokenIdent {
		return false
	}
	for _, w := range words {
		if tok.Value == w {
			return true
		}
	}
	return false
}

func (p *Parser) atCommandEnd() bool {
	tok := p.peek()
	return tok.Type == TokenEOF || tok.Type == TokenSemicolon || isKeyword(tok, "put", "get")
}

func (p *Parser) parseCommand() (*syntax.Command, error) {
	start := p.peek()
	cmd := &syntax.Command{Pos: posOf(start)}

	switch {
	case isKeyword(start, "put"):
		cmd.Kind = syntax.CommandPut
	case isKeyword(start, "get"):
		cmd.Kind = syntax.CommandGet
	default:
		return nil, p.unexpected(start, "put or get")
	}
	p.advance()

	if tok := p.peek(); tok.Type == TokenFlags {
		if err := checkFlags(tok); err != nil {
			return nil, err
		}
		cmd.Flags = tok.Value
		p.advance()
	}

	var err error
	switch cmd.Kind {
	case syntax.CommandPut:
		err = p.parsePutBody(cmd)
	case syntax.CommandGet:
		err = p.parseGetBody(cmd)
	}
	if err != nil {
		return nil, err
	}

	if !p.atCommandEnd() {
		return nil, p.unexpected(p.peek(), "end of command")
	}
	cmd.Text = p.src[start.Start:p.prevEnd()]
	return cmd, nil
}

func checkFlags(tok Token) error {
	for _, r := range tok.Value {
		if !strings.ContainsRune("htv", r) {
			return errorAt(tok.Line, tok.Col, "unknown flag %q", r)
		}
	}
	return nil
}

func (p *Parser) parsePutBody(cmd *syntax.Command) error {
	for {
		node, err := p.parseNodeLiteral()
		if err != nil {
			return err
		}
		cmd.Nodes = append(cmd.Nodes, node)
		if p.peek().Type != TokenComma {
			return nil
		}
		p.advance()
	}
}

// parseNodeLiteral parses a node object. An object whose only keys are
// "id" and "kvps" is the pair form; anything else is kept as raw JSON.
func (p *Parser) parseNodeLiteral() (*syntax.NodeLiteral, error) {
	tok := p.peek()
	if tok.Type != TokenLeftBrace {
		return nil, p.unexpected(tok, "node object")
	}
	start := p.pos
	node, ok, err := p.parsePairForm()
	if err != nil {
		return nil, err
	}
	if ok {
		return node, nil
	}

	p.pos = start
	obj, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &syntax.NodeLiteral{JSON: obj.Raw, Pos: obj.Pos}, nil
}

// parsePairForm reads {"id": <node id>, "kvps": {...}} with the members in
// either order. The id takes every form get accepts, including
// "remote":"iri". ok is false when the object has some other shape, in
// which case the caller rewinds and reads it as raw JSON.
func (p *Parser) parsePairForm() (*syntax.NodeLiteral, bool, error) {
	open := p.advance()
	node := &syntax.NodeLiteral{Pos: posOf(open)}
	var kvps *syntax.Value

	for i := 0; i < 2; i++ {
		if i > 0 {
			if p.peek().Type != TokenComma {
				return nil, false, nil
			}
			p.advance()
		}
		key := p.peek()
		if key.Type != TokenString {
			return nil, false, nil
		}
		p.advance()
		if p.peek().Type != TokenColon {
			return nil, false, nil
		}
		p.advance()

		switch {
		case key.Value == "id" && node.ID == nil:
			id, err := p.parseNodeID()
			if err != nil {
				return nil, false, nil
			}
			node.ID = id
		case key.Value == "kvps" && kvps == nil:
			v, err := p.parseValue()
			if err != nil {
				return nil, false, nil
			}
			kvps = v
		default:
			return nil, false, nil
		}
	}
	if p.peek().Type != TokenRightBrace {
		return nil, false, nil
	}
	p.advance()

	if kvps.Kind != syntax.ValueObject {
		return nil, true, errorAt(kvps.Pos.Line, kvps.Pos.Col, "kvps must be an object")
	}
	for _, m := range kvps.Members {
		node.Pairs = append(node.Pairs, &syntax.Pair{
			Kind:  pairKind(m),
			Key:   m.Key,
			Value: m.Value,
			Pos:   m.Key.Pos,
		})
	}
	return node, true, nil
}

func pairKind(m *syntax.Member) syntax.PairKind {
	keyRef := m.Key.Kind == syntax.ValueIRI
	valRef := m.Value.Kind == syntax.ValueIRI
	switch {
	case keyRef && valRef:
		return syntax.PairBiEdge
	case keyRef:
		return syntax.PairBackEdge
	case valRef:
		return syntax.PairEdge
	}
	return syntax.PairProperty
}

func (p *Parser) parseGetBody(cmd *syntax.Command) error {
	for {
		id, err := p.parseNodeID()
		if err != nil {
			return err
		}
		cmd.IDs = append(cmd.IDs, id)
		if p.peek().Type != TokenComma {
			break
		}
		p.advance()
	}

	for p.peek().Type == TokenPipe {
		p.advance()
		stage, err := p.parseStage()
		if err != nil {
			return err
		}
		cmd.Pipes = append(cmd.Pipes, stage)
	}
	return nil
}

func (p *Parser) parseNodeID() (*syntax.NodeID, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenLeftBrace:
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return &syntax.NodeID{JSON: v.Raw, Pos: v.Pos}, nil
	case TokenIRI:
		p.advance()
		return &syntax.NodeID{IRI: tok.Value, Pos: posOf(tok)}, nil
	case TokenString:
		p.advance()
		id := &syntax.NodeID{IRI: tok.Value, Pos: posOf(tok)}
		if p.peek().Type == TokenColon {
			p.advance()
			iri, err := p.expect(TokenString)
			if err != nil {
				return nil, err
			}
			id.Remote, id.IRI = tok.Value, iri.Value
		}
		return id, nil
	}
	return nil, p.unexpected(tok, "node id")
}

func (p *Parser) parseStage() (*syntax.PipeCmd, error) {
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	stage := &syntax.PipeCmd{Name: name.Value, Pos: posOf(name)}

	switch name.Value {
	case "follow":
		stage.Kind = syntax.PipeFollow
		stage.Follow, err = p.parseEdge()
	case "where":
		stage.Kind = syntax.PipeWhere
		stage.Where, err = p.parseCompare()
	case "skip":
		stage.Kind = syntax.PipeSkip
		stage.Count, err = p.parseValue()
	case "limit":
		stage.Kind = syntax.PipeLimit
		stage.Count, err = p.parseValue()
	case "fields":
		stage.Kind = syntax.PipeFields
		stage.Fields, err = p.parseClude()
	default:
		stage.Kind = syntax.PipeUnknown
		p.skipStage()
	}
	if err != nil {
		return nil, err
	}
	stage.Raw = p.src[name.Start:p.prevEnd()]
	return stage, nil
}

// skipStage consumes the operands of an unrecognized stage so the
// compiler can report it by name.
func (p *Parser) skipStage() {
	depth := 0
	for {
		tok := p.peek()
		switch tok.Type {
		case TokenEOF:
			return
		case TokenLeftBrace, TokenLeftBracket, TokenLeftParen:
			depth++
		case TokenRightBrace, TokenRightBracket, TokenRightParen:
			if depth > 0 {
				depth--
			}
		case TokenPipe, TokenSemicolon:
			if depth == 0 {
				return
			}
		case TokenIdent:
			if depth == 0 && isKeyword(tok, "put", "get") {
				return
			}
		}
		p.advance()
	}
}

func (p *Parser) parseBoolOp() (string, error) {
	tok := p.peek()
	if tok.Type == TokenBoolOp || isKeyword(tok, "and", "or") {
		p.advance()
		return tok.Value, nil
	}
	return "", p.unexpected(tok, "boolean operator")
}

func (p *Parser) parseEdge() (*syntax.EdgeExpr, error) {
	tok := p.peek()
	edge := &syntax.EdgeExpr{Pos: posOf(tok)}

	switch {
	case isKeyword(tok, "any"):
		p.advance()
		edge.Any = true
	case tok.Type == TokenLeftParen:
		p.advance()
		left, err := p.parseEdge()
		if err != nil {
			return nil, err
		}
		op, err := p.parseBoolOp()
		if err != nil {
			return nil, err
		}
		right, err := p.parseEdge()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		edge.Left, edge.BoolOp, edge.Right = left, op, right
		return edge, nil
	default:
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		edge.Value = v
	}

	if p.peek().Type == TokenLeftBracket {
		r, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		edge.Range = r
	}
	return edge, nil
}

func (p *Parser) parseRange() (*syntax.Range, error) {
	open, err := p.expect(TokenLeftBracket)
	if err != nil {
		return nil, err
	}
	r := &syntax.Range{Pos: posOf(open)}
	if tok := p.peek(); tok.Type == TokenNumber {
		p.advance()
		r.From = tok.Value
	}
	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	to, err := p.expect(TokenNumber)
	if err != nil {
		return nil, err
	}
	r.To = to.Value
	if _, err := p.expect(TokenRightBracket); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *Parser) parseCompare() (*syntax.CompareExpr, error) {
	open, err := p.expect(TokenLeftParen)
	if err != nil {
		return nil, err
	}
	cmp := &syntax.CompareExpr{Pos: posOf(open)}

	if p.peek().Type == TokenLeftParen {
		left, err := p.parseCompare()
		if err != nil {
			return nil, err
		}
		op, err := p.parseBoolOp()
		if err != nil {
			return nil, err
		}
		right, err := p.parseCompare()
		if err != nil {
			return nil, err
		}
		cmp.Left, cmp.BoolOp, cmp.Right = left, op, right
	} else {
		prop, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		op, err := p.expect(TokenMathOp)
		if err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		cmp.Property, cmp.MathOp, cmp.Value = prop, op.Value, val
	}

	if _, err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	return cmp, nil
}

func (p *Parser) parseClude() (*syntax.Clude, error) {
	tok := p.peek()
	if isKeyword(tok, "include", "exclude") {
		return p.parseCludeKeyword(&syntax.Clude{Pos: posOf(tok)})
	}

	base, err := p.parseCludeBase()
	if err != nil {
		return nil, err
	}
	if isKeyword(p.peek(), "include", "exclude") {
		return p.parseCludeKeyword(&syntax.Clude{Cludes: []*syntax.Clude{base}, Pos: base.Pos})
	}
	return base, nil
}

func (p *Parser) parseCludeKeyword(c *syntax.Clude) (*syntax.Clude, error) {
	kw := p.advance()
	if _, err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}
	inner, err := p.parseClude()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	if kw.Value == "include" {
		c.Include = inner
	} else {
		c.Exclude = inner
	}
	return c, nil
}

func (p *Parser) parseCludeBase() (*syntax.Clude, error) {
	tok := p.peek()
	c := &syntax.Clude{Pos: posOf(tok)}

	if tok.Type == TokenLeftBracket {
		p.advance()
		for p.peek().Type != TokenRightBracket {
			item, err := p.parseClude()
			if err != nil {
				return nil, err
			}
			c.Cludes = append(c.Cludes, item)
			if p.peek().Type != TokenComma {
				break
			}
			p.advance()
		}
		if _, err := p.expect(TokenRightBracket); err != nil {
			return nil, err
		}
		return c, nil
	}

	part, err := p.parsePart()
	if err != nil {
		return nil, err
	}
	c.Parts = append(c.Parts, part)
	if p.peek().Type == TokenColon {
		p.advance()
		right, err := p.parsePart()
		if err != nil {
			return nil, err
		}
		c.Parts = append(c.Parts, right)
	}
	return c, nil
}

var typeParts = map[string]syntax.PartKind{
	"$int":    syntax.PartTypeInt,
	"$float":  syntax.PartTypeFloat,
	"$string": syntax.PartTypeString,
}

func (p *Parser) parsePart() (*syntax.CludePart, error) {
	tok := p.peek()
	part := &syntax.CludePart{Pos: posOf(tok)}

	switch tok.Type {
	case TokenString:
		p.advance()
		part.Kind, part.Text = syntax.PartMatch, tok.Value
		return part, nil
	case TokenCaret:
		// A lone ^ anchors an empty match.
		p.advance()
		part.Kind = syntax.PartAnchored
		if p.peek().Type == TokenString {
			part.Text = p.advance().Value
		}
		return part, nil
	case TokenStar:
		p.advance()
		part.Kind = syntax.PartWildcard
		return part, nil
	case TokenIdent:
		if kind, ok := typeParts[tok.Value]; ok {
			p.advance()
			part.Kind, part.Text = kind, tok.Value
			return part, nil
		}
	}
	return nil, p.unexpected(tok, "field selector")
}

// parseValue parses a literal. Objects and arrays record their exact
// source span in Raw so they can be decoded as JSON later.
func (p *Parser) parseValue() (*syntax.Value, error) {
	tok := p.peek()
	v := &syntax.Value{Pos: posOf(tok)}

	switch tok.Type {
	case TokenString:
		v.Kind = syntax.ValueString
	case TokenNumber:
		v.Kind = syntax.ValueNumber
	case TokenIRI:
		v.Kind = syntax.ValueIRI
	case TokenIdent:
		switch tok.Value {
		case "true":
			v.Kind = syntax.ValueTrue
		case "false":
			v.Kind = syntax.ValueFalse
		case "null":
			v.Kind = syntax.ValueNull
		default:
			v.Kind = syntax.ValueRaw
		}
	case TokenLeftBrace:
		return p.parseObject(v)
	case TokenLeftBracket:
		return p.parseArray(v)
	default:
		return nil, p.unexpected(tok, "value")
	}

	p.advance()
	v.Text = tok.Value
	v.Raw = p.src[tok.Start:tok.End]
	return v, nil
}

func (p *Parser) parseObject(v *syntax.Value) (*syntax.Value, error) {
	open := p.advance()
	v.Kind = syntax.ValueObject

	for p.peek().Type != TokenRightBrace {
		keyTok := p.peek()
		if keyTok.Type != TokenString && keyTok.Type != TokenIRI {
			return nil, p.unexpected(keyTok, "object key")
		}
		key, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		v.Members = append(v.Members, &syntax.Member{Key: key, Value: val})
		if p.peek().Type != TokenComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(TokenRightBrace); err != nil {
		return nil, err
	}
	v.Raw = p.src[open.Start:p.prevEnd()]
	return v, nil
}

func (p *Parser) parseArray(v *syntax.Value) (*syntax.Value, error) {
	open := p.advance()
	v.Kind = syntax.ValueArray

	for p.peek().Type != TokenRightBracket {
		item, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		v.Items = append(v.Items, item)
		if p.peek().Type != TokenComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(TokenRightBracket); err != nil {
		return nil, err
	}
	v.Raw = p.src[open.Start:p.prevEnd()]
	return v, nil
}
