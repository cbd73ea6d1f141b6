package promql

import (
	"fmt"

	"github.com/go-faster/promqlcheck/internal/lexerql"
	"github.com/go-faster/promqlcheck/internal/promql/lexer"
)

func (p *parser) parseVectorSelector() (NodeID, error) {
	start := p.peek()
	end := start.End

	var children []NodeID
	if start.Type == lexer.Ident {
		children = append(children, p.add(MetricIdentifier, p.next()))
	}
	if p.peek().Type == lexer.OpenBrace {
		matchers, err := p.parseLabelMatchers()
		if err != nil {
			return NoNode, err
		}
		children = append(children, matchers)
		end = p.span(matchers).End
	}

	return p.b.Add(VectorSelector, Span{
		Start: start.Pos.Offset,
		End:   end,
	}, children...), nil
}

func (p *parser) parseLabelMatchers() (NodeID, error) {
	openTok, err := p.consume(lexer.OpenBrace)
	if err != nil {
		return NoNode, err
	}

	var matchers []NodeID
	for {
		if t := p.peek(); t.Type == lexer.CloseBrace {
			p.next()
			return p.b.Add(LabelMatchers, Span{
				Start: openTok.Pos.Offset,
				End:   t.End,
			}, matchers...), nil
		}

		m, err := p.parseLabelMatcher()
		if err != nil {
			return NoNode, err
		}
		matchers = append(matchers, m)

		switch t := p.peek(); t.Type {
		case lexer.Comma:
			p.next()
		case lexer.CloseBrace:
		default:
			return NoNode, p.unexpectedToken(t)
		}
	}
}

func (p *parser) parseLabelMatcher() (NodeID, error) {
	nameTok := p.next()
	switch {
	case nameTok.Type == lexer.String && !isMatchOp(p.peek().Type):
		// Quoted metric name, like {"foo.bar"}.
		lit := p.add(StringLiteral, nameTok)
		return p.b.Add(LabelMatcher, tokenSpan(nameTok), lit), nil
	case nameTok.Type == lexer.String:
	default:
		if err := p.checkLabelName(nameTok); err != nil {
			return NoNode, err
		}
	}
	name := p.add(LabelName, nameTok)

	opTok := p.next()
	if !isMatchOp(opTok.Type) {
		return NoNode, p.unexpectedToken(opTok)
	}
	op := p.add(MatchOp, opTok)

	valueTok, err := p.consume(lexer.String)
	if err != nil {
		return NoNode, err
	}
	value := p.add(StringLiteral, valueTok)

	return p.b.Add(LabelMatcher, Span{
		Start: nameTok.Pos.Offset,
		End:   valueTok.End,
	}, name, op, value), nil
}

func isMatchOp(tt lexer.TokenType) bool {
	switch tt {
	case lexer.Eq, lexer.NotEq, lexer.Re, lexer.NotRe:
		return true
	default:
		return false
	}
}

func isLabelToken(t lexer.Token) bool {
	switch {
	case t.Type == lexer.String:
		return true
	case t.Type == lexer.Ident, t.Type.IsKeyword():
		return lexerql.IsLabelName(t.Text)
	default:
		return false
	}
}

func (p *parser) checkLabelName(t lexer.Token) error {
	if !isLabelToken(t) {
		if t.Type == lexer.Ident {
			return &SyntaxError{
				Msg: fmt.Sprintf("invalid label name %q", t.Text),
				Pos: t.Pos,
			}
		}
		return p.unexpectedToken(t)
	}
	return nil
}

// parseGroupingLabels parses parenthesized label list.
//
// If tolerant is true, malformed content of the list is wrapped into
// an Error node instead of failing.
func (p *parser) parseGroupingLabels(tolerant bool) (NodeID, error) {
	openTok, err := p.consume(lexer.OpenParen)
	if err != nil {
		return NoNode, err
	}

	var (
		labels      []NodeID
		expectLabel = true
	)
	for {
		t := p.peek()
		switch {
		case t.Type == lexer.CloseParen:
			p.next()
			return p.b.Add(GroupingLabels, Span{
				Start: openTok.Pos.Offset,
				End:   t.End,
			}, labels...), nil
		case expectLabel && isLabelToken(t):
			labels = append(labels, p.add(LabelName, p.next()))
			expectLabel = false
		case !expectLabel && t.Type == lexer.Comma:
			p.next()
			expectLabel = true
		case tolerant && t.Type != lexer.EOF:
			errNode, err := p.skipToCloseParen()
			if err != nil {
				return NoNode, err
			}
			labels = append(labels, errNode)
		default:
			if expectLabel && t.Type == lexer.Ident {
				return NoNode, p.checkLabelName(t)
			}
			return NoNode, p.unexpectedToken(t)
		}
	}
}

// skipToCloseParen skips tokens until the closing parenthesis of the current list.
//
// Returns an Error node covering skipped tokens.
func (p *parser) skipToCloseParen() (NodeID, error) {
	var (
		first = p.peek()
		last  = first
		depth = 0
	)
	for {
		t := p.peek()
		switch t.Type {
		case lexer.EOF:
			return NoNode, p.unexpectedToken(t)
		case lexer.OpenParen:
			depth++
		case lexer.CloseParen:
			if depth == 0 {
				return p.b.Add(Error, Span{
					Start: first.Pos.Offset,
					End:   last.End,
				}), nil
			}
			depth--
		}
		last = p.next()
	}
}
