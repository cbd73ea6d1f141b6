package promql

import (
	"github.com/go-faster/promqlcheck/internal/promql/lexer"
)

func (p *parser) parseFunctionCall() (NodeID, error) {
	nameTok, err := p.consume(lexer.Ident)
	if err != nil {
		return NoNode, err
	}
	name := p.add(FunctionIdentifier, nameTok)

	args, err := p.parseFunctionArgs()
	if err != nil {
		return NoNode, err
	}

	return p.b.Add(FunctionCall, Span{
		Start: nameTok.Pos.Offset,
		End:   p.span(args).End,
	}, name, args), nil
}

func (p *parser) parseFunctionArgs() (NodeID, error) {
	openTok, err := p.consume(lexer.OpenParen)
	if err != nil {
		return NoNode, err
	}

	var args []NodeID
	if t := p.peek(); t.Type == lexer.CloseParen {
		p.next()
		return p.b.Add(FunctionArgs, Span{
			Start: openTok.Pos.Offset,
			End:   t.End,
		}), nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return NoNode, err
		}
		args = append(args, arg)

		switch t := p.next(); t.Type {
		case lexer.Comma:
		case lexer.CloseParen:
			return p.b.Add(FunctionArgs, Span{
				Start: openTok.Pos.Offset,
				End:   t.End,
			}, args...), nil
		default:
			return NoNode, p.unexpectedToken(t)
		}
	}
}

func (p *parser) parseAggregateExpr() (NodeID, error) {
	opTok := p.next()
	if !opTok.Type.IsAggregation() {
		return NoNode, p.unexpectedToken(opTok)
	}
	children := []NodeID{p.add(AggregateOp, opTok)}

	// Grouping could be set before or after arguments.
	var hasModifier bool
	if isGroupingKeyword(p.peek().Type) {
		modifier, err := p.parseAggregateModifier()
		if err != nil {
			return NoNode, err
		}
		children = append(children, modifier)
		hasModifier = true
	}

	args, err := p.parseFunctionArgs()
	if err != nil {
		return NoNode, err
	}
	children = append(children, args)
	end := p.span(args).End

	if !hasModifier && isGroupingKeyword(p.peek().Type) {
		modifier, err := p.parseAggregateModifier()
		if err != nil {
			return NoNode, err
		}
		children = append(children, modifier)
		end = p.span(modifier).End
	}

	return p.b.Add(AggregateExpr, Span{
		Start: opTok.Pos.Offset,
		End:   end,
	}, children...), nil
}

func isGroupingKeyword(tt lexer.TokenType) bool {
	return tt == lexer.By || tt == lexer.Without
}

func (p *parser) parseAggregateModifier() (NodeID, error) {
	kwTok := p.next()

	var kw Category
	switch kwTok.Type {
	case lexer.By:
		kw = By
	case lexer.Without:
		kw = Without
	default:
		return NoNode, p.unexpectedToken(kwTok)
	}

	kwNode := p.add(kw, kwTok)

	labels, err := p.parseGroupingLabels(false)
	if err != nil {
		return NoNode, err
	}

	return p.b.Add(AggregateModifier, Span{
		Start: kwTok.Pos.Offset,
		End:   p.span(labels).End,
	}, kwNode, labels), nil
}
