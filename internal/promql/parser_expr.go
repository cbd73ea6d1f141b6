package promql

import (
	"fmt"
	"strings"

	"github.com/go-faster/promqlcheck/internal/promql/lexer"
)

func (p *parser) parseExpr() (NodeID, error) {
	expr, err := p.parseUnaryExpr()
	if err != nil {
		return NoNode, err
	}
	return p.parseBinaryExpr(expr, 0)
}

func (p *parser) parseBinaryExpr(left NodeID, minPrecedence int) (NodeID, error) {
	for {
		op, ok := p.peekBinaryOp()
		if !ok || op.Precedence() < minPrecedence {
			return left, nil
		}
		children := []NodeID{left, p.add(op, p.next())}

		modifiers, err := p.parseBinaryModifiers()
		if err != nil {
			return NoNode, err
		}
		children = append(children, modifiers...)

		right, err := p.parseUnaryExpr()
		if err != nil {
			return NoNode, err
		}

	climb:
		for {
			rightOp, ok := p.peekBinaryOp()
			if !ok {
				break
			}

			var nextPrecedence int
			switch {
			case rightOp.Precedence() > op.Precedence():
				nextPrecedence = op.Precedence() + 1
			case rightOp.Precedence() == op.Precedence() && rightOp.IsRightAssociative():
				nextPrecedence = op.Precedence()
			default:
				break climb
			}

			right, err = p.parseBinaryExpr(right, nextPrecedence)
			if err != nil {
				return NoNode, err
			}
		}

		children = append(children, right)
		left = p.b.Add(BinaryExpr, Span{
			Start: p.span(left).Start,
			End:   p.span(right).End,
		}, children...)
	}
}

func (p *parser) peekBinaryOp() (Category, bool) {
	switch t := p.peek(); t.Type {
	case lexer.Add:
		return Add, true
	case lexer.Sub:
		return Sub, true
	case lexer.Mul:
		return Mul, true
	case lexer.Div:
		return Div, true
	case lexer.Mod:
		return Mod, true
	case lexer.Pow:
		return Pow, true
	case lexer.Atan2:
		return Atan2, true
	case lexer.CmpEq:
		return Eql, true
	case lexer.NotEq:
		return Neq, true
	case lexer.Gt:
		return Gtr, true
	case lexer.Gte:
		return Gte, true
	case lexer.Lt:
		return Lss, true
	case lexer.Lte:
		return Lte, true
	case lexer.And:
		return And, true
	case lexer.Or:
		return Or, true
	case lexer.Unless:
		return Unless, true
	default:
		return Error, false
	}
}

// parseBinaryModifiers parses optional bool modifier and vector matching clause.
//
// Label lists of the clause are parsed tolerantly: malformed list becomes an Error node.
func (p *parser) parseBinaryModifiers() (modifiers []NodeID, _ error) {
	if t := p.peek(); t.Type == lexer.Bool {
		modifiers = append(modifiers, p.add(BoolModifier, p.next()))
	}

	var kw Category
	switch t := p.peek(); t.Type {
	case lexer.On:
		kw = On
	case lexer.Ignoring:
		kw = Ignoring
	case lexer.GroupLeft, lexer.GroupRight:
		return nil, &SyntaxError{
			Msg: fmt.Sprintf("unexpected %q without on or ignoring", t.Text),
			Pos: t.Pos,
		}
	default:
		return modifiers, nil
	}
	kwTok := p.next()
	clause := []NodeID{p.add(kw, kwTok)}
	end := kwTok.End

	if p.peek().Type == lexer.OpenParen {
		labels, err := p.parseGroupingLabels(true)
		if err != nil {
			return nil, err
		}
		clause = append(clause, labels)
		end = p.span(labels).End
	}

	var group Category
	switch t := p.peek(); t.Type {
	case lexer.GroupLeft:
		group = GroupLeft
	case lexer.GroupRight:
		group = GroupRight
	}
	if group != Error {
		groupTok := p.next()
		modifier := []NodeID{p.add(group, groupTok)}
		end = groupTok.End

		if p.peek().Type == lexer.OpenParen {
			labels, err := p.parseGroupingLabels(true)
			if err != nil {
				return nil, err
			}
			modifier = append(modifier, labels)
			end = p.span(labels).End
		}
		clause = append(clause, p.b.Add(GroupModifier, Span{
			Start: groupTok.Pos.Offset,
			End:   end,
		}, modifier...))
	}

	modifiers = append(modifiers, p.b.Add(MatchingModifierClause, Span{
		Start: kwTok.Pos.Offset,
		End:   end,
	}, clause...))
	return modifiers, nil
}

func (p *parser) parseUnaryExpr() (NodeID, error) {
	var op Category
	switch t := p.peek(); t.Type {
	case lexer.Add:
		op = Add
	case lexer.Sub:
		op = Sub
	default:
		return p.parsePostfixExpr()
	}
	opTok := p.next()
	opNode := p.add(op, opTok)

	expr, err := p.parseUnaryExpr()
	if err != nil {
		return NoNode, err
	}
	// Power binds tighter than unary operators: -2^2 is -(2^2).
	expr, err = p.parseBinaryExpr(expr, Pow.Precedence())
	if err != nil {
		return NoNode, err
	}

	return p.b.Add(UnaryExpr, Span{
		Start: opTok.Pos.Offset,
		End:   p.span(expr).End,
	}, opNode, expr), nil
}

func (p *parser) parsePostfixExpr() (NodeID, error) {
	expr, err := p.parsePrimaryExpr()
	if err != nil {
		return NoNode, err
	}

	for {
		switch t := p.peek(); t.Type {
		case lexer.OpenBracket:
			expr, err = p.parseRangeExpr(expr)
		case lexer.Offset:
			expr, err = p.parseOffsetExpr(expr)
		case lexer.At:
			expr, err = p.parseAtExpr(expr)
		default:
			return expr, nil
		}
		if err != nil {
			return NoNode, err
		}
	}
}

// parseRangeExpr parses matrix selector or subquery range.
func (p *parser) parseRangeExpr(expr NodeID) (NodeID, error) {
	if _, err := p.consume(lexer.OpenBracket); err != nil {
		return NoNode, err
	}
	rng, err := p.parseDuration(false)
	if err != nil {
		return NoNode, err
	}
	children := []NodeID{expr, rng}

	cat := MatrixSelector
	if p.peek().Type == lexer.Colon {
		p.next()
		cat = SubqueryExpr

		if t := p.peek(); t.Type != lexer.CloseBracket {
			step, err := p.parseDuration(false)
			if err != nil {
				return NoNode, err
			}
			children = append(children, step)
		}
	}

	closeTok, err := p.consume(lexer.CloseBracket)
	if err != nil {
		return NoNode, err
	}
	return p.b.Add(cat, Span{
		Start: p.span(expr).Start,
		End:   closeTok.End,
	}, children...), nil
}

func (p *parser) parseOffsetExpr(expr NodeID) (NodeID, error) {
	if _, err := p.consume(lexer.Offset); err != nil {
		return NoNode, err
	}
	d, err := p.parseDuration(true)
	if err != nil {
		return NoNode, err
	}
	return p.b.Add(OffsetExpr, Span{
		Start: p.span(expr).Start,
		End:   p.span(d).End,
	}, expr, d), nil
}

func (p *parser) parseAtExpr(expr NodeID) (NodeID, error) {
	if _, err := p.consume(lexer.At); err != nil {
		return NoNode, err
	}

	var at NodeID
	switch t := p.peek(); t.Type {
	case lexer.Ident:
		name := strings.ToLower(t.Text)
		if name != "start" && name != "end" {
			return NoNode, &SyntaxError{
				Msg: fmt.Sprintf("unexpected %q in @, expected timestamp, start() or end()", t.Text),
				Pos: t.Pos,
			}
		}
		p.next()
		if _, err := p.consume(lexer.OpenParen); err != nil {
			return NoNode, err
		}
		closeTok, err := p.consume(lexer.CloseParen)
		if err != nil {
			return NoNode, err
		}
		at = p.b.Add(AtModifierPreprocessor, Span{
			Start: t.Pos.Offset,
			End:   closeTok.End,
		})
	default:
		n, err := p.parseSignedNumber()
		if err != nil {
			return NoNode, err
		}
		at = n
	}

	return p.b.Add(StepInvariantExpr, Span{
		Start: p.span(expr).Start,
		End:   p.span(at).End,
	}, expr, at), nil
}

// parseDuration parses duration or number of seconds.
func (p *parser) parseDuration(signed bool) (NodeID, error) {
	start := p.peek()
	if signed && (start.Type == lexer.Sub || start.Type == lexer.Add) {
		p.next()
	}
	switch t := p.next(); t.Type {
	case lexer.Duration, lexer.Number:
		return p.b.Add(Duration, Span{
			Start: start.Pos.Offset,
			End:   t.End,
		}), nil
	default:
		return NoNode, p.unexpectedToken(t)
	}
}

func (p *parser) parseSignedNumber() (NodeID, error) {
	start := p.peek()
	if start.Type == lexer.Sub || start.Type == lexer.Add {
		p.next()
	}
	switch t := p.next(); t.Type {
	case lexer.Number:
		return p.b.Add(NumberLiteral, Span{
			Start: start.Pos.Offset,
			End:   t.End,
		}), nil
	default:
		return NoNode, p.unexpectedToken(t)
	}
}

func (p *parser) parsePrimaryExpr() (NodeID, error) {
	switch t := p.peek(); t.Type {
	case lexer.Number, lexer.Duration:
		return p.add(NumberLiteral, p.next()), nil
	case lexer.String:
		return p.add(StringLiteral, p.next()), nil
	case lexer.OpenParen:
		p.next()

		expr, err := p.parseExpr()
		if err != nil {
			return NoNode, err
		}

		closeTok, err := p.consume(lexer.CloseParen)
		if err != nil {
			return NoNode, err
		}
		return p.b.Add(ParenExpr, Span{
			Start: t.Pos.Offset,
			End:   closeTok.End,
		}, expr), nil
	case lexer.OpenBrace:
		return p.parseVectorSelector()
	case lexer.Ident:
		if isNumberIdent(t.Text) {
			return p.add(NumberLiteral, p.next()), nil
		}
		if p.peekAt(1).Type == lexer.OpenParen {
			return p.parseFunctionCall()
		}
		return p.parseVectorSelector()
	default:
		if t.Type.IsAggregation() {
			return p.parseAggregateExpr()
		}
		return NoNode, p.unexpectedToken(t)
	}
}

func isNumberIdent(s string) bool {
	return strings.EqualFold(s, "inf") || strings.EqualFold(s, "nan")
}
