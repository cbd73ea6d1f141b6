package promql

import (
	"strings"
	"text/scanner"

	"github.com/go-faster/errors"

	"github.com/go-faster/promqlcheck/internal/promql/lexer"
)

// Parse parses PromQL query and builds a concrete syntax tree.
func Parse(input string) (*Tree, error) {
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}
	if len(p.tokens) == 0 {
		return nil, &SyntaxError{
			Msg: "no expression found in input",
			Pos: p.eof.Pos,
		}
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Type != lexer.EOF {
		return nil, p.unexpectedToken(t)
	}

	root := p.b.Add(Query, Span{Start: 0, End: len(input)}, expr)
	return p.b.Finish(root)
}

func newParser(input string) (parser, error) {
	tokens, err := lexer.Tokenize(input, lexer.TokenizeOptions{})
	if err != nil {
		return parser{}, errors.Wrap(err, "tokenize")
	}
	return parser{
		tokens: tokens,
		eof: lexer.Token{
			Type: lexer.EOF,
			Pos:  position(input, len(input)),
			End:  len(input),
		},
		b: NewBuilder(input),
	}, nil
}

type parser struct {
	tokens []lexer.Token
	pos    int
	eof    lexer.Token

	b *Builder
}

func (p *parser) consume(tt lexer.TokenType) (lexer.Token, error) {
	t := p.next()
	if t.Type != tt {
		return t, errors.Wrapf(p.unexpectedToken(t), "expected %q", tt)
	}
	return t, nil
}

func (p *parser) next() lexer.Token {
	t := p.peek()
	if t.Type != lexer.EOF {
		p.pos++
	}
	return t
}

func (p *parser) peek() lexer.Token {
	return p.peekAt(0)
}

func (p *parser) peekAt(n int) lexer.Token {
	if len(p.tokens) <= p.pos+n {
		return p.eof
	}
	return p.tokens[p.pos+n]
}

// add adds a leaf node covering given token.
func (p *parser) add(cat Category, t lexer.Token) NodeID {
	return p.b.Add(cat, tokenSpan(t))
}

func (p *parser) span(n NodeID) Span {
	return p.b.nodes[n].span
}

func tokenSpan(t lexer.Token) Span {
	return Span{Start: t.Pos.Offset, End: t.End}
}

func position(source string, offset int) scanner.Position {
	offset = min(max(offset, 0), len(source))
	pos := scanner.Position{
		Offset: offset,
		Line:   1,
		Column: offset + 1,
	}
	prefix := source[:offset]
	if idx := strings.LastIndexByte(prefix, '\n'); idx >= 0 {
		pos.Line += strings.Count(prefix, "\n")
		pos.Column = offset - idx
	}
	return pos
}
