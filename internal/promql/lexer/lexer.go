// Package lexer contains PromQL lexer.
package lexer

import (
	"fmt"
	"strings"
	"text/scanner"

	"github.com/prometheus/prometheus/util/strutil"

	"github.com/go-faster/promqlcheck/internal/lexerql"
)

type lexer struct {
	scanner scanner.Scanner
	tokens  []Token
	err     error
}

// TokenizeOptions is a Tokenize options structure.
type TokenizeOptions struct {
	// Filename sets filename for the scanner.
	Filename string
}

// Tokenize scans given string to PromQL tokens.
func Tokenize(s string, opts TokenizeOptions) ([]Token, error) {
	l := lexer{}
	l.scanner.Init(strings.NewReader(s))
	l.scanner.Filename = opts.Filename
	// Single-quoted strings are not Go chars and '#' starts a comment.
	l.scanner.Mode = scanner.ScanIdents |
		scanner.ScanInts |
		scanner.ScanFloats |
		scanner.ScanStrings |
		scanner.ScanRawStrings
	l.scanner.IsIdentRune = func(ch rune, i int) bool {
		if i == 0 {
			return lexerql.IsIdentStartRune(ch)
		}
		return lexerql.IsMetricRune(ch)
	}
	l.scanner.Error = func(s *scanner.Scanner, msg string) {
		l.setError(msg, s.Position)
	}

scan:
	for {
		r := l.scanner.Scan()
		switch r {
		case scanner.EOF:
			break scan
		case '#':
			lexerql.ScanComment(&l.scanner)
			continue
		}

		tok, ok := l.nextToken(r, l.scanner.TokenText())
		if !ok {
			break scan
		}
		l.tokens = append(l.tokens, tok)
	}
	demoteAggregations(l.tokens)
	return l.tokens, l.err
}

// demoteAggregations turns aggregation names not followed by "(", "by" or
// "without" into identifiers.
//
// Aggregation operator name is a valid metric name, like "sum" in `foo * sum`.
func demoteAggregations(tokens []Token) {
	for i, tok := range tokens {
		if !tok.Type.IsAggregation() {
			continue
		}
		if i+1 < len(tokens) {
			switch tokens[i+1].Type {
			case OpenParen, By, Without:
				continue
			}
		}
		tokens[i].Type = Ident
	}
}

func (l *lexer) setError(msg string, pos scanner.Position) {
	l.err = &Error{
		Msg: msg,
		Pos: pos,
	}
}

func (l *lexer) nextToken(r rune, text string) (tok Token, _ bool) {
	tok.Pos = l.scanner.Position
	tok.Text = text

	switch r {
	case scanner.Int, scanner.Float:
		tok.Type = Number
		if r == scanner.Int && lexerql.IsDurationRune(l.scanner.Peek()) {
			duration, err := lexerql.ScanDuration(&l.scanner, text)
			if err != nil {
				l.setError(err.Error(), tok.Pos)
				return tok, false
			}
			tok.Type = Duration
			tok.Text = duration
		}
		tok.End = l.scanner.Pos().Offset
		return tok, true
	case scanner.String, scanner.RawString:
		return l.stringToken(tok, text)
	case '\'':
		raw, err := lexerql.ScanQuoted(&l.scanner, r)
		if err != nil {
			l.setError(err.Error(), tok.Pos)
			return tok, false
		}
		return l.stringToken(tok, raw)
	case scanner.Ident:
		tok.End = l.scanner.Pos().Offset
		// Keywords are case-insensitive.
		tt, ok := tokens[strings.ToLower(text)]
		if !ok || !tt.IsKeyword() {
			tok.Type = Ident
			return tok, true
		}
		tok.Type = tt
		return tok, true
	}

	peekCh := l.scanner.Peek()
	peeked := text + string(peekCh)

	tt, ok := tokens[peeked]
	if ok {
		l.scanner.Next()
		tok.Type = tt
		tok.Text = peeked
		tok.End = l.scanner.Pos().Offset
		return tok, true
	}

	tt, ok = tokens[text]
	if ok {
		tok.Type = tt
		tok.End = l.scanner.Pos().Offset
		return tok, true
	}

	l.setError(fmt.Sprintf("unexpected character %q", r), tok.Pos)
	return tok, false
}

func (l *lexer) stringToken(tok Token, raw string) (Token, bool) {
	unquoted, err := strutil.Unquote(raw)
	if err != nil {
		l.setError(fmt.Sprintf("unquote string: %s", err), tok.Pos)
		return tok, false
	}
	tok.Type = String
	tok.Text = unquoted
	tok.End = l.scanner.Pos().Offset
	return tok, true
}
