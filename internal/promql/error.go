package promql

import (
	"fmt"
	"text/scanner"

	"github.com/go-faster/errors"

	"github.com/go-faster/promqlcheck/internal/promql/lexer"
)

// SyntaxError is a syntax error.
type SyntaxError struct {
	Msg string
	Pos scanner.Position
}

// Error implements error.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s", e.Pos, e.Msg)
}

// FormatError implements [errors.Formatter].
func (e *SyntaxError) FormatError(p errors.Printer) error {
	p.Printf("at %s: %s", e.Pos, e.Msg)
	return nil
}

// ErrorPosition returns message and position of a syntax or lexing error returned by Parse.
func ErrorPosition(err error) (msg string, pos scanner.Position, ok bool) {
	var (
		syntaxErr *SyntaxError
		lexErr    *lexer.Error
	)
	switch {
	case errors.As(err, &syntaxErr):
		return syntaxErr.Msg, syntaxErr.Pos, true
	case errors.As(err, &lexErr):
		return lexErr.Msg, lexErr.Pos, true
	default:
		return "", pos, false
	}
}

func (p *parser) unexpectedToken(t lexer.Token) error {
	if t.Type == lexer.EOF {
		return &SyntaxError{
			Msg: "unexpected EOF",
			Pos: t.Pos,
		}
	}
	return &SyntaxError{
		Msg: fmt.Sprintf("unexpected token %q", t.Text),
		Pos: t.Pos,
	}
}
