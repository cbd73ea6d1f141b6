package lexer

import (
	"fmt"
	"text/scanner"

	"github.com/go-faster/errors"
)

// Error is a lexing error.
type Error struct {
	Msg string
	Pos scanner.Position
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("at %s: %s", e.Pos, e.Msg)
}

// FormatError implements [errors.Formatter].
func (e *Error) FormatError(p errors.Printer) error {
	p.Printf("at %s: %s", e.Pos, e.Msg)
	return nil
}
