package lexerql

import (
	"strings"
	"text/scanner"

	"github.com/go-faster/errors"
)

// ScanQuoted reads a quoted literal until the closing quote.
//
// The opening quote must be already consumed. Returns raw literal text,
// including quotes and escape sequences.
func ScanQuoted(s *scanner.Scanner, quote rune) (string, error) {
	var sb strings.Builder
	sb.WriteRune(quote)

	for {
		ch := s.Next()
		switch ch {
		case scanner.EOF, '\n':
			return sb.String(), errors.New("literal not terminated")
		case '\\':
			sb.WriteRune(ch)
			escaped := s.Next()
			if escaped == scanner.EOF {
				return sb.String(), errors.New("literal not terminated")
			}
			sb.WriteRune(escaped)
		case quote:
			sb.WriteRune(ch)
			return sb.String(), nil
		default:
			sb.WriteRune(ch)
		}
	}
}
