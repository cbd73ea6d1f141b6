package lexerql

import "text/scanner"

// ScanComment skips runes until newline.
//
// Comment start rune must be already consumed.
func ScanComment(s *scanner.Scanner) {
	for {
		ch := s.Next()
		if ch == scanner.EOF || ch == '\n' {
			return
		}
	}
}
