// Package lexerql provides utilities for lexing PromQL-like languages.
package lexerql

type char interface {
	byte | rune
}

// IsDigit returns true, if r is an ASCII digit.
func IsDigit[R char](r R) bool {
	return r >= '0' && r <= '9'
}

// IsLetter returns true, if r is an ASCII letter.
func IsLetter[R char](r R) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}

// IsIdentStartRune returns true, if r is a valid first character of Prometheus label.
func IsIdentStartRune[R char](r R) bool {
	return IsLetter(r) || r == '_'
}

// IsIdentRune returns true, if r is a valid character of Prometheus label.
func IsIdentRune[R char](r R) bool {
	return IsLetter(r) || IsDigit(r) || r == '_'
}

// IsMetricRune returns true, if r is a valid non-first character of Prometheus metric name.
//
// Colons are reserved for recording rules, but they are valid metric name characters.
func IsMetricRune[R char](r R) bool {
	return IsIdentRune(r) || r == ':'
}

// IsLabelName returns true, if s is a valid unquoted label name.
func IsLabelName(s string) bool {
	if s == "" || !IsIdentStartRune(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !IsIdentRune(s[i]) {
			return false
		}
	}
	return true
}
