package lexerql

import (
	"strings"
	"text/scanner"
	"time"

	"github.com/go-faster/errors"
	"github.com/prometheus/common/model"
)

// ScanDuration scans and validates Prometheus duration from given scanner.
//
// The number is the already scanned numeric prefix, like "5" in "5m".
func ScanDuration(s *scanner.Scanner, number string) (string, error) {
	var sb strings.Builder
	sb.WriteString(number)

	for {
		ch := s.Peek()
		if !IsDigit(ch) && !IsDurationRune(ch) {
			break
		}
		sb.WriteRune(ch)
		s.Next()
	}

	duration := sb.String()
	if _, err := ParseDuration(duration); err != nil {
		return duration, err
	}
	return duration, nil
}

// IsDurationRune returns true, if r is a non-digit rune that could be part of Prometheus duration.
func IsDurationRune[R char](r R) bool {
	switch rune(r) {
	case 'm', 's', 'h', 'd', 'w', 'y':
		return true
	default:
		return false
	}
}

// ParseDuration parses Prometheus duration, like "1h30m".
func ParseDuration(s string) (time.Duration, error) {
	d, err := model.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "parse duration %q", s)
	}
	return time.Duration(d), nil
}
