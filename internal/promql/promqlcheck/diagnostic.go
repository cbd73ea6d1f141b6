package promqlcheck

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/go-faster/promqlcheck/internal/promql"
)

// Severity is a diagnostic severity.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("<unknown severity %d>", int(s))
	}
}

// Kind is a diagnostic kind.
type Kind int

const (
	// KindTypeMismatch reports operand or argument of a wrong type.
	KindTypeMismatch Kind = iota + 1
	// KindArityMismatch reports wrong number of function or aggregation arguments.
	KindArityMismatch
	// KindInvalidModifier reports a modifier used where it is not allowed.
	KindInvalidModifier
	// KindMalformedClause reports matching clause without label list or with malformed one.
	KindMalformedClause
	// KindUnknownFunction reports call of an unknown or disabled function.
	KindUnknownFunction
	// KindInvalidSelector reports invalid vector selector.
	KindInvalidSelector
	// KindDuplicateLabel reports a label repeated in a label list.
	KindDuplicateLabel
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindTypeMismatch:
		return "type-mismatch"
	case KindArityMismatch:
		return "arity-mismatch"
	case KindInvalidModifier:
		return "invalid-modifier"
	case KindMalformedClause:
		return "malformed-clause"
	case KindUnknownFunction:
		return "unknown-function"
	case KindInvalidSelector:
		return "invalid-selector"
	case KindDuplicateLabel:
		return "duplicate-label"
	default:
		return fmt.Sprintf("<unknown kind %d>", int(k))
	}
}

// Diagnostic is a semantic error or warning.
type Diagnostic struct {
	// Span is a source span of the offending node.
	Span     promql.Span
	Severity Severity
	Kind     Kind
	Message  string
}

// String implements fmt.Stringer.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s (%s)", d.Span, d.Severity, d.Message, d.Kind)
}

// Sink collects diagnostics.
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc is a functional Sink.
type SinkFunc func(d Diagnostic)

// Report implements Sink.
func (f SinkFunc) Report(d Diagnostic) {
	f(d)
}

var nopSink = SinkFunc(func(Diagnostic) {})

// Diagnostics is a Sink collecting diagnostics in report order.
//
// Not safe for concurrent use.
type Diagnostics []Diagnostic

var _ Sink = (*Diagnostics)(nil)

// Report implements Sink.
func (ds *Diagnostics) Report(d Diagnostic) {
	*ds = append(*ds, d)
}

// HasErrors whether there is at least one error-severity diagnostic.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err returns error-severity diagnostics combined into one error.
//
// Each combined error is a *DiagnosticError. Returns nil if there are no errors.
func (ds Diagnostics) Err() (err error) {
	for _, d := range ds {
		if d.Severity != SeverityError {
			continue
		}
		err = multierr.Append(err, &DiagnosticError{Diagnostic: d})
	}
	return err
}

// DiagnosticError wraps Diagnostic as error.
type DiagnosticError struct {
	Diagnostic Diagnostic
}

// Error implements error.
func (e *DiagnosticError) Error() string {
	return e.Diagnostic.String()
}
