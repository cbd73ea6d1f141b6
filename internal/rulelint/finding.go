package rulelint

import (
	"fmt"
	"text/scanner"

	"github.com/go-faster/yaml"

	"github.com/go-faster/promqlcheck/internal/promql"
	"github.com/go-faster/promqlcheck/internal/promql/promqlcheck"
)

// KindSyntax is a kind of findings reported for expressions that cannot be parsed.
const KindSyntax = "syntax"

// Finding is a problem found in a rule expression.
type Finding struct {
	File  string
	Group string
	Rule  string
	// Alert is true for alerting rules.
	Alert bool

	// Line and Column are file position of the problem, starting at 1.
	Line   int
	Column int

	Severity promqlcheck.Severity
	// Kind is a diagnostic kind or KindSyntax.
	Kind    string
	Message string

	// Expr is the rule expression.
	Expr string
	// Span is a byte span of the problem in Expr.
	Span promql.Span
}

// String implements fmt.Stringer.
func (f Finding) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s (%s)", f.File, f.Line, f.Column, f.Severity, f.Message, f.Kind)
}

func (f *RuleFile) finding(r Rule, span promql.Span, pos scanner.Position) Finding {
	line, col := f.position(r, pos)
	return Finding{
		File:   f.Name,
		Group:  r.Group,
		Rule:   r.Name,
		Alert:  r.Alert,
		Line:   line,
		Column: col,
		Expr:   r.Expr,
		Span:   span,
	}
}

func (f *RuleFile) diagnosticFinding(r Rule, t *promql.Tree, d promqlcheck.Diagnostic) Finding {
	finding := f.finding(r, d.Span, t.Position(d.Span.Start))
	finding.Severity = d.Severity
	finding.Kind = d.Kind.String()
	finding.Message = d.Message
	return finding
}

func (f *RuleFile) syntaxFinding(r Rule, err error) Finding {
	msg, pos, ok := promql.ErrorPosition(err)
	if !ok {
		msg, pos = err.Error(), scanner.Position{Line: 1, Column: 1}
	}

	span := promql.Span{Start: pos.Offset, End: pos.Offset}
	finding := f.finding(r, span, pos)
	finding.Severity = promqlcheck.SeverityError
	finding.Kind = KindSyntax
	finding.Message = msg
	return finding
}

// position maps position in the rule expression to the file position.
//
// Positions in folded scalars point to the start of expression.
func (f *RuleFile) position(r Rule, p scanner.Position) (line, col int) {
	switch r.Style {
	case yaml.LiteralStyle:
		line = r.Line + p.Line
		return line, f.blockIndent(r) + p.Column
	case yaml.FoldedStyle:
		return r.Line + 1, f.blockIndent(r) + 1
	case yaml.DoubleQuotedStyle, yaml.SingleQuotedStyle:
		if p.Line > 1 {
			return r.Line, r.Column
		}
		return r.Line, f.quotedColumn(r, p.Column)
	default:
		if p.Line > 1 {
			return r.Line, r.Column
		}
		return r.Line, r.Column + p.Column - 1
	}
}

// quotedColumn maps expression column to the file column of quoted scalar,
// counting escape sequences of the raw scalar.
func (f *RuleFile) quotedColumn(r Rule, col int) int {
	if r.Line < 1 || r.Line > len(f.lines) || r.Column < 1 {
		return r.Column
	}
	line := []rune(f.lines[r.Line-1])
	if r.Column > len(line) {
		return r.Column
	}
	// Skip the opening quote.
	raw := line[r.Column:]

	i := 0
	for n := 1; n < col; n++ {
		if i >= len(raw) {
			// Scalar continues on the next line.
			return r.Column
		}
		switch {
		case r.Style == yaml.DoubleQuotedStyle && raw[i] == '\\' && i+1 < len(raw):
			i += escapeLen(raw[i+1])
		case r.Style == yaml.SingleQuotedStyle && raw[i] == '\'' && i+1 < len(raw) && raw[i+1] == '\'':
			i += 2
		default:
			i++
		}
	}
	return r.Column + 1 + i
}

// escapeLen returns length of double-quoted scalar escape sequence.
func escapeLen(ch rune) int {
	switch ch {
	case 'x':
		return 4
	case 'u':
		return 6
	case 'U':
		return 10
	default:
		return 2
	}
}

// blockIndent returns indentation of block scalar content.
func (f *RuleFile) blockIndent(r Rule) int {
	// Block content starts on the line after the indicator.
	for i := r.Line; i < len(f.lines); i++ {
		line := f.lines[i]
		indent := 0
		for indent < len(line) && line[indent] == ' ' {
			indent++
		}
		if indent < len(line) {
			return indent
		}
	}
	return 0
}
