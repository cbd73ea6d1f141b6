package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"

	"github.com/go-faster/promqlcheck/internal/cliversion"
	"github.com/go-faster/promqlcheck/internal/promql"
	"github.com/go-faster/promqlcheck/internal/promql/promqlcheck"
	"github.com/go-faster/promqlcheck/internal/rulelint"
)

type printer interface {
	Check(results []checkResult) error
	Matching(r checkResult) error
	Lint(report rulelint.Report) error
	Version(info cliversion.Info) error
}

type prettyPrinter struct {
	w io.Writer

	bold    *color.Color
	faint   *color.Color
	error   *color.Color
	warning *color.Color
	caret   *color.Color
}

func newPrettyPrinter(w io.Writer, colorize bool) *prettyPrinter {
	p := &prettyPrinter{
		w:       w,
		bold:    color.New(color.Bold),
		faint:   color.New(color.Faint),
		error:   color.New(color.FgRed, color.Bold),
		warning: color.New(color.FgYellow, color.Bold),
		caret:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.bold, p.faint, p.error, p.warning, p.caret} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *prettyPrinter) severity(s promqlcheck.Severity, kind string) string {
	c := p.error
	if s == promqlcheck.SeverityWarning {
		c = p.warning
	}
	return c.Sprintf("%s[%s]", s, kind)
}

// snippet prints the source line of span with carets under it.
func (p *prettyPrinter) snippet(b *strings.Builder, source string, span promql.Span, indent string) {
	start := min(max(span.Start, 0), len(source))
	lineStart := strings.LastIndexByte(source[:start], '\n') + 1
	lineEnd := len(source)
	if idx := strings.IndexByte(source[start:], '\n'); idx >= 0 {
		lineEnd = start + idx
	}
	width := max(min(span.End, lineEnd)-start, 1)

	fmt.Fprintf(b, "%s%s %s\n", indent, p.faint.Sprint("|"), source[lineStart:lineEnd])
	fmt.Fprintf(b, "%s%s %s%s\n", indent, p.faint.Sprint("|"),
		strings.Repeat(" ", start-lineStart),
		p.caret.Sprint(strings.Repeat("^", width)),
	)
}

func (p *prettyPrinter) problem(b *strings.Builder, r checkResult) (errs, warns int) {
	if r.Err != nil {
		msg, pos, ok := promql.ErrorPosition(r.Err)
		if !ok {
			fmt.Fprintf(b, "  %s %s\n", p.severity(promqlcheck.SeverityError, rulelint.KindSyntax), r.Err)
			return 1, 0
		}
		fmt.Fprintf(b, "  %s %d:%d: %s\n", p.severity(promqlcheck.SeverityError, rulelint.KindSyntax), pos.Line, pos.Column, msg)
		p.snippet(b, r.Expr, promql.Span{Start: pos.Offset, End: pos.Offset}, "    ")
		return 1, 0
	}
	for _, d := range r.Result.Diagnostics {
		pos := r.Tree.Position(d.Span.Start)
		fmt.Fprintf(b, "  %s %d:%d: %s\n", p.severity(d.Severity, d.Kind.String()), pos.Line, pos.Column, d.Message)
		p.snippet(b, r.Expr, d.Span, "    ")
		if d.Severity == promqlcheck.SeverityWarning {
			warns++
		} else {
			errs++
		}
	}
	return errs, warns
}

func (p *prettyPrinter) summary(b *strings.Builder, prefix string, errs, warns int) {
	fmt.Fprintf(b, "%s: %s, %s\n", prefix,
		english.Plural(errs, "error", ""),
		english.Plural(warns, "warning", ""),
	)
}

func (p *prettyPrinter) Check(results []checkResult) error {
	var (
		b           strings.Builder
		errs, warns int
	)
	for _, r := range results {
		b.WriteString(p.bold.Sprint(r.Expr))
		b.WriteByte('\n')
		if r.Err == nil {
			fmt.Fprintf(&b, "  type: %s\n", r.Result.Type)
		}
		e, w := p.problem(&b, r)
		errs, warns = errs+e, warns+w
	}
	p.summary(&b, english.Plural(len(results), "expression", "")+" checked", errs, warns)

	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *prettyPrinter) Matching(r checkResult) error {
	var b strings.Builder
	b.WriteString(p.bold.Sprint(r.Expr))
	b.WriteByte('\n')
	if r.Err != nil {
		p.problem(&b, r)
		_, err := io.WriteString(p.w, b.String())
		return err
	}

	if len(r.Result.Binaries) == 0 {
		b.WriteString("  no binary expressions\n")
	}
	for i, bin := range r.Result.Binaries {
		fmt.Fprintf(&b, "  [%d] %s\n", i+1, r.Expr[bin.Span.Start:bin.Span.End])

		op := bin.Op
		if bin.ReturnBool {
			op += " bool"
		}
		fmt.Fprintf(&b, "      types: %s %s %s -> %s\n", bin.LHS, op, bin.RHS, bin.Type)
		if !bin.IsVectorMatching() {
			continue
		}

		m := bin.Matching
		fmt.Fprintf(&b, "      cardinality: %s\n", m.Card)
		switch {
		case m.On:
			fmt.Fprintf(&b, "      matching: on(%s)\n", strings.Join(m.MatchingLabels, ", "))
		case len(m.MatchingLabels) > 0:
			fmt.Fprintf(&b, "      matching: ignoring(%s)\n", strings.Join(m.MatchingLabels, ", "))
		}
		switch m.Card {
		case promqlcheck.CardManyToOne:
			fmt.Fprintf(&b, "      group: group_left(%s)\n", strings.Join(m.Include, ", "))
		case promqlcheck.CardOneToMany:
			fmt.Fprintf(&b, "      group: group_right(%s)\n", strings.Join(m.Include, ", "))
		}
	}
	p.problem(&b, r)

	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *prettyPrinter) Lint(report rulelint.Report) error {
	var (
		b           strings.Builder
		errs, warns int
	)
	for _, f := range report.Findings {
		fmt.Fprintf(&b, "%s %s %s (%s %q)\n",
			p.bold.Sprintf("%s:%d:%d:", f.File, f.Line, f.Column),
			p.severity(f.Severity, f.Kind),
			f.Message,
			ruleKind(f), f.Rule,
		)
		p.snippet(&b, f.Expr, f.Span, "  ")
		if f.Severity == promqlcheck.SeverityWarning {
			warns++
		} else {
			errs++
		}
	}
	prefix := fmt.Sprintf("%s, %s linted",
		english.Plural(report.Files, "file", ""),
		english.Plural(report.Rules, "rule", ""),
	)
	p.summary(&b, prefix, errs, warns)

	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *prettyPrinter) Version(info cliversion.Info) error {
	_, err := fmt.Fprintf(p.w, "%s %s\n", p.bold.Sprint("promqlcheck"), info)
	return err
}

func ruleKind(f rulelint.Finding) string {
	if f.Alert {
		return "alert"
	}
	return "record"
}
