package main

import (
	"bytes"
	"io"
	"runtime"
	"strings"

	"github.com/go-logfmt/logfmt"

	"github.com/go-faster/promqlcheck/internal/cliversion"
	"github.com/go-faster/promqlcheck/internal/promql"
	"github.com/go-faster/promqlcheck/internal/promql/promqlcheck"
	"github.com/go-faster/promqlcheck/internal/rulelint"
)

// logfmtPrinter writes one record per problem.
type logfmtPrinter struct {
	w io.Writer
}

func (p *logfmtPrinter) write(cb func(e *logfmt.Encoder) error) error {
	var buf bytes.Buffer
	if err := cb(logfmt.NewEncoder(&buf)); err != nil {
		return err
	}
	_, err := buf.WriteTo(p.w)
	return err
}

func encodeRecord(e *logfmt.Encoder, keyvals ...any) error {
	if err := e.EncodeKeyvals(keyvals...); err != nil {
		return err
	}
	return e.EndRecord()
}

func encodeProblemRecords(e *logfmt.Encoder, r checkResult, keyvals ...any) error {
	if r.Err != nil {
		msg, pos, ok := promql.ErrorPosition(r.Err)
		if !ok {
			msg = r.Err.Error()
		}
		return encodeRecord(e, append(keyvals,
			"severity", promqlcheck.SeverityError.String(),
			"kind", rulelint.KindSyntax,
			"line", pos.Line,
			"column", pos.Column,
			"msg", msg,
		)...)
	}
	for _, d := range r.Result.Diagnostics {
		pos := r.Tree.Position(d.Span.Start)
		if err := encodeRecord(e, append(keyvals,
			"severity", d.Severity.String(),
			"kind", d.Kind.String(),
			"line", pos.Line,
			"column", pos.Column,
			"msg", d.Message,
		)...); err != nil {
			return err
		}
	}
	return nil
}

func (p *logfmtPrinter) Check(results []checkResult) error {
	return p.write(func(e *logfmt.Encoder) error {
		for _, r := range results {
			if r.Err == nil && len(r.Result.Diagnostics) == 0 {
				if err := encodeRecord(e, "expr", r.Expr, "type", r.Result.Type.String()); err != nil {
					return err
				}
				continue
			}
			keyvals := []any{"expr", r.Expr}
			if r.Err == nil {
				keyvals = append(keyvals, "type", r.Result.Type.String())
			}
			if err := encodeProblemRecords(e, r, keyvals...); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *logfmtPrinter) Matching(r checkResult) error {
	return p.write(func(e *logfmt.Encoder) error {
		for _, b := range r.Result.Binaries {
			keyvals := []any{
				"expr", r.Expr[b.Span.Start:b.Span.End],
				"op", b.Op,
				"bool", b.ReturnBool,
				"lhs", b.LHS.String(),
				"rhs", b.RHS.String(),
				"type", b.Type.String(),
			}
			if b.IsVectorMatching() {
				m := b.Matching
				keyvals = append(keyvals,
					"card", m.Card.String(),
					"on", m.On,
					"labels", strings.Join(m.MatchingLabels, ","),
					"include", strings.Join(m.Include, ","),
				)
			}
			if err := encodeRecord(e, keyvals...); err != nil {
				return err
			}
		}
		return encodeProblemRecords(e, r, "expr", r.Expr)
	})
}

func (p *logfmtPrinter) Lint(report rulelint.Report) error {
	return p.write(func(e *logfmt.Encoder) error {
		for _, f := range report.Findings {
			if err := encodeRecord(e,
				"file", f.File,
				"line", f.Line,
				"column", f.Column,
				"group", f.Group,
				ruleKind(f), f.Rule,
				"severity", f.Severity.String(),
				"kind", f.Kind,
				"msg", f.Message,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *logfmtPrinter) Version(info cliversion.Info) error {
	return p.write(func(e *logfmt.Encoder) error {
		return encodeRecord(e,
			"module", info.Module,
			"version", info.Version,
			"go_version", info.GoVersion,
			"commit", info.Commit,
			"platform", runtime.GOOS+"/"+runtime.GOARCH,
		)
	})
}
