package main

import (
	"io"

	"github.com/go-faster/jx"

	"github.com/go-faster/promqlcheck/internal/cliversion"
	"github.com/go-faster/promqlcheck/internal/promql"
	"github.com/go-faster/promqlcheck/internal/promql/promqlcheck"
	"github.com/go-faster/promqlcheck/internal/rulelint"
)

type jsonPrinter struct {
	w io.Writer
}

func (p *jsonPrinter) write(cb func(e *jx.Encoder)) error {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	cb(e)
	_, err := p.w.Write(append(e.Bytes(), '\n'))
	return err
}

func encodeStrings(e *jx.Encoder, s []string) {
	e.Arr(func(e *jx.Encoder) {
		for _, v := range s {
			e.Str(v)
		}
	})
}

func encodeSpan(e *jx.Encoder, span promql.Span) {
	e.Field("start", func(e *jx.Encoder) { e.Int(span.Start) })
	e.Field("end", func(e *jx.Encoder) { e.Int(span.End) })
}

func encodeProblems(e *jx.Encoder, r checkResult) {
	e.Field("diagnostics", func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			if r.Err != nil {
				msg, pos, ok := promql.ErrorPosition(r.Err)
				if !ok {
					msg = r.Err.Error()
				}
				e.Obj(func(e *jx.Encoder) {
					encodeSpan(e, promql.Span{Start: pos.Offset, End: pos.Offset})
					e.Field("severity", func(e *jx.Encoder) { e.Str(promqlcheck.SeverityError.String()) })
					e.Field("kind", func(e *jx.Encoder) { e.Str(rulelint.KindSyntax) })
					e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
				})
				return
			}
			for _, d := range r.Result.Diagnostics {
				e.Obj(func(e *jx.Encoder) {
					encodeSpan(e, d.Span)
					e.Field("severity", func(e *jx.Encoder) { e.Str(d.Severity.String()) })
					e.Field("kind", func(e *jx.Encoder) { e.Str(d.Kind.String()) })
					e.Field("message", func(e *jx.Encoder) { e.Str(d.Message) })
				})
			}
		})
	})
}

func (p *jsonPrinter) Check(results []checkResult) error {
	return p.write(func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("expressions", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, r := range results {
						e.Obj(func(e *jx.Encoder) {
							e.Field("expr", func(e *jx.Encoder) { e.Str(r.Expr) })
							e.Field("type", func(e *jx.Encoder) { e.Str(r.Result.Type.String()) })
							encodeProblems(e, r)
						})
					}
				})
			})
		})
	})
}

func (p *jsonPrinter) Matching(r checkResult) error {
	return p.write(func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("expr", func(e *jx.Encoder) { e.Str(r.Expr) })
			e.Field("binaries", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, b := range r.Result.Binaries {
						e.Obj(func(e *jx.Encoder) {
							encodeSpan(e, b.Span)
							e.Field("op", func(e *jx.Encoder) { e.Str(b.Op) })
							e.Field("bool", func(e *jx.Encoder) { e.Bool(b.ReturnBool) })
							e.Field("lhs", func(e *jx.Encoder) { e.Str(b.LHS.String()) })
							e.Field("rhs", func(e *jx.Encoder) { e.Str(b.RHS.String()) })
							e.Field("type", func(e *jx.Encoder) { e.Str(b.Type.String()) })
							if !b.IsVectorMatching() {
								return
							}
							m := b.Matching
							e.Field("matching", func(e *jx.Encoder) {
								e.Obj(func(e *jx.Encoder) {
									e.Field("card", func(e *jx.Encoder) { e.Str(m.Card.String()) })
									e.Field("on", func(e *jx.Encoder) { e.Bool(m.On) })
									e.Field("labels", func(e *jx.Encoder) { encodeStrings(e, m.MatchingLabels) })
									e.Field("include", func(e *jx.Encoder) { encodeStrings(e, m.Include) })
								})
							})
						})
					}
				})
			})
			encodeProblems(e, r)
		})
	})
}

func (p *jsonPrinter) Lint(report rulelint.Report) error {
	return p.write(func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("files", func(e *jx.Encoder) { e.Int(report.Files) })
			e.Field("rules", func(e *jx.Encoder) { e.Int(report.Rules) })
			e.Field("findings", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, f := range report.Findings {
						e.Obj(func(e *jx.Encoder) {
							e.Field("file", func(e *jx.Encoder) { e.Str(f.File) })
							e.Field("group", func(e *jx.Encoder) { e.Str(f.Group) })
							e.Field("rule", func(e *jx.Encoder) { e.Str(f.Rule) })
							e.Field("alert", func(e *jx.Encoder) { e.Bool(f.Alert) })
							e.Field("line", func(e *jx.Encoder) { e.Int(f.Line) })
							e.Field("column", func(e *jx.Encoder) { e.Int(f.Column) })
							e.Field("severity", func(e *jx.Encoder) { e.Str(f.Severity.String()) })
							e.Field("kind", func(e *jx.Encoder) { e.Str(f.Kind) })
							e.Field("message", func(e *jx.Encoder) { e.Str(f.Message) })
							e.Field("expr", func(e *jx.Encoder) { e.Str(f.Expr) })
							encodeSpan(e, f.Span)
						})
					}
				})
			})
		})
	})
}

func (p *jsonPrinter) Version(info cliversion.Info) error {
	return p.write(info.Encode)
}
