package rulelint

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-faster/promqlcheck/internal/autometric"
	"github.com/go-faster/promqlcheck/internal/promql"
	"github.com/go-faster/promqlcheck/internal/promql/promqlcheck"
	"github.com/go-faster/promqlcheck/internal/xsync"
)

// Options sets Linter options.
type Options struct {
	// Checker to use.
	//
	// Defaults to checker with default options.
	Checker *promqlcheck.Checker

	// Concurrency limits number of files linted in parallel.
	//
	// Defaults to GOMAXPROCS.
	Concurrency int

	// MeterProvider provides OpenTelemetry meter for linter metrics.
	MeterProvider metric.MeterProvider
	// TracerProvider provides OpenTelemetry tracer for linter.
	TracerProvider trace.TracerProvider
}

func (o *Options) setDefaults() {
	if o.Checker == nil {
		o.Checker = promqlcheck.NewChecker(promqlcheck.Options{})
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}
	if o.MeterProvider == nil {
		o.MeterProvider = otel.GetMeterProvider()
	}
	if o.TracerProvider == nil {
		o.TracerProvider = otel.GetTracerProvider()
	}
}

type linterMetrics struct {
	Files        metric.Int64Counter     `description:"Number of linted rule files"`
	Expressions  metric.Int64Counter     `description:"Number of checked rule expressions"`
	CacheHits    metric.Int64Counter     `description:"Number of expressions served from the per-run cache"`
	Findings     metric.Int64Counter     `description:"Number of reported findings"`
	LintDuration metric.Float64Histogram `unit:"s" description:"Rule file linting duration"`
}

// Linter checks expressions of Prometheus rule files.
type Linter struct {
	checker     *promqlcheck.Checker
	concurrency int

	metrics linterMetrics
	tracer  trace.Tracer
}

// NewLinter creates new Linter.
func NewLinter(opts Options) (*Linter, error) {
	opts.setDefaults()

	l := &Linter{
		checker:     opts.Checker,
		concurrency: opts.Concurrency,
		tracer:      opts.TracerProvider.Tracer("promqlcheck.rulelint"),
	}
	meter := opts.MeterProvider.Meter("promqlcheck.rulelint")
	if err := autometric.Init(meter, &l.metrics, autometric.InitOptions{
		Prefix: "promqlcheck.rulelint.",
	}); err != nil {
		return nil, errors.Wrap(err, "init metrics")
	}
	return l, nil
}

// Report is a result of linting.
type Report struct {
	Files int
	Rules int
	// Findings in file order, then in rule order.
	Findings []Finding
}

// HasErrors whether there is at least one error-severity finding.
func (r Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == promqlcheck.SeverityError {
			return true
		}
	}
	return false
}

// checked is a memoized check result of an expression.
type checked struct {
	expr   string
	tree   *promql.Tree
	result promqlcheck.Result
	err    error
}

type lintRun struct {
	memo xsync.Memo[uint64, checked]
}

// Lint reads and lints rule files.
func (l *Linter) Lint(ctx context.Context, paths ...string) (Report, error) {
	var (
		run   = &lintRun{}
		files = make([]*RuleFile, len(paths))
		found = make([][]Finding, len(paths))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrap(err, "read")
			}
			f, err := ParseRuleFile(path, data)
			if err != nil {
				return errors.Wrapf(err, "parse %q", path)
			}
			findings, err := l.lintFile(ctx, run, f)
			if err != nil {
				return errors.Wrapf(err, "lint %q", path)
			}
			files[i], found[i] = f, findings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{Files: len(files)}
	for i, f := range files {
		report.Rules += len(f.Rules)
		report.Findings = append(report.Findings, found[i]...)
	}
	zctx.From(ctx).Debug("Lint done",
		zap.Int("files", report.Files),
		zap.Int("rules", report.Rules),
		zap.Int("findings", len(report.Findings)),
		zap.Int("unique_expressions", run.memo.Len()),
	)
	return report, nil
}

// LintFile lints parsed rule file.
func (l *Linter) LintFile(ctx context.Context, f *RuleFile) ([]Finding, error) {
	return l.lintFile(ctx, &lintRun{}, f)
}

func (l *Linter) lintFile(ctx context.Context, run *lintRun, f *RuleFile) (_ []Finding, rerr error) {
	ctx, span := l.tracer.Start(ctx, "rulelint.LintFile",
		trace.WithAttributes(
			attribute.String("rulelint.file", f.Name),
			attribute.Int("rulelint.rules", len(f.Rules)),
		),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
		}
		span.End()
	}()
	start := time.Now()

	var findings []Finding
	for _, r := range f.Rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c, cached := run.memo.Do(xxhash.Sum64String(r.Expr), func() checked {
			return l.check(r.Expr)
		})
		if c.expr != r.Expr {
			// Hash collision.
			c, cached = l.check(r.Expr), false
		}
		l.metrics.Expressions.Add(ctx, 1)
		if cached {
			l.metrics.CacheHits.Add(ctx, 1)
		}

		if c.err != nil {
			findings = append(findings, f.syntaxFinding(r, c.err))
			continue
		}
		for _, d := range c.result.Diagnostics {
			findings = append(findings, f.diagnosticFinding(r, c.tree, d))
		}
	}

	for _, finding := range findings {
		l.metrics.Findings.Add(ctx, 1, metric.WithAttributes(
			attribute.String("severity", finding.Severity.String()),
			attribute.String("kind", finding.Kind),
		))
	}
	l.metrics.Files.Add(ctx, 1)
	l.metrics.LintDuration.Record(ctx, time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("rulelint.findings", len(findings)))

	zctx.From(ctx).Debug("Linted rule file",
		zap.String("file", f.Name),
		zap.Int("rules", len(f.Rules)),
		zap.Int("findings", len(findings)),
	)
	return findings, nil
}

func (l *Linter) check(expr string) checked {
	c := checked{expr: expr}
	c.tree, c.err = promql.Parse(expr)
	if c.err == nil {
		c.result = l.checker.Check(c.tree)
	}
	return c
}
