package main

import (
	"context"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/go-faster/promqlcheck/internal/promql/promqlcheck"
)

type rootOptions struct {
	config   string
	format   string
	color    string
	logLevel string
}

func newRootCommand(s streams) *cobra.Command {
	var opts rootOptions
	cmd := &cobra.Command{
		Use:   "promqlcheck",
		Short: "promqlcheck is a PromQL semantic checker",

		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.Register(cmd.PersistentFlags())
	registerCompletions(cmd)

	cmd.AddCommand(
		newCheckCommand(&opts, s),
		newMatchingCommand(&opts, s),
		newLintCommand(&opts, s),
		newVersionCommand(&opts, s),
	)
	return cmd
}

// app is a command environment built from root options.
type app struct {
	cfg     Config
	lg      *zap.Logger
	checker *promqlcheck.Checker
	out     printer
}

func (opts *rootOptions) setup(ctx context.Context, s streams) (*app, context.Context, error) {
	level, err := zapcore.ParseLevel(opts.logLevel)
	if err != nil {
		return nil, ctx, errors.Wrap(err, "parse log level")
	}
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	lg := zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(s.stderr)),
		zap.NewAtomicLevelAt(level),
	))

	cfg, err := loadConfig(opts.config)
	if err != nil {
		return nil, ctx, errors.Wrap(err, "load config")
	}
	checkerOpts, err := cfg.Checker.Options(lg.Named("checker"))
	if err != nil {
		return nil, ctx, errors.Wrap(err, "checker options")
	}

	out, err := opts.printer(s)
	if err != nil {
		return nil, ctx, err
	}
	return &app{
		cfg:     cfg,
		lg:      lg,
		checker: promqlcheck.NewChecker(checkerOpts),
		out:     out,
	}, zctx.Base(ctx, lg), nil
}

func (opts *rootOptions) printer(s streams) (printer, error) {
	switch opts.format {
	case "pretty":
		colorize, err := opts.colorize(s)
		if err != nil {
			return nil, err
		}
		return newPrettyPrinter(s.stdout, colorize), nil
	case "json":
		return &jsonPrinter{w: s.stdout}, nil
	case "logfmt":
		return &logfmtPrinter{w: s.stdout}, nil
	default:
		return nil, errors.Errorf("unknown format %q", opts.format)
	}
}

func (opts *rootOptions) colorize(s streams) (bool, error) {
	switch opts.color {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
			return false, nil
		}
		f, ok := s.stdout.(*os.File)
		if !ok {
			return false, nil
		}
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()), nil
	default:
		return false, errors.Errorf("unknown color mode %q", opts.color)
	}
}
