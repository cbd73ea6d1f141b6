package main

import (
	"slices"
	"strings"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// enumFlag is [pflag.Value] accepting one of fixed choices.
type enumFlag struct {
	val     *string
	choices []string
}

var _ pflag.Value = (*enumFlag)(nil)

func newEnumFlag(val *string, defaultVal string, choices ...string) *enumFlag {
	*val = defaultVal
	return &enumFlag{val: val, choices: choices}
}

// String implements [pflag.Value].
func (f *enumFlag) String() string {
	return *f.val
}

// Set implements [pflag.Value].
func (f *enumFlag) Set(val string) error {
	if !slices.Contains(f.choices, val) {
		return errors.Errorf("must be one of: %s", strings.Join(f.choices, ", "))
	}
	*f.val = val
	return nil
}

// Type implements [pflag.Value].
func (f *enumFlag) Type() string {
	return "string"
}

// Register adds root flags to given set.
func (opts *rootOptions) Register(set *pflag.FlagSet) {
	set.StringVar(&opts.config, "config", "", "Path to config file, defaults to "+defaultConfigName+" if present")
	set.Var(newEnumFlag(&opts.format, "pretty", "pretty", "json", "logfmt"), "format", "Output format: pretty, json or logfmt")
	set.Var(newEnumFlag(&opts.color, "auto", "auto", "always", "never"), "color", "Colorize output: auto, always or never")
	set.StringVar(&opts.logLevel, "log-level", "warn", "Log level")
}

func registerCompletions(cmd *cobra.Command) {
	errors.Must(true, cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{"pretty", "json", "logfmt"},
		cobra.ShellCompDirectiveNoFileComp,
	)))
	errors.Must(true, cmd.RegisterFlagCompletionFunc("color", cobra.FixedCompletions(
		[]string{"auto", "always", "never"},
		cobra.ShellCompDirectiveNoFileComp,
	)))
	errors.Must(true, cmd.RegisterFlagCompletionFunc("log-level", cobra.FixedCompletions(
		[]string{"debug", "info", "warn", "error"},
		cobra.ShellCompDirectiveNoFileComp,
	)))
}
