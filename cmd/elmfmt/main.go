// Package main is the entry point for elmfmt.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/elmfmt/internal/config"
	"github.com/donaldgifford/elmfmt/internal/runner"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:]))
}

// execute parses args and runs the formatter, returning the exit code.
func execute(ctx context.Context, args []string) int {
	opts := &runner.Options{}
	var printConfig bool
	exitCode := runner.ExitOK

	cmd := &cobra.Command{
		Use:   "elmfmt [flags] [files or directories...]",
		Short: "Format Elm source code",
		Long: `Format Elm source code with a configurable, rule-driven pretty-printer.

With no inputs, reads from stdin and writes to stdout. Directories are
searched recursively for .elm files and require --in-place or --check.
Style settings are read from the nearest elmfmt.yaml above each input.`,
		Version:       fmt.Sprintf("%s (%s) %s", version, commit, date),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Files = args
			opts.Stdin = cmd.InOrStdin()
			opts.Stdout = cmd.OutOrStdout()
			opts.Stderr = cmd.ErrOrStderr()

			if printConfig {
				exitCode = runner.PrintConfig(opts.Stdout, opts.Stderr, args, opts.ConfigPath)
				return nil
			}
			exitCode = runner.Run(cmd.Context(), opts)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Output, "output", "o", "", "write formatted output to `file`")
	f.BoolVarP(&opts.InPlace, "in-place", "i", false, "rewrite inputs that are not formatted")
	f.BoolVarP(&opts.Check, "check", "c", false, "report inputs that are not formatted and exit 1 if any")
	f.BoolVar(&opts.Diff, "diff", false, "with --check, print a unified diff of the changes")
	f.BoolVar(&opts.SkipIdempotence, "skip-idempotence", false, "do not verify that formatting is stable")
	f.BoolVar(&opts.ForceStdin, "stdin", false, "read from stdin even when it is a terminal")
	f.StringVar(&opts.ConfigPath, "config", "", "use this config `file` instead of searching for "+config.FileName)
	f.StringVar(&opts.Engine, "engine", "", "formatting engine `command` (default $ELMFMT_ENGINE or topiary)")
	f.IntVarP(&opts.Jobs, "jobs", "j", 0, "number of files formatted in parallel (default GOMAXPROCS)")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress per-file and summary output")
	f.CountVarP(&opts.Verbosity, "verbose", "v", "log progress to stderr (repeat for debug output)")
	f.BoolVar(&printConfig, "print-config", false, "print the config that applies to each input and exit")

	// Accepted for command-line compatibility with elm-format.
	f.Bool("yes", false, "")
	f.String("elm-version", "", "")
	_ = f.MarkHidden("yes")
	_ = f.MarkHidden("elm-version")

	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "elmfmt: %v\n", err)
		return runner.ExitFailure
	}
	return exitCode
}
