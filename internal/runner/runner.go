// Package runner orchestrates the resolve -> compose -> format -> output
// pipeline over one or many inputs.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/donaldgifford/elmfmt/internal/config"
	"github.com/donaldgifford/elmfmt/internal/formatter"
	"github.com/donaldgifford/elmfmt/internal/rules"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// stdinName stands in for a path when formatting standard input.
const stdinName = "<stdin>"

// ErrTerminalInput is returned when input would be read from an
// interactive terminal without --stdin.
var ErrTerminalInput = errors.New("no input files given and stdin is a terminal (use --stdin to read it anyway)")

// Options configures the runner behavior.
type Options struct {
	Files           []string
	Output          string
	InPlace         bool
	Check           bool
	Diff            bool
	ForceStdin      bool
	SkipIdempotence bool
	ConfigPath      string
	// Engine is the engine command; see formatter.NewTopiary.
	Engine    string
	Jobs      int
	Quiet     bool
	Verbosity int

	// Formatter overrides the Topiary-backed formatter.
	Formatter *formatter.Formatter

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (opts *Options) setDefaults() {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	if opts.Formatter == nil {
		opts.Formatter = formatter.New(formatter.NewTopiary(opts.Engine))
	}
}

// Run executes the format pipeline and returns an exit code.
func Run(ctx context.Context, opts *Options) int {
	opts.setDefaults()
	logger := NewLogger(opts.Stderr, opts.Verbosity)

	job, err := Plan(opts)
	if err != nil {
		writeErr(opts.Stderr, "elmfmt: %v\n", err)
		return ExitFailure
	}
	logger.Debug("planned job", "mode", job.Mode, "targets", len(job.Targets), "multi", job.Multi)

	r := &run{
		opts:      opts,
		job:       job,
		resolver:  config.NewResolver(opts.ConfigPath),
		formatter: opts.Formatter,
		logger:    logger,
		docs:      make(map[config.StyleConfig]rules.Document),
	}

	switch {
	case job.FromStdin:
		return r.runStdin(ctx)
	case job.Multi:
		return r.runBatch(ctx)
	default:
		return r.runSingle(ctx)
	}
}

// run holds the state shared by every file of one invocation.
type run struct {
	opts      *Options
	job       *Job
	resolver  *config.Resolver
	formatter *formatter.Formatter
	logger    *log.Logger

	mu   sync.Mutex
	docs map[config.StyleConfig]rules.Document
}

// document returns the rule document for cfg, composing it once per
// distinct config.
func (r *run) document(cfg config.StyleConfig) (rules.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if doc, ok := r.docs[cfg]; ok {
		return doc, nil
	}
	doc, err := rules.Compose(cfg)
	if err != nil {
		return "", err
	}
	r.logger.Debug("composed rule document",
		"if_style", cfg.IfStyle, "tuple_style", cfg.TupleStyle,
		"newlines_between_decls", cfg.NewlinesBetweenDecls, "bytes", len(doc))
	r.docs[cfg] = doc
	return doc, nil
}

// formatSource formats src using the config that applies to dir.
func (r *run) formatSource(ctx context.Context, dir, src string) (string, error) {
	res, err := r.resolver.Lookup(dir)
	if err != nil {
		return "", err
	}
	r.logger.Debug("resolved config", "dir", dir, "file", res.Path)

	doc, err := r.document(res.Config)
	if err != nil {
		return "", err
	}

	return r.formatter.Format(ctx, src, doc, res.Config.IndentString(), formatter.Options{
		SkipIdempotence: r.job.SkipIdempotence,
	})
}

func (r *run) runStdin(ctx context.Context) int {
	if !r.opts.ForceStdin && isTerminal(r.opts.Stdin) {
		writeErr(r.opts.Stderr, "elmfmt: %v\n", ErrTerminalInput)
		return ExitFailure
	}

	src, err := io.ReadAll(r.opts.Stdin)
	if err != nil {
		writeErr(r.opts.Stderr, "elmfmt: reading stdin: %v\n", err)
		return ExitFailure
	}

	input := string(src)
	output, err := r.formatSource(ctx, "", input)
	if err != nil {
		writeErr(r.opts.Stderr, "elmfmt: %s: %v\n", stdinName, err)
		return ExitFailure
	}

	o := FormatOutcome{
		Target:    Target{Display: stdinName},
		Original:  input,
		Formatted: output,
		Changed:   input != output,
	}
	return r.emit(o)
}

func (r *run) runSingle(ctx context.Context) int {
	o := r.process(ctx, r.job.Targets[0])
	if o.Err != nil {
		r.report(o)
		return ExitFailure
	}
	return r.emit(o)
}

// emit delivers a single-target outcome according to the job's mode.
func (r *run) emit(o FormatOutcome) int {
	switch r.job.Mode {
	case ModeCheck, ModeInPlace:
		r.report(o)
		return Summarize([]FormatOutcome{o}, r.job.Mode).ExitCode()

	case ModeToFile:
		if err := os.WriteFile(r.job.Output, []byte(o.Formatted), 0o644); err != nil {
			writeErr(r.opts.Stderr, "elmfmt: writing %s: %v\n", r.job.Output, err)
			return ExitFailure
		}
		return ExitOK

	default:
		writeOut(r.opts.Stdout, o.Formatted)
		return ExitOK
	}
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewLogger returns the diagnostic logger. verbosity 0 shows warnings,
// 1 adds info, 2 and above add debug output.
func NewLogger(w io.Writer, verbosity int) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "elmfmt",
		ReportTimestamp: false,
	})

	switch {
	case verbosity <= 0:
		logger.SetLevel(log.WarnLevel)
	case verbosity == 1:
		logger.SetLevel(log.InfoLevel)
	default:
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// writeOut writes to stdout.
func writeOut(w io.Writer, s string) {
	fmt.Fprint(w, s)
}

// writeErr formats and writes to stderr.
func writeErr(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
