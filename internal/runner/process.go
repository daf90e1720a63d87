package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"
)

// FormatOutcome is the result of formatting one input.
type FormatOutcome struct {
	Target    Target
	Original  string
	Formatted string
	Changed   bool
	// Written is set when the input was rewritten in place.
	Written bool
	Err     error
}

// Summary folds the outcomes of a run.
type Summary struct {
	Mode    Mode
	Files   int
	Changed int
	Failed  int
}

// Summarize counts outcomes.
func Summarize(outcomes []FormatOutcome, mode Mode) Summary {
	s := Summary{Mode: mode, Files: len(outcomes)}
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			s.Failed++
		case o.Changed:
			s.Changed++
		}
	}
	return s
}

// ExitCode is ExitFailure if any input failed, or if a check found an
// input that needs formatting.
func (s Summary) ExitCode() int {
	if s.Failed > 0 || (s.Mode == ModeCheck && s.Changed > 0) {
		return ExitFailure
	}
	return ExitOK
}

func (s Summary) String() string {
	switch s.Mode {
	case ModeCheck:
		return fmt.Sprintf("checked %d files: %d would be reformatted, %d failed", s.Files, s.Changed, s.Failed)
	default:
		return fmt.Sprintf("formatted %d files: %d reformatted, %d failed", s.Files, s.Changed, s.Failed)
	}
}

// process formats one file with the config nearest to it. In in-place mode
// a changed file is rewritten; an unchanged file is left untouched.
func (r *run) process(ctx context.Context, t Target) FormatOutcome {
	o := FormatOutcome{Target: t}
	start := time.Now()

	src, err := os.ReadFile(t.Path)
	if err != nil {
		o.Err = err
		return o
	}
	o.Original = string(src)

	o.Formatted, err = r.formatSource(ctx, filepath.Dir(t.Path), o.Original)
	if err != nil {
		o.Err = err
		return o
	}
	o.Changed = o.Formatted != o.Original

	if r.job.Mode == ModeInPlace && o.Changed {
		if err := writeInPlace(t.Path, o.Formatted); err != nil {
			o.Err = err
			return o
		}
		o.Written = true
	}

	r.logger.Info("formatted", "path", t.Display, "changed", o.Changed, "took", time.Since(start))
	return o
}

// writeInPlace replaces path's content, keeping its permissions.
func writeInPlace(path, content string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// runBatch formats every target on a bounded pool of workers. Outcomes are
// collected by index and reported in target order once all have finished,
// so output and exit status do not depend on scheduling.
func (r *run) runBatch(ctx context.Context) int {
	targets := r.job.Targets
	if len(targets) == 0 {
		writeErr(r.opts.Stderr, "elmfmt: no %s files found\n", Extension)
		return ExitOK
	}

	outcomes := make([]FormatOutcome, len(targets))

	var g errgroup.Group
	g.SetLimit(r.opts.Jobs)
	for i, t := range targets {
		g.Go(func() error {
			outcomes[i] = r.process(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		r.report(o)
	}

	summary := Summarize(outcomes, r.job.Mode)
	if !r.opts.Quiet {
		writeErr(r.opts.Stderr, "%s\n", summary)
	}
	return summary.ExitCode()
}

// report writes the user-facing lines for one outcome.
func (r *run) report(o FormatOutcome) {
	if o.Err != nil {
		writeErr(r.opts.Stderr, "elmfmt: %s: %v\n", o.Target.Display, o.Err)
		return
	}
	if !o.Changed {
		return
	}

	switch r.job.Mode {
	case ModeCheck:
		if !r.opts.Quiet {
			writeErr(r.opts.Stderr, "would reformat %s\n", o.Target.Display)
		}
		if r.job.Diff {
			writeOut(r.opts.Stdout, unifiedDiff(o.Target.Display, o.Original, o.Formatted))
		}
	case ModeInPlace:
		if o.Written && !r.opts.Quiet {
			writeErr(r.opts.Stderr, "reformatted %s\n", o.Target.Display)
		}
	}
}

// unifiedDiff returns the changes from oldText to newText.
func unifiedDiff(name, oldText, newText string) string {
	d, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(newText),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return d
}
