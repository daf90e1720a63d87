package runner

import (
	"errors"
	"fmt"
	"os"
)

// Mode selects what happens to formatted output.
type Mode int

// Output modes.
const (
	ModeStdout  Mode = iota // print to stdout
	ModeToFile              // write to Options.Output
	ModeInPlace             // rewrite changed inputs
	ModeCheck               // report inputs that would change
)

func (m Mode) String() string {
	switch m {
	case ModeStdout:
		return "stdout"
	case ModeToFile:
		return "output file"
	case ModeInPlace:
		return "in-place"
	case ModeCheck:
		return "check"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ErrInvalidFlags reports an illegal combination of options.
var ErrInvalidFlags = errors.New("invalid flags")

func invalidFlags(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFlags, fmt.Sprintf(format, args...))
}

// Job is the validated unit of work for one invocation.
type Job struct {
	Mode    Mode
	Output  string
	Targets []Target
	// Multi is set when more than one input or any directory was named.
	Multi bool
	// FromStdin is set when no inputs were named.
	FromStdin       bool
	SkipIdempotence bool
	Diff            bool
}

// Plan validates opts and expands the inputs into a Job. All validation
// happens here, before any input is formatted.
func Plan(opts *Options) (*Job, error) {
	exclusive := 0
	for _, set := range []bool{opts.InPlace, opts.Check, opts.Output != ""} {
		if set {
			exclusive++
		}
	}
	if exclusive > 1 {
		return nil, invalidFlags("--in-place, --check and --output are mutually exclusive")
	}
	if opts.Diff && !opts.Check {
		return nil, invalidFlags("--diff requires --check")
	}
	if opts.ForceStdin && len(opts.Files) > 0 {
		return nil, invalidFlags("--stdin cannot be combined with input paths")
	}

	job := &Job{
		Mode:            modeFor(opts),
		Output:          opts.Output,
		SkipIdempotence: opts.SkipIdempotence,
		Diff:            opts.Diff,
	}

	if len(opts.Files) == 0 {
		if opts.InPlace {
			return nil, invalidFlags("--in-place requires an input file")
		}
		job.FromStdin = true
		return job, nil
	}

	job.Multi = len(opts.Files) > 1
	for _, path := range opts.Files {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			job.Multi = true
		}
	}

	if job.Multi {
		if opts.Output != "" {
			return nil, invalidFlags("--output cannot be used with multiple inputs or directories")
		}
		if !opts.InPlace && !opts.Check {
			return nil, invalidFlags("multiple inputs or directories require --in-place or --check")
		}
	}

	targets, err := Expand(opts.Files)
	if err != nil {
		return nil, err
	}
	job.Targets = targets
	return job, nil
}

func modeFor(opts *Options) Mode {
	switch {
	case opts.InPlace:
		return ModeInPlace
	case opts.Check:
		return ModeCheck
	case opts.Output != "":
		return ModeToFile
	default:
		return ModeStdout
	}
}
