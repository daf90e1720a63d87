// Package formatter runs the external formatting engine over Elm source and
// enforces the guarantees elmfmt makes about its output.
package formatter

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/donaldgifford/elmfmt/internal/parser"
	"github.com/donaldgifford/elmfmt/internal/rules"
)

// Engine applies a rule document to source text once.
type Engine interface {
	Format(ctx context.Context, source, rules, indent string) (string, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, source, rules, indent string) (string, error)

// Format calls f.
func (f EngineFunc) Format(ctx context.Context, source, rules, indent string) (string, error) {
	return f(ctx, source, rules, indent)
}

// SyntaxFunc checks source before it is handed to the engine.
type SyntaxFunc func(ctx context.Context, src []byte) error

// Options controls a single Format call.
type Options struct {
	// SkipIdempotence disables the second pass over the engine's output.
	SkipIdempotence bool
}

// Formatter wraps an Engine with validation of its inputs and outputs.
type Formatter struct {
	Engine Engine
	// Syntax defaults to parser.Check.
	Syntax SyntaxFunc
}

// New returns a Formatter for e.
func New(e Engine) *Formatter {
	return &Formatter{Engine: e, Syntax: parser.Check}
}

// Format formats source with doc, indenting by indent. Unless
// opts.SkipIdempotence is set, the output is formatted again and must come
// back unchanged.
func (f *Formatter) Format(ctx context.Context, source string, doc rules.Document, indent string, opts Options) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRuleComposition, err)
	}

	syntax := f.Syntax
	if syntax == nil {
		syntax = parser.Check
	}
	if err := syntax(ctx, []byte(source)); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSourceParse, err)
	}

	first, err := f.run(ctx, source, doc, indent)
	if err != nil {
		return "", err
	}

	if opts.SkipIdempotence {
		return first, nil
	}

	second, err := f.run(ctx, first, doc, indent)
	if err != nil {
		return "", fmt.Errorf("%w: second pass: %w", ErrIdempotence, err)
	}
	if second != first {
		return "", fmt.Errorf("%w: output changed on second pass at line %d",
			ErrIdempotence, firstDifferingLine(first, second))
	}

	return first, nil
}

func (f *Formatter) run(ctx context.Context, source string, doc rules.Document, indent string) (string, error) {
	out, err := f.Engine.Format(ctx, source, doc.String(), indent)
	if err != nil {
		var engErr *EngineError
		if errors.As(err, &engErr) {
			return "", err
		}
		return "", &EngineError{Kind: ErrEngine, Err: err}
	}
	if !utf8.ValidString(out) {
		return "", ErrInvalidOutput
	}
	return out, nil
}

// firstDifferingLine returns the 1-based line where a and b first differ.
func firstDifferingLine(a, b string) int {
	line := 1
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return line
		}
		if a[i] == '\n' {
			line++
		}
	}
	return line
}
