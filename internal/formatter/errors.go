package formatter

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds reported by Format. Match them with errors.Is.
var (
	ErrRuleComposition = errors.New("invalid rule document")
	ErrSourceParse     = errors.New("source does not parse")
	ErrIdempotence     = errors.New("formatting is not idempotent")
	ErrInvalidOutput   = errors.New("engine produced invalid UTF-8")
	ErrEngine          = errors.New("formatting engine failed")
)

// EngineError carries the diagnostics of a failed engine run.
type EngineError struct {
	Kind   error // one of the Err* kinds
	Stderr string
	Err    error
}

func (e *EngineError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Stderr != "" {
		fmt.Fprintf(&b, "\n%s", e.Stderr)
	}
	return b.String()
}

// Is reports whether target is the error's kind.
func (e *EngineError) Is(target error) bool {
	return target == e.Kind
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// classify maps engine diagnostics to an error kind.
func classify(stderr string) error {
	s := strings.ToLower(stderr)
	switch {
	case strings.Contains(s, "idempoten"):
		return ErrIdempotence
	case strings.Contains(s, "query"):
		return ErrRuleComposition
	case strings.Contains(s, "pars"):
		return ErrSourceParse
	default:
		return ErrEngine
	}
}
