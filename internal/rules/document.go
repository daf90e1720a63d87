package rules

import (
	"fmt"
	"regexp"
)

// placeholderRe matches any reserved token, known or not.
var placeholderRe = regexp.MustCompile(`__[A-Z][A-Z0-9_]*__`)

// Document is a composed rule document in the engine's query language.
type Document string

func (d Document) String() string {
	return string(d)
}

// CompositionError reports a rule document that must not reach the engine.
type CompositionError struct {
	Line   int
	Reason string
}

func (e *CompositionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("rule document line %d: %s", e.Line, e.Reason)
	}
	return "rule document: " + e.Reason
}

// Validate checks the document is structurally sound: no placeholder left
// unresolved, every string terminated, and parentheses and brackets
// balanced outside strings and comments.
func (d Document) Validate() error {
	text := string(d)

	if loc := placeholderRe.FindStringIndex(text); loc != nil {
		return &CompositionError{
			Line:   lineAt(text, loc[0]),
			Reason: fmt.Sprintf("unresolved placeholder %s", text[loc[0]:loc[1]]),
		}
	}

	var stack []byte
	var opened []int
	line := 1

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '\n':
			line++
		case ';':
			for i+1 < len(text) && text[i+1] != '\n' {
				i++
			}
		case '"':
			start := line
			i++
			for ; i < len(text) && text[i] != '"'; i++ {
				switch text[i] {
				case '\\':
					i++
				case '\n':
					return &CompositionError{Line: start, Reason: "unterminated string"}
				}
			}
			if i >= len(text) {
				return &CompositionError{Line: start, Reason: "unterminated string"}
			}
		case '(', '[':
			stack = append(stack, c)
			opened = append(opened, line)
		case ')', ']':
			want := byte('(')
			if c == ']' {
				want = '['
			}
			if len(stack) == 0 || stack[len(stack)-1] != want {
				return &CompositionError{Line: line, Reason: fmt.Sprintf("unexpected %q", c)}
			}
			stack = stack[:len(stack)-1]
			opened = opened[:len(opened)-1]
		}
	}

	if len(stack) > 0 {
		return &CompositionError{
			Line:   opened[len(opened)-1],
			Reason: fmt.Sprintf("unclosed %q", stack[len(stack)-1]),
		}
	}
	return nil
}

func lineAt(text string, offset int) int {
	line := 1
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
		}
	}
	return line
}
