package rules

import (
	"strings"

	"github.com/donaldgifford/elmfmt/internal/config"
)

// Placeholder tokens replaced during composition.
const (
	DeclPlaceholder    = "__DECL_DELIMITER__"
	SectionPlaceholder = "__SECTION_DELIMITER__"
)

// escapedNewline is a line break as written inside a quoted rule literal.
const escapedNewline = `\n`

// fragmentSeparator joins fragments with one blank line.
const fragmentSeparator = "\n\n"

// DeclDelimiter returns the separator emitted after a top-level declaration.
// blankLines counts empty lines, so the separator carries one extra line
// break to terminate the declaration itself.
func DeclDelimiter(blankLines int) string {
	return strings.Repeat(escapedNewline, blankLines+1)
}

// SectionDelimiter returns the separator emitted after a section comment.
// The comment already ends its own line, so it is one break shorter than
// DeclDelimiter.
func SectionDelimiter(blankLines int) string {
	return strings.Repeat(escapedNewline, blankLines)
}

// Compose builds the rule document for cfg: the base rules, then the if
// style fragment, then the tuple style fragment, with every placeholder
// substituted.
func Compose(cfg config.StyleConfig) (Document, error) {
	ifRules, err := IfFragment(cfg.IfStyle)
	if err != nil {
		return "", err
	}
	tupleRules, err := TupleFragment(cfg.TupleStyle)
	if err != nil {
		return "", err
	}

	text := strings.Join([]string{BaseFragment(), ifRules, tupleRules}, fragmentSeparator)

	r := strings.NewReplacer(
		DeclPlaceholder, DeclDelimiter(cfg.NewlinesBetweenDecls),
		SectionPlaceholder, SectionDelimiter(cfg.NewlinesBetweenDecls),
	)
	doc := Document(r.Replace(text))

	if err := doc.Validate(); err != nil {
		return "", err
	}
	return doc, nil
}
