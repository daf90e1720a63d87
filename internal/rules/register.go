package rules

import "github.com/donaldgifford/elmfmt/internal/config"

func init() {
	baseFragment = mustRead("elm.scm")

	// Every style value maps to exactly one fragment.
	RegisterIfFragment(config.IfIndented, "if_indented.scm")
	RegisterIfFragment(config.IfHanging, "if_hanging.scm")

	RegisterTupleFragment(config.TupleCompact, "tuple_compact.scm")
	RegisterTupleFragment(config.TupleSpaced, "tuple_spaced.scm")
}
