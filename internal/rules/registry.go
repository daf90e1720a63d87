// Package rules composes the rule document handed to the formatting engine
// from embedded style fragments.
package rules

import (
	"embed"
	"fmt"

	"github.com/donaldgifford/elmfmt/internal/config"
)

//go:embed queries/*.scm
var queryFS embed.FS

// baseFragment holds the rules shared by every style.
var baseFragment string

var (
	ifFragments    = map[config.IfStyle]string{}
	tupleFragments = map[config.TupleStyle]string{}
)

// mustRead returns an embedded fragment. Missing fragments are a build
// defect, so it panics.
func mustRead(name string) string {
	data, err := queryFS.ReadFile("queries/" + name)
	if err != nil {
		panic(fmt.Sprintf("rules: reading embedded fragment %s: %v", name, err))
	}
	return string(data)
}

// RegisterIfFragment sets the fragment used for an if style.
func RegisterIfFragment(style config.IfStyle, name string) {
	ifFragments[style] = mustRead(name)
}

// RegisterTupleFragment sets the fragment used for a tuple style.
func RegisterTupleFragment(style config.TupleStyle, name string) {
	tupleFragments[style] = mustRead(name)
}

// IfFragment returns the fragment registered for style.
func IfFragment(style config.IfStyle) (string, error) {
	f, ok := ifFragments[style]
	if !ok {
		return "", &CompositionError{Reason: fmt.Sprintf("no fragment for if style %v", style)}
	}
	return f, nil
}

// TupleFragment returns the fragment registered for style.
func TupleFragment(style config.TupleStyle) (string, error) {
	f, ok := tupleFragments[style]
	if !ok {
		return "", &CompositionError{Reason: fmt.Sprintf("no fragment for tuple style %v", style)}
	}
	return f, nil
}

// BaseFragment returns the rules shared by every style.
func BaseFragment() string {
	return baseFragment
}
