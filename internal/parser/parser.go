// Package parser checks Elm source against the tree-sitter Elm grammar.
package parser

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/elm"
)

// Parsers are not safe for concurrent use; each call borrows one.
var parsers = sync.Pool{
	New: func() any {
		p := sitter.NewParser()
		p.SetLanguage(elm.GetLanguage())
		return p
	},
}

// SyntaxError locates the first construct the grammar could not parse.
// Line and Column are 1-based.
type SyntaxError struct {
	Line    int
	Column  int
	Missing string // token the parser expected, if any
}

func (e *SyntaxError) Error() string {
	if e.Missing != "" {
		return fmt.Sprintf("%d:%d: syntax error: missing %s", e.Line, e.Column, e.Missing)
	}
	return fmt.Sprintf("%d:%d: syntax error", e.Line, e.Column)
}

// Check parses src and returns a *SyntaxError for the first error in the
// tree, or nil if src is valid Elm.
func Check(ctx context.Context, src []byte) error {
	p := parsers.Get().(*sitter.Parser)
	defer parsers.Put(p)

	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}

	n := firstError(root)
	if n == nil {
		// HasError without a locatable node; report the start of the file.
		return &SyntaxError{Line: 1, Column: 1}
	}

	pt := n.StartPoint()
	serr := &SyntaxError{Line: int(pt.Row) + 1, Column: int(pt.Column) + 1}
	if n.IsMissing() {
		serr.Missing = n.Type()
	}
	return serr
}

// firstError returns the earliest ERROR or MISSING node under n.
func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := firstError(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
