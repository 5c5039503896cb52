package transformer

import (
	"errors"
	"fmt"
)

var (
	// ErrParseFailed indicates the parser returned no tree for the initial
	// full parse. Distinct from a tree that merely contains error nodes;
	// those are tolerated as user input.
	ErrParseFailed = errors.New("parser returned no tree")

	// ErrReparseFailed indicates an incremental reparse returned no tree.
	ErrReparseFailed = errors.New("incremental reparse returned no tree")

	// ErrTransformerFailed indicates Apply was called after a previous
	// apply left the transformer in its terminal failed state.
	ErrTransformerFailed = errors.New("transformer is in a failed state")

	// ErrOverlappingMatches indicates two match targets intersect without
	// one containing the other. Applying both would corrupt the buffer,
	// so the whole apply is rejected before any edit.
	ErrOverlappingMatches = errors.New("match ranges overlap without containment")
)

// QueryCompileError wraps the parser framework's diagnostic for a query
// pattern that failed to compile against the grammar.
type QueryCompileError struct {
	Pattern string
	Err     error
}

func (e *QueryCompileError) Error() string {
	return fmt.Sprintf("compile query %q: %v", e.Pattern, e.Err)
}

func (e *QueryCompileError) Unwrap() error { return e.Err }

// SyntaxError reports a rewrite whose re-parsed tree contains error nodes.
// It carries the offending replacement text and the byte offset of the edit.
type SyntaxError struct {
	Replacement string
	Offset      uint
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("rewrite produced a syntax error at byte %d: replacement %q", e.Offset, e.Replacement)
}
