// Package transformer implements the per-file structural rewrite pipeline:
// parse a source buffer, evaluate a structural query against the tree,
// materialise replacement text from a template bound to the query's
// captures, apply all matches bottom-up with incremental reparses, and
// reject any rewrite that introduces a syntax error.
package transformer

import (
	"log/slog"
	"sort"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/nymphium/graft/internal/languages"
)

// targetCapture is the privileged capture name designating the subtree to
// replace. When a query does not declare it, the first capture of each
// match is the target.
const targetCapture = "target"

// Modification describes one applied edit: the target's original byte and
// position ranges and the replacement text. QueryIndex and File are set by
// the caller orchestrating multiple rules and files.
type Modification struct {
	QueryIndex    int      `json:"query_index"`
	File          string   `json:"file,omitempty"`
	StartByte     uint     `json:"start_byte"`
	EndByte       uint     `json:"end_byte"`
	StartPosition Position `json:"start_position"`
	EndPosition   Position `json:"end_position"`
	Replacement   string   `json:"replacement"`
}

// matchRecord is a match frozen at collection time, independent of the
// tree it came from. It survives every subsequent reparse.
type matchRecord struct {
	startByte     uint
	endByte       uint
	startPosition tree_sitter.Point
	endPosition   tree_sitter.Point
	captures      []Capture
}

// Transformer owns a mutable source buffer, the parser bound to one
// grammar, and the current syntax tree. It is strictly single-threaded;
// calls to Apply must not overlap.
type Transformer struct {
	source   []byte
	parser   *tree_sitter.Parser
	tree     *tree_sitter.Tree
	language *tree_sitter.Language
	langName string

	failed bool
	log    []Modification

	closeOnce sync.Once
}

// New constructs a Transformer for source declared as label. The registry
// resolves the label, the parser is configured with the grammar, and an
// initial full parse produces the starting tree.
//
// Pre-existing syntax errors in source are tolerated; only the parser
// returning no tree at all fails construction.
func New(source []byte, label string) (*Transformer, error) {
	entry, err := languages.Lookup(label)
	if err != nil {
		return nil, err
	}

	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(entry.Language()); err != nil {
		parser.Close()
		return nil, err
	}

	buf := make([]byte, len(source))
	copy(buf, source)

	tree := parser.Parse(buf, nil)
	if tree == nil {
		parser.Close()
		return nil, ErrParseFailed
	}

	return &Transformer{
		source:   buf,
		parser:   parser,
		tree:     tree,
		language: entry.Language(),
		langName: entry.Name,
	}, nil
}

// LanguageName returns the display name of the grammar in use.
func (t *Transformer) LanguageName() string { return t.langName }

// Source returns a copy of the current buffer.
func (t *Transformer) Source() []byte {
	out := make([]byte, len(t.source))
	copy(out, t.source)
	return out
}

// Modifications returns the cumulative log of edits applied across all
// Apply calls.
func (t *Transformer) Modifications() []Modification {
	out := make([]Modification, len(t.log))
	copy(out, t.log)
	return out
}

// Close releases the parser and tree. The Transformer must not be used
// afterwards.
func (t *Transformer) Close() {
	t.closeOnce.Do(func() {
		if t.tree != nil {
			t.tree.Close()
		}
		if t.parser != nil {
			t.parser.Close()
		}
	})
}

// Apply compiles pattern against the grammar, evaluates it on the current
// tree, and rewrites every match from template, bottom-up. Each edit
// triggers an incremental reparse; a rewrite whose new tree contains error
// nodes aborts with *SyntaxError.
//
// Edits already applied when an error surfaces are not rolled back: the
// buffer and tree keep their post-edit state and the Transformer becomes
// unusable for further Apply calls.
func (t *Transformer) Apply(pattern, template string) ([]Modification, error) {
	if t.failed {
		return nil, ErrTransformerFailed
	}

	query, qErr := tree_sitter.NewQuery(t.language, pattern)
	if qErr != nil {
		return nil, &QueryCompileError{Pattern: pattern, Err: qErr}
	}
	defer query.Close()

	matches := t.collect(query)

	// Bottom-up: strictly decreasing start byte keeps the byte offsets of
	// unapplied matches valid without fix-up. Ties break on end byte
	// ascending so inner matches at the same anchor apply first; the
	// enclosing match then splices over the inner rewrite (see the delta
	// tracking below) and its frozen captures rebuild the whole region.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].startByte != matches[j].startByte {
			return matches[i].startByte > matches[j].startByte
		}
		return matches[i].endByte < matches[j].endByte
	})

	if err := checkOverlap(matches); err != nil {
		return nil, err
	}

	slog.Debug("applying matches", "count", len(matches), "language", t.langName)

	// Edits already applied inside a pending match's range (strictly
	// nested matches, applied inner-first) shift that match's end in the
	// current buffer. Track each edit's byte delta keyed by its frozen
	// coordinates so enclosing matches splice the full rewritten region.
	type appliedEdit struct {
		startByte  uint
		oldEndByte uint
		delta      int
	}
	var applied []appliedEdit

	mods := make([]Modification, 0, len(matches))
	for _, m := range matches {
		replacement := ExpandTemplate(template, m.captures)

		endByte := m.endByte
		for _, e := range applied {
			if e.startByte >= m.startByte && e.oldEndByte <= m.endByte {
				endByte = uint(int(endByte) + e.delta)
			}
		}
		oldEndPosition := m.endPosition
		if endByte != m.endByte {
			oldEndPosition = advancePosition(m.startPosition, t.source[m.startByte:endByte])
		}

		edit := tree_sitter.InputEdit{
			StartByte:      m.startByte,
			OldEndByte:     endByte,
			NewEndByte:     m.startByte + uint(len(replacement)),
			StartPosition:  m.startPosition,
			OldEndPosition: oldEndPosition,
			NewEndPosition: advancePosition(m.startPosition, []byte(replacement)),
		}
		t.tree.Edit(&edit)

		t.source = splice(t.source, m.startByte, endByte, replacement)

		newTree := t.parser.Parse(t.source, t.tree)
		if newTree == nil {
			t.failed = true
			return nil, ErrReparseFailed
		}
		t.tree.Close()
		t.tree = newTree

		if t.tree.RootNode().HasError() {
			t.failed = true
			return nil, &SyntaxError{Replacement: replacement, Offset: m.startByte}
		}

		mod := Modification{
			StartByte:     m.startByte,
			EndByte:       m.endByte,
			StartPosition: positionFromPoint(m.startPosition),
			EndPosition:   positionFromPoint(m.endPosition),
			Replacement:   replacement,
		}
		mods = append(mods, mod)
		t.log = append(t.log, mod)
		applied = append(applied, appliedEdit{
			startByte:  m.startByte,
			oldEndByte: m.endByte,
			delta:      len(replacement) - int(endByte-m.startByte),
		})
	}

	return mods, nil
}

// collect evaluates the query on the current tree and freezes every match:
// target byte/position ranges plus the capture texts sliced from the
// buffer at this moment. Matches with no captures are skipped; when the
// query declares a target capture, matches that do not bind it are skipped
// too.
func (t *Transformer) collect(query *tree_sitter.Query) []matchRecord {
	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	captureNames := query.CaptureNames()
	targetIndex := -1
	for i, name := range captureNames {
		if name == targetCapture {
			targetIndex = i
			break
		}
	}

	var out []matchRecord
	iter := cursor.Matches(query, t.tree.RootNode(), t.source)
	for {
		m := iter.Next()
		if m == nil {
			break
		}
		if !m.SatisfiesTextPredicate(query, nil, nil, t.source) {
			continue
		}
		if len(m.Captures) == 0 {
			continue
		}

		var target *tree_sitter.Node
		if targetIndex >= 0 {
			for i := range m.Captures {
				if int(m.Captures[i].Index) == targetIndex {
					target = &m.Captures[i].Node
					break
				}
			}
			if target == nil {
				continue
			}
		} else {
			target = &m.Captures[0].Node
		}

		captures := make([]Capture, 0, len(m.Captures))
		for i := range m.Captures {
			c := &m.Captures[i]
			captures = append(captures, Capture{
				Name: captureNames[c.Index],
				Text: c.Node.Utf8Text(t.source),
			})
		}

		out = append(out, matchRecord{
			startByte:     target.StartByte(),
			endByte:       target.EndByte(),
			startPosition: target.StartPosition(),
			endPosition:   target.EndPosition(),
			captures:      captures,
		})
	}
	return out
}

// checkOverlap rejects partially overlapping target ranges. matches must
// already be sorted by start byte descending, end byte ascending. Strictly
// nested ranges (including nests sharing a start byte) and disjoint ranges
// are fine; ranges that intersect without containment would corrupt the
// buffer once the outer one is rewritten.
func checkOverlap(matches []matchRecord) error {
	// Walk ascending (reverse of the apply order, so enclosing ranges are
	// seen before same-start inner ones) and keep a stack of open ranges;
	// a match reaching past the end of its innermost enclosing range is a
	// partial overlap.
	var stack []matchRecord
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		for len(stack) > 0 && stack[len(stack)-1].endByte <= m.startByte {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 && m.endByte > stack[len(stack)-1].endByte {
			return ErrOverlappingMatches
		}
		stack = append(stack, m)
	}
	return nil
}

// splice replaces source[start:end) with replacement, returning a new
// buffer.
func splice(source []byte, start, end uint, replacement string) []byte {
	out := make([]byte, 0, uint(len(source))-(end-start)+uint(len(replacement)))
	out = append(out, source[:start]...)
	out = append(out, replacement...)
	out = append(out, source[end:]...)
	return out
}
