package transformer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// positionAt recomputes the position mapping from scratch: row is the
// count of line feeds before offset, column the bytes since the last one.
func positionAt(buf []byte, offset int) tree_sitter.Point {
	prefix := buf[:offset]
	row := uint(bytes.Count(prefix, []byte("\n")))
	last := bytes.LastIndexByte(prefix, '\n')
	return tree_sitter.Point{Row: row, Column: uint(offset - last - 1)}
}

func TestAdvancePositionMatchesRecomputedMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		text   string
	}{
		{"empty text", "abc", ""},
		{"single line", "abc", "def"},
		{"text with newline", "abc", "de\nf"},
		{"text ending in newline", "abc", "def\n"},
		{"prefix with newlines", "a\nbc\nd", "ef\ng"},
		{"only newlines", "", "\n\n\n"},
		{"multibyte bytes count individually", "héllo\n", "wörld"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := []byte(tt.prefix + tt.text)
			start := positionAt(buf, len(tt.prefix))
			want := positionAt(buf, len(buf))
			require.Equal(t, want, advancePosition(start, []byte(tt.text)))
		})
	}
}

func TestAdvancePositionFromOrigin(t *testing.T) {
	t.Parallel()

	got := advancePosition(tree_sitter.Point{}, []byte("one\ntwo\nthree"))
	require.Equal(t, tree_sitter.Point{Row: 2, Column: 5}, got)
}

func TestPositionMonotonicity(t *testing.T) {
	t.Parallel()

	buf := []byte("a\nbb\n\nccc\nd")
	prev := tree_sitter.Point{}
	for offset := 1; offset <= len(buf); offset++ {
		cur := positionAt(buf, offset)
		less := cur.Row > prev.Row || (cur.Row == prev.Row && cur.Column >= prev.Column)
		require.True(t, less, "position at %d went backwards: %v -> %v", offset, prev, cur)
		prev = cur
	}
}
