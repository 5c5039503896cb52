package transformer

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Position is a zero-based (row, column) pair. Row counts line feeds
// preceding the offset; column counts bytes since the last line feed or
// the buffer start.
type Position struct {
	Row    uint `json:"row"`
	Column uint `json:"column"`
}

func positionFromPoint(p tree_sitter.Point) Position {
	return Position{Row: p.Row, Column: p.Column}
}

// advancePosition walks text byte by byte from start: a line feed
// increments the row and resets the column, any other byte increments the
// column. The result equals recomputing the position mapping from scratch
// on the concatenated buffer.
func advancePosition(start tree_sitter.Point, text []byte) tree_sitter.Point {
	row, column := start.Row, start.Column
	for _, b := range text {
		if b == '\n' {
			row++
			column = 0
		} else {
			column++
		}
	}
	return tree_sitter.Point{Row: row, Column: column}
}
