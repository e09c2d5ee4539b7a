package labtable

import (
	"encoding/json"
	"errors"
)

var (
	// ErrTableTooSmall is returned when fewer than 2 rows or 2 columns survive normalization.
	ErrTableTooSmall = errors.New("table too small")

	// ErrInsufficientMapping is returned when content and header rules map fewer than 2 roles.
	ErrInsufficientMapping = errors.New("insufficient column mapping")
)

// Placeholder tokens that the table extractor emits for empty cells.
const (
	placeholderNone  = "None"
	placeholderEmpty = ""
)

// Cell is one OCR'd table cell. An absent cell (Present == false) carries no
// text at all, which is distinct from a present zero-length string.
type Cell struct {
	Text    string
	Present bool
}

// Text returns a present cell holding s.
func Text(s string) Cell {
	return Cell{Text: s, Present: true}
}

// Absent returns a cell with no value.
func Absent() Cell {
	return Cell{}
}

// IsPlaceholder reports whether the cell is absent or holds a placeholder token.
func (c Cell) IsPlaceholder() bool {
	return !c.Present || c.Text == placeholderNone || c.Text == placeholderEmpty
}

// MarshalJSON encodes an absent cell as null and a present cell as a string.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Present {
		return []byte("null"), nil
	}
	return json.Marshal(c.Text)
}

// UnmarshalJSON decodes null as absent and a string as present.
func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Cell{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = Text(s)
	return nil
}

// RawTable is a grid of OCR'd cells with an inferred header row.
//
// Header holds the column labels and may be shorter than the widest row, in
// which case the missing labels are treated as "". Rows may be ragged before
// normalization.
type RawTable struct {
	Header []string `json:"header"`
	Rows   [][]Cell `json:"rows"`
}

// NewRawTable builds a table from plain strings. Every string becomes a
// present cell, so "" and "None" are still subject to normalization.
func NewRawTable(header []string, rows [][]string) RawTable {
	t := RawTable{Header: append([]string(nil), header...)}
	t.Rows = make([][]Cell, len(rows))
	for i, row := range rows {
		cells := make([]Cell, len(row))
		for j, s := range row {
			cells[j] = Text(s)
		}
		t.Rows[i] = cells
	}
	return t
}

// NumRows returns the number of rows.
func (t RawTable) NumRows() int {
	return len(t.Rows)
}

// NumCols returns the width of the widest row or of the header, whichever is larger.
func (t RawTable) NumCols() int {
	n := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// HeaderLabel returns the header text for column col, or "" if there is none.
func (t RawTable) HeaderLabel(col int) string {
	if col < 0 || col >= len(t.Header) {
		return ""
	}
	return t.Header[col]
}

// Cell returns the cell at (row, col); out-of-range positions are absent.
func (t RawTable) Cell(row, col int) Cell {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return Absent()
	}
	return t.Rows[row][col]
}

// Column returns the present cell strings of column col in row order.
func (t RawTable) Column(col int) []string {
	values := make([]string, 0, len(t.Rows))
	for r := range t.Rows {
		if c := t.Cell(r, col); c.Present {
			values = append(values, c.Text)
		}
	}
	return values
}
