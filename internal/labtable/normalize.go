package labtable

import "fmt"

// Normalize cleans a raw table and rejects it if too little survives.
//
// Steps, in order:
//  1. Pad ragged rows (and the header) to a common width with absent cells.
//  2. Replace cells holding the placeholder tokens "None" or "" with absent.
//  3. Drop rows in which every cell is absent.
//  4. Drop columns in which every surviving cell is absent, together with
//     their header labels.
//  5. Reject the result with ErrTableTooSmall if it has fewer than 2 rows or
//     fewer than 2 columns.
//
// Surviving rows and columns keep their relative order. Normalize never
// modifies its input and is idempotent: normalizing its own output returns an
// identical table.
func Normalize(t RawTable) (RawTable, error) {
	width := t.NumCols()

	rows := make([][]Cell, 0, len(t.Rows))
	for r := range t.Rows {
		row := make([]Cell, width)
		empty := true
		for c := 0; c < width; c++ {
			cell := t.Cell(r, c)
			if cell.IsPlaceholder() {
				cell = Absent()
			} else {
				empty = false
			}
			row[c] = cell
		}
		if !empty {
			rows = append(rows, row)
		}
	}

	keep := make([]int, 0, width)
	for c := 0; c < width; c++ {
		for _, row := range rows {
			if row[c].Present {
				keep = append(keep, c)
				break
			}
		}
	}

	out := RawTable{
		Header: make([]string, len(keep)),
		Rows:   make([][]Cell, len(rows)),
	}
	for i, c := range keep {
		out.Header[i] = t.HeaderLabel(c)
	}
	for r, row := range rows {
		cells := make([]Cell, len(keep))
		for i, c := range keep {
			cells[i] = row[c]
		}
		out.Rows[r] = cells
	}

	if out.NumRows() < 2 || len(keep) < 2 {
		return out, fmt.Errorf("%w: %d rows x %d columns after cleaning", ErrTableTooSmall, out.NumRows(), len(keep))
	}
	return out, nil
}
