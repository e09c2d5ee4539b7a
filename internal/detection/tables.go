package detection

import (
	"sort"
	"strings"

	"github.com/ironsheep/labreport-mcp/internal/labtable"
	"github.com/ironsheep/labreport-mcp/internal/ocr"
)

// Config controls how OCR words are assembled into tables.
type Config struct {
	// OCR is passed to the word recognizer.
	OCR ocr.Config `json:"ocr"`

	// ImplicitRows groups words into rows by their vertical position. When
	// false, rows are the bands between horizontal rulings and only words
	// outside any band are grouped by position.
	ImplicitRows bool `json:"implicit_rows"`

	// BorderlessTables finds columns from whitespace when a block has fewer
	// than 2 vertical rulings. When false such blocks are not tables.
	BorderlessTables bool `json:"borderless_tables"`

	// RulingMinFraction is the shortest ruling, as a fraction of the image
	// width (horizontal) or height (vertical).
	RulingMinFraction float64 `json:"ruling_min_fraction"`

	// TableGapFactor splits tables where the gap between lines exceeds this
	// multiple of the median line height.
	TableGapFactor float64 `json:"table_gap_factor"`

	// ColumnGapFactor joins neighbouring words into one phrase when the gap
	// between them is below this multiple of the median word height.
	ColumnGapFactor float64 `json:"column_gap_factor"`
}

// DefaultConfig returns the settings used for lab reports.
func DefaultConfig() Config {
	return Config{
		OCR:               ocr.DefaultConfig(),
		ImplicitRows:      true,
		BorderlessTables:  true,
		RulingMinFraction: 0.5,
		TableGapFactor:    2.5,
		ColumnGapFactor:   1.2,
	}
}

// Table is a detected table with its position on the page.
type Table struct {
	Bounds ocr.Bounds `json:"bounds"`
	Ruled  bool       `json:"ruled"`
	labtable.RawTable
}

// textLine is a run of words sharing a row.
type textLine struct {
	words  []ocr.Word
	bounds ocr.Bounds
}

func (l *textLine) add(w ocr.Word) {
	if len(l.words) == 0 {
		l.bounds = w.Bounds
	} else {
		l.bounds = mergeBounds(l.bounds, w.Bounds)
	}
	l.words = append(l.words, w)
}

func (l *textLine) sortByX() {
	sort.SliceStable(l.words, func(i, j int) bool { return l.words[i].Bounds.X1 < l.words[j].Bounds.X1 })
}

// BuildTables assembles recognized words into tables.
//
// Words are grouped into lines, lines into blocks separated by large vertical
// gaps, and each block is cut into columns, using vertical rulings when at
// least two cross it and whitespace valleys otherwise. The first line of a
// block becomes the header. Blocks are returned top to bottom; a block that
// yields fewer than 2 rows or columns is still returned.
func BuildTables(words []ocr.Word, rulings []Ruling, cfg Config) []Table {
	if len(words) == 0 {
		return nil
	}

	var horizontal, vertical []Ruling
	for _, r := range rulings {
		if r.Orientation == Horizontal {
			horizontal = append(horizontal, r)
		} else {
			vertical = append(vertical, r)
		}
	}

	var lines []textLine
	if cfg.ImplicitRows {
		lines = groupLines(words)
	} else {
		lines = rowsFromRulings(words, horizontal)
	}

	var tables []Table
	for _, block := range splitBlocks(lines, horizontal, cfg.TableGapFactor) {
		if t, ok := buildTable(block, vertical, cfg); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// groupLines clusters words into lines: a word joins the current line when
// its vertical centre lies within the line, or the line's centre lies within
// the word.
func groupLines(words []ocr.Word) []textLine {
	sorted := make([]ocr.Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := sorted[i].Bounds.CenterY(), sorted[j].Bounds.CenterY()
		if ci != cj {
			return ci < cj
		}
		return sorted[i].Bounds.X1 < sorted[j].Bounds.X1
	})

	var lines []textLine
	for _, w := range sorted {
		if n := len(lines); n > 0 && sameLine(lines[n-1].bounds, w.Bounds) {
			lines[n-1].add(w)
			continue
		}
		var l textLine
		l.add(w)
		lines = append(lines, l)
	}
	for i := range lines {
		lines[i].sortByX()
	}
	return lines
}

func sameLine(line, w ocr.Bounds) bool {
	cy := w.CenterY()
	if cy >= float64(line.Y1) && cy < float64(line.Y2) {
		return true
	}
	lc := line.CenterY()
	return lc >= float64(w.Y1) && lc < float64(w.Y2)
}

// rowsFromRulings treats each band between consecutive horizontal rulings as
// one row. Words outside every band are grouped by position.
func rowsFromRulings(words []ocr.Word, horizontal []Ruling) []textLine {
	if len(horizontal) < 2 {
		return groupLines(words)
	}

	cuts := make([]int, 0, len(horizontal))
	for _, r := range horizontal {
		cuts = append(cuts, r.Pos)
	}
	sort.Ints(cuts)

	bands := make([]textLine, len(cuts)-1)
	var loose []ocr.Word
	for _, w := range words {
		cy := w.Bounds.CenterY()
		i := sort.Search(len(cuts), func(i int) bool { return float64(cuts[i]) > cy })
		if i == 0 || i == len(cuts) {
			loose = append(loose, w)
			continue
		}
		bands[i-1].add(w)
	}

	lines := groupLines(loose)
	for _, b := range bands {
		if len(b.words) > 0 {
			b.sortByX()
			lines = append(lines, b)
		}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].bounds.Y1 < lines[j].bounds.Y1 })
	return lines
}

// splitBlocks starts a new block wherever the gap between two lines exceeds
// factor times the median line height, unless a horizontal ruling spanning
// both lines sits in the gap.
func splitBlocks(lines []textLine, horizontal []Ruling, factor float64) [][]textLine {
	if len(lines) == 0 {
		return nil
	}

	heights := make([]int, len(lines))
	for i, l := range lines {
		heights[i] = l.bounds.Height()
	}
	limit := factor * medianInt(heights)

	var blocks [][]textLine
	current := []textLine{lines[0]}
	for _, l := range lines[1:] {
		prev := current[len(current)-1]
		gap := float64(l.bounds.Y1 - prev.bounds.Y2)
		if gap > limit && !rulingBridges(prev.bounds, l.bounds, horizontal) {
			blocks = append(blocks, current)
			current = nil
		}
		current = append(current, l)
	}
	return append(blocks, current)
}

func rulingBridges(above, below ocr.Bounds, horizontal []Ruling) bool {
	for _, r := range horizontal {
		if r.Pos < above.Y2 || r.Pos > below.Y1 {
			continue
		}
		if r.Start < min(above.X2, below.X2) && r.End > max(above.X1, below.X1) {
			return true
		}
	}
	return false
}

// buildTable cuts a block into columns and renders it as a Table.
func buildTable(block []textLine, vertical []Ruling, cfg Config) (Table, bool) {
	bounds := block[0].bounds
	for _, l := range block[1:] {
		bounds = mergeBounds(bounds, l.bounds)
	}

	var grid [][][]string
	ruled := false
	if cuts := crossingRulings(bounds, vertical); len(cuts) >= 2 {
		grid = ruledGrid(block, cuts)
		ruled = true
	} else if cfg.BorderlessTables {
		grid = borderlessGrid(block, cfg.ColumnGapFactor)
	} else {
		return Table{}, false
	}

	return Table{
		Bounds:   bounds,
		Ruled:    ruled,
		RawTable: rawTable(grid),
	}, true
}

// crossingRulings returns the x positions of vertical rulings that cover at
// least half of the block's height.
func crossingRulings(block ocr.Bounds, vertical []Ruling) []int {
	need := block.Height() / 2
	var cuts []int
	for _, r := range vertical {
		overlap := min(r.End, block.Y2) - max(r.Start, block.Y1)
		if overlap >= need && overlap > 0 {
			cuts = append(cuts, r.Pos)
		}
	}
	sort.Ints(cuts)
	return cuts
}

// ruledGrid assigns each word to the column between the rulings around its
// horizontal centre. The result is indexed [line][column] and holds words.
func ruledGrid(block []textLine, cuts []int) [][][]string {
	grid := make([][][]string, len(block))
	for i, l := range block {
		grid[i] = make([][]string, len(cuts)+1)
		for _, w := range l.words {
			cx := (w.Bounds.X1 + w.Bounds.X2) / 2
			col := sort.SearchInts(cuts, cx)
			grid[i][col] = append(grid[i][col], w.Text)
		}
	}
	return grid
}

type phrase struct {
	text   []string
	x1, x2 int
}

// borderlessGrid joins close words into phrases and derives columns from the
// whitespace valleys of the block's horizontal projection.
func borderlessGrid(block []textLine, gapFactor float64) [][][]string {
	var heights []int
	for _, l := range block {
		for _, w := range l.words {
			heights = append(heights, w.Bounds.Height())
		}
	}
	limit := gapFactor * medianInt(heights)

	phrases := make([][]phrase, len(block))
	var spans [][2]int
	for i, l := range block {
		for _, w := range l.words {
			n := len(phrases[i])
			if n > 0 && float64(w.Bounds.X1-phrases[i][n-1].x2) < limit {
				p := &phrases[i][n-1]
				p.text = append(p.text, w.Text)
				p.x2 = max(p.x2, w.Bounds.X2)
				continue
			}
			phrases[i] = append(phrases[i], phrase{text: []string{w.Text}, x1: w.Bounds.X1, x2: w.Bounds.X2})
		}
		for _, p := range phrases[i] {
			spans = append(spans, [2]int{p.x1, p.x2})
		}
	}

	columns := mergeSpans(spans)
	grid := make([][][]string, len(block))
	for i := range block {
		grid[i] = make([][]string, len(columns))
		for _, p := range phrases[i] {
			cx := (p.x1 + p.x2) / 2
			col := sort.Search(len(columns), func(c int) bool { return columns[c][1] > cx })
			if col == len(columns) {
				col--
			}
			grid[i][col] = append(grid[i][col], strings.Join(p.text, " "))
		}
	}
	return grid
}

// mergeSpans unions overlapping [x1,x2) spans into sorted, disjoint columns.
func mergeSpans(spans [][2]int) [][2]int {
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })
	var merged [][2]int
	for _, s := range spans {
		if n := len(merged); n > 0 && s[0] < merged[n-1][1] {
			merged[n-1][1] = max(merged[n-1][1], s[1])
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// rawTable drops columns that hold no text at all and uses the first line as
// the header.
func rawTable(grid [][][]string) labtable.RawTable {
	if len(grid) == 0 {
		return labtable.RawTable{}
	}

	var keep []int
	for c := range grid[0] {
		for _, line := range grid {
			if len(line[c]) > 0 {
				keep = append(keep, c)
				break
			}
		}
	}

	t := labtable.RawTable{
		Header: make([]string, len(keep)),
		Rows:   make([][]labtable.Cell, 0, len(grid)-1),
	}
	for i, c := range keep {
		t.Header[i] = strings.Join(grid[0][c], " ")
	}
	for _, line := range grid[1:] {
		row := make([]labtable.Cell, len(keep))
		for i, c := range keep {
			if len(line[c]) > 0 {
				row[i] = labtable.Text(strings.Join(line[c], " "))
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// mergeBounds combines two bounds into their union.
func mergeBounds(a, b ocr.Bounds) ocr.Bounds {
	return ocr.Bounds{
		X1: min(a.X1, b.X1),
		Y1: min(a.Y1, b.Y1),
		X2: max(a.X2, b.X2),
		Y2: max(a.Y2, b.Y2),
	}
}

func medianInt(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}
