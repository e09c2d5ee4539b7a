package detection

import (
	"image"
	"sort"
)

// Orientation of a ruling line.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// MarshalText renders the orientation by name in JSON.
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Ruling is a straight printed line, such as a table border or cell divider.
//
// For a horizontal ruling Pos is the y coordinate of its centre and Start/End
// span x. For a vertical ruling Pos is x and Start/End span y. End is
// exclusive.
type Ruling struct {
	Orientation Orientation `json:"orientation"`
	Pos         int         `json:"pos"`
	Start       int         `json:"start"`
	End         int         `json:"end"`
	Thickness   int         `json:"thickness"`
}

// Length returns End - Start.
func (r Ruling) Length() int {
	return r.End - r.Start
}

// inkThreshold separates ink from paper in a binary image.
const inkThreshold = 128

// DetectRulings finds horizontal and vertical ruling lines in a binary image
// with black ink on white paper.
//
// A scan line counts as ruled when it holds an unbroken ink run of at least
// minFraction of the image extent in that direction. Adjacent ruled scan
// lines whose runs overlap are merged into one Ruling, so a 3 px border is
// reported once with Thickness 3. Horizontal rulings come first, sorted by
// Pos, then vertical ones.
func DetectRulings(bin *image.Gray, minFraction float64) []Ruling {
	b := bin.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	ink := func(x, y int) bool {
		return bin.GrayAt(b.Min.X+x, b.Min.Y+y).Y < inkThreshold
	}

	horizontal := scanRuns(h, w, int(minFraction*float64(w)+0.5), func(line, i int) bool { return ink(i, line) })
	vertical := scanRuns(w, h, int(minFraction*float64(h)+0.5), func(line, i int) bool { return ink(line, i) })

	rulings := make([]Ruling, 0, len(horizontal)+len(vertical))
	for _, r := range horizontal {
		r.Orientation = Horizontal
		r.Pos += b.Min.Y
		r.Start += b.Min.X
		r.End += b.Min.X
		rulings = append(rulings, r)
	}
	for _, r := range vertical {
		r.Orientation = Vertical
		r.Pos += b.Min.X
		r.Start += b.Min.Y
		r.End += b.Min.Y
		rulings = append(rulings, r)
	}
	return rulings
}

// run is the longest ink run on one scan line.
type run struct {
	line, start, end int
}

// scanRuns finds, for each of n scan lines of the given length, the longest
// ink run, keeps those at least minLen long and merges neighbours.
func scanRuns(n, length, minLen int, ink func(line, i int) bool) []Ruling {
	if minLen < 1 {
		minLen = 1
	}

	var runs []run
	for line := 0; line < n; line++ {
		best := run{line: line}
		start := -1
		for i := 0; i <= length; i++ {
			if i < length && ink(line, i) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 && i-start > best.end-best.start {
				best.start, best.end = start, i
			}
			start = -1
		}
		if best.end-best.start >= minLen {
			runs = append(runs, best)
		}
	}

	var out []Ruling
	var cur []run
	flush := func() {
		if len(cur) == 0 {
			return
		}
		r := Ruling{Start: cur[0].start, End: cur[0].end, Thickness: len(cur)}
		for _, c := range cur[1:] {
			r.Start = min(r.Start, c.start)
			r.End = max(r.End, c.end)
		}
		r.Pos = (cur[0].line + cur[len(cur)-1].line) / 2
		out = append(out, r)
		cur = cur[:0]
	}
	for _, r := range runs {
		if len(cur) > 0 {
			last := cur[len(cur)-1]
			if r.line != last.line+1 || r.start >= last.end || r.end <= last.start {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()

	sort.Slice(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out
}
