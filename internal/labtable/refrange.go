package labtable

import (
	"regexp"
	"strconv"
	"strings"
)

// rangePrefix matches "<number> - <number>" at the start of a reference range.
// Numbers are unsigned digit/decimal-point runs; anything after the second
// number (units, notes) is ignored.
var rangePrefix = regexp.MustCompile(`^([\d.]+)\s*-\s*([\d.]+)`)

// ParsedRange is a numeric reference interval. Low and High are taken in the
// order they appear in the text; Low <= High is not guaranteed.
type ParsedRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ParseRange extracts a low-high pair from the start of a reference range.
//
//	ParseRange("70 - 110")         -> {70, 110}, true
//	ParseRange("4.5-11.0 x10^9/L") -> {4.5, 11}, true
//	ParseRange("Negative")         -> {}, false
//	ParseRange("<5")               -> {}, false
//
// A prefix such as "1.2.3-4" matches the pattern but is not a number and is
// reported as unparseable.
func ParseRange(s string) (ParsedRange, bool) {
	m := rangePrefix.FindStringSubmatch(s)
	if m == nil {
		return ParsedRange{}, false
	}
	low, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return ParsedRange{}, false
	}
	high, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return ParsedRange{}, false
	}
	return ParsedRange{Low: low, High: high}, true
}

// RangeOutcome is the result of comparing a value against a reference range.
type RangeOutcome int

const (
	// Indeterminate means the range or the value could not be read as numeric.
	Indeterminate RangeOutcome = iota
	// InRange means low <= value <= high.
	InRange
	// OutOfRange means value < low or value > high.
	OutOfRange
)

func (o RangeOutcome) String() string {
	switch o {
	case InRange:
		return "in_range"
	case OutOfRange:
		return "out_of_range"
	default:
		return "indeterminate"
	}
}

// EvaluateRange compares a raw value string against a raw reference range.
//
// The value may carry leading or trailing whitespace but nothing else. The
// comparison trusts the parsed order of the range: a reversed range such as
// "110-70" is compared literally. Any panic while evaluating degrades to
// Indeterminate.
func EvaluateRange(value, ref string) (outcome RangeOutcome) {
	defer func() {
		if recover() != nil {
			outcome = Indeterminate
		}
	}()

	r, ok := ParseRange(ref)
	if !ok {
		return Indeterminate
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return Indeterminate
	}
	if v < r.Low || v > r.High {
		return OutOfRange
	}
	return InRange
}

// IsOutOfRange is EvaluateRange as used when building records: Indeterminate
// is reported as false, so a record is never dropped or flagged merely because
// its range could not be checked.
func IsOutOfRange(value, ref string) bool {
	return EvaluateRange(value, ref) == OutOfRange
}
