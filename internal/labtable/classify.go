package labtable

import (
	"fmt"
	"regexp"
	"strings"
)

// ColumnRole is the semantic meaning of a table column.
type ColumnRole int

// Roles in positional-fallback order.
const (
	TestName ColumnRole = iota
	TestValue
	ReferenceRange
	Unit
)

// Roles lists every role in positional-fallback order.
var Roles = []ColumnRole{TestName, TestValue, ReferenceRange, Unit}

func (r ColumnRole) String() string {
	switch r {
	case TestName:
		return "test_name"
	case TestValue:
		return "test_value"
	case ReferenceRange:
		return "bio_reference_range"
	case Unit:
		return "test_unit"
	default:
		return fmt.Sprintf("ColumnRole(%d)", int(r))
	}
}

// MarshalText lets ColumnMapping serialize with role names as keys.
func (r ColumnRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ColumnMapping maps roles to column indices. It never maps two roles to the
// same index.
type ColumnMapping map[ColumnRole]int

// Index returns the column mapped to role.
func (m ColumnMapping) Index(role ColumnRole) (int, bool) {
	idx, ok := m[role]
	return idx, ok
}

// claimed reports whether some role already owns column idx.
func (m ColumnMapping) claimed(idx int) bool {
	for _, c := range m {
		if c == idx {
			return true
		}
	}
	return false
}

// String renders the mapping in role order, e.g. "test_name=0 test_value=2".
func (m ColumnMapping) String() string {
	parts := make([]string, 0, len(m))
	for _, role := range Roles {
		if idx, ok := m[role]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", role, idx))
		}
	}
	return strings.Join(parts, " ")
}

var (
	testNameTokens = []string{"test", "parameter", "investigation", "rbc", "wbc", "hb", "platelet"}
	unitTokens     = []string{"g/dl", "mg/dl", "iu/l", "mmol/l", "/cumm", "%", "fl", "pg"}

	// A bare or near-bare number, optionally unit-suffixed: "16.5", ".5", "12 g/dl".
	valuePattern = regexp.MustCompile(`^\d*\.?\d+\s*[a-zA-Z/]*$`)
	// A low-high pair anywhere in the cell: "13.0-17.0", "70 - 110", "4 10".
	rangePattern = regexp.MustCompile(`[\d.]+[\s-]+[\d.]+`)
)

// columnSample is the material a rule inspects for one column.
type columnSample struct {
	values []string // present cells, lower-cased
	header string   // header label, lower-cased
}

// classifyRule claims role for a column when match reports true.
type classifyRule struct {
	role  ColumnRole
	match func(columnSample) bool
}

// classifyRules is evaluated top to bottom for every column. The order is the
// contract: earlier rules win over later ones for the same column.
var classifyRules = []classifyRule{
	{TestName, func(s columnSample) bool { return anyValue(s.values, containsAny(testNameTokens)) }},
	{TestValue, func(s columnSample) bool { return anyValue(s.values, trimmed(valuePattern.MatchString)) }},
	{ReferenceRange, func(s columnSample) bool { return anyValue(s.values, trimmed(rangePattern.MatchString)) }},
	{Unit, func(s columnSample) bool { return anyValue(s.values, containsAny(unitTokens)) }},

	// Header-label fallback, consulted only when no content rule claimed the column.
	{TestName, func(s columnSample) bool {
		return strings.Contains(s.header, "test") &&
			(strings.Contains(s.header, "name") || strings.Contains(s.header, "parameter"))
	}},
	{TestValue, func(s columnSample) bool {
		return strings.Contains(s.header, "value") || strings.Contains(s.header, "result")
	}},
	{ReferenceRange, func(s columnSample) bool {
		return strings.Contains(s.header, "range") || strings.Contains(s.header, "reference")
	}},
	{Unit, func(s columnSample) bool { return strings.Contains(s.header, "unit") }},
}

func anyValue(values []string, pred func(string) bool) bool {
	for _, v := range values {
		if pred(v) {
			return true
		}
	}
	return false
}

func containsAny(tokens []string) func(string) bool {
	return func(v string) bool {
		for _, tok := range tokens {
			if strings.Contains(v, tok) {
				return true
			}
		}
		return false
	}
}

func trimmed(pred func(string) bool) func(string) bool {
	return func(v string) bool { return pred(strings.TrimSpace(v)) }
}

// Classify assigns column roles for a normalized table.
//
// Columns are visited left to right. Each column takes the role of the first
// rule in classifyRules that matches it and whose role is still unclaimed; a
// column with no present cells is skipped. Once a role is claimed no later
// column can take it.
//
// If fewer than 2 roles are mapped the table is rejected with
// ErrInsufficientMapping. Otherwise every unmapped role, in the order
// TestName, TestValue, ReferenceRange, Unit, receives the lowest column index
// that exists and is not yet claimed. A role stays unmapped when no such index
// is left.
func Classify(t RawTable) (ColumnMapping, error) {
	mapping := make(ColumnMapping, len(Roles))
	ncols := t.NumCols()

	for col := 0; col < ncols; col++ {
		values := t.Column(col)
		if len(values) == 0 {
			continue
		}
		sample := columnSample{
			values: make([]string, len(values)),
			header: strings.ToLower(t.HeaderLabel(col)),
		}
		for i, v := range values {
			sample.values[i] = strings.ToLower(v)
		}

		for _, rule := range classifyRules {
			if _, taken := mapping[rule.role]; taken {
				continue
			}
			if rule.match(sample) {
				mapping[rule.role] = col
				break
			}
		}
	}

	if len(mapping) < 2 {
		return mapping, fmt.Errorf("%w: %d of %d roles identified", ErrInsufficientMapping, len(mapping), len(Roles))
	}

	next := 0
	for _, role := range Roles {
		if _, ok := mapping[role]; ok {
			continue
		}
		for next < ncols && mapping.claimed(next) {
			next++
		}
		if next >= ncols {
			break
		}
		mapping[role] = next
		next++
	}

	return mapping, nil
}

