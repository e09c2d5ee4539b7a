package labtable

import (
	"fmt"
	"strings"
)

// LabTestRecord is one lab test result read from a table row.
type LabTestRecord struct {
	TestName          string `json:"test_name"`
	TestValue         string `json:"test_value"`
	BioReferenceRange string `json:"bio_reference_range"`
	TestUnit          string `json:"test_unit"`
	OutOfRange        bool   `json:"lab_test_out_of_range"`
}

// SkipReason explains why a row produced no record.
type SkipReason int

const (
	// NotSkipped marks a row that produced a record.
	NotSkipped SkipReason = iota
	// SkipMissingName means the test name was empty or a placeholder.
	SkipMissingName
	// SkipMissingValue means the test value was empty or a placeholder.
	SkipMissingValue
	// SkipRowFailure means processing the row failed unexpectedly.
	SkipRowFailure
)

func (s SkipReason) String() string {
	switch s {
	case NotSkipped:
		return "none"
	case SkipMissingName:
		return "missing test name"
	case SkipMissingValue:
		return "missing test value"
	case SkipRowFailure:
		return "row failure"
	default:
		return fmt.Sprintf("SkipReason(%d)", int(s))
	}
}

// RowOutcome is the result of extracting one row: a record, or a skip reason.
type RowOutcome struct {
	Row    int
	Record LabTestRecord
	Skip   SkipReason
	Detail string
}

// OK reports whether the row produced a record.
func (o RowOutcome) OK() bool {
	return o.Skip == NotSkipped
}

// ExtractRecords builds records for every usable row of a normalized table.
// Skipped rows are dropped silently; use ExtractRowOutcomes to see why.
func ExtractRecords(t RawTable, m ColumnMapping) []LabTestRecord {
	outcomes := ExtractRowOutcomes(t, m)
	records := make([]LabTestRecord, 0, len(outcomes))
	for _, o := range outcomes {
		if o.OK() {
			records = append(records, o.Record)
		}
	}
	return records
}

// ExtractRowOutcomes returns one RowOutcome per row, in row order. A failure
// in one row never affects the others.
func ExtractRowOutcomes(t RawTable, m ColumnMapping) []RowOutcome {
	outcomes := make([]RowOutcome, len(t.Rows))
	for r := range t.Rows {
		outcomes[r] = extractRow(t, m, r)
	}
	return outcomes
}

// extractRow resolves one row through the mapping.
func extractRow(t RawTable, m ColumnMapping, row int) (out RowOutcome) {
	out.Row = row
	defer func() {
		if p := recover(); p != nil {
			out = RowOutcome{Row: row, Skip: SkipRowFailure, Detail: fmt.Sprint(p)}
		}
	}()

	name := resolve(t, m, row, TestName)
	value := resolve(t, m, row, TestValue)
	ref := resolve(t, m, row, ReferenceRange)
	unit := resolve(t, m, row, Unit)

	if isMissing(name) {
		out.Skip = SkipMissingName
		return out
	}
	if isMissing(value) {
		out.Skip = SkipMissingValue
		return out
	}

	// "12.5 g/dL" in the value column with no unit: split off the unit.
	if unit == "" && strings.Contains(value, "/") {
		if parts := strings.Fields(value); len(parts) > 1 {
			value = parts[0]
			unit = strings.Join(parts[1:], " ")
		}
	}

	out.Record = LabTestRecord{
		TestName:          name,
		TestValue:         value,
		BioReferenceRange: ref,
		TestUnit:          unit,
		OutOfRange:        IsOutOfRange(value, ref),
	}
	return out
}

// resolve returns the trimmed text of role's cell in row, or "" when the role
// is unmapped or the cell is absent.
func resolve(t RawTable, m ColumnMapping, row int, role ColumnRole) string {
	col, ok := m.Index(role)
	if !ok {
		return ""
	}
	return strings.TrimSpace(t.Cell(row, col).Text)
}

func isMissing(s string) bool {
	switch strings.ToLower(s) {
	case "", "none", "nan":
		return true
	}
	return false
}
