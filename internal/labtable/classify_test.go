package labtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNormalize(t *testing.T, header []string, rows [][]string) RawTable {
	t.Helper()
	tbl, err := Normalize(NewRawTable(header, rows))
	require.NoError(t, err)
	return tbl
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		rows   [][]string
		want   ColumnMapping
	}{
		{
			name:   "standard report layout",
			header: []string{"Test", "Result", "Bio. Ref. Range", "Unit"},
			rows: [][]string{
				{"Hemoglobin", "16.5", "13.0-17.0", "g/dL"},
				{"WBC", "11200", "4000-11000", "/cumm"},
			},
			want: ColumnMapping{TestName: 0, TestValue: 1, ReferenceRange: 2, Unit: 3},
		},
		{
			name:   "content beats header labels",
			header: []string{"Unit", "Range", "Value", "Name"},
			rows: [][]string{
				{"Platelet count", "250", "150 - 450", "10^3/uL %"},
				{"RBC", "4.8", "4.5 - 5.5", "mill/cumm"},
			},
			want: ColumnMapping{TestName: 0, TestValue: 1, ReferenceRange: 2, Unit: 3},
		},
		{
			name:   "header fallback for unrecognised content",
			header: []string{"Test Name", "Observed Value", "Reference"},
			rows: [][]string{
				{"Sodium", "High", "Normal"},
				{"Potassium", "Low", "Normal"},
			},
			want: ColumnMapping{TestName: 0, TestValue: 1, ReferenceRange: 2},
		},
		{
			name:   "claimed role falls through to next rule",
			header: []string{"Parameter", "Result", "Remarks"},
			rows: [][]string{
				{"WBC", "9000", "Hb 4000-11000"},
				{"RBC", "4.5", "Hb 4.5-5.5"},
			},
			want: ColumnMapping{TestName: 0, TestValue: 1, ReferenceRange: 2},
		},
		{
			name:   "positional fallback fills lowest free columns",
			header: []string{"Result", "Description", "Notes", "Units"},
			rows: [][]string{
				{"16.5", "Hemoglobin A", "x", "g/dl"},
				{"11", "Glucose", "y", "mg/dl"},
			},
			want: ColumnMapping{TestValue: 0, TestName: 1, ReferenceRange: 2, Unit: 3},
		},
		{
			name:   "positional fallback stops when columns run out",
			header: []string{"Test Name", "Result"},
			rows: [][]string{
				{"Hemoglobin", "12.5 g/dL"},
				{"RBC", "4.5 mill/cumm"},
			},
			want: ColumnMapping{TestName: 0, TestValue: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(mustNormalize(t, tt.header, tt.rows))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyInsufficientMapping(t *testing.T) {
	tbl := mustNormalize(t,
		[]string{"Name", "Comment"},
		[][]string{
			{"Sodium", "normal"},
			{"Potassium", "raised"},
		},
	)

	_, err := Classify(tbl)
	assert.ErrorIs(t, err, ErrInsufficientMapping)
}

func TestClassifyNeverSharesColumns(t *testing.T) {
	tables := []RawTable{
		mustNormalize(t,
			[]string{"Test", "Test", "Test", "Test"},
			[][]string{
				{"Hb 13", "Hb 13", "Hb 13-17", "Hb %"},
				{"WBC", "WBC", "WBC", "WBC"},
			},
		),
		mustNormalize(t,
			[]string{"", "", "", "", ""},
			[][]string{
				{"12", "13", "14", "15", "16"},
				{"1-2", "3-4", "5-6", "7-8", "9-10"},
			},
		),
	}

	for i, tbl := range tables {
		m, err := Classify(tbl)
		if err != nil {
			assert.ErrorIs(t, err, ErrInsufficientMapping)
			continue
		}
		seen := map[int]ColumnRole{}
		for role, col := range m {
			prev, dup := seen[col]
			assert.False(t, dup, "table %d: column %d mapped to %s and %s", i, col, prev, role)
			seen[col] = role
			assert.True(t, col >= 0 && col < tbl.NumCols(), "table %d: column %d out of bounds", i, col)
		}
		assert.LessOrEqual(t, len(m), len(Roles))
	}
}

func TestColumnMappingString(t *testing.T) {
	m := ColumnMapping{Unit: 3, TestName: 0, TestValue: 2}
	assert.Equal(t, "test_name=0 test_value=2 test_unit=3", m.String())
	assert.Equal(t, "", ColumnMapping{}.String())
}

func TestColumnRoleString(t *testing.T) {
	assert.Equal(t, "test_name", TestName.String())
	assert.Equal(t, "test_value", TestValue.String())
	assert.Equal(t, "bio_reference_range", ReferenceRange.String())
	assert.Equal(t, "test_unit", Unit.String())
	assert.Equal(t, "ColumnRole(9)", ColumnRole(9).String())
}
