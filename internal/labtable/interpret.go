package labtable

import (
	"github.com/charmbracelet/log"
)

// Result is the outcome of interpreting one document.
type Result struct {
	Success bool            `json:"is_success"`
	Records []LabTestRecord `json:"data"`
}

// Failed returns the result reported when a document could not be processed at all.
func Failed() Result {
	return Result{Success: false, Records: []LabTestRecord{}}
}

// TableReport describes what happened to one table during interpretation.
type TableReport struct {
	Index    int           `json:"index"`
	Rows     int           `json:"rows"`
	Cols     int           `json:"cols"`
	Mapping  ColumnMapping `json:"mapping,omitempty"`
	Rejected string        `json:"rejected,omitempty"`
	Records  int           `json:"records"`
	Skipped  int           `json:"skipped"`
}

// Interpreter runs Normalize, Classify and ExtractRecords over tables.
// The zero value is ready to use and does not log.
type Interpreter struct {
	Logger *log.Logger
}

// Interpret is Interpreter{}.Interpret.
func Interpret(tables []RawTable) Result {
	return Interpreter{}.Interpret(tables)
}

// Interpret processes every table and concatenates the records in table
// order, then row order. Rejected tables contribute nothing. The result is
// always successful; finding zero tables or zero records is a valid outcome.
func (in Interpreter) Interpret(tables []RawTable) Result {
	res, _ := in.InterpretWithReports(tables)
	return res
}

// InterpretWithReports is Interpret plus a TableReport per input table.
func (in Interpreter) InterpretWithReports(tables []RawTable) (Result, []TableReport) {
	res := Result{Success: true, Records: []LabTestRecord{}}
	reports := make([]TableReport, 0, len(tables))

	for i, raw := range tables {
		report := TableReport{Index: i}

		table, err := Normalize(raw)
		report.Rows, report.Cols = table.NumRows(), table.NumCols()
		if err != nil {
			report.Rejected = err.Error()
			in.debug("skipping table", "table", i, "reason", err)
			reports = append(reports, report)
			continue
		}

		mapping, err := Classify(table)
		if err != nil {
			report.Rejected = err.Error()
			in.debug("skipping table", "table", i, "reason", err, "mapping", mapping.String())
			reports = append(reports, report)
			continue
		}
		report.Mapping = mapping
		in.debug("column mapping", "table", i, "rows", report.Rows, "cols", report.Cols, "mapping", mapping.String())

		for _, o := range ExtractRowOutcomes(table, mapping) {
			if !o.OK() {
				report.Skipped++
				in.debug("skipping row", "table", i, "row", o.Row, "reason", o.Skip, "detail", o.Detail)
				continue
			}
			report.Records++
			res.Records = append(res.Records, o.Record)
		}
		reports = append(reports, report)
	}

	return res, reports
}

func (in Interpreter) debug(msg string, keyvals ...interface{}) {
	if in.Logger != nil {
		in.Logger.Debug(msg, keyvals...)
	}
}
