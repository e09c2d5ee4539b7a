// Package labtable interprets OCR'd tables from lab reports as lab test records.
//
// The package is the pure core of the lab report pipeline. It never touches
// pixels or OCR engines: it consumes RawTable values (grids of cell text with
// an inferred header row) and produces LabTestRecord values.
//
// # Pipeline
//
// Each table passes through three stages:
//
//  1. Normalize: placeholder cells ("None", "") become absent, all-absent rows
//     and columns are dropped, and tables smaller than 2x2 are rejected.
//  2. Classify: every column is scored against an ordered list of content
//     rules and assigned at most one ColumnRole. Unmapped roles are filled
//     positionally.
//  3. ExtractRecords: every row is resolved through the ColumnMapping into a
//     RowOutcome, either a record or a skip reason.
//
// Interpret runs the three stages over a slice of tables and concatenates the
// records in table order, then row order.
//
// # Column Rules
//
// Rule priority is part of the contract. A column that contains both a test
// name token and a bare number is a TestName column, because the TestName rule
// is evaluated first:
//
//	TestName        any cell contains test, parameter, investigation, rbc, wbc, hb, platelet
//	TestValue       any cell is a bare number, optionally unit-suffixed
//	ReferenceRange  any cell contains a low-high pair
//	Unit            any cell contains g/dl, mg/dl, iu/l, mmol/l, /cumm, %, fl, pg
//	header          header label mentions test name, value/result, range/reference, unit
//
// # Error Handling
//
// Table-level rejections are reported as ErrTableTooSmall and
// ErrInsufficientMapping. Row-level problems never surface as errors; they are
// SkipReason values. Range parsing never fails loudly: an unparseable range or
// value is Indeterminate, which IsOutOfRange reports as false.
//
// # Thread Safety
//
// All functions are stateless. Tables may be interpreted concurrently.
package labtable
