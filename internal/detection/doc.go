// Package detection turns OCR output into tables.
//
// It works on the binary page produced by imaging.Preprocessor and the words
// produced by ocr.Recognizer:
//
//   - DetectRulings finds printed horizontal and vertical lines (table
//     borders and cell dividers) as long unbroken ink runs.
//   - BuildTables groups words into lines, splits the lines into blocks at
//     large vertical gaps, and cuts each block into columns. Columns come from
//     vertical rulings when a block is ruled, and from whitespace valleys
//     between phrases when it is not.
//   - TableExtractor ties OCR, ruling detection and assembly together behind
//     ExtractTables.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// # Table Shape
//
// The first line of every block becomes the header row. Cells that received
// no words are absent. Blocks too small to be a useful table are still
// returned; deciding what to keep is left to labtable.Normalize.
package detection
