// Package ocr recognizes words in report images using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). A
// Recognizer runs word-level recognition on an in-memory image and returns
// every word with its bounding box and a confidence normalized to 0..1.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Set Config.TessdataPrefix (or TESSDATA_PREFIX) when the language data lives
// outside the default search path.
//
// # Configuration
//
// All settings travel in a Config value. There is no package-level engine
// state: every Recognize call builds and closes its own Tesseract client, so
// a Recognizer is safe for concurrent use.
//
// # Error Handling
//
// Recognize returns an error when the engine cannot start (unknown language,
// missing tessdata) or cannot read the image. A page with no text is not an
// error; it yields an empty word list.
package ocr
